package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedder_deterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()
	a, err := e.Embed(ctx, "iqama renewal")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "iqama renewal")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text should produce identical embeddings")
		}
	}
	other, _ := e.Embed(ctx, "premium residency")
	same := true
	for i := range a {
		if a[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should produce different embeddings")
	}
}

func TestMockEmbedder_unitNorm(t *testing.T) {
	e := NewMockEmbedder(32)
	emb, err := e.Embed(context.Background(), "visa fines")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("embedding not unit-normalized, norm squared = %f", sum)
	}
}

func TestMockEmbedder_batch(t *testing.T) {
	e := NewMockEmbedder(16)
	embs, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(embs) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(embs))
	}
	for i, emb := range embs {
		if len(emb) != 16 {
			t.Errorf("embedding %d has %d dims", i, len(emb))
		}
	}
}
