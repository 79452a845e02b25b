package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/askksa/askksa/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "keyword.bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestBleveIndexSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	articles := []*models.Article{
		{ID: "a1", Title: "Iqama Renewal", Content: "Renew your Iqama through the Absher portal."},
		{ID: "a2", Title: "Visit Visa", Content: "Family visit visas are issued by the Ministry of Foreign Affairs."},
	}
	for _, a := range articles {
		if err := idx.Index(ctx, a); err != nil {
			t.Fatalf("Index(%s) error = %v", a.ID, err)
		}
	}

	hits, err := idx.Search(ctx, "iqama", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Search() returned %d hits, want 1", len(hits))
	}
	if hits[0].ID != "a1" {
		t.Errorf("hit ID = %q, want a1", hits[0].ID)
	}
	if hits[0].Score <= 0 {
		t.Errorf("Score = %f, want > 0", hits[0].Score)
	}
}

func TestBleveIndexDelete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, &models.Article{ID: "a1", Title: "Exit Re-entry", Content: "Exit re-entry visas via Absher."}); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if err := idx.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	hits, err := idx.Search(ctx, "absher", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Search() after delete returned %d hits, want 0", len(hits))
	}
}

func TestBleveIndexNoMatch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, &models.Article{ID: "a1", Title: "Iqama Renewal", Content: "Renewal steps."}); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	hits, err := idx.Search(ctx, "umrah", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Search() returned %d hits, want 0", len(hits))
	}
}
