// Package vector provides the chunk vector index and similarity search.
package vector

import "context"

// Index defines vector storage and similarity search over chunk embeddings.
// All vectors handed to Add must be unit-normalized; Search scores are inner
// products, so with unit vectors they equal cosine similarity and HIGHER
// means MORE similar. Implementations must be safe for concurrent readers.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Remove(ctx context.Context, ids []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// Result is a single vector search hit. ID is the chunk ID.
type Result struct {
	ID    string
	Score float64
}
