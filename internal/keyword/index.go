// Package keyword provides the exact-term article search used by corpus
// editors. It is independent of the semantic retrieval path and its scores
// are never mixed into answer ranking.
package keyword

import (
	"context"

	"github.com/askksa/askksa/internal/models"
)

// Result is a keyword search hit.
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Index indexes articles for keyword search.
type Index interface {
	Index(ctx context.Context, article *models.Article) error
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
