// Package storage defines the persistence interface for articles, chunks, and feedback.
package storage

import (
	"context"

	"github.com/askksa/askksa/internal/models"
)

// Storage defines article and chunk persistence plus the append-only
// feedback log. Chunks carry their provenance metadata denormalized so the
// retriever can resolve a chunk by ID in one lookup.
type Storage interface {
	// Article operations
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	DeleteArticle(ctx context.Context, id string) error
	ListArticles(ctx context.Context, offset, limit int) ([]*models.Article, error)

	// Chunk operations
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	GetChunksByArticleID(ctx context.Context, articleID string) ([]*models.Chunk, error)
	BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error
	DeleteChunksByArticleID(ctx context.Context, articleID string) error

	// Feedback log (append-only, keyed by session; never read by the
	// answer pipeline)
	AppendFeedback(ctx context.Context, fb *models.Feedback) error
	ListFeedbackBySession(ctx context.Context, sessionID string) ([]*models.Feedback, error)

	// Stats
	CountArticles(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
