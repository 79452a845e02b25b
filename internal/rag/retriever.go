package rag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/askksa/askksa/internal/embedding"
	"github.com/askksa/askksa/internal/models"
	"github.com/askksa/askksa/internal/storage"
	"github.com/askksa/askksa/internal/vector"
)

// Retriever embeds a query and searches the chunk vector index. The query
// goes through the same embedder used at ingestion time, so query and chunk
// vectors share one normalization path.
type Retriever struct {
	embedder    embedding.Embedder
	vectorIndex vector.Index
	storage     storage.Storage
	logger      *zap.Logger
}

// NewRetriever creates a retriever over the given embedder, index, and
// chunk store.
func NewRetriever(embedder embedding.Embedder, vectorIndex vector.Index, store storage.Storage, logger *zap.Logger) *Retriever {
	return &Retriever{
		embedder:    embedder,
		vectorIndex: vectorIndex,
		storage:     store,
		logger:      logger,
	}
}

// Retrieve returns up to k chunks most similar to query, ranked 1..n in the
// order the index returned them. The index orders by descending inner
// product and the retriever never re-sorts on any other criterion. Zero
// matches yields an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]*models.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, k)
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding failed: %w", ErrResourceUnavailable, err)
	}
	hits, err := r.vectorIndex.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search failed: %w", ErrResourceUnavailable, err)
	}

	results := make([]*models.RetrievalResult, 0, len(hits))
	rank := 1
	for _, hit := range hits {
		chunk, err := r.storage.GetChunk(ctx, hit.ID)
		if err != nil {
			// Index and store can briefly disagree during re-ingest.
			if r.logger != nil {
				r.logger.Warn("indexed chunk missing from storage",
					zap.String("chunk_id", hit.ID))
			}
			continue
		}
		results = append(results, &models.RetrievalResult{
			Rank:        rank,
			Score:       hit.Score,
			Chunk:       chunk,
			TextPreview: CleanPreview(chunk.Content),
		})
		rank++
	}
	return results, nil
}
