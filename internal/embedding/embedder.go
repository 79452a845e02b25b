// Package embedding provides query and chunk text embedding.
//
// All providers return unit-normalized vectors through the same code path,
// so inner-product search over the index is always cosine similarity. Query
// encoding and ingestion encoding must go through the same Embedder instance;
// mixing providers between ingestion and search silently degrades ranking.
package embedding

import (
	"context"
	"fmt"

	"github.com/askksa/askksa/internal/config"
)

// Embedder produces unit-normalized vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// New creates an embedder for the configured provider.
// Supported providers: "onnx" (local model, requires CGO), "ollama", "mock".
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "onnx", "":
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case "ollama":
		return NewOllamaEmbedder(cfg.OllamaURL, cfg.OllamaModel, cfg.Dimensions, cfg.CacheSize), nil
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, ollama, mock)", cfg.Provider)
	}
}
