// Package llm provides answer generation backends.
package llm

import (
	"context"

	"github.com/askksa/askksa/internal/models"
)

// Generator produces an answer from an ordered message sequence. The first
// message may carry the system role; implementations map roles onto their
// provider's conventions. Generate performs no internal retries, the caller
// decides how to handle failures.
type Generator interface {
	Generate(ctx context.Context, messages []models.Message) (string, error)
	Close() error
}
