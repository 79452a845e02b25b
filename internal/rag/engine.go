package rag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/askksa/askksa/internal/lang"
	"github.com/askksa/askksa/internal/llm"
	"github.com/askksa/askksa/internal/models"
)

// Engine runs the answer pipeline for one question: detect language,
// retrieve, assemble context, filter history, build the prompt, generate.
// Engines hold no per-request state, so one Engine serves concurrent
// callers.
type Engine struct {
	retriever *Retriever
	generator llm.Generator
	maxTurns  int
	logger    *zap.Logger
}

// NewEngine creates an answer engine. maxTurns bounds the history window
// considered per question.
func NewEngine(retriever *Retriever, generator llm.Generator, maxTurns int, logger *zap.Logger) *Engine {
	return &Engine{
		retriever: retriever,
		generator: generator,
		maxTurns:  maxTurns,
		logger:    logger,
	}
}

// Answer answers query grounded in the top-k retrieved chunks and returns
// the answer text, the query's RTL flag, and the retrieval provenance.
// Retrieval failures propagate unchanged; generation failures come back as
// ErrGenerationFailed wrapping the cause, with no partial answer. No
// retries happen here; the engine cannot tell transient failures from
// permanent ones. Cancellation and deadlines are the caller's via ctx.
func (e *Engine) Answer(ctx context.Context, query string, history []models.ConversationTurn, k int) (string, bool, []*models.RetrievalResult, error) {
	isRTL := lang.IsRTL(query)

	results, err := e.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return "", isRTL, nil, err
	}

	contextText := BuildContext(results)
	kept := SelectHistory(history, isRTL, e.maxTurns)
	messages := BuildMessages(query, contextText, isRTL, kept)

	if e.logger != nil {
		e.logger.Debug("answering question",
			zap.Bool("is_rtl", isRTL),
			zap.Int("results", len(results)),
			zap.Int("history_kept", len(kept)))
	}

	answer, err := e.generator.Generate(ctx, messages)
	if err != nil {
		return "", isRTL, nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if answer == "" {
		return "", isRTL, nil, fmt.Errorf("%w: model returned no text", ErrGenerationFailed)
	}
	return answer, isRTL, results, nil
}
