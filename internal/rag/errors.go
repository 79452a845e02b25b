// Package rag implements the retrieval-augmented answer pipeline: semantic
// retrieval, context assembly, history filtering, prompt construction, and
// answer orchestration.
package rag

import "errors"

// Error kinds surfaced to callers. Each maps to a distinct caller-facing
// failure state; none is ever downgraded to an empty answer.
var (
	// ErrInvalidArgument marks malformed caller input, e.g. non-positive k.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResourceUnavailable marks an unreachable embedding model or vector
	// index. Zero retrieval matches is a valid result, not this error.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrGenerationFailed marks a generation call that errored or returned
	// no usable text. The underlying cause is wrapped alongside it.
	ErrGenerationFailed = errors.New("generation failed")
)
