package models

import "fmt"

// Roles used in conversation history and prompt messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RetrievalResult is a single retrieval hit for one query.
// Score is the inner product of unit-normalized embeddings (equal to cosine
// similarity): higher means more similar. Rank is 1-based and contiguous
// within one result set, in the order the vector index returned hits.
type RetrievalResult struct {
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
	Chunk       *Chunk  `json:"chunk"`
	TextPreview string  `json:"text_preview"`
}

// ConversationTurn is one prior turn of a chat session. History is owned by
// the caller; the core only reads a suffix of it. IsRTL is an optional UI
// hint and is not trusted for filtering (language is re-detected from
// Content).
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	IsRTL   *bool  `json:"is_rtl,omitempty"`
}

// Message is a single prompt message for the generation call. Built fresh
// per turn, never persisted.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is a single question with optional session history.
type AskRequest struct {
	Query   string             `json:"query"`
	History []ConversationTurn `json:"history,omitempty"`
	K       int                `json:"k,omitempty"`
}

// Validate checks the request and applies the default result count.
func (r *AskRequest) Validate(defaultK, maxK int) error {
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.K == 0 {
		r.K = defaultK
	}
	if r.K > maxK {
		r.K = maxK
	}
	return nil
}

// AskResponse is the answer plus the retrieval provenance used to ground it.
type AskResponse struct {
	Answer      string             `json:"answer"`
	IsRTL       bool               `json:"is_rtl"`
	Results     []*RetrievalResult `json:"results"`
	QueryTimeMS int64              `json:"query_time_ms"`
}
