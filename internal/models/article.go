// Package models defines core data structures for articles, chunks, and chat turns.
package models

import "time"

// Article is a scraped source article with provenance metadata.
type Article struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	SourceURL string    `json:"source_url,omitempty" db:"source_url"`
	ScrapedAt time.Time `json:"scraped_at,omitempty" db:"scraped_at"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Chunk is an immutable slice of article text, the unit of retrieval.
// Title, SourceURL, and ScrapedAt are copied from the parent article at
// ingestion time so a chunk can be surfaced with provenance on its own.
type Chunk struct {
	ID         string    `json:"id" db:"id"`
	ArticleID  string    `json:"article_id" db:"article_id"`
	Content    string    `json:"content" db:"content"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Title      string    `json:"title" db:"title"`
	SourceURL  string    `json:"source_url,omitempty" db:"source_url"`
	ScrapedAt  time.Time `json:"scraped_at,omitempty" db:"scraped_at"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ArticleInput is the input for ingesting an article via the API.
type ArticleInput struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	SourceURL string    `json:"source_url,omitempty"`
	ScrapedAt time.Time `json:"scraped_at,omitempty"`
	Content   string    `json:"content"`
}
