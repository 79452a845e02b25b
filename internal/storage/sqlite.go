// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/askksa/askksa/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		source_url TEXT,
		scraped_at TIMESTAMP,
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		title TEXT NOT NULL,
		source_url TEXT,
		scraped_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_article_id ON chunks(article_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_article_chunk ON chunks(article_id, chunk_index);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		label TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_feedback_session ON feedback(session_id, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// nullTime maps a zero time to NULL for optional timestamp columns.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// CreateArticle inserts an article.
func (s *SQLiteStorage) CreateArticle(ctx context.Context, article *models.Article) error {
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (id, title, source_url, scraped_at, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		article.ID, article.Title, article.SourceURL, nullTime(article.ScrapedAt),
		article.Content, article.CreatedAt, article.UpdatedAt,
	)
	return err
}

// GetArticle returns an article by ID.
func (s *SQLiteStorage) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	var scrapedAt sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, source_url, scraped_at, content, created_at, updated_at
		 FROM articles WHERE id = ?`, id,
	).Scan(&article.ID, &article.Title, &article.SourceURL, &scrapedAt,
		&article.Content, &article.CreatedAt, &article.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	if scrapedAt.Valid {
		article.ScrapedAt = scrapedAt.Time
	}
	return &article, nil
}

// DeleteArticle removes an article by ID.
func (s *SQLiteStorage) DeleteArticle(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

// ListArticles returns articles with offset and limit, newest first.
func (s *SQLiteStorage) ListArticles(ctx context.Context, offset, limit int) ([]*models.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, source_url, scraped_at, content, created_at, updated_at
		 FROM articles ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		var article models.Article
		var scrapedAt sql.NullTime
		if err := rows.Scan(&article.ID, &article.Title, &article.SourceURL, &scrapedAt,
			&article.Content, &article.CreatedAt, &article.UpdatedAt); err != nil {
			return nil, err
		}
		if scrapedAt.Valid {
			article.ScrapedAt = scrapedAt.Time
		}
		articles = append(articles, &article)
	}
	return articles, rows.Err()
}

// GetChunk returns a chunk with its provenance metadata by ID.
func (s *SQLiteStorage) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	var chunk models.Chunk
	var scrapedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, article_id, content, chunk_index, title, source_url, scraped_at, created_at
		 FROM chunks WHERE id = ?`, id,
	).Scan(&chunk.ID, &chunk.ArticleID, &chunk.Content, &chunk.ChunkIndex,
		&chunk.Title, &chunk.SourceURL, &scrapedAt, &chunk.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	if scrapedAt.Valid {
		chunk.ScrapedAt = scrapedAt.Time
	}
	return &chunk, nil
}

// GetChunksByArticleID returns all chunks for an article ordered by chunk_index.
func (s *SQLiteStorage) GetChunksByArticleID(ctx context.Context, articleID string) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, article_id, content, chunk_index, title, source_url, scraped_at, created_at
		 FROM chunks WHERE article_id = ? ORDER BY chunk_index`,
		articleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		var scrapedAt sql.NullTime
		if err := rows.Scan(&chunk.ID, &chunk.ArticleID, &chunk.Content, &chunk.ChunkIndex,
			&chunk.Title, &chunk.SourceURL, &scrapedAt, &chunk.CreatedAt); err != nil {
			return nil, err
		}
		if scrapedAt.Valid {
			chunk.ScrapedAt = scrapedAt.Time
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

// BatchCreateChunks inserts multiple chunks in a transaction.
func (s *SQLiteStorage) BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, article_id, content, chunk_index, title, source_url, scraped_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, chunk := range chunks {
		chunk.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.ArticleID, chunk.Content, chunk.ChunkIndex,
			chunk.Title, chunk.SourceURL, nullTime(chunk.ScrapedAt), chunk.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteChunksByArticleID removes all chunks for an article.
func (s *SQLiteStorage) DeleteChunksByArticleID(ctx context.Context, articleID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE article_id = ?`, articleID)
	return err
}

// AppendFeedback appends one feedback entry. Entries are never updated or deleted.
func (s *SQLiteStorage) AppendFeedback(ctx context.Context, fb *models.Feedback) error {
	fb.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (id, session_id, question, answer, label, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.SessionID, fb.Question, fb.Answer, fb.Label, fb.CreatedAt,
	)
	return err
}

// ListFeedbackBySession returns the feedback log for one session in append order.
func (s *SQLiteStorage) ListFeedbackBySession(ctx context.Context, sessionID string) ([]*models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, question, answer, label, created_at
		 FROM feedback WHERE session_id = ? ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.Feedback
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.SessionID, &fb.Question, &fb.Answer, &fb.Label, &fb.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &fb)
	}
	return entries, rows.Err()
}

// CountArticles returns the total number of articles.
func (s *SQLiteStorage) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
