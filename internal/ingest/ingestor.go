package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askksa/askksa/internal/config"
	"github.com/askksa/askksa/internal/corpus"
	"github.com/askksa/askksa/internal/embedding"
	"github.com/askksa/askksa/internal/keyword"
	"github.com/askksa/askksa/internal/models"
	"github.com/askksa/askksa/internal/storage"
	"github.com/askksa/askksa/internal/vector"
)

// Ingestor stores, chunks, embeds, and indexes corpus articles.
type Ingestor struct {
	storage      storage.Storage
	embedder     embedding.Embedder
	vectorIndex  vector.Index
	keywordIndex keyword.Index
	chunker      *Chunker
	extractor    *corpus.Extractor
	extensions   []string
	logger       *zap.Logger

	mu       sync.Mutex
	pathToID map[string]string // ingested file path -> article ID
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(ing *Ingestor) { ing.logger = l }
}

// NewIngestor creates an ingestor with the given dependencies.
func NewIngestor(
	store storage.Storage,
	embedder embedding.Embedder,
	vectorIndex vector.Index,
	keywordIndex keyword.Index,
	cfg *config.CorpusConfig,
	opts ...Option,
) *Ingestor {
	ing := &Ingestor{
		storage:      store,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		chunker:      NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		extractor:    corpus.NewExtractor(),
		extensions:   cfg.Extensions,
		pathToID:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// IngestDocument stores a parsed document as an article with embedded chunks.
// An existing article with the same ID is fully replaced. The article ID is
// the slug of the title, or a random ID when the title yields no slug.
func (ing *Ingestor) IngestDocument(ctx context.Context, doc *corpus.Document) (string, error) {
	articleID := Slug(doc.Title)
	if articleID == "" {
		articleID = uuid.New().String()
	}

	// Replace on re-ingest: drop the previous version everywhere first.
	if err := ing.DeleteArticle(ctx, articleID); err != nil {
		return "", fmt.Errorf("failed to replace article %s: %w", articleID, err)
	}

	body := Preprocess(doc.Body)
	article := &models.Article{
		ID:        articleID,
		Title:     doc.Title,
		SourceURL: doc.SourceURL,
		ScrapedAt: doc.ScrapedAt,
		Content:   body,
	}
	if err := ing.storage.CreateArticle(ctx, article); err != nil {
		return "", fmt.Errorf("failed to store article: %w", err)
	}

	texts := ing.chunker.Chunk(articleID, body)
	if len(texts) == 0 {
		texts = []string{body}
	}
	embeddings, err := ing.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return "", fmt.Errorf("failed to generate embeddings: %w", err)
	}

	chunks := make([]*models.Chunk, len(texts))
	ids := make([]string, len(texts))
	for i, text := range texts {
		ids[i] = ChunkID(articleID, i)
		chunks[i] = &models.Chunk{
			ID:         ids[i],
			ArticleID:  articleID,
			Content:    text,
			ChunkIndex: i,
			Title:      doc.Title,
			SourceURL:  doc.SourceURL,
			ScrapedAt:  doc.ScrapedAt,
			Embedding:  embeddings[i],
		}
	}
	if err := ing.storage.BatchCreateChunks(ctx, chunks); err != nil {
		return "", fmt.Errorf("failed to store chunks: %w", err)
	}
	if err := ing.vectorIndex.Add(ctx, ids, embeddings); err != nil {
		return "", fmt.Errorf("failed to index vectors: %w", err)
	}
	if ing.keywordIndex != nil {
		if err := ing.keywordIndex.Index(ctx, article); err != nil {
			return "", fmt.Errorf("failed to index keywords: %w", err)
		}
	}
	if ing.logger != nil {
		ing.logger.Debug("article ingested",
			zap.String("article_id", articleID),
			zap.Int("chunks", len(chunks)))
	}
	return articleID, nil
}

// IngestFile extracts, parses, and ingests a single corpus file.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(ing.extensions) > 0 && !extensionAllowed(ext, ing.extensions) {
		return "", fmt.Errorf("extension %q not in allowed list", ext)
	}
	text, err := ing.extractor.Extract(absPath)
	if err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}
	doc := corpus.ParseDocument(text, absPath)
	articleID, err := ing.IngestDocument(ctx, doc)
	if err != nil {
		return "", err
	}
	ing.mu.Lock()
	ing.pathToID[absPath] = articleID
	ing.mu.Unlock()
	return articleID, nil
}

// IngestDirectory walks dir and ingests every regular file with an allowed
// extension. Returns the number of files ingested and the first error.
func (ing *Ingestor) IngestDirectory(ctx context.Context, dir string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	n := 0
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(ing.extensions) > 0 && !extensionAllowed(ext, ing.extensions) {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		if _, ingestErr := ing.IngestFile(ctx, path); ingestErr != nil {
			return ingestErr
		}
		n++
		return nil
	})
	return n, err
}

// DeleteArticle removes an article and its chunks from storage and both
// indices. Missing articles are not an error.
func (ing *Ingestor) DeleteArticle(ctx context.Context, articleID string) error {
	chunks, err := ing.storage.GetChunksByArticleID(ctx, articleID)
	if err != nil {
		return fmt.Errorf("failed to load chunks: %w", err)
	}
	if len(chunks) > 0 {
		ids := make([]string, len(chunks))
		for i, ch := range chunks {
			ids[i] = ch.ID
		}
		if err := ing.vectorIndex.Remove(ctx, ids); err != nil {
			return fmt.Errorf("failed to remove vectors: %w", err)
		}
	}
	if err := ing.storage.DeleteChunksByArticleID(ctx, articleID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := ing.storage.DeleteArticle(ctx, articleID); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if ing.keywordIndex != nil {
		if err := ing.keywordIndex.Delete(ctx, articleID); err != nil {
			return fmt.Errorf("failed to delete keywords: %w", err)
		}
	}
	return nil
}

// RemoveFile removes the article previously ingested from path. Falls back
// to the file name slug when the path was never seen in this process.
func (ing *Ingestor) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ing.mu.Lock()
	articleID, ok := ing.pathToID[absPath]
	if ok {
		delete(ing.pathToID, absPath)
	}
	ing.mu.Unlock()
	if !ok {
		base := filepath.Base(absPath)
		articleID = Slug(strings.TrimSuffix(base, filepath.Ext(base)))
		if articleID == "" {
			return nil
		}
	}
	if err := ing.DeleteArticle(ctx, articleID); err != nil {
		return err
	}
	if ing.logger != nil {
		ing.logger.Debug("article removed",
			zap.String("path", absPath),
			zap.String("article_id", articleID))
	}
	return nil
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}
