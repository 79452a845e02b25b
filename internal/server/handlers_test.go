package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/askksa/askksa/internal/config"
	"github.com/askksa/askksa/internal/embedding"
	"github.com/askksa/askksa/internal/ingest"
	"github.com/askksa/askksa/internal/keyword"
	"github.com/askksa/askksa/internal/llm"
	"github.com/askksa/askksa/internal/models"
	"github.com/askksa/askksa/internal/rag"
	"github.com/askksa/askksa/internal/storage"
	"github.com/askksa/askksa/internal/vector"
)

func newTestServer(t *testing.T, gen llm.Generator) (*Server, *ingest.Ingestor) {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	idx, err := vector.NewFlatIndex(64)
	if err != nil {
		t.Fatalf("NewFlatIndex() error = %v", err)
	}
	kw, err := keyword.NewBleveIndex(filepath.Join(dir, "keyword.bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex() error = %v", err)
	}
	t.Cleanup(func() { kw.Close() })

	embedder := embedding.NewMockEmbedder(64)
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Corpus.ChunkSize = 200
	cfg.Corpus.ChunkOverlap = 40

	ingestor := ingest.NewIngestor(store, embedder, idx, kw, &cfg.Corpus)
	retriever := rag.NewRetriever(embedder, idx, store, nil)
	engine := rag.NewEngine(retriever, gen, cfg.Chat.MaxHistoryTurns, nil)

	return NewServer(engine, ingestor, store, kw, cfg, zap.NewNop()), ingestor
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func seedArticle(t *testing.T, router http.Handler) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/articles", models.ArticleInput{
		Title:     "Iqama Renewal Procedure",
		SourceURL: "https://example.sa/iqama-renewal",
		Content:   "To renew an Iqama, log in to Absher and pay the renewal fee.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("seed article: status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleAsk(t *testing.T) {
	gen := llm.NewMockGenerator("Log in to Absher and pay the fee.")
	srv, _ := newTestServer(t, gen)
	router := srv.Router()
	seedArticle(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/ask", models.AskRequest{
		Query: "How do I renew my Iqama?",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.AskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer == "" {
		t.Error("answer must not be empty")
	}
	if resp.IsRTL {
		t.Error("English question must not be RTL")
	}
	if len(resp.Results) == 0 {
		t.Error("results must carry retrieval provenance")
	}
	if resp.Results[0].Rank != 1 {
		t.Errorf("first rank = %d, want 1", resp.Results[0].Rank)
	}
}

func TestHandleAskEmptyQuery(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMockGenerator("unused"))
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/ask", models.AskRequest{Query: ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_argument") {
		t.Errorf("body = %s, want invalid_argument kind", w.Body.String())
	}
}

func TestHandleAskGenerationFailed(t *testing.T) {
	gen := llm.NewMockGenerator("")
	gen.Err = errors.New("quota exceeded")
	srv, _ := newTestServer(t, gen)
	router := srv.Router()
	seedArticle(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/ask", models.AskRequest{Query: "How do I renew my Iqama?"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), "generation_failed") {
		t.Errorf("body = %s, want generation_failed kind", w.Body.String())
	}
}

func TestArticleLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMockGenerator("unused"))
	router := srv.Router()
	seedArticle(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/articles/iqama-renewal-procedure", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var article models.Article
	if err := json.Unmarshal(w.Body.Bytes(), &article); err != nil {
		t.Fatalf("decode article: %v", err)
	}
	if article.SourceURL != "https://example.sa/iqama-renewal" {
		t.Errorf("SourceURL = %q", article.SourceURL)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/articles", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/articles/iqama-renewal-procedure", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/v1/articles/iqama-renewal-procedure", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestHandleKeywordSearch(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMockGenerator("unused"))
	router := srv.Router()
	seedArticle(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/search?q=absher", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Hits []*keyword.Result `json:"hits"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].ID != "iqama-renewal-procedure" {
		t.Errorf("hits = %v, want the seeded article", resp.Hits)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d, want 400", w.Code)
	}
}

func TestHandleFeedback(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMockGenerator("unused"))
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/feedback", map[string]string{
		"session_id": "sess-1",
		"question":   "How do I renew my Iqama?",
		"answer":     "Use Absher.",
		"label":      "helpful",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/feedback", map[string]string{
		"session_id": "sess-1",
		"label":      "amazing",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad label status = %d, want 400", w.Code)
	}
}

func TestHandleStatusAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMockGenerator("unused"))
	router := srv.Router()
	seedArticle(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var status struct {
		Articles int64 `json:"articles"`
		Chunks   int64 `json:"chunks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Articles != 1 || status.Chunks == 0 {
		t.Errorf("status = %+v, want 1 article with chunks", status)
	}

	w = doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}
