// Package server provides the HTTP API for AskKSA.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/askksa/askksa/internal/config"
	"github.com/askksa/askksa/internal/ingest"
	"github.com/askksa/askksa/internal/keyword"
	"github.com/askksa/askksa/internal/rag"
	"github.com/askksa/askksa/internal/storage"
)

// Server is the HTTP server for the AskKSA API.
type Server struct {
	engine       *rag.Engine
	ingestor     *ingest.Ingestor
	storage      storage.Storage
	keywordIndex keyword.Index
	config       *config.Config
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *rag.Engine,
	ingestor *ingest.Ingestor,
	store storage.Storage,
	keywordIndex keyword.Index,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:       engine,
		ingestor:     ingestor,
		storage:      store,
		keywordIndex: keywordIndex,
		config:       cfg,
		logger:       logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/ask", s.handleAsk)
	r.Post("/api/v1/articles", s.handleCreateArticle)
	r.Get("/api/v1/articles", s.handleListArticles)
	r.Get("/api/v1/articles/{id}", s.handleGetArticle)
	r.Delete("/api/v1/articles/{id}", s.handleDeleteArticle)
	r.Get("/api/v1/search", s.handleKeywordSearch)
	r.Post("/api/v1/feedback", s.handleFeedback)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
