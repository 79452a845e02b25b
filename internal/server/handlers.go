package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askksa/askksa/internal/corpus"
	"github.com/askksa/askksa/internal/models"
	"github.com/askksa/askksa/internal/rag"
)

// Error kinds in responses, one per entry in the pipeline's error taxonomy.
// Clients render a distinct state per kind; "no context found" is a normal
// answer, not an error.
const (
	errKindInvalidArgument     = "invalid_argument"
	errKindResourceUnavailable = "resource_unavailable"
	errKindGenerationFailed    = "generation_failed"
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondErrorKind(w, http.StatusBadRequest, errKindInvalidArgument, "invalid request body")
		return
	}
	if err := req.Validate(s.config.Chat.DefaultK, s.config.Chat.MaxK); err != nil {
		s.respondErrorKind(w, http.StatusBadRequest, errKindInvalidArgument, err.Error())
		return
	}
	s.logger.Debug("ask request", zap.Int("k", req.K), zap.Int("history", len(req.History)))

	start := time.Now()
	answer, isRTL, results, err := s.engine.Answer(r.Context(), req.Query, req.History, req.K)
	if err != nil {
		s.logger.Error("answer failed", zap.Error(err))
		switch {
		case errors.Is(err, rag.ErrInvalidArgument):
			s.respondErrorKind(w, http.StatusBadRequest, errKindInvalidArgument, err.Error())
		case errors.Is(err, rag.ErrResourceUnavailable):
			s.respondErrorKind(w, http.StatusServiceUnavailable, errKindResourceUnavailable, err.Error())
		case errors.Is(err, rag.ErrGenerationFailed):
			s.respondErrorKind(w, http.StatusBadGateway, errKindGenerationFailed, err.Error())
		default:
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.respondJSON(w, http.StatusOK, &models.AskResponse{
		Answer:      answer,
		IsRTL:       isRTL,
		Results:     results,
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var input models.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Title == "" || input.Content == "" {
		s.respondError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	s.logger.Debug("create article request", zap.String("title", input.Title))

	id, err := s.ingestor.IngestDocument(r.Context(), &corpus.Document{
		Title:     input.Title,
		SourceURL: input.SourceURL,
		ScrapedAt: input.ScrapedAt,
		Body:      input.Content,
	})
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id, "status": "ingested"})
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	articles, err := s.storage.ListArticles(r.Context(), offset, limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if articles == nil {
		articles = []*models.Article{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, err := s.storage.GetArticle(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "article not found")
		return
	}
	s.respondJSON(w, http.StatusOK, article)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete article request", zap.String("id", id))
	if err := s.ingestor.DeleteArticle(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := queryInt(r, "limit", 20)
	hits, err := s.keywordIndex.Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"query": query, "hits": hits})
}

type feedbackRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Label     string `json:"label"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		s.respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Label != models.FeedbackHelpful && req.Label != models.FeedbackNotHelpful {
		s.respondError(w, http.StatusBadRequest, "label must be helpful or not_helpful")
		return
	}
	fb := &models.Feedback{
		ID:        uuid.New().String(),
		SessionID: req.SessionID,
		Question:  req.Question,
		Answer:    req.Answer,
		Label:     req.Label,
	}
	if err := s.storage.AppendFeedback(r.Context(), fb); err != nil {
		s.logger.Error("feedback append failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": fb.ID, "status": "recorded"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	articleCount, err := s.storage.CountArticles(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.storage.CountChunks(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"articles": articleCount,
		"chunks":   chunkCount,
		"config": map[string]any{
			"embedding_provider":   s.config.Embedding.Provider,
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"generation_model":     s.config.Generation.Model,
			"chunk_size":           s.config.Corpus.ChunkSize,
			"chunk_overlap":        s.config.Corpus.ChunkOverlap,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) respondErrorKind(w http.ResponseWriter, status int, kind, message string) {
	s.respondJSON(w, status, map[string]string{"error": message, "error_kind": kind})
}
