// Package chi exposes the engine over HTTP: collection lifecycle, document
// mutation, search, commit control, and health.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
	"github.com/kailas-cloud/textdex/internal/engine"
	"github.com/kailas-cloud/textdex/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the engine.
type Server struct {
	engine        *engine.Engine
	logger        *zap.Logger
	limits        request.Limits
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. Zero-valued limits fall back to the
// package pagination defaults.
func NewServer(eng *engine.Engine, logger *zap.Logger, limits request.Limits) *Server {
	s := &Server{
		engine: eng,
		logger: logger,
		limits: limits,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "collection_not_found"),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, "collection_already_exists"),
		sentinelHandler(domain.ErrSchema, http.StatusBadRequest, "schema_violation"),
		sentinelHandler(domain.ErrQuery, http.StatusBadRequest, "invalid_query"),
		sentinelHandler(domain.ErrConfig, http.StatusBadRequest, "invalid_config"),
	}
	return s
}

// Routes mounts every API endpoint on the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/collections", func(r chi.Router) {
			r.Post("/", s.createCollection)
			r.Get("/", s.listCollections)
			r.Route("/{collection}", func(r chi.Router) {
				r.Get("/", s.getCollection)
				r.Delete("/", s.dropCollection)
				r.Get("/stats", s.collectionStats)
				r.Post("/commit", s.commitCollection)
				r.Post("/search", s.search)
				r.Route("/documents", func(r chi.Router) {
					r.Post("/", s.addDocument)
					r.Put("/{id}", s.upsertDocument)
					r.Delete("/{id}", s.deleteDocument)
				})
			})
		})
		r.Post("/commit", s.commitAll)
		r.Get("/stats", s.allStats)
		r.Patch("/config", s.updateConfig)
	})
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// createCollection handles POST /api/v1/collections.
func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	fields, err := fieldsFromDTO(req.Fields)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	def, err := schema.NewDefinition(req.Name, fields, req.PrimaryKey)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if err := s.engine.CreateCollection(def); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collectionToDTO(def))
}

// listCollections handles GET /api/v1/collections.
func (s *Server) listCollections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, collectionListResponse{Items: s.engine.ListCollections()})
}

// getCollection handles GET /api/v1/collections/{collection}.
func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	c, err := s.engine.Collection(chi.URLParam(r, "collection"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionToDTO(c.Schema()))
}

// dropCollection handles DELETE /api/v1/collections/{collection}.
func (s *Server) dropCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DropCollection(chi.URLParam(r, "collection")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addDocument handles POST /api/v1/collections/{collection}/documents.
func (s *Server) addDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	s.stageDocument(w, chi.URLParam(r, "collection"), req.ID, req.Fields, http.StatusCreated)
}

// upsertDocument handles PUT /api/v1/collections/{collection}/documents/{id}.
func (s *Server) upsertDocument(w http.ResponseWriter, r *http.Request) {
	var req upsertDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	s.stageDocument(w, chi.URLParam(r, "collection"), chi.URLParam(r, "id"), req.Fields, http.StatusAccepted)
}

func (s *Server) stageDocument(w http.ResponseWriter, collection, id string, fields map[string]valueDTO, okStatus int) {
	values, err := fieldValuesFromDTO(fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	doc, err := document.New(id, values)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.engine.AddDocument(collection, doc); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(okStatus)
}

// deleteDocument handles DELETE /api/v1/collections/{collection}/documents/{id}.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	err := s.engine.DeleteDocument(chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// search handles POST /api/v1/collections/{collection}/search.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var dto searchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	req, err := searchRequestFromDTO(chi.URLParam(r, "collection"), dto, s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.engine.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResultToDTO(res))
}

// commitCollection handles POST /api/v1/collections/{collection}/commit.
func (s *Server) commitCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Commit(chi.URLParam(r, "collection")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// commitAll handles POST /api/v1/commit.
func (s *Server) commitAll(w http.ResponseWriter, _ *http.Request) {
	if err := s.engine.CommitAll(); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// collectionStats handles GET /api/v1/collections/{collection}/stats.
func (s *Server) collectionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(chi.URLParam(r, "collection"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToDTO(stats))
}

// allStats handles GET /api/v1/stats.
func (s *Server) allStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.AllStats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]statsResponse, 0, len(stats))
	for _, st := range stats {
		items = append(items, statsToDTO(st))
	}
	writeJSON(w, http.StatusOK, allStatsResponse{Items: items})
}

// updateConfig handles PATCH /api/v1/config.
func (s *Server) updateConfig(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	cfg := s.engine.Config()
	cfg.CommitInterval = time.Duration(req.CommitIntervalMs) * time.Millisecond
	if err := s.engine.UpdateConfig(cfg); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	h := s.engine.Health()

	cols := make([]healthCollectionDTO, 0, len(h.Collections))
	for _, c := range h.Collections {
		cols = append(cols, healthCollectionDTO{
			Name:           c.Name,
			Status:         c.Status,
			DocumentCount:  c.DocumentCount,
			IndexSizeBytes: c.IndexSizeBytes,
		})
	}

	httpStatus := http.StatusOK
	if h.Status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status:      h.Status,
		Collections: cols,
		UptimeMs:    h.UptimeMillis,
		Version:     version.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrSchema,
		domain.ErrQuery,
		domain.ErrSearch,
		domain.ErrConfig,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
