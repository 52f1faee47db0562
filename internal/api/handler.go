// Package api exposes the HTTP surface: search, lookup, manual sync,
// health and metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"contentsearch/internal/domain"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// Searcher serves search queries and single-item lookups.
type Searcher interface {
	Search(ctx context.Context, filter domain.SearchFilter) (*domain.SearchResult, error)
	GetContent(ctx context.Context, id uuid.UUID) (*domain.Content, error)
}

// Syncer runs a blocking sync pass.
type Syncer interface {
	SyncAll(ctx context.Context) (*domain.SyncReport, error)
}

type Handler struct {
	searcher Searcher
	syncer   Syncer
	logger   *slog.Logger
}

func NewHandler(searcher Searcher, syncer Syncer, logger *slog.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		syncer:   syncer,
		logger:   logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.searcher.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("search failed", "keyword", filter.Keyword, "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetContent handles GET /api/contents/{id}.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid content id")
		return
	}

	content, err := h.searcher.GetContent(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			writeError(w, http.StatusNotFound, "content not found")
			return
		}
		h.logger.Error("content lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "content lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, content)
}

// Sync handles GET and POST /api/providers/sync. It blocks until the
// pass finishes so the response carries the real item count.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncer.SyncAll(r.Context())
	if err != nil {
		h.logger.Error("manual sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseSearchFilter(r *http.Request) (domain.SearchFilter, error) {
	q := r.URL.Query()

	filter := domain.SearchFilter{
		Keyword:  q.Get("keyword"),
		Type:     domain.ParseContentType(q.Get("type")),
		SortBy:   domain.ParseSortBy(q.Get("sort")),
		Page:     1,
		PageSize: defaultPageSize,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return domain.SearchFilter{}, errors.New("page must be a positive integer")
		}
		filter.Page = page
	}

	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return domain.SearchFilter{}, errors.New("page_size must be a positive integer")
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		filter.PageSize = size
	}

	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
