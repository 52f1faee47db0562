package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"contentsearch/internal/domain"
	"contentsearch/internal/metrics"
)

// SearchService routes queries between the full-text index and the durable
// store. Keyword searches prefer the index; everything falls back to the
// store, so index failures are invisible to callers.
type SearchService struct {
	repo    ContentRepository
	index   SearchIndex
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewSearchService(
	repo ContentRepository,
	index SearchIndex,
	collector *metrics.Collector,
	logger *slog.Logger,
) *SearchService {
	return &SearchService{
		repo:    repo,
		index:   index,
		metrics: collector,
		logger:  logger.With("component", "search"),
	}
}

// Search serves one query. The availability probe runs fresh per request;
// there is no sticky circuit state.
func (s *SearchService) Search(ctx context.Context, filter domain.SearchFilter) (*domain.SearchResult, error) {
	items, total, err := s.route(ctx, filter)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []domain.Content{}
	}

	return &domain.SearchResult{
		Items:      items,
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: domain.TotalPages(total, filter.PageSize),
	}, nil
}

func (s *SearchService) route(ctx context.Context, filter domain.SearchFilter) ([]domain.Content, int, error) {
	// The index is keyword-search-only; browsing goes straight to the store.
	if strings.TrimSpace(filter.Keyword) == "" {
		return s.repo.Search(ctx, filter)
	}

	if !s.index.IsAvailable(ctx) {
		s.logger.Warn("search index unavailable, falling back to store", "keyword", filter.Keyword)
		s.metrics.SearchFellBack()
		return s.repo.Search(ctx, filter)
	}

	items, total, err := s.index.Search(ctx, filter)
	if err != nil {
		s.logger.Warn("index search failed, falling back to store",
			"keyword", filter.Keyword,
			"error", err,
		)
		s.metrics.SearchFellBack()
		return s.repo.Search(ctx, filter)
	}

	return items, total, nil
}

// GetContent returns one item by id, domain.ErrContentNotFound when absent.
func (s *SearchService) GetContent(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrContentNotFound
	}
	return c, nil
}
