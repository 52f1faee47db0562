package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"contentsearch/internal/domain"
	"contentsearch/internal/service"
)

// Key prefixes are shared with the invalidation consumer, which drops
// both namespaces when a sync-completion event arrives.
const (
	SearchKeyPrefix  = "contentsearch:search:"
	ContentKeyPrefix = "contentsearch:content:"
)

// cachedSearchPage is the cached shape of one search page.
type cachedSearchPage struct {
	Items []domain.Content `json:"items"`
	Total int              `json:"total"`
}

// CachedContentRepository is a cache-aside decorator over a content
// repository. Cache failures never fail the request: a read error is
// treated as a miss and a write error is logged and dropped.
type CachedContentRepository struct {
	inner      service.ContentRepository
	cache      *Cache
	searchTTL  time.Duration
	contentTTL time.Duration
	logger     *slog.Logger
}

func NewCachedContentRepository(
	inner service.ContentRepository,
	cache *Cache,
	searchTTL, contentTTL time.Duration,
	logger *slog.Logger,
) *CachedContentRepository {
	return &CachedContentRepository{
		inner:      inner,
		cache:      cache,
		searchTTL:  searchTTL,
		contentTTL: contentTTL,
		logger:     logger,
	}
}

func (r *CachedContentRepository) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Content, int, error) {
	key := searchKey(filter)

	if data, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var page cachedSearchPage
		if err := json.Unmarshal(data, &page); err == nil {
			return page.Items, page.Total, nil
		}
		r.logger.Warn("cache entry corrupted", "key", key)
	}

	items, total, err := r.inner.Search(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if data, err := json.Marshal(cachedSearchPage{Items: items, Total: total}); err == nil {
		if err := r.cache.Set(ctx, key, data, r.searchTTL); err != nil {
			r.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}

	return items, total, nil
}

func (r *CachedContentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	key := ContentKeyPrefix + id.String()

	if data, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var content domain.Content
		if err := json.Unmarshal(data, &content); err == nil {
			return &content, nil
		}
		r.logger.Warn("cache entry corrupted", "key", key)
	}

	content, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Missing contents are not cached so a later sync is visible immediately.
	if content != nil {
		if data, err := json.Marshal(content); err == nil {
			if err := r.cache.Set(ctx, key, data, r.contentTTL); err != nil {
				r.logger.Warn("cache write failed", "key", key, "error", err)
			}
		}
	}

	return content, nil
}

// UpsertMany passes through to the inner repository unchanged. The
// decorator never invalidates; that is driven by the sync-completion
// event through the invalidation consumer, so stale entries at most
// live out their TTL if the event is lost.
func (r *CachedContentRepository) UpsertMany(ctx context.Context, contents []domain.Content) error {
	return r.inner.UpsertMany(ctx, contents)
}

func searchKey(filter domain.SearchFilter) string {
	contentType := "any"
	if filter.Type != nil {
		contentType = string(*filter.Type)
	}
	return fmt.Sprintf("%s%s:%s:%s:%d:%d",
		SearchKeyPrefix,
		strings.ToLower(strings.TrimSpace(filter.Keyword)),
		contentType,
		filter.SortBy,
		filter.Page,
		filter.PageSize,
	)
}
