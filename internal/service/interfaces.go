package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks
//go:generate mockgen -destination=mocks/provider_mocks.go -package=mocks contentsearch/internal/provider Provider

import (
	"context"
	"time"

	"github.com/google/uuid"

	"contentsearch/internal/domain"
	"contentsearch/internal/provider"
)

// Registry enumerates and resolves the registered content providers.
type Registry interface {
	Get(name string) (provider.Provider, error)
	All() []provider.Provider
}

// Scorer computes the ranking score of a content item.
type Scorer interface {
	Score(c *domain.Content, reference time.Time) float64
	ScoreNow(c *domain.Content) float64
}

// ContentRepository is the durable-store boundary. UpsertMany is keyed by
// (source_provider, external_id) and either fully succeeds or fails.
type ContentRepository interface {
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Content, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error)
	UpsertMany(ctx context.Context, contents []domain.Content) error
}

// SearchIndex is the full-text index boundary. The index is a disposable
// projection of the store; indexing is best-effort.
type SearchIndex interface {
	IndexMany(ctx context.Context, contents []domain.Content) error
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Content, int, error)
	IsAvailable(ctx context.Context) bool
}

// EventPublisher announces a completed sync pass on the event bus.
type EventPublisher interface {
	PublishSynced(ctx context.Context, report domain.SyncReport) error
}

// SyncStateStore persists per-pass bookkeeping.
type SyncStateStore interface {
	Get(ctx context.Context) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}
