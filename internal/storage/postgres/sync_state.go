package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"contentsearch/internal/domain"
)

// SyncStateStore keeps a single bookkeeping row for the sync pipeline.
type SyncStateStore struct {
	db *sqlx.DB
}

func NewSyncStateStore(db *sqlx.DB) *SyncStateStore {
	return &SyncStateStore{db: db}
}

func (s *SyncStateStore) Get(ctx context.Context) (*domain.SyncState, error) {
	var state domain.SyncState
	query := `
		SELECT id, last_synced_at, last_count, total_synced
		FROM sync_state
		WHERE id = 1`

	err := s.db.GetContext(ctx, &state, query)
	if err == sql.ErrNoRows {
		return &domain.SyncState{ID: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	return &state, nil
}

func (s *SyncStateStore) Update(ctx context.Context, state *domain.SyncState) error {
	query := `
		INSERT INTO sync_state (id, last_synced_at, last_count, total_synced)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at,
			last_count = EXCLUDED.last_count,
			total_synced = EXCLUDED.total_synced`

	_, err := s.db.ExecContext(ctx, query,
		state.LastSyncedAt,
		state.LastCount,
		state.TotalSynced,
	)
	return err
}
