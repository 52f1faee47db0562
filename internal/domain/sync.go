package domain

import "time"

// SyncReport describes the outcome of one sync pass. Skipped is set when
// the pass never ran because another one was already in flight.
type SyncReport struct {
	ItemCount int       `json:"item_count"`
	SyncedAt  time.Time `json:"synced_at"`
	Skipped   bool      `json:"skipped"`
}

// SyncState is the persisted bookkeeping row for the sync pipeline.
type SyncState struct {
	ID           int64     `db:"id"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	LastCount    int       `db:"last_count"`
	TotalSynced  int64     `db:"total_synced"`
}
