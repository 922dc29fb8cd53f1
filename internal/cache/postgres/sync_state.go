package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// SyncState implements cache.SyncStateStore using PostgreSQL. One row per
// collection name holds the last-sync watermark gating incremental fetch.
type SyncState struct{ db *DB }

// NewSyncState constructs the watermark store.
func NewSyncState(db *DB) *SyncState { return &SyncState{db: db} }

// LastSync returns the stored watermark for name, 0 if the collection has
// never been synced.
func (s *SyncState) LastSync(ctx context.Context, name string) (int64, error) {
	const q = `SELECT last_sync FROM sync_state WHERE name=$1`
	var v int64
	if err := s.db.Pool.QueryRow(ctx, q, name).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

// SetLastSync advances the watermark for name. The GREATEST guard keeps the
// watermark monotone even under racing passes.
func (s *SyncState) SetLastSync(ctx context.Context, name string, epoch int64) error {
	const q = `
INSERT INTO sync_state (name, last_sync, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE
SET last_sync = GREATEST(sync_state.last_sync, EXCLUDED.last_sync), updated_at = now()`
	_, err := s.db.Pool.Exec(ctx, q, name, epoch)
	return err
}
