package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rmcgee/healthdash/internal/healthapi"
)

// ErrNoSnapshot indicates no snapshot has been persisted for the
// (collection, range) pair.
var ErrNoSnapshot = fmt.Errorf("no snapshot stored")

// SaveSnapshot persists the last successful payload for a collection and
// date range, replacing any previous snapshot for the same key.
func (s *Store) SaveSnapshot(ctx context.Context, collection string, r healthapi.DateRange, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (collection, start_date, end_date, payload, fetched_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (collection, start_date, end_date)
		DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		collection, r.StartDate, r.EndDate, string(payload))
	if err != nil {
		return fmt.Errorf("saving snapshot %q: %w", collection, err)
	}
	return nil
}

// LoadSnapshot returns the persisted payload and fetch time for a collection
// and date range, or ErrNoSnapshot.
func (s *Store) LoadSnapshot(ctx context.Context, collection string, r healthapi.DateRange) ([]byte, time.Time, error) {
	var payload string
	var fetchedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, fetched_at FROM snapshots
		WHERE collection = ? AND start_date = ? AND end_date = ?`,
		collection, r.StartDate, r.EndDate).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("loading snapshot %q: %w", collection, err)
	}
	return []byte(payload), fetchedAt, nil
}
