package store

import (
	"context"
	"fmt"
	"time"
)

// SeedStore keeps spotlight session seeds in the sqlite database so a
// session's order survives across separate CLI runs. Entries expire after
// ttl; a zero ttl keeps them until deleted.
type SeedStore struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

// NewSeedStore returns a seed store backed by db.
func NewSeedStore(db *DB, ttl time.Duration) *SeedStore {
	return &SeedStore{db: db, ttl: ttl, now: time.Now}
}

// GetOrCreate stores candidate unless the session already holds an unexpired
// seed, then returns whichever seed is stored.
func (s *SeedStore) GetOrCreate(ctx context.Context, sessionID string, candidate int64) (int64, error) {
	now := s.now().UTC()
	var expires any
	if s.ttl > 0 {
		expires = formatTime(now.Add(s.ttl))
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO session_seeds (session_id, seed, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET seed = excluded.seed, expires_at = excluded.expires_at
		 WHERE session_seeds.expires_at IS NOT NULL AND session_seeds.expires_at <= ?`,
		sessionID, candidate, expires, formatTime(now),
	); err != nil {
		return 0, fmt.Errorf("storing seed for session %s: %w", sessionID, err)
	}

	var seed int64
	if err := tx.QueryRowContext(ctx,
		"SELECT seed FROM session_seeds WHERE session_id = ?", sessionID).Scan(&seed); err != nil {
		return 0, fmt.Errorf("reading seed for session %s: %w", sessionID, err)
	}
	return seed, tx.Commit()
}

// Sweep deletes expired seeds and reports how many were removed.
func (s *SeedStore) Sweep(ctx context.Context) (int, error) {
	res, err := s.db.conn.ExecContext(ctx,
		"DELETE FROM session_seeds WHERE expires_at IS NOT NULL AND expires_at <= ?",
		formatTime(s.now().UTC()))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
