package store

import (
	"context"
	"database/sql"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// UpsertConnection records a connection request or updates its status.
func (db *DB) UpsertConnection(ctx context.Context, c chapter.Connection) error {
	return upsertConnection(ctx, db.conn, c)
}

func upsertConnection(ctx context.Context, q querier, c chapter.Connection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO connections (requester_id, recipient_id, status, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(requester_id, recipient_id) DO UPDATE SET status = excluded.status`,
		c.RequesterID, c.RecipientID, string(c.Status), formatTime(c.CreatedAt),
	)
	return err
}

// ListConnections returns every connection the member is on either end of,
// whatever its status.
func (db *DB) ListConnections(ctx context.Context, memberID string) ([]chapter.Connection, error) {
	return db.queryConnections(ctx,
		`SELECT requester_id, recipient_id, status, created_at FROM connections
		 WHERE requester_id = ? OR recipient_id = ?
		 ORDER BY created_at, requester_id, recipient_id`,
		memberID, memberID)
}

// ListChapterConnections returns all connections whose requester belongs to
// the chapter.
func (db *DB) ListChapterConnections(ctx context.Context, chapterID string) ([]chapter.Connection, error) {
	return db.queryConnections(ctx,
		`SELECT c.requester_id, c.recipient_id, c.status, c.created_at
		 FROM connections c JOIN members m ON m.id = c.requester_id
		 WHERE m.chapter_id = ?
		 ORDER BY c.created_at, c.requester_id, c.recipient_id`,
		chapterID)
}

// CountPendingConnections returns how many requests in the chapter are still
// waiting on the recipient.
func (db *DB) CountPendingConnections(ctx context.Context, chapterID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM connections c JOIN members m ON m.id = c.recipient_id
		 WHERE m.chapter_id = ? AND c.status = ?`,
		chapterID, string(chapter.ConnectionPending),
	).Scan(&n)
	return n, err
}

func (db *DB) queryConnections(ctx context.Context, query string, args ...any) ([]chapter.Connection, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var conns []chapter.Connection
	for rows.Next() {
		var c chapter.Connection
		var status string
		var created sql.NullString
		if err := rows.Scan(&c.RequesterID, &c.RecipientID, &status, &created); err != nil {
			return nil, err
		}
		c.Status = chapter.ConnectionStatus(status)
		c.CreatedAt = parseTime(created)
		conns = append(conns, c)
	}
	return conns, rows.Err()
}
