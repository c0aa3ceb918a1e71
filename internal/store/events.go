package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// CreateEvent inserts an event, assigning an ID when none is set, and returns
// the stored record.
func (db *DB) CreateEvent(ctx context.Context, e chapter.Event) (chapter.Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := insertEvent(ctx, db.conn, e); err != nil {
		return e, err
	}
	return e, nil
}

func insertEvent(ctx context.Context, q querier, e chapter.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO events
		(id, chapter_id, title, category, location, start_at, budget, spent, vendor_id, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 title = excluded.title, category = excluded.category, location = excluded.location,
		 start_at = excluded.start_at, budget = excluded.budget, spent = excluded.spent,
		 vendor_id = excluded.vendor_id`,
		e.ID, e.ChapterID, e.Title, e.Category, e.Location, formatTime(e.StartAt),
		e.Budget, e.Spent, nullable(e.VendorID), e.CreatedBy,
	)
	return err
}

// UpdateSpent sets the actual spend recorded against an event.
func (db *DB) UpdateSpent(ctx context.Context, eventID string, spent float64) error {
	if spent < 0 {
		return chapter.Invalidf("spent must be non-negative")
	}
	res, err := db.conn.ExecContext(ctx, "UPDATE events SET spent = ? WHERE id = ?", spent, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", eventID, chapter.ErrNotFound)
	}
	return nil
}

const eventColumns = "id, chapter_id, title, category, location, start_at, budget, spent, vendor_id, created_by"

func scanEvent(r rowScanner) (chapter.Event, error) {
	var e chapter.Event
	var category, location, start, vendor, createdBy sql.NullString
	if err := r.Scan(&e.ID, &e.ChapterID, &e.Title, &category, &location, &start,
		&e.Budget, &e.Spent, &vendor, &createdBy); err != nil {
		return e, err
	}
	e.Category = category.String
	e.Location = location.String
	e.StartAt = parseTime(start)
	e.VendorID = vendor.String
	e.CreatedBy = createdBy.String
	return e, nil
}

// GetEvent returns an event by ID.
func (db *DB) GetEvent(ctx context.Context, id string) (chapter.Event, error) {
	e, err := scanEvent(db.conn.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return e, fmt.Errorf("event %s: %w", id, chapter.ErrNotFound)
	}
	return e, err
}

// ListEvents returns one page of a chapter's events, soonest first.
func (db *DB) ListEvents(ctx context.Context, chapterID string, p chapter.Page) (chapter.Paged[chapter.Event], error) {
	var total int
	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE chapter_id = ?", chapterID,
	).Scan(&total); err != nil {
		return chapter.Paged[chapter.Event]{}, fmt.Errorf("counting events: %w", err)
	}
	items, err := db.queryEvents(ctx,
		"SELECT "+eventColumns+" FROM events WHERE chapter_id = ? ORDER BY start_at, id LIMIT ? OFFSET ?",
		chapterID, p.Limit, p.Offset())
	if err != nil {
		return chapter.Paged[chapter.Event]{}, err
	}
	return chapter.NewPaged(items, total, p), nil
}

// ListAllEvents returns every event of a chapter for budget aggregation.
func (db *DB) ListAllEvents(ctx context.Context, chapterID string) ([]chapter.Event, error) {
	return db.queryEvents(ctx,
		"SELECT "+eventColumns+" FROM events WHERE chapter_id = ? ORDER BY start_at, id", chapterID)
}

func (db *DB) queryEvents(ctx context.Context, query string, args ...any) ([]chapter.Event, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []chapter.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CreateVendor inserts a vendor contact, assigning an ID when none is set.
func (db *DB) CreateVendor(ctx context.Context, v chapter.VendorContact) (chapter.VendorContact, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return v, insertVendor(ctx, db.conn, v)
}

func insertVendor(ctx context.Context, q querier, v chapter.VendorContact) error {
	if err := v.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO vendor_contacts (id, chapter_id, name, category, email, phone, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name, category = excluded.category, email = excluded.email,
		  phone = excluded.phone, notes = excluded.notes`,
		v.ID, v.ChapterID, v.Name, v.Category, v.Email, v.Phone, v.Notes,
	)
	return err
}

// ListVendors returns a chapter's vendor contacts, optionally limited to one
// category (case-insensitive).
func (db *DB) ListVendors(ctx context.Context, chapterID, category string) ([]chapter.VendorContact, error) {
	query := "SELECT id, chapter_id, name, category, email, phone, notes FROM vendor_contacts WHERE chapter_id = ?"
	args := []any{chapterID}
	if category != "" {
		query += " AND lower(category) = lower(?)"
		args = append(args, category)
	}
	query += " ORDER BY name, id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var vendors []chapter.VendorContact
	for rows.Next() {
		var v chapter.VendorContact
		var cat, email, phone, notes sql.NullString
		if err := rows.Scan(&v.ID, &v.ChapterID, &v.Name, &cat, &email, &phone, &notes); err != nil {
			return nil, err
		}
		v.Category = cat.String
		v.Email = email.String
		v.Phone = phone.String
		v.Notes = notes.String
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
