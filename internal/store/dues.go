package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// CreateDuesCycle inserts a billing cycle, assigning an ID when none is set.
func (db *DB) CreateDuesCycle(ctx context.Context, c chapter.DuesCycle) (chapter.DuesCycle, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return c, insertDuesCycle(ctx, db.conn, c)
}

func insertDuesCycle(ctx context.Context, q querier, c chapter.DuesCycle) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO dues_cycles (id, chapter_id, name, amount, due_date, closed)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name, amount = excluded.amount,
		  due_date = excluded.due_date, closed = excluded.closed`,
		c.ID, c.ChapterID, c.Name, c.Amount, formatTime(c.DueDate), c.Closed,
	)
	return err
}

const cycleColumns = "id, chapter_id, name, amount, due_date, closed"

func scanCycle(r rowScanner) (chapter.DuesCycle, error) {
	var c chapter.DuesCycle
	var due sql.NullString
	if err := r.Scan(&c.ID, &c.ChapterID, &c.Name, &c.Amount, &due, &c.Closed); err != nil {
		return c, err
	}
	c.DueDate = parseTime(due)
	return c, nil
}

// GetDuesCycle returns a cycle by ID.
func (db *DB) GetDuesCycle(ctx context.Context, id string) (chapter.DuesCycle, error) {
	c, err := scanCycle(db.conn.QueryRowContext(ctx, "SELECT "+cycleColumns+" FROM dues_cycles WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("dues cycle %s: %w", id, chapter.ErrNotFound)
	}
	return c, err
}

// ListDuesCycles returns a chapter's cycles, latest due date first.
func (db *DB) ListDuesCycles(ctx context.Context, chapterID string) ([]chapter.DuesCycle, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+cycleColumns+" FROM dues_cycles WHERE chapter_id = ? ORDER BY due_date DESC, id",
		chapterID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cycles []chapter.DuesCycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

// AssignDues bills a member for a cycle. A zero AmountDue takes the cycle
// amount. Assigning the same member twice is a conflict.
func (db *DB) AssignDues(ctx context.Context, a chapter.DuesAssignment) (chapter.DuesAssignment, error) {
	if a.AmountDue == 0 && a.Status != chapter.DuesExempt {
		cycle, err := db.GetDuesCycle(ctx, a.CycleID)
		if err != nil {
			return a, err
		}
		a.AmountDue = cycle.Amount
	}
	if a.Status == "" {
		a.Status = chapter.DuesPending
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return a, insertAssignment(ctx, db.conn, a)
}

func insertAssignment(ctx context.Context, q querier, a chapter.DuesAssignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO dues_assignments (id, cycle_id, member_id, amount_due, amount_paid, status, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CycleID, a.MemberID, a.AmountDue, a.AmountPaid, string(a.Status), formatTime(a.PaidAt),
	)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("member %s already billed for cycle %s: %w", a.MemberID, a.CycleID, chapter.ErrConflict)
	}
	return err
}

const assignmentColumns = "id, cycle_id, member_id, amount_due, amount_paid, status, paid_at"

func scanAssignment(r rowScanner) (chapter.DuesAssignment, error) {
	var a chapter.DuesAssignment
	var status string
	var paidAt sql.NullString
	if err := r.Scan(&a.ID, &a.CycleID, &a.MemberID, &a.AmountDue, &a.AmountPaid, &status, &paidAt); err != nil {
		return a, err
	}
	a.Status = chapter.DuesStatus(status)
	a.PaidAt = parseTime(paidAt)
	return a, nil
}

// GetAssignment returns a dues assignment by ID.
func (db *DB) GetAssignment(ctx context.Context, id string) (chapter.DuesAssignment, error) {
	a, err := scanAssignment(db.conn.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM dues_assignments WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("dues assignment %s: %w", id, chapter.ErrNotFound)
	}
	return a, err
}

// ListAssignmentsByCycle returns every assignment billed in a cycle.
func (db *DB) ListAssignmentsByCycle(ctx context.Context, cycleID string) ([]chapter.DuesAssignment, error) {
	return db.queryAssignments(ctx,
		"SELECT "+assignmentColumns+" FROM dues_assignments WHERE cycle_id = ? ORDER BY member_id", cycleID)
}

// ListAssignmentsByMember returns a member's dues history.
func (db *DB) ListAssignmentsByMember(ctx context.Context, memberID string) ([]chapter.DuesAssignment, error) {
	return db.queryAssignments(ctx,
		`SELECT a.id, a.cycle_id, a.member_id, a.amount_due, a.amount_paid, a.status, a.paid_at
		 FROM dues_assignments a JOIN dues_cycles c ON c.id = a.cycle_id
		 WHERE a.member_id = ? ORDER BY c.due_date DESC`, memberID)
}

func (db *DB) queryAssignments(ctx context.Context, query string, args ...any) ([]chapter.DuesAssignment, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []chapter.DuesAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecordPayment adds amount to an assignment's paid total and moves it to
// partial or paid. Payments against exempt assignments are a conflict.
func (db *DB) RecordPayment(ctx context.Context, assignmentID string, amount float64, at time.Time) (chapter.DuesAssignment, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return chapter.DuesAssignment{}, chapter.Invalidf("payment amount must be positive")
	}
	if at.IsZero() {
		at = time.Now()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return chapter.DuesAssignment{}, err
	}
	defer func() { _ = tx.Rollback() }()

	a, err := scanAssignment(tx.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM dues_assignments WHERE id = ?", assignmentID))
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("dues assignment %s: %w", assignmentID, chapter.ErrNotFound)
	}
	if err != nil {
		return a, err
	}
	if a.Status == chapter.DuesExempt {
		return a, fmt.Errorf("dues assignment %s is exempt: %w", assignmentID, chapter.ErrConflict)
	}

	a.AmountPaid += amount
	a.PaidAt = at
	if a.AmountPaid >= a.AmountDue {
		a.Status = chapter.DuesPaid
	} else {
		a.Status = chapter.DuesPartial
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE dues_assignments SET amount_paid = ?, status = ?, paid_at = ? WHERE id = ?",
		a.AmountPaid, string(a.Status), formatTime(a.PaidAt), a.ID,
	); err != nil {
		return a, err
	}
	return a, tx.Commit()
}

// ListChapterAssignments returns assignments for every open cycle of a
// chapter, keyed by cycle ID.
func (db *DB) ListChapterAssignments(ctx context.Context, chapterID string) (map[string][]chapter.DuesAssignment, error) {
	all, err := db.queryAssignments(ctx,
		`SELECT a.id, a.cycle_id, a.member_id, a.amount_due, a.amount_paid, a.status, a.paid_at
		 FROM dues_assignments a JOIN dues_cycles c ON c.id = a.cycle_id
		 WHERE c.chapter_id = ? AND c.closed = false ORDER BY a.member_id`, chapterID)
	if err != nil {
		return nil, err
	}
	byCycle := make(map[string][]chapter.DuesAssignment)
	for _, a := range all {
		byCycle[a.CycleID] = append(byCycle[a.CycleID], a)
	}
	return byCycle, nil
}
