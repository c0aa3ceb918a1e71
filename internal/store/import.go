package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// ImportStats counts the rows written by ImportFixture.
type ImportStats struct {
	Members         int `json:"members"`
	Connections     int `json:"connections"`
	Events          int `json:"events"`
	Vendors         int `json:"vendors"`
	DuesCycles      int `json:"dues_cycles"`
	DuesAssignments int `json:"dues_assignments"`
	Posts           int `json:"posts"`
	Announcements   int `json:"announcements"`
}

// ImportFixture writes every record of a chapter export in one transaction.
// Records that already exist are updated in place, so re-importing the same
// export is idempotent. Dues assignments are replaced per (cycle, member).
func (db *DB) ImportFixture(ctx context.Context, f *chapter.Fixture) (ImportStats, error) {
	var stats ImportStats
	now := time.Now().UTC().Truncate(time.Second)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertChapter(ctx, tx, f.Chapter); err != nil {
		return stats, fmt.Errorf("chapter: %w", err)
	}
	for _, m := range f.Members {
		if err := upsertMember(ctx, tx, m); err != nil {
			return stats, fmt.Errorf("member %s: %w", m.ID, err)
		}
		stats.Members++
	}
	for _, c := range f.Connections {
		if err := upsertConnection(ctx, tx, c); err != nil {
			return stats, fmt.Errorf("connection %s->%s: %w", c.RequesterID, c.RecipientID, err)
		}
		stats.Connections++
	}
	for _, v := range f.Vendors {
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		if err := insertVendor(ctx, tx, v); err != nil {
			return stats, fmt.Errorf("vendor %s: %w", v.Name, err)
		}
		stats.Vendors++
	}
	for _, e := range f.Events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := insertEvent(ctx, tx, e); err != nil {
			return stats, fmt.Errorf("event %s: %w", e.Title, err)
		}
		stats.Events++
	}

	cycleAmount := make(map[string]float64, len(f.DuesCycles))
	for _, c := range f.DuesCycles {
		if c.ID == "" {
			return stats, chapter.Invalidf("dues cycle %q: id is required for import", c.Name)
		}
		if err := insertDuesCycle(ctx, tx, c); err != nil {
			return stats, fmt.Errorf("dues cycle %s: %w", c.Name, err)
		}
		cycleAmount[c.ID] = c.Amount
		stats.DuesCycles++
	}
	for _, a := range f.DuesAssignments {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.AmountDue == 0 && a.Status != chapter.DuesExempt {
			a.AmountDue = cycleAmount[a.CycleID]
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM dues_assignments WHERE cycle_id = ? AND member_id = ?", a.CycleID, a.MemberID,
		); err != nil {
			return stats, err
		}
		if err := insertAssignment(ctx, tx, a); err != nil {
			return stats, fmt.Errorf("dues assignment %s/%s: %w", a.CycleID, a.MemberID, err)
		}
		stats.DuesAssignments++
	}

	for _, p := range f.Posts {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if err := insertPost(ctx, tx, p); err != nil {
			return stats, fmt.Errorf("post %s: %w", p.ID, err)
		}
		stats.Posts++
	}
	for _, a := range f.Announcements {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if err := insertAnnouncement(ctx, tx, a); err != nil {
			return stats, fmt.Errorf("announcement %s: %w", a.Title, err)
		}
		stats.Announcements++
	}

	if err := tx.Commit(); err != nil {
		return stats, err
	}
	return stats, nil
}
