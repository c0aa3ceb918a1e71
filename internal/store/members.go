package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// UpsertChapter inserts or replaces a chapter row.
func (db *DB) UpsertChapter(ctx context.Context, c chapter.Chapter) error {
	return upsertChapter(ctx, db.conn, c)
}

func upsertChapter(ctx context.Context, q querier, c chapter.Chapter) error {
	if c.ID == "" || strings.TrimSpace(c.Name) == "" {
		return chapter.Invalidf("chapter id and name are required")
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO chapters (id, name, university) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, university = excluded.university`,
		c.ID, c.Name, c.University,
	)
	return err
}

// GetChapter returns a chapter by ID.
func (db *DB) GetChapter(ctx context.Context, id string) (chapter.Chapter, error) {
	var c chapter.Chapter
	var uni sql.NullString
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, name, university FROM chapters WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &uni)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("chapter %s: %w", id, chapter.ErrNotFound)
	}
	if err != nil {
		return c, err
	}
	c.University = uni.String
	return c, nil
}

// UpsertMember inserts a member or updates every column of an existing one.
func (db *DB) UpsertMember(ctx context.Context, m chapter.Member) error {
	return upsertMember(ctx, db.conn, m)
}

func upsertMember(ctx context.Context, q querier, m chapter.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO members
		(id, chapter_id, full_name, email, role, avatar_url, headline, bio, industry,
		 company, location, graduation_year, last_active_at, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 chapter_id = excluded.chapter_id, full_name = excluded.full_name,
		 email = excluded.email, role = excluded.role, avatar_url = excluded.avatar_url,
		 headline = excluded.headline, bio = excluded.bio, industry = excluded.industry,
		 company = excluded.company, location = excluded.location,
		 graduation_year = excluded.graduation_year,
		 last_active_at = excluded.last_active_at, joined_at = excluded.joined_at`,
		m.ID, m.ChapterID, m.FullName, m.Email, string(m.Role), m.AvatarURL, m.Headline,
		m.Bio, m.Industry, m.Company, m.Location, m.GraduationYear,
		formatTime(m.LastActiveAt), formatTime(m.JoinedAt),
	)
	if err != nil && strings.Contains(err.Error(), "FOREIGN KEY") {
		return fmt.Errorf("member %s references unknown chapter %s: %w", m.ID, m.ChapterID, chapter.ErrInvalid)
	}
	return err
}

const memberColumns = `id, chapter_id, full_name, email, role, avatar_url, headline, bio,
	industry, company, location, graduation_year, last_active_at, joined_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(r rowScanner) (chapter.Member, error) {
	var m chapter.Member
	var role string
	var email, avatar, headline, bio, industry, company, location, lastActive, joined sql.NullString
	if err := r.Scan(
		&m.ID, &m.ChapterID, &m.FullName, &email, &role, &avatar, &headline, &bio,
		&industry, &company, &location, &m.GraduationYear, &lastActive, &joined,
	); err != nil {
		return m, err
	}
	m.Role = chapter.Role(role)
	m.Email = email.String
	m.AvatarURL = avatar.String
	m.Headline = headline.String
	m.Bio = bio.String
	m.Industry = industry.String
	m.Company = company.String
	m.Location = location.String
	m.LastActiveAt = parseTime(lastActive)
	m.JoinedAt = parseTime(joined)
	return m, nil
}

// GetMember returns a member by ID.
func (db *DB) GetMember(ctx context.Context, id string) (chapter.Member, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE id = ?", id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("member %s: %w", id, chapter.ErrNotFound)
	}
	return m, err
}

// MemberFilter narrows a member listing. Empty fields match everything.
type MemberFilter struct {
	ChapterID string
	Role      chapter.Role
	// Query matches name, company, industry or headline, case-insensitively.
	Query string
}

// likeEscaper makes a search query match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (f MemberFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.ChapterID != "" {
		clauses = append(clauses, "chapter_id = ?")
		args = append(args, f.ChapterID)
	}
	if f.Role != "" {
		clauses = append(clauses, "role = ?")
		args = append(args, string(f.Role))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		clauses = append(clauses,
			`(lower(full_name) LIKE ? ESCAPE '\' OR lower(company) LIKE ? ESCAPE '\'`+
				` OR lower(industry) LIKE ? ESCAPE '\' OR lower(headline) LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like, like)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// CountMembers returns how many members match the filter.
func (db *DB) CountMembers(ctx context.Context, f MemberFilter) (int, error) {
	where, args := f.where()
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM members"+where, args...).Scan(&n)
	return n, err
}

// ListMembers returns one page of members ordered by name.
func (db *DB) ListMembers(ctx context.Context, f MemberFilter, p chapter.Page) (chapter.Paged[chapter.Member], error) {
	total, err := db.CountMembers(ctx, f)
	if err != nil {
		return chapter.Paged[chapter.Member]{}, fmt.Errorf("counting members: %w", err)
	}
	where, args := f.where()
	args = append(args, p.Limit, p.Offset())
	items, err := db.queryMembers(ctx,
		"SELECT "+memberColumns+" FROM members"+where+" ORDER BY full_name, id LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return chapter.Paged[chapter.Member]{}, err
	}
	return chapter.NewPaged(items, total, p), nil
}

// ListAllMembers returns every member of a chapter. The spotlight needs the
// whole candidate set before it can rank.
func (db *DB) ListAllMembers(ctx context.Context, chapterID string) ([]chapter.Member, error) {
	return db.queryMembers(ctx,
		"SELECT "+memberColumns+" FROM members WHERE chapter_id = ? ORDER BY id", chapterID)
}

func (db *DB) queryMembers(ctx context.Context, query string, args ...any) ([]chapter.Member, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var members []chapter.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
