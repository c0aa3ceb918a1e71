package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// CreatePost adds a post to the chapter feed. A zero CreatedAt is stamped
// with the current time.
func (db *DB) CreatePost(ctx context.Context, p chapter.Post) (chapter.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	return p, insertPost(ctx, db.conn, p)
}

func insertPost(ctx context.Context, q querier, p chapter.Post) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO posts (id, chapter_id, author_id, content, like_count, comment_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		  content = excluded.content, like_count = excluded.like_count,
		  comment_count = excluded.comment_count`,
		p.ID, p.ChapterID, p.AuthorID, p.Content, p.LikeCount, p.CommentCount, formatTime(p.CreatedAt),
	)
	return err
}

// ListPosts returns one page of the chapter feed, newest first.
func (db *DB) ListPosts(ctx context.Context, chapterID string, p chapter.Page) (chapter.Paged[chapter.Post], error) {
	var total int
	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE chapter_id = ?", chapterID,
	).Scan(&total); err != nil {
		return chapter.Paged[chapter.Post]{}, fmt.Errorf("counting posts: %w", err)
	}
	items, err := db.queryPosts(ctx,
		`SELECT id, chapter_id, author_id, content, like_count, comment_count, created_at
		 FROM posts WHERE chapter_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		chapterID, p.Limit, p.Offset())
	if err != nil {
		return chapter.Paged[chapter.Post]{}, err
	}
	return chapter.NewPaged(items, total, p), nil
}

// ListPostsSince returns every post created at or after since, newest first.
func (db *DB) ListPostsSince(ctx context.Context, chapterID string, since time.Time) ([]chapter.Post, error) {
	return db.queryPosts(ctx,
		`SELECT id, chapter_id, author_id, content, like_count, comment_count, created_at
		 FROM posts WHERE chapter_id = ? AND created_at >= ? ORDER BY created_at DESC, id`,
		chapterID, formatTime(since))
}

func (db *DB) queryPosts(ctx context.Context, query string, args ...any) ([]chapter.Post, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []chapter.Post
	for rows.Next() {
		var p chapter.Post
		var created sql.NullString
		if err := rows.Scan(&p.ID, &p.ChapterID, &p.AuthorID, &p.Content,
			&p.LikeCount, &p.CommentCount, &created); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(created)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreateAnnouncement pins a notice to the chapter dashboard.
func (db *DB) CreateAnnouncement(ctx context.Context, a chapter.Announcement) (chapter.Announcement, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	return a, insertAnnouncement(ctx, db.conn, a)
}

func insertAnnouncement(ctx context.Context, q querier, a chapter.Announcement) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO announcements (id, chapter_id, title, body, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title, body = excluded.body, expires_at = excluded.expires_at`,
		a.ID, a.ChapterID, a.Title, a.Body, formatTime(a.CreatedAt), formatTime(a.ExpiresAt),
	)
	return err
}

// ListAnnouncements returns every announcement of a chapter, newest first.
// Pass activeAt to drop those that have expired by then.
func (db *DB) ListAnnouncements(ctx context.Context, chapterID string, activeAt time.Time) ([]chapter.Announcement, error) {
	query := `SELECT id, chapter_id, title, body, created_at, expires_at
		FROM announcements WHERE chapter_id = ?`
	args := []any{chapterID}
	if !activeAt.IsZero() {
		query += " AND (expires_at IS NULL OR expires_at > ?)"
		args = append(args, formatTime(activeAt))
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []chapter.Announcement
	for rows.Next() {
		var a chapter.Announcement
		var body, created, expires sql.NullString
		if err := rows.Scan(&a.ID, &a.ChapterID, &a.Title, &body, &created, &expires); err != nil {
			return nil, err
		}
		a.Body = body.String
		a.CreatedAt = parseTime(created)
		a.ExpiresAt = parseTime(expires)
		out = append(out, a)
	}
	return out, rows.Err()
}
