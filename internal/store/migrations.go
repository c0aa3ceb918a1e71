package store

import (
	"context"
	"fmt"
)

// CurrentSchemaVersion is the schema version Migrate brings a database to.
const CurrentSchemaVersion = 3

// SchemaVersion reports the version recorded in the database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := db.conn.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.apply(1, migrationV1); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	if version < 2 {
		if err := db.apply(2, migrationV2); err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
	}
	if version < 3 {
		if err := db.apply(3, migrationV3); err != nil {
			return fmt.Errorf("migration v3: %w", err)
		}
	}
	return nil
}

// migrationV1 creates the membership, events and dues tables.
var migrationV1 = []string{
	`CREATE TABLE IF NOT EXISTS chapters (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		university TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS members (
		id              TEXT PRIMARY KEY,
		chapter_id      TEXT NOT NULL REFERENCES chapters(id),
		full_name       TEXT NOT NULL,
		email           TEXT,
		role            TEXT NOT NULL,
		avatar_url      TEXT,
		headline        TEXT,
		bio             TEXT,
		industry        TEXT,
		company         TEXT,
		location        TEXT,
		graduation_year INTEGER NOT NULL DEFAULT 0,
		last_active_at  TEXT,
		joined_at       TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS connections (
		requester_id TEXT NOT NULL REFERENCES members(id),
		recipient_id TEXT NOT NULL REFERENCES members(id),
		status       TEXT NOT NULL,
		created_at   TEXT,
		PRIMARY KEY (requester_id, recipient_id)
	)`,

	`CREATE TABLE IF NOT EXISTS vendor_contacts (
		id         TEXT PRIMARY KEY,
		chapter_id TEXT NOT NULL REFERENCES chapters(id),
		name       TEXT NOT NULL,
		category   TEXT,
		email      TEXT,
		phone      TEXT,
		notes      TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id         TEXT PRIMARY KEY,
		chapter_id TEXT NOT NULL REFERENCES chapters(id),
		title      TEXT NOT NULL,
		category   TEXT,
		location   TEXT,
		start_at   TEXT NOT NULL,
		budget     REAL NOT NULL DEFAULT 0,
		spent      REAL NOT NULL DEFAULT 0,
		vendor_id  TEXT,
		created_by TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS dues_cycles (
		id         TEXT PRIMARY KEY,
		chapter_id TEXT NOT NULL REFERENCES chapters(id),
		name       TEXT NOT NULL,
		amount     REAL NOT NULL,
		due_date   TEXT NOT NULL,
		closed     BOOLEAN NOT NULL DEFAULT false
	)`,

	`CREATE TABLE IF NOT EXISTS dues_assignments (
		id          TEXT PRIMARY KEY,
		cycle_id    TEXT NOT NULL REFERENCES dues_cycles(id),
		member_id   TEXT NOT NULL REFERENCES members(id),
		amount_due  REAL NOT NULL,
		amount_paid REAL NOT NULL DEFAULT 0,
		status      TEXT NOT NULL,
		paid_at     TEXT,
		UNIQUE (cycle_id, member_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_members_chapter_role ON members(chapter_id, role)`,
	`CREATE INDEX IF NOT EXISTS idx_connections_recipient ON connections(recipient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_chapter_start ON events(chapter_id, start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_vendors_chapter ON vendor_contacts(chapter_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dues_cycles_chapter ON dues_cycles(chapter_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dues_assignments_member ON dues_assignments(member_id)`,
}

// migrationV2 adds the social feed and announcements.
var migrationV2 = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id            TEXT PRIMARY KEY,
		chapter_id    TEXT NOT NULL REFERENCES chapters(id),
		author_id     TEXT NOT NULL REFERENCES members(id),
		content       TEXT NOT NULL,
		like_count    INTEGER NOT NULL DEFAULT 0,
		comment_count INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS announcements (
		id         TEXT PRIMARY KEY,
		chapter_id TEXT NOT NULL REFERENCES chapters(id),
		title      TEXT NOT NULL,
		body       TEXT,
		created_at TEXT NOT NULL,
		expires_at TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_posts_chapter_created ON posts(chapter_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_announcements_chapter ON announcements(chapter_id)`,
}

// migrationV3 persists spotlight session seeds for CLI runs without Redis.
var migrationV3 = []string{
	`CREATE TABLE IF NOT EXISTS session_seeds (
		session_id TEXT PRIMARY KEY,
		seed       INTEGER NOT NULL,
		expires_at TEXT
	)`,
}

// apply runs one migration's statements in a transaction and records the
// new schema version.
func (db *DB) apply(version int, statements []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:min(40, len(stmt))], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}
