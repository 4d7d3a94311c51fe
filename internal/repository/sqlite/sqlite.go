// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code: no C compiler needed, works everywhere Go works.
//
// DATABASE/SQL OVERVIEW:
// Go's standard library provides "database/sql", a generic interface for SQL databases.
// Key types:
//   - sql.DB      : a connection pool (NOT a single connection!)
//   - sql.Row     : a single result row
//   - sql.Rows    : multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/video-share/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and hands out the repositories.
//
// Users and videos share one pool; each repository is a thin struct over
// it so both can expose a method called Create.
type DB struct {
	conn   *sql.DB
	users  *UserRepo
	videos *VideoRepo
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/videoshare.db"  → file-based database (persistent)
//   - ":memory:"            → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	// "sqlite" is the driver name registered by modernc.org/sqlite's init().
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION:
	// PRAGMAs are per-connection, and every ":memory:" connection is a
	// separate empty database. A single pooled connection keeps both sane;
	// SQLite serializes writers anyway.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (for backwards compatibility).
	// videos.shared_by references users.id, so we want them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	db.users = &UserRepo{conn: conn}
	db.videos = &VideoRepo{conn: conn}

	if err := db.Migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Users returns the credential store.
func (db *DB) Users() repository.UserRepository { return db.users }

// Videos returns the share store.
func (db *DB) Videos() repository.VideoRepository { return db.videos }

// Ping checks the connection is still usable (used by /healthz).
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection pool.
//
// ALWAYS DEFER CLOSE:
//
//	db, err := sqlite.New("data/videoshare.db")
//	if err != nil { ... }
//	defer db.Close()
func (db *DB) Close() error {
	return db.conn.Close()
}

// Migrate creates the schema. Every statement is idempotent, so running it
// on an existing database is a no-op.
//
// THE UNIQUE CONSTRAINTS ARE THE REAL RULES:
// Services check "does this email exist?" / "did this user share this URL?"
// before inserting, but two concurrent requests can both pass that check.
// The constraints below make the second INSERT fail, and the repositories
// translate that failure into the same domain error the check would have given.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS videos (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			video_url   TEXT NOT NULL,
			shared_by   TEXT NOT NULL REFERENCES users(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (shared_by, video_url)
		);
		CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating videos table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
