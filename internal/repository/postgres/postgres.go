// Package postgres implements the repository interfaces on PostgreSQL
// through pgx's database/sql driver, with goose-managed migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sakif/video-share/internal/repository"
	"github.com/sakif/video-share/internal/repository/postgres/migrations"
)

// uniqueViolation is the SQLSTATE Postgres reports for a UNIQUE conflict.
const uniqueViolation = "23505"

var _ repository.Store = (*DB)(nil)

// DB owns the pool and hands out the repositories.
type DB struct {
	conn   *sql.DB
	users  *UserRepo
	videos *VideoRepo
}

// Open connects to dsn (a postgres:// URL) and verifies the connection.
// It does not migrate; call Migrate (or `videoshare migrate`) for that.
func Open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}
	return NewFromConn(conn), nil
}

// NewFromConn wraps an existing pool. Tests pass a sqlmock connection here.
func NewFromConn(conn *sql.DB) *DB {
	return &DB{
		conn:   conn,
		users:  &UserRepo{conn: conn},
		videos: &VideoRepo{conn: conn},
	}
}

func (db *DB) Users() repository.UserRepository   { return db.users }
func (db *DB) Videos() repository.VideoRepository { return db.videos }

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies every embedded migration not yet recorded in goose's
// version table.
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("postgres: setting goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db.conn, "."); err != nil {
		return fmt.Errorf("postgres: running migrations: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is Postgres rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
