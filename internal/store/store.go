// Package store is the relational persistence layer: typed CRUD over
// WorkItem, Dependency, Action, and UndoStep, driver-agnostic over
// database/sql. Reads default to the pool; writes require a caller-supplied
// transaction opened via WithTx.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/config"
)

// Queryer is satisfied by *sql.DB and *sql.Tx; read methods accept either so
// callers outside a mutation can read from the pool directly.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store owns the connection pool and, for the sqlite driver, the
// cross-process write lock.
type Store struct {
	db     *sql.DB
	driver string
	locker *writeLocker
}

// NewID returns a new globally unique identifier for a work item, action, or
// undo step.
func NewID() string {
	return uuid.NewString()
}

// Open opens the database described by cfg, creating the sqlite file and its
// parent directory if necessary, and ensures the schema exists.
func Open(ctx context.Context, cfg config.Config) (*Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return openSQLite(ctx, cfg)
	case "mysql":
		return openMySQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openSQLite(ctx context.Context, cfg config.Config) (*Store, error) {
	dbPath := cfg.Database
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one writer; pinning to a single connection
	// prevents the pool from opening extras that could corrupt the
	// WAL/SHM files under concurrent access from this process.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.ExecContext(ctx, "PRAGMA foreign_keys=ON")

	if _, err := conn.ExecContext(ctx, schemaSQLite); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: conn, driver: "sqlite", locker: newWriteLocker(dbPath)}, nil
}

func openMySQL(ctx context.Context, cfg config.Config) (*Store, error) {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		cfg.User, cfg.Password, cfg.Host, port, cfg.Database)

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := pingWithRetry(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := conn.ExecContext(ctx, schemaMySQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: conn, driver: "mysql"}, nil
}

// pingWithRetry ping-checks a freshly opened mysql connection with
// exponential backoff, absorbing the transient connection-refused/timeout
// errors that happen when the server is still coming up.
func pingWithRetry(ctx context.Context, conn *sql.DB) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	return backoff.Retry(func() error {
		return conn.PingContext(ctx)
	}, b)
}

// Close releases the connection pool. For sqlite it also checkpoints the WAL
// back into the main file so a later process doesn't inherit stale -wal/-shm
// files.
func (s *Store) Close() error {
	if s.driver == "sqlite" {
		s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	return s.db.Close()
}

// DB exposes the pool for plain reads outside a mutation.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside one transaction. For the sqlite driver it first
// acquires the cross-process write lock, composed with (not replacing) the
// transaction itself, to avoid SQLITE_BUSY thrash under this process's own
// concurrent goroutines. fn's error rolls the transaction back; a nil error
// commits.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s.locker != nil {
		if err := s.locker.acquire(writeLockTimeout); err != nil {
			return apperr.Storage(err)
		}
		defer s.locker.release()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage(err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

var errNoRows = sql.ErrNoRows

// IsNotFound reports whether err is the no-rows sentinel from a QueryRow scan.
func IsNotFound(err error) bool {
	return errors.Is(err, errNoRows)
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
