package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/tx"
)

const retryAttempts = 3

const schema = `
CREATE TABLE IF NOT EXISTS subjects (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  archived INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  subject_id INTEGER NOT NULL,
  start_time INTEGER NOT NULL,
  planned_end_time INTEGER NOT NULL,
  end_time INTEGER,
  duration_min INTEGER,
  start_day TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_subject_id ON sessions(subject_id);
CREATE INDEX IF NOT EXISTS idx_sessions_start_day ON sessions(start_day);
CREATE INDEX IF NOT EXISTS idx_sessions_end_time ON sessions(end_time);
`

// Querier is the subset of *sql.DB and *sql.Tx the stores use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// DB is the shared handle over the study database. It also implements
// tx.Manager: stores resolve their Querier from the context so work started
// inside Within runs on the open transaction.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ tx.Manager = (*DB)(nil)

func Open(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.Storage("open sqlite", err)
	}
	// One connection serializes every statement of this process; the
	// immediate transaction lock and busy timeout cover other processes.
	db.SetMaxOpenConns(1)

	handle := &DB{db: db, logger: logger}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.Storage("ping sqlite", err)
	}
	if err := handle.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("database opened", slog.String("path", path))
	return handle, nil
}

func (d *DB) ensureSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return apperrors.Storage("create schema", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Querier returns the transaction carried by ctx, or the pool.
func (d *DB) Querier(ctx context.Context) Querier {
	if t, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return t
	}
	return d.db
}

// Within runs fn in one immediate transaction. Nested calls join the outer
// transaction. Busy results from another process are retried.
func (d *DB) Within(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	return d.Retry(ctx, func() error {
		t, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return apperrors.Storage("begin transaction", err)
		}
		if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
			_ = t.Rollback()
			return err
		}
		if err := t.Commit(); err != nil {
			return apperrors.Storage("commit transaction", err)
		}
		return nil
	})
}

// Retry re-runs fn while SQLite reports the database busy or locked.
func (d *DB) Retry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < retryAttempts; i++ {
		err = fn()
		if err == nil || !IsBusy(err) {
			return err
		}
		d.logger.Debug("sqlite busy, retrying", slog.Int("attempt", i+1), slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * 50 * time.Millisecond):
		}
	}
	return err
}

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code(), true
	}
	return 0, false
}

func IsBusy(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	primary := code & 0xff
	return primary == sqlite3.SQLITE_BUSY || primary == sqlite3.SQLITE_LOCKED
}

func IsUniqueViolation(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// Millis and FromMillis convert between time.Time and the epoch
// milliseconds stored in the timestamp columns.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func FromMillis(ms int64, loc *time.Location) time.Time {
	t := time.UnixMilli(ms)
	if loc != nil {
		return t.In(loc)
	}
	return t
}
