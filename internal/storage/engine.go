package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const (
	pragmaJournalModeWAL = `PRAGMA journal_mode=WAL`
	pragmaForeignKeysOn  = `PRAGMA foreign_keys=ON`
	pragmaBusyTimeout    = `PRAGMA busy_timeout=5000`
)

// Engine owns the single connection to one embedded store file. All writes
// go through Begin; the engine serializes transactions internally, so at
// most one is ever active per instance.
type Engine struct {
	db   *sql.DB
	path string
	txMu sync.Mutex
}

// CreateEngine initializes an empty store at path. It fails with
// ErrConflict if a store already exists there.
func CreateEngine(path string) (*Engine, error) {
	if path == "" {
		return nil, fmt.Errorf("create store: empty path")
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create store %s: %w", path, ErrConflict)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create store: parent dir: %w", err)
	}
	return openEngine(path)
}

// OpenEngine opens an existing store. It fails with ErrNotFound if no store
// exists at path. The returned flag reports whether the store already held
// record tables before migrations ran.
func OpenEngine(path string) (*Engine, bool, error) {
	if path == "" {
		return nil, false, fmt.Errorf("open store: empty path")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("open store %s: %w", path, ErrNotFound)
		}
		return nil, false, fmt.Errorf("open store: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, false, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	hadData, err := hasRecordTables(db)
	if err != nil {
		_ = db.Close()
		return nil, false, err
	}

	engine, err := finishOpen(db, path)
	if err != nil {
		return nil, false, err
	}
	return engine, hadData, nil
}

// MemoryEngine returns an ephemeral engine with no backing file, used for
// isolated testing.
func MemoryEngine() (*Engine, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	// A second pooled connection would see its own empty memory database.
	db.SetMaxOpenConns(1)
	return finishOpen(db, "")
}

func openEngine(path string) (*Engine, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	return finishOpen(db, path)
}

func finishOpen(db *sql.DB, path string) (*Engine, error) {
	if err := configureSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := RunMigrations(db, DefaultMigrations()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if path != "" {
		if err := ensureFilePermissions(path); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &Engine{db: db, path: path}, nil
}

func (e *Engine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

// Path returns the filepath to this store, empty for memory engines.
func (e *Engine) Path() string {
	if e == nil {
		return ""
	}
	return e.path
}

// Begin starts the engine's transaction. It blocks while another
// transaction is active; the internal lock is released when the returned
// Tx commits or rolls back.
func (e *Engine) Begin(ctx context.Context) (*Tx, error) {
	e.txMu.Lock()
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		e.txMu.Unlock()
		return nil, fmt.Errorf("begin transaction: %v: %w", err, ErrStorage)
	}
	return &Tx{tx: tx, engine: e}, nil
}

// Tx is a scoped transaction. Callers defer Rollback immediately after
// Begin; Rollback after a successful Commit is a no-op, so every early
// return rolls all statements back.
type Tx struct {
	tx     *sql.Tx
	engine *Engine
	done   bool
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *Tx) Commit() error {
	if t.done {
		return fmt.Errorf("commit: transaction already resolved")
	}
	t.done = true
	err := t.tx.Commit()
	t.engine.txMu.Unlock()
	if err != nil {
		return fmt.Errorf("commit: %v: %w", err, ErrStorage)
	}
	return nil
}

func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	err := t.tx.Rollback()
	t.engine.txMu.Unlock()
	if err != nil {
		return fmt.Errorf("rollback: %v: %w", err, ErrStorage)
	}
	return nil
}

func configureSQLite(db *sql.DB) error {
	pragmas := []string{pragmaJournalModeWAL, pragmaForeignKeysOn, pragmaBusyTimeout}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("configure sqlite %q: %w", stmt, err)
		}
	}
	return nil
}

func ensureFilePermissions(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Chmod(p, 0o600); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("set store file permissions %s: %w", p, err)
			}
		}
	}
	return nil
}

func hasRecordTables(db *sql.DB) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table'
		AND name IN ('account', 'attendance', 'disciplinary', 'employment', 'credential')
	`).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("inspect store tables: %w", err)
	}
	return count > 0, nil
}
