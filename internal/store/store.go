// Package store implements the Graph Store: persistent, transactional
// storage for food items, recipes, ingredients, components, days, and
// meal entries, plus the integrity guards that block destructive edits
// while dependents exist.
//
// Grounded on internal/db/db.go's connection setup (pure-Go
// modernc.org/sqlite, WAL mode, foreign keys) generalized from a
// single loosely-typed node/edge graph to the seven strongly-typed
// entities of the nutrition data model, and on
// original_source/src/db/{connection,migrations}.rs for the pragma
// set and schema shape.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database connection with the single-writer
// serialization the concurrency model requires: at most one write
// transaction in flight at a time. Reads and writes share the single
// pooled connection (see Open), so a read waits while a write
// transaction holds it; reads do not run concurrently with each other
// or with a write.
type Store struct {
	conn *sql.DB
	path string

	// writeMu serializes write transactions FIFO across callers, per
	// the ordering guarantee that write order follows the store's
	// lock acquisition order. Reads never take this lock.
	writeMu sync.Mutex

	batch batchState
}

// Open opens (creating if necessary) a SQLite database at path with
// WAL journaling and foreign-key enforcement enabled, then runs any
// pending schema migrations.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	// A single connection stands in for the "one write transaction in
	// flight" invariant: with MaxOpenConns=1 the driver itself
	// serializes access, and writeMu additionally orders callers FIFO
	// rather than leaving arbitration to the driver's internal queue.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, path: path}

	if err := s.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating store: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string { return s.path }

// Conn exposes the underlying *sql.DB for read-only queries that do
// not need transaction scoping.
func (s *Store) Conn() *sql.DB { return s.conn }

// dbTx is satisfied by both *sql.DB and *sql.Tx. Read methods that the
// Cascade Engine needs to run inside its own write transaction accept
// this instead of assuming s.conn, so a single query implementation
// serves both plain reads and tx-scoped reads without a second
// connection ever being requested from the pool (fatal with
// MaxOpenConns=1: a second connection request from inside an open
// transaction would block forever waiting for the first to free up).
type dbTx interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RunCascadeTx runs fn inside the same single-writer transaction
// envelope as any other store mutation. The Cascade Engine uses this
// to make its multi-recipe recalculation pass atomic.
func (s *Store) RunCascadeTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.withWriteTx(ctx, fn)
}

// withWriteTx runs fn inside a single write transaction, holding
// writeMu for the duration so that cascades and their triggering
// mutation are never interleaved with another caller's write.
func (s *Store) withWriteTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr("beginning write transaction", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreErr("committing write transaction", err)
	}
	return nil
}
