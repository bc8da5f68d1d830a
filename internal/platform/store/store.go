// Package store provides a unified seam over the supported SQL backends.
// The monitor persists tiny amounts of state (one tracked-state row plus an
// append-only attack ledger), so a single relational backend is selected at
// boot: embedded SQLite for single-binary deployments, Postgres when hosted
package store

import (
	"context"
	"errors"
	"fmt"

	"warwatch/internal/platform/logger"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is the facade over the selected backend
type Store struct {
	// Log is the logger used by adapters
	Log logger.Logger

	// DB is the SQL seam repos bind to
	DB TxRunner

	driver string
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag is a tiny interface to inspect command results
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner wraps transaction execution around a function
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store with the backend named by cfg.Driver
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{driver: cfg.Driver}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// defaults for zero logger to avoid nil checks
	s.Log = s.Log.With().Logger()

	switch cfg.Driver {
	case DriverPostgres:
		db, err := openPG(ctx, cfg.PG, s)
		if err != nil {
			return nil, err
		}
		s.DB = db
	case DriverSQLite, "":
		db, err := openLite(ctx, cfg.Lite, s)
		if err != nil {
			return nil, err
		}
		s.driver = DriverSQLite
		s.DB = db
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}

	return s, nil
}

// Driver returns the name of the active backend
func (s *Store) Driver() string { return s.driver }

// Guard verifies the configured backend responds
func (s *Store) Guard(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("nil store")
	}
	if p, ok := any(s.DB).(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.driver, err)
		}
	}
	return nil
}

// Close closes the backend gracefully
func (s *Store) Close(ctx context.Context) error {
	if c, ok := s.DB.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
