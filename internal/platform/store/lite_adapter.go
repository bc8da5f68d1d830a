package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// liteAdapter wraps database/sql over the embedded sqlite driver and
// implements RowQuerier + TxRunner. A single connection serializes all
// read-modify-write sequences, which is exactly the access pattern the
// monitor needs (see the tracked-state and ledger repos)
type liteAdapter struct {
	db *sql.DB
}

// openLite opens (or creates) the sqlite database at cfg.Path
func openLite(ctx context.Context, cfg LiteConfig, s *Store) (TxRunner, error) {
	path := cfg.Path
	if path == "" {
		path = "warwatch.db"
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer connection; sqlite does not benefit from a pool here
	db.SetMaxOpenConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma failed: %w", err)
		}
	}

	s.Log.Debug().Str("path", path).Msg("sqlite opened")
	return &liteAdapter{db: db}, nil
}

func (a *liteAdapter) Ping(ctx context.Context) error {
	if a == nil || a.db == nil {
		return errors.New("sqlite: nil adapter")
	}
	return a.db.PingContext(ctx)
}

func (a *liteAdapter) Close() error { return a.db.Close() }

func (a *liteAdapter) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	res, err := a.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return liteTag{res}, nil
}

func (a *liteAdapter) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	rs, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return &liteRows{r: rs}, nil
}

func (a *liteAdapter) QueryRow(ctx context.Context, q string, args ...any) Row {
	return a.db.QueryRowContext(ctx, q, args...)
}

func (a *liteAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(liteTxQuerier{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// adapters for database/sql to our tiny Row/Rows/CommandTag

type liteRows struct {
	r *sql.Rows
}

func (x *liteRows) Next() bool            { return x.r.Next() }
func (x *liteRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x *liteRows) Err() error            { return x.r.Err() }
func (x *liteRows) Close()                { _ = x.r.Close() }
func (x *liteRows) Columns() []string {
	cols, err := x.r.Columns()
	if err != nil {
		return nil
	}
	return cols
}

type liteTag struct{ res sql.Result }

func (t liteTag) String() string { return "" }
func (t liteTag) RowsAffected() int64 {
	n, err := t.res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

type liteTxQuerier struct {
	tx *sql.Tx
}

func (t liteTxQuerier) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return liteTag{res}, nil
}

func (t liteTxQuerier) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	rs, err := t.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return &liteRows{r: rs}, nil
}

func (t liteTxQuerier) QueryRow(ctx context.Context, q string, args ...any) Row {
	return t.tx.QueryRowContext(ctx, q, args...)
}
