// Package repo provides the monitor repository implementations.
// Two binders cover the supported drivers: NewPG for Postgres and NewLite
// for SQLite. Both persist the same shape: a single tracked_state row that is
// the durable last-known value of every dimension, and an append-only
// attack_ledger keyed by (attacker_tag, defender_name, attack_order)
package repo

import (
	"context"

	"warwatch/internal/modkit/repokit"
	"warwatch/internal/services/monitor/domain"
)

// Storage defines the monitor repository
type Storage interface {
	// EnsureSchema creates the tables and seeds the tracked_state singleton.
	// Safe to call on every start
	EnsureSchema(ctx context.Context) error

	// Tracked loads the durable state row
	Tracked(ctx context.Context) (domain.TrackedState, error)

	// SetWarState persists the observed war lifecycle state
	SetWarState(ctx context.Context, s domain.WarState) error

	// SetMaintenance persists the maintenance flag
	SetMaintenance(ctx context.Context, active bool) error

	// SetRaidActive persists the raid weekend flag
	SetRaidActive(ctx context.Context, active bool) error

	// SeenAttack reports whether the attack is already in the ledger
	SeenAttack(ctx context.Context, k domain.AttackKey) (bool, error)

	// RecordAttack appends the attack to the ledger; recording the same key
	// twice is a no-op
	RecordAttack(ctx context.Context, k domain.AttackKey) error

	// LedgerSize counts recorded attacks (status surface)
	LedgerSize(ctx context.Context) (int, error)
}

type (
	pgBinder   struct{}
	liteBinder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return pgBinder{} }

// Bind implements repokit.Binder
func (pgBinder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// NewLite constructs a repo binder for SQLite
func NewLite() repokit.Binder[Storage] { return liteBinder{} }

// Bind implements repokit.Binder
func (liteBinder) Bind(q repokit.Queryer) Storage { return &lite{q: q} }
