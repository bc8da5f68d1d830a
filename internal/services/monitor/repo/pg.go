package repo

import (
	"context"

	"warwatch/internal/modkit/repokit"
	perr "warwatch/internal/platform/errors"
	"warwatch/internal/services/monitor/domain"
)

type pg struct{ q repokit.Queryer }

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS tracked_state (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		war_state TEXT NOT NULL DEFAULT '',
		maintenance_active BOOLEAN NOT NULL DEFAULT FALSE,
		raid_active BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attack_ledger (
		attacker_tag TEXT NOT NULL,
		defender_name TEXT NOT NULL,
		attack_order INTEGER NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (attacker_tag, defender_name, attack_order)
	)`,
	`INSERT INTO tracked_state (id) VALUES (1) ON CONFLICT (id) DO NOTHING`,
}

// EnsureSchema implements Storage
func (s *pg) EnsureSchema(ctx context.Context) error {
	for _, stmt := range pgSchema {
		if _, err := s.q.Exec(ctx, stmt); err != nil {
			return perr.Wrap(err, perr.DBCode(err), "monitor ensure schema failed")
		}
	}
	return nil
}

// Tracked implements Storage
func (s *pg) Tracked(ctx context.Context) (domain.TrackedState, error) {
	var t domain.TrackedState
	err := s.q.QueryRow(ctx, `
		SELECT war_state, maintenance_active, raid_active, updated_at
		FROM tracked_state WHERE id = 1
	`).Scan(&t.WarState, &t.MaintenanceActive, &t.RaidActive, &t.UpdatedAt)
	if err != nil {
		return domain.TrackedState{}, perr.Wrap(err, perr.DBCode(err), "monitor load tracked state failed")
	}
	return t, nil
}

// SetWarState implements Storage
func (s *pg) SetWarState(ctx context.Context, ws domain.WarState) error {
	_, err := s.q.Exec(ctx,
		`UPDATE tracked_state SET war_state = $1, updated_at = NOW() WHERE id = 1`,
		string(ws),
	)
	return perr.WrapIf(err, perr.DBCode(err), "monitor set war state failed")
}

// SetMaintenance implements Storage
func (s *pg) SetMaintenance(ctx context.Context, active bool) error {
	_, err := s.q.Exec(ctx,
		`UPDATE tracked_state SET maintenance_active = $1, updated_at = NOW() WHERE id = 1`,
		active,
	)
	return perr.WrapIf(err, perr.DBCode(err), "monitor set maintenance failed")
}

// SetRaidActive implements Storage
func (s *pg) SetRaidActive(ctx context.Context, active bool) error {
	_, err := s.q.Exec(ctx,
		`UPDATE tracked_state SET raid_active = $1, updated_at = NOW() WHERE id = 1`,
		active,
	)
	return perr.WrapIf(err, perr.DBCode(err), "monitor set raid failed")
}

// SeenAttack implements Storage
func (s *pg) SeenAttack(ctx context.Context, k domain.AttackKey) (bool, error) {
	var seen bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attack_ledger
			WHERE attacker_tag = $1 AND defender_name = $2 AND attack_order = $3
		)
	`, k.AttackerTag, k.DefenderName, k.Order).Scan(&seen)
	if err != nil {
		return false, perr.Wrap(err, perr.DBCode(err), "monitor seen attack failed")
	}
	return seen, nil
}

// RecordAttack implements Storage
func (s *pg) RecordAttack(ctx context.Context, k domain.AttackKey) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO attack_ledger (attacker_tag, defender_name, attack_order)
		VALUES ($1, $2, $3)
		ON CONFLICT (attacker_tag, defender_name, attack_order) DO NOTHING
	`, k.AttackerTag, k.DefenderName, k.Order)
	return perr.WrapIf(err, perr.DBCode(err), "monitor record attack failed")
}

// LedgerSize implements Storage
func (s *pg) LedgerSize(ctx context.Context) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM attack_ledger`).Scan(&n)
	if err != nil {
		return 0, perr.Wrap(err, perr.DBCode(err), "monitor ledger size failed")
	}
	return n, nil
}
