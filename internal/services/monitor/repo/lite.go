package repo

import (
	"context"
	"time"

	"warwatch/internal/modkit/repokit"
	perr "warwatch/internal/platform/errors"
	"warwatch/internal/services/monitor/domain"
)

type lite struct{ q repokit.Queryer }

var liteSchema = []string{
	`CREATE TABLE IF NOT EXISTS tracked_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		war_state TEXT NOT NULL DEFAULT '',
		maintenance_active INTEGER NOT NULL DEFAULT 0,
		raid_active INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attack_ledger (
		attacker_tag TEXT NOT NULL,
		defender_name TEXT NOT NULL,
		attack_order INTEGER NOT NULL,
		recorded_at TIMESTAMP NOT NULL,
		PRIMARY KEY (attacker_tag, defender_name, attack_order)
	)`,
}

// EnsureSchema implements Storage
func (s *lite) EnsureSchema(ctx context.Context) error {
	for _, stmt := range liteSchema {
		if _, err := s.q.Exec(ctx, stmt); err != nil {
			return perr.Wrap(err, perr.DBCode(err), "monitor ensure schema failed")
		}
	}
	_, err := s.q.Exec(ctx,
		`INSERT OR IGNORE INTO tracked_state (id, updated_at) VALUES (1, ?)`,
		time.Now().UTC(),
	)
	return perr.WrapIf(err, perr.DBCode(err), "monitor seed tracked state failed")
}

// Tracked implements Storage
func (s *lite) Tracked(ctx context.Context) (domain.TrackedState, error) {
	var (
		t           domain.TrackedState
		maint, raid int
	)
	err := s.q.QueryRow(ctx, `
		SELECT war_state, maintenance_active, raid_active, updated_at
		FROM tracked_state WHERE id = 1
	`).Scan(&t.WarState, &maint, &raid, &t.UpdatedAt)
	if err != nil {
		return domain.TrackedState{}, perr.Wrap(err, perr.DBCode(err), "monitor load tracked state failed")
	}
	t.MaintenanceActive = maint != 0
	t.RaidActive = raid != 0
	return t, nil
}

// SetWarState implements Storage
func (s *lite) SetWarState(ctx context.Context, ws domain.WarState) error {
	_, err := s.q.Exec(ctx,
		`UPDATE tracked_state SET war_state = ?, updated_at = ? WHERE id = 1`,
		string(ws), time.Now().UTC(),
	)
	return perr.WrapIf(err, perr.DBCode(err), "monitor set war state failed")
}

// SetMaintenance implements Storage
func (s *lite) SetMaintenance(ctx context.Context, active bool) error {
	_, err := s.q.Exec(ctx,
		`UPDATE tracked_state SET maintenance_active = ?, updated_at = ? WHERE id = 1`,
		boolToInt(active), time.Now().UTC(),
	)
	return perr.WrapIf(err, perr.DBCode(err), "monitor set maintenance failed")
}

// SetRaidActive implements Storage
func (s *lite) SetRaidActive(ctx context.Context, active bool) error {
	_, err := s.q.Exec(ctx,
		`UPDATE tracked_state SET raid_active = ?, updated_at = ? WHERE id = 1`,
		boolToInt(active), time.Now().UTC(),
	)
	return perr.WrapIf(err, perr.DBCode(err), "monitor set raid failed")
}

// SeenAttack implements Storage
func (s *lite) SeenAttack(ctx context.Context, k domain.AttackKey) (bool, error) {
	var n int
	err := s.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attack_ledger
		WHERE attacker_tag = ? AND defender_name = ? AND attack_order = ?
	`, k.AttackerTag, k.DefenderName, k.Order).Scan(&n)
	if err != nil {
		return false, perr.Wrap(err, perr.DBCode(err), "monitor seen attack failed")
	}
	return n > 0, nil
}

// RecordAttack implements Storage
func (s *lite) RecordAttack(ctx context.Context, k domain.AttackKey) error {
	_, err := s.q.Exec(ctx, `
		INSERT OR IGNORE INTO attack_ledger (attacker_tag, defender_name, attack_order, recorded_at)
		VALUES (?, ?, ?, ?)
	`, k.AttackerTag, k.DefenderName, k.Order, time.Now().UTC())
	return perr.WrapIf(err, perr.DBCode(err), "monitor record attack failed")
}

// LedgerSize implements Storage
func (s *lite) LedgerSize(ctx context.Context) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM attack_ledger`).Scan(&n)
	if err != nil {
		return 0, perr.Wrap(err, perr.DBCode(err), "monitor ledger size failed")
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
