package repo

import (
	"context"
	"testing"

	"warwatch/internal/modkit/repokit"
	"warwatch/internal/platform/store"
	"warwatch/internal/services/monitor/domain"
)

func newLiteStorage(t *testing.T) Storage {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		Driver: store.DriverSQLite,
		Lite:   store.LiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(ctx) })

	s := repokit.MustBind[Storage](NewLite(), st.DB)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return s
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	s := newLiteStorage(t)
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second ensure schema: %v", err)
	}
}

func TestTrackedDefaults(t *testing.T) {
	s := newLiteStorage(t)
	got, err := s.Tracked(context.Background())
	if err != nil {
		t.Fatalf("tracked: %v", err)
	}
	if got.WarState != domain.WarStateNone {
		t.Fatalf("war state = %q, want never-observed sentinel", got.WarState)
	}
	if got.MaintenanceActive || got.RaidActive {
		t.Fatalf("flags must default to false: %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("updated_at must be set on seed")
	}
}

func TestSettersRoundTrip(t *testing.T) {
	s := newLiteStorage(t)
	ctx := context.Background()

	if err := s.SetWarState(ctx, domain.WarStateInWar); err != nil {
		t.Fatalf("set war state: %v", err)
	}
	if err := s.SetMaintenance(ctx, true); err != nil {
		t.Fatalf("set maintenance: %v", err)
	}
	if err := s.SetRaidActive(ctx, true); err != nil {
		t.Fatalf("set raid: %v", err)
	}

	got, err := s.Tracked(ctx)
	if err != nil {
		t.Fatalf("tracked: %v", err)
	}
	if got.WarState != domain.WarStateInWar || !got.MaintenanceActive || !got.RaidActive {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := s.SetMaintenance(ctx, false); err != nil {
		t.Fatalf("clear maintenance: %v", err)
	}
	got, err = s.Tracked(ctx)
	if err != nil {
		t.Fatalf("tracked: %v", err)
	}
	if got.MaintenanceActive {
		t.Fatal("maintenance must clear")
	}
}

func TestAttackLedgerDedup(t *testing.T) {
	s := newLiteStorage(t)
	ctx := context.Background()
	k := domain.AttackKey{AttackerTag: "#P1", DefenderName: "Enemy One", Order: 5}

	seen, err := s.SeenAttack(ctx, k)
	if err != nil {
		t.Fatalf("seen: %v", err)
	}
	if seen {
		t.Fatal("fresh key must not be seen")
	}

	if err := s.RecordAttack(ctx, k); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Recording the same key again is a no-op, not an error
	if err := s.RecordAttack(ctx, k); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	seen, err = s.SeenAttack(ctx, k)
	if err != nil {
		t.Fatalf("seen after record: %v", err)
	}
	if !seen {
		t.Fatal("recorded key must be seen")
	}

	n, err := s.LedgerSize(ctx)
	if err != nil {
		t.Fatalf("ledger size: %v", err)
	}
	if n != 1 {
		t.Fatalf("ledger size = %d, want 1", n)
	}
}

func TestAttackKeyDiscriminatesAllParts(t *testing.T) {
	s := newLiteStorage(t)
	ctx := context.Background()
	base := domain.AttackKey{AttackerTag: "#P1", DefenderName: "Enemy One", Order: 5}

	variants := []domain.AttackKey{
		base,
		{AttackerTag: "#P2", DefenderName: "Enemy One", Order: 5},
		{AttackerTag: "#P1", DefenderName: "Enemy Two", Order: 5},
		{AttackerTag: "#P1", DefenderName: "Enemy One", Order: 6},
	}
	for _, k := range variants {
		if err := s.RecordAttack(ctx, k); err != nil {
			t.Fatalf("record %+v: %v", k, err)
		}
	}

	n, err := s.LedgerSize(ctx)
	if err != nil {
		t.Fatalf("ledger size: %v", err)
	}
	if n != len(variants) {
		t.Fatalf("ledger size = %d, want %d distinct keys", n, len(variants))
	}
}
