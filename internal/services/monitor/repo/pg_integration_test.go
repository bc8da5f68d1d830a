//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"warwatch/internal/modkit/repokit"
	"warwatch/internal/platform/store"
	"warwatch/internal/services/monitor/domain"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func newPGStorage(t *testing.T, dsn string) Storage {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{
		AppName: "warwatch-pg-integration",
		Driver:  store.DriverPostgres,
		PG:      store.PGConfig{URL: dsn, MaxConns: 2},
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(ctx) })

	s := repokit.MustBind[Storage](NewPG(), st.DB)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return s
}

func TestPGStorage_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	s := newPGStorage(t, dsn)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	// schema setup is idempotent across restarts
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("second ensure schema: %v", err)
	}

	got, err := s.Tracked(ctx)
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

	if err := s.SetWarState(ctx, domain.WarStateInWar); err != nil {
		t.Fatalf("set war state: %v", err)
	}
	if err := s.SetMaintenance(ctx, true); err != nil {
		t.Fatalf("set maintenance: %v", err)
	}
	if err := s.SetRaidActive(ctx, true); err != nil {
		t.Fatalf("set raid: %v", err)
	}
	got, err = s.Tracked(ctx)
	if err != nil {
		t.Fatalf("tracked after setters: %v", err)
	}
	if got.WarState != domain.WarStateInWar || !got.MaintenanceActive || !got.RaidActive {
		t.Fatalf("round trip mismatch: %+v", got)
	}

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
	if err := s.RecordAttack(ctx, k); err != nil {
		t.Fatalf("re-record must be a no-op: %v", err)
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
