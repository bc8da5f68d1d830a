package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"warwatch/internal/services/monitor/domain"
)

// memStore is an in-memory Storage double with the same semantics as the SQL
// repos: singleton tracked row, idempotent ledger inserts
type memStore struct {
	mu      sync.Mutex
	tracked domain.TrackedState
	ledger  map[domain.AttackKey]struct{}

	seenErr   error
	recordErr error
}

func newMemStore() *memStore {
	return &memStore{ledger: make(map[domain.AttackKey]struct{})}
}

func (m *memStore) EnsureSchema(context.Context) error { return nil }

func (m *memStore) Tracked(context.Context) (domain.TrackedState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracked, nil
}

func (m *memStore) SetWarState(_ context.Context, s domain.WarState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked.WarState = s
	m.tracked.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) SetMaintenance(_ context.Context, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked.MaintenanceActive = active
	return nil
}

func (m *memStore) SetRaidActive(_ context.Context, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked.RaidActive = active
	return nil
}

func (m *memStore) SeenAttack(_ context.Context, k domain.AttackKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seenErr != nil {
		return false, m.seenErr
	}
	_, ok := m.ledger[k]
	return ok, nil
}

func (m *memStore) RecordAttack(_ context.Context, k domain.AttackKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.ledger[k] = struct{}{}
	return nil
}

func (m *memStore) LedgerSize(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ledger), nil
}

// fakeSnaps is a scriptable SnapshotPort
type fakeSnaps struct {
	mu sync.Mutex

	war      domain.WarSnapshot
	warFetch domain.Fetch
	warErr   error

	raid      bool
	raidFetch domain.Fetch
	raidErr   error

	warCalls int
	panics   bool

	// warFn, when set, scripts CurrentWar per call number (1-based)
	warFn func(call int) (domain.WarSnapshot, domain.Fetch, error)
}

func (f *fakeSnaps) CurrentWar(context.Context) (domain.WarSnapshot, domain.Fetch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warCalls++
	if f.panics {
		panic("scripted panic")
	}
	if f.warFn != nil {
		return f.warFn(f.warCalls)
	}
	return f.war, f.warFetch, f.warErr
}

func (f *fakeSnaps) RaidActive(context.Context) (bool, domain.Fetch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raid, f.raidFetch, f.raidErr
}

func (f *fakeSnaps) RateRemaining() int { return 30 }

func (f *fakeSnaps) set(fn func(*fakeSnaps)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// fakeNotify records delivered messages
type fakeNotify struct {
	mu   sync.Mutex
	msgs []string
	fail error
}

func (f *fakeNotify) Deliver(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.msgs = append(f.msgs, text)
	return nil
}

func (f *fakeNotify) delivered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	copy(out, f.msgs)
	return out
}

func newTestService(t *testing.T, store *memStore, snaps *fakeSnaps, sink *fakeNotify) *Service {
	t.Helper()
	s, err := New(store, snaps, sink, Config{
		ClanTag:           "#AAA",
		LifecycleEvery:    time.Minute,
		AttacksEvery:      time.Second,
		ErrorBackoff:      time.Millisecond,
		MaxAttacksPerPoll: 3,
		Timezone:          "UTC",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return s
}

func warSnap(state domain.WarState) domain.WarSnapshot {
	return domain.WarSnapshot{
		State:    state,
		TeamSize: 15,
		EndTime:  time.Now().Add(12 * time.Hour),
		Us:       domain.WarSide{Tag: "#AAA", Name: "Us", Stars: 10, Destruction: 55.5},
		Them:     domain.WarSide{Tag: "#BBB", Name: "Them", Stars: 8, Destruction: 41.0},
	}
}

func TestStatusReadModel(t *testing.T) {
	store := newMemStore()
	store.tracked = domain.TrackedState{WarState: domain.WarStateInWar, RaidActive: true}
	_ = store.RecordAttack(context.Background(), domain.AttackKey{AttackerTag: "#P1", DefenderName: "X", Order: 1})

	s := newTestService(t, store, &fakeSnaps{}, &fakeNotify{})
	got, err := s.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.WarState != domain.WarStateInWar || !got.RaidActive || got.MaintenanceActive {
		t.Fatalf("status mismatch: %+v", got)
	}
	if got.LedgerSize != 1 {
		t.Fatalf("ledger size = %d", got.LedgerSize)
	}
	if got.RateRemaining != 30 {
		t.Fatalf("rate remaining = %d", got.RateRemaining)
	}
	if got.Clan != "#AAA" {
		t.Fatalf("clan = %q", got.Clan)
	}
}

func TestDeliveryFailureIsDropped(t *testing.T) {
	store := newMemStore()
	snaps := &fakeSnaps{war: warSnap(domain.WarStateInWar), warFetch: domain.FetchOK}
	sink := &fakeNotify{fail: context.DeadlineExceeded}
	s := newTestService(t, store, snaps, sink)

	if err := s.pollLifecycle(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	// State committed even though delivery failed: seen before delivered
	if store.tracked.WarState != domain.WarStateInWar {
		t.Fatalf("war state = %q, want inWar despite failed delivery", store.tracked.WarState)
	}

	// Recovery: next poll with working sink must not re-announce
	sink.fail = nil
	if err := s.pollLifecycle(context.Background()); err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if got := sink.delivered(); len(got) != 0 {
		t.Fatalf("lost transition must stay lost, got %q", got)
	}
}

func containsAll(t *testing.T, s string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			t.Fatalf("message %q missing %q", s, sub)
		}
	}
}
