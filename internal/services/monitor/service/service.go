// Package service implements the monitor: two poll loops that turn upstream
// snapshots into exactly-once notifications backed by durable tracked state
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"warwatch/internal/platform/logger"
	"warwatch/internal/services/monitor/domain"
	"warwatch/internal/services/monitor/repo"
)

// Config tunes the poll loops
type Config struct {
	ClanTag string

	// LifecycleEvery is the war/maintenance/raid poll interval
	LifecycleEvery time.Duration

	// AttacksEvery is the sub-event poll interval
	AttacksEvery time.Duration

	// ErrorBackoff replaces the regular interval after a failed iteration
	ErrorBackoff time.Duration

	// MaxAttacksPerPoll caps announcements per attack poll; the rest surface
	// on later polls since the ledger ignores already-seen keys
	MaxAttacksPerPoll int

	// Timezone is the IANA zone used when rendering times
	Timezone string
}

// Service is the monitor engine. It implements domain.WorkerPort and
// domain.ReaderPort
type Service struct {
	store  repo.Storage
	snaps  domain.SnapshotPort
	notify domain.NotifierPort
	render *Renderer
	cfg    Config
	log    logger.Logger
	nowFn  func() time.Time

	mu            sync.Mutex
	lastLifecycle time.Time
	lastAttack    time.Time
}

// New constructs the monitor service
func New(store repo.Storage, snaps domain.SnapshotPort, notify domain.NotifierPort, cfg Config) (*Service, error) {
	render, err := NewRenderer(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:  store,
		snaps:  snaps,
		notify: notify,
		render: render,
		cfg:    cfg,
		log:    *logger.Named("monitor"),
		nowFn:  time.Now,
	}, nil
}

// Status implements domain.ReaderPort
func (s *Service) Status(ctx context.Context) (domain.StatusView, error) {
	tracked, err := s.store.Tracked(ctx)
	if err != nil {
		return domain.StatusView{}, err
	}
	ledger, err := s.store.LedgerSize(ctx)
	if err != nil {
		return domain.StatusView{}, err
	}

	s.mu.Lock()
	lastLifecycle, lastAttack := s.lastLifecycle, s.lastAttack
	s.mu.Unlock()

	return domain.StatusView{
		Clan:              s.cfg.ClanTag,
		WarState:          tracked.WarState,
		MaintenanceActive: tracked.MaintenanceActive,
		RaidActive:        tracked.RaidActive,
		LedgerSize:        ledger,
		LastLifecyclePoll: lastLifecycle,
		LastAttackPoll:    lastAttack,
		RateRemaining:     s.snaps.RateRemaining(),
		UpdatedAt:         tracked.UpdatedAt,
	}, nil
}

// deliver sends one event. Delivery is best-effort: state was persisted before
// this point, so a failed send is logged and dropped, never retried
func (s *Service) deliver(ctx context.Context, dim domain.Dimension, text string) {
	ev := domain.Event{ID: uuid.NewString(), Dimension: dim, Text: text, At: s.nowFn()}
	if err := s.notify.Deliver(ctx, ev.Text); err != nil {
		logger.C(ctx).Error().Err(err).
			Str("event_id", ev.ID).
			Str("dimension", string(ev.Dimension)).
			Msg("event delivery failed, dropping")
		return
	}
	logger.C(ctx).Info().
		Str("event_id", ev.ID).
		Str("dimension", string(ev.Dimension)).
		Msg("event delivered")
}

func (s *Service) markLifecyclePoll() {
	s.mu.Lock()
	s.lastLifecycle = s.nowFn()
	s.mu.Unlock()
}

func (s *Service) markAttackPoll() {
	s.mu.Lock()
	s.lastAttack = s.nowFn()
	s.mu.Unlock()
}
