package service

import (
	"context"
	"sync"
	"time"

	perr "warwatch/internal/platform/errors"
	"warwatch/internal/services/monitor/domain"
)

// Run implements domain.WorkerPort: it drives the lifecycle and attack loops
// until ctx is cancelled. The loops are fault-isolated from each other; a
// panic or error in one iteration is logged and backed off, never propagated
func (s *Service) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.loop(ctx, "lifecycle", s.cfg.LifecycleEvery, s.pollLifecycle)
	}()
	go func() {
		defer wg.Done()
		s.loop(ctx, "attacks", s.cfg.AttacksEvery, s.pollAttacks)
	}()
	wg.Wait()
	return ctx.Err()
}

// loop ticks immediately, then waits the interval between passes. A failed
// pass swaps the interval for the error backoff
func (s *Service) loop(ctx context.Context, name string, every time.Duration, tick func(context.Context) error) {
	log := s.log.With().Str("loop", name).Logger()
	log.Info().Dur("every", every).Msg("poll loop started")

	for {
		delay := every
		if err := s.safeTick(ctx, name, tick); err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("poll loop stopped")
				return
			}
			retryable := perr.Retryable(err) || perr.IsCode(err, perr.ErrorCodePanic)
			log.Warn().Err(err).
				Bool("retryable", retryable).
				Dur("backoff", s.cfg.ErrorBackoff).
				Msg("poll iteration failed, backing off")
			delay = s.cfg.ErrorBackoff
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("poll loop stopped")
			return
		case <-timer.C:
		}
	}
}

// safeTick converts a panicking iteration into an error so the loop survives
func (s *Service) safeTick(ctx context.Context, name string, tick func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("monitor %s iteration panicked: %v", name, r)
		}
	}()
	return tick(ctx)
}

var _ domain.WorkerPort = (*Service)(nil)
var _ domain.ReaderPort = (*Service)(nil)
