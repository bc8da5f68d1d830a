package service

import (
	"context"

	"warwatch/internal/platform/logger"
	"warwatch/internal/services/monitor/domain"
)

// pollLifecycle runs one war/maintenance/raid detection pass.
// Each dimension compares observed vs stored by simple inequality, and every
// new value is persisted before its notification goes out: a crash between
// the write and the send loses at most that one message, it never duplicates
func (s *Service) pollLifecycle(ctx context.Context) error {
	ctx = logger.WithPoll(ctx, "lifecycle", s.cfg.ClanTag)

	tracked, err := s.store.Tracked(ctx)
	if err != nil {
		return err
	}

	snap, fetch, err := s.snaps.CurrentWar(ctx)
	switch fetch {
	case domain.FetchTransient:
		return err
	case domain.FetchMaintenance:
		// Maintenance suppresses war/raid evaluation for this pass but is
		// itself a tracked dimension
		s.markLifecyclePoll()
		if !tracked.MaintenanceActive {
			if err := s.store.SetMaintenance(ctx, true); err != nil {
				return err
			}
			logger.C(ctx).Info().Msg("maintenance started")
			s.deliver(ctx, domain.DimensionMaintenance, s.render.MaintenanceMessage(true))
		}
		return nil
	}
	s.markLifecyclePoll()

	if tracked.MaintenanceActive {
		if err := s.store.SetMaintenance(ctx, false); err != nil {
			return err
		}
		logger.C(ctx).Info().Msg("maintenance ended")
		s.deliver(ctx, domain.DimensionMaintenance, s.render.MaintenanceMessage(false))
	}

	// War lifecycle. The stored sentinel ("") differs from every live state,
	// so the first successful poll after a fresh install announces whatever
	// state the clan is in. States may be skipped between polls; only the
	// observed destination matters
	if snap.State != tracked.WarState {
		if err := s.store.SetWarState(ctx, snap.State); err != nil {
			return err
		}
		logger.C(ctx).Info().
			Str("from", string(tracked.WarState)).
			Str("to", string(snap.State)).
			Msg("war state transition")
		if snap.State == domain.WarStateEnded {
			// The final tally is only reliable once the end is confirmed;
			// the upstream replaces the current-war resource soon after
			snap = s.refetchEndedWar(ctx, snap)
		}
		s.deliver(ctx, domain.DimensionWar, s.render.WarMessage(snap))
	}

	raid, fetch, err := s.snaps.RaidActive(ctx)
	if fetch != domain.FetchOK {
		// The war dimension already committed; the raid read retries next tick
		if err != nil {
			return err
		}
		return nil
	}
	if raid != tracked.RaidActive {
		if err := s.store.SetRaidActive(ctx, raid); err != nil {
			return err
		}
		logger.C(ctx).Info().Bool("active", raid).Msg("raid weekend transition")
		s.deliver(ctx, domain.DimensionRaid, s.render.RaidMessage(raid))
	}
	return nil
}

// refetchEndedWar fetches the war once more for the final result. When the
// resource is already gone or unreadable, the triggering snapshot stands
func (s *Service) refetchEndedWar(ctx context.Context, snap domain.WarSnapshot) domain.WarSnapshot {
	fresh, fetch, err := s.snaps.CurrentWar(ctx)
	if fetch != domain.FetchOK || fresh.State != domain.WarStateEnded {
		if err != nil {
			logger.C(ctx).Warn().Err(err).Msg("war result refetch failed, using initial snapshot")
		}
		return snap
	}
	return fresh
}
