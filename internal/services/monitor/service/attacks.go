package service

import (
	"context"
	"sort"

	"warwatch/internal/platform/logger"
	"warwatch/internal/services/monitor/domain"
)

// pollAttacks runs one sub-event pass: extract our side's attacks from the
// roster, keep only the most recent few (a full war can hold hundreds but
// only a handful are new per interval), skip the ones the ledger has seen,
// and announce the rest. Keys enter the ledger before their message is sent
func (s *Service) pollAttacks(ctx context.Context) error {
	ctx = logger.WithPoll(ctx, "attacks", s.cfg.ClanTag)

	snap, fetch, err := s.snaps.CurrentWar(ctx)
	switch fetch {
	case domain.FetchTransient:
		return err
	case domain.FetchMaintenance:
		// the lifecycle loop owns the maintenance dimension
		return nil
	}
	s.markAttackPoll()

	if snap.State != domain.WarStateInWar {
		return nil
	}

	recent := extractAttacks(snap)
	if len(recent) > s.cfg.MaxAttacksPerPoll {
		recent = recent[:s.cfg.MaxAttacksPerPoll]
	}
	for _, a := range recent {
		seen, err := s.store.SeenAttack(ctx, a.Key)
		if err != nil {
			return err
		}
		if seen {
			continue
		}
		if err := s.store.RecordAttack(ctx, a.Key); err != nil {
			return err
		}
		s.deliver(ctx, domain.DimensionWar, s.render.AttackMessage(a))
	}
	return nil
}

// extractAttacks flattens our roster's attacks with defender names resolved
// from the opposing roster, deduplicates within the snapshot, and orders most
// recent first. An unresolvable defender tag falls back to the tag itself so
// the ledger key stays stable
func extractAttacks(snap domain.WarSnapshot) []domain.MemberAttack {
	enemy := make(map[string]domain.Member, len(snap.Them.Members))
	for _, m := range snap.Them.Members {
		enemy[m.Tag] = m
	}

	inSnap := make(map[domain.AttackKey]struct{})
	var out []domain.MemberAttack
	for _, m := range snap.Us.Members {
		for _, a := range m.Attacks {
			name := a.DefenderTag
			pos := 0
			if d, ok := enemy[a.DefenderTag]; ok {
				name = normalizeName(d.Name)
				pos = d.MapPosition
			}
			key := domain.AttackKey{AttackerTag: a.AttackerTag, DefenderName: name, Order: a.Order}
			if _, dup := inSnap[key]; dup {
				continue
			}
			inSnap[key] = struct{}{}
			out = append(out, domain.MemberAttack{
				Key:          key,
				AttackerName: normalizeName(m.Name),
				AttackerPos:  m.MapPosition,
				DefenderPos:  pos,
				Stars:        a.Stars,
				Destruction:  a.Destruction,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key.Order > out[j].Key.Order })
	return out
}
