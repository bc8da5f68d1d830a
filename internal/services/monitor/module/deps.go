package module

import (
	"context"

	"warwatch/internal/adapters/ingest/coc"
	"warwatch/internal/services/monitor/domain"
)

// SnapshotsFromClient adapts the upstream REST client to domain.SnapshotPort,
// projecting wire payloads into the detector's types
func SnapshotsFromClient(c *coc.Client, clanTag string) domain.SnapshotPort {
	return &cocSnapshots{c: c, clanTag: clanTag}
}

type cocSnapshots struct {
	c       *coc.Client
	clanTag string
}

func (s *cocSnapshots) CurrentWar(ctx context.Context) (domain.WarSnapshot, domain.Fetch, error) {
	war, oc, err := s.c.CurrentWarOf(ctx, s.clanTag)
	if oc != coc.OutcomeOK {
		return domain.WarSnapshot{}, fetchOf(oc), err
	}
	return projectWar(war), domain.FetchOK, nil
}

func (s *cocSnapshots) RaidActive(ctx context.Context) (bool, domain.Fetch, error) {
	seasons, oc, err := s.c.RaidSeasonsOf(ctx, s.clanTag, 1)
	if oc != coc.OutcomeOK {
		return false, fetchOf(oc), err
	}
	return seasons.RaidInProgress(), domain.FetchOK, nil
}

func (s *cocSnapshots) RateRemaining() int { return s.c.RateRemaining() }

func fetchOf(oc coc.Outcome) domain.Fetch {
	switch oc {
	case coc.OutcomeOK:
		return domain.FetchOK
	case coc.OutcomeMaintenance:
		return domain.FetchMaintenance
	default:
		return domain.FetchTransient
	}
}

func projectWar(w coc.CurrentWar) domain.WarSnapshot {
	snap := domain.WarSnapshot{
		State:     domain.WarState(w.State),
		StartTime: w.StartTime.Time,
		EndTime:   w.EndTime.Time,
		Us:        projectSide(w.Clan),
		Them:      projectSide(w.Opponent),
	}
	if w.TeamSize != nil {
		snap.TeamSize = *w.TeamSize
	}
	return snap
}

func projectSide(c coc.WarClan) domain.WarSide {
	side := domain.WarSide{
		Tag:         c.Tag,
		Name:        c.Name,
		Stars:       c.Stars,
		Destruction: c.DestructionPercentage,
	}
	for _, m := range c.Members {
		member := domain.Member{
			Tag:         m.Tag,
			Name:        m.Name,
			Townhall:    m.TownhallLevel,
			MapPosition: m.MapPosition,
		}
		for _, a := range m.Attacks {
			member.Attacks = append(member.Attacks, domain.Attack{
				AttackerTag: a.AttackerTag,
				DefenderTag: a.DefenderTag,
				Stars:       a.Stars,
				Destruction: a.DestructionPercentage,
				Order:       a.Order,
			})
		}
		side.Members = append(side.Members, member)
	}
	return side
}
