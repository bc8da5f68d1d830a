package module

import (
	"testing"

	"warwatch/internal/adapters/ingest/coc"
	"warwatch/internal/services/monitor/domain"
)

func TestFetchOfMapping(t *testing.T) {
	cases := []struct {
		in   coc.Outcome
		want domain.Fetch
	}{
		{coc.OutcomeOK, domain.FetchOK},
		{coc.OutcomeMaintenance, domain.FetchMaintenance},
		{coc.OutcomeTransient, domain.FetchTransient},
	}
	for _, tc := range cases {
		if got := fetchOf(tc.in); got != tc.want {
			t.Fatalf("fetchOf(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestProjectWar(t *testing.T) {
	size := 15
	w := coc.CurrentWar{
		State:    coc.WarStateInWar,
		TeamSize: &size,
		Clan: coc.WarClan{
			Tag: "#AAA", Name: "Us", Stars: 12, DestructionPercentage: 44.4,
			Members: []coc.WarMember{{
				Tag: "#P1", Name: "Alpha", TownhallLevel: 14, MapPosition: 1,
				Attacks: []coc.WarAttack{{AttackerTag: "#P1", DefenderTag: "#E1", Stars: 2, DestructionPercentage: 71, Order: 3}},
			}},
		},
		Opponent: coc.WarClan{Tag: "#BBB", Name: "Them"},
	}

	snap := projectWar(w)
	if snap.State != domain.WarStateInWar || snap.TeamSize != 15 {
		t.Fatalf("header mismatch: %+v", snap)
	}
	if snap.Us.Stars != 12 || snap.Us.Destruction != 44.4 {
		t.Fatalf("side mismatch: %+v", snap.Us)
	}
	if len(snap.Us.Members) != 1 || len(snap.Us.Members[0].Attacks) != 1 {
		t.Fatalf("roster mismatch: %+v", snap.Us.Members)
	}
	a := snap.Us.Members[0].Attacks[0]
	if a.AttackerTag != "#P1" || a.DefenderTag != "#E1" || a.Order != 3 || a.Destruction != 71 {
		t.Fatalf("attack mismatch: %+v", a)
	}
}

func TestProjectWarAbsentTeamSize(t *testing.T) {
	snap := projectWar(coc.CurrentWar{State: coc.WarStateNotInWar})
	if snap.TeamSize != 0 {
		t.Fatalf("absent team size must project to zero, got %d", snap.TeamSize)
	}
}
