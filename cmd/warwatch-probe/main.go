// Command warwatch-probe makes one-shot reads against the Clash of Clans API
// and prints what the monitor would see: clan profile, current war, raid
// weekend. Useful for validating credentials and clan tags before running
// the daemon
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"warwatch/internal/adapters/ingest/coc"
	"warwatch/internal/platform/config"
	"warwatch/internal/platform/logger"
	"warwatch/internal/services/monitor/domain"
	monmod "warwatch/internal/services/monitor/module"
	"warwatch/internal/services/monitor/service"
)

func main() {
	root := config.New()
	l := logger.Get()

	cocCfg := root.Prefix("COC_")
	var (
		fClan    = flag.String("clan", cocCfg.MayString("CLAN_TAG", ""), "clan tag, e.g. #2PP0JCCL")
		fTimeout = flag.Duration("timeout", 30*time.Second, "overall probe deadline")
	)
	flag.Parse()
	if *fClan == "" {
		l.Fatal().Msg("probe: -clan or COC_CLAN_TAG is required")
	}

	client := coc.NewClient(coc.Options{
		BaseURL: cocCfg.MayString("BASE_URL", ""),
		Token:   cocCfg.MustString("API_TOKEN"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), *fTimeout)
	defer cancel()

	clan, oc, err := client.ClanOf(ctx, *fClan)
	if oc != coc.OutcomeOK {
		l.Fatal().Err(err).Stringer("outcome", oc).Msg("clan fetch failed")
	}
	fmt.Printf("Clan: %s (%s)\nLevel: %d  Members: %d  League: %s\n\n",
		clan.Name, clan.Tag, clan.ClanLevel, clan.Members, clan.WarLeague.Name)

	render, err := service.NewRenderer(root.Prefix("MONITOR_").MayString("TIMEZONE", "Asia/Manila"))
	if err != nil {
		l.Fatal().Err(err).Msg("bad timezone")
	}

	snaps := monmod.SnapshotsFromClient(client, *fClan)
	war, fetch, err := snaps.CurrentWar(ctx)
	switch fetch {
	case domain.FetchOK:
		fmt.Println(render.WarMessage(war))
		fmt.Println()
	case domain.FetchMaintenance:
		fmt.Println("Current war: unavailable (maintenance)")
		fmt.Println()
	default:
		l.Fatal().Err(err).Msg("war fetch failed")
	}

	raid, fetch, err := snaps.RaidActive(ctx)
	switch {
	case fetch == domain.FetchMaintenance:
		fmt.Println("Raid weekend: unavailable (maintenance)")
	case fetch != domain.FetchOK:
		l.Fatal().Err(err).Msg("raid fetch failed")
	case raid:
		fmt.Println("Raid weekend: in progress")
	default:
		fmt.Println("Raid weekend: not running")
	}

	fmt.Printf("\nAPI budget remaining: %d\n", snaps.RateRemaining())
}
