// Command warwatch-monitor polls the Clash of Clans API for one clan and
// announces war, maintenance and raid-weekend transitions plus individual
// war attacks, each exactly once across restarts
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warwatch/internal/adapters/ingest/coc"
	"warwatch/internal/adapters/notify"
	"warwatch/internal/core/version"
	"warwatch/internal/modkit"
	"warwatch/internal/modkit/module"
	"warwatch/internal/platform/config"
	"warwatch/internal/platform/logger"
	"warwatch/internal/platform/store"
	"warwatch/internal/services/monitor/domain"
	monmod "warwatch/internal/services/monitor/module"
	"warwatch/internal/services/status"
)

func main() {
	root := config.New()
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openStore(ctx, root, l)
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	cocCfg := root.Prefix("COC_")
	client := coc.NewClient(coc.Options{
		BaseURL:      cocCfg.MayString("BASE_URL", ""),
		Token:        cocCfg.MustString("API_TOKEN"),
		Timeout:      cocCfg.MayDuration("TIMEOUT", 10*time.Second),
		RateLowWater: cocCfg.MayInt("RATE_LOW_WATER", 5),
		RateCooldown: cocCfg.MayDuration("RATE_COOLDOWN", 10*time.Second),
	})

	opts := monmod.FromConfig(root)

	var sink domain.NotifierPort
	url := root.Prefix("NOTIFY_").MayString("WEBHOOK_URL", "")
	switch {
	case root.Prefix("MONITOR_").MayBool("DRYRUN", false):
		l.Info().Msg("dry run, events go to the log only")
		sink = notify.NewStdout()
	case url != "":
		sink = notify.NewWebhook(url)
	default:
		l.Warn().Msg("NOTIFY_WEBHOOK_URL unset, events go to the log only")
		sink = notify.NewStdout()
	}

	deps := modkit.Deps{Cfg: root, DB: st.DB, Log: *l}
	mon := monmod.New(deps, st.Driver(), domain.Ports{
		Snapshots: monmod.SnapshotsFromClient(client, opts.ClanTag),
		Notifier:  sink,
	}, opts)

	module.Register(mon.Name(), mon.Ports())
	ports := module.MustPortsOf[monmod.Ports](mon)

	if err := ports.Storage.EnsureSchema(ctx); err != nil {
		l.Fatal().Err(err).Msg("schema setup failed")
	}

	if root.Prefix("STATUS_").MayBool("ENABLED", true) {
		srv := status.NewServer(root, status.Deps{Reader: ports.Reader, Guard: st.Guard})
		go func() {
			if err := srv.Run(ctx); err != nil {
				l.Error().Err(err).Msg("status server failed")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	build := version.Info()
	l.Info().
		Str("clan", opts.ClanTag).
		Str("driver", st.Driver()).
		Str("version", build.Version).
		Str("commit", build.Commit).
		Msg("monitor starting")
	if err := ports.Worker.Run(ctx); err != nil && err != context.Canceled {
		l.Fatal().Err(err).Msg("monitor worker failed")
	}
	l.Info().Msg("monitor stopped")
}

func openStore(ctx context.Context, root config.Conf, l *logger.Logger) *store.Store {
	sc := root.Prefix("STORE_")
	driver := sc.MayEnum("DRIVER", store.DriverSQLite, store.DriverSQLite, store.DriverPostgres)

	cfg := store.Config{AppName: "warwatch", Driver: driver}
	switch driver {
	case store.DriverPostgres:
		cfg.PG = store.PGConfig{
			URL:         sc.MustString("PG_DBURL"),
			MaxConns:    int32(sc.MayInt("PG_MAX_CONNS", 4)),
			SlowQueryMs: sc.MayInt("PG_SLOW_MS", 500),
			LogSQL:      sc.MayBool("PG_LOG_SQL", false),
		}
	default:
		cfg.Lite = store.LiteConfig{
			Path:        sc.MayString("SQLITE_PATH", "warwatch.db"),
			BusyTimeout: sc.MayDuration("SQLITE_BUSY_TIMEOUT", 5*time.Second),
		}
	}

	st, err := store.Open(ctx, cfg, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store open failed")
	}
	return st
}
