package module

import (
	"time"

	"warwatch/internal/platform/config"
)

// Options holds configuration settings for the monitor module
type Options struct {
	ClanTag           string
	LifecycleEvery    time.Duration
	AttacksEvery      time.Duration
	ErrorBackoff      time.Duration
	MaxAttacksPerPoll int
	Timezone          string
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	mf := cfg.Prefix("MONITOR_")
	return Options{
		ClanTag:           cfg.Prefix("COC_").MustString("CLAN_TAG"),
		LifecycleEvery:    mf.MayDuration("LIFECYCLE_EVERY", 3*time.Minute),
		AttacksEvery:      mf.MayDuration("ATTACKS_EVERY", 10*time.Second),
		ErrorBackoff:      mf.MayDuration("ERROR_BACKOFF", 30*time.Second),
		MaxAttacksPerPoll: mf.MayInt("MAX_ATTACKS_PER_POLL", 3),
		Timezone:          mf.MayString("TIMEZONE", "Asia/Manila"),
	}
}
