package notify

import (
	"context"

	"warwatch/internal/platform/logger"
)

// Stdout logs each message instead of posting it. It is the sink when no
// webhook URL is configured, which keeps the monitor useful for dry runs
type Stdout struct {
	log logger.Logger
}

// NewStdout builds the logging sink
func NewStdout() *Stdout {
	return &Stdout{log: *logger.Named("notify")}
}

// Deliver writes the message to the structured log and never fails
func (s *Stdout) Deliver(_ context.Context, text string) error {
	s.log.Info().Str("message", text).Msg("event")
	return nil
}
