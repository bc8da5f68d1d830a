package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	// Driver selects the backend: "sqlite" (default) or "postgres"
	Driver string

	PG   PGConfig
	Lite LiteConfig
}

// PGConfig configures postgres connectivity
type PGConfig struct {
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Guard/boot knobs
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// LiteConfig configures the embedded sqlite backend
type LiteConfig struct {
	// Path is the database file; ":memory:" keeps everything in process
	Path string

	// BusyTimeout guards concurrent writers from SQLITE_BUSY; default 5s
	BusyTimeout time.Duration
}
