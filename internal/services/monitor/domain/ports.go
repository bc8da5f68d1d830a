package domain

import "context"

// SnapshotPort fetches classified snapshots from the upstream API.
// Implementations never return fatal errors: every failure maps to
// FetchMaintenance or FetchTransient and the next tick retries
type SnapshotPort interface {
	// CurrentWar fetches the clan's war snapshot
	CurrentWar(ctx context.Context) (WarSnapshot, Fetch, error)

	// RaidActive reports whether a capital raid weekend is in progress
	RaidActive(ctx context.Context) (bool, Fetch, error)

	// RateRemaining reports the last observed upstream request budget
	RateRemaining() int
}

// NotifierPort delivers rendered event messages
type NotifierPort interface {
	Deliver(ctx context.Context, text string) error
}

// WorkerPort runs the poll loops until the context is cancelled
type WorkerPort interface {
	Run(ctx context.Context) error
}

// ReaderPort serves the monitor's read model
type ReaderPort interface {
	Status(ctx context.Context) (StatusView, error)
}

// Ports are dependencies injected into the monitor module
type Ports struct {
	Snapshots SnapshotPort // required
	Notifier  NotifierPort // required
}
