// Package domain defines the core types and interfaces for the monitor service
package domain

import "time"

// WarState is the upstream war lifecycle state. The zero value is the
// never-observed sentinel: it compares unequal to every live state, so the
// very first successful poll always registers as a transition
type WarState string

// War lifecycle states, in their natural order. The upstream may skip
// states between polls (e.g. notInWar straight to inWar); detection compares
// stored vs observed and never assumes adjacency
const (
	WarStateNone        WarState = ""
	WarStateNotInWar    WarState = "notInWar"
	WarStatePreparation WarState = "preparation"
	WarStateInWar       WarState = "inWar"
	WarStateEnded       WarState = "warEnded"
)

// Dimension names one of the independent tracked axes
type Dimension string

// Tracked dimensions. Each changes independently; one poll may surface
// transitions on several at once
const (
	DimensionWar         Dimension = "war"
	DimensionMaintenance Dimension = "maintenance"
	DimensionRaid        Dimension = "raid"
)

// Fetch classifies one upstream poll
type Fetch int

const (
	// FetchOK means a valid snapshot was returned
	FetchOK Fetch = iota
	// FetchMaintenance means the upstream is in scheduled downtime
	FetchMaintenance
	// FetchTransient means a retryable failure; the tick is skipped
	FetchTransient
)

// String implements fmt.Stringer for log fields
func (f Fetch) String() string {
	switch f {
	case FetchOK:
		return "ok"
	case FetchMaintenance:
		return "maintenance"
	default:
		return "transient"
	}
}

// TrackedState is the durable last-known value of every dimension.
// It survives restarts; comparisons against it are what turn polls into events
type TrackedState struct {
	WarState          WarState
	MaintenanceActive bool
	RaidActive        bool
	UpdatedAt         time.Time
}

// Transition is one observed state change on one dimension
type Transition struct {
	Dimension Dimension
	From      WarState
	To        WarState
}

// WarSnapshot is the projection of one current-war poll the detector
// and renderer need
type WarSnapshot struct {
	State WarState

	// TeamSize is zero when the upstream omits it (between wars); renderers
	// treat zero as unknown rather than an empty roster
	TeamSize int

	StartTime time.Time
	EndTime   time.Time

	Us   WarSide
	Them WarSide
}

// WarSide is one clan's side of a war
type WarSide struct {
	Tag         string
	Name        string
	Stars       int
	Destruction float64
	Members     []Member
}

// Member is one rostered player
type Member struct {
	Tag         string
	Name        string
	Townhall    int
	MapPosition int
	Attacks     []Attack
}

// Attack is one combat action as reported on the roster
type Attack struct {
	AttackerTag string
	DefenderTag string
	Stars       int
	Destruction int
	Order       int
}

// AttackKey is the identity of an attack in the dedup ledger.
// The defender is keyed by resolved display name, not tag, because the
// rendered message carries the name and the ledger mirrors what was announced
type AttackKey struct {
	AttackerTag  string
	DefenderName string
	Order        int
}

// MemberAttack is an attack enriched with roster context for rendering
type MemberAttack struct {
	Key          AttackKey
	AttackerName string
	AttackerPos  int
	DefenderPos  int
	Stars        int
	Destruction  int
}

// WarOutcome is the final result of a war from our side's perspective
type WarOutcome int

// War results, decided by stars first and total destruction as tiebreaker
const (
	WarOutcomeDraw WarOutcome = iota
	WarOutcomeVictory
	WarOutcomeDefeat
)

// String implements fmt.Stringer
func (o WarOutcome) String() string {
	switch o {
	case WarOutcomeVictory:
		return "VICTORY"
	case WarOutcomeDefeat:
		return "DEFEAT"
	default:
		return "DRAW"
	}
}

// Event is one deliverable announcement
type Event struct {
	ID        string
	Dimension Dimension
	Text      string
	At        time.Time
}

// StatusView is the read model served by the status surface
type StatusView struct {
	Clan              string    `json:"clan"`
	WarState          WarState  `json:"war_state"`
	MaintenanceActive bool      `json:"maintenance_active"`
	RaidActive        bool      `json:"raid_active"`
	LedgerSize        int       `json:"ledger_size"`
	LastLifecyclePoll time.Time `json:"last_lifecycle_poll"`
	LastAttackPoll    time.Time `json:"last_attack_poll"`
	RateRemaining     int       `json:"rate_remaining"`
	UpdatedAt         time.Time `json:"updated_at"`
}
