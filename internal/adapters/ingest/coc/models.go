package coc

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate checks payloads at the adapter boundary so malformed upstream data
// never reaches the detector; a failed validation classifies as transient
var validate = validator.New(validator.WithRequiredStructEnabled())

// War state values as reported by the upstream
const (
	WarStateNotInWar    = "notInWar"
	WarStatePreparation = "preparation"
	WarStateInWar       = "inWar"
	WarStateEnded       = "warEnded"
)

// Raid season state reported by the upstream while a raid weekend is running
const RaidStateOngoing = "ongoing"

// Time wraps time.Time with the upstream's timestamp layout
// (e.g. 20250813T070000.000Z). Empty and missing values decode to zero
type Time struct {
	time.Time
}

const timeLayout = "20060102T150405.000Z"

// UnmarshalJSON decodes the upstream layout, tolerating empty strings
func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(timeLayout, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

// MarshalJSON re-encodes in the upstream layout (used by fixtures and the probe)
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.UTC().Format(timeLayout) + `"`), nil
}

// CurrentWar is the /clans/{tag}/currentwar payload projection
type CurrentWar struct {
	State string `json:"state" validate:"required"`

	// TeamSize is nil when the upstream omits it (e.g. between wars); the
	// distinction from zero matters to renderers
	TeamSize *int `json:"teamSize" validate:"omitempty,min=0"`

	StartTime            Time `json:"startTime"`
	EndTime              Time `json:"endTime"`
	PreparationStartTime Time `json:"preparationStartTime"`

	Clan     WarClan `json:"clan"`
	Opponent WarClan `json:"opponent"`
}

// WarClan is one side of a war
type WarClan struct {
	Tag                   string      `json:"tag"`
	Name                  string      `json:"name"`
	Stars                 int         `json:"stars" validate:"min=0"`
	DestructionPercentage float64     `json:"destructionPercentage" validate:"min=0,max=100"`
	Members               []WarMember `json:"members" validate:"dive"`
}

// WarMember is one rostered player with their logged attacks
type WarMember struct {
	Tag           string      `json:"tag" validate:"required"`
	Name          string      `json:"name"`
	TownhallLevel int         `json:"townhallLevel" validate:"min=0"`
	MapPosition   int         `json:"mapPosition" validate:"min=0"`
	Attacks       []WarAttack `json:"attacks" validate:"dive"`
}

// WarAttack is one combat action. Zero destruction is a real, expected value
// (disconnects), not an absent attack
type WarAttack struct {
	AttackerTag           string `json:"attackerTag" validate:"required"`
	DefenderTag           string `json:"defenderTag" validate:"required"`
	Stars                 int    `json:"stars" validate:"min=0,max=3"`
	DestructionPercentage int    `json:"destructionPercentage" validate:"min=0,max=100"`
	Order                 int    `json:"order" validate:"min=0"`
}

// Clan is the /clans/{tag} payload projection used by the probe and status surfaces
type Clan struct {
	Tag       string `json:"tag" validate:"required"`
	Name      string `json:"name"`
	ClanLevel int    `json:"clanLevel" validate:"min=0"`
	Members   int    `json:"members" validate:"min=0"`
	WarLeague struct {
		Name string `json:"name"`
	} `json:"warLeague"`
}

// RaidSeasonList is the /clans/{tag}/capitalraidseasons payload projection
type RaidSeasonList struct {
	Items []RaidSeason `json:"items" validate:"dive"`
}

// RaidSeason is one raid weekend entry, most recent first
type RaidSeason struct {
	State     string `json:"state" validate:"required"`
	StartTime Time   `json:"startTime"`
	EndTime   Time   `json:"endTime"`
}

// RaidInProgress projects the season list to the single boolean dimension the
// detector tracks
func (l RaidSeasonList) RaidInProgress() bool {
	if len(l.Items) == 0 {
		return false
	}
	return l.Items[0].State == RaidStateOngoing
}
