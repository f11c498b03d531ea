package ticker

import (
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
)

// DefaultCapacity bounds the newest-first change list.
const DefaultCapacity = 50

type State string

const (
	StateIdle    State = "idle"
	StateSeeded  State = "seeded"
	StateDiffing State = "diffing"
)

// ChangeKind tags a transition detected between two polls.
type ChangeKind string

const (
	ChangeBonus         ChangeKind = "bonus_change"
	ChangeCleanSheet    ChangeKind = "cs_lost"
	ChangeDefensiveGain ChangeKind = "defcon_gained"
)

// BonusChange is one player's provisional bonus moving between polls.
type BonusChange struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	Impact   int    `json:"impact"`
}

// ChangeEvent is one ticker notification. A bonus_change bundles every
// player whose allocation moved in the fixture.
type ChangeEvent struct {
	ID         string             `json:"id"`
	Kind       ChangeKind         `json:"kind"`
	Gameweek   int                `json:"gameweek"`
	FixtureID  int                `json:"fixture_id"`
	TeamID     int                `json:"team_id,omitempty"`
	Side       fixture.Side       `json:"side,omitempty"`
	PlayerID   int                `json:"player_id,omitempty"`
	Name       string             `json:"name"`
	Changes    []BonusChange      `json:"changes,omitempty"`
	Score      *fixture.Scoreline `json:"score,omitempty"`
	Minute     int                `json:"minute"`
	DetectedAt time.Time          `json:"detected_at"`
}

// FixtureState is the per-fixture part of a snapshot.
type FixtureState struct {
	FixtureID      int                `json:"fixture_id"`
	HomeTeamID     int                `json:"home_team_id"`
	AwayTeamID     int                `json:"away_team_id"`
	Score          fixture.Scoreline  `json:"score"`
	Minute         int                `json:"minute"`
	Bonus          scoring.Allocation `json:"bonus"`
	HomeCleanSheet bool               `json:"home_clean_sheet"`
	AwayCleanSheet bool               `json:"away_clean_sheet"`
}

// CleanSheet reports the side's clean-sheet flag.
func (s FixtureState) CleanSheet(side fixture.Side) bool {
	if side == fixture.SideAway {
		return s.AwayCleanSheet
	}
	return s.HomeCleanSheet
}

// TeamID returns the team playing on side.
func (s FixtureState) TeamID(side fixture.Side) int {
	if side == fixture.SideAway {
		return s.AwayTeamID
	}
	return s.HomeTeamID
}

func (s FixtureState) clone() FixtureState {
	s.Bonus = s.Bonus.Clone()
	return s
}

// Snapshot is the comparable state of one poll.
type Snapshot struct {
	Gameweek int
	Fixtures map[int]FixtureState
	// DefCon holds the players credited for defensive contribution, mapped to their team.
	DefCon      map[int]int
	PlayerNames map[int]string
	TeamNames   map[int]string
}

// Baseline is what the detector retained from the previous poll. It is
// replaced wholesale after every successful observation.
type Baseline struct {
	Gameweek int                  `json:"gameweek"`
	Seeded   bool                 `json:"seeded"`
	Diffs    int                  `json:"diffs"`
	Fixtures map[int]FixtureState `json:"fixtures"`
	DefCon   map[int]int          `json:"defcon"`
	Events   []ChangeEvent        `json:"events"`
}

// State derives the detector state from the baseline.
func (b Baseline) State() State {
	switch {
	case !b.Seeded:
		return StateIdle
	case b.Diffs == 0:
		return StateSeeded
	default:
		return StateDiffing
	}
}

// Clone returns a copy sharing no maps or slices with b.
func (b Baseline) Clone() Baseline {
	out := b
	out.Fixtures = make(map[int]FixtureState, len(b.Fixtures))
	for id, state := range b.Fixtures {
		out.Fixtures[id] = state.clone()
	}
	out.DefCon = make(map[int]int, len(b.DefCon))
	for playerID, teamID := range b.DefCon {
		out.DefCon[playerID] = teamID
	}
	out.Events = make([]ChangeEvent, len(b.Events))
	copy(out.Events, b.Events)
	return out
}
