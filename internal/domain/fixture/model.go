package fixture

import "time"

// Statistic identifiers published in a fixture's stats collection.
const (
	StatGoalsScored           = "goals_scored"
	StatAssists               = "assists"
	StatOwnGoals              = "own_goals"
	StatPenaltiesSaved        = "penalties_saved"
	StatPenaltiesMissed       = "penalties_missed"
	StatYellowCards           = "yellow_cards"
	StatRedCards              = "red_cards"
	StatSaves                 = "saves"
	StatBonus                 = "bonus"
	StatBPS                   = "bps"
	StatDefensiveContribution = "defensive_contribution"
)

// Side identifies the home or away team of a fixture.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// StatValue attributes a value to one player.
type StatValue struct {
	PlayerID int `json:"player_id"`
	Value    int `json:"value"`
}

// Stat holds per-side values for one statistic identifier.
type Stat struct {
	Identifier string      `json:"identifier"`
	Home       []StatValue `json:"home"`
	Away       []StatValue `json:"away"`
}

// Values returns the side's entries.
func (s Stat) Values(side Side) []StatValue {
	if side == SideAway {
		return s.Away
	}
	return s.Home
}

// All returns home followed by away entries.
func (s Stat) All() []StatValue {
	out := make([]StatValue, 0, len(s.Home)+len(s.Away))
	out = append(out, s.Home...)
	return append(out, s.Away...)
}

// Fixture represents one match of a gameweek with its running state.
type Fixture struct {
	ID                int
	Gameweek          int
	HomeTeamID        int
	AwayTeamID        int
	HomeScore         int
	AwayScore         int
	Minutes           int
	KickoffAt         time.Time
	Started           bool
	Finished          bool
	FinishedConfirmed bool
	Stats             []Stat
}

// IsLive reports a fixture that kicked off and has not been provisionally finished.
func (f Fixture) IsLive() bool {
	return f.Started && !f.Finished && !f.FinishedConfirmed
}

// HasProvisionalBonus reports whether bonus is still computed from the ranking score.
func (f Fixture) HasProvisionalBonus() bool {
	return f.Started && !f.FinishedConfirmed
}

// Stat looks up a statistic by identifier.
func (f Fixture) Stat(identifier string) (Stat, bool) {
	for _, stat := range f.Stats {
		if stat.Identifier == identifier {
			return stat, true
		}
	}
	return Stat{}, false
}

// TeamID returns the team playing on side.
func (f Fixture) TeamID(side Side) int {
	if side == SideAway {
		return f.AwayTeamID
	}
	return f.HomeTeamID
}

// Conceded returns goals conceded by side.
func (f Fixture) Conceded(side Side) int {
	if side == SideAway {
		return f.HomeScore
	}
	return f.AwayScore
}

// SideOf returns the side teamID plays on.
func (f Fixture) SideOf(teamID int) (Side, bool) {
	switch teamID {
	case f.HomeTeamID:
		return SideHome, true
	case f.AwayTeamID:
		return SideAway, true
	default:
		return "", false
	}
}

// CleanSheetMinute is the elapsed time from which a side holds a clean sheet.
const CleanSheetMinute = 60

// HasCleanSheet reports whether side has kept a clean sheet so far.
func (f Fixture) HasCleanSheet(side Side) bool {
	return f.Minutes >= CleanSheetMinute && f.Conceded(side) == 0
}

// Scoreline is a fixture's running score.
type Scoreline struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

func (f Fixture) Scoreline() Scoreline {
	return Scoreline{Home: f.HomeScore, Away: f.AwayScore}
}
