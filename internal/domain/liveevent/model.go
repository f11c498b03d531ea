package liveevent

import (
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
)

// Kind tags a scoring event.
type Kind string

const (
	KindGoal                  Kind = "goal"
	KindAssist                Kind = "assist"
	KindPenaltySave           Kind = "penalty_save"
	KindPenaltyMiss           Kind = "penalty_miss"
	KindOwnGoal               Kind = "own_goal"
	KindRedCard               Kind = "red_card"
	KindYellowCard            Kind = "yellow_card"
	KindCleanSheet            Kind = "clean_sheet"
	KindGoalsConceded         Kind = "goals_conceded"
	KindSaveBonus             Kind = "save_bonus"
	KindBonusChange           Kind = "bonus_change"
	KindDefensiveContribution Kind = "defensive_contribution"
)

var kindOrder = []Kind{
	KindGoal,
	KindAssist,
	KindPenaltySave,
	KindPenaltyMiss,
	KindOwnGoal,
	KindRedCard,
	KindYellowCard,
	KindCleanSheet,
	KindGoalsConceded,
	KindSaveBonus,
	KindBonusChange,
	KindDefensiveContribution,
}

var kindPriority = func() map[Kind]int {
	out := make(map[Kind]int, len(kindOrder))
	for i, kind := range kindOrder {
		out[kind] = i
	}
	return out
}()

// Priority orders kinds produced within one poll. Unknown kinds sort last.
func (k Kind) Priority() int {
	if priority, ok := kindPriority[k]; ok {
		return priority
	}
	return len(kindOrder)
}

// Event is one discrete scoring occurrence detected in a fixture.
// Team-level events (clean sheet, goals conceded) carry PlayerID 0.
type Event struct {
	Kind      Kind         `json:"kind"`
	FixtureID int          `json:"fixture_id"`
	PlayerID  int          `json:"player_id,omitempty"`
	TeamID    int          `json:"team_id"`
	Side      fixture.Side `json:"side,omitempty"`
	Name      string       `json:"name"`
	Points    int          `json:"points"`
	Minute    int          `json:"minute"`
	KickoffAt time.Time    `json:"kickoff_at"`
	Sequence  int64        `json:"sequence"`
}

// DetectedAt is the match time the event was first seen at.
func (e Event) DetectedAt() time.Time {
	return e.KickoffAt.Add(time.Duration(e.Minute) * time.Minute)
}

var goalPointsByPosition = map[player.Position]int{
	player.PositionGoalkeeper: 10,
	player.PositionDefender:   6,
	player.PositionMidfielder: 5,
	player.PositionForward:    4,
}

const (
	// cleanSheetPoints is the goalkeeper/defender award; team events report it.
	cleanSheetPoints      = 4
	savesPerBonusPoint    = 3
	goalsPerConcededPoint = 2
)

func pointsFor(kind Kind, position player.Position) int {
	switch kind {
	case KindGoal:
		return goalPointsByPosition[position]
	case KindAssist:
		return 3
	case KindPenaltySave:
		return 5
	case KindPenaltyMiss, KindOwnGoal:
		return -2
	case KindRedCard:
		return -3
	case KindYellowCard, KindGoalsConceded:
		return -1
	case KindCleanSheet:
		return cleanSheetPoints
	case KindSaveBonus:
		return 1
	default:
		return 0
	}
}
