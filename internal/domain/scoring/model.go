package scoring

import (
	"github.com/riskibarqy/fantasy-live/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
)

// Anomaly flags a lineup that was scored on a best-effort basis.
type Anomaly string

const (
	AnomalyIncompleteLineup Anomaly = "incomplete_lineup"
	AnomalyMissingCaptain   Anomaly = "missing_captain"
	AnomalyMultipleCaptains Anomaly = "multiple_captains"
	AnomalyDuplicateSlot    Anomaly = "duplicate_slot"
)

// Role describes how a pick contributed to the entry's score.
type Role string

const (
	RoleStarter    Role = "starter"
	RoleSubstitute Role = "substitute"
	RoleBench      Role = "bench"
	RoleBenched    Role = "subbed_out"
)

// PlayerPoints is the per-pick audit line of an entry's score.
type PlayerPoints struct {
	PlayerID         int             `json:"player_id"`
	Name             string          `json:"name"`
	Position         player.Position `json:"position"`
	Slot             int             `json:"slot"`
	Role             Role            `json:"role"`
	Minutes          int             `json:"minutes"`
	IsCaptain        bool            `json:"is_captain"`
	IsViceCaptain    bool            `json:"is_vice_captain"`
	Multiplier       int             `json:"multiplier"`
	RawPoints        int             `json:"raw_points"`
	ProvisionalBonus int             `json:"provisional_bonus"`
	CountedPoints    int             `json:"counted_points"`
}

// EntryResult is one entrant's live score for a gameweek.
type EntryResult struct {
	EntryID       int            `json:"entry_id"`
	Gameweek      int            `json:"gameweek"`
	Chip          lineup.Chip    `json:"chip"`
	TotalPoints   int            `json:"total_points"`
	BenchPoints   int            `json:"bench_points"`
	Players       []PlayerPoints `json:"players"`
	Substitutions []Substitution `json:"substitutions"`
	Anomalies     []Anomaly      `json:"anomalies,omitempty"`
}

// HasAnomaly reports whether the result carries the given flag.
func (r EntryResult) HasAnomaly(anomaly Anomaly) bool {
	for _, item := range r.Anomalies {
		if item == anomaly {
			return true
		}
	}
	return false
}
