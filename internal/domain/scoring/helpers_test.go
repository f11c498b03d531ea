package scoring

import (
	"github.com/riskibarqy/fantasy-live/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
)

// standardPositions is a 4-4-2 with a GK/DEF/MID/FWD bench.
var standardPositions = []player.Position{
	player.PositionGoalkeeper,
	player.PositionDefender, player.PositionDefender, player.PositionDefender, player.PositionDefender,
	player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder,
	player.PositionForward, player.PositionForward,
	player.PositionGoalkeeper, player.PositionDefender, player.PositionMidfielder, player.PositionForward,
}

// buildSquad returns a lineup where slot i holds player i+1, plus snapshots in
// which everyone played 90 minutes of a finished fixture and scored 2.
func buildSquad(positions []player.Position) (lineup.Lineup, map[int]player.Snapshot) {
	item := lineup.Lineup{EntryID: 77, Gameweek: 10}
	players := make(map[int]player.Snapshot, len(positions))
	for slot, position := range positions {
		playerID := slot + 1
		multiplier := 1
		if slot >= lineup.StartingSize {
			multiplier = 0
		}
		item.Picks = append(item.Picks, lineup.Pick{
			EntryID:    item.EntryID,
			PlayerID:   playerID,
			Slot:       slot,
			Multiplier: multiplier,
		})
		players[playerID] = player.Snapshot{
			ID:       playerID,
			Name:     "Player " + string(rune('A'+slot)),
			Position: position,
			Points:   2,
			Minutes:  90,
			Status:   player.PlayStatusFinished,
		}
	}
	return item, players
}

func setCaptain(item *lineup.Lineup, captainID, viceID int) {
	for i := range item.Picks {
		item.Picks[i].IsCaptain = item.Picks[i].PlayerID == captainID
		item.Picks[i].IsViceCaptain = item.Picks[i].PlayerID == viceID
		if item.Picks[i].IsCaptain {
			item.Picks[i].Multiplier = 2
		}
	}
}

func benchedOut(players map[int]player.Snapshot, playerID int, status player.PlayStatus) {
	snapshot := players[playerID]
	snapshot.Minutes = 0
	snapshot.Points = 0
	snapshot.Status = status
	players[playerID] = snapshot
}

func effectiveIDs(result AutoSubResult) []int {
	out := make([]int, 0, len(result.Effective))
	for _, pick := range result.Effective {
		out = append(out, pick.PlayerID)
	}
	return out
}
