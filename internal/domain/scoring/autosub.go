package scoring

import (
	"github.com/riskibarqy/fantasy-live/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
)

// Substitution records one automatic bench-for-starter swap.
type Substitution struct {
	OutPlayerID int             `json:"out_player_id"`
	OutSlot     int             `json:"out_slot"`
	OutPosition player.Position `json:"out_position"`
	InPlayerID  int             `json:"in_player_id"`
	InSlot      int             `json:"in_slot"`
	InPosition  player.Position `json:"in_position"`
}

// AutoSubResult is the effective scoring set after automatic substitution.
type AutoSubResult struct {
	// Effective holds the scoring picks ordered by the starting slot they fill.
	Effective     []lineup.Pick
	Substitutions []Substitution
	UnusedBench   []lineup.Pick
	// Unreplaced lists starters that needed a substitute but found none.
	Unreplaced []lineup.Pick
	subbedIn   map[int]struct{}
}

// IsSubbedIn reports whether playerID entered the effective set from the bench.
func (r AutoSubResult) IsSubbedIn(playerID int) bool {
	_, ok := r.subbedIn[playerID]
	return ok
}

// SimulateAutoSubs replaces starters who recorded zero minutes in a started
// fixture with the first eligible bench player that keeps the formation valid.
// Bench boost scores all picks and performs no substitution.
func SimulateAutoSubs(item lineup.Lineup, players map[int]player.Snapshot, rules Rules) AutoSubResult {
	rules = rules.normalized()
	starters := item.Starters()
	bench := item.Bench()

	result := AutoSubResult{subbedIn: make(map[int]struct{})}
	if item.Chip == lineup.ChipBenchBoost {
		result.Effective = append(starters, bench...)
		return result
	}

	counts := make(map[player.Position]int, len(rules.MinByPosition))
	for _, pick := range starters {
		snapshot, _ := player.Lookup(players, pick.PlayerID)
		counts[snapshot.Position]++
	}

	effective := make([]lineup.Pick, len(starters))
	copy(effective, starters)
	used := make([]bool, len(bench))

	for i, starter := range starters {
		out, _ := player.Lookup(players, starter.PlayerID)
		if !out.NeedsSubstitution() {
			continue
		}

		replaced := false
		for b, candidate := range bench {
			if used[b] {
				continue
			}
			in, known := player.Lookup(players, candidate.PlayerID)
			if !known || in.NeedsSubstitution() {
				continue
			}
			if _, ok := player.AllPositions[in.Position]; !ok {
				continue
			}
			if !positionsCompatible(out.Position, in.Position) {
				continue
			}
			if !rules.swapKeepsFormation(counts, out.Position, in.Position) {
				continue
			}

			used[b] = true
			counts[out.Position]--
			counts[in.Position]++
			effective[i] = candidate
			result.subbedIn[candidate.PlayerID] = struct{}{}
			result.Substitutions = append(result.Substitutions, Substitution{
				OutPlayerID: starter.PlayerID,
				OutSlot:     starter.Slot,
				OutPosition: out.Position,
				InPlayerID:  candidate.PlayerID,
				InSlot:      candidate.Slot,
				InPosition:  in.Position,
			})
			replaced = true
			break
		}
		if !replaced {
			result.Unreplaced = append(result.Unreplaced, starter)
		}
	}

	result.Effective = effective
	for b, pick := range bench {
		if !used[b] {
			result.UnusedBench = append(result.UnusedBench, pick)
		}
	}

	return result
}
