package scoring

import (
	"github.com/riskibarqy/fantasy-live/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
)

// Input carries everything needed to score one entrant for one poll.
type Input struct {
	Lineup  lineup.Lineup
	Players map[int]player.Snapshot
	// ProvisionalBonus holds bonus from fixtures that are live or awaiting
	// confirmation, keyed by player id.
	ProvisionalBonus map[int]int
}

// Score runs auto-substitution and aggregates total and bench points.
func Score(in Input, rules Rules) EntryResult {
	rules = rules.normalized()
	item, anomalies := sanitizeLineup(in.Lineup)

	result := EntryResult{
		EntryID:   item.EntryID,
		Gameweek:  item.Gameweek,
		Chip:      item.Chip,
		Anomalies: anomalies,
	}

	subs := SimulateAutoSubs(item, in.Players, rules)
	result.Substitutions = subs.Substitutions
	boosted := captaincyHolder(item, in.Players, subs, rules)

	for _, pick := range subs.Effective {
		line := newPlayerPoints(pick, in)
		switch {
		case subs.IsSubbedIn(pick.PlayerID):
			line.Role = RoleSubstitute
			line.Multiplier = 1
		case pick.PlayerID == boosted && boosted != 0:
			line.Role = RoleStarter
			line.Multiplier = rules.CaptainMultiplier
			if item.Chip == lineup.ChipTripleCaptain {
				line.Multiplier = rules.TripleCaptainMultiplier
			}
		default:
			line.Role = RoleStarter
			line.Multiplier = storedMultiplier(pick, boosted)
		}
		line.CountedPoints = (line.RawPoints + line.ProvisionalBonus) * line.Multiplier
		result.TotalPoints += line.CountedPoints
		result.Players = append(result.Players, line)
	}

	for _, pick := range subs.UnusedBench {
		line := newPlayerPoints(pick, in)
		line.Role = RoleBench
		result.BenchPoints += line.RawPoints + line.ProvisionalBonus
		result.Players = append(result.Players, line)
	}

	for _, sub := range subs.Substitutions {
		for _, pick := range item.Picks {
			if pick.PlayerID != sub.OutPlayerID {
				continue
			}
			line := newPlayerPoints(pick, in)
			line.Role = RoleBenched
			result.Players = append(result.Players, line)
			break
		}
	}

	return result
}

// captaincyHolder returns the player receiving the captain multiplier, or 0.
// With vice-captain promotion enabled, a captain whose fixture finished
// without them playing hands the armband to an effectively starting vice.
func captaincyHolder(item lineup.Lineup, players map[int]player.Snapshot, subs AutoSubResult, rules Rules) int {
	captain, ok := item.Captain()
	if !ok {
		return 0
	}
	snapshot, _ := player.Lookup(players, captain.PlayerID)
	if !rules.ViceCaptainPromotion || !captainMissedOut(snapshot) {
		return captain.PlayerID
	}

	vice, ok := item.ViceCaptain()
	if !ok || vice.PlayerID == captain.PlayerID {
		return 0
	}
	if subs.IsSubbedIn(vice.PlayerID) || !effectiveContains(subs, vice.PlayerID) {
		return 0
	}
	return vice.PlayerID
}

func captainMissedOut(snapshot player.Snapshot) bool {
	return snapshot.Minutes == 0 && snapshot.Status == player.PlayStatusFinished
}

func effectiveContains(subs AutoSubResult, playerID int) bool {
	for _, pick := range subs.Effective {
		if pick.PlayerID == playerID {
			return true
		}
	}
	return false
}

// storedMultiplier keeps the feed's multiplier for regular starters. A stored
// captain-style multiplier is dropped when the armband went to someone else.
func storedMultiplier(pick lineup.Pick, boosted int) int {
	if pick.Multiplier <= 0 {
		return 1
	}
	if pick.IsCaptain && pick.PlayerID != boosted {
		return 1
	}
	return pick.Multiplier
}

func newPlayerPoints(pick lineup.Pick, in Input) PlayerPoints {
	snapshot, _ := player.Lookup(in.Players, pick.PlayerID)
	return PlayerPoints{
		PlayerID:         pick.PlayerID,
		Name:             snapshot.DisplayName(),
		Position:         snapshot.Position,
		Slot:             pick.Slot,
		Minutes:          snapshot.Minutes,
		IsCaptain:        pick.IsCaptain,
		IsViceCaptain:    pick.IsViceCaptain,
		RawPoints:        snapshot.Points,
		ProvisionalBonus: in.ProvisionalBonus[pick.PlayerID],
	}
}

// sanitizeLineup drops duplicate slots and flags lineups the scorer can only
// handle on a best-effort basis.
func sanitizeLineup(item lineup.Lineup) (lineup.Lineup, []Anomaly) {
	var anomalies []Anomaly
	seen := make(map[int]struct{}, len(item.Picks))
	picks := make([]lineup.Pick, 0, len(item.Picks))
	captains := 0
	duplicate := false
	for _, pick := range item.Picks {
		if _, exists := seen[pick.Slot]; exists {
			duplicate = true
			continue
		}
		seen[pick.Slot] = struct{}{}
		if pick.IsCaptain {
			captains++
		}
		picks = append(picks, pick)
	}

	if len(picks) < lineup.SquadSize {
		anomalies = append(anomalies, AnomalyIncompleteLineup)
	}
	switch {
	case captains == 0:
		anomalies = append(anomalies, AnomalyMissingCaptain)
	case captains > 1:
		anomalies = append(anomalies, AnomalyMultipleCaptains)
	}
	if duplicate {
		anomalies = append(anomalies, AnomalyDuplicateSlot)
	}

	item.Picks = picks
	return item, anomalies
}
