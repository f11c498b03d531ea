package scoring

import (
	"sort"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
)

// Allocation maps player id to awarded bonus. Players without bonus are absent.
type Allocation map[int]int

// Of returns the bonus awarded to playerID, zero when absent.
func (a Allocation) Of(playerID int) int {
	return a[playerID]
}

// Clone returns an independent copy.
func (a Allocation) Clone() Allocation {
	out := make(Allocation, len(a))
	for playerID, bonus := range a {
		out[playerID] = bonus
	}
	return out
}

// Ranking pairs a player with their performance-ranking score for one fixture.
type Ranking struct {
	PlayerID int
	Value    int
}

var bonusByRank = [...]int{1: 3, 2: 2, 3: 1}

// ResolveBonus ranks the fixture's players by score and awards 3/2/1 bonus.
// Tied players share a rank and the next distinct score skips by the size of
// the tie, so two players level in first push the next score down to third.
func ResolveBonus(rankings []Ranking) Allocation {
	out := make(Allocation, 3)
	if len(rankings) == 0 {
		return out
	}

	sorted := make([]Ranking, len(rankings))
	copy(sorted, rankings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	rank := 1
	for start := 0; start < len(sorted) && rank < len(bonusByRank); {
		end := start
		for end < len(sorted) && sorted[end].Value == sorted[start].Value {
			end++
		}
		award := bonusByRank[rank]
		for _, item := range sorted[start:end] {
			out[item.PlayerID] = award
		}
		rank += end - start
		start = end
	}

	return out
}

// RankingsFromFixture reads the home and away performance-ranking scores.
func RankingsFromFixture(item fixture.Fixture) []Ranking {
	stat, ok := item.Stat(fixture.StatBPS)
	if !ok {
		return nil
	}

	values := stat.All()
	out := make([]Ranking, 0, len(values))
	for _, value := range values {
		out = append(out, Ranking{PlayerID: value.PlayerID, Value: value.Value})
	}
	return out
}

// ResolveFixtureBonus resolves bonus for every fixture still awarding it
// provisionally, keyed by fixture id.
func ResolveFixtureBonus(fixtures []fixture.Fixture) map[int]Allocation {
	out := make(map[int]Allocation, len(fixtures))
	for _, item := range fixtures {
		if !item.HasProvisionalBonus() {
			continue
		}
		out[item.ID] = ResolveBonus(RankingsFromFixture(item))
	}
	return out
}

// FixtureBonus is the provisional allocation while the fixture is unconfirmed
// and the official bonus stat once it is confirmed.
func FixtureBonus(item fixture.Fixture) Allocation {
	if item.HasProvisionalBonus() {
		return ResolveBonus(RankingsFromFixture(item))
	}
	out := make(Allocation)
	if stat, ok := item.Stat(fixture.StatBonus); ok {
		for _, value := range stat.All() {
			if value.Value > 0 {
				out[value.PlayerID] = value.Value
			}
		}
	}
	return out
}

// ProvisionalBonusByPlayer flattens per-fixture allocations into per-player
// totals. A player with two live fixtures in the gameweek receives both.
func ProvisionalBonusByPlayer(byFixture map[int]Allocation) map[int]int {
	out := make(map[int]int)
	for _, allocation := range byFixture {
		for playerID, bonus := range allocation {
			out[playerID] += bonus
		}
	}
	return out
}
