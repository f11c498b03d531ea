package scoring

import "github.com/riskibarqy/fantasy-live/internal/domain/player"

// Rules holds the scoring parameters shared by every call site.
type Rules struct {
	MinByPosition           map[player.Position]int
	CaptainMultiplier       int
	TripleCaptainMultiplier int

	// ViceCaptainPromotion hands the captain multiplier to the vice-captain
	// when the captain's fixture finished without them playing.
	ViceCaptainPromotion bool
}

func DefaultRules() Rules {
	return Rules{
		MinByPosition: map[player.Position]int{
			player.PositionGoalkeeper: 1,
			player.PositionDefender:   3,
			player.PositionMidfielder: 2,
			player.PositionForward:    1,
		},
		CaptainMultiplier:       2,
		TripleCaptainMultiplier: 3,
	}
}

func (r Rules) normalized() Rules {
	defaults := DefaultRules()
	if len(r.MinByPosition) == 0 {
		r.MinByPosition = defaults.MinByPosition
	}
	if r.CaptainMultiplier < 1 {
		r.CaptainMultiplier = defaults.CaptainMultiplier
	}
	if r.TripleCaptainMultiplier < 1 {
		r.TripleCaptainMultiplier = defaults.TripleCaptainMultiplier
	}
	return r
}

// swapKeepsFormation reports whether replacing a player at out with one at in
// keeps the minimum count for the position that loses a player.
func (r Rules) swapKeepsFormation(counts map[player.Position]int, out, in player.Position) bool {
	if out == in {
		return true
	}
	return counts[out]-1 >= r.MinByPosition[out]
}

// positionsCompatible enforces that goalkeepers only swap with goalkeepers.
func positionsCompatible(out, in player.Position) bool {
	outIsGK := out == player.PositionGoalkeeper
	inIsGK := in == player.PositionGoalkeeper
	return outIsGK == inIsGK
}
