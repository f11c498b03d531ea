package lineup

import "sort"

const (
	SquadSize    = 15
	StartingSize = 11
)

// Chip is a season-limited rule modifier active for one gameweek.
type Chip string

const (
	ChipNone          Chip = ""
	ChipWildcard      Chip = "wildcard"
	ChipFreeHit       Chip = "freehit"
	ChipBenchBoost    Chip = "bboost"
	ChipTripleCaptain Chip = "3xc"
)

// NormalizeChip maps unknown chip names to ChipNone.
func NormalizeChip(value string) Chip {
	switch chip := Chip(value); chip {
	case ChipWildcard, ChipFreeHit, ChipBenchBoost, ChipTripleCaptain:
		return chip
	default:
		return ChipNone
	}
}

// Pick is one slot of an entrant's gameweek selection.
// Slots 0..10 start; 11..14 are the bench in priority order.
type Pick struct {
	EntryID       int  `json:"entry_id"`
	PlayerID      int  `json:"player_id"`
	Slot          int  `json:"slot"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
	Multiplier    int  `json:"multiplier"`
}

func (p Pick) IsStarter() bool {
	return p.Slot >= 0 && p.Slot < StartingSize
}

func (p Pick) IsBench() bool {
	return p.Slot >= StartingSize && p.Slot < SquadSize
}

// Lineup stores one entrant's picks for a gameweek.
type Lineup struct {
	EntryID  int
	Gameweek int
	Chip     Chip
	Picks    []Pick
}

// Starters returns the starting picks ordered by slot.
func (l Lineup) Starters() []Pick {
	return l.filter(Pick.IsStarter)
}

// Bench returns the bench picks in priority order.
func (l Lineup) Bench() []Pick {
	return l.filter(Pick.IsBench)
}

// Captain returns the designated captain, if any.
func (l Lineup) Captain() (Pick, bool) {
	for _, pick := range l.Picks {
		if pick.IsCaptain {
			return pick, true
		}
	}
	return Pick{}, false
}

// ViceCaptain returns the designated vice-captain, if any.
func (l Lineup) ViceCaptain() (Pick, bool) {
	for _, pick := range l.Picks {
		if pick.IsViceCaptain {
			return pick, true
		}
	}
	return Pick{}, false
}

func (l Lineup) filter(keep func(Pick) bool) []Pick {
	out := make([]Pick, 0, len(l.Picks))
	for _, pick := range l.Picks {
		if keep(pick) {
			out = append(out, pick)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Slot < out[j].Slot
	})
	return out
}
