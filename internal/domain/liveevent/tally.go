package liveevent

import (
	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
)

// Tally is what has already been reported for one fixture.
type Tally struct {
	Stats          map[string]map[int]int `json:"stats"`
	SaveGroups     map[int]int            `json:"save_groups"`
	CleanSheets    map[fixture.Side]bool  `json:"clean_sheets"`
	ConcededGroups map[fixture.Side]int   `json:"conceded_groups"`
	Bonus          scoring.Allocation     `json:"bonus"`
	DefCon         map[int]bool           `json:"defcon"`
}

func newTally() Tally {
	return Tally{
		Stats:          make(map[string]map[int]int),
		SaveGroups:     make(map[int]int),
		CleanSheets:    make(map[fixture.Side]bool, 2),
		ConcededGroups: make(map[fixture.Side]int, 2),
		Bonus:          make(scoring.Allocation),
		DefCon:         make(map[int]bool),
	}
}

// Clone returns an independent copy with every map allocated.
func (t Tally) Clone() Tally {
	out := newTally()
	for identifier, values := range t.Stats {
		copied := make(map[int]int, len(values))
		for playerID, value := range values {
			copied[playerID] = value
		}
		out.Stats[identifier] = copied
	}
	for playerID, groups := range t.SaveGroups {
		out.SaveGroups[playerID] = groups
	}
	for side, ok := range t.CleanSheets {
		out.CleanSheets[side] = ok
	}
	for side, groups := range t.ConcededGroups {
		out.ConcededGroups[side] = groups
	}
	for playerID, bonus := range t.Bonus {
		out.Bonus[playerID] = bonus
	}
	for playerID, ok := range t.DefCon {
		out.DefCon[playerID] = ok
	}
	return out
}

func (t Tally) stat(identifier string) map[int]int {
	values, ok := t.Stats[identifier]
	if !ok {
		values = make(map[int]int)
		t.Stats[identifier] = values
	}
	return values
}
