package gameweek

import "time"

// Gameweek is one scoring round of the season as reported by the feed catalogue.
type Gameweek struct {
	ID          int
	Name        string
	DeadlineAt  time.Time
	IsCurrent   bool
	IsNext      bool
	Finished    bool
	DataChecked bool
}

// IsLive reports a current gameweek whose results are not yet confirmed.
func (g Gameweek) IsLive() bool {
	return g.IsCurrent && !g.DataChecked
}

// IsConfirmedFinished reports a gameweek whose points can no longer change.
func (g Gameweek) IsConfirmedFinished() bool {
	return g.Finished && g.DataChecked
}

// Current picks the live gameweek, falling back to the one flagged current.
func Current(items []Gameweek) (Gameweek, bool) {
	var fallback *Gameweek
	for i := range items {
		if items[i].IsLive() {
			return items[i], true
		}
		if items[i].IsCurrent && fallback == nil {
			fallback = &items[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Gameweek{}, false
}

// Find returns the gameweek with the given id.
func Find(items []Gameweek, id int) (Gameweek, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return Gameweek{}, false
}
