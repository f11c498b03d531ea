package liveevent

import "sort"

// Journal accumulates one gameweek's scoring events across polls together
// with the per-fixture tallies needed to detect the next increment.
type Journal struct {
	Gameweek     int           `json:"gameweek"`
	Tallies      map[int]Tally `json:"tallies"`
	Events       []Event       `json:"events"`
	NextSequence int64         `json:"next_sequence"`
}

func NewJournal(gameweek int) Journal {
	return Journal{
		Gameweek: gameweek,
		Tallies:  make(map[int]Tally),
	}
}

// Clone returns a journal sharing no maps or slices with j.
func (j Journal) Clone() Journal {
	out := j
	out.Tallies = make(map[int]Tally, len(j.Tallies))
	for fixtureID, tally := range j.Tallies {
		out.Tallies[fixtureID] = tally.Clone()
	}
	out.Events = append([]Event(nil), j.Events...)
	return out
}

// Previous returns the tally recorded for fixtureID, empty when unseen.
func (j Journal) Previous(fixtureID int) Tally {
	if tally, ok := j.Tallies[fixtureID]; ok {
		return tally
	}
	return newTally()
}

// Append returns a new journal extended with one poll's results and the
// events it added. Results for a different gameweek start a fresh journal.
func (j Journal) Append(gameweek int, results []Result) (Journal, []Event) {
	next := NewJournal(gameweek)
	if j.Gameweek == gameweek {
		next.NextSequence = j.NextSequence
		next.Events = make([]Event, len(j.Events), len(j.Events)+8)
		copy(next.Events, j.Events)
		for fixtureID, tally := range j.Tallies {
			next.Tallies[fixtureID] = tally
		}
	}

	ordered := make([]Result, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, k int) bool {
		return ordered[i].FixtureID < ordered[k].FixtureID
	})

	var added []Event
	for _, result := range ordered {
		next.Tallies[result.FixtureID] = result.Tally
		for _, event := range result.Events {
			event.Sequence = next.NextSequence
			next.NextSequence++
			added = append(added, event)
		}
	}

	next.Events = append(next.Events, added...)
	SortTimeline(next.Events)
	return next, added
}

// SortTimeline orders accumulated events oldest first by kickoff plus minute
// detected. Events seen at the same moment use the per-poll order, even
// across fixtures, then the order they were recorded in.
func SortTimeline(events []Event) {
	sort.SliceStable(events, func(i, k int) bool {
		left, right := events[i].DetectedAt(), events[k].DetectedAt()
		if !left.Equal(right) {
			return left.Before(right)
		}
		if c := comparePriorityName(events[i], events[k]); c != 0 {
			return c < 0
		}
		return events[i].Sequence < events[k].Sequence
	})
}
