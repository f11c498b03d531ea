package ticker

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
)

var sides = []fixture.Side{fixture.SideHome, fixture.SideAway}

// Detector diffs consecutive poll snapshots and keeps a bounded, newest-first
// list of the changes it emitted. It is safe for concurrent use; observations
// are serialized.
type Detector struct {
	mu       sync.Mutex
	baseline Baseline
	capacity int
	now      func() time.Time
	newID    func() string
}

type Option func(*Detector)

func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDGenerator sets the event id source. Without it ids are derived from
// the gameweek, the diff number and the event's position in that diff.
func WithIDGenerator(newID func() string) Option {
	return func(d *Detector) {
		if newID != nil {
			d.newID = newID
		}
	}
}

func NewDetector(capacity int, opts ...Option) *Detector {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	d := &Detector{
		capacity: capacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Restore installs a previously persisted baseline.
func (d *Detector) Restore(baseline Baseline) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baseline = baseline.Clone()
	if len(d.baseline.Events) > d.capacity {
		d.baseline.Events = d.baseline.Events[:d.capacity]
	}
}

func (d *Detector) Baseline() Baseline {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.baseline.Clone()
}

// Events returns the retained change events, newest first.
func (d *Detector) Events() []ChangeEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ChangeEvent, len(d.baseline.Events))
	copy(out, d.baseline.Events)
	return out
}

func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.baseline.State()
}

// Observe compares snap with the retained baseline and returns the changes
// it found. The next baseline is passed to commit before it is installed;
// when commit fails the previous baseline stays in place and no events are
// returned. A nil commit installs unconditionally.
func (d *Detector) Observe(snap Snapshot, commit func(Baseline) error) ([]ChangeEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, events := d.advance(d.baseline, snap)
	if commit != nil {
		if err := commit(next.Clone()); err != nil {
			return nil, err
		}
	}
	d.baseline = next
	return events, nil
}

func (d *Detector) advance(prev Baseline, snap Snapshot) (Baseline, []ChangeEvent) {
	if prev.Gameweek != snap.Gameweek {
		prev = Baseline{Gameweek: snap.Gameweek}
	}

	next := Baseline{
		Gameweek: snap.Gameweek,
		Seeded:   true,
		Diffs:    prev.Diffs,
		Fixtures: make(map[int]FixtureState, len(snap.Fixtures)),
		DefCon:   make(map[int]int, len(snap.DefCon)),
	}
	for id, state := range snap.Fixtures {
		next.Fixtures[id] = state.clone()
	}
	for playerID, teamID := range snap.DefCon {
		next.DefCon[playerID] = teamID
	}
	if !prev.Seeded {
		return next, nil
	}

	detectedAt := d.now().UTC()
	events := diff(prev, snap)
	for i := range events {
		events[i].ID = d.eventID(snap.Gameweek, prev.Diffs+1, i)
		events[i].Gameweek = snap.Gameweek
		events[i].DetectedAt = detectedAt
	}

	next.Diffs++
	next.Events = make([]ChangeEvent, 0, min(len(events)+len(prev.Events), d.capacity))
	next.Events = append(next.Events, events...)
	next.Events = append(next.Events, prev.Events...)
	if len(next.Events) > d.capacity {
		next.Events = next.Events[:d.capacity]
	}
	return next, events
}

func (d *Detector) eventID(gameweek, diffNo, index int) string {
	if d.newID != nil {
		return d.newID()
	}
	return fmt.Sprintf("gw%d-%d-%d", gameweek, diffNo, index)
}

func diff(prev Baseline, snap Snapshot) []ChangeEvent {
	fixtureIDs := make([]int, 0, len(snap.Fixtures))
	for id := range snap.Fixtures {
		fixtureIDs = append(fixtureIDs, id)
	}
	sort.Ints(fixtureIDs)

	var events []ChangeEvent
	for _, id := range fixtureIDs {
		before, ok := prev.Fixtures[id]
		if !ok {
			continue
		}
		if event, changed := bonusChange(before, snap.Fixtures[id], snap); changed {
			events = append(events, event)
		}
	}
	for _, id := range fixtureIDs {
		before, ok := prev.Fixtures[id]
		if !ok {
			continue
		}
		current := snap.Fixtures[id]
		for _, side := range sides {
			if !before.CleanSheet(side) || current.CleanSheet(side) {
				continue
			}
			score := current.Score
			teamID := current.TeamID(side)
			events = append(events, ChangeEvent{
				Kind:      ChangeCleanSheet,
				FixtureID: id,
				TeamID:    teamID,
				Side:      side,
				Name:      snap.teamName(teamID),
				Score:     &score,
				Minute:    current.Minute,
			})
		}
	}
	return append(events, defensiveGains(prev, snap, fixtureIDs)...)
}

func bonusChange(before, current FixtureState, snap Snapshot) (ChangeEvent, bool) {
	players := make(map[int]struct{}, len(before.Bonus)+len(current.Bonus))
	for playerID := range before.Bonus {
		players[playerID] = struct{}{}
	}
	for playerID := range current.Bonus {
		players[playerID] = struct{}{}
	}

	var changes []BonusChange
	for playerID := range players {
		from, to := before.Bonus.Of(playerID), current.Bonus.Of(playerID)
		if from == to {
			continue
		}
		changes = append(changes, BonusChange{
			PlayerID: playerID,
			Name:     snap.playerName(playerID),
			From:     from,
			To:       to,
			Impact:   to - from,
		})
	}
	if len(changes) == 0 {
		return ChangeEvent{}, false
	}
	sort.Slice(changes, func(i, k int) bool {
		if changes[i].Name != changes[k].Name {
			return changes[i].Name < changes[k].Name
		}
		return changes[i].PlayerID < changes[k].PlayerID
	})

	score := current.Score
	return ChangeEvent{
		Kind:      ChangeBonus,
		FixtureID: current.FixtureID,
		Name:      snap.teamName(current.HomeTeamID) + " v " + snap.teamName(current.AwayTeamID),
		Changes:   changes,
		Score:     &score,
		Minute:    current.Minute,
	}, true
}

func defensiveGains(prev Baseline, snap Snapshot, fixtureIDs []int) []ChangeEvent {
	var gained []int
	for playerID := range snap.DefCon {
		if _, ok := prev.DefCon[playerID]; !ok {
			gained = append(gained, playerID)
		}
	}
	sort.Slice(gained, func(i, k int) bool {
		left, right := snap.playerName(gained[i]), snap.playerName(gained[k])
		if left != right {
			return left < right
		}
		return gained[i] < gained[k]
	})

	events := make([]ChangeEvent, 0, len(gained))
	for _, playerID := range gained {
		teamID := snap.DefCon[playerID]
		event := ChangeEvent{
			Kind:     ChangeDefensiveGain,
			TeamID:   teamID,
			PlayerID: playerID,
			Name:     snap.playerName(playerID),
		}
		for _, id := range fixtureIDs {
			state := snap.Fixtures[id]
			if teamID != 0 && (state.HomeTeamID == teamID || state.AwayTeamID == teamID) {
				event.FixtureID = id
				event.Minute = state.Minute
				break
			}
		}
		events = append(events, event)
	}
	return events
}
