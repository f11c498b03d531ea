package ticker

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-live/internal/domain/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var observedAt = time.Date(2026, time.October, 17, 15, 10, 0, 0, time.UTC)

func newTestDetector(capacity int) *Detector {
	seq := 0
	return NewDetector(capacity,
		WithClock(func() time.Time { return observedAt }),
		WithIDGenerator(func() string {
			seq++
			return "evt-" + strconv.Itoa(seq)
		}),
	)
}

func bonusSnapshot(gameweek int, bonus scoring.Allocation) Snapshot {
	return Snapshot{
		Gameweek: gameweek,
		Fixtures: map[int]FixtureState{
			1: {FixtureID: 1, HomeTeamID: 1, AwayTeamID: 2, Minute: 55, Bonus: bonus},
		},
		PlayerNames: map[int]string{7: "X"},
		TeamNames:   map[int]string{1: "Arsenal", 2: "Brentford"},
	}
}

func observe(t *testing.T, d *Detector, snap Snapshot) []ChangeEvent {
	t.Helper()
	events, err := d.Observe(snap, nil)
	require.NoError(t, err)
	return events
}

func TestDetector_BonusChangeSequence(t *testing.T) {
	t.Parallel()

	d := newTestDetector(0)
	require.Equal(t, StateIdle, d.State())

	assert.Empty(t, observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 2})))
	require.Equal(t, StateSeeded, d.State())

	events := observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 3}))
	require.Len(t, events, 1)
	assert.Equal(t, ChangeBonus, events[0].Kind)
	assert.Equal(t, []BonusChange{{PlayerID: 7, Name: "X", From: 2, To: 3, Impact: 1}}, events[0].Changes)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, 8, events[0].Gameweek)
	assert.Equal(t, "Arsenal v Brentford", events[0].Name)
	assert.Equal(t, observedAt, events[0].DetectedAt)
	require.Equal(t, StateDiffing, d.State())

	assert.Empty(t, observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 3})))
	assert.Len(t, d.Events(), 1)
}

func TestDetector_FlipBackAcrossPollsIsTwoTransitions(t *testing.T) {
	t.Parallel()

	d := newTestDetector(0)
	observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 2}))
	require.Len(t, observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 3})), 1)
	back := observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 2}))
	require.Len(t, back, 1)
	assert.Equal(t, -1, back[0].Changes[0].Impact)
}

func TestDetector_GameweekChangeResets(t *testing.T) {
	t.Parallel()

	d := newTestDetector(0)
	observe(t, d, bonusSnapshot(10, scoring.Allocation{7: 2}))
	observe(t, d, bonusSnapshot(10, scoring.Allocation{7: 1}))
	require.Len(t, d.Events(), 1)

	events := observe(t, d, bonusSnapshot(11, scoring.Allocation{7: 3}))
	assert.Empty(t, events)
	assert.Empty(t, d.Events())
	assert.Equal(t, StateSeeded, d.State())
	assert.Equal(t, 11, d.Baseline().Gameweek)
	assert.Equal(t, 0, d.Baseline().Diffs)
}

func TestDetector_NewFixtureSeedsSilently(t *testing.T) {
	t.Parallel()

	d := newTestDetector(0)
	observe(t, d, Snapshot{Gameweek: 8, Fixtures: map[int]FixtureState{}})

	assert.Empty(t, observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 3})))
	assert.Equal(t, StateDiffing, d.State())
}

func TestDetector_BoundedNewestFirst(t *testing.T) {
	t.Parallel()

	d := newTestDetector(2)
	observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 0}))
	for value := 1; value <= 3; value++ {
		require.Len(t, observe(t, d, bonusSnapshot(8, scoring.Allocation{7: value})), 1)
	}

	events := d.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "evt-3", events[0].ID)
	assert.Equal(t, "evt-2", events[1].ID)
}

func TestDetector_DefaultEventIDs(t *testing.T) {
	t.Parallel()

	d := NewDetector(0, WithClock(func() time.Time { return observedAt }))
	observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 1}))
	first := observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 2}))
	second := observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 3}))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "gw8-1-0", first[0].ID)
	assert.Equal(t, "gw8-2-0", second[0].ID)
}

func TestDetector_ConcurrentObserveStaysSerialized(t *testing.T) {
	t.Parallel()

	const (
		capacity  = 5
		observers = 16
		rounds    = 25
	)
	d := NewDetector(capacity, WithClock(func() time.Time { return observedAt }))

	var (
		mu        sync.Mutex
		committed []int
		emitted   int
		wg        sync.WaitGroup
	)
	commit := func(next Baseline) error {
		mu.Lock()
		committed = append(committed, next.Fixtures[1].Bonus.Of(7))
		mu.Unlock()
		return nil
	}

	for worker := 0; worker < observers; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for round := 0; round < rounds; round++ {
				value := 2 + (worker+round)%2
				events, err := d.Observe(bonusSnapshot(8, scoring.Allocation{7: value}), commit)
				if err != nil {
					t.Errorf("unexpected observe error: %v", err)
					return
				}
				if retained := len(d.Events()); retained > capacity {
					t.Errorf("unexpected retained events: got=%d want<=%d", retained, capacity)
				}
				mu.Lock()
				emitted += len(events)
				mu.Unlock()
			}
		}(worker)
	}
	wg.Wait()

	total := observers * rounds
	require.Len(t, committed, total)

	transitions := 0
	for i := 1; i < len(committed); i++ {
		if committed[i] != committed[i-1] {
			transitions++
		}
	}
	assert.Equal(t, transitions, emitted)

	baseline := d.Baseline()
	assert.Equal(t, 8, baseline.Gameweek)
	assert.True(t, baseline.Seeded)
	assert.Equal(t, total-1, baseline.Diffs)
	assert.Equal(t, committed[len(committed)-1], baseline.Fixtures[1].Bonus.Of(7))
	assert.LessOrEqual(t, len(baseline.Events), capacity)
	assert.Len(t, baseline.Events, min(transitions, capacity))
}

func TestDetector_CommitFailureKeepsBaseline(t *testing.T) {
	t.Parallel()

	d := newTestDetector(0)
	observe(t, d, bonusSnapshot(8, scoring.Allocation{7: 2}))
	before := d.Baseline()

	events, err := d.Observe(bonusSnapshot(8, scoring.Allocation{7: 3}), func(Baseline) error {
		return errors.New("store down")
	})
	require.Error(t, err)
	assert.Nil(t, events)
	assert.Equal(t, before, d.Baseline())
	assert.Equal(t, StateSeeded, d.State())

	var committed Baseline
	events, err = d.Observe(bonusSnapshot(8, scoring.Allocation{7: 3}), func(next Baseline) error {
		committed = next
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, d.Baseline(), committed)
}

func TestDetector_RestoreResumesDiffing(t *testing.T) {
	t.Parallel()

	first := newTestDetector(0)
	observe(t, first, bonusSnapshot(8, scoring.Allocation{7: 2}))

	second := newTestDetector(0)
	second.Restore(first.Baseline())
	events := observe(t, second, bonusSnapshot(8, scoring.Allocation{7: 1}))
	require.Len(t, events, 1)
	assert.Equal(t, -1, events[0].Changes[0].Impact)
}

func matchFixture(home, away int, bps map[int]int) fixture.Fixture {
	stat := fixture.Stat{Identifier: fixture.StatBPS}
	for playerID, value := range bps {
		entry := fixture.StatValue{PlayerID: playerID, Value: value}
		if playerID < 20 {
			stat.Home = append(stat.Home, entry)
		} else {
			stat.Away = append(stat.Away, entry)
		}
	}
	return fixture.Fixture{
		ID:         500,
		Gameweek:   8,
		HomeTeamID: 1,
		AwayTeamID: 2,
		HomeScore:  home,
		AwayScore:  away,
		Minutes:    70,
		Started:    true,
		Stats:      []fixture.Stat{stat},
	}
}

func matchTeams() map[int]team.Team {
	return map[int]team.Team{1: {ID: 1, Name: "Arsenal"}, 2: {ID: 2, Name: "Brentford"}}
}

func TestDetector_BonusReorderBundlesOneEvent(t *testing.T) {
	t.Parallel()

	players := map[int]player.Snapshot{
		11: {ID: 11, Name: "P1", TeamID: 1},
		12: {ID: 12, Name: "P2", TeamID: 1},
	}
	d := newTestDetector(0)

	first := BuildSnapshot(8, []fixture.Fixture{matchFixture(1, 0, map[int]int{11: 35, 12: 30})}, players, matchTeams())
	require.Equal(t, scoring.Allocation{11: 3, 12: 2}, first.Fixtures[500].Bonus)
	require.True(t, first.Fixtures[500].HomeCleanSheet)
	assert.Empty(t, observe(t, d, first))

	second := BuildSnapshot(8, []fixture.Fixture{matchFixture(1, 0, map[int]int{11: 35, 12: 36})}, players, matchTeams())
	events := observe(t, d, second)
	require.Len(t, events, 1)
	assert.Equal(t, []BonusChange{
		{PlayerID: 11, Name: "P1", From: 3, To: 2, Impact: -1},
		{PlayerID: 12, Name: "P2", From: 2, To: 3, Impact: 1},
	}, events[0].Changes)
}

func TestDetector_CleanSheetLostPerSide(t *testing.T) {
	t.Parallel()

	d := newTestDetector(0)
	observe(t, d, BuildSnapshot(8, []fixture.Fixture{matchFixture(0, 0, nil)}, nil, matchTeams()))

	events := observe(t, d, BuildSnapshot(8, []fixture.Fixture{matchFixture(1, 1, nil)}, nil, matchTeams()))
	require.Len(t, events, 2)
	assert.Equal(t, ChangeCleanSheet, events[0].Kind)
	assert.Equal(t, fixture.SideHome, events[0].Side)
	assert.Equal(t, "Arsenal", events[0].Name)
	assert.Equal(t, &fixture.Scoreline{Home: 1, Away: 1}, events[0].Score)
	assert.Equal(t, fixture.SideAway, events[1].Side)
	assert.Equal(t, 2, events[1].TeamID)

	assert.Empty(t, observe(t, d, BuildSnapshot(8, []fixture.Fixture{matchFixture(2, 1, nil)}, nil, matchTeams())))
}

func TestDetector_DefensiveContributionGained(t *testing.T) {
	t.Parallel()

	credited := []player.ExplainStat{{FixtureID: 500, Identifier: fixture.StatDefensiveContribution, Points: 2, Value: 10}}
	before := map[int]player.Snapshot{
		11: {ID: 11, Name: "Saliba", TeamID: 1, Explain: credited},
		21: {ID: 21, Name: "Collins", TeamID: 2},
	}
	after := map[int]player.Snapshot{
		11: before[11],
		21: {ID: 21, Name: "Collins", TeamID: 2, Explain: credited},
	}
	items := []fixture.Fixture{matchFixture(0, 0, nil)}

	d := newTestDetector(0)
	observe(t, d, BuildSnapshot(8, items, before, matchTeams()))
	events := observe(t, d, BuildSnapshot(8, items, after, matchTeams()))

	require.Len(t, events, 1)
	assert.Equal(t, ChangeDefensiveGain, events[0].Kind)
	assert.Equal(t, 21, events[0].PlayerID)
	assert.Equal(t, 2, events[0].TeamID)
	assert.Equal(t, 500, events[0].FixtureID)
	assert.Equal(t, "Collins", events[0].Name)
}

func TestBuildSnapshot_SkipsUnstartedFixtures(t *testing.T) {
	t.Parallel()

	pending := matchFixture(0, 0, nil)
	pending.ID = 501
	pending.Started = false
	pending.Minutes = 0

	snap := BuildSnapshot(8, []fixture.Fixture{matchFixture(0, 0, nil), pending}, nil, nil)
	assert.Contains(t, snap.Fixtures, 500)
	assert.NotContains(t, snap.Fixtures, 501)
	assert.Equal(t, "Unknown player #9", snap.playerName(9))
	assert.Equal(t, "Team #4", snap.teamName(4))
}
