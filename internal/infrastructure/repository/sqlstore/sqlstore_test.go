package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/liveevent"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-live/internal/domain/ticker"
	"github.com/riskibarqy/fantasy-live/internal/platform/database"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{
		Driver:      database.DriverSQLite,
		URL:         ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLiveStateRepository_BaselineRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewLiveStateRepository(openTestDB(t))

	_, ok, err := repo.LoadBaseline(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	detectedAt := time.Date(2026, 10, 17, 15, 10, 0, 0, time.UTC)
	baseline := ticker.Baseline{
		Gameweek: 8,
		Seeded:   true,
		Diffs:    2,
		Fixtures: map[int]ticker.FixtureState{
			80: {FixtureID: 80, HomeTeamID: 1, AwayTeamID: 2, Minute: 70, Bonus: scoring.Allocation{7: 3, 8: 2}, HomeCleanSheet: true},
		},
		DefCon: map[int]int{21: 2},
		Events: []ticker.ChangeEvent{{
			ID:         "evt-1",
			Kind:       ticker.ChangeBonus,
			Gameweek:   8,
			FixtureID:  80,
			Name:       "Arsenal v Chelsea",
			Changes:    []ticker.BonusChange{{PlayerID: 7, Name: "Saka", From: 2, To: 3, Impact: 1}},
			Score:      &fixture.Scoreline{Home: 1},
			Minute:     70,
			DetectedAt: detectedAt,
		}},
	}
	require.NoError(t, repo.SaveBaseline(ctx, baseline))

	got, ok, err := repo.LoadBaseline(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ticker.StateDiffing, got.State())
	require.Equal(t, 3, got.Fixtures[80].Bonus.Of(7))
	require.True(t, got.Fixtures[80].HomeCleanSheet)
	require.Equal(t, 2, got.DefCon[21])
	require.Len(t, got.Events, 1)
	require.Equal(t, baseline.Events[0].Changes, got.Events[0].Changes)
	require.True(t, got.Events[0].DetectedAt.Equal(detectedAt))

	baseline.Gameweek = 9
	baseline.Events = nil
	require.NoError(t, repo.SaveBaseline(ctx, baseline))

	got, _, err = repo.LoadBaseline(ctx)
	require.NoError(t, err)
	require.Equal(t, 9, got.Gameweek)
	require.Empty(t, got.Events)
}

func TestLiveStateRepository_JournalStoredSeparately(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewLiveStateRepository(openTestDB(t))

	journal := liveevent.NewJournal(8)
	journal.NextSequence = 2
	journal.Events = []liveevent.Event{
		{Kind: liveevent.KindGoal, FixtureID: 80, PlayerID: 7, Points: 5, Minute: 12, Sequence: 0},
		{Kind: liveevent.KindAssist, FixtureID: 80, PlayerID: 8, Points: 3, Minute: 12, Sequence: 1},
	}
	require.NoError(t, repo.SaveJournal(ctx, journal))
	require.NoError(t, repo.SaveBaseline(ctx, ticker.Baseline{Gameweek: 8, Seeded: true}))

	got, ok, err := repo.LoadJournal(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(2), got.NextSequence)
	require.Len(t, got.Events, 2)
	require.Equal(t, liveevent.KindAssist, got.Events[1].Kind)
	require.NotNil(t, got.Tallies)
}

func TestEntryPointsRepository_UpsertOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEntryPointsRepository(openTestDB(t))

	_, ok, err := repo.GetEntryResult(ctx, 101, 7)
	require.NoError(t, err)
	require.False(t, ok)

	first := scoring.EntryResult{
		EntryID:     101,
		Gameweek:    7,
		TotalPoints: 55,
		BenchPoints: 4,
		Anomalies:   []scoring.Anomaly{scoring.AnomalyMissingCaptain},
	}
	require.NoError(t, repo.UpsertEntryResult(ctx, first))

	second := first
	second.TotalPoints = 58
	second.Anomalies = nil
	require.NoError(t, repo.UpsertEntryResult(ctx, second))

	got, ok, err := repo.GetEntryResult(ctx, 101, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 58, got.TotalPoints)
	require.Equal(t, 4, got.BenchPoints)
	require.Empty(t, got.Anomalies)
}

func TestEntryPointsRepository_RejectsMissingKey(t *testing.T) {
	t.Parallel()

	repo := NewEntryPointsRepository(openTestDB(t))
	require.Error(t, repo.UpsertEntryResult(context.Background(), scoring.EntryResult{Gameweek: 7}))
}
