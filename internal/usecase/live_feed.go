package usecase

import (
	"context"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/gameweek"
	"github.com/riskibarqy/fantasy-live/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
	"github.com/riskibarqy/fantasy-live/internal/domain/team"
)

// ExternalCatalogue is the season catalogue: players without live stats,
// teams and gameweek flags.
type ExternalCatalogue struct {
	Players   []ExternalPlayer
	Teams     []team.Team
	Gameweeks []gameweek.Gameweek
}

type ExternalPlayer struct {
	ID       int
	Name     string
	TeamID   int
	Position player.Position
}

// ExternalLivePlayer is one player's live stats for a gameweek.
type ExternalLivePlayer struct {
	ID      int
	Minutes int
	Points  int
	BPS     int
	Bonus   int
	Explain []player.ExplainStat
}

type ExternalLeagueEntry struct {
	EntryID    int
	EntryName  string
	PlayerName string
	Rank       int
}

// LiveFeed is the upstream fantasy feed. Fetch failures are reported as
// ErrDependencyUnavailable; an unknown entry as ErrNotFound.
type LiveFeed interface {
	FetchCatalogue(ctx context.Context) (ExternalCatalogue, error)
	FetchFixtures(ctx context.Context, gameweek int) ([]fixture.Fixture, error)
	FetchLivePlayers(ctx context.Context, gameweek int) ([]ExternalLivePlayer, error)
	FetchEntryPicks(ctx context.Context, entryID, gameweek int) (lineup.Lineup, error)
	FetchLeagueEntries(ctx context.Context, leagueID int) ([]ExternalLeagueEntry, error)
}

// BuildPlayerSnapshots merges catalogue and live stats. Live rows missing
// from the catalogue keep their stats under a placeholder identity.
func BuildPlayerSnapshots(catalogue []ExternalPlayer, live []ExternalLivePlayer, fixtures []fixture.Fixture) map[int]player.Snapshot {
	out := make(map[int]player.Snapshot, len(catalogue))
	for _, item := range catalogue {
		out[item.ID] = player.Snapshot{
			ID:       item.ID,
			Name:     item.Name,
			TeamID:   item.TeamID,
			Position: item.Position,
		}
	}
	for _, item := range live {
		snapshot, ok := out[item.ID]
		if !ok {
			snapshot = player.Snapshot{ID: item.ID}
		}
		snapshot.Minutes = item.Minutes
		snapshot.Points = item.Points
		snapshot.BPS = item.BPS
		snapshot.Bonus = item.Bonus
		snapshot.Explain = item.Explain
		out[item.ID] = snapshot
	}

	statusByTeam := make(map[int]player.PlayStatus)
	for id, snapshot := range out {
		if snapshot.TeamID == 0 {
			snapshot.Status = player.PlayStatusNotStarted
			out[id] = snapshot
			continue
		}
		status, ok := statusByTeam[snapshot.TeamID]
		if !ok {
			status = player.StatusFromFixtures(snapshot.TeamID, fixtures)
			statusByTeam[snapshot.TeamID] = status
		}
		snapshot.Status = status
		out[id] = snapshot
	}
	return out
}
