package ticker

import (
	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-live/internal/domain/team"
)

// BuildSnapshot collects the comparable state of a poll. Fixtures that have
// not kicked off are left out so their first appearance seeds silently.
func BuildSnapshot(gameweek int, fixtures []fixture.Fixture, players map[int]player.Snapshot, teams map[int]team.Team) Snapshot {
	snap := Snapshot{
		Gameweek:    gameweek,
		Fixtures:    make(map[int]FixtureState, len(fixtures)),
		DefCon:      make(map[int]int),
		PlayerNames: make(map[int]string, len(players)),
		TeamNames:   make(map[int]string, len(teams)),
	}

	for _, item := range fixtures {
		if item.Gameweek != 0 && item.Gameweek != gameweek {
			continue
		}
		if !item.Started {
			continue
		}
		snap.Fixtures[item.ID] = FixtureState{
			FixtureID:      item.ID,
			HomeTeamID:     item.HomeTeamID,
			AwayTeamID:     item.AwayTeamID,
			Score:          item.Scoreline(),
			Minute:         item.Minutes,
			Bonus:          scoring.FixtureBonus(item),
			HomeCleanSheet: item.HasCleanSheet(fixture.SideHome),
			AwayCleanSheet: item.HasCleanSheet(fixture.SideAway),
		}
	}

	for id, snapshot := range players {
		snap.PlayerNames[id] = snapshot.DisplayName()
		if snapshot.ExplainPoints(fixture.StatDefensiveContribution) > 0 {
			snap.DefCon[id] = snapshot.TeamID
		}
	}
	for id, item := range teams {
		snap.TeamNames[id] = item.DisplayName()
	}
	return snap
}

func (s Snapshot) playerName(id int) string {
	if name, ok := s.PlayerNames[id]; ok && name != "" {
		return name
	}
	return player.PlaceholderName(id)
}

func (s Snapshot) teamName(id int) string {
	if name, ok := s.TeamNames[id]; ok && name != "" {
		return name
	}
	return team.Team{ID: id}.DisplayName()
}
