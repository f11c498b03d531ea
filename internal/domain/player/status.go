package player

import "github.com/riskibarqy/fantasy-live/internal/domain/fixture"

// StatusFromFixtures derives a team's play status for the gameweek. A team
// with any fixture still to kick off is not started, so a double gameweek
// only triggers substitution once every fixture has begun.
func StatusFromFixtures(teamID int, fixtures []fixture.Fixture) PlayStatus {
	seen, finished := 0, 0
	for _, item := range fixtures {
		if item.HomeTeamID != teamID && item.AwayTeamID != teamID {
			continue
		}
		if !item.Started {
			return PlayStatusNotStarted
		}
		seen++
		if item.Finished || item.FinishedConfirmed {
			finished++
		}
	}
	switch {
	case seen == 0:
		return PlayStatusNotStarted
	case finished == seen:
		return PlayStatusFinished
	default:
		return PlayStatusLive
	}
}
