package fplfeed

import (
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/gameweek"
	"github.com/riskibarqy/fantasy-live/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
	"github.com/riskibarqy/fantasy-live/internal/domain/team"
	"github.com/riskibarqy/fantasy-live/internal/usecase"
)

func mapCatalogue(payload bootstrapResponse) usecase.ExternalCatalogue {
	out := usecase.ExternalCatalogue{
		Players:   make([]usecase.ExternalPlayer, 0, len(payload.Elements)),
		Teams:     make([]team.Team, 0, len(payload.Teams)),
		Gameweeks: make([]gameweek.Gameweek, 0, len(payload.Events)),
	}
	for _, item := range payload.Elements {
		if item.ID <= 0 {
			continue
		}
		out.Players = append(out.Players, usecase.ExternalPlayer{
			ID:       item.ID,
			Name:     strings.TrimSpace(item.WebName),
			TeamID:   item.Team,
			Position: player.PositionFromElementType(item.ElementType),
		})
	}
	for _, item := range payload.Teams {
		out.Teams = append(out.Teams, team.Team{
			ID:        item.ID,
			Name:      strings.TrimSpace(item.Name),
			ShortName: strings.TrimSpace(item.ShortName),
		})
	}
	for _, item := range payload.Events {
		out.Gameweeks = append(out.Gameweeks, gameweek.Gameweek{
			ID:          item.ID,
			Name:        item.Name,
			DeadlineAt:  parseTime(item.DeadlineTime),
			IsCurrent:   item.IsCurrent,
			IsNext:      item.IsNext,
			Finished:    item.Finished,
			DataChecked: item.DataChecked,
		})
	}
	return out
}

// mapFixture treats finished_provisional as the end of play and finished as
// the confirmed result.
func mapFixture(item fixtureWire) fixture.Fixture {
	out := fixture.Fixture{
		ID:                item.ID,
		HomeTeamID:        item.TeamH,
		AwayTeamID:        item.TeamA,
		Minutes:           item.Minutes,
		KickoffAt:         parseTime(item.KickoffTime),
		Finished:          item.FinishedProvisional || item.Finished,
		FinishedConfirmed: item.Finished,
	}
	if item.Event != nil {
		out.Gameweek = *item.Event
	}
	if item.TeamHScore != nil {
		out.HomeScore = *item.TeamHScore
	}
	if item.TeamAScore != nil {
		out.AwayScore = *item.TeamAScore
	}
	if item.Started != nil {
		out.Started = *item.Started
	}
	if out.Finished {
		out.Started = true
	}

	out.Stats = make([]fixture.Stat, 0, len(item.Stats))
	for _, stat := range item.Stats {
		out.Stats = append(out.Stats, fixture.Stat{
			Identifier: stat.Identifier,
			Home:       mapStatValues(stat.H),
			Away:       mapStatValues(stat.A),
		})
	}
	return out
}

func mapStatValues(items []statValueWire) []fixture.StatValue {
	out := make([]fixture.StatValue, 0, len(items))
	for _, item := range items {
		out = append(out, fixture.StatValue{PlayerID: item.Element, Value: item.Value})
	}
	return out
}

func mapLivePlayer(item liveElementWire) usecase.ExternalLivePlayer {
	out := usecase.ExternalLivePlayer{
		ID:      item.ID,
		Minutes: item.Stats.Minutes,
		Points:  item.Stats.TotalPoints,
		BPS:     item.Stats.BPS,
		Bonus:   item.Stats.Bonus,
	}
	for _, block := range item.Explain {
		for _, stat := range block.Stats {
			out.Explain = append(out.Explain, player.ExplainStat{
				FixtureID:  block.Fixture,
				Identifier: stat.Identifier,
				Points:     stat.Points,
				Value:      stat.Value,
			})
		}
	}
	return out
}

func mapLineup(entryID, gameweekID int, payload picksResponse) lineup.Lineup {
	out := lineup.Lineup{
		EntryID:  entryID,
		Gameweek: gameweekID,
		Picks:    make([]lineup.Pick, 0, len(payload.Picks)),
	}
	if payload.ActiveChip != nil {
		out.Chip = lineup.NormalizeChip(*payload.ActiveChip)
	}
	for _, item := range payload.Picks {
		if item.Position < 1 || item.Position > lineup.SquadSize {
			continue
		}
		out.Picks = append(out.Picks, lineup.Pick{
			EntryID:       entryID,
			PlayerID:      item.Element,
			Slot:          item.Position - 1,
			IsCaptain:     item.IsCaptain,
			IsViceCaptain: item.IsViceCaptain,
			Multiplier:    item.Multiplier,
		})
	}
	sort.Slice(out.Picks, func(i, j int) bool {
		return out.Picks[i].Slot < out.Picks[j].Slot
	})
	return out
}

func mapStandingRow(item standingRowWire) usecase.ExternalLeagueEntry {
	return usecase.ExternalLeagueEntry{
		EntryID:    item.Entry,
		EntryName:  strings.TrimSpace(item.EntryName),
		PlayerName: strings.TrimSpace(item.PlayerName),
		Rank:       item.Rank,
	}
}

func parseTime(value *string) time.Time {
	if value == nil {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*value))
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
