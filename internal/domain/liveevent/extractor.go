package liveevent

import (
	"cmp"
	"sort"
	"strings"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-live/internal/domain/team"
)

// DefensiveContributionIdentifier is the explain line credited once a player
// reaches the defensive-action threshold.
const DefensiveContributionIdentifier = fixture.StatDefensiveContribution

var directStats = []struct {
	identifier string
	kind       Kind
}{
	{fixture.StatGoalsScored, KindGoal},
	{fixture.StatAssists, KindAssist},
	{fixture.StatPenaltiesSaved, KindPenaltySave},
	{fixture.StatPenaltiesMissed, KindPenaltyMiss},
	{fixture.StatOwnGoals, KindOwnGoal},
	{fixture.StatRedCards, KindRedCard},
	{fixture.StatYellowCards, KindYellowCard},
}

var sides = []fixture.Side{fixture.SideHome, fixture.SideAway}

// Input is one fixture's state for one poll plus what was reported before.
type Input struct {
	Fixture  fixture.Fixture
	Players  map[int]player.Snapshot
	Teams    map[int]team.Team
	Previous Tally
}

// Result holds the new events of one poll and the tally to carry forward.
type Result struct {
	FixtureID int
	Events    []Event
	Tally     Tally
}

// Extract derives the scoring events that occurred in a fixture since the
// previous tally. A fixture without stats yields no events.
func Extract(in Input) Result {
	item := in.Fixture
	tally := in.Previous.Clone()
	result := Result{FixtureID: item.ID, Tally: tally}
	if len(item.Stats) == 0 {
		return result
	}

	x := extraction{in: in, tally: tally}
	x.directStats()
	x.saveBonus()
	x.teamEvents()
	x.bonusChanges()
	x.defensiveContributions()

	SortPoll(x.events)
	result.Events = x.events
	result.Tally = x.tally
	return result
}

// SortPoll orders events of one poll by kind priority then display name.
func SortPoll(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		left, right := events[i], events[j]
		if c := comparePriorityName(left, right); c != 0 {
			return c < 0
		}
		if left.PlayerID != right.PlayerID {
			return left.PlayerID < right.PlayerID
		}
		return left.TeamID < right.TeamID
	})
}

func comparePriorityName(left, right Event) int {
	if c := cmp.Compare(left.Kind.Priority(), right.Kind.Priority()); c != 0 {
		return c
	}
	return strings.Compare(strings.ToLower(left.Name), strings.ToLower(right.Name))
}

type extraction struct {
	in     Input
	tally  Tally
	events []Event
}

func (x *extraction) directStats() {
	for _, spec := range directStats {
		stat, ok := x.in.Fixture.Stat(spec.identifier)
		if !ok {
			continue
		}
		reported := x.tally.stat(spec.identifier)
		for _, side := range sides {
			for _, value := range stat.Values(side) {
				previous := reported[value.PlayerID]
				reported[value.PlayerID] = value.Value
				for n := previous; n < value.Value; n++ {
					x.emitPlayer(spec.kind, value.PlayerID, side, 0)
				}
			}
		}
	}
}

func (x *extraction) saveBonus() {
	stat, ok := x.in.Fixture.Stat(fixture.StatSaves)
	if !ok {
		return
	}
	for _, side := range sides {
		for _, value := range stat.Values(side) {
			snapshot, known := player.Lookup(x.in.Players, value.PlayerID)
			if known && snapshot.Position != player.PositionGoalkeeper {
				continue
			}
			groups := value.Value / savesPerBonusPoint
			previous := x.tally.SaveGroups[value.PlayerID]
			x.tally.SaveGroups[value.PlayerID] = groups
			for n := previous; n < groups; n++ {
				x.emitPlayer(KindSaveBonus, value.PlayerID, side, 0)
			}
		}
	}
}

func (x *extraction) teamEvents() {
	item := x.in.Fixture
	for _, side := range sides {
		conceded := item.Conceded(side)

		hasCleanSheet := item.HasCleanSheet(side)
		if hasCleanSheet && !x.tally.CleanSheets[side] {
			x.emitTeam(KindCleanSheet, side, pointsFor(KindCleanSheet, ""))
		}
		x.tally.CleanSheets[side] = hasCleanSheet

		groups := conceded / goalsPerConcededPoint
		previous := x.tally.ConcededGroups[side]
		x.tally.ConcededGroups[side] = groups
		for n := previous; n < groups; n++ {
			x.emitTeam(KindGoalsConceded, side, pointsFor(KindGoalsConceded, ""))
		}
	}
}

func (x *extraction) bonusChanges() {
	current := scoring.FixtureBonus(x.in.Fixture)
	previous := x.tally.Bonus
	x.tally.Bonus = current

	playerIDs := make(map[int]struct{}, len(current)+len(previous))
	for playerID := range current {
		playerIDs[playerID] = struct{}{}
	}
	for playerID := range previous {
		playerIDs[playerID] = struct{}{}
	}
	for playerID := range playerIDs {
		delta := current.Of(playerID) - previous.Of(playerID)
		if delta == 0 {
			continue
		}
		x.emitPlayer(KindBonusChange, playerID, x.sideOfPlayer(playerID), delta)
	}
}

func (x *extraction) defensiveContributions() {
	item := x.in.Fixture
	for playerID, snapshot := range x.in.Players {
		if _, ok := item.SideOf(snapshot.TeamID); !ok {
			continue
		}
		points := 0
		for _, line := range snapshot.Explain {
			if line.FixtureID == item.ID && line.Identifier == DefensiveContributionIdentifier {
				points += line.Points
			}
		}
		if points <= 0 || x.tally.DefCon[playerID] {
			continue
		}
		x.tally.DefCon[playerID] = true
		x.emitPlayer(KindDefensiveContribution, playerID, x.sideOfPlayer(playerID), points)
	}
}

func (x *extraction) sideOfPlayer(playerID int) fixture.Side {
	snapshot, _ := player.Lookup(x.in.Players, playerID)
	side, _ := x.in.Fixture.SideOf(snapshot.TeamID)
	return side
}

// emitPlayer appends a player event; points of zero are derived from the kind.
func (x *extraction) emitPlayer(kind Kind, playerID int, side fixture.Side, points int) {
	snapshot, _ := player.Lookup(x.in.Players, playerID)
	if points == 0 {
		points = pointsFor(kind, snapshot.Position)
	}
	teamID := snapshot.TeamID
	if teamID == 0 && side != "" {
		teamID = x.in.Fixture.TeamID(side)
	}
	x.events = append(x.events, Event{
		Kind:      kind,
		FixtureID: x.in.Fixture.ID,
		PlayerID:  playerID,
		TeamID:    teamID,
		Side:      side,
		Name:      snapshot.DisplayName(),
		Points:    points,
		Minute:    x.in.Fixture.Minutes,
		KickoffAt: x.in.Fixture.KickoffAt,
	})
}

func (x *extraction) emitTeam(kind Kind, side fixture.Side, points int) {
	teamID := x.in.Fixture.TeamID(side)
	item, ok := x.in.Teams[teamID]
	if !ok {
		item = team.Team{ID: teamID}
	}
	x.events = append(x.events, Event{
		Kind:      kind,
		FixtureID: x.in.Fixture.ID,
		TeamID:    teamID,
		Side:      side,
		Name:      item.DisplayName(),
		Points:    points,
		Minute:    x.in.Fixture.Minutes,
		KickoffAt: x.in.Fixture.KickoffAt,
	})
}
