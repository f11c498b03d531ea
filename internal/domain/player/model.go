package player

// Position represents football position categories used in fantasy rules.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// PositionFromElementType maps the feed's numeric element type (1..4).
func PositionFromElementType(elementType int) Position {
	switch elementType {
	case 1:
		return PositionGoalkeeper
	case 2:
		return PositionDefender
	case 3:
		return PositionMidfielder
	case 4:
		return PositionForward
	default:
		return ""
	}
}

// PlayStatus is the state of the fixture(s) a player takes part in this gameweek.
type PlayStatus string

const (
	PlayStatusNotStarted PlayStatus = "not_started"
	PlayStatusLive       PlayStatus = "live"
	PlayStatusFinished   PlayStatus = "finished"
)

// Started reports whether the player's fixture has kicked off (live or finished).
func (s PlayStatus) Started() bool {
	return s == PlayStatusLive || s == PlayStatusFinished
}

// ExplainStat is one line of the feed's point breakdown for a player in a fixture.
type ExplainStat struct {
	FixtureID  int    `json:"fixture_id"`
	Identifier string `json:"identifier"`
	Points     int    `json:"points"`
	Value      int    `json:"value"`
}

// Snapshot is the live state of one player for the current gameweek.
type Snapshot struct {
	ID       int
	Name     string
	TeamID   int
	Position Position
	Points   int
	Minutes  int
	BPS      int
	Bonus    int
	Status   PlayStatus
	Explain  []ExplainStat
}

// DisplayName returns the name or a placeholder when the catalogue has none.
func (s Snapshot) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return PlaceholderName(s.ID)
}

// NeedsSubstitution reports a zero-minute player whose fixture has started.
func (s Snapshot) NeedsSubstitution() bool {
	return s.Minutes == 0 && s.Status.Started()
}

// ExplainPoints sums the breakdown points recorded under identifier.
func (s Snapshot) ExplainPoints(identifier string) int {
	total := 0
	for _, item := range s.Explain {
		if item.Identifier == identifier {
			total += item.Points
		}
	}
	return total
}
