package fplfeed

type bootstrapResponse struct {
	Elements []elementWire `json:"elements"`
	Teams    []teamWire    `json:"teams"`
	Events   []eventWire   `json:"events"`
}

type elementWire struct {
	ID          int    `json:"id"`
	WebName     string `json:"web_name"`
	Team        int    `json:"team"`
	ElementType int    `json:"element_type"`
}

type teamWire struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type eventWire struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	DeadlineTime *string `json:"deadline_time"`
	IsCurrent    bool    `json:"is_current"`
	IsNext       bool    `json:"is_next"`
	Finished     bool    `json:"finished"`
	DataChecked  bool    `json:"data_checked"`
}

// fixtureWire mirrors /fixtures/. Unscheduled fixtures carry a null event
// and kickoff; scores stay null until kickoff.
type fixtureWire struct {
	ID                  int               `json:"id"`
	Event               *int              `json:"event"`
	TeamH               int               `json:"team_h"`
	TeamA               int               `json:"team_a"`
	TeamHScore          *int              `json:"team_h_score"`
	TeamAScore          *int              `json:"team_a_score"`
	Minutes             int               `json:"minutes"`
	Started             *bool             `json:"started"`
	FinishedProvisional bool              `json:"finished_provisional"`
	Finished            bool              `json:"finished"`
	KickoffTime         *string           `json:"kickoff_time"`
	Stats               []fixtureStatWire `json:"stats"`
}

type fixtureStatWire struct {
	Identifier string          `json:"identifier"`
	H          []statValueWire `json:"h"`
	A          []statValueWire `json:"a"`
}

type statValueWire struct {
	Element int `json:"element"`
	Value   int `json:"value"`
}

type liveResponse struct {
	Elements []liveElementWire `json:"elements"`
}

type liveElementWire struct {
	ID      int               `json:"id"`
	Stats   liveStatsWire     `json:"stats"`
	Explain []liveExplainWire `json:"explain"`
}

type liveStatsWire struct {
	Minutes     int `json:"minutes"`
	TotalPoints int `json:"total_points"`
	BPS         int `json:"bps"`
	Bonus       int `json:"bonus"`
}

type liveExplainWire struct {
	Fixture int                   `json:"fixture"`
	Stats   []liveExplainStatWire `json:"stats"`
}

type liveExplainStatWire struct {
	Identifier string `json:"identifier"`
	Points     int    `json:"points"`
	Value      int    `json:"value"`
}

type picksResponse struct {
	ActiveChip *string    `json:"active_chip"`
	Picks      []pickWire `json:"picks"`
}

// pickWire positions run 1..15; 12..15 are the bench in priority order.
type pickWire struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

type standingsResponse struct {
	Standings struct {
		HasNext bool              `json:"has_next"`
		Page    int               `json:"page"`
		Results []standingRowWire `json:"results"`
	} `json:"standings"`
}

type standingRowWire struct {
	Entry      int    `json:"entry"`
	EntryName  string `json:"entry_name"`
	PlayerName string `json:"player_name"`
	Rank       int    `json:"rank"`
}
