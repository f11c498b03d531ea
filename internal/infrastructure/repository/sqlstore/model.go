package sqlstore

type liveStateTableModel struct {
	StateKey  string `db:"state_key"`
	Gameweek  int    `db:"gameweek"`
	Payload   string `db:"payload"`
	UpdatedAt int64  `db:"updated_at"`
}

type entryPointsTableModel struct {
	EntryID     int    `db:"entry_id"`
	Gameweek    int    `db:"gameweek"`
	TotalPoints int    `db:"total_points"`
	BenchPoints int    `db:"bench_points"`
	Payload     string `db:"payload"`
	UpdatedAt   int64  `db:"updated_at"`
}
