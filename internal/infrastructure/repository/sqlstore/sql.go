// Package sqlstore persists live state and confirmed entry points through
// sqlx. The same statements run on postgres and sqlite.
package sqlstore

import (
	"database/sql"
	"errors"
	"time"
)

const (
	tableLiveState   = "live_state"
	tableEntryPoints = "entry_gameweek_points"

	stateKeyTickerBaseline = "ticker_baseline"
	stateKeyLiveJournal    = "live_event_journal"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func unixMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}
