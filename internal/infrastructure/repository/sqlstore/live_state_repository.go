package sqlstore

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-live/internal/domain/liveevent"
	"github.com/riskibarqy/fantasy-live/internal/domain/ticker"
	qb "github.com/riskibarqy/fantasy-live/internal/platform/querybuilder"
)

// LiveStateRepository stores the ticker baseline and the live event journal
// as JSON documents keyed by state name.
type LiveStateRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

var (
	_ ticker.Repository    = (*LiveStateRepository)(nil)
	_ liveevent.Repository = (*LiveStateRepository)(nil)
)

func NewLiveStateRepository(db *sqlx.DB) *LiveStateRepository {
	return &LiveStateRepository{db: db, now: time.Now}
}

func (r *LiveStateRepository) LoadBaseline(ctx context.Context) (ticker.Baseline, bool, error) {
	var baseline ticker.Baseline
	ok, err := r.load(ctx, stateKeyTickerBaseline, &baseline)
	if err != nil || !ok {
		return ticker.Baseline{}, false, err
	}
	return baseline, true, nil
}

func (r *LiveStateRepository) SaveBaseline(ctx context.Context, baseline ticker.Baseline) error {
	return r.save(ctx, stateKeyTickerBaseline, baseline.Gameweek, baseline)
}

func (r *LiveStateRepository) LoadJournal(ctx context.Context) (liveevent.Journal, bool, error) {
	var journal liveevent.Journal
	ok, err := r.load(ctx, stateKeyLiveJournal, &journal)
	if err != nil || !ok {
		return liveevent.Journal{}, false, err
	}
	if journal.Tallies == nil {
		journal.Tallies = make(map[int]liveevent.Tally)
	}
	return journal, true, nil
}

func (r *LiveStateRepository) SaveJournal(ctx context.Context, journal liveevent.Journal) error {
	return r.save(ctx, stateKeyLiveJournal, journal.Gameweek, journal)
}

func (r *LiveStateRepository) load(ctx context.Context, key string, target any) (bool, error) {
	query, args, err := qb.Select("state_key", "gameweek", "payload", "updated_at").
		From(tableLiveState).
		Where(qb.Eq("state_key", key)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build get live state query: %w", err)
	}

	var row liveStateTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get live state %s: %w", key, err)
	}
	if err := sonic.UnmarshalString(row.Payload, target); err != nil {
		return false, fmt.Errorf("decode live state %s: %w", key, err)
	}
	return true, nil
}

func (r *LiveStateRepository) save(ctx context.Context, key string, gameweek int, value any) error {
	payload, err := sonic.MarshalString(value)
	if err != nil {
		return fmt.Errorf("encode live state %s: %w", key, err)
	}

	query, args, err := qb.UpsertModel(tableLiveState, liveStateTableModel{
		StateKey:  key,
		Gameweek:  gameweek,
		Payload:   payload,
		UpdatedAt: unixMillis(r.now()),
	}, "state_key")
	if err != nil {
		return fmt.Errorf("build upsert live state query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("upsert live state %s: %w", key, err)
	}
	return nil
}
