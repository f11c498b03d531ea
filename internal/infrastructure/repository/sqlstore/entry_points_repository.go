package sqlstore

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	qb "github.com/riskibarqy/fantasy-live/internal/platform/querybuilder"
)

// EntryPointsRepository keeps one row per entrant and confirmed gameweek.
type EntryPointsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ scoring.Repository = (*EntryPointsRepository)(nil)

func NewEntryPointsRepository(db *sqlx.DB) *EntryPointsRepository {
	return &EntryPointsRepository{db: db, now: time.Now}
}

func (r *EntryPointsRepository) GetEntryResult(ctx context.Context, entryID, gameweek int) (scoring.EntryResult, bool, error) {
	query, args, err := qb.Select("entry_id", "gameweek", "total_points", "bench_points", "payload", "updated_at").
		From(tableEntryPoints).
		Where(
			qb.Eq("entry_id", entryID),
			qb.Eq("gameweek", gameweek),
		).
		ToSQL()
	if err != nil {
		return scoring.EntryResult{}, false, fmt.Errorf("build get entry points query: %w", err)
	}

	var row entryPointsTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return scoring.EntryResult{}, false, nil
		}
		return scoring.EntryResult{}, false, fmt.Errorf("get entry points: %w", err)
	}

	var result scoring.EntryResult
	if err := sonic.UnmarshalString(row.Payload, &result); err != nil {
		return scoring.EntryResult{}, false, fmt.Errorf("decode entry points: %w", err)
	}
	result.EntryID = row.EntryID
	result.Gameweek = row.Gameweek
	result.TotalPoints = row.TotalPoints
	result.BenchPoints = row.BenchPoints
	return result, true, nil
}

func (r *EntryPointsRepository) UpsertEntryResult(ctx context.Context, result scoring.EntryResult) error {
	if result.EntryID <= 0 || result.Gameweek <= 0 {
		return fmt.Errorf("entry id and gameweek are required")
	}
	payload, err := sonic.MarshalString(result)
	if err != nil {
		return fmt.Errorf("encode entry points: %w", err)
	}

	query, args, err := qb.UpsertModel(tableEntryPoints, entryPointsTableModel{
		EntryID:     result.EntryID,
		Gameweek:    result.Gameweek,
		TotalPoints: result.TotalPoints,
		BenchPoints: result.BenchPoints,
		Payload:     payload,
		UpdatedAt:   unixMillis(r.now()),
	}, "entry_id", "gameweek")
	if err != nil {
		return fmt.Errorf("build upsert entry points query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("upsert entry points: %w", err)
	}
	return nil
}
