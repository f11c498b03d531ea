package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	basecache "github.com/riskibarqy/fantasy-live/internal/platform/cache"
)

// EntryPointsRepository keeps confirmed entry results in process so repeat
// reads of a finished gameweek skip the database.
type EntryPointsRepository struct {
	next  scoring.Repository
	cache *basecache.Store[cachedEntryResult]
}

var _ scoring.Repository = (*EntryPointsRepository)(nil)

func NewEntryPointsRepository(next scoring.Repository, ttl time.Duration) *EntryPointsRepository {
	return &EntryPointsRepository{next: next, cache: basecache.NewStore[cachedEntryResult](ttl)}
}

func (r *EntryPointsRepository) GetEntryResult(ctx context.Context, entryID, gameweek int) (scoring.EntryResult, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, entryPointsKey(entryID, gameweek), func(ctx context.Context) (cachedEntryResult, error) {
		item, exists, err := r.next.GetEntryResult(ctx, entryID, gameweek)
		if err != nil {
			return cachedEntryResult{}, err
		}
		return cachedEntryResult{value: cloneEntryResult(item), exists: exists}, nil
	})
	if err != nil {
		return scoring.EntryResult{}, false, err
	}
	return cloneEntryResult(v.value), v.exists, nil
}

func (r *EntryPointsRepository) UpsertEntryResult(ctx context.Context, result scoring.EntryResult) error {
	if err := r.next.UpsertEntryResult(ctx, result); err != nil {
		r.cache.Delete(ctx, entryPointsKey(result.EntryID, result.Gameweek))
		return err
	}
	r.cache.Set(ctx, entryPointsKey(result.EntryID, result.Gameweek), cachedEntryResult{
		value:  cloneEntryResult(result),
		exists: true,
	})
	return nil
}

type cachedEntryResult struct {
	value  scoring.EntryResult
	exists bool
}

func entryPointsKey(entryID, gameweek int) string {
	return "entry_points:" + strconv.Itoa(gameweek) + ":" + strconv.Itoa(entryID)
}

func cloneEntryResult(item scoring.EntryResult) scoring.EntryResult {
	copied := item
	copied.Players = append([]scoring.PlayerPoints(nil), item.Players...)
	copied.Substitutions = append([]scoring.Substitution(nil), item.Substitutions...)
	copied.Anomalies = append([]scoring.Anomaly(nil), item.Anomalies...)
	return copied
}
