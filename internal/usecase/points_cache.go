package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-live/internal/domain/gameweek"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
)

// CachePolicy decides whether a gameweek's entry points may be stored.
type CachePolicy func(gameweek.Gameweek) bool

// CacheWhenConfirmed stores points only once the gameweek is finished and its
// data checked, after which they can no longer change.
func CacheWhenConfirmed(item gameweek.Gameweek) bool {
	return item.IsConfirmedFinished()
}

// PointsCache keeps computed entry points for gameweeks accepted by its
// policy. Anything else is recomputed on every request.
type PointsCache struct {
	repo   scoring.Repository
	policy CachePolicy
	logger *logging.Logger
}

func NewPointsCache(repo scoring.Repository, policy CachePolicy, logger *logging.Logger) *PointsCache {
	if policy == nil {
		policy = CacheWhenConfirmed
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PointsCache{repo: repo, policy: policy, logger: logger}
}

func (c *PointsCache) Get(ctx context.Context, entryID, gameweekID int) (scoring.EntryResult, bool, error) {
	if c == nil || c.repo == nil {
		return scoring.EntryResult{}, false, nil
	}
	result, ok, err := c.repo.GetEntryResult(ctx, entryID, gameweekID)
	if err != nil {
		return scoring.EntryResult{}, false, fmt.Errorf("get cached points entry=%d gameweek=%d: %w", entryID, gameweekID, err)
	}
	return result, ok, nil
}

// Put stores result when the policy accepts item and reports whether it did.
func (c *PointsCache) Put(ctx context.Context, item gameweek.Gameweek, result scoring.EntryResult) (bool, error) {
	if c == nil || c.repo == nil || !c.policy(item) {
		return false, nil
	}
	if err := c.repo.UpsertEntryResult(ctx, result); err != nil {
		return false, fmt.Errorf("cache points entry=%d gameweek=%d: %w", result.EntryID, result.Gameweek, err)
	}
	return true, nil
}

// GetOrCompute serves a stored result when the policy allows caching and one
// exists; otherwise it computes and, when allowed, stores the result. Store
// failures are logged, not returned.
func (c *PointsCache) GetOrCompute(
	ctx context.Context,
	item gameweek.Gameweek,
	entryID int,
	compute func(context.Context) (scoring.EntryResult, error),
) (scoring.EntryResult, error) {
	cacheable := c != nil && c.repo != nil && c.policy(item)
	if cacheable {
		cached, ok, err := c.Get(ctx, entryID, item.ID)
		if err != nil {
			c.logger.WarnContext(ctx, "read cached points failed", "entry_id", entryID, "gameweek", item.ID, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	result, err := compute(ctx)
	if err != nil {
		return scoring.EntryResult{}, err
	}
	if cacheable {
		if _, err := c.Put(ctx, item, result); err != nil {
			c.logger.WarnContext(ctx, "store computed points failed", "entry_id", entryID, "gameweek", item.ID, "error", err)
		}
	}
	return result, nil
}
