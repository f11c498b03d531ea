package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
)

type entryPointsKey struct {
	entryID  int
	gameweek int
}

type EntryPointsRepository struct {
	mu    sync.RWMutex
	items map[entryPointsKey]scoring.EntryResult
}

var _ scoring.Repository = (*EntryPointsRepository)(nil)

func NewEntryPointsRepository() *EntryPointsRepository {
	return &EntryPointsRepository{items: make(map[entryPointsKey]scoring.EntryResult)}
}

func (r *EntryPointsRepository) GetEntryResult(_ context.Context, entryID, gameweek int) (scoring.EntryResult, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[entryPointsKey{entryID: entryID, gameweek: gameweek}]
	if !ok {
		return scoring.EntryResult{}, false, nil
	}
	return cloneEntryResult(item), true, nil
}

func (r *EntryPointsRepository) UpsertEntryResult(_ context.Context, result scoring.EntryResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[entryPointsKey{entryID: result.EntryID, gameweek: result.Gameweek}] = cloneEntryResult(result)
	return nil
}

func cloneEntryResult(item scoring.EntryResult) scoring.EntryResult {
	copied := item
	copied.Players = append([]scoring.PlayerPoints(nil), item.Players...)
	copied.Substitutions = append([]scoring.Substitution(nil), item.Substitutions...)
	copied.Anomalies = append([]scoring.Anomaly(nil), item.Anomalies...)
	return copied
}
