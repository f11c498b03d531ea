package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-live/internal/domain/liveevent"
	"github.com/riskibarqy/fantasy-live/internal/domain/ticker"
)

// LiveStateRepository keeps the ticker baseline and event journal for the
// life of the process.
type LiveStateRepository struct {
	mu       sync.RWMutex
	baseline *ticker.Baseline
	journal  *liveevent.Journal
}

var (
	_ ticker.Repository    = (*LiveStateRepository)(nil)
	_ liveevent.Repository = (*LiveStateRepository)(nil)
)

func NewLiveStateRepository() *LiveStateRepository {
	return &LiveStateRepository{}
}

func (r *LiveStateRepository) LoadBaseline(_ context.Context) (ticker.Baseline, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.baseline == nil {
		return ticker.Baseline{}, false, nil
	}
	return r.baseline.Clone(), true, nil
}

func (r *LiveStateRepository) SaveBaseline(_ context.Context, baseline ticker.Baseline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := baseline.Clone()
	r.baseline = &copied
	return nil
}

func (r *LiveStateRepository) LoadJournal(_ context.Context) (liveevent.Journal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.journal == nil {
		return liveevent.Journal{}, false, nil
	}
	return r.journal.Clone(), true, nil
}

func (r *LiveStateRepository) SaveJournal(_ context.Context, journal liveevent.Journal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := journal.Clone()
	r.journal = &copied
	return nil
}
