package ticker

import "context"

// Repository persists the detector baseline so a restart mid-gameweek
// resumes diffing instead of re-seeding.
type Repository interface {
	LoadBaseline(ctx context.Context) (Baseline, bool, error)
	SaveBaseline(ctx context.Context, baseline Baseline) error
}
