package liveevent

import "context"

// Repository persists the live event journal across restarts.
type Repository interface {
	LoadJournal(ctx context.Context) (Journal, bool, error)
	SaveJournal(ctx context.Context, journal Journal) error
}
