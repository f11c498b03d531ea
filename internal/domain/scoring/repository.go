package scoring

import "context"

// Repository persists entry results whose gameweek can no longer change.
type Repository interface {
	GetEntryResult(ctx context.Context, entryID, gameweek int) (EntryResult, bool, error)
	UpsertEntryResult(ctx context.Context, result EntryResult) error
}
