package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator()
	first, second := gen.NewID(), gen.NewID()
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("unexpected uuid version: got=%d want=7", parsed.Version())
	}
}
