package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "", want: LevelInfo},
		{in: "DEBUG", want: LevelDebug},
		{in: " warn ", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "verbose", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("unexpected level for %q: got=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestLogger_FieldsAndLevels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(LevelInfo)
	logger := FromZap(zap.New(core)).Named("ticker").With("gameweek", 8)

	logger.Debug("dropped")
	logger.WarnContext(context.Background(), "persist baseline failed", "error", errors.New("db down"), "fixture_id")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("unexpected entry count: got=%d want=1", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "ticker" {
		t.Fatalf("unexpected logger name: %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["gameweek"] != int64(8) {
		t.Fatalf("unexpected gameweek field: %#v", fields["gameweek"])
	}
	if fields["error"] != "db down" {
		t.Fatalf("unexpected error field: %#v", fields["error"])
	}
	if _, ok := fields["fixture_id"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
	if logger.Enabled(LevelDebug) {
		t.Fatalf("debug should be disabled")
	}
}
