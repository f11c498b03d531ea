package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b := NewCircuitBreaker(2, 5*time.Second, 1)

	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}
}

func TestCircuitBreaker_DoIgnoresNonFailures(t *testing.T) {
	b := NewCircuitBreakerFromConfig(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	var transitions []string
	b.OnStateChange(func(from, to CircuitState) {
		transitions = append(transitions, string(from)+"->"+string(to))
	})

	notFound := errors.New("entry not found")
	transient := errors.New("upstream 503")
	isFailure := func(err error) bool { return errors.Is(err, transient) }

	if err := b.Do(func() error { return notFound }, isFailure); !errors.Is(err, notFound) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after non-failure error, got %s", state)
	}

	_ = b.Do(func() error { return transient }, isFailure)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after transient failure, got %s", state)
	}

	called := false
	err := b.Do(func() error { called = true; return nil }, isFailure)
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected open breaker to reject without calling fn: err=%v called=%v", err, called)
	}

	now = now.Add(2 * time.Minute)
	if err := b.Do(func() error { return nil }, isFailure); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	want := []string{"closed->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions: got=%v want=%v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("unexpected transitions: got=%v want=%v", transitions, want)
		}
	}
}
