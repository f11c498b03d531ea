package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/platform/clock"
)

var schedulerCfg = PollSchedulerConfig{
	Interval:        time.Minute,
	PreKickoffLead:  15 * time.Minute,
	MatchWindow:     2 * time.Hour,
	SafetyExtension: 30 * time.Minute,
	IdleRecheck:     6 * time.Hour,
}

func TestReschedule(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 10, 17, 14, 0, 0, 0, time.UTC)
	upcoming := fixture.Fixture{ID: 1, KickoffAt: kickoff}
	started := fixture.Fixture{ID: 1, KickoffAt: kickoff, Started: true}
	confirmed := fixture.Fixture{ID: 1, KickoffAt: kickoff, Started: true, Finished: true, FinishedConfirmed: true}

	tests := []struct {
		name      string
		now       time.Time
		fixtures  []fixture.Fixture
		wantState PollState
		wantDelay time.Duration
	}{
		{name: "no fixtures", now: kickoff, wantState: PollStateIdle, wantDelay: 6 * time.Hour},
		{name: "far kickoff caps wait", now: kickoff.Add(-48 * time.Hour), fixtures: []fixture.Fixture{upcoming}, wantState: PollStateScheduledWaiting, wantDelay: 6 * time.Hour},
		{name: "waiting for lead", now: kickoff.Add(-time.Hour), fixtures: []fixture.Fixture{upcoming}, wantState: PollStateScheduledWaiting, wantDelay: 45 * time.Minute},
		{name: "inside lead", now: kickoff.Add(-10 * time.Minute), fixtures: []fixture.Fixture{upcoming}, wantState: PollStatePolling, wantDelay: time.Minute},
		{name: "kickoff passed before feed flags start", now: kickoff.Add(time.Minute), fixtures: []fixture.Fixture{upcoming}, wantState: PollStatePolling, wantDelay: time.Minute},
		{name: "in match", now: kickoff.Add(time.Hour), fixtures: []fixture.Fixture{started}, wantState: PollStatePolling, wantDelay: time.Minute},
		{name: "past window unconfirmed", now: kickoff.Add(2*time.Hour + 10*time.Minute), fixtures: []fixture.Fixture{started}, wantState: PollStateExtending, wantDelay: time.Minute},
		{name: "extension elapsed", now: kickoff.Add(3 * time.Hour), fixtures: []fixture.Fixture{started}, wantState: PollStateIdle, wantDelay: 6 * time.Hour},
		{name: "confirmed", now: kickoff.Add(time.Hour), fixtures: []fixture.Fixture{confirmed}, wantState: PollStateIdle, wantDelay: 6 * time.Hour},
	}
	for _, tc := range tests {
		got := Reschedule(tc.now, tc.fixtures, schedulerCfg)
		if got.State != tc.wantState || got.Delay != tc.wantDelay {
			t.Fatalf("%s: unexpected decision: got=%s/%s want=%s/%s", tc.name, got.State, got.Delay, tc.wantState, tc.wantDelay)
		}
	}
}

func TestReschedule_PollingWinsOverExtending(t *testing.T) {
	t.Parallel()

	early := time.Date(2026, 10, 17, 12, 30, 0, 0, time.UTC)
	late := early.Add(2 * time.Hour)
	now := early.Add(2*time.Hour + 20*time.Minute)

	got := Reschedule(now, []fixture.Fixture{
		{ID: 1, KickoffAt: early, Started: true, Finished: true},
		{ID: 2, KickoffAt: late, Started: true},
	}, schedulerCfg)
	if got.State != PollStatePolling {
		t.Fatalf("unexpected state: got=%s want=%s", got.State, PollStatePolling)
	}
	if !got.Until.Equal(late.Add(2 * time.Hour)) {
		t.Fatalf("unexpected until: %v", got.Until)
	}
}

type staticSchedule struct {
	mu       sync.Mutex
	fixtures []fixture.Fixture
	err      error
}

func (s *staticSchedule) ScheduleFixtures(context.Context) ([]fixture.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fixtures, s.err
}

type countingPoller struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingPoller) Poll(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func (p *countingPoller) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestPollScheduler_RunsThroughMatchWindow(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 10, 17, 14, 0, 0, 0, time.UTC)
	fake := clock.NewFake(kickoff.Add(-time.Hour))
	schedule := &staticSchedule{fixtures: []fixture.Fixture{{ID: 1, KickoffAt: kickoff}}}
	poller := &countingPoller{err: ErrNoLiveGameweek}

	scheduler := NewPollScheduler(schedule, poller, fake, schedulerCfg, nil)
	scheduler.Start(context.Background())
	scheduler.Start(context.Background())

	fake.Advance(0)
	if got := scheduler.State(); got != PollStateScheduledWaiting {
		t.Fatalf("unexpected state after first check: got=%s want=%s", got, PollStateScheduledWaiting)
	}
	if poller.count() != 0 {
		t.Fatalf("expected no polls while waiting, got %d", poller.count())
	}

	// the lead point is 45 minutes away, then polling runs every minute
	fake.Advance(50 * time.Minute)
	if got := scheduler.State(); got != PollStatePolling {
		t.Fatalf("unexpected state at lead point: got=%s want=%s", got, PollStatePolling)
	}
	if got := poller.count(); got != 6 {
		t.Fatalf("unexpected poll count: got=%d want=6", got)
	}

	schedule.mu.Lock()
	schedule.fixtures[0].Started = true
	schedule.mu.Unlock()

	fake.Advance(2*time.Hour + 10*time.Minute)
	if got := scheduler.State(); got != PollStateExtending {
		t.Fatalf("unexpected state past window: got=%s want=%s", got, PollStateExtending)
	}

	schedule.mu.Lock()
	schedule.fixtures[0].FinishedConfirmed = true
	schedule.mu.Unlock()

	polls := poller.count()
	fake.Advance(time.Minute)
	if got := scheduler.State(); got != PollStateIdle {
		t.Fatalf("unexpected state after confirmation: got=%s want=%s", got, PollStateIdle)
	}
	if poller.count() != polls {
		t.Fatalf("expected no poll once idle")
	}

	scheduler.Stop()
	if fake.Pending() != 0 {
		t.Fatalf("expected stop to cancel the pending timer")
	}
}

func TestPollScheduler_ScheduleErrorRetriesAfterInterval(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))
	schedule := &staticSchedule{err: errors.New("feed down")}
	poller := &countingPoller{}

	scheduler := NewPollScheduler(schedule, poller, fake, schedulerCfg, nil)
	scheduler.Start(context.Background())
	fake.Advance(0)

	if got := scheduler.State(); got != PollStateIdle {
		t.Fatalf("unexpected state: got=%s want=%s", got, PollStateIdle)
	}
	next, ok := fake.NextDeadline()
	if !ok || !next.Equal(fake.Now().Add(time.Minute)) {
		t.Fatalf("expected retry after one interval, got %v ok=%v", next, ok)
	}
	scheduler.Stop()
}

func TestPollScheduler_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	scheduler := NewPollScheduler(&staticSchedule{}, &countingPoller{}, fake, schedulerCfg, nil)
	scheduler.Start(ctx)
	cancel()

	fake.Advance(time.Hour)
	if fake.Pending() != 0 {
		t.Fatalf("expected no timers after cancel, got %d", fake.Pending())
	}
}
