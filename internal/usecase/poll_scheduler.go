package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/platform/clock"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
)

type PollState string

const (
	PollStateIdle             PollState = "idle"
	PollStateScheduledWaiting PollState = "scheduled_waiting"
	PollStatePolling          PollState = "polling"
	PollStateExtending        PollState = "extending_past_deadline"
)

type PollSchedulerConfig struct {
	Interval        time.Duration
	PreKickoffLead  time.Duration
	MatchWindow     time.Duration
	SafetyExtension time.Duration
	IdleRecheck     time.Duration
}

func (c PollSchedulerConfig) normalized() PollSchedulerConfig {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.PreKickoffLead < 0 {
		c.PreKickoffLead = 0
	}
	if c.MatchWindow <= 0 {
		c.MatchWindow = 2 * time.Hour
	}
	if c.SafetyExtension < 0 {
		c.SafetyExtension = 0
	}
	if c.IdleRecheck <= 0 {
		c.IdleRecheck = 6 * time.Hour
	}
	return c
}

// PollDecision is what the scheduler does next and how long it waits.
type PollDecision struct {
	State PollState
	Delay time.Duration
	// Until is the kickoff lead point while waiting, the window end while
	// polling, the extension end while extending.
	Until time.Time
}

// Reschedule decides the next scheduler state from the fixture list.
func Reschedule(now time.Time, fixtures []fixture.Fixture, cfg PollSchedulerConfig) PollDecision {
	cfg = cfg.normalized()

	var (
		pollingUntil   time.Time
		extendingUntil time.Time
		nextKickoff    time.Time
	)
	for _, item := range fixtures {
		if item.FinishedConfirmed || item.KickoffAt.IsZero() {
			continue
		}

		kickedOff := item.Started || !now.Before(item.KickoffAt)
		if !kickedOff {
			if nextKickoff.IsZero() || item.KickoffAt.Before(nextKickoff) {
				nextKickoff = item.KickoffAt
			}
			continue
		}

		windowEnd := item.KickoffAt.Add(cfg.MatchWindow)
		extensionEnd := windowEnd.Add(cfg.SafetyExtension)
		switch {
		case now.Before(windowEnd):
			if windowEnd.After(pollingUntil) {
				pollingUntil = windowEnd
			}
		case now.Before(extensionEnd):
			if extensionEnd.After(extendingUntil) {
				extendingUntil = extensionEnd
			}
		}
	}

	switch {
	case !pollingUntil.IsZero():
		return PollDecision{State: PollStatePolling, Delay: cfg.Interval, Until: pollingUntil}
	case !extendingUntil.IsZero():
		return PollDecision{State: PollStateExtending, Delay: cfg.Interval, Until: extendingUntil}
	case !nextKickoff.IsZero():
		startAt := nextKickoff.Add(-cfg.PreKickoffLead)
		wait := startAt.Sub(now)
		if wait <= 0 {
			return PollDecision{State: PollStatePolling, Delay: cfg.Interval, Until: nextKickoff.Add(cfg.MatchWindow)}
		}
		return PollDecision{State: PollStateScheduledWaiting, Delay: min(wait, cfg.IdleRecheck), Until: startAt}
	default:
		return PollDecision{State: PollStateIdle, Delay: cfg.IdleRecheck}
	}
}

// FixtureSchedule lists the fixtures that drive polling.
type FixtureSchedule interface {
	ScheduleFixtures(ctx context.Context) ([]fixture.Fixture, error)
}

type Poller interface {
	Poll(ctx context.Context) error
}

// PollScheduler drives polling through Idle, ScheduledWaiting, Polling and
// ExtendingPastDeadline with a single chain of timers.
type PollScheduler struct {
	schedule FixtureSchedule
	poller   Poller
	clock    clock.Clock
	cfg      PollSchedulerConfig
	logger   *logging.Logger

	mu       sync.Mutex
	ctx      context.Context
	running  bool
	state    PollState
	decision PollDecision
	timer    clock.Timer
	polls    int
}

func NewPollScheduler(schedule FixtureSchedule, poller Poller, clk clock.Clock, cfg PollSchedulerConfig, logger *logging.Logger) *PollScheduler {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PollScheduler{
		schedule: schedule,
		poller:   poller,
		clock:    clk,
		cfg:      cfg.normalized(),
		logger:   logger,
		state:    PollStateIdle,
	}
}

// Start schedules an immediate first check. Calling Start twice is a no-op.
func (s *PollScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.ctx = ctx
	s.running = true
	s.timer = s.clock.AfterFunc(0, s.tick)
}

func (s *PollScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *PollScheduler) State() PollState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *PollScheduler) Decision() PollDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decision
}

// Polls counts poll calls made so far.
func (s *PollScheduler) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func (s *PollScheduler) tick() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		s.Stop()
		return
	}

	decision := s.decide(ctx)
	if decision.State == PollStatePolling || decision.State == PollStateExtending {
		s.poll(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if decision.State != s.state {
		s.logger.InfoContext(ctx, "poll scheduler transition",
			"from", s.state,
			"to", decision.State,
			"next_in", decision.Delay.String(),
			"until", decision.Until,
		)
	}
	s.state = decision.State
	s.decision = decision
	s.timer = s.clock.AfterFunc(decision.Delay, s.tick)
}

// decide keeps the current state and retries after one interval when the
// schedule cannot be read.
func (s *PollScheduler) decide(ctx context.Context) PollDecision {
	fixtures, err := s.schedule.ScheduleFixtures(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load poll schedule failed", "error", err)
		s.mu.Lock()
		state := s.state
		s.mu.Unlock()
		return PollDecision{State: state, Delay: s.cfg.Interval}
	}
	return Reschedule(s.clock.Now(), fixtures, s.cfg)
}

func (s *PollScheduler) poll(ctx context.Context) {
	s.mu.Lock()
	s.polls++
	s.mu.Unlock()

	err := s.poller.Poll(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoLiveGameweek):
		s.logger.DebugContext(ctx, "poll skipped, no live gameweek")
	default:
		s.logger.WarnContext(ctx, "live poll failed", "error", err)
	}
}
