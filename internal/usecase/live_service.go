package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/gameweek"
	"github.com/riskibarqy/fantasy-live/internal/domain/liveevent"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-live/internal/domain/team"
	"github.com/riskibarqy/fantasy-live/internal/domain/ticker"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/sync/errgroup"
)

// ChangeNotifier receives change events once they are committed.
type ChangeNotifier interface {
	PublishChanges(ctx context.Context, gameweek int, events []ticker.ChangeEvent)
}

type noopChangeNotifier struct{}

func (noopChangeNotifier) PublishChanges(context.Context, int, []ticker.ChangeEvent) {}

type LiveServiceConfig struct {
	LeagueID    int
	EntryIDs    []int
	WorkerCount int
	Rules       scoring.Rules
}

// RefreshInput overrides the gameweek or entrants for one pass. Zero values
// fall back to the live gameweek and the configured entrants.
type RefreshInput struct {
	Gameweek int
	EntryIDs []int
}

type RefreshResult struct {
	Gameweek        int          `json:"gameweek"`
	EntryCount      int          `json:"entry_count"`
	FailedEntries   []int        `json:"failed_entries,omitempty"`
	NewLiveEvents   int          `json:"new_live_events"`
	NewChangeEvents int          `json:"new_change_events"`
	TickerState     ticker.State `json:"ticker_state"`
	DurationMs      int64        `json:"duration_ms"`
}

// GameweekLive is the read model published after each refresh.
type GameweekLive struct {
	Gameweek     int                   `json:"gameweek"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Fixtures     []FixtureLive         `json:"fixtures"`
	Entries      []scoring.EntryResult `json:"entries"`
	LiveEvents   []liveevent.Event     `json:"live_events"`
	ChangeEvents []ticker.ChangeEvent  `json:"change_events"`
}

type FixtureLive struct {
	ID                int               `json:"id"`
	HomeTeamID        int               `json:"home_team_id"`
	AwayTeamID        int               `json:"away_team_id"`
	Score             fixture.Scoreline `json:"score"`
	Minutes           int               `json:"minutes"`
	KickoffAt         time.Time         `json:"kickoff_at"`
	Started           bool              `json:"started"`
	Finished          bool              `json:"finished"`
	FinishedConfirmed bool              `json:"finished_confirmed"`
}

// Entry finds one entrant's result.
func (g GameweekLive) Entry(entryID int) (scoring.EntryResult, bool) {
	for _, item := range g.Entries {
		if item.EntryID == entryID {
			return item, true
		}
	}
	return scoring.EntryResult{}, false
}

// LiveService runs one refresh pass per poll: fetch, score every entrant,
// extract live events, diff the ticker and publish the result.
type LiveService struct {
	feed         LiveFeed
	points       *PointsCache
	baselineRepo ticker.Repository
	journalRepo  liveevent.Repository
	detector     *ticker.Detector
	notifier     ChangeNotifier
	cfg          LiveServiceConfig
	logger       *logging.Logger
	now          func() time.Time
	newPool      func(size int) (*ants.Pool, error)

	refreshMu sync.Mutex

	mu      sync.RWMutex
	journal liveevent.Journal
	latest  GameweekLive
	hasLive bool
}

func NewLiveService(
	feed LiveFeed,
	points *PointsCache,
	baselineRepo ticker.Repository,
	journalRepo liveevent.Repository,
	detector *ticker.Detector,
	notifier ChangeNotifier,
	cfg LiveServiceConfig,
	logger *logging.Logger,
) *LiveService {
	if detector == nil {
		detector = ticker.NewDetector(ticker.DefaultCapacity)
	}
	if notifier == nil {
		notifier = noopChangeNotifier{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 8
	}

	return &LiveService{
		feed:         feed,
		points:       points,
		baselineRepo: baselineRepo,
		journalRepo:  journalRepo,
		detector:     detector,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		newPool:      func(size int) (*ants.Pool, error) { return ants.NewPool(size) },
	}
}

// Restore reloads the ticker baseline and event journal saved by a previous
// process so a restart mid-gameweek keeps diffing.
func (s *LiveService) Restore(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.Restore")
	defer span.End()

	if s.baselineRepo != nil {
		baseline, ok, err := s.baselineRepo.LoadBaseline(ctx)
		if err != nil {
			return fmt.Errorf("load ticker baseline: %w", err)
		}
		if ok {
			s.detector.Restore(baseline)
			s.logger.InfoContext(ctx, "ticker baseline restored",
				"gameweek", baseline.Gameweek,
				"state", baseline.State(),
				"events", len(baseline.Events),
			)
		}
	}

	if s.journalRepo != nil {
		journal, ok, err := s.journalRepo.LoadJournal(ctx)
		if err != nil {
			return fmt.Errorf("load live event journal: %w", err)
		}
		if ok {
			s.mu.Lock()
			s.journal = journal
			s.mu.Unlock()
		}
	}
	return nil
}

func (s *LiveService) Latest() (GameweekLive, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasLive
}

// Entry returns one entrant's points. Gameweek zero means the latest live
// gameweek; other gameweeks are served from the points cache.
func (s *LiveService) Entry(ctx context.Context, entryID, gameweekID int) (scoring.EntryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.Entry")
	defer span.End()

	if entryID <= 0 || gameweekID < 0 {
		return scoring.EntryResult{}, fmt.Errorf("%w: entry=%d gameweek=%d", ErrInvalidInput, entryID, gameweekID)
	}

	latest, ok := s.Latest()
	if ok && (gameweekID == 0 || gameweekID == latest.Gameweek) {
		if result, found := latest.Entry(entryID); found {
			return result, nil
		}
	}
	if gameweekID == 0 {
		if !ok {
			return scoring.EntryResult{}, ErrNoLiveGameweek
		}
		gameweekID = latest.Gameweek
	}

	result, found, err := s.points.Get(ctx, entryID, gameweekID)
	if err != nil {
		return scoring.EntryResult{}, err
	}
	if !found {
		return scoring.EntryResult{}, fmt.Errorf("%w: entry=%d gameweek=%d", ErrNotFound, entryID, gameweekID)
	}
	return result, nil
}

// ScheduleFixtures lists fixtures of the current and next gameweek for the
// poll scheduler.
func (s *LiveService) ScheduleFixtures(ctx context.Context) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.ScheduleFixtures")
	defer span.End()

	catalogue, err := s.feed.FetchCatalogue(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalogue: %w", err)
	}

	var ids []int
	for _, item := range catalogue.Gameweeks {
		if item.IsCurrent || item.IsNext {
			ids = append(ids, item.ID)
		}
	}

	results := make([][]fixture.Fixture, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			items, err := s.feed.FetchFixtures(gctx, id)
			if err != nil {
				return fmt.Errorf("fetch fixtures gameweek=%d: %w", id, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []fixture.Fixture
	for _, items := range results {
		out = append(out, items...)
	}
	return out, nil
}

// Poll refreshes the live gameweek with configured entrants.
func (s *LiveService) Poll(ctx context.Context) error {
	_, err := s.Refresh(ctx, RefreshInput{})
	return err
}

// Refresh runs one full pass. Passes are serialized; the ticker baseline and
// journal are only replaced once every fetch has succeeded. An override for a
// gameweek other than the live one only rescores entrants through the points
// cache and leaves the live state alone.
func (s *LiveService) Refresh(ctx context.Context, input RefreshInput) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.Refresh")
	defer span.End()

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := s.now()
	catalogue, err := s.feed.FetchCatalogue(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("fetch catalogue: %w", err)
	}
	current, err := resolveGameweek(catalogue.Gameweeks, input.Gameweek)
	if err != nil {
		return RefreshResult{}, err
	}

	var (
		fixtures []fixture.Fixture
		live     []ExternalLivePlayer
		entryIDs []int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.feed.FetchFixtures(gctx, current.ID)
		if err != nil {
			return fmt.Errorf("fetch fixtures gameweek=%d: %w", current.ID, err)
		}
		fixtures = items
		return nil
	})
	g.Go(func() error {
		items, err := s.feed.FetchLivePlayers(gctx, current.ID)
		if err != nil {
			return fmt.Errorf("fetch live players gameweek=%d: %w", current.ID, err)
		}
		live = items
		return nil
	})
	g.Go(func() error {
		ids, err := s.resolveEntries(gctx, input.EntryIDs)
		if err != nil {
			return err
		}
		entryIDs = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return RefreshResult{}, err
	}

	fixtures = fixturesOf(current.ID, fixtures)
	players := BuildPlayerSnapshots(catalogue.Players, live, fixtures)
	teams := teamsByID(catalogue.Teams)
	bonus := scoring.ProvisionalBonusByPlayer(scoring.ResolveFixtureBonus(fixtures))

	entries, failed, err := s.scoreEntries(ctx, current, entryIDs, players, bonus)
	if err != nil {
		return RefreshResult{}, err
	}

	if !isLiveGameweek(catalogue.Gameweeks, current.ID) {
		result := RefreshResult{
			Gameweek:      current.ID,
			EntryCount:    len(entries),
			FailedEntries: failed,
			TickerState:   s.detector.State(),
			DurationMs:    s.now().Sub(start).Milliseconds(),
		}
		s.logger.InfoContext(ctx, "gameweek rescored outside live state",
			"gameweek", result.Gameweek,
			"entries", result.EntryCount,
			"failed_entries", len(result.FailedEntries),
		)
		return result, nil
	}

	s.mu.RLock()
	journal := s.journal
	s.mu.RUnlock()
	extracted := extractFixtures(fixtures, players, teams, journal)

	if err := ctx.Err(); err != nil {
		return RefreshResult{}, fmt.Errorf("refresh abandoned gameweek=%d: %w", current.ID, err)
	}

	nextJournal, added := journal.Append(current.ID, extracted)
	journalChanged := s.journalRepo != nil && (len(added) > 0 || nextJournal.Gameweek != journal.Gameweek)

	snap := ticker.BuildSnapshot(current.ID, fixtures, players, teams)
	changes, err := s.detector.Observe(snap, func(next ticker.Baseline) error {
		return s.commitLiveState(ctx, journal, nextJournal, journalChanged, next)
	})
	if err != nil {
		return RefreshResult{}, err
	}

	s.mu.Lock()
	s.journal = nextJournal
	s.latest = GameweekLive{
		Gameweek:     current.ID,
		UpdatedAt:    s.now().UTC(),
		Fixtures:     fixtureViews(fixtures),
		Entries:      entries,
		LiveEvents:   nextJournal.Events,
		ChangeEvents: s.detector.Events(),
	}
	s.hasLive = true
	s.mu.Unlock()

	if len(changes) > 0 {
		s.notifier.PublishChanges(ctx, current.ID, changes)
	}

	result := RefreshResult{
		Gameweek:        current.ID,
		EntryCount:      len(entries),
		FailedEntries:   failed,
		NewLiveEvents:   len(added),
		NewChangeEvents: len(changes),
		TickerState:     s.detector.State(),
		DurationMs:      s.now().Sub(start).Milliseconds(),
	}
	s.logger.InfoContext(ctx, "live refresh completed",
		"gameweek", result.Gameweek,
		"entries", result.EntryCount,
		"failed_entries", len(result.FailedEntries),
		"live_events", result.NewLiveEvents,
		"change_events", result.NewChangeEvents,
		"ticker_state", result.TickerState,
	)
	return result, nil
}

// commitLiveState persists the journal and the ticker baseline of one pass.
// A failed baseline save puts the previous journal back so both stores stay
// on the same pass.
func (s *LiveService) commitLiveState(
	ctx context.Context,
	prevJournal, nextJournal liveevent.Journal,
	journalChanged bool,
	baseline ticker.Baseline,
) error {
	if journalChanged {
		if err := s.journalRepo.SaveJournal(ctx, nextJournal); err != nil {
			return fmt.Errorf("save live event journal: %w", err)
		}
	}
	if s.baselineRepo == nil {
		return nil
	}
	if err := s.baselineRepo.SaveBaseline(ctx, baseline); err != nil {
		if journalChanged {
			if rollbackErr := s.journalRepo.SaveJournal(context.WithoutCancel(ctx), prevJournal); rollbackErr != nil {
				s.logger.ErrorContext(ctx, "restore live event journal failed",
					"gameweek", nextJournal.Gameweek,
					"error", rollbackErr,
				)
			}
		}
		return fmt.Errorf("save ticker baseline: %w", err)
	}
	return nil
}

// isLiveGameweek reports whether id is the gameweek the ticker and journal
// follow. Other gameweeks are only rescored.
func isLiveGameweek(items []gameweek.Gameweek, id int) bool {
	item, ok := gameweek.Current(items)
	return ok && item.IsLive() && item.ID == id
}

func resolveGameweek(items []gameweek.Gameweek, requested int) (gameweek.Gameweek, error) {
	if requested > 0 {
		item, ok := gameweek.Find(items, requested)
		if !ok {
			return gameweek.Gameweek{}, fmt.Errorf("%w: gameweek=%d", ErrNotFound, requested)
		}
		return item, nil
	}
	item, ok := gameweek.Current(items)
	if !ok || !item.IsLive() {
		return gameweek.Gameweek{}, ErrNoLiveGameweek
	}
	return item, nil
}

func (s *LiveService) resolveEntries(ctx context.Context, requested []int) ([]int, error) {
	ids := requested
	if len(ids) == 0 {
		ids = s.cfg.EntryIDs
	}
	if len(ids) == 0 && s.cfg.LeagueID > 0 {
		entries, err := s.feed.FetchLeagueEntries(ctx, s.cfg.LeagueID)
		if err != nil {
			return nil, fmt.Errorf("fetch league entries league=%d: %w", s.cfg.LeagueID, err)
		}
		for _, item := range entries {
			ids = append(ids, item.EntryID)
		}
	}
	return uniqueIDs(ids), nil
}

// scoreEntries fans entrants out over a worker pool. Individual failures are
// reported back; the pass only fails when every entrant failed.
func (s *LiveService) scoreEntries(
	ctx context.Context,
	current gameweek.Gameweek,
	entryIDs []int,
	players map[int]player.Snapshot,
	bonus map[int]int,
) ([]scoring.EntryResult, []int, error) {
	if len(entryIDs) == 0 {
		return nil, nil, nil
	}

	pool, err := s.newPool(min(s.cfg.WorkerCount, len(entryIDs)))
	if err != nil {
		return nil, nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	type outcome struct {
		entryID int
		result  scoring.EntryResult
		err     error
	}
	outcomes := make([]outcome, len(entryIDs))

	var workers sync.WaitGroup
	for i, entryID := range entryIDs {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			result, err := s.points.GetOrCompute(ctx, current, entryID, func(ctx context.Context) (scoring.EntryResult, error) {
				picks, err := s.feed.FetchEntryPicks(ctx, entryID, current.ID)
				if err != nil {
					return scoring.EntryResult{}, fmt.Errorf("fetch picks entry=%d: %w", entryID, err)
				}
				picks.EntryID = entryID
				picks.Gameweek = current.ID
				return scoring.Score(scoring.Input{
					Lineup:           picks,
					Players:          players,
					ProvisionalBonus: bonus,
				}, s.cfg.Rules), nil
			})
			outcomes[i] = outcome{entryID: entryID, result: result, err: err}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, nil, fmt.Errorf("submit entry to worker pool: %w", err)
		}
	}
	workers.Wait()

	var (
		results  []scoring.EntryResult
		failed   []int
		firstErr error
	)
	for _, item := range outcomes {
		if item.err != nil {
			failed = append(failed, item.entryID)
			if firstErr == nil {
				firstErr = item.err
			}
			s.logger.WarnContext(ctx, "score entry failed", "entry_id", item.entryID, "gameweek", current.ID, "error", item.err)
			continue
		}
		for _, anomaly := range item.result.Anomalies {
			s.logger.DebugContext(ctx, "lineup anomaly", "entry_id", item.entryID, "anomaly", anomaly)
		}
		results = append(results, item.result)
	}
	if len(results) == 0 && firstErr != nil {
		if errors.Is(firstErr, ErrDependencyUnavailable) || errors.Is(firstErr, ErrNotFound) {
			return nil, failed, firstErr
		}
		return nil, failed, fmt.Errorf("score entries: %w", firstErr)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalPoints != results[j].TotalPoints {
			return results[i].TotalPoints > results[j].TotalPoints
		}
		return results[i].EntryID < results[j].EntryID
	})
	return results, failed, nil
}

// extractFixtures runs the event extractor for every started fixture.
func extractFixtures(fixtures []fixture.Fixture, players map[int]player.Snapshot, teams map[int]team.Team, journal liveevent.Journal) []liveevent.Result {
	started := make([]fixture.Fixture, 0, len(fixtures))
	for _, item := range fixtures {
		if item.Started {
			started = append(started, item)
		}
	}

	mapper := iter.Mapper[fixture.Fixture, liveevent.Result]{MaxGoroutines: 4}
	return mapper.Map(started, func(item *fixture.Fixture) liveevent.Result {
		return liveevent.Extract(liveevent.Input{
			Fixture:  *item,
			Players:  players,
			Teams:    teams,
			Previous: journal.Previous(item.ID),
		})
	})
}

func fixturesOf(gameweekID int, items []fixture.Fixture) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		if item.Gameweek == 0 || item.Gameweek == gameweekID {
			out = append(out, item)
		}
	}
	return out
}

func fixtureViews(items []fixture.Fixture) []FixtureLive {
	out := make([]FixtureLive, 0, len(items))
	for _, item := range items {
		out = append(out, FixtureLive{
			ID:                item.ID,
			HomeTeamID:        item.HomeTeamID,
			AwayTeamID:        item.AwayTeamID,
			Score:             item.Scoreline(),
			Minutes:           item.Minutes,
			KickoffAt:         item.KickoffAt,
			Started:           item.Started,
			Finished:          item.Finished,
			FinishedConfirmed: item.FinishedConfirmed,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func teamsByID(items []team.Team) map[int]team.Team {
	out := make(map[int]team.Team, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
