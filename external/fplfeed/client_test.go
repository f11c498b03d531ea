package fplfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-live/internal/domain/player"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
	"github.com/riskibarqy/fantasy-live/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-live/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		RetryBackoff:   time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestClientFetchCatalogue_MapsPlayersTeamsAndGameweeks(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bootstrap-static/" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("user-agent"); got != defaultUserAgent {
			t.Fatalf("unexpected user agent: %s", got)
		}
		writeJSON(w, `{
			"elements": [{"id": 7, "web_name": " Saka ", "team": 1, "element_type": 3}],
			"teams": [{"id": 1, "name": "Arsenal", "short_name": "ARS"}],
			"events": [
				{"id": 8, "name": "Gameweek 8", "deadline_time": "2026-10-17T10:00:00Z", "is_current": true, "is_next": false, "finished": false, "data_checked": false},
				{"id": 9, "name": "Gameweek 9", "deadline_time": null, "is_current": false, "is_next": true, "finished": false, "data_checked": false}
			]
		}`)
	}, nil)

	got, err := client.FetchCatalogue(context.Background())
	if err != nil {
		t.Fatalf("fetch catalogue: %v", err)
	}
	if len(got.Players) != 1 || got.Players[0].Name != "Saka" || got.Players[0].Position != player.PositionMidfielder {
		t.Fatalf("unexpected players: %+v", got.Players)
	}
	if len(got.Teams) != 1 || got.Teams[0].ShortName != "ARS" {
		t.Fatalf("unexpected teams: %+v", got.Teams)
	}
	if len(got.Gameweeks) != 2 {
		t.Fatalf("unexpected gameweek count: got=%d want=2", len(got.Gameweeks))
	}
	want := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	if !got.Gameweeks[0].DeadlineAt.Equal(want) || !got.Gameweeks[0].IsLive() {
		t.Fatalf("unexpected current gameweek: %+v", got.Gameweeks[0])
	}
	if !got.Gameweeks[1].DeadlineAt.IsZero() || !got.Gameweeks[1].IsNext {
		t.Fatalf("unexpected next gameweek: %+v", got.Gameweeks[1])
	}
}

func TestClientFetchFixtures_MapsStatsAndFinishFlags(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("event"); got != "8" {
			t.Fatalf("unexpected event query: %q", got)
		}
		writeJSON(w, `[
			{"id": 80, "event": 8, "team_h": 1, "team_a": 2, "team_h_score": 2, "team_a_score": 0, "minutes": 90,
			 "started": true, "finished_provisional": true, "finished": false, "kickoff_time": "2026-10-17T14:00:00Z",
			 "stats": [{"identifier": "bps", "h": [{"element": 7, "value": 35}], "a": [{"element": 21, "value": 12}]}]},
			{"id": 81, "event": 8, "team_h": 3, "team_a": 4, "team_h_score": null, "team_a_score": null, "minutes": 0,
			 "started": null, "finished_provisional": false, "finished": false, "kickoff_time": null, "stats": []}
		]`)
	}, nil)

	got, err := client.FetchFixtures(context.Background(), 8)
	if err != nil {
		t.Fatalf("fetch fixtures: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected fixture count: got=%d want=2", len(got))
	}

	played := got[0]
	if !played.Started || !played.Finished || played.FinishedConfirmed {
		t.Fatalf("unexpected finish flags: %+v", played)
	}
	if played.HomeScore != 2 || played.Gameweek != 8 {
		t.Fatalf("unexpected fixture: %+v", played)
	}
	bps, ok := played.Stat(fixture.StatBPS)
	if !ok || len(bps.Home) != 1 || bps.Home[0] != (fixture.StatValue{PlayerID: 7, Value: 35}) {
		t.Fatalf("unexpected bps stat: %+v", bps)
	}

	upcoming := got[1]
	if upcoming.Started || !upcoming.KickoffAt.IsZero() {
		t.Fatalf("unexpected upcoming fixture: %+v", upcoming)
	}
}

func TestClientFetchFixtures_SeasonOmitsEventQuery(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		writeJSON(w, `[]`)
	}, nil)

	if _, err := client.FetchFixtures(context.Background(), 0); err != nil {
		t.Fatalf("fetch season fixtures: %v", err)
	}
}

func TestClientFetchLivePlayers_FlattensExplain(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/event/8/live/" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		writeJSON(w, `{"elements": [{"id": 7,
			"stats": {"minutes": 90, "total_points": 9, "bps": 35, "bonus": 0},
			"explain": [{"fixture": 80, "stats": [
				{"identifier": "minutes", "points": 2, "value": 90},
				{"identifier": "goals_scored", "points": 5, "value": 1}
			]}]}]}`)
	}, nil)

	got, err := client.FetchLivePlayers(context.Background(), 8)
	if err != nil {
		t.Fatalf("fetch live: %v", err)
	}
	if len(got) != 1 || got[0].Points != 9 || got[0].BPS != 35 {
		t.Fatalf("unexpected live players: %+v", got)
	}
	if len(got[0].Explain) != 2 || got[0].Explain[1].FixtureID != 80 || got[0].Explain[1].Points != 5 {
		t.Fatalf("unexpected explain: %+v", got[0].Explain)
	}
}

func TestClientFetchEntryPicks_MapsPositionsToSlots(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entry/101/event/8/picks/" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		writeJSON(w, `{"active_chip": "bboost", "picks": [
			{"element": 30, "position": 12, "multiplier": 1, "is_captain": false, "is_vice_captain": false},
			{"element": 10, "position": 1, "multiplier": 2, "is_captain": true, "is_vice_captain": false},
			{"element": 99, "position": 16, "multiplier": 1, "is_captain": false, "is_vice_captain": false}
		]}`)
	}, nil)

	got, err := client.FetchEntryPicks(context.Background(), 101, 8)
	if err != nil {
		t.Fatalf("fetch picks: %v", err)
	}
	if got.Chip != lineup.ChipBenchBoost {
		t.Fatalf("unexpected chip: got=%s want=%s", got.Chip, lineup.ChipBenchBoost)
	}
	if len(got.Picks) != 2 {
		t.Fatalf("unexpected pick count: got=%d want=2", len(got.Picks))
	}
	if got.Picks[0].Slot != 0 || got.Picks[0].PlayerID != 10 || !got.Picks[0].IsCaptain {
		t.Fatalf("unexpected first pick: %+v", got.Picks[0])
	}
	if !got.Picks[1].IsBench() || got.Picks[1].Slot != 11 {
		t.Fatalf("unexpected bench pick: %+v", got.Picks[1])
	}
}

func TestClientFetchLeagueEntries_FollowsPages(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page_standings") {
		case "1":
			writeJSON(w, `{"standings": {"has_next": true, "page": 1, "results": [{"entry": 101, "entry_name": "Alpha", "player_name": "Ann", "rank": 1}]}}`)
		case "2":
			writeJSON(w, `{"standings": {"has_next": false, "page": 2, "results": [{"entry": 202, "entry_name": "Beta", "player_name": "Bo", "rank": 2}]}}`)
		default:
			t.Fatalf("unexpected page: %s", r.URL.RawQuery)
		}
	}, nil)

	got, err := client.FetchLeagueEntries(context.Background(), 55)
	if err != nil {
		t.Fatalf("fetch league: %v", err)
	}
	if len(got) != 2 || got[0].EntryID != 101 || got[1].EntryName != "Beta" {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, `[]`)
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 2
	})

	if _, err := client.FetchFixtures(context.Background(), 8); err != nil {
		t.Fatalf("fetch after retry: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("unexpected call count: got=%d want=2", got)
	}
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 3
	})

	_, err := client.FetchEntryPicks(context.Background(), 404, 8)
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("unexpected call count: got=%d want=1", got)
	}
}

func TestClient_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Hour,
			HalfOpenMaxReq:   1,
		}
	})

	for i := 0; i < 3; i++ {
		_, err := client.FetchLivePlayers(context.Background(), 8)
		if !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("attempt %d: expected dependency unavailable, got %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected open circuit to skip the third request, calls=%d", got)
	}
}

func TestClient_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request: %s", r.URL.Path)
	}, nil)

	if _, err := client.FetchLivePlayers(context.Background(), 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := client.FetchLeagueEntries(context.Background(), -1); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
