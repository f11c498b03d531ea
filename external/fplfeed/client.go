package fplfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-live/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-live/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
	"github.com/riskibarqy/fantasy-live/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-live/internal/usecase"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL      = "https://fantasy.premierleague.com/api"
	defaultUserAgent    = "fantasy-live/1.0"
	maxStandingsPages   = 50
	maxResponseBodySize = 6 << 20
)

var (
	errFeedTransient = crerr.New("fpl feed transient failure")
	errFeedNotFound  = crerr.New("fpl feed resource not found")
)

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client reads the public fantasy feed. It satisfies usecase.LiveFeed.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	maxRetries     int
	retryBackoff   time.Duration
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
}

var _ usecase.LiveFeed = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("fplfeed")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breaker := resilience.NewCircuitBreakerFromConfig(breakerCfg)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("fpl feed circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		userAgent:      userAgent,
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   retryBackoff,
		limiter:        limiter,
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchCatalogue(ctx context.Context) (usecase.ExternalCatalogue, error) {
	var payload bootstrapResponse
	if err := c.doJSON(ctx, "/bootstrap-static/", &payload); err != nil {
		return usecase.ExternalCatalogue{}, err
	}
	return mapCatalogue(payload), nil
}

// FetchFixtures lists a gameweek's fixtures; gameweek 0 lists the season.
func (c *Client) FetchFixtures(ctx context.Context, gameweek int) ([]fixture.Fixture, error) {
	if gameweek < 0 {
		return nil, fmt.Errorf("%w: gameweek must be >= 0", usecase.ErrInvalidInput)
	}
	path := "/fixtures/"
	if gameweek > 0 {
		path += "?event=" + strconv.Itoa(gameweek)
	}

	var payload []fixtureWire
	if err := c.doJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	out := make([]fixture.Fixture, 0, len(payload))
	for _, item := range payload {
		out = append(out, mapFixture(item))
	}
	return out, nil
}

func (c *Client) FetchLivePlayers(ctx context.Context, gameweek int) ([]usecase.ExternalLivePlayer, error) {
	if gameweek <= 0 {
		return nil, fmt.Errorf("%w: gameweek must be > 0", usecase.ErrInvalidInput)
	}

	var payload liveResponse
	if err := c.doJSON(ctx, fmt.Sprintf("/event/%d/live/", gameweek), &payload); err != nil {
		return nil, err
	}
	out := make([]usecase.ExternalLivePlayer, 0, len(payload.Elements))
	for _, item := range payload.Elements {
		out = append(out, mapLivePlayer(item))
	}
	return out, nil
}

func (c *Client) FetchEntryPicks(ctx context.Context, entryID, gameweek int) (lineup.Lineup, error) {
	if entryID <= 0 || gameweek <= 0 {
		return lineup.Lineup{}, fmt.Errorf("%w: entry id and gameweek must be > 0", usecase.ErrInvalidInput)
	}

	var payload picksResponse
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/event/%d/picks/", entryID, gameweek), &payload); err != nil {
		return lineup.Lineup{}, err
	}
	return mapLineup(entryID, gameweek, payload), nil
}

// FetchLeagueEntries walks every standings page of a classic league.
func (c *Client) FetchLeagueEntries(ctx context.Context, leagueID int) ([]usecase.ExternalLeagueEntry, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be > 0", usecase.ErrInvalidInput)
	}

	out := make([]usecase.ExternalLeagueEntry, 0)
	for page := 1; page <= maxStandingsPages; page++ {
		var payload standingsResponse
		path := fmt.Sprintf("/leagues-classic/%d/standings/?page_standings=%d", leagueID, page)
		if err := c.doJSON(ctx, path, &payload); err != nil {
			return nil, err
		}
		for _, row := range payload.Standings.Results {
			if row.Entry <= 0 {
				continue
			}
			out = append(out, mapStandingRow(row))
		}
		if !payload.Standings.HasNext {
			return out, nil
		}
	}

	c.logger.WarnContext(ctx, "league standings truncated", "league_id", leagueID, "pages", maxStandingsPages)
	return out, nil
}

// doJSON coalesces concurrent requests for the same path, runs them through
// the circuit breaker and decodes the body into target.
func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	fullURL := c.baseURL + path

	out, err, _ := c.flight.Do(path, func() (any, error) {
		var raw []byte
		run := func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}
		if !c.circuitEnabled {
			err := run()
			return raw, err
		}
		err := c.breaker.Do(run, isFeedCircuitFailure)
		return raw, err
	})
	if err != nil {
		return c.mapError(ctx, path, err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("%w: unexpected response payload type %T", usecase.ErrDependencyUnavailable, out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode %s: %v", usecase.ErrDependencyUnavailable, path, err)
	}
	return nil
}

func (c *Client) mapError(ctx context.Context, path string, err error) error {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		c.logger.WarnContext(ctx, "fpl feed circuit breaker rejected request", "path", path, "state", c.breaker.State())
		return fmt.Errorf("%w: fantasy feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
	case stderrors.Is(err, errFeedNotFound):
		return fmt.Errorf("%w: %s", usecase.ErrNotFound, path)
	default:
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Wrapf(errFeedTransient, "send request: %v", err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errFeedTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, crerr.Wrapf(errFeedNotFound, "status=%d", resp.StatusCode)
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errFeedTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * c.retryBackoff
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "fpl feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isFeedCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errFeedTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
