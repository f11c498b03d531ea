package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string        `env:"APP_ENV" envDefault:"dev"`
	ServiceName        string        `env:"SERVICE_NAME" envDefault:"fantasy-live"`
	ServiceVersion     string        `env:"SERVICE_VERSION" envDefault:"dev"`
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout        time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout       time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel           logging.Level `env:"LOG_LEVEL" envDefault:"info"`
	InternalJobToken   string        `env:"INTERNAL_JOB_TOKEN"`

	StoreDriver             string        `env:"STORE_DRIVER" envDefault:"memory"`
	DBURL                   string        `env:"DB_URL"`
	DBDisablePreparedBinary bool          `env:"DB_DISABLE_PREPARED_BINARY_RESULT" envDefault:"true"`
	DBAutoMigrate           bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	DBMaxOpenConns          int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns          int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	SQLitePath              string        `env:"SQLITE_PATH" envDefault:"fantasy-live.db"`
	CacheEnabled            bool          `env:"CACHE_ENABLED" envDefault:"true"`
	CacheTTL                time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	FeedBaseURL               string        `env:"FEED_BASE_URL" envDefault:"https://fantasy.premierleague.com/api"`
	FeedUserAgent             string        `env:"FEED_USER_AGENT" envDefault:"fantasy-live/1.0"`
	FeedTimeout               time.Duration `env:"FEED_TIMEOUT" envDefault:"15s"`
	FeedMaxRetries            int           `env:"FEED_MAX_RETRIES" envDefault:"2"`
	FeedRetryBackoff          time.Duration `env:"FEED_RETRY_BACKOFF" envDefault:"1s"`
	FeedRequestsPerSecond     float64       `env:"FEED_REQUESTS_PER_SECOND" envDefault:"5"`
	FeedBurst                 int           `env:"FEED_BURST" envDefault:"5"`
	FeedCircuitEnabled        bool          `env:"FEED_CIRCUIT_ENABLED" envDefault:"true"`
	FeedCircuitFailureCount   int           `env:"FEED_CIRCUIT_FAILURE_COUNT" envDefault:"5"`
	FeedCircuitOpenTimeout    time.Duration `env:"FEED_CIRCUIT_OPEN_TIMEOUT" envDefault:"30s"`
	FeedCircuitHalfOpenMaxReq int           `env:"FEED_CIRCUIT_HALF_OPEN_MAX_REQ" envDefault:"1"`

	FPLLeagueID                 int   `env:"FPL_LEAGUE_ID"`
	FPLEntryIDs                 []int `env:"FPL_ENTRY_IDS" envSeparator:","`
	LiveWorkerCount             int   `env:"LIVE_WORKER_COUNT" envDefault:"8"`
	TickerCapacity              int   `env:"TICKER_CAPACITY" envDefault:"50"`
	ScoringViceCaptainPromotion bool  `env:"SCORING_VICE_CAPTAIN_PROMOTION" envDefault:"false"`

	PollEnabled         bool          `env:"POLL_ENABLED" envDefault:"true"`
	PollInterval        time.Duration `env:"POLL_INTERVAL" envDefault:"60s"`
	PollPreKickoffLead  time.Duration `env:"POLL_PRE_KICKOFF_LEAD" envDefault:"15m"`
	PollMatchWindow     time.Duration `env:"POLL_MATCH_WINDOW" envDefault:"2h"`
	PollSafetyExtension time.Duration `env:"POLL_SAFETY_EXTENSION" envDefault:"30m"`
	PollIdleRecheck     time.Duration `env:"POLL_IDLE_RECHECK" envDefault:"6h"`

	UptraceEnabled bool   `env:"UPTRACE_ENABLED" envDefault:"false"`
	UptraceDSN     string `env:"UPTRACE_DSN"`

	PyroscopeEnabled           bool          `env:"PYROSCOPE_ENABLED" envDefault:"false"`
	PyroscopeServerAddress     string        `env:"PYROSCOPE_SERVER_ADDRESS"`
	PyroscopeAppName           string        `env:"PYROSCOPE_APP_NAME"`
	PyroscopeAuthToken         string        `env:"PYROSCOPE_AUTH_TOKEN"`
	PyroscopeBasicAuthUser     string        `env:"PYROSCOPE_BASIC_AUTH_USER"`
	PyroscopeBasicAuthPassword string        `env:"PYROSCOPE_BASIC_AUTH_PASSWORD"`
	PyroscopeUploadRate        time.Duration `env:"PYROSCOPE_UPLOAD_RATE" envDefault:"15s"`

	PprofEnabled bool   `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAddr    string `env:"PPROF_ADDR" envDefault:":6060"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv parses the process environment without reading .env.
func LoadFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	appEnv, err := parseAppEnv(c.AppEnv)
	if err != nil {
		return err
	}
	c.AppEnv = appEnv

	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.DBURL) == "" {
			return fmt.Errorf("DB_URL is required when STORE_DRIVER=postgres")
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s, %s", c.StoreDriver, StoreMemory, StorePostgres, StoreSQLite)
	}

	c.CORSAllowedOrigins = trimAll(c.CORSAllowedOrigins)
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	positive := []struct {
		key   string
		value time.Duration
	}{
		{"HTTP_READ_TIMEOUT", c.ReadTimeout},
		{"HTTP_WRITE_TIMEOUT", c.WriteTimeout},
		{"CACHE_TTL", c.CacheTTL},
		{"FEED_TIMEOUT", c.FeedTimeout},
		{"FEED_CIRCUIT_OPEN_TIMEOUT", c.FeedCircuitOpenTimeout},
		{"POLL_INTERVAL", c.PollInterval},
		{"POLL_MATCH_WINDOW", c.PollMatchWindow},
		{"POLL_IDLE_RECHECK", c.PollIdleRecheck},
	}
	for _, item := range positive {
		if item.value <= 0 {
			return fmt.Errorf("%s must be > 0", item.key)
		}
	}
	if c.PollPreKickoffLead < 0 {
		return fmt.Errorf("POLL_PRE_KICKOFF_LEAD must be >= 0")
	}
	if c.PollSafetyExtension < 0 {
		return fmt.Errorf("POLL_SAFETY_EXTENSION must be >= 0")
	}

	if c.FeedMaxRetries < 0 {
		return fmt.Errorf("FEED_MAX_RETRIES must be >= 0")
	}
	if c.FeedRequestsPerSecond < 0 {
		return fmt.Errorf("FEED_REQUESTS_PER_SECOND must be >= 0")
	}
	if c.FeedCircuitFailureCount < 1 {
		return fmt.Errorf("FEED_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if c.FeedCircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("FEED_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	if c.LiveWorkerCount < 1 {
		return fmt.Errorf("LIVE_WORKER_COUNT must be >= 1")
	}
	if c.TickerCapacity < 1 {
		return fmt.Errorf("TICKER_CAPACITY must be >= 1")
	}
	if c.FPLLeagueID < 0 {
		return fmt.Errorf("FPL_LEAGUE_ID must be >= 0")
	}
	for _, id := range c.FPLEntryIDs {
		if id <= 0 {
			return fmt.Errorf("FPL_ENTRY_IDS must contain positive ids, got %d", id)
		}
	}

	c.UptraceDSN = strings.TrimSpace(c.UptraceDSN)
	if c.UptraceDSN == "" {
		c.UptraceDSN = parseUptraceDSNFromOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	}
	if c.UptraceEnabled && c.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	c.PyroscopeServerAddress = strings.TrimSpace(c.PyroscopeServerAddress)
	if c.PyroscopeEnabled && c.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	c.PyroscopeAppName = strings.TrimSpace(c.PyroscopeAppName)
	if c.PyroscopeAppName == "" {
		c.PyroscopeAppName = c.ServiceName
	}

	c.PprofAddr = strings.TrimSpace(c.PprofAddr)
	if c.PprofEnabled && c.PprofAddr == "" {
		c.PprofAddr = ":6060"
	}
	return nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseUptraceDSNFromOTLPHeaders reads the uptrace-dsn entry from an OTLP
// headers list such as "uptrace-dsn=https://token@api.uptrace.dev".
func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
