// Package app wires configuration into the running service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-live/external/fplfeed"
	"github.com/riskibarqy/fantasy-live/internal/config"
	"github.com/riskibarqy/fantasy-live/internal/domain/liveevent"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-live/internal/domain/ticker"
	"github.com/riskibarqy/fantasy-live/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-live/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-live/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/fantasy-live/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-live/internal/platform/clock"
	"github.com/riskibarqy/fantasy-live/internal/platform/database"
	"github.com/riskibarqy/fantasy-live/internal/platform/id"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
	"github.com/riskibarqy/fantasy-live/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-live/internal/usecase"
)

// App is the assembled service: HTTP server, live pipeline and poller.
type App struct {
	Server    *http.Server
	Live      *usecase.LiveService
	Scheduler *usecase.PollScheduler
	Stream    *httpapi.StreamHub

	cfg    config.Config
	db     *sqlx.DB
	logger *logging.Logger
}

type stores struct {
	baseline ticker.Repository
	journal  liveevent.Repository
	points   scoring.Repository
	db       *sqlx.DB
}

// New builds the App. A live feed may be injected for tests; nil uses the
// public feed client.
func New(ctx context.Context, cfg config.Config, feed usecase.LiveFeed, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if feed == nil {
		feed = fplfeed.NewClient(fplfeed.ClientConfig{
			BaseURL:           cfg.FeedBaseURL,
			UserAgent:         cfg.FeedUserAgent,
			Timeout:           cfg.FeedTimeout,
			MaxRetries:        cfg.FeedMaxRetries,
			RetryBackoff:      cfg.FeedRetryBackoff,
			RequestsPerSecond: cfg.FeedRequestsPerSecond,
			Burst:             cfg.FeedBurst,
			Logger:            logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FeedCircuitEnabled,
				FailureThreshold: cfg.FeedCircuitFailureCount,
				OpenTimeout:      cfg.FeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMaxReq,
			},
		})
	}

	ids := id.NewUUIDGenerator()
	rules := scoring.DefaultRules()
	rules.ViceCaptainPromotion = cfg.ScoringViceCaptainPromotion

	pointsRepo := st.points
	if cfg.CacheEnabled {
		pointsRepo = cache.NewEntryPointsRepository(pointsRepo, cfg.CacheTTL)
	}

	stream := httpapi.NewStreamHub(ids, nil, cfg.CORSAllowedOrigins, logger)
	live := usecase.NewLiveService(
		feed,
		usecase.NewPointsCache(pointsRepo, usecase.CacheWhenConfirmed, logger),
		st.baseline,
		st.journal,
		ticker.NewDetector(cfg.TickerCapacity, ticker.WithIDGenerator(ids.NewID)),
		stream,
		usecase.LiveServiceConfig{
			LeagueID:    cfg.FPLLeagueID,
			EntryIDs:    cfg.FPLEntryIDs,
			WorkerCount: cfg.LiveWorkerCount,
			Rules:       rules,
		},
		logger.Named("live"),
	)
	stream.SetBacklog(httpapi.LiveBacklog(live))

	scheduler := usecase.NewPollScheduler(live, live, clock.New(), usecase.PollSchedulerConfig{
		Interval:        cfg.PollInterval,
		PreKickoffLead:  cfg.PollPreKickoffLead,
		MatchWindow:     cfg.PollMatchWindow,
		SafetyExtension: cfg.PollSafetyExtension,
		IdleRecheck:     cfg.PollIdleRecheck,
	}, logger.Named("poller"))

	handler := httpapi.NewHandler(live, logger)
	router := httpapi.NewRouter(handler, stream, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	return &App{
		Server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		Live:      live,
		Scheduler: scheduler,
		Stream:    stream,
		cfg:       cfg,
		db:        st.db,
		logger:    logger,
	}, nil
}

// Start restores persisted live state and starts the poller when enabled.
// A failed restore is logged; the next refresh seeds a fresh baseline.
func (a *App) Start(ctx context.Context) {
	if err := a.Live.Restore(ctx); err != nil {
		a.logger.WarnContext(ctx, "restore live state failed", "error", err)
	}
	if a.cfg.PollEnabled {
		a.Scheduler.Start(ctx)
		a.logger.InfoContext(ctx, "poll scheduler started", "interval", a.cfg.PollInterval.String())
	}
}

// Shutdown stops polling, drains HTTP, disconnects subscribers and closes
// the database.
func (a *App) Shutdown(ctx context.Context) error {
	a.Scheduler.Stop()
	a.Stream.Close()

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func openStores(ctx context.Context, cfg config.Config, logger *logging.Logger) (stores, error) {
	if cfg.StoreDriver == config.StoreMemory || cfg.StoreDriver == "" {
		liveState := memory.NewLiveStateRepository()
		return stores{
			baseline: liveState,
			journal:  liveState,
			points:   memory.NewEntryPointsRepository(),
		}, nil
	}

	dbCfg := database.Config{
		Driver:                      cfg.StoreDriver,
		URL:                         cfg.DBURL,
		DisablePreparedBinaryResult: cfg.DBDisablePreparedBinary,
		MaxOpenConns:                cfg.DBMaxOpenConns,
		MaxIdleConns:                cfg.DBMaxIdleConns,
		ConnMaxLifetime:             cfg.DBConnMaxLifetime,
		AutoMigrate:                 cfg.DBAutoMigrate,
	}
	if cfg.StoreDriver == config.StoreSQLite {
		dbCfg.URL = cfg.SQLitePath
		dbCfg.AutoMigrate = true
	}

	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	db, err := database.Open(openCtx, dbCfg)
	if err != nil {
		return stores{}, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	logger.Info("live state store opened", "driver", cfg.StoreDriver, "auto_migrate", dbCfg.AutoMigrate)

	liveState := sqlstore.NewLiveStateRepository(db)
	return stores{
		baseline: liveState,
		journal:  liveState,
		points:   sqlstore.NewEntryPointsRepository(db),
		db:       db,
	}, nil
}
