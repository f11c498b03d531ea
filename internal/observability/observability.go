// Package observability starts the tracing, profiling and pprof side
// channels selected by config.
package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/fantasy-live/internal/config"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
)

// Setup starts every enabled integration. The returned shutdown stops them in
// reverse order and joins their errors.
func Setup(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	shutdownUptrace, err := InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}

	stopPyroscope, err := InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownUptrace(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}

	pprofServer := StartPprofServer(cfg, logger)

	return func(ctx context.Context) error {
		return errors.Join(
			StopPprofServer(ctx, pprofServer),
			stopPyroscope(),
			shutdownUptrace(ctx),
		)
	}, nil
}
