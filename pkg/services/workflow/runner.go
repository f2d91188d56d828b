package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb/workflow"
)

// Refresher is the part of the report service the runner drives.
type Refresher interface {
	Refresh(ctx context.Context, kinds ...string) (map[string]error, error)
}

type Runner struct {
	refresher Refresher
	store     workflow.Store
	kinds     []string
	done      chan struct{}
	progress  chan RunnerProgress
	config    RunnerConfig
	now       func() time.Time
}

type RunnerConfig struct {
	Interval time.Duration
}

type RunnerProgress struct {
	Cycle     int64
	Refreshed int
	Failed    int
	At        time.Time
}

func NewRunner(refresher Refresher, store workflow.Store, kinds []string, config RunnerConfig) *Runner {
	if config.Interval <= 0 {
		config.Interval = 15 * time.Minute
	}
	return &Runner{
		refresher: refresher,
		store:     store,
		kinds:     kinds,
		done:      make(chan struct{}),
		progress:  make(chan RunnerProgress, 100),
		config:    config,
		now:       time.Now,
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

// Run refreshes immediately and then once per interval until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("component", "snapshot-refresher").Logger()
	defer close(r.done)
	defer close(r.progress)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	var cycle int64
	for {
		cycle++
		if !r.runCycle(ctx, logger, cycle) {
			logger.Info().Msg("snapshot refresh stopped")
			return
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("snapshot refresh stopped")
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) runCycle(ctx context.Context, logger zerolog.Logger, cycle int64) bool {
	failures, err := r.refresher.Refresh(ctx, r.kinds...)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		logger.Error().Err(err).Msg("snapshot refresh failed")
		return true
	}

	progress := recordRefresh(ctx, r.store, r.kinds, r.now(), failures)
	progress.Cycle = cycle

	select {
	case r.progress <- progress:
	default:
	}
	return true
}

// recordRefresh writes the outcome of one refresh of kinds into the state store.
func recordRefresh(ctx context.Context, states workflow.Store, kinds []string, at time.Time, failures map[string]error) RunnerProgress {
	logger := zerolog.Ctx(ctx)
	progress := RunnerProgress{At: at}

	for _, kind := range kinds {
		if cause, failed := failures[kind]; failed {
			progress.Failed++
			logger.Warn().Err(cause).Str("kind", kind).Msg("report refresh failed")
			if err := states.RecordFailure(ctx, kind, at, cause); err != nil {
				logger.Error().Err(err).Str("kind", kind).Msg("failed to record refresh state")
			}
			continue
		}
		progress.Refreshed++
		if err := states.RecordSuccess(ctx, kind, at); err != nil {
			logger.Error().Err(err).Str("kind", kind).Msg("failed to record refresh state")
		}
	}
	return progress
}
