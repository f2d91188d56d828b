package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rtao-god/solsignal-reports/pkg/models/store"
	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb/workflow"
)

type Controller interface {
	Start(ctx context.Context) error
	Cancel(ctx context.Context) error
	RefreshNow(ctx context.Context) (map[string]error, error)
	Status(ctx context.Context) ([]*store.RefreshState, error)
}

type DefaultController struct {
	refresher Refresher
	store     workflow.Store
	kinds     []string
	config    RunnerConfig

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	runner     *Runner
}

// NewController wires a background refresher for the given kinds.
func NewController(refresher Refresher, store workflow.Store, kinds []string, config RunnerConfig) *DefaultController {
	return &DefaultController{
		refresher: refresher,
		store:     store,
		kinds:     kinds,
		config:    config,
	}
}

func (ctrl *DefaultController) Start(ctx context.Context) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.runner != nil {
		return fmt.Errorf("snapshot refresh already running")
	}
	if len(ctrl.kinds) == 0 {
		return fmt.Errorf("no report kinds to refresh")
	}

	ctx, cancel := context.WithCancel(ctx)
	runner := NewRunner(ctrl.refresher, ctrl.store, ctrl.kinds, ctrl.config)
	ctrl.cancelFunc = cancel
	ctrl.runner = runner

	go runner.Run(ctx)
	return nil
}

func (ctrl *DefaultController) Cancel(_ context.Context) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.runner == nil {
		return fmt.Errorf("snapshot refresh not running")
	}
	ctrl.cancelFunc()
	<-ctrl.runner.Done()

	ctrl.runner = nil
	ctrl.cancelFunc = nil
	return nil
}

// RefreshNow runs one refresh cycle outside the schedule and records its outcome.
func (ctrl *DefaultController) RefreshNow(ctx context.Context) (map[string]error, error) {
	failures, err := ctrl.refresher.Refresh(ctx, ctrl.kinds...)
	if err != nil {
		return nil, err
	}
	recordRefresh(ctx, ctrl.store, ctrl.kinds, time.Now(), failures)
	return failures, nil
}

func (ctrl *DefaultController) Status(ctx context.Context) ([]*store.RefreshState, error) {
	return ctrl.store.ListStates(ctx)
}
