package daemon

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/extract"
	"github.com/eliteGoblin/focusd/focus_mon/internal/policy"
	"github.com/eliteGoblin/focusd/focus_mon/internal/usecase"
)

// Task is a long-running unit managed by the Supervisor.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Dependencies are the OS adapters the monitors run against.
type Dependencies struct {
	Source    domain.NotificationSource // required
	Presenter domain.Presenter          // required
	Query     domain.ForegroundQuery    // nil disables polling
	Journal   domain.BlockJournal       // nil disables the journal
	Metrics   domain.MonitorMetrics     // nil discards counters
	Clock     domain.Clock              // nil uses the wall clock
	Policy    domain.PolicySet          // nil uses the compiled-in set
}

// Supervisor starts and stops all monitoring tasks together.
type Supervisor struct {
	tasks  []Task
	handle *Handle
	logger *zap.Logger
}

// NewSupervisor creates a supervisor over explicit tasks.
func NewSupervisor(handle *Handle, logger *zap.Logger, tasks ...Task) *Supervisor {
	if handle == nil {
		handle = NewHandle(nil)
	}
	return &Supervisor{tasks: tasks, handle: handle, logger: logger}
}

// New wires the full monitoring subsystem from cfg and deps.
func New(cfg Config, deps Dependencies, logger *zap.Logger) *Supervisor {
	clock := deps.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	ps := deps.Policy
	if ps == nil {
		ps = policy.NewDefaultSet()
	}

	screenTime := usecase.NewScreenTime(clock)
	handle := NewHandle(screenTime)

	classifier := usecase.NewClassifier(ps, extract.NewWithDepth(cfg.MaxDepth, logger.Named("extract")))

	var action domain.BlockAction
	if deps.Journal != nil {
		action = usecase.NewBlockerWithJournal(deps.Presenter, deps.Journal, clock, logger.Named("blocker"))
	} else {
		action = usecase.NewBlocker(deps.Presenter, logger.Named("blocker"))
	}

	gate := usecase.NewGateWithClock(cfg.Cooldown, clock)
	dispatcher := NewDispatcher(gate, action, deps.Metrics, handle, clock, logger)

	tasks := []Task{
		NewEventMonitor(deps.Source, classifier, dispatcher, deps.Metrics, cfg.SelfID, logger.Named("event")),
	}
	if deps.Query != nil {
		tasks = append(tasks, NewPollingMonitor(deps.Query, classifier, dispatcher, screenTime, deps.Metrics, cfg, logger.Named("poll")))
	}
	tasks = append(tasks, NewScreenTimeReporter(screenTime, deps.Presenter, cfg.ScreenTimeInterval, logger.Named("screen_time")))

	return NewSupervisor(handle, logger, tasks...)
}

// Handle returns the status handle of this subsystem.
func (s *Supervisor) Handle() *Handle {
	return s.handle
}

// Run blocks until ctx is canceled or a task fails.
//
// A notification feed that ends on its own is not fatal: the remaining
// tasks keep running, so monitoring degrades to polling only.
// Cancellation of ctx is a clean stop and returns nil; otherwise the
// first task error stops the others and is returned.
func (s *Supervisor) Run(ctx context.Context) error {
	s.handle.setRunning(true)
	defer s.handle.setRunning(false)

	s.logger.Info("monitoring started", zap.Int("tasks", len(s.tasks)))

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range s.tasks {
		t := t
		g.Go(func() error {
			err := t.Run(gctx)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, domain.ErrSourceClosed):
				s.logger.Warn("notification source closed, continuing without it", zap.String("task", t.Name()))
				return nil
			case gctx.Err() != nil && errors.Is(err, gctx.Err()):
				return nil
			default:
				s.logger.Error("task failed", zap.String("task", t.Name()), zap.Error(err))
				return fmt.Errorf("%s: %w", t.Name(), err)
			}
		})
	}

	err := g.Wait()
	s.logger.Info("monitoring stopped")
	return err
}
