package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/observability"
	"github.com/aretw0/gantry/pkg/ports"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Dispatcher is the subset of the engine the scheduler needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) ([]*domain.Run, error)
}

// Scheduler fires synthetic schedule events for workflows with cron
// triggers. All cron expressions are evaluated in UTC.
type Scheduler struct {
	dispatcher Dispatcher
	cron       *cron.Cron
	logger     *slog.Logger
	metrics    *observability.Metrics
	locker     ports.DistributedLocker
	lockTTL    time.Duration
}

// SchedulerOption configures the scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the structured logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSchedulerMetrics attaches Prometheus collectors.
func WithSchedulerMetrics(m *observability.Metrics) SchedulerOption {
	return func(s *Scheduler) { s.metrics = m }
}

// WithScheduleLock guards each firing with a distributed lock, so a cron
// trigger fires once per cluster when several replicas run the scheduler.
// The ttl should cover the expected duration of a run.
func WithScheduleLock(locker ports.DistributedLocker, ttl time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// NewScheduler creates a stopped scheduler; call Start after registration.
func NewScheduler(d Dispatcher, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		dispatcher: d,
		cron:       cron.New(cron.WithLocation(time.UTC)),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds every schedule trigger of the workflow to the cron table.
func (s *Scheduler) Register(wf domain.Workflow) error {
	name := wf.Name
	for _, st := range wf.On.Schedule {
		_, err := s.cron.AddFunc(st.Cron, func() {
			s.fire(name)
		})
		if err != nil {
			return fmt.Errorf("workflow %q: invalid cron %q: %w", name, st.Cron, err)
		}
		s.logger.Info("schedule registered", "workflow", name, "cron", st.Cron)
	}
	return nil
}

// RegisterAll registers every scheduled workflow the loader knows.
func (s *Scheduler) RegisterAll(loader ports.WorkflowLoader) error {
	workflows, err := loader.Workflows()
	if err != nil {
		return fmt.Errorf("failed to load workflows: %w", err)
	}
	for _, wf := range workflows {
		if err := s.Register(wf); err != nil {
			return err
		}
	}
	return nil
}

// fire emits one synthetic schedule event addressed to a single workflow.
func (s *Scheduler) fire(workflow string) {
	ctx := context.Background()

	if s.locker != nil {
		unlock, acquired, err := s.locker.TryLock(ctx, "schedule:"+workflow, s.lockTTL)
		if err != nil {
			s.logger.Error("schedule lock failed", "workflow", workflow, "err", err)
			return
		}
		if !acquired {
			s.logger.Debug("schedule firing skipped, another replica holds the lock", "workflow", workflow)
			return
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				s.logger.Warn("schedule unlock failed", "workflow", workflow, "err", err)
			}
		}()
	}

	if s.metrics != nil {
		s.metrics.ScheduleFirings.WithLabelValues(workflow).Inc()
	}

	ev := domain.Event{
		ID:         uuid.NewString(),
		Kind:       domain.EventSchedule,
		Workflow:   workflow,
		ReceivedAt: time.Now().UTC(),
	}

	if _, err := s.dispatcher.Dispatch(ctx, ev); err != nil {
		s.logger.Error("scheduled dispatch failed", "workflow", workflow, "err", err)
	}
}

// Start begins cron evaluation in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron table and waits for in-flight firings.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
