// Package scheduler runs actions on timers instead of in response to messages.
//
// A timer schedule runs its action every Interval; a one-shot schedule runs once when
// Run starts. Each schedule runs in its own goroutine, so one schedule never overlaps
// with itself, and every run goes through the action registry like a dispatched
// message. Action errors and panics are logged and never stop the scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/registry"
)

// Channel is the Message.Channel of scheduled runs.
const Channel = "scheduler"

// ConversationFunc returns the conversation accessors a scheduled action runs with.
type ConversationFunc func(ctx context.Context, sender string) ports.Conversation

// LockFunc serializes a run with other work on the same sender.
type LockFunc func(ctx context.Context, sender string, fn func(context.Context) error) error

// Run describes one execution of a schedule.
type Run struct {
	Schedule domain.Schedule
	Output   any
	Err      error
	Duration time.Duration
}

// Scheduler holds schedules and runs them until its context is canceled.
type Scheduler struct {
	actions       *registry.Registry
	conversations ConversationFunc
	lock          LockFunc
	onRun         func(Run)
	logger        *slog.Logger

	mu        sync.RWMutex
	schedules map[string]domain.Schedule
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLock wraps every run in lock, keyed by the schedule's sender.
func WithLock(lock LockFunc) Option {
	return func(s *Scheduler) {
		s.lock = lock
	}
}

// WithRunHandler is called after every run. It must not block.
func WithRunHandler(fn func(Run)) Option {
	return func(s *Scheduler) {
		s.onRun = fn
	}
}

// New creates an empty scheduler over the action registry.
func New(actions *registry.Registry, conversations ConversationFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		actions:       actions,
		conversations: conversations,
		logger:        logging.NewNop(),
		schedules:     make(map[string]domain.Schedule),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates and registers schedules. Either all of them are added or none.
func (s *Scheduler) Add(schedules ...domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]domain.Schedule, len(schedules))
	for _, sched := range schedules {
		sched = sched.Normalize()
		if err := sched.Validate(); err != nil {
			return err
		}
		_, exists := s.schedules[sched.Name]
		if _, dup := batch[sched.Name]; dup || exists {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateSchedule, sched.Name)
		}
		batch[sched.Name] = sched
	}
	for name, sched := range batch {
		s.schedules[name] = sched
		s.logger.Debug("schedule registered", "name", name, "type", sched.Type, "action", sched.Action, "interval", sched.Interval)
	}
	return nil
}

// Schedules returns the registered schedules ordered by name.
func (s *Scheduler) Schedules() []domain.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		out = append(out, sched)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run starts every schedule registered so far and blocks until ctx is canceled
// and all runs have returned. Cancellation is not an error.
func (s *Scheduler) Run(ctx context.Context) error {
	schedules := s.Schedules()
	s.logger.Info("scheduler started", "schedules", len(schedules))

	g, ctx := errgroup.WithContext(ctx)
	for _, sched := range schedules {
		switch sched.Type {
		case domain.ScheduleOneShot:
			g.Go(func() error {
				s.fire(ctx, sched)
				return nil
			})
		case domain.ScheduleTimer:
			g.Go(func() error {
				s.loop(ctx, sched)
				return nil
			})
		}
	}
	<-ctx.Done()
	err := g.Wait()
	s.logger.Info("scheduler stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context, sched domain.Schedule) {
	ticker := time.NewTicker(sched.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx, sched)
		}
	}
}

// fire runs the schedule's action once.
func (s *Scheduler) fire(ctx context.Context, sched domain.Schedule) {
	if ctx.Err() != nil {
		return
	}
	sender := sched.Sender()
	logger := s.logger.With("schedule", sched.Name, "action", sched.Action)

	run := Run{Schedule: sched}
	start := time.Now()
	err := s.withLock(ctx, sender, func(ctx context.Context) error {
		msg := domain.Message{
			ID:         uuid.NewString(),
			Sender:     domain.Sender{ID: sender},
			Channel:    Channel,
			ReceivedAt: start,
		}
		var conv ports.Conversation
		if s.conversations != nil {
			conv = s.conversations(ctx, sender)
		}
		run.Output, run.Err = s.execute(ctx, sched.Action, msg, conv)
		return nil
	})
	if err != nil {
		run.Err = err
	}
	run.Duration = time.Since(start)

	switch {
	case errors.Is(run.Err, domain.ErrMissingAction):
		logger.Warn("scheduled action is not bound")
	case run.Err != nil:
		logger.Error("scheduled action failed", "err", run.Err, "duration", run.Duration)
	default:
		logger.Debug("scheduled action ran", "output", run.Output, "duration", run.Duration)
	}
	if s.onRun != nil {
		s.onRun(run)
	}
}

func (s *Scheduler) withLock(ctx context.Context, sender string, fn func(context.Context) error) error {
	if s.lock == nil {
		return fn(ctx)
	}
	return s.lock(ctx, sender, fn)
}

func (s *Scheduler) execute(ctx context.Context, name string, msg domain.Message, conv ports.Conversation) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduled action panicked: %v", r)
		}
	}()
	return s.actions.Execute(ctx, name, msg, conv)
}
