// Package scheduler implements the timer engine that fires due schedules.
// The engine keeps at most one pending wake-up armed for the earliest due
// row in the store; everything else, including the schedules themselves,
// lives in persistent storage.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/target/taskd/config"
	"github.com/target/taskd/internal/core"
	"github.com/target/taskd/internal/data"
	"github.com/target/taskd/internal/domain/model"
	"github.com/target/taskd/internal/domain/pattern"
	"github.com/target/taskd/internal/observability/metrics"
	"github.com/target/taskd/internal/observability/statsd"
)

// ScheduleExecutor runs the payload behind a due schedule.
type ScheduleExecutor interface {
	ExecuteScheduled(ctx context.Context, sched *model.Schedule) error
}

// EngineOptions holds the dependencies for creating an Engine.
type EngineOptions struct {
	Store        core.ScheduleQueue
	Executor     ScheduleExecutor
	Config       *config.SchedulerConfig
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
	Metrics      statsd.Sink
}

// Engine owns the single fire timer. One mutex serializes every state
// transition: start, stop, re-arm, and the fire path itself. Store writes
// made through Locked are therefore atomic with respect to fires.
type Engine struct {
	store        core.ScheduleQueue
	executor     ScheduleExecutor
	cfg          config.SchedulerConfig
	timeProvider data.TimeProvider
	logger       *slog.Logger
	metrics      statsd.Sink

	mu      sync.Mutex
	running bool
	timer   *time.Timer
	// generation invalidates timer callbacks armed before the latest re-arm.
	// Stopping a Go timer does not guarantee its callback never runs, so
	// every callback re-checks the generation under the mutex.
	generation uint64
}

// NewEngine creates a scheduler engine. Store and Executor are required.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Store == nil {
		panic("scheduler engine requires a store")
	}
	if opts.Executor == nil {
		panic("scheduler engine requires an executor")
	}

	cfg := config.DefaultSchedulerConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = data.SystemTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "scheduler_engine")
	}

	return &Engine{
		store:        opts.Store,
		executor:     opts.Executor,
		cfg:          cfg,
		timeProvider: opts.TimeProvider,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
}

// Start arms the timer for the earliest due schedule. Overdue rows fire
// shortly after start rather than immediately, the minimum delay keeps a
// backlog from busy-looping. Idempotent.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return
	}
	e.running = true
	e.logger.InfoContext(ctx, "scheduler started")
	e.rearmLocked(ctx)
}

// Stop cancels the pending timer and halts firing. A fire already in
// progress holds the mutex, so Stop returns only after it completes.
// Durable state is untouched. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	e.cancelTimerLocked()
	e.logger.Info("scheduler stopped")
}

// Running reports whether the engine is firing schedules.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// NextDue returns the due instant of the earliest schedule, or nil when the
// engine is stopped or no schedules exist.
func (e *Engine) NextDue(ctx context.Context) (*time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil, nil
	}
	next, err := e.store.NextDue(ctx)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}
	due := next.Due
	return &due, nil
}

// Locked runs fn while holding the engine mutex, then re-arms the timer if
// the engine is running. Mutators use it so a schedule write and the re-arm
// it requires happen atomically with respect to fires.
func (e *Engine) Locked(ctx context.Context, fn func(ctx context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := fn(ctx)
	if e.running {
		e.rearmLocked(ctx)
	}
	return err
}

// Rearm recomputes the wake-up from the store. Callers use it after
// out-of-band schedule changes, such as writes from another process.
func (e *Engine) Rearm(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.rearmLocked(ctx)
	}
}

// rearmLocked cancels any pending timer and arms a new one for the earliest
// due row. Caller must hold e.mu.
func (e *Engine) rearmLocked(ctx context.Context) {
	e.cancelTimerLocked()
	if !e.running {
		return
	}

	next, err := e.store.NextDue(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "load next due schedule", "error", err)
		e.retryLocked()
		return
	}
	if next == nil {
		return
	}

	now := e.timeProvider.Now().UTC()
	delay := next.Due.Sub(now)
	if delay > e.cfg.MaxTimerSleep {
		delay = e.cfg.MaxTimerSleep
	}
	if delay < e.cfg.MinFireDelay {
		delay = e.cfg.MinFireDelay
	}

	gen := e.generation
	due := next.Due
	e.timer = time.AfterFunc(delay, func() { e.onFire(gen, due) })

	if e.metrics != nil {
		metrics.EmitNextDueGauge(e.metrics, next.Due.Sub(now))
	}
}

// retryLocked arms a plain re-arm wake-up after a storage failure so the
// engine keeps trying instead of going dark. Caller must hold e.mu.
func (e *Engine) retryLocked() {
	e.cancelTimerLocked()
	gen := e.generation
	e.timer = time.AfterFunc(e.cfg.RetryInterval, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.running || gen != e.generation {
			return
		}
		e.emitWake("retry")
		e.rearmLocked(context.Background())
	})
}

// cancelTimerLocked stops the pending timer and invalidates callbacks armed
// against the previous generation. Caller must hold e.mu.
func (e *Engine) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.generation++
}

// onFire is the timer callback. expectedDue is the due instant the timer was
// armed for; the store is re-read before dispatching because the earliest
// row may have changed while the timer slept.
func (e *Engine) onFire(gen uint64, expectedDue time.Time) {
	// Timer callbacks have no caller context.
	ctx := context.Background()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running || gen != e.generation {
		e.emitWake("stale")
		return
	}

	now := e.timeProvider.Now().UTC()

	// A wake-up before the armed due is a long-sleep refresh: the real due
	// sits beyond the timer cap, so verify and go back to sleep.
	if now.Before(expectedDue.Add(e.cfg.MinFireDelay)) {
		e.emitWake("refresh")
		e.rearmLocked(ctx)
		return
	}

	next, err := e.store.NextDue(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "load next due schedule", "error", err)
		e.retryLocked()
		return
	}
	if next == nil {
		e.emitWake("empty")
		e.cancelTimerLocked()
		return
	}
	if !next.Due.Add(e.cfg.MinFireDelay).Before(now) {
		// The earliest row is not actually due, it was replaced while the
		// timer slept.
		e.emitWake("early")
		e.rearmLocked(ctx)
		return
	}

	e.emitWake("fire")
	if err := e.executor.ExecuteScheduled(ctx, next); err != nil {
		// Execution failures never abort the engine; the executor has
		// already recorded and reported them.
		e.logger.ErrorContext(ctx, "scheduled execution failed",
			"task_id", next.TaskID,
			"schedule_id", next.ID,
			"error", err,
		)
	}

	// A schedule another process removed mid-fire is already settled.
	if err := e.settleLocked(ctx, next); err != nil && !errors.Is(err, data.ErrScheduleNotFound) {
		e.logger.ErrorContext(ctx, "settle fired schedule",
			"task_id", next.TaskID,
			"schedule_id", next.ID,
			"error", err,
		)
		e.retryLocked()
		return
	}

	e.rearmLocked(ctx)
}

// settleLocked advances a recurring schedule past the fire or deletes a
// one-shot. The next occurrence is computed from the time execution ended,
// not the scheduled due, so long-running tasks do not pile up a backlog.
// Caller must hold e.mu.
func (e *Engine) settleLocked(ctx context.Context, sched *model.Schedule) error {
	if !sched.IsRecurring() {
		return e.store.DeleteSchedule(ctx, sched.ID)
	}

	pat, err := pattern.Parse(*sched.Repeats)
	if err != nil {
		e.logger.WarnContext(ctx, "dropping schedule with unparseable repetition pattern",
			"task_id", sched.TaskID,
			"schedule_id", sched.ID,
			"repeats", *sched.Repeats,
			"error", err,
		)
		return e.store.DeleteSchedule(ctx, sched.ID)
	}

	next := pat.Next(e.timeProvider.Now().UTC())
	if next.IsZero() {
		e.logger.WarnContext(ctx, "dropping schedule with no future occurrence",
			"task_id", sched.TaskID,
			"schedule_id", sched.ID,
			"repeats", *sched.Repeats,
		)
		return e.store.DeleteSchedule(ctx, sched.ID)
	}

	return e.store.AdvanceSchedule(ctx, sched.ID, next)
}

func (e *Engine) emitWake(reason string) {
	if e.metrics != nil {
		metrics.EmitSchedulerWake(e.metrics, reason)
	}
}
