package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/target/taskd/internal/core"
	"github.com/target/taskd/internal/data"
	"github.com/target/taskd/internal/domain/model"
	obserrors "github.com/target/taskd/internal/observability/errors"
	"github.com/target/taskd/internal/observability/metrics"
	"github.com/target/taskd/internal/observability/notify"
	"github.com/target/taskd/internal/observability/statsd"
	"github.com/target/taskd/internal/service/failurenotifier"
)

// ExecutorOptions holds the dependencies for creating an Executor.
type ExecutorOptions struct {
	Store        core.TaskStore
	Evaluator    core.Evaluator
	Fires        core.FireRecorder        // Optional: execution history
	Notifier     *failurenotifier.Service // Optional: failure notifications
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
	Metrics      statsd.Sink
}

// Executor loads a task's payload and hands it to the evaluator, recording
// the outcome. Both the engine's timer fires and direct execute calls run
// through it; only the error disposition differs, and that is the caller's
// concern.
type Executor struct {
	store        core.TaskStore
	evaluator    core.Evaluator
	fires        core.FireRecorder
	notifier     *failurenotifier.Service
	timeProvider data.TimeProvider
	logger       *slog.Logger
	metrics      statsd.Sink
}

// NewExecutor creates an Executor. Store and Evaluator are required.
func NewExecutor(opts ExecutorOptions) *Executor {
	if opts.Store == nil {
		panic("executor requires a store")
	}
	if opts.Evaluator == nil {
		panic("executor requires an evaluator")
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = data.SystemTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "executor")
	}

	return &Executor{
		store:        opts.Store,
		evaluator:    opts.Evaluator,
		fires:        opts.Fires,
		notifier:     opts.Notifier,
		timeProvider: opts.TimeProvider,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
}

// Execute runs a task's payload immediately, bypassing the scheduler.
// Evaluation errors are returned to the caller.
func (x *Executor) Execute(ctx context.Context, taskID string) error {
	return x.run(ctx, runParams{
		taskID:  taskID,
		trigger: model.FireTriggerManual,
	})
}

// ExecuteScheduled runs the task behind a due schedule on behalf of the
// engine.
func (x *Executor) ExecuteScheduled(ctx context.Context, sched *model.Schedule) error {
	due := sched.Due
	return x.run(ctx, runParams{
		taskID:     sched.TaskID,
		trigger:    model.FireTriggerScheduled,
		scheduleID: &sched.ID,
		due:        &due,
	})
}

// runParams groups the fire context threaded through one execution.
type runParams struct {
	taskID     string
	trigger    model.FireTrigger
	scheduleID *int64
	due        *time.Time
}

func (x *Executor) run(ctx context.Context, p runParams) error {
	task, err := x.store.GetTask(ctx, p.taskID, false)
	if err != nil {
		return fmt.Errorf("load task %s: %w", p.taskID, err)
	}

	executionID := uuid.NewString()
	started := x.timeProvider.Now().UTC()
	wall := time.Now()

	evalErr := x.evaluator.Evaluate(ctx, task.Payload)
	elapsed := time.Since(wall)

	outcome := model.FireOutcomeSuccess
	result := metrics.ResultSuccess
	errMsg := ""
	if evalErr != nil {
		outcome = model.FireOutcomeError
		result = metrics.ResultError
		errMsg = evalErr.Error()
	}

	x.recordFire(ctx, model.FireRecord{
		ExecutionID: executionID,
		TaskID:      p.taskID,
		ScheduleID:  p.scheduleID,
		Trigger:     p.trigger,
		Due:         p.due,
		StartedAt:   started,
		Duration:    elapsed,
		Outcome:     outcome,
		Error:       errMsg,
	})

	metrics.EmitTaskFire(x.metrics, metrics.FireMetric{
		Trigger:  string(p.trigger),
		Result:   result,
		Duration: elapsed,
		Err:      evalErr,
	})

	if evalErr != nil {
		x.notifyFailure(ctx, p, notifyParams{
			executionID: executionID,
			started:     started,
			elapsed:     elapsed,
			err:         evalErr,
		})
		return fmt.Errorf("evaluate task %s: %w", p.taskID, evalErr)
	}

	x.logger.DebugContext(ctx, "task executed",
		"task_id", p.taskID,
		"execution_id", executionID,
		"trigger", p.trigger,
		"duration", elapsed,
	)
	return nil
}

// recordFire appends to the execution history. Failures are logged and
// dropped; history is best effort and must not fail the execution.
func (x *Executor) recordFire(ctx context.Context, rec model.FireRecord) {
	if x.fires == nil {
		return
	}
	if err := x.fires.Record(ctx, rec); err != nil {
		x.logger.WarnContext(ctx, "record fire",
			"task_id", rec.TaskID,
			"execution_id", rec.ExecutionID,
			"error", err,
		)
	}
}

// notifyParams groups per-execution failure details to keep param count ≤3.
type notifyParams struct {
	executionID string
	started     time.Time
	elapsed     time.Duration
	err         error
}

func (x *Executor) notifyFailure(ctx context.Context, p runParams, n notifyParams) {
	if x.notifier == nil || !x.notifier.Enabled() {
		return
	}

	x.notifier.NotifyTaskFailure(ctx, notify.TaskFailurePayload{
		TaskID:      p.taskID,
		ExecutionID: n.executionID,
		Trigger:     string(p.trigger),
		ScheduleID:  p.scheduleID,
		Due:         p.due,
		Error:       n.err.Error(),
		ErrorClass:  obserrors.Classify(n.err),
		Duration:    n.elapsed,
		OccurredAt:  n.started,
	})
}
