// Package service provides business logic services for the task scheduler.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/taskd/config"
	"github.com/target/taskd/internal/core"
	"github.com/target/taskd/internal/data"
	"github.com/target/taskd/internal/domain/model"
	"github.com/target/taskd/internal/domain/pattern"
	apperrors "github.com/target/taskd/internal/errors"
	"github.com/target/taskd/internal/scheduler"
)

// ErrFireLogDisabled is returned when execution history is requested but no
// fire recorder is configured.
var ErrFireLogDisabled = errors.New("fire log is not enabled")

// TaskServiceOptions holds the dependencies for creating a TaskService.
type TaskServiceOptions struct {
	Store    core.TaskStore
	Engine   *scheduler.Engine
	Executor *scheduler.Executor

	Config       *config.SchedulerConfig
	TimeProvider data.TimeProvider
	Fires        core.FireRecorder // Optional: execution history
	Logger       *slog.Logger
}

// TaskService is the public facade over the store, the engine and the
// executor. Every mutator runs under the engine mutex so schedule writes and
// the re-arm they require are atomic with respect to fires.
type TaskService struct {
	store        core.TaskStore
	engine       *scheduler.Engine
	executor     *scheduler.Executor
	cfg          config.SchedulerConfig
	timeProvider data.TimeProvider
	fires        core.FireRecorder
	logger       *slog.Logger
}

// NewTaskService constructs a new TaskService with validation.
func NewTaskService(opts TaskServiceOptions) (*TaskService, error) {
	if opts.Store == nil {
		return nil, errors.New("TaskStore is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("scheduler engine is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("executor is required")
	}

	cfg := config.DefaultSchedulerConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = data.SystemTimeProvider{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "task_service")
	}

	return &TaskService{
		store:        opts.Store,
		engine:       opts.Engine,
		executor:     opts.Executor,
		cfg:          cfg,
		timeProvider: opts.TimeProvider,
		fires:        opts.Fires,
		logger:       logger,
	}, nil
}

// MustNewTaskService constructs a new TaskService and panics on error.
func MustNewTaskService(opts TaskServiceOptions) *TaskService {
	svc, err := NewTaskService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return svc
}

// Create persists a new task, optionally with an initial schedule bundled in
// the request. When a schedule is attached and auto-start is not explicitly
// disabled, the engine is started so the schedule will actually fire.
func (s *TaskService) Create(ctx context.Context, req model.CreateTaskRequest) (*model.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	// Resolve the bundled schedule up front so a bad pattern or past due
	// never leaves a half-created task behind.
	var params *core.ScheduleParams
	if req.WantsSchedule() {
		p, err := s.resolveSchedule(req.ID, req.Due, req.Repeats)
		if err != nil {
			return nil, err
		}
		params = &p
	}

	var task *model.Task
	err := s.engine.Locked(ctx, func(ctx context.Context) error {
		created, err := s.store.CreateTask(ctx, core.CreateTaskParams{
			ID:          req.ID,
			Payload:     req.Payload,
			Description: req.Description,
		})
		if err != nil {
			return s.mapStoreError(err, "create task")
		}
		task = created

		if params != nil {
			sched, err := s.store.Schedule(ctx, *params)
			if err != nil {
				return s.mapStoreError(err, "schedule task")
			}
			task.Schedules = []model.Schedule{*sched}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if params != nil && req.ShouldAutoStart() {
		s.engine.Start(ctx)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "task created",
			"task_id", task.ID,
			"scheduled", params != nil,
		)
	}
	return task, nil
}

// Update changes a task's payload or description. The id is immutable and
// schedules are unaffected.
func (s *TaskService) Update(ctx context.Context, id string, req model.UpdateTaskRequest) (*model.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var task *model.Task
	err := s.engine.Locked(ctx, func(ctx context.Context) error {
		updated, err := s.store.UpdateTask(ctx, id, req)
		if err != nil {
			return s.mapStoreError(err, "update task")
		}
		task = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task and, through the store's cascade, all its schedules.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	err := s.engine.Locked(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteTask(ctx, id); err != nil {
			return s.mapStoreError(err, "delete task")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "task deleted", "task_id", id)
	}
	return nil
}

// Get returns a task by id, optionally with its schedules attached.
func (s *TaskService) Get(ctx context.Context, id string, includeSchedules bool) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, id, includeSchedules)
	if err != nil {
		return nil, s.mapStoreError(err, "get task")
	}
	return task, nil
}

// List returns a page of tasks. A zero limit falls back to the configured
// default; limits above the configured maximum are clamped.
func (s *TaskService) List(ctx context.Context, opts model.TaskListOptions) ([]model.Task, error) {
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.Limit <= 0 {
		opts.Limit = s.cfg.DefaultListLimit
	}
	if opts.Limit > s.cfg.MaxListLimit {
		opts.Limit = s.cfg.MaxListLimit
	}

	tasks, err := s.store.ListTasks(ctx, opts)
	if err != nil {
		return nil, s.mapStoreError(err, "list tasks")
	}
	return tasks, nil
}

// Count returns the number of tasks matching the filter, ignoring paging.
func (s *TaskService) Count(ctx context.Context, filter string) (int64, error) {
	count, err := s.store.CountTasks(ctx, filter)
	if err != nil {
		return 0, s.mapStoreError(err, "count tasks")
	}
	return count, nil
}

// Schedule attaches a due date or a repetition pattern to an existing task
// and ensures the engine is running so it will fire.
func (s *TaskService) Schedule(ctx context.Context, req model.ScheduleTaskRequest) (*model.Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	params, err := s.resolveSchedule(req.TaskID, req.Due, req.Repeats)
	if err != nil {
		return nil, err
	}

	var sched *model.Schedule
	err = s.engine.Locked(ctx, func(ctx context.Context) error {
		created, err := s.store.Schedule(ctx, params)
		if err != nil {
			return s.mapStoreError(err, "schedule task")
		}
		sched = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.engine.Start(ctx)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "task scheduled",
			"task_id", sched.TaskID,
			"schedule_id", sched.ID,
			"due", sched.Due,
			"recurring", sched.IsRecurring(),
		)
	}
	return sched, nil
}

// Unschedule removes a single schedule without touching its task.
func (s *TaskService) Unschedule(ctx context.Context, scheduleID int64) error {
	err := s.engine.Locked(ctx, func(ctx context.Context) error {
		if err := s.store.Unschedule(ctx, scheduleID); err != nil {
			return s.mapStoreError(err, "unschedule")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "schedule removed", "schedule_id", scheduleID)
	}
	return nil
}

// Execute runs a task's payload immediately, bypassing the scheduler.
// Evaluation failures are surfaced to the caller. The call serializes with
// fires, so it may block while a scheduled execution is in progress.
func (s *TaskService) Execute(ctx context.Context, taskID string) error {
	if !model.ValidTaskID(taskID) {
		return apperrors.ValidationField("id", "invalid task id")
	}

	err := s.engine.Locked(ctx, func(ctx context.Context) error {
		return s.executor.Execute(ctx, taskID)
	})
	if err != nil {
		if errors.Is(err, data.ErrTaskNotFound) {
			return apperrors.Wrapf(err, apperrors.ErrCodeNotFound, "task %q not found", taskID)
		}
		return apperrors.Evaluationf(err, "execute task %q", taskID)
	}
	return nil
}

// Start begins firing due schedules. Idempotent.
func (s *TaskService) Start(ctx context.Context) {
	s.engine.Start(ctx)
}

// Stop halts firing without touching durable state. Idempotent.
func (s *TaskService) Stop() {
	s.engine.Stop()
}

// NextDue returns the due instant of the next schedule to fire, or nil when
// the engine is stopped or no schedules exist.
func (s *TaskService) NextDue(ctx context.Context) (*time.Time, error) {
	next, err := s.engine.NextDue(ctx)
	if err != nil {
		return nil, s.mapStoreError(err, "next due")
	}
	return next, nil
}

// Running reports whether the engine is firing schedules.
func (s *TaskService) Running() bool {
	return s.engine.Running()
}

// RecentFires returns up to limit records from the execution history, most
// recent first. Returns ErrFireLogDisabled when no recorder is configured.
func (s *TaskService) RecentFires(ctx context.Context, limit int) ([]model.FireRecord, error) {
	if s.fires == nil {
		return nil, ErrFireLogDisabled
	}
	records, err := s.fires.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "read fire log")
	}
	return records, nil
}

// resolveSchedule turns a due date or repetition pattern into store
// parameters. An explicit due must sit in the future; a pattern is parsed,
// stored in canonical form, and seeded with its first occurrence.
func (s *TaskService) resolveSchedule(taskID string, due *time.Time, repeats *string) (core.ScheduleParams, error) {
	now := s.timeProvider.Now().UTC()

	if due != nil {
		d := due.UTC()
		if !d.After(now) {
			return core.ScheduleParams{}, apperrors.ValidationField("due", "due must be in the future")
		}
		return core.ScheduleParams{TaskID: taskID, Due: d}, nil
	}

	pat, err := pattern.Parse(*repeats)
	if err != nil {
		return core.ScheduleParams{}, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "invalid repetition pattern %q", *repeats)
	}

	next := pat.Next(now)
	if next.IsZero() {
		return core.ScheduleParams{}, apperrors.ValidationField("repeats", "pattern yields no future occurrence")
	}

	canonical := pat.Value()
	return core.ScheduleParams{TaskID: taskID, Due: next, Repeats: &canonical}, nil
}

// mapStoreError converts store sentinels into coded application errors,
// keeping the original error in the chain for errors.Is checks.
func (s *TaskService) mapStoreError(err error, op string) error {
	switch {
	case errors.Is(err, data.ErrTaskNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "task not found")
	case errors.Is(err, data.ErrTaskIDExists):
		return apperrors.Wrap(err, apperrors.ErrCodeConflict, "a task with this id already exists")
	case errors.Is(err, data.ErrScheduleNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "schedule not found")
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, op)
	}
}
