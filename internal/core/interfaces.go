// Package core defines the contracts between the task service, the scheduler
// engine and the back-ends that persist and evaluate tasks.
package core

import (
	"context"
	"time"

	"github.com/target/taskd/internal/domain/model"
)

// This file contains the storage interface definitions (ports in hexagonal
// architecture). The engine and the task service depend on these contracts,
// not on the Postgres implementation in internal/data.

// CreateTaskParams groups the persisted fields of a new task. Scheduling
// fields bundled with a public create request are the service layer's
// concern, not the store's.
type CreateTaskParams struct {
	ID          string
	Payload     string
	Description *string
}

// ScheduleParams groups parameters for TaskStore.Schedule to keep param count ≤3.
type ScheduleParams struct {
	TaskID  string
	Due     time.Time
	Repeats *string
}

// ScheduleQueue is the engine-facing slice of the store: the earliest due
// row plus the two dispositions a fire can have.
type ScheduleQueue interface {
	// NextDue returns the schedule with the earliest due instant, or nil when
	// no schedules exist. Ties on due break by ascending schedule id.
	NextDue(ctx context.Context) (*model.Schedule, error)

	// AdvanceSchedule moves a recurring schedule forward to its next due
	// instant after a fire.
	AdvanceSchedule(ctx context.Context, scheduleID int64, due time.Time) error

	// DeleteSchedule removes a schedule: one-shot disposition after a fire,
	// or a recurring schedule whose pattern no longer yields a future instant.
	DeleteSchedule(ctx context.Context, scheduleID int64) error
}

// TaskStore defines the interface for task and schedule persistence.
type TaskStore interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*model.Task, error)
	UpdateTask(ctx context.Context, id string, req model.UpdateTaskRequest) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string, includeSchedules bool) (*model.Task, error)
	ListTasks(ctx context.Context, opts model.TaskListOptions) ([]model.Task, error)
	CountTasks(ctx context.Context, filter string) (int64, error)

	Schedule(ctx context.Context, params ScheduleParams) (*model.Schedule, error)
	Unschedule(ctx context.Context, scheduleID int64) error
	ListSchedules(ctx context.Context, taskID string) ([]model.Schedule, error)

	ScheduleQueue
}

// ScheduleWaker blocks until another process signals that the schedule set
// changed. The daemon uses it to re-arm its timer when an external tool, such
// as the admin CLI, writes schedules to the same database.
type ScheduleWaker interface {
	WaitForScheduleChange(ctx context.Context) error
}
