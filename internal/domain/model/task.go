//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTaskIDLen = 256
)

// taskIDPattern is the allowed character set for task ids: lowercase letters,
// digits, dot, dash, and underscore.
var taskIDPattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// ValidTaskID reports whether id is non-empty, within length bounds, and uses
// only the allowed character set. Ids are matched case-sensitively as stored.
func ValidTaskID(id string) bool {
	if id == "" || utf8.RuneCountInString(id) > maxTaskIDLen {
		return false
	}
	return taskIDPattern.MatchString(id)
}

// Task is a named, persisted record carrying an opaque payload to be evaluated.
type Task struct {
	ID          string    `json:"id"                    db:"id"`
	Payload     string    `json:"payload"               db:"hyperlambda"`
	Description *string   `json:"description,omitempty" db:"description"`
	Created     time.Time `json:"created"               db:"created"`

	// Schedules is populated only when a task is fetched with its schedules.
	Schedules []Schedule `json:"schedules,omitempty" db:"-"`
}

// Schedule associates a task with a future due instant and an optional
// recurrence pattern. A schedule without Repeats is one-shot.
type Schedule struct {
	ID      int64     `json:"id"                db:"id"`
	TaskID  string    `json:"task_id"           db:"task"`
	Due     time.Time `json:"due"               db:"due"`
	Repeats *string   `json:"repeats,omitempty" db:"repeats"`
}

// IsRecurring reports whether the schedule carries a repetition pattern.
func (s *Schedule) IsRecurring() bool {
	return s.Repeats != nil && *s.Repeats != ""
}

// CreateTaskRequest represents parameters to create a Task, optionally with an
// initial schedule.
type CreateTaskRequest struct {
	ID          string  `json:"id"`
	Payload     string  `json:"payload"`
	Description *string `json:"description,omitempty"`

	// Due and Repeats optionally attach an initial schedule; at most one may be
	// present.
	Due     *time.Time `json:"due,omitempty"`
	Repeats *string    `json:"repeats,omitempty"`

	// AutoStart controls whether creating a scheduled task ensures the engine is
	// running. Defaults to true when nil.
	AutoStart *bool `json:"auto_start,omitempty"`
}

// Validate validates CreateTaskRequest. Pattern syntax and due-in-future checks
// happen in the service layer, which owns the clock and the pattern parser.
func (r *CreateTaskRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("id is required")
	}
	if !ValidTaskID(r.ID) {
		return errors.New("id may only contain a-z, 0-9, '.', '-' and '_'")
	}
	if r.Payload == "" {
		return errors.New("payload is required and cannot be empty")
	}
	if r.Due != nil && r.Repeats != nil {
		return errors.New("due and repeats are mutually exclusive")
	}
	if r.Repeats != nil && strings.TrimSpace(*r.Repeats) == "" {
		return errors.New("repeats cannot be empty")
	}
	return nil
}

// WantsSchedule reports whether the create request bundles an initial schedule.
func (r *CreateTaskRequest) WantsSchedule() bool {
	return r.Due != nil || r.Repeats != nil
}

// ShouldAutoStart reports whether the engine should be started for a bundled
// schedule. Defaults to true unless explicitly disabled.
func (r *CreateTaskRequest) ShouldAutoStart() bool {
	return r.AutoStart == nil || *r.AutoStart
}

// UpdateTaskRequest represents parameters to update a Task. The id is
// immutable; only payload and description can change.
type UpdateTaskRequest struct {
	Payload     *string `json:"payload,omitempty"`
	Description *string `json:"description,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateTaskRequest.
func (r *UpdateTaskRequest) HasUpdates() bool {
	return r.Payload != nil || r.Description != nil
}

// Validate validates UpdateTaskRequest, ensuring at least one field is set and
// values are sane.
func (r *UpdateTaskRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Payload != nil && *r.Payload == "" {
		return errors.New("payload cannot be empty")
	}
	return nil
}

// ScheduleTaskRequest represents parameters to attach a schedule to a task.
// Exactly one of Due or Repeats must be present.
type ScheduleTaskRequest struct {
	TaskID  string     `json:"task_id"`
	Due     *time.Time `json:"due,omitempty"`
	Repeats *string    `json:"repeats,omitempty"`
}

// Validate validates ScheduleTaskRequest.
func (r *ScheduleTaskRequest) Validate() error {
	if strings.TrimSpace(r.TaskID) == "" {
		return errors.New("task_id is required")
	}
	if r.Due == nil && r.Repeats == nil {
		return errors.New("either due or repeats is required")
	}
	if r.Due != nil && r.Repeats != nil {
		return errors.New("due and repeats are mutually exclusive")
	}
	if r.Repeats != nil && strings.TrimSpace(*r.Repeats) == "" {
		return errors.New("repeats cannot be empty")
	}
	return nil
}

// TaskListOptions controls paging and filtering for listing tasks.
// Filter is a prefix match against id or description. Results are ordered by
// creation time ascending with id as tie-break.
type TaskListOptions struct {
	Filter string
	Offset int
	Limit  int
}
