package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrTaskNotFound is returned when a task is not found.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskIDExists is returned when creating a task with a duplicate id.
	ErrTaskIDExists = errors.New("task id already exists")
	// ErrScheduleNotFound is returned when a schedule is not found.
	ErrScheduleNotFound = errors.New("schedule not found")
)
