//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// FireTrigger identifies what caused a task execution.
type FireTrigger string

const (
	// FireTriggerScheduled marks executions dispatched by the engine timer.
	FireTriggerScheduled FireTrigger = "scheduled"
	// FireTriggerManual marks executions requested directly by a caller.
	FireTriggerManual FireTrigger = "manual"
)

// FireOutcome is the terminal state of a task execution.
type FireOutcome string

const (
	FireOutcomeSuccess FireOutcome = "success"
	FireOutcomeError   FireOutcome = "error"
)

// FireRecord captures one task execution for the operator-facing fire log.
type FireRecord struct {
	ExecutionID string        `json:"execution_id"`
	TaskID      string        `json:"task_id"`
	ScheduleID  *int64        `json:"schedule_id,omitempty"`
	Trigger     FireTrigger   `json:"trigger"`
	Due         *time.Time    `json:"due,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Outcome     FireOutcome   `json:"outcome"`
	Error       string        `json:"error,omitempty"`
}
