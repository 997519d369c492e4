package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
)

// TaskFailurePayload captures the canonical data we emit for failed task
// executions.
type TaskFailurePayload struct {
	TaskID      string
	ExecutionID string
	Trigger     string
	ScheduleID  *int64
	Due         *time.Time
	Error       string
	ErrorClass  string
	Severity    string
	Duration    time.Duration
	OccurredAt  time.Time
	Metadata    map[string]string
}

// Sink describes a destination capable of consuming task failure notifications.
type Sink interface {
	SendTaskFailure(ctx context.Context, payload TaskFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload TaskFailurePayload) error

// SendTaskFailure implements the Sink interface.
func (f SinkFunc) SendTaskFailure(ctx context.Context, payload TaskFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
