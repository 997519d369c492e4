// Package testutil provides testing utilities and helpers for the taskd scheduler.
package testutil

import (
	"fmt"
	"time"

	"github.com/target/taskd/internal/domain/model"
)

// TaskRequestBuilder provides a fluent interface for building CreateTaskRequest objects for testing.
type TaskRequestBuilder struct {
	req *model.CreateTaskRequest
}

// NewTaskRequest creates a new TaskRequestBuilder with sensible defaults.
func NewTaskRequest() *TaskRequestBuilder {
	return &TaskRequestBuilder{
		req: &model.CreateTaskRequest{
			ID:      fmt.Sprintf("task-%d", time.Now().UnixNano()),
			Payload: `log.info:"hello from test"`,
		},
	}
}

// WithID sets the task id.
func (b *TaskRequestBuilder) WithID(id string) *TaskRequestBuilder {
	b.req.ID = id
	return b
}

// WithPayload sets the task payload.
func (b *TaskRequestBuilder) WithPayload(payload string) *TaskRequestBuilder {
	b.req.Payload = payload
	return b
}

// WithDescription sets the task description.
func (b *TaskRequestBuilder) WithDescription(description string) *TaskRequestBuilder {
	b.req.Description = &description
	return b
}

// WithDue sets the bundled one-shot due instant.
func (b *TaskRequestBuilder) WithDue(due time.Time) *TaskRequestBuilder {
	b.req.Due = &due
	return b
}

// WithRepeats sets the bundled repetition pattern.
func (b *TaskRequestBuilder) WithRepeats(repeats string) *TaskRequestBuilder {
	b.req.Repeats = &repeats
	return b
}

// WithAutoStart sets the auto-start flag.
func (b *TaskRequestBuilder) WithAutoStart(autoStart bool) *TaskRequestBuilder {
	b.req.AutoStart = &autoStart
	return b
}

// Build returns the constructed CreateTaskRequest.
func (b *TaskRequestBuilder) Build() *model.CreateTaskRequest {
	return b.req
}

// Common test task request presets

// PlainTaskRequest creates a task request without any schedule.
func PlainTaskRequest(id string) *model.CreateTaskRequest {
	return NewTaskRequest().WithID(id).Build()
}

// OneShotTaskRequest creates a task request bundled with a one-shot due.
func OneShotTaskRequest(id string, due time.Time) *model.CreateTaskRequest {
	return NewTaskRequest().WithID(id).WithDue(due).Build()
}

// RecurringTaskRequest creates a task request bundled with a repetition pattern.
func RecurringTaskRequest(id, repeats string) *model.CreateTaskRequest {
	return NewTaskRequest().WithID(id).WithRepeats(repeats).Build()
}
