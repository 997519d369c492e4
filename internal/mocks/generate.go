// Package mocks provides mock implementations for testing the task scheduler.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our storage and
// execution interfaces. The mocks are generated using go:generate directives and provide a
// fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockTaskStore(ctrl)
//	store.EXPECT().GetTask(gomock.Any(), "backup.nightly", false).Return(task, nil)
package mocks

// Generate mock for TaskStore interface from internal/core package.
// This creates MockTaskStore with methods for all TaskStore interface methods:
// CreateTask, UpdateTask, DeleteTask, GetTask, ListTasks, CountTasks,
// Schedule, Unschedule, ListSchedules, NextDue, AdvanceSchedule, DeleteSchedule
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=task_store_mock.go github.com/target/taskd/internal/core TaskStore

// Generate mock for Evaluator interface from internal/core package.
// This creates MockEvaluator with methods for all Evaluator interface methods:
// Evaluate
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=evaluator_mock.go github.com/target/taskd/internal/core Evaluator

// Generate mock for FireRecorder interface from internal/core package.
// This creates MockFireRecorder with methods for all FireRecorder interface methods:
// Record, Recent
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=fire_recorder_mock.go github.com/target/taskd/internal/core FireRecorder
