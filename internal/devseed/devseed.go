// Package devseed seeds demo tasks and schedules for local development.
package devseed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/taskd/internal/domain/model"
	apperrors "github.com/target/taskd/internal/errors"
	"github.com/target/taskd/internal/service"
)

// Run seeds demo tasks through the service layer so the same validation and
// re-arm paths run as in production. Existing tasks are left alone, making
// reseeding safe.
func Run(ctx context.Context, tasks *service.TaskService, logger *slog.Logger) error {
	failures := seedTasks(ctx, tasks, logger)
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func seedTasks(ctx context.Context, svc *service.TaskService, logger *slog.Logger) int {
	failures := 0
	for _, req := range demoTasks() {
		created, err := createTask(ctx, svc, req)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create task", "task_id", req.ID, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			msg := "task already exists"
			if created {
				msg = "created task"
			}
			logger.InfoContext(ctx, msg, "task_id", req.ID)
		}
	}
	return failures
}

func createTask(ctx context.Context, svc *service.TaskService, req model.CreateTaskRequest) (bool, error) {
	if _, err := svc.Create(ctx, req); err != nil {
		if apperrors.IsConflict(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// demoTasks covers each schedule shape plus a deliberately failing payload for
// exercising the failure path. Seeded tasks never auto-start this process's
// engine; the daemon hears about the new rows over the wake channel.
func demoTasks() []model.CreateTaskRequest {
	welcomeDue := time.Now().UTC().Add(5 * time.Minute)
	noStart := false

	return []model.CreateTaskRequest{
		{
			ID:          "demo.heartbeat",
			Payload:     `log.info:"heartbeat"`,
			Description: strPtr("Logs a heartbeat every minute"),
			Repeats:     strPtr("1.minutes"),
			AutoStart:   &noStart,
		},
		{
			ID:          "demo.hourly-report",
			Payload:     `log.info:"hourly report generated"`,
			Description: strPtr("Pretends to build a report every hour"),
			Repeats:     strPtr("1.hours"),
			AutoStart:   &noStart,
		},
		{
			ID:          "demo.weekly-cleanup",
			Payload:     `log.info:"weekly cleanup pass"`,
			Description: strPtr("Runs Saturday mornings"),
			Repeats:     strPtr("saturday.03.30.00"),
			AutoStart:   &noStart,
		},
		{
			ID:          "demo.monthly-invoice",
			Payload:     `log.info:"invoices generated"`,
			Description: strPtr("Runs on the first of every month"),
			Repeats:     strPtr("**.1.06.00.00"),
			AutoStart:   &noStart,
		},
		{
			ID:          "demo.welcome",
			Payload:     `log.info:"welcome to taskd"`,
			Description: strPtr("One-shot a few minutes after seeding"),
			Due:         &welcomeDue,
			AutoStart:   &noStart,
		},
		{
			ID:          "demo.flaky",
			Payload:     "fail: seeded failure demo",
			Description: strPtr("Fails on purpose to exercise the fire log and notifications"),
			Repeats:     strPtr("30.minutes"),
			AutoStart:   &noStart,
		},
	}
}

func strPtr(s string) *string { return &s }
