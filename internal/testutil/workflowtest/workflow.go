// Package workflowtest provides an end-to-end harness for exercising the
// scheduler against live Postgres and Redis. Tasks enter through the service
// facade, the real engine fires them, and assertions read the fire log back.
package workflowtest

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/taskd/config"
	"github.com/target/taskd/internal/bootstrap"
	"github.com/target/taskd/internal/domain/model"
	"github.com/target/taskd/internal/service"
	"github.com/target/taskd/internal/testutil"
)

const pollInterval = 50 * time.Millisecond

// Harness owns a fully wired container over ephemeral test infrastructure.
// Construction skips the test when Postgres or Redis is unavailable.
type Harness struct {
	T      testutil.TestingTB
	DB     *sql.DB
	Redis  *redis.Client
	Config *config.AppConfig

	Container *bootstrap.Container
	Tasks     *service.TaskService
}

// DefaultConfig returns an AppConfig tuned for fast end-to-end runs: the log
// evaluator, a short fire delay, and the fire log enabled.
func DefaultConfig() *config.AppConfig {
	return &config.AppConfig{
		Scheduler: config.SchedulerConfig{
			AutoStart:        false,
			MinFireDelay:     50 * time.Millisecond,
			MaxTimerSleep:    time.Hour,
			RetryInterval:    time.Second,
			DefaultListLimit: 10,
			MaxListLimit:     100,
		},
		Evaluator: config.EvaluatorConfig{
			Mode:    config.EvaluatorModeLog,
			Timeout: 10 * time.Second,
		},
		Observability: config.ObservabilityConfig{
			FireLog: config.FireLogConfig{
				Enabled: true,
				Size:    100,
				TTL:     time.Hour,
			},
		},
	}
}

// NewHarness builds a container over an ephemeral schema and a flushed test
// Redis database. The engine starts when the first auto-start schedule lands.
func NewHarness(t testutil.TestingTB) *Harness {
	t.Helper()

	db := testutil.SetupEphemeralSchemaDB(t)
	client := testutil.SetupTestRedis(t)

	cfg := DefaultConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := bootstrap.NewContainer(&bootstrap.ContainerDeps{
		Config: cfg,
		DB:     db,
		Redis:  client,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("wire container: %v", err)
	}

	if tc, ok := any(t).(interface{ Cleanup(func()) }); ok {
		tc.Cleanup(container.Close)
	}

	return &Harness{
		T:         t,
		DB:        db,
		Redis:     client,
		Config:    cfg,
		Container: container,
		Tasks:     container.Tasks,
	}
}

// CreateDueTask creates a task whose first occurrence is imminent and lets the
// service start the engine. A nil repeats makes it a one-shot due shortly; a
// pattern schedules the first occurrence the pattern yields.
func (h *Harness) CreateDueTask(ctx context.Context, id string, repeats *string) *model.Task {
	h.T.Helper()

	builder := testutil.NewTaskRequest().
		WithID(id).
		WithPayload(`log.info:"workflow"`).
		WithAutoStart(true)
	if repeats != nil {
		builder.WithRepeats(*repeats)
	} else {
		builder.WithDue(time.Now().UTC().Add(200 * time.Millisecond))
	}

	task, err := h.Tasks.Create(ctx, *builder.Build())
	if err != nil {
		h.T.Fatalf("create task %s: %v", id, err)
	}
	return task
}

// CreateBareTask creates a task with no schedule so callers can drive manual
// executions.
func (h *Harness) CreateBareTask(ctx context.Context, id string) *model.Task {
	h.T.Helper()

	task, err := h.Tasks.Create(ctx, *testutil.PlainTaskRequest(id))
	if err != nil {
		h.T.Fatalf("create task %s: %v", id, err)
	}
	return task
}

// WaitForFire polls the fire log until a record for the task appears.
func (h *Harness) WaitForFire(ctx context.Context, taskID string, timeout time.Duration) model.FireRecord {
	h.T.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		fires, err := h.Tasks.RecentFires(ctx, 100)
		if err == nil {
			for _, fire := range fires {
				if fire.TaskID == taskID {
					return fire
				}
			}
		}
		time.Sleep(pollInterval)
	}

	h.T.Fatalf("no fire recorded for task %s within %s", taskID, timeout)
	return model.FireRecord{}
}

// Schedules returns the task's current schedules.
func (h *Harness) Schedules(ctx context.Context, taskID string) []model.Schedule {
	h.T.Helper()

	task, err := h.Tasks.Get(ctx, taskID, true)
	if err != nil {
		h.T.Fatalf("get task %s: %v", taskID, err)
	}
	return task.Schedules
}

// WaitForScheduleCount polls until the task holds the wanted number of
// schedules. One-shots disappear after firing; recurring tasks keep exactly
// one schedule whose due advances.
func (h *Harness) WaitForScheduleCount(ctx context.Context, taskID string, want int, timeout time.Duration) []model.Schedule {
	h.T.Helper()

	deadline := time.Now().Add(timeout)
	var schedules []model.Schedule
	for time.Now().Before(deadline) {
		schedules = h.Schedules(ctx, taskID)
		if len(schedules) == want {
			return schedules
		}
		time.Sleep(pollInterval)
	}

	h.T.Fatalf("task %s has %d schedules, want %d after %s", taskID, len(schedules), want, timeout)
	return nil
}

// WaitForFutureDue polls until the task's single schedule shows a due instant
// in the future, proving the engine advanced it after a fire.
func (h *Harness) WaitForFutureDue(ctx context.Context, taskID string, timeout time.Duration) model.Schedule {
	h.T.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		schedules := h.Schedules(ctx, taskID)
		if len(schedules) == 1 && schedules[0].Due.After(time.Now()) {
			return schedules[0]
		}
		time.Sleep(pollInterval)
	}

	h.T.Fatalf("task %s never showed a future due schedule within %s", taskID, timeout)
	return model.Schedule{}
}
