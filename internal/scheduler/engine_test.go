package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/taskd/config"
	"github.com/target/taskd/internal/data"
	"github.com/target/taskd/internal/domain/model"
	"github.com/target/taskd/internal/scheduler"
	"github.com/target/taskd/internal/testutil"
)

// memoryQueue is an in-memory schedule queue with scripted NextDue failures.
type memoryQueue struct {
	mu          sync.Mutex
	nextID      int64
	schedules   map[int64]*model.Schedule
	nextDueErrs []error
	deleted     []int64
	advanced    []int64
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{schedules: make(map[int64]*model.Schedule)}
}

func (q *memoryQueue) add(taskID string, due time.Time, repeats *string) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.schedules[q.nextID] = &model.Schedule{
		ID:      q.nextID,
		TaskID:  taskID,
		Due:     due.UTC(),
		Repeats: repeats,
	}
	return q.nextID
}

func (q *memoryQueue) remove(scheduleID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.schedules, scheduleID)
}

func (q *memoryQueue) NextDue(_ context.Context) (*model.Schedule, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.nextDueErrs) > 0 {
		err := q.nextDueErrs[0]
		q.nextDueErrs = q.nextDueErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	var next *model.Schedule
	for _, s := range q.schedules {
		if next == nil || s.Due.Before(next.Due) || (s.Due.Equal(next.Due) && s.ID < next.ID) {
			next = s
		}
	}
	if next == nil {
		return nil, nil
	}
	found := *next
	return &found, nil
}

func (q *memoryQueue) AdvanceSchedule(_ context.Context, scheduleID int64, due time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.schedules[scheduleID]
	if !ok {
		return data.ErrScheduleNotFound
	}
	s.Due = due.UTC()
	q.advanced = append(q.advanced, scheduleID)
	return nil
}

func (q *memoryQueue) DeleteSchedule(_ context.Context, scheduleID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.schedules[scheduleID]; !ok {
		return data.ErrScheduleNotFound
	}
	delete(q.schedules, scheduleID)
	q.deleted = append(q.deleted, scheduleID)
	return nil
}

func (q *memoryQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.schedules)
}

func (q *memoryQueue) dueOf(scheduleID int64) (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.schedules[scheduleID]
	if !ok {
		return time.Time{}, false
	}
	return s.Due, true
}

// captureExecutor records every dispatched schedule.
type captureExecutor struct {
	mu    sync.Mutex
	err   error
	fires []model.Schedule
}

func (x *captureExecutor) ExecuteScheduled(_ context.Context, sched *model.Schedule) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.fires = append(x.fires, *sched)
	return x.err
}

func (x *captureExecutor) count() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.fires)
}

func (x *captureExecutor) taskIDs() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	ids := make([]string, 0, len(x.fires))
	for _, f := range x.fires {
		ids = append(ids, f.TaskID)
	}
	return ids
}

func testEngineConfig() *config.SchedulerConfig {
	cfg := config.DefaultSchedulerConfig()
	cfg.MinFireDelay = 20 * time.Millisecond
	cfg.RetryInterval = 50 * time.Millisecond
	return &cfg
}

func newTestEngine(t *testing.T, queue *memoryQueue, exec *captureExecutor) *scheduler.Engine {
	t.Helper()
	return scheduler.NewEngine(scheduler.EngineOptions{
		Store:    queue,
		Executor: exec,
		Config:   testEngineConfig(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestEngineRequiresDependencies(t *testing.T) {
	assert.Panics(t, func() {
		scheduler.NewEngine(scheduler.EngineOptions{Executor: &captureExecutor{}})
	})
	assert.Panics(t, func() {
		scheduler.NewEngine(scheduler.EngineOptions{Store: newMemoryQueue()})
	})
}

func TestEngineFiresOneShot(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	queue.add("one-shot", time.Now().Add(100*time.Millisecond), nil)

	engine := newTestEngine(t, queue, exec)
	engine.Start(context.Background())
	defer engine.Stop()

	require.Eventually(t, func() bool {
		return exec.count() == 1 && queue.size() == 0
	}, 3*time.Second, 10*time.Millisecond, "one-shot should fire once and be deleted")

	assert.Equal(t, []string{"one-shot"}, exec.taskIDs())
	assert.True(t, engine.Running())
}

func TestEngineFiresRecurring(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	id := queue.add("recurring", time.Now(), testutil.StringPtr("1.seconds"))

	engine := newTestEngine(t, queue, exec)
	engine.Start(context.Background())
	defer engine.Stop()

	require.Eventually(t, func() bool {
		return exec.count() >= 2
	}, 3*time.Second, 10*time.Millisecond, "recurring schedule should fire repeatedly")

	due, ok := queue.dueOf(id)
	require.True(t, ok, "recurring schedule should survive its fires")
	assert.True(t, due.After(time.Now().Add(-time.Second)), "due should have advanced")
}

func TestEngineCatchUpOnStart(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	queue.add("overdue", time.Now().Add(-time.Hour), nil)

	engine := newTestEngine(t, queue, exec)
	start := time.Now()
	engine.Start(context.Background())
	defer engine.Stop()

	require.Eventually(t, func() bool {
		return exec.count() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "overdue row should fire shortly after start")
}

func TestEngineFiresInDueOrder(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	due := time.Now().Add(-time.Minute)
	queue.add("first", due, nil)
	queue.add("second", due, nil)
	queue.add("third", due.Add(time.Second), nil)

	engine := newTestEngine(t, queue, exec)
	engine.Start(context.Background())
	defer engine.Stop()

	require.Eventually(t, func() bool {
		return exec.count() == 3
	}, 3*time.Second, 10*time.Millisecond)

	// Same due fires in id order; later due fires last.
	assert.Equal(t, []string{"first", "second", "third"}, exec.taskIDs())
}

func TestEngineStopPreventsFires(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	queue.add("pending", time.Now().Add(60*time.Millisecond), nil)

	engine := newTestEngine(t, queue, exec)
	engine.Start(context.Background())
	engine.Stop()

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, exec.count(), "no fires after stop")
	assert.Equal(t, 1, queue.size(), "durable state unchanged after stop")
	assert.False(t, engine.Running())
}

func TestEngineStartStopIdempotent(t *testing.T) {
	queue := newMemoryQueue()
	engine := newTestEngine(t, queue, &captureExecutor{})

	ctx := context.Background()
	assert.False(t, engine.Running())
	engine.Start(ctx)
	engine.Start(ctx)
	assert.True(t, engine.Running())
	engine.Stop()
	engine.Stop()
	assert.False(t, engine.Running())
}

func TestEngineDeleteCancelsFire(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	id := queue.add("doomed", time.Now().Add(150*time.Millisecond), nil)

	engine := newTestEngine(t, queue, exec)
	ctx := context.Background()
	engine.Start(ctx)
	defer engine.Stop()

	err := engine.Locked(ctx, func(context.Context) error {
		queue.remove(id)
		return nil
	})
	require.NoError(t, err)

	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, exec.count(), "deleted schedule must not fire")
}

func TestEngineRearmPrefersEarlierSchedule(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	queue.add("later", time.Now().Add(10*time.Second), nil)

	engine := newTestEngine(t, queue, exec)
	ctx := context.Background()
	engine.Start(ctx)
	defer engine.Stop()

	err := engine.Locked(ctx, func(context.Context) error {
		queue.add("sooner", time.Now().Add(80*time.Millisecond), nil)
		return nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return exec.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"sooner"}, exec.taskIDs())
}

func TestEngineNextDueAccessor(t *testing.T) {
	queue := newMemoryQueue()
	due := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	queue.add("future", due, nil)

	engine := newTestEngine(t, queue, &captureExecutor{})
	ctx := context.Background()

	next, err := engine.NextDue(ctx)
	require.NoError(t, err)
	assert.Nil(t, next, "stopped engine reports no next due")

	engine.Start(ctx)
	defer engine.Stop()

	next, err = engine.NextDue(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, due.Equal(*next))
}

func TestEngineRetriesAfterStoreError(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	queue.add("flaky", time.Now().Add(-time.Second), nil)
	queue.mu.Lock()
	queue.nextDueErrs = []error{errors.New("connection reset")}
	queue.mu.Unlock()

	engine := newTestEngine(t, queue, exec)
	engine.Start(context.Background())
	defer engine.Stop()

	require.Eventually(t, func() bool {
		return exec.count() == 1
	}, 2*time.Second, 10*time.Millisecond, "engine should recover after a store error")
}

func TestEngineEvaluatorErrorStillSettles(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{err: errors.New("payload exploded")}
	id := queue.add("failing", time.Now(), testutil.StringPtr("1.seconds"))

	engine := newTestEngine(t, queue, exec)
	engine.Start(context.Background())
	defer engine.Stop()

	require.Eventually(t, func() bool {
		return exec.count() >= 2
	}, 3*time.Second, 10*time.Millisecond, "execution failures must not stall the engine")

	_, ok := queue.dueOf(id)
	assert.True(t, ok, "recurring schedule advances even when execution fails")
}

func TestEngineDropsUnparseablePattern(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	queue.add("corrupt", time.Now().Add(-time.Second), testutil.StringPtr("every.full.moon"))

	engine := newTestEngine(t, queue, exec)
	engine.Start(context.Background())
	defer engine.Stop()

	require.Eventually(t, func() bool {
		return exec.count() == 1 && queue.size() == 0
	}, 2*time.Second, 10*time.Millisecond, "unparseable pattern fires once, then the schedule is dropped")
}

func TestEngineLongSleepRefresh(t *testing.T) {
	queue := newMemoryQueue()
	exec := &captureExecutor{}
	queue.add("far", time.Now().Add(300*time.Millisecond), nil)

	cfg := testEngineConfig()
	// Force the timer cap below the due distance so the engine has to take
	// several capped sleeps before the row is eligible.
	cfg.MaxTimerSleep = 50 * time.Millisecond

	engine := scheduler.NewEngine(scheduler.EngineOptions{
		Store:    queue,
		Executor: exec,
		Config:   cfg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	engine.Start(context.Background())
	defer engine.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, exec.count(), "capped wake-ups before the due must not fire")

	require.Eventually(t, func() bool {
		return exec.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}
