package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/target/taskd/internal/core"
	"github.com/target/taskd/internal/data/pgxutil"
	"github.com/target/taskd/internal/domain/model"
)

// scheduleWakeChannel carries pg_notify signals for schedule mutations so a
// running daemon can re-arm when another process writes to the same database.
const scheduleWakeChannel = "task_due_changed"

// TaskRepo provides database operations for tasks and their schedules.
type TaskRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewTaskRepo creates a TaskRepo reading the system clock.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{DB: db, timeProvider: SystemTimeProvider{}}
}

// CreateTask inserts a new task.
func (r *TaskRepo) CreateTask(ctx context.Context, params core.CreateTaskParams) (*model.Task, error) {
	if params.ID == "" {
		return nil, errors.New("task id is required")
	}

	created := r.timeProvider.Now().UTC()
	var out model.Task
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO tasks (id, hyperlambda, description, created)
			VALUES ($1, $2, $3, $4)
			RETURNING `+taskColumns,
			params.ID,
			params.Payload,
			params.Description,
			created,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Task])
		return err
	}); err != nil {
		return nil, r.mapTaskWriteErr(err, false)
	}
	normalizeTask(&out)
	return &out, nil
}

// UpdateTask updates the payload and/or description of a task.
func (r *TaskRepo) UpdateTask(ctx context.Context, id string, req model.UpdateTaskRequest) (*model.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Task
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		query := taskGetQuery
		if setClause != "" {
			args = append(args, id)
			query = "UPDATE tasks SET " + setClause +
				" WHERE id = $" + strconv.Itoa(len(args)) +
				" RETURNING " + taskColumns
		} else {
			args = []any{id}
		}
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Task])
		return e
	})
	if err != nil {
		return nil, r.mapTaskWriteErr(err, true)
	}
	normalizeTask(&out)
	return &out, nil
}

// buildUpdateClause builds the SQL SET clause and args for updating a task based on the request.
func (r *TaskRepo) buildUpdateClause(req model.UpdateTaskRequest) (string, []any) {
	setParts := make([]string, 0, 2)
	args := make([]any, 0, 3)
	nextIdx := func() int { return len(args) + 1 }

	if req.Payload != nil {
		setParts = append(setParts, fmt.Sprintf("hyperlambda = $%d", nextIdx()))
		args = append(args, *req.Payload)
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			setParts = append(setParts, "description = NULL")
		} else {
			setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
			args = append(args, *req.Description)
		}
	}

	if len(setParts) == 0 {
		return "", nil
	}
	return strings.Join(setParts, ", "), args
}

// DeleteTask deletes a task; its schedules go with it via ON DELETE CASCADE.
func (r *TaskRepo) DeleteTask(ctx context.Context, id string) error {
	var rows int64
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		if rows > 0 {
			return notifyScheduleChange(ctx, tx, id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if rows == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// GetTask retrieves a task by id, optionally with all of its schedules.
func (r *TaskRepo) GetTask(ctx context.Context, id string, includeSchedules bool) (*model.Task, error) {
	var task model.Task
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, taskGetQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		task, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Task])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	normalizeTask(&task)

	if includeSchedules {
		schedules, err := r.ListSchedules(ctx, id)
		if err != nil {
			return nil, err
		}
		task.Schedules = schedules
	}
	return &task, nil
}

// ListTasks retrieves tasks with pagination and an optional prefix filter
// matching the id or the description.
func (r *TaskRepo) ListTasks(ctx context.Context, opts model.TaskListOptions) ([]model.Task, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query := taskListQuery
	args := []any{limit, offset}
	if opts.Filter != "" {
		query = taskListFilteredQuery
		args = []any{likePrefix(opts.Filter), limit, offset}
	}

	var rowsOut []model.Task
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Task])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	for i := range rowsOut {
		normalizeTask(&rowsOut[i])
	}
	return rowsOut, nil
}

// CountTasks counts tasks matching the optional prefix filter. The count
// ignores pagination.
func (r *TaskRepo) CountTasks(ctx context.Context, filter string) (int64, error) {
	query := taskCountQuery
	args := []any{}
	if filter != "" {
		query = taskCountFilteredQuery
		args = []any{likePrefix(filter)}
	}

	var count int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// Schedule inserts a new schedule row for a task.
func (r *TaskRepo) Schedule(ctx context.Context, params core.ScheduleParams) (*model.Schedule, error) {
	var out model.Schedule
	if err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO task_due (task, due, repeats)
			VALUES ($1, $2, $3)
			RETURNING `+scheduleColumns,
			params.TaskID,
			params.Due.UTC(),
			params.Repeats,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Schedule])
		rows.Close()
		if err != nil {
			return err
		}
		return notifyScheduleChange(ctx, tx, params.TaskID)
	}); err != nil {
		return nil, r.mapScheduleWriteErr(err)
	}
	normalizeSchedule(&out)
	return &out, nil
}

// Unschedule removes a schedule by id without touching its task.
func (r *TaskRepo) Unschedule(ctx context.Context, scheduleID int64) error {
	return r.DeleteSchedule(ctx, scheduleID)
}

// ListSchedules retrieves all schedules of a task, earliest due first.
func (r *TaskRepo) ListSchedules(ctx context.Context, taskID string) ([]model.Schedule, error) {
	var rowsOut []model.Schedule
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, scheduleListQuery, taskID)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Schedule])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	for i := range rowsOut {
		normalizeSchedule(&rowsOut[i])
	}
	return rowsOut, nil
}

// NextDue returns the earliest due schedule, or nil when none exist.
func (r *TaskRepo) NextDue(ctx context.Context) (*model.Schedule, error) {
	var out model.Schedule
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, scheduleNextDueQuery)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Schedule])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get next due schedule: %w", err)
	}
	normalizeSchedule(&out)
	return &out, nil
}

// AdvanceSchedule moves a schedule to a new due instant.
func (r *TaskRepo) AdvanceSchedule(ctx context.Context, scheduleID int64, due time.Time) error {
	var rows int64
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `UPDATE task_due SET due = $1 WHERE id = $2`, due.UTC(), scheduleID)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		if rows > 0 {
			return notifyScheduleChange(ctx, tx, strconv.FormatInt(scheduleID, 10))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to advance schedule: %w", err)
	}
	if rows == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// DeleteSchedule removes a schedule by id.
func (r *TaskRepo) DeleteSchedule(ctx context.Context, scheduleID int64) error {
	var rows int64
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM task_due WHERE id = $1`, scheduleID)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		if rows > 0 {
			return notifyScheduleChange(ctx, tx, strconv.FormatInt(scheduleID, 10))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if rows == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// WaitForScheduleChange blocks until another session signals a schedule
// mutation, or ctx is done.
func (r *TaskRepo) WaitForScheduleChange(ctx context.Context) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			_ = cerr
		}
	}()

	quoted := pgx.Identifier{scheduleWakeChannel}.Sanitize()

	if _, execErr := conn.ExecContext(ctx, "LISTEN "+quoted); execErr != nil {
		return fmt.Errorf("listen %s: %w", scheduleWakeChannel, execErr)
	}
	defer func() {
		if _, execErr := conn.ExecContext(context.Background(), "UNLISTEN "+quoted); execErr != nil {
			_ = execErr
		}
	}()

	return conn.Raw(func(dc any) error {
		sc, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		_, notifyErr := sc.Conn().WaitForNotification(ctx)
		return notifyErr
	})
}

// --- helpers ---

// notifyScheduleChange signals listeners on the wake channel from within the
// mutating transaction, so the signal is only sent if the write commits.
func notifyScheduleChange(ctx context.Context, tx pgx.Tx, payload string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1::text, $2::text)`, scheduleWakeChannel, payload); err != nil {
		return fmt.Errorf("send schedule notification: %w", err)
	}
	return nil
}

// likePrefix escapes LIKE metacharacters and appends the trailing wildcard
// for prefix matching.
func likePrefix(filter string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(filter)
	return escaped + "%"
}

// normalizeTask forces timestamps into UTC regardless of the session
// timezone the driver scanned them in.
func normalizeTask(t *model.Task) {
	t.Created = t.Created.UTC()
	for i := range t.Schedules {
		normalizeSchedule(&t.Schedules[i])
	}
}

func normalizeSchedule(s *model.Schedule) {
	s.Due = s.Due.UTC()
}

func (r *TaskRepo) mapTaskWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrTaskNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrTaskIDExists
	}
	return err
}

func (r *TaskRepo) mapScheduleWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrScheduleNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return ErrTaskNotFound
	}
	return err
}

// SQL query constants for static queries (no dynamic WHERE/ORDER BY).
const (
	taskColumns     = `id, hyperlambda, description, created`
	scheduleColumns = `id, task, due, repeats`

	taskGetQuery = `
		SELECT id, hyperlambda, description, created
		FROM tasks
		WHERE id = $1`

	taskListQuery = `
		SELECT id, hyperlambda, description, created
		FROM tasks
		ORDER BY created ASC, id ASC
		LIMIT $1 OFFSET $2`

	taskListFilteredQuery = `
		SELECT id, hyperlambda, description, created
		FROM tasks
		WHERE id LIKE $1 OR description LIKE $1
		ORDER BY created ASC, id ASC
		LIMIT $2 OFFSET $3`

	taskCountQuery = `SELECT count(*) FROM tasks`

	taskCountFilteredQuery = `
		SELECT count(*)
		FROM tasks
		WHERE id LIKE $1 OR description LIKE $1`

	scheduleListQuery = `
		SELECT id, task, due, repeats
		FROM task_due
		WHERE task = $1
		ORDER BY due ASC, id ASC`

	scheduleNextDueQuery = `
		SELECT id, task, due, repeats
		FROM task_due
		ORDER BY due ASC, id ASC
		LIMIT 1`
)
