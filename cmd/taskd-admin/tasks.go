package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/taskd/internal/bootstrap"
	"github.com/target/taskd/internal/domain/model"
	"github.com/target/taskd/internal/util"
)

type createOptions struct {
	ID          string
	Payload     string
	PayloadFile string
	Description string
	Due         string
	In          time.Duration
	Repeats     string
	Timeout     time.Duration
}

type updateOptions struct {
	ID          string
	Payload     string
	PayloadFile string
	Description string
	Timeout     time.Duration

	HasPayload     bool
	HasDescription bool
}

type deleteOptions struct {
	ID      string
	Yes     bool
	Timeout time.Duration
}

type getOptions struct {
	ID      string
	RawJSON bool
	Timeout time.Duration
}

type listTasksOptions struct {
	Filter  string
	Limit   int
	Offset  int
	RawJSON bool
	Timeout time.Duration
}

type countOptions struct {
	Filter  string
	Timeout time.Duration
}

func runCreateTask(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateFlags(args)
	if err != nil {
		return err
	}

	req, err := buildCreateRequest(&opts)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, serviceOptions{Timeout: opts.Timeout}, func(ctx context.Context, c *bootstrap.Container) error {
		task, createErr := c.Tasks.Create(ctx, req)
		if createErr != nil {
			return createErr
		}
		return printCreatedTask(task)
	})
}

func buildCreateRequest(opts *createOptions) (model.CreateTaskRequest, error) {
	payload, err := resolvePayload(opts.Payload, opts.PayloadFile)
	if err != nil {
		return model.CreateTaskRequest{}, err
	}

	req := model.CreateTaskRequest{
		ID:      opts.ID,
		Payload: payload,
		// The daemon owns execution; it hears about new schedules over the
		// wake channel, so a CLI run never starts an engine of its own.
		AutoStart: boolPtr(false),
	}
	if opts.Description != "" {
		req.Description = &opts.Description
	}

	due, err := resolveDue(opts.Due, opts.In)
	if err != nil {
		return model.CreateTaskRequest{}, err
	}
	req.Due = due
	if opts.Repeats != "" {
		req.Repeats = &opts.Repeats
	}

	return req, nil
}

func printCreatedTask(task *model.Task) error {
	if err := writef(os.Stdout, "Created task %q (payload %d bytes)\n", task.ID, len(task.Payload)); err != nil {
		return fmt.Errorf("print create summary: %w", err)
	}
	for i := range task.Schedules {
		sched := &task.Schedules[i]
		if err := writef(
			os.Stdout,
			"  Schedule %d: due %s%s\n",
			sched.ID,
			formatTimestamp(sched.Due),
			repeatsSuffix(sched.Repeats),
		); err != nil {
			return fmt.Errorf("print create schedule: %w", err)
		}
	}
	return nil
}

func runUpdateTask(cmdCtx *commandContext, args []string) error {
	opts, err := parseUpdateFlags(args)
	if err != nil {
		return err
	}

	req := model.UpdateTaskRequest{}
	if opts.HasPayload {
		payload, payloadErr := resolvePayload(opts.Payload, opts.PayloadFile)
		if payloadErr != nil {
			return payloadErr
		}
		req.Payload = &payload
	}
	if opts.HasDescription {
		req.Description = &opts.Description
	}

	return withServices(cmdCtx, serviceOptions{Timeout: opts.Timeout}, func(ctx context.Context, c *bootstrap.Container) error {
		task, updateErr := c.Tasks.Update(ctx, opts.ID, req)
		if updateErr != nil {
			return updateErr
		}
		if err := writef(os.Stdout, "Updated task %q (payload %d bytes)\n", task.ID, len(task.Payload)); err != nil {
			return fmt.Errorf("print update summary: %w", err)
		}
		return nil
	})
}

func runDeleteTask(cmdCtx *commandContext, args []string) error {
	opts, err := parseDeleteFlags(args)
	if err != nil {
		return err
	}

	confirmOpts := deleteTaskConfirmOptions{
		yes:    opts.Yes,
		taskID: opts.ID,
	}
	if confirmErr := confirmAction(confirmOpts, "delete task"); confirmErr != nil {
		return confirmErr
	}

	return withServices(cmdCtx, serviceOptions{Timeout: opts.Timeout}, func(ctx context.Context, c *bootstrap.Container) error {
		if delErr := c.Tasks.Delete(ctx, opts.ID); delErr != nil {
			return delErr
		}
		if err := writef(os.Stdout, "Deleted task %q\n", opts.ID); err != nil {
			return fmt.Errorf("print delete summary: %w", err)
		}
		return nil
	})
}

func runGetTask(cmdCtx *commandContext, args []string) error {
	opts, err := parseGetFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, serviceOptions{Timeout: opts.Timeout}, func(ctx context.Context, c *bootstrap.Container) error {
		task, getErr := c.Tasks.Get(ctx, opts.ID, true)
		if getErr != nil {
			return getErr
		}
		if opts.RawJSON {
			return printJSON(task)
		}
		return printTaskDetail(task)
	})
}

func printTaskDetail(task *model.Task) error {
	if err := writef(os.Stdout, "Task:        %s\n", task.ID); err != nil {
		return fmt.Errorf("print task id: %w", err)
	}
	if err := writef(os.Stdout, "Description: %s\n", stringOrDash(task.Description)); err != nil {
		return fmt.Errorf("print task description: %w", err)
	}
	if err := writef(os.Stdout, "Created:     %s\n", formatTimestamp(task.Created)); err != nil {
		return fmt.Errorf("print task created: %w", err)
	}
	if err := writef(os.Stdout, "Payload:\n%s\n", indentPayload(task.Payload)); err != nil {
		return fmt.Errorf("print task payload: %w", err)
	}
	return printScheduleTable(task.Schedules)
}

func printScheduleTable(schedules []model.Schedule) error {
	if err := writef(os.Stdout, "\nSchedules:\n"); err != nil {
		return fmt.Errorf("print schedules header: %w", err)
	}
	if len(schedules) == 0 {
		if err := writeln(os.Stdout, "  (none)"); err != nil {
			return fmt.Errorf("print schedules empty message: %w", err)
		}
		return nil
	}

	now := time.Now().UTC()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "ID\tDUE (UTC)\tREPEATS\tFIRES"); err != nil {
		return fmt.Errorf("print schedules header row: %w", err)
	}
	for i := range schedules {
		sched := &schedules[i]
		if err := writef(
			tw,
			"%d\t%s\t%s\t%s\n",
			sched.ID,
			formatTimestamp(sched.Due),
			stringOrDash(sched.Repeats),
			util.FormatUntil(now, sched.Due),
		); err != nil {
			return fmt.Errorf("print schedules row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush schedules table: %w", err)
	}
	return nil
}

func runListTasks(cmdCtx *commandContext, args []string) error {
	opts, err := parseListFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, serviceOptions{Timeout: opts.Timeout}, func(ctx context.Context, c *bootstrap.Container) error {
		tasks, listErr := c.Tasks.List(ctx, model.TaskListOptions{
			Filter: opts.Filter,
			Offset: opts.Offset,
			Limit:  opts.Limit,
		})
		if listErr != nil {
			return listErr
		}
		if opts.RawJSON {
			return printJSON(tasks)
		}

		total, countErr := c.Tasks.Count(ctx, opts.Filter)
		if countErr != nil {
			return countErr
		}
		return printTaskList(tasks, total, &opts)
	})
}

func printTaskList(tasks []model.Task, total int64, opts *listTasksOptions) error {
	if err := writef(os.Stdout, "Tasks (limit %d, offset %d)\n", opts.Limit, opts.Offset); err != nil {
		return fmt.Errorf("print task list header: %w", err)
	}
	if len(tasks) == 0 {
		if err := writeln(os.Stdout, "  (no tasks found)"); err != nil {
			return fmt.Errorf("print task list empty message: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "ID\tCREATED (UTC)\tDESCRIPTION\tPAYLOAD"); err != nil {
		return fmt.Errorf("print task list header row: %w", err)
	}
	for i := range tasks {
		task := &tasks[i]
		if err := writef(
			tw,
			"%s\t%s\t%s\t%s\n",
			task.ID,
			formatTimestamp(task.Created),
			tableCell(stringOrDash(task.Description), 40),
			tableCell(task.Payload, 48),
		); err != nil {
			return fmt.Errorf("print task list row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush task list table: %w", err)
	}

	if err := writef(os.Stdout, "Total matching tasks: %d\n", total); err != nil {
		return fmt.Errorf("print task list total: %w", err)
	}
	if len(tasks) == opts.Limit && int64(opts.Offset+opts.Limit) < total {
		if err := writeln(os.Stdout, "More tasks available; adjust --offset or --limit to view additional rows."); err != nil {
			return fmt.Errorf("print task list more-rows message: %w", err)
		}
	}
	return nil
}

func runCountTasks(cmdCtx *commandContext, args []string) error {
	opts, err := parseCountFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, serviceOptions{Timeout: opts.Timeout}, func(ctx context.Context, c *bootstrap.Container) error {
		total, countErr := c.Tasks.Count(ctx, opts.Filter)
		if countErr != nil {
			return countErr
		}
		if err := writef(os.Stdout, "%d\n", total); err != nil {
			return fmt.Errorf("print task count: %w", err)
		}
		return nil
	})
}

func parseCreateFlags(args []string) (createOptions, error) {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := createOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.StringVar(&opts.ID, "id", "", "Task id (lowercase letters, digits, dots, underscores, hyphens)")
	fs.StringVar(&opts.Payload, "payload", "", "Inline payload for the evaluator (mutually exclusive with --payload-file)")
	fs.StringVar(&opts.PayloadFile, "payload-file", "", "Read the payload from a file; use - for stdin")
	fs.StringVar(&opts.Description, "description", "", "Optional human readable description")
	fs.StringVar(&opts.Due, "due", "", "One-shot due instant in RFC 3339, e.g. 2026-03-01T09:30:00Z")
	fs.DurationVar(&opts.In, "in", 0, "One-shot due offset from now, e.g. 30m or 2h")
	fs.StringVar(&opts.Repeats, "repeats", "", "Repetition pattern, e.g. 5.minutes, saturday.03.30.00 or **.1.06.00.00")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database operations")

	if err := fs.Parse(args); err != nil {
		return createOptions{}, err
	}

	normalizeCreateOptions(&opts)
	if err := validateCreateOptions(&opts); err != nil {
		return createOptions{}, err
	}

	return opts, nil
}

func normalizeCreateOptions(opts *createOptions) {
	opts.ID = strings.TrimSpace(opts.ID)
	opts.Description = strings.TrimSpace(opts.Description)
	opts.Due = strings.TrimSpace(opts.Due)
	opts.Repeats = strings.TrimSpace(opts.Repeats)
}

func validateCreateOptions(opts *createOptions) error {
	if opts.ID == "" {
		return errors.New("--id is required")
	}
	if opts.Payload == "" && opts.PayloadFile == "" {
		return errors.New("one of --payload or --payload-file is required")
	}
	if opts.Payload != "" && opts.PayloadFile != "" {
		return errors.New("--payload and --payload-file are mutually exclusive")
	}
	if err := validateDueFlags(opts.Due, opts.In, opts.Repeats); err != nil {
		return err
	}
	if opts.Timeout <= 0 {
		return errors.New("--timeout must be greater than zero")
	}
	return nil
}

func validateDueFlags(due string, in time.Duration, repeats string) error {
	if in < 0 {
		return errors.New("--in must be a positive duration")
	}
	set := 0
	if due != "" {
		set++
	}
	if in != 0 {
		set++
	}
	if repeats != "" {
		set++
	}
	if set > 1 {
		return errors.New("--due, --in, and --repeats are mutually exclusive")
	}
	return nil
}

func parseUpdateFlags(args []string) (updateOptions, error) {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := updateOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.StringVar(&opts.ID, "id", "", "Task id to update")
	fs.StringVar(&opts.Payload, "payload", "", "New inline payload (mutually exclusive with --payload-file)")
	fs.StringVar(&opts.PayloadFile, "payload-file", "", "Read the new payload from a file; use - for stdin")
	fs.StringVar(&opts.Description, "description", "", "New description; pass an empty string to clear it")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database operations")

	if err := fs.Parse(args); err != nil {
		return updateOptions{}, err
	}

	// flag cannot distinguish an absent flag from its zero value, so record
	// which ones the caller actually passed.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "payload", "payload-file":
			opts.HasPayload = true
		case "description":
			opts.HasDescription = true
		}
	})

	opts.ID = strings.TrimSpace(opts.ID)
	if err := validateUpdateOptions(&opts); err != nil {
		return updateOptions{}, err
	}

	return opts, nil
}

func validateUpdateOptions(opts *updateOptions) error {
	if opts.ID == "" {
		return errors.New("--id is required")
	}
	if !opts.HasPayload && !opts.HasDescription {
		return errors.New("at least one of --payload, --payload-file, or --description is required")
	}
	if opts.Payload != "" && opts.PayloadFile != "" {
		return errors.New("--payload and --payload-file are mutually exclusive")
	}
	if opts.Timeout <= 0 {
		return errors.New("--timeout must be greater than zero")
	}
	return nil
}

func parseDeleteFlags(args []string) (deleteOptions, error) {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := deleteOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.StringVar(&opts.ID, "id", "", "Task id to delete")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database operations")

	if err := fs.Parse(args); err != nil {
		return deleteOptions{}, err
	}

	opts.ID = strings.TrimSpace(opts.ID)
	if opts.ID == "" {
		return deleteOptions{}, errors.New("--id is required")
	}
	if opts.Timeout <= 0 {
		return deleteOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseGetFlags(args []string) (getOptions, error) {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := getOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.StringVar(&opts.ID, "id", "", "Task id to show")
	fs.BoolVar(&opts.RawJSON, "json", false, "Print the task as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database operations")

	if err := fs.Parse(args); err != nil {
		return getOptions{}, err
	}

	opts.ID = strings.TrimSpace(opts.ID)
	if opts.ID == "" {
		return getOptions{}, errors.New("--id is required")
	}
	if opts.Timeout <= 0 {
		return getOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseListFlags(args []string) (listTasksOptions, error) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := listTasksOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.StringVar(&opts.Filter, "filter", "", "Prefix filter on id and description")
	fs.IntVar(&opts.Limit, "limit", 20, "Maximum rows to display (capped at 100)")
	fs.IntVar(&opts.Offset, "offset", 0, "Offset into the result set")
	fs.BoolVar(&opts.RawJSON, "json", false, "Print the tasks as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database operations")

	if err := fs.Parse(args); err != nil {
		return listTasksOptions{}, err
	}

	opts.Filter = strings.TrimSpace(opts.Filter)
	if opts.Limit <= 0 {
		return listTasksOptions{}, errors.New("--limit must be greater than zero")
	}
	if opts.Offset < 0 {
		return listTasksOptions{}, errors.New("--offset must be >= 0")
	}
	if opts.Timeout <= 0 {
		return listTasksOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseCountFlags(args []string) (countOptions, error) {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := countOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.StringVar(&opts.Filter, "filter", "", "Prefix filter on id and description")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database operations")

	if err := fs.Parse(args); err != nil {
		return countOptions{}, err
	}

	opts.Filter = strings.TrimSpace(opts.Filter)
	if opts.Timeout <= 0 {
		return countOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func resolvePayload(inline, file string) (string, error) {
	if file == "" {
		return inline, nil
	}
	if file == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read payload from stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(file) // #nosec G304 -- the payload path is operator-provided CLI input
	if err != nil {
		return "", fmt.Errorf("read payload file: %w", err)
	}
	return string(b), nil
}

func resolveDue(raw string, in time.Duration) (*time.Time, error) {
	if in > 0 {
		t := time.Now().UTC().Add(in)
		return &t, nil
	}
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --due %q: expected RFC 3339, e.g. 2026-03-01T09:30:00Z", raw)
	}
	return &t, nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if err := writef(os.Stdout, "%s\n", b); err != nil {
		return fmt.Errorf("print json: %w", err)
	}
	return nil
}

func indentPayload(payload string) string {
	lines := strings.Split(payload, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

func repeatsSuffix(repeats *string) string {
	if repeats == nil || *repeats == "" {
		return ""
	}
	return fmt.Sprintf(", repeats %s", *repeats)
}

func stringOrDash(p *string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return "-"
	}
	return *p
}

// tableCell collapses whitespace so multi-line values stay on one table row,
// truncating long values to keep columns readable.
func tableCell(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if limit > 0 && len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func boolPtr(b bool) *bool { return &b }

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
