package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/taskd/internal/bootstrap"
	"github.com/target/taskd/internal/data"
	"github.com/target/taskd/internal/domain/model"
	"github.com/target/taskd/internal/service"
	"github.com/target/taskd/internal/util"
)

const defaultExecuteTimeout = 2 * time.Minute

type scheduleOptions struct {
	ID      string
	Due     string
	In      time.Duration
	Repeats string
	Timeout time.Duration
}

type unscheduleOptions struct {
	ScheduleID int64
	Timeout    time.Duration
}

type executeOptions struct {
	ID      string
	Timeout time.Duration
}

type dueOptions struct {
	RawJSON bool
	Timeout time.Duration
}

type recentFiresOptions struct {
	Limit   int
	RawJSON bool
	Timeout time.Duration
}

func runScheduleTask(cmdCtx *commandContext, args []string) error {
	opts, err := parseScheduleFlags(args)
	if err != nil {
		return err
	}

	req := model.ScheduleTaskRequest{TaskID: opts.ID}
	due, err := resolveDue(opts.Due, opts.In)
	if err != nil {
		return err
	}
	req.Due = due
	if opts.Repeats != "" {
		req.Repeats = &opts.Repeats
	}

	return withServices(cmdCtx, serviceOptions{Timeout: opts.Timeout}, func(ctx context.Context, c *bootstrap.Container) error {
		sched, schedErr := c.Tasks.Schedule(ctx, req)
		if schedErr != nil {
			return schedErr
		}
		if err := writef(
			os.Stdout,
			"Scheduled task %q: schedule %d due %s%s\n",
			sched.TaskID,
			sched.ID,
			formatTimestamp(sched.Due),
			repeatsSuffix(sched.Repeats),
		); err != nil {
			return fmt.Errorf("print schedule summary: %w", err)
		}
		return nil
	})
}

func runUnscheduleTask(cmdCtx *commandContext, args []string) error {
	opts, err := parseUnscheduleFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, serviceOptions{Timeout: opts.Timeout}, func(ctx context.Context, c *bootstrap.Container) error {
		if unschedErr := c.Tasks.Unschedule(ctx, opts.ScheduleID); unschedErr != nil {
			return unschedErr
		}
		if err := writef(os.Stdout, "Removed schedule %d\n", opts.ScheduleID); err != nil {
			return fmt.Errorf("print unschedule summary: %w", err)
		}
		return nil
	})
}

func runExecuteTask(cmdCtx *commandContext, args []string) error {
	opts, err := parseExecuteFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, serviceOptions{Timeout: opts.Timeout}, func(ctx context.Context, c *bootstrap.Container) error {
		started := time.Now()
		if execErr := c.Tasks.Execute(ctx, opts.ID); execErr != nil {
			return execErr
		}
		if err := writef(
			os.Stdout,
			"Task %q evaluated successfully in %s\n",
			opts.ID,
			util.FormatDuration(time.Since(started)),
		); err != nil {
			return fmt.Errorf("print execute summary: %w", err)
		}
		return nil
	})
}

// runNextDue reads the queue head straight from the store: the facade's
// next-due view reflects this process's engine, which a CLI run never starts.
func runNextDue(cmdCtx *commandContext, args []string) error {
	opts, err := parseDueFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		sched, dueErr := data.NewTaskRepo(db).NextDue(ctx)
		if dueErr != nil {
			return fmt.Errorf("query next due schedule: %w", dueErr)
		}
		if sched == nil {
			if err := writeln(os.Stdout, "No schedules are queued."); err != nil {
				return fmt.Errorf("print due empty message: %w", err)
			}
			return nil
		}
		if opts.RawJSON {
			return printJSON(sched)
		}
		return printNextDue(sched)
	})
}

func printNextDue(sched *model.Schedule) error {
	now := time.Now().UTC()
	if err := writef(os.Stdout, "Next due schedule:\n"); err != nil {
		return fmt.Errorf("print due header: %w", err)
	}
	if err := writef(os.Stdout, "  Task:     %s\n", sched.TaskID); err != nil {
		return fmt.Errorf("print due task: %w", err)
	}
	if err := writef(os.Stdout, "  Schedule: %d\n", sched.ID); err != nil {
		return fmt.Errorf("print due schedule id: %w", err)
	}
	if err := writef(
		os.Stdout,
		"  Due:      %s (%s)\n",
		formatTimestamp(sched.Due),
		util.FormatUntil(now, sched.Due),
	); err != nil {
		return fmt.Errorf("print due instant: %w", err)
	}
	if err := writef(os.Stdout, "  Repeats:  %s\n", stringOrDash(sched.Repeats)); err != nil {
		return fmt.Errorf("print due repeats: %w", err)
	}
	return nil
}

func runRecentFires(cmdCtx *commandContext, args []string) error {
	opts, err := parseRecentFiresFlags(args)
	if err != nil {
		return err
	}

	svcOpts := serviceOptions{Timeout: opts.Timeout, WantRedis: true}
	return withServices(cmdCtx, svcOpts, func(ctx context.Context, c *bootstrap.Container) error {
		fires, firesErr := c.Tasks.RecentFires(ctx, opts.Limit)
		if errors.Is(firesErr, service.ErrFireLogDisabled) {
			if err := writeln(os.Stderr, "Fire log is not available; enable it and connect Redis to record executions."); err != nil {
				return fmt.Errorf("print fire log availability: %w", err)
			}
			return nil
		}
		if firesErr != nil {
			return firesErr
		}
		if opts.RawJSON {
			return printJSON(fires)
		}
		return printRecentFires(fires, opts.Limit)
	})
}

func printRecentFires(fires []model.FireRecord, limit int) error {
	if err := writef(os.Stdout, "Recent fires (showing up to %d, newest first)\n", limit); err != nil {
		return fmt.Errorf("print fires header: %w", err)
	}
	if len(fires) == 0 {
		if err := writeln(os.Stdout, "  (no fires recorded)"); err != nil {
			return fmt.Errorf("print fires empty message: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "STARTED (UTC)\tTASK\tTRIGGER\tOUTCOME\tDURATION\tERROR"); err != nil {
		return fmt.Errorf("print fires header row: %w", err)
	}
	for i := range fires {
		fire := &fires[i]
		if err := writef(
			tw,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			formatTimestamp(fire.StartedAt),
			fire.TaskID,
			fire.Trigger,
			fire.Outcome,
			util.FormatDuration(fire.Duration),
			tableCell(fire.Error, 60),
		); err != nil {
			return fmt.Errorf("print fires row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush fires table: %w", err)
	}
	return nil
}

func parseScheduleFlags(args []string) (scheduleOptions, error) {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := scheduleOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.StringVar(&opts.ID, "id", "", "Task id to schedule")
	fs.StringVar(&opts.Due, "due", "", "One-shot due instant in RFC 3339, e.g. 2026-03-01T09:30:00Z")
	fs.DurationVar(&opts.In, "in", 0, "One-shot due offset from now, e.g. 30m or 2h")
	fs.StringVar(&opts.Repeats, "repeats", "", "Repetition pattern, e.g. 5.minutes, saturday.03.30.00 or **.1.06.00.00")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database operations")

	if err := fs.Parse(args); err != nil {
		return scheduleOptions{}, err
	}

	opts.ID = strings.TrimSpace(opts.ID)
	opts.Due = strings.TrimSpace(opts.Due)
	opts.Repeats = strings.TrimSpace(opts.Repeats)
	if err := validateScheduleOptions(&opts); err != nil {
		return scheduleOptions{}, err
	}

	return opts, nil
}

func validateScheduleOptions(opts *scheduleOptions) error {
	if opts.ID == "" {
		return errors.New("--id is required")
	}
	if opts.Due == "" && opts.In == 0 && opts.Repeats == "" {
		return errors.New("one of --due, --in, or --repeats is required")
	}
	if err := validateDueFlags(opts.Due, opts.In, opts.Repeats); err != nil {
		return err
	}
	if opts.Timeout <= 0 {
		return errors.New("--timeout must be greater than zero")
	}
	return nil
}

func parseUnscheduleFlags(args []string) (unscheduleOptions, error) {
	fs := flag.NewFlagSet("unschedule", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := unscheduleOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.Int64Var(&opts.ScheduleID, "schedule-id", 0, "Schedule id to remove (see the get command)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database operations")

	if err := fs.Parse(args); err != nil {
		return unscheduleOptions{}, err
	}

	if opts.ScheduleID <= 0 {
		return unscheduleOptions{}, errors.New("--schedule-id must be greater than zero")
	}
	if opts.Timeout <= 0 {
		return unscheduleOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseExecuteFlags(args []string) (executeOptions, error) {
	fs := flag.NewFlagSet("execute", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := executeOptions{
		Timeout: defaultExecuteTimeout,
	}

	fs.StringVar(&opts.ID, "id", "", "Task id to evaluate")
	fs.DurationVar(&opts.Timeout, "timeout", defaultExecuteTimeout, "Timeout covering the database read and the evaluation")

	if err := fs.Parse(args); err != nil {
		return executeOptions{}, err
	}

	opts.ID = strings.TrimSpace(opts.ID)
	if opts.ID == "" {
		return executeOptions{}, errors.New("--id is required")
	}
	if opts.Timeout <= 0 {
		return executeOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseDueFlags(args []string) (dueOptions, error) {
	fs := flag.NewFlagSet("due", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dueOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.BoolVar(&opts.RawJSON, "json", false, "Print the schedule as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database operations")

	if err := fs.Parse(args); err != nil {
		return dueOptions{}, err
	}

	if opts.Timeout <= 0 {
		return dueOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseRecentFiresFlags(args []string) (recentFiresOptions, error) {
	fs := flag.NewFlagSet("recent-fires", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := recentFiresOptions{
		Limit:   20,
		Timeout: defaultCommandTimeout,
	}

	fs.IntVar(&opts.Limit, "limit", opts.Limit, "Maximum fires to display")
	fs.BoolVar(&opts.RawJSON, "json", false, "Print the fire records as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Timeout for database and Redis operations")

	if err := fs.Parse(args); err != nil {
		return recentFiresOptions{}, err
	}

	if opts.Limit <= 0 {
		return recentFiresOptions{}, errors.New("--limit must be greater than zero")
	}
	if opts.Timeout <= 0 {
		return recentFiresOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}
