package main

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/target/taskd/internal/domain/model"
)

func captureStdout(t *testing.T, f func() error) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer func() {
		os.Stdout = oldStdout
	}()

	os.Stdout = w
	runErr := f()
	require.NoError(t, w.Close())
	os.Stdout = oldStdout

	require.NoError(t, runErr)

	output, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	return string(output)
}

func TestPrintRecentFiresRendersOutcomes(t *testing.T) {
	scheduleID := int64(7)
	due := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	fires := []model.FireRecord{
		{
			ExecutionID: "0c9eab2e-3adf-4f0e-a2f6-3e5b6f3f7f01",
			TaskID:      "report.hourly",
			ScheduleID:  &scheduleID,
			Trigger:     model.FireTriggerScheduled,
			Due:         &due,
			StartedAt:   due.Add(50 * time.Millisecond),
			Duration:    1200 * time.Millisecond,
			Outcome:     model.FireOutcomeSuccess,
		},
		{
			ExecutionID: "a3f1d6c0-5d71-4f3a-9f57-0b7a9e2f1c44",
			TaskID:      "backup.nightly",
			Trigger:     model.FireTriggerManual,
			StartedAt:   due.Add(time.Minute),
			Duration:    30 * time.Millisecond,
			Outcome:     model.FireOutcomeError,
			Error:       "interpreter failed (exit 1): disk full",
		},
	}

	out := captureStdout(t, func() error {
		return printRecentFires(fires, 20)
	})

	require.Contains(t, out, "report.hourly")
	require.Contains(t, out, "backup.nightly")
	require.Contains(t, out, "scheduled")
	require.Contains(t, out, "manual")
	require.Contains(t, out, "success")
	require.Contains(t, out, "disk full")
	require.Contains(t, out, "1.2s")
}

func TestPrintRecentFiresEmpty(t *testing.T) {
	out := captureStdout(t, func() error {
		return printRecentFires(nil, 20)
	})

	require.Contains(t, out, "(no fires recorded)")
}

func TestPrintTaskDetailIncludesSchedules(t *testing.T) {
	repeats := "2.hours"
	description := "hourly report rollup"
	due := time.Now().UTC().Add(100 * time.Minute)
	task := &model.Task{
		ID:          "report.hourly",
		Payload:     "log.info:\"rollup\"",
		Description: &description,
		Created:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Schedules: []model.Schedule{
			{ID: 7, TaskID: "report.hourly", Due: due, Repeats: &repeats},
		},
	}

	out := captureStdout(t, func() error {
		return printTaskDetail(task)
	})

	require.Contains(t, out, "Task:        report.hourly")
	require.Contains(t, out, "hourly report rollup")
	require.Contains(t, out, "Schedules:")
	require.Contains(t, out, "2.hours")
	require.Contains(t, out, formatTimestamp(due))
	require.Contains(t, out, "in 1h")
}

func TestPrintTaskDetailWithoutSchedules(t *testing.T) {
	task := &model.Task{
		ID:      "adhoc.cleanup",
		Payload: "log.info:\"cleanup\"",
		Created: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	out := captureStdout(t, func() error {
		return printTaskDetail(task)
	})

	require.Contains(t, out, "Description: -")
	require.Contains(t, out, "(none)")
}

func TestIsLikelyRemoteHost(t *testing.T) {
	cases := []struct {
		host   string
		remote bool
	}{
		{"localhost", false},
		{"127.0.0.1", false},
		{"::1", false},
		{"devbox.local", false},
		{"", false},
		{"10.12.0.4", true},
		{"db.example.com", true},
	}

	for _, tc := range cases {
		require.Equal(t, tc.remote, isLikelyRemoteHost(tc.host), "host %q", tc.host)
	}
}

func TestParseCreateFlagsValidation(t *testing.T) {
	_, err := parseCreateFlags([]string{"--payload", "x"})
	require.ErrorContains(t, err, "--id is required")

	_, err = parseCreateFlags([]string{"--id", "a.b"})
	require.ErrorContains(t, err, "--payload or --payload-file")

	_, err = parseCreateFlags([]string{
		"--id", "a.b",
		"--payload", "x",
		"--due", "2026-03-01T09:30:00Z",
		"--repeats", "2.hours",
	})
	require.ErrorContains(t, err, "mutually exclusive")
}

func TestParseUpdateFlagsRequiresAField(t *testing.T) {
	_, err := parseUpdateFlags([]string{"--id", "a.b"})
	require.ErrorContains(t, err, "at least one of")

	opts, err := parseUpdateFlags([]string{"--id", "a.b", "--description", ""})
	require.NoError(t, err)
	require.True(t, opts.HasDescription)
	require.False(t, opts.HasPayload)
}

func TestResolveDue(t *testing.T) {
	due, err := resolveDue("2026-03-01T09:30:00Z", 0)
	require.NoError(t, err)
	require.NotNil(t, due)
	require.Equal(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), due.UTC())

	_, err = resolveDue("next tuesday", 0)
	require.ErrorContains(t, err, "RFC 3339")

	due, err = resolveDue("", 30*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, due)
	require.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), *due, 5*time.Second)

	due, err = resolveDue("", 0)
	require.NoError(t, err)
	require.Nil(t, due)
}
