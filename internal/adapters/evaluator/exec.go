package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ExecEvaluatorOptions configures an ExecEvaluator.
type ExecEvaluatorOptions struct {
	// Command is the interpreter binary; the payload is piped to its stdin.
	Command string

	// Args are extra arguments passed to Command.
	Args []string

	// Timeout bounds a single evaluation. Zero means no timeout.
	Timeout time.Duration

	Logger *slog.Logger
}

// ExecEvaluator runs payloads through an interpreter subprocess. Each
// evaluation gets its own timeout so a hung interpreter cannot wedge the
// scheduler's fire loop.
type ExecEvaluator struct {
	command string
	args    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecEvaluator constructs an ExecEvaluator.
func NewExecEvaluator(opts ExecEvaluatorOptions) (*ExecEvaluator, error) {
	command := strings.TrimSpace(opts.Command)
	if command == "" {
		return nil, errors.New("interpreter command is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ExecEvaluator{
		command: command,
		args:    opts.Args,
		timeout: opts.Timeout,
		logger:  logger.With("component", "exec_evaluator"),
	}, nil
}

// Evaluate pipes the payload to the interpreter's stdin and waits for it to
// exit. A non-zero exit reports the interpreter's stderr; a timeout kills the
// process.
func (e *ExecEvaluator) Evaluate(ctx context.Context, payload string) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	// #nosec G204 -- the interpreter command is operator-configured, not user input
	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Stdin = strings.NewReader(payload)

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("interpreter timed out after %s", e.timeout)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if stderr == "" {
				stderr = "no stderr output"
			}
			return fmt.Errorf("interpreter failed (exit %d): %s", exitErr.ExitCode(), stderr)
		}
		return fmt.Errorf("run interpreter: %w", err)
	}

	if out := strings.TrimSpace(string(output)); out != "" {
		e.logger.DebugContext(ctx, "interpreter output", "output", preview(out))
	}
	return nil
}
