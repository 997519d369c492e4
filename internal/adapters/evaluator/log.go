package evaluator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// failDirective marks payloads that simulate an evaluation failure.
const failDirective = "fail:"

// LogEvaluatorOptions configures a LogEvaluator.
type LogEvaluatorOptions struct {
	Logger *slog.Logger

	// Delay simulates payload execution time.
	Delay time.Duration
}

// LogEvaluator logs payloads instead of executing them; it is the development
// default. Payloads prefixed with "fail:" return the remainder as an error so
// the failure path (fire log, notifications) can be exercised without a real
// interpreter.
type LogEvaluator struct {
	logger *slog.Logger
	delay  time.Duration
}

// NewLogEvaluator constructs a LogEvaluator.
func NewLogEvaluator(opts LogEvaluatorOptions) *LogEvaluator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEvaluator{
		logger: logger.With("component", "log_evaluator"),
		delay:  opts.Delay,
	}
}

// Evaluate logs the payload after the configured delay. It honors context
// cancellation during the delay.
func (e *LogEvaluator) Evaluate(ctx context.Context, payload string) error {
	if e.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.delay):
		}
	}

	if rest, ok := strings.CutPrefix(strings.TrimSpace(payload), failDirective); ok {
		msg := strings.TrimSpace(rest)
		if msg == "" {
			msg = "payload requested failure"
		}
		return errors.New(msg)
	}

	e.logger.InfoContext(ctx, "payload evaluated",
		"payload", preview(payload),
		"bytes", len(payload),
	)
	return nil
}
