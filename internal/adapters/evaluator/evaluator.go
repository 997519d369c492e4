// Package evaluator provides core.Evaluator implementations. The scheduler
// treats task payloads as opaque strings; the adapters in this package decide
// what evaluating one actually means.
package evaluator

import (
	"fmt"
	"log/slog"

	"github.com/target/taskd/config"
	"github.com/target/taskd/internal/core"
)

// FromConfig builds the evaluator selected by cfg.Mode.
func FromConfig(cfg config.EvaluatorConfig, logger *slog.Logger) (core.Evaluator, error) {
	switch cfg.Mode {
	case config.EvaluatorModeExec:
		eval, err := NewExecEvaluator(ExecEvaluatorOptions{
			Command: cfg.Command,
			Args:    cfg.Args,
			Timeout: cfg.Timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("exec evaluator: %w", err)
		}
		return eval, nil
	default:
		return NewLogEvaluator(LogEvaluatorOptions{Logger: logger}), nil
	}
}

// preview truncates a payload for logging so large scripts do not flood logs.
func preview(s string) string {
	const maxLen = 120
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
