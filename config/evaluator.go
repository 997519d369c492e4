package config

import (
	"strings"
	"time"
)

// EvaluatorMode selects which evaluator adapter executes task payloads.
type EvaluatorMode string

const (
	// EvaluatorModeLog logs payloads instead of executing them (development default).
	EvaluatorModeLog EvaluatorMode = "log"
	// EvaluatorModeExec pipes payloads to an interpreter subprocess.
	EvaluatorModeExec EvaluatorMode = "exec"
)

// EvaluatorConfig contains task payload evaluator configuration.
// The engine itself imposes no per-task timeout; the exec evaluator
// enforces its own via Timeout.
type EvaluatorConfig struct {
	// Mode selects the evaluator adapter: log or exec.
	Mode EvaluatorMode `env:"MODE" envDefault:"log"`

	// Command is the interpreter binary for exec mode. The payload is piped to
	// its stdin.
	Command string `env:"COMMAND" envDefault:"/bin/sh"`

	// Args are extra arguments passed to Command before the payload is piped in.
	Args []string `env:"ARGS" envDefault:""`

	// Timeout bounds a single payload execution in exec mode.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// Sanitize applies guardrails to evaluator configuration values.
func (e *EvaluatorConfig) Sanitize() {
	switch EvaluatorMode(strings.ToLower(string(e.Mode))) {
	case EvaluatorModeExec:
		e.Mode = EvaluatorModeExec
	default:
		e.Mode = EvaluatorModeLog
	}

	e.Command = strings.TrimSpace(e.Command)
	if e.Command == "" {
		e.Command = "/bin/sh"
	}
	if e.Timeout < time.Second {
		e.Timeout = time.Second
	}
}
