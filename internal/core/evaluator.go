package core

import "context"

// Evaluator executes a task's payload. The payload language is opaque to the
// scheduler; implementations decide what the text means. Evaluate returns
// once execution has finished and must honor ctx cancellation.
type Evaluator interface {
	Evaluate(ctx context.Context, payload string) error
}
