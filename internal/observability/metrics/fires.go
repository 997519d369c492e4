package metrics

import (
	"time"

	obserrors "github.com/target/taskd/internal/observability/errors"
	"github.com/target/taskd/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// FireMetric captures details about a single task execution for metric
// emission.
type FireMetric struct {
	Trigger  string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitTaskFire emits standardised task execution metrics.
func EmitTaskFire(sink statsd.Sink, in FireMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"trigger": in.Trigger,
		"result":  in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("task.fire", 1, tags)

	if in.Duration > 0 {
		sink.Timing("task.fire.duration", in.Duration, CloneTags(tags))
	}
}

// EmitNextDueGauge reports how far in the future the next schedule entry sits.
// Negative values mean the scheduler is behind.
func EmitNextDueGauge(sink statsd.Sink, until time.Duration) {
	if sink == nil {
		return
	}
	sink.Gauge("scheduler.next_due_seconds", until.Seconds(), nil)
}

// EmitSchedulerWake counts scheduler timer wakeups by reason.
func EmitSchedulerWake(sink statsd.Sink, reason string) {
	if sink == nil {
		return
	}
	sink.Count("scheduler.wake", 1, map[string]string{"reason": reason})
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
