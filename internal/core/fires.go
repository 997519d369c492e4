package core

import (
	"context"

	"github.com/target/taskd/internal/domain/model"
)

// FireRecorder keeps a bounded, most-recent-first history of task
// executions. Recording is best effort; a failed write must never block or
// fail the execution it describes.
type FireRecorder interface {
	Record(ctx context.Context, fire model.FireRecord) error
	Recent(ctx context.Context, limit int) ([]model.FireRecord, error)
}
