package storage

import (
	"context"

	"github.com/absmach/fldash/pkg/fl"
)

type SnapshotRepository interface {
	// Save replaces the snapshot stored for s.ModelID.
	Save(ctx context.Context, s fl.Snapshot) error
	Get(ctx context.Context, modelID string) (fl.Snapshot, error)
	List(ctx context.Context, offset, limit uint64) ([]fl.Snapshot, uint64, error)
}

type TrainingRepository interface {
	// Save inserts or replaces a training.
	Save(ctx context.Context, t fl.Training) error
	Get(ctx context.Context, id string) (fl.Training, error)
	List(ctx context.Context, offset, limit uint64) ([]fl.Training, uint64, error)
	Delete(ctx context.Context, id string) error
}
