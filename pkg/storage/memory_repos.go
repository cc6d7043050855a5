package storage

import (
	"context"
	"errors"

	pkgerrors "github.com/absmach/fldash/pkg/errors"
	"github.com/absmach/fldash/pkg/fl"
)

type memorySnapshotRepo struct {
	storage Storage
}

func newMemorySnapshotRepository(s Storage) SnapshotRepository {
	return &memorySnapshotRepo{storage: s}
}

func (r *memorySnapshotRepo) Save(ctx context.Context, s fl.Snapshot) error {
	return upsert(ctx, r.storage, s.ModelID, s)
}

func (r *memorySnapshotRepo) Get(ctx context.Context, modelID string) (fl.Snapshot, error) {
	data, err := r.storage.Get(ctx, modelID)
	if err != nil {
		return fl.Snapshot{}, err
	}
	s, ok := data.(fl.Snapshot)
	if !ok {
		return fl.Snapshot{}, pkgerrors.ErrInvalidData
	}

	return s, nil
}

func (r *memorySnapshotRepo) List(ctx context.Context, offset, limit uint64) ([]fl.Snapshot, uint64, error) {
	data, total, err := r.storage.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	snapshots := make([]fl.Snapshot, len(data))
	for i, d := range data {
		s, ok := d.(fl.Snapshot)
		if !ok {
			return nil, 0, pkgerrors.ErrInvalidData
		}
		snapshots[i] = s
	}

	return snapshots, total, nil
}

type memoryTrainingRepo struct {
	storage Storage
}

func newMemoryTrainingRepository(s Storage) TrainingRepository {
	return &memoryTrainingRepo{storage: s}
}

func (r *memoryTrainingRepo) Save(ctx context.Context, t fl.Training) error {
	return upsert(ctx, r.storage, t.ID, t)
}

func (r *memoryTrainingRepo) Get(ctx context.Context, id string) (fl.Training, error) {
	data, err := r.storage.Get(ctx, id)
	if err != nil {
		return fl.Training{}, err
	}
	t, ok := data.(fl.Training)
	if !ok {
		return fl.Training{}, pkgerrors.ErrInvalidData
	}

	return t, nil
}

func (r *memoryTrainingRepo) List(ctx context.Context, offset, limit uint64) ([]fl.Training, uint64, error) {
	data, total, err := r.storage.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	trainings := make([]fl.Training, len(data))
	for i, d := range data {
		t, ok := d.(fl.Training)
		if !ok {
			return nil, 0, pkgerrors.ErrInvalidData
		}
		trainings[i] = t
	}

	return trainings, total, nil
}

func (r *memoryTrainingRepo) Delete(ctx context.Context, id string) error {
	return r.storage.Delete(ctx, id)
}

func upsert(ctx context.Context, s Storage, key string, value any) error {
	err := s.Create(ctx, key, value)
	if errors.Is(err, pkgerrors.ErrEntityExists) {
		return s.Update(ctx, key, value)
	}

	return err
}
