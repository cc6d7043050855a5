package badger

import (
	"context"

	pkgerrors "github.com/absmach/fldash/pkg/errors"
	"github.com/absmach/fldash/pkg/fl"
)

const trainingPrefix = "trn:"

type trainingRepo struct {
	db *Database
}

func NewTrainingRepository(db *Database) *trainingRepo {
	return &trainingRepo{db: db}
}

func (r *trainingRepo) Save(_ context.Context, t fl.Training) error {
	if t.ID == "" {
		return pkgerrors.ErrEmptyKey
	}

	return r.db.setValue([]byte(trainingPrefix+t.ID), t)
}

func (r *trainingRepo) Get(_ context.Context, id string) (fl.Training, error) {
	var t fl.Training
	if err := r.db.getValue([]byte(trainingPrefix+id), &t); err != nil {
		return fl.Training{}, err
	}

	return t, nil
}

func (r *trainingRepo) List(_ context.Context, offset, limit uint64) ([]fl.Training, uint64, error) {
	prefix := []byte(trainingPrefix)
	total, err := r.db.countWithPrefix(prefix)
	if err != nil {
		return nil, 0, err
	}

	items, err := r.db.listWithPrefix(prefix, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	trainings := make([]fl.Training, 0, len(items))
	for _, data := range items {
		var t fl.Training
		if err := decode(data, &t); err != nil {
			return nil, 0, err
		}
		trainings = append(trainings, t)
	}

	return trainings, total, nil
}

func (r *trainingRepo) Delete(_ context.Context, id string) error {
	key := []byte(trainingPrefix + id)
	ok, err := r.db.exists(key)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.ErrNotFound
	}

	return r.db.delete(key)
}
