package badger

import (
	"context"

	"github.com/absmach/fldash/pkg/fl"
)

const snapshotPrefix = "snap:"

type snapshotRepo struct {
	db *Database
}

func NewSnapshotRepository(db *Database) *snapshotRepo {
	return &snapshotRepo{db: db}
}

func (r *snapshotRepo) Save(_ context.Context, s fl.Snapshot) error {
	return r.db.setValue([]byte(snapshotPrefix+s.ModelID), s)
}

func (r *snapshotRepo) Get(_ context.Context, modelID string) (fl.Snapshot, error) {
	var s fl.Snapshot
	if err := r.db.getValue([]byte(snapshotPrefix+modelID), &s); err != nil {
		return fl.Snapshot{}, err
	}

	return s, nil
}

func (r *snapshotRepo) List(_ context.Context, offset, limit uint64) ([]fl.Snapshot, uint64, error) {
	prefix := []byte(snapshotPrefix)
	total, err := r.db.countWithPrefix(prefix)
	if err != nil {
		return nil, 0, err
	}

	items, err := r.db.listWithPrefix(prefix, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	snapshots := make([]fl.Snapshot, 0, len(items))
	for _, data := range items {
		var s fl.Snapshot
		if err := decode(data, &s); err != nil {
			return nil, 0, err
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, total, nil
}
