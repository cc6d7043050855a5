package storage

import (
	"fmt"
	"io"

	"github.com/absmach/fldash/pkg/storage/badger"
)

type Config struct {
	Type       string `env:"DASHBOARD_STORAGE_TYPE" envDefault:"memory"`
	BadgerPath string `env:"DASHBOARD_BADGER_PATH"  envDefault:"./data/badger"`
}

type Repositories struct {
	Snapshots SnapshotRepository
	Trainings TrainingRepository
	// Closer is nil for the in-memory backend.
	Closer io.Closer
}

func NewRepositories(cfg Config) (*Repositories, error) {
	switch cfg.Type {
	case "badger":
		return newBadgerRepositories(cfg)
	case "memory":
		return newMemoryRepositories(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func newBadgerRepositories(cfg Config) (*Repositories, error) {
	db, err := badger.NewDatabase(cfg.BadgerPath)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Snapshots: badger.NewSnapshotRepository(db),
		Trainings: badger.NewTrainingRepository(db),
		Closer:    db,
	}, nil
}

func newMemoryRepositories() *Repositories {
	return &Repositories{
		Snapshots: newMemorySnapshotRepository(NewInMemoryStorage()),
		Trainings: newMemoryTrainingRepository(NewInMemoryStorage()),
	}
}
