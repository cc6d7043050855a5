// Package dashboard serves chart-ready training metrics of a
// federated-learning backend.
package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
)

// Service is the dashboard API. The token argument is the caller's backend
// token and is forwarded to the backend unchanged.
type Service interface {
	Login(ctx context.Context, username, password string) (fl.Token, error)
	CurrentUser(ctx context.Context, token string) (fl.User, error)
	ListUsers(ctx context.Context, token string) ([]fl.User, error)

	ListModels(ctx context.Context, token string, offset, limit uint64) (fl.ModelPage, error)
	// CreateModel uploads a model file. A model without a name gets a
	// generated one.
	CreateModel(ctx context.Context, token string, m fl.Model, file fl.ModelFile) (fl.Model, error)
	GetModel(ctx context.Context, token, modelID string) (fl.Model, error)
	DownloadModel(ctx context.Context, token, modelID string) (fl.ModelFile, error)

	ListTrainings(ctx context.Context, token string, offset, limit uint64) (fl.TrainingPage, error)
	CreateTraining(ctx context.Context, token string, t fl.Training) (fl.Training, error)
	GetTraining(ctx context.Context, token, trainingID string) (fl.Training, error)
	// StartTraining starts a training and returns its refreshed state.
	StartTraining(ctx context.Context, token, trainingID string) (fl.Training, error)
	// DeleteTraining deletes a training and stops watching it.
	DeleteTraining(ctx context.Context, token, trainingID string) error
	// TrainingParticipants returns the participants of a training sorted and
	// colored the same way chart lines are.
	TrainingParticipants(ctx context.Context, token, trainingID string) ([]metrics.Participant, error)
	// ParticipantLocations returns the known positions of the participants
	// of a training.
	ParticipantLocations(ctx context.Context, token, trainingID string) (fl.Locations, error)
	// WatchedTrainings lists the trainings the poller follows.
	WatchedTrainings(ctx context.Context, offset, limit uint64) (fl.TrainingPage, error)

	MetricKeys(ctx context.Context, token, modelID string) ([]string, error)
	// ModelChart builds the chart of one metric key. A duplicate line error
	// is returned together with the uncollapsed chart.
	ModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection) (metrics.ChartData, error)
	RenderModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection, width, height int) ([]byte, error)
	// Snapshots lists the stored model snapshots used while the backend is
	// unreachable.
	Snapshots(ctx context.Context, offset, limit uint64) (fl.SnapshotPage, error)

	Inference(ctx context.Context, token string, req map[string]any) (json.RawMessage, error)
}

// StateEvent is published whenever a watched training changes state.
type StateEvent struct {
	ID         string    `json:"id"`
	TrainingID string    `json:"training_id"`
	ModelID    string    `json:"model_id"`
	From       fl.State  `json:"from"`
	To         fl.State  `json:"to"`
	At         time.Time `json:"at"`
}
