package mocks

import (
	"context"
	"encoding/json"

	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/stretchr/testify/mock"
)

var _ dashboard.Service = (*Service)(nil)

// Service is a mock implementation of dashboard.Service.
type Service struct {
	mock.Mock
}

func (m *Service) Login(ctx context.Context, username, password string) (fl.Token, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(fl.Token), args.Error(1)
}

func (m *Service) CurrentUser(ctx context.Context, token string) (fl.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(fl.User), args.Error(1)
}

func (m *Service) ListModels(ctx context.Context, token string, offset, limit uint64) (fl.ModelPage, error) {
	args := m.Called(ctx, token, offset, limit)
	return args.Get(0).(fl.ModelPage), args.Error(1)
}

func (m *Service) ListUsers(ctx context.Context, token string) ([]fl.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).([]fl.User), args.Error(1)
}

func (m *Service) CreateModel(ctx context.Context, token string, model fl.Model, file fl.ModelFile) (fl.Model, error) {
	args := m.Called(ctx, token, model, file)
	return args.Get(0).(fl.Model), args.Error(1)
}

func (m *Service) DownloadModel(ctx context.Context, token, modelID string) (fl.ModelFile, error) {
	args := m.Called(ctx, token, modelID)
	return args.Get(0).(fl.ModelFile), args.Error(1)
}

func (m *Service) StartTraining(ctx context.Context, token, trainingID string) (fl.Training, error) {
	args := m.Called(ctx, token, trainingID)
	return args.Get(0).(fl.Training), args.Error(1)
}

func (m *Service) DeleteTraining(ctx context.Context, token, trainingID string) error {
	args := m.Called(ctx, token, trainingID)
	return args.Error(0)
}

func (m *Service) ParticipantLocations(ctx context.Context, token, trainingID string) (fl.Locations, error) {
	args := m.Called(ctx, token, trainingID)
	return args.Get(0).(fl.Locations), args.Error(1)
}

func (m *Service) Snapshots(ctx context.Context, offset, limit uint64) (fl.SnapshotPage, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).(fl.SnapshotPage), args.Error(1)
}

func (m *Service) Inference(ctx context.Context, token string, req map[string]any) (json.RawMessage, error) {
	args := m.Called(ctx, token, req)
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *Service) GetModel(ctx context.Context, token, modelID string) (fl.Model, error) {
	args := m.Called(ctx, token, modelID)
	return args.Get(0).(fl.Model), args.Error(1)
}

func (m *Service) ListTrainings(ctx context.Context, token string, offset, limit uint64) (fl.TrainingPage, error) {
	args := m.Called(ctx, token, offset, limit)
	return args.Get(0).(fl.TrainingPage), args.Error(1)
}

func (m *Service) CreateTraining(ctx context.Context, token string, t fl.Training) (fl.Training, error) {
	args := m.Called(ctx, token, t)
	return args.Get(0).(fl.Training), args.Error(1)
}

func (m *Service) GetTraining(ctx context.Context, token, trainingID string) (fl.Training, error) {
	args := m.Called(ctx, token, trainingID)
	return args.Get(0).(fl.Training), args.Error(1)
}

func (m *Service) TrainingParticipants(ctx context.Context, token, trainingID string) ([]metrics.Participant, error) {
	args := m.Called(ctx, token, trainingID)
	return args.Get(0).([]metrics.Participant), args.Error(1)
}

func (m *Service) WatchedTrainings(ctx context.Context, offset, limit uint64) (fl.TrainingPage, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).(fl.TrainingPage), args.Error(1)
}

func (m *Service) MetricKeys(ctx context.Context, token, modelID string) ([]string, error) {
	args := m.Called(ctx, token, modelID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *Service) ModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection) (metrics.ChartData, error) {
	args := m.Called(ctx, token, modelID, key, sel)
	return args.Get(0).(metrics.ChartData), args.Error(1)
}

func (m *Service) RenderModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection, width, height int) ([]byte, error) {
	args := m.Called(ctx, token, modelID, key, sel, width, height)
	return args.Get(0).([]byte), args.Error(1)
}
