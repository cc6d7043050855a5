package mocks

import (
	"context"
	"encoding/json"

	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/absmach/fldash/pkg/sdk"
	"github.com/stretchr/testify/mock"
)

var _ sdk.SDK = (*SDK)(nil)

type SDK struct {
	mock.Mock
}

func (m *SDK) Login(ctx context.Context, username, password string) (fl.Token, error) {
	args := m.Called(ctx, username, password)

	return args.Get(0).(fl.Token), args.Error(1)
}

func (m *SDK) CurrentUser(ctx context.Context, token string) (fl.User, error) {
	args := m.Called(ctx, token)

	return args.Get(0).(fl.User), args.Error(1)
}

func (m *SDK) GetUser(ctx context.Context, token, id string) (fl.User, error) {
	args := m.Called(ctx, token, id)

	return args.Get(0).(fl.User), args.Error(1)
}

func (m *SDK) ListModels(ctx context.Context, token string) ([]fl.Model, error) {
	args := m.Called(ctx, token)

	return args.Get(0).([]fl.Model), args.Error(1)
}

func (m *SDK) ListUsers(ctx context.Context, token string) ([]fl.User, error) {
	args := m.Called(ctx, token)

	return args.Get(0).([]fl.User), args.Error(1)
}

func (m *SDK) CreateModel(ctx context.Context, token string, model fl.Model, file fl.ModelFile) (fl.Model, error) {
	args := m.Called(ctx, token, model, file)

	return args.Get(0).(fl.Model), args.Error(1)
}

func (m *SDK) GetModel(ctx context.Context, token, id string) (fl.Model, error) {
	args := m.Called(ctx, token, id)

	return args.Get(0).(fl.Model), args.Error(1)
}

func (m *SDK) DownloadModel(ctx context.Context, token, id string) (fl.ModelFile, error) {
	args := m.Called(ctx, token, id)

	return args.Get(0).(fl.ModelFile), args.Error(1)
}

func (m *SDK) ModelMetrics(ctx context.Context, token, modelID string) ([]metrics.Observation, error) {
	args := m.Called(ctx, token, modelID)

	return args.Get(0).([]metrics.Observation), args.Error(1)
}

func (m *SDK) ListTrainings(ctx context.Context, token string) ([]fl.Training, error) {
	args := m.Called(ctx, token)

	return args.Get(0).([]fl.Training), args.Error(1)
}

func (m *SDK) CreateTraining(ctx context.Context, token string, t fl.Training) (fl.Training, error) {
	args := m.Called(ctx, token, t)

	return args.Get(0).(fl.Training), args.Error(1)
}

func (m *SDK) GetTraining(ctx context.Context, token, id string) (fl.Training, error) {
	args := m.Called(ctx, token, id)

	return args.Get(0).(fl.Training), args.Error(1)
}

func (m *SDK) StartTraining(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)

	return args.Error(0)
}

func (m *SDK) DeleteTraining(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)

	return args.Error(0)
}

func (m *SDK) Inference(ctx context.Context, token string, req map[string]any) (json.RawMessage, error) {
	args := m.Called(ctx, token, req)

	return args.Get(0).(json.RawMessage), args.Error(1)
}
