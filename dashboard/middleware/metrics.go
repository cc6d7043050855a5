package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	kitmetrics "github.com/go-kit/kit/metrics"
)

var _ dashboard.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter kitmetrics.Counter
	latency kitmetrics.Histogram
	svc     dashboard.Service
}

func Metrics(counter kitmetrics.Counter, latency kitmetrics.Histogram, svc dashboard.Service) dashboard.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) observe(method string, begin time.Time) {
	mm.counter.With("method", method).Add(1)
	mm.latency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (mm *metricsMiddleware) Login(ctx context.Context, username, password string) (fl.Token, error) {
	defer mm.observe("login", time.Now())

	return mm.svc.Login(ctx, username, password)
}

func (mm *metricsMiddleware) CurrentUser(ctx context.Context, token string) (fl.User, error) {
	defer mm.observe("current-user", time.Now())

	return mm.svc.CurrentUser(ctx, token)
}

func (mm *metricsMiddleware) ListModels(ctx context.Context, token string, offset, limit uint64) (fl.ModelPage, error) {
	defer mm.observe("list-models", time.Now())

	return mm.svc.ListModels(ctx, token, offset, limit)
}

func (mm *metricsMiddleware) ListUsers(ctx context.Context, token string) ([]fl.User, error) {
	defer mm.observe("list-users", time.Now())

	return mm.svc.ListUsers(ctx, token)
}

func (mm *metricsMiddleware) CreateModel(ctx context.Context, token string, m fl.Model, file fl.ModelFile) (fl.Model, error) {
	defer mm.observe("create-model", time.Now())

	return mm.svc.CreateModel(ctx, token, m, file)
}

func (mm *metricsMiddleware) DownloadModel(ctx context.Context, token, modelID string) (fl.ModelFile, error) {
	defer mm.observe("download-model", time.Now())

	return mm.svc.DownloadModel(ctx, token, modelID)
}

func (mm *metricsMiddleware) GetModel(ctx context.Context, token, modelID string) (fl.Model, error) {
	defer mm.observe("get-model", time.Now())

	return mm.svc.GetModel(ctx, token, modelID)
}

func (mm *metricsMiddleware) ListTrainings(ctx context.Context, token string, offset, limit uint64) (fl.TrainingPage, error) {
	defer mm.observe("list-trainings", time.Now())

	return mm.svc.ListTrainings(ctx, token, offset, limit)
}

func (mm *metricsMiddleware) CreateTraining(ctx context.Context, token string, t fl.Training) (fl.Training, error) {
	defer mm.observe("create-training", time.Now())

	return mm.svc.CreateTraining(ctx, token, t)
}

func (mm *metricsMiddleware) GetTraining(ctx context.Context, token, trainingID string) (fl.Training, error) {
	defer mm.observe("get-training", time.Now())

	return mm.svc.GetTraining(ctx, token, trainingID)
}

func (mm *metricsMiddleware) StartTraining(ctx context.Context, token, trainingID string) (fl.Training, error) {
	defer mm.observe("start-training", time.Now())

	return mm.svc.StartTraining(ctx, token, trainingID)
}

func (mm *metricsMiddleware) DeleteTraining(ctx context.Context, token, trainingID string) error {
	defer mm.observe("delete-training", time.Now())

	return mm.svc.DeleteTraining(ctx, token, trainingID)
}

func (mm *metricsMiddleware) ParticipantLocations(ctx context.Context, token, trainingID string) (fl.Locations, error) {
	defer mm.observe("participant-locations", time.Now())

	return mm.svc.ParticipantLocations(ctx, token, trainingID)
}

func (mm *metricsMiddleware) TrainingParticipants(ctx context.Context, token, trainingID string) ([]metrics.Participant, error) {
	defer mm.observe("training-participants", time.Now())

	return mm.svc.TrainingParticipants(ctx, token, trainingID)
}

func (mm *metricsMiddleware) WatchedTrainings(ctx context.Context, offset, limit uint64) (fl.TrainingPage, error) {
	defer mm.observe("watched-trainings", time.Now())

	return mm.svc.WatchedTrainings(ctx, offset, limit)
}

func (mm *metricsMiddleware) MetricKeys(ctx context.Context, token, modelID string) ([]string, error) {
	defer mm.observe("metric-keys", time.Now())

	return mm.svc.MetricKeys(ctx, token, modelID)
}

func (mm *metricsMiddleware) ModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection) (metrics.ChartData, error) {
	defer mm.observe("model-chart", time.Now())

	return mm.svc.ModelChart(ctx, token, modelID, key, sel)
}

func (mm *metricsMiddleware) RenderModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection, width, height int) ([]byte, error) {
	defer mm.observe("render-model-chart", time.Now())

	return mm.svc.RenderModelChart(ctx, token, modelID, key, sel, width, height)
}

func (mm *metricsMiddleware) Snapshots(ctx context.Context, offset, limit uint64) (fl.SnapshotPage, error) {
	defer mm.observe("snapshots", time.Now())

	return mm.svc.Snapshots(ctx, offset, limit)
}

func (mm *metricsMiddleware) Inference(ctx context.Context, token string, req map[string]any) (json.RawMessage, error) {
	defer mm.observe("inference", time.Now())

	return mm.svc.Inference(ctx, token, req)
}
