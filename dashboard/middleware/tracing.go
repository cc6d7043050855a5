package middleware

import (
	"context"
	"encoding/json"

	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ dashboard.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    dashboard.Service
}

func Tracing(tracer trace.Tracer, svc dashboard.Service) dashboard.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Login(ctx context.Context, username, password string) (fl.Token, error) {
	ctx, span := tm.tracer.Start(ctx, "login", trace.WithAttributes(
		attribute.String("username", username),
	))
	defer span.End()

	return tm.svc.Login(ctx, username, password)
}

func (tm *tracing) CurrentUser(ctx context.Context, token string) (fl.User, error) {
	ctx, span := tm.tracer.Start(ctx, "current-user")
	defer span.End()

	return tm.svc.CurrentUser(ctx, token)
}

func (tm *tracing) ListUsers(ctx context.Context, token string) ([]fl.User, error) {
	ctx, span := tm.tracer.Start(ctx, "list-users")
	defer span.End()

	return tm.svc.ListUsers(ctx, token)
}

func (tm *tracing) ListModels(ctx context.Context, token string, offset, limit uint64) (fl.ModelPage, error) {
	ctx, span := tm.tracer.Start(ctx, "list-models", trace.WithAttributes(
		attribute.Int64("offset", int64(offset)),
		attribute.Int64("limit", int64(limit)),
	))
	defer span.End()

	return tm.svc.ListModels(ctx, token, offset, limit)
}

func (tm *tracing) CreateModel(ctx context.Context, token string, m fl.Model, file fl.ModelFile) (fl.Model, error) {
	ctx, span := tm.tracer.Start(ctx, "create-model", trace.WithAttributes(
		attribute.String("name", m.Name),
		attribute.Int("bytes", len(file.Data)),
	))
	defer span.End()

	return tm.svc.CreateModel(ctx, token, m, file)
}

func (tm *tracing) DownloadModel(ctx context.Context, token, modelID string) (fl.ModelFile, error) {
	ctx, span := tm.tracer.Start(ctx, "download-model", trace.WithAttributes(
		attribute.String("id", modelID),
	))
	defer span.End()

	return tm.svc.DownloadModel(ctx, token, modelID)
}

func (tm *tracing) GetModel(ctx context.Context, token, modelID string) (fl.Model, error) {
	ctx, span := tm.tracer.Start(ctx, "get-model", trace.WithAttributes(
		attribute.String("id", modelID),
	))
	defer span.End()

	return tm.svc.GetModel(ctx, token, modelID)
}

func (tm *tracing) ListTrainings(ctx context.Context, token string, offset, limit uint64) (fl.TrainingPage, error) {
	ctx, span := tm.tracer.Start(ctx, "list-trainings", trace.WithAttributes(
		attribute.Int64("offset", int64(offset)),
		attribute.Int64("limit", int64(limit)),
	))
	defer span.End()

	return tm.svc.ListTrainings(ctx, token, offset, limit)
}

func (tm *tracing) CreateTraining(ctx context.Context, token string, t fl.Training) (fl.Training, error) {
	ctx, span := tm.tracer.Start(ctx, "create-training", trace.WithAttributes(
		attribute.String("model_id", t.ModelID),
		attribute.String("aggregation_method", string(t.AggregationMethod)),
	))
	defer span.End()

	return tm.svc.CreateTraining(ctx, token, t)
}

func (tm *tracing) GetTraining(ctx context.Context, token, trainingID string) (fl.Training, error) {
	ctx, span := tm.tracer.Start(ctx, "get-training", trace.WithAttributes(
		attribute.String("id", trainingID),
	))
	defer span.End()

	return tm.svc.GetTraining(ctx, token, trainingID)
}

func (tm *tracing) StartTraining(ctx context.Context, token, trainingID string) (fl.Training, error) {
	ctx, span := tm.tracer.Start(ctx, "start-training", trace.WithAttributes(
		attribute.String("id", trainingID),
	))
	defer span.End()

	return tm.svc.StartTraining(ctx, token, trainingID)
}

func (tm *tracing) DeleteTraining(ctx context.Context, token, trainingID string) error {
	ctx, span := tm.tracer.Start(ctx, "delete-training", trace.WithAttributes(
		attribute.String("id", trainingID),
	))
	defer span.End()

	return tm.svc.DeleteTraining(ctx, token, trainingID)
}

func (tm *tracing) ParticipantLocations(ctx context.Context, token, trainingID string) (fl.Locations, error) {
	ctx, span := tm.tracer.Start(ctx, "participant-locations", trace.WithAttributes(
		attribute.String("id", trainingID),
	))
	defer span.End()

	return tm.svc.ParticipantLocations(ctx, token, trainingID)
}

func (tm *tracing) TrainingParticipants(ctx context.Context, token, trainingID string) ([]metrics.Participant, error) {
	ctx, span := tm.tracer.Start(ctx, "training-participants", trace.WithAttributes(
		attribute.String("id", trainingID),
	))
	defer span.End()

	return tm.svc.TrainingParticipants(ctx, token, trainingID)
}

func (tm *tracing) WatchedTrainings(ctx context.Context, offset, limit uint64) (fl.TrainingPage, error) {
	ctx, span := tm.tracer.Start(ctx, "watched-trainings", trace.WithAttributes(
		attribute.Int64("offset", int64(offset)),
		attribute.Int64("limit", int64(limit)),
	))
	defer span.End()

	return tm.svc.WatchedTrainings(ctx, offset, limit)
}

func (tm *tracing) MetricKeys(ctx context.Context, token, modelID string) ([]string, error) {
	ctx, span := tm.tracer.Start(ctx, "metric-keys", trace.WithAttributes(
		attribute.String("model_id", modelID),
	))
	defer span.End()

	return tm.svc.MetricKeys(ctx, token, modelID)
}

func (tm *tracing) ModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection) (metrics.ChartData, error) {
	ctx, span := tm.tracer.Start(ctx, "model-chart", trace.WithAttributes(
		attribute.String("model_id", modelID),
		attribute.String("key", key),
		attribute.String("selection", selectionString(sel)),
	))
	defer span.End()

	return tm.svc.ModelChart(ctx, token, modelID, key, sel)
}

func (tm *tracing) RenderModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection, width, height int) ([]byte, error) {
	ctx, span := tm.tracer.Start(ctx, "render-model-chart", trace.WithAttributes(
		attribute.String("model_id", modelID),
		attribute.String("key", key),
		attribute.String("selection", selectionString(sel)),
		attribute.Int("width", width),
		attribute.Int("height", height),
	))
	defer span.End()

	return tm.svc.RenderModelChart(ctx, token, modelID, key, sel, width, height)
}

func (tm *tracing) Snapshots(ctx context.Context, offset, limit uint64) (fl.SnapshotPage, error) {
	ctx, span := tm.tracer.Start(ctx, "snapshots", trace.WithAttributes(
		attribute.Int64("offset", int64(offset)),
		attribute.Int64("limit", int64(limit)),
	))
	defer span.End()

	return tm.svc.Snapshots(ctx, offset, limit)
}

func (tm *tracing) Inference(ctx context.Context, token string, req map[string]any) (json.RawMessage, error) {
	ctx, span := tm.tracer.Start(ctx, "inference")
	defer span.End()

	return tm.svc.Inference(ctx, token, req)
}
