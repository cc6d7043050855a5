package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
)

var _ dashboard.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    dashboard.Service
}

func Logging(logger *slog.Logger, svc dashboard.Service) dashboard.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Login(ctx context.Context, username, password string) (tkn fl.Token, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("username", username),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Login failed", args...)

			return
		}
		lm.logger.Info("Login completed successfully", args...)
	}(time.Now())

	return lm.svc.Login(ctx, username, password)
}

func (lm *loggingMiddleware) CurrentUser(ctx context.Context, token string) (u fl.User, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("user",
				slog.String("id", u.ID),
				slog.String("username", u.Username),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get current user failed", args...)

			return
		}
		lm.logger.Info("Get current user completed successfully", args...)
	}(time.Now())

	return lm.svc.CurrentUser(ctx, token)
}

func (lm *loggingMiddleware) ListUsers(ctx context.Context, token string) (users []fl.User, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("users", len(users)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List users failed", args...)

			return
		}
		lm.logger.Info("List users completed successfully", args...)
	}(time.Now())

	return lm.svc.ListUsers(ctx, token)
}

func (lm *loggingMiddleware) ListModels(ctx context.Context, token string, offset, limit uint64) (page fl.ModelPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("offset", offset),
			slog.Uint64("limit", limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List models failed", args...)

			return
		}
		lm.logger.Info("List models completed successfully", args...)
	}(time.Now())

	return lm.svc.ListModels(ctx, token, offset, limit)
}

func (lm *loggingMiddleware) CreateModel(ctx context.Context, token string, m fl.Model, file fl.ModelFile) (resp fl.Model, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("model",
				slog.String("id", resp.ID),
				slog.String("name", resp.Name),
				slog.String("file", file.Name),
				slog.Int("bytes", len(file.Data)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Create model failed", args...)

			return
		}
		lm.logger.Info("Create model completed successfully", args...)
	}(time.Now())

	return lm.svc.CreateModel(ctx, token, m, file)
}

func (lm *loggingMiddleware) GetModel(ctx context.Context, token, modelID string) (resp fl.Model, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("model",
				slog.String("id", modelID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get model failed", args...)

			return
		}
		lm.logger.Info("Get model completed successfully", args...)
	}(time.Now())

	return lm.svc.GetModel(ctx, token, modelID)
}

func (lm *loggingMiddleware) DownloadModel(ctx context.Context, token, modelID string) (file fl.ModelFile, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("model",
				slog.String("id", modelID),
				slog.String("file", file.Name),
				slog.Int("bytes", len(file.Data)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Download model failed", args...)

			return
		}
		lm.logger.Info("Download model completed successfully", args...)
	}(time.Now())

	return lm.svc.DownloadModel(ctx, token, modelID)
}

func (lm *loggingMiddleware) ListTrainings(ctx context.Context, token string, offset, limit uint64) (page fl.TrainingPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("offset", offset),
			slog.Uint64("limit", limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List trainings failed", args...)

			return
		}
		lm.logger.Info("List trainings completed successfully", args...)
	}(time.Now())

	return lm.svc.ListTrainings(ctx, token, offset, limit)
}

func (lm *loggingMiddleware) CreateTraining(ctx context.Context, token string, t fl.Training) (resp fl.Training, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("training",
				slog.String("id", resp.ID),
				slog.String("model_id", t.ModelID),
				slog.String("aggregation_method", string(t.AggregationMethod)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Create training failed", args...)

			return
		}
		lm.logger.Info("Create training completed successfully", args...)
	}(time.Now())

	return lm.svc.CreateTraining(ctx, token, t)
}

func (lm *loggingMiddleware) GetTraining(ctx context.Context, token, trainingID string) (resp fl.Training, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("training",
				slog.String("id", trainingID),
				slog.String("state", resp.State.String()),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get training failed", args...)

			return
		}
		lm.logger.Info("Get training completed successfully", args...)
	}(time.Now())

	return lm.svc.GetTraining(ctx, token, trainingID)
}

func (lm *loggingMiddleware) StartTraining(ctx context.Context, token, trainingID string) (resp fl.Training, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("training",
				slog.String("id", trainingID),
				slog.String("state", resp.State.String()),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Start training failed", args...)

			return
		}
		lm.logger.Info("Start training completed successfully", args...)
	}(time.Now())

	return lm.svc.StartTraining(ctx, token, trainingID)
}

func (lm *loggingMiddleware) DeleteTraining(ctx context.Context, token, trainingID string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("training_id", trainingID),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Delete training failed", args...)

			return
		}
		lm.logger.Info("Delete training completed successfully", args...)
	}(time.Now())

	return lm.svc.DeleteTraining(ctx, token, trainingID)
}

func (lm *loggingMiddleware) TrainingParticipants(ctx context.Context, token, trainingID string) (resp []metrics.Participant, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("training_id", trainingID),
			slog.Int("participants", len(resp)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List training participants failed", args...)

			return
		}
		lm.logger.Info("List training participants completed successfully", args...)
	}(time.Now())

	return lm.svc.TrainingParticipants(ctx, token, trainingID)
}

func (lm *loggingMiddleware) ParticipantLocations(ctx context.Context, token, trainingID string) (locations fl.Locations, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("training_id", trainingID),
			slog.Int("locations", len(locations)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List participant locations failed", args...)

			return
		}
		lm.logger.Info("List participant locations completed successfully", args...)
	}(time.Now())

	return lm.svc.ParticipantLocations(ctx, token, trainingID)
}

func (lm *loggingMiddleware) WatchedTrainings(ctx context.Context, offset, limit uint64) (page fl.TrainingPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("offset", offset),
			slog.Uint64("limit", limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List watched trainings failed", args...)

			return
		}
		lm.logger.Info("List watched trainings completed successfully", args...)
	}(time.Now())

	return lm.svc.WatchedTrainings(ctx, offset, limit)
}

func (lm *loggingMiddleware) MetricKeys(ctx context.Context, token, modelID string) (keys []string, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("model_id", modelID),
			slog.Int("keys", len(keys)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List metric keys failed", args...)

			return
		}
		lm.logger.Info("List metric keys completed successfully", args...)
	}(time.Now())

	return lm.svc.MetricKeys(ctx, token, modelID)
}

func (lm *loggingMiddleware) ModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection) (data metrics.ChartData, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("chart",
				slog.String("model_id", modelID),
				slog.String("key", key),
				slog.String("selection", selectionString(sel)),
				slog.Int("lines", len(data.Lines)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Build model chart failed", args...)

			return
		}
		lm.logger.Info("Build model chart completed successfully", args...)
	}(time.Now())

	return lm.svc.ModelChart(ctx, token, modelID, key, sel)
}

func (lm *loggingMiddleware) RenderModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection, width, height int) (img []byte, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("chart",
				slog.String("model_id", modelID),
				slog.String("key", key),
				slog.String("selection", selectionString(sel)),
				slog.Int("width", width),
				slog.Int("height", height),
				slog.Int("bytes", len(img)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Render model chart failed", args...)

			return
		}
		lm.logger.Info("Render model chart completed successfully", args...)
	}(time.Now())

	return lm.svc.RenderModelChart(ctx, token, modelID, key, sel, width, height)
}

func (lm *loggingMiddleware) Snapshots(ctx context.Context, offset, limit uint64) (page fl.SnapshotPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("offset", offset),
			slog.Uint64("limit", limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List snapshots failed", args...)

			return
		}
		lm.logger.Info("List snapshots completed successfully", args...)
	}(time.Now())

	return lm.svc.Snapshots(ctx, offset, limit)
}

func (lm *loggingMiddleware) Inference(ctx context.Context, token string, req map[string]any) (res json.RawMessage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("bytes", len(res)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Inference failed", args...)

			return
		}
		lm.logger.Info("Inference completed successfully", args...)
	}(time.Now())

	return lm.svc.Inference(ctx, token, req)
}

func selectionString(sel metrics.Selection) string {
	if sel == nil {
		return ""
	}

	return sel.String()
}
