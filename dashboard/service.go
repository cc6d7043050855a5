package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/0x6flab/namegenerator"
	pkgerrors "github.com/absmach/fldash/pkg/errors"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/absmach/fldash/pkg/sdk"
	"github.com/absmach/fldash/pkg/storage"
	"golang.org/x/sync/errgroup"
)

const (
	defLimit = 100

	userFetchLimit = 8
)

var namegen = namegenerator.NewGenerator()

type service struct {
	backend   sdk.SDK
	snapshots storage.SnapshotRepository
	trainings storage.TrainingRepository
	builder   metrics.Builder
	logger    *slog.Logger
}

func NewService(backend sdk.SDK, snapshots storage.SnapshotRepository, trainings storage.TrainingRepository, builder metrics.Builder, logger *slog.Logger) Service {
	return &service{
		backend:   backend,
		snapshots: snapshots,
		trainings: trainings,
		builder:   builder,
		logger:    logger,
	}
}

func (svc *service) Login(ctx context.Context, username, password string) (fl.Token, error) {
	return svc.backend.Login(ctx, username, password)
}

func (svc *service) CurrentUser(ctx context.Context, token string) (fl.User, error) {
	return svc.backend.CurrentUser(ctx, token)
}

func (svc *service) ListUsers(ctx context.Context, token string) ([]fl.User, error) {
	return svc.backend.ListUsers(ctx, token)
}

func (svc *service) ListModels(ctx context.Context, token string, offset, limit uint64) (fl.ModelPage, error) {
	models, err := svc.backend.ListModels(ctx, token)
	if err != nil {
		return fl.ModelPage{}, err
	}

	return fl.ModelPage{
		Offset: offset,
		Limit:  limit,
		Total:  uint64(len(models)),
		Models: paginate(models, offset, limit),
	}, nil
}

func (svc *service) CreateModel(ctx context.Context, token string, m fl.Model, file fl.ModelFile) (fl.Model, error) {
	if len(file.Data) == 0 {
		return fl.Model{}, fmt.Errorf("%w: empty model file", pkgerrors.ErrInvalidData)
	}
	if m.Name == "" {
		m.Name = namegen.Generate()
	}

	return svc.backend.CreateModel(ctx, token, m, file)
}

func (svc *service) GetModel(ctx context.Context, token, modelID string) (fl.Model, error) {
	return svc.backend.GetModel(ctx, token, modelID)
}

func (svc *service) DownloadModel(ctx context.Context, token, modelID string) (fl.ModelFile, error) {
	return svc.backend.DownloadModel(ctx, token, modelID)
}

func (svc *service) ListTrainings(ctx context.Context, token string, offset, limit uint64) (fl.TrainingPage, error) {
	trainings, err := svc.backend.ListTrainings(ctx, token)
	if err != nil {
		return fl.TrainingPage{}, err
	}

	return fl.TrainingPage{
		Offset:    offset,
		Limit:     limit,
		Total:     uint64(len(trainings)),
		Trainings: paginate(trainings, offset, limit),
	}, nil
}

func (svc *service) CreateTraining(ctx context.Context, token string, t fl.Training) (fl.Training, error) {
	if t.AggregationMethod == "" {
		t.AggregationMethod = fl.FedAvg
	}
	t, err := svc.backend.CreateTraining(ctx, token, t)
	if err != nil {
		return fl.Training{}, err
	}
	svc.watch(ctx, t)

	return t, nil
}

func (svc *service) GetTraining(ctx context.Context, token, trainingID string) (fl.Training, error) {
	t, err := svc.backend.GetTraining(ctx, token, trainingID)
	if err != nil {
		return fl.Training{}, err
	}
	svc.watch(ctx, t)

	return t, nil
}

func (svc *service) StartTraining(ctx context.Context, token, trainingID string) (fl.Training, error) {
	if err := svc.backend.StartTraining(ctx, token, trainingID); err != nil {
		return fl.Training{}, err
	}

	return svc.GetTraining(ctx, token, trainingID)
}

func (svc *service) DeleteTraining(ctx context.Context, token, trainingID string) error {
	if err := svc.backend.DeleteTraining(ctx, token, trainingID); err != nil {
		return err
	}
	if err := svc.trainings.Delete(ctx, trainingID); err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		svc.logger.Warn("failed to drop watched training", slog.String("training_id", trainingID), slog.Any("error", err))
	}

	return nil
}

func (svc *service) TrainingParticipants(ctx context.Context, token, trainingID string) ([]metrics.Participant, error) {
	t, err := svc.backend.GetTraining(ctx, token, trainingID)
	if err != nil {
		return nil, err
	}

	return svc.participants(ctx, token, t.Participants)
}

func (svc *service) ParticipantLocations(ctx context.Context, token, trainingID string) (fl.Locations, error) {
	participants, err := svc.TrainingParticipants(ctx, token, trainingID)
	if err != nil {
		return nil, err
	}

	locations := fl.Locations{}
	for _, p := range participants {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		locations[p.ID] = fl.Location{Lat: *p.Latitude, Lng: *p.Longitude}
	}

	return locations, nil
}

func (svc *service) WatchedTrainings(ctx context.Context, offset, limit uint64) (fl.TrainingPage, error) {
	trainings, total, err := svc.trainings.List(ctx, offset, limit)
	if err != nil {
		return fl.TrainingPage{}, err
	}

	return fl.TrainingPage{
		Offset:    offset,
		Limit:     limit,
		Total:     total,
		Trainings: trainings,
	}, nil
}

func (svc *service) MetricKeys(ctx context.Context, token, modelID string) ([]string, error) {
	snap, err := svc.snapshot(ctx, token, modelID)
	if err != nil {
		return nil, err
	}

	return metrics.DiscoverKeys(snap.Observations), nil
}

func (svc *service) ModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection) (metrics.ChartData, error) {
	snap, err := svc.snapshot(ctx, token, modelID)
	if err != nil {
		return metrics.ChartData{}, err
	}

	data, err := svc.builder.BuildSeries(snap.Observations, snap.Participants, key, sel)
	if err != nil {
		if errors.Is(err, metrics.ErrDuplicateLine) {
			svc.logger.Error("chart contains duplicate lines",
				slog.String("model_id", modelID),
				slog.String("key", key),
				slog.String("selection", sel.String()),
				slog.Any("error", err),
			)
		}

		return data, err
	}

	return data, nil
}

func (svc *service) RenderModelChart(ctx context.Context, token, modelID, key string, sel metrics.Selection, width, height int) ([]byte, error) {
	data, err := svc.ModelChart(ctx, token, modelID, key, sel)
	if err != nil {
		return nil, err
	}
	if !data.HasData() {
		return nil, fmt.Errorf("%w: key %q of model %s", pkgerrors.ErrNoData, key, modelID)
	}

	return renderPNG(data, width, height)
}

func (svc *service) Snapshots(ctx context.Context, offset, limit uint64) (fl.SnapshotPage, error) {
	snapshots, total, err := svc.snapshots.List(ctx, offset, limit)
	if err != nil {
		return fl.SnapshotPage{}, err
	}

	return fl.SnapshotPage{
		Offset:    offset,
		Limit:     limit,
		Total:     total,
		Snapshots: snapshots,
	}, nil
}

func (svc *service) Inference(ctx context.Context, token string, req map[string]any) (json.RawMessage, error) {
	return svc.backend.Inference(ctx, token, req)
}

// snapshot fetches the current observations of a model together with their
// reporters and stores the result. When the backend cannot be reached the
// last stored snapshot is returned instead.
func (svc *service) snapshot(ctx context.Context, token, modelID string) (fl.Snapshot, error) {
	snap, err := svc.fetchSnapshot(ctx, token, modelID)
	if err == nil {
		if err := svc.snapshots.Save(ctx, snap); err != nil {
			svc.logger.Warn("failed to save snapshot", slog.String("model_id", modelID), slog.Any("error", err))
		}

		return snap, nil
	}
	if !errors.Is(err, pkgerrors.ErrBackend) {
		return fl.Snapshot{}, err
	}

	saved, serr := svc.snapshots.Get(ctx, modelID)
	if serr != nil {
		return fl.Snapshot{}, err
	}
	svc.logger.Warn("backend unavailable, using stored snapshot",
		slog.String("model_id", modelID),
		slog.Time("fetched_at", saved.FetchedAt),
		slog.Any("error", err),
	)

	return saved, nil
}

func (svc *service) fetchSnapshot(ctx context.Context, token, modelID string) (fl.Snapshot, error) {
	observations, err := svc.backend.ModelMetrics(ctx, token, modelID)
	if err != nil {
		return fl.Snapshot{}, err
	}

	participants, err := svc.participants(ctx, token, reporters(observations))
	if err != nil {
		return fl.Snapshot{}, err
	}

	return fl.Snapshot{
		ModelID:      modelID,
		Observations: observations,
		Participants: participants,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// participants fetches the users behind ids concurrently. Ids the backend
// does not know as users, such as the server, become bare participants.
func (svc *service) participants(ctx context.Context, token string, ids []string) ([]metrics.Participant, error) {
	participants := make([]metrics.Participant, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(userFetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			u, err := svc.backend.GetUser(ctx, token, id)
			switch {
			case err == nil:
				participants[i] = u.ToParticipant()
			case errors.Is(err, pkgerrors.ErrNotFound):
				participants[i] = metrics.Participant{ID: id}
			default:
				return err
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return metrics.AssignColors(metrics.SortParticipants(participants)), nil
}

// watch hands a training not yet followed over to the poller. A stored
// training is left untouched since the poller compares against its stored
// state to detect transitions. Terminal trainings are never added.
func (svc *service) watch(ctx context.Context, t fl.Training) {
	_, err := svc.trainings.Get(ctx, t.ID)
	switch {
	case err == nil:
		return
	case !errors.Is(err, pkgerrors.ErrNotFound):
		svc.logger.Warn("failed to look up watched training", slog.String("training_id", t.ID), slog.Any("error", err))

		return
	case t.State.IsTerminal():
		return
	}
	if err := svc.trainings.Save(ctx, t); err != nil {
		svc.logger.Warn("failed to store watched training", slog.String("training_id", t.ID), slog.Any("error", err))
	}
}

func reporters(observations []metrics.Observation) []string {
	seen := make(map[string]struct{})
	ids := []string{}
	for _, o := range observations {
		if o.ReporterID == "" {
			continue
		}
		if _, ok := seen[o.ReporterID]; ok {
			continue
		}
		seen[o.ReporterID] = struct{}{}
		ids = append(ids, o.ReporterID)
	}

	return ids
}

func paginate[T any](items []T, offset, limit uint64) []T {
	total := uint64(len(items))
	if offset >= total {
		return []T{}
	}
	end := min(offset+limit, total)

	return items[offset:end]
}
