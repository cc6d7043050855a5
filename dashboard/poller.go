package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/mqtt"
	"github.com/absmach/fldash/pkg/sdk"
	"github.com/absmach/fldash/pkg/storage"
	"github.com/google/uuid"
)

const (
	DefPollInterval = 10 * time.Second

	stateTopicTemplate = "%s/trainings/%s/state"
)

// StateTopic is the topic state changes of a training are published on.
// An empty trainingID yields the wildcard topic matching every training.
func StateTopic(prefix, trainingID string) string {
	if trainingID == "" {
		trainingID = "+"
	}

	return fmt.Sprintf(stateTopicTemplate, prefix, trainingID)
}

// Poller follows watched trainings and publishes their state changes.
type Poller interface {
	// Start polls every interval until ctx is done or Stop is called.
	Start(ctx context.Context) error
	// Stop is safe to call more than once.
	Stop()
	// Poll runs a single polling pass over all watched trainings.
	Poll(ctx context.Context) error
}

type poller struct {
	svc         Service
	backend     sdk.SDK
	trainings   storage.TrainingRepository
	pubsub      mqtt.PubSub
	token       string
	topicPrefix string
	interval    time.Duration
	logger      *slog.Logger
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewPoller uses token, a service account token, for every backend call.
// The snapshot of a polled training's model is refreshed through svc.
func NewPoller(svc Service, backend sdk.SDK, trainings storage.TrainingRepository, pubsub mqtt.PubSub, token, topicPrefix string, interval time.Duration, logger *slog.Logger) Poller {
	if interval <= 0 {
		interval = DefPollInterval
	}

	return &poller{
		svc:         svc,
		backend:     backend,
		trainings:   trainings,
		pubsub:      pubsub,
		token:       token,
		topicPrefix: topicPrefix,
		interval:    interval,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

func (p *poller) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("training poller started", slog.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("training poller stopping")

			return nil
		case <-p.stopChan:
			p.logger.Info("training poller stopped")

			return nil
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil {
				p.logger.Error("error polling trainings", slog.String("error", err.Error()))
			}
		}
	}
}

func (p *poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
}

func (p *poller) Poll(ctx context.Context) error {
	watched, err := p.watched(ctx)
	if err != nil {
		return fmt.Errorf("failed to list watched trainings: %w", err)
	}

	for _, t := range watched {
		if t.State.IsTerminal() {
			continue
		}
		if err := p.pollTraining(ctx, t); err != nil {
			p.logger.Error("failed to poll training",
				slog.String("training_id", t.ID),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

func (p *poller) watched(ctx context.Context) ([]fl.Training, error) {
	var all []fl.Training
	for offset := uint64(0); ; offset += defLimit {
		page, total, err := p.trainings.List(ctx, offset, defLimit)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || offset+defLimit >= total {
			return all, nil
		}
	}
}

func (p *poller) pollTraining(ctx context.Context, prev fl.Training) error {
	curr, err := p.backend.GetTraining(ctx, p.token, prev.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch training: %w", err)
	}

	if curr.State != prev.State {
		if err := fl.ValidateTransition(prev.State, curr.State); err != nil {
			p.logger.Warn("unexpected training state transition",
				slog.String("training_id", curr.ID),
				slog.String("error", err.Error()))
		}
		if err := p.publish(ctx, prev, curr); err != nil {
			p.logger.Error("failed to publish training state",
				slog.String("training_id", curr.ID),
				slog.String("error", err.Error()))
		}
	}

	if err := p.trainings.Save(ctx, curr); err != nil {
		return fmt.Errorf("failed to store training: %w", err)
	}

	if curr.ModelID != "" {
		if _, err := p.svc.MetricKeys(ctx, p.token, curr.ModelID); err != nil {
			p.logger.Warn("failed to refresh model snapshot",
				slog.String("model_id", curr.ModelID),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

func (p *poller) publish(ctx context.Context, prev, curr fl.Training) error {
	ev := StateEvent{
		ID:         uuid.NewString(),
		TrainingID: curr.ID,
		ModelID:    curr.ModelID,
		From:       prev.State,
		To:         curr.State,
		At:         time.Now().UTC(),
	}
	topic := StateTopic(p.topicPrefix, curr.ID)

	p.logger.Info("training state changed",
		slog.String("training_id", curr.ID),
		slog.String("from", prev.State.String()),
		slog.String("to", curr.State.String()))

	return p.pubsub.Publish(ctx, topic, ev)
}
