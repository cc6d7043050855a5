package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/absmach/fldash/pkg/fl"
)

const (
	trainingsEndpoint = "/api/trainings/"
	inferenceEndpoint = "/api/inference/"
)

type training struct {
	ID                backendID   `json:"id"`
	Actor             backendID   `json:"actor"`
	Participants      []backendID `json:"participants"`
	Model             backendID   `json:"model"`
	State             fl.State    `json:"state"`
	TargetNumUpdates  uint64      `json:"target_num_updates"`
	UncertaintyMethod string      `json:"uncertainty_method"`
	AggregationMethod string      `json:"aggregation_method"`
	Locked            bool        `json:"locked"`
	LastUpdate        time.Time   `json:"last_update"`
}

func (t training) toTraining() fl.Training {
	participants := make([]string, len(t.Participants))
	for i, p := range t.Participants {
		participants[i] = string(p)
	}

	return fl.Training{
		ID:                string(t.ID),
		Actor:             string(t.Actor),
		ModelID:           string(t.Model),
		State:             t.State,
		TargetNumUpdates:  t.TargetNumUpdates,
		Participants:      participants,
		UncertaintyMethod: t.UncertaintyMethod,
		AggregationMethod: fl.AggregationMethod(t.AggregationMethod),
		Locked:            t.Locked,
		LastUpdate:        t.LastUpdate,
	}
}

type createTrainingReq struct {
	ModelID           string   `json:"model_id"`
	TargetNumUpdates  uint64   `json:"target_num_updates"`
	MetricNames       []string `json:"metric_names"`
	AggregationMethod string   `json:"aggregation_method"`
	Clients           []string `json:"clients"`
}

// createTrainingRes covers both a full training and the short
// acknowledgement carrying only the new training id.
type createTrainingRes struct {
	training
	TrainingID backendID `json:"training_id"`
}

func (sdk *flSDK) ListTrainings(ctx context.Context, token string) ([]fl.Training, error) {
	var ts []training
	if err := sdk.get(ctx, trainingsEndpoint, token, &ts); err != nil {
		return nil, err
	}

	trainings := make([]fl.Training, len(ts))
	for i, t := range ts {
		trainings[i] = t.toTraining()
	}

	return trainings, nil
}

func (sdk *flSDK) CreateTraining(ctx context.Context, token string, t fl.Training) (fl.Training, error) {
	req := createTrainingReq{
		ModelID:           t.ModelID,
		TargetNumUpdates:  t.TargetNumUpdates,
		MetricNames:       t.MetricNames,
		AggregationMethod: string(t.AggregationMethod),
		Clients:           t.Participants,
	}
	if req.MetricNames == nil {
		req.MetricNames = []string{}
	}
	if req.Clients == nil {
		req.Clients = []string{}
	}

	var res createTrainingRes
	if err := sdk.post(ctx, trainingsEndpoint, token, req, &res, http.StatusCreated); err != nil {
		return fl.Training{}, err
	}
	if res.ID == "" && res.TrainingID != "" {
		return sdk.GetTraining(ctx, token, string(res.TrainingID))
	}

	return res.toTraining(), nil
}

func (sdk *flSDK) GetTraining(ctx context.Context, token, id string) (fl.Training, error) {
	var t training
	if err := sdk.get(ctx, trainingsEndpoint+url.PathEscape(id)+"/", token, &t); err != nil {
		return fl.Training{}, err
	}

	return t.toTraining(), nil
}

func (sdk *flSDK) StartTraining(ctx context.Context, token, id string) error {
	return sdk.post(ctx, trainingsEndpoint+url.PathEscape(id)+"/start/", token, nil, nil, http.StatusOK)
}

func (sdk *flSDK) DeleteTraining(ctx context.Context, token, id string) error {
	_, err := sdk.processRequest(ctx, http.MethodDelete, sdk.backendURL+trainingsEndpoint+url.PathEscape(id)+"/", token, nil, http.StatusNoContent)

	return err
}

func (sdk *flSDK) Inference(ctx context.Context, token string, req map[string]any) (json.RawMessage, error) {
	var res json.RawMessage
	if err := sdk.post(ctx, inferenceEndpoint, token, req, &res, http.StatusOK); err != nil {
		return nil, err
	}

	return res, nil
}
