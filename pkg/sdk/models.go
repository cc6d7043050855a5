package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
)

const (
	modelsEndpoint = "/api/models/"

	modelFileField = "model_file"
	defModelFile   = "model"
)

type model struct {
	ID          backendID `json:"id,omitempty"`
	Owner       backendID `json:"owner,omitempty"`
	Round       uint64    `json:"round"`
	Weights     *float64  `json:"weights,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
}

func (m model) toModel() fl.Model {
	return fl.Model{
		ID:          string(m.ID),
		Owner:       string(m.Owner),
		Round:       m.Round,
		Weights:     m.Weights,
		Name:        m.Name,
		Description: m.Description,
	}
}

// createModelRes covers both a full model and the short acknowledgement
// carrying only the new model id.
type createModelRes struct {
	model
	ModelID backendID `json:"model_id"`
}

type metric struct {
	ID          backendID `json:"id"`
	Identifier  string    `json:"identifier"`
	Key         string    `json:"key"`
	ValueFloat  *float64  `json:"value_float"`
	ValueBinary *string   `json:"value_binary"`
	Step        uint64    `json:"step"`
	Training    backendID `json:"training"`
	Reporter    backendID `json:"reporter"`
}

func (m metric) toObservation() metrics.Observation {
	o := metrics.Observation{
		ID:         string(m.ID),
		Identifier: m.Identifier,
		Key:        m.Key,
		Step:       m.Step,
		ReporterID: string(m.Reporter),
		TrainingID: string(m.Training),
		ValueFloat: m.ValueFloat,
	}
	if m.ValueBinary != nil {
		o.ValueBinary = []byte(*m.ValueBinary)
	}

	return o
}

func (sdk *flSDK) ListModels(ctx context.Context, token string) ([]fl.Model, error) {
	var ms []model
	if err := sdk.get(ctx, modelsEndpoint, token, &ms); err != nil {
		return nil, err
	}

	models := make([]fl.Model, len(ms))
	for i, m := range ms {
		models[i] = m.toModel()
	}

	return models, nil
}

func (sdk *flSDK) CreateModel(ctx context.Context, token string, m fl.Model, file fl.ModelFile) (fl.Model, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", m.Name); err != nil {
		return fl.Model{}, err
	}
	if err := w.WriteField("description", m.Description); err != nil {
		return fl.Model{}, err
	}
	name := file.Name
	if name == "" {
		name = defModelFile
	}
	fw, err := w.CreateFormFile(modelFileField, name)
	if err != nil {
		return fl.Model{}, err
	}
	if _, err := fw.Write(file.Data); err != nil {
		return fl.Model{}, err
	}
	if err := w.Close(); err != nil {
		return fl.Model{}, err
	}

	_, body, err := sdk.request(ctx, http.MethodPost, sdk.backendURL+modelsEndpoint, token, w.FormDataContentType(), &buf, http.StatusCreated)
	if err != nil {
		return fl.Model{}, err
	}

	var res createModelRes
	if err := json.Unmarshal(body, &res); err != nil {
		return fl.Model{}, err
	}
	if res.ID == "" && res.ModelID != "" {
		return sdk.GetModel(ctx, token, string(res.ModelID))
	}

	return res.toModel(), nil
}

func (sdk *flSDK) GetModel(ctx context.Context, token, id string) (fl.Model, error) {
	var m model
	if err := sdk.get(ctx, modelsEndpoint+url.PathEscape(id)+"/metadata/", token, &m); err != nil {
		return fl.Model{}, err
	}

	return m.toModel(), nil
}

func (sdk *flSDK) DownloadModel(ctx context.Context, token, id string) (fl.ModelFile, error) {
	header, body, err := sdk.request(ctx, http.MethodGet, sdk.backendURL+modelsEndpoint+url.PathEscape(id)+"/", token, "", http.NoBody, http.StatusOK)
	if err != nil {
		return fl.ModelFile{}, err
	}

	name := defModelFile + "-" + id
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	return fl.ModelFile{Name: name, Data: body}, nil
}

func (sdk *flSDK) ModelMetrics(ctx context.Context, token, modelID string) ([]metrics.Observation, error) {
	var ms []metric
	if err := sdk.get(ctx, modelsEndpoint+url.PathEscape(modelID)+"/metrics", token, &ms); err != nil {
		return nil, err
	}

	observations := make([]metrics.Observation, len(ms))
	for i, m := range ms {
		observations[i] = m.toObservation()
	}

	return observations, nil
}
