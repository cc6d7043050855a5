package sdk

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/absmach/fldash/pkg/errors"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	CTJSON string = "application/json"

	defAuthScheme = "Basic"
	defTimeout    = 30 * time.Second
)

// SDK is a client of the federated-learning backend REST API. Every call
// that takes a token sends it in the Authorization header. The backend
// authenticates with basic credentials, so a token is the base64 encoded
// "username:password" pair returned by Login.
type SDK interface {
	// Login verifies credentials against the backend and returns the token
	// used by every other call.
	//
	// example:
	//  tkn, _ := sdk.Login(ctx, "alice", "secret")
	//  fmt.Println(tkn.AccessToken)
	Login(ctx context.Context, username, password string) (fl.Token, error)

	// CurrentUser returns the user owning the token.
	CurrentUser(ctx context.Context, token string) (fl.User, error)

	// GetUser gets a user by id.
	//
	// example:
	//  user, _ := sdk.GetUser(ctx, token, "3")
	//  fmt.Println(user.Username)
	GetUser(ctx context.Context, token, id string) (fl.User, error)

	// ListUsers lists every user known to the backend.
	ListUsers(ctx context.Context, token string) ([]fl.User, error)

	// ListModels lists all models visible to the token owner.
	ListModels(ctx context.Context, token string) ([]fl.Model, error)

	// CreateModel uploads a serialized model together with its metadata.
	//
	// example:
	//  model := fl.Model{
	//    Name: "mnist-cnn",
	//    Description: "small cnn",
	//  }
	//  file := fl.ModelFile{Name: "model.pt", Data: data}
	//  model, _ := sdk.CreateModel(ctx, token, model, file)
	//  fmt.Println(model.ID)
	CreateModel(ctx context.Context, token string, m fl.Model, file fl.ModelFile) (fl.Model, error)

	// GetModel gets the metadata of a model.
	GetModel(ctx context.Context, token, id string) (fl.Model, error)

	// DownloadModel downloads the serialized model.
	DownloadModel(ctx context.Context, token, id string) (fl.ModelFile, error)

	// ModelMetrics lists every metric observation reported for a model.
	//
	// example:
	//  observations, _ := sdk.ModelMetrics(ctx, token, "7")
	//  fmt.Println(metrics.DiscoverKeys(observations))
	ModelMetrics(ctx context.Context, token, modelID string) ([]metrics.Observation, error)

	// ListTrainings lists all trainings visible to the token owner.
	ListTrainings(ctx context.Context, token string) ([]fl.Training, error)

	// CreateTraining creates a new training for a model. Participants are
	// sent as the training clients.
	//
	// example:
	//  training := fl.Training{
	//    ModelID: "7",
	//    TargetNumUpdates: 10,
	//    MetricNames: []string{"accuracy"},
	//    AggregationMethod: fl.FedAvg,
	//    Participants: []string{"3", "4"},
	//  }
	//  training, _ := sdk.CreateTraining(ctx, token, training)
	CreateTraining(ctx context.Context, token string, t fl.Training) (fl.Training, error)

	// GetTraining gets a training by id.
	GetTraining(ctx context.Context, token, id string) (fl.Training, error)

	// StartTraining asks the backend to start an initial training.
	StartTraining(ctx context.Context, token, id string) error

	// DeleteTraining deletes a training.
	DeleteTraining(ctx context.Context, token, id string) error

	// Inference forwards an inference request and returns the backend
	// response unchanged.
	Inference(ctx context.Context, token string, req map[string]any) (json.RawMessage, error)
}

type flSDK struct {
	backendURL string
	authScheme string
	client     *http.Client
}

type Config struct {
	BackendURL      string
	AuthScheme      string
	TLSVerification bool
	Timeout         time.Duration
}

func NewSDK(cfg Config) SDK {
	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = defAuthScheme
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defTimeout
	}

	return &flSDK{
		backendURL: strings.TrimSuffix(cfg.BackendURL, "/"),
		authScheme: scheme,
		client: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(&http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			}),
		},
	}
}

// BasicToken encodes credentials the way the backend expects them.
func BasicToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

func (sdk *flSDK) processRequest(ctx context.Context, method, reqURL, token string, data []byte, expectedRespCode int) ([]byte, error) {
	_, body, err := sdk.request(ctx, method, reqURL, token, CTJSON, bytes.NewReader(data), expectedRespCode)

	return body, err
}

func (sdk *flSDK) request(ctx context.Context, method, reqURL, token, contentType string, data io.Reader, expectedRespCode int) (http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, data)
	if err != nil {
		return nil, []byte{}, err
	}

	// An empty content type marks a raw download.
	accept := "*/*"
	if contentType != "" {
		req.Header.Add("Content-Type", contentType)
		accept = CTJSON
	}
	req.Header.Add("Accept", accept)
	if token != "" {
		req.Header.Set("Authorization", sdk.authScheme+" "+token)
	}

	resp, err := sdk.client.Do(req)
	if err != nil {
		return nil, []byte{}, fmt.Errorf("%w: %w", errors.ErrBackend, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, []byte{}, err
	}

	switch {
	case resp.StatusCode == expectedRespCode:
		return resp.Header, body, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, []byte{}, fmt.Errorf("%w: unexpected response code: %d", errors.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, []byte{}, fmt.Errorf("%w: %s %s", errors.ErrNotFound, method, req.URL.Path)
	default:
		return nil, []byte{}, fmt.Errorf("%w: unexpected response code: %d", errors.ErrBackend, resp.StatusCode)
	}
}

func (sdk *flSDK) get(ctx context.Context, path, token string, v any) error {
	body, err := sdk.processRequest(ctx, http.MethodGet, sdk.backendURL+path, token, nil, http.StatusOK)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, v)
}

func (sdk *flSDK) post(ctx context.Context, path, token string, in, out any, expectedRespCode int) error {
	var data []byte
	if in != nil {
		var err error
		if data, err = json.Marshal(in); err != nil {
			return err
		}
	}

	body, err := sdk.processRequest(ctx, http.MethodPost, sdk.backendURL+path, token, data, expectedRespCode)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	return json.Unmarshal(body, out)
}

// backendID accepts both numeric and string ids.
type backendID string

func (id *backendID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = backendID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = backendID(n.String())

	return nil
}
