package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/absmach/fldash/dashboard/api"
	"github.com/absmach/fldash/dashboard/mocks"
	pkgerrors "github.com/absmach/fldash/pkg/errors"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	token      = "token"
	instanceID = "instance"
)

type testRequest struct {
	client      *http.Client
	method      string
	url         string
	contentType string
	token       string
	body        io.Reader
}

func (tr testRequest) make() (*http.Response, error) {
	req, err := http.NewRequest(tr.method, tr.url, tr.body)
	if err != nil {
		return nil, err
	}
	if tr.token != "" {
		req.Header.Set("Authorization", "Bearer "+tr.token)
	}
	if tr.contentType != "" {
		req.Header.Set("Content-Type", tr.contentType)
	}

	return tr.client.Do(req)
}

func newServer(t *testing.T) (*httptest.Server, *mocks.Service) {
	t.Helper()

	svc := new(mocks.Service)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(api.MakeHandler(svc, logger, instanceID))
	t.Cleanup(ts.Close)

	return ts, svc
}

func TestLogin(t *testing.T) {
	ts, svc := newServer(t)
	svc.On("Login", mock.Anything, "alice", "secret").Return(fl.Token{AccessToken: token}, nil)
	svc.On("Login", mock.Anything, "alice", "wrong").Return(fl.Token{}, pkgerrors.ErrUnauthorized)

	cases := []struct {
		desc        string
		body        string
		contentType string
		status      int
		errMsg      string
	}{
		{desc: "valid credentials", body: `{"username":"alice","password":"secret"}`, contentType: "application/json", status: http.StatusOK},
		{desc: "invalid credentials", body: `{"username":"alice","password":"wrong"}`, contentType: "application/json", status: http.StatusUnauthorized},
		{desc: "missing password", body: `{"username":"alice"}`, contentType: "application/json", status: http.StatusBadRequest, errMsg: "missing password"},
		{desc: "missing username", body: `{"password":"secret"}`, contentType: "application/json", status: http.StatusBadRequest},
		{desc: "malformed body", body: `{`, contentType: "application/json", status: http.StatusBadRequest},
		{desc: "wrong content type", body: `{}`, contentType: "text/plain", status: http.StatusUnsupportedMediaType},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := testRequest{
				client:      ts.Client(),
				method:      http.MethodPost,
				url:         ts.URL + "/auth/login",
				contentType: tc.contentType,
				body:        strings.NewReader(tc.body),
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			if tc.status == http.StatusOK {
				assert.Equal(t, token, body["token"])
			}
			if tc.errMsg != "" {
				assert.Contains(t, body["error"], tc.errMsg)
			}
		})
	}
}

func TestModelChart(t *testing.T) {
	ts, svc := newServer(t)
	chart := metrics.ChartData{
		Key:   "accuracy",
		Lines: []metrics.Line{{ID: "a", Label: "alice", Color: metrics.Palette[0], X: []uint64{1}, Y: []float64{0.5}}},
	}
	svc.On("ModelChart", mock.Anything, token, "7", "accuracy", metrics.AllParticipants{}).Return(chart, nil)
	svc.On("ModelChart", mock.Anything, token, "7", "accuracy", metrics.ServerMean{}).Return(chart, &metrics.DuplicateLineError{ID: metrics.ServerMeanID})
	svc.On("ModelChart", mock.Anything, token, "8", "accuracy", metrics.SingleParticipant{ParticipantID: "a", FallbackLabel: "a"}).Return(metrics.ChartData{}, pkgerrors.ErrNotFound)

	cases := []struct {
		desc   string
		url    string
		token  string
		status int
	}{
		{desc: "all participants", url: "/models/7/chart?key=accuracy", token: token, status: http.StatusOK},
		{desc: "duplicate line", url: "/models/7/chart?key=accuracy&selection=serverMean", token: token, status: http.StatusConflict},
		{desc: "unknown model", url: "/models/8/chart?key=accuracy&selection=a", token: token, status: http.StatusNotFound},
		{desc: "missing key", url: "/models/7/chart", token: token, status: http.StatusBadRequest},
		{desc: "missing token", url: "/models/7/chart?key=accuracy", status: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := testRequest{
				client: ts.Client(),
				method: http.MethodGet,
				url:    ts.URL + tc.url,
				token:  tc.token,
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)

			if tc.status == http.StatusOK {
				var body struct {
					ModelID   string         `json:"model_id"`
					Selection string         `json:"selection"`
					Key       string         `json:"key"`
					Lines     []metrics.Line `json:"lines"`
				}
				require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
				assert.Equal(t, "7", body.ModelID)
				assert.Equal(t, "all", body.Selection)
				assert.Equal(t, chart.Lines, body.Lines)
			}
		})
	}
}

func TestRenderModelChart(t *testing.T) {
	ts, svc := newServer(t)
	img := []byte("\x89PNG fake")
	svc.On("RenderModelChart", mock.Anything, token, "7", "loss", metrics.AllParticipants{}, 300, 200).Return(img, nil)
	svc.On("RenderModelChart", mock.Anything, token, "7", "f1", metrics.AllParticipants{}, 0, 0).Return([]byte(nil), pkgerrors.ErrNoData)

	cases := []struct {
		desc        string
		url         string
		status      int
		contentType string
	}{
		{desc: "render png", url: "/models/7/chart.png?key=loss&width=300&height=200", status: http.StatusOK, contentType: "image/png"},
		{desc: "no data", url: "/models/7/chart.png?key=f1", status: http.StatusNotFound, contentType: "application/json"},
		{desc: "invalid width", url: "/models/7/chart.png?key=loss&width=abc", status: http.StatusBadRequest, contentType: "application/json"},
		{desc: "too wide", url: fmt.Sprintf("/models/7/chart.png?key=loss&width=%d", 1<<20), status: http.StatusBadRequest, contentType: "application/json"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := testRequest{
				client: ts.Client(),
				method: http.MethodGet,
				url:    ts.URL + tc.url,
				token:  token,
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
			assert.Equal(t, tc.contentType, res.Header.Get("Content-Type"))

			if tc.status == http.StatusOK {
				data, err := io.ReadAll(res.Body)
				require.NoError(t, err)
				assert.Equal(t, img, data)
			}
		})
	}
}

func TestCreateTraining(t *testing.T) {
	ts, svc := newServer(t)
	svc.On("CreateTraining", mock.Anything, token, mock.MatchedBy(func(tr fl.Training) bool {
		return tr.ModelID == "7" && tr.TargetNumUpdates == 5
	})).Return(fl.Training{ID: "3", ModelID: "7", State: fl.Initial}, nil)
	svc.On("CreateTraining", mock.Anything, token, mock.MatchedBy(func(tr fl.Training) bool {
		return tr.ModelID == "8" && tr.AggregationMethod == fl.FedProx && len(tr.MetricNames) == 2 && len(tr.Participants) == 2
	})).Return(fl.Training{ID: "4", ModelID: "8", State: fl.Initial, AggregationMethod: fl.FedProx}, nil)

	cases := []struct {
		desc     string
		body     string
		status   int
		location string
	}{
		{desc: "create training", body: `{"model":"7","target_num_updates":5}`, status: http.StatusCreated, location: "/trainings/3"},
		{desc: "missing model", body: `{"target_num_updates":5}`, status: http.StatusBadRequest},
		{
			desc:     "create training with clients",
			body:     `{"model":"8","metric_names":["accuracy","loss"],"aggregation_method":"FedProx","participants":["1","2"]}`,
			status:   http.StatusCreated,
			location: "/trainings/4",
		},
		{desc: "invalid state", body: `{"model":"7","state":"PAUSED"}`, status: http.StatusBadRequest},
		{desc: "unknown aggregation method", body: `{"model":"7","aggregation_method":"FedSGD"}`, status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := testRequest{
				client:      ts.Client(),
				method:      http.MethodPost,
				url:         ts.URL + "/trainings",
				contentType: "application/json",
				token:       token,
				body:        strings.NewReader(tc.body),
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
			assert.Equal(t, tc.location, res.Header.Get("Location"))
		})
	}
}

func TestListEndpoints(t *testing.T) {
	ts, svc := newServer(t)
	svc.On("ListModels", mock.Anything, token, uint64(0), uint64(10)).Return(fl.ModelPage{Limit: 10, Total: 1, Models: []fl.Model{{ID: "7"}}}, nil)
	svc.On("ListTrainings", mock.Anything, token, uint64(5), uint64(100)).Return(fl.TrainingPage{Offset: 5, Limit: 100}, nil)
	svc.On("WatchedTrainings", mock.Anything, uint64(0), uint64(100)).Return(fl.TrainingPage{Limit: 100}, nil)
	svc.On("MetricKeys", mock.Anything, token, "7").Return([]string{"accuracy"}, nil)
	svc.On("TrainingParticipants", mock.Anything, token, "3").Return([]metrics.Participant(nil), nil)
	svc.On("ParticipantLocations", mock.Anything, token, "3").Return(fl.Locations{"1": {Lat: 1, Lng: 2}}, nil)
	svc.On("ListUsers", mock.Anything, token).Return([]fl.User{{ID: "1"}}, nil)
	svc.On("Snapshots", mock.Anything, uint64(0), uint64(20)).Return(fl.SnapshotPage{Limit: 20}, nil)

	cases := []struct {
		desc   string
		url    string
		token  string
		status int
	}{
		{desc: "list models", url: "/models?limit=10", token: token, status: http.StatusOK},
		{desc: "list models over limit", url: "/models?limit=1000", token: token, status: http.StatusBadRequest},
		{desc: "list trainings", url: "/trainings?offset=5", token: token, status: http.StatusOK},
		{desc: "watched trainings", url: "/watched", token: token, status: http.StatusOK},
		{desc: "metric keys", url: "/models/7/keys", token: token, status: http.StatusOK},
		{desc: "training participants", url: "/trainings/3/participants", token: token, status: http.StatusOK},
		{desc: "participant locations", url: "/trainings/3/locations", token: token, status: http.StatusOK},
		{desc: "list users", url: "/users", token: token, status: http.StatusOK},
		{desc: "list users without token", url: "/users", status: http.StatusUnauthorized},
		{desc: "list snapshots", url: "/snapshots?limit=20", token: token, status: http.StatusOK},
		{desc: "list models without token", url: "/models", status: http.StatusUnauthorized},
		{desc: "health", url: "/health", status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := testRequest{
				client: ts.Client(),
				method: http.MethodGet,
				url:    ts.URL + tc.url,
				token:  tc.token,
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
		})
	}
}

func TestCreateModel(t *testing.T) {
	ts, svc := newServer(t)
	svc.On("CreateModel", mock.Anything, token, fl.Model{Name: "mnist", Description: "cnn"}, fl.ModelFile{Name: "mnist.pt", Data: []byte("weights")}).
		Return(fl.Model{ID: "9", Name: "mnist"}, nil)

	form := func(withFile bool) (io.Reader, string) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		_ = w.WriteField("name", "mnist")
		_ = w.WriteField("description", "cnn")
		if withFile {
			fw, _ := w.CreateFormFile("model_file", "mnist.pt")
			_, _ = fw.Write([]byte("weights"))
		}
		_ = w.Close()

		return &buf, w.FormDataContentType()
	}

	withFile, withFileType := form(true)
	withoutFile, withoutFileType := form(false)

	cases := []struct {
		desc        string
		body        io.Reader
		contentType string
		status      int
		location    string
	}{
		{desc: "upload model", body: withFile, contentType: withFileType, status: http.StatusCreated, location: "/models/9"},
		{desc: "missing model file", body: withoutFile, contentType: withoutFileType, status: http.StatusBadRequest},
		{desc: "json body", body: strings.NewReader(`{"name":"mnist"}`), contentType: "application/json", status: http.StatusUnsupportedMediaType},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := testRequest{
				client:      ts.Client(),
				method:      http.MethodPost,
				url:         ts.URL + "/models",
				contentType: tc.contentType,
				token:       token,
				body:        tc.body,
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
			assert.Equal(t, tc.location, res.Header.Get("Location"))
		})
	}
}

func TestDownloadModel(t *testing.T) {
	ts, svc := newServer(t)
	svc.On("DownloadModel", mock.Anything, token, "7").Return(fl.ModelFile{Name: "mnist.pt", Data: []byte{1, 2, 3}}, nil)
	svc.On("DownloadModel", mock.Anything, token, "8").Return(fl.ModelFile{}, pkgerrors.ErrNotFound)

	cases := []struct {
		desc        string
		url         string
		status      int
		contentType string
	}{
		{desc: "download model", url: "/models/7/file", status: http.StatusOK, contentType: "application/octet-stream"},
		{desc: "missing model", url: "/models/8/file", status: http.StatusNotFound, contentType: "application/json"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := testRequest{
				client: ts.Client(),
				method: http.MethodGet,
				url:    ts.URL + tc.url,
				token:  token,
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
			assert.Equal(t, tc.contentType, res.Header.Get("Content-Type"))

			if tc.status == http.StatusOK {
				assert.Equal(t, `attachment; filename=mnist.pt`, res.Header.Get("Content-Disposition"))
				data, err := io.ReadAll(res.Body)
				require.NoError(t, err)
				assert.Equal(t, []byte{1, 2, 3}, data)
			}
		})
	}
}

func TestTrainingActions(t *testing.T) {
	ts, svc := newServer(t)
	svc.On("StartTraining", mock.Anything, token, "3").Return(fl.Training{ID: "3", State: fl.Ongoing}, nil)
	svc.On("StartTraining", mock.Anything, token, "4").Return(fl.Training{}, pkgerrors.ErrNotFound)
	svc.On("DeleteTraining", mock.Anything, token, "3").Return(nil)
	svc.On("DeleteTraining", mock.Anything, token, "4").Return(pkgerrors.ErrBackend)

	cases := []struct {
		desc   string
		method string
		url    string
		token  string
		status int
	}{
		{desc: "start training", method: http.MethodPost, url: "/trainings/3/start", token: token, status: http.StatusOK},
		{desc: "start missing training", method: http.MethodPost, url: "/trainings/4/start", token: token, status: http.StatusNotFound},
		{desc: "start without token", method: http.MethodPost, url: "/trainings/3/start", status: http.StatusUnauthorized},
		{desc: "delete training", method: http.MethodDelete, url: "/trainings/3", token: token, status: http.StatusNoContent},
		{desc: "delete with backend down", method: http.MethodDelete, url: "/trainings/4", token: token, status: http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := testRequest{
				client: ts.Client(),
				method: tc.method,
				url:    ts.URL + tc.url,
				token:  tc.token,
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)

			if tc.status == http.StatusOK {
				var body fl.Training
				require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
				assert.Equal(t, fl.Ongoing, body.State)
			}
		})
	}
}

func TestInference(t *testing.T) {
	ts, svc := newServer(t)
	svc.On("Inference", mock.Anything, token, map[string]any{"model_id": "7"}).Return(json.RawMessage(`{"inference":[[0.2]]}`), nil)

	cases := []struct {
		desc        string
		body        string
		contentType string
		status      int
		response    string
	}{
		{desc: "forward request", body: `{"model_id":"7"}`, contentType: "application/json", status: http.StatusOK, response: `{"inference":[[0.2]]}`},
		{desc: "empty request", body: `{}`, contentType: "application/json", status: http.StatusBadRequest},
		{desc: "wrong content type", body: `{"model_id":"7"}`, contentType: "text/plain", status: http.StatusUnsupportedMediaType},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := testRequest{
				client:      ts.Client(),
				method:      http.MethodPost,
				url:         ts.URL + "/inference",
				contentType: tc.contentType,
				token:       token,
				body:        strings.NewReader(tc.body),
			}.make()
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)

			if tc.response != "" {
				data, err := io.ReadAll(res.Body)
				require.NoError(t, err)
				assert.JSONEq(t, tc.response, string(data))
			}
		})
	}
}
