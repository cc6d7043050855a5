package sdk_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/absmach/fldash/pkg/errors"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validToken = sdk.BasicToken("alice", "secret")

type backend struct {
	*httptest.Server
	createdTraining map[string]any
	uploadedName    string
	uploadedFile    []byte
}

func newBackend(t *testing.T) *backend {
	t.Helper()

	b := &backend{}
	mux := http.NewServeMux()
	authorized := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Basic "+validToken {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("GET /api/users/myself/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"username":"alice","first_name":"Alice","last_name":"Liddell","actor":true,"client":false,"message_endpoint":"http://alice:8101"}`))
	}))
	mux.HandleFunc("GET /api/users/{id}/", authorized(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "404" {
			w.WriteHeader(http.StatusNotFound)

			return
		}
		_, _ = w.Write([]byte(`{"id":` + r.PathValue("id") + `,"username":"bob","first_name":"Bob","client":true,"color_id":3,"latitude":45.2,"longitude":19.8}`))
	}))
	mux.HandleFunc("GET /api/users/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"username":"alice","actor":true},{"id":"2","username":"bob","client":true}]`))
	}))
	mux.HandleFunc("GET /api/models/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"mnist","owner":2,"round":4},{"id":"2","name":"cifar","round":0}]`))
	}))
	mux.HandleFunc("POST /api/models/", authorized(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		f, _, err := r.FormFile("model_file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		defer f.Close()
		b.uploadedFile, _ = io.ReadAll(f)
		b.uploadedName = r.FormValue("name")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"detail":"Model Upload Accepted","model_id":9}`))
	}))
	mux.HandleFunc("GET /api/models/{id}/metadata/", authorized(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":` + r.PathValue("id") + `,"name":"` + b.uploadedName + `","description":"cnn","owner":1,"round":0}`))
	}))
	mux.HandleFunc("GET /api/models/{id}/", authorized(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "2" {
			w.Header().Set("Content-Disposition", `attachment; filename="cifar.pt"`)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0x80, 0x02, 0x7d})
	}))
	mux.HandleFunc("GET /api/models/{id}/metrics", authorized(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"identifier":"m1","key":"accuracy","value_float":0.5,"value_binary":null,"step":1,"training":3,"reporter":7},
			{"id":2,"identifier":"m2","key":"loss","value_float":null,"value_binary":"AAE=","step":1,"training":3,"reporter":"8"}
		]`))
	}))
	mux.HandleFunc("GET /api/trainings/{id}/", authorized(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "404" {
			w.WriteHeader(http.StatusNotFound)

			return
		}
		_, _ = w.Write([]byte(`{"id":` + r.PathValue("id") + `,"actor":1,"model":1,"state":"O","target_num_updates":5,"participants":[7,8],` +
			`"aggregation_method":"FedProx","uncertainty_method":"NONE","locked":true,"last_update":"2024-05-01T10:00:00Z"}`))
	}))
	mux.HandleFunc("GET /api/trainings/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":3,"model":1,"state":"I"},{"id":4,"model":2,"state":"C"}]`))
	}))
	mux.HandleFunc("POST /api/trainings/", authorized(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		if req["model_id"] == "500" {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}
		b.createdTraining = req
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"detail":"Training created successfully!","training_id":5}`))
	}))
	mux.HandleFunc("POST /api/trainings/{id}/start/", authorized(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "404" {
			w.WriteHeader(http.StatusNotFound)

			return
		}
		_, _ = w.Write([]byte(`{"detail":"Training started successfully!"}`))
	}))
	mux.HandleFunc("DELETE /api/trainings/{id}/", authorized(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "404" {
			w.WriteHeader(http.StatusNotFound)

			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /api/inference/", authorized(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		_, _ = w.Write([]byte(`{"inference":[[0.1,0.9]],"uncertainty":{}}`))
	}))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)

	return b
}

func TestBasicToken(t *testing.T) {
	assert.Equal(t, "YWxpY2U6c2VjcmV0", sdk.BasicToken("alice", "secret"))
}

func TestLogin(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})

	cases := []struct {
		desc     string
		password string
		token    string
		err      error
	}{
		{desc: "valid credentials", password: "secret", token: validToken},
		{desc: "invalid credentials", password: "wrong", err: pkgerrors.ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			tkn, err := s.Login(context.Background(), "alice", tc.password)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.token, tkn.AccessToken)
		})
	}
}

func TestCurrentUser(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})

	u, err := s.CurrentUser(context.Background(), validToken)
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, "Liddell", u.LastName)
	assert.True(t, u.Actor)
	assert.Equal(t, "http://alice:8101", u.MessageEndpoint)
}

func TestGetUser(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL + "/"})

	cases := []struct {
		desc  string
		token string
		id    string
		err   error
	}{
		{desc: "existing user", token: validToken, id: "7"},
		{desc: "missing user", token: validToken, id: "404", err: pkgerrors.ErrNotFound},
		{desc: "invalid token", token: "invalid", id: "7", err: pkgerrors.ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			u, err := s.GetUser(context.Background(), tc.token, tc.id)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, "7", u.ID)
			assert.Equal(t, "bob", u.Username)
			assert.Equal(t, "Bob", u.FirstName)
			assert.True(t, u.Client)
			require.NotNil(t, u.ColorID)
			assert.Equal(t, 3, *u.ColorID)
			require.NotNil(t, u.Latitude)
			assert.InDelta(t, 45.2, *u.Latitude, 1e-9)
		})
	}
}

func TestListUsers(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})

	users, err := s.ListUsers(context.Background(), validToken)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "1", users[0].ID)
	assert.True(t, users[0].Actor)
	assert.Equal(t, "2", users[1].ID)
	assert.True(t, users[1].Client)
}

func TestModels(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})
	ctx := context.Background()

	models, err := s.ListModels(ctx, validToken)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "1", models[0].ID)
	assert.Equal(t, "2", models[0].Owner)
	assert.Equal(t, uint64(4), models[0].Round)
	assert.Equal(t, "2", models[1].ID)

	created, err := s.CreateModel(ctx, validToken, fl.Model{Name: "resnet", Description: "cnn"}, fl.ModelFile{Name: "resnet.pt", Data: []byte("weights")})
	require.NoError(t, err)
	assert.Equal(t, "9", created.ID)
	assert.Equal(t, "resnet", created.Name)
	assert.Equal(t, "cnn", created.Description)
	assert.Equal(t, []byte("weights"), srv.uploadedFile)

	m, err := s.GetModel(ctx, validToken, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", m.ID)
	assert.Equal(t, "1", m.Owner)
}

func TestDownloadModel(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})

	cases := []struct {
		desc  string
		id    string
		token string
		name  string
		err   error
	}{
		{desc: "file name from content disposition", id: "2", token: validToken, name: "cifar.pt"},
		{desc: "file name from model id", id: "1", token: validToken, name: "model-1"},
		{desc: "invalid token", id: "1", token: "invalid", err: pkgerrors.ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			f, err := s.DownloadModel(context.Background(), tc.token, tc.id)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, f.Name)
			assert.Equal(t, []byte{0x80, 0x02, 0x7d}, f.Data)
		})
	}
}

func TestModelMetrics(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})

	observations, err := s.ModelMetrics(context.Background(), validToken, "1")
	require.NoError(t, err)
	require.Len(t, observations, 2)

	assert.Equal(t, "accuracy", observations[0].Key)
	assert.Equal(t, "7", observations[0].ReporterID)
	assert.Equal(t, "3", observations[0].TrainingID)
	require.NotNil(t, observations[0].ValueFloat)
	assert.InDelta(t, 0.5, *observations[0].ValueFloat, 1e-9)

	assert.Equal(t, "8", observations[1].ReporterID)
	assert.Nil(t, observations[1].ValueFloat)
	assert.Equal(t, []byte("AAE="), observations[1].ValueBinary)
}

func TestGetTraining(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})

	tr, err := s.GetTraining(context.Background(), validToken, "5")
	require.NoError(t, err)
	assert.Equal(t, "5", tr.ID)
	assert.Equal(t, "1", tr.Actor)
	assert.Equal(t, "1", tr.ModelID)
	assert.Equal(t, fl.Ongoing, tr.State)
	assert.Equal(t, uint64(5), tr.TargetNumUpdates)
	assert.Equal(t, []string{"7", "8"}, tr.Participants)
	assert.Equal(t, fl.FedProx, tr.AggregationMethod)
	assert.Equal(t, "NONE", tr.UncertaintyMethod)
	assert.True(t, tr.Locked)
	assert.Equal(t, 2024, tr.LastUpdate.Year())
}

func TestListTrainings(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})

	trainings, err := s.ListTrainings(context.Background(), validToken)
	require.NoError(t, err)
	require.Len(t, trainings, 2)
	assert.Equal(t, fl.Initial, trainings[0].State)
	assert.Equal(t, fl.Completed, trainings[1].State)
}

func TestCreateTraining(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})

	cases := []struct {
		desc     string
		training fl.Training
		err      error
	}{
		{
			desc: "create training",
			training: fl.Training{
				ModelID:           "1",
				TargetNumUpdates:  10,
				MetricNames:       []string{"accuracy", "f1"},
				AggregationMethod: fl.FedDC,
				Participants:      []string{"7", "8"},
			},
		},
		{desc: "backend failure", training: fl.Training{ModelID: "500"}, err: pkgerrors.ErrBackend},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			tr, err := s.CreateTraining(context.Background(), validToken, tc.training)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, "5", tr.ID)
			assert.Equal(t, fl.Ongoing, tr.State)

			assert.Equal(t, "1", srv.createdTraining["model_id"])
			assert.InDelta(t, 10, srv.createdTraining["target_num_updates"], 1e-9)
			assert.Equal(t, []any{"accuracy", "f1"}, srv.createdTraining["metric_names"])
			assert.Equal(t, "FedDC", srv.createdTraining["aggregation_method"])
			assert.Equal(t, []any{"7", "8"}, srv.createdTraining["clients"])
		})
	}
}

func TestStartDeleteTraining(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})
	ctx := context.Background()

	cases := []struct {
		desc  string
		id    string
		token string
		err   error
	}{
		{desc: "existing training", id: "5", token: validToken},
		{desc: "missing training", id: "404", token: validToken, err: pkgerrors.ErrNotFound},
		{desc: "invalid token", id: "5", token: "invalid", err: pkgerrors.ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			err := s.StartTraining(ctx, tc.token, tc.id)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			} else {
				assert.NoError(t, err)
			}

			err = s.DeleteTraining(ctx, tc.token, tc.id)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInference(t *testing.T) {
	srv := newBackend(t)
	s := sdk.NewSDK(sdk.Config{BackendURL: srv.URL})

	res, err := s.Inference(context.Background(), validToken, map[string]any{"model_id": "1", "model_input": []float64{0.3}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"inference":[[0.1,0.9]],"uncertainty":{}}`, string(res))
}

func TestBackendUnreachable(t *testing.T) {
	srv := newBackend(t)
	url := srv.URL
	srv.Close()

	s := sdk.NewSDK(sdk.Config{BackendURL: url})
	_, err := s.ListModels(context.Background(), validToken)
	assert.ErrorIs(t, err, pkgerrors.ErrBackend)
}
