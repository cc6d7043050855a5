package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/absmach/fldash"
	"github.com/absmach/fldash/cli"
	"github.com/absmach/fldash/dashboard/mocks"
	pkgerrors "github.com/absmach/fldash/pkg/errors"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/absmach/fldash/pkg/mqtt"
	mqttmocks "github.com/absmach/fldash/pkg/mqtt/mocks"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const token = "token"

func setup(t *testing.T, tkn string) (*mocks.Service, string) {
	t.Helper()

	svc := new(mocks.Service)
	path := filepath.Join(t.TempDir(), "fldash", "config.toml")
	cfg := fldash.DefaultConfig()
	cfg.Auth.Token = tkn
	cli.SetService(svc)
	cli.SetConfig(path, cfg)

	return svc, path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()

	root := &cobra.Command{Use: "fldash-cli"}
	root.AddCommand(cmd)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())

	return out.String()
}

func TestLoginCmd(t *testing.T) {
	svc, path := setup(t, "")
	svc.On("Login", mock.Anything, "alice", "secret").Return(fl.Token{AccessToken: token}, nil)
	svc.On("Login", mock.Anything, "alice", "wrong").Return(fl.Token{}, pkgerrors.ErrUnauthorized)

	out := execute(t, cli.NewLoginCmd(), "login", "--username", "alice", "--password", "wrong")
	assert.Contains(t, out, "failed to log in")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	out = execute(t, cli.NewLoginCmd(), "login", "--username", "alice", "--password", "secret")
	assert.Contains(t, out, "Successfully logged in as alice")

	cfg, err := fldash.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.Auth.Username)
	assert.Equal(t, token, cfg.Auth.Token)

	out = execute(t, cli.NewLogoutCmd(), "logout")
	assert.Contains(t, out, "ok")
	cfg, err = fldash.LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.Token)
}

func TestModelsCmd(t *testing.T) {
	svc, _ := setup(t, token)
	svc.On("ListModels", mock.Anything, token, uint64(0), uint64(10)).Return(fl.ModelPage{Limit: 10, Total: 1, Models: []fl.Model{{ID: "7", Name: "mnist"}}}, nil)
	svc.On("GetModel", mock.Anything, token, "7").Return(fl.Model{ID: "7", Name: "mnist"}, nil)
	svc.On("GetModel", mock.Anything, token, "8").Return(fl.Model{}, pkgerrors.ErrNotFound)
	dir := t.TempDir()
	weights := filepath.Join(dir, "cnn.pt")
	require.NoError(t, os.WriteFile(weights, []byte("weights"), 0o600))
	svc.On("CreateModel", mock.Anything, token, fl.Model{Name: "cnn", Description: "digits"}, fl.ModelFile{Name: "cnn.pt", Data: []byte("weights")}).Return(fl.Model{ID: "9", Name: "cnn"}, nil)

	cases := []struct {
		desc string
		args []string
		out  string
	}{
		{desc: "list models", args: []string{"models", "list"}, out: `"mnist"`},
		{desc: "view model", args: []string{"models", "view", "7"}, out: `"7"`},
		{desc: "view unknown model", args: []string{"models", "view", "8"}, out: "not found"},
		{desc: "view without id", args: []string{"models", "view"}, out: "usage: view <id>"},
		{desc: "create model", args: []string{"models", "create", "cnn", "--description", "digits", "--file", weights}, out: `"9"`},
		{desc: "create model without file", args: []string{"models", "create", "cnn"}, out: "--file <path>"},
		{desc: "create model from missing file", args: []string{"models", "create", "cnn", "--file", filepath.Join(dir, "missing.pt")}, out: "no such file"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			out := execute(t, cli.NewModelsCmd(), tc.args...)
			assert.Contains(t, out, tc.out)
		})
	}
}

func TestDownloadModelCmd(t *testing.T) {
	svc, _ := setup(t, token)
	svc.On("DownloadModel", mock.Anything, token, "7").Return(fl.ModelFile{Name: "mnist.pt", Data: []byte("weights")}, nil)
	svc.On("DownloadModel", mock.Anything, token, "8").Return(fl.ModelFile{}, pkgerrors.ErrNotFound)

	path := filepath.Join(t.TempDir(), "out.pt")
	out := execute(t, cli.NewModelsCmd(), "models", "download", "7", "--output", path)
	assert.Contains(t, out, "Model written to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("weights"), data)

	out = execute(t, cli.NewModelsCmd(), "models", "download", "8", "--output", path)
	assert.Contains(t, out, "not found")
}

func TestNotLoggedIn(t *testing.T) {
	svc, _ := setup(t, "")

	out := execute(t, cli.NewModelsCmd(), "models", "list")
	assert.Contains(t, out, "not logged in")
	svc.AssertNotCalled(t, "ListModels", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTrainingsCmd(t *testing.T) {
	svc, _ := setup(t, token)
	svc.On("ListTrainings", mock.Anything, token, uint64(0), uint64(10)).Return(fl.TrainingPage{Limit: 10, Total: 1, Trainings: []fl.Training{{ID: "3", State: fl.Ongoing}}}, nil)
	svc.On("WatchedTrainings", mock.Anything, uint64(0), uint64(10)).Return(fl.TrainingPage{Limit: 10, Total: 1, Trainings: []fl.Training{{ID: "4", State: fl.SwagRound}}}, nil)
	svc.On("CreateTraining", mock.Anything, token, fl.Training{ModelID: "7", State: fl.Initial, TargetNumUpdates: 5, AggregationMethod: fl.FedAvg}).Return(fl.Training{ID: "5", ModelID: "7", State: fl.Initial}, nil)
	svc.On("CreateTraining", mock.Anything, token, fl.Training{
		ModelID:           "8",
		State:             fl.Initial,
		TargetNumUpdates:  3,
		AggregationMethod: fl.FedProx,
		MetricNames:       []string{"accuracy", "loss"},
		Participants:      []string{"alice", "bob"},
	}).Return(fl.Training{ID: "6", ModelID: "8", State: fl.Initial}, nil)
	svc.On("StartTraining", mock.Anything, token, "5").Return(fl.Training{ID: "5", State: fl.Ongoing}, nil)
	svc.On("DeleteTraining", mock.Anything, token, "5").Return(nil)
	svc.On("DeleteTraining", mock.Anything, token, "9").Return(pkgerrors.ErrNotFound)
	svc.On("TrainingParticipants", mock.Anything, token, "3").Return([]metrics.Participant{{ID: "a", Username: "alice", Color: metrics.Palette[0]}}, nil)
	svc.On("ParticipantLocations", mock.Anything, token, "3").Return(fl.Locations{"alice": {Lat: 44.8, Lng: 20.4}}, nil)

	cases := []struct {
		desc string
		args []string
		out  string
	}{
		{desc: "list trainings", args: []string{"trainings", "list"}, out: `"ONGOING"`},
		{desc: "list watched trainings", args: []string{"trainings", "list", "--watched"}, out: `"SWAG_ROUND"`},
		{desc: "create training", args: []string{"trainings", "create", "7", "--target-updates", "5"}, out: `"5"`},
		{
			desc: "create training with options",
			args: []string{"trainings", "create", "8", "-t", "3", "--aggregation", "FedProx", "--metrics", "accuracy,loss", "--clients", "alice,bob"},
			out:  `"6"`,
		},
		{desc: "create training with unknown aggregation", args: []string{"trainings", "create", "7", "--aggregation", "FedSGD"}, out: "aggregation method"},
		{desc: "start training", args: []string{"trainings", "start", "5"}, out: `"ONGOING"`},
		{desc: "delete training", args: []string{"trainings", "delete", "5"}, out: "ok"},
		{desc: "delete unknown training", args: []string{"trainings", "delete", "9"}, out: "not found"},
		{desc: "delete without id", args: []string{"trainings", "delete"}, out: "usage: delete <id>"},
		{desc: "training participants", args: []string{"trainings", "participants", "3"}, out: `"alice"`},
		{desc: "participant locations", args: []string{"trainings", "locations", "3"}, out: `"lat"`},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			out := execute(t, cli.NewTrainingsCmd(), tc.args...)
			assert.Contains(t, out, tc.out)
		})
	}
}

func TestMetricsCmd(t *testing.T) {
	svc, _ := setup(t, token)
	chart := metrics.ChartData{
		Key:   "accuracy",
		Lines: []metrics.Line{{ID: metrics.ServerMeanID, Label: metrics.ServerMeanLabel, Color: metrics.ServerMeanColor, X: []uint64{1}, Y: []float64{0.5}}},
	}
	svc.On("MetricKeys", mock.Anything, token, "7").Return([]string{"accuracy", "loss"}, nil)
	svc.On("ModelChart", mock.Anything, token, "7", "accuracy", metrics.ServerMean{}).Return(chart, nil)
	svc.On("RenderModelChart", mock.Anything, token, "7", "accuracy", metrics.AllParticipants{}, 300, 200).Return([]byte("\x89PNG"), nil)

	out := execute(t, cli.NewMetricsCmd(), "metrics", "keys", "7")
	assert.Contains(t, out, `"loss"`)

	out = execute(t, cli.NewMetricsCmd(), "metrics", "chart", "7", "accuracy", "--selection", "serverMean")
	assert.Contains(t, out, metrics.ServerMeanLabel)

	file := filepath.Join(t.TempDir(), "chart.png")
	out = execute(t, cli.NewMetricsCmd(), "metrics", "chart", "7", "accuracy", "--output", file, "--width", "300", "--height", "200")
	assert.Contains(t, out, "Chart written to")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data)
}

func TestWatchCmd(t *testing.T) {
	setup(t, token)

	event := map[string]any{"training_id": "3", "from": "INITIAL", "to": "ONGOING"}

	cases := []struct {
		desc  string
		args  []string
		topic string
	}{
		{desc: "watch every training", args: []string{"trainings", "watch", "--count", "1"}, topic: "fl/trainings/+/state"},
		{desc: "watch one training", args: []string{"trainings", "watch", "3", "--count", "1"}, topic: "fl/trainings/3/state"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			ps := new(mqttmocks.PubSub)
			ps.On("Subscribe", mock.Anything, tc.topic, mock.Anything).Run(func(args mock.Arguments) {
				h := args.Get(2).(mqtt.Handler)
				require.NoError(t, h(tc.topic, event))
			}).Return(nil)
			ps.On("Unsubscribe", mock.Anything, tc.topic).Return(nil)
			ps.On("Disconnect", mock.Anything).Return(nil)
			cli.SetSubscriber(func() (mqtt.PubSub, error) { return ps, nil })

			out := execute(t, cli.NewTrainingsCmd(), tc.args...)
			assert.Contains(t, out, "Watching "+tc.topic)
			assert.Contains(t, out, `"ONGOING"`)
			ps.AssertExpectations(t)
		})
	}
}

func TestWatchCmdWithoutBroker(t *testing.T) {
	setup(t, token)
	cli.SetSubscriber(nil)

	out := execute(t, cli.NewTrainingsCmd(), "trainings", "watch")
	assert.Contains(t, out, "no MQTT broker configured")
}

func TestUsersCmd(t *testing.T) {
	svc, _ := setup(t, token)
	svc.On("ListUsers", mock.Anything, token).Return([]fl.User{{ID: "1", Username: "alice"}, {ID: "2", Username: "bob"}}, nil)

	out := execute(t, cli.NewUsersCmd(), "users", "list")
	assert.Contains(t, out, `"alice"`)
	assert.Contains(t, out, `"bob"`)
}

func TestSnapshotsCmd(t *testing.T) {
	svc, _ := setup(t, "")
	svc.On("Snapshots", mock.Anything, uint64(0), uint64(10)).Return(fl.SnapshotPage{Limit: 10, Total: 1, Snapshots: []fl.Snapshot{{ModelID: "7"}}}, nil)

	out := execute(t, cli.NewSnapshotsCmd(), "snapshots", "list")
	assert.Contains(t, out, `"7"`)
}

func TestInferenceCmd(t *testing.T) {
	svc, _ := setup(t, token)
	svc.On("Inference", mock.Anything, token, map[string]any{"model_id": float64(7)}).Return(json.RawMessage(`{"prediction":[1]}`), nil)

	cases := []struct {
		desc string
		args []string
		out  string
	}{
		{desc: "run inference", args: []string{"inference", `{"model_id": 7}`}, out: `"prediction"`},
		{desc: "invalid request", args: []string{"inference", `{"model_id"`}, out: "error"},
		{desc: "missing request", args: []string{"inference"}, out: "usage: inference <JSON_request>"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			out := execute(t, cli.NewInferenceCmd(), tc.args...)
			assert.Contains(t, out, tc.out)
		})
	}
}
