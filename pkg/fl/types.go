package fl

import (
	"time"

	"github.com/absmach/fldash/pkg/metrics"
)

type Model struct {
	ID          string   `json:"id"`
	Owner       string   `json:"owner,omitempty"`
	Round       uint64   `json:"round"`
	Weights     *float64 `json:"weights,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ModelFile is a serialized model as uploaded to or downloaded from the
// backend.
type ModelFile struct {
	Name string
	Data []byte
}

type ModelPage struct {
	Offset uint64  `json:"offset"`
	Limit  uint64  `json:"limit"`
	Total  uint64  `json:"total"`
	Models []Model `json:"models"`
}

type Training struct {
	ID                string            `json:"id"`
	Actor             string            `json:"actor,omitempty"`
	ModelID           string            `json:"model"`
	State             State             `json:"state"`
	TargetNumUpdates  uint64            `json:"target_num_updates"`
	Participants      []string          `json:"participants"`
	UncertaintyMethod string            `json:"uncertainty_method,omitempty"`
	AggregationMethod AggregationMethod `json:"aggregation_method,omitempty"`
	// MetricNames is only sent on creation.
	MetricNames []string  `json:"metric_names,omitempty"`
	Locked      bool      `json:"locked"`
	LastUpdate  time.Time `json:"last_update"`
}

type TrainingPage struct {
	Offset    uint64     `json:"offset"`
	Limit     uint64     `json:"limit"`
	Total     uint64     `json:"total"`
	Trainings []Training `json:"trainings"`
}

type User struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	FirstName       string   `json:"first_name,omitempty"`
	LastName        string   `json:"last_name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Actor           bool     `json:"actor"`
	Client          bool     `json:"client"`
	MessageEndpoint string   `json:"message_endpoint,omitempty"`
	ColorID         *int     `json:"color_id,omitempty"`
	Color           string   `json:"color,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
}

func (u User) ToParticipant() metrics.Participant {
	return metrics.Participant{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
	}
}

// Location is the position of a participant on the map.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Locations maps user ids to their known positions. Users without a
// position are absent.
type Locations map[string]Location

// Token carries the base64 encoded basic credentials accepted by the
// backend.
type Token struct {
	AccessToken string `json:"token"`
}

// Snapshot is the last observation collection fetched for a model, together
// with the participants that reported it.
type Snapshot struct {
	ModelID      string                `json:"model_id"`
	Observations []metrics.Observation `json:"observations"`
	Participants []metrics.Participant `json:"participants"`
	FetchedAt    time.Time             `json:"fetched_at"`
}

// SnapshotPage lists stored snapshots.
type SnapshotPage struct {
	Offset    uint64     `json:"offset"`
	Limit     uint64     `json:"limit"`
	Total     uint64     `json:"total"`
	Snapshots []Snapshot `json:"snapshots"`
}
