// Package metrics turns flat metric observations reported during a training
// into chart-ready series. Every function in this package is pure: it reads
// the snapshot it is given and returns freshly allocated results.
package metrics

import "strings"

// Observation is a single metric value reported by a participant (or by the
// server) at a given training step.
type Observation struct {
	ID          string   `json:"id"`
	Identifier  string   `json:"identifier,omitempty"`
	Key         string   `json:"key"`
	Step        uint64   `json:"step"`
	ReporterID  string   `json:"reporter"`
	TrainingID  string   `json:"training,omitempty"`
	ValueFloat  *float64 `json:"value_float,omitempty"`
	ValueBinary []byte   `json:"value_binary,omitempty"`
}

// Participant is a reporter as shown in a chart legend.
type Participant struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Color     string   `json:"color,omitempty"`
}

// DisplayName returns the username, falling back to the full name and then
// to the id.
func (p Participant) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
		return name
	}

	return p.ID
}

// Line is one logical chart line. X and Y are aligned by index.
type Line struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Color string    `json:"color"`
	X     []uint64  `json:"x"`
	Y     []float64 `json:"y"`
}

// Empty reports whether the line carries no points.
func (l Line) Empty() bool {
	return len(l.X) == 0
}

// ChartData holds the lines charted for a single metric key.
type ChartData struct {
	Key   string `json:"key"`
	Lines []Line `json:"lines"`
}

// HasData reports whether at least one line carries a point.
func (c ChartData) HasData() bool {
	for _, l := range c.Lines {
		if !l.Empty() {
			return true
		}
	}

	return false
}

// Float returns a pointer to v, for building observations.
func Float(v float64) *float64 {
	return &v
}
