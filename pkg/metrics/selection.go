package metrics

import "errors"

const (
	selectionAll        = "all"
	selectionServerMean = "serverMean"

	// ServerMeanID is the line id of the synthetic cross-participant mean.
	ServerMeanID    = "serverMean"
	ServerMeanLabel = "Server Mean"
)

// ErrUnknownSelection is returned by BuildSeries for a Selection it does not handle.
var ErrUnknownSelection = errors.New("unknown series selection")

// Selection picks which lines BuildSeries produces. It is implemented only
// by AllParticipants, SingleParticipant and ServerMean.
type Selection interface {
	selection()
	String() string
}

// AllParticipants yields one line per participant.
type AllParticipants struct{}

// SingleParticipant yields exactly one line for ParticipantID. FallbackLabel
// names the line when the participant is not among the known participants.
type SingleParticipant struct {
	ParticipantID string
	FallbackLabel string
}

// ServerMean yields one line holding the per-step mean over all reporters.
type ServerMean struct{}

func (AllParticipants) selection()   {}
func (SingleParticipant) selection() {}
func (ServerMean) selection()        {}

func (AllParticipants) String() string {
	return selectionAll
}

func (s SingleParticipant) String() string {
	return s.ParticipantID
}

func (ServerMean) String() string {
	return selectionServerMean
}

// ParseSelection converts the wire form used by clients: "all" (or empty),
// "serverMean", or a participant id.
func ParseSelection(s string) Selection {
	switch s {
	case "", selectionAll:
		return AllParticipants{}
	case selectionServerMean:
		return ServerMean{}
	default:
		return SingleParticipant{ParticipantID: s, FallbackLabel: s}
	}
}
