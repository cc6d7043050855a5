package metrics

import (
	"errors"
	"fmt"
	"slices"
)

// MissingValuePolicy decides how observations without a float value are
// aggregated.
type MissingValuePolicy uint8

const (
	// ZeroFill counts a missing value as 0, both in single series and in the
	// mean (where it still increments the count).
	ZeroFill MissingValuePolicy = iota
	// ExcludeMissing drops observations without a float value. A mean step
	// with no counted value is omitted.
	ExcludeMissing
)

func (p MissingValuePolicy) String() string {
	switch p {
	case ZeroFill:
		return "zero"
	case ExcludeMissing:
		return "exclude"
	default:
		return "unknown"
	}
}

// ParseMissingValuePolicy parses "zero" or "exclude".
func ParseMissingValuePolicy(s string) (MissingValuePolicy, error) {
	switch s {
	case "", "zero":
		return ZeroFill, nil
	case "exclude":
		return ExcludeMissing, nil
	default:
		return ZeroFill, fmt.Errorf("invalid missing value policy %q", s)
	}
}

var ErrDuplicateLine = errors.New("duplicate line id")

// DuplicateLineError reports a line id produced more than once by a single
// BuildSeries call. It matches ErrDuplicateLine with errors.Is.
type DuplicateLineError struct {
	ID string
}

func (e *DuplicateLineError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateLine, e.ID)
}

func (e *DuplicateLineError) Is(target error) bool {
	return target == ErrDuplicateLine
}

// Option configures a Builder.
type Option func(*Builder)

func WithMissingValuePolicy(p MissingValuePolicy) Option {
	return func(b *Builder) {
		b.policy = p
	}
}

// WithFallbackColor sets the color of a single-participant line whose
// participant is unknown.
func WithFallbackColor(c string) Option {
	return func(b *Builder) {
		b.fallbackColor = c
	}
}

// Builder derives chart series from observations. It holds configuration
// only and is safe for concurrent use.
type Builder struct {
	policy        MissingValuePolicy
	fallbackColor string
}

func NewBuilder(opts ...Option) Builder {
	b := Builder{
		policy:        ZeroFill,
		fallbackColor: FallbackColor,
	}
	for _, opt := range opts {
		opt(&b)
	}

	return b
}

func (b Builder) Policy() MissingValuePolicy {
	return b.policy
}

// DiscoverKeys returns the distinct metric keys in first-seen order.
func DiscoverKeys(observations []Observation) []string {
	keys := []string{}
	seen := make(map[string]struct{})
	for _, o := range observations {
		if _, ok := seen[o.Key]; ok {
			continue
		}
		seen[o.Key] = struct{}{}
		keys = append(keys, o.Key)
	}

	return keys
}

// BuildSeries builds the lines for key using the default ZeroFill builder.
func BuildSeries(observations []Observation, participants []Participant, key string, sel Selection) (ChartData, error) {
	return NewBuilder().BuildSeries(observations, participants, key, sel)
}

// BuildSeries filters observations by key and derives the lines requested by
// sel. When two lines share an id the data is returned uncollapsed together
// with a *DuplicateLineError.
func (b Builder) BuildSeries(observations []Observation, participants []Participant, key string, sel Selection) (ChartData, error) {
	filtered := filterByKey(observations, key)

	var lines []Line
	switch s := sel.(type) {
	case AllParticipants:
		lines = make([]Line, 0, len(participants))
		for _, p := range participants {
			lines = append(lines, b.participantLine(filtered, p))
		}
	case SingleParticipant:
		p, ok := findParticipant(participants, s.ParticipantID)
		if !ok {
			line := b.participantLine(filtered, Participant{ID: s.ParticipantID, Color: b.fallbackColor})
			if s.FallbackLabel != "" {
				line.Label = s.FallbackLabel
			}
			lines = []Line{line}
			break
		}
		lines = []Line{b.participantLine(filtered, p)}
	case ServerMean:
		lines = []Line{b.meanLine(filtered)}
	default:
		return ChartData{}, fmt.Errorf("%w: %T", ErrUnknownSelection, sel)
	}

	data := ChartData{Key: key, Lines: lines}
	if err := checkDistinct(lines); err != nil {
		return data, err
	}

	return data, nil
}

func (b Builder) participantLine(observations []Observation, p Participant) Line {
	line := Line{
		ID:    p.ID,
		Label: p.DisplayName(),
		Color: p.Color,
		X:     []uint64{},
		Y:     []float64{},
	}
	for _, o := range observations {
		if o.ReporterID != p.ID {
			continue
		}
		v, ok := b.value(o)
		if !ok {
			continue
		}
		line.X = append(line.X, o.Step)
		line.Y = append(line.Y, v)
	}

	return line
}

func (b Builder) meanLine(observations []Observation) Line {
	type acc struct {
		sum   float64
		count uint64
	}
	groups := make(map[uint64]*acc)
	for _, o := range observations {
		a, ok := groups[o.Step]
		if !ok {
			a = &acc{}
			groups[o.Step] = a
		}
		v, ok := b.value(o)
		if !ok {
			continue
		}
		a.sum += v
		a.count++
	}

	steps := make([]uint64, 0, len(groups))
	for step := range groups {
		steps = append(steps, step)
	}
	slices.Sort(steps)

	line := Line{
		ID:    ServerMeanID,
		Label: ServerMeanLabel,
		Color: ServerMeanColor,
		X:     make([]uint64, 0, len(steps)),
		Y:     make([]float64, 0, len(steps)),
	}
	for _, step := range steps {
		a := groups[step]
		if a.count == 0 {
			continue
		}
		line.X = append(line.X, step)
		line.Y = append(line.Y, a.sum/float64(a.count))
	}

	return line
}

func (b Builder) value(o Observation) (float64, bool) {
	if o.ValueFloat != nil {
		return *o.ValueFloat, true
	}
	if b.policy == ExcludeMissing {
		return 0, false
	}

	return 0, true
}

func filterByKey(observations []Observation, key string) []Observation {
	filtered := make([]Observation, 0, len(observations))
	for _, o := range observations {
		if o.Key == key {
			filtered = append(filtered, o)
		}
	}

	return filtered
}

func findParticipant(participants []Participant, id string) (Participant, bool) {
	for _, p := range participants {
		if p.ID == id {
			return p, true
		}
	}

	return Participant{}, false
}

func checkDistinct(lines []Line) error {
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ID]; ok {
			return &DuplicateLineError{ID: l.ID}
		}
		seen[l.ID] = struct{}{}
	}

	return nil
}
