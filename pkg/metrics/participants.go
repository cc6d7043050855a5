package metrics

import (
	"cmp"
	"slices"
)

const (
	// ServerMeanColor is reserved for the mean line and never handed to a
	// participant.
	ServerMeanColor = "#212121"
	FallbackColor   = "#9e9e9e"
)

// Palette is cycled through by AssignColors.
var Palette = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#17becf",
	"#bcbd22",
	"#3f51b5",
}

// SortParticipants returns a copy ordered by username, then id.
func SortParticipants(participants []Participant) []Participant {
	sorted := slices.Clone(participants)
	slices.SortStableFunc(sorted, func(a, b Participant) int {
		return cmp.Or(
			cmp.Compare(a.DisplayName(), b.DisplayName()),
			cmp.Compare(a.ID, b.ID),
		)
	})

	return sorted
}

// AssignColors returns a copy where each participant gets the palette color
// of its position, so a fixed participant order keeps colors stable across
// metric keys.
func AssignColors(participants []Participant) []Participant {
	colored := slices.Clone(participants)
	for i := range colored {
		colored[i].Color = Palette[i%len(Palette)]
	}

	return colored
}
