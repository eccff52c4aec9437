package routemap

import "github.com/samirrijal/tripmap/internal/core/domain"

// DefaultPalette is the rotating journey palette.
var DefaultPalette = []string{
	"#667eea",
	"#764ba2",
	"#f093fb",
	"#f5576c",
	"#4facfe",
	"#43e97b",
}

// JourneyColors assigns a palette index to each trip of a chronologically
// sorted list. A trip continuing from the previous destination keeps its
// color; any other trip starts a new journey and advances to the next index,
// wrapping at size.
func JourneyColors(sorted []domain.Trip, size int) []int {
	if size < 1 {
		size = 1
	}
	colors := make([]int, len(sorted))
	for i := 1; i < len(sorted); i++ {
		if continuesJourney(sorted[i-1], sorted[i]) {
			colors[i] = colors[i-1]
		} else {
			colors[i] = (colors[i-1] + 1) % size
		}
	}
	return colors
}

// CountJourneys returns the number of journeys in a sorted trip list.
func CountJourneys(sorted []domain.Trip) int {
	if len(sorted) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(sorted); i++ {
		if !continuesJourney(sorted[i-1], sorted[i]) {
			n++
		}
	}
	return n
}

func continuesJourney(prev, next domain.Trip) bool {
	return next.Origin == prev.Destination
}
