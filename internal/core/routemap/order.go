package routemap

import (
	"slices"
	"strings"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// SortTrips returns a copy of trips ordered by date. Trips on the same day keep
// their input order, which records the sequence within that day.
func SortTrips(trips []domain.Trip) []domain.Trip {
	sorted := slices.Clone(trips)
	slices.SortStableFunc(sorted, func(a, b domain.Trip) int {
		return strings.Compare(a.Date, b.Date)
	})
	return sorted
}

// Endpoints returns the sorted positions of the earliest and latest trips.
// The earliest is the first trip overall; the latest is the first trip, in
// sorted order, on the last date. Both are -1 for an empty list.
func Endpoints(sorted []domain.Trip) (earliest, latest int) {
	if len(sorted) == 0 {
		return -1, -1
	}
	latest = len(sorted) - 1
	maxDate := sorted[latest].Date
	for latest > 0 && sorted[latest-1].Date == maxDate {
		latest--
	}
	return 0, latest
}
