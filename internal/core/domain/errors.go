package domain

import "errors"

var (
	// ErrNotFound is returned when a city or trip does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD (or a tolerated variant).
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidDateRange is returned when a range starts after it ends.
	ErrInvalidDateRange = errors.New("start date is after end date")
	// ErrInvalidCoordinate is returned for latitude/longitude outside their ranges.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrUnknownCity is returned when a trip references a city that is not stored.
	ErrUnknownCity = errors.New("unknown city")
	// ErrCityInUse is returned when deleting a city that trips still reference.
	ErrCityInUse = errors.New("city is referenced by trips")
	// ErrEmptyName is returned for blank city names.
	ErrEmptyName = errors.New("name must not be empty")
	// ErrIncompleteTrip is returned for trips missing a date, origin or destination.
	ErrIncompleteTrip = errors.New("trip requires date, origin and destination")
	// ErrUnknownDatum is returned for coordinate systems other than wgs84 and gcj02.
	ErrUnknownDatum = errors.New("unknown datum")
)
