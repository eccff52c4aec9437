package geospatial

import (
	"math"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// DefaultCurveSegments is the number of segments QuadCurve uses when none is given.
const DefaultCurveSegments = 50

// QuadCurve samples a quadratic Bézier arc from start to end whose control
// point sits offset degrees perpendicular to the chord midpoint. Positive
// offsets bend to the left of the start→end direction. The result holds
// segments+1 points and begins and ends exactly at start and end.
func QuadCurve(start, end domain.GeoPoint, offset float64, segments int) []domain.GeoPoint {
	if segments < 1 {
		segments = DefaultCurveSegments
	}

	midLon := (start.Lon + end.Lon) / 2
	midLat := (start.Lat + end.Lat) / 2

	// atan2(0, 0) is 0, so coincident endpoints collapse to a repeated point.
	theta := math.Atan2(end.Lat-start.Lat, end.Lon-start.Lon)
	ctrlLon := midLon + offset*math.Cos(theta+math.Pi/2)
	ctrlLat := midLat + offset*math.Sin(theta+math.Pi/2)

	points := make([]domain.GeoPoint, 0, segments+1)
	points = append(points, start)
	for i := 1; i < segments; i++ {
		t := float64(i) / float64(segments)
		u := 1 - t
		points = append(points, domain.GeoPoint{
			Lat: u*u*start.Lat + 2*u*t*ctrlLat + t*t*end.Lat,
			Lon: u*u*start.Lon + 2*u*t*ctrlLon + t*t*end.Lon,
		})
	}
	return append(points, end)
}
