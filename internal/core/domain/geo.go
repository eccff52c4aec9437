package domain

import "fmt"

// GeoPoint represents a geographic coordinate. The datum it is expressed in is
// tracked by the caller.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within the usual latitude/longitude ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsOf returns the smallest box holding every point, or nil when there are none.
func BoundsOf(points []GeoPoint) *Bounds {
	if len(points) == 0 {
		return nil
	}
	b := Bounds{MinLat: points[0].Lat, MaxLat: points[0].Lat, MinLon: points[0].Lon, MaxLon: points[0].Lon}
	for _, p := range points[1:] {
		b.MinLat = min(b.MinLat, p.Lat)
		b.MaxLat = max(b.MaxLat, p.Lat)
		b.MinLon = min(b.MinLon, p.Lon)
		b.MaxLon = max(b.MaxLon, p.Lon)
	}
	return &b
}

// Contains reports whether p falls inside the box, edges included.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Datum names a geographic coordinate reference system.
type Datum string

const (
	// DatumWGS84 is the international GPS reference datum. City coordinates are
	// stored in it.
	DatumWGS84 Datum = "wgs84"
	// DatumGCJ02 is the regional datum used by Chinese map providers (AMap, Tencent).
	DatumGCJ02 Datum = "gcj02"
)

// ParseDatum returns the datum named by s.
func ParseDatum(s string) (Datum, error) {
	switch Datum(s) {
	case DatumWGS84, DatumGCJ02:
		return Datum(s), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownDatum, s)
	}
}
