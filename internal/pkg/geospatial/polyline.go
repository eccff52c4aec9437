package geospatial

import (
	"math"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// EncodePolyline encodes a path with Google's polyline algorithm at 1e5 precision.
func EncodePolyline(path []domain.GeoPoint) string {
	if len(path) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(path)*4)
	var prevLat, prevLon int
	for _, p := range path {
		lat := int(math.Round(p.Lat * 1e5))
		lon := int(math.Round(p.Lon * 1e5))

		buf = appendPolylineValue(buf, lat-prevLat)
		buf = appendPolylineValue(buf, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return string(buf)
}

// DecodePolyline reverses EncodePolyline.
func DecodePolyline(encoded string) []domain.GeoPoint {
	var (
		path     []domain.GeoPoint
		lat, lon int
		idx      int
	)
	for idx < len(encoded) {
		var d int
		d, idx = readPolylineValue(encoded, idx)
		lat += d
		d, idx = readPolylineValue(encoded, idx)
		lon += d
		path = append(path, domain.GeoPoint{Lat: float64(lat) / 1e5, Lon: float64(lon) / 1e5})
	}
	return path
}

func appendPolylineValue(buf []byte, v int) []byte {
	if v < 0 {
		v = ^(v << 1)
	} else {
		v <<= 1
	}
	for v >= 0x20 {
		buf = append(buf, byte((v&0x1f)|0x20)+63)
		v >>= 5
	}
	return append(buf, byte(v)+63)
}

func readPolylineValue(s string, idx int) (int, int) {
	var result, shift int
	for idx < len(s) {
		b := int(s[idx]) - 63
		idx++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), idx
	}
	return result >> 1, idx
}
