// Package routemap turns dated trips and city coordinates into drawable,
// colored route geometry.
package routemap

import (
	"log/slog"

	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/pkg/geospatial"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPalette sets the journey palette. Empty palettes are ignored.
func WithPalette(palette []string) Option {
	return func(p *Pipeline) {
		if len(palette) > 0 {
			p.palette = palette
		}
	}
}

// WithSegments sets the number of curve segments per route.
func WithSegments(n int) Option {
	return func(p *Pipeline) {
		p.segments = n
	}
}

// WithDatums declares the datum city coordinates are stored in and the datum
// the routes are drawn in.
func WithDatums(source, display domain.Datum) Option {
	return func(p *Pipeline) {
		p.source = source
		p.display = display
	}
}

// WithLogger sets the logger used for skipped-trip warnings.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// Pipeline renders trips into routes. Render resets all pass state, but a
// Pipeline must not be used by two goroutines at once.
type Pipeline struct {
	palette  []string
	segments int
	source   domain.Datum
	display  domain.Datum
	logger   *slog.Logger
	planner  *OffsetPlanner
}

// New builds a pipeline. By default coordinates are assumed to already be in
// the display datum and the DefaultPalette is used.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		palette:  DefaultPalette,
		segments: geospatial.DefaultCurveSegments,
		source:   domain.DatumGCJ02,
		display:  domain.DatumGCJ02,
		planner:  NewOffsetPlanner(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Render runs one rendering pass. Trips whose origin or destination is not in
// cities are skipped and reported in the result.
func (p *Pipeline) Render(trips []domain.Trip, cities map[string]domain.City) domain.RenderResult {
	p.planner.Reset()

	sorted := SortTrips(trips)
	colors := JourneyColors(sorted, len(p.palette))
	earliest, latest := Endpoints(sorted)

	res := domain.RenderResult{
		Routes:  make([]domain.RenderedRoute, 0, len(sorted)),
		Palette: p.palette,
		Datum:   p.display,
		Stats: domain.RenderStats{
			TotalTrips:   len(trips),
			UniqueCities: uniqueCities(trips),
			Journeys:     CountJourneys(sorted),
		},
	}
	if earliest >= 0 {
		e, l := sorted[earliest], sorted[latest]
		res.Earliest, res.Latest = &e, &l
	}

	projected := make(map[string]domain.GeoPoint, len(cities))
	locate := func(name string) (domain.GeoPoint, bool) {
		if pt, ok := projected[name]; ok {
			return pt, true
		}
		c, ok := cities[name]
		if !ok {
			return domain.GeoPoint{}, false
		}
		pt := Project(c.Location, p.source, p.display)
		projected[name] = pt
		return pt, true
	}

	var markers []domain.GeoPoint
	for i, trip := range sorted {
		from, okFrom := locate(trip.Origin)
		to, okTo := locate(trip.Destination)
		if !okFrom || !okTo {
			p.logger.Warn("skipping trip with unknown city",
				"date", trip.Date,
				"origin", trip.Origin,
				"destination", trip.Destination,
				"origin_known", okFrom,
				"destination_known", okTo,
			)
			res.Skipped = append(res.Skipped, trip)
			continue
		}

		markers = append(markers, from, to)
		placement := p.planner.Plan(trip.Origin, trip.Destination, from, to)
		path := geospatial.QuadCurve(from, to, placement.Offset, p.segments)

		route := domain.RenderedRoute{
			Trip:            trip,
			Path:            path,
			Polyline:        geospatial.EncodePolyline(path),
			Label:           path[len(path)/2],
			Offset:          placement.Offset,
			ColorIndex:      colors[i],
			Color:           p.palette[colors[i]],
			OriginRole:      domain.RolePlain,
			DestinationRole: domain.RolePlain,
			SequenceNumber:  i + 1,
			PairOccurrence:  placement.Occurrence,
		}
		if i == earliest {
			route.OriginRole = domain.RoleJourneyStart
		}
		if i == latest {
			route.DestinationRole = domain.RoleJourneyEnd
		}
		res.Routes = append(res.Routes, route)
	}

	res.Bounds = domain.BoundsOf(markers)
	res.Stats.RenderedRoutes = len(res.Routes)
	res.Stats.SkippedTrips = len(res.Skipped)
	return res
}

// Project converts a stored coordinate into the display datum. Only WGS-84 to
// GCJ-02 changes the value; every other combination is returned as is.
func Project(pt domain.GeoPoint, source, display domain.Datum) domain.GeoPoint {
	if source == domain.DatumWGS84 && display == domain.DatumGCJ02 {
		lat, lon := geospatial.WGS84ToGCJ02(pt.Lat, pt.Lon)
		return domain.GeoPoint{Lat: lat, Lon: lon}
	}
	return pt
}

func uniqueCities(trips []domain.Trip) int {
	seen := make(map[string]struct{}, len(trips)*2)
	for _, t := range trips {
		seen[t.Origin] = struct{}{}
		seen[t.Destination] = struct{}{}
	}
	return len(seen)
}
