package telemetry

// Span and attribute names used for instrumentation.
const (
	TracerName = "github.com/samirrijal/tripmap"

	SpanMapRender = "map.render"
	SpanMapStats  = "map.stats"
	SpanSnapshot  = "map.snapshot"

	AttrRangeStart     = "tripmap.range.start"
	AttrRangeEnd       = "tripmap.range.end"
	AttrDatum          = "tripmap.datum"
	AttrTrips          = "tripmap.trips"
	AttrRoutesRendered = "tripmap.routes_rendered"
	AttrTripsSkipped   = "tripmap.trips_skipped"
	AttrCacheHit       = "tripmap.cache_hit"
)
