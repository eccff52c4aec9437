package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/core/ports"
	"github.com/samirrijal/tripmap/internal/core/routemap"
	"github.com/samirrijal/tripmap/internal/pkg/metrics"
	"github.com/samirrijal/tripmap/internal/pkg/telemetry"
)

// MapSettings configures rendering.
type MapSettings struct {
	SourceDatum  domain.Datum
	DisplayDatum domain.Datum
	Segments     int
	Palette      []string
	// CacheTTL is in seconds.
	CacheTTL int
}

// MapService renders stored trips into route geometry.
type MapService struct {
	trips    ports.TripRepository
	cities   ports.CityRepository
	cache    ports.CacheService
	events   ports.EventPublisher
	settings MapSettings
	now      func() time.Time
}

// NewMapService creates a new MapService.
func NewMapService(trips ports.TripRepository, cities ports.CityRepository, cache ports.CacheService, events ports.EventPublisher, settings MapSettings) *MapService {
	if settings.DisplayDatum == "" {
		settings.DisplayDatum = domain.DatumGCJ02
	}
	if settings.SourceDatum == "" {
		settings.SourceDatum = settings.DisplayDatum
	}
	if settings.CacheTTL <= 0 {
		settings.CacheTTL = 300
	}
	return &MapService{
		trips:    trips,
		cities:   cities,
		cache:    cache,
		events:   events,
		settings: settings,
		now:      time.Now,
	}
}

// DisplayDatum returns the datum rendered routes are expressed in.
func (s *MapService) DisplayDatum() domain.Datum {
	return s.settings.DisplayDatum
}

func (s *MapService) cacheKey(r domain.DateRange) string {
	return mapCachePrefix + string(s.settings.DisplayDatum) + ":" + r.Key()
}

// Render draws every trip inside r. Results are cached until the next data
// change.
func (s *MapService) Render(ctx context.Context, r domain.DateRange) (*domain.RenderResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanMapRender)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrRangeStart, r.Start),
		attribute.String(telemetry.AttrRangeEnd, r.End),
		attribute.String(telemetry.AttrDatum, string(s.settings.DisplayDatum)),
	)

	key := s.cacheKey(r)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var res domain.RenderResult
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.CacheHits.WithLabelValues("map").Inc()
				span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
				return &res, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("map").Inc()
	}

	start := time.Now()
	trips, err := s.trips.List(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list trips")
		return nil, err
	}
	cities, err := s.cityTable(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list cities")
		return nil, err
	}

	pipeline := routemap.New(
		routemap.WithDatums(s.settings.SourceDatum, s.settings.DisplayDatum),
		routemap.WithPalette(s.settings.Palette),
		routemap.WithSegments(s.settings.Segments),
		routemap.WithLogger(slog.Default()),
	)
	res := pipeline.Render(trips, cities)

	metrics.MapRendersTotal.WithLabelValues(string(res.Datum)).Inc()
	metrics.MapRenderDuration.Observe(time.Since(start).Seconds())
	metrics.RoutesRendered.Add(float64(res.Stats.RenderedRoutes))
	metrics.TripsSkipped.Add(float64(res.Stats.SkippedTrips))
	span.SetAttributes(
		attribute.Bool(telemetry.AttrCacheHit, false),
		attribute.Int(telemetry.AttrTrips, res.Stats.TotalTrips),
		attribute.Int(telemetry.AttrRoutesRendered, res.Stats.RenderedRoutes),
		attribute.Int(telemetry.AttrTripsSkipped, res.Stats.SkippedTrips),
	)

	if s.cache != nil {
		if data, err := json.Marshal(res); err == nil {
			if err := s.cache.Set(ctx, key, data, s.settings.CacheTTL); err != nil {
				slog.Debug("map cache write failed", "key", key, "error", err)
			}
		}
	}

	if s.events != nil {
		event := &domain.MapRenderedEvent{Range: r, Stats: res.Stats, RenderedAt: s.now().UTC()}
		if err := s.events.PublishMapRendered(ctx, event); err != nil {
			slog.Warn("publish map rendered failed", "error", err)
		}
	}

	return &res, nil
}

// Stats summarises the trips inside r without drawing them.
func (s *MapService) Stats(ctx context.Context, r domain.DateRange) (domain.RenderStats, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanMapStats)
	defer span.End()

	trips, err := s.trips.List(ctx, r)
	if err != nil {
		span.RecordError(err)
		return domain.RenderStats{}, err
	}

	cities := make(map[string]struct{}, len(trips)*2)
	for _, t := range trips {
		cities[t.Origin] = struct{}{}
		cities[t.Destination] = struct{}{}
	}
	return domain.RenderStats{
		TotalTrips:   len(trips),
		UniqueCities: len(cities),
		Journeys:     routemap.CountJourneys(routemap.SortTrips(trips)),
	}, nil
}

func (s *MapService) cityTable(ctx context.Context) (map[string]domain.City, error) {
	list, err := s.cities.List(ctx)
	if err != nil {
		return nil, err
	}
	table := make(map[string]domain.City, len(list))
	for _, c := range list {
		table[c.Name] = c
	}
	return table, nil
}
