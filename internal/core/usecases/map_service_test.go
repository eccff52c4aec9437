package usecases_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/core/usecases"
	"github.com/samirrijal/tripmap/internal/pkg/telemetry"
)

func scenarioTrips() *mockTripRepo {
	return &mockTripRepo{
		listFn: func(ctx context.Context, r domain.DateRange) ([]domain.Trip, error) {
			all := []domain.Trip{
				{ID: "1", Date: "2025-01-01", Origin: "Beijing", Destination: "Shanghai"},
				{ID: "2", Date: "2025-01-02", Origin: "Shanghai", Destination: "Guangzhou"},
				{ID: "3", Date: "2025-01-05", Origin: "Tianjin", Destination: "Beijing"},
				{ID: "4", Date: "2025-01-06", Origin: "Beijing", Destination: "Atlantis"},
			}
			var out []domain.Trip
			for _, t := range all {
				if r.Includes(t.Date) {
					out = append(out, t)
				}
			}
			return out, nil
		},
	}
}

func TestMapService_Render(t *testing.T) {
	events := &mockPublisher{}
	svc := usecases.NewMapService(scenarioTrips(), staticCities(testCities...), nil, events, usecases.MapSettings{
		SourceDatum:  domain.DatumGCJ02,
		DisplayDatum: domain.DatumGCJ02,
	})

	res, err := svc.Render(context.Background(), domain.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Routes) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(res.Routes))
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != "4" {
		t.Errorf("expected trip 4 skipped, got %+v", res.Skipped)
	}
	if res.Routes[0].ColorIndex != res.Routes[1].ColorIndex {
		t.Error("expected continuing journey to share a color")
	}
	if res.Routes[2].ColorIndex == res.Routes[1].ColorIndex {
		t.Error("expected new journey to change color")
	}
	// The latest trip references an unknown city, so no drawn route ends the journey.
	for _, r := range res.Routes {
		if r.DestinationRole == domain.RoleJourneyEnd {
			t.Errorf("unexpected journey end on %s", r.Trip.ID)
		}
	}
	if len(events.rendered) != 1 || events.rendered[0].Stats.RenderedRoutes != 3 {
		t.Errorf("expected one rendered event, got %+v", events.rendered)
	}
}

func TestMapService_Render_FiltersRange(t *testing.T) {
	svc := usecases.NewMapService(scenarioTrips(), staticCities(testCities...), nil, nil, usecases.MapSettings{})

	res, err := svc.Render(context.Background(), domain.DateRange{Start: "2025-01-02", End: "2025-01-05"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(res.Routes))
	}
	if res.Routes[1].DestinationRole != domain.RoleJourneyEnd {
		t.Error("expected last route in range to end the journey")
	}
}

func TestMapService_Render_UsesCache(t *testing.T) {
	calls := 0
	trips := scenarioTrips()
	inner := trips.listFn
	trips.listFn = func(ctx context.Context, r domain.DateRange) ([]domain.Trip, error) {
		calls++
		return inner(ctx, r)
	}
	cache := newMockCache()
	svc := usecases.NewMapService(trips, staticCities(testCities...), cache, nil, usecases.MapSettings{CacheTTL: 120})

	first, err := svc.Render(context.Background(), domain.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Render(context.Background(), domain.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected one repository call, got %d", calls)
	}
	if len(second.Routes) != len(first.Routes) {
		t.Errorf("cached result differs: %d vs %d routes", len(second.Routes), len(first.Routes))
	}
	if cache.ttls["map:gcj02:-:-"] != 120 {
		t.Errorf("expected ttl 120, got %v", cache.ttls)
	}
}

func TestMapService_Render_RepositoryError(t *testing.T) {
	boom := errors.New("db down")
	trips := &mockTripRepo{
		listFn: func(ctx context.Context, r domain.DateRange) ([]domain.Trip, error) {
			return nil, boom
		},
	}
	svc := usecases.NewMapService(trips, staticCities(), nil, nil, usecases.MapSettings{})

	if _, err := svc.Render(context.Background(), domain.DateRange{}); !errors.Is(err, boom) {
		t.Errorf("expected repository error, got %v", err)
	}
}

func TestMapService_Render_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	svc := usecases.NewMapService(scenarioTrips(), staticCities(testCities...), nil, nil, usecases.MapSettings{})
	if _, err := svc.Render(context.Background(), domain.DateRange{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != telemetry.SpanMapRender {
		t.Errorf("unexpected span name %s", spans[0].Name())
	}
}

func TestMapService_Stats(t *testing.T) {
	svc := usecases.NewMapService(scenarioTrips(), staticCities(), nil, nil, usecases.MapSettings{})

	stats, err := svc.Stats(context.Background(), domain.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalTrips != 4 {
		t.Errorf("expected 4 trips, got %d", stats.TotalTrips)
	}
	if stats.UniqueCities != 5 {
		t.Errorf("expected 5 cities, got %d", stats.UniqueCities)
	}
	if stats.Journeys != 2 {
		t.Errorf("expected 2 journeys, got %d", stats.Journeys)
	}
}
