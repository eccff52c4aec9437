package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/core/ports"
)

// TripService manages the trip list.
type TripService struct {
	trips  ports.TripRepository
	cities ports.CityRepository
	cache  ports.CacheService
	events ports.EventPublisher
	now    func() time.Time
}

// NewTripService creates a new TripService.
func NewTripService(trips ports.TripRepository, cities ports.CityRepository, cache ports.CacheService, events ports.EventPublisher) *TripService {
	return &TripService{trips: trips, cities: cities, cache: cache, events: events, now: time.Now}
}

// WithClock overrides the clock used for default range ends and timestamps.
func (s *TripService) WithClock(now func() time.Time) *TripService {
	s.now = now
	return s
}

// ParseRange builds a date range from optional query values. A range with only
// a start ends today.
func (s *TripService) ParseRange(start, end string) (domain.DateRange, error) {
	return domain.NewDateRange(strings.TrimSpace(start), strings.TrimSpace(end), s.now())
}

// List returns the trips inside r in chronological order.
func (s *TripService) List(ctx context.Context, r domain.DateRange) ([]domain.Trip, error) {
	return s.trips.List(ctx, r)
}

// Add validates and stores a single trip.
func (s *TripService) Add(ctx context.Context, trip domain.Trip) (*domain.Trip, error) {
	known := func(name string) (bool, error) {
		_, err := s.cities.GetByName(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	t, err := s.prepare(trip, known)
	if err != nil {
		return nil, err
	}
	if err := s.trips.Create(ctx, &t); err != nil {
		return nil, err
	}
	notifyChanged(ctx, s.cache, s.events, domain.ChangeTrips)
	return &t, nil
}

// ReplaceAll validates every trip and swaps the stored list for them. Nothing
// is written if any trip is invalid.
func (s *TripService) ReplaceAll(ctx context.Context, trips []domain.Trip) (int, error) {
	cities, err := s.cities.List(ctx)
	if err != nil {
		return 0, err
	}
	names := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		names[c.Name] = struct{}{}
	}
	known := func(name string) (bool, error) {
		_, ok := names[name]
		return ok, nil
	}

	clean := make([]domain.Trip, 0, len(trips))
	for i, trip := range trips {
		t, err := s.prepare(trip, known)
		if err != nil {
			return 0, fmt.Errorf("trip %d: %w", i+1, err)
		}
		clean = append(clean, t)
	}

	if err := s.trips.ReplaceAll(ctx, clean); err != nil {
		return 0, err
	}
	notifyChanged(ctx, s.cache, s.events, domain.ChangeTrips)
	return len(clean), nil
}

// Delete removes a trip by ID.
func (s *TripService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	if err := s.trips.Delete(ctx, id); err != nil {
		return err
	}
	notifyChanged(ctx, s.cache, s.events, domain.ChangeTrips)
	return nil
}

func (s *TripService) prepare(trip domain.Trip, known func(string) (bool, error)) (domain.Trip, error) {
	trip.Origin = strings.TrimSpace(trip.Origin)
	trip.Destination = strings.TrimSpace(trip.Destination)
	if trip.Date == "" || trip.Origin == "" || trip.Destination == "" {
		return trip, domain.ErrIncompleteTrip
	}

	date, err := domain.NormalizeDate(strings.TrimSpace(trip.Date))
	if err != nil {
		return trip, err
	}
	trip.Date = date

	for _, name := range []string{trip.Origin, trip.Destination} {
		ok, err := known(name)
		if err != nil {
			return trip, err
		}
		if !ok {
			return trip, fmt.Errorf("%w: %s", domain.ErrUnknownCity, name)
		}
	}

	trip.ID = uuid.NewString()
	trip.CreatedAt = s.now().UTC()
	return trip, nil
}
