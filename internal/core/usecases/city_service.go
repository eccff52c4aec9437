package usecases

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/core/ports"
	"github.com/samirrijal/tripmap/internal/core/routemap"
)

// CityService manages the city coordinate table.
type CityService struct {
	cities ports.CityRepository
	cache  ports.CacheService
	events ports.EventPublisher
	source domain.Datum
}

// NewCityService creates a new CityService. source is the datum coordinates
// are stored in.
func NewCityService(cities ports.CityRepository, cache ports.CacheService, events ports.EventPublisher, source domain.Datum) *CityService {
	return &CityService{cities: cities, cache: cache, events: events, source: source}
}

// SourceDatum returns the datum stored coordinates are expressed in.
func (s *CityService) SourceDatum() domain.Datum {
	return s.source
}

// List returns all cities sorted by name. When datum is set, coordinates are
// converted to it.
func (s *CityService) List(ctx context.Context, datum domain.Datum) ([]domain.City, error) {
	cities, err := s.cities.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })

	if datum != "" && datum != s.source {
		for i := range cities {
			cities[i].Location = routemap.Project(cities[i].Location, s.source, datum)
		}
	}
	return cities, nil
}

// Get returns a city by name.
func (s *CityService) Get(ctx context.Context, name string) (*domain.City, error) {
	return s.cities.GetByName(ctx, strings.TrimSpace(name))
}

// Upsert validates and stores a batch of cities, creating or updating by name.
func (s *CityService) Upsert(ctx context.Context, cities []domain.City) (domain.UpsertSummary, error) {
	clean := make([]domain.City, 0, len(cities))
	for _, c := range cities {
		c.Name = strings.TrimSpace(c.Name)
		c.Note = strings.TrimSpace(c.Note)
		if c.Name == "" {
			return domain.UpsertSummary{}, domain.ErrEmptyName
		}
		if c.Location.Lat < -90 || c.Location.Lat > 90 {
			return domain.UpsertSummary{}, fmt.Errorf("%w: city %s latitude %v", domain.ErrInvalidCoordinate, c.Name, c.Location.Lat)
		}
		if c.Location.Lon < -180 || c.Location.Lon > 180 {
			return domain.UpsertSummary{}, fmt.Errorf("%w: city %s longitude %v", domain.ErrInvalidCoordinate, c.Name, c.Location.Lon)
		}
		clean = append(clean, c)
	}
	if len(clean) == 0 {
		return domain.UpsertSummary{}, nil
	}

	summary, err := s.cities.UpsertBatch(ctx, clean)
	if err != nil {
		return domain.UpsertSummary{}, err
	}
	notifyChanged(ctx, s.cache, s.events, domain.ChangeCities)
	return summary, nil
}

// Delete removes a city that no trip references.
func (s *CityService) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrEmptyName
	}
	if err := s.cities.Delete(ctx, name); err != nil {
		return err
	}
	notifyChanged(ctx, s.cache, s.events, domain.ChangeCities)
	return nil
}
