package ports

import (
	"context"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// CityRepository persists cities. Coordinates are stored in the source datum.
type CityRepository interface {
	List(ctx context.Context) ([]domain.City, error)
	GetByName(ctx context.Context, name string) (*domain.City, error)
	// UpsertBatch inserts or updates cities by name in one round trip.
	UpsertBatch(ctx context.Context, cities []domain.City) (domain.UpsertSummary, error)
	// Delete removes a city. It returns domain.ErrCityInUse while trips reference it.
	Delete(ctx context.Context, name string) error
}

// TripRepository persists trips in insertion order.
type TripRepository interface {
	// List returns the trips inside r ordered by date, then insertion order.
	List(ctx context.Context, r domain.DateRange) ([]domain.Trip, error)
	Create(ctx context.Context, trip *domain.Trip) error
	// ReplaceAll atomically swaps the whole trip list.
	ReplaceAll(ctx context.Context, trips []domain.Trip) error
	Delete(ctx context.Context, id string) error
}
