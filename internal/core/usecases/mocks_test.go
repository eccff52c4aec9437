package usecases_test

import (
	"context"
	"strings"
	"sync"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// --- Mock CityRepository ---

type mockCityRepo struct {
	listFn        func(ctx context.Context) ([]domain.City, error)
	getByNameFn   func(ctx context.Context, name string) (*domain.City, error)
	upsertBatchFn func(ctx context.Context, cities []domain.City) (domain.UpsertSummary, error)
	deleteFn      func(ctx context.Context, name string) error
}

func (m *mockCityRepo) List(ctx context.Context) ([]domain.City, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCityRepo) GetByName(ctx context.Context, name string) (*domain.City, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCityRepo) UpsertBatch(ctx context.Context, cities []domain.City) (domain.UpsertSummary, error) {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, cities)
	}
	return domain.UpsertSummary{Added: len(cities), Total: len(cities)}, nil
}

func (m *mockCityRepo) Delete(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

// staticCities serves a fixed city table.
func staticCities(cities ...domain.City) *mockCityRepo {
	return &mockCityRepo{
		listFn: func(ctx context.Context) ([]domain.City, error) {
			return append([]domain.City(nil), cities...), nil
		},
		getByNameFn: func(ctx context.Context, name string) (*domain.City, error) {
			for _, c := range cities {
				if c.Name == name {
					return &c, nil
				}
			}
			return nil, domain.ErrNotFound
		},
	}
}

// --- Mock TripRepository ---

type mockTripRepo struct {
	listFn       func(ctx context.Context, r domain.DateRange) ([]domain.Trip, error)
	createFn     func(ctx context.Context, trip *domain.Trip) error
	replaceAllFn func(ctx context.Context, trips []domain.Trip) error
	deleteFn     func(ctx context.Context, id string) error
}

func (m *mockTripRepo) List(ctx context.Context, r domain.DateRange) ([]domain.Trip, error) {
	if m.listFn != nil {
		return m.listFn(ctx, r)
	}
	return nil, nil
}

func (m *mockTripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	if m.createFn != nil {
		return m.createFn(ctx, trip)
	}
	return nil
}

func (m *mockTripRepo) ReplaceAll(ctx context.Context, trips []domain.Trip) error {
	if m.replaceAllFn != nil {
		return m.replaceAllFn(ctx, trips)
	}
	return nil
}

func (m *mockTripRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]int
	dropped []string
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped = append(m.dropped, prefix)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu       sync.Mutex
	changes  []domain.DataChange
	rendered []*domain.MapRenderedEvent
}

func (m *mockPublisher) PublishDataChanged(ctx context.Context, kind domain.DataChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, kind)
	return nil
}

func (m *mockPublisher) PublishMapRendered(ctx context.Context, event *domain.MapRenderedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendered = append(m.rendered, event)
	return nil
}
