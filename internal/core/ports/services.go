package ports

import (
	"context"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishDataChanged(ctx context.Context, kind domain.DataChange) error
	PublishMapRendered(ctx context.Context, event *domain.MapRenderedEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeDataChanged(ctx context.Context, handler func(ctx context.Context, kind domain.DataChange) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
