package usecases

import (
	"context"
	"log/slog"

	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/core/ports"
)

// mapCachePrefix prefixes every cached rendering.
const mapCachePrefix = "map:"

// notifyChanged drops cached renderings and announces the change. Both steps
// are best effort: the write they follow has already succeeded.
func notifyChanged(ctx context.Context, cache ports.CacheService, events ports.EventPublisher, kind domain.DataChange) {
	if cache != nil {
		if err := cache.DeletePrefix(ctx, mapCachePrefix); err != nil {
			slog.Warn("map cache invalidation failed", "kind", kind, "error", err)
		}
	}
	if events != nil {
		if err := events.PublishDataChanged(ctx, kind); err != nil {
			slog.Warn("publish data change failed", "kind", kind, "error", err)
		}
	}
}
