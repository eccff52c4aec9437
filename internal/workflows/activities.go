package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/core/ports"
	"github.com/samirrijal/tripmap/internal/pkg/metrics"
	"github.com/samirrijal/tripmap/internal/pkg/telemetry"
)

// Renderer renders a date range. *usecases.MapService satisfies it.
type Renderer interface {
	Render(ctx context.Context, r domain.DateRange) (*domain.RenderResult, error)
}

// SnapshotActivities holds the activity implementations for the snapshot workflow.
type SnapshotActivities struct {
	Renderer Renderer
	Events   ports.EventPublisher
	// Now defaults to time.Now.
	Now func() time.Time
}

func (a *SnapshotActivities) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// RenderSnapshot renders the requested range, which also stores it in the map
// cache. Bad ranges are not retried.
func (a *SnapshotActivities) RenderSnapshot(ctx context.Context, input SnapshotInput) (*SnapshotSummary, error) {
	r, err := domain.NewDateRange(input.StartDate, input.EndDate, a.now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) || errors.Is(err, domain.ErrInvalidDateRange) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidRange", err)
		}
		return nil, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSnapshot)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrRangeStart, r.Start),
		attribute.String(telemetry.AttrRangeEnd, r.End),
	)

	res, err := a.Renderer.Render(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", r.Key(), err)
	}

	trigger := input.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}
	metrics.SnapshotsTotal.WithLabelValues(trigger).Inc()

	return &SnapshotSummary{
		Range:      r,
		Stats:      res.Stats,
		RenderedAt: a.now().UTC(),
	}, nil
}

// PublishSnapshot broadcasts the snapshot summary.
func (a *SnapshotActivities) PublishSnapshot(ctx context.Context, summary *SnapshotSummary) error {
	if a.Events == nil {
		slog.Info("snapshot ready (no publisher)", "range", summary.Range.Key(),
			"routes", summary.Stats.RenderedRoutes)
		return nil
	}
	event := &domain.MapRenderedEvent{
		Range:      summary.Range,
		Stats:      summary.Stats,
		RenderedAt: summary.RenderedAt,
	}
	if err := a.Events.PublishMapRendered(ctx, event); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", summary.Range.Key(), err)
	}
	return nil
}
