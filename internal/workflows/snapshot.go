package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// Snapshot triggers, used as the metrics label.
const (
	TriggerManual      = "manual"
	TriggerDataChanged = "data_changed"
)

// SnapshotInput is the input for the snapshot workflow. Empty dates mean an
// open range.
type SnapshotInput struct {
	StartDate string
	EndDate   string
	Trigger   string
}

// SnapshotSummary describes a pre-rendered map.
type SnapshotSummary struct {
	Range      domain.DateRange
	Stats      domain.RenderStats
	RenderedAt time.Time
}

// MapSnapshotWorkflow renders a date range ahead of demand so the next API
// request is served from cache, then announces the result.
func MapSnapshotWorkflow(ctx workflow.Context, input SnapshotInput) (*SnapshotSummary, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting map snapshot", "start", input.StartDate, "end", input.EndDate, "trigger", input.Trigger)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var summary SnapshotSummary
	if err := workflow.ExecuteActivity(ctx, "RenderSnapshot", input).Get(ctx, &summary); err != nil {
		return nil, err
	}

	if err := workflow.ExecuteActivity(ctx, "PublishSnapshot", &summary).Get(ctx, nil); err != nil {
		// The cache is already warm; a missed broadcast only delays clients.
		logger.Warn("snapshot publish failed", "error", err)
	}

	logger.Info("Map snapshot complete", "routes", summary.Stats.RenderedRoutes, "skipped", summary.Stats.SkippedTrips)
	return &summary, nil
}
