package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/tripmap/internal/adapters/nats"
	"github.com/samirrijal/tripmap/internal/adapters/postgres"
	"github.com/samirrijal/tripmap/internal/adapters/valkey"
	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/core/ports"
	"github.com/samirrijal/tripmap/internal/core/usecases"
	"github.com/samirrijal/tripmap/internal/pkg/config"
	"github.com/samirrijal/tripmap/internal/pkg/logging"
	"github.com/samirrijal/tripmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("tripmap-snapshotter")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("tripmap-snapshotter", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Without a cache a snapshot warms nothing.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	var events ports.EventPublisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats publisher unavailable, snapshots will not be announced", "error", err)
	} else {
		defer publisher.Close()
		events = publisher
	}

	// The map service gets no publisher: PublishSnapshot announces the result.
	source, display := cfg.Map.Datums()
	cityRepo := postgres.NewCityRepo(db)
	tripRepo := postgres.NewTripRepo(db)
	mapSvc := usecases.NewMapService(tripRepo, cityRepo, cache, nil, usecases.MapSettings{
		SourceDatum:  source,
		DisplayDatum: display,
		Segments:     cfg.Map.CurveSegments,
		Palette:      cfg.Map.Palette,
		CacheTTL:     cfg.Map.CacheTTL,
	})

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.MapSnapshotWorkflow)
	w.RegisterActivity(&workflows.SnapshotActivities{Renderer: mapSvc, Events: events})

	// Every data change re-renders the all-time map.
	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL, "tripmap-snapshotter")
	if err != nil {
		slog.Warn("nats subscriber unavailable, snapshots only run on demand", "error", err)
	} else {
		defer subscriber.Close()
		err = subscriber.SubscribeDataChanged(ctx, func(ctx context.Context, kind domain.DataChange) error {
			return startSnapshot(ctx, c, cfg.Temporal.TaskQueue, kind)
		})
		if err != nil {
			log.Fatalf("subscribe data changes: %v", err)
		}
	}

	slog.Info("snapshot worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func startSnapshot(ctx context.Context, c client.Client, queue string, kind domain.DataChange) error {
	opts := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("map-snapshot-%s-%d", kind, time.Now().UnixNano()),
		TaskQueue: queue,
	}
	run, err := c.ExecuteWorkflow(ctx, opts, workflows.MapSnapshotWorkflow, workflows.SnapshotInput{
		Trigger: workflows.TriggerDataChanged,
	})
	if err != nil {
		return fmt.Errorf("start snapshot: %w", err)
	}
	slog.Info("snapshot started", "kind", kind, "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}
