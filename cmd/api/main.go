package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/tripmap/internal/adapters/http"
	natsadapter "github.com/samirrijal/tripmap/internal/adapters/nats"
	"github.com/samirrijal/tripmap/internal/adapters/postgres"
	"github.com/samirrijal/tripmap/internal/adapters/valkey"
	"github.com/samirrijal/tripmap/internal/core/ports"
	"github.com/samirrijal/tripmap/internal/core/usecases"
	"github.com/samirrijal/tripmap/internal/pkg/config"
	"github.com/samirrijal/tripmap/internal/pkg/logging"
	"github.com/samirrijal/tripmap/internal/pkg/metrics"
	"github.com/samirrijal/tripmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("tripmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup("tripmap-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache and events are optional; the API degrades to uncached, silent
	// operation without them. Interface values stay nil on failure.
	var cachePort ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cachePort = cache
	}

	var events ports.EventPublisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
		events = publisher
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Repos
	cityRepo := postgres.NewCityRepo(db)
	tripRepo := postgres.NewTripRepo(db)

	// Use cases
	source, display := cfg.Map.Datums()
	citySvc := usecases.NewCityService(cityRepo, cachePort, events, source)
	tripSvc := usecases.NewTripService(tripRepo, cityRepo, cachePort, events)
	mapSvc := usecases.NewMapService(tripRepo, cityRepo, cachePort, events, usecases.MapSettings{
		SourceDatum:  source,
		DisplayDatum: display,
		Segments:     cfg.Map.CurveSegments,
		Palette:      cfg.Map.Palette,
		CacheTTL:     cfg.Map.CacheTTL,
	})

	deps := &http.Dependencies{
		Cities: citySvc,
		Trips:  tripSvc,
		Map:    mapSvc,
		NATS:   natsConn,
		DB:     db,
		Cache:  cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // trip uploads replace the whole list
		AppName:      "Tripmap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "source_datum", source, "display_datum", display)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the DB pool gauges until ctx ends.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if st := db.Stat(); st != nil {
				metrics.UpdateDBPoolMetrics(st)
			}
		}
	}
}
