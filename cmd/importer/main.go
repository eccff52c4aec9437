package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	natsadapter "github.com/samirrijal/tripmap/internal/adapters/nats"
	"github.com/samirrijal/tripmap/internal/adapters/postgres"
	"github.com/samirrijal/tripmap/internal/adapters/valkey"
	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/core/ports"
	"github.com/samirrijal/tripmap/internal/core/usecases"
	"github.com/samirrijal/tripmap/internal/pkg/config"
	"github.com/samirrijal/tripmap/internal/pkg/logging"
)

// Seed is the import file layout: cities keyed by name, trips in file order.
type Seed struct {
	Cities map[string]SeedCity `json:"cities"`
	Trips  []SeedTrip          `json:"trips"`
}

type SeedCity struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Note      string  `json:"note"`
}

type SeedTrip struct {
	Date        string `json:"date"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: importer <seed.json|https://...> [replace|append]")
	}
	mode := "replace"
	if len(os.Args) > 2 {
		mode = os.Args[2]
	}
	if mode != "replace" && mode != "append" {
		log.Fatalf("unknown mode %q", mode)
	}

	cfg, err := config.Load("tripmap-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("tripmap-importer", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	seed, err := loadSeed(ctx, os.Args[1])
	if err != nil {
		log.Fatalf("load seed: %v", err)
	}
	slog.Info("seed loaded", "source", os.Args[1], "cities", len(seed.Cities), "trips", len(seed.Trips))

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Invalidation and change events are best effort here too.
	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, cached maps expire on their own", "error", err)
	} else {
		defer c.Close()
		cache = c
	}
	var events ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, no change events", "error", err)
	} else {
		defer p.Close()
		events = p
	}

	cityRepo := postgres.NewCityRepo(db)
	tripRepo := postgres.NewTripRepo(db)
	source, _ := cfg.Map.Datums()
	citySvc := usecases.NewCityService(cityRepo, cache, events, source)
	tripSvc := usecases.NewTripService(tripRepo, cityRepo, cache, events)

	summary, err := citySvc.Upsert(ctx, seed.cities())
	if err != nil {
		log.Fatalf("import cities: %v", err)
	}
	slog.Info("cities imported", "added", summary.Added, "updated", summary.Updated)

	trips := seed.trips()
	switch mode {
	case "replace":
		n, err := tripSvc.ReplaceAll(ctx, trips)
		if err != nil {
			log.Fatalf("import trips: %v", err)
		}
		slog.Info("trips replaced", "count", n)
	case "append":
		added := 0
		for i, t := range trips {
			if _, err := tripSvc.Add(ctx, t); err != nil {
				slog.Error("trip rejected", "index", i+1, "date", t.Date,
					"origin", t.Origin, "destination", t.Destination, "error", err)
				continue
			}
			added++
		}
		slog.Info("trips appended", "added", added, "rejected", len(trips)-added)
	}
}

func (s Seed) cities() []domain.City {
	names := make([]string, 0, len(s.Cities))
	for name := range s.Cities {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.City, 0, len(names))
	for _, name := range names {
		c := s.Cities[name]
		out = append(out, domain.City{
			Name:     name,
			Location: domain.GeoPoint{Lat: c.Latitude, Lon: c.Longitude},
			Note:     c.Note,
		})
	}
	return out
}

func (s Seed) trips() []domain.Trip {
	out := make([]domain.Trip, len(s.Trips))
	for i, t := range s.Trips {
		out[i] = domain.Trip{Date: t.Date, Origin: t.Origin, Destination: t.Destination}
	}
	return out
}

// loadSeed reads a seed from a local path or an http(s) URL.
func loadSeed(ctx context.Context, src string) (*Seed, error) {
	var r io.Reader
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		client := &http.Client{Timeout: 60 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, src)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return &seed, nil
}
