package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/tripmap/internal/adapters/postgres"
	"github.com/samirrijal/tripmap/internal/adapters/valkey"
	"github.com/samirrijal/tripmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Cities *usecases.CityService
	Trips  *usecases.TripService
	Map    *usecases.MapService
	NATS   *nats.Conn
	DB     *postgres.DB
	Cache  *valkey.Cache
}
