package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint and the X-API-Version header.
var Version = "1.0.0"

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": Version,
		}
		if deps.Map != nil {
			body["datum"] = deps.Map.DisplayDatum()
		}
		return c.JSON(body)
	}
}

// readinessCheck probes one dependency. Optional dependencies that are not
// configured do not block readiness.
type readinessCheck struct {
	name     string
	required bool
	probe    func(ctx context.Context) (configured bool, err error)
}

func readinessChecks(deps *Dependencies) []readinessCheck {
	return []readinessCheck{
		{name: "database", required: true, probe: func(ctx context.Context) (bool, error) {
			if deps.DB == nil {
				return false, nil
			}
			return true, deps.DB.Pool.Ping(ctx)
		}},
		{name: "nats", probe: func(ctx context.Context) (bool, error) {
			if deps.NATS == nil {
				return false, nil
			}
			if !deps.NATS.IsConnected() {
				return true, errors.New("disconnected")
			}
			return true, nil
		}},
		{name: "cache", probe: func(ctx context.Context) (bool, error) {
			if deps.Cache == nil {
				return false, nil
			}
			return true, deps.Cache.Ping(ctx)
		}},
	}
}

// ReadyHandler reports 503 while the database or a configured NATS/cache
// connection is unreachable.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := readinessChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, chk := range checks {
			configured, err := chk.probe(ctx)
			switch {
			case !configured:
				results[chk.name] = "not configured"
				ready = ready && !chk.required
			case err != nil:
				results[chk.name] = "error: " + err.Error()
				ready = false
			default:
				results[chk.name] = "ok"
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
