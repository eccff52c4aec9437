package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// MapHandler renders the trips inside the optional date range.
func MapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := deps.Trips.ParseRange(c.Query("start_date"), c.Query("end_date"))
		if err != nil {
			return errFromDomain(c, err)
		}

		res, err := deps.Map.Render(c.UserContext(), r)
		if err != nil {
			return errFromDomain(c, err)
		}
		if res.Stats.SkippedTrips > 0 {
			LoggerFromCtx(c.UserContext()).Info("map rendered with skipped trips",
				"skipped", res.Stats.SkippedTrips, "range", r.Key())
		}
		return c.JSON(fiber.Map{
			"range":  r,
			"result": res,
		})
	}
}

// StatsHandler returns trip and city counts without drawing routes.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := deps.Trips.ParseRange(c.Query("start_date"), c.Query("end_date"))
		if err != nil {
			return errFromDomain(c, err)
		}

		stats, err := deps.Map.Stats(c.UserContext(), r)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"range": r,
			"stats": stats,
		})
	}
}

type legacyCity struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Note      string  `json:"note"`
}

type legacyTrip struct {
	Date        string `json:"date"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// legacyFail answers in the {success:false, error} shape older clients parse.
func legacyFail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

// LegacyTripsHandler serves the pre-v1 combined trips+cities payload with city
// coordinates already in the display datum.
func LegacyTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end := c.Query("start_date"), c.Query("end_date")
		if c.Query("action") == "current" {
			start, end = "", ""
		}

		r, err := deps.Trips.ParseRange(start, end)
		if err != nil {
			return legacyFail(c, fiber.StatusBadRequest, err.Error())
		}

		ctx := c.UserContext()
		datum := deps.Map.DisplayDatum()
		trips, err := deps.Trips.List(ctx, r)
		if err != nil {
			LoggerFromCtx(ctx).Error("legacy trips: list trips", "error", err)
			return legacyFail(c, fiber.StatusInternalServerError, "failed to load trips")
		}
		cities, err := deps.Cities.List(ctx, datum)
		if err != nil {
			LoggerFromCtx(ctx).Error("legacy trips: list cities", "error", err)
			return legacyFail(c, fiber.StatusInternalServerError, "failed to load cities")
		}

		tripsOut := make([]legacyTrip, len(trips))
		for i, t := range trips {
			tripsOut[i] = legacyTrip{Date: t.Date, Origin: t.Origin, Destination: t.Destination}
		}
		citiesOut := make(map[string]legacyCity, len(cities))
		for _, city := range cities {
			citiesOut[city.Name] = legacyCity{
				Latitude:  city.Location.Lat,
				Longitude: city.Location.Lon,
				Note:      city.Note,
			}
		}

		return c.JSON(fiber.Map{
			"success": true,
			"trips":   tripsOut,
			"cities":  citiesOut,
			"total":   len(tripsOut),
			"filters": fiber.Map{
				"start_date": r.Start,
				"end_date":   r.End,
			},
			"coordinateSystem": strings.ToUpper(string(datum)),
		})
	}
}
