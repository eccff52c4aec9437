package http

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// CityView is a city tagged with the datum its location is expressed in.
type CityView struct {
	domain.City
	Datum domain.Datum `json:"datum"`
}

type cityBatch struct {
	Cities []domain.City `json:"cities"`
}

type tripBatch struct {
	Trips []domain.Trip `json:"trips"`
}

// pathParam returns a URL-decoded route parameter. City names are routinely
// non-ASCII.
func pathParam(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// parseDatumQuery reads the optional ?datum= parameter.
func parseDatumQuery(c *fiber.Ctx) (domain.Datum, error) {
	q := strings.ToLower(strings.TrimSpace(c.Query("datum")))
	if q == "" {
		return "", nil
	}
	return domain.ParseDatum(q)
}

// ListCitiesHandler returns all cities, optionally converted to another datum.
func ListCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		datum, err := parseDatumQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		cities, err := deps.Cities.List(c.UserContext(), datum)
		if err != nil {
			return errFromDomain(c, err)
		}
		if datum == "" {
			datum = deps.Cities.SourceDatum()
		}

		pg := pageParams(c, len(cities))
		page := paginate(cities, pg)
		views := make([]CityView, len(page))
		for i, city := range page {
			views[i] = CityView{City: city, Datum: datum}
		}

		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: views, Pagination: pg})
	}
}

// GetCityHandler returns one city by name.
func GetCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		city, err := deps.Cities.Get(c.UserContext(), pathParam(c, "name"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(CityView{City: *city, Datum: deps.Cities.SourceDatum()})
	}
}

// UpsertCitiesHandler creates or updates a batch of cities. The body is either
// {"cities": [...]} or a bare array.
func UpsertCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cities, err := decodeList(c.Body(), func(b *cityBatch) []domain.City { return b.Cities })
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(cities) == 0 {
			return errBadRequest(c, "no cities given")
		}

		summary, err := deps.Cities.Upsert(c.UserContext(), cities)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(summary)
	}
}

// DeleteCityHandler removes a city no trip references.
func DeleteCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Cities.Delete(c.UserContext(), pathParam(c, "name")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListTripsHandler returns trips inside the optional start_date/end_date range.
func ListTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := deps.Trips.ParseRange(c.Query("start_date"), c.Query("end_date"))
		if err != nil {
			return errFromDomain(c, err)
		}

		trips, err := deps.Trips.List(c.UserContext(), r)
		if err != nil {
			return errFromDomain(c, err)
		}

		pg := pageParams(c, len(trips))
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: paginate(trips, pg), Pagination: pg})
	}
}

// CreateTripHandler stores a single trip.
func CreateTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var trip domain.Trip
		if err := c.BodyParser(&trip); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		created, err := deps.Trips.Add(c.UserContext(), trip)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// ReplaceTripsHandler swaps the stored trip list for the uploaded one. The body
// is either {"trips": [...]} or a bare array.
func ReplaceTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trips, err := decodeList(c.Body(), func(b *tripBatch) []domain.Trip { return b.Trips })
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}

		n, err := deps.Trips.ReplaceAll(c.UserContext(), trips)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"count": n})
	}
}

// DeleteTripHandler removes a trip by ID.
func DeleteTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Trips.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// decodeList accepts either a JSON array or an object wrapping one.
func decodeList[T any, W any](body []byte, unwrap func(*W) []T) ([]T, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var wrapper W
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, err
	}
	return unwrap(&wrapper), nil
}
