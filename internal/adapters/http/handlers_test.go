package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/tripmap/internal/adapters/http"
	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/core/usecases"
)

// ---- Mock repositories ----

type mockCityRepo struct {
	listFn        func(ctx context.Context) ([]domain.City, error)
	getByNameFn   func(ctx context.Context, name string) (*domain.City, error)
	upsertBatchFn func(ctx context.Context, cities []domain.City) (domain.UpsertSummary, error)
	deleteFn      func(ctx context.Context, name string) error
}

func (m *mockCityRepo) List(ctx context.Context) ([]domain.City, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockCityRepo) GetByName(ctx context.Context, name string) (*domain.City, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}
func (m *mockCityRepo) UpsertBatch(ctx context.Context, cities []domain.City) (domain.UpsertSummary, error) {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, cities)
	}
	return domain.UpsertSummary{Added: len(cities), Total: len(cities)}, nil
}
func (m *mockCityRepo) Delete(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

type mockTripRepo struct {
	listFn       func(ctx context.Context, r domain.DateRange) ([]domain.Trip, error)
	createFn     func(ctx context.Context, trip *domain.Trip) error
	replaceAllFn func(ctx context.Context, trips []domain.Trip) error
	deleteFn     func(ctx context.Context, id string) error
}

func (m *mockTripRepo) List(ctx context.Context, r domain.DateRange) ([]domain.Trip, error) {
	if m.listFn != nil {
		return m.listFn(ctx, r)
	}
	return nil, nil
}
func (m *mockTripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	if m.createFn != nil {
		return m.createFn(ctx, trip)
	}
	return nil
}
func (m *mockTripRepo) ReplaceAll(ctx context.Context, trips []domain.Trip) error {
	if m.replaceAllFn != nil {
		return m.replaceAllFn(ctx, trips)
	}
	return nil
}
func (m *mockTripRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// ---- Fixtures ----

var testCities = []domain.City{
	{Name: "北京", Location: domain.GeoPoint{Lat: 39.9042, Lon: 116.4074}, Note: "capital"},
	{Name: "上海", Location: domain.GeoPoint{Lat: 31.2304, Lon: 121.4737}},
	{Name: "成都", Location: domain.GeoPoint{Lat: 30.5728, Lon: 104.0668}},
}

var testTrips = []domain.Trip{
	{ID: "00000000-0000-0000-0000-000000000001", Date: "2025-01-05", Origin: "北京", Destination: "上海"},
	{ID: "00000000-0000-0000-0000-000000000002", Date: "2025-01-08", Origin: "上海", Destination: "成都"},
	{ID: "00000000-0000-0000-0000-000000000003", Date: "2025-02-01", Origin: "成都", Destination: "北京"},
}

func fixedClock() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

func cityStore() *mockCityRepo {
	return &mockCityRepo{
		listFn: func(ctx context.Context) ([]domain.City, error) {
			return append([]domain.City(nil), testCities...), nil
		},
		getByNameFn: func(ctx context.Context, name string) (*domain.City, error) {
			for _, c := range testCities {
				if c.Name == name {
					return &c, nil
				}
			}
			return nil, domain.ErrNotFound
		},
	}
}

func tripStore() *mockTripRepo {
	return &mockTripRepo{
		listFn: func(ctx context.Context, r domain.DateRange) ([]domain.Trip, error) {
			var out []domain.Trip
			for _, t := range testTrips {
				if r.Includes(t.Date) {
					out = append(out, t)
				}
			}
			return out, nil
		},
	}
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(cities *mockCityRepo, trips *mockTripRepo) *handler.Dependencies {
	return &handler.Dependencies{
		Cities: usecases.NewCityService(cities, nil, nil, domain.DatumWGS84),
		Trips:  usecases.NewTripService(trips, cities, nil, nil).WithClock(fixedClock),
		Map: usecases.NewMapService(trips, cities, nil, nil, usecases.MapSettings{
			SourceDatum:  domain.DatumWGS84,
			DisplayDatum: domain.DatumGCJ02,
		}),
	}
}

func defaultApp() *fiber.App {
	return setupApp(makeDeps(cityStore(), tripStore()))
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte, map[string]string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	headers := map[string]string{}
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return resp.StatusCode, readBody(t, resp.Body), headers
}

func decodeError(t *testing.T, body []byte) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return apiErr
}

type cityPage struct {
	Data       []handler.CityView `json:"data"`
	Pagination handler.Pagination `json:"pagination"`
}

// ---- City handler tests ----

func TestListCities_Success(t *testing.T) {
	status, body, headers := do(t, defaultApp(), "GET", "/v1/cities", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var page cityPage
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatal(err)
	}
	if page.Pagination.Total != 3 {
		t.Errorf("expected total 3, got %d", page.Pagination.Total)
	}
	// Sorted by name.
	if page.Data[0].Name != "上海" {
		t.Errorf("expected 上海 first, got %s", page.Data[0].Name)
	}
	for _, c := range page.Data {
		if c.Datum != domain.DatumWGS84 {
			t.Errorf("%s: expected wgs84, got %s", c.Name, c.Datum)
		}
	}
	if headers["Cache-Control"] != "public, max-age=600" {
		t.Errorf("unexpected Cache-Control %q", headers["Cache-Control"])
	}
	if !strings.Contains(headers["Link"], `rel="first"`) {
		t.Errorf("expected Link header, got %q", headers["Link"])
	}
}

func TestListCities_Pagination(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "GET", "/v1/cities?offset=1&limit=1", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var page cityPage
	json.Unmarshal(body, &page)
	if len(page.Data) != 1 || page.Pagination.Offset != 1 || page.Pagination.Total != 3 {
		t.Errorf("unexpected page %+v", page.Pagination)
	}
}

func TestListCities_ConvertsDatum(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "GET", "/v1/cities?datum=GCJ02", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var page cityPage
	json.Unmarshal(body, &page)

	for _, c := range page.Data {
		if c.Datum != domain.DatumGCJ02 {
			t.Errorf("%s: expected gcj02, got %s", c.Name, c.Datum)
		}
		if c.Name == "北京" && c.Location.Lat == 39.9042 {
			t.Error("expected Beijing to be shifted into gcj02")
		}
	}
}

func TestListCities_BadDatum(t *testing.T) {
	status, body, headers := do(t, defaultApp(), "GET", "/v1/cities?datum=bd09", "")
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if code := decodeError(t, body).Code; code != "bad_request" {
		t.Errorf("expected bad_request, got %s", code)
	}
	if headers["Cache-Control"] != "no-store" {
		t.Errorf("expected errors to be uncached, got %q", headers["Cache-Control"])
	}
}

func TestGetCity_EncodedName(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "GET", "/v1/cities/%E5%8C%97%E4%BA%AC", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var city handler.CityView
	json.Unmarshal(body, &city)
	if city.Name != "北京" || city.Note != "capital" {
		t.Errorf("unexpected city %+v", city)
	}
}

func TestGetCity_NotFound(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "GET", "/v1/cities/Atlantis", "")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	if code := decodeError(t, body).Code; code != "not_found" {
		t.Errorf("expected not_found, got %s", code)
	}
}

func TestUpsertCities(t *testing.T) {
	var got []domain.City
	cities := cityStore()
	cities.upsertBatchFn = func(ctx context.Context, in []domain.City) (domain.UpsertSummary, error) {
		got = in
		return domain.UpsertSummary{Added: 1, Updated: 1, Total: 2}, nil
	}
	app := setupApp(makeDeps(cities, tripStore()))

	bodies := map[string]string{
		"wrapped": `{"cities":[{"name":"西安","location":{"lat":34.34,"lon":108.94}},{"name":" 北京 ","location":{"lat":39.9,"lon":116.4}}]}`,
		"bare":    `[{"name":"西安","location":{"lat":34.34,"lon":108.94}},{"name":"北京","location":{"lat":39.9,"lon":116.4}}]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			status, resp, _ := do(t, app, "POST", "/v1/cities", body)
			if status != 200 {
				t.Fatalf("expected 200, got %d: %s", status, resp)
			}
			var summary domain.UpsertSummary
			json.Unmarshal(resp, &summary)
			if summary.Added != 1 || summary.Updated != 1 {
				t.Errorf("unexpected summary %+v", summary)
			}
			if len(got) != 2 || got[1].Name != "北京" {
				t.Errorf("expected trimmed names, got %+v", got)
			}
		})
	}
}

func TestUpsertCities_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"cities":`},
		{"empty", `[]`},
		{"bad latitude", `[{"name":"X","location":{"lat":91,"lon":0}}]`},
		{"blank name", `[{"name":"  ","location":{"lat":1,"lon":1}}]`},
	}
	app := defaultApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _, _ := do(t, app, "POST", "/v1/cities", tt.body)
			if status != 400 {
				t.Errorf("expected 400, got %d", status)
			}
		})
	}
}

func TestDeleteCity(t *testing.T) {
	cities := cityStore()
	cities.deleteFn = func(ctx context.Context, name string) error {
		if name == "北京" {
			return domain.ErrCityInUse
		}
		return nil
	}
	app := setupApp(makeDeps(cities, tripStore()))

	status, body, _ := do(t, app, "DELETE", "/v1/cities/%E5%8C%97%E4%BA%AC", "")
	if status != 409 {
		t.Fatalf("expected 409, got %d", status)
	}
	if code := decodeError(t, body).Code; code != "conflict" {
		t.Errorf("expected conflict, got %s", code)
	}

	status, _, _ = do(t, app, "DELETE", "/v1/cities/Lhasa", "")
	if status != 204 {
		t.Errorf("expected 204, got %d", status)
	}
}

// ---- Trip handler tests ----

func TestListTrips_Range(t *testing.T) {
	var seen domain.DateRange
	trips := tripStore()
	inner := trips.listFn
	trips.listFn = func(ctx context.Context, r domain.DateRange) ([]domain.Trip, error) {
		seen = r
		return inner(ctx, r)
	}
	app := setupApp(makeDeps(cityStore(), trips))

	status, body, _ := do(t, app, "GET", "/v1/trips?start_date=2025-01-06", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	// Only a start: the range ends today.
	if seen != (domain.DateRange{Start: "2025-01-06", End: "2025-03-10"}) {
		t.Errorf("unexpected range %+v", seen)
	}

	var page struct {
		Data       []domain.Trip      `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	json.Unmarshal(body, &page)
	if page.Pagination.Total != 2 {
		t.Errorf("expected 2 trips, got %d", page.Pagination.Total)
	}
}

func TestListTrips_InvalidRange(t *testing.T) {
	app := defaultApp()
	for _, q := range []string{
		"start_date=2025-02-01&end_date=2025-01-01",
		"start_date=yesterday",
		"start_date=2025/1/6",
		"end_date=2025/01/31",
	} {
		status, _, _ := do(t, app, "GET", "/v1/trips?"+q, "")
		if status != 400 {
			t.Errorf("%s: expected 400, got %d", q, status)
		}
	}
}

func TestCreateTrip(t *testing.T) {
	var stored *domain.Trip
	trips := tripStore()
	trips.createFn = func(ctx context.Context, trip *domain.Trip) error {
		stored = trip
		return nil
	}
	app := setupApp(makeDeps(cityStore(), trips))

	status, body, _ := do(t, app, "POST", "/v1/trips", `{"date":"2025/3/1","origin":"北京","destination":"成都"}`)
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	var created domain.Trip
	json.Unmarshal(body, &created)
	if created.ID == "" || created.Date != "2025-03-01" {
		t.Errorf("unexpected trip %+v", created)
	}
	if stored == nil || stored.ID != created.ID {
		t.Error("expected trip to be stored")
	}
}

func TestCreateTrip_UnknownCity(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "POST", "/v1/trips", `{"date":"2025-03-01","origin":"北京","destination":"Atlantis"}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if msg := decodeError(t, body).Message; !strings.Contains(msg, "Atlantis") {
		t.Errorf("expected the city in the message, got %q", msg)
	}
}

func TestReplaceTrips(t *testing.T) {
	var stored []domain.Trip
	trips := tripStore()
	trips.replaceAllFn = func(ctx context.Context, in []domain.Trip) error {
		stored = in
		return nil
	}
	app := setupApp(makeDeps(cityStore(), trips))

	body := `{"trips":[{"date":"2025-04-01","origin":"上海","destination":"北京"},{"date":"2025/4/2","origin":"北京","destination":"成都"}]}`
	status, resp, _ := do(t, app, "PUT", "/v1/trips", body)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, resp)
	}
	var result struct {
		Count int `json:"count"`
	}
	json.Unmarshal(resp, &result)
	if result.Count != 2 || len(stored) != 2 {
		t.Errorf("expected 2 trips stored, got %d / %d", result.Count, len(stored))
	}
}

func TestReplaceTrips_AllOrNothing(t *testing.T) {
	called := false
	trips := tripStore()
	trips.replaceAllFn = func(ctx context.Context, in []domain.Trip) error {
		called = true
		return nil
	}
	app := setupApp(makeDeps(cityStore(), trips))

	body := `[{"date":"2025-04-01","origin":"上海","destination":"北京"},{"date":"04/02/2025","origin":"北京","destination":"成都"}]`
	status, resp, _ := do(t, app, "PUT", "/v1/trips", body)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if msg := decodeError(t, resp).Message; !strings.HasPrefix(msg, "trip 2:") {
		t.Errorf("expected the failing trip to be named, got %q", msg)
	}
	if called {
		t.Error("nothing should be written when a trip is invalid")
	}
}

func TestDeleteTrip(t *testing.T) {
	app := defaultApp()

	status, _, _ := do(t, app, "DELETE", "/v1/trips/not-a-uuid", "")
	if status != 404 {
		t.Errorf("expected 404, got %d", status)
	}
	status, _, _ = do(t, app, "DELETE", "/v1/trips/"+testTrips[0].ID, "")
	if status != 204 {
		t.Errorf("expected 204, got %d", status)
	}
}

// ---- Map handler tests ----

func TestMap_Success(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "GET", "/v1/map", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var resp struct {
		Result domain.RenderResult `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	res := resp.Result
	if len(res.Routes) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(res.Routes))
	}
	if res.Datum != domain.DatumGCJ02 {
		t.Errorf("expected gcj02, got %s", res.Datum)
	}
	if res.Earliest == nil || res.Earliest.Date != "2025-01-05" {
		t.Errorf("unexpected earliest %+v", res.Earliest)
	}
	if res.Latest == nil || res.Latest.Date != "2025-02-01" {
		t.Errorf("unexpected latest %+v", res.Latest)
	}
	for i, r := range res.Routes {
		if r.SequenceNumber != i+1 {
			t.Errorf("route %d: sequence %d", i, r.SequenceNumber)
		}
		if len(r.Path) != 51 || r.Polyline == "" {
			t.Errorf("route %d: %d points, polyline %q", i, len(r.Path), r.Polyline)
		}
	}
}

func TestMap_RangeFilter(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "GET", "/v1/map?start_date=2025-01-06&end_date=2025-01-31", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var resp struct {
		Result domain.RenderResult `json:"result"`
	}
	json.Unmarshal(body, &resp)
	if len(resp.Result.Routes) != 1 || resp.Result.Routes[0].Trip.Origin != "上海" {
		t.Errorf("expected only the 上海 → 成都 trip, got %+v", resp.Result.Routes)
	}
}

func TestMap_RepositoryError(t *testing.T) {
	trips := &mockTripRepo{
		listFn: func(ctx context.Context, r domain.DateRange) ([]domain.Trip, error) {
			return nil, fmt.Errorf("connection reset")
		},
	}
	status, body, _ := do(t, setupApp(makeDeps(cityStore(), trips)), "GET", "/v1/map", "")
	if status != 500 {
		t.Fatalf("expected 500, got %d", status)
	}
	if msg := decodeError(t, body).Message; strings.Contains(msg, "connection reset") {
		t.Errorf("internal details leaked: %q", msg)
	}
}

func TestStats(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "GET", "/v1/stats", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var resp struct {
		Stats domain.RenderStats `json:"stats"`
	}
	json.Unmarshal(body, &resp)
	if resp.Stats.TotalTrips != 3 || resp.Stats.UniqueCities != 3 || resp.Stats.Journeys != 1 {
		t.Errorf("unexpected stats %+v", resp.Stats)
	}
}

// ---- Legacy endpoint ----

func TestLegacyTrips(t *testing.T) {
	status, body, headers := do(t, defaultApp(), "GET", "/api/trips?start_date=2025-01-01&end_date=2025-01-31", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if headers["Deprecation"] != "true" || headers["Sunset"] == "" {
		t.Errorf("expected deprecation headers, got %v", headers)
	}

	var resp struct {
		Success bool                       `json:"success"`
		Trips   []map[string]string        `json:"trips"`
		Cities  map[string]json.RawMessage `json:"cities"`
		Total   int                        `json:"total"`
		Filters map[string]string          `json:"filters"`
		System  string                     `json:"coordinateSystem"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Total != 2 || len(resp.Trips) != 2 {
		t.Errorf("unexpected payload %s", body)
	}
	if resp.System != "GCJ02" {
		t.Errorf("expected GCJ02, got %s", resp.System)
	}
	if _, ok := resp.Cities["成都"]; !ok {
		t.Error("expected cities keyed by name")
	}
	if resp.Filters["end_date"] != "2025-01-31" {
		t.Errorf("unexpected filters %v", resp.Filters)
	}
}

func TestLegacyTrips_BadRange(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "GET", "/api/trips?start_date=2025-02-01&end_date=2025-01-01", "")
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	var resp map[string]interface{}
	json.Unmarshal(body, &resp)
	if resp["success"] != false || resp["error"] == "" {
		t.Errorf("unexpected body %s", body)
	}
}

// ---- GraphQL ----

func TestGraphQL_Query(t *testing.T) {
	query := `{"query":"{ cities(datum: \"gcj02\") { name datum } trips(start_date: \"2025-02-01\") { origin destination } stats { total_trips } }"}`
	status, body, _ := do(t, defaultApp(), "POST", "/graphql", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var resp struct {
		Data struct {
			Cities []struct {
				Name  string `json:"name"`
				Datum string `json:"datum"`
			} `json:"cities"`
			Trips []domain.Trip `json:"trips"`
			Stats struct {
				TotalTrips int `json:"total_trips"`
			} `json:"stats"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) > 0 {
		t.Fatalf("graphql errors: %v", resp.Errors)
	}
	if len(resp.Data.Cities) != 3 || resp.Data.Cities[0].Datum != "gcj02" {
		t.Errorf("unexpected cities %+v", resp.Data.Cities)
	}
	if len(resp.Data.Trips) != 1 || resp.Data.Trips[0].Destination != "北京" {
		t.Errorf("unexpected trips %+v", resp.Data.Trips)
	}
	if resp.Data.Stats.TotalTrips != 3 {
		t.Errorf("expected 3 trips, got %d", resp.Data.Stats.TotalTrips)
	}
}

func TestGraphQL_Map(t *testing.T) {
	query := `{"query":"{ map { datum routes { sequence_number color origin_role } earliest { date } } }"}`
	status, body, _ := do(t, defaultApp(), "POST", "/graphql", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var resp struct {
		Data struct {
			Map struct {
				Datum  string `json:"datum"`
				Routes []struct {
					SequenceNumber int    `json:"sequence_number"`
					Color          string `json:"color"`
					OriginRole     string `json:"origin_role"`
				} `json:"routes"`
			} `json:"map"`
		} `json:"data"`
	}
	json.Unmarshal(body, &resp)
	if resp.Data.Map.Datum != "gcj02" || len(resp.Data.Map.Routes) != 3 {
		t.Fatalf("unexpected map %s", body)
	}
	if resp.Data.Map.Routes[0].OriginRole != string(domain.RoleJourneyStart) {
		t.Errorf("expected first route to start the journey, got %s", resp.Data.Map.Routes[0].OriginRole)
	}
}

func TestGraphQL_BadBody(t *testing.T) {
	status, _, _ := do(t, defaultApp(), "POST", "/graphql", `not json`)
	if status != 400 {
		t.Errorf("expected 400, got %d", status)
	}
}

// ---- Health handler tests ----

func TestHealth_Returns200(t *testing.T) {
	status, body, _ := do(t, defaultApp(), "GET", "/v1/health", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var result map[string]interface{}
	json.Unmarshal(body, &result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
	if result["datum"] != "gcj02" {
		t.Errorf("expected display datum, got %v", result["datum"])
	}
}

func TestReady_NoDB(t *testing.T) {
	// DB, NATS, Cache are nil → not ready
	status, _, _ := do(t, defaultApp(), "GET", "/v1/ready", "")
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

// ---- Middleware ----

func TestETag_NotModified(t *testing.T) {
	app := defaultApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/cities", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	etag := resp.Header.Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}

	req := httptest.NewRequest("GET", "/v1/cities", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestSecurityHeaders(t *testing.T) {
	_, _, headers := do(t, defaultApp(), "GET", "/v1/health", "")
	if headers["X-Content-Type-Options"] != "nosniff" {
		t.Errorf("missing nosniff header")
	}
	if headers["X-Api-Version"] != handler.Version {
		t.Errorf("expected X-API-Version %s, got %q", handler.Version, headers["X-Api-Version"])
	}
	if headers["X-Request-Id"] == "" {
		t.Error("expected a request ID")
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	status, _, _ := do(t, defaultApp(), "GET", "/ws", "")
	if status != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", status)
	}
}
