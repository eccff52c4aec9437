package domain

import (
	"time"
)

// City is a named place trips can start or end at. Name is the unique key.
type City struct {
	Name      string    `json:"name"`
	Location  GeoPoint  `json:"location"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Trip is a single dated leg between two cities.
type Trip struct {
	ID          string    `json:"id,omitempty"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// EndpointRole tells the drawing layer how to style a route endpoint.
type EndpointRole string

const (
	RolePlain        EndpointRole = "plain"
	RoleJourneyStart EndpointRole = "journey_start"
	RoleJourneyEnd   EndpointRole = "journey_end"
)

// RenderedRoute is the drawable output for one trip.
type RenderedRoute struct {
	Trip            Trip         `json:"trip"`
	Path            []GeoPoint   `json:"path"`
	Polyline        string       `json:"polyline"`
	Label           GeoPoint     `json:"label"` // sequence marker anchor
	Offset          float64      `json:"offset"`
	ColorIndex      int          `json:"color_index"`
	Color           string       `json:"color"`
	OriginRole      EndpointRole `json:"origin_role"`
	DestinationRole EndpointRole `json:"destination_role"`
	SequenceNumber  int          `json:"sequence_number"`
	PairOccurrence  int          `json:"pair_occurrence"`
}

// RenderStats summarises a rendering pass.
type RenderStats struct {
	TotalTrips     int `json:"total_trips"`
	UniqueCities   int `json:"unique_cities"`
	Journeys       int `json:"journeys"`
	RenderedRoutes int `json:"rendered_routes"`
	SkippedTrips   int `json:"skipped_trips"`
}

// RenderResult is everything a drawing layer needs for one pass.
type RenderResult struct {
	Routes   []RenderedRoute `json:"routes"`
	Earliest *Trip           `json:"earliest,omitempty"`
	Latest   *Trip           `json:"latest,omitempty"`
	Skipped  []Trip          `json:"skipped,omitempty"`
	Palette  []string        `json:"palette"`
	Datum    Datum           `json:"datum"`
	// Bounds covers the city markers of the rendered routes.
	Bounds *Bounds     `json:"bounds,omitempty"`
	Stats  RenderStats `json:"stats"`
}

// UpsertSummary reports what a batch city upsert did.
type UpsertSummary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// DataChange identifies which data set a change event refers to.
type DataChange string

const (
	ChangeCities DataChange = "cities"
	ChangeTrips  DataChange = "trips"
)

// MapRenderedEvent is broadcast after a map has been rendered.
type MapRenderedEvent struct {
	Range      DateRange   `json:"range"`
	Stats      RenderStats `json:"stats"`
	RenderedAt time.Time   `json:"rendered_at"`
}
