package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// rangeArgs are the arguments of every date-filtered query.
func rangeArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"start_date": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
		"end_date":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
	}
}

func argString(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

// routeOf accepts the value or pointer form graphql-go hands to resolvers.
func routeOf(src interface{}) domain.RenderedRoute {
	switch r := src.(type) {
	case domain.RenderedRoute:
		return r
	case *domain.RenderedRoute:
		return *r
	}
	return domain.RenderedRoute{}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"note":     &graphql.Field{Type: graphql.String},
			"datum":    &graphql.Field{Type: graphql.String},
		},
	})

	tripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trip",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"date":        &graphql.Field{Type: graphql.String},
			"origin":      &graphql.Field{Type: graphql.String},
			"destination": &graphql.Field{Type: graphql.String},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RenderedRoute",
		Fields: graphql.Fields{
			"trip":            &graphql.Field{Type: tripType},
			"path":            &graphql.Field{Type: graphql.NewList(geoPointType)},
			"polyline":        &graphql.Field{Type: graphql.String},
			"label":           &graphql.Field{Type: geoPointType},
			"offset":          &graphql.Field{Type: graphql.Float},
			"color_index":     &graphql.Field{Type: graphql.Int},
			"color":           &graphql.Field{Type: graphql.String},
			"sequence_number": &graphql.Field{Type: graphql.Int},
			"pair_occurrence": &graphql.Field{Type: graphql.Int},
			"origin_role": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(routeOf(p.Source).OriginRole), nil
				},
			},
			"destination_role": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(routeOf(p.Source).DestinationRole), nil
				},
			},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RenderStats",
		Fields: graphql.Fields{
			"total_trips":     &graphql.Field{Type: graphql.Int},
			"unique_cities":   &graphql.Field{Type: graphql.Int},
			"journeys":        &graphql.Field{Type: graphql.Int},
			"rendered_routes": &graphql.Field{Type: graphql.Int},
			"skipped_trips":   &graphql.Field{Type: graphql.Int},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	mapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteMap",
		Fields: graphql.Fields{
			"routes":   &graphql.Field{Type: graphql.NewList(routeType)},
			"earliest": &graphql.Field{Type: tripType},
			"latest":   &graphql.Field{Type: tripType},
			"skipped":  &graphql.Field{Type: graphql.NewList(tripType)},
			"palette":  &graphql.Field{Type: graphql.NewList(graphql.String)},
			"stats":    &graphql.Field{Type: statsType},
			"bounds":   &graphql.Field{Type: boundsType},
			"datum": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if res, ok := p.Source.(*domain.RenderResult); ok {
						return string(res.Datum), nil
					}
					return nil, nil
				},
			},
		},
	})

	// Cities go out as maps so the datum tag sits next to the city fields.
	cityMap := func(c domain.City, datum domain.Datum) map[string]interface{} {
		return map[string]interface{}{
			"name":     c.Name,
			"location": c.Location,
			"note":     c.Note,
			"datum":    string(datum),
		}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "List cities, optionally converted to another datum",
				Args: graphql.FieldConfigArgument{
					"datum": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var datum domain.Datum
					if s := argString(p, "datum"); s != "" {
						d, err := domain.ParseDatum(s)
						if err != nil {
							return nil, err
						}
						datum = d
					}
					cities, err := deps.Cities.List(p.Context, datum)
					if err != nil {
						return nil, err
					}
					if datum == "" {
						datum = deps.Cities.SourceDatum()
					}
					out := make([]map[string]interface{}, len(cities))
					for i, c := range cities {
						out[i] = cityMap(c, datum)
					}
					return out, nil
				},
			},
			"city": &graphql.Field{
				Type:        cityType,
				Description: "Get a city by name",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					city, err := deps.Cities.Get(p.Context, argString(p, "name"))
					if err != nil {
						return nil, err
					}
					return cityMap(*city, deps.Cities.SourceDatum()), nil
				},
			},
			"trips": &graphql.Field{
				Type:        graphql.NewList(tripType),
				Description: "Trips in chronological order",
				Args:        rangeArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, err := deps.Trips.ParseRange(argString(p, "start_date"), argString(p, "end_date"))
					if err != nil {
						return nil, err
					}
					return deps.Trips.List(p.Context, r)
				},
			},
			"map": &graphql.Field{
				Type:        mapType,
				Description: "Rendered route geometry for a date range",
				Args:        rangeArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, err := deps.Trips.ParseRange(argString(p, "start_date"), argString(p, "end_date"))
					if err != nil {
						return nil, err
					}
					return deps.Map.Render(p.Context, r)
				},
			},
			"stats": &graphql.Field{
				Type:        statsType,
				Description: "Trip and city counts for a date range",
				Args:        rangeArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, err := deps.Trips.ParseRange(argString(p, "start_date"), argString(p, "end_date"))
					if err != nil {
						return nil, err
					}
					return deps.Map.Stats(p.Context, r)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// Only reachable through a broken schema definition.
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
