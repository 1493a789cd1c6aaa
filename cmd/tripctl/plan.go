package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/googlemaps"
	"github.com/smartmobility/tripplanner/internal/routing"
)

var errBadCoordinate = errors.New(`expected "lat,lon"`)

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "plan a transit trip with Google Maps",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: `origin as "lat,lon"`, Required: true},
			&cli.StringFlag{Name: "to", Usage: `destination as "lat,lon" or a place name`, Required: true},
			&cli.TimestampFlag{Name: "departure", Usage: "departure time (RFC 3339), default now", Layout: time.RFC3339},
			&cli.StringFlag{Name: "language", Value: googlemaps.DefaultLanguage, EnvVars: []string{"DIRECTIONS_LANGUAGE"}},
			&cli.StringFlag{Name: "api-key", Usage: "Google Maps Platform key", EnvVars: []string{"GOOGLE_MAPS_API_KEY"}},
			&cli.StringFlag{Name: "base-url", EnvVars: []string{"GOOGLE_MAPS_BASE_URL"}},
			&cli.BoolFlag{Name: "json", Usage: "print the trip plan as JSON"},
		},
		Action: func(c *cli.Context) error {
			origin, err := parseCoordinate(c.String("from"))
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if c.String("api-key") == "" {
				return errors.New("--api-key or GOOGLE_MAPS_API_KEY is required")
			}

			client := googlemaps.NewClient(googlemaps.ClientConfig{
				APIKey:   c.String("api-key"),
				BaseURL:  c.String("base-url"),
				Language: c.String("language"),
				Logger:   log.Logger,
			})

			destination, name, err := resolveDestination(c, client, c.String("to"))
			if err != nil {
				return err
			}

			req := routing.DirectionsRequest{Origin: origin, Destination: destination, Language: c.String("language")}
			if ts := c.Timestamp("departure"); ts != nil {
				req.DepartureTime = *ts
			}

			service := routing.NewService(routing.ServiceConfig{Provider: client, Logger: log.Logger})
			plan, err := service.PlanTrip(c.Context, req)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return writeJSON(c.App.Writer, plan)
			}
			if name != "" {
				fmt.Fprintf(c.App.Writer, "Destino: %s\n\n", name)
			}
			printRoutes(c.App.Writer, plan.Routes)
			return nil
		},
	}
}

// resolveDestination accepts coordinates or geocodes a place name.
func resolveDestination(c *cli.Context, client *googlemaps.Client, to string) (routing.Coordinate, string, error) {
	if coord, err := parseCoordinate(to); err == nil {
		return coord, "", nil
	}

	places := geocoding.NewService(geocoding.ServiceConfig{
		Provider: client,
		Logger:   log.Logger,
		Language: c.String("language"),
	})
	place, err := places.Resolve(c.Context, to)
	if err != nil {
		return routing.Coordinate{}, "", fmt.Errorf("--to %q: %w", to, err)
	}
	return place.Location, place.Name, nil
}

func parseCoordinate(s string) (routing.Coordinate, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return routing.Coordinate{}, errBadCoordinate
	}
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return routing.Coordinate{}, errBadCoordinate
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return routing.Coordinate{}, errBadCoordinate
	}
	c := routing.Coordinate{Latitude: latitude, Longitude: longitude}
	if err := routing.ValidateCoordinate(c); err != nil {
		return routing.Coordinate{}, err
	}
	return c, nil
}
