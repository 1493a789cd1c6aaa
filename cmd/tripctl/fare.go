package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/smartmobility/tripplanner/internal/routing"
)

func fareCommand() *cli.Command {
	return &cli.Command{
		Name:  "fare",
		Usage: "classify and price a saved Directions API response",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "file", Aliases: []string{"f"}, Usage: "Directions API JSON response", Required: true},
			&cli.BoolFlag{Name: "json", Usage: "print processed routes as JSON"},
		},
		Action: func(c *cli.Context) error {
			routes, err := priceFile(c.Path("file"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, routes)
			}
			printRoutes(c.App.Writer, routes)
			return nil
		},
	}
}

// priceFile runs every alternative in a saved response through the
// classifier and fare calculator. Malformed alternatives are reported and
// skipped.
func priceFile(path string) ([]routing.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var resp routing.DirectionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if resp.Status != "" && resp.Status != "OK" {
		return nil, fmt.Errorf("response status is %s", resp.Status)
	}

	var (
		routes []routing.Route
		errs   error
	)
	for _, processed := range routing.DefaultClassifier.ProcessAll(&resp) {
		if processed.Err != nil {
			errs = errors.Join(errs, processed.Err)
			continue
		}
		routes = append(routes, *processed.Route)
	}
	if len(routes) == 0 {
		if errs != nil {
			return nil, errs
		}
		return nil, routing.ErrNoRouteFound
	}
	return routes, nil
}
