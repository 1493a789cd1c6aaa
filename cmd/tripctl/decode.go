package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/smartmobility/tripplanner/pkg/polyline"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "decode an encoded polyline into coordinates",
		ArgsUsage: "<polyline>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print coordinates as JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("decode takes exactly one polyline argument")
			}
			points := polyline.Decode(c.Args().First())
			if len(points) == 0 {
				return errors.New("polyline decodes to no points")
			}

			if c.Bool("json") {
				return writeJSON(c.App.Writer, points)
			}
			for _, p := range points {
				fmt.Fprintf(c.App.Writer, "%.5f,%.5f\n", p.Latitude, p.Longitude)
			}
			fmt.Fprintf(c.App.Writer, "# %d points, %s m\n",
				len(points), humanize.CommafWithDigits(polyline.Length(points), 0))
			return nil
		},
	}
}
