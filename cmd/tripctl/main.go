// Command tripctl plans Medellín transit trips from the terminal, decodes
// polylines and prices saved Directions responses offline.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel)
	if os.Getenv("TRIPCTL_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "tripctl",
		Usage:   "plan and inspect Medellín transit trips",
		Version: Version,
		Commands: []*cli.Command{
			planCommand(),
			decodeCommand(),
			fareCommand(),
			tokenCommand(),
		},
	}
}
