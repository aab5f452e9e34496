package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if os.Getenv("TRIPMIX_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRIPMIX_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

// newApp builds the CLI. Command output goes to out; logs go to the global logger.
func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "tripmix",
		Usage:     "Normalize multimodal trip data into priced legs and journeys",
		Version:   Version + " (built " + BuildTime + ")",
		Writer:    out,
		ErrWriter: os.Stderr,

		Commands: []*cli.Command{
			processCommand(),
			searchCommand(),
			inspectCommand(),
		},
	}
}

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "YAML configuration file; the built-in defaults are used when unset",
	EnvVars: []string{"TRIPMIX_CONFIG"},
}
