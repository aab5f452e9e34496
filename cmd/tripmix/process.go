package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/tripmix/tripmix/internal/config"
	"github.com/tripmix/tripmix/internal/pipeline"
	"github.com/tripmix/tripmix/internal/telemetry"
)

var errSingleFamily = errors.New("--input and --output need exactly one family")

func processCommand() *cli.Command {
	return &cli.Command{
		Name:  "process",
		Usage: "Build legs and journeys for the configured route families",
		Flags: []cli.Flag{
			configFlag,
			&cli.StringSliceFlag{
				Name:  "family",
				Usage: "route family to process; repeat for several, all families when unset",
			},
			&cli.StringFlag{Name: "input", Usage: "override the input document of the selected family"},
			&cli.StringFlag{Name: "output", Usage: "override the output document of the selected family"},
		},
		Action: runProcess,
	}
}

func runProcess(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	families, err := cfg.Select(c.StringSlice("family"))
	if err != nil {
		return err
	}
	if c.IsSet("input") || c.IsSet("output") {
		if len(families) != 1 {
			return errSingleFamily
		}
		if c.IsSet("input") {
			families[0].Input = c.String("input")
		}
		if c.IsSet("output") {
			families[0].Output = c.String("output")
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Init(ctx, telemetry.ConfigFromEnv("tripmix", Version))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	metrics, err := telemetry.NewMetrics(provider.Meter)
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(pipeline.RunnerConfig{
		Config:  cfg,
		Metrics: metrics,
		Tracer:  provider.Tracer,
		Logger:  log.Logger,
	})
	if err != nil {
		return err
	}

	return runner.Run(ctx, families)
}
