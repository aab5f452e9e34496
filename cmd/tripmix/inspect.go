package main

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/tripmix/tripmix/internal/config"
	"github.com/tripmix/tripmix/internal/pipeline"
	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/tripdata"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Print the segments of one option after every pipeline stage",
		Flags: []cli.Flag{
			configFlag,
			&cli.StringFlag{Name: "family", Usage: "route family", Required: true},
			&cli.StringFlag{Name: "group", Usage: "group name fragment, e.g. \"Group 2\"", Required: true},
			&cli.StringFlag{Name: "option", Usage: "option name, e.g. \"Walk + Train\"", Required: true},
			&cli.StringFlag{Name: "input", Usage: "override the input document of the family"},
		},
		Action: runInspect,
	}
}

func runInspect(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	family, err := cfg.Family(c.String("family"))
	if err != nil {
		return err
	}
	if c.IsSet("input") {
		family.Input = c.String("input")
	}

	doc, err := tripdata.Load(family.Input)
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(pipeline.RunnerConfig{Config: cfg, Logger: log.Logger})
	if err != nil {
		return err
	}
	proc, err := runner.Processor(family, log.Logger)
	if err != nil {
		return err
	}

	l, stages, err := proc.Inspect(doc, c.String("group"), c.String("option"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	for _, stage := range []struct {
		name string
		segs []segment.Segment
	}{
		{"built", stages.Built},
		{"reduced", stages.Reduced},
		{"buffered", stages.Buffered},
		{"priced", stages.Priced},
		{"grouped", stages.Grouped},
	} {
		fmt.Fprintf(w, "== %s (%d segments)\n", stage.name, len(stage.segs))
		if _, err := pretty.Fprintf(w, "%# v\n", stage.segs); err != nil {
			return err
		}
	}

	location := stages.Location
	if location == "" {
		location = "-"
	}
	fmt.Fprintf(w, "== location: %s\n", location)
	fmt.Fprintf(w, "== rules: %s\n", strings.Join(stages.AppliedRules, ", "))
	fmt.Fprintln(w, "== leg")
	_, err = pretty.Fprintf(w, "%# v\n", l)
	return err
}
