package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/liip/sheriff"
	"github.com/urfave/cli/v2"

	"github.com/tripmix/tripmix/internal/journey"
	"github.com/tripmix/tripmix/internal/pipeline"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Rank the journeys of a processed document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Usage: "processed document", Required: true},
			&cli.StringFlag{Name: "tab", Usage: "smart, fastest or cheapest", Value: string(journey.TabSmart)},
			&cli.StringSliceFlag{Name: "modes", Usage: "allowed modes, e.g. train,bus,taxi; every mode when unset"},
			&cli.IntFlag{Name: "limit", Usage: "number of journeys returned", Value: journey.DefaultLimit},
			&cli.StringFlag{Name: "format", Usage: "json or csv", Value: "json"},
			&cli.BoolFlag{Name: "detailed", Usage: "include segments and cosmetic fields in JSON output"},
		},
		Action: runSearch,
	}
}

func runSearch(c *cli.Context) error {
	tab, err := journey.ParseTab(c.String("tab"))
	if err != nil {
		return err
	}

	out, err := pipeline.LoadOutput(c.String("input"))
	if err != nil {
		return err
	}

	var modes []string
	if c.IsSet("modes") {
		modes = c.StringSlice("modes")
	}
	ranked := journey.Rank(out.Journeys, tab, modes, c.Int("limit"))

	switch c.String("format") {
	case "csv":
		return writeCSV(c.App.Writer, ranked)
	case "json":
		groups := []string{"summary"}
		if c.Bool("detailed") {
			groups = []string{"summary", "detailed"}
		}
		return writeJSON(c.App.Writer, ranked, groups)
	}
	return fmt.Errorf("unknown format %q", c.String("format"))
}

func writeJSON(w io.Writer, journeys []journey.Journey, groups []string) error {
	reduced, err := sheriff.Marshal(&sheriff.Options{Groups: groups}, journeys)
	if err != nil {
		return fmt.Errorf("reduce journeys: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reduced)
}

// searchRow is one ranked journey as a CSV record.
type searchRow struct {
	Rank      int    `csv:"rank"`
	ID        string `csv:"id"`
	FirstMile string `csv:"first_mile"`
	Main      string `csv:"main"`
	LastMile  string `csv:"last_mile"`
	Duration  string `csv:"duration"`
	Minutes   int    `csv:"minutes"`
	Cost      string `csv:"cost"`
	Risk      int    `csv:"risk"`
	CO2Saved  string `csv:"co2_saved"`
	Emissions string `csv:"emissions"`
}

func newSearchRow(rank int, j journey.Journey) *searchRow {
	row := &searchRow{
		Rank:      rank,
		ID:        j.ID,
		Main:      j.MainID,
		Duration:  journey.FormatDuration(j.Time),
		Minutes:   j.Time,
		Cost:      fmt.Sprintf("%.2f", float64(j.Cost)),
		Risk:      j.Risk,
		CO2Saved:  fmt.Sprintf("%.2f", float64(j.Emissions.Val)),
		Emissions: j.Emissions.Text,
	}
	if j.Leg1 != nil {
		row.FirstMile = j.Leg1.Label
	}
	if j.Main != nil {
		row.Main = j.Main.Label
	}
	if j.Leg3 != nil {
		row.LastMile = j.Leg3.Label
	}
	return row
}

func writeCSV(w io.Writer, journeys []journey.Journey) error {
	rows := make([]*searchRow, 0, len(journeys))
	for i, j := range journeys {
		rows = append(rows, newSearchRow(i+1, j))
	}
	return gocsv.Marshal(rows, w)
}
