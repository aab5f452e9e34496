package leg_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmix/tripmix/internal/config"
	"github.com/tripmix/tripmix/internal/leg"
	"github.com/tripmix/tripmix/internal/pricing"
	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/tripdata"
)

func newAssembler(t *testing.T, cfg leg.Config) *leg.Assembler {
	t.Helper()
	defaults := config.Default()
	engine, err := pricing.NewEngine(pricing.EngineConfig{
		Table: defaults.Pricing,
		Rules: defaults.Overrides,
	})
	require.NoError(t, err)
	cfg.Pricing = engine
	return leg.NewAssembler(cfg)
}

func trainLeg(seconds, meters float64, from string) tripdata.RawLeg {
	raw := tripdata.RawLeg{
		Mode:          "TRANSIT",
		DurationValue: seconds,
		DistanceValue: meters,
		TransitDetails: &tripdata.TransitDetails{
			Line: &tripdata.TransitLine{Name: "Northern", Color: "#1b3b6f", Vehicle: &tripdata.Vehicle{Type: "HEAVY_RAIL"}},
		},
	}
	if from != "" {
		raw.TransitDetails.DepartureStop = &tripdata.Stop{Name: from}
	}
	return raw
}

func TestAssemble_MainLeg(t *testing.T) {
	a := newAssembler(t, leg.Config{Family: "route2"})
	opt := tripdata.Option{Name: "Train", Legs: []tripdata.RawLeg{trainLeg(1800, 16000, "")}}

	l, err := a.Assemble(opt, "Group 3: Main Leg")
	require.NoError(t, err)

	assert.Equal(t, "train_main", l.ID)
	assert.Equal(t, "Train", l.Label)
	assert.Equal(t, 30, l.Time)
	assert.InDelta(t, 9.94, float64(l.Distance), 0.005)
	assert.Zero(t, l.Cost)
	assert.Equal(t, 1, l.RiskScore)
	assert.Equal(t, "Delay/timing risk", l.RiskReason)
	assert.Equal(t, segment.IconTrain, l.IconID)
	assert.Equal(t, "#1b3b6f", l.LineColor)
	assert.Equal(t, 4, l.Platform)
	assert.Equal(t, "30 min train", l.Detail)
}

func TestAssemble_DriveAndPark(t *testing.T) {
	a := newAssembler(t, leg.Config{
		Family: "route1",
		LabelRules: []leg.LabelRule{
			{Group: "Group 1", Names: []string{"Drive"}, Label: "Drive & Park", ID: "drive_park"},
		},
	})
	opt := tripdata.Option{Name: "Drive", Legs: []tripdata.RawLeg{
		{Mode: "DRIVING", DurationValue: 900, DistanceValue: 16093.4},
	}}

	l, err := a.Assemble(opt, "Group 1: Home to Leeds")
	require.NoError(t, err)

	assert.Equal(t, "drive_park", l.ID)
	assert.Equal(t, "Drive & Park", l.Label)
	assert.InDelta(t, 27.5, float64(l.Cost), 1e-9)
	assert.Equal(t, "Flexibility.", l.Desc)
	assert.Equal(t, "Most reliable", l.RiskReason)
	assert.Equal(t, "15 min car", l.Detail)
}

func TestAssemble_FamilyParkAndRideKeywords(t *testing.T) {
	a := newAssembler(t, leg.Config{
		Family:              "route3",
		AccessGroup:         "Access Options",
		ParkAndRideKeywords: []string{"park and ride"},
	})
	opt := tripdata.Option{Name: "Elland Road Park and Ride", Legs: []tripdata.RawLeg{
		{Mode: "DRIVING", DurationValue: 600, DistanceValue: 5000},
	}}

	l, err := a.Assemble(opt, "Group 2: Access Options")
	require.NoError(t, err)

	assert.Equal(t, "drive_elland_road_pr", l.ID)
	assert.Equal(t, "10 min car", l.Detail)
}

func TestAssemble_AccessOptionWithTransferBuffer(t *testing.T) {
	a := newAssembler(t, leg.Config{
		Family:                "route2",
		AccessGroup:           "Access Options",
		TransferBufferMinutes: 10,
		LabelRules:            []leg.LabelRule{{Replace: " + Train", With: ""}},
	})
	opt := tripdata.Option{Name: "Walk + Train", Legs: []tripdata.RawLeg{
		{Mode: "WALKING", DurationValue: 300, DistanceValue: 400},
		trainLeg(1200, 12000, "Brough"),
	}}

	l, stages, err := a.Trace(opt, "Group 2: Access Options")
	require.NoError(t, err)

	require.Len(t, stages.Built, 2)
	require.Len(t, stages.Reduced, 2)
	require.Len(t, stages.Buffered, 3)
	assert.Equal(t, segment.ModeWait, stages.Buffered[1].Mode)
	assert.Equal(t, segment.TransferLabel, stages.Buffered[1].Label)
	assert.Equal(t, "brough", stages.Location)
	assert.Empty(t, stages.AppliedRules)

	assert.Equal(t, "Walk", l.Label)
	assert.Equal(t, "train_walk_headingley", l.ID)
	assert.Equal(t, "Walking transfer.", l.Desc)
	assert.Equal(t, 35, l.Time)
	assert.Equal(t, tripdata.Amount(8.10), l.Cost)
	assert.Equal(t, "5 min walk", l.Detail)
	assert.Equal(t, 2, l.RiskScore)
}

func TestAssemble_TotalsAfterGrouping(t *testing.T) {
	a := newAssembler(t, leg.Config{Family: "route2"})
	opt := tripdata.Option{Name: "Bus", Legs: []tripdata.RawLeg{
		{Mode: "WALKING", DurationValue: 240},
		{Mode: "TRANSIT", DurationValue: 600, DistanceValue: 3218.68, TransitDetails: &tripdata.TransitDetails{
			Line: &tripdata.TransitLine{ShortName: "24", Vehicle: &tripdata.Vehicle{Type: "BUS"}},
		}},
		{Mode: "WALKING", DurationValue: 120},
		{Mode: "WALKING", DurationValue: 360},
	}}

	l, err := a.Assemble(opt, "Group 4: Last mile")
	require.NoError(t, err)

	require.Len(t, l.Segments, 1)
	g := l.Segments[0]
	assert.Equal(t, segment.ModeAccessGroup, g.Mode)
	assert.Equal(t, "Bus 24", g.Label)
	assert.Equal(t, 4+10+2+6, l.Time)
	assert.Equal(t, g.Time, l.Time)
	assert.Equal(t, tripdata.Amount(2), l.Cost)
	assert.Equal(t, "22 min bus", l.Detail)
}

func TestAssemble_CorruptPolyline(t *testing.T) {
	a := newAssembler(t, leg.Config{Family: "route1"})
	opt := tripdata.Option{Name: "Walk", Legs: []tripdata.RawLeg{{Mode: "WALKING", Polyline: "_p~iF"}}}

	_, err := a.Assemble(opt, "Group 1")
	require.Error(t, err)

	var buildErr *segment.BuildError
	assert.True(t, errors.As(err, &buildErr))
}

func TestTrace_StagesDoNotAlias(t *testing.T) {
	a := newAssembler(t, leg.Config{Family: "route1"})
	opt := tripdata.Option{Name: "Train", Legs: []tripdata.RawLeg{trainLeg(1800, 16000, "")}}

	_, stages, err := a.Trace(opt, "Group 3: Main Leg")
	require.NoError(t, err)

	assert.Zero(t, stages.Built[0].Cost)
	assert.Equal(t, tripdata.Amount(25.70), stages.Priced[0].Cost)
	assert.Equal(t, []string{"main-leg-train-fare"}, stages.AppliedRules)
}
