package leg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripmix/tripmix/internal/leg"
	"github.com/tripmix/tripmix/internal/segment"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Drive to Stourton P&R", "drive_stourton_pr"},
		{"Temple Green Park & Ride", "drive_temple_green_pr"},
		{"P&R", "drive_pr"},
		{"Walk + Train (Brough)", "train_walk_brough"},
		{"Uber to York + Train", "train_uber_york"},
		{"Train from Hull", "train_hull"},
		{"Cycle + Train", "train_cycle_headingley"},
		{"Drive + Train", "train_drive"},
		{"Bus & Train", "train_bus"},
		{"Train", "train_main"},
		{"Uber", "uber"},
		{"Bus", "bus"},
		{"Cycle", "cycle"},
		{"Direct Drive", "direct_drive"},
		{"Drive", "drive"},
		{"Scooter Hire!", "scooter_hire_"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, leg.GenerateID(tt.name, nil), tt.name)
	}
}

func TestGenerateID_FamilyKeywords(t *testing.T) {
	keywords := []string{"park and ride"}

	assert.Equal(t, "drive_stourton_pr", leg.GenerateID("Stourton Park and Ride", keywords))
	assert.Equal(t, "drive_pr", leg.GenerateID("Park and Ride", keywords))
	assert.Equal(t, "stourton_p_r", leg.GenerateID("Stourton P&R", keywords))
	assert.Equal(t, "drive_stourton_pr", leg.GenerateID("Stourton P&R", nil))
}

func TestRiskFor(t *testing.T) {
	tests := []struct {
		group  string
		option string
		want   leg.Risk
	}{
		{"Group 1: Home", "Cycle", leg.Risk{Score: 1, Reason: "Weather dependent, fitness required"}},
		{"Group 1: Home", "Drive", leg.Risk{Score: 0, Reason: "Most reliable"}},
		{"Group 2: Access", "Bus + Train", leg.Risk{Score: 2, Reason: "Bus risk (+1) + Connection risk (+1)"}},
		{"Group 2: Access", "Stourton P&R", leg.Risk{Score: 1, Reason: "Connection risk"}},
		{"Group 2: Access", "Uber + Train", leg.Risk{Score: 1, Reason: "Connection risk"}},
		{"Group 3: Main", "Train", leg.Risk{Score: 1, Reason: "Delay/timing risk"}},
		{"Group 4: Last mile", "Bus", leg.Risk{Score: 2, Reason: "Unfamiliar area, less frequent"}},
		{"Group 5: Reference", "Direct Drive", leg.Risk{Score: 0, Reason: "Most reliable"}},
		{"Group 2: Access", "Walk", leg.DefaultRisk},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, leg.RiskFor(tt.group, tt.option), "%s / %s", tt.group, tt.option)
	}
}

func TestCosmeticFor(t *testing.T) {
	uberFirst := leg.CosmeticFor("uber", "Group 1", segment.IconCar)
	assert.Equal(t, "Fastest door-to-door.", uberFirst.Desc)
	assert.Equal(t, 4, uberFirst.WaitTime)

	uberOther := leg.CosmeticFor("uber", "Group 2", segment.IconCar)
	assert.Equal(t, "text-black", uberOther.Color)
	assert.Empty(t, uberOther.Desc)

	bus := leg.CosmeticFor("bus", "Group 1", segment.IconBus)
	assert.True(t, bus.Recommended)
	assert.Equal(t, 12, bus.NextBusIn)

	fallback := leg.CosmeticFor("train_york", "Group 2", segment.IconTrain)
	assert.Equal(t, leg.Cosmetic{Color: "text-slate-600", BgColor: "bg-slate-100"}, fallback)

	assert.Equal(t, leg.Cosmetic{}, leg.CosmeticFor("unknown", "", "clock"))
}

func TestApplyLabelRules(t *testing.T) {
	route1 := []leg.LabelRule{
		{Group: "Group 1", Names: []string{"Drive"}, Label: "Drive & Park", ID: "drive_park"},
		{Group: "Group 1", Names: []string{"Bus", "Cycle", "Uber"}, Label: "{name} to Leeds"},
	}
	route2 := []leg.LabelRule{{Replace: " + Train", With: ""}}

	tests := []struct {
		name      string
		rules     []leg.LabelRule
		group     string
		option    string
		id        string
		wantLabel string
		wantID    string
	}{
		{"drive renamed with id", route1, "Group 1", "Drive", "drive", "Drive & Park", "drive_park"},
		{"templated label", route1, "Group 1", "Cycle", "cycle", "Cycle to Leeds", "cycle"},
		{"other group untouched", route1, "Group 4", "Cycle", "cycle", "Cycle", "cycle"},
		{"unlisted name untouched", route1, "Group 1", "Walk", "walk", "Walk", "walk"},
		{"substring rewrite", route2, "Group 2", "Walk + Train", "train_walk_headingley", "Walk", "train_walk_headingley"},
		{"no rules", nil, "Group 1", "Drive", "drive", "Drive", "drive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, id := leg.ApplyLabelRules(tt.rules, tt.group, tt.option, tt.id)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestLineColorFor(t *testing.T) {
	segs := []segment.Segment{
		{Mode: segment.ModeWalk, LineColor: "#475569"},
		{Mode: segment.ModeBus, LineColor: "#e2001a"},
	}
	assert.Equal(t, "#e2001a", leg.LineColorFor("Bus", segs))
	assert.Equal(t, "#00FF00", leg.LineColorFor("Cycle + Train", segs))
	assert.Equal(t, "#000000", leg.LineColorFor("Walk", segs[:1]))
}
