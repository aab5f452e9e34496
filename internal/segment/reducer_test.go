package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/pkg/polyline"
)

func walk(minutes int) segment.Segment {
	return segment.Segment{Mode: segment.ModeWalk, Label: "Walk", IconID: segment.IconFootprints, Time: minutes}
}

func bus(label string, minutes int) segment.Segment {
	return segment.Segment{Mode: segment.ModeBus, Label: label, IconID: segment.IconBus, Time: minutes, Cost: 2}
}

func train(label string, minutes int) segment.Segment {
	return segment.Segment{Mode: segment.ModeTrain, Label: label, IconID: segment.IconTrain, Time: minutes}
}

func totalTime(segs []segment.Segment) int {
	var total int
	for _, s := range segs {
		total += s.TotalTime()
	}
	return total
}

func TestFilterAndMerge_DropsNegligibleWalks(t *testing.T) {
	out := segment.FilterAndMerge([]segment.Segment{walk(1), bus("Bus 24", 10), walk(0)})
	require.Len(t, out, 1)
	assert.Equal(t, segment.ModeBus, out[0].Mode)
}

func TestFilterAndMerge_MergesBusesNotTrains(t *testing.T) {
	a := bus("Bus 24", 10)
	a.From = "Hessle"
	a.To = "Hull"
	a.Path = []polyline.Coordinate{{Lat: 53.7, Lng: -0.4}}
	a.Stops = []string{"Hessle"}
	a.NumStops = 3
	b := bus("Bus 24", 5)
	b.To = "Paragon"
	b.Path = []polyline.Coordinate{{Lat: 53.74, Lng: -0.34}}
	b.Stops = []string{"Paragon"}
	b.NumStops = 2
	b.WaitTime = 1

	out := segment.FilterAndMerge([]segment.Segment{a, b})
	require.Len(t, out, 1)
	merged := out[0]
	assert.Equal(t, 15, merged.Time)
	assert.Equal(t, 1, merged.WaitTime)
	assert.InDelta(t, 4.0, float64(merged.Cost), 1e-9)
	assert.Equal(t, 5, merged.NumStops)
	assert.Equal(t, "Hessle", merged.From)
	assert.Equal(t, "Paragon", merged.To)
	assert.Len(t, merged.Path, 2)
	assert.Equal(t, []string{"Hessle", "Paragon"}, merged.Stops)
	assert.Len(t, a.Path, 1, "inputs are not aliased")

	trains := segment.FilterAndMerge([]segment.Segment{train("Northern", 20), train("Northern", 15)})
	assert.Len(t, trains, 2)

	differentLines := segment.FilterAndMerge([]segment.Segment{bus("Bus 24", 10), bus("X46", 5)})
	assert.Len(t, differentLines, 2)
}

func TestSuppressShortWalks(t *testing.T) {
	tests := []struct {
		name      string
		in        []segment.Segment
		wantModes []segment.Mode
		wantWait  []int
	}{
		{
			name:      "short walk folds into next segment",
			in:        []segment.Segment{bus("Bus 24", 10), walk(2), train("Northern", 20)},
			wantModes: []segment.Mode{segment.ModeBus, segment.ModeTrain},
			wantWait:  []int{0, 2},
		},
		{
			name:      "interchange walk between trains",
			in:        []segment.Segment{train("Northern", 20), walk(4), train("TransPennine", 15)},
			wantModes: []segment.Mode{segment.ModeTrain, segment.ModeTrain},
			wantWait:  []int{0, 4},
		},
		{
			name:      "longer walk between trains is kept",
			in:        []segment.Segment{train("Northern", 20), walk(6), train("TransPennine", 15)},
			wantModes: []segment.Mode{segment.ModeTrain, segment.ModeWalk, segment.ModeTrain},
			wantWait:  []int{0, 0, 0},
		},
		{
			name:      "walk of three minutes outside an interchange is kept",
			in:        []segment.Segment{bus("Bus 24", 10), walk(3), train("Northern", 20)},
			wantModes: []segment.Mode{segment.ModeBus, segment.ModeWalk, segment.ModeTrain},
			wantWait:  []int{0, 0, 0},
		},
		{
			name:      "consecutive hidden walks accumulate",
			in:        []segment.Segment{walk(2), walk(2), bus("Bus 24", 10)},
			wantModes: []segment.Mode{segment.ModeBus},
			wantWait:  []int{4},
		},
		{
			name:      "trailing walk folds into last kept segment",
			in:        []segment.Segment{bus("Bus 24", 10), walk(2)},
			wantModes: []segment.Mode{segment.ModeBus},
			wantWait:  []int{2},
		},
		{
			name:      "never empties a leg",
			in:        []segment.Segment{walk(2)},
			wantModes: []segment.Mode{segment.ModeWalk},
			wantWait:  []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := segment.SuppressShortWalks(tt.in)
			require.Len(t, out, len(tt.wantModes))
			for i, s := range out {
				assert.Equal(t, tt.wantModes[i], s.Mode, "segment %d", i)
				assert.Equal(t, tt.wantWait[i], s.WaitTime, "segment %d", i)
			}
			assert.Equal(t, totalTime(tt.in), totalTime(out))
		})
	}
}

func TestReduce(t *testing.T) {
	in := []segment.Segment{walk(1), walk(8), bus("Bus 24", 10), bus("Bus 24", 6), walk(2), train("Northern", 30)}
	out := segment.Reduce(in)

	require.Len(t, out, 3)
	assert.Equal(t, segment.ModeWalk, out[0].Mode)
	assert.Equal(t, 16, out[1].Time)
	assert.Equal(t, segment.ModeTrain, out[2].Mode)
	assert.Equal(t, 2, out[2].WaitTime)
}
