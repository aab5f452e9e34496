// Package segment normalizes raw directions legs into canonical segments and reduces
// them by filtering, merging and grouping.
package segment

import (
	"strings"

	"github.com/jinzhu/copier"

	"github.com/tripmix/tripmix/internal/tripdata"
	"github.com/tripmix/tripmix/pkg/polyline"
)

// Mode is the canonical travel mode of a segment.
type Mode string

const (
	ModeWalk  Mode = "walk"
	ModeBike  Mode = "bike"
	ModeCar   Mode = "car"
	ModeBus   Mode = "bus"
	ModeTrain Mode = "train"
	ModeWait  Mode = "wait"

	// ModeAccessGroup is a ride together with its leading and trailing walks.
	ModeAccessGroup Mode = "access_group"
	// ModeTrainGroup is two train rides joined at an interchange.
	ModeTrainGroup Mode = "train_group"
)

// Icon identifiers used by the presentation layer.
const (
	IconTrain      = "train"
	IconCar        = "car"
	IconBus        = "bus"
	IconBike       = "bike"
	IconFootprints = "footprints"
	IconClock      = "clock"
)

// Segment is one atomic or composite unit of travel within a leg.
type Segment struct {
	Mode      Mode            `json:"mode" groups:"summary,detailed"`
	Label     string          `json:"label" groups:"summary,detailed"`
	LineColor string          `json:"lineColor" groups:"detailed"`
	IconID    string          `json:"iconId" groups:"detailed"`
	Time      int             `json:"time" groups:"summary,detailed"` // minutes
	WaitTime  int             `json:"waitTime,omitempty" groups:"summary,detailed"`
	Distance  tripdata.Amount `json:"distance" groups:"detailed"` // miles
	CO2       tripdata.Amount `json:"co2" groups:"detailed"`      // kg
	Cost      tripdata.Amount `json:"cost" groups:"summary,detailed"`
	From      string          `json:"from,omitempty" groups:"detailed"`
	To        string          `json:"to,omitempty" groups:"detailed"`
	Detail    string          `json:"detail,omitempty" groups:"detailed"`

	Path []polyline.Coordinate `json:"path"`

	NumStops   int                   `json:"numStops,omitempty" groups:"detailed"`
	Stops      []string              `json:"stops,omitempty" groups:"detailed"`
	StopPoints []polyline.Coordinate `json:"stopPoints,omitempty"`

	// Segments holds the constituents of a composite segment in travel order.
	Segments []Segment `json:"segments,omitempty" groups:"detailed"`
}

// IsComposite reports whether the segment was produced by grouping.
func (s Segment) IsComposite() bool {
	return s.Mode == ModeAccessGroup || s.Mode == ModeTrainGroup
}

// IsRideshare reports whether the segment is a hailed car rather than a self-driven one.
func (s Segment) IsRideshare() bool {
	return s.Mode == ModeCar && strings.Contains(strings.ToLower(s.Label), "uber")
}

// RideMode returns the mode of the ride a composite segment was built around,
// or the segment's own mode for atomic segments.
func (s Segment) RideMode() Mode {
	switch s.Mode {
	case ModeTrainGroup:
		return ModeTrain
	case ModeAccessGroup:
		for _, c := range s.Segments {
			if isRide(c) {
				return c.Mode
			}
		}
	}
	return s.Mode
}

// TotalTime returns ride time plus folded wait time.
func (s Segment) TotalTime() int {
	return s.Time + s.WaitTime
}

// RoundAmounts settles cost, distance and CO2 of segs and their constituents to
// the emitted precision. Totals summed from rounded segments then match their
// emitted parts.
func RoundAmounts(segs []Segment) {
	for i := range segs {
		segs[i].Cost = segs[i].Cost.Round()
		segs[i].Distance = segs[i].Distance.Round()
		segs[i].CO2 = segs[i].CO2.Round()
		RoundAmounts(segs[i].Segments)
	}
}

// Clone returns a deep copy of segs that shares no slices with the input.
func Clone(segs []Segment) []Segment {
	if segs == nil {
		return nil
	}
	var out []Segment
	if err := copier.CopyWithOption(&out, segs, copier.Option{DeepCopy: true}); err != nil {
		panic(err) // identical types
	}
	fillPaths(out)
	return out
}

// fillPaths replaces nil paths so every segment is emitted with a path array.
func fillPaths(segs []Segment) {
	for i := range segs {
		if segs[i].Path == nil {
			segs[i].Path = []polyline.Coordinate{}
		}
		fillPaths(segs[i].Segments)
	}
}
