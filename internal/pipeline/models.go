// Package pipeline turns a trip-data document into legs and journeys for one
// route family and runs families concurrently.
package pipeline

import (
	"strings"

	"github.com/tripmix/tripmix/internal/journey"
	"github.com/tripmix/tripmix/internal/leg"
	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/tripdata"
	"github.com/tripmix/tripmix/pkg/polyline"
)

// Role is what a group of options contributes to a journey.
type Role int

const (
	RoleNone Role = iota
	RoleFirstMile
	RoleMain
	RoleLastMile
	RoleReference
)

func (r Role) String() string {
	switch r {
	case RoleFirstMile:
		return "firstMile"
	case RoleMain:
		return "main"
	case RoleLastMile:
		return "lastMile"
	case RoleReference:
		return "reference"
	}
	return "none"
}

// Classify maps a group name to its role by substring.
func Classify(group string) Role {
	switch {
	case strings.Contains(group, "Group 1"), strings.Contains(group, "Group 2"):
		return RoleFirstMile
	case strings.Contains(group, "Group 3"):
		return RoleMain
	case strings.Contains(group, "Group 4"):
		return RoleLastMile
	case strings.Contains(group, "Group 5"):
		return RoleReference
	}
	return RoleNone
}

// SegmentOptions are the legs available for each role.
type SegmentOptions struct {
	FirstMile []*leg.Leg `json:"firstMile"`
	MainLeg   *leg.Leg   `json:"mainLeg"`
	LastMile  []*leg.Leg `json:"lastMile"`
}

// Output is the processed document written for the presentation layer.
type Output struct {
	SegmentOptions SegmentOptions         `json:"segmentOptions"`
	DirectDrive    journey.ReferenceDrive `json:"directDrive"`
	MockPath       []polyline.Coordinate  `json:"mockPath"`
	Journeys       []journey.Journey      `json:"journeys"`
}

func newOutput() *Output {
	return &Output{
		SegmentOptions: SegmentOptions{
			FirstMile: []*leg.Leg{},
			LastMile:  []*leg.Leg{},
		},
		MockPath: []polyline.Coordinate{},
		Journeys: []journey.Journey{},
	}
}

// MainPlaceholderID is the id of the main leg emitted when the document has none.
const MainPlaceholderID = "main_placeholder"

func mainPlaceholder() *leg.Leg {
	return &leg.Leg{
		ID:       MainPlaceholderID,
		Label:    "Main",
		IconID:   segment.IconTrain,
		Segments: []segment.Segment{},
	}
}

// Relink points every journey's main leg at SegmentOptions.MainLeg. Journeys
// carry only the main leg id on the wire.
func (o *Output) Relink() {
	for i := range o.Journeys {
		if o.SegmentOptions.MainLeg != nil && o.Journeys[i].MainID == o.SegmentOptions.MainLeg.ID {
			o.Journeys[i].Main = o.SegmentOptions.MainLeg
		}
	}
}

// LoadOutput reads a processed document and relinks its journeys.
func LoadOutput(path string) (*Output, error) {
	var out Output
	if err := tripdata.ReadJSON(path, &out); err != nil {
		return nil, err
	}
	out.Relink()
	return &out, nil
}
