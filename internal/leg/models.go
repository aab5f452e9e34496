// Package leg assembles one option of a trip-data document into a priced,
// grouped and labelled Leg.
package leg

import (
	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/tripdata"
)

// Leg is one selectable option for the first-mile, main or last-mile role of a journey.
type Leg struct {
	ID         string          `json:"id" groups:"summary,detailed"`
	Label      string          `json:"label" groups:"summary,detailed"`
	Detail     string          `json:"detail" groups:"summary,detailed"`
	Time       int             `json:"time" groups:"summary,detailed"`
	Cost       tripdata.Amount `json:"cost" groups:"summary,detailed"`
	Distance   tripdata.Amount `json:"distance" groups:"detailed"`
	CO2        tripdata.Amount `json:"co2" groups:"detailed"`
	RiskScore  int             `json:"riskScore" groups:"summary,detailed"`
	RiskReason string          `json:"riskReason" groups:"detailed"`
	IconID     string          `json:"iconId" groups:"detailed"`
	LineColor  string          `json:"lineColor" groups:"detailed"`

	Segments []segment.Segment `json:"segments" groups:"detailed"`

	Color       string `json:"color,omitempty" groups:"detailed"`
	BgColor     string `json:"bgColor,omitempty" groups:"detailed"`
	Desc        string `json:"desc,omitempty" groups:"detailed"`
	Recommended bool   `json:"recommended,omitempty" groups:"detailed"`
	WaitTime    int    `json:"waitTime,omitempty" groups:"detailed"`
	NextBusIn   int    `json:"nextBusIn,omitempty" groups:"detailed"`
	Platform    int    `json:"platform,omitempty" groups:"detailed"`
}

// Stages records the segment list of one option after each assembly stage.
type Stages struct {
	Built        []segment.Segment
	Reduced      []segment.Segment
	Buffered     []segment.Segment
	Priced       []segment.Segment
	Grouped      []segment.Segment
	Location     string
	AppliedRules []string
}
