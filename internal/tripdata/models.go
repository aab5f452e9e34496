// Package tripdata defines the raw trip-data document produced by the directions provider
// and the persistence helpers used to read and write pipeline documents.
package tripdata

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tripmix/tripmix/pkg/polyline"
)

// Document errors.
var (
	// ErrInvalidDocument indicates the document root is not a JSON object.
	ErrInvalidDocument = errors.New("trip-data document root is not an object")
)

// Document is the raw trip-data document.
// A nil Groups slice means the "groups" key was absent.
type Document struct {
	Groups []Group `json:"groups"`
}

// Group is a named set of alternative options, e.g. "Group 2: Access Options".
type Group struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// Option is one alternative way to cover part of a trip.
type Option struct {
	Name string   `json:"name"`
	Legs []RawLeg `json:"legs"`
}

// RawLeg is one leg record as returned by the directions provider.
// Missing numeric fields decode as zero and missing structures as nil.
type RawLeg struct {
	Mode           string          `json:"mode"`
	DurationValue  float64         `json:"duration_value"` // seconds
	DistanceValue  float64         `json:"distance_value"` // meters
	Polyline       string          `json:"polyline"`
	Instructions   string          `json:"instructions,omitempty"`
	TransitDetails *TransitDetails `json:"transit_details,omitempty"`
}

// TransitDetails carries the transit metadata of a transit leg.
type TransitDetails struct {
	LineName      string                `json:"line_name,omitempty"`
	Color         string                `json:"color,omitempty"`
	VehicleType   string                `json:"vehicle_type,omitempty"`
	Line          *TransitLine          `json:"line,omitempty"`
	DepartureStop *Stop                 `json:"departure_stop,omitempty"`
	ArrivalStop   *Stop                 `json:"arrival_stop,omitempty"`
	NumStops      int                   `json:"num_stops,omitempty"`
	Stops         []string              `json:"stops,omitempty"`
	StopPoints    []polyline.Coordinate `json:"stop_points,omitempty"`
}

// TransitLine describes the line operating a transit leg.
type TransitLine struct {
	ShortName string   `json:"short_name,omitempty"`
	Name      string   `json:"name,omitempty"`
	Color     string   `json:"color,omitempty"`
	Vehicle   *Vehicle `json:"vehicle,omitempty"`
	Agencies  []Agency `json:"agencies,omitempty"`
}

// Vehicle describes the vehicle type of a transit line.
type Vehicle struct {
	Type string `json:"type,omitempty"` // e.g. BUS, HEAVY_RAIL
	Name string `json:"name,omitempty"`
}

// Agency is a transit operator.
type Agency struct {
	Name string `json:"name,omitempty"`
}

// Stop is a named transit stop.
type Stop struct {
	Name     string               `json:"name,omitempty"`
	Location *polyline.Coordinate `json:"location,omitempty"`
}

// Amount is a currency, distance or emissions figure.
// It is emitted rounded to two decimal places.
type Amount float64

// MarshalJSON renders the amount rounded to two decimal places.
func (a Amount) MarshalJSON() ([]byte, error) {
	v := float64(a)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("unsupported amount %v", v)
	}
	return strconv.AppendFloat(nil, Round2(v), 'f', -1, 64), nil
}

// Round returns the amount as it is emitted.
func (a Amount) Round() Amount {
	return Amount(Round2(float64(a)))
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
