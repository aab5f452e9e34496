package segment

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tripmix/tripmix/internal/tripdata"
	"github.com/tripmix/tripmix/pkg/polyline"
)

// Unit conversions and per-mode rates.
const (
	MetersPerMile = 1609.34

	// DrivingCostPerMile is the mileage rate charged for self-driven car segments.
	DrivingCostPerMile = 0.45
)

// Bus fare tiers, matched against the segment label.
const (
	BusFareStandard = 2.00
	BusFareExpress  = 3.00
	BusFareParkRide = 5.00
)

// Emission factors in kg CO2 per mile, keyed by icon.
var emissionFactors = map[string]float64{
	IconTrain: 0.06,
	IconBus:   0.10,
	IconCar:   0.27,
}

var (
	expressBusRegex  = regexp.MustCompile(`(?i)\b(x1|x46)\b`)
	parkRideBusRegex = regexp.MustCompile(`(?i)\bpr\d+\b`)
	numericRegex     = regexp.MustCompile(`^\d+$`)
	fromRegex        = regexp.MustCompile(`(?i)from\s+(.*?)(?:\s+to\s+|$)`)
	toRegex          = regexp.MustCompile(`(?i)to\s+(.*)$`)
)

// Segment colors for legs without transit metadata.
const (
	colorDefault = "#000000"
	colorDrive   = "#0000FF"
	colorBike    = "#00FF00"
	colorWalk    = "#475569"
)

// BuildError tags a segment that could not be built with the option and leg it came from.
type BuildError struct {
	Option string
	Index  int
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("option %q leg %d: %v", e.Option, e.Index, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// EmissionFactor returns the kg CO2 per mile for an icon.
func EmissionFactor(iconID string) float64 {
	return emissionFactors[iconID]
}

// BusFare returns the flat fare for a bus line label.
func BusFare(label string) float64 {
	if expressBusRegex.MatchString(label) {
		return BusFareExpress
	}
	if parkRideBusRegex.MatchString(label) {
		return BusFareParkRide
	}
	return BusFareStandard
}

// MapMode maps a provider travel mode to a canonical mode.
// Transit legs are told apart by vehicle type and default to bus.
func MapMode(rawMode string, td *tripdata.TransitDetails) Mode {
	switch strings.ToLower(rawMode) {
	case "walking":
		return ModeWalk
	case "driving":
		return ModeCar
	case "bicycling":
		return ModeBike
	case "transit":
		switch strings.ToUpper(vehicleType(td)) {
		case "HEAVY_RAIL", "TRAIN":
			return ModeTrain
		}
		return ModeBus
	}
	return Mode(strings.ToLower(rawMode))
}

func vehicleType(td *tripdata.TransitDetails) string {
	if td == nil {
		return ""
	}
	if td.VehicleType != "" {
		return td.VehicleType
	}
	if td.Line != nil && td.Line.Vehicle != nil {
		return td.Line.Vehicle.Type
	}
	return ""
}

// Build converts one raw leg into a Segment. optionName is the display name of the
// owning option and tells a rideshare apart from a self-driven car.
// The only failure is a corrupt polyline; every other missing field degrades to zero.
func Build(raw tripdata.RawLeg, optionName string) (Segment, error) {
	path, err := polyline.Decode(raw.Polyline)
	if err != nil {
		return Segment{}, err
	}
	if path == nil {
		path = []polyline.Coordinate{}
	}

	mode := MapMode(raw.Mode, raw.TransitDetails)
	seg := Segment{
		Mode:      mode,
		Label:     string(mode),
		LineColor: colorDefault,
		IconID:    IconFootprints,
		Time:      int(math.RoundToEven(raw.DurationValue / 60)),
		Path:      path,
	}

	rideshare := strings.Contains(strings.ToLower(optionName), "uber")

	if td := raw.TransitDetails; td != nil {
		applyTransit(&seg, td)
	} else {
		applyStreet(&seg, raw.Instructions, rideshare)
	}

	seg.Label = capitalize(seg.Label)

	miles := math.Max(raw.DistanceValue, 0) / MetersPerMile
	seg.Distance = tripdata.Amount(miles)
	seg.CO2 = tripdata.Amount(miles * EmissionFactor(seg.IconID))

	switch seg.Mode {
	case ModeCar:
		if !rideshare && !seg.IsRideshare() {
			seg.Cost = tripdata.Amount(DrivingCostPerMile * miles)
		}
	case ModeBus:
		seg.Cost = tripdata.Amount(BusFare(seg.Label))
	}

	if seg.Time < 0 {
		seg.Time = 0
	}
	return seg, nil
}

func applyTransit(seg *Segment, td *tripdata.TransitDetails) {
	if td.DepartureStop != nil {
		seg.From = td.DepartureStop.Name
	}
	if td.ArrivalStop != nil {
		seg.To = td.ArrivalStop.Name
	}

	color := td.Color
	if td.Line != nil && td.Line.Color != "" {
		color = td.Line.Color
	}
	if color != "" {
		seg.LineColor = color
	}

	if label := firstNonEmpty(lineLabel(td), vehicleName(td)); label != "" {
		seg.Label = label
	}

	switch seg.Mode {
	case ModeBus:
		seg.IconID = IconBus
		if numericRegex.MatchString(seg.Label) {
			seg.Label = "Bus " + seg.Label
		}
	case ModeTrain:
		seg.IconID = IconTrain
	}

	seg.NumStops = td.NumStops
	if len(td.Stops) > 0 {
		seg.Stops = append([]string(nil), td.Stops...)
	}
	if len(td.StopPoints) > 0 {
		seg.StopPoints = append([]polyline.Coordinate(nil), td.StopPoints...)
	}
}

// lineLabel picks the line short name, then the first agency, then the line name.
func lineLabel(td *tripdata.TransitDetails) string {
	if td.Line == nil {
		return td.LineName
	}
	var agency string
	if len(td.Line.Agencies) > 0 {
		agency = td.Line.Agencies[0].Name
	}
	return firstNonEmpty(td.Line.ShortName, agency, td.Line.Name, td.LineName)
}

func vehicleName(td *tripdata.TransitDetails) string {
	if td.Line != nil && td.Line.Vehicle != nil && td.Line.Vehicle.Name != "" {
		return td.Line.Vehicle.Name
	}
	return td.VehicleType
}

func applyStreet(seg *Segment, instructions string, rideshare bool) {
	switch seg.Mode {
	case ModeCar, "taxi":
		seg.Mode = ModeCar
		seg.IconID = IconCar
		if rideshare {
			seg.Label = "Uber"
			seg.LineColor = colorDefault
		} else {
			seg.Label = "Drive"
			seg.LineColor = colorDrive
		}
	case ModeBike:
		seg.IconID = IconBike
		seg.LineColor = colorBike
	case ModeWalk:
		seg.LineColor = colorWalk
	}

	if instructions == "" {
		return
	}
	if m := fromRegex.FindStringSubmatch(instructions); m != nil {
		seg.From = m[1]
	}
	if m := toRegex.FindStringSubmatch(instructions); m != nil {
		seg.To = m[1]
	}
}

// BuildAll builds every leg of an option in order.
func BuildAll(legs []tripdata.RawLeg, optionName string) ([]Segment, error) {
	segs := make([]Segment, 0, len(legs))
	for i, raw := range legs {
		seg, err := Build(raw, optionName)
		if err != nil {
			return nil, &BuildError{Option: optionName, Index: i, Err: err}
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
