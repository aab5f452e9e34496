// Package journey combines first-mile, main and last-mile legs into complete
// journeys and ranks them.
package journey

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/tripmix/tripmix/internal/leg"
	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/tripdata"
)

// ReferenceDrive is the direct-drive baseline journeys are compared against.
type ReferenceDrive struct {
	Time     int             `json:"time"`
	Cost     tripdata.Amount `json:"cost"`
	Distance tripdata.Amount `json:"distance"`
	CO2      tripdata.Amount `json:"co2"`
}

// Emissions compares a journey's CO2 with the reference drive. Val is the saving in kg.
type Emissions struct {
	Val     tripdata.Amount `json:"val" groups:"summary,detailed"`
	Percent int             `json:"percent" groups:"summary,detailed"`
	Text    string          `json:"text,omitempty" groups:"summary,detailed"`
}

// Journey is one complete trip: a first-mile leg, the main leg and a last-mile
// leg. Main is shared between journeys and is emitted by id only; consumers read
// the leg itself from segmentOptions.mainLeg of the same document.
type Journey struct {
	ID        string          `json:"id" groups:"summary,detailed"`
	Leg1      *leg.Leg        `json:"leg1" groups:"summary,detailed"`
	Main      *leg.Leg        `json:"-"`
	MainID    string          `json:"mainLegId" groups:"summary,detailed"`
	Leg3      *leg.Leg        `json:"leg3" groups:"summary,detailed"`
	Cost      tripdata.Amount `json:"cost" groups:"summary,detailed"`
	Time      int             `json:"time" groups:"summary,detailed"`
	Buffer    int             `json:"buffer" groups:"detailed"`
	Risk      int             `json:"risk" groups:"summary,detailed"`
	Emissions Emissions       `json:"emissions" groups:"summary,detailed"`
}

// ArrivedID is the id of the synthetic last-mile leg paired with park-and-ride options.
const ArrivedID = "arrived"

// ArrivedLeg returns the empty last-mile leg for options that already end at the
// destination.
func ArrivedLeg() *leg.Leg {
	return &leg.Leg{ID: ArrivedID, Label: "Arrived", Segments: []segment.Segment{}}
}

// ComposerConfig holds the pairing rules of one route family.
type ComposerConfig struct {
	// BufferMinutes is added once to every journey time.
	BufferMinutes int
	// ParkAndRideKeywords mark a first-mile leg as park and ride by its label.
	ParkAndRideKeywords []string
	// CycleAllowIDs and CycleAllowPrefixes list the first-mile ids a cycle
	// last-mile leg may follow.
	CycleAllowIDs      []string
	CycleAllowPrefixes []string
}

// Compose emits a journey for every admissible pairing of a first-mile leg with
// main and a last-mile leg, in first-mile then last-mile order.
func Compose(first []*leg.Leg, main *leg.Leg, last []*leg.Leg, ref ReferenceDrive, cfg ComposerConfig) []Journey {
	var out []Journey
	for _, l1 := range first {
		if cfg.isParkAndRide(l1) {
			out = append(out, newJourney(l1, main, ArrivedLeg(), ref, cfg.BufferMinutes))
			continue
		}
		for _, l3 := range last {
			if isCycle(l3) && !cfg.allowsCycleAfter(l1) {
				continue
			}
			out = append(out, newJourney(l1, main, l3, ref, cfg.BufferMinutes))
		}
	}
	return out
}

func newJourney(l1, main, l3 *leg.Leg, ref ReferenceDrive, buffer int) Journey {
	co2 := l1.CO2 + main.CO2 + l3.CO2
	return Journey{
		ID:        fmt.Sprintf("%s-%s", l1.ID, l3.ID),
		Leg1:      l1,
		Main:      main,
		MainID:    main.ID,
		Leg3:      l3,
		Cost:      l1.Cost + main.Cost + l3.Cost,
		Time:      l1.Time + buffer + main.Time + l3.Time,
		Buffer:    buffer,
		Risk:      l1.RiskScore + main.RiskScore + l3.RiskScore,
		Emissions: Compare(co2, ref.CO2),
	}
}

// Compare computes the CO2 saved by a journey emitting co2 against the baseline.
// Percent rounds half up and is 0 for a zero baseline; Text is set only for a
// strictly positive saving.
func Compare(co2, baseline tripdata.Amount) Emissions {
	savings := baseline - co2
	e := Emissions{Val: savings}
	if baseline <= 0 {
		return e
	}
	e.Percent = int(math.Floor(float64(savings)/float64(baseline)*100 + 0.5))
	if savings > 0 {
		e.Text = fmt.Sprintf("Saves %d%% CO₂ vs driving", e.Percent)
	}
	return e
}

func (c ComposerConfig) isParkAndRide(l *leg.Leg) bool {
	if strings.HasSuffix(l.ID, "_pr") {
		return true
	}
	label := strings.ToLower(l.Label)
	for _, k := range c.ParkAndRideKeywords {
		if strings.Contains(label, k) {
			return true
		}
	}
	return false
}

func (c ComposerConfig) allowsCycleAfter(l *leg.Leg) bool {
	if slices.Contains(c.CycleAllowIDs, l.ID) {
		return true
	}
	for _, p := range c.CycleAllowPrefixes {
		if strings.HasPrefix(l.ID, p) {
			return true
		}
	}
	return false
}

func isCycle(l *leg.Leg) bool {
	return strings.Contains(l.ID, "cycle")
}
