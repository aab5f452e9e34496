// Package pricing applies hub fares, parking fees and named override rules to
// reduced segments.
package pricing

import (
	"strings"

	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/tripdata"
)

// Fares are the flat fares charged for journeys starting at one hub.
type Fares struct {
	Parking float64 `yaml:"parking" json:"parking" validate:"gte=0"`
	Uber    float64 `yaml:"uber" json:"uber" validate:"gte=0"`
	Train   float64 `yaml:"train" json:"train" validate:"gte=0"`
}

// Table maps hub keys to fares. HubOrder is the order hubs are searched for in
// option and group names.
type Table struct {
	Hubs              map[string]Fares `yaml:"hubs" json:"hubs" validate:"required,dive"`
	HubOrder          []string         `yaml:"hubOrder" json:"hubOrder" validate:"required,dive,required"`
	DefaultParkingFee float64          `yaml:"defaultParkingFee" json:"defaultParkingFee" validate:"gte=0"`
}

// ResolveLocation infers the hub a leg starts from. The departure stop of the first
// train wins, reduced to its first word; otherwise the first hub named in the
// option name, then in the group name. The result may name a hub the table does
// not know, in which case no hub fares apply.
func (t Table) ResolveLocation(segs []segment.Segment, option, group string) string {
	for _, s := range segs {
		if s.Mode != segment.ModeTrain || s.From == "" {
			continue
		}
		from := strings.ToLower(s.From)
		if strings.Contains(from, "eastrington") {
			return "eastrington"
		}
		return strings.Split(from, " ")[0]
	}
	if hub := t.matchHub(option); hub != "" {
		return hub
	}
	return t.matchHub(group)
}

func (t Table) matchHub(name string) string {
	lower := strings.ToLower(name)
	for _, hub := range t.HubOrder {
		if strings.Contains(lower, hub) {
			return hub
		}
	}
	return ""
}

// ApplyHubFares charges the hub train fare on the first train and the hub
// rideshare fare on the first rideshare car. Later trains and rideshares are
// zeroed so a through-fare is only charged once. segs is modified in place.
func (t Table) ApplyHubFares(segs []segment.Segment, location string) bool {
	fares, ok := t.Hubs[location]
	if !ok {
		return false
	}
	var trainSeen, uberSeen bool
	for i := range segs {
		s := &segs[i]
		if s.Mode == segment.ModeTrain {
			s.Cost = firstFare(&trainSeen, fares.Train)
		}
		if s.IsRideshare() {
			s.Cost = firstFare(&uberSeen, fares.Uber)
		}
	}
	return true
}

// FoldParking adds a parking fee to every self-driven car that connects to a
// train, skipping intervening segments up to the next bus or car. The fee is the
// hub's parking fare when the location is known, otherwise DefaultParkingFee.
// No parking segment is created. segs is modified in place.
func (t Table) FoldParking(segs []segment.Segment, location string) {
	fee := t.DefaultParkingFee
	if fares, ok := t.Hubs[location]; ok {
		fee = fares.Parking
	}
	for i := range segs {
		if segs[i].Mode != segment.ModeCar || segs[i].IsRideshare() {
			continue
		}
		if connectsToTrain(segs[i+1:]) {
			segs[i].Cost += tripdata.Amount(fee)
		}
	}
}

func connectsToTrain(rest []segment.Segment) bool {
	for _, s := range rest {
		switch s.Mode {
		case segment.ModeTrain:
			return true
		case segment.ModeBus, segment.ModeCar:
			return false
		}
	}
	return false
}

func firstFare(seen *bool, fare float64) tripdata.Amount {
	if *seen {
		return 0
	}
	*seen = true
	return tripdata.Amount(fare)
}
