package leg

import (
	"regexp"
	"slices"
	"strings"

	"github.com/tripmix/tripmix/internal/segment"
)

// Risk is a reliability score with a human-readable reason.
type Risk struct {
	Score  int
	Reason string
}

// DefaultRisk applies when no risk rule matches.
var DefaultRisk = Risk{Score: 0, Reason: "Standard risk"}

type riskRule struct {
	group string   // lowercase group name fragment
	all   []string // every keyword must appear in the option name
	any   []string // at least one keyword must appear, when set
	risk  Risk
}

var riskRules = []riskRule{
	{group: "group 1", all: []string{"cycle"}, risk: Risk{1, "Weather dependent, fitness required"}},
	{group: "group 1", all: []string{"bus"}, risk: Risk{0, "Frequent, reliable"}},
	{group: "group 1", any: []string{"uber", "drive"}, risk: Risk{0, "Most reliable"}},

	{group: "group 2", all: []string{"bus", "train"}, risk: Risk{2, "Bus risk (+1) + Connection risk (+1)"}},
	{group: "group 2", all: []string{"p&r"}, risk: Risk{1, "Connection risk"}},
	{group: "group 2", all: []string{"walk", "train"}, risk: Risk{2, "Timing risk (+1) + Connection risk (+1)"}},
	{group: "group 2", all: []string{"cycle", "train"}, risk: Risk{1, "Weather dependent, connection risk"}},
	{group: "group 2", all: []string{"train"}, any: []string{"uber", "drive"}, risk: Risk{1, "Connection risk"}},

	{group: "group 3", all: []string{"train"}, risk: Risk{1, "Delay/timing risk"}},

	{group: "group 4", all: []string{"bus"}, risk: Risk{2, "Unfamiliar area, less frequent"}},
	{group: "group 4", all: []string{"uber"}, risk: Risk{0, "Most reliable"}},
	{group: "group 4", all: []string{"cycle"}, risk: Risk{1, "Weather dependent, fitness required"}},

	{group: "group 5", risk: Risk{0, "Most reliable"}},
}

// RiskFor scores an option by its group role and name. First matching rule wins.
func RiskFor(group, option string) Risk {
	g, o := strings.ToLower(group), strings.ToLower(option)
	for _, r := range riskRules {
		if !strings.Contains(g, r.group) || !containsAll(o, r.all) {
			continue
		}
		if len(r.any) > 0 && !containsAny(o, r.any) {
			continue
		}
		return r.risk
	}
	return DefaultRisk
}

// Hubs recognised when deriving ids, in match order. headingley is the
// destination-side interchange and has no fares of its own.
var idHubs = []string{"brough", "york", "beverley", "hull", "eastrington", "headingley"}

var parkAndRideSites = []struct{ keyword, id string }{
	{"stourton", "drive_stourton_pr"},
	{"temple green", "drive_temple_green_pr"},
	{"elland road", "drive_elland_road_pr"},
}

// Access modes for train options, in match order.
var trainAccessModes = []string{"walk", "cycle", "uber", "drive", "bus"}

// Ids for train options that name no hub.
var trainWithoutHub = []struct{ keyword, id string }{
	{"walk", "train_walk_headingley"},
	{"cycle", "train_cycle_headingley"},
	{"uber", "train_uber_headingley"},
	{"drive", "train_drive"},
	{"bus", "train_bus"},
}

var modeIDs = []struct{ keyword, id string }{
	{"uber", "uber"},
	{"bus", "bus"},
	{"cycle", "cycle"},
	{"direct drive", "direct_drive"},
	{"drive", "drive"},
}

var slugRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

// GenerateID derives a stable id from an option name. parkAndRide are the
// family's park-and-ride keywords; nil uses DefaultParkAndRideKeywords.
func GenerateID(name string, parkAndRide []string) string {
	lower := strings.ToLower(name)

	if isParkAndRide(lower, parkAndRide) {
		for _, site := range parkAndRideSites {
			if strings.Contains(lower, site.keyword) {
				return site.id
			}
		}
		return "drive_pr"
	}

	if strings.Contains(lower, "train") {
		if hub := firstContained(lower, idHubs); hub != "" {
			if mode := firstContained(lower, trainAccessModes); mode != "" {
				return "train_" + mode + "_" + hub
			}
			return "train_" + hub
		}
		for _, m := range trainWithoutHub {
			if strings.Contains(lower, m.keyword) {
				return m.id
			}
		}
		return "train_main"
	}

	for _, m := range modeIDs {
		if strings.Contains(lower, m.keyword) {
			return m.id
		}
	}
	return strings.ToLower(slugRegex.ReplaceAllString(name, "_"))
}

// DefaultParkAndRideKeywords mark an option as park and ride.
var DefaultParkAndRideKeywords = []string{"p&r", "park & ride"}

// isParkAndRide reports whether a lowercase option name is a park-and-ride
// variant. A nil keyword list uses DefaultParkAndRideKeywords.
func isParkAndRide(lower string, keywords []string) bool {
	if keywords == nil {
		keywords = DefaultParkAndRideKeywords
	}
	return containsAny(lower, keywords)
}

// IconFor picks the leg icon from the option name.
func IconFor(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "uber"):
		return segment.IconCar
	case strings.Contains(lower, "bus"):
		return segment.IconBus
	case strings.Contains(lower, "cycle"):
		return segment.IconBike
	case strings.Contains(lower, "train"):
		if strings.Contains(lower, "walk") {
			return segment.IconFootprints
		}
		if strings.Contains(lower, "drive") {
			return segment.IconCar
		}
		return segment.IconTrain
	case strings.Contains(lower, "walk"):
		return segment.IconFootprints
	}
	return segment.IconCar
}

// LineColorFor picks the leg color: green for cycle options, else the color of the
// first train or bus, else black.
func LineColorFor(name string, segs []segment.Segment) string {
	if strings.Contains(strings.ToLower(name), "cycle") {
		return "#00FF00"
	}
	for _, s := range segs {
		switch s.RideMode() {
		case segment.ModeTrain, segment.ModeBus:
			return s.LineColor
		}
	}
	return "#000000"
}

// Cosmetic holds presentation fields for a leg.
type Cosmetic struct {
	Color       string
	BgColor     string
	Desc        string
	Recommended bool
	WaitTime    int
	NextBusIn   int
	Platform    int
}

type cosmeticRule struct {
	ids      []string
	group    string // group name fragment, empty for any
	cosmetic Cosmetic
}

var cosmeticRules = []cosmeticRule{
	{ids: []string{"uber", "last_uber"}, group: "Group 1", cosmetic: Cosmetic{Color: "text-black", BgColor: "bg-zinc-100", Desc: "Fastest door-to-door.", WaitTime: 4}},
	{ids: []string{"uber", "last_uber"}, group: "Group 4", cosmetic: Cosmetic{Color: "text-black", BgColor: "bg-zinc-100", Desc: "Reliable final leg."}},
	{ids: []string{"uber", "last_uber"}, cosmetic: Cosmetic{Color: "text-black", BgColor: "bg-zinc-100"}},

	{ids: []string{"bus", "last_bus"}, group: "Group 1", cosmetic: Cosmetic{Color: "text-brand-dark", BgColor: "bg-brand-light", Desc: "Best balance.", Recommended: true, NextBusIn: 12}},
	{ids: []string{"bus", "last_bus"}, group: "Group 4", cosmetic: Cosmetic{Color: "text-brand-dark", BgColor: "bg-brand-light", Desc: "Short walk required.", Recommended: true}},
	{ids: []string{"bus", "last_bus"}, cosmetic: Cosmetic{Color: "text-brand-dark", BgColor: "bg-brand-light"}},

	{ids: []string{"drive_park", "drive"}, cosmetic: Cosmetic{Color: "text-zinc-800", BgColor: "bg-zinc-100", Desc: "Flexibility."}},
	{ids: []string{"train_walk_headingley"}, cosmetic: Cosmetic{Color: "text-slate-600", BgColor: "bg-slate-100", Desc: "Walking transfer."}},
	{ids: []string{"train_uber_headingley"}, cosmetic: Cosmetic{Color: "text-slate-600", BgColor: "bg-slate-100", Desc: "Fast transfer.", WaitTime: 3}},

	{ids: []string{"cycle", "last_cycle"}, group: "Group 1", cosmetic: Cosmetic{Color: "text-blue-600", BgColor: "bg-blue-100", Desc: "Zero emissions."}},
	{ids: []string{"cycle", "last_cycle"}, group: "Group 4", cosmetic: Cosmetic{Color: "text-blue-600", BgColor: "bg-blue-100", Desc: "Scenic route."}},
	{ids: []string{"cycle", "last_cycle"}, cosmetic: Cosmetic{Color: "text-blue-600", BgColor: "bg-blue-100"}},

	{ids: []string{"train_main"}, cosmetic: Cosmetic{Color: "text-[#713e8d]", BgColor: "bg-indigo-100", Platform: 4}},
}

// Fallback palette keyed by leg icon.
var iconPalette = map[string]Cosmetic{
	segment.IconTrain:      {Color: "text-slate-600", BgColor: "bg-slate-100"},
	segment.IconBus:        {Color: "text-brand-dark", BgColor: "bg-brand-light"},
	segment.IconCar:        {Color: "text-black", BgColor: "bg-zinc-100"},
	segment.IconBike:       {Color: "text-blue-600", BgColor: "bg-blue-100"},
	segment.IconFootprints: {Color: "text-slate-600", BgColor: "bg-slate-100"},
}

// CosmeticFor looks up presentation fields by leg id and group, falling back to
// the icon palette.
func CosmeticFor(id, group, iconID string) Cosmetic {
	for _, r := range cosmeticRules {
		if !slices.Contains(r.ids, id) {
			continue
		}
		if r.group != "" && !strings.Contains(group, r.group) {
			continue
		}
		return r.cosmetic
	}
	return iconPalette[iconID]
}

// LabelRule rewrites an option's display label and optionally its id.
// Label may reference the option name as {name}; Replace and With rewrite a
// substring of the name instead.
type LabelRule struct {
	Group   string   `yaml:"group" json:"group"`
	Names   []string `yaml:"names" json:"names"`
	Label   string   `yaml:"label" json:"label"`
	ID      string   `yaml:"id" json:"id"`
	Replace string   `yaml:"replace" json:"replace"`
	With    string   `yaml:"with" json:"with"`
}

func (r LabelRule) matches(group, name string) bool {
	if r.Group != "" && !strings.Contains(group, r.Group) {
		return false
	}
	return len(r.Names) == 0 || slices.Contains(r.Names, name)
}

// ApplyLabelRules returns the display label and id for an option. The first
// matching rule wins; with no match the name and id are returned unchanged.
func ApplyLabelRules(rules []LabelRule, group, name, id string) (string, string) {
	for _, r := range rules {
		if !r.matches(group, name) {
			continue
		}
		label := name
		if r.Label != "" {
			label = strings.ReplaceAll(r.Label, "{name}", name)
		}
		if r.Replace != "" {
			label = strings.ReplaceAll(label, r.Replace, r.With)
		}
		if r.ID != "" {
			id = r.ID
		}
		return label, id
	}
	return name, id
}

func firstContained(s string, keywords []string) string {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return k
		}
	}
	return ""
}

func containsAll(s string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	return firstContained(s, keywords) != ""
}
