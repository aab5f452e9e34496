package journey

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tripmix/tripmix/internal/leg"
	"github.com/tripmix/tripmix/internal/segment"
)

// Tab is a ranking order.
type Tab string

const (
	TabSmart    Tab = "smart"
	TabFastest  Tab = "fastest"
	TabCheapest Tab = "cheapest"
)

// SmartTimeWeight converts minutes into cost units for the smart ranking.
const SmartTimeWeight = 0.3

// DefaultLimit is the number of journeys returned by Rank when no limit is set.
const DefaultLimit = 3

// ModeTaxi is the filter mode that admits rideshare segments.
const ModeTaxi = "taxi"

// ErrUnknownTab is returned by ParseTab for an unrecognised tab name.
var ErrUnknownTab = errors.New("unknown ranking tab")

// ParseTab parses a tab name. An empty name selects TabSmart.
func ParseTab(s string) (Tab, error) {
	switch Tab(strings.ToLower(s)) {
	case "", TabSmart:
		return TabSmart, nil
	case TabFastest:
		return TabFastest, nil
	case TabCheapest:
		return TabCheapest, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// Rank filters journeys to those using only the given modes, orders them by tab
// and returns at most limit of them. A nil modes list admits every journey. The
// sort is stable so equal journeys keep composition order.
func Rank(journeys []Journey, tab Tab, modes []string, limit int) []Journey {
	if limit <= 0 {
		limit = DefaultLimit
	}

	out := make([]Journey, 0, len(journeys))
	for _, j := range journeys {
		if modes == nil || Admissible(j, modes) {
			out = append(out, j)
		}
	}

	slices.SortStableFunc(out, func(a, b Journey) int {
		sa, sb := score(a, tab), score(b, tab)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func score(j Journey, tab Tab) float64 {
	switch tab {
	case TabFastest:
		return float64(j.Time)
	case TabCheapest:
		return float64(j.Cost)
	}
	return float64(j.Cost) + float64(j.Time)*SmartTimeWeight
}

// Admissible reports whether every segment of the journey uses an allowed mode.
// Walks and waits are always allowed and rideshare cars need ModeTaxi.
// Composite segments are checked by their constituents.
func Admissible(j Journey, modes []string) bool {
	for _, l := range []*leg.Leg{j.Leg1, j.Main, j.Leg3} {
		if l == nil {
			continue
		}
		for _, s := range segment.Flatten(l.Segments) {
			if !modeAllowed(s, modes) {
				return false
			}
		}
	}
	return true
}

func modeAllowed(s segment.Segment, modes []string) bool {
	switch {
	case s.Mode == segment.ModeWalk, s.Mode == segment.ModeWait:
		return true
	case s.IsRideshare():
		return slices.Contains(modes, ModeTaxi)
	}
	return slices.Contains(modes, string(s.Mode))
}

// FormatDuration renders minutes as "42 min" or "1hr 50".
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	if h == 0 {
		return fmt.Sprintf("%d min", m)
	}
	return fmt.Sprintf("%dhr %d", h, m)
}
