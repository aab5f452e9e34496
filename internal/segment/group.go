package segment

import (
	"github.com/tripmix/tripmix/internal/tripdata"
	"github.com/tripmix/tripmix/pkg/polyline"
)

// TransferLabel marks a wait segment inserted as an interchange buffer. Such waits
// are never absorbed into an access group.
const TransferLabel = "Transfer"

// Group folds a reduced segment list into composite segments. Two trains joined
// directly or by a single walk or wait become a train group; a ride with its
// surrounding walks becomes an access group. Train grouping wins over access
// grouping. The sum of time and wait time over the list is unchanged.
func Group(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for i := 0; i < len(segs); {
		if n := trainMergeSpan(segs, i); n > 0 {
			out = append(out, trainGroup(segs[i:i+n]))
			i += n
			continue
		}
		if n := accessMergeSpan(segs, i); n > 0 {
			out = append(out, accessGroup(segs[i:i+n]))
			i += n
			continue
		}
		out = append(out, segs[i])
		i++
	}
	return out
}

// trainMergeSpan returns how many segments starting at i form a train group, or 0.
func trainMergeSpan(segs []Segment, i int) int {
	if i >= len(segs) || segs[i].Mode != ModeTrain {
		return 0
	}
	if i+1 < len(segs) && segs[i+1].Mode == ModeTrain {
		return 2
	}
	if i+2 < len(segs) && isInterchange(segs[i+1]) && segs[i+2].Mode == ModeTrain {
		return 3
	}
	return 0
}

// accessMergeSpan returns how many segments starting at i form an access group, or 0.
func accessMergeSpan(segs []Segment, i int) int {
	j := i
	for j < len(segs) && isTransferLike(segs[j]) {
		j++
	}
	if j >= len(segs) || !isRide(segs[j]) {
		return 0
	}
	if trainMergeSpan(segs, j) > 0 {
		return 0
	}
	k := j + 1
	for k < len(segs) && isTransferLike(segs[k]) {
		k++
	}
	if k-i < 2 {
		return 0
	}
	return k - i
}

func trainGroup(parts []Segment) Segment {
	first, last := parts[0], parts[len(parts)-1]
	g := composite(ModeTrainGroup, first, parts)
	g.Time = first.Time + last.Time
	for _, p := range parts {
		g.WaitTime += p.WaitTime
	}
	if len(parts) == 3 {
		g.WaitTime += parts[1].Time
	}
	g.From = first.From
	g.To = last.To

	station := firstNonEmpty(first.To, last.From)
	if station != "" {
		g.Detail = "Change at " + station
	}
	return g
}

func accessGroup(parts []Segment) Segment {
	var ride Segment
	for _, p := range parts {
		if isRide(p) {
			ride = p
			break
		}
	}
	g := composite(ModeAccessGroup, ride, parts)
	for _, p := range parts {
		g.Time += p.TotalTime()
	}
	g.From = ride.From
	g.To = ride.To
	return g
}

// composite builds the shared fields of a grouped segment: identity from lead,
// additive quantities summed over parts.
func composite(mode Mode, lead Segment, parts []Segment) Segment {
	g := Segment{
		Mode:      mode,
		Label:     lead.Label,
		LineColor: lead.LineColor,
		IconID:    lead.IconID,
		Path:      []polyline.Coordinate{},
		Segments:  Clone(parts),
	}
	var cost, distance, co2 tripdata.Amount
	for _, p := range parts {
		cost += p.Cost
		distance += p.Distance
		co2 += p.CO2
		g.Path = append(g.Path, p.Path...)
	}
	g.Cost, g.Distance, g.CO2 = cost, distance, co2
	return g
}

// Flatten returns the atomic segments of segs, expanding composites into their
// constituents.
func Flatten(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.IsComposite() {
			out = append(out, Flatten(s.Segments)...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// isRide reports whether s carries the traveller on a vehicle.
func isRide(s Segment) bool {
	return !isTransferLike(s) && s.Mode != ModeWait && !s.IsComposite()
}

// isTransferLike reports whether s is a walk or a non-transfer wait that can be
// absorbed around a ride.
func isTransferLike(s Segment) bool {
	switch s.Mode {
	case ModeWalk:
		return true
	case ModeWait:
		return s.Label != TransferLabel
	}
	return false
}

func isInterchange(s Segment) bool {
	return s.Mode == ModeWalk || s.Mode == ModeWait
}
