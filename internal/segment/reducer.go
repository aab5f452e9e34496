package segment

// Short-walk thresholds in minutes.
const (
	// NegligibleWalkMinutes drops walks of at most this length before merging.
	NegligibleWalkMinutes = 1
	// InterchangeWalkMinutes folds walks of at most this length between two trains.
	InterchangeWalkMinutes = 5
	// ShortWalkMinutes folds any remaining walk shorter than this.
	ShortWalkMinutes = 2.5
)

// Reduce runs the filter/merge pass followed by short-walk suppression.
func Reduce(segs []Segment) []Segment {
	return SuppressShortWalks(FilterAndMerge(segs))
}

// FilterAndMerge drops negligible walks and merges each segment into the
// previous one when CanMerge allows it.
func FilterAndMerge(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.Mode == ModeWalk && s.Time <= NegligibleWalkMinutes {
			continue
		}
		if n := len(out); n > 0 && CanMerge(out[n-1], s) {
			out[n-1] = Merge(out[n-1], s)
			continue
		}
		out = append(out, s)
	}
	return out
}

// CanMerge reports whether b may be folded into a. Trains never merge here so that
// consecutive rides stay distinct for interchange grouping.
func CanMerge(a, b Segment) bool {
	return a.Mode == b.Mode && a.Label == b.Label && a.Mode != ModeTrain
}

// Merge returns a new segment with b folded into a. Identity comes from a; the
// destination comes from b when b has one.
func Merge(a, b Segment) Segment {
	m := a
	m.Time = a.Time + b.Time
	m.WaitTime = a.WaitTime + b.WaitTime
	m.Distance = a.Distance + b.Distance
	m.CO2 = a.CO2 + b.CO2
	m.Cost = a.Cost + b.Cost
	m.NumStops = a.NumStops + b.NumStops
	m.Path = concat(a.Path, b.Path)
	m.Stops = concat(a.Stops, b.Stops)
	m.StopPoints = concat(a.StopPoints, b.StopPoints)
	if b.To != "" {
		m.To = b.To
	}
	return m
}

// SuppressShortWalks removes short walks and carries their time forward as wait
// time on the next kept segment. A walk of at most InterchangeWalkMinutes between
// two train-iconed segments is removed; otherwise a walk under ShortWalkMinutes is.
// Time removed after the last kept segment is added to that segment instead.
func SuppressShortWalks(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	carry := 0
	for i, s := range segs {
		if isSuppressible(segs, i) {
			carry += s.TotalTime()
			continue
		}
		if carry > 0 {
			s.WaitTime += carry
			carry = 0
		}
		out = append(out, s)
	}

	if carry > 0 {
		if len(out) == 0 {
			return append(out, segs...)
		}
		out[len(out)-1].WaitTime += carry
	}
	return out
}

func isSuppressible(segs []Segment, i int) bool {
	s := segs[i]
	if s.Mode != ModeWalk {
		return false
	}
	if float64(s.Time) <= InterchangeWalkMinutes && betweenTrains(segs, i) {
		return true
	}
	return float64(s.Time) < ShortWalkMinutes
}

func betweenTrains(segs []Segment, i int) bool {
	return i > 0 && i < len(segs)-1 &&
		segs[i-1].IconID == IconTrain && segs[i+1].IconID == IconTrain
}

func concat[T any](a, b []T) []T {
	if len(a) == 0 && len(b) == 0 {
		if a == nil && b == nil {
			return nil
		}
		return []T{}
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
