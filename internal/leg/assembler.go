package leg

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tripmix/tripmix/internal/pricing"
	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/tripdata"
	"github.com/tripmix/tripmix/pkg/polyline"
)

// TransferBufferDetail describes the wait inserted before the first train of an
// access option.
const TransferBufferDetail = "Transfer Buffer"

// Config holds configuration for an Assembler.
type Config struct {
	// Family is the route family name passed to override rules.
	Family string
	// AccessGroup is the group name fragment whose options get a transfer buffer
	// and a truncated detail string. Empty disables both.
	AccessGroup string
	// TransferBufferMinutes is the length of the inserted transfer wait.
	TransferBufferMinutes int
	// ParkAndRideKeywords mark an option as park and ride. Nil uses the defaults.
	ParkAndRideKeywords []string
	LabelRules          []LabelRule

	Pricing *pricing.Engine
	Logger  zerolog.Logger
}

// Assembler turns raw options into Legs.
type Assembler struct {
	cfg    Config
	logger zerolog.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(cfg Config) *Assembler {
	return &Assembler{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("family", cfg.Family).Logger(),
	}
}

// Assemble builds the Leg for one option of the named group.
func (a *Assembler) Assemble(opt tripdata.Option, group string) (*Leg, error) {
	l, _, err := a.Trace(opt, group)
	return l, err
}

// Trace builds the Leg for one option and returns the segment list after every
// stage. Each stage works on its own copy, so the recorded stages never alias.
func (a *Assembler) Trace(opt tripdata.Option, group string) (*Leg, *Stages, error) {
	built, err := segment.BuildAll(opt.Legs, opt.Name)
	if err != nil {
		return nil, nil, err
	}
	stages := &Stages{Built: built}

	stages.Reduced = segment.Reduce(segment.Clone(built))
	stages.Buffered = a.insertTransferBuffer(segment.Clone(stages.Reduced), opt.Name, group)

	priced, err := a.cfg.Pricing.Apply(stages.Buffered, pricing.Context{
		Family: a.cfg.Family,
		Group:  group,
		Option: opt.Name,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("price option %q: %w", opt.Name, err)
	}
	stages.Priced = priced.Segments
	stages.Location = priced.Location
	stages.AppliedRules = priced.AppliedRules

	stages.Grouped = segment.Group(segment.Clone(priced.Segments))

	l := a.finish(opt.Name, group, segment.Clone(stages.Grouped))
	a.logger.Debug().
		Str("group", group).
		Str("option", opt.Name).
		Str("id", l.ID).
		Int("segments", len(l.Segments)).
		Msg("leg assembled")
	return l, stages, nil
}

// insertTransferBuffer adds a transfer wait before the first train of train
// options in the access group.
func (a *Assembler) insertTransferBuffer(segs []segment.Segment, name, group string) []segment.Segment {
	if !a.isAccessGroup(group) || a.cfg.TransferBufferMinutes <= 0 ||
		!strings.Contains(strings.ToLower(name), "train") {
		return segs
	}
	for i, s := range segs {
		if s.Mode != segment.ModeTrain {
			continue
		}
		wait := segment.Segment{
			Mode:      segment.ModeWait,
			Label:     segment.TransferLabel,
			LineColor: "#000000",
			IconID:    segment.IconClock,
			Time:      a.cfg.TransferBufferMinutes,
			Detail:    TransferBufferDetail,
			Path:      []polyline.Coordinate{},
		}
		out := make([]segment.Segment, 0, len(segs)+1)
		out = append(out, segs[:i]...)
		out = append(out, wait)
		return append(out, segs[i:]...)
	}
	return segs
}

func (a *Assembler) finish(name, group string, segs []segment.Segment) *Leg {
	l := &Leg{Segments: segs}
	var maxWait int
	for _, s := range segs {
		l.Time += s.TotalTime()
		l.Cost += s.Cost
		l.Distance += s.Distance
		l.CO2 += s.CO2
		maxWait = max(maxWait, s.WaitTime)
	}

	risk := RiskFor(group, name)
	l.RiskScore, l.RiskReason = risk.Score, risk.Reason

	l.Label, l.ID = ApplyLabelRules(a.cfg.LabelRules, group, name, GenerateID(name, a.cfg.ParkAndRideKeywords))
	l.IconID = IconFor(name)
	l.LineColor = LineColorFor(name, segs)

	c := CosmeticFor(l.ID, group, l.IconID)
	l.Color, l.BgColor, l.Desc = c.Color, c.BgColor, c.Desc
	l.Recommended = c.Recommended
	l.NextBusIn, l.Platform = c.NextBusIn, c.Platform
	l.WaitTime = c.WaitTime
	if l.WaitTime == 0 {
		l.WaitTime = maxWait
	}

	l.Detail = a.detail(name, group, segs)
	return l
}

// detail joins "{time} min {mode}" for every segment with positive time. Access
// options stop at the first train or wait, and park-and-ride access options also
// at the first bus, so the summary does not reveal the main leg.
func (a *Assembler) detail(name, group string, segs []segment.Segment) string {
	shown := segs
	if a.isAccessGroup(group) {
		pr := isParkAndRide(strings.ToLower(name), a.cfg.ParkAndRideKeywords)
		var head []segment.Segment
		for _, s := range segs {
			mode := s.RideMode()
			if mode == segment.ModeTrain || mode == segment.ModeWait || (pr && mode == segment.ModeBus) {
				break
			}
			head = append(head, s)
		}
		if len(head) > 0 {
			shown = head
		}
	}

	parts := make([]string, 0, len(shown))
	for _, s := range shown {
		if s.Time > 0 {
			parts = append(parts, fmt.Sprintf("%d min %s", s.Time, s.RideMode()))
		}
	}
	return strings.Join(parts, " then ")
}

func (a *Assembler) isAccessGroup(group string) bool {
	return a.cfg.AccessGroup != "" && strings.Contains(group, a.cfg.AccessGroup)
}
