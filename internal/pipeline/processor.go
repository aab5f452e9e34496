package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripmix/tripmix/internal/config"
	"github.com/tripmix/tripmix/internal/journey"
	"github.com/tripmix/tripmix/internal/leg"
	"github.com/tripmix/tripmix/internal/pricing"
	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/telemetry"
	"github.com/tripmix/tripmix/internal/tripdata"
	"github.com/tripmix/tripmix/pkg/polyline"
)

// ErrOptionNotFound is returned by Inspect when no option matches.
var ErrOptionNotFound = errors.New("option not found")

// ProcessorConfig holds configuration for a Processor.
type ProcessorConfig struct {
	Family  config.Family
	Pricing *pricing.Engine
	Metrics *telemetry.Metrics
	Tracer  trace.Tracer
	Logger  zerolog.Logger
}

// Processor turns trip-data documents of one route family into Outputs.
type Processor struct {
	family    config.Family
	assembler *leg.Assembler
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
	logger    zerolog.Logger
	attrs     metric.MeasurementOption
}

// NewProcessor creates a Processor. A nil tracer or metrics falls back to the
// global providers.
func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("tripmix/pipeline")
	}
	if cfg.Metrics == nil {
		m, err := telemetry.NewMetrics(otel.Meter("tripmix/pipeline"))
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		cfg.Metrics = m
	}
	logger := cfg.Logger.With().Str("family", cfg.Family.Name).Logger()

	return &Processor{
		family: cfg.Family,
		assembler: leg.NewAssembler(leg.Config{
			Family:                cfg.Family.Name,
			AccessGroup:           cfg.Family.AccessGroup,
			TransferBufferMinutes: cfg.Family.TransferBufferMinutes,
			ParkAndRideKeywords:   cfg.Family.ParkAndRideKeywords,
			LabelRules:            cfg.Family.LabelRules,
			Pricing:               cfg.Pricing,
			Logger:                cfg.Logger,
		}),
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
		logger:  logger,
		attrs:   metric.WithAttributes(attribute.String("family", cfg.Family.Name)),
	}, nil
}

// Process builds the legs of every classified group and composes the journeys.
// A corrupt polyline halts the document; any other option failure is logged and
// the option skipped.
func (p *Processor) Process(ctx context.Context, doc *tripdata.Document) (*Output, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.process", trace.WithAttributes(
		attribute.String("family", p.family.Name),
		attribute.Int("groups", len(doc.Groups)),
	))
	defer span.End()

	if len(doc.Groups) == 0 {
		p.logger.Warn().Msg("document has no groups")
	}

	out := newOutput()
	var haveReference bool
	for _, g := range doc.Groups {
		role := Classify(g.Name)
		switch role {
		case RoleNone:
			p.logger.Debug().Str("group", g.Name).Msg("unclassified group skipped")
			continue
		case RoleMain:
			if out.SegmentOptions.MainLeg != nil || len(g.Options) == 0 {
				continue
			}
			l, err := p.assemble(ctx, g.Options[0], g.Name)
			if err != nil {
				return nil, p.fail(span, err)
			}
			if l != nil {
				out.SegmentOptions.MainLeg = l
			}
		case RoleReference:
			if haveReference || len(g.Options) == 0 {
				continue
			}
			ref, path, err := referenceDrive(g.Options[0])
			if err != nil {
				return nil, p.fail(span, err)
			}
			out.DirectDrive, out.MockPath = ref, path
			haveReference = true
		case RoleFirstMile, RoleLastMile:
			for _, opt := range g.Options {
				l, err := p.assemble(ctx, opt, g.Name)
				if err != nil {
					return nil, p.fail(span, err)
				}
				if l == nil {
					continue
				}
				if role == RoleFirstMile {
					out.SegmentOptions.FirstMile = append(out.SegmentOptions.FirstMile, l)
				} else {
					out.SegmentOptions.LastMile = append(out.SegmentOptions.LastMile, l)
				}
			}
		}
	}

	if out.SegmentOptions.MainLeg == nil {
		p.logger.Warn().Msg("document has no main leg, using placeholder")
		out.SegmentOptions.MainLeg = mainPlaceholder()
	}

	journeys := journey.Compose(
		out.SegmentOptions.FirstMile,
		out.SegmentOptions.MainLeg,
		out.SegmentOptions.LastMile,
		out.DirectDrive,
		p.family.Composer(),
	)
	if journeys != nil {
		out.Journeys = journeys
	}
	p.metrics.JourneysComposed.Add(ctx, int64(len(out.Journeys)), p.attrs)

	span.SetAttributes(
		attribute.Int("legs.first_mile", len(out.SegmentOptions.FirstMile)),
		attribute.Int("legs.last_mile", len(out.SegmentOptions.LastMile)),
		attribute.Int("journeys", len(out.Journeys)),
	)
	return out, nil
}

// assemble builds one leg. It returns a nil leg and nil error for a contained
// failure, and an error only for failures that halt the document.
func (p *Processor) assemble(ctx context.Context, opt tripdata.Option, group string) (*leg.Leg, error) {
	l, err := p.assembler.Assemble(opt, group)
	if err == nil {
		p.metrics.LegsBuilt.Add(ctx, 1, p.attrs)
		return l, nil
	}

	var buildErr *segment.BuildError
	if errors.As(err, &buildErr) {
		return nil, fmt.Errorf("group %q: %w", group, err)
	}

	p.metrics.OptionsFailed.Add(ctx, 1, p.attrs)
	p.logger.Error().Err(err).
		Str("group", group).
		Str("option", opt.Name).
		Msg("option skipped")
	return nil, nil
}

func (p *Processor) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// referenceDrive joins the legs of the direct-drive option end to end.
func referenceDrive(opt tripdata.Option) (journey.ReferenceDrive, []polyline.Coordinate, error) {
	var seconds, meters float64
	path := []polyline.Coordinate{}
	for i, raw := range opt.Legs {
		seconds += raw.DurationValue
		meters += math.Max(raw.DistanceValue, 0)
		coords, err := polyline.Decode(raw.Polyline)
		if err != nil {
			return journey.ReferenceDrive{}, nil, &segment.BuildError{Option: opt.Name, Index: i, Err: err}
		}
		path = append(path, coords...)
	}

	miles := meters / segment.MetersPerMile
	return journey.ReferenceDrive{
		Time:     int(math.RoundToEven(seconds / 60)),
		Cost:     tripdata.Amount(segment.DrivingCostPerMile * miles).Round(),
		Distance: tripdata.Amount(miles).Round(),
		CO2:      tripdata.Amount(miles * segment.EmissionFactor(segment.IconCar)).Round(),
	}, path, nil
}

// Inspect traces one option through every assembly stage. The group is matched
// by substring and the option by exact name, case-insensitively.
func (p *Processor) Inspect(doc *tripdata.Document, group, option string) (*leg.Leg, *leg.Stages, error) {
	for _, g := range doc.Groups {
		if !strings.Contains(strings.ToLower(g.Name), strings.ToLower(group)) {
			continue
		}
		for _, opt := range g.Options {
			if strings.EqualFold(opt.Name, option) {
				return p.assembler.Trace(opt, g.Name)
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: %q in group %q", ErrOptionNotFound, option, group)
}
