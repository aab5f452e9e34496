package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripmix/tripmix/internal/config"
	"github.com/tripmix/tripmix/internal/pricing"
	"github.com/tripmix/tripmix/internal/telemetry"
	"github.com/tripmix/tripmix/internal/tripdata"
)

// RunnerConfig holds configuration for a Runner.
type RunnerConfig struct {
	Config  *config.Config
	Metrics *telemetry.Metrics
	Tracer  trace.Tracer
	Logger  zerolog.Logger
}

// Runner processes route families from their input documents to their output
// documents.
type Runner struct {
	pricing *pricing.Engine
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewRunner creates a Runner, compiling the override rules once for all families.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	engine, err := pricing.NewEngine(pricing.EngineConfig{
		Table:  cfg.Config.Pricing,
		Rules:  cfg.Config.Overrides,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("tripmix/pipeline")
	}
	return &Runner{
		pricing: engine,
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
		logger:  cfg.Logger,
	}, nil
}

// Processor returns a Processor for one family sharing the runner's pricing engine.
func (r *Runner) Processor(family config.Family, logger zerolog.Logger) (*Processor, error) {
	return NewProcessor(ProcessorConfig{
		Family:  family,
		Pricing: r.pricing,
		Metrics: r.metrics,
		Tracer:  r.tracer,
		Logger:  logger,
	})
}

// Run processes the families concurrently. Families are independent: a failing
// family does not stop the others, and the returned error joins every failure.
func (r *Runner) Run(ctx context.Context, families []config.Family) error {
	runID := uuid.NewString()
	logger := r.logger.With().Str("run_id", runID).Logger()

	ctx, span := r.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("families", len(families)),
	))
	defer span.End()

	start := time.Now()
	p := pool.New().WithErrors()
	for _, family := range families {
		p.Go(func() error {
			return r.RunFamily(ctx, family, logger)
		})
	}
	err := p.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "family failed")
	}

	logger.Info().
		Int("families", len(families)).
		Dur("duration", time.Since(start)).
		Bool("ok", err == nil).
		Msg("run finished")
	return err
}

// RunFamily loads the family input, processes it and writes the output.
func (r *Runner) RunFamily(ctx context.Context, family config.Family, runLogger zerolog.Logger) error {
	logger := runLogger.With().Str("family", family.Name).Logger()

	ctx, span := r.tracer.Start(ctx, "pipeline.family", trace.WithAttributes(
		attribute.String("family", family.Name),
		attribute.String("input", family.Input),
	))
	defer span.End()

	err := r.runFamily(ctx, family, runLogger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Str("input", family.Input).Msg("document halted")
		return fmt.Errorf("family %s: %w", family.Name, err)
	}
	return nil
}

func (r *Runner) runFamily(ctx context.Context, family config.Family, runLogger zerolog.Logger) error {
	logger := runLogger.With().Str("family", family.Name).Logger()

	doc, err := tripdata.Load(family.Input)
	if err != nil {
		return err
	}

	var options int
	for _, g := range doc.Groups {
		options += len(g.Options)
	}
	logger.Info().
		Str("input", family.Input).
		Int("groups", len(doc.Groups)).
		Int("options", options).
		Msg("document loaded")

	proc, err := r.Processor(family, runLogger)
	if err != nil {
		return err
	}
	out, err := proc.Process(ctx, doc)
	if err != nil {
		return err
	}

	if err := tripdata.Save(family.Output, out); err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	logger.Info().
		Str("output", family.Output).
		Int("journeys", len(out.Journeys)).
		Msg("document written")
	return nil
}
