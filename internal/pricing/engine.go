package pricing

import (
	"github.com/rs/zerolog"

	"github.com/tripmix/tripmix/internal/segment"
)

// EngineConfig holds configuration for the pricing engine.
type EngineConfig struct {
	Table  Table
	Rules  []RuleSpec
	Logger zerolog.Logger
}

// Engine prices reduced segments. It is safe for concurrent use.
type Engine struct {
	table  Table
	rules  []Rule
	logger zerolog.Logger
}

// Result is the outcome of pricing one option.
type Result struct {
	Segments     []segment.Segment
	Location     string
	AppliedRules []string
}

// NewEngine compiles the override rules and returns an engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	rules, err := CompileRules(cfg.Rules)
	if err != nil {
		return nil, err
	}
	return &Engine{
		table:  cfg.Table,
		rules:  rules,
		logger: cfg.Logger,
	}, nil
}

// Table returns the hub table the engine prices with.
func (e *Engine) Table() Table {
	return e.table
}

// Apply prices a copy of segs. Stages run in a fixed order: location resolution,
// hub fares, parking fold-in, then override rules in configured order so that
// later stages win. The priced amounts are rounded to cents.
func (e *Engine) Apply(segs []segment.Segment, ctx Context) (Result, error) {
	out := segment.Clone(segs)

	location := e.table.ResolveLocation(out, ctx.Option, ctx.Group)
	if e.table.ApplyHubFares(out, location) {
		e.logger.Debug().
			Str("option", ctx.Option).
			Str("location", location).
			Msg("hub fares applied")
	}
	e.table.FoldParking(out, location)

	result := Result{Segments: out, Location: location}
	for _, rule := range e.rules {
		matched, err := rule.Matches(ctx)
		if err != nil {
			return Result{}, err
		}
		if !matched {
			continue
		}
		rule.Apply(out)
		result.AppliedRules = append(result.AppliedRules, rule.Name)
		e.logger.Debug().
			Str("option", ctx.Option).
			Str("rule", rule.Name).
			Msg("override applied")
	}
	segment.RoundAmounts(out)
	return result, nil
}
