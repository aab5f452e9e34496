package pricing

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/tripdata"
)

// Action is what an override rule does to its target segments.
type Action string

const (
	// ActionSurcharge adds Amount to every target segment.
	ActionSurcharge Action = "surcharge"
	// ActionSet sets the first target segment to Amount and leaves the rest alone.
	ActionSet Action = "set"
	// ActionFare sets the first target segment to Amount and zeroes the rest.
	ActionFare Action = "fare"
	// ActionBusTiers recomputes target fares from the bus label tiers.
	ActionBusTiers Action = "busTiers"
)

// Target selects the segments an override rule touches.
type Target string

const (
	TargetCar       Target = "car"
	TargetDrive     Target = "drive"
	TargetRideshare Target = "rideshare"
	TargetBus       Target = "bus"
	TargetTrain     Target = "train"
)

// ErrRulePredicate is returned when a rule predicate fails at evaluation time.
var ErrRulePredicate = errors.New("override rule predicate failed")

// RuleSpec is the configured form of a named override rule. When is an expr
// boolean expression over family, group and option.
type RuleSpec struct {
	Name   string  `yaml:"name" json:"name" validate:"required"`
	When   string  `yaml:"when" json:"when" validate:"required"`
	Action Action  `yaml:"action" json:"action" validate:"required,oneof=surcharge set fare busTiers"`
	Target Target  `yaml:"target" json:"target" validate:"required,oneof=car drive rideshare bus train"`
	Amount float64 `yaml:"amount" json:"amount" validate:"gte=0"`
}

// Context identifies the option being priced. It is the environment rule
// predicates are evaluated against.
type Context struct {
	Family string
	Group  string
	Option string
}

func (c Context) env() map[string]any {
	return map[string]any{
		"family": c.Family,
		"group":  c.Group,
		"option": c.Option,
	}
}

// Rule is a compiled override rule.
type Rule struct {
	RuleSpec
	program *vm.Program
}

// CompileRules compiles rule predicates in order.
func CompileRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		program, err := expr.Compile(spec.When, expr.Env(Context{}.env()), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", spec.Name, err)
		}
		rules = append(rules, Rule{RuleSpec: spec, program: program})
	}
	return rules, nil
}

// Matches evaluates the rule predicate for ctx.
func (r Rule) Matches(ctx Context) (bool, error) {
	out, err := expr.Run(r.program, ctx.env())
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrRulePredicate, r.Name, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

// Apply runs the rule action over segs in place.
func (r Rule) Apply(segs []segment.Segment) {
	first := true
	for i := range segs {
		s := &segs[i]
		if !r.targets(*s) {
			continue
		}
		switch r.Action {
		case ActionSurcharge:
			s.Cost += tripdata.Amount(r.Amount)
		case ActionSet:
			if first {
				s.Cost = tripdata.Amount(r.Amount)
			}
		case ActionFare:
			if first {
				s.Cost = tripdata.Amount(r.Amount)
			} else {
				s.Cost = 0
			}
		case ActionBusTiers:
			s.Cost = tripdata.Amount(segment.BusFare(s.Label))
		}
		first = false
	}
}

func (r Rule) targets(s segment.Segment) bool {
	switch r.Target {
	case TargetCar:
		return s.Mode == segment.ModeCar
	case TargetDrive:
		return s.Mode == segment.ModeCar && !s.IsRideshare()
	case TargetRideshare:
		return s.IsRideshare()
	case TargetBus:
		return s.Mode == segment.ModeBus
	case TargetTrain:
		return s.Mode == segment.ModeTrain
	}
	return false
}
