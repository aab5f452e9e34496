// Package config loads the pricing table, override rules and route families.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tripmix/tripmix/internal/journey"
	"github.com/tripmix/tripmix/internal/leg"
	"github.com/tripmix/tripmix/internal/pricing"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnknownFamily is returned when a route family is not configured.
var ErrUnknownFamily = errors.New("unknown route family")

// Config is the full pipeline configuration.
type Config struct {
	Pricing   pricing.Table      `yaml:"pricing"`
	Overrides []pricing.RuleSpec `yaml:"overrides" validate:"dive"`
	Families  []Family           `yaml:"families" validate:"required,min=1,dive"`
}

// Family is one route family: an input document, an output document and the
// rules that differ between families.
type Family struct {
	Name                  string          `yaml:"name" validate:"required"`
	Input                 string          `yaml:"input" validate:"required"`
	Output                string          `yaml:"output" validate:"required"`
	BufferMinutes         int             `yaml:"bufferMinutes" validate:"gte=0"`
	TransferBufferMinutes int             `yaml:"transferBufferMinutes" validate:"gte=0"`
	AccessGroup           string          `yaml:"accessGroup"`
	ParkAndRideKeywords   []string        `yaml:"parkAndRideKeywords" validate:"dive,required"`
	CycleAllowIDs         []string        `yaml:"cycleAllowIds" validate:"dive,required"`
	CycleAllowPrefixes    []string        `yaml:"cycleAllowPrefixes" validate:"dive,required"`
	LabelRules            []leg.LabelRule `yaml:"labelRules"`
}

// Composer returns the journey pairing rules of the family.
func (f Family) Composer() journey.ComposerConfig {
	return journey.ComposerConfig{
		BufferMinutes:       f.BufferMinutes,
		ParkAndRideKeywords: f.ParkAndRideKeywords,
		CycleAllowIDs:       f.CycleAllowIDs,
		CycleAllowPrefixes:  f.CycleAllowPrefixes,
	}
}

// Load reads the configuration at path. An empty path loads the built-in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(defaultsYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := Parse(defaultsYAML)
	if err != nil {
		panic(err) // embedded file is covered by tests
	}
	return cfg
}

// Parse decodes and validates a YAML configuration. Unknown keys are rejected and
// override predicates are compiled so a bad rule fails at load time.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Families))
	for _, f := range cfg.Families {
		if seen[f.Name] {
			return nil, fmt.Errorf("validate config: duplicate family %q", f.Name)
		}
		seen[f.Name] = true
	}

	if _, err := pricing.CompileRules(cfg.Overrides); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Family returns the named family.
func (c *Config) Family(name string) (Family, error) {
	for _, f := range c.Families {
		if f.Name == name {
			return f, nil
		}
	}
	return Family{}, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
}

// Select returns copies of the named families in order, or of every family when
// names is empty.
func (c *Config) Select(names []string) ([]Family, error) {
	if len(names) == 0 {
		return slices.Clone(c.Families), nil
	}
	out := make([]Family, 0, len(names))
	for _, name := range names {
		f, err := c.Family(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
