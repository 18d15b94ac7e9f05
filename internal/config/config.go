// Package config loads simulation configuration from YAML files and turns
// it into a ready-to-run engine model.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aldemir/schelling-explorer/internal/agents"
	"github.com/aldemir/schelling-explorer/internal/engine"
	"github.com/aldemir/schelling-explorer/internal/grid"
)

// GroupConfig describes one categorical group.
type GroupConfig struct {
	Name              string  `yaml:"name"`
	PopulationPercent float64 `yaml:"population_percent"`
	Tolerance         float64 `yaml:"tolerance"`
	HappyColor        string  `yaml:"happy_color,omitempty"`
	UnhappyColor      string  `yaml:"unhappy_color,omitempty"`
}

// Config is the on-disk configuration surface. Zero values fall back to the
// engine defaults during Build, so a config file only needs the fields it
// wants to change.
type Config struct {
	Seed              int64         `yaml:"seed"`
	Width             int           `yaml:"width"`
	Height            int           `yaml:"height"`
	PercentEmpty      *float64      `yaml:"percent_empty,omitempty"`
	Bounds            string        `yaml:"bounds,omitempty"`
	SearchRadius      int           `yaml:"search_radius,omitempty"`
	SearchLimit       int           `yaml:"search_limit,omitempty"`
	MoveChance        *float64      `yaml:"move_chance,omitempty"`
	MaxSteps          int           `yaml:"max_steps,omitempty"`
	ShuffleTimes      int           `yaml:"shuffle_times,omitempty"`
	StopOnEquilibrium bool          `yaml:"stop_on_equilibrium"`
	Dynamics          string        `yaml:"dynamics,omitempty"`
	Utility           string        `yaml:"utility,omitempty"`
	Updater           string        `yaml:"updater,omitempty"`
	Groups            []GroupConfig `yaml:"groups,omitempty"`
}

// Default returns the canonical two-group configuration: groups A and B at
// 50% population each with tolerance 0.5, everything else at engine
// defaults.
func Default() *Config {
	return &Config{
		Seed: 42,
		Groups: []GroupConfig{
			{
				Name:              "Group A",
				PopulationPercent: 0.5,
				Tolerance:         0.5,
				HappyColor:        "#0033cc",
				UnhappyColor:      "#99ccff",
			},
			{
				Name:              "Group B",
				PopulationPercent: 0.5,
				Tolerance:         0.5,
				HappyColor:        "#ff3300",
				UnhappyColor:      "#ff9db3",
			},
		},
	}
}

// Load reads a YAML config file. Fields absent from the file keep their
// Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ParseBounds maps a config string to a boundary mode.
func ParseBounds(s string) (grid.Bounds, error) {
	switch strings.ToLower(s) {
	case "", "toroidal":
		return grid.Toroidal, nil
	case "bounded":
		return grid.Bounded, nil
	}
	return 0, fmt.Errorf("%w: bounds %q (want bounded or toroidal)", engine.ErrInvalidArgument, s)
}

// ParseDynamics maps a config string to a dynamics variant.
func ParseDynamics(s string) (engine.DynamicsKind, error) {
	switch strings.ToLower(s) {
	case "", "liquid":
		return engine.Liquid, nil
	case "solid":
		return engine.Solid, nil
	case "swap":
		return engine.SwapDynamics, nil
	}
	return 0, fmt.Errorf("%w: dynamics %q (want liquid, solid, or swap)", engine.ErrInvalidArgument, s)
}

// ParseUtility maps a config string to a utility evaluator variant.
func ParseUtility(s string) (engine.UtilityKind, error) {
	switch strings.ToLower(s) {
	case "", "absolute":
		return engine.Absolute, nil
	case "relative":
		return engine.Relative, nil
	}
	return 0, fmt.Errorf("%w: utility %q (want absolute or relative)", engine.ErrInvalidArgument, s)
}

// ParseUpdater maps a config string to an updater variant.
func ParseUpdater(s string) (engine.UpdaterKind, error) {
	switch strings.ToLower(s) {
	case "", "single":
		return engine.Single, nil
	case "batch":
		return engine.Batch, nil
	}
	return 0, fmt.Errorf("%w: updater %q (want single or batch)", engine.ErrInvalidArgument, s)
}

// Build constructs an engine model from the configuration. Any invalid
// value aborts the build; a model is never returned half-configured.
func (c *Config) Build() (*engine.Model, error) {
	m := engine.NewModel(c.Seed)
	p := m.Params()

	if c.Width != 0 || c.Height != 0 {
		if err := p.SetSize(c.Width, c.Height); err != nil {
			return nil, err
		}
	}
	if c.PercentEmpty != nil {
		if err := p.SetPercentEmpty(*c.PercentEmpty); err != nil {
			return nil, err
		}
	}
	bounds, err := ParseBounds(c.Bounds)
	if err != nil {
		return nil, err
	}
	if err := p.SetBounds(bounds); err != nil {
		return nil, err
	}
	if c.SearchRadius != 0 {
		if err := p.SetSearchRadius(c.SearchRadius); err != nil {
			return nil, err
		}
	}
	if c.SearchLimit != 0 {
		if err := p.SetSearchLimit(c.SearchLimit); err != nil {
			return nil, err
		}
	}
	if c.MoveChance != nil {
		if err := p.SetMoveChance(*c.MoveChance); err != nil {
			return nil, err
		}
	}
	if c.MaxSteps != 0 {
		if err := p.SetMaxSteps(c.MaxSteps); err != nil {
			return nil, err
		}
	}
	if c.ShuffleTimes != 0 {
		if err := p.SetShuffleTimes(c.ShuffleTimes); err != nil {
			return nil, err
		}
	}
	p.SetStopOnEquilibrium(c.StopOnEquilibrium)

	dynamics, err := ParseDynamics(c.Dynamics)
	if err != nil {
		return nil, err
	}
	if err := p.SetDynamics(dynamics); err != nil {
		return nil, err
	}
	utility, err := ParseUtility(c.Utility)
	if err != nil {
		return nil, err
	}
	if err := p.SetUtility(utility); err != nil {
		return nil, err
	}
	updater, err := ParseUpdater(c.Updater)
	if err != nil {
		return nil, err
	}
	if err := p.SetUpdater(updater); err != nil {
		return nil, err
	}

	if len(c.Groups) == 0 {
		return nil, fmt.Errorf("%w: at least one group required", engine.ErrInvalidArgument)
	}
	for i, gc := range c.Groups {
		g, err := agents.NewGroup(gc.Name, i)
		if err != nil {
			return nil, err
		}
		if err := g.SetPopulationPercent(gc.PopulationPercent); err != nil {
			return nil, fmt.Errorf("group %q: %w", gc.Name, err)
		}
		if err := g.SetTolerance(gc.Tolerance); err != nil {
			return nil, fmt.Errorf("group %q: %w", gc.Name, err)
		}
		g.SetColors(gc.HappyColor, gc.UnhappyColor)
		if err := m.AddGroup(g); err != nil {
			return nil, err
		}
	}

	return m, nil
}
