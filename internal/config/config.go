// Package config holds the tunables of the visibility viewer and CLI.
// Values are loaded from a JSON file over the defaults, then command-line
// flags may override them.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"chosenoffset.com/sightline/internal/core/shadows"
)

// Config holds every setting of a sightline run
type Config struct {
	Visibility VisibilityConfig `json:"visibility"`
	Window     WindowConfig     `json:"window"`
	Render     RenderConfig     `json:"render"`
}

// VisibilityConfig maps onto shadows.Options
type VisibilityConfig struct {
	Strategy       string  `json:"strategy"`        // "raycast" or "sweep"
	AngleEpsilon   float64 `json:"angle_epsilon"`   // side-ray offset in radians
	ExactTolerance bool    `json:"exact_tolerance"` // compare with zero tolerance
	MaxDistance    float64 `json:"max_distance"`    // view radius, 0 = unbounded
	FillMisses     bool    `json:"fill_misses"`     // emit points at max_distance for empty rays
	UseIndex       bool    `json:"use_index"`       // cull segments with the R-tree when max_distance > 0
}

// WindowConfig sizes the viewer window
type WindowConfig struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`
}

// RenderConfig tunes how the visibility mask is drawn
type RenderConfig struct {
	Darkness     float64 `json:"darkness"`      // alpha of the shadow outside the fan, 0..1
	Falloff      float64 `json:"falloff"`       // radius of the observer light in pixels
	LightColor   string  `json:"light_color"`   // hex "RRGGBB"
	ShowOutlines bool    `json:"show_outlines"` // draw the occluder segments
	ShaderPath   string  `json:"shader_path"`
}

// DefaultConfig returns the settings used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Visibility: VisibilityConfig{
			Strategy:     shadows.StrategyRayCast.String(),
			AngleEpsilon: shadows.DefaultAngleEpsilon,
		},
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "sightline",
		},
		Render: RenderConfig{
			Darkness:     0.85,
			Falloff:      420,
			LightColor:   "fff2cc",
			ShowOutlines: true,
			ShaderPath:   "shaders/visibility.kage",
		},
	}
}

// LoadConfig loads config from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	config := DefaultConfig() // Start with defaults
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	return config, nil
}

// Validate rejects settings no builder or window could use.
func (c *Config) Validate() error {
	if _, err := shadows.ParseStrategy(c.Visibility.Strategy); err != nil {
		return err
	}
	if c.Visibility.AngleEpsilon < 0 {
		return errors.Errorf("angle_epsilon must not be negative, got %g", c.Visibility.AngleEpsilon)
	}
	if c.Visibility.MaxDistance < 0 {
		return errors.Errorf("max_distance must not be negative, got %g", c.Visibility.MaxDistance)
	}
	if c.Visibility.FillMisses && c.Visibility.MaxDistance == 0 {
		return errors.New("fill_misses needs a max_distance")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Render.Darkness < 0 || c.Render.Darkness > 1 {
		return errors.Errorf("darkness %g outside [0, 1]", c.Render.Darkness)
	}
	if c.Render.Falloff < 0 {
		return errors.Errorf("falloff must not be negative, got %g", c.Render.Falloff)
	}
	return nil
}

// BuilderOptions converts the visibility section into builder options.
// The Culler is left to the caller since it depends on the loaded scene.
func (c *Config) BuilderOptions() (shadows.Options, error) {
	strategy, err := shadows.ParseStrategy(c.Visibility.Strategy)
	if err != nil {
		return shadows.Options{}, err
	}

	opts := shadows.Options{
		Strategy:     strategy,
		AngleEpsilon: c.Visibility.AngleEpsilon,
		MaxDistance:  c.Visibility.MaxDistance,
		FillMisses:   c.Visibility.FillMisses,
	}
	if c.Visibility.ExactTolerance {
		exact := shadows.ExactTolerance()
		opts.Tolerance = &exact
	}
	return opts, nil
}
