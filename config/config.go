// Package config loads starfield settings: built-in defaults, then an optional
// YAML file, then STARFIELD_* environment variables. Command-line flags are
// applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/starfield/field"
	"github.com/lixenwraith/starfield/parameter"
	"github.com/lixenwraith/starfield/render"
	"github.com/lixenwraith/starfield/terminal"
)

// Config is the full runtime configuration
type Config struct {
	FPS            int           `yaml:"fps" env:"FPS"`
	Seed           uint64        `yaml:"seed" env:"SEED"`
	ColorMode      string        `yaml:"color_mode" env:"COLOR"`
	Background     string        `yaml:"background" env:"BACKGROUND"`
	ResizeDebounce time.Duration `yaml:"resize_debounce" env:"RESIZE_DEBOUNCE"`
	Stars          Stars         `yaml:"stars" envPrefix:"STARS_"`
	Banner         Banner        `yaml:"banner" envPrefix:"BANNER_"`
}

// Stars holds the particle draw ranges
type Stars struct {
	CountMin     int     `yaml:"count_min" env:"COUNT_MIN"`
	CountMax     int     `yaml:"count_max" env:"COUNT_MAX"`
	RadiusMin    float64 `yaml:"radius_min" env:"RADIUS_MIN"`
	RadiusMax    float64 `yaml:"radius_max" env:"RADIUS_MAX"`
	FallSpeedMin float64 `yaml:"fall_speed_min" env:"FALL_SPEED_MIN"`
	FallSpeedMax float64 `yaml:"fall_speed_max" env:"FALL_SPEED_MAX"`
	OpacityMin   float64 `yaml:"opacity_min" env:"OPACITY_MIN"`
	OpacityMax   float64 `yaml:"opacity_max" env:"OPACITY_MAX"`
	Color        string  `yaml:"color" env:"COLOR"`
}

// Banner is optional foreground text drawn over the backdrop
type Banner struct {
	Title        string `yaml:"title" env:"TITLE"`
	Tagline      string `yaml:"tagline" env:"TAGLINE"`
	TitleColor   string `yaml:"title_color" env:"TITLE_COLOR"`
	TaglineColor string `yaml:"tagline_color" env:"TAGLINE_COLOR"`
}

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "STARFIELD_"

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		FPS:        parameter.RefreshRate,
		ColorMode:  "auto",
		Background: parameter.BackgroundHex,
		Stars: Stars{
			CountMin:     parameter.StarCountMin,
			CountMax:     parameter.StarCountMax,
			RadiusMin:    parameter.StarRadiusMin,
			RadiusMax:    parameter.StarRadiusMax,
			FallSpeedMin: parameter.StarFallSpeedMin,
			FallSpeedMax: parameter.StarFallSpeedMax,
			OpacityMin:   parameter.StarOpacityMin,
			OpacityMax:   parameter.StarOpacityMax,
			Color:        parameter.StarColorHex,
		},
		Banner: Banner{
			TitleColor:   parameter.TitleColorHex,
			TaglineColor: parameter.TextColorHex,
		},
	}
}

// Load builds a config from defaults, the YAML file at path and the environment
// An empty path or a missing file leaves defaults in place
// The result is not validated: flags still overlay it, call Validate afterwards
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.MergeFile(path); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays values present in the YAML file at path
func (c *Config) MergeFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays STARFIELD_* environment variables; unset variables keep current values
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks ranges, refresh rate and colors
func (c *Config) Validate() error {
	if c.FPS < 1 || c.FPS > parameter.RefreshRateMax {
		return fmt.Errorf("fps %d out of range [1, %d]", c.FPS, parameter.RefreshRateMax)
	}
	if c.ResizeDebounce < 0 {
		return fmt.Errorf("resize_debounce must not be negative, got %s", c.ResizeDebounce)
	}
	if _, err := terminal.ParseColorMode(c.ColorMode); err != nil {
		return err
	}
	for name, hex := range map[string]string{
		"background":           c.Background,
		"stars.color":          c.Stars.Color,
		"banner.title_color":   c.Banner.TitleColor,
		"banner.tagline_color": c.Banner.TaglineColor,
	} {
		if _, err := render.ParseHex(hex); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("stars: %w", err)
	}
	return nil
}

// Params converts star settings into renderer draw ranges
func (c *Config) Params() (field.Params, error) {
	color, err := render.ParseHex(c.Stars.Color)
	if err != nil {
		return field.Params{}, fmt.Errorf("stars.color: %w", err)
	}
	return field.Params{
		Count:     field.IntRange{Min: c.Stars.CountMin, Max: c.Stars.CountMax},
		Radius:    field.FloatRange{Min: c.Stars.RadiusMin, Max: c.Stars.RadiusMax},
		FallSpeed: field.FloatRange{Min: c.Stars.FallSpeedMin, Max: c.Stars.FallSpeedMax},
		Opacity:   field.FloatRange{Min: c.Stars.OpacityMin, Max: c.Stars.OpacityMax},
		Color:     color,
	}, nil
}

// FrameInterval is the refresh period
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Colors resolves background, title and tagline colors; call after Validate
func (c *Config) Colors() (bg, title, tagline render.RGB) {
	bg, _ = render.ParseHex(c.Background)
	title, _ = render.ParseHex(c.Banner.TitleColor)
	tagline, _ = render.ParseHex(c.Banner.TaglineColor)
	return bg, title, tagline
}
