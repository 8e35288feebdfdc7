// Package config loads the optional glfx.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hubastard/glfx/engine/canvas"
	"github.com/hubastard/glfx/engine/colors"
	"github.com/hubastard/glfx/engine/geometry"
	"github.com/hubastard/glfx/engine/tile"
)

// FileName is looked up in the directory passed to LoadOptional.
const FileName = "glfx.yaml"

type Config struct {
	Canvas CanvasConfig `yaml:"canvas"`
	Window WindowConfig `yaml:"window"`
	Output OutputConfig `yaml:"output"`
}

type CanvasConfig struct {
	FPS            *int          `yaml:"fps,omitempty"` // nil means canvas.DefaultFPS
	StrictFPS      bool          `yaml:"strict_fps,omitempty"`
	TileSize       int           `yaml:"tile_size,omitempty"`
	PollInterval   time.Duration `yaml:"poll_interval,omitempty"`
	FallbackWidth  int           `yaml:"fallback_width,omitempty"`
	FallbackHeight int           `yaml:"fallback_height,omitempty"`
}

// WindowConfig describes the UI window hosting the canvas.
type WindowConfig struct {
	Title      string       `yaml:"title,omitempty"`
	Width      float64      `yaml:"width,omitempty"`
	Height     float64      `yaml:"height,omitempty"`
	Scale      float64      `yaml:"scale,omitempty"`
	ClearColor colors.Color `yaml:"clear_color,omitempty"`
	Smooth     bool         `yaml:"smooth,omitempty"` // higher quality bitmap scaling
}

// OutputConfig controls what the sandbox writes before exiting.
type OutputConfig struct {
	Snapshot string `yaml:"snapshot,omitempty"`
	Frames   int    `yaml:"frames,omitempty"`
	Profile  string `yaml:"profile,omitempty"`
}

func Default() *Config {
	fps := canvas.DefaultFPS
	return &Config{
		Canvas: CanvasConfig{
			FPS:            &fps,
			TileSize:       tile.DefaultSize,
			PollInterval:   geometry.DefaultPollInterval,
			FallbackWidth:  geometry.DefaultFallback,
			FallbackHeight: geometry.DefaultFallback,
		},
		Window: WindowConfig{
			Title:      "glfx sandbox",
			Width:      800,
			Height:     600,
			Scale:      1,
			ClearColor: colors.DarkGray,
		},
		Output: OutputConfig{
			Snapshot: "glfx.png",
			Frames:   120,
		},
	}
}

// LoadOptional reads glfx.yaml from dir if present. Fields missing from the
// file keep their defaults.
func LoadOptional(dir string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Canvas.TileSize < 0 {
		return fmt.Errorf("tile_size must not be negative, got %d", c.Canvas.TileSize)
	}
	if c.Canvas.PollInterval < 0 {
		return fmt.Errorf("poll_interval must not be negative, got %s", c.Canvas.PollInterval)
	}
	if c.Window.Scale < 0 {
		return fmt.Errorf("window scale must not be negative, got %g", c.Window.Scale)
	}
	return nil
}

// CanvasOptions converts the canvas section into canvas.Options.
func (c *Config) CanvasOptions() canvas.Options {
	o := canvas.DefaultOptions()
	if c.Canvas.FPS != nil {
		o.FPS = *c.Canvas.FPS
	}
	o.StrictFPS = c.Canvas.StrictFPS
	if c.Canvas.TileSize > 0 {
		o.TileSize = c.Canvas.TileSize
	}
	if c.Canvas.PollInterval > 0 {
		o.PollInterval = c.Canvas.PollInterval
	}
	if c.Canvas.FallbackWidth > 0 {
		o.FallbackWidth = c.Canvas.FallbackWidth
	}
	if c.Canvas.FallbackHeight > 0 {
		o.FallbackHeight = c.Canvas.FallbackHeight
	}
	return o
}
