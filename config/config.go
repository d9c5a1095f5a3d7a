// Package config loads engine settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/vengine/render"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Logging  LoggingConfig  `toml:"logging"`
	Scene    SceneConfig    `toml:"scene"`
	Script   ScriptConfig   `toml:"script"`
	Debug    DebugConfig    `toml:"debug"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type RendererConfig struct {
	FramesInFlight int           `toml:"frames_in_flight"`
	VSync          bool          `toml:"vsync"`
	Samples        int           `toml:"samples"`
	ClearColor     [4]float32    `toml:"clear_color"` // RGBA, 0.0-1.0
	FenceTimeout   time.Duration `toml:"fence_timeout"`
	Camera         CameraConfig  `toml:"camera"`
}

type CameraConfig struct {
	Eye               [3]float32 `toml:"eye"`
	Center            [3]float32 `toml:"center"`
	Up                [3]float32 `toml:"up"`
	FovDegrees        float32    `toml:"fov_degrees"`
	Near              float32    `toml:"near"`
	Far               float32    `toml:"far"`
	SpinDegreesPerSec float32    `toml:"spin_degrees_per_sec"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or console
}

type SceneConfig struct {
	File string `toml:"file"`
}

type ScriptConfig struct {
	File string `toml:"file"`
}

type DebugConfig struct {
	UI         bool   `toml:"ui"`
	Profile    string `toml:"profile"`     // cpu, mem or empty
	StatsEvery int    `toml:"stats_every"` // frames between stats log lines, 0 disables
}

// Load reads the file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	camera := render.DefaultCamera()
	return &Config{
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "vengine",
		},
		Renderer: RendererConfig{
			FramesInFlight: 2,
			VSync:          true,
			Samples:        1,
			ClearColor:     [4]float32{0, 0, 0, 1},
			Camera: CameraConfig{
				Eye:               camera.Eye,
				Center:            camera.Center,
				Up:                camera.Up,
				FovDegrees:        camera.FovDegrees,
				Near:              camera.Near,
				Far:               camera.Far,
				SpinDegreesPerSec: camera.SpinDegreesPerSec,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.FramesInFlight < 1 {
		return fmt.Errorf("frames_in_flight must be at least 1, got %d", c.Renderer.FramesInFlight)
	}
	if c.Renderer.Camera.Near <= 0 || c.Renderer.Camera.Far <= c.Renderer.Camera.Near {
		return fmt.Errorf("camera clip range %g..%g is invalid", c.Renderer.Camera.Near, c.Renderer.Camera.Far)
	}
	switch c.Debug.Profile {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("unknown profile mode %q", c.Debug.Profile)
	}
	return nil
}

// Options converts the renderer section to render.Options.
func (c RendererConfig) Options() render.Options {
	opts := render.DefaultOptions()
	opts.FramesInFlight = c.FramesInFlight
	opts.VSync = c.VSync
	opts.Samples = c.Samples
	opts.ClearColor = c.ClearColor
	if c.FenceTimeout > 0 {
		opts.FenceTimeout = c.FenceTimeout
	}
	opts.Camera = render.Camera{
		Eye:               mgl32.Vec3(c.Camera.Eye),
		Center:            mgl32.Vec3(c.Camera.Center),
		Up:                mgl32.Vec3(c.Camera.Up),
		FovDegrees:        c.Camera.FovDegrees,
		Near:              c.Camera.Near,
		Far:               c.Camera.Far,
		SpinDegreesPerSec: c.Camera.SpinDegreesPerSec,
	}
	return opts
}
