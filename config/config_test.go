package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/vengine/config"
	"github.com/plus3/vengine/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 2, cfg.Renderer.FramesInFlight)
	assert.Equal(t, "info", cfg.Logging.Level)

	opts := cfg.Renderer.Options()
	assert.Equal(t, render.DefaultCamera(), opts.Camera)
	assert.Equal(t, 2, opts.FramesInFlight)
	assert.Equal(t, render.DefaultOptions().FenceTimeout, opts.FenceTimeout)
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[window]
width = 1280
title = "demo"

[renderer]
frames_in_flight = 3
vsync = false
clear_color = [0.1, 0.2, 0.3, 1.0]
fence_timeout = "250ms"

[renderer.camera]
eye = [0.0, 0.0, 10.0]
spin_degrees_per_sec = 0.0

[logging]
level = "debug"
format = "json"

[scene]
file = "scenes/demo.yaml"

[debug]
stats_every = 60
`))
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height, "unset keys keep their default")
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "scenes/demo.yaml", cfg.Scene.File)
	assert.Equal(t, 60, cfg.Debug.StatsEvery)

	opts := cfg.Renderer.Options()
	assert.Equal(t, 3, opts.FramesInFlight)
	assert.False(t, opts.VSync)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1.0}, opts.ClearColor)
	assert.Equal(t, 250*time.Millisecond, opts.FenceTimeout)
	assert.Equal(t, mgl32.Vec3{0, 0, 10}, opts.Camera.Eye)
	assert.Equal(t, render.DefaultCamera().Up, opts.Camera.Up)
	assert.Zero(t, opts.Camera.SpinDegreesPerSec)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `[window`},
		{"zero width", "[window]\nwidth = 0"},
		{"no frames", "[renderer]\nframes_in_flight = 0"},
		{"clip range", "[renderer.camera]\nnear = 5.0\nfar = 1.0"},
		{"profile", "[debug]\nprofile = \"trace\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vengine.toml")
	require.NoError(t, os.WriteFile(path, []byte("[script]\nfile = \"spawn.lua\"\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "spawn.lua", cfg.Script.File)

	_, err = config.Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.toml")
}

func TestSampleConfig(t *testing.T) {
	cfg, err := config.Load("../vengine.toml")
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, "scenes/demo.yaml", cfg.Scene.File)
	assert.Equal(t, "scripts/spawn.lua", cfg.Script.File)
}
