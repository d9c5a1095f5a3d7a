package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/vengine/asset"
	"github.com/plus3/vengine/config"
	"github.com/plus3/vengine/ecs"
	"github.com/plus3/vengine/engine"
	"github.com/plus3/vengine/gpu/headless"
	"github.com/plus3/vengine/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sceneYAML = `
entities:
  - model: cube.obj
  - model: pyramid.obj
    position: [2, 0, 0]
`

const spawnScript = `
function tick(dt)
  if key_pressed("space") then
    spawn("sphere.obj", 0, 0, 0)
  end
  if key_pressed("x") then
    spawn("teapot.obj")
  end
end
`

type fixture struct {
	window *platform.HeadlessWindow
	device *headless.Device
	ctx    *engine.Context
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	window := platform.NewHeadlessWindow(cfg.Window.Width, cfg.Window.Height)
	device := headless.New(headless.WithSurface(window))

	ctx, err := engine.New(engine.Options{
		Config: cfg,
		Window: window,
		Device: device,
		Clock:  func() time.Duration { return 0 },
	})
	require.NoError(t, err)
	return &fixture{window: window, device: device, ctx: ctx}
}

func (f *fixture) close(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ctx.Close())
	require.NoError(t, f.ctx.Close())
	require.NoError(t, f.device.Close())
	assert.Empty(t, f.device.Validation())
}

func TestSceneFile(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.File = writeFile(t, "scene.yaml", sceneYAML)
	f := newFixture(t, cfg)

	assert.Equal(t, 2, f.ctx.Scene.Len())
	assert.Equal(t, 2, f.ctx.Renderer.Stats().Models)
	assert.Nil(t, f.ctx.Script)

	require.NoError(t, f.ctx.Run(context.Background(), 5))
	assert.Equal(t, uint64(5), f.ctx.Frames())

	stats := f.ctx.Stats()
	assert.Equal(t, uint64(5), stats.Frames)
	assert.Equal(t, uint64(5), stats.Renderer.FramesSubmitted)
	assert.Equal(t, 2, stats.Scene.EntityCount)
	require.Len(t, stats.Systems.Systems, 1)
	assert.Equal(t, "System", stats.Systems.Systems[0].Name)

	require.NoError(t, f.ctx.Renderer.WaitIdle())
	frame := f.device.LastFrame()
	assert.Len(t, frame.Draws, 2)

	f.close(t)
}

func TestScript(t *testing.T) {
	cfg := config.Default()
	cfg.Script.File = writeFile(t, "spawn.lua", spawnScript)
	f := newFixture(t, cfg)
	require.NotNil(t, f.ctx.Script)

	require.NoError(t, f.ctx.Frame(1.0/60))
	assert.Zero(t, f.ctx.Scene.Len())

	f.window.Press("space")
	require.NoError(t, f.ctx.Frame(1.0/60))
	f.window.Release("space")
	require.NoError(t, f.ctx.Frame(1.0/60))

	assert.Equal(t, 1, f.ctx.Scene.Len())
	assert.Equal(t, 1, f.ctx.Renderer.Stats().Models)
	require.NoError(t, f.ctx.Renderer.WaitIdle())
	assert.Len(t, f.device.LastFrame().Draws, 1)

	t.Run("unknown model is fatal", func(t *testing.T) {
		f.window.Press("x")
		err := f.ctx.Frame(1.0 / 60)
		assert.ErrorIs(t, err, asset.ErrNotFound)
		f.window.Release("x")

		// The failure sticks.
		assert.ErrorIs(t, f.ctx.Frame(1.0/60), asset.ErrNotFound)
	})

	f.close(t)
}

func TestInputEdges(t *testing.T) {
	cfg := config.Default()
	cfg.Script.File = writeFile(t, "edges.lua", `
function tick(dt)
  if key_just_pressed("space") then
    spawn("cube.obj")
  end
end
`)
	f := newFixture(t, cfg)
	assert.Same(t, f.window, f.ctx.Input)

	f.window.Press("space")
	for range 3 {
		require.NoError(t, f.ctx.Frame(1.0/60))
	}
	assert.Equal(t, 1, f.ctx.Scene.Len(), "a held key spawns once")

	f.window.Release("space")
	f.window.Press("space")
	require.NoError(t, f.ctx.Frame(1.0/60))
	assert.Equal(t, 2, f.ctx.Scene.Len())

	f.close(t)
}

func TestResize(t *testing.T) {
	f := newFixture(t, config.Default())

	require.NoError(t, f.ctx.Frame(0))
	f.window.Resize(1024, 768)
	require.NoError(t, f.ctx.Frame(0))

	stats := f.ctx.Renderer.Stats()
	assert.GreaterOrEqual(t, stats.Refreshes, uint64(1))
	assert.Equal(t, uint32(1024), stats.Extent.Width)
	assert.Equal(t, uint32(768), stats.Extent.Height)

	require.NoError(t, f.ctx.Frame(0))
	f.close(t)
}

func TestRunStops(t *testing.T) {
	t.Run("window closed", func(t *testing.T) {
		f := newFixture(t, config.Default())
		f.window.Close()
		require.NoError(t, f.ctx.Run(context.Background(), 0))
		assert.Zero(t, f.ctx.Frames())
		f.close(t)
	})

	t.Run("context cancelled", func(t *testing.T) {
		f := newFixture(t, config.Default())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, f.ctx.Run(ctx, 0))
		assert.Zero(t, f.ctx.Frames())
		f.close(t)
	})

	t.Run("device lost", func(t *testing.T) {
		f := newFixture(t, config.Default())
		require.NoError(t, f.ctx.Run(context.Background(), 2))
		f.device.Lose()
		err := f.ctx.Run(context.Background(), 0)
		require.Error(t, err)
		assert.Equal(t, uint64(2), f.ctx.Frames())
		f.ctx.Close()
		f.device.Close()
	})
}

func TestSetupErrors(t *testing.T) {
	window := platform.NewHeadlessWindow(800, 600)

	tests := []struct {
		name   string
		config func(cfg *config.Config)
		want   string
	}{
		{"missing scene", func(cfg *config.Config) { cfg.Scene.File = filepath.Join(t.TempDir(), "none.yaml") }, "none.yaml"},
		{"unknown model", func(cfg *config.Config) {
			cfg.Scene.File = writeFile(t, "bad.yaml", "entities:\n  - model: teapot.obj\n")
		}, `unknown model "teapot.obj"`},
		{"missing script", func(cfg *config.Config) { cfg.Script.File = filepath.Join(t.TempDir(), "none.lua") }, "load script"},
		{"script error", func(cfg *config.Config) { cfg.Script.File = writeFile(t, "bad.lua", "function tick(") }, "bad.lua"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := headless.New(headless.WithSurface(window))
			cfg := config.Default()
			tt.config(cfg)

			_, err := engine.New(engine.Options{Config: cfg, Window: window, Device: device})
			assert.ErrorContains(t, err, tt.want)

			require.NoError(t, device.Close())
			assert.Empty(t, device.Validation())
		})
	}
}

func TestDefaults(t *testing.T) {
	window := platform.NewHeadlessWindow(640, 480)
	device := headless.New(headless.WithSurface(window))

	ctx, err := engine.New(engine.Options{Window: window, Device: device})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), ctx.Config)

	e := ctx.Scene.CreateEntity()
	assert.Equal(t, ecs.EntityId(0), e.Id())

	require.NoError(t, ctx.Close())
	require.NoError(t, device.Close())
}
