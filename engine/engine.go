// Package engine wires one process's scene, systems and renderer together and
// drives the frame loop. A Context replaces process-wide managers: everything
// a frame touches is reachable from it.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/plus3/vengine/asset"
	"github.com/plus3/vengine/config"
	"github.com/plus3/vengine/ecs"
	"github.com/plus3/vengine/gpu"
	"github.com/plus3/vengine/graphics"
	"github.com/plus3/vengine/platform"
	"github.com/plus3/vengine/render"
	"github.com/plus3/vengine/scenefile"
	"github.com/plus3/vengine/script"
	"go.uber.org/zap"
)

type Options struct {
	Config *config.Config
	Window platform.Window
	// Input feeds the script system and has its edges cleared after every
	// frame. Defaults to Window when it also implements platform.Input.
	Input  platform.Input
	Device gpu.Device
	Log    *zap.Logger
	// Clock overrides the renderer's animation clock.
	Clock func() time.Duration
}

// Context owns the engine objects of one run. The device and window belong to
// the caller and outlive it.
type Context struct {
	Config   *config.Config
	Log      *zap.Logger
	Window   platform.Window
	// Input is nil when neither Options.Input nor the window provides one.
	Input    platform.Input
	Device   gpu.Device
	Renderer *render.Renderer
	Loader   *asset.Loader
	Registry *ecs.ComponentRegistry
	Scene    *ecs.Scene
	Systems  *ecs.SystemManager
	Graphics *graphics.System
	// Script is nil unless a script file is configured.
	Script *script.System

	frames uint64
	closed bool
}

// Stats is a snapshot of every counter the engine keeps.
type Stats struct {
	Frames   uint64
	Renderer render.Stats
	Scene    ecs.SceneStats
	Systems  *ecs.ManagerStats
}

// New creates the renderer, registers the script and graphics systems and
// spawns the configured scene file.
func New(opts Options) (*Context, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	rendererOpts := cfg.Renderer.Options()
	rendererOpts.Clock = opts.Clock
	renderer, err := render.New(opts.Device, opts.Window, rendererOpts, log)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	registry := ecs.NewComponentRegistry()
	graphics.RegisterComponents(registry)
	scene := ecs.NewScene(registry, nil)

	input := opts.Input
	if input == nil {
		input, _ = opts.Window.(platform.Input)
	}

	c := &Context{
		Config:   cfg,
		Log:      log,
		Window:   opts.Window,
		Input:    input,
		Device:   opts.Device,
		Renderer: renderer,
		Loader:   asset.NewLoader(opts.Device, log),
		Registry: registry,
		Scene:    scene,
		Systems:  ecs.NewSystemManager(scene),
	}

	if err := c.setup(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Context) setup() error {
	if path := c.Config.Script.File; path != "" {
		var input script.Input
		if c.Input != nil {
			input = c.Input
		}
		sys, err := script.LoadFile(path, input, c.Log)
		if err != nil {
			return err
		}
		if err := c.Systems.Register(sys); err != nil {
			return err
		}
		c.Script = sys
	}

	// Graphics ticks last so entities spawned earlier in the frame are drawn.
	c.Graphics = graphics.NewSystem(c.Renderer, c.Loader, c.Log)
	if err := c.Systems.Register(c.Graphics); err != nil {
		return err
	}

	if path := c.Config.Scene.File; path != "" {
		f, err := scenefile.Load(path)
		if err != nil {
			return err
		}
		if err := f.Check(c.Loader); err != nil {
			return fmt.Errorf("scene %s: %w", path, err)
		}
		entities := f.Spawn(c.Scene)
		if err := c.Graphics.Err(); err != nil {
			return err
		}
		c.Log.Info("scene loaded",
			zap.String("file", path),
			zap.Int("entities", len(entities)))
	}
	return nil
}

// Frame runs one tick of every system. A resize reported by the window is
// forwarded to the renderer first. Input edges are cleared once the systems
// have run.
func (c *Context) Frame(dt float64) error {
	if c.Window.Resized() {
		c.Renderer.NotifyResized()
	}

	err := c.Systems.Tick(dt)
	if c.Input != nil {
		c.Input.EndFrame()
	}
	if err != nil {
		c.Log.Error("frame failed",
			zap.Uint64("frame", c.frames),
			zap.Error(err))
		return err
	}
	c.frames++

	if every := c.Config.Debug.StatsEvery; every > 0 && c.frames%uint64(every) == 0 {
		c.logStats()
	}
	return nil
}

// Run calls Frame until ctx is done, the window asks to close, limit frames
// have run or a frame fails. A limit of zero means no limit. Only a frame
// failure is returned.
func (c *Context) Run(ctx context.Context, limit uint64) error {
	last := time.Now()
	first := true
	for run := uint64(0); limit == 0 || run < limit; run++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if c.Window.ShouldClose() {
			return nil
		}

		now := time.Now()
		dt := now.Sub(last).Seconds()
		if first {
			dt, first = 0, false
		}
		last = now

		if err := c.Frame(dt); err != nil {
			return err
		}
	}
	return nil
}

// Frames returns the number of completed frames.
func (c *Context) Frames() uint64 {
	return c.frames
}

func (c *Context) Stats() Stats {
	return Stats{
		Frames:   c.frames,
		Renderer: c.Renderer.Stats(),
		Scene:    c.Scene.CollectStats(),
		Systems:  c.Systems.GetStats(),
	}
}

func (c *Context) logStats() {
	rs := c.Renderer.Stats()
	c.Log.Info("frame stats",
		zap.Uint64("frames", c.frames),
		zap.Uint64("submitted", rs.FramesSubmitted),
		zap.Uint64("dropped", rs.FramesDropped),
		zap.Uint64("refreshes", rs.Refreshes),
		zap.Int("models", rs.Models),
		zap.Int("entities", c.Scene.Len()))
}

// Close shuts the systems down, which releases every model, then destroys
// the renderer's objects and the scene. It is safe to call more than once.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	c.Systems.Shutdown()
	err := c.Renderer.Close()
	c.Scene.Destroy()
	return err
}
