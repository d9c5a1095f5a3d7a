package main

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/plus3/vengine/config"
	"github.com/plus3/vengine/debugui"
	debugui_ebiten "github.com/plus3/vengine/debugui/ebiten"
	"github.com/plus3/vengine/engine"
	"github.com/plus3/vengine/gpu/headless"
	"github.com/plus3/vengine/platform/ebitenwin"
	"go.uber.org/zap"
)

// runWindowed drives the engine from ebiten's game loop. Frames are rendered
// by the software device; the window shows the renderer counters and, with
// the debug UI enabled, the ImGui panels.
func runWindowed(cfg *config.Config, log *zap.Logger) error {
	window := ebitenwin.New(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	device := headless.New(headless.WithSurface(window), headless.WithLogger(log))

	eng, err := engine.New(engine.Options{
		Config: cfg,
		Window: window,
		Device: device,
		Log:    log,
	})
	if err != nil {
		return errors.Join(err, device.Close())
	}

	var backend *debugui_ebiten.ImguiBackend
	if cfg.Debug.UI {
		backend = debugui_ebiten.NewImguiBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		debugui.RegisterComponents(eng.Registry)
		if err := eng.Systems.Register(&debugui.ImguiSystem{}); err != nil {
			return errors.Join(err, eng.Close(), device.Close())
		}
		debugui.Spawn(debugui.Sources{
			Scene:    eng.Scene,
			Systems:  eng.Systems,
			Renderer: eng.Renderer,
		})
	}

	game := &ebitenwin.Game{
		Window: window,
		Step: func(dt float64) error {
			if backend == nil {
				return eng.Frame(dt)
			}
			return backend.Frame(func() error { return eng.Frame(dt) })
		},
		Overlay: func(screen *ebiten.Image) {
			rs := eng.Renderer.Stats()
			ebitenutil.DebugPrint(screen, fmt.Sprintf(
				"frames %d  dropped %d  refreshes %d\nmodels %d  swapchain %dx%d  TPS %.0f",
				rs.FramesSubmitted, rs.FramesDropped, rs.Refreshes,
				rs.Models, rs.Extent.Width, rs.Extent.Height, ebiten.ActualTPS()))
			if backend != nil {
				backend.Overlay(screen)
			}
		},
	}
	if backend != nil {
		game.OnLayout = func(width, height int) { backend.Layout(width, height) }
	}

	log.Info("window opened",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Bool("debug_ui", cfg.Debug.UI))

	runErr := ebitenwin.Run(game)
	closeErr := errors.Join(eng.Close(), device.Close())
	if runErr != nil {
		return runErr
	}
	return closeErr
}
