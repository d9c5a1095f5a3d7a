// Package ebitenwin adapts an ebiten window to the platform interfaces.
package ebitenwin

import (
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var mouseButtons = map[string]ebiten.MouseButton{
	"left":   ebiten.MouseButtonLeft,
	"right":  ebiten.MouseButtonRight,
	"middle": ebiten.MouseButtonMiddle,
}

// Window reports the ebiten window size and key state. Its size is updated
// from Layout, which ebiten calls on the game loop goroutine.
type Window struct {
	mu      sync.Mutex
	width   int
	height  int
	resized bool
	keys    map[string]ebiten.Key
}

// New configures the ebiten window. The window opens when RunGame starts.
func New(title string, width, height int) *Window {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	return &Window{
		width:  width,
		height: height,
		keys:   make(map[string]ebiten.Key),
	}
}

func (w *Window) FramebufferSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// WaitEvents returns immediately. Ebiten delivers events between game loop
// iterations and Layout never records an empty size, so there is nothing to
// wait for inside a frame.
func (w *Window) WaitEvents() {}

func (w *Window) ShouldClose() bool {
	return ebiten.IsWindowBeingClosed()
}

func (w *Window) Resized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	resized := w.resized
	w.resized = false
	return resized
}

// KeyPressed reports whether the named key is held. Names follow ebiten's key
// names ("space", "a", "arrowup"); unknown names are never pressed.
func (w *Window) KeyPressed(name string) bool {
	key := w.key(name)
	return key >= 0 && ebiten.IsKeyPressed(key)
}

// KeyJustPressed reports whether the key went down during the current game
// loop update.
func (w *Window) KeyJustPressed(name string) bool {
	key := w.key(name)
	return key >= 0 && inpututil.IsKeyJustPressed(key)
}

func (w *Window) KeyJustReleased(name string) bool {
	key := w.key(name)
	return key >= 0 && inpututil.IsKeyJustReleased(key)
}

func (w *Window) MouseButtonPressed(name string) bool {
	button, ok := mouseButtons[strings.ToLower(name)]
	return ok && ebiten.IsMouseButtonPressed(button)
}

func (w *Window) CursorPosition() (int, int) {
	return ebiten.CursorPosition()
}

// EndFrame does nothing. Ebiten tracks key edges per game loop update.
func (w *Window) EndFrame() {}

func (w *Window) key(name string) ebiten.Key {
	name = strings.ToLower(name)
	w.mu.Lock()
	defer w.mu.Unlock()
	key, ok := w.keys[name]
	if !ok {
		if err := key.UnmarshalText([]byte(name)); err != nil {
			key = -1
		}
		w.keys[name] = key
	}
	return key
}

// Layout records the outside size. Zero sizes reported while minimized are
// ignored.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != w.width || outsideHeight != w.height) {
		w.width, w.height = outsideWidth, outsideHeight
		w.resized = true
	}
	return w.width, w.height
}

// Game adapts a frame function to ebiten.Game.
type Game struct {
	Window *Window
	// Step advances the engine by dt seconds. An error stops the game loop
	// and is returned from Run.
	Step func(dt float64) error
	// Overlay draws on top of the screen after each frame. Optional.
	Overlay func(screen *ebiten.Image)
	// OnLayout observes layout changes. Optional.
	OnLayout func(width, height int)

	last time.Time
}

func (g *Game) Update() error {
	if g.Window.ShouldClose() {
		return ebiten.Termination
	}

	now := time.Now()
	dt := 1.0 / float64(ebiten.TPS())
	if !g.last.IsZero() {
		dt = now.Sub(g.last).Seconds()
	}
	g.last = now

	return g.Step(dt)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.Overlay != nil {
		g.Overlay(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	width, height := g.Window.Layout(outsideWidth, outsideHeight)
	if g.OnLayout != nil {
		g.OnLayout(width, height)
	}
	return width, height
}

// Run runs the game loop until the window closes or Step fails.
func Run(g *Game) error {
	return ebiten.RunGame(g)
}
