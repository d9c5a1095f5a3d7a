// Package platform defines the window and input collaborators the engine
// drives, and a headless window for tests and benchmark runs.
package platform

import (
	"strings"
	"sync"

	"github.com/plus3/vengine/render"
)

// Window is a presentation surface owned by the platform layer.
type Window interface {
	render.Window
	// ShouldClose reports whether the user asked to close the window.
	ShouldClose() bool
	// Resized reports whether the framebuffer changed size since the last
	// call and clears the flag.
	Resized() bool
}

// Input reports keyboard and mouse state. Key and button names are
// case-insensitive. Mouse buttons are "left", "right" and "middle".
type Input interface {
	// KeyPressed reports whether the key is held.
	KeyPressed(name string) bool
	// KeyJustPressed reports whether the key went down during this frame.
	KeyJustPressed(name string) bool
	// KeyJustReleased reports whether the key went up during this frame.
	KeyJustReleased(name string) bool
	MouseButtonPressed(name string) bool
	// CursorPosition returns the cursor in window coordinates.
	CursorPosition() (x, y int)
	// EndFrame closes the current frame. Edges seen so far are dropped.
	EndFrame()
}

// HeadlessWindow is a Window and Input with no display behind it. Size,
// input and close requests are driven by the caller. It is safe for
// concurrent use.
type HeadlessWindow struct {
	mu      sync.Mutex
	width   int
	height  int
	resized bool
	closed  bool
	keys    map[string]bool
	down    map[string]bool
	up      map[string]bool
	buttons map[string]bool
	cursorX int
	cursorY int
	events  chan struct{}
}

func NewHeadlessWindow(width, height int) *HeadlessWindow {
	return &HeadlessWindow{
		width:   width,
		height:  height,
		keys:    make(map[string]bool),
		down:    make(map[string]bool),
		up:      make(map[string]bool),
		buttons: make(map[string]bool),
		events:  make(chan struct{}, 1),
	}
}

func (w *HeadlessWindow) FramebufferSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Resize changes the framebuffer size and raises the resized flag. A zero
// dimension simulates a minimized window.
func (w *HeadlessWindow) Resize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.resized = true
	w.mu.Unlock()
	w.post()
}

func (w *HeadlessWindow) Resized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	resized := w.resized
	w.resized = false
	return resized
}

// Press marks a key as held until Release. Pressing a key that is not held
// records a down edge for the current frame.
func (w *HeadlessWindow) Press(name string) {
	w.setKey(name, true)
}

// Release lets go of a held key and records an up edge.
func (w *HeadlessWindow) Release(name string) {
	w.setKey(name, false)
}

func (w *HeadlessWindow) setKey(name string, down bool) {
	name = strings.ToLower(name)
	w.mu.Lock()
	if held := w.keys[name]; down && !held {
		w.keys[name] = true
		w.down[name] = true
	} else if !down && held {
		delete(w.keys, name)
		w.up[name] = true
	}
	w.mu.Unlock()
	w.post()
}

func (w *HeadlessWindow) KeyPressed(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.keys[strings.ToLower(name)]
}

func (w *HeadlessWindow) KeyJustPressed(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.down[strings.ToLower(name)]
}

func (w *HeadlessWindow) KeyJustReleased(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.up[strings.ToLower(name)]
}

// PressButton holds a mouse button until ReleaseButton.
func (w *HeadlessWindow) PressButton(name string) {
	w.mu.Lock()
	w.buttons[strings.ToLower(name)] = true
	w.mu.Unlock()
	w.post()
}

func (w *HeadlessWindow) ReleaseButton(name string) {
	w.mu.Lock()
	delete(w.buttons, strings.ToLower(name))
	w.mu.Unlock()
	w.post()
}

func (w *HeadlessWindow) MouseButtonPressed(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buttons[strings.ToLower(name)]
}

// MoveCursor sets the cursor position in window coordinates.
func (w *HeadlessWindow) MoveCursor(x, y int) {
	w.mu.Lock()
	w.cursorX, w.cursorY = x, y
	w.mu.Unlock()
	w.post()
}

func (w *HeadlessWindow) CursorPosition() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursorX, w.cursorY
}

// EndFrame drops the key edges recorded since the previous call. Held keys
// stay held.
func (w *HeadlessWindow) EndFrame() {
	w.mu.Lock()
	clear(w.down)
	clear(w.up)
	w.mu.Unlock()
}

// Close requests the window to close. WaitEvents no longer blocks afterwards.
func (w *HeadlessWindow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.post()
}

func (w *HeadlessWindow) ShouldClose() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// WaitEvents blocks until a resize, key change or close request arrives.
// Events posted while nobody waits are coalesced into one.
func (w *HeadlessWindow) WaitEvents() {
	if w.ShouldClose() {
		return
	}
	<-w.events
}

func (w *HeadlessWindow) post() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
