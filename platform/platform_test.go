package platform_test

import (
	"testing"
	"time"

	"github.com/plus3/vengine/platform"
	"github.com/stretchr/testify/assert"
)

func TestHeadlessWindow(t *testing.T) {
	t.Run("resize", func(t *testing.T) {
		w := platform.NewHeadlessWindow(800, 600)
		assert.False(t, w.Resized())

		w.Resize(1024, 768)
		width, height := w.FramebufferSize()
		assert.Equal(t, 1024, width)
		assert.Equal(t, 768, height)
		assert.True(t, w.Resized())
		assert.False(t, w.Resized(), "flag is cleared once read")
	})

	t.Run("keys", func(t *testing.T) {
		w := platform.NewHeadlessWindow(800, 600)
		w.Press("Space")
		assert.True(t, w.KeyPressed("space"))
		assert.True(t, w.KeyPressed("SPACE"))
		assert.False(t, w.KeyPressed("enter"))

		w.Release("space")
		assert.False(t, w.KeyPressed("space"))
	})

	t.Run("key edges last one frame", func(t *testing.T) {
		w := platform.NewHeadlessWindow(800, 600)
		w.Press("Enter")
		assert.True(t, w.KeyJustPressed("enter"))
		assert.False(t, w.KeyJustReleased("enter"))

		w.EndFrame()
		assert.True(t, w.KeyPressed("enter"))
		assert.False(t, w.KeyJustPressed("enter"))

		w.Press("enter")
		assert.False(t, w.KeyJustPressed("enter"), "already held")

		w.Release("enter")
		assert.True(t, w.KeyJustReleased("enter"))
		w.Release("enter")
		w.EndFrame()
		assert.False(t, w.KeyJustReleased("enter"))
	})

	t.Run("tap within one frame", func(t *testing.T) {
		w := platform.NewHeadlessWindow(800, 600)
		w.Press("a")
		w.Release("a")
		assert.False(t, w.KeyPressed("a"))
		assert.True(t, w.KeyJustPressed("a"))
		assert.True(t, w.KeyJustReleased("a"))
	})

	t.Run("mouse", func(t *testing.T) {
		w := platform.NewHeadlessWindow(800, 600)
		x, y := w.CursorPosition()
		assert.Zero(t, x)
		assert.Zero(t, y)

		w.MoveCursor(120, 45)
		w.PressButton("Left")
		x, y = w.CursorPosition()
		assert.Equal(t, 120, x)
		assert.Equal(t, 45, y)
		assert.True(t, w.MouseButtonPressed("left"))
		assert.False(t, w.MouseButtonPressed("right"))

		w.EndFrame()
		assert.True(t, w.MouseButtonPressed("left"), "buttons stay held across frames")
		w.ReleaseButton("left")
		assert.False(t, w.MouseButtonPressed("left"))
	})

	t.Run("wait events", func(t *testing.T) {
		w := platform.NewHeadlessWindow(0, 0)

		done := make(chan struct{})
		go func() {
			for {
				if width, _ := w.FramebufferSize(); width > 0 {
					break
				}
				w.WaitEvents()
			}
			close(done)
		}()

		w.Resize(640, 480)
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("WaitEvents did not return after resize")
		}
	})

	t.Run("close", func(t *testing.T) {
		w := platform.NewHeadlessWindow(800, 600)
		assert.False(t, w.ShouldClose())
		w.Close()
		assert.True(t, w.ShouldClose())

		// Returns immediately once closed, even with no pending event.
		w.WaitEvents()
		w.WaitEvents()
	})
}

func TestInterfaces(t *testing.T) {
	var w platform.Window = platform.NewHeadlessWindow(1, 1)
	var in platform.Input = platform.NewHeadlessWindow(1, 1)
	assert.NotNil(t, w)
	assert.NotNil(t, in)
}
