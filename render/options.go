package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/vengine/gpu"
)

// Camera positions the viewer. The scene spins around the Y axis at
// SpinDegreesPerSec.
type Camera struct {
	Eye               mgl32.Vec3
	Center            mgl32.Vec3
	Up                mgl32.Vec3
	FovDegrees        float32
	Near              float32
	Far               float32
	SpinDegreesPerSec float32
}

func DefaultCamera() Camera {
	return Camera{
		Eye:               mgl32.Vec3{0, 3, 6},
		Center:            mgl32.Vec3{0, 0, 0},
		Up:                mgl32.Vec3{0, 1, 0},
		FovDegrees:        45,
		Near:              0.1,
		Far:               100,
		SpinDegreesPerSec: 90,
	}
}

type Options struct {
	// FramesInFlight is the number of frame slots, each with its own
	// semaphores and fence. Defaults to 2.
	FramesInFlight int
	ClearColor     [4]float32
	VSync          bool
	// Samples is the color attachment sample count. Values above 1 add a
	// multisampled color attachment.
	Samples        int
	Camera         Camera
	VertexShader   string
	FragmentShader string
	// FenceTimeout bounds the wait for a frame slot. Defaults to
	// gpu.WaitForever.
	FenceTimeout time.Duration
	// Clock returns the time since the renderer started. It drives the
	// uniform animation and defaults to the wall clock.
	Clock func() time.Duration
}

func DefaultOptions() Options {
	return Options{
		FramesInFlight: 2,
		ClearColor:     [4]float32{0, 0, 0, 1},
		VSync:          true,
		Samples:        1,
		Camera:         DefaultCamera(),
		VertexShader:   "shaders/shader.vert.spv",
		FragmentShader: "shaders/shader.frag.spv",
		FenceTimeout:   gpu.WaitForever,
	}
}

func (o *Options) applyDefaults() {
	defaults := DefaultOptions()
	if o.FramesInFlight <= 0 {
		o.FramesInFlight = defaults.FramesInFlight
	}
	if o.Samples <= 0 {
		o.Samples = 1
	}
	if o.Camera == (Camera{}) {
		o.Camera = defaults.Camera
	}
	if o.VertexShader == "" {
		o.VertexShader = defaults.VertexShader
	}
	if o.FragmentShader == "" {
		o.FragmentShader = defaults.FragmentShader
	}
	if o.FenceTimeout == 0 {
		o.FenceTimeout = defaults.FenceTimeout
	}
}
