package render

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformSize is the size of the per-image uniform block: model, view and
// projection matrices.
const UniformSize = 3 * 16 * 4

// Uniforms is the per-frame data the vertex shader reads.
type Uniforms struct {
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// ComputeUniforms builds the uniform block for the given elapsed time and
// viewport aspect ratio. The projection's Y axis is flipped to match
// Vulkan's clip space.
func ComputeUniforms(cam Camera, seconds float64, aspect float32) Uniforms {
	angle := mgl32.DegToRad(float32(seconds) * cam.SpinDegreesPerSec)
	proj := mgl32.Perspective(mgl32.DegToRad(cam.FovDegrees), aspect, cam.Near, cam.Far)
	proj.Set(1, 1, -proj.At(1, 1))

	return Uniforms{
		Model:      mgl32.HomogRotate3DY(angle),
		View:       mgl32.LookAtV(cam.Eye, cam.Center, cam.Up),
		Projection: proj,
	}
}

// Encode writes the matrices column-major in little-endian order into dst,
// which must hold at least UniformSize bytes.
func (u Uniforms) Encode(dst []byte) {
	off := 0
	for _, m := range [3]mgl32.Mat4{u.Model, u.View, u.Projection} {
		for _, f := range m {
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(f))
			off += 4
		}
	}
}
