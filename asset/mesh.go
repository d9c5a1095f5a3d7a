package asset

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the vertex layout every pipeline consumes.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

// VertexStride is the size of an encoded Vertex in bytes.
const VertexStride = 32

// Mesh is CPU-side geometry.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Dimension is the axis-aligned bounds of a mesh.
type Dimension struct {
	Min    mgl32.Vec3
	Max    mgl32.Vec3
	Size   mgl32.Vec3
	Center mgl32.Vec3
	Radius float32
}

// Dimension computes the bounds of the mesh's vertices. An empty mesh has
// zero bounds.
func (m Mesh) Dimension() Dimension {
	if len(m.Vertices) == 0 {
		return Dimension{}
	}

	inf := float32(math.Inf(1))
	minPos := mgl32.Vec3{inf, inf, inf}
	maxPos := mgl32.Vec3{-inf, -inf, -inf}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			minPos[i] = min(minPos[i], v.Position[i])
			maxPos[i] = max(maxPos[i], v.Position[i])
		}
	}

	size := maxPos.Sub(minPos)
	return Dimension{
		Min:    minPos,
		Max:    maxPos,
		Size:   size,
		Center: minPos.Add(maxPos).Mul(0.5),
		Radius: size.Len() / 2,
	}
}

// Transform returns a copy of the mesh scaled around the origin and moved to
// center. Texture coordinates are multiplied by uvScale.
func (m Mesh) Transform(center mgl32.Vec3, scale float32, uvScale mgl32.Vec2) Mesh {
	out := Mesh{
		Vertices: make([]Vertex, len(m.Vertices)),
		Indices:  append([]uint32(nil), m.Indices...),
	}
	for i, v := range m.Vertices {
		v.Position = v.Position.Mul(scale).Add(center)
		v.TexCoord = mgl32.Vec2{v.TexCoord[0] * uvScale[0], v.TexCoord[1] * uvScale[1]}
		out.Vertices[i] = v
	}
	return out
}

// VertexBytes encodes the vertices in little-endian order.
func (m Mesh) VertexBytes() []byte {
	out := make([]byte, 0, len(m.Vertices)*VertexStride)
	for _, v := range m.Vertices {
		for _, f := range v.Position {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
		for _, f := range v.Color {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
		for _, f := range v.TexCoord {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

// IndexBytes encodes the indices as little-endian uint32.
func (m Mesh) IndexBytes() []byte {
	out := make([]byte, 0, len(m.Indices)*4)
	for _, idx := range m.Indices {
		out = binary.LittleEndian.AppendUint32(out, idx)
	}
	return out
}
