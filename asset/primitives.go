package asset

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Cube is a unit cube centered on the origin with one color per face.
func Cube() Mesh {
	faces := []struct {
		normal mgl32.Vec3
		u, v   mgl32.Vec3
		color  mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 0, 1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 1}},
	}

	var m Mesh
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		center := f.normal.Mul(0.5)
		corners := [4][2]float32{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
		for _, c := range corners {
			m.Vertices = append(m.Vertices, Vertex{
				Position: center.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])),
				Color:    f.color,
				TexCoord: mgl32.Vec2{c[0] + 0.5, c[1] + 0.5},
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return m
}

// Plane is a unit square in the XZ plane facing up.
func Plane() Mesh {
	white := mgl32.Vec3{1, 1, 1}
	return Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-0.5, 0, 0.5}, Color: white, TexCoord: mgl32.Vec2{0, 0}},
			{Position: mgl32.Vec3{0.5, 0, 0.5}, Color: white, TexCoord: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{0.5, 0, -0.5}, Color: white, TexCoord: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{-0.5, 0, -0.5}, Color: white, TexCoord: mgl32.Vec2{0, 1}},
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
}

// Pyramid is a square-based pyramid of unit height and base.
func Pyramid() Mesh {
	apex := mgl32.Vec3{0, 0.5, 0}
	base := [4]mgl32.Vec3{
		{-0.5, -0.5, 0.5},
		{0.5, -0.5, 0.5},
		{0.5, -0.5, -0.5},
		{-0.5, -0.5, -0.5},
	}

	var m Mesh
	for i := 0; i < 4; i++ {
		a, b := base[i], base[(i+1)%4]
		idx := uint32(len(m.Vertices))
		color := mgl32.Vec3{float32(i%2) * 0.8, 0.5, float32((i+1)%2) * 0.8}
		m.Vertices = append(m.Vertices,
			Vertex{Position: a, Color: color, TexCoord: mgl32.Vec2{0, 0}},
			Vertex{Position: b, Color: color, TexCoord: mgl32.Vec2{1, 0}},
			Vertex{Position: apex, Color: color, TexCoord: mgl32.Vec2{0.5, 1}},
		)
		m.Indices = append(m.Indices, idx, idx+1, idx+2)
	}

	idx := uint32(len(m.Vertices))
	grey := mgl32.Vec3{0.5, 0.5, 0.5}
	for i, p := range base {
		m.Vertices = append(m.Vertices, Vertex{
			Position: p,
			Color:    grey,
			TexCoord: mgl32.Vec2{float32(i & 1), float32(i >> 1)},
		})
	}
	m.Indices = append(m.Indices, idx, idx+3, idx+2, idx+2, idx+1, idx)
	return m
}

// Sphere is a UV sphere of diameter one.
func Sphere(rings, segments int) Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)

	var m Mesh
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			pos := mgl32.Vec3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			m.Vertices = append(m.Vertices, Vertex{
				Position: pos.Mul(0.5),
				Color:    pos.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5}),
				TexCoord: mgl32.Vec2{float32(s) / float32(segments), float32(r) / float32(rings)},
			})
		}
	}

	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			m.Indices = append(m.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return m
}
