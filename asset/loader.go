// Package asset turns model names into GPU-resident geometry. Meshes are
// produced by registered builders keyed by file name; the built-in set covers
// the primitive shapes scenes refer to.
package asset

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/vengine/gpu"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no mesh is registered under a name.
var ErrNotFound = errors.New("asset: not found")

// MeshFunc builds a mesh in model space.
type MeshFunc func() Mesh

// ModelCreateInfo places a mesh in the world when it is loaded.
type ModelCreateInfo struct {
	Center mgl32.Vec3
	// Scale defaults to 1 when zero.
	Scale float32
	// UVScale defaults to (1, 1) when zero.
	UVScale mgl32.Vec2
}

// Model is a mesh uploaded to the GPU.
type Model struct {
	Name         string
	VertexBuffer gpu.Buffer
	IndexBuffer  gpu.Buffer
	VertexCount  uint32
	IndexCount   uint32
	Dimension    Dimension
}

// Release destroys the model's buffers. The caller must make sure the GPU no
// longer reads them.
func (m *Model) Release(device gpu.Device) {
	device.DestroyBuffer(m.VertexBuffer)
	device.DestroyBuffer(m.IndexBuffer)
	m.VertexBuffer = 0
	m.IndexBuffer = 0
}

// Loader resolves model names and uploads their meshes.
type Loader struct {
	device gpu.Device
	log    *zap.Logger
	meshes map[string]MeshFunc
}

// NewLoader creates a loader with the built-in meshes registered.
func NewLoader(device gpu.Device, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{
		device: device,
		log:    log,
		meshes: make(map[string]MeshFunc),
	}
	l.Register("cube.obj", Cube)
	l.Register("plane.obj", Plane)
	l.Register("pyramid.obj", Pyramid)
	l.Register("sphere.obj", func() Mesh { return Sphere(16, 24) })
	return l
}

// Register makes fn available under name, replacing any earlier builder.
func (l *Loader) Register(name string, fn MeshFunc) {
	l.meshes[key(name)] = fn
}

// Names returns the registered names in sorted order.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.meshes))
	for name := range l.meshes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name resolves to a mesh.
func (l *Loader) Has(name string) bool {
	_, ok := l.meshes[key(name)]
	return ok
}

// Mesh builds the named mesh and places it according to info.
func (l *Loader) Mesh(name string, info ModelCreateInfo) (Mesh, error) {
	fn, ok := l.meshes[key(name)]
	if !ok {
		return Mesh{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	scale := info.Scale
	if scale == 0 {
		scale = 1
	}
	uvScale := info.UVScale
	if uvScale == (mgl32.Vec2{}) {
		uvScale = mgl32.Vec2{1, 1}
	}
	return fn().Transform(info.Center, scale, uvScale), nil
}

// Load builds the named mesh and uploads it into new vertex and index buffers.
func (l *Loader) Load(name string, info ModelCreateInfo) (*Model, error) {
	mesh, err := l.Mesh(name, info)
	if err != nil {
		return nil, err
	}

	vertexBuffer, err := l.upload(mesh.VertexBytes(), gpu.BufferUsageVertex|gpu.BufferUsageTransferDst)
	if err != nil {
		return nil, fmt.Errorf("load %s: vertex buffer: %w", name, err)
	}
	indexBuffer, err := l.upload(mesh.IndexBytes(), gpu.BufferUsageIndex|gpu.BufferUsageTransferDst)
	if err != nil {
		l.device.DestroyBuffer(vertexBuffer)
		return nil, fmt.Errorf("load %s: index buffer: %w", name, err)
	}

	model := &Model{
		Name:         name,
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
		VertexCount:  uint32(len(mesh.Vertices)),
		IndexCount:   uint32(len(mesh.Indices)),
		Dimension:    mesh.Dimension(),
	}
	l.log.Debug("model loaded",
		zap.String("name", name),
		zap.Uint32("vertices", model.VertexCount),
		zap.Uint32("indices", model.IndexCount))
	return model, nil
}

func (l *Loader) upload(data []byte, usage gpu.BufferUsage) (gpu.Buffer, error) {
	buf, err := l.device.CreateBuffer(gpu.BufferCreateInfo{
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return 0, err
	}

	mapped, err := l.device.MapMemory(buf)
	if err != nil {
		l.device.DestroyBuffer(buf)
		return 0, err
	}
	copy(mapped, data)
	l.device.UnmapMemory(buf)
	return buf, nil
}

func key(name string) string {
	return strings.ToLower(path.Base(name))
}
