// Package graphics connects scene entities to the renderer. Entities holding a
// Graphics component get a GPU model when they are initialized and lose it
// when they are destroyed.
package graphics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/vengine/ecs"
)

// Transform places an entity in the world. Only Position is used when a model
// is built.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

func NewTransform(x, y, z float32) Transform {
	return Transform{
		Position: mgl32.Vec3{x, y, z},
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Graphics marks an entity as drawable. Model names a mesh known to the
// asset loader.
type Graphics struct {
	Model string
}

// RegisterComponents registers the package's component types.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Graphics](registry)
}
