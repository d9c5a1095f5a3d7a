package ecs_test

import "github.com/plus3/vengine/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Score int32

// Resource counts how often its Destroy hook runs.
type Resource struct {
	Label     string
	destroyed *int
}

func (r *Resource) Destroy() {
	if r.destroyed != nil {
		*r.destroyed++
	}
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[Resource](registry)
	return registry
}

func newTestScene() *ecs.Scene {
	return ecs.NewScene(newTestRegistry(), nil)
}

func idOf[T any](scene *ecs.Scene) ecs.ComponentId {
	id, ok := ecs.ComponentIdOf[T](scene.Registry())
	if !ok {
		panic("component not registered")
	}
	return id
}

func collectIds(seq func(yield func(*ecs.Entity) bool)) []ecs.EntityId {
	ids := []ecs.EntityId{}
	for e := range seq {
		ids = append(ids, e.Id())
	}
	return ids
}
