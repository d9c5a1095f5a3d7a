package ecs

// OnEntityCreated is emitted by Scene.CreateEntity after the entity has been
// appended to the scene.
type OnEntityCreated struct {
	Entity *Entity
}

// OnEntityInit is emitted by Scene.Init and Scene.InitAll.
type OnEntityInit struct {
	Entity *Entity
}

// OnEntityDestroyed is emitted right before an entity and its components are
// released. Components are still readable from the handler.
type OnEntityDestroyed struct {
	Entity *Entity
}

// OnComponentAssigned is emitted after Add stores a component.
type OnComponentAssigned[T any] struct {
	Entity    *Entity
	Component *T
}

// OnComponentRemoved is emitted by Remove, and by Add when it replaces an
// existing component, while the component is still attached.
type OnComponentRemoved[T any] struct {
	Entity    *Entity
	Component *T
}
