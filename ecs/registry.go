package ecs

import (
	"reflect"
)

// ComponentId is the small, stable integer assigned to a component type when it
// is registered. It indexes the per-type storages owned by a Scene and the
// per-entity slot tables.
type ComponentId uint16

// ComponentRegistry manages component type registration for an ECS instance.
// Each Scene is bound to one ComponentRegistry, allowing multiple independent
// scenes to coexist without interference.
type ComponentRegistry struct {
	ids       map[reflect.Type]ComponentId
	types     []reflect.Type
	factories []func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		ids: make(map[reflect.Type]ComponentId),
	}
}

// RegisterComponent registers a new component type with the given registry and
// returns its id. This must be called for each component type before it can be
// added to an entity. Registering the same type twice returns the original id.
func RegisterComponent[T any](r *ComponentRegistry) ComponentId {
	t := reflect.TypeFor[T]()
	if id, ok := r.ids[t]; ok {
		return id
	}

	id := ComponentId(len(r.types))
	r.ids[t] = id
	r.types = append(r.types, t)
	r.factories = append(r.factories, func() iComponentStorage {
		return &componentStorage[T]{}
	})
	return id
}

// ComponentIdOf returns the id assigned to T, if T has been registered.
func ComponentIdOf[T any](r *ComponentRegistry) (ComponentId, bool) {
	return r.lookup(reflect.TypeFor[T]())
}

func (r *ComponentRegistry) lookup(t reflect.Type) (ComponentId, bool) {
	id, ok := r.ids[t]
	return id, ok
}

// mustLookup returns the id for t or panics if the type was never registered.
func (r *ComponentRegistry) mustLookup(t reflect.Type) ComponentId {
	id, ok := r.ids[t]
	if !ok {
		panic("component type " + t.String() + " not registered")
	}
	return id
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return len(r.types)
}

// TypeOf returns the Go type registered under id.
func (r *ComponentRegistry) TypeOf(id ComponentId) reflect.Type {
	if int(id) >= len(r.types) {
		return nil
	}
	return r.types[id]
}

// newStorage builds an empty storage for the component type registered under id.
func (r *ComponentRegistry) newStorage(id ComponentId) iComponentStorage {
	return r.factories[id]()
}
