package ecs

import "reflect"

// Add attaches component to e and returns a pointer to the stored value.
//
// If e already holds a component of type T, the previous instance is replaced:
// OnComponentRemoved[T] is emitted for it while it is still attached, its
// Destroy hook runs, and the new value takes its place. OnComponentAssigned[T]
// is emitted once the new value is stored.
//
// Add panics if T was never registered with the scene's ComponentRegistry. It
// returns nil without storing anything once e has been destroyed.
func Add[T any](e *Entity, component T) *T {
	if e.destroyed {
		return nil
	}
	s := e.scene
	id := s.registry.mustLookup(reflect.TypeFor[T]())
	storage := storageFor[T](s, id)

	if old := e.slot(id); old >= 0 {
		Emit(s.bus, OnComponentRemoved[T]{Entity: e, Component: storage.At(old)})
		storage.Release(old)
		e.clearSlot(id)
	}

	index, ptr := storage.Append(component)
	e.setSlot(id, index)

	Emit(s.bus, OnComponentAssigned[T]{Entity: e, Component: ptr})
	return ptr
}

// Get returns a pointer to e's component of type T, or nil if e has none.
func Get[T any](e *Entity) *T {
	if e == nil || e.scene == nil {
		return nil
	}
	id, ok := e.scene.registry.lookup(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	slot := e.slot(id)
	if slot < 0 {
		return nil
	}
	return e.scene.storages[id].(*componentStorage[T]).At(slot)
}

// Has reports whether e holds a component of type T.
func Has[T any](e *Entity) bool {
	if e == nil || e.scene == nil {
		return false
	}
	id, ok := e.scene.registry.lookup(reflect.TypeFor[T]())
	if !ok {
		return false
	}
	return e.Has(id)
}

// Remove detaches and destroys e's component of type T. OnComponentRemoved[T]
// is emitted before the component is released. It returns false if e had no
// such component.
func Remove[T any](e *Entity) bool {
	if e.destroyed {
		return false
	}
	s := e.scene
	id, ok := s.registry.lookup(reflect.TypeFor[T]())
	if !ok {
		return false
	}
	slot := e.slot(id)
	if slot < 0 {
		return false
	}

	storage := s.storages[id].(*componentStorage[T])
	Emit(s.bus, OnComponentRemoved[T]{Entity: e, Component: storage.At(slot)})

	// A handler may have removed it already.
	if slot = e.slot(id); slot >= 0 {
		storage.Release(slot)
		e.clearSlot(id)
	}
	return true
}

func storageFor[T any](s *Scene, id ComponentId) *componentStorage[T] {
	for int(id) >= len(s.storages) {
		s.storages = append(s.storages, nil)
	}
	if s.storages[id] == nil {
		s.storages[id] = s.registry.newStorage(id)
	}
	return s.storages[id].(*componentStorage[T])
}
