package ecs

import (
	"reflect"
	"slices"

	"github.com/kamstrup/intmap"
)

// Scene owns an ordered collection of entities and the component storages
// backing them. Insertion order is iteration order. All lifecycle changes are
// announced on the scene's EventBus.
//
// A Scene is not safe for concurrent use; it is driven from the frame loop.
type Scene struct {
	registry *ComponentRegistry
	bus      *EventBus
	entities []*Entity
	index    *intmap.Map[EntityId, *Entity]
	storages []iComponentStorage
	nextId   EntityId

	singletons map[reflect.Type]any
}

// NewScene creates an empty scene using registry for component lookups and
// bus for lifecycle events. A nil bus gets a private EventBus.
func NewScene(registry *ComponentRegistry, bus *EventBus) *Scene {
	if bus == nil {
		bus = NewEventBus()
	}
	return &Scene{
		registry: registry,
		bus:      bus,
		index:    intmap.New[EntityId, *Entity](256),

		singletons: make(map[reflect.Type]any),
	}
}

// Registry returns the component registry the scene was created with.
func (s *Scene) Registry() *ComponentRegistry {
	return s.registry
}

// Bus returns the event bus lifecycle events are emitted on.
func (s *Scene) Bus() *EventBus {
	return s.bus
}

// CreateEntity allocates the next id, appends a new entity and emits
// OnEntityCreated.
func (s *Scene) CreateEntity() *Entity {
	e := &Entity{
		id:    s.nextId,
		scene: s,
	}
	s.nextId++

	s.entities = append(s.entities, e)
	s.index.Put(e.id, e)

	Emit(s.bus, OnEntityCreated{Entity: e})
	return e
}

// Init marks e initialized and emits OnEntityInit. Unlike InitAll it emits even
// when e was already initialized, so callers can force a re-initialization.
func (s *Scene) Init(e *Entity) {
	if e == nil || e.destroyed {
		return
	}
	e.initialized = true
	Emit(s.bus, OnEntityInit{Entity: e})
}

// InitAll initializes every entity that has not been initialized yet. Calling
// it again emits nothing for entities it already handled. Entities created by
// OnEntityInit handlers are picked up by the same call.
func (s *Scene) InitAll() {
	for i := 0; i < len(s.entities); i++ {
		e := s.entities[i]
		if e.initialized {
			continue
		}
		e.initialized = true
		Emit(s.bus, OnEntityInit{Entity: e})
	}
}

// RemoveEntity marks e for destruction. With immediate set the entity is also
// destroyed and erased right away, emitting OnEntityDestroyed. Removing an
// entity that is already pending destruction is a no-op unless immediate is
// set.
func (s *Scene) RemoveEntity(e *Entity, immediate bool) {
	if e == nil || e.scene != s || e.destroyed {
		return
	}

	if e.pendingDestroy && !immediate {
		return
	}

	e.pendingDestroy = true
	if immediate {
		Emit(s.bus, OnEntityDestroyed{Entity: e})
		s.erase(e)
		s.release(e)
	}
}

// Cleanup destroys every entity pending destruction in one sweep and reports
// whether any were removed. SystemManager calls it once per tick before any
// system runs.
func (s *Scene) Cleanup() bool {
	removed := false
	n := 0
	for i := 0; i < len(s.entities); i++ {
		e := s.entities[i]
		if e.pendingDestroy {
			s.destroyEntity(e)
			removed = true
			continue
		}
		s.entities[n] = e
		n++
	}
	clear(s.entities[n:])
	s.entities = s.entities[:n]
	return removed
}

// Destroy releases every entity regardless of its pending state. It is used
// for scene teardown.
func (s *Scene) Destroy() {
	for i := 0; i < len(s.entities); i++ {
		s.destroyEntity(s.entities[i])
	}
	clear(s.entities)
	s.entities = s.entities[:0]
}

// Len returns the number of entities in the scene, including entities pending
// destruction.
func (s *Scene) Len() int {
	return len(s.entities)
}

// At returns the entity at position i in iteration order, or nil when i is out
// of range.
func (s *Scene) At(i int) *Entity {
	if i < 0 || i >= len(s.entities) {
		return nil
	}
	return s.entities[i]
}

// Get returns the live entity with the given id, or nil.
func (s *Scene) Get(id EntityId) *Entity {
	e, _ := s.index.Get(id)
	return e
}

func (s *Scene) erase(e *Entity) {
	if i := slices.Index(s.entities, e); i >= 0 {
		s.entities = slices.Delete(s.entities, i, i+1)
	}
}

// destroyEntity emits OnEntityDestroyed and releases e's components.
func (s *Scene) destroyEntity(e *Entity) {
	if e.destroyed {
		return
	}
	Emit(s.bus, OnEntityDestroyed{Entity: e})
	s.release(e)
}

func (s *Scene) release(e *Entity) {
	e.releaseComponents()
	e.destroyed = true
	s.index.Del(e.id)
}
