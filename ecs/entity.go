package ecs

// EntityId identifies an entity within its Scene. Ids are assigned in creation
// order and never reused during the lifetime of a Scene.
type EntityId uint32

// Entity is an identity plus the set of components attached to it. Entities are
// owned by the Scene that created them; the pointer stays valid until the Scene
// destroys the entity during Cleanup, Destroy or an immediate RemoveEntity.
type Entity struct {
	id    EntityId
	scene *Scene

	// slots holds storage index+1 per ComponentId; 0 means absent.
	slots []int32

	initialized    bool
	pendingDestroy bool
	destroyed      bool
}

// Id returns the entity's scene-unique id.
func (e *Entity) Id() EntityId {
	return e.id
}

// Scene returns the owning scene.
func (e *Entity) Scene() *Scene {
	return e.scene
}

// Initialized reports whether the entity has been initialized by Scene.Init or
// Scene.InitAll.
func (e *Entity) Initialized() bool {
	return e.initialized
}

// PendingDestroy reports whether the entity has been marked for removal.
func (e *Entity) PendingDestroy() bool {
	return e.pendingDestroy
}

// Destroyed reports whether the scene has already released the entity.
func (e *Entity) Destroyed() bool {
	return e.destroyed
}

// Remove marks the entity for destruction. The entity stays in its scene until
// the next Scene.Cleanup sweep.
func (e *Entity) Remove() {
	e.pendingDestroy = true
}

// Has reports whether a component with the given id is attached.
func (e *Entity) Has(id ComponentId) bool {
	return e.slot(id) >= 0
}

// HasAll reports whether every listed component is attached. An empty list
// matches every entity.
func (e *Entity) HasAll(ids ...ComponentId) bool {
	for _, id := range ids {
		if e.slot(id) < 0 {
			return false
		}
	}
	return true
}

// ComponentIds returns the ids of every attached component in id order.
func (e *Entity) ComponentIds() []ComponentId {
	ids := make([]ComponentId, 0, len(e.slots))
	for id, slot := range e.slots {
		if slot != 0 {
			ids = append(ids, ComponentId(id))
		}
	}
	return ids
}

// Component returns the component stored under id as a pointer boxed in an any,
// or nil when absent.
func (e *Entity) Component(id ComponentId) any {
	slot := e.slot(id)
	if slot < 0 {
		return nil
	}
	return e.scene.storages[id].Get(slot)
}

func (e *Entity) slot(id ComponentId) int {
	if int(id) >= len(e.slots) {
		return -1
	}
	return int(e.slots[id]) - 1
}

func (e *Entity) setSlot(id ComponentId, index int) {
	if int(id) >= len(e.slots) {
		grown := make([]int32, int(id)+1)
		copy(grown, e.slots)
		e.slots = grown
	}
	e.slots[id] = int32(index + 1)
}

func (e *Entity) clearSlot(id ComponentId) {
	if int(id) < len(e.slots) {
		e.slots[id] = 0
	}
}

// releaseComponents destroys every attached component exactly once.
func (e *Entity) releaseComponents() {
	for id, slot := range e.slots {
		if slot == 0 {
			continue
		}
		e.scene.storages[id].Release(int(slot) - 1)
		e.slots[id] = 0
	}
}
