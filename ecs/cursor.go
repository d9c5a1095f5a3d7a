package ecs

import "iter"

// Cursor is a forward-only position in a Scene's entity sequence that only
// stops on entities accepted by its filter. The end condition is checked
// against the scene's current length on every step, so entities appended
// during traversal (for example by OnEntityCreated handlers) are visited.
// Any other mutation of the scene during traversal is unsupported.
type Cursor struct {
	scene          *Scene
	index          int
	includePending bool
	required       []ComponentId
}

// Begin returns a cursor positioned on the first entity holding every
// component in required, skipping entities pending destruction unless
// includePending is set. When nothing matches the cursor is already Done.
func (s *Scene) Begin(includePending bool, required ...ComponentId) Cursor {
	c := Cursor{
		scene:          s,
		index:          0,
		includePending: includePending,
		required:       required,
	}
	c.skip()
	return c
}

// Done reports whether the cursor has moved past the last entity.
func (c *Cursor) Done() bool {
	return c.index >= c.scene.Len()
}

// Entity returns the entity under the cursor, or nil once Done.
func (c *Cursor) Entity() *Entity {
	return c.scene.At(c.index)
}

// Index returns the cursor's position in the scene sequence.
func (c *Cursor) Index() int {
	return c.index
}

// Next advances to the following matching entity.
func (c *Cursor) Next() {
	c.index++
	c.skip()
}

func (c *Cursor) skip() {
	for c.index < c.scene.Len() && !c.accepts(c.scene.At(c.index)) {
		c.index++
	}
}

func (c *Cursor) accepts(e *Entity) bool {
	if e == nil {
		return false
	}
	if e.pendingDestroy && !c.includePending {
		return false
	}
	return e.HasAll(c.required...)
}

// All returns a lazy sequence over every entity in insertion order. Entities
// pending destruction are skipped unless includePending is set. The sequence
// can be ranged over any number of times.
func (s *Scene) All(includePending bool) iter.Seq[*Entity] {
	return s.Each(includePending)
}

// Each returns a lazy sequence over the entities holding every component in
// required.
func (s *Scene) Each(includePending bool, required ...ComponentId) iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for c := s.Begin(includePending, required...); !c.Done(); c.Next() {
			if !yield(c.Entity()) {
				return
			}
		}
	}
}

// ForAll calls fn for every entity yielded by All.
func (s *Scene) ForAll(fn func(*Entity), includePending bool) {
	for e := range s.All(includePending) {
		fn(e)
	}
}
