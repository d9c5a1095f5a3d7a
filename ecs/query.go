package ecs

import "iter"

// Query wraps a View with a per-tick cache of matching entities.
// The SystemManager calls Execute once before each tick so systems can iterate
// the result any number of times without rescanning the scene.
type Query[T any] struct {
	view  *View[T]
	scene *Scene

	cachedEntities   []*Entity
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a new Query over scene.
func NewQuery[T any](scene *Scene) *Query[T] {
	return &Query[T]{
		view:  NewView[T](scene),
		scene: scene,
	}
}

// Init initializes or re-initializes the Query with a scene.
// Called by the SystemManager during system registration.
func (q *Query[T]) Init(scene *Scene) {
	q.view = NewView[T](scene)
	q.scene = scene
	q.cacheValid = false
}

// Execute builds the entity and component caches for this tick.
// Called automatically by the SystemManager before systems run.
func (q *Query[T]) Execute() {
	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for e, item := range q.view.Iter() {
		q.cachedEntities = append(q.cachedEntities, e)
		q.cachedComponents = append(q.cachedComponents, item)
	}

	q.cacheValid = true
}

// Len returns the number of cached matches.
func (q *Query[T]) Len() int {
	return len(q.cachedEntities)
}

// Iter returns an iterator over entities and component data.
// Panics if Execute() has not been called this tick.
func (q *Query[T]) Iter() iter.Seq2[*Entity, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(*Entity, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
// Panics if Execute() has not been called this tick.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}
