package ecs

import "reflect"

// Singleton provides access to a single instance of T that belongs to the
// scene rather than to an entity. Use it for state shared between systems,
// such as sampled input.
type Singleton[T any] struct {
	scene *Scene
	ptr   *T
}

// NewSingleton creates a new Singleton accessor for the given scene.
// If the scene holds no T yet it is created with the initializer value, or
// the zero value when none is given. This guarantees the singleton exists
// after the call.
func NewSingleton[T any](scene *Scene, initializer ...T) *Singleton[T] {
	s := &Singleton[T]{scene: scene}
	if s.lookup() == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		SetSingleton(scene, value)
	}
	s.ptr = s.lookup()
	return s
}

// SetSingleton stores value as the scene's instance of T, replacing any
// previous one. Accessors created earlier observe the new value.
func SetSingleton[T any](scene *Scene, value T) *T {
	t := reflect.TypeFor[T]()
	if existing, ok := scene.singletons[t]; ok {
		ptr := existing.(*T)
		*ptr = value
		return ptr
	}
	ptr := new(T)
	*ptr = value
	scene.singletons[t] = ptr
	return ptr
}

// Init initializes the Singleton with a scene reference.
// This is called automatically by the SystemManager during system registration.
func (s *Singleton[T]) Init(scene *Scene) {
	s.scene = scene
	s.ptr = s.lookup()
}

// Get returns a pointer to the singleton value, or nil if the scene has none.
func (s *Singleton[T]) Get() *T {
	if s.ptr == nil {
		s.ptr = s.lookup()
	}
	return s.ptr
}

// Exists returns true if the scene holds a value of type T.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

func (s *Singleton[T]) lookup() *T {
	if s.scene == nil {
		return nil
	}
	existing, ok := s.scene.singletons[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return existing.(*T)
}
