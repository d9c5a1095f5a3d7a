package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View represents a query for entities with a specific combination of components
// The type T should be a struct with embedded pointer fields for each component type
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
type View[T any] struct {
	scene          *Scene
	ids            []ComponentId
	optional       []bool
	fieldOffset    []uintptr
	required       []ComponentId
	includePending bool
}

// NewView creates a new view for the given struct type
// The struct T should have embedded or named fields that are pointers to component types
// Embedded fields are always required
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
func NewView[T any](scene *Scene) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	ids := make([]ComponentId, 0, structType.NumField())
	optional := make([]bool, 0, structType.NumField())
	fieldOffset := make([]uintptr, 0, structType.NumField())
	required := make([]ComponentId, 0, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		id := scene.registry.mustLookup(fieldType.Elem())
		ids = append(ids, id)
		fieldOffset = append(fieldOffset, field.Offset)

		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}
		optional = append(optional, isOptional)
		if !isOptional {
			required = append(required, id)
		}
	}

	return &View[T]{
		scene:       scene,
		ids:         ids,
		optional:    optional,
		fieldOffset: fieldOffset,
		required:    required,
	}
}

// IncludePending makes the view also yield entities pending destruction.
func (v *View[T]) IncludePending(include bool) *View[T] {
	v.includePending = include
	return v
}

// Required returns the ids of the components an entity must hold to match.
func (v *View[T]) Required() []ComponentId {
	return v.required
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(e *Entity, ptr *T) bool {
	if e == nil || e.destroyed {
		return false
	}

	// Use unsafe.Pointer to directly access the struct's memory
	// This avoids reflection overhead in the hot path
	structPtr := unsafe.Pointer(ptr)

	for i, id := range v.ids {
		component := e.Component(id)

		// Calculate the address of the field using the pre-computed offset
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])

		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		// The boxed value is a *Component; keep its data word.
		componentPtr := (*eface)(unsafe.Pointer(&component)).data
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}

	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(e *Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// Iter returns an iterator over all entities that have all the required components for this view
// The iterator yields (*Entity, T) pairs in scene order where T is the populated view struct
// Optional components are set to nil if not present
func (v *View[T]) Iter() iter.Seq2[*Entity, T] {
	return func(yield func(*Entity, T) bool) {
		var result T
		for c := v.scene.Begin(v.includePending, v.required...); !c.Done(); c.Next() {
			e := c.Entity()
			if !v.Fill(e, &result) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// Entities returns an iterator over the matching entities only
func (v *View[T]) Entities() iter.Seq[*Entity] {
	return v.scene.Each(v.includePending, v.required...)
}

// Values returns an iterator over just the view structs (without entities)
// This is useful when you only care about the component data, not which entity it belongs to
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// ForEach calls fn for every entity matched by the view.
func (v *View[T]) ForEach(fn func(*Entity, T)) {
	for e, value := range v.Iter() {
		fn(e, value)
	}
}

// eface mirrors the runtime layout of an empty interface.
type eface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}
