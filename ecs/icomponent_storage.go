package ecs

// iComponentStorage is an interface for a type-erased component storage.
type iComponentStorage interface {
	// Get returns a pointer to the component at index boxed in an any, or nil.
	Get(index int) any
	Has(index int) bool
	// Release runs the component's Destroy hook, if any, and frees the slot.
	Release(index int)
	Len() int
}

// Destroyer is implemented by components that own resources which must be
// released when the component leaves its entity. Destroy is called exactly once
// per stored instance, through a pointer to the stored value.
type Destroyer interface {
	Destroy()
}
