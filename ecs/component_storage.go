package ecs

const (
	blockSize = 64
)

// componentStorage stores components of a specific type `T` in fixed-size
// blocks. Blocks are allocated individually so pointers handed out by Get stay
// valid while the storage grows.
type componentStorage[T any] struct {
	blocks    []*[blockSize]T
	filled    [][blockSize]bool
	freeSlots []int
	nextIndex int
	count     int
}

// Append adds a component to storage and returns its index and stored address.
func (cs *componentStorage[T]) Append(item T) (int, *T) {
	var index int
	if len(cs.freeSlots) > 0 {
		index = cs.freeSlots[len(cs.freeSlots)-1]
		cs.freeSlots = cs.freeSlots[:len(cs.freeSlots)-1]
	} else {
		index = cs.nextIndex
		cs.nextIndex++
	}

	blockIdx := index / blockSize
	slotIdx := index % blockSize

	if blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, new([blockSize]T))
		cs.filled = append(cs.filled, [blockSize]bool{})
	}

	cs.blocks[blockIdx][slotIdx] = item
	cs.filled[blockIdx][slotIdx] = true
	cs.count++
	return index, &cs.blocks[blockIdx][slotIdx]
}

// At returns a typed pointer to the component at the given index, or nil.
func (cs *componentStorage[T]) At(index int) *T {
	if !cs.Has(index) {
		return nil
	}
	return &cs.blocks[index/blockSize][index%blockSize]
}

// Get returns a pointer to the component at the given index.
func (cs *componentStorage[T]) Get(index int) any {
	ptr := cs.At(index)
	if ptr == nil {
		return nil
	}
	return ptr
}

// Has checks if a component exists at the given index.
func (cs *componentStorage[T]) Has(index int) bool {
	if index < 0 {
		return false
	}

	blockIdx := index / blockSize
	if blockIdx >= len(cs.blocks) {
		return false
	}

	return cs.filled[blockIdx][index%blockSize]
}

// Release destroys the component at index and marks its slot as empty.
func (cs *componentStorage[T]) Release(index int) {
	ptr := cs.At(index)
	if ptr == nil {
		return
	}

	if d, ok := any(ptr).(Destroyer); ok {
		d.Destroy()
	}

	var zero T
	*ptr = zero
	cs.filled[index/blockSize][index%blockSize] = false
	cs.freeSlots = append(cs.freeSlots, index)
	cs.count--
}

// Len returns the number of live components.
func (cs *componentStorage[T]) Len() int {
	return cs.count
}
