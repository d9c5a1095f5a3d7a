package ecs

// Commands provides a buffer for deferred scene operations that are executed
// after every system has ticked. Systems use it to remove entities while they
// are iterating the scene.
type Commands struct {
	removes []*Entity
	defers  []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Remove queues a non-immediate removal of e.
func (c *Commands) Remove(e *Entity) {
	c.removes = append(c.removes, e)
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.removes) + len(c.defers)
}

// Flush applies all queued commands to scene, resetting the buffer state.
// Removals run first, then deferred functions.
func (c *Commands) Flush(scene *Scene) {
	for _, e := range c.removes {
		scene.RemoveEntity(e, false)
	}

	for _, df := range c.defers {
		df.fn()
	}

	clear(c.removes)
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
