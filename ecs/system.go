package ecs

// System represents a behavior that operates on the entities of a Scene.
// User-defined systems implement this interface and can include Query fields
// for accessing entities, as well as custom state fields that persist between
// ticks. Query fields are initialized by the SystemManager before Init runs.
type System interface {
	// Init is called once when the system is registered.
	Init(scene *Scene) error
	// Tick is called once per SystemManager.Tick while the system is enabled.
	Tick(frame *UpdateFrame) error
	// Shutdown is called when the system is unregistered or the manager shuts down.
	Shutdown()
}
