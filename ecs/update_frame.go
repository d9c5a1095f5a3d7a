package ecs

type UpdateFrame struct {
	DeltaTime float64
	// Frame counts ticks since the manager was created, starting at 1.
	Frame uint64
	Scene *Scene
	// Commands are flushed after the last system has ticked.
	Commands *Commands
}

func newUpdateFrame(dt float64, frame uint64, scene *Scene) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Frame:     frame,
		Scene:     scene,
		Commands:  newCommands(),
	}
}
