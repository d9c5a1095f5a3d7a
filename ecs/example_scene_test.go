package ecs_test

import (
	"fmt"

	"github.com/plus3/vengine/ecs"
)

// ExampleScene walks through an entity's lifecycle. Entities are created,
// initialized, marked for removal and finally reaped by Cleanup, and every
// step is announced on the scene's event bus.
func ExampleScene() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	scene := ecs.NewScene(registry, nil)

	ecs.Subscribe(scene.Bus(), "logger", func(ev ecs.OnEntityInit) {
		fmt.Printf("init %d\n", ev.Entity.Id())
	})
	ecs.Subscribe(scene.Bus(), "logger", func(ev ecs.OnEntityDestroyed) {
		pos := ecs.Get[Position](ev.Entity)
		fmt.Printf("destroyed %d at (%.0f, %.0f)\n", ev.Entity.Id(), pos.X, pos.Y)
	})

	player := scene.CreateEntity()
	ecs.Add(player, Position{X: 3, Y: 4})
	scene.InitAll()

	player.Remove()
	scene.Cleanup()
	fmt.Println("entities left:", scene.Len())

	// Output:
	// init 0
	// destroyed 0 at (3, 4)
	// entities left: 0
}

// ExampleScene_Each filters the scene by component ids.
func ExampleScene_Each() {
	registry := ecs.NewComponentRegistry()
	posId := ecs.RegisterComponent[Position](registry)
	velId := ecs.RegisterComponent[Velocity](registry)
	scene := ecs.NewScene(registry, nil)

	for i := 0; i < 4; i++ {
		e := scene.CreateEntity()
		ecs.Add(e, Position{X: float32(i)})
		if i%2 == 1 {
			ecs.Add(e, Velocity{DX: 1})
		}
	}

	for e := range scene.Each(false, posId, velId) {
		fmt.Println("moving entity", e.Id())
	}

	// Output:
	// moving entity 1
	// moving entity 3
}
