package ecs_test

import (
	"fmt"

	"github.com/plus3/vengine/ecs"
)

// ExampleView demonstrates using Views for flexible entity queries.
// Unlike Queries, Views don't require a SystemManager and perform iteration
// on-demand, making them ideal for one-off queries, tools, or event handlers.
func ExampleView() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	scene := ecs.NewScene(registry, nil)

	player := scene.CreateEntity()
	ecs.Add(player, Position{X: 10, Y: 20})
	ecs.Add(player, Velocity{DX: 1, DY: 0})
	ecs.Add(player, Health{Current: 100, Max: 100})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](scene)

	if item := view.Get(player); item != nil {
		fmt.Printf("Player at (%.0f, %.0f) moving (%.0f, %.0f)\n",
			item.Position.X, item.Position.Y, item.Velocity.DX, item.Velocity.DY)
	}

	// Output:
	// Player at (10, 20) moving (1, 0)
}

// ExampleView_Iter shows iterating over all entities matching a view, with an
// optional field that is nil for entities lacking the component.
func ExampleView_Iter() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Health](registry)
	scene := ecs.NewScene(registry, nil)

	a := scene.CreateEntity()
	ecs.Add(a, Position{X: 0, Y: 0})
	b := scene.CreateEntity()
	ecs.Add(b, Position{X: 10, Y: 10})
	ecs.Add(b, Health{Current: 50, Max: 100})

	view := ecs.NewView[struct {
		Pos    *Position
		Health *Health `ecs:"optional"`
	}](scene)

	for e, item := range view.Iter() {
		if item.Health != nil {
			fmt.Printf("entity %d at (%.0f, %.0f) health %d\n", e.Id(), item.Pos.X, item.Pos.Y, item.Health.Current)
		} else {
			fmt.Printf("entity %d at (%.0f, %.0f)\n", e.Id(), item.Pos.X, item.Pos.Y)
		}
	}

	// Output:
	// entity 0 at (0, 0)
	// entity 1 at (10, 10) health 50
}
