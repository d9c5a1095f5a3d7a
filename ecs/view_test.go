package ecs_test

import (
	"testing"

	"github.com/plus3/vengine/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	scene := newTestScene()
	e := scene.CreateEntity()
	ecs.Add(e, Position{X: 1, Y: 2})
	ecs.Add(e, Score(32))

	view := ecs.NewView[struct {
		*Position
		*Score
	}](scene)

	item := view.Get(e)
	require.NotNil(t, item)
	assert.Equal(t, Score(32), *item.Score)
	assert.Equal(t, float32(1), item.Position.X)
	assert.Equal(t, float32(2), item.Position.Y)
}

func TestViewMissingComponent(t *testing.T) {
	scene := newTestScene()
	// Entity only has Position, not Velocity
	e := scene.CreateEntity()
	ecs.Add(e, Position{X: 5, Y: 10})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](scene)

	assert.Nil(t, view.Get(e))

	var result struct {
		*Position
		*Velocity
	}
	assert.False(t, view.Fill(e, &result))
	assert.Nil(t, view.Get(nil))
}

func TestViewComponentMutation(t *testing.T) {
	scene := newTestScene()
	e := scene.CreateEntity()
	ecs.Add(e, Position{X: 1, Y: 1})
	ecs.Add(e, Velocity{DX: 2, DY: 3})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](scene)

	for _, item := range view.Iter() {
		item.Position.X += item.Velocity.DX
		item.Position.Y += item.Velocity.DY
	}

	assert.Equal(t, Position{X: 3, Y: 4}, *ecs.Get[Position](e))
}

func TestViewOptionalFields(t *testing.T) {
	scene := newTestScene()
	named := scene.CreateEntity()
	ecs.Add(named, Position{X: 1})
	ecs.Add(named, Name{Value: "crate"})

	plain := scene.CreateEntity()
	ecs.Add(plain, Position{X: 2})

	view := ecs.NewView[struct {
		Pos  *Position
		Name *Name `ecs:"optional"`
	}](scene)

	var names []string
	for e, item := range view.Iter() {
		require.NotNil(t, item.Pos)
		if e == plain {
			assert.Nil(t, item.Name)
			names = append(names, "")
			continue
		}
		names = append(names, item.Name.Value)
	}
	assert.Equal(t, []string{"crate", ""}, names)
	assert.Equal(t, []ecs.ComponentId{idOf[Position](scene)}, view.Required())
}

func TestViewIter(t *testing.T) {
	scene := newTestScene()
	for i := 0; i < 5; i++ {
		e := scene.CreateEntity()
		ecs.Add(e, Position{X: float32(i)})
		if i%2 == 0 {
			ecs.Add(e, Velocity{})
		}
	}
	scene.At(4).Remove()

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](scene)

	assert.Equal(t, []ecs.EntityId{0, 2}, collectIds(view.Entities()))

	var xs []float32
	for item := range view.Values() {
		xs = append(xs, item.Position.X)
	}
	assert.Equal(t, []float32{0, 2}, xs)

	view.IncludePending(true)
	assert.Equal(t, []ecs.EntityId{0, 2, 4}, collectIds(view.Entities()))

	count := 0
	view.ForEach(func(e *ecs.Entity, item struct {
		*Position
		*Velocity
	}) {
		count++
	})
	assert.Equal(t, 3, count)
}

func TestViewPanics(t *testing.T) {
	scene := newTestScene()

	t.Run("non struct", func(t *testing.T) {
		assert.Panics(t, func() { ecs.NewView[int](scene) })
	})

	t.Run("non pointer field", func(t *testing.T) {
		assert.Panics(t, func() {
			ecs.NewView[struct{ Position }](scene)
		})
	})

	t.Run("unregistered component", func(t *testing.T) {
		assert.Panics(t, func() {
			ecs.NewView[struct{ *string }](scene)
		})
	})

	t.Run("invalid tag", func(t *testing.T) {
		assert.Panics(t, func() {
			ecs.NewView[struct {
				Pos *Position `ecs:"maybe"`
			}](scene)
		})
	})
}
