package ecs_test

import (
	"testing"

	"github.com/plus3/vengine/ecs"
	"github.com/stretchr/testify/assert"
)

func TestQuery(t *testing.T) {
	t.Run("panics before execute", func(t *testing.T) {
		q := ecs.NewQuery[struct{ *Position }](newTestScene())
		assert.Panics(t, func() { q.Iter() })
		assert.Panics(t, func() { q.Values() })
	})

	t.Run("caches until next execute", func(t *testing.T) {
		scene := newTestScene()
		q := ecs.NewQuery[struct{ *Position }](scene)
		ecs.Add(scene.CreateEntity(), Position{X: 1})

		q.Execute()
		ecs.Add(scene.CreateEntity(), Position{X: 2})
		assert.Equal(t, 1, q.Len())

		q.Execute()
		assert.Equal(t, 2, q.Len())

		var xs []float32
		for e, item := range q.Iter() {
			assert.Same(t, ecs.Get[Position](e), item.Position)
			xs = append(xs, item.Position.X)
		}
		assert.Equal(t, []float32{1, 2}, xs)
	})

	t.Run("skips pending entities", func(t *testing.T) {
		scene := newTestScene()
		q := ecs.NewQuery[struct{ *Position }](scene)
		ecs.Add(scene.CreateEntity(), Position{})
		e := scene.CreateEntity()
		ecs.Add(e, Position{})
		e.Remove()

		q.Execute()
		assert.Equal(t, 1, q.Len())
	})

	t.Run("init rebinds scene", func(t *testing.T) {
		first := newTestScene()
		second := newTestScene()
		ecs.Add(second.CreateEntity(), Position{})

		q := ecs.NewQuery[struct{ *Position }](first)
		q.Init(second)
		assert.Panics(t, func() { q.Iter() }, "init invalidates the cache")

		q.Execute()
		assert.Equal(t, 1, q.Len())
	})
}
