package ecs_test

import (
	"testing"

	"github.com/plus3/vengine/ecs"
	"github.com/stretchr/testify/assert"
)

func TestSceneAll(t *testing.T) {
	t.Run("insertion order", func(t *testing.T) {
		scene := newTestScene()
		for i := 0; i < 4; i++ {
			scene.CreateEntity()
		}

		assert.Equal(t, []ecs.EntityId{0, 1, 2, 3}, collectIds(scene.All(false)))
	})

	t.Run("pending entities", func(t *testing.T) {
		scene := newTestScene()
		scene.CreateEntity()
		scene.CreateEntity().Remove()
		scene.CreateEntity()

		assert.Equal(t, []ecs.EntityId{0, 2}, collectIds(scene.All(false)))
		assert.Equal(t, []ecs.EntityId{0, 1, 2}, collectIds(scene.All(true)))
	})

	t.Run("restartable", func(t *testing.T) {
		scene := newTestScene()
		scene.CreateEntity()
		scene.CreateEntity()

		seq := scene.All(false)
		assert.Equal(t, collectIds(seq), collectIds(seq))
	})

	t.Run("empty scene", func(t *testing.T) {
		scene := newTestScene()
		assert.Empty(t, collectIds(scene.All(true)))

		c := scene.Begin(false)
		assert.True(t, c.Done())
		assert.Nil(t, c.Entity())
	})

	t.Run("early break", func(t *testing.T) {
		scene := newTestScene()
		for i := 0; i < 5; i++ {
			scene.CreateEntity()
		}

		count := 0
		for range scene.All(false) {
			count++
			if count == 2 {
				break
			}
		}
		assert.Equal(t, 2, count)
	})

	t.Run("for all", func(t *testing.T) {
		scene := newTestScene()
		scene.CreateEntity()
		scene.CreateEntity().Remove()

		var ids []ecs.EntityId
		scene.ForAll(func(e *ecs.Entity) { ids = append(ids, e.Id()) }, false)
		assert.Equal(t, []ecs.EntityId{0}, ids)
	})

	t.Run("entities appended during traversal are visited", func(t *testing.T) {
		scene := newTestScene()
		scene.CreateEntity()
		scene.CreateEntity()

		var ids []ecs.EntityId
		for e := range scene.All(false) {
			ids = append(ids, e.Id())
			if e.Id() == 0 {
				scene.CreateEntity()
			}
		}
		assert.Equal(t, []ecs.EntityId{0, 1, 2}, ids)
	})
}

func TestSceneEach(t *testing.T) {
	scene := newTestScene()
	posId := idOf[Position](scene)
	velId := idOf[Velocity](scene)
	nameId := idOf[Name](scene)

	a := scene.CreateEntity()
	ecs.Add(a, Position{})
	ecs.Add(a, Velocity{})

	b := scene.CreateEntity()
	ecs.Add(b, Position{})

	c := scene.CreateEntity()
	ecs.Add(c, Position{})
	ecs.Add(c, Velocity{})
	c.Remove()

	assert.Equal(t, []ecs.EntityId{a.Id()}, collectIds(scene.Each(false, posId, velId)))
	assert.Equal(t, []ecs.EntityId{a.Id(), c.Id()}, collectIds(scene.Each(true, posId, velId)))
	assert.Equal(t, []ecs.EntityId{a.Id(), b.Id()}, collectIds(scene.Each(false, posId)))
	assert.Empty(t, collectIds(scene.Each(false, posId, nameId)))
}

func TestCursor(t *testing.T) {
	scene := newTestScene()
	velId := idOf[Velocity](scene)

	scene.CreateEntity()
	scene.CreateEntity()
	target := scene.CreateEntity()
	ecs.Add(target, Velocity{DX: 1})
	scene.CreateEntity()

	c := scene.Begin(false, velId)
	assert.False(t, c.Done(), "construction skips leading non-matching entities")
	assert.Same(t, target, c.Entity())
	assert.Equal(t, 2, c.Index())

	c.Next()
	assert.True(t, c.Done())
	assert.Nil(t, c.Entity())
}
