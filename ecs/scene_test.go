package ecs_test

import (
	"testing"

	"github.com/plus3/vengine/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lifecycleRecorder counts lifecycle events per entity id.
type lifecycleRecorder struct {
	created   map[ecs.EntityId]int
	inits     map[ecs.EntityId]int
	destroyed map[ecs.EntityId]int
	order     []string
}

func recordLifecycle(scene *ecs.Scene) *lifecycleRecorder {
	r := &lifecycleRecorder{
		created:   map[ecs.EntityId]int{},
		inits:     map[ecs.EntityId]int{},
		destroyed: map[ecs.EntityId]int{},
	}
	ecs.Subscribe(scene.Bus(), r, func(ev ecs.OnEntityCreated) {
		r.created[ev.Entity.Id()]++
		r.order = append(r.order, "created")
	})
	ecs.Subscribe(scene.Bus(), r, func(ev ecs.OnEntityInit) {
		r.inits[ev.Entity.Id()]++
		r.order = append(r.order, "init")
	})
	ecs.Subscribe(scene.Bus(), r, func(ev ecs.OnEntityDestroyed) {
		r.destroyed[ev.Entity.Id()]++
		r.order = append(r.order, "destroyed")
	})
	return r
}

func TestSceneCreateEntity(t *testing.T) {
	scene := newTestScene()
	rec := recordLifecycle(scene)

	a := scene.CreateEntity()
	b := scene.CreateEntity()
	c := scene.CreateEntity()

	assert.Equal(t, ecs.EntityId(0), a.Id())
	assert.Equal(t, ecs.EntityId(1), b.Id())
	assert.Equal(t, ecs.EntityId(2), c.Id())
	assert.Equal(t, 3, scene.Len())
	assert.Same(t, scene, a.Scene())
	assert.Same(t, b, scene.Get(1))
	assert.Same(t, c, scene.At(2))
	assert.Nil(t, scene.At(3))
	assert.Nil(t, scene.Get(99))
	assert.Equal(t, map[ecs.EntityId]int{0: 1, 1: 1, 2: 1}, rec.created)
	assert.False(t, a.Initialized())
}

func TestSceneIdsAreNotReused(t *testing.T) {
	scene := newTestScene()
	a := scene.CreateEntity()
	scene.RemoveEntity(a, true)

	b := scene.CreateEntity()
	assert.Equal(t, ecs.EntityId(1), b.Id())
	assert.Nil(t, scene.Get(0))
}

func TestSceneInit(t *testing.T) {
	t.Run("init all is idempotent", func(t *testing.T) {
		scene := newTestScene()
		rec := recordLifecycle(scene)
		scene.CreateEntity()
		scene.CreateEntity()

		scene.InitAll()
		scene.InitAll()

		assert.Equal(t, map[ecs.EntityId]int{0: 1, 1: 1}, rec.inits)
		assert.True(t, scene.Get(0).Initialized())
	})

	t.Run("init all only handles new entities", func(t *testing.T) {
		scene := newTestScene()
		rec := recordLifecycle(scene)
		scene.CreateEntity()
		scene.InitAll()
		scene.CreateEntity()
		scene.InitAll()

		assert.Equal(t, map[ecs.EntityId]int{0: 1, 1: 1}, rec.inits)
	})

	t.Run("init re-emits for initialized entity", func(t *testing.T) {
		scene := newTestScene()
		rec := recordLifecycle(scene)
		e := scene.CreateEntity()

		scene.Init(e)
		scene.Init(e)
		scene.InitAll()

		assert.Equal(t, 2, rec.inits[e.Id()])
	})

	t.Run("entities created by init handlers are initialized", func(t *testing.T) {
		scene := newTestScene()
		rec := recordLifecycle(scene)
		spawned := false
		ecs.Subscribe(scene.Bus(), "spawner", func(ev ecs.OnEntityInit) {
			if !spawned {
				spawned = true
				scene.CreateEntity()
			}
		})

		scene.CreateEntity()
		scene.InitAll()

		assert.Equal(t, map[ecs.EntityId]int{0: 1, 1: 1}, rec.inits)
	})
}

func TestSceneRemoveEntity(t *testing.T) {
	t.Run("deferred removal", func(t *testing.T) {
		scene := newTestScene()
		rec := recordLifecycle(scene)
		e := scene.CreateEntity()
		keep := scene.CreateEntity()

		scene.RemoveEntity(e, false)
		assert.True(t, e.PendingDestroy())
		assert.False(t, e.Destroyed())
		assert.Equal(t, 2, scene.Len(), "still present until cleanup")
		assert.Empty(t, rec.destroyed)

		assert.True(t, scene.Cleanup())
		assert.Equal(t, map[ecs.EntityId]int{0: 1}, rec.destroyed)
		assert.Equal(t, []ecs.EntityId{keep.Id()}, collectIds(scene.All(true)))
		assert.True(t, e.Destroyed())
		assert.Nil(t, scene.Get(e.Id()))

		assert.False(t, scene.Cleanup(), "nothing left to reap")
	})

	t.Run("removing twice destroys once", func(t *testing.T) {
		scene := newTestScene()
		rec := recordLifecycle(scene)
		e := scene.CreateEntity()

		scene.RemoveEntity(e, false)
		scene.RemoveEntity(e, false)
		scene.Cleanup()
		scene.RemoveEntity(e, false)
		scene.Cleanup()

		assert.Equal(t, 1, rec.destroyed[e.Id()])
	})

	t.Run("entity remove marks pending", func(t *testing.T) {
		scene := newTestScene()
		rec := recordLifecycle(scene)
		e := scene.CreateEntity()

		e.Remove()
		scene.Cleanup()

		assert.Equal(t, 1, rec.destroyed[e.Id()])
		assert.Equal(t, 0, scene.Len())
	})

	t.Run("immediate removal", func(t *testing.T) {
		scene := newTestScene()
		rec := recordLifecycle(scene)
		a := scene.CreateEntity()
		b := scene.CreateEntity()

		var seenLen int
		ecs.Subscribe(scene.Bus(), "probe", func(ev ecs.OnEntityDestroyed) {
			seenLen = scene.Len()
		})

		scene.RemoveEntity(a, true)

		assert.Equal(t, 2, seenLen, "destroyed fires before the entity is erased")
		assert.Equal(t, 1, rec.destroyed[a.Id()])
		assert.Equal(t, []ecs.EntityId{b.Id()}, collectIds(scene.All(true)))
		assert.False(t, scene.Cleanup())
	})

	t.Run("immediate removal of pending entity", func(t *testing.T) {
		scene := newTestScene()
		rec := recordLifecycle(scene)
		e := scene.CreateEntity()

		scene.RemoveEntity(e, false)
		scene.RemoveEntity(e, true)
		scene.Cleanup()

		assert.Equal(t, 1, rec.destroyed[e.Id()])
		assert.Equal(t, 0, scene.Len())
	})

	t.Run("foreign and nil entities are ignored", func(t *testing.T) {
		scene := newTestScene()
		other := newTestScene()
		e := other.CreateEntity()

		assert.NotPanics(t, func() {
			scene.RemoveEntity(nil, true)
			scene.RemoveEntity(e, true)
		})
		assert.False(t, e.PendingDestroy())
	})

	t.Run("components readable during destroyed event", func(t *testing.T) {
		scene := newTestScene()
		e := scene.CreateEntity()
		ecs.Add(e, Name{Value: "crate"})

		var name string
		ecs.Subscribe(scene.Bus(), "probe", func(ev ecs.OnEntityDestroyed) {
			name = ecs.Get[Name](ev.Entity).Value
		})

		e.Remove()
		scene.Cleanup()
		assert.Equal(t, "crate", name)
		assert.Nil(t, ecs.Get[Name](e))
	})
}

func TestSceneDestroy(t *testing.T) {
	scene := newTestScene()
	rec := recordLifecycle(scene)

	destroyed := 0
	for i := 0; i < 3; i++ {
		ecs.Add(scene.CreateEntity(), Resource{destroyed: &destroyed})
	}
	scene.RemoveEntity(scene.At(1), false)

	scene.Destroy()

	assert.Equal(t, 0, scene.Len())
	assert.Equal(t, 3, destroyed)
	assert.Equal(t, map[ecs.EntityId]int{0: 1, 1: 1, 2: 1}, rec.destroyed)
}

func TestSceneStats(t *testing.T) {
	scene := newTestScene()
	ecs.Add(scene.CreateEntity(), Position{})
	e := scene.CreateEntity()
	ecs.Add(e, Position{})
	ecs.Add(e, Velocity{})
	scene.InitAll()
	scene.CreateEntity().Remove()

	stats := scene.CollectStats()
	assert.Equal(t, 3, stats.EntityCount)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 2, stats.InitializedCount)
	assert.Equal(t, ecs.EntityId(3), stats.NextId)
	require.Len(t, stats.Components, scene.Registry().Len())

	counts := map[string]int{}
	for _, c := range stats.Components {
		counts[c.Name] = c.Count
	}
	assert.Equal(t, 2, counts["ecs_test.Position"])
	assert.Equal(t, 1, counts["ecs_test.Velocity"])
	assert.Equal(t, 0, counts["ecs_test.Health"])
}
