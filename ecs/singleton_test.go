package ecs_test

import (
	"testing"

	"github.com/plus3/vengine/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type GameTime struct {
	Elapsed float64
}

type clockSystem struct {
	Clock ecs.Singleton[GameTime]
}

func (s *clockSystem) Init(*ecs.Scene) error { return nil }
func (s *clockSystem) Tick(frame *ecs.UpdateFrame) error {
	s.Clock.Get().Elapsed += frame.DeltaTime
	return nil
}
func (s *clockSystem) Shutdown() {}

func TestSingleton(t *testing.T) {
	t.Run("initializer", func(t *testing.T) {
		scene := newTestScene()
		s := ecs.NewSingleton(scene, GameTime{Elapsed: 5})

		require.True(t, s.Exists())
		assert.Equal(t, 5.0, s.Get().Elapsed)

		again := ecs.NewSingleton[GameTime](scene)
		assert.Same(t, s.Get(), again.Get(), "existing value is kept")
	})

	t.Run("set replaces value in place", func(t *testing.T) {
		scene := newTestScene()
		s := ecs.NewSingleton[GameTime](scene)
		ptr := s.Get()

		ecs.SetSingleton(scene, GameTime{Elapsed: 9})
		assert.Equal(t, 9.0, ptr.Elapsed)
	})

	t.Run("system field", func(t *testing.T) {
		scene := newTestScene()
		ecs.SetSingleton(scene, GameTime{})
		manager := ecs.NewSystemManager(scene)
		require.NoError(t, manager.Register(&clockSystem{}))

		require.NoError(t, manager.Tick(0.25))
		require.NoError(t, manager.Tick(0.25))

		assert.Equal(t, 0.5, ecs.NewSingleton[GameTime](scene).Get().Elapsed)
	})

	t.Run("missing", func(t *testing.T) {
		var s ecs.Singleton[GameTime]
		assert.False(t, s.Exists())

		s.Init(newTestScene())
		assert.Nil(t, s.Get())
	})
}
