package script_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/vengine/ecs"
	"github.com/plus3/vengine/graphics"
	"github.com/plus3/vengine/platform"
	"github.com/plus3/vengine/script"
	"github.com/stretchr/testify/assert"
	lua "github.com/yuin/gopher-lua"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*ecs.Scene, *ecs.SystemManager) {
	t.Helper()
	registry := ecs.NewComponentRegistry()
	graphics.RegisterComponents(registry)
	scene := ecs.NewScene(registry, nil)
	return scene, ecs.NewSystemManager(scene)
}

const spawner = `
spawned = {}

function tick(dt)
  if key_pressed("space") then
    local id = spawn("cube.obj", entity_count(), 0, 0)
    table.insert(spawned, id)
  end
  if key_pressed("backspace") and #spawned > 0 then
    remove(table.remove(spawned, 1))
  end
end
`

func TestSpawnAndRemove(t *testing.T) {
	scene, manager := newManager(t)
	input := platform.NewHeadlessWindow(1, 1)
	sys := script.NewSystem("spawner", spawner, input, nil)
	require.NoError(t, manager.Register(sys))

	require.NoError(t, manager.Tick(0.016))
	assert.Equal(t, 0, scene.Len())

	input.Press("space")
	require.NoError(t, manager.Tick(0.016))
	require.NoError(t, manager.Tick(0.016))
	require.Equal(t, 2, scene.Len())

	second := scene.At(1)
	assert.True(t, second.Initialized())
	assert.Equal(t, "cube.obj", ecs.Get[graphics.Graphics](second).Model)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, ecs.Get[graphics.Transform](second).Position)

	input.Release("space")
	input.Press("backspace")
	first := scene.At(0)
	require.NoError(t, manager.Tick(0.016))
	assert.True(t, first.PendingDestroy())

	// Cleanup runs at the start of the next tick.
	input.Release("backspace")
	require.NoError(t, manager.Tick(0.016))
	assert.Equal(t, 1, scene.Len())
	assert.Nil(t, scene.Get(first.Id()))
	assert.Equal(t, uint64(5), sys.Ticks())

	manager.Shutdown()
}

func TestRemoveUnknownEntity(t *testing.T) {
	_, manager := newManager(t)
	sys := script.NewSystem("remove", `
function tick(dt)
  if remove(42) then
    error("removed an entity that does not exist")
  end
end
`, nil, nil)
	require.NoError(t, manager.Register(sys))
	require.NoError(t, manager.Tick(0.016))
	manager.Shutdown()
}

func TestDeltaTime(t *testing.T) {
	_, manager := newManager(t)
	sys := script.NewSystem("dt", `
function tick(dt)
  if dt ~= 0.5 then
    error("unexpected dt " .. dt)
  end
end
`, nil, nil)
	require.NoError(t, manager.Register(sys))
	require.NoError(t, manager.Tick(0.5))

	err := manager.Tick(0.25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected dt 0.25")
	manager.Shutdown()
}

func TestScriptErrors(t *testing.T) {
	t.Run("syntax error fails registration", func(t *testing.T) {
		_, manager := newManager(t)
		err := manager.Register(script.NewSystem("broken", "function tick(", nil, nil))
		assert.ErrorContains(t, err, "broken")
		assert.Empty(t, manager.Systems())
	})

	t.Run("script without tick", func(t *testing.T) {
		scene, manager := newManager(t)
		sys := script.NewSystem("setup", `spawn("plane.obj")`, nil, nil)
		require.NoError(t, manager.Register(sys))
		require.NoError(t, manager.Tick(0.016))
		assert.Equal(t, 1, scene.Len())
		assert.Zero(t, sys.Ticks())
		manager.Shutdown()
	})

	t.Run("bad argument", func(t *testing.T) {
		_, manager := newManager(t)
		sys := script.NewSystem("args", `function tick(dt) spawn() end`, nil, nil)
		require.NoError(t, manager.Register(sys))
		assert.Error(t, manager.Tick(0.016))
		manager.Shutdown()
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.lua")
	require.NoError(t, os.WriteFile(path, []byte(`log("hello")`), 0o644))

	sys, err := script.LoadFile(path, nil, nil)
	require.NoError(t, err)
	_, manager := newManager(t)
	require.NoError(t, manager.Register(sys))
	manager.Shutdown()

	_, err = script.LoadFile(filepath.Join(t.TempDir(), "missing.lua"), nil, nil)
	assert.Error(t, err)
}

func TestInputBindings(t *testing.T) {
	_, manager := newManager(t)
	input := platform.NewHeadlessWindow(1, 1)
	sys := script.NewSystem("input", `
seen = {}
function tick(dt)
  local x, y = mouse_position()
  table.insert(seen, table.concat({
    tostring(key_pressed("a")),
    tostring(key_just_pressed("a")),
    tostring(key_just_released("a")),
    tostring(mouse_pressed("right")),
    x .. "," .. y,
  }, " "))
end
`, input, nil)
	require.NoError(t, manager.Register(sys))

	step := func() {
		require.NoError(t, manager.Tick(0.016))
		input.EndFrame()
	}

	input.Press("A")
	input.PressButton("right")
	input.MoveCursor(10, 20)
	step()
	step()
	input.Release("a")
	input.ReleaseButton("right")
	step()

	seen := sys.Global("seen").(*lua.LTable)
	require.Equal(t, 3, seen.Len())
	assert.Equal(t, "true true false true 10,20", seen.RawGetInt(1).String())
	assert.Equal(t, "true false false true 10,20", seen.RawGetInt(2).String())
	assert.Equal(t, "false false true false 10,20", seen.RawGetInt(3).String())
	manager.Shutdown()
}

func TestRemoveIsDeferred(t *testing.T) {
	scene, manager := newManager(t)
	sys := script.NewSystem("twice", `
id = spawn("cube.obj")
function tick(dt)
  first = remove(id)
  second = remove(id)
  alive = entity_count()
end
`, nil, nil)
	require.NoError(t, manager.Register(sys))
	e := scene.At(0)
	require.NotNil(t, e)

	other := &pendingObserver{target: e}
	require.NoError(t, manager.Register(other))
	require.NoError(t, manager.Tick(0.016))

	assert.False(t, other.sawPending, "removal is applied after every system ticked")
	assert.True(t, e.PendingDestroy())
	assert.Equal(t, lua.LTrue, sys.Global("first"))
	assert.Equal(t, lua.LFalse, sys.Global("second"))
	assert.Equal(t, lua.LNumber(0), sys.Global("alive"))
	manager.Shutdown()
}

// pendingObserver records whether target was already marked for removal when
// it ticked.
type pendingObserver struct {
	target     *ecs.Entity
	sawPending bool
}

func (o *pendingObserver) Init(*ecs.Scene) error { return nil }
func (o *pendingObserver) Tick(*ecs.UpdateFrame) error {
	o.sawPending = o.sawPending || o.target.PendingDestroy()
	return nil
}
func (o *pendingObserver) Shutdown() {}

func TestSampleScript(t *testing.T) {
	scene, manager := newManager(t)
	input := platform.NewHeadlessWindow(1, 1)
	sys, err := script.LoadFile("../scripts/spawn.lua", input, nil)
	require.NoError(t, err)
	require.NoError(t, manager.Register(sys))

	step := func() {
		require.NoError(t, manager.Tick(0.016))
		input.EndFrame()
	}

	// One spawn per key press, not per frame held.
	input.Press("space")
	step()
	step()
	assert.Equal(t, 1, scene.Len())
	input.Release("space")
	input.Press("space")
	step()
	assert.Equal(t, 2, scene.Len())
	input.Release("space")

	// Same for clicks.
	input.PressButton("left")
	step()
	step()
	input.ReleaseButton("left")
	step()
	input.PressButton("left")
	step()
	assert.Equal(t, 4, scene.Len())

	first := scene.At(0)
	input.Press("backspace")
	step()
	assert.True(t, first.PendingDestroy())
	step()
	assert.Equal(t, 3, scene.Len(), "removed entities are reaped on the next tick")
	assert.Nil(t, scene.Get(first.Id()))
	manager.Shutdown()
}
