// Package script runs Lua game logic against a scene. A script defines a
// global tick(dt) function that is called once per frame and uses the
// bindings below to inspect input and add or remove entities:
//
//	key_pressed(name)       -> bool
//	key_just_pressed(name)  -> bool
//	key_just_released(name) -> bool
//	mouse_pressed(button)   -> bool
//	mouse_position()        -> x, y
//	spawn(model, x, y, z)   -> entity id
//	remove(id)              -> bool
//	entity_count()          -> number
//	log(message)
//
// Entities spawned by a script are created and initialized immediately so
// later systems see them in the same frame. Removals are queued on the
// frame's commands and applied after every system has ticked.
package script

import (
	"fmt"
	"os"

	"github.com/plus3/vengine/ecs"
	"github.com/plus3/vengine/graphics"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Input reports keyboard and mouse state sampled for the current frame.
type Input interface {
	KeyPressed(name string) bool
	KeyJustPressed(name string) bool
	KeyJustReleased(name string) bool
	MouseButtonPressed(name string) bool
	CursorPosition() (x, y int)
}

// System is an ecs.System backed by a single Lua VM. It must only be used from
// the frame loop goroutine.
type System struct {
	name   string
	source string
	input  Input
	log    *zap.Logger

	vm       *lua.LState
	scene    *ecs.Scene
	frame    *ecs.UpdateFrame
	removing map[ecs.EntityId]bool
	ticks    uint64
}

// NewSystem creates a system running source. name identifies the script in
// errors and logs.
func NewSystem(name, source string, input Input, log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	return &System{
		name:   name,
		source: source,
		input:  input,
		log:    log.With(zap.String("script", name)),
	}
}

// LoadFile creates a system running the script at path.
func LoadFile(path string, input Input, log *zap.Logger) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	return NewSystem(path, string(data), input, log), nil
}

func (s *System) Init(scene *ecs.Scene) error {
	s.scene = scene
	s.removing = make(map[ecs.EntityId]bool)
	s.vm = lua.NewState()

	s.vm.SetGlobal("key_pressed", s.vm.NewFunction(s.keyQuery(Input.KeyPressed)))
	s.vm.SetGlobal("key_just_pressed", s.vm.NewFunction(s.keyQuery(Input.KeyJustPressed)))
	s.vm.SetGlobal("key_just_released", s.vm.NewFunction(s.keyQuery(Input.KeyJustReleased)))
	s.vm.SetGlobal("mouse_pressed", s.vm.NewFunction(s.keyQuery(Input.MouseButtonPressed)))
	s.vm.SetGlobal("mouse_position", s.vm.NewFunction(s.mousePosition))
	s.vm.SetGlobal("spawn", s.vm.NewFunction(s.spawn))
	s.vm.SetGlobal("remove", s.vm.NewFunction(s.remove))
	s.vm.SetGlobal("entity_count", s.vm.NewFunction(s.entityCount))
	s.vm.SetGlobal("log", s.vm.NewFunction(s.logMessage))

	if err := s.vm.DoString(s.source); err != nil {
		s.vm.Close()
		s.vm = nil
		return fmt.Errorf("run script %s: %w", s.name, err)
	}
	s.log.Debug("script loaded")
	return nil
}

// Tick calls the script's tick function with the frame's delta time. Scripts
// without one are only run once, at Init.
func (s *System) Tick(frame *ecs.UpdateFrame) error {
	fn := s.vm.GetGlobal("tick")
	if fn == lua.LNil {
		return nil
	}
	s.ticks++

	s.frame = frame
	clear(s.removing)
	defer func() { s.frame = nil }()

	if err := s.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(frame.DeltaTime)); err != nil {
		return fmt.Errorf("script %s: tick: %w", s.name, err)
	}
	return nil
}

func (s *System) Shutdown() {
	if s.vm != nil {
		s.vm.Close()
		s.vm = nil
	}
}

// Global returns a global variable of the script, or lua.LNil once the
// system has shut down.
func (s *System) Global(name string) lua.LValue {
	if s.vm == nil {
		return lua.LNil
	}
	return s.vm.GetGlobal(name)
}

// Ticks returns how many times the script's tick function ran.
func (s *System) Ticks() uint64 {
	return s.ticks
}

// keyQuery binds one named-input query. Without an input every query is
// false.
func (s *System) keyQuery(query func(Input, string) bool) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(lua.LBool(s.input != nil && query(s.input, name)))
		return 1
	}
}

func (s *System) mousePosition(L *lua.LState) int {
	var x, y int
	if s.input != nil {
		x, y = s.input.CursorPosition()
	}
	L.Push(lua.LNumber(x))
	L.Push(lua.LNumber(y))
	return 2
}

// spawn creates and initializes an entity with a transform and a model.
func (s *System) spawn(L *lua.LState) int {
	model := L.CheckString(1)
	x := float32(L.OptNumber(2, 0))
	y := float32(L.OptNumber(3, 0))
	z := float32(L.OptNumber(4, 0))

	e := s.scene.CreateEntity()
	ecs.Add(e, graphics.NewTransform(x, y, z))
	ecs.Add(e, graphics.Graphics{Model: model})
	s.scene.Init(e)

	s.log.Debug("script spawned entity",
		zap.Uint32("entity", uint32(e.Id())),
		zap.String("model", model))
	L.Push(lua.LNumber(e.Id()))
	return 1
}

// remove marks an entity for destruction at the next cleanup. During a tick
// the removal is queued on the frame's commands.
func (s *System) remove(L *lua.LState) int {
	id := ecs.EntityId(L.CheckInt(1))
	e := s.scene.Get(id)
	if e == nil || e.PendingDestroy() || s.removing[id] {
		L.Push(lua.LFalse)
		return 1
	}
	if s.frame != nil {
		s.frame.Commands.Remove(e)
		s.removing[id] = true
	} else {
		s.scene.RemoveEntity(e, false)
	}
	L.Push(lua.LTrue)
	return 1
}

// entityCount counts entities neither pending destruction nor queued for
// removal by this script.
func (s *System) entityCount(L *lua.LState) int {
	n := 0
	for range s.scene.All(false) {
		n++
	}
	L.Push(lua.LNumber(n - len(s.removing)))
	return 1
}

func (s *System) logMessage(L *lua.LState) int {
	s.log.Info(L.CheckString(1))
	return 0
}
