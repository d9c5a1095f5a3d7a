// Package debugui provides Dear ImGui panels for inspecting a running scene:
// entities and their components, component storages, systems and renderer
// counters. Panels are drawn through ImguiItem entities rendered by
// ImguiSystem.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/vengine/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem queries all ImguiItem components and defers their render
// functions until the frame's commands are flushed. It also updates the
// ImguiInputState singleton with the current input capture state.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]

	// Capture reads the input capture state. Defaults to the current ImGui
	// context's IO.
	Capture func() ImguiInputState
}

func (i *ImguiSystem) Init(scene *ecs.Scene) error {
	ecs.NewSingleton[ImguiInputState](scene)
	i.InputState.Init(scene)
	if i.Capture == nil {
		i.Capture = captureState
	}
	return nil
}

func (i *ImguiSystem) Tick(frame *ecs.UpdateFrame) error {
	*i.InputState.Get() = i.Capture()

	for _, item := range i.Items.Iter() {
		frame.Commands.Defer(item.Render)
	}
	return nil
}

func (i *ImguiSystem) Shutdown() {}

func captureState() ImguiInputState {
	io := imgui.CurrentIO()
	return ImguiInputState{
		WantCaptureMouse:    io.WantCaptureMouse(),
		WantCaptureKeyboard: io.WantCaptureKeyboard(),
	}
}
