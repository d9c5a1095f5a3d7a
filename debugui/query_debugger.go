package debugui

import (
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/vengine/ecs"
)

// QueryDebugger counts the entities holding every selected component type.
type QueryDebugger struct {
	selected map[ecs.ComponentId]bool
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{
		selected: make(map[ecs.ComponentId]bool),
	}
}

func (qd *QueryDebugger) Render(scene *ecs.Scene) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		clear(qd.selected)
	}

	registry := scene.Registry()
	for i := 0; i < registry.Len(); i++ {
		id := ecs.ComponentId(i)
		selected := qd.selected[id]
		if imgui.Checkbox(registry.TypeOf(id).String(), &selected) {
			qd.Toggle(id, selected)
		}
	}

	imgui.Separator()

	ids := qd.Selected()
	if len(ids) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matches := qd.Matches(scene)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))

	if imgui.TreeNodeStr("Entities") {
		for _, id := range matches {
			imgui.BulletText(fmt.Sprintf("%d", id))
		}
		imgui.TreePop()
	}

	imgui.End()
}

// Toggle adds or removes a component type from the selection.
func (qd *QueryDebugger) Toggle(id ecs.ComponentId, selected bool) {
	if selected {
		qd.selected[id] = true
	} else {
		delete(qd.selected, id)
	}
}

// Selected returns the selected component ids in ascending order.
func (qd *QueryDebugger) Selected() []ecs.ComponentId {
	ids := make([]ecs.ComponentId, 0, len(qd.selected))
	for id := range qd.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Matches returns the ids of live entities holding every selected type.
func (qd *QueryDebugger) Matches(scene *ecs.Scene) []ecs.EntityId {
	ids := qd.Selected()
	if len(ids) == 0 {
		return nil
	}
	var matches []ecs.EntityId
	for e := range scene.Each(false, ids...) {
		matches = append(matches, e.Id())
	}
	return matches
}
