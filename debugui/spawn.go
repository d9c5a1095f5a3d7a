package debugui

import (
	"github.com/plus3/vengine/ecs"
	"github.com/plus3/vengine/render"
)

// RendererStats is the part of the renderer the panels read.
type RendererStats interface {
	Stats() render.Stats
}

// Sources are the objects the panels inspect. Systems and Renderer are
// optional.
type Sources struct {
	Scene    *ecs.Scene
	Systems  *ecs.SystemManager
	Renderer RendererStats
}

// RegisterComponents registers the component types used by the debug UI.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
}

// Spawn creates one ImguiItem entity per panel. The entities are initialized
// right away.
func Spawn(src Sources) []*ecs.Entity {
	browser := NewEntityBrowser(100)
	inspector := NewComponentInspector()
	storages := NewStorageViewer()
	queries := NewQueryDebugger()
	perf := NewPerformanceStats(120)

	renders := []func(){
		func() { browser.Render(src.Scene) },
		func() {
			id, ok := browser.Selected()
			inspector.Render(src.Scene, id, ok)
		},
		func() { storages.Render(src.Scene) },
		func() { queries.Render(src.Scene) },
		func() { perf.Render(src) },
	}

	entities := make([]*ecs.Entity, 0, len(renders))
	for _, draw := range renders {
		e := src.Scene.CreateEntity()
		ecs.Add(e, ImguiItem{Render: draw})
		src.Scene.Init(e)
		entities = append(entities, e)
	}
	return entities
}
