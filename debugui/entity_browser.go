package debugui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/vengine/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityId
	ComponentTypes []string
	Initialized    bool
	PendingDestroy bool
}

// EntityBrowser lists the scene's entities in a sortable, filterable table.
type EntityBrowser struct {
	entities           []EntityInfo
	selected           ecs.EntityId
	hasSelection       bool
	filterText         string
	sortColumn         int
	sortAscending      bool
	maxEntitiesPerPage int
	currentPage        int
}

func NewEntityBrowser(maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		sortAscending:      true,
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

// Selected returns the id of the selected entity.
func (eb *EntityBrowser) Selected() (ecs.EntityId, bool) {
	return eb.selected, eb.hasSelection
}

// Select marks id as the selected entity.
func (eb *EntityBrowser) Select(id ecs.EntityId) {
	eb.selected = id
	eb.hasSelection = true
}

// SetFilter sets the search text and returns to the first page.
func (eb *EntityBrowser) SetFilter(text string) {
	eb.filterText = text
	eb.currentPage = 0
}

// SortBy orders the rows by column: 0 id, 1 components, 2 component count,
// 3 state.
func (eb *EntityBrowser) SortBy(column int, ascending bool) {
	eb.sortColumn = column
	eb.sortAscending = ascending
	eb.sortEntities()
}

func (eb *EntityBrowser) Render(scene *ecs.Scene) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.Refresh(scene)

	filter := eb.filterText
	imgui.InputTextWithHint("##search", "Search...", &filter, imgui.InputTextFlagsNone, nil)
	if filter != eb.filterText {
		eb.SetFilter(filter)
	}
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.SetFilter("")
	}

	filtered := eb.Filtered()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableSetupColumn("State")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
			filtered = eb.Filtered()
		}

		startIdx := min(eb.currentPage*eb.maxEntitiesPerPage, len(filtered))
		endIdx := min(startIdx+eb.maxEntitiesPerPage, len(filtered))

		for _, entity := range filtered[startIdx:endIdx] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.hasSelection && eb.selected == entity.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.Select(entity.ID)
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(entity.ComponentTypes)))

			imgui.TableNextColumn()
			imgui.Text(entity.State())
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.maxEntitiesPerPage {
		totalPages := (len(filtered) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

// State describes the entity's lifecycle state.
func (info EntityInfo) State() string {
	switch {
	case info.PendingDestroy:
		return "pending destroy"
	case info.Initialized:
		return "initialized"
	default:
		return "created"
	}
}

// Refresh rebuilds the rows from the scene, keeping the current sort order.
func (eb *EntityBrowser) Refresh(scene *ecs.Scene) {
	eb.entities = eb.entities[:0]
	registry := scene.Registry()

	for e := range scene.All(true) {
		ids := e.ComponentIds()
		componentTypes := make([]string, len(ids))
		for i, id := range ids {
			componentTypes[i] = registry.TypeOf(id).String()
		}
		eb.entities = append(eb.entities, EntityInfo{
			ID:             e.Id(),
			ComponentTypes: componentTypes,
			Initialized:    e.Initialized(),
			PendingDestroy: e.PendingDestroy(),
		})
	}

	eb.sortEntities()
}

func (eb *EntityBrowser) sortEntities() {
	slices.SortStableFunc(eb.entities, func(a, b EntityInfo) int {
		var c int
		switch eb.sortColumn {
		case 1:
			c = strings.Compare(strings.Join(a.ComponentTypes, ","), strings.Join(b.ComponentTypes, ","))
		case 2:
			c = len(a.ComponentTypes) - len(b.ComponentTypes)
		case 3:
			c = strings.Compare(a.State(), b.State())
		}
		if c == 0 {
			c = int(a.ID) - int(b.ID)
		}
		if !eb.sortAscending {
			return -c
		}
		return c
	})
}

// Filtered returns the rows matching the filter text by id, component type or
// state.
func (eb *EntityBrowser) Filtered() []EntityInfo {
	if eb.filterText == "" {
		return eb.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.entities {
		idStr := fmt.Sprintf("%d", entity.ID)
		componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))

		if !strings.Contains(idStr, filterLower) &&
			!strings.Contains(componentsStr, filterLower) &&
			!strings.Contains(entity.State(), filterLower) {
			continue
		}
		filtered = append(filtered, entity)
	}
	return filtered
}
