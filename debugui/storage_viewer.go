package debugui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/vengine/ecs"
)

// StorageViewer shows the live instance count of every registered component
// type, with a bar relative to the largest storage.
type StorageViewer struct {
	rows          []ecs.ComponentStats
	sortColumn    int
	sortAscending bool
}

func NewStorageViewer() *StorageViewer {
	return &StorageViewer{sortColumn: 2}
}

func (sv *StorageViewer) Render(scene *ecs.Scene) {
	if !imgui.BeginV("Component Storages", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	sv.Refresh(scene)

	maxCount := 0
	for _, row := range sv.rows {
		maxCount = max(maxCount, row.Count)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("StorageTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Id")
		imgui.TableSetupColumn("Component")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			sv.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, row := range sv.rows {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Id))

			imgui.TableNextColumn()
			imgui.Text(row.Name)

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Count))

			if maxCount > 0 {
				barWidth := float32(row.Count) / float32(maxCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
}

// Refresh reloads the counts from the scene.
func (sv *StorageViewer) Refresh(scene *ecs.Scene) {
	sv.rows = scene.CollectStats().Components
	sv.sortRows()
}

// SortBy orders the rows by column: 0 id, 1 name, 2 count.
func (sv *StorageViewer) SortBy(column int, ascending bool) {
	sv.sortColumn = column
	sv.sortAscending = ascending
	sv.sortRows()
}

// Rows returns the rows in display order.
func (sv *StorageViewer) Rows() []ecs.ComponentStats {
	return sv.rows
}

func (sv *StorageViewer) sortRows() {
	slices.SortStableFunc(sv.rows, func(a, b ecs.ComponentStats) int {
		var c int
		switch sv.sortColumn {
		case 1:
			c = strings.Compare(a.Name, b.Name)
		case 2:
			c = a.Count - b.Count
		}
		if c == 0 {
			c = int(a.Id) - int(b.Id)
		}
		if !sv.sortAscending {
			return -c
		}
		return c
	})
}
