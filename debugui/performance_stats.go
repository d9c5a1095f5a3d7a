package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
)

// PerformanceStats plots frame times and lists scene, system and renderer
// counters.
type PerformanceStats struct {
	history *FrameHistory
	timer   *FrameTimer
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	return &PerformanceStats{
		history: NewFrameHistory(historyFrames),
		timer:   NewFrameTimer(),
	}
}

func (ps *PerformanceStats) Render(src Sources) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.history.Push(ps.timer.DeltaTime() * 1000.0)

	stats := src.Scene.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d (%d initialized, %d pending)", stats.EntityCount, stats.InitializedCount, stats.PendingCount))
	imgui.Text(fmt.Sprintf("Component Types: %d", len(stats.Components)))

	avg := ps.history.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	samples := ps.history.Samples()
	imgui.PlotLinesFloatPtr("##frametime", &samples[0], int32(len(samples)))

	if src.Renderer != nil && imgui.TreeNodeStr("Renderer") {
		rs := src.Renderer.Stats()
		imgui.Text(fmt.Sprintf("Frames: %d submitted, %d dropped", rs.FramesSubmitted, rs.FramesDropped))
		imgui.Text(fmt.Sprintf("Swapchain: %dx%d, %d images", rs.Extent.Width, rs.Extent.Height, rs.ImageCount))
		imgui.Text(fmt.Sprintf("Frame slot: %d / %d", rs.CurrentFrame, rs.FramesInFlight))
		imgui.Text(fmt.Sprintf("Refreshes: %d  Re-records: %d", rs.Refreshes, rs.Rerecords))
		imgui.Text(fmt.Sprintf("Models: %d", rs.Models))
		imgui.TreePop()
	}

	if src.Systems != nil && imgui.TreeNodeStr("Systems") {
		ms := src.Systems.GetStats()
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Enabled")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableSetupColumn("Last")
			imgui.TableHeadersRow()

			for _, sys := range ms.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%t", sys.Enabled))
				imgui.TableNextColumn()
				imgui.Text(sys.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.MaxDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.LastDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Component Details") {
		for _, c := range stats.Components {
			imgui.BulletText(fmt.Sprintf("%s: %d", c.Name, c.Count))
		}
		imgui.TreePop()
	}

	imgui.End()
}

// FrameHistory is a fixed-size ring of frame times.
type FrameHistory struct {
	samples []float32
	index   int
	filled  int
}

func NewFrameHistory(size int) *FrameHistory {
	return &FrameHistory{samples: make([]float32, max(size, 1))}
}

func (h *FrameHistory) Push(ms float32) {
	h.samples[h.index] = ms
	h.index = (h.index + 1) % len(h.samples)
	h.filled = min(h.filled+1, len(h.samples))
}

// Average returns the mean of the samples pushed so far.
func (h *FrameHistory) Average() float32 {
	if h.filled == 0 {
		return 0
	}
	var sum float32
	for _, ms := range h.samples[:h.filled] {
		sum += ms
	}
	return sum / float32(h.filled)
}

// Samples returns the ring buffer in storage order.
func (h *FrameHistory) Samples() []float32 {
	return h.samples
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) DeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
