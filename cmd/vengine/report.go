package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/vengine/engine"
	"github.com/plus3/vengine/gpu/headless"
)

type Report struct {
	// Configuration
	Width          int
	Height         int
	FramesInFlight int
	SceneFile      string
	ScriptFile     string

	// Results
	TotalTime     time.Duration
	FrameTime     Stats
	Engine        engine.Stats
	Device        headless.Stats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// FPS is the average frame rate over the run.
func (r *Report) FPS() float64 {
	if r.TotalTime <= 0 {
		return 0
	}
	return float64(r.Engine.Frames) / r.TotalTime.Seconds()
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# vengine Headless Report

## Configuration
- **Surface:** {{.Width}}x{{.Height}}
- **Frames In Flight:** {{.FramesInFlight}}
- **Scene:** {{or .SceneFile "(none)"}}
- **Script:** {{or .ScriptFile "(none)"}}

## Frame Results
- **Frames:** {{.Engine.Frames}}
- **Total Time:** {{.TotalTime}}
- **Average FPS:** {{printf "%.1f" .FPS}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}

## Renderer
- Submitted:   {{.Engine.Renderer.FramesSubmitted}}
- Dropped:     {{.Engine.Renderer.FramesDropped}}
- Refreshes:   {{.Engine.Renderer.Refreshes}}
- Re-records:  {{.Engine.Renderer.Rerecords}}
- Models:      {{.Engine.Renderer.Models}}
- Swapchain:   {{.Engine.Renderer.Extent.Width}}x{{.Engine.Renderer.Extent.Height}}, {{.Engine.Renderer.ImageCount}} images

## Device
- Submits: {{.Device.Submits}}  Presents: {{.Device.Presents}}  Draw Calls: {{.Device.DrawCalls}}
- Fence Waits: {{.Device.FenceWaits}}  Wait Idles: {{.Device.WaitIdles}}
- Memory Used: {{mb .Device.MemoryUsed}} MB

## Scene
- Entities: {{.Engine.Scene.EntityCount}}
{{- range .Engine.Scene.Components}}
- {{.Name}}: {{.Count}}
{{- end}}

## Systems
{{- range .Engine.Systems.Systems}}
- {{.Name}}: {{.ExecutionCount}} ticks, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{- end}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- Total GC Pause: {{.MemStatsEnd.PauseTotalNs | ns}}
`

	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
