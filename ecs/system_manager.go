package ecs

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"time"
)

// ManagerStats provides statistics about system execution.
type ManagerStats struct {
	SystemCount     int
	DisabledCount   int
	Ticks           uint64
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Enabled        bool
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// sceneField is satisfied by *Query[T] and *Singleton[T] for any T.
type sceneField interface {
	Init(scene *Scene)
}

// queryField is satisfied by *Query[T] for any T.
type queryField interface {
	sceneField
	Execute()
}

type systemEntry struct {
	system  System
	queries []queryField
	stats   *systemStatsInternal
}

// SystemManager keeps an ordered list of active systems and a separate list
// of disabled ones, and ticks the active ones against a single Scene.
type SystemManager struct {
	scene    *Scene
	systems  []*systemEntry
	disabled []*systemEntry
	frame    uint64
}

// NewSystemManager creates a new manager driving the given scene.
func NewSystemManager(scene *Scene) *SystemManager {
	return &SystemManager{
		scene:   scene,
		systems: make([]*systemEntry, 0),
	}
}

// Scene returns the scene the manager ticks.
func (m *SystemManager) Scene() *Scene {
	return m.scene
}

// Register appends a system to the active list, initializes its Query fields
// and calls its Init. If Init fails the system is dropped again and the error
// is returned.
func (m *SystemManager) Register(system System) error {
	entry := &systemEntry{
		system:  system,
		queries: m.initializeQueries(system),
		stats: &systemStatsInternal{
			name:        systemName(system),
			minDuration: time.Duration(1<<63 - 1),
		},
	}
	m.systems = append(m.systems, entry)

	if err := system.Init(m.scene); err != nil {
		m.systems = slices.DeleteFunc(m.systems, func(e *systemEntry) bool { return e == entry })
		return fmt.Errorf("init system %s: %w", entry.stats.name, err)
	}
	return nil
}

// Unregister removes a system from the active or disabled list and calls its
// Shutdown. A disabled system cannot be enabled again afterwards.
func (m *SystemManager) Unregister(system System) {
	match := func(e *systemEntry) bool { return e.system == system }
	m.systems = slices.DeleteFunc(m.systems, match)
	m.disabled = slices.DeleteFunc(m.disabled, match)
	system.Shutdown()
}

// Enable moves a disabled system back to the end of the active list. Init is
// not called again. It reports whether the system was disabled.
func (m *SystemManager) Enable(system System) bool {
	i := indexOfSystem(m.disabled, system)
	if i < 0 {
		return false
	}
	entry := m.disabled[i]
	m.disabled = slices.Delete(m.disabled, i, i+1)
	m.systems = append(m.systems, entry)
	return true
}

// Disable moves an active system to the disabled list so it stops ticking.
// Shutdown is not called. It reports whether the system was active.
func (m *SystemManager) Disable(system System) bool {
	i := indexOfSystem(m.systems, system)
	if i < 0 {
		return false
	}
	entry := m.systems[i]
	m.systems = slices.Delete(m.systems, i, i+1)
	m.disabled = append(m.disabled, entry)
	return true
}

// IsEnabled reports whether the system is in the active list.
func (m *SystemManager) IsEnabled(system System) bool {
	return indexOfSystem(m.systems, system) >= 0
}

// Systems returns the active systems in tick order.
func (m *SystemManager) Systems() []System {
	return collectSystems(m.systems)
}

// Disabled returns the disabled systems.
func (m *SystemManager) Disabled() []System {
	return collectSystems(m.disabled)
}

func (m *SystemManager) initializeQueries(system System) []queryField {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	var queries []queryField
	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		initializer, ok := field.Addr().Interface().(sceneField)
		if !ok {
			continue
		}
		initializer.Init(m.scene)
		if query, ok := initializer.(queryField); ok {
			queries = append(queries, query)
		}
	}
	return queries
}

// Tick reaps the entities marked for destruction, then ticks every active
// system in order. Each system's queries are executed right before its Tick
// so they observe changes made by earlier systems. Commands queued on the
// frame are flushed after the last system. The first error stops the tick and
// is returned.
func (m *SystemManager) Tick(dt float64) error {
	m.scene.Cleanup()

	m.frame++
	frame := newUpdateFrame(dt, m.frame, m.scene)

	for _, entry := range m.systems {
		for _, query := range entry.queries {
			query.Execute()
		}

		start := time.Now()
		err := entry.system.Tick(frame)
		duration := time.Since(start)

		stats := entry.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}

		if err != nil {
			return fmt.Errorf("tick system %s: %w", stats.name, err)
		}
	}

	frame.Commands.Flush(m.scene)
	return nil
}

// Shutdown calls Shutdown on every active system in registration order.
// Disabled systems are left alone.
func (m *SystemManager) Shutdown() {
	for _, entry := range m.systems {
		entry.system.Shutdown()
	}
}

// Run ticks the systems repeatedly at the given interval until the context is
// cancelled or a system fails.
func (m *SystemManager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := m.Tick(dt); err != nil {
				return err
			}
		}
	}
}

// GetStats returns statistics about system execution. Active systems come
// first in tick order, followed by disabled ones.
func (m *SystemManager) GetStats() *ManagerStats {
	stats := &ManagerStats{
		SystemCount:   len(m.systems),
		DisabledCount: len(m.disabled),
		Ticks:         m.frame,
		Systems:       make([]SystemStats, 0, len(m.systems)+len(m.disabled)),
	}

	var totalExecs int64
	collect := func(entries []*systemEntry, enabled bool) {
		for _, entry := range entries {
			internal := entry.stats
			avgDuration := time.Duration(0)
			minDuration := time.Duration(0)
			if internal.executionCount > 0 {
				avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
				minDuration = internal.minDuration
			}

			stats.Systems = append(stats.Systems, SystemStats{
				Name:           internal.name,
				Enabled:        enabled,
				ExecutionCount: internal.executionCount,
				MinDuration:    minDuration,
				MaxDuration:    internal.maxDuration,
				AvgDuration:    avgDuration,
				LastDuration:   internal.lastDuration,
				TotalDuration:  internal.totalDuration,
			})
			totalExecs += internal.executionCount
		}
	}
	collect(m.systems, true)
	collect(m.disabled, false)

	stats.TotalExecutions = totalExecs
	return stats
}

func systemName(system System) string {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	return systemType.Name()
}

func indexOfSystem(entries []*systemEntry, system System) int {
	return slices.IndexFunc(entries, func(e *systemEntry) bool { return e.system == system })
}

func collectSystems(entries []*systemEntry) []System {
	out := make([]System, len(entries))
	for i, entry := range entries {
		out[i] = entry.system
	}
	return out
}
