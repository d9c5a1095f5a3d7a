package ecs

// SceneStats is a point-in-time snapshot of a Scene's contents.
type SceneStats struct {
	EntityCount      int
	PendingCount     int
	InitializedCount int
	NextId           EntityId
	Components       []ComponentStats
}

// ComponentStats counts the live instances of one registered component type.
type ComponentStats struct {
	Id    ComponentId
	Name  string
	Count int
}

// CollectStats walks the scene once and gathers counters for debugging and
// reports.
func (s *Scene) CollectStats() SceneStats {
	stats := SceneStats{
		EntityCount: len(s.entities),
		NextId:      s.nextId,
		Components:  make([]ComponentStats, 0, s.registry.Len()),
	}

	for _, e := range s.entities {
		if e.pendingDestroy {
			stats.PendingCount++
		}
		if e.initialized {
			stats.InitializedCount++
		}
	}

	for i := 0; i < s.registry.Len(); i++ {
		id := ComponentId(i)
		count := 0
		if i < len(s.storages) && s.storages[i] != nil {
			count = s.storages[i].Len()
		}
		stats.Components = append(stats.Components, ComponentStats{
			Id:    id,
			Name:  s.registry.TypeOf(id).String(),
			Count: count,
		})
	}
	return stats
}
