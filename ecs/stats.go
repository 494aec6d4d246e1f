package ecs

import "reflect"

// RegistryStats summarises the contents of a registry.
type RegistryStats struct {
	ContainerCount int
	TotalRecords   int
	PendingCulls   int
	Containers     []ContainerStats
}

// ContainerStats describes one container.
type ContainerStats struct {
	Type        reflect.Type
	Name        string
	Size        int
	Stored      int // records in the backing store, including ones awaiting a cull
	Capacity    int
	NextId      SlotId
	PendingCull bool
}

func (c *SlotContainer[T]) stats() ContainerStats {
	return ContainerStats{
		Type:        reflect.TypeFor[T](),
		Size:        c.live,
		Stored:      len(c.items),
		Capacity:    cap(c.items),
		NextId:      c.nextId,
		PendingCull: c.needsCull,
	}
}

// CollectStats gathers per-container statistics, ordered by type name.
func (r *Registry) CollectStats() RegistryStats {
	stats := RegistryStats{
		ContainerCount: len(r.containers),
		Containers:     make([]ContainerStats, 0, len(r.containers)),
	}

	for _, t := range r.Types() {
		cs := r.containers[t].stats()
		cs.Name = r.DisplayNameOf(t)

		stats.TotalRecords += cs.Size
		if cs.PendingCull {
			stats.PendingCulls++
		}
		stats.Containers = append(stats.Containers, cs)
	}

	return stats
}
