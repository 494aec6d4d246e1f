package ecs

// ContainerHandle is the type-independent part of a SlotContainer. It lets
// code that only knows a reflect.Type clear or remove records without knowing
// the record type.
type ContainerHandle interface {
	Clear()
	IsValid(id SlotId) bool
	Remove(id SlotId) error
	Reserve(n int)
}

// iContainer is what the registry keeps for every record type.
type iContainer interface {
	ContainerHandle
	RemoveDeferred(id SlotId) error
	Cull()
	Size() int
	stats() ContainerStats
}

var _ iContainer = (*SlotContainer[int])(nil)
