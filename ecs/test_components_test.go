package ecs_test

import "github.com/plus3/slotstore/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string

type Character struct {
	Character byte
}

type FloatingPoint struct {
	Floating float32
}

type Pair struct {
	A int
	B float32
}

type Inventory struct {
	Items []string
}

func newTestRegistry() *ecs.Registry {
	registry := ecs.NewRegistry()
	ecs.SetDisplayName[Position](registry, "position")
	ecs.SetDisplayName[Velocity](registry, "velocity")
	ecs.SetDisplayName[Health](registry, "health")
	ecs.SetDisplayName[Name](registry, "name")
	return registry
}
