package main

import (
	"math/rand"

	"github.com/plus3/slotstore/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Health struct {
	Current int
	Max     int
}

type Label struct {
	Text string
}

func registerDisplayNames(r *ecs.Registry) {
	ecs.SetDisplayName[Position](r, "position")
	ecs.SetDisplayName[Velocity](r, "velocity")
	ecs.SetDisplayName[Health](r, "health")
	ecs.SetDisplayName[Label](r, "label")
}

// spawnOwner gives a fresh owner a random mix of components.
func spawnOwner(owner *ecs.Owner, rng *rand.Rand) error {
	if _, err := ecs.AddComponent(owner, Position{X: rng.Float64() * 100, Y: rng.Float64() * 100}); err != nil {
		return err
	}
	if _, err := ecs.AddComponent(owner, Velocity{DX: rng.Float64() - 0.5, DY: rng.Float64() - 0.5}); err != nil {
		return err
	}
	if rng.Intn(2) == 0 {
		hp := rng.Intn(100) + 1
		if _, err := ecs.AddComponent(owner, Health{Current: hp, Max: hp}); err != nil {
			return err
		}
	}
	if rng.Intn(4) == 0 {
		if _, err := ecs.EmplaceComponent(owner, func(l *Label) { l.Text = "tagged" }); err != nil {
			return err
		}
	}
	return nil
}
