package main

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"

	"github.com/plus3/slotstore/ecs"
	"go.uber.org/zap"
)

// workload drives one registry through repeated move, damage and churn cycles.
type workload struct {
	cfg      RunConfig
	logger   *zap.Logger
	registry *ecs.Registry
	owners   *ecs.Owners
	commands *ecs.Commands
	rng      *rand.Rand

	ids      []ecs.OwnerId
	deferErr error

	Spawned   int64
	Destroyed int64
	Churned   int64
}

func newWorkload(cfg RunConfig, registry *ecs.Registry, logger *zap.Logger) *workload {
	return &workload{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		owners:   ecs.NewOwners(registry),
		commands: ecs.NewCommands(registry),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (w *workload) populate() error {
	registerDisplayNames(w.registry)

	for i := 0; i < w.cfg.Owners; i++ {
		if err := w.spawn(); err != nil {
			return fmt.Errorf("populate owner %d: %w", i, err)
		}
	}
	w.logger.Info("population complete", zap.Int("owners", w.owners.Count()))
	return nil
}

func (w *workload) spawn() error {
	owner, err := w.owners.Create().Get()
	if err != nil {
		return err
	}
	w.Spawned++
	return spawnOwner(owner, w.rng)
}

// cycle runs one full pass. All removals are queued and applied in a single
// flush so each container is culled at most once per cycle.
func (w *workload) cycle() error {
	w.ids = w.ids[:0]
	for id, owner := range w.owners.All() {
		w.ids = append(w.ids, id)
		if err := w.move(owner); err != nil {
			return err
		}
	}

	for _, id := range w.ids {
		owner, err := w.owners.Get(id)
		if err != nil {
			return err
		}
		dead, err := w.damage(owner)
		if err != nil {
			return err
		}
		if dead {
			w.kill(id, owner)
		}
	}

	w.churn()

	if err := w.commands.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := w.deferErr; err != nil {
		w.deferErr = nil
		return err
	}
	return nil
}

func (w *workload) move(owner *ecs.Owner) error {
	positions, err := ecs.GetComponents[Position](owner)
	if err != nil {
		return err
	}
	velocities, err := ecs.GetComponents[Velocity](owner)
	if err != nil {
		return err
	}
	for _, pos := range positions {
		for _, vel := range velocities {
			pos.X += vel.DX
			pos.Y += vel.DY
		}
	}
	return nil
}

func (w *workload) damage(owner *ecs.Owner) (bool, error) {
	healths, err := ecs.GetComponents[Health](owner)
	if err != nil {
		return false, err
	}
	for _, h := range healths {
		h.Current -= w.rng.Intn(3)
		if h.Current <= 0 {
			return true, nil
		}
	}
	return false, nil
}

func (w *workload) kill(id ecs.OwnerId, owner *ecs.Owner) {
	w.commands.DestroyOwner(owner)
	w.commands.Defer(func() {
		if err := w.owners.Destroy(id); err != nil {
			w.deferErr = errors.Join(w.deferErr, err)
			return
		}
		w.Destroyed++
		if err := w.spawn(); err != nil {
			w.deferErr = errors.Join(w.deferErr, err)
		}
	})
}

// churn strips the velocity from a random share of owners and hands them a
// new one after the flush, forcing slot turnover in the velocity container.
func (w *workload) churn() {
	n := int(float64(len(w.ids)) * w.cfg.Churn)
	velocityType := reflect.TypeFor[Velocity]()
	for i := 0; i < n; i++ {
		id := w.ids[w.rng.Intn(len(w.ids))]
		owner, err := w.owners.Get(id)
		if err != nil {
			continue
		}
		w.commands.RemoveComponentsOfType(owner, velocityType)
		w.commands.Defer(func() {
			// Dead owners and repeat picks are skipped.
			if !w.owners.Ref(id).Valid() || ecs.HasComponent[Velocity](owner) {
				return
			}
			vel := Velocity{DX: w.rng.Float64() - 0.5, DY: w.rng.Float64() - 0.5}
			if _, err := ecs.AddComponent(owner, vel); err != nil {
				w.deferErr = errors.Join(w.deferErr, err)
			}
		})
		w.Churned++
	}
}

func (w *workload) shutdown() error {
	err := w.owners.DestroyAll()
	w.registry.Close()
	return err
}
