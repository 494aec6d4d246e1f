package ecs

import (
	"errors"
	"reflect"
)

// Commands buffers removals so they can be applied in one batch. Removals are
// applied with deferred culling and every touched container is culled once
// at the end of Flush.
type Commands struct {
	registry *Registry
	destroys []*Owner
	removes  []removeTypeCommand
	deletes  []deleteCommand
	defers   []deferCommand
}

// NewCommands creates an empty buffer for r.
func NewCommands(r *Registry) *Commands {
	return &Commands{registry: r}
}

type deferCommand struct {
	fn func()
}

type removeTypeCommand struct {
	owner    *Owner
	compType reflect.Type
}

type deleteCommand struct {
	compType reflect.Type
	id       SlotId
}

// Defer queues a function to run after all removals.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// DestroyOwner queues destruction of every record held by owner.
func (c *Commands) DestroyOwner(owner *Owner) {
	c.destroys = append(c.destroys, owner)
}

// RemoveComponentsOfType queues removal of the owner's records of compType.
func (c *Commands) RemoveComponentsOfType(owner *Owner, compType reflect.Type) {
	c.removes = append(c.removes, removeTypeCommand{
		owner:    owner,
		compType: compType,
	})
}

// Remove queues removal of a single record.
func (c *Commands) Remove(compType reflect.Type, id SlotId) {
	c.deletes = append(c.deletes, deleteCommand{
		compType: compType,
		id:       id,
	})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.destroys) + len(c.removes) + len(c.deletes) + len(c.defers)
}

// Flush applies all queued commands and resets the buffer. It keeps going
// after a failed command and returns every error joined.
func (c *Commands) Flush() error {
	var errs []error
	touched := make(map[reflect.Type]iContainer)
	destroyed := make(map[*Owner]bool)

	for _, owner := range c.destroys {
		if destroyed[owner] {
			continue
		}
		for _, t := range owner.Types() {
			if ic, ok := c.registry.container(t); ok {
				touched[t] = ic
			}
		}
		if err := owner.destroy(true); err != nil {
			errs = append(errs, err)
		}
		destroyed[owner] = true
	}

	for _, cmd := range c.removes {
		if destroyed[cmd.owner] {
			continue
		}
		if err := cmd.owner.checkRegistry(); err != nil {
			errs = append(errs, cmd.owner.fail("remove components", err))
			continue
		}
		if ic, ok := c.registry.container(cmd.compType); ok {
			touched[cmd.compType] = ic
		}
		if err := cmd.owner.removeType(cmd.compType, true); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.deletes {
		ic, ok := c.registry.container(cmd.compType)
		if !ok {
			errs = append(errs, notFound(cmd.id))
			continue
		}
		if err := ic.RemoveDeferred(cmd.id); err != nil {
			errs = append(errs, err)
			continue
		}
		touched[cmd.compType] = ic
	}

	for _, ic := range touched {
		ic.Cull()
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.destroys = c.destroys[:0]
	c.removes = c.removes[:0]
	c.deletes = c.deletes[:0]
	c.defers = c.defers[:0]

	return errors.Join(errs...)
}
