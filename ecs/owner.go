package ecs

import (
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"
)

// Owner groups component ids of any number of types. It holds ids only; the
// records live in the registry's containers and are resolved on every read.
//
// An owner keeps a type entry from its first AddComponent until
// RemoveComponentsOfType or Destroy, even if every id under it has since been
// removed elsewhere. HasComponent reports that entry.
type Owner struct {
	registry   *Registry
	components map[reflect.Type][]SlotId
}

// NewOwner creates an owner bound to r. The owner must not outlive r.
func NewOwner(r *Registry) *Owner {
	return &Owner{
		registry:   r,
		components: make(map[reflect.Type][]SlotId),
	}
}

// Registry returns the registry the owner is bound to.
func (o *Owner) Registry() *Registry {
	return o.registry
}

func (o *Owner) checkRegistry() error {
	if o.registry == nil {
		return errNilRegistry
	}
	if o.registry.closed {
		return ErrRegistryClosed
	}
	return nil
}

func (o *Owner) fail(op string, err error) error {
	logger := zap.L()
	if o.registry != nil {
		logger = o.registry.logger
	}
	logger.Warn("owner operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func (o *Owner) track(t reflect.Type, id SlotId) {
	if o.components == nil {
		o.components = make(map[reflect.Type][]SlotId)
	}
	o.components[t] = append(o.components[t], id)
}

// AddComponent registers value with the owner's registry and records the id
// under T.
func AddComponent[T any](o *Owner, value T) (SlotId, error) {
	if err := o.checkRegistry(); err != nil {
		return InvalidSlotId, o.fail("add component", err)
	}
	id := Register(o.registry, value)
	o.track(reflect.TypeFor[T](), id)
	return id, nil
}

// EmplaceComponent is AddComponent for a record built in place by init.
func EmplaceComponent[T any](o *Owner, init func(*T)) (SlotId, error) {
	if err := o.checkRegistry(); err != nil {
		return InvalidSlotId, o.fail("emplace component", err)
	}
	id := Container[T](o.registry).Emplace(init)
	o.track(reflect.TypeFor[T](), id)
	return id, nil
}

// GetComponents returns the owner's live records of type T in the order they
// were added. Ids that are no longer valid are dropped from the owner.
// The pointers are only valid until the next mutation of T's container.
func GetComponents[T any](o *Owner) ([]*T, error) {
	if err := o.checkRegistry(); err != nil {
		return nil, o.fail("get components", err)
	}

	t := reflect.TypeFor[T]()
	ids, ok := o.components[t]
	if !ok {
		return nil, nil
	}

	c := Container[T](o.registry)
	result := make([]*T, 0, len(ids))
	kept := ids[:0]
	for _, id := range ids {
		if v, ok := c.TryGet(id); ok {
			result = append(result, v)
			kept = append(kept, id)
		}
	}
	o.components[t] = kept
	return result, nil
}

// HasComponent reports whether the owner has a type entry for T.
func HasComponent[T any](o *Owner) bool {
	_, ok := o.components[reflect.TypeFor[T]()]
	return ok
}

// RemoveComponentsOfType removes every record of type T held by the owner
// from the registry and drops the owner's entry for T.
func RemoveComponentsOfType[T any](o *Owner) error {
	if err := o.checkRegistry(); err != nil {
		return o.fail("remove components", err)
	}
	return o.removeType(reflect.TypeFor[T](), false)
}

// removeType marks every id held under t as deleted. Unless deferCull is set
// the container is culled once afterwards.
func (o *Owner) removeType(t reflect.Type, deferCull bool) error {
	ids, ok := o.components[t]
	if !ok {
		return nil
	}

	if c, ok := o.registry.container(t); ok {
		for _, id := range ids {
			if err := c.RemoveDeferred(id); err != nil {
				return fmt.Errorf("remove %s: %w", t, err)
			}
		}
		if !deferCull {
			c.Cull()
		}
	}

	delete(o.components, t)
	return nil
}

// Destroy removes every record the owner holds, across all types, and leaves
// the owner empty.
func (o *Owner) Destroy() error {
	return o.destroy(false)
}

func (o *Owner) destroy(deferCull bool) error {
	if err := o.checkRegistry(); err != nil {
		return o.fail("destroy owner", err)
	}
	for t := range o.components {
		if err := o.removeType(t, deferCull); err != nil {
			return err
		}
	}
	clear(o.components)
	return nil
}

// Types returns the types the owner has entries for, sorted by name.
func (o *Owner) Types() []reflect.Type {
	return sortedTypes(o.components)
}

// ComponentIds returns a copy of the ids held under t, without pruning.
func (o *Owner) ComponentIds(t reflect.Type) []SlotId {
	return slices.Clone(o.components[t])
}
