package ecs

import (
	"fmt"
	"iter"
)

// Owners is a directory of owners sharing one registry. Owners are kept in a
// SlotContainer, so an OwnerId is never handed out twice.
type Owners struct {
	registry *Registry
	owners   *SlotContainer[*Owner]
}

// OwnerRef is a handle to an owner in an Owners directory. It stays safe to
// hold after the owner is destroyed; Get then returns ErrNotFound.
type OwnerRef struct {
	Id     OwnerId
	owners *Owners
}

// NewOwners creates an empty directory whose owners use r.
func NewOwners(r *Registry) *Owners {
	return &Owners{
		registry: r,
		owners:   NewSlotContainer[*Owner](),
	}
}

// Create adds a new empty owner.
func (s *Owners) Create() OwnerRef {
	id := s.owners.Insert(NewOwner(s.registry))
	return OwnerRef{Id: id, owners: s}
}

// Ref returns a handle for id without checking it.
func (s *Owners) Ref(id OwnerId) OwnerRef {
	return OwnerRef{Id: id, owners: s}
}

// Get returns the owner for id.
func (s *Owners) Get(id OwnerId) (*Owner, error) {
	owner, ok := s.owners.TryGet(id)
	if !ok {
		return nil, fmt.Errorf("owner %d: %w", id, ErrNotFound)
	}
	return *owner, nil
}

// Destroy removes every component of the owner and then the owner itself.
func (s *Owners) Destroy(id OwnerId) error {
	owner, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := owner.Destroy(); err != nil {
		return err
	}
	return s.owners.Remove(id)
}

// DestroyAll destroys every owner. Records registered without an owner are
// left alone. Each touched container is culled once.
func (s *Owners) DestroyAll() error {
	for _, owner := range s.owners.All() {
		if err := (*owner).destroy(true); err != nil {
			return err
		}
	}
	s.registry.cullAll()
	s.owners.Clear()
	return nil
}

// Count returns the number of live owners.
func (s *Owners) Count() int {
	return s.owners.Size()
}

// All iterates live owners in creation order.
func (s *Owners) All() iter.Seq2[OwnerId, *Owner] {
	return func(yield func(OwnerId, *Owner) bool) {
		for id, owner := range s.owners.All() {
			if !yield(id, *owner) {
				return
			}
		}
	}
}

// Get resolves the reference.
func (r OwnerRef) Get() (*Owner, error) {
	if r.owners == nil {
		return nil, fmt.Errorf("owner ref %d has no directory: %w", r.Id, ErrInvalidState)
	}
	return r.owners.Get(r.Id)
}

// Valid reports whether the referenced owner still exists.
func (r OwnerRef) Valid() bool {
	return r.owners != nil && r.owners.owners.IsValid(r.Id)
}
