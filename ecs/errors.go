package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id was never issued or no longer refers
	// to a live record.
	ErrNotFound = errors.New("slot not found")

	// ErrInvalidState is returned by owner operations when the owner is not
	// bound to a usable registry.
	ErrInvalidState = errors.New("invalid state")

	// ErrRegistryClosed is returned for owners whose registry was closed.
	// It matches ErrInvalidState with errors.Is.
	ErrRegistryClosed = fmt.Errorf("registry closed: %w", ErrInvalidState)

	errNilRegistry = fmt.Errorf("owner has no registry: %w", ErrInvalidState)
)

func notFound(id SlotId) error {
	return fmt.Errorf("slot %d: %w", id, ErrNotFound)
}
