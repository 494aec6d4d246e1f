package ecs

import (
	"maps"
	"reflect"
)

// UnknownDisplayName is returned for types without a display name.
const UnknownDisplayName = "Unknown"

// SetDisplayName sets a human-readable name for T. Names are independent of
// containers and survive ClearAll.
func SetDisplayName[T any](r *Registry, name string) {
	r.names[reflect.TypeFor[T]()] = name
}

// DisplayName returns the name set for T, or UnknownDisplayName.
func DisplayName[T any](r *Registry) string {
	return r.DisplayNameOf(reflect.TypeFor[T]())
}

// DisplayNameOf returns the name set for t, or UnknownDisplayName.
func (r *Registry) DisplayNameOf(t reflect.Type) string {
	if name, ok := r.names[t]; ok {
		return name
	}
	return UnknownDisplayName
}

// DisplayNames returns a copy of every name that has been set.
func (r *Registry) DisplayNames() map[reflect.Type]string {
	return maps.Clone(r.names)
}
