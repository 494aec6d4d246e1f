package ecs

import (
	"maps"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Registry owns one SlotContainer per record type. Containers are created on
// first use and live as long as the registry. Each Registry is independent,
// so several can coexist without interfering with each other.
type Registry struct {
	containers      map[reflect.Type]iContainer
	names           map[reflect.Type]string
	logger          *zap.Logger
	initialCapacity int
	closed          bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for container lifecycle events.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithInitialCapacity reserves room for n records in every container the
// registry creates.
func WithInitialCapacity(n int) RegistryOption {
	return func(r *Registry) {
		r.initialCapacity = n
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		containers: make(map[reflect.Type]iContainer),
		names:      make(map[reflect.Type]string),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Container returns the container for T, creating it on first use.
// It panics if the registry has been closed.
func Container[T any](r *Registry) *SlotContainer[T] {
	t := reflect.TypeFor[T]()
	if c, ok := r.containers[t]; ok {
		return c.(*SlotContainer[T])
	}
	if r.closed {
		panic(ErrRegistryClosed)
	}

	c := NewSlotContainer[T]()
	if r.initialCapacity > 0 {
		c.Reserve(r.initialCapacity)
	}
	r.containers[t] = c

	r.logger.Debug("container created",
		zap.Stringer("type", t),
		zap.Int("capacity", c.Cap()))
	return c
}

// Register stores value in the container for T and returns its id.
func Register[T any](r *Registry, value T) SlotId {
	return Container[T](r).Insert(value)
}

// ComponentsByType returns every live record of type T in store order. The
// slice aliases the container and is only valid until the next mutation.
func ComponentsByType[T any](r *Registry) []T {
	return Container[T](r).Values()
}

// DestroyAllOfType removes every record of type T. Other containers are left
// untouched.
func DestroyAllOfType[T any](r *Registry) {
	t := reflect.TypeFor[T]()
	c, ok := r.containers[t]
	if !ok {
		return
	}
	size := c.Size()
	c.Clear()
	r.logger.Debug("container cleared", zap.Stringer("type", t), zap.Int("removed", size))
}

// Handle returns the type-erased handle for an existing container.
func (r *Registry) Handle(t reflect.Type) (ContainerHandle, bool) {
	c, ok := r.containers[t]
	if !ok {
		return nil, false
	}
	return c, true
}

func (r *Registry) container(t reflect.Type) (iContainer, bool) {
	c, ok := r.containers[t]
	return c, ok
}

// Types returns the record types that have a container, sorted by name.
func (r *Registry) Types() []reflect.Type {
	return sortedTypes(r.containers)
}

func sortedTypes[V any](m map[reflect.Type]V) []reflect.Type {
	types := slices.Collect(maps.Keys(m))
	slices.SortFunc(types, func(a, b reflect.Type) int {
		return strings.Compare(a.String(), b.String())
	})
	return types
}

// ClearAll empties every container. Containers and display names survive;
// ids issued before the clear stay invalid forever.
func (r *Registry) ClearAll() {
	removed := 0
	for _, c := range r.containers {
		removed += c.Size()
		c.Clear()
	}
	r.logger.Debug("registry cleared",
		zap.Int("containers", len(r.containers)),
		zap.Int("removed", removed))
}

func (r *Registry) cullAll() {
	for _, c := range r.containers {
		c.Cull()
	}
}

// Close clears and drops every container and display name. Owners bound to
// a closed registry fail with ErrRegistryClosed.
func (r *Registry) Close() {
	if r.closed {
		return
	}
	r.ClearAll()
	clear(r.containers)
	clear(r.names)
	r.closed = true
	r.logger.Debug("registry closed")
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	return r.closed
}

// Logger returns the registry's logger.
func (r *Registry) Logger() *zap.Logger {
	return r.logger
}
