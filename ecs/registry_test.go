package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/slotstore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContainerIsMemoized(t *testing.T) {
	registry := ecs.NewRegistry()

	a := ecs.Container[Position](registry)
	b := ecs.Container[Position](registry)
	assert.Same(t, a, b)

	registry.ClearAll()
	assert.Same(t, a, ecs.Container[Position](registry))

	// Distinct types get distinct containers.
	ecs.Register(registry, Score(1))
	ecs.Register(registry, Tag("x"))
	assert.Len(t, registry.Types(), 3)
}

func TestRegisterDelegatesToContainer(t *testing.T) {
	registry := ecs.NewRegistry()

	id0 := ecs.Register(registry, Position{X: 1})
	id1 := ecs.Register(registry, Position{X: 2})
	vel := ecs.Register(registry, Velocity{DX: 3})

	assert.Equal(t, ecs.SlotId(0), id0)
	assert.Equal(t, ecs.SlotId(1), id1)
	// Ids are per container.
	assert.Equal(t, ecs.SlotId(0), vel)

	positions := ecs.Container[Position](registry)
	assert.Equal(t, float32(2), positions.MustGet(id1).X)
}

func TestComponentsByType(t *testing.T) {
	registry := ecs.NewRegistry()
	ecs.Register(registry, 1.5)
	mid := ecs.Register(registry, 2.5)
	ecs.Register(registry, 3.5)

	require.NoError(t, ecs.Container[float64](registry).RemoveDeferred(mid))

	assert.Equal(t, []float64{1.5, 3.5}, ecs.ComponentsByType[float64](registry))
	assert.Empty(t, ecs.ComponentsByType[Health](registry))
}

func TestDestroyAllOfType(t *testing.T) {
	registry := ecs.NewRegistry()
	pos := ecs.Register(registry, Position{X: 1})
	vel := ecs.Register(registry, Velocity{DX: 1})

	ecs.DestroyAllOfType[Position](registry)

	assert.False(t, ecs.Container[Position](registry).IsValid(pos))
	assert.True(t, ecs.Container[Velocity](registry).IsValid(vel))

	// Types that never had a container are ignored.
	ecs.DestroyAllOfType[Health](registry)
	assert.NotContains(t, registry.Types(), reflect.TypeFor[Health]())

	assert.Equal(t, ecs.SlotId(1), ecs.Register(registry, Position{}))
}

func TestClearAllKeepsContainersAndNames(t *testing.T) {
	registry := ecs.NewRegistry()
	ecs.SetDisplayName[float32](registry, "health")
	ecs.Register(registry, float32(57))
	ecs.Register(registry, Name{Value: "n"})

	registry.ClearAll()

	assert.Equal(t, 0, ecs.Container[float32](registry).Size())
	assert.Equal(t, 0, ecs.Container[Name](registry).Size())
	assert.Len(t, registry.Types(), 2)
	assert.Equal(t, "health", ecs.DisplayName[float32](registry))
	assert.Equal(t, ecs.SlotId(1), ecs.Register(registry, float32(1)))
}

func TestDisplayNames(t *testing.T) {
	registry := ecs.NewRegistry()
	assert.Equal(t, ecs.UnknownDisplayName, ecs.DisplayName[byte](registry))

	ecs.SetDisplayName[byte](registry, "name")
	ecs.SetDisplayName[float32](registry, "health")
	assert.Equal(t, "name", ecs.DisplayName[byte](registry))
	assert.Equal(t, "health", ecs.DisplayName[float32](registry))
	assert.Equal(t, "health", registry.DisplayNameOf(reflect.TypeFor[float32]()))

	ecs.SetDisplayName[byte](registry, "initial")
	assert.Equal(t, "initial", ecs.DisplayName[byte](registry))

	names := registry.DisplayNames()
	assert.Len(t, names, 2)
	names[reflect.TypeFor[int]()] = "mutated"
	assert.Equal(t, ecs.UnknownDisplayName, ecs.DisplayName[int](registry))

	// Names do not create containers.
	assert.Empty(t, registry.Types())
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := ecs.NewRegistry()
	b := ecs.NewRegistry()

	ecs.SetDisplayName[Position](a, "pos")
	ecs.Register(a, Position{X: 1})

	assert.Equal(t, ecs.UnknownDisplayName, ecs.DisplayName[Position](b))
	assert.Equal(t, 0, ecs.Container[Position](b).Size())
	assert.Equal(t, ecs.SlotId(0), ecs.Register(b, Position{}))
}

func TestHandleIsTypeErased(t *testing.T) {
	registry := ecs.NewRegistry()
	a := ecs.Register(registry, 1.0)
	b := ecs.Register(registry, 2.0)

	_, ok := registry.Handle(reflect.TypeFor[string]())
	assert.False(t, ok)

	handle, ok := registry.Handle(reflect.TypeFor[float64]())
	require.True(t, ok)

	assert.True(t, handle.IsValid(a))
	require.NoError(t, handle.Remove(a))
	assert.False(t, handle.IsValid(a))
	assert.ErrorIs(t, handle.Remove(99), ecs.ErrNotFound)

	handle.Reserve(128)
	assert.GreaterOrEqual(t, ecs.Container[float64](registry).Cap(), 128)
	assert.Equal(t, 2.0, *ecs.Container[float64](registry).MustGet(b))

	handle.Clear()
	assert.False(t, handle.IsValid(b))
}

func TestWithInitialCapacity(t *testing.T) {
	registry := ecs.NewRegistry(ecs.WithInitialCapacity(256))
	assert.GreaterOrEqual(t, ecs.Container[Position](registry).Cap(), 256)
}

func TestCloseRegistry(t *testing.T) {
	registry := ecs.NewRegistry()
	ecs.SetDisplayName[Position](registry, "pos")
	ecs.Register(registry, Position{})

	registry.Close()
	registry.Close()

	assert.True(t, registry.Closed())
	assert.Empty(t, registry.Types())
	assert.Equal(t, ecs.UnknownDisplayName, ecs.DisplayName[Position](registry))
	assert.PanicsWithValue(t, ecs.ErrRegistryClosed, func() {
		ecs.Container[Position](registry)
	})
}

func TestRegistryLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	registry := ecs.NewRegistry(ecs.WithLogger(zap.New(core)))

	ecs.Register(registry, Position{})
	ecs.Register(registry, Position{})
	ecs.Register(registry, Velocity{})
	registry.ClearAll()

	assert.Equal(t, 2, logs.FilterMessage("container created").Len())
	cleared := logs.FilterMessage("registry cleared").All()
	require.Len(t, cleared, 1)
	assert.Equal(t, int64(3), cleared[0].ContextMap()["removed"])
}

func TestWithNilLoggerKeepsDefault(t *testing.T) {
	registry := ecs.NewRegistry(ecs.WithLogger(nil))
	assert.NotNil(t, registry.Logger())
}
