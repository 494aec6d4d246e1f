package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/slotstore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsDestroyOwner(t *testing.T) {
	registry := ecs.NewRegistry()
	commands := ecs.NewCommands(registry)

	owner := ecs.NewOwner(registry)
	pos, err := ecs.AddComponent(owner, Position{X: 1})
	require.NoError(t, err)
	vel, err := ecs.AddComponent(owner, Velocity{DX: 1})
	require.NoError(t, err)

	commands.DestroyOwner(owner)
	commands.DestroyOwner(owner)
	assert.Equal(t, 2, commands.Len())

	// Nothing happens until Flush.
	assert.True(t, ecs.Container[Position](registry).IsValid(pos))

	require.NoError(t, commands.Flush())
	assert.Equal(t, 0, commands.Len())

	assert.False(t, ecs.Container[Position](registry).IsValid(pos))
	assert.False(t, ecs.Container[Velocity](registry).IsValid(vel))
	assert.False(t, ecs.Container[Position](registry).NeedsCull())
	assert.False(t, ecs.Container[Velocity](registry).NeedsCull())
	assert.Empty(t, owner.Types())
}

func TestCommandsBatchRemovals(t *testing.T) {
	registry := ecs.NewRegistry()
	commands := ecs.NewCommands(registry)

	owners := make([]*ecs.Owner, 100)
	for i := range owners {
		owners[i] = ecs.NewOwner(registry)
		_, err := ecs.AddComponent(owners[i], Score(i))
		require.NoError(t, err)
	}

	for i := 0; i < len(owners); i += 2 {
		commands.DestroyOwner(owners[i])
	}
	require.NoError(t, commands.Flush())

	scores := ecs.Container[Score](registry)
	assert.Equal(t, 50, scores.Size())
	assert.False(t, scores.NeedsCull())
	assert.Len(t, scores.Values(), 50)
	for i, owner := range owners {
		got := componentValues[Score](t, owner)
		if i%2 == 0 {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, []Score{Score(i)}, got)
		}
	}
}

func TestCommandsRemoveComponentsOfType(t *testing.T) {
	registry := ecs.NewRegistry()
	commands := ecs.NewCommands(registry)

	owner := ecs.NewOwner(registry)
	_, err := ecs.AddComponent(owner, Position{X: 1})
	require.NoError(t, err)
	_, err = ecs.AddComponent(owner, Health{Current: 5})
	require.NoError(t, err)

	commands.RemoveComponentsOfType(owner, reflect.TypeFor[Position]())
	require.NoError(t, commands.Flush())

	assert.False(t, ecs.HasComponent[Position](owner))
	assert.True(t, ecs.HasComponent[Health](owner))
	assert.Equal(t, 0, ecs.Container[Position](registry).Size())
}

func TestCommandsRemoveSingle(t *testing.T) {
	registry := ecs.NewRegistry()
	commands := ecs.NewCommands(registry)

	a := ecs.Register(registry, Tag("a"))
	b := ecs.Register(registry, Tag("b"))

	commands.Remove(reflect.TypeFor[Tag](), a)
	require.NoError(t, commands.Flush())

	tags := ecs.Container[Tag](registry)
	assert.False(t, tags.IsValid(a))
	assert.True(t, tags.IsValid(b))
	assert.False(t, tags.NeedsCull())
}

func TestCommandsDeferRunsAfterRemovals(t *testing.T) {
	registry := ecs.NewRegistry()
	commands := ecs.NewCommands(registry)

	owner := ecs.NewOwner(registry)
	_, err := ecs.AddComponent(owner, Position{})
	require.NoError(t, err)

	var sizeAtDefer = -1
	commands.Defer(func() {
		sizeAtDefer = ecs.Container[Position](registry).Size()
	})
	commands.DestroyOwner(owner)

	require.NoError(t, commands.Flush())
	assert.Equal(t, 0, sizeAtDefer)
}

func TestCommandsSkipRemovalsForDestroyedOwners(t *testing.T) {
	registry := ecs.NewRegistry()
	commands := ecs.NewCommands(registry)

	owner := ecs.NewOwner(registry)
	_, err := ecs.AddComponent(owner, Position{})
	require.NoError(t, err)

	commands.RemoveComponentsOfType(owner, reflect.TypeFor[Position]())
	commands.DestroyOwner(owner)

	require.NoError(t, commands.Flush())
	assert.Empty(t, owner.Types())
}

func TestCommandsCollectErrors(t *testing.T) {
	registry := ecs.NewRegistry()
	commands := ecs.NewCommands(registry)

	keep := ecs.Register(registry, Tag("keep"))
	gone := ecs.Register(registry, Tag("gone"))

	commands.Remove(reflect.TypeFor[Velocity](), 0)
	commands.Remove(reflect.TypeFor[Tag](), 99)
	commands.Remove(reflect.TypeFor[Tag](), gone)
	commands.DestroyOwner(&ecs.Owner{})

	err := commands.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, ecs.ErrNotFound)
	assert.ErrorIs(t, err, ecs.ErrInvalidState)

	// Valid commands in the same batch still apply.
	tags := ecs.Container[Tag](registry)
	assert.True(t, tags.IsValid(keep))
	assert.False(t, tags.IsValid(gone))
	assert.Equal(t, 0, commands.Len())
}
