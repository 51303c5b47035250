package ecs_test

import (
	"testing"

	"github.com/argus-labs/exclusive/pkg/ecs"
	. "github.com/argus-labs/exclusive/pkg/ecs/internal/testutils" //nolint:revive // test components
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookEvent struct {
	event     string
	entity    ecs.EntityID
	component string
}

// recordHooks installs hooks on T that append to the returned log.
func recordHooks[T ecs.Component](t *testing.T, w *ecs.World, log *[]hookEvent) {
	t.Helper()
	var zero T
	err := ecs.RegisterComponentHooks[T](w, ecs.ComponentHooks{
		OnInsert: func(ctx ecs.HookContext) {
			*log = append(*log, hookEvent{"insert", ctx.Entity(), zero.Name()})
		},
		OnRemove: func(ctx ecs.HookContext) {
			*log = append(*log, hookEvent{"remove", ctx.Entity(), zero.Name()})
		},
	})
	require.NoError(t, err)
}

func newWorld(t *testing.T) *ecs.World {
	t.Helper()
	w := ecs.NewWorld()
	for _, register := range []func(*ecs.World) (ecs.ComponentID, error){
		ecs.RegisterComponent[Health],
		ecs.RegisterComponent[Position],
		ecs.RegisterComponent[Velocity],
		ecs.RegisterComponent[Experience],
	} {
		_, err := register(w)
		require.NoError(t, err)
	}
	return w
}

func TestHooks_InsertFiresAfterAttachInArgumentOrder(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	var log []hookEvent
	recordHooks[Health](t, w, &log)
	recordHooks[Position](t, w, &log)

	// The insert hook sees the whole batch attached.
	var sawPosition bool
	require.NoError(t, ecs.RegisterComponentHooks[Velocity](w, ecs.ComponentHooks{
		OnInsert: func(ctx ecs.HookContext) {
			sawPosition = ecs.Has[Position](ctx.World(), ctx.Entity())
		},
	}))

	eid, err := ecs.Spawn(w, Health{Value: 1})
	require.NoError(t, err)
	require.NoError(t, ecs.Insert(w, eid, Velocity{}, Position{}))

	assert.Equal(t, []hookEvent{
		{"insert", eid, "Health"},
		{"insert", eid, "Position"},
	}, log)
	assert.True(t, sawPosition)
}

func TestHooks_OverwriteDoesNotFireInsert(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	var log []hookEvent
	recordHooks[Health](t, w, &log)

	eid, err := ecs.Spawn(w, Health{Value: 1})
	require.NoError(t, err)
	require.NoError(t, ecs.Insert(w, eid, Health{Value: 2}))
	require.NoError(t, ecs.Set(w, eid, Health{Value: 3}))

	assert.Len(t, log, 1)
	h, err := ecs.Get[Health](w, eid)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Value)
}

func TestHooks_RemoveFiresBeforeDetach(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	var seen []int
	require.NoError(t, ecs.RegisterComponentHooks[Health](w, ecs.ComponentHooks{
		OnRemove: func(ctx ecs.HookContext) {
			h, err := ecs.Get[Health](ctx.World(), ctx.Entity())
			require.NoError(t, err)
			seen = append(seen, h.Value)
		},
	}))

	a, err := ecs.Spawn(w, Health{Value: 10})
	require.NoError(t, err)
	b, err := ecs.Spawn(w, Health{Value: 20}, Position{})
	require.NoError(t, err)

	require.NoError(t, ecs.Remove[Health](w, a))
	require.NoError(t, ecs.Despawn(w, b))

	assert.Equal(t, []int{10, 20}, seen)
	assert.False(t, ecs.Has[Health](w, a))
	assert.False(t, ecs.Alive(w, b))
}

func TestHooks_DespawnFiresRemoveForEveryComponent(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	var log []hookEvent
	recordHooks[Health](t, w, &log)
	recordHooks[Position](t, w, &log)

	eid, err := ecs.Spawn(w, Position{}, Health{})
	require.NoError(t, err)
	log = nil

	require.NoError(t, ecs.Despawn(w, eid))
	// Component ID order: Health was registered before Position.
	assert.Equal(t, []hookEvent{
		{"remove", eid, "Health"},
		{"remove", eid, "Position"},
	}, log)
}

func TestRegisterComponentHooks_Errors(t *testing.T) {
	t.Parallel()

	noop := func(ecs.HookContext) {}

	t.Run("duplicate insert hook", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		require.NoError(t, ecs.RegisterComponentHooks[Health](w, ecs.ComponentHooks{OnInsert: noop}))
		err := ecs.RegisterComponentHooks[Health](w, ecs.ComponentHooks{OnInsert: noop, OnRemove: noop})
		require.ErrorIs(t, err, ecs.ErrHookAlreadyRegistered)

		// All or nothing: the remove hook wasn't installed either.
		require.NoError(t, ecs.RegisterComponentHooks[Health](w, ecs.ComponentHooks{OnRemove: noop}))
	})

	t.Run("component already in use", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		_, err := ecs.Spawn(w, Health{})
		require.NoError(t, err)
		err = ecs.RegisterComponentHooks[Health](w, ecs.ComponentHooks{OnInsert: noop})
		require.ErrorIs(t, err, ecs.ErrComponentInUse)
	})

	t.Run("registers the component", func(t *testing.T) {
		t.Parallel()
		w := ecs.NewWorld()
		require.NoError(t, ecs.RegisterComponentHooks[PlayerTag](w, ecs.ComponentHooks{OnInsert: noop}))
		_, err := ecs.ComponentIDOf[PlayerTag](w)
		require.NoError(t, err)
	})
}

func TestHooks_StructuralChangesAreRejected(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	var errs []error
	require.NoError(t, ecs.RegisterComponentHooks[Health](w, ecs.ComponentHooks{
		OnInsert: func(ctx ecs.HookContext) {
			hw, eid := ctx.World(), ctx.Entity()
			_, err := ecs.Spawn(hw)
			errs = append(errs, err)
			errs = append(errs, ecs.Insert(hw, eid, Velocity{}))
			errs = append(errs, ecs.Set(hw, eid, Experience{}))
			errs = append(errs, ecs.Remove[Position](hw, eid))
			errs = append(errs, ecs.Despawn(hw, eid))

			// Value updates of existing components are fine.
			require.NoError(t, ecs.Set(hw, eid, Position{X: 5}))
			require.NoError(t, ecs.Insert(hw, eid, Health{Value: 7}))
		},
	}))

	eid, err := ecs.Spawn(w, Position{})
	require.NoError(t, err)
	require.NoError(t, ecs.Insert(w, eid, Health{}))

	require.Len(t, errs, 5)
	for _, err := range errs {
		require.ErrorIs(t, err, ecs.ErrStructuralChangeInHook)
	}

	p, err := ecs.Get[Position](w, eid)
	require.NoError(t, err)
	assert.Equal(t, 5, p.X)
	h, err := ecs.Get[Health](w, eid)
	require.NoError(t, err)
	assert.Equal(t, 7, h.Value)
	assert.False(t, ecs.Has[Velocity](w, eid))
}

func TestInsertionSeq(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	var hookSeqs []uint64
	require.NoError(t, ecs.RegisterComponentHooks[Health](w, ecs.ComponentHooks{
		OnInsert: func(ctx ecs.HookContext) { hookSeqs = append(hookSeqs, ctx.Seq()) },
		OnRemove: func(ctx ecs.HookContext) { hookSeqs = append(hookSeqs, ctx.Seq()) },
	}))
	hid, err := ecs.ComponentIDOf[Health](w)
	require.NoError(t, err)
	pid, err := ecs.ComponentIDOf[Position](w)
	require.NoError(t, err)

	eid, err := ecs.Spawn(w, Position{}, Health{})
	require.NoError(t, err)
	posSeq, ok := ecs.InsertionSeq(w, eid, pid)
	require.True(t, ok)
	healthSeq, ok := ecs.InsertionSeq(w, eid, hid)
	require.True(t, ok)
	assert.Less(t, posSeq, healthSeq, "batches are numbered in argument order")

	// Overwriting keeps the number.
	require.NoError(t, ecs.Insert(w, eid, Health{Value: 5}))
	got, _ := ecs.InsertionSeq(w, eid, hid)
	assert.Equal(t, healthSeq, got)

	// Re-inserting gets a newer one.
	require.NoError(t, ecs.Remove[Health](w, eid))
	_, ok = ecs.InsertionSeq(w, eid, hid)
	assert.False(t, ok)
	require.NoError(t, ecs.Insert(w, eid, Health{}))
	reinserted, ok := ecs.InsertionSeq(w, eid, hid)
	require.True(t, ok)
	assert.Greater(t, reinserted, healthSeq)

	// Hooks see the number of the insertion they are about.
	assert.Equal(t, []uint64{healthSeq, healthSeq, reinserted}, hookSeqs)

	require.NoError(t, ecs.Despawn(w, eid))
	_, ok = ecs.InsertionSeq(w, eid, pid)
	assert.False(t, ok)
}
