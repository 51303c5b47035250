package ecs

import (
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Hook is a callback run synchronously when a component of a given type is attached to or
// detached from an entity.
type Hook func(ctx HookContext)

// ComponentHooks are the lifecycle hooks of a component type. Nil hooks are ignored.
type ComponentHooks struct {
	// OnInsert runs right after the component is added to an entity. It doesn't run when an
	// existing component's value is overwritten.
	OnInsert Hook
	// OnRemove runs right before the component is removed from an entity, either explicitly or
	// because the entity is despawned. The component's value is still readable.
	OnRemove Hook
}

// HookContext is passed to a running hook.
type HookContext struct {
	world     *World
	entity    EntityID
	component ComponentID
	seq       uint64
}

// World returns the world the hook runs in. Reading components and updating the value of existing
// components is allowed; structural changes must go through Commands.
func (c HookContext) World() *World { return c.world }

// Entity returns the entity whose component triggered the hook.
func (c HookContext) Entity() EntityID { return c.entity }

// Component returns the ID of the component type that triggered the hook.
func (c HookContext) Component() ComponentID { return c.component }

// Seq returns the insertion sequence number of the component that triggered the hook. See
// InsertionSeq.
func (c HookContext) Seq() uint64 { return c.seq }

// Commands returns the world's deferred command queue.
func (c HookContext) Commands() *Commands { return &c.world.commands }

// Logger returns the world's logger.
func (c HookContext) Logger() *zerolog.Logger { return &c.world.logger }

// RegisterComponentHooks installs lifecycle hooks on the component type T, registering T if
// needed. Installation is all or nothing: it fails with ErrHookAlreadyRegistered if T already has
// a hook for an event being set, and with ErrComponentInUse if entities already carry T, since
// hooks are never run retroactively.
func RegisterComponentHooks[T Component](w *World, hooks ComponentHooks) error {
	cid, err := RegisterComponent[T](w)
	if err != nil {
		return eris.Wrap(err, "failed to register component")
	}

	cm := &w.state.components
	name := cm.names[cid]
	current := cm.hooks[cid]
	if hooks.OnInsert != nil && current.OnInsert != nil {
		return eris.Wrapf(ErrHookAlreadyRegistered, "insert hook on component %s", name)
	}
	if hooks.OnRemove != nil && current.OnRemove != nil {
		return eris.Wrapf(ErrHookAlreadyRegistered, "remove hook on component %s", name)
	}

	var filter bitmap.Bitmap
	filter.Set(uint32(cid))
	for _, arch := range w.state.archContains(filter) {
		if len(arch.entities) > 0 {
			return eris.Wrapf(ErrComponentInUse, "component %s", name)
		}
	}

	if hooks.OnInsert != nil {
		current.OnInsert = hooks.OnInsert
	}
	if hooks.OnRemove != nil {
		current.OnRemove = hooks.OnRemove
	}
	cm.hooks[cid] = current

	w.logger.Debug().
		Uint32("component_id", uint32(cid)).
		Str("component_name", name).
		Bool("on_insert", current.OnInsert != nil).
		Bool("on_remove", current.OnRemove != nil).
		Msg("component hooks registered")
	return nil
}

// runInsertHook runs the insert hook of the component, if any.
func (w *World) runInsertHook(eid EntityID, cid ComponentID) {
	w.runHook(w.state.components.hooks[cid].OnInsert, eid, cid)
}

// runRemoveHook runs the remove hook of the component, if any.
func (w *World) runRemoveHook(eid EntityID, cid ComponentID) {
	w.runHook(w.state.components.hooks[cid].OnRemove, eid, cid)
}

func (w *World) runHook(hook Hook, eid EntityID, cid ComponentID) {
	if hook == nil {
		return
	}
	w.hookDepth++
	defer func() { w.hookDepth-- }()
	seq := w.insertions[insertionKey{entity: eid, component: cid}]
	hook(HookContext{world: w, entity: eid, component: cid, seq: seq})
}

// inHook reports whether a hook is currently running.
func (w *World) inHook() bool {
	return w.hookDepth > 0
}
