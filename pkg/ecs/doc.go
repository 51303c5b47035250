/*
Package ecs is a single-threaded, archetype-based entity component store with component lifecycle
hooks and a deferred command queue.

Entities are dense integer IDs. Entities with the same set of component types share an archetype,
whose data is stored column by column. Adding or removing a component moves the entity to another
archetype.

Hooks are registered per component type. An insert hook runs right after a component is attached
to an entity; a remove hook runs right before it is detached, while its value is still readable.
Hooks must not change the shape of any entity. Instead they queue structural changes on the
world's Commands, which are applied in FIFO order once the top-level operation that triggered the
hook returns:

	ecs.RegisterComponentHooks[Poisoned](w, ecs.ComponentHooks{
		OnInsert: func(ctx ecs.HookContext) {
			ctx.Commands().Entity(ctx.Entity()).Remove(Regenerating{})
		},
	})

Every exported mutation (Spawn, Insert, Set, Remove, RemoveByID, Despawn) flushes the queue before
returning, so callers outside of hooks always observe a settled world. World.Tick runs the
registered systems and flushes after each one.

A World is not safe for concurrent use.
*/
package ecs
