package exclusive

import (
	"github.com/argus-labs/exclusive/pkg/assert"
	"github.com/argus-labs/exclusive/pkg/ecs"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// onInsert runs when a member of G is added to an entity.
func onInsert[G Group](ctx ecs.HookContext) {
	w, eid, self, seq := ctx.World(), ctx.Entity(), ctx.Component(), ctx.Seq()

	current, ok := slot[G](w, eid)
	if !ok {
		ctx.Commands().Entity(eid).Queue(claim[G](self, seq))
		return
	}

	// Updating an existing component's value is allowed inside hooks.
	err := ecs.Set(w, eid, tracker[G]{Owner: self, Seq: seq})
	assert.That(err == nil, "failed to update tracker in insert hook: %v", err)

	// The member was removed and re-added before its release was applied. It keeps the slot, and
	// the pending release will see it present and leave the tracker alone.
	if current.Owner == self {
		logReaction[G](ctx.Logger().Debug(), eid, self).Msg("member re-inserted while owning its group")
		return
	}

	logReaction[G](ctx.Logger().Debug(), eid, self).Uint32("evicted_id", uint32(current.Owner)).Msg("member evicted")
	ctx.Commands().Entity(eid).Queue(evict[G](current.Owner, current.Seq))
}

// onRemove runs right before a member of G is removed from an entity, or the entity is despawned.
func onRemove[G Group](ctx ecs.HookContext) {
	eid, self := ctx.Entity(), ctx.Component()

	current, ok := slot[G](ctx.World(), eid)
	// Either never tracked or already cleaned up.
	if !ok {
		return
	}
	// A newer member took over; this is its eviction or a stale removal.
	if current.Owner != self {
		return
	}
	ctx.Commands().Entity(eid).Queue(release[G](self))
}

// claim settles the slot for a member inserted while the entity had none. Claims apply in
// insertion order and the newest insertion wins: an older owner is evicted, and an insertion
// older than the owner is evicted itself. If the inserted member is gone by then, its insertion
// still evicts the members that were present when it happened.
func claim[G Group](member ecs.ComponentID, seq uint64) ecs.EntityCommand {
	return func(w *ecs.World, eid ecs.EntityID) error {
		current, tracked := slot[G](w, eid)
		if tracked && current.Seq >= seq {
			if current.Seq > seq && isCurrent(w, eid, member, seq) {
				return wrap[G](ecs.RemoveByID(w, eid, member), "claim")
			}
			return nil
		}

		if isCurrent(w, eid, member, seq) {
			if err := ecs.Set(w, eid, tracker[G]{Owner: member, Seq: seq}); err != nil {
				return wrap[G](err, "claim")
			}
		} else if tracked {
			if err := ecs.Remove[tracker[G]](w, eid); err != nil {
				return wrap[G](err, "claim")
			}
		}

		if !tracked || current.Owner == member || !isCurrent(w, eid, current.Owner, current.Seq) {
			return nil
		}
		return wrap[G](ecs.RemoveByID(w, eid, current.Owner), "claim")
	}
}

// evict removes a member that lost the slot, unless it has been removed or re-inserted since.
func evict[G Group](member ecs.ComponentID, seq uint64) ecs.EntityCommand {
	return func(w *ecs.World, eid ecs.EntityID) error {
		if !isCurrent(w, eid, member, seq) {
			return nil
		}
		return wrap[G](ecs.RemoveByID(w, eid, member), "evict")
	}
}

// release deletes the tracker of a member that was removed, unless another member took the slot
// or the same member was inserted again.
func release[G Group](member ecs.ComponentID) ecs.EntityCommand {
	return func(w *ecs.World, eid ecs.EntityID) error {
		current, ok := slot[G](w, eid)
		if !ok || current.Owner != member || ecs.HasID(w, eid, member) {
			return nil
		}
		return wrap[G](ecs.Remove[tracker[G]](w, eid), "release")
	}
}

func slot[G Group](w *ecs.World, eid ecs.EntityID) (tracker[G], bool) {
	s, err := ecs.Get[tracker[G]](w, eid)
	return s, err == nil
}

// isCurrent reports whether the member is attached to the entity by the insertion numbered seq.
func isCurrent(w *ecs.World, eid ecs.EntityID, member ecs.ComponentID, seq uint64) bool {
	got, ok := ecs.InsertionSeq(w, eid, member)
	return ok && got == seq
}

func logReaction[G Group](e *zerolog.Event, eid ecs.EntityID, member ecs.ComponentID) *zerolog.Event {
	var g G
	return e.Str("group", g.GroupName()).
		Uint32("entity_id", uint32(eid)).
		Uint32("component_id", uint32(member))
}

func wrap[G Group](err error, step string) error {
	if err == nil {
		return nil
	}
	var g G
	return eris.Wrapf(err, "group %s: %s", g.GroupName(), step)
}
