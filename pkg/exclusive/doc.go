/*
Package exclusive keeps component types of a group mutually exclusive on an entity: an entity
carries at most one member of each group, and inserting a member evicts the one it had.

A group is a type implementing Group. Member types are registered once per group at setup, before
any entity carries them:

	type Stance struct{}

	func (Stance) GroupName() string { return "stance" }

	exclusive.Register[Stance, Standing](w)
	exclusive.Register[Stance, Crouching](w)

	eid, _ := ecs.Spawn(w, Standing{})
	_ = ecs.Insert(w, eid, Crouching{}) // Standing is removed

Each entity holding a member of a group also carries that group's slot, a hidden component naming
the current owner (see Owner). The slot is maintained by insert and remove hooks installed on the
member types. Hooks can't change an entity's shape, so the slot's creation and deletion, and the
removal of evicted members, go through the world's command queue. Queued steps carry the
insertion sequence number of the member they act for (see ecs.InsertionSeq) and re-read the slot
when applied, so interleaved insertions and removals settle to the most recent insertion: if that
member is still attached it is the only one left, otherwise the group is empty.

Groups are independent of each other. Nothing stops a component type from being a member of
several groups other than the host's one-hook-per-type rule, which makes the second registration
fail.
*/
package exclusive
