package exclusive

import (
	"github.com/argus-labs/exclusive/pkg/ecs"
	"github.com/rotisserie/eris"
)

// Group identifies an exclusivity domain. Implementations are usually empty structs; the method is
// called on the zero value.
type Group interface {
	GroupName() string
}

// tracker is the per-entity, per-group record of the member currently owning the group and the
// insertion sequence number of that member.
type tracker[G Group] struct {
	Owner ecs.ComponentID `json:"owner"`
	Seq   uint64          `json:"seq"`
}

func (tracker[G]) Name() string {
	var g G
	return "exclusive." + g.GroupName()
}

// Register makes T a member of group G. Inserting T on an entity evicts whichever member of G the
// entity had, and removing T clears the entity's slot for G. Call it during setup, before entities
// carry T: it fails with ecs.ErrComponentInUse otherwise, and with ecs.ErrHookAlreadyRegistered if
// T is already a member of G or of another group.
func Register[G Group, T ecs.Component](w *ecs.World) error {
	var (
		g    G
		zero T
	)
	if g.GroupName() == "" {
		return eris.New("group name cannot be empty")
	}

	if _, err := ecs.RegisterComponent[tracker[G]](w); err != nil {
		return eris.Wrapf(err, "failed to register tracker for group %s", g.GroupName())
	}

	err := ecs.RegisterComponentHooks[T](w, ecs.ComponentHooks{
		OnInsert: onInsert[G],
		OnRemove: onRemove[G],
	})
	if err != nil {
		return eris.Wrapf(err, "failed to add %s to group %s", zero.Name(), g.GroupName())
	}

	return nil
}

// Owner returns the member of G currently held by the entity.
func Owner[G Group](w *ecs.World, eid ecs.EntityID) (ecs.ComponentID, bool) {
	s, ok := slot[G](w, eid)
	return s.Owner, ok
}
