package ecs

import "github.com/rotisserie/eris"

// Spawn creates an entity with the given components and runs their insert hooks in argument order.
// All component types must be registered.
func Spawn(w *World, components ...Component) (EntityID, error) {
	if err := w.checkStructural("spawn"); err != nil {
		return 0, err
	}
	eid, err := w.spawn(components)
	if err != nil {
		return 0, err
	}
	return eid, w.Flush()
}

// Despawn deletes an entity and all its components from the world. The remove hooks of its
// components run first.
func Despawn(w *World, eid EntityID) error {
	if err := w.checkStructural("despawn"); err != nil {
		return err
	}
	return w.settle(w.despawn(eid))
}

// Alive checks if an entity exists in the world.
func Alive(w *World, eid EntityID) bool {
	return w.state.entities.isAlive(eid)
}

// Insert adds components to an entity in one archetype move. Components the entity already has are
// overwritten in place without running hooks. The insert hooks of the added components run in
// argument order once all of them are attached.
func Insert(w *World, eid EntityID, components ...Component) error {
	if w.inHook() {
		_, isNew, err := w.state.planInsert(eid, components)
		if err != nil {
			return err
		}
		for _, n := range isNew {
			if n {
				return w.checkStructural("insert")
			}
		}
	}
	return w.settle(w.insert(eid, components))
}

// Set sets a component on an entity. If the entity has the component type its value is updated,
// otherwise the component is added as with Insert. Updating a value is allowed inside hooks.
func Set[T Component](w *World, eid EntityID, component T) error {
	err := setExisting(w.state, eid, component)
	if err == nil {
		return nil
	}
	if !eris.Is(err, ErrComponentNotFound) {
		return err
	}
	return Insert(w, eid, component)
}

// Get gets a component from an entity.
// Returns an error if the entity doesn't exist or doesn't contain the component type.
func Get[T Component](w *World, eid EntityID) (T, error) {
	return getComponent[T](w.state, eid)
}

// Has checks if an entity has a specific component type.
// Returns false if either the entity doesn't exist or doesn't have the component.
func Has[T Component](w *World, eid EntityID) bool {
	_, err := Get[T](w, eid)
	return err == nil
}

// HasID checks if an entity has the component with the given ID.
func HasID(w *World, eid EntityID, cid ComponentID) bool {
	return hasID(w.state, eid, cid)
}

func hasID(ws *worldState, eid EntityID, cid ComponentID) bool {
	arch, err := ws.archetypeOf(eid)
	if err != nil {
		return false
	}
	return arch.has(cid)
}

// Remove removes a component from an entity, running its remove hook first.
// Returns an error if the entity or the component to remove doesn't exist.
func Remove[T Component](w *World, eid EntityID) error {
	cid, err := ComponentIDOf[T](w)
	if err != nil {
		return err
	}
	return RemoveByID(w, eid, cid)
}

// RemoveByID removes the component with the given ID from an entity, running its remove hook
// first.
func RemoveByID(w *World, eid EntityID, cid ComponentID) error {
	if err := w.checkStructural("remove"); err != nil {
		return err
	}
	return w.settle(w.remove(eid, cid))
}

// InsertionSeq returns the sequence number of the insertion that attached the component to the
// entity. Every time a component is newly added to an entity the world hands out the next number,
// in argument order for batches. Overwriting a component keeps its number. Returns false if the
// entity doesn't carry the component.
func InsertionSeq(w *World, eid EntityID, cid ComponentID) (uint64, bool) {
	seq, ok := w.insertions[insertionKey{entity: eid, component: cid}]
	return seq, ok
}

// ComponentsOf returns the IDs of the components of an entity in ascending order.
func ComponentsOf(w *World, eid EntityID) ([]ComponentID, error) {
	arch, err := w.state.archetypeOf(eid)
	if err != nil {
		return nil, err
	}
	return append([]ComponentID(nil), arch.compIDs...), nil
}
