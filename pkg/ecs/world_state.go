package ecs

import (
	"github.com/argus-labs/exclusive/pkg/assert"
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// worldState owns the storage of a world: registered component types, entities and archetypes.
// Its methods apply a single structural change and never run hooks or flush commands; that is the
// World's job.
type worldState struct {
	components componentManager
	entities   entityManager
	archetypes []*archetype // Index is the archetype ID
}

func newWorldState() *worldState {
	return &worldState{
		components: newComponentManager(),
		entities:   newEntityManager(),
		archetypes: make([]*archetype, 0),
	}
}

// findOrCreateArchetype finds an existing archetype that matches the component types or creates a
// new archetype if none match.
func (ws *worldState) findOrCreateArchetype(components bitmap.Bitmap) *archetype {
	if arch := ws.archExact(components); arch != nil {
		return arch
	}

	arch := ws.components.createArchetype(len(ws.archetypes), components)
	ws.archetypes = append(ws.archetypes, arch)
	return arch
}

// archContains returns all archetypes that have the given component types.
func (ws *worldState) archContains(components bitmap.Bitmap) []*archetype {
	var archs []*archetype
	for _, arch := range ws.archetypes {
		if arch.contains(components) {
			archs = append(archs, arch)
		}
	}
	return archs
}

// archExact returns the archetype that exactly matches the given component types.
func (ws *worldState) archExact(components bitmap.Bitmap) *archetype {
	for _, arch := range ws.archetypes {
		if arch.exact(components) {
			return arch
		}
	}
	return nil
}

// archetypeOf returns the archetype of a live entity.
func (ws *worldState) archetypeOf(eid EntityID) (*archetype, error) {
	aid, err := ws.entities.getArchetype(eid)
	if err != nil {
		return nil, err
	}
	return ws.archetypes[aid], nil
}

// -------------------------------------------------------------------------------------------------
// Structural operations
// -------------------------------------------------------------------------------------------------

// opNewEntity creates an entity carrying the given components. Returns the component IDs in
// argument order.
func (ws *worldState) opNewEntity(components []Component) (EntityID, []ComponentID, error) {
	compBitmap, ids, err := ws.components.toComponentBitmap(components)
	if err != nil {
		return 0, nil, err
	}

	eid, err := ws.entities.new()
	if err != nil {
		return 0, nil, err
	}

	arch := ws.findOrCreateArchetype(compBitmap)
	row := arch.newEntity(eid)
	for i, component := range components {
		arch.column(ids[i]).setAbstract(row, component)
	}
	ws.entities.setArchetype(eid, arch.id)

	return eid, ids, nil
}

// planInsert resolves the components and reports which of them the entity doesn't have yet.
func (ws *worldState) planInsert(eid EntityID, components []Component) ([]ComponentID, []bool, error) {
	arch, err := ws.archetypeOf(eid)
	if err != nil {
		return nil, nil, err
	}

	_, ids, err := ws.components.toComponentBitmap(components)
	if err != nil {
		return nil, nil, err
	}

	isNew := make([]bool, len(ids))
	for i, id := range ids {
		isNew[i] = !arch.has(id)
	}
	return ids, isNew, nil
}

// opInsert writes the components to the entity, moving it to a new archetype when some of them
// are new. Returns the IDs of the newly added components in argument order.
func (ws *worldState) opInsert(eid EntityID, components []Component) ([]ComponentID, error) {
	ids, isNew, err := ws.planInsert(eid, components)
	if err != nil {
		return nil, err
	}

	arch, err := ws.archetypeOf(eid)
	if err != nil {
		return nil, err
	}

	added := make([]ComponentID, 0, len(ids))
	target := arch.components.Clone(nil)
	for i, id := range ids {
		if isNew[i] {
			target.Set(uint32(id))
			added = append(added, id)
		}
	}

	row, _ := arch.rows.get(eid)
	if len(added) > 0 {
		dest := ws.findOrCreateArchetype(target)
		assert.That(dest.id != arch.id, "entity moved into its existing archetype")
		row = arch.moveEntity(dest, eid)
		ws.entities.setArchetype(eid, dest.id)
		arch = dest
	}

	for i, component := range components {
		arch.column(ids[i]).setAbstract(row, component)
	}

	return added, nil
}

// opRemove detaches a component from the entity.
func (ws *worldState) opRemove(eid EntityID, cid ComponentID) error {
	arch, err := ws.archetypeOf(eid)
	if err != nil {
		return err
	}
	if !arch.has(cid) {
		return eris.Wrapf(ErrComponentNotFound, "component id %d on entity %d", cid, eid)
	}

	target := arch.components.Clone(nil)
	target.Remove(uint32(cid))

	dest := ws.findOrCreateArchetype(target)
	arch.moveEntity(dest, eid)
	ws.entities.setArchetype(eid, dest.id)
	return nil
}

// opRemoveEntity destroys the entity and all of its components.
func (ws *worldState) opRemoveEntity(eid EntityID) error {
	arch, err := ws.archetypeOf(eid)
	if err != nil {
		return err
	}
	arch.removeEntity(eid)
	ws.entities.release(eid)
	return nil
}

// -------------------------------------------------------------------------------------------------
// Component access
// -------------------------------------------------------------------------------------------------

// locate returns the entity's archetype, row and the ID of the component, checking that the
// entity carries it.
func (ws *worldState) locate(eid EntityID, name string) (*archetype, int, ComponentID, error) {
	cid, err := ws.components.getID(name)
	if err != nil {
		return nil, 0, 0, err
	}
	arch, err := ws.archetypeOf(eid)
	if err != nil {
		return nil, 0, 0, err
	}
	if !arch.has(cid) {
		return nil, 0, 0, eris.Wrapf(ErrComponentNotFound, "component %s on entity %d", name, eid)
	}
	row, exists := arch.rows.get(eid)
	assert.That(exists, "entity %d is not in its archetype", eid)
	return arch, row, cid, nil
}

func getComponent[T Component](ws *worldState, eid EntityID) (T, error) {
	var zero T
	arch, row, cid, err := ws.locate(eid, zero.Name())
	if err != nil {
		return zero, err
	}
	col, ok := arch.column(cid).(*column[T])
	assert.That(ok, "column type mismatch for component %s", zero.Name())
	return col.get(row), nil
}

// setExisting updates the value of a component the entity already has.
func setExisting[T Component](ws *worldState, eid EntityID, component T) error {
	arch, row, cid, err := ws.locate(eid, component.Name())
	if err != nil {
		return err
	}
	col, ok := arch.column(cid).(*column[T])
	assert.That(ok, "column type mismatch for component %s", component.Name())
	col.set(row, component)
	return nil
}
