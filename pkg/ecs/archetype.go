package ecs

import (
	"github.com/argus-labs/exclusive/pkg/assert"
	"github.com/kelindar/bitmap"
)

// archetypeID is the index of an archetype in the world state's archetype list.
type archetypeID = int

// archetype represents a collection of entities with the same component types.
// NOTE: We store the compCount instead of using Bitmap.Count() because counting bits is O(n). We
// store columns in a slice instead of a map because it's faster for small # of components.
type archetype struct {
	id         archetypeID   // Corresponds to the index in the archetypes array
	components bitmap.Bitmap // Bitmap of components contained in this archetype
	rows       sparseSet     // Entity ID -> row
	entities   []EntityID    // List of entities of this archetype
	compIDs    []ComponentID // Component ID of each column, in ascending order
	columns    []abstractColumn
	compCount  int // Number of component types in the archetype
}

// newArchetype creates an archetype for the given component types.
func newArchetype(
	aid archetypeID, components bitmap.Bitmap, compIDs []ComponentID, columns []abstractColumn,
) *archetype {
	assert.That(components.Count() == len(columns), "mismatched number of columns and components")
	assert.That(len(compIDs) == len(columns), "mismatched number of columns and component ids")
	return &archetype{
		id:         aid,
		components: components,
		rows:       newSparseSet(),
		entities:   make([]EntityID, 0),
		compIDs:    compIDs,
		columns:    columns,
		compCount:  len(columns),
	}
}

// exact returns true if the given components matches the archetype's exactly.
func (a *archetype) exact(components bitmap.Bitmap) bool {
	if a.compCount != components.Count() {
		return false
	}
	return a.contains(components)
}

// contains returns true if the archetype contains all of the components in the given components.
func (a *archetype) contains(components bitmap.Bitmap) bool {
	intersect := components.Clone(nil)
	intersect.And(a.components)
	return intersect.Count() == components.Count()
}

// has reports whether the archetype stores the component.
func (a *archetype) has(cid ComponentID) bool {
	return a.components.Contains(uint32(cid))
}

// column returns the column storing the component, or nil if the archetype doesn't have it.
func (a *archetype) column(cid ComponentID) abstractColumn {
	for i, id := range a.compIDs {
		if id == cid {
			return a.columns[i]
		}
	}
	return nil
}

// -------------------------------------------------------------------------------------------------
// Entity operations
// -------------------------------------------------------------------------------------------------

// newEntity adds the entity to the archetype with zero valued components and returns its row.
func (a *archetype) newEntity(eid EntityID) int {
	a.entities = append(a.entities, eid)

	for _, column := range a.columns {
		column.extend()
		assert.That(column.len() == len(a.entities), "column components length doesn't match entities")
	}

	row := len(a.entities) - 1
	a.rows.set(eid, row)
	return row
}

// removeEntity removes an entity from the archetype by swapping the last entity into its row.
// Expects the caller to check that the entity belongs to this archetype.
func (a *archetype) removeEntity(eid EntityID) {
	row, exists := a.rows.get(eid)
	assert.That(exists, "entity %d is not in archetype %d", eid, a.id)

	lastIndex := len(a.entities) - 1

	a.entities[row] = a.entities[lastIndex]
	a.entities = a.entities[:lastIndex]

	for _, column := range a.columns {
		column.remove(row)
		assert.That(column.len() == len(a.entities), "column components length doesn't match entities")
	}

	ok := a.rows.remove(eid)
	assert.That(ok, "entity isn't removed from sparse set")

	// Nothing was swapped.
	if row == lastIndex {
		return
	}

	movedID := a.entities[row]
	a.rows.set(movedID, row)
}

// moveEntity moves an entity to the destination archetype, copying the components both archetypes
// have in common. Components only the destination has are left zero valued. Returns the entity's
// row in the destination.
func (a *archetype) moveEntity(destination *archetype, eid EntityID) int {
	row, exists := a.rows.get(eid)
	assert.That(exists, "entity %d is not in archetype %d", eid, a.id)

	newRow := destination.newEntity(eid)

	for i, dst := range destination.columns {
		if src := a.column(destination.compIDs[i]); src != nil {
			dst.setAbstract(newRow, src.getAbstract(row))
		}
	}

	a.removeEntity(eid)
	return newRow
}

// toMap converts an entity to a map of its components keyed by component name. A "_id" key holds
// the entity ID.
func (a *archetype) toMap(eid EntityID) map[string]any {
	row, exists := a.rows.get(eid)
	assert.That(exists, "entity %d is not in archetype %d", eid, a.id)

	data := make(map[string]any, a.compCount+1)
	// expr can't compare EntityID with untyped int constants in where clauses, so store an int.
	data["_id"] = int(eid)
	for _, column := range a.columns {
		data[column.name()] = column.getAbstract(row)
	}
	return data
}
