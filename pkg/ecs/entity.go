package ecs

import (
	"math"

	"github.com/rotisserie/eris"
)

// EntityID is a unique identifier for an entity.
type EntityID uint32

// MaxEntityID is the maximum entity ID that can be created.
const MaxEntityID = math.MaxUint32 - 1

// entityManager allocates entity IDs and indexes each live entity to its archetype so lookups
// don't have to scan archetypes.
type entityManager struct {
	nextID     EntityID   // The next ID to allocate if no free IDs are available
	free       []EntityID // A queue of free IDs
	entityArch sparseSet  // Entity ID -> archetype ID
}

func newEntityManager() entityManager {
	return entityManager{
		nextID:     0,
		free:       make([]EntityID, 0),
		entityArch: newSparseSet(),
	}
}

// new allocates an entity ID, reusing freed IDs in FIFO order.
func (em *entityManager) new() (EntityID, error) {
	if len(em.free) > 0 {
		id := em.free[0]
		em.free = em.free[1:]
		return id, nil
	}

	id := em.nextID
	if id > MaxEntityID {
		return 0, eris.New("max number of entities exceeded")
	}
	em.nextID++
	return id, nil
}

// release marks the entity as dead and makes its ID available for reuse.
func (em *entityManager) release(id EntityID) {
	if em.entityArch.remove(id) {
		em.free = append(em.free, id)
	}
}

// getArchetype returns the archetype ID of a live entity.
func (em *entityManager) getArchetype(id EntityID) (archetypeID, error) {
	aid, exists := em.entityArch.get(id)
	if !exists {
		return 0, eris.Wrapf(ErrEntityNotFound, "entity %d", id)
	}
	return aid, nil
}

func (em *entityManager) setArchetype(id EntityID, aid archetypeID) {
	em.entityArch.set(id, aid)
}

func (em *entityManager) isAlive(id EntityID) bool {
	_, exists := em.entityArch.get(id)
	return exists
}
