package ecs

// sparseTombstone marks an empty slot in a sparseSet.
const sparseTombstone = -1

// sparseCapacity is the initial capacity of a sparseSet.
const sparseCapacity = 1024

// sparseSet maps entity IDs to non-negative ints (rows or archetype IDs). Entity IDs are dense and
// recycled, so a slice indexed by ID beats a map on both lookups and memory.
type sparseSet []int

func newSparseSet() sparseSet {
	return make(sparseSet, 0, sparseCapacity)
}

// get returns the value stored for the key.
func (s *sparseSet) get(key EntityID) (int, bool) {
	if int(key) >= len(*s) {
		return 0, false
	}
	value := (*s)[key]
	if value == sparseTombstone {
		return 0, false
	}
	return value, true
}

// set stores a non-negative value for the key, growing the set as needed.
func (s *sparseSet) set(key EntityID, value int) {
	for int(key) >= len(*s) {
		*s = append(*s, sparseTombstone)
	}
	(*s)[key] = value
}

// remove deletes the key. Returns false if it wasn't present.
func (s *sparseSet) remove(key EntityID) bool {
	if _, ok := s.get(key); !ok {
		return false
	}
	(*s)[key] = sparseTombstone
	return true
}
