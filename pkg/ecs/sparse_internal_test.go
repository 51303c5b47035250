package ecs

import (
	"testing"

	"github.com/argus-labs/exclusive/pkg/testutils"
	"github.com/stretchr/testify/assert"
)

// -------------------------------------------------------------------------------------------------
// Model-Based Fuzzing
//
// sparseSet backs both the archetype row index and the entity -> archetype index. The test applies
// the same random set/remove/get sequence to a sparseSet and a Go map and asserts they agree.
// Mutations are weighted over reads (set=55%, remove=35%, get=10%).
// -------------------------------------------------------------------------------------------------

func TestSparseSet_ModelBasedFuzz(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand()

	impl := newSparseSet()
	model := make(map[EntityID]int, sparseCapacity)

	const (
		opsMax = 1 << 15 // 32_768 iterations
		maxKey = 10_000
	)

	// Check the impl against the model by running the same operations on both.
	for range opsMax {
		key := EntityID(prng.IntN(maxKey))

		op := testutils.RandWeightedOp(prng, sparseSetOps)
		switch op {
		case set:
			value := prng.Int()
			impl.set(key, value)
			model[key] = value

			// Property: get(k) after set(k) must exist and return the same value.
			got, ok := impl.get(key)
			assert.True(t, ok, "set(%d) then get should exist", key)
			assert.Equal(t, value, got, "set(%d) then get value mismatch", key)

		case get:
			// Bias toward existing keys (80%) to test value retrieval path.
			if len(model) > 0 && prng.Float64() < 0.8 {
				key = testutils.RandMapKey(prng, model)
			}
			gotImpl, okImpl := impl.get(key)
			gotModel, okModel := model[key]

			// Property: get(k) returns same existence and value as model.
			assert.Equal(t, okModel, okImpl, "get(%d) existence mismatch", key)
			if okImpl {
				assert.Equal(t, gotModel, gotImpl, "get(%d) value mismatch", key)
			}

			// Property: if key doesn't exist but is within bounds, internal value must be tombstone.
			if !okImpl && int(key) < len(impl) {
				assert.Equal(t, sparseTombstone, impl[key], "get(%d) non-existent key should be tombstone", key)
			}

		case remove:
			okImpl := impl.remove(key)
			_, okModel := model[key]
			delete(model, key)

			// Property: remove(k) returns same existence as model.
			assert.Equal(t, okModel, okImpl, "remove(%d) existence mismatch", key)

			// Property: get(k) after remove(k) must not exist (value becomes tombstone).
			_, ok := impl.get(key)
			assert.False(t, ok, "remove(%d) then get should not exist", key)
			if int(key) < len(impl) {
				assert.Equal(t, sparseTombstone, impl[key], "remove(%d) internal value should be tombstone", key)
			}

		default:
			panic("unreachable")
		}
	}

	// Final state check: verify all keys in model exist in impl with correct values.
	for key, expectedVal := range model {
		gotVal, ok := impl.get(key)
		assert.True(t, ok, "key %d should exist in impl", key)
		assert.Equal(t, expectedVal, gotVal, "key %d value mismatch", key)
	}
}

type sparseSetOp uint8

const (
	set    sparseSetOp = 55
	remove sparseSetOp = 35
	get    sparseSetOp = 10
)

var sparseSetOps = []sparseSetOp{set, remove, get}
