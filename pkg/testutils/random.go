// Package testutils holds helpers shared by the model-based fuzz tests. Every generator draws from
// a PRNG seeded by TEST_SEED (or the clock), and the seed is printed so a failing run can be
// replayed.
package testutils

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"
)

var Seed uint64 //nolint:gochecknoglobals // intentionally global for test reproducibility

func init() { //nolint:gochecknoinits // intentionally using init to set seed
	Seed = uint64(time.Now().UnixNano()) //nolint:gosec // overflow is acceptable for test seeds
	if envSeed := os.Getenv("TEST_SEED"); envSeed != "" {
		parsed, err := strconv.ParseUint(envSeed, 0, 64)
		if err == nil { // Only set using the env if it's valid
			Seed = parsed
		}
	}
	fmt.Printf("to reproduce: TEST_SEED=0x%x\n", Seed) //nolint:forbidigo // just for testing
}

// NewRand returns a PRNG seeded with Seed. Each call starts the same stream.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(Seed, Seed)) //nolint:gosec // weak RNG is fine for tests
}

// RandMapKey returns a random key from a map. Panics if the map is empty.
func RandMapKey[K comparable, V any](r *rand.Rand, m map[K]V) K {
	idx := r.IntN(len(m))
	for k := range m {
		if idx == 0 {
			return k
		}
		idx--
	}
	panic("unreachable")
}

// RandElem returns a random element of a slice. Panics if the slice is empty.
func RandElem[T any](r *rand.Rand, s []T) T {
	return s[r.IntN(len(s))]
}

// RandSubset returns up to n distinct elements of s in random order.
func RandSubset[T any](r *rand.Rand, s []T, n int) []T {
	perm := r.Perm(len(s))
	n = min(n, len(s))
	out := make([]T, n)
	for i := range n {
		out[i] = s[perm[i]]
	}
	return out
}

// WeightedOp is a constraint for operation types that use their value as the weight.
type WeightedOp interface {
	~uint8 | ~uint16 | ~uint32 | ~int
}

// RandWeightedOp returns a random operation from a slice, using each op's value as its weight.
func RandWeightedOp[T WeightedOp](r *rand.Rand, ops []T) T {
	var total int
	for _, op := range ops {
		total += int(op)
	}

	pick := r.IntN(total)
	for _, op := range ops {
		weight := int(op)
		if pick < weight {
			return op
		}
		pick -= weight
	}
	panic("unreachable")
}
