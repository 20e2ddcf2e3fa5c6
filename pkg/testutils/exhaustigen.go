package testutils

import (
	"math/big"

	"github.com/argus-labs/ccip-bridge/pkg/assert"
)

// Gen is an exhaustive generator that iterates through all possible combinations of values.
//
// On each iteration of the `for !g.Done()` loop, Gen produces a sequence of choices together with
// the bounds requested for them:
//
// value:  3 1 4 4
// bound:  5 4 4 4
//
// To advance, Gen increments the rightmost choice that is still below its bound and zeroes every
// choice after it, so 3 1 4 4 becomes 3 2 0 0.
//
// See: <https://matklad.github.io/2021/11/07/generate-all-the-things.html>
type Gen struct {
	started bool
	v       [32]struct{ value, bound uint32 }
	p       int
	pMax    int
}

func NewGen() *Gen {
	return &Gen{}
}

// Done returns true when all combinations have been exhausted.
func (g *Gen) Done() bool {
	if !g.started {
		g.started = true
		return false
	}
	i := g.pMax
	for i > 0 {
		i--
		if g.v[i].value < g.v[i].bound {
			g.v[i].value++
			g.pMax = i + 1
			g.p = 0
			return false
		}
	}
	return true
}

func (g *Gen) gen(bound uint32) uint32 {
	assert.That(g.p < len(g.v), "exhaustigen: exceeded maximum depth of 32")
	if g.p == g.pMax {
		g.v[g.p] = struct{ value, bound uint32 }{value: 0, bound: 0}
		g.pMax++
	}
	g.p++
	g.v[g.p-1].bound = bound
	return g.v[g.p-1].value
}

// Intn returns an int in range [0, bound] (inclusive).
func (g *Gen) Intn(bound int) int {
	return int(g.gen(uint32(bound))) //nolint:gosec // bound is expected to be small in tests
}

// Bool returns an exhaustive boolean value.
func (g *Gen) Bool() bool {
	return g.Intn(1) == 1
}

// Pick returns an element from the slice.
func Pick[T any](g *Gen, slice []T) T {
	assert.That(len(slice) > 0, "exhaustigen: empty slice")
	return slice[g.Intn(len(slice)-1)]
}

// EdgeUint walks the boundary values of an unsigned field of the given width: 0, 1, the top bit
// alone and all ones.
func (g *Gen) EdgeUint(bits uint) *big.Int {
	assert.That(bits > 1, "exhaustigen: width %d too small", bits)
	one := big.NewInt(1)
	top := new(big.Int).Lsh(one, bits-1)
	allOnes := new(big.Int).Sub(new(big.Int).Lsh(one, bits), one)
	return Pick(g, []*big.Int{new(big.Int), big.NewInt(1), top, allOnes})
}
