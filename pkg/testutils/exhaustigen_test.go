package testutils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/argus-labs/ccip-bridge/pkg/testutils"
)

func TestGen_VisitsEveryCombination(t *testing.T) {
	t.Parallel()

	seen := map[[2]int]bool{}
	g := testutils.NewGen()
	for !g.Done() {
		a := g.Intn(2)
		b := 0
		if g.Bool() {
			b = 1
		}
		seen[[2]int{a, b}] = true
	}
	assert.Len(t, seen, 6)
}

func TestGen_EdgeUint(t *testing.T) {
	t.Parallel()

	var got []string
	g := testutils.NewGen()
	for !g.Done() {
		got = append(got, g.EdgeUint(8).String())
	}
	assert.Equal(t, []string{"0", "1", "128", "255"}, got)
}

func TestRandBigUint_FitsWidth(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	for range 200 {
		v := testutils.RandBigUint(prng, 224)
		assert.LessOrEqual(t, v.BitLen(), 224)
		assert.GreaterOrEqual(t, v.Sign(), 0)
	}
}
