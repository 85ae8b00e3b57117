package kmersim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolidityGateDropsWhenNoComponentSolid(t *testing.T) {
	opts := DefaultOpts
	opts.AbundanceMin = 10
	_, ok := SolidityGate(AbundanceVector{1, 2, 3}, opts)
	require.False(t, ok)
}

func TestSolidityGateKeepsVectorWhenOneComponentSolid(t *testing.T) {
	opts := DefaultOpts
	opts.AbundanceMin = 5
	opts.SoliditySingle = false
	c, ok := SolidityGate(AbundanceVector{5, 1}, opts)
	require.True(t, ok)
	require.EqualValues(t, AbundanceVector{5, 1}, c) // unchanged without SoliditySingle
}

func TestSolidityGateSingleZeroesNonSolidComponents(t *testing.T) {
	opts := DefaultOpts
	opts.AbundanceMin = 5
	opts.SoliditySingle = true
	c, ok := SolidityGate(AbundanceVector{5, 1, 0}, opts)
	require.True(t, ok)
	require.EqualValues(t, AbundanceVector{5, 0, 0}, c)
}

func TestSolidityGateUpperBound(t *testing.T) {
	opts := DefaultOpts
	opts.AbundanceMin = 1
	opts.AbundanceMax = 3
	_, ok := SolidityGate(AbundanceVector{10}, opts)
	require.False(t, ok) // 10 exceeds AbundanceMax, and nothing else present

	c, ok := SolidityGate(AbundanceVector{2}, opts)
	require.True(t, ok)
	require.EqualValues(t, AbundanceVector{2}, c)
}

func TestAbundanceMaxZeroIsUnbounded(t *testing.T) {
	opts := DefaultOpts
	opts.AbundanceMin = 1
	opts.AbundanceMax = 0
	_, ok := SolidityGate(AbundanceVector{1 << 20}, opts)
	require.True(t, ok)
}
