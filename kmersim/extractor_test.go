package kmersim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKmerExtractorYieldsOverlappingWindows(t *testing.T) {
	e := NewKmerExtractor(4, 0)
	e.Reset("ACGTACGT")
	var n int
	for e.Scan() {
		n++
	}
	require.Equal(t, 5, n) // len-k+1 = 8-4+1
}

func TestKmerExtractorShannonFilterDropsLowComplexity(t *testing.T) {
	plain := NewKmerExtractor(4, 0)
	plain.Reset("AAAAAAAA")
	var nPlain int
	for plain.Scan() {
		nPlain++
	}
	require.Equal(t, 5, nPlain)

	filtered := NewKmerExtractor(4, 1.9) // near-max entropy required
	filtered.Reset("AAAAAAAA")
	var nFiltered int
	for filtered.Scan() {
		nFiltered++
	}
	require.Less(t, nFiltered, nPlain)
}

func TestKmerExtractorEmptySequence(t *testing.T) {
	e := NewKmerExtractor(4, 0)
	e.Reset("")
	require.False(t, e.Scan())
}
