package kmersim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func defaultTestOpts(numBanks int) Opts {
	o := DefaultOpts
	o.NumBanks = numBanks
	return o
}

func TestStatisticsProcessBasicCounts(t *testing.T) {
	opts := defaultTestOpts(2)
	s := NewStatistics(2)

	// k-mer present in both banks, 2 copies in bank 0, 1 copy in bank 1.
	s.Process(AbundanceVector{2, 1}, opts)

	require.EqualValues(t, 1, s.NbDistinctKmers)
	require.EqualValues(t, 3, s.NbKmers)
	require.EqualValues(t, 1, s.NbSolidKmers)
	require.EqualValues(t, []uint64{2, 1}, s.NbKmersPerBank)
	require.EqualValues(t, []uint64{1, 1}, s.NbSolidDistinctKmersPerBank)
	require.EqualValues(t, []uint64{2, 1}, s.NbSolidKmersPerBank)
	require.EqualValues(t, 2, s.MatrixSharedKmers[0][0])
	require.EqualValues(t, 2, s.MatrixSharedKmers[0][1]) // row i uses c[i]
	require.EqualValues(t, 1, s.MatrixSharedKmers[1][0])
	require.EqualValues(t, 1, s.MatrixDistinctSharedKmers[0][1])
	require.EqualValues(t, 1, s.BrayCurtisNumerator[0][1]) // min(2,1)
	require.EqualValues(t, 0, s.NbErroneousKmers)
	// shared by 2 banks: index 1 (0-indexed for "shared by 2").
	require.EqualValues(t, 1, s.NbDistinctKmersSharedByKBanks[1])
	require.EqualValues(t, 3, s.NbKmersSharedByKBanks[1])
}

func TestStatisticsErroneousKmer(t *testing.T) {
	opts := defaultTestOpts(2)
	s := NewStatistics(2)
	s.Process(AbundanceVector{1, 0}, opts)
	require.EqualValues(t, 1, s.NbErroneousKmers)
	require.EqualValues(t, 1, s.NbDistinctKmersSharedByKBanks[0])
}

func TestStatisticsNonSolidDropped(t *testing.T) {
	opts := defaultTestOpts(2)
	opts.AbundanceMin = 5
	s := NewStatistics(2)
	s.Process(AbundanceVector{1, 1}, opts)

	// Pre-gate counters still advance...
	require.EqualValues(t, 1, s.NbDistinctKmers)
	require.EqualValues(t, 2, s.NbKmers)
	// ...but nothing solid was recorded.
	require.EqualValues(t, 0, s.NbSolidKmers)
	require.EqualValues(t, []uint64{0, 0}, s.NbSolidDistinctKmersPerBank)
}

func TestStatisticsSoliditySingleZeroesComponent(t *testing.T) {
	opts := defaultTestOpts(2)
	opts.AbundanceMin = 2
	opts.SoliditySingle = true
	s := NewStatistics(2)
	// bank 0 has 5 (solid), bank 1 has 1 (not solid) -> vector is solid
	// overall (bank 0 qualifies), so bank 1's lone copy is zeroed out.
	s.Process(AbundanceVector{5, 1}, opts)

	require.EqualValues(t, 1, s.NbSolidKmers)
	require.EqualValues(t, []uint64{1, 0}, s.NbSolidDistinctKmersPerBank)
	require.EqualValues(t, []uint64{5, 0}, s.NbSolidKmersPerBank)
}

func TestStatisticsMergeIsCommutative(t *testing.T) {
	opts := defaultTestOpts(2)
	a := NewStatistics(2)
	a.Process(AbundanceVector{1, 1}, opts)
	b := NewStatistics(2)
	b.Process(AbundanceVector{3, 0}, opts)

	ab := a.Merge(b)
	ba := b.Merge(a)

	require.Equal(t, ab.NbKmers, ba.NbKmers)
	require.Equal(t, ab.NbDistinctKmers, ba.NbDistinctKmers)
	require.Equal(t, ab.MatrixSharedKmers, ba.MatrixSharedKmers)
}
