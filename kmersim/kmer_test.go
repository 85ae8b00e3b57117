package kmersim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalIsLexMin(t *testing.T) {
	z := NewKmerizer(4)
	z.Reset("ACGT")
	require.True(t, z.Scan())
	km := z.Get()
	canon := km.Canonical()
	require.True(t, canon.Equal(km.Forward) || canon.Equal(km.ReverseComplement))
	require.False(t, km.ReverseComplement.Less(canon) && !canon.Equal(km.ReverseComplement))
}

func TestCanonicalSymmetricUnderRevComp(t *testing.T) {
	// A sequence and its reverse complement must produce the same
	// canonical k-mer for the single full-length window.
	fwd := NewKmerizer(6)
	fwd.Reset("ACGTTG")
	require.True(t, fwd.Scan())
	c1 := fwd.Get().Canonical()

	rev := NewKmerizer(6)
	rev.Reset("CAACGT") // reverse complement of ACGTTG
	require.True(t, rev.Scan())
	c2 := rev.Get().Canonical()

	require.True(t, c1.Equal(c2))
}

func TestKey128Less(t *testing.T) {
	a := Key128{Hi: 0, Lo: 5}
	b := Key128{Hi: 0, Lo: 9}
	c := Key128{Hi: 1, Lo: 0}
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.True(t, b.Less(c))
	require.False(t, a.Less(a))
}

func TestTopByteNarrow(t *testing.T) {
	// k=4 => bitWidth=8, the whole packed value is the top byte.
	k := Key128{Lo: 0xAB}
	require.Equal(t, byte(0xAB), k.TopByte(8))
}

func TestTopByteWide(t *testing.T) {
	// bitWidth=66 straddles the Hi/Lo boundary: top byte draws 2 bits from
	// Hi and 6 from the top of Lo.
	k := Key128{Hi: 0x3, Lo: 0xFF00000000000000}
	top := k.TopByte(66)
	require.NotZero(t, top)
}

func TestKmerizerSkipsAmbiguousBases(t *testing.T) {
	z := NewKmerizer(3)
	z.Reset("ACNGTT")
	var positions []int
	for z.Scan() {
		positions = append(positions, z.Get().Pos)
	}
	// "ACN" and "CNG" and "NGT" all straddle the N at index 2; only "GTT"
	// starting at position 3 is a clean window.
	require.Equal(t, []int{3}, positions)
}

func TestNewKmerizerDispatch(t *testing.T) {
	require.IsType(t, &narrowKmerizer{}, NewKmerizer(32))
	require.IsType(t, &wideKmerizer{}, NewKmerizer(33))
	require.Panics(t, func() { NewKmerizer(0) })
	require.Panics(t, func() { NewKmerizer(65) })
}
