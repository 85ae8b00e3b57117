package kmersim

// Key128 is the canonical packed representation of a k-mer shared by every
// pipeline stage downstream of extraction, regardless of which kmerizer
// produced it. For k<=32 (2*k<=64 bits) Hi is always zero; for 33<=k<=64 the
// value spills into Hi. Keeping one representation for every stage avoids
// duplicating Partitioner/RadixBucketer/ParallelSorter/MergeEmitter per k
// width -- only the two codecs in kmercodec.go differ.
type Key128 struct {
	Hi, Lo uint64
}

// Less reports whether a sorts strictly before b, the total order used by
// ParallelSorter and required by MergeEmitter's ascending merge.
func (a Key128) Less(b Key128) bool {
	if a.Hi != b.Hi {
		return a.Hi < b.Hi
	}
	return a.Lo < b.Lo
}

// Equal reports value equality.
func (a Key128) Equal(b Key128) bool { return a.Hi == b.Hi && a.Lo == b.Lo }

// TopByte returns the top byte of the bitWidth-bit value packed into k,
// i.e. the top-4-base prefix used to route a k-mer into one of 256 radix
// buckets (spec: "top byte of the packed integer").
func (k Key128) TopByte(bitWidth int) byte {
	shift := bitWidth - 8
	if shift >= 64 {
		return byte(k.Hi >> uint(shift-64))
	}
	if shift >= 0 {
		if shift < 64 {
			lo := k.Lo >> uint(shift)
			hiBits := uint64(0)
			if shift < 64 {
				// bits of Hi that fall into the top byte window when the window
				// straddles the Hi/Lo boundary (bitWidth in (64,72)).
				overhang := 8 - (64 - shift)
				if overhang > 0 {
					hiBits = (k.Hi & ((1 << uint(overhang)) - 1)) << uint(64-shift)
				}
			}
			return byte(lo | hiBits)
		}
	}
	// bitWidth < 8: the whole value is the "top byte", left-justified.
	return byte(k.Lo << uint(8-bitWidth))
}

const (
	invalidBase = uint8(255)
)

var (
	asciiToBaseCode       [256]uint8
	asciiToComplementCode [256]uint8
)

func init() {
	for i := range asciiToBaseCode {
		asciiToBaseCode[i] = invalidBase
		asciiToComplementCode[i] = invalidBase
	}
	asciiToBaseCode['A'], asciiToBaseCode['a'] = 0, 0
	asciiToBaseCode['C'], asciiToBaseCode['c'] = 1, 1
	asciiToBaseCode['G'], asciiToBaseCode['g'] = 2, 2
	asciiToBaseCode['T'], asciiToBaseCode['t'] = 3, 3

	// Complement code: the 2-bit value of the complementary base, used to
	// build the reverse-complement k-mer incrementally (A<->T, C<->G).
	asciiToComplementCode['A'], asciiToComplementCode['a'] = 3, 3
	asciiToComplementCode['C'], asciiToComplementCode['c'] = 2, 2
	asciiToComplementCode['G'], asciiToComplementCode['g'] = 1, 1
	asciiToComplementCode['T'], asciiToComplementCode['t'] = 0, 0
}

// KmerAtPos is one extracted k-mer instance: the position it starts at in
// the read, and its forward and reverse-complement packed encodings.
type KmerAtPos struct {
	Pos                        int
	Forward, ReverseComplement Key128
}

// Canonical returns the lexicographic minimum of the forward and
// reverse-complement encodings, the canonical-k-mer invariant every k-mer
// entering the pipeline must satisfy (spec.md Data Model, "K-mer (Type)").
func (km KmerAtPos) Canonical() Key128 {
	if km.Forward.Less(km.ReverseComplement) {
		return km.Forward
	}
	return km.ReverseComplement
}
