package kmersim

// KmerExtractor produces the lazy sequence of canonical k-mers for one
// accepted read (spec.md §4.2). It wraps a kmerizer (narrow or wide,
// selected by NewKmerizer) with the optional per-k-mer Shannon filter:
// rejected k-mers are skipped, and the next retained position is advanced
// by k/3 to thin low-complexity runs rather than considering every
// remaining overlapping window.
type KmerExtractor struct {
	z          kmerizer
	k          int
	minShannon float64
	seq        string
	cur        KmerAtPos
}

// NewKmerExtractor builds an extractor for the given k-mer length and
// optional per-k-mer Shannon threshold (0 disables the filter).
func NewKmerExtractor(k int, minKmerShannon float64) *KmerExtractor {
	return &KmerExtractor{z: NewKmerizer(k), k: k, minShannon: minKmerShannon}
}

// Reset starts extraction over a new read.
func (e *KmerExtractor) Reset(seq string) {
	e.seq = seq
	e.z.Reset(seq)
}

// Scan advances to the next retained canonical k-mer, returning false once
// the read is exhausted.
func (e *KmerExtractor) Scan() bool {
	for e.z.Scan() {
		km := e.z.Get()
		if !filterKmerShannon(e.seq, km.Pos, e.k, e.minShannon) {
			e.skipAhead(km.Pos)
			continue
		}
		e.cur = km
		return true
	}
	return false
}

// skipAhead advances past the low-complexity window at pos by k/3 bases,
// matching spec.md §4.2's thinning rule, by re-seeding the kmerizer from
// the advanced position within the same read.
func (e *KmerExtractor) skipAhead(pos int) {
	advance := e.k / 3
	if advance < 1 {
		advance = 1
	}
	next := pos + advance
	if next >= len(e.seq) {
		e.seq = ""
		e.z.Reset("")
		return
	}
	e.seq = e.seq[next:]
	e.z.Reset(e.seq)
}

// Get returns the current retained k-mer. REQUIRES: the last Scan returned
// true.
func (e *KmerExtractor) Get() KmerAtPos { return e.cur }
