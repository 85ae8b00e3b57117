package kmersim

// Statistics holds the global and pairwise accumulators derived while
// scanning every distinct canonical k-mer across N banks (spec.md §3). One
// instance is owned by the algorithm for the whole run; per-partition
// accumulators (one per partition Run drains) are merged into it under an
// exclusive lock once per partition completion -- the "clone + finish"
// pattern of spec.md §9,
// grounded on fusion.Stats.Merge's commutative value-receiver sum.
type Statistics struct {
	NumBanks int

	NbDistinctKmers  uint64
	NbKmers          uint64
	NbSolidKmers     uint64
	NbErroneousKmers uint64

	NbKmersPerBank               []uint64
	NbSolidKmersPerBank          []uint64
	NbSolidDistinctKmersPerBank []uint64

	MatrixSharedKmers         [][]uint64
	MatrixDistinctSharedKmers [][]uint64
	BrayCurtisNumerator       [][]uint64

	// Index i holds the count for "shared by i+1 banks" (1-indexed in the
	// spec, 0-indexed here).
	NbDistinctKmersSharedByKBanks []uint64
	NbKmersSharedByKBanks         []uint64
}

// NewStatistics allocates a zeroed Statistics for a run comparing numBanks
// datasets.
func NewStatistics(numBanks int) *Statistics {
	s := &Statistics{
		NumBanks:                      numBanks,
		NbKmersPerBank:                make([]uint64, numBanks),
		NbSolidKmersPerBank:           make([]uint64, numBanks),
		NbSolidDistinctKmersPerBank:   make([]uint64, numBanks),
		NbDistinctKmersSharedByKBanks: make([]uint64, numBanks),
		NbKmersSharedByKBanks:         make([]uint64, numBanks),
		MatrixSharedKmers:             make([][]uint64, numBanks),
		MatrixDistinctSharedKmers:     make([][]uint64, numBanks),
		BrayCurtisNumerator:           make([][]uint64, numBanks),
	}
	for i := 0; i < numBanks; i++ {
		s.MatrixSharedKmers[i] = make([]uint64, numBanks)
		s.MatrixDistinctSharedKmers[i] = make([]uint64, numBanks)
		s.BrayCurtisNumerator[i] = make([]uint64, numBanks)
	}
	return s
}

// Process accounts for one k-mer emitted by MergeEmitter carrying raw
// (pre-gate) abundance vector c. It implements spec.md §4.7+§4.8 in one
// pass:
//
//  1. nb_kmers, nb_kmers_per_bank and nb_distinct_kmers are incremented
//     unconditionally, before the solidity gate runs (spec.md §9's Open
//     Question: preserved as specified, non-solid k-mers still contribute
//     to nb_distinct_kmers).
//  2. SolidityGate is applied; a non-vector-solid k-mer is dropped here.
//  3. Surviving k-mers update the remaining Statistics fields per
//     spec.md §4.8.
func (s *Statistics) Process(c AbundanceVector, opts Opts) {
	s.NbDistinctKmers++
	for i, v := range c {
		s.NbKmers += uint64(v)
		s.NbKmersPerBank[i] += uint64(v)
	}

	gated, ok := SolidityGate(c, opts)
	if !ok {
		return
	}
	s.NbSolidKmers++

	var total uint64
	present := make([]int, 0, len(gated))
	for i, v := range gated {
		if v == 0 {
			continue
		}
		present = append(present, i)
		total += uint64(v)
		s.NbSolidDistinctKmersPerBank[i]++
		s.NbSolidKmersPerBank[i] += uint64(v)
	}

	for _, i := range present {
		for _, j := range present {
			s.MatrixSharedKmers[i][j] += uint64(gated[i])
			s.MatrixDistinctSharedKmers[i][j]++
			if gated[i] < gated[j] {
				s.BrayCurtisNumerator[i][j] += uint64(gated[i])
			} else {
				s.BrayCurtisNumerator[i][j] += uint64(gated[j])
			}
		}
	}

	k := len(present)
	if k > 0 {
		s.NbDistinctKmersSharedByKBanks[k-1]++
		s.NbKmersSharedByKBanks[k-1] += total
	}
	if total == 1 {
		s.NbErroneousKmers++
	}
}

// Merge adds the field values of o into a copy of s and returns it,
// matching fusion.Stats.Merge's value-receiver commutative-sum idiom. Both
// operands must share the same NumBanks.
func (s Statistics) Merge(o *Statistics) Statistics {
	if o == nil {
		return s
	}
	if s.NumBanks == 0 {
		return *o
	}
	if s.NumBanks != o.NumBanks {
		panic("kmersim: Merge of Statistics with different NumBanks")
	}
	s.NbDistinctKmers += o.NbDistinctKmers
	s.NbKmers += o.NbKmers
	s.NbSolidKmers += o.NbSolidKmers
	s.NbErroneousKmers += o.NbErroneousKmers

	s.NbKmersPerBank = addSlice(s.NbKmersPerBank, o.NbKmersPerBank)
	s.NbSolidKmersPerBank = addSlice(s.NbSolidKmersPerBank, o.NbSolidKmersPerBank)
	s.NbSolidDistinctKmersPerBank = addSlice(s.NbSolidDistinctKmersPerBank, o.NbSolidDistinctKmersPerBank)
	s.NbDistinctKmersSharedByKBanks = addSlice(s.NbDistinctKmersSharedByKBanks, o.NbDistinctKmersSharedByKBanks)
	s.NbKmersSharedByKBanks = addSlice(s.NbKmersSharedByKBanks, o.NbKmersSharedByKBanks)

	s.MatrixSharedKmers = addMatrix(s.MatrixSharedKmers, o.MatrixSharedKmers)
	s.MatrixDistinctSharedKmers = addMatrix(s.MatrixDistinctSharedKmers, o.MatrixDistinctSharedKmers)
	s.BrayCurtisNumerator = addMatrix(s.BrayCurtisNumerator, o.BrayCurtisNumerator)
	return s
}

// addSlice returns a freshly allocated element-wise sum of a and b. It never
// writes into a's or b's backing array: Merge has a value receiver so it
// looks side-effect-free to its caller, and reusing either operand's
// backing array here would silently corrupt whichever Statistics still
// holds a reference to it (every per-partition accumulator does, until its
// own turn to Merge).
func addSlice(a, b []uint64) []uint64 {
	out := make([]uint64, len(b))
	for i := range b {
		out[i] = a[i] + b[i]
	}
	return out
}

func addMatrix(a, b [][]uint64) [][]uint64 {
	out := make([][]uint64, len(b))
	for i := range b {
		out[i] = addSlice(a[i], b[i])
	}
	return out
}
