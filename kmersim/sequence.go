package kmersim

import "math"

// baseFrequencies counts A/C/G/T/N occurrences (in that order) over seq.
// Any byte other than ACGTNacgtn is counted as N, matching the Shannon
// index's definition over {A,C,G,T,N}.
func baseFrequencies(seq string) (counts [5]int) {
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'a':
			counts[0]++
		case 'C', 'c':
			counts[1]++
		case 'G', 'g':
			counts[2]++
		case 'T', 't':
			counts[3]++
		default:
			counts[4]++
		}
	}
	return
}

// shannonIndex computes H = -sum(p_b * log2(p_b)) over the base frequencies
// of seq, in bits. An empty sequence has H=0.
func shannonIndex(seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	counts := baseFrequencies(seq)
	n := float64(len(seq))
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// FilterRead reports whether seq passes the SequenceFilter gate: it is
// rejected when shorter than opts.MinReadSize, or when its Shannon index
// falls below opts.MinReadShannon. A threshold of 0 disables the
// corresponding check. FilterRead has no side effects beyond its verdict.
func FilterRead(seq string, opts Opts) bool {
	if opts.MinReadSize > 0 && len(seq) < opts.MinReadSize {
		return false
	}
	if opts.MinReadShannon > 0 && shannonIndex(seq) < opts.MinReadShannon {
		return false
	}
	return true
}

// filterKmerShannon reports whether the k-mer spelled by seq[pos:pos+k]
// passes the optional per-k-mer Shannon filter used by KmerExtractor to
// thin low-complexity runs (spec.md §4.2).
func filterKmerShannon(seq string, pos, k int, minShannon float64) bool {
	if minShannon <= 0 {
		return true
	}
	return shannonIndex(seq[pos:pos+k]) >= minShannon
}
