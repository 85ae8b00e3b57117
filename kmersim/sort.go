package kmersim

import (
	"sort"

	"github.com/grailbio/base/traverse"
)

// indexSorter sorts indices [0,n) by the k-mer key, so the permutation can
// then be applied to both the Kmers and Banks arrays in lockstep (spec.md
// §4.5). Ties between equal k-mers (distinct bank-ids) are permitted in any
// order -- the merger treats equal k-mers as one group regardless.
type indexSorter struct {
	idx   []int
	kmers []Key128
}

func (s *indexSorter) Len() int           { return len(s.idx) }
func (s *indexSorter) Less(i, j int) bool { return s.kmers[s.idx[i]].Less(s.kmers[s.idx[j]]) }
func (s *indexSorter) Swap(i, j int)      { s.idx[i], s.idx[j] = s.idx[j], s.idx[i] }

// sortBucket sorts one bucket's (Kmers, Banks) pair in place, in ascending
// (non-decreasing) order of k-mer value; equal k-mers stay adjacent.
func sortBucket(b *bucket) {
	n := len(b.Kmers)
	if n <= 1 {
		return
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Sort(&indexSorter{idx: idx, kmers: b.Kmers})

	kmers := make([]Key128, n)
	banks := make([]BankID, n)
	for i, p := range idx {
		kmers[i] = b.Kmers[p]
		banks[i] = b.Banks[p]
	}
	b.Kmers, b.Banks = kmers, banks
}

// ParallelSorter sorts every one of rb's 256 buckets, dividing the work
// contiguously across a fixed pool of nWorkers via traverse.Each -- the
// same worker-dispatch primitive used for shard-parallel work throughout
// the teacher's pipeline stages (e.g. pileup/snp and encoding/converter).
// A worker sorts the buckets in its contiguous range [start, limit)
// sequentially;
// ordering across buckets is irrelevant since each bucket sorts
// independently.
func ParallelSorter(rb *radixBuckets, nWorkers int) error {
	if nWorkers <= 0 {
		nWorkers = 1
	}
	const nBuckets = 256
	if nWorkers > nBuckets {
		nWorkers = nBuckets
	}
	return traverse.Each(nWorkers, func(worker int) error {
		start := (worker * nBuckets) / nWorkers
		limit := ((worker + 1) * nBuckets) / nWorkers
		for i := start; i < limit; i++ {
			sortBucket(&rb.buckets[i])
		}
		return nil
	})
}
