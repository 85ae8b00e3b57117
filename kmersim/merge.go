package kmersim

import (
	"fmt"
	"math"
)

// AbundanceVector is the per-bank count vector for a single canonical
// k-mer, c[0..N-1] (spec.md §3). sum(c) >= 1 whenever emitted.
type AbundanceVector []uint32

// incrementAbundance bumps vec[bank], reporting a DataErr instead of
// silently wrapping around uint32 when a single bank's occurrence count for
// one distinct k-mer has already reached the representable maximum (spec.md
// §7's "k-mer count exceeding representable range" condition).
func incrementAbundance(vec AbundanceVector, bank BankID, kmer Key128) error {
	if vec[bank] == math.MaxUint32 {
		return dataErrorf(fmt.Sprintf("kmer %016x%016x bank %d", kmer.Hi, kmer.Lo, bank),
			"k-mer abundance count exceeds the representable range (uint32)")
	}
	vec[bank]++
	return nil
}

// MergeEmitter walks all 256 sorted buckets of rb in ascending radix order
// and emits one (k-mer, AbundanceVector) pair per distinct canonical k-mer,
// collapsing consecutive equal-key pairs (spec.md §4.6). Because a k-mer's
// bucket is a deterministic function of its whole value, equal-key runs
// never span a bucket boundary, so each bucket can be flushed
// independently without a cross-bucket merge step -- per spec.md §9, the
// heap-merge scaffolding is vestigial; this is the flat iterator.
//
// emit is called once per distinct k-mer, with a freshly allocated vector
// the callee may retain. An empty partition calls emit zero times; a
// partition with exactly one surviving k-mer still calls emit once (flush
// at stream end).
func MergeEmitter(rb *radixBuckets, numBanks int, emit func(Key128, AbundanceVector) error) error {
	for i := range rb.buckets {
		if err := mergeBucket(&rb.buckets[i], numBanks, emit); err != nil {
			return err
		}
	}
	return nil
}

func mergeBucket(b *bucket, numBanks int, emit func(Key128, AbundanceVector) error) error {
	n := len(b.Kmers)
	if n == 0 {
		return nil
	}
	cur := b.Kmers[0]
	vec := make(AbundanceVector, numBanks)
	if err := incrementAbundance(vec, b.Banks[0], cur); err != nil {
		return err
	}
	for i := 1; i < n; i++ {
		if b.Kmers[i].Equal(cur) {
			if err := incrementAbundance(vec, b.Banks[i], cur); err != nil {
				return err
			}
			continue
		}
		if err := emit(cur, vec); err != nil {
			return err
		}
		cur = b.Kmers[i]
		vec = make(AbundanceVector, numBanks)
		if err := incrementAbundance(vec, b.Banks[i], cur); err != nil {
			return err
		}
	}
	return emit(cur, vec)
}
