package kmersim

import (
	"context"
	"fmt"
	"math"
)

// bucket holds one radix bucket's k-mers and bank-ids as two parallel
// arrays, kept in lockstep by index (spec.md §4.4/§4.5): Kmers[i] was
// contributed by Banks[i]. ParallelSorter sorts this pair by permuting both
// slices together rather than sorting a single slice of merged structs --
// the indirect sort keeps the hot comparison loop (on Kmers alone)
// cache-friendly.
type bucket struct {
	Kmers []Key128
	Banks []BankID
}

// radixBuckets holds the 256 top-byte buckets for one partition. Bucket
// sizes are exact (from the frozen partition histogram), so the bucket
// index monotonically segments the partition's eventual sort order, per
// spec.md §4.4's invariant.
type radixBuckets struct {
	buckets [256]bucket
}

// RadixBucketer scatters one partition's (k-mer, bank) pairs into 256
// buckets keyed by the top byte of the packed k-mer. The partition's
// histogram (spec.md §4.4, "precomputed during partitioning") sizes every
// bucket's arrays exactly, so the scatter pass never reallocates.
func RadixBucketer(ctx context.Context, p *partition, kmerSize int) (*radixBuckets, error) {
	bitWidth := 2 * kmerSize
	hist := p.Histogram()

	a := newArena(arenaBytesFor(hist))
	rb := &radixBuckets{}
	for i := range rb.buckets {
		if hist[i] > 0 {
			// hist[i] is a uint64 partition count; int(hist[i]) silently wraps
			// to a negative or truncated size on a bucket large enough to
			// overflow int, corrupting the allocation below instead of
			// failing it. Guard the conversion rather than trust it.
			if hist[i] > uint64(math.MaxInt32) {
				return nil, resourceErrorf(fmt.Sprintf("partition-%d-bucket-%d", p.id, i),
					"bucket holds %d k-mers, too many to allocate", hist[i])
			}
			rb.buckets[i].Kmers = a.allocKeys(int(hist[i]))
			rb.buckets[i].Banks = a.allocBanks(int(hist[i]))
		}
	}

	// Scatter pass: a single reader walks the partition's recordio stream
	// once. Because the histogram above was frozen before this pass began
	// (the partitioning phase that filled it has already completed, per
	// the partition-close barrier in spec.md §5), the bucket cursor here
	// is an ordinary slice append, not a shared atomic -- there is exactly
	// one writer per bucket during this pass.
	err := p.readBatches(ctx, func(b kmerBatch) error {
		for _, k := range b.Kmers {
			top := k.TopByte(bitWidth)
			rb.buckets[top].Kmers = append(rb.buckets[top].Kmers, k)
			rb.buckets[top].Banks = append(rb.buckets[top].Banks, b.BankID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rb, nil
}
