package kmersim

import (
	"encoding/binary"
	"hash"
	"math/rand"
	"testing"

	"blainsmith.com/go/seahash"
	"github.com/stretchr/testify/require"
)

// commutativeChecksum hashes each (kmer, bank) pair independently and sums
// the results, so permuting the pairs never changes the total -- the same
// order-independent checksum idiom as cmd/bio-pamtool/checksum.go's
// hashField/refChecksum, here used to verify that a top-byte scatter into
// radix buckets (the scatter RadixBucketer performs, replayed in memory
// without a partition file) and ParallelSorter's permutation never drop or
// duplicate an entry. seahash
// is an algorithm wholly independent of the farm hash used for partition
// routing (partitionHash), so this test cannot pass merely because both
// stages share a hash bug.
func commutativeChecksum(h hash.Hash64, kmers []Key128, banks []BankID) uint64 {
	var buf [24]byte
	var sum uint64
	for i := range kmers {
		binary.LittleEndian.PutUint64(buf[0:8], kmers[i].Hi)
		binary.LittleEndian.PutUint64(buf[8:16], kmers[i].Lo)
		binary.LittleEndian.PutUint64(buf[16:24], uint64(banks[i]))
		h.Reset()
		h.Write(buf[:])
		sum += h.Sum64()
	}
	return sum
}

func randomKey128(r *rand.Rand) Key128 {
	return Key128{Hi: r.Uint64() & 0x3, Lo: r.Uint64()}
}

func TestRadixScatterAndSortPreservesMultiset(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	const n = 5000
	kmers := make([]Key128, n)
	banks := make([]BankID, n)
	for i := range kmers {
		kmers[i] = randomKey128(r)
		banks[i] = BankID(r.Intn(4))
	}

	h := seahash.New()
	want := commutativeChecksum(h, kmers, banks)

	const kmerSize = 33 // 2*33=66 bits, exercises the Hi-spilling wide path
	bitWidth := 2 * kmerSize
	var hist [256]uint64
	for _, k := range kmers {
		hist[k.TopByte(bitWidth)]++
	}

	rb := &radixBuckets{}
	for i := range rb.buckets {
		rb.buckets[i].Kmers = make([]Key128, 0, hist[i])
		rb.buckets[i].Banks = make([]BankID, 0, hist[i])
	}
	for i, k := range kmers {
		top := k.TopByte(bitWidth)
		rb.buckets[top].Kmers = append(rb.buckets[top].Kmers, k)
		rb.buckets[top].Banks = append(rb.buckets[top].Banks, banks[i])
	}
	require.NoError(t, ParallelSorter(rb, 4))

	var gotKmers []Key128
	var gotBanks []BankID
	for i := range rb.buckets {
		gotKmers = append(gotKmers, rb.buckets[i].Kmers...)
		gotBanks = append(gotBanks, rb.buckets[i].Banks...)
	}
	require.Len(t, gotKmers, n)
	got := commutativeChecksum(h, gotKmers, gotBanks)
	require.Equal(t, want, got, "radix bucketing + sorting must preserve the (kmer,bank) multiset")
}

func TestSortBucketOrdersAscending(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	b := &bucket{}
	for i := 0; i < 200; i++ {
		b.Kmers = append(b.Kmers, randomKey128(r))
		b.Banks = append(b.Banks, BankID(i))
	}
	sortBucket(b)
	for i := 1; i < len(b.Kmers); i++ {
		require.False(t, b.Kmers[i].Less(b.Kmers[i-1]), "bucket must be sorted ascending")
	}
}
