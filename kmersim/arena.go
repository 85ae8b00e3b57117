package kmersim

import (
	"unsafe"

	"github.com/grailbio/base/log"
	"golang.org/x/sys/unix"
)

// keySize and bankSize are used to size arena reservations precisely.
const (
	keySize  = unsafe.Sizeof(Key128{})
	bankSize = unsafe.Sizeof(BankID(0))
)

// arena is an anonymous-mmap bump allocator for the Kmers/Banks backing
// slices of a radixBuckets, mirroring fusion/kmer_index.go's initShard: Go's
// standard allocator is bypassed so the kernel can back the region with
// transparent hugepages (MADV_HUGEPAGE), cutting TLB pressure for the
// multi-gigabyte arrays a large partition's buckets hold.
//
// An arena is sized once from an exact byte count (the partition's frozen
// histogram gives us that count up front, per spec.md §4.4) and never
// grows; RadixBucketer carves Kmers/Banks slices out of it bucket by
// bucket.
type arena struct {
	data []byte
	off  int
}

const hugePageSize = 2 << 20

// newArena reserves n bytes of anonymous memory, rounded up to a hugepage
// boundary, and advises the kernel to back it with transparent hugepages.
// On mmap failure it falls back to an ordinary heap-backed arena rather than
// aborting the run; a madvise failure is only logged and the mapping is kept
// -- the hugepage path is a throughput optimization, not a correctness
// requirement.
func newArena(n int) *arena {
	if n <= 0 {
		return &arena{}
	}
	size := n + hugePageSize
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		log.Error.Printf("kmersim: arena mmap(%d) failed, falling back to heap: %v", size, err)
		return &arena{data: make([]byte, n)}
	}
	if err := unix.Madvise(data, unix.MADV_HUGEPAGE); err != nil {
		log.Error.Printf("kmersim: arena madvise(MADV_HUGEPAGE) failed: %v", err)
	}
	start := ((uintptr(unsafe.Pointer(&data[0]))-1)/hugePageSize + 1) * hugePageSize
	base := uintptr(unsafe.Pointer(&data[0]))
	return &arena{data: data[start-base:]}
}

// allocKeys carves room for n Key128 values out of the arena, returned as a
// zero-length []Key128 with capacity n for the caller to append into.
func (a *arena) allocKeys(n int) []Key128 {
	if n == 0 {
		return nil
	}
	need := int(keySize) * n
	if a.off+need > len(a.data) {
		// Exhausted (should not happen given exact histogram sizing); fall
		// back to a heap allocation so correctness never depends on arena
		// capacity being exactly right.
		return make([]Key128, 0, n)
	}
	p := unsafe.Pointer(&a.data[a.off])
	a.off += need
	return unsafe.Slice((*Key128)(p), n)[:0]
}

// allocBanks carves room for n BankID values out of the arena, returned as a
// zero-length []BankID with capacity n for the caller to append into.
func (a *arena) allocBanks(n int) []BankID {
	if n == 0 {
		return nil
	}
	need := int(bankSize) * n
	if a.off+need > len(a.data) {
		return make([]BankID, 0, n)
	}
	p := unsafe.Pointer(&a.data[a.off])
	a.off += need
	return unsafe.Slice((*BankID)(p), n)[:0]
}

// arenaBytesFor returns the total byte reservation needed to hold every
// bucket's Kmers and Banks slices for a partition with the given histogram,
// so the caller can size one newArena call per partition rather than
// letting the Go allocator churn through 256 separate growth curves.
func arenaBytesFor(hist [256]uint64) int {
	var total uint64
	for _, c := range hist {
		total += c * uint64(keySize+bankSize)
	}
	return int(total)
}
