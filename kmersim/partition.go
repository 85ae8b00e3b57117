package kmersim

import (
	"bytes"
	"context"
	"encoding/gob"
	"sync"
	"sync/atomic"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"
)

// partitionState names the stages of a partition's single-direction
// lifecycle (spec.md §4, "State machines"): Open -> Filling -> Closed ->
// Bucketing -> Sorting -> Merging -> Drained. Only Filling and Closed are
// ever stored: NewPartitioner creates a partition in Filling,
// Partitioner.Close moves it to Closed, and an append or Close outside
// Filling panics. The later stages are not recorded in the state field.
type partitionState int

const (
	stateOpen partitionState = iota
	stateFilling
	stateClosed
	stateBucketing
	stateSorting
	stateMerging
	stateDrained
)

func (s partitionState) String() string {
	return [...]string{"Open", "Filling", "Closed", "Bucketing", "Sorting", "Merging", "Drained"}[s]
}

// kmerBatch is the unit of a partition spill write: every canonical k-mer a
// single producer extracted for one bank since its last flush. Batching
// (rather than one recordio record per k-mer) bounds the per-partition
// append lock to batch granularity, per spec.md §5's backpressure guidance.
type kmerBatch struct {
	BankID BankID
	Kmers  []Key128
}

// partition is one disk-backed, unordered bag of canonical k-mers, tagged
// implicitly by the bank id of their originating read (spec.md §3,
// "Partition"). Concurrent producers serialize at the recordio.Writer via
// mu; each producer is expected to accumulate a buffer and flush, per
// spec.md §4.3.
type partition struct {
	id    int
	mu    sync.Mutex
	state partitionState
	out   file.File
	w     recordio.Writer
	path  string

	// hist is the exact top-byte histogram for this partition, maintained
	// concurrently with atomic increments as k-mers are appended (spec.md
	// §4.4/§5). RadixBucketer reads it only after Close's partition-close
	// barrier, so no further synchronization is needed at read time.
	hist [256]uint64
}

// Histogram returns a snapshot of the partition's top-byte histogram. Valid
// only after Partitioner.Close.
func (p *partition) Histogram() [256]uint64 { return p.hist }

// Partitioner routes canonical k-mers to one of P disk-backed partitions by
// hash(x) mod P (spec.md §4.3). Every occurrence of the same canonical
// k-mer is guaranteed to land in the same partition because the route is a
// pure function of the k-mer value.
type Partitioner struct {
	parts    []*partition
	kmerSize int
	bitWidth int
}

// partitionHash returns the routing hash for a canonical k-mer, reusing the
// farmhash choice and the nil-data/uint64-seed calling convention already
// established for the kmer->genelist index in the fusion package
// (github.com/dgryski/go-farm, fusion/kmer_index.go's hashKmer).
func partitionHash(k Key128) uint64 {
	if k.Hi == 0 {
		return farm.Hash64WithSeed(nil, k.Lo)
	}
	return farm.Hash64WithSeed(nil, k.Lo^farm.Hash64WithSeed(nil, k.Hi))
}

// NewPartitioner creates p partitions, each spilling to a temp file in
// tempDir. The caller must close the Partitioner's partitions (via
// Partitioner.Close) once all producers are done.
func NewPartitioner(ctx context.Context, tempDir string, p, kmerSize int) (*Partitioner, error) {
	parts := make([]*partition, p)
	for i := 0; i < p; i++ {
		path := tempFilePath(tempDir, "kmersim_partition", i)
		out, err := file.Create(ctx, path)
		if err != nil {
			return nil, ioErrorf(path, err)
		}
		w := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{})
		parts[i] = &partition{id: i, out: out, w: w, path: path, state: stateFilling}
	}
	return &Partitioner{parts: parts, kmerSize: kmerSize, bitWidth: 2 * kmerSize}, nil
}

// NumPartitions returns the partition count P.
func (pt *Partitioner) NumPartitions() int { return len(pt.parts) }

// Route returns the partition index a canonical k-mer is assigned to.
func (pt *Partitioner) Route(k Key128) int {
	return int(partitionHash(k) % uint64(len(pt.parts)))
}

// Append appends a batch of canonical k-mers, all from the same bank, to
// their target partitions. Kmers that route to different partitions are
// grouped and written under each partition's own lock; the append is safe
// to call concurrently from many producer goroutines.
func (pt *Partitioner) Append(bank BankID, kmers []Key128) error {
	byPart := make(map[int][]Key128, len(pt.parts))
	for _, k := range kmers {
		idx := pt.Route(k)
		byPart[idx] = append(byPart[idx], k)
		atomic.AddUint64(&pt.parts[idx].hist[k.TopByte(pt.bitWidth)], 1)
	}
	for idx, ks := range byPart {
		if err := pt.parts[idx].append(bank, ks); err != nil {
			return err
		}
	}
	return nil
}

func (p *partition) append(bank BankID, kmers []Key128) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(kmerBatch{BankID: bank, Kmers: kmers}); err != nil {
		return ioErrorf(p.path, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateFilling {
		panic(p.state)
	}
	p.w.Append(buf.Bytes())
	return nil
}

// Close transitions every partition from Filling to Closed, flushing and
// closing each spill file for reading. It must be called exactly once,
// after every producer has finished appending.
func (pt *Partitioner) Close(ctx context.Context) error {
	for _, p := range pt.parts {
		p.mu.Lock()
		if p.state != stateFilling {
			p.mu.Unlock()
			panic(p.state)
		}
		p.state = stateClosed
		p.mu.Unlock()
		if err := p.w.Finish(); err != nil {
			return ioErrorf(p.path, err)
		}
		if err := p.out.Close(ctx); err != nil {
			return ioErrorf(p.path, err)
		}
	}
	return nil
}

// Partitions returns read-only descriptors for each partition, for handoff
// to the RadixBucketer.
func (pt *Partitioner) Partitions() []*partition { return pt.parts }

// readBatches opens the partition's spill file for reading and invokes fn
// once per kmerBatch it contains, in write order. It is used by
// RadixBucketer's scatter pass; the histogram is kept by Append instead.
func (p *partition) readBatches(ctx context.Context, fn func(kmerBatch) error) error {
	in, err := file.Open(ctx, p.path)
	if err != nil {
		return ioErrorf(p.path, err)
	}
	defer func() { _ = in.Close(ctx) }()
	sc := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	for sc.Scan() {
		var b kmerBatch
		if err := gob.NewDecoder(bytes.NewReader(sc.Get().([]byte))).Decode(&b); err != nil {
			return ioErrorf(p.path, err)
		}
		if err := fn(b); err != nil {
			return err
		}
	}
	return sc.Err()
}
