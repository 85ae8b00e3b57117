package kmersim

import (
	"context"
	"sync"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// ingestBank streams every read file of one bank, applies the sequence and
// per-k-mer filters, and appends the surviving canonical k-mers to pt under
// bank.ID. It mirrors cmd/bio-fusion/main.go's readFASTQ: one goroutine per
// bank, fed straight into the downstream fan-in (here, the partitioner's
// own internal locking) rather than through an explicit channel, since
// Partitioner.Append is already safe for concurrent callers.
func ingestBank(ctx context.Context, pt *Partitioner, bank Bank, opts Opts) error {
	quota := perFileQuota(opts.MaxReads, len(bank.Files))
	extractor := NewKmerExtractor(opts.KmerSize, opts.MinKmerShannon)

	const flushThreshold = 4096
	buf := make([]Key128, 0, flushThreshold)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		err := pt.Append(bank.ID, buf)
		buf = buf[:0]
		return err
	}

	for _, path := range bank.Files {
		rs, err := OpenReadSource(ctx, path, quota)
		if err != nil {
			return err
		}
		for {
			seq, ok := rs.Scan()
			if !ok {
				break
			}
			if !FilterRead(seq, opts) {
				continue
			}
			extractor.Reset(seq)
			for extractor.Scan() {
				buf = append(buf, extractor.Get().Canonical())
				if len(buf) >= flushThreshold {
					if err := flush(); err != nil {
						_ = rs.Close()
						return err
					}
				}
			}
		}
		if err := rs.Err(); err != nil {
			_ = rs.Close()
			return ioErrorf(path, err)
		}
		if err := rs.Close(); err != nil {
			return ioErrorf(path, err)
		}
	}
	return flush()
}

// Run executes the full pipeline of spec.md §4: ingest every bank's reads
// into a partitioned external-memory bag of canonical k-mers, then for each
// partition independently -- radix-bucket it, sort each bucket in
// parallel, merge-emit one abundance vector per distinct k-mer, gate it on
// solidity, and fold it into a per-partition Statistics accumulator. The
// per-partition accumulators are merged into the single returned
// Statistics under a lock, the "clone + finish" accumulation pattern
// grounded on fusion.Stats.Merge's commutative value-receiver sum.
func Run(ctx context.Context, opts Opts, banks []Bank) (*Statistics, Matrices, error) {
	if opts.NumBanks == 0 {
		opts.NumBanks = len(banks)
	}
	pt, err := NewPartitioner(ctx, opts.TempDir, opts.NumPartitions, opts.KmerSize)
	if err != nil {
		return nil, Matrices{}, err
	}

	var (
		wg       sync.WaitGroup
		ingestMu sync.Mutex
		ingestErr error
	)
	for _, bank := range banks {
		wg.Add(1)
		go func(bank Bank) {
			defer wg.Done()
			if err := ingestBank(ctx, pt, bank, opts); err != nil {
				ingestMu.Lock()
				if ingestErr == nil {
					ingestErr = err
				}
				ingestMu.Unlock()
			}
		}(bank)
	}
	wg.Wait()
	if ingestErr != nil {
		return nil, Matrices{}, ingestErr
	}
	if err := pt.Close(ctx); err != nil {
		return nil, Matrices{}, err
	}

	global := NewStatistics(opts.NumBanks)
	var mu sync.Mutex

	parts := pt.Partitions()
	nWorkers := opts.ResolveCores()
	if nWorkers > len(parts) {
		nWorkers = len(parts)
	}
	if nWorkers < 1 {
		nWorkers = 1
	}

	err = traverse.Limit(nWorkers).Each(len(parts), func(i int) error {
		p := parts[i]
		rb, err := RadixBucketer(ctx, p, opts.KmerSize)
		if err != nil {
			return err
		}
		if err := ParallelSorter(rb, nWorkers); err != nil {
			return err
		}
		local := NewStatistics(opts.NumBanks)
		if err := MergeEmitter(rb, opts.NumBanks, func(_ Key128, c AbundanceVector) error {
			local.Process(c, opts)
			return nil
		}); err != nil {
			return err
		}
		mu.Lock()
		merged := global.Merge(local)
		*global = merged
		mu.Unlock()
		if opts.Verbose {
			log.Printf("kmersim: partition %d drained", p.id)
		}
		return nil
	})
	if err != nil {
		return nil, Matrices{}, err
	}

	matrices := BuildMatrices(global)
	return global, matrices, nil
}
