package kmersim

import "runtime"

// Opts holds the configuration recognized by the kmersim pipeline. Field
// names mirror the flag names of cmd/kmersim.
type Opts struct {
	// KmerSize is the length k of the k-mers counted across all banks.
	KmerSize int

	// AbundanceMin and AbundanceMax bound the solidity interval
	// [AbundanceMin, AbundanceMax]. AbundanceMax==0 means unbounded.
	AbundanceMin int
	AbundanceMax int

	// SoliditySingle, when true, zeroes any per-bank component of an
	// abundance vector that is not itself solid before accumulating
	// statistics, as long as the vector as a whole is vector-solid.
	SoliditySingle bool

	// MaxReads caps the number of reads consumed per bank (0 = unlimited).
	// For multi-file banks, the per-file quota is ceil(MaxReads/nfiles).
	MaxReads int

	// MinReadSize rejects reads shorter than this length (0 disables).
	MinReadSize int
	// MinReadShannon rejects reads whose base-composition Shannon index
	// falls below this value, in bits (0 disables).
	MinReadShannon float64
	// MinKmerShannon rejects individual k-mers below this Shannon index
	// (0 disables).
	MinKmerShannon float64

	// NumCores sizes the fixed worker pool used for bucket sorting and
	// partition draining. Defaults to runtime.NumCPU() when <= 0.
	NumCores int

	// NumPartitions is the number of disk-backed partitions k-mers are
	// routed to. Chosen from input size and memory budget by the caller;
	// kmersim does not second-guess it.
	NumPartitions int

	// NumBanks is the number of datasets (banks) being compared. Every
	// AbundanceVector and per-bank statistic is sized to this value.
	NumBanks int

	// OutputDir is the target directory for the CSV matrices.
	OutputDir string

	// TempDir holds the on-disk partition spill files. Defaults to
	// os.TempDir() when empty.
	TempDir string

	// Verbose enables extra progress logging.
	Verbose bool
}

// DefaultOpts holds the package defaults, mirroring the values documented in
// the external interface contract.
var DefaultOpts = Opts{
	KmerSize:       31,
	AbundanceMin:   1,
	AbundanceMax:   0, // unbounded
	SoliditySingle: false,
	MaxReads:       0,
	MinReadSize:    0,
	MinReadShannon: 0,
	MinKmerShannon: 0,
	NumCores:       0, // resolved to runtime.NumCPU() by ResolveCores
	NumPartitions:  16,
	OutputDir:      ".",
}

// ResolveCores returns o.NumCores if positive, else runtime.NumCPU().
func (o Opts) ResolveCores() int {
	if o.NumCores > 0 {
		return o.NumCores
	}
	return runtime.NumCPU()
}

// abundanceMax returns the effective upper solidity bound, treating 0 as
// unbounded.
func (o Opts) abundanceMax() uint32 {
	if o.AbundanceMax <= 0 {
		return ^uint32(0)
	}
	return uint32(o.AbundanceMax)
}
