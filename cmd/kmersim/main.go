package main

//
// kmersim
//
// Estimates pairwise similarity between N sequencing datasets ("banks") from
// their shared k-mer content, without alignment: presence/absence (Jaccard),
// abundance-weighted, and Bray-Curtis matrices are written as CSV files.
//
// Example:
//
//    kmersim -descriptor banks.txt -k 31 -abundance-min 2 -output-dir ./out
//
// The descriptor file lists one bank per line: "<bank_id> <file1> [<file2> ...]".

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio/kmersim"
)

func usage() {
	fmt.Fprintln(os.Stderr, `
kmersim estimates pairwise k-mer similarity across N banks (sequencing
datasets) listed in a descriptor file.

Usage:
  kmersim -descriptor /path/to/banks.txt [flags]
`)
	flag.PrintDefaults()
	panic("")
}

func main() {
	flag.Usage = usage

	opts := kmersim.DefaultOpts
	descriptorPath := ""
	flag.StringVar(&descriptorPath, "descriptor", "", "Descriptor file listing banks, one per line: '<bank_id> <file1> [<file2> ...]'.")
	flag.IntVar(&opts.KmerSize, "k", kmersim.DefaultOpts.KmerSize, "K-mer length.")
	flag.IntVar(&opts.AbundanceMin, "abundance-min", kmersim.DefaultOpts.AbundanceMin, "Minimum per-bank abundance for a k-mer to be considered solid.")
	flag.IntVar(&opts.AbundanceMax, "abundance-max", kmersim.DefaultOpts.AbundanceMax, "Maximum per-bank abundance for a k-mer to be considered solid (0 = unbounded).")
	flag.BoolVar(&opts.SoliditySingle, "solidity-single", kmersim.DefaultOpts.SoliditySingle, "Zero individual non-solid components of an otherwise solid abundance vector, instead of passing the vector on unchanged.")
	flag.IntVar(&opts.MaxReads, "max-reads", kmersim.DefaultOpts.MaxReads, "Cap on reads consumed per bank, split evenly across a bank's files (0 = unlimited).")
	flag.IntVar(&opts.MinReadSize, "min-read-size", kmersim.DefaultOpts.MinReadSize, "Reject reads shorter than this (0 disables).")
	flag.Float64Var(&opts.MinReadShannon, "min-read-shannon", kmersim.DefaultOpts.MinReadShannon, "Reject reads with base-composition Shannon index below this, in bits (0 disables).")
	flag.Float64Var(&opts.MinKmerShannon, "min-kmer-shannon", kmersim.DefaultOpts.MinKmerShannon, "Reject individual k-mers with Shannon index below this, in bits (0 disables).")
	flag.IntVar(&opts.NumCores, "cores", kmersim.DefaultOpts.NumCores, "Worker pool size for bucket sorting (0 = runtime.NumCPU()).")
	flag.IntVar(&opts.NumPartitions, "partitions", kmersim.DefaultOpts.NumPartitions, "Number of disk-backed partitions to route k-mers to.")
	flag.StringVar(&opts.OutputDir, "output-dir", kmersim.DefaultOpts.OutputDir, "Directory to write the output CSV matrices to.")
	flag.StringVar(&opts.TempDir, "temp-dir", kmersim.DefaultOpts.TempDir, "Directory for partition spill files (default os.TempDir()).")
	flag.BoolVar(&opts.Verbose, "v", kmersim.DefaultOpts.Verbose, "Enable verbose progress logging.")
	flag.Parse()

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if descriptorPath == "" {
		log.Fatal("-descriptor is required")
	}
	banks, err := kmersim.ParseDescriptor(ctx, descriptorPath)
	if err != nil {
		log.Fatalf("parse descriptor %s: %v", descriptorPath, err)
	}
	opts.NumBanks = len(banks)
	log.Printf("kmersim: comparing %d banks, k=%d, cores=%d, partitions=%d",
		len(banks), opts.KmerSize, opts.ResolveCores(), opts.NumPartitions)

	stats, matrices, err := kmersim.Run(ctx, opts, banks)
	if err != nil {
		log.Fatalf("run: %v", err)
	}
	log.Printf("kmersim: %d distinct k-mers, %d solid, %d erroneous",
		stats.NbDistinctKmers, stats.NbSolidKmers, stats.NbErroneousKmers)

	if err := kmersim.WriteMatrices(ctx, opts, banks, matrices); err != nil {
		log.Fatalf("write matrices: %v", err)
	}
	log.Printf("kmersim: wrote matrices to %s", opts.OutputDir)
}
