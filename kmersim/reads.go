package kmersim

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/bio/biosimd"
	"github.com/grailbio/bio/encoding/fastq"
)

// ReadSource yields the accepted read sequences of one bank file, dispatched
// by extension between FASTQ (.fastq/.fq, possibly .gz) and FASTA
// (.fasta/.fa/.fna, possibly .gz), mirroring cmd/bio-fusion/main.go's
// readFASTQ: open via file.Open, unwrap a transparent gzip reader via
// compress.NewReaderPath, then scan records one at a time so a bank never
// needs to be held in memory.
type ReadSource struct {
	ctx   context.Context
	in    file.File
	fq    *fastq.Scanner
	fa    *fastaScanner
	quota int // remaining reads this file may yield, -1 = unlimited.
}

// isFASTAName reports whether path's extension indicates FASTA rather than
// FASTQ, ignoring a trailing .gz.
func isFASTAName(path string) bool {
	p := strings.TrimSuffix(path, ".gz")
	return strings.HasSuffix(p, ".fa") || strings.HasSuffix(p, ".fasta") || strings.HasSuffix(p, ".fna")
}

// OpenReadSource opens one bank file for streaming, capping the number of
// reads it will yield to quota (a non-negative value; use -1 for no cap),
// the per-file share of Opts.MaxReads computed by the caller per spec.md
// §4.1's "ceil(max_reads / nfiles)" rule.
func OpenReadSource(ctx context.Context, path string, quota int) (*ReadSource, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, ioErrorf(path, err)
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	rs := &ReadSource{ctx: ctx, in: in, quota: quota}
	if isFASTAName(path) {
		rs.fa = newFastaScanner(r)
	} else {
		rs.fq = fastq.NewScanner(r, fastq.Seq)
	}
	return rs, nil
}

// Scan advances to the next accepted read sequence. It returns false once
// the file or the quota is exhausted.
func (rs *ReadSource) Scan() (string, bool) {
	if rs.quota == 0 {
		return "", false
	}
	var seq string
	if rs.fq != nil {
		var rd fastq.Read
		if !rs.fq.Scan(&rd) {
			return "", false
		}
		seq = rd.Seq
	} else {
		s, ok := rs.fa.Scan()
		if !ok {
			return "", false
		}
		seq = s
	}
	if rs.quota > 0 {
		rs.quota--
	}
	return cleanSeq(seq), true
}

// cleanSeq upper-cases a/c/g/t and collapses every other byte (IUPAC
// ambiguity codes, stray whitespace from a malformed wrap) to 'N', the same
// normalization biosimd.CleanASCIISeqInplace applies ahead of alignment so
// every downstream consumer sees one canonical alphabet instead of each
// re-deriving it from raw FASTQ/FASTA bytes.
func cleanSeq(seq string) string {
	b := []byte(seq)
	biosimd.CleanASCIISeqInplace(b)
	return string(b)
}

// Err returns the terminal scan error, if any.
func (rs *ReadSource) Err() error {
	if rs.fq != nil {
		return rs.fq.Err()
	}
	return rs.fa.err
}

// Close releases the underlying file.
func (rs *ReadSource) Close() error {
	return rs.in.Close(rs.ctx)
}

// fastaScanner is a minimal streaming FASTA record reader: one sequence
// (its wrapped lines concatenated) per Scan call, written from scratch
// rather than reusing a whole-file indexed reader, since a bank file may be
// too large to map in full (records begin with '>', sequence lines may
// wrap).
type fastaScanner struct {
	b       *bufio.Scanner
	pending string // header line read ahead for the next record
	err     error
	done    bool
}

func newFastaScanner(r io.Reader) *fastaScanner {
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, 64*1024), 64*1024*1024)
	s := &fastaScanner{b: b}
	if b.Scan() {
		s.pending = b.Text()
	} else {
		s.done = true
		s.err = b.Err()
	}
	return s
}

func (s *fastaScanner) Scan() (string, bool) {
	if s.done {
		return "", false
	}
	if len(s.pending) == 0 || s.pending[0] != '>' {
		s.err = errors.E("fasta: expected header line", s.pending)
		s.done = true
		return "", false
	}
	var seq strings.Builder
	for s.b.Scan() {
		line := s.b.Text()
		if len(line) > 0 && line[0] == '>' {
			out := seq.String()
			s.pending = line
			return out, true
		}
		seq.WriteString(line)
	}
	s.done = true
	if err := s.b.Err(); err != nil {
		s.err = err
	}
	return seq.String(), true
}

// perFileQuota computes ceil(maxReads/nfiles), the per-file read cap for a
// multi-file bank (spec.md §4.1). maxReads<=0 means unlimited (-1).
func perFileQuota(maxReads, nfiles int) int {
	if maxReads <= 0 {
		return -1
	}
	if nfiles <= 0 {
		nfiles = 1
	}
	return (maxReads + nfiles - 1) / nfiles
}
