package kmersim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/require"
)

// writeFastq writes one minimal single-record-per-read FASTQ file, reusing
// the fixed '+' separator and uniform quality string the teacher's own
// FASTQ fixtures use (encoding/fastq/fastq_test.go).
func writeFastq(t *testing.T, path string, reads []string) {
	t.Helper()
	var buf []byte
	for i, r := range reads {
		buf = append(buf, []byte("@read")...)
		buf = append(buf, []byte{byte('0' + i)}...)
		buf = append(buf, '\n')
		buf = append(buf, r...)
		buf = append(buf, '\n', '+', '\n')
		for range r {
			buf = append(buf, 'I')
		}
		buf = append(buf, '\n')
	}
	require.NoError(t, os.WriteFile(path, buf, 0644))
}

func TestRunTwoIdenticalBanksYieldFullSimilarity(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	seq := "ACGTACGTACGTACGTACGTACGTACGTACGTACGT" // 36 bases, k=8 below
	pathA := filepath.Join(dir, "a.fastq")
	pathB := filepath.Join(dir, "b.fastq")
	writeFastq(t, pathA, []string{seq})
	writeFastq(t, pathB, []string{seq})

	opts := defaultTestOpts(2)
	opts.KmerSize = 8
	opts.NumPartitions = 4
	opts.TempDir = dir

	banks := []Bank{
		{ID: 0, Name: "a", Files: []string{pathA}},
		{ID: 1, Name: "b", Files: []string{pathB}},
	}
	stats, matrices, err := Run(ctx, opts, banks)
	require.NoError(t, err)
	require.Greater(t, stats.NbDistinctKmers, uint64(0))
	require.InDelta(t, 1.0, matrices.BrayCurtis[0][1], 1e-9)
	require.InDelta(t, 1.0, matrices.PresenceAbsenceNorm[0][1], 1e-9)
}

func TestRunDisjointBanksYieldZeroOffDiagonal(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	pathA := filepath.Join(dir, "a.fastq")
	pathB := filepath.Join(dir, "b.fastq")
	writeFastq(t, pathA, []string{"AAAACCCCGGGGTTTTAAAACCCCGGGGTTTT"})
	writeFastq(t, pathB, []string{"TGCATGCATGCATGCATGCATGCATGCATGCA"})

	opts := defaultTestOpts(2)
	opts.KmerSize = 8
	opts.NumPartitions = 4
	opts.TempDir = dir

	banks := []Bank{
		{ID: 0, Name: "a", Files: []string{pathA}},
		{ID: 1, Name: "b", Files: []string{pathB}},
	}
	stats, matrices, err := Run(ctx, opts, banks)
	require.NoError(t, err)
	require.Equal(t, uint64(0), stats.MatrixDistinctSharedKmers[0][1])
	require.InDelta(t, 0.0, matrices.BrayCurtis[0][1], 1e-9)
}

func TestRunIsDeterministicAcrossCoreCounts(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	seqA := "ACGTACGTTTGGCCAAACGTACGTTTGGCCAA"
	seqB := "ACGTACGTTTGGCCAAGGGGCCCCTTTTAAAA"
	pathA := filepath.Join(dir, "a.fastq")
	pathB := filepath.Join(dir, "b.fastq")
	writeFastq(t, pathA, []string{seqA})
	writeFastq(t, pathB, []string{seqB})

	banks := []Bank{
		{ID: 0, Name: "a", Files: []string{pathA}},
		{ID: 1, Name: "b", Files: []string{pathB}},
	}

	run := func(cores int) *Statistics {
		sub := filepath.Join(dir, "tmp")
		require.NoError(t, os.MkdirAll(sub, 0755))
		opts := defaultTestOpts(2)
		opts.KmerSize = 8
		opts.NumPartitions = 4
		opts.NumCores = cores
		opts.TempDir = sub
		stats, _, err := Run(ctx, opts, banks)
		require.NoError(t, err)
		return stats
	}

	s1 := run(1)
	s8 := run(8)
	require.Equal(t, s1.NbDistinctKmers, s8.NbDistinctKmers)
	require.Equal(t, s1.NbSolidKmers, s8.NbSolidKmers)
	require.Equal(t, s1.MatrixDistinctSharedKmers, s8.MatrixDistinctSharedKmers)
	require.Equal(t, s1.BrayCurtisNumerator, s8.BrayCurtisNumerator)
}
