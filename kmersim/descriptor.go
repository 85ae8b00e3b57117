package kmersim

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/minio/highwayhash"
)

// descriptor files list the banks (datasets) to compare, one per line:
//
//	<bank_id> <file1> [<file2> ...]
//
// bank_id must be a non-negative integer unique within the file; the
// remaining whitespace-separated fields are the bank's files, allowing a
// multi-file bank (e.g. paired-end reads split across several FASTQ
// files). A line beginning with '#' is a comment and ignored, except for
// the special trailer line described below. The format mirrors
// cmd/bio-fusion/main.go's readGeneList: read the whole file with
// file.ReadFile, split it into lines, trim, skip blanks.
var checksumSeed = [highwayhash.Size]byte{}

const checksumPrefix = "# checksum "

// ParseDescriptor reads and parses a descriptor file. If the file's last
// non-comment-bearing line is a "# checksum <hex>" trailer (as written by
// WriteDescriptor), the trailer is verified against a highwayhash digest
// of everything that precedes it; a mismatch is reported as a DataErr
// rather than silently accepted, catching truncation or hand-editing that
// leaves the bank list structurally valid but corrupted. Descriptor files
// without a trailer parse normally -- the checksum is an optional
// integrity aid, not a required field.
func ParseDescriptor(ctx context.Context, path string) ([]Bank, error) {
	data, err := file.ReadFile(ctx, path)
	if err != nil {
		return nil, ioErrorf(path, err)
	}
	if err := verifyChecksumTrailer(data); err != nil {
		return nil, dataErrorf(path, "%v", err)
	}

	var banks []Bank
	seen := map[BankID]bool{}
	lines := strings.Split(string(data), "\n")
	for lineNo, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, configErrorf(path, "line %d: expected '<bank_id> <files>', got %q", lineNo+1, line)
		}
		id, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return nil, configErrorf(path, "line %d: invalid bank id %q: %v", lineNo+1, fields[0], err)
		}
		bankID := BankID(id)
		if seen[bankID] {
			return nil, configErrorf(path, "line %d: duplicate bank id %d", lineNo+1, bankID)
		}
		seen[bankID] = true

		files := append([]string(nil), fields[1:]...)
		banks = append(banks, Bank{ID: bankID, Name: fmt.Sprintf("bank%d", bankID), Files: files})
	}
	if len(banks) == 0 {
		return nil, configErrorf(path, "descriptor file has no banks")
	}
	return banks, nil
}

// verifyChecksumTrailer checks data's last line against a "# checksum"
// trailer, if present.
func verifyChecksumTrailer(data []byte) error {
	trimmed := bytes.TrimRight(data, "\n")
	idx := bytes.LastIndexByte(trimmed, '\n')
	last := string(trimmed)
	body := []byte{}
	if idx >= 0 {
		last = string(trimmed[idx+1:])
		body = trimmed[:idx+1]
	}
	if !strings.HasPrefix(last, checksumPrefix) {
		return nil
	}
	want := strings.TrimPrefix(last, checksumPrefix)
	got := fmt.Sprintf("%x", highwayhash.Sum(body, checksumSeed[:]))
	if got != want {
		return fmt.Errorf("descriptor checksum mismatch: file has %s, computed %s (truncated or corrupted?)", want, got)
	}
	return nil
}

// WriteDescriptor serializes banks to path in the format ParseDescriptor
// accepts, appending an integrity trailer covering the bank lines.
func WriteDescriptor(ctx context.Context, path string, banks []Bank) error {
	var buf bytes.Buffer
	for _, b := range banks {
		fmt.Fprintf(&buf, "%d %s\n", b.ID, strings.Join(b.Files, " "))
	}
	sum := highwayhash.Sum(buf.Bytes(), checksumSeed[:])
	fmt.Fprintf(&buf, "%s%x\n", checksumPrefix, sum)

	out, err := file.Create(ctx, path)
	if err != nil {
		return ioErrorf(path, err)
	}
	if _, err := out.Writer(ctx).Write(buf.Bytes()); err != nil {
		_ = out.Close(ctx)
		return ioErrorf(path, err)
	}
	if err := out.Close(ctx); err != nil {
		return ioErrorf(path, err)
	}
	return nil
}
