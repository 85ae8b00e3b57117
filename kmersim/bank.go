package kmersim

import (
	"fmt"
	"os"
	"path/filepath"
)

// BankID identifies a dataset (bank) among the N inputs being compared. It
// is 16 bits wide, the spec's max-N=65535 constraint (spec.md §3).
type BankID uint16

// Bank describes one numbered input: a human-readable label and the read
// files that make it up.
type Bank struct {
	ID    BankID
	Name  string
	Files []string
}

// tempFilePath builds a unique path for a partition's spill file under dir
// (os.TempDir() when dir is empty), named prefix_<idx>.rio.
func tempFilePath(dir, prefix string, idx int) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%04d.rio", prefix, idx))
}
