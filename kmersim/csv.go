package kmersim

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/base/file"
)

// matrixSuffix builds the "_k<K>_min<AMIN>[_max<AMAX>]" filename suffix
// documented for the output matrices. AMax is elided once it reaches or
// exceeds 1,000,000, the de facto "unbounded" value callers pass instead of
// 0 when they want the suffix to read as unbounded too.
func matrixSuffix(opts Opts) string {
	s := fmt.Sprintf("_k%d_min%d", opts.KmerSize, opts.AbundanceMin)
	if opts.AbundanceMax > 0 && opts.AbundanceMax < 1000000 {
		s += fmt.Sprintf("_max%d", opts.AbundanceMax)
	}
	return s
}

// writeMatrixCSV writes one N×N matrix as a ';'-separated CSV, labeling
// rows and columns by bank name, following markduplicates/metrics.go's
// manual fmt.Fprintf row-assembly idiom rather than encoding/csv (the
// output here is always numeric and semicolon-delimited, matching the
// upstream tool's convention, which encoding/csv's comma default doesn't
// give us for free).
func writeMatrixCSV(ctx context.Context, path string, banks []Bank, m [][]float64) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return ioErrorf(path, err)
	}
	w := out.Writer(ctx)

	names := make([]string, len(banks))
	for i, b := range banks {
		names[i] = b.Name
	}
	if _, err := fmt.Fprintf(w, ";%s\n", strings.Join(names, ";")); err != nil {
		_ = out.Close(ctx)
		return ioErrorf(path, err)
	}
	for i, row := range m {
		if _, err := fmt.Fprintf(w, "%s", names[i]); err != nil {
			_ = out.Close(ctx)
			return ioErrorf(path, err)
		}
		for _, v := range row {
			if _, err := fmt.Fprintf(w, ";%.6f", v); err != nil {
				_ = out.Close(ctx)
				return ioErrorf(path, err)
			}
		}
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			_ = out.Close(ctx)
			return ioErrorf(path, err)
		}
	}
	if err := out.Close(ctx); err != nil {
		return ioErrorf(path, err)
	}
	return nil
}

// WriteMatrices writes all five similarity/distance matrices to
// opts.OutputDir, named per the package convention
// (mat_<kind>_k<K>_min<AMIN>[_max<AMAX>].csv).
func WriteMatrices(ctx context.Context, opts Opts, banks []Bank, m Matrices) error {
	suf := matrixSuffix(opts)
	type entry struct {
		name string
		mat  [][]float64
	}
	entries := []entry{
		{"mat_presenceAbsence_asym" + suf, m.PresenceAbsenceAsym},
		{"mat_presenceAbsence_norm" + suf, m.PresenceAbsenceNorm},
		{"mat_abundance_asym" + suf, m.AbundanceAsym},
		{"mat_abundance_norm" + suf, m.AbundanceNorm},
		{"mat_brayCurtis" + suf, m.BrayCurtis},
	}
	for _, e := range entries {
		path := opts.OutputDir + "/" + e.name + ".csv"
		if err := writeMatrixCSV(ctx, path, banks, e.mat); err != nil {
			return err
		}
	}
	return nil
}
