package kmersim

// Matrices holds the five N×N output matrices derived from a completed
// Statistics accumulation (spec.md §4.9). Every ratio matrix follows the
// divide-by-zero-yields-zero convention: an empty bank (or a bank pair that
// never co-occurs) contributes a 0.0 entry rather than NaN or a panic.
type Matrices struct {
	NumBanks int

	// PresenceAbsenceAsym[i][j] = matrix_distinct_shared_kmers[i][j] /
	// nb_solid_distinct_kmers_per_bank[i] -- asymmetric by construction.
	PresenceAbsenceAsym [][]float64

	// PresenceAbsenceNorm[i][j] = matrix_distinct_shared_kmers[i][j] /
	// (distinct[i] + distinct[j] - shared[i][j]), the Jaccard index; always
	// symmetric.
	PresenceAbsenceNorm [][]float64

	// AbundanceAsym[i][j] = matrix_shared_kmers[i][j] /
	// nb_solid_kmers_per_bank[i].
	AbundanceAsym [][]float64

	// AbundanceNorm[i][j] = matrix_shared_kmers[i][j] /
	// (kmers[i] + kmers[j] - shared[i][j]).
	AbundanceNorm [][]float64

	// BrayCurtis[i][j] = 2*bray_curtis_numerator[i][j] / (kmers[i] +
	// kmers[j]), the similarity form (spec.md §4.9 emits the similarity;
	// 1-BrayCurtis is the dissimilarity, left to the consumer). 1 on the
	// diagonal for any non-empty bank.
	BrayCurtis [][]float64
}

func newSquare(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// safeDiv returns num/den, or 0 when den is 0.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// BuildMatrices derives the five similarity/distance matrices from a fully
// merged Statistics, implementing spec.md §4.9.
func BuildMatrices(s *Statistics) Matrices {
	n := s.NumBanks
	m := Matrices{
		NumBanks:            n,
		PresenceAbsenceAsym: newSquare(n),
		PresenceAbsenceNorm: newSquare(n),
		AbundanceAsym:       newSquare(n),
		AbundanceNorm:       newSquare(n),
		BrayCurtis:          newSquare(n),
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			distinctShared := float64(s.MatrixDistinctSharedKmers[i][j])
			shared := float64(s.MatrixSharedKmers[i][j])
			distinctI := float64(s.NbSolidDistinctKmersPerBank[i])
			distinctJ := float64(s.NbSolidDistinctKmersPerBank[j])
			kmersI := float64(s.NbSolidKmersPerBank[i])
			kmersJ := float64(s.NbSolidKmersPerBank[j])

			m.PresenceAbsenceAsym[i][j] = safeDiv(distinctShared, distinctI)
			m.PresenceAbsenceNorm[i][j] = safeDiv(distinctShared, distinctI+distinctJ-distinctShared)
			m.AbundanceAsym[i][j] = safeDiv(shared, kmersI)
			m.AbundanceNorm[i][j] = safeDiv(shared, kmersI+kmersJ-shared)

			num := float64(s.BrayCurtisNumerator[i][j])
			m.BrayCurtis[i][j] = safeDiv(2*num, kmersI+kmersJ)
		}
	}
	return m
}
