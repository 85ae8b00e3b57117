package kmersim

// isSolid reports whether a single bank's count falls in [AMin, AMax]
// (spec.md §4.7).
func isSolid(count uint32, amin, amax uint32) bool {
	return count >= amin && count <= amax
}

// SolidityGate applies the abundance thresholds to an abundance vector,
// implementing the policy of spec.md §4.7:
//
//   - if no component is solid (vector-solid is false), the k-mer is
//     dropped: ok is false, and the caller must not account it further.
//   - if opts.SoliditySingle is enabled, every non-solid component of the
//     (vector-solid) vector is zeroed before being returned; otherwise the
//     vector is returned unchanged.
//
// SolidityGate mutates c in place and also returns it for convenience.
func SolidityGate(c AbundanceVector, opts Opts) (out AbundanceVector, ok bool) {
	amin := uint32(opts.AbundanceMin)
	amax := opts.abundanceMax()

	vectorSolid := false
	for _, v := range c {
		if v > 0 && isSolid(v, amin, amax) {
			vectorSolid = true
			break
		}
	}
	if !vectorSolid {
		return nil, false
	}
	if opts.SoliditySingle {
		for i, v := range c {
			if v > 0 && !isSolid(v, amin, amax) {
				c[i] = 0
			}
		}
	}
	return c, true
}
