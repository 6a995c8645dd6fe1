package apply

// cellMask precomputes, once per kernel per Apply call, which kernel
// cells pass a primitive's per-cell predicate (the "k >= 0.5" /
// "k > 0.7" / "k < 0.3" tests). A masked (NaN) kernel cell
// always compares false under IEEE-754, so the same elementwise-compare
// pass doubles as NaN-exclusion — no separate kernel.IsMasked check is
// needed once a mask has been built this way.
//
// Building the mask once per kernel instead of re-comparing kv against
// the threshold inside the per-pixel, per-cell hot loop turns a float
// comparison into an array lookup.
type cellMask struct {
	keep []float64 // Erode/Dilate/Intensity: 1 where kv >= boolThreshold
	hit  []float64 // HitMiss/Thin/Thicken: 1 where kv > hitThreshold
	miss []float64 // HitMiss/Thin/Thicken: 1 where kv < missThreshold
}

func buildCellMask(prim Primitive, values []float64) cellMask {
	n := len(values)
	switch prim {
	case Erode, Dilate, ErodeIntensity, DilateIntensity:
		keep := make([]float64, n)
		elemGreaterEqualScalar(keep, values, boolThreshold, n)
		return cellMask{keep: keep}
	case HitMiss, Thin, Thicken:
		hit := make([]float64, n)
		miss := make([]float64, n)
		elemGreaterScalar(hit, values, hitThreshold, n)
		elemLessScalar(miss, values, missThreshold, n)
		return cellMask{hit: hit, miss: miss}
	default:
		return cellMask{}
	}
}

func (m cellMask) keeps(i int) bool  { return m.keep != nil && m.keep[i] != 0 }
func (m cellMask) hits(i int) bool   { return m.hit != nil && m.hit[i] != 0 }
func (m cellMask) misses(i int) bool { return m.miss != nil && m.miss[i] != 0 }
