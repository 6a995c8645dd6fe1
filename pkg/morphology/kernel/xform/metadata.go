// Package xform implements kernel transforms: metadata recomputation,
// scaling/normalization, reflection, rotation, expansion, NaN handling
// and pretty-printing.
package xform

import (
	"fmt"
	"io"
	"math"

	"github.com/itohio/morphology/pkg/morphology/kernel"
)

// RecomputeMetadata scans Values and updates Minimum, Maximum,
// PositiveRange and NegativeRange. Values whose magnitude is below
// kernel.Epsilon are clamped to exact 0 first (zero-valued cells still
// count toward the sums; NaN cells never do). Descends the whole chain.
func RecomputeMetadata(k *kernel.Kernel) {
	for cur := k; cur != nil; cur = cur.Next {
		recomputeOne(cur)
	}
}

func recomputeOne(k *kernel.Kernel) {
	min := math.Inf(1)
	max := math.Inf(-1)
	var pos, neg float64
	seen := false

	for i, v := range k.Values {
		if kernel.IsMasked(v) {
			continue
		}
		if math.Abs(v) < kernel.Epsilon {
			v = 0
			k.Values[i] = 0
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		if v > 0 {
			pos += v
		} else if v < 0 {
			neg += v
		}
		seen = true
	}

	if !seen {
		min, max = 0, 0
	}
	k.Minimum = min
	k.Maximum = max
	k.PositiveRange = pos
	k.NegativeRange = neg
}

// ScaleFlag selects how Scale normalizes a kernel before applying its
// factor.
type ScaleFlag int

const (
	// ScaleNone applies factor with no normalization pass.
	ScaleNone ScaleFlag = iota
	// ScaleNormalize divides by PositiveRange+NegativeRange (or, for a
	// zero-sum kernel, by PositiveRange alone) before multiplying by factor.
	ScaleNormalize
	// ScaleCorrelateNormalize scales positive and negative cells
	// independently to force a zero-sum, unit-energy kernel.
	ScaleCorrelateNormalize
)

// Scale normalizes then multiplies every non-NaN cell of every kernel in
// the chain by factor. If percent is true, factor is first divided by 100.
// Metadata is recomputed from the scaled grid, so for factor < 0
// Minimum/Maximum and the two ranges follow the sign flip of the whole
// grid.
func Scale(k *kernel.Kernel, factor float64, flag ScaleFlag, percent bool) {
	if percent {
		factor /= 100.0
	}
	for cur := k; cur != nil; cur = cur.Next {
		scaleOne(cur, factor, flag)
	}
}

func scaleOne(k *kernel.Kernel, factor float64, flag ScaleFlag) {
	switch flag {
	case ScaleCorrelateNormalize:
		var posScale, negScale float64
		if k.PositiveRange != 0 {
			posScale = factor / k.PositiveRange
		}
		if k.NegativeRange != 0 {
			negScale = factor / math.Abs(k.NegativeRange)
		}
		for i, v := range k.Values {
			if kernel.IsMasked(v) {
				continue
			}
			if v > 0 {
				k.Values[i] = v * posScale
			} else if v < 0 {
				k.Values[i] = v * negScale
			}
		}
	case ScaleNormalize:
		denom := k.PositiveRange + k.NegativeRange
		if denom == 0 {
			denom = k.PositiveRange
		}
		var norm float64
		if denom != 0 {
			norm = factor / denom
		}
		applyScalar(k, norm)
	case ScaleNone:
		applyScalar(k, factor)
	}

	recomputeOne(k)
}

func applyScalar(k *kernel.Kernel, s float64) {
	for i, v := range k.Values {
		if kernel.IsMasked(v) {
			continue
		}
		k.Values[i] = v * s
	}
}

// UnityAdd adds s to the origin cell of every kernel in the chain, then
// recomputes metadata.
func UnityAdd(k *kernel.Kernel, s float64) {
	for cur := k; cur != nil; cur = cur.Next {
		cur.Set(cur.X, cur.Y, cur.At(cur.X, cur.Y)+s)
		recomputeOne(cur)
	}
}

// ZeroNaN replaces every masked cell with 0, in every kernel of the chain.
func ZeroNaN(k *kernel.Kernel) {
	for cur := k; cur != nil; cur = cur.Next {
		for i, v := range cur.Values {
			if kernel.IsMasked(v) {
				cur.Values[i] = 0
			}
		}
		recomputeOne(cur)
	}
}

// Show writes a diagnostic dump of the chain: per kernel, its type, angle,
// extent, origin, value range, an output-range classification, and the
// grid itself (masked cells printed as "nan").
func Show(w io.Writer, k *kernel.Kernel) {
	idx := 0
	for cur := k; cur != nil; cur = cur.Next {
		fmt.Fprintf(w, "Kernel %d: %s angle=%g extent=%dx%d origin=(%d,%d) range=[%g,%g] output=%s\n",
			idx, cur.Type, cur.Angle, cur.Width, cur.Height, cur.X, cur.Y,
			cur.Minimum, cur.Maximum, outputClass(cur))
		for y := 0; y < cur.Height; y++ {
			for x := 0; x < cur.Width; x++ {
				v := cur.At(x, y)
				if kernel.IsMasked(v) {
					fmt.Fprintf(w, "%8s", "nan")
				} else {
					fmt.Fprintf(w, "%8.4f", v)
				}
			}
			fmt.Fprintln(w)
		}
		idx++
	}
}

func outputClass(k *kernel.Kernel) string {
	sum := k.PositiveRange + k.NegativeRange
	switch {
	case math.Abs(sum) < kernel.Epsilon && k.PositiveRange != 0:
		return "zero-sum"
	case math.Abs(sum-1) < kernel.Epsilon:
		return "normalized"
	default:
		return "arbitrary"
	}
}
