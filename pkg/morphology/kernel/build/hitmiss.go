package build

import (
	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

// Hit-and-miss literal templates, each expanded by rotation to cover the
// family's symmetry classes. Cell values follow the hit-and-miss
// convention: 1 means "foreground" (k > 0.7), 0 means "background"
// (k < 0.3), NaN means "don't care".
var nan = kernel.NaN()

func literalHitMiss(t kernel.Type, v [9]float64, expandDelta float64) *kernel.Kernel {
	k := newLiteral3x3(t, v)
	if expandDelta == 0 {
		xform.RecomputeMetadata(k)
		return k
	}
	expanded := xform.Expand(k, expandDelta)
	k.Destroy()
	xform.RecomputeMetadata(expanded)
	return expanded
}

func buildEdges(a Args) (*kernel.Kernel, error) {
	v := [9]float64{0, 0, 0, nan, 1, 1, 0, nan, 0}
	return literalHitMiss(kernel.TypeEdges, v, 90), nil
}

func buildCorners(a Args) (*kernel.Kernel, error) {
	v := [9]float64{0, 0, 0, 0, 1, 1, 0, 1, nan}
	return literalHitMiss(kernel.TypeCorners, v, 90), nil
}

func buildRidges(a Args) (*kernel.Kernel, error) {
	v := [9]float64{0, nan, 0, 0, 1, 0, 0, nan, 0}
	return literalHitMiss(kernel.TypeRidges, v, 90), nil
}

func buildLineEnds(a Args) (*kernel.Kernel, error) {
	orthogonal := [9]float64{0, 0, 0, 0, 1, 0, 0, 0, 0}
	orthogonal[5] = 1 // one orthogonal neighbour (east) set foreground
	diagonal := [9]float64{0, 0, 0, 0, 1, 0, 0, 0, 1} // one diagonal neighbour (SE)

	chainA := literalHitMiss(kernel.TypeLineEnds, orthogonal, 90)
	chainB := literalHitMiss(kernel.TypeLineEnds, diagonal, 90)
	chainA.Last().Next = chainB
	return chainA, nil
}

func buildLineJunctions(a Args) (*kernel.Kernel, error) {
	tJunction := [9]float64{0, 1, 0, 0, 1, 0, 1, 0, 1}
	yJunction := [9]float64{1, 0, 1, 0, 1, 0, 0, 1, 0}

	chainA := literalHitMiss(kernel.TypeLineJunctions, tJunction, 90)
	chainB := literalHitMiss(kernel.TypeLineJunctions, yJunction, 90)
	chainA.Last().Next = chainB
	return chainA, nil
}

func buildConvexHull(a Args) (*kernel.Kernel, error) {
	straightGap := [9]float64{1, 1, 0, 1, 0, 0, 0, 0, 0}
	diagonalGap := [9]float64{1, 1, 1, 1, 0, 0, 1, 0, 0}

	chainA := literalHitMiss(kernel.TypeConvexHull, straightGap, 90)
	chainB := literalHitMiss(kernel.TypeConvexHull, diagonalGap, 90)
	chainA.Last().Next = chainB
	return chainA, nil
}

// buildSkeleton builds the classic Golay-alphabet "L" thinning element:
//
//	0 0 0
//	. 1 .
//	1 1 1
//
// (. = don't care). Several skeletonising templates circulate in the
// literature; this one is what most implementations ship as the default
// thinning element. Expanded by 90 degrees to its 4 rotations.
func buildSkeleton(a Args) (*kernel.Kernel, error) {
	v := [9]float64{0, 0, 0, nan, 1, nan, 1, 1, 1}
	return literalHitMiss(kernel.TypeSkeleton, v, 90), nil
}
