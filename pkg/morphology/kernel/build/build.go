package build

import (
	"errors"
	"fmt"

	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

// ErrInvalidArgument is wrapped by builders that reject an out-of-range or
// otherwise nonsensical geometry argument (e.g. a negative Rectangle
// origin).
var ErrInvalidArgument = errors.New("morphology: invalid kernel builder argument")

// Build constructs a kernel (or kernel chain, for the two-pattern families)
// of the given type from the decoded geometry arguments. On error the
// partially built kernel is destroyed and nil is returned alongside the
// error.
func Build(t kernel.Type, a Args) (k *kernel.Kernel, err error) {
	defer func() {
		if err != nil && k != nil {
			k.Destroy()
			k = nil
		}
	}()

	switch t {
	case kernel.TypeGaussian:
		k, err = buildGaussian(a)
	case kernel.TypeDoG:
		k, err = buildDoG(a)
	case kernel.TypeLoG:
		k, err = buildLoG(a)
	case kernel.TypeBlur:
		k, err = buildBlur(a)
	case kernel.TypeDoB:
		k, err = buildDoB(a)
	case kernel.TypeComet:
		k, err = buildComet(a)
	case kernel.TypeLaplacian:
		k, err = buildLaplacian(a)
	case kernel.TypeSobel:
		k, err = buildSobel(a)
	case kernel.TypeRoberts:
		k, err = buildRoberts(a)
	case kernel.TypePrewitt:
		k, err = buildPrewitt(a)
	case kernel.TypeCompass:
		k, err = buildCompass(a)
	case kernel.TypeKirsch:
		k, err = buildKirsch(a)
	case kernel.TypeFreiChen:
		k, err = buildFreiChen(a)
	case kernel.TypeDiamond:
		k, err = buildFlatShape(kernel.TypeDiamond, a)
	case kernel.TypeSquare:
		k, err = buildFlatShape(kernel.TypeSquare, a)
	case kernel.TypeRectangle:
		k, err = buildRectangle(a)
	case kernel.TypeDisk:
		k, err = buildDisk(a)
	case kernel.TypePlus:
		k, err = buildFlatShape(kernel.TypePlus, a)
	case kernel.TypeCross:
		k, err = buildFlatShape(kernel.TypeCross, a)
	case kernel.TypeRing:
		k, err = buildRing(a)
	case kernel.TypePeaks:
		k, err = buildPeaks(a)
	case kernel.TypeEdges:
		k, err = buildEdges(a)
	case kernel.TypeCorners:
		k, err = buildCorners(a)
	case kernel.TypeRidges:
		k, err = buildRidges(a)
	case kernel.TypeLineEnds:
		k, err = buildLineEnds(a)
	case kernel.TypeLineJunctions:
		k, err = buildLineJunctions(a)
	case kernel.TypeConvexHull:
		k, err = buildConvexHull(a)
	case kernel.TypeSkeleton:
		k, err = buildSkeleton(a)
	case kernel.TypeChebyshev:
		k, err = buildDistance(kernel.TypeChebyshev, a)
	case kernel.TypeManhattan:
		k, err = buildDistance(kernel.TypeManhattan, a)
	case kernel.TypeEuclidean:
		k, err = buildDistance(kernel.TypeEuclidean, a)
	case kernel.TypeUnity:
		k, err = buildUnity(a)
	default:
		err = fmt.Errorf("%w: unknown kernel type %v", ErrInvalidArgument, t)
	}
	return k, err
}

// newLiteral3x3 builds a 3x3 kernel (origin at centre) from a row-major
// literal.
func newLiteral3x3(t kernel.Type, values [9]float64) *kernel.Kernel {
	k := kernel.New(3, 3, 1, 1, t)
	copy(k.Values, values[:])
	xform.RecomputeMetadata(k)
	return k
}

func finalize(k *kernel.Kernel) *kernel.Kernel {
	xform.RecomputeMetadata(k)
	return k
}
