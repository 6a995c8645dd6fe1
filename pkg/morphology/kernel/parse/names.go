package parse

import (
	"strings"

	"github.com/itohio/morphology/pkg/morphology/kernel"
)

var typeNames = map[string]kernel.Type{
	"gaussian":      kernel.TypeGaussian,
	"dog":           kernel.TypeDoG,
	"log":           kernel.TypeLoG,
	"blur":          kernel.TypeBlur,
	"dob":           kernel.TypeDoB,
	"comet":         kernel.TypeComet,
	"laplacian":     kernel.TypeLaplacian,
	"sobel":         kernel.TypeSobel,
	"roberts":       kernel.TypeRoberts,
	"prewitt":       kernel.TypePrewitt,
	"compass":       kernel.TypeCompass,
	"kirsch":        kernel.TypeKirsch,
	"freichen":      kernel.TypeFreiChen,
	"diamond":       kernel.TypeDiamond,
	"square":        kernel.TypeSquare,
	"rectangle":     kernel.TypeRectangle,
	"disk":          kernel.TypeDisk,
	"plus":          kernel.TypePlus,
	"cross":         kernel.TypeCross,
	"ring":          kernel.TypeRing,
	"peaks":         kernel.TypePeaks,
	"edges":         kernel.TypeEdges,
	"corners":       kernel.TypeCorners,
	"ridges":        kernel.TypeRidges,
	"lineends":      kernel.TypeLineEnds,
	"linejunctions": kernel.TypeLineJunctions,
	"convexhull":    kernel.TypeConvexHull,
	"skeleton":      kernel.TypeSkeleton,
	"chebyshev":     kernel.TypeChebyshev,
	"manhattan":     kernel.TypeManhattan,
	"euclidean":     kernel.TypeEuclidean,
	"unity":         kernel.TypeUnity,
}

// lookupType resolves a case-insensitive kernel family name. The ":n"
// variant suffix used by Laplacian:n and FreiChen:n is handled by the
// caller (it is folded into the geometry's rho field), so name here is
// just the alphabetic family name.
func lookupType(name string) (kernel.Type, bool) {
	t, ok := typeNames[strings.ToLower(name)]
	return t, ok
}
