package build

import (
	"fmt"
	"math"

	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

func angleOf(a Args) float64 {
	if a.Flags.Has(FlagRho) {
		return a.Rho
	}
	return 0
}

func rotatedLiteral3x3(t kernel.Type, values [9]float64, angle float64) *kernel.Kernel {
	k := newLiteral3x3(t, values)
	if angle == 0 {
		return k
	}
	r := xform.Rotate(k, angle)
	k.Destroy()
	return r
}

func buildLaplacian(a Args) (*kernel.Kernel, error) {
	n := 0
	if a.Flags.Has(FlagRho) {
		n = int(a.Rho)
	}
	var v [9]float64
	switch n {
	case 0:
		v = [9]float64{0, 1, 0, 1, -4, 1, 0, 1, 0}
	case 1:
		v = [9]float64{1, 1, 1, 1, -8, 1, 1, 1, 1}
	case 2:
		v = [9]float64{-1, 2, -1, 2, -4, 2, -1, 2, -1}
	case 3:
		v = [9]float64{2, -1, 2, -1, -4, -1, 2, -1, 2}
	default:
		return nil, fmt.Errorf("%w: Laplacian:%d is not a known variant", ErrInvalidArgument, n)
	}
	return finalize(newLiteral3x3(kernel.TypeLaplacian, v)), nil
}

func buildSobel(a Args) (*kernel.Kernel, error) {
	v := [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	return finalize(rotatedLiteral3x3(kernel.TypeSobel, v, angleOf(a))), nil
}

func buildPrewitt(a Args) (*kernel.Kernel, error) {
	v := [9]float64{-1, 0, 1, -1, 0, 1, -1, 0, 1}
	return finalize(rotatedLiteral3x3(kernel.TypePrewitt, v, angleOf(a))), nil
}

func buildCompass(a Args) (*kernel.Kernel, error) {
	v := [9]float64{1, 1, 1, 1, -2, 1, -1, -1, -1}
	return finalize(rotatedLiteral3x3(kernel.TypeCompass, v, angleOf(a))), nil
}

func buildKirsch(a Args) (*kernel.Kernel, error) {
	v := [9]float64{5, 5, 5, -3, 0, -3, -3, -3, -3}
	return finalize(rotatedLiteral3x3(kernel.TypeKirsch, v, angleOf(a))), nil
}

func buildFreiChen(a Args) (*kernel.Kernel, error) {
	n := 0
	if a.Flags.Has(FlagRho) {
		n = int(a.Rho)
	}
	s := math.Sqrt2
	var v [9]float64
	switch n {
	case 0: // edge basis
		v = [9]float64{1, s, 1, 0, 0, 0, -1, -s, -1}
	case 1: // orthogonal edge basis
		v = [9]float64{1, 0, -1, s, 0, -s, 1, 0, -1}
	case 2: // line basis
		v = [9]float64{0, -1, s, 1, 0, -1, -s, 1, 0}
	default:
		return nil, fmt.Errorf("%w: FreiChen:%d is not a known variant", ErrInvalidArgument, n)
	}
	return finalize(rotatedLiteral3x3(kernel.TypeFreiChen, v, angleOf(a))), nil
}

func buildRoberts(a Args) (*kernel.Kernel, error) {
	k := kernel.New(2, 2, 0, 0, kernel.TypeRoberts)
	copy(k.Values, []float64{1, 0, 0, -1})
	xform.RecomputeMetadata(k)
	angle := angleOf(a)
	if angle == 0 {
		return k, nil
	}
	r := xform.Rotate(k, angle)
	k.Destroy()
	return finalize(r), nil
}
