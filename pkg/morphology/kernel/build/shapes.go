package build

import (
	"fmt"

	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

// shapeMembership reports whether the offset (dx, dy) from the origin is
// inside the given flat-shape family at the given integer radius.
func shapeMembership(t kernel.Type, dx, dy, radius int) bool {
	switch t {
	case kernel.TypeSquare:
		return true
	case kernel.TypeDiamond:
		return abs(dx)+abs(dy) <= radius
	case kernel.TypePlus:
		return dx == 0 || dy == 0
	case kernel.TypeCross:
		return abs(dx) == abs(dy)
	default:
		return true
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func buildFlatShape(t kernel.Type, a Args) (*kernel.Kernel, error) {
	radius := 1
	if a.Flags.Has(FlagRho) {
		if a.Rho < 0 {
			return nil, fmt.Errorf("%w: %s radius must be non-negative", ErrInvalidArgument, t)
		}
		radius = int(a.Rho)
	}
	value := 1.0
	if a.Flags.Has(FlagSigma) {
		value = a.Sigma
	}
	side := 2*radius + 1
	k := kernel.New(side, side, radius, radius, t)
	for i := range k.Values {
		k.Values[i] = kernel.NaN()
	}
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if shapeMembership(t, x, y, radius) {
				k.Set(x+radius, y+radius, value)
			}
		}
	}
	xform.RecomputeMetadata(k)
	return k, nil
}

func buildDisk(a Args) (*kernel.Kernel, error) {
	radius := 1.0
	if a.Flags.Has(FlagRho) {
		if a.Rho < 0 {
			return nil, fmt.Errorf("%w: Disk radius must be non-negative", ErrInvalidArgument)
		}
		radius = a.Rho
	}
	value := 1.0
	if a.Flags.Has(FlagSigma) {
		value = a.Sigma
	}
	ir := int(radius)
	side := 2*ir + 1
	k := kernel.New(side, side, ir, ir, kernel.TypeDisk)
	for i := range k.Values {
		k.Values[i] = kernel.NaN()
	}
	r2 := radius * radius
	for y := -ir; y <= ir; y++ {
		for x := -ir; x <= ir; x++ {
			if float64(x*x+y*y) <= r2 {
				k.Set(x+ir, y+ir, value)
			}
		}
	}
	xform.RecomputeMetadata(k)
	return k, nil
}

func buildRectangle(a Args) (*kernel.Kernel, error) {
	width, height := 3, 3
	if a.Flags.Has(FlagRho) {
		width = int(a.Rho)
	}
	if a.Flags.Has(FlagSigma) {
		height = int(a.Sigma)
	} else {
		height = width
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: Rectangle must have positive width and height", ErrInvalidArgument)
	}

	ox, oy := width/2, height/2
	if a.Flags.Has(FlagXi) {
		ox = int(a.Xi)
	}
	if a.Flags.Has(FlagPsi) {
		oy = int(a.Psi)
	}
	if ox < 0 || ox >= width || oy < 0 || oy >= height {
		return nil, fmt.Errorf("%w: Rectangle origin (%d,%d) outside %dx%d grid", ErrInvalidArgument, ox, oy, width, height)
	}

	k := kernel.New(width, height, ox, oy, kernel.TypeRectangle)
	for i := range k.Values {
		k.Values[i] = 1
	}
	xform.RecomputeMetadata(k)
	return k, nil
}
