package build

import (
	"fmt"
	"math"

	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

func distanceMetric(t kernel.Type, dx, dy int) float64 {
	switch t {
	case kernel.TypeChebyshev:
		ax, ay := abs(dx), abs(dy)
		if ax > ay {
			return float64(ax)
		}
		return float64(ay)
	case kernel.TypeManhattan:
		return float64(abs(dx) + abs(dy))
	case kernel.TypeEuclidean:
		return math.Hypot(float64(dx), float64(dy))
	default:
		return 0
	}
}

// buildDistance builds a Chebyshev/Manhattan/Euclidean distance kernel:
// cell (u,v) = sigma * d(u,v), used exclusively by the Distance primitive.
func buildDistance(t kernel.Type, a Args) (*kernel.Kernel, error) {
	radius := 1
	if a.Flags.Has(FlagRho) {
		if a.Rho < 0 {
			return nil, fmt.Errorf("%w: %s radius must be non-negative", ErrInvalidArgument, t)
		}
		radius = int(a.Rho)
	}
	scale := 1.0
	if a.Flags.Has(FlagSigma) {
		scale = a.Sigma
	}

	side := 2*radius + 1
	k := kernel.New(side, side, radius, radius, t)
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			k.Set(x+radius, y+radius, scale*distanceMetric(t, x, y))
		}
	}
	xform.RecomputeMetadata(k)
	return k, nil
}
