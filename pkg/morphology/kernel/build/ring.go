package build

import (
	"fmt"

	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

func buildRingOrPeaks(t kernel.Type, a Args) (*kernel.Kernel, error) {
	outer := 2.0
	if a.Flags.Has(FlagRho) {
		outer = a.Rho
	}
	inner := outer - 1
	if a.Flags.Has(FlagSigma) {
		inner = a.Sigma
	}
	if outer < 0 || inner < 0 || inner > outer {
		return nil, fmt.Errorf("%w: %s requires 0 <= inner <= outer radius", ErrInvalidArgument, t)
	}

	r := int(outer)
	side := 2*r + 1
	k := kernel.New(side, side, r, r, t)
	for i := range k.Values {
		k.Values[i] = kernel.NaN()
	}
	in2, out2 := inner*inner, outer*outer
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			d2 := float64(x*x + y*y)
			if d2 >= in2 && d2 <= out2 {
				k.Set(x+r, y+r, 1)
			}
		}
	}
	if t == kernel.TypePeaks {
		k.Set(r, r, 1)
	}
	xform.RecomputeMetadata(k)
	return k, nil
}

func buildRing(a Args) (*kernel.Kernel, error)  { return buildRingOrPeaks(kernel.TypeRing, a) }
func buildPeaks(a Args) (*kernel.Kernel, error) { return buildRingOrPeaks(kernel.TypePeaks, a) }
