package build

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

// oversample is the supersampling factor used when binning the 1-D curve
// for Blur/DoB/Comet, reducing aliasing.
const oversample = 3

// sample1DGaussian fills a 1xWidth kernel by supersampling the Gaussian
// curve at oversample x resolution and averaging each bin back down.
func sample1DGaussian(width, r int, sigma float64) []float64 {
	out := make([]float64, width)
	s2 := float32(2 * sigma * sigma)
	for i := 0; i < width; i++ {
		u := i - r
		var acc float32
		for s := 0; s < oversample; s++ {
			fx := float32(u) + (float32(s)+0.5)/float32(oversample) - 0.5
			acc += math32.Exp(-(fx * fx) / s2)
		}
		out[i] = float64(acc / float32(oversample))
	}
	return out
}

func buildBlur(a Args) (*kernel.Kernel, error) {
	sigma := a.Sigma
	if sigma <= 0 {
		sigma = 1
	}
	r := gaussianRadius(a.Rho, sigma)
	width := 2*r + 1
	k := kernel.New(width, 1, r, 0, kernel.TypeBlur)
	copy(k.Values, sample1DGaussian(width, r, sigma))
	xform.RecomputeMetadata(k)
	xform.Scale(k, 1, xform.ScaleNormalize, false)

	if a.Flags.Has(FlagXi) && a.Xi != 0 {
		return xform.Rotate(k, a.Xi), nil
	}
	return k, nil
}

func buildDoB(a Args) (*kernel.Kernel, error) {
	sigma1 := a.Sigma
	if sigma1 <= 0 {
		sigma1 = 1
	}
	sigma2 := a.Xi
	if sigma2 <= 0 {
		sigma2 = sigma1 * 2
	}
	r1 := gaussianRadius(a.Rho, sigma1)
	r2 := gaussianRadius(a.Rho, sigma2)
	r := r1
	if r2 > r {
		r = r2
	}
	width := 2*r + 1

	g1 := sample1DGaussian(width, r, sigma1)
	g2 := sample1DGaussian(width, r, sigma2)

	k := kernel.New(width, 1, r, 0, kernel.TypeDoB)
	for i := range k.Values {
		k.Values[i] = g1[i] - g2[i]
	}
	xform.RecomputeMetadata(k)
	xform.Scale(k, 1, xform.ScaleCorrelateNormalize, false)

	if a.Flags.Has(FlagPsi) && a.Psi != 0 {
		return xform.Rotate(k, a.Psi), nil
	}
	return k, nil
}

func buildComet(a Args) (*kernel.Kernel, error) {
	sigma := a.Sigma
	if sigma <= 0 {
		sigma = 1
	}
	r := gaussianRadius(a.Rho, sigma)
	if r == 0 {
		r = int(math.Ceil(3 * sigma))
	}
	width := r + 1
	full := sample1DGaussian(2*r+1, r, sigma)

	k := kernel.New(width, 1, 0, 0, kernel.TypeComet)
	copy(k.Values, full[r:])
	xform.RecomputeMetadata(k)
	xform.Scale(k, 1, xform.ScaleNormalize, false)

	if a.Flags.Has(FlagXi) && a.Xi != 0 {
		return xform.Rotate(k, a.Xi), nil
	}
	return k, nil
}
