package build

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

// gaussianClipError is the fraction of the peak value below which a
// Gaussian kernel's auto-sized tail is considered negligible.
const gaussianClipError = 0.002

// gaussianRadius picks the kernel radius. If rho >= 1 it is used directly
// (ceil'd); otherwise the smallest radius whose edge value falls below
// gaussianClipError of the peak is chosen automatically.
func gaussianRadius(rho, sigma float64) int {
	if rho >= 1 {
		return int(math.Ceil(rho))
	}
	if sigma <= 0 {
		return 0
	}
	for r := 1; r < 1024; r++ {
		edge := math32.Exp(-float32(r*r) / (2 * float32(sigma*sigma)))
		if float64(edge) < gaussianClipError {
			return r
		}
	}
	return 1023
}

// sampleGaussian2D fills a (2r+1)x(2r+1) grid with samples of
// exp(-(u^2+v^2)/(2 sigma^2)) / (2 pi sigma^2), using math32 for the
// per-cell exponential.
func sampleGaussian2D(k *kernel.Kernel, sigma float64) {
	r := k.Width / 2
	norm := float32(1.0 / (2 * math.Pi * sigma * sigma))
	s2 := float32(2 * sigma * sigma)
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			var v float32
			if sigma <= 0 {
				if x == 0 && y == 0 {
					v = 1
				}
			} else {
				v = norm * math32.Exp(-(float32(x*x)+float32(y*y))/s2)
			}
			k.Set(x+r, y+r, float64(v))
		}
	}
}

func buildGaussian(a Args) (*kernel.Kernel, error) {
	sigma := a.Sigma
	if !a.Flags.Has(FlagSigma) || sigma <= 0 {
		if sigma < 0 {
			return nil, fmt.Errorf("%w: Gaussian sigma must be non-negative", ErrInvalidArgument)
		}
		if !a.Flags.Has(FlagSigma) {
			sigma = 1
		}
	}
	r := gaussianRadius(a.Rho, sigma)
	side := 2*r + 1
	k := kernel.New(side, side, r, r, kernel.TypeGaussian)
	sampleGaussian2D(k, sigma)
	xform.RecomputeMetadata(k)
	xform.Scale(k, 1, xform.ScaleNormalize, false)
	return k, nil
}

func buildDoG(a Args) (*kernel.Kernel, error) {
	sigma1 := a.Sigma
	if sigma1 <= 0 {
		sigma1 = 1
	}
	sigma2 := a.Xi
	if sigma2 <= 0 {
		sigma2 = sigma1 * 2
	}

	g1, err := buildGaussian(Args{Rho: a.Rho, Sigma: sigma1, Flags: FlagSigma})
	if err != nil {
		return nil, err
	}
	g2, err := buildGaussian(Args{Rho: a.Rho, Sigma: sigma2, Flags: FlagSigma})
	if err != nil {
		g1.Destroy()
		return nil, err
	}
	defer g2.Destroy()

	k := unionPad(g1, g2, kernel.TypeDoG)
	xform.RecomputeMetadata(k)
	xform.Scale(k, 1, xform.ScaleCorrelateNormalize, false)
	return k, nil
}

func buildLoG(a Args) (*kernel.Kernel, error) {
	sigma := a.Sigma
	if sigma <= 0 {
		sigma = 1
	}
	r := gaussianRadius(a.Rho, sigma)
	if r == 0 {
		r = int(math.Ceil(3 * sigma))
	}
	side := 2*r + 1
	k := kernel.New(side, side, r, r, kernel.TypeLoG)

	s2 := sigma * sigma
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			r2 := float64(x*x + y*y)
			v := (1 - r2/(2*s2)) * math.Exp(-r2/(2*s2)) / (math.Pi * s2 * s2)
			k.Set(x+r, y+r, v)
		}
	}
	xform.RecomputeMetadata(k)
	xform.Scale(k, 1, xform.ScaleCorrelateNormalize, false)
	return k, nil
}

// unionPad combines two (possibly differently sized) square kernels into
// one grid sized to the larger of the two, aligning both on their
// origins, and subtracts b from a cell-wise (used by DoG).
func unionPad(a, b *kernel.Kernel, t kernel.Type) *kernel.Kernel {
	side := a.Width
	if b.Width > side {
		side = b.Width
	}
	origin := side / 2
	k := kernel.New(side, side, origin, origin, t)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			k.Set(x, y, sampleAt(a, x-origin, y-origin)-sampleAt(b, x-origin, y-origin))
		}
	}
	return k
}

// sampleAt returns the value of k at offset (u,v) from its origin, or 0 if
// outside the grid.
func sampleAt(k *kernel.Kernel, u, v int) float64 {
	x, y := k.X+u, k.Y+v
	if x < 0 || x >= k.Width || y < 0 || y >= k.Height {
		return 0
	}
	return k.At(x, y)
}
