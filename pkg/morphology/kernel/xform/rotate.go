package xform

import (
	"math"

	"github.com/itohio/morphology/pkg/logger"
	"github.com/itohio/morphology/pkg/morphology/kernel"
)

// Reflect rotates k 180 degrees: it reverses Values and maps the origin
// (x,y) -> (width-1-x, height-1-y). Reflect(Reflect(k)) == k bitwise.
// Descends the whole chain, returning a new chain (the receiver chain is
// left untouched).
func Reflect(k *kernel.Kernel) *kernel.Kernel {
	if k == nil {
		return nil
	}
	r := k.Clone()
	for cur := r; cur != nil; cur = cur.Next {
		reflectOne(cur)
	}
	return r
}

func reflectOne(k *kernel.Kernel) {
	n := len(k.Values)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		k.Values[i], k.Values[j] = k.Values[j], k.Values[i]
	}
	k.X = k.Width - 1 - k.X
	k.Y = k.Height - 1 - k.Y
}

// isRadiallySymmetric reports whether a kernel's family never needs a
// Rotate no-op check — these are always invariant under any rotation.
func isRadiallySymmetric(t kernel.Type) bool {
	switch t {
	case kernel.TypeGaussian, kernel.TypeDoG, kernel.TypeDisk, kernel.TypePeaks,
		kernel.TypeLaplacian, kernel.TypeChebyshev, kernel.TypeManhattan, kernel.TypeEuclidean:
		return true
	}
	return false
}

// isFlatSquareSymmetric reports whether a kernel's family is invariant
// under 90-degree rotation (square symmetry).
func isFlatSquareSymmetric(t kernel.Type) bool {
	switch t {
	case kernel.TypeSquare, kernel.TypeDiamond, kernel.TypePlus, kernel.TypeCross:
		return true
	}
	return false
}

// isLinearKind reports whether a kernel's family is a 1-D-derived, linear
// shape (Blur/DoB/Comet) whose rotation is symmetric about 180 degrees.
func isLinearKind(t kernel.Type) bool {
	switch t {
	case kernel.TypeBlur, kernel.TypeDoB, kernel.TypeComet:
		return true
	}
	return false
}

// Rotate brings theta into [0, 360) and rotates every kernel in the chain
// by it, honouring each family's symmetry (radially symmetric and flat
// square-symmetric kinds never change shape). It returns a new chain; the
// input chain is left untouched. An unsupported 45-degree step (on a
// non-3x3 kernel) is logged and skipped: it is neither applied to the
// grid nor added to Angle, so a pure 45-degree request returns the
// kernel unchanged.
func Rotate(k *kernel.Kernel, theta float64) *kernel.Kernel {
	if k == nil {
		return nil
	}
	theta = math.Mod(theta, 360)
	if theta < 0 {
		theta += 360
	}
	r := k.Clone()
	for cur := r; cur != nil; cur = cur.Next {
		rotateOne(cur, theta)
	}
	return r
}

func rotateOne(k *kernel.Kernel, theta float64) {
	if theta > 337.5 || theta <= 22.5 {
		return
	}
	if isRadiallySymmetric(k.Type) || isFlatSquareSymmetric(k.Type) {
		k.Angle = math.Mod(k.Angle+theta, 360)
		return
	}
	if isLinearKind(k.Type) {
		if theta > 135 && theta <= 225 {
			k.Angle = math.Mod(k.Angle+theta, 360)
			return
		}
		if theta > 225 && theta <= 315 {
			theta -= 180
		}
	}
	k.Angle = math.Mod(k.Angle+theta, 360)

	// Decompose theta into 180 + 90 + 45 steps, applying each in turn.
	// 270 reduces to reflect + 90-rotate, 315 to reflect + 90 + 45.
	rem := theta
	if rem > 225 {
		reflectOne(k)
		rem -= 180
	}
	if rem > 135 && rem <= 225 {
		reflectOne(k)
		rem -= 180
	}
	if rem > 45 && rem <= 135 {
		if k.Width == k.Height {
			rotate90Square(k)
		} else {
			transpose(k)
		}
		rem -= 90
	}
	if rem > 22.5 && rem <= 67.5 {
		if k.Width != 3 || k.Height != 3 {
			logger.Log.Warn().Str("op", "rotate45").Int("width", k.Width).Int("height", k.Height).
				Msg("unsupported 45-degree rotation on non-3x3 kernel; step skipped")
			k.Angle = math.Mod(k.Angle-rem+360, 360)
			return
		}
		rotatePerimeter3x3(k)
	}
}

// rotatePerimeter3x3 rotates the 8 perimeter cells of a 3x3 kernel one
// step clockwise, leaving the centre untouched.
func rotatePerimeter3x3(k *kernel.Kernel) {
	idx := [8]int{0, 1, 2, 5, 8, 7, 6, 3}
	var tmp [8]float64
	for i, p := range idx {
		tmp[i] = k.Values[p]
	}
	for i, p := range idx {
		k.Values[p] = tmp[(i+7)%8]
	}
}

// transpose swaps width/height for a rectangular (typically 1-D-derived)
// kernel, rotating it 90 degrees.
func transpose(k *kernel.Kernel) {
	out := make([]float64, len(k.Values))
	for y := 0; y < k.Height; y++ {
		for x := 0; x < k.Width; x++ {
			// New grid has swapped extents; (x,y) maps to (y, width-1-x).
			nx, ny := y, k.Width-1-x
			out[ny*k.Height+nx] = k.At(x, y)
		}
	}
	k.Values = out
	nx, ny := k.Y, k.Width-1-k.X
	k.Width, k.Height = k.Height, k.Width
	k.X, k.Y = nx, ny
}

// rotate90Square rotates a square kernel 90 degrees clockwise by cycling
// concentric rings.
func rotate90Square(k *kernel.Kernel) {
	n := k.Width
	out := make([]float64, len(k.Values))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			nx, ny := n-1-y, x
			out[ny*n+nx] = k.At(x, y)
		}
	}
	k.Values = out
	nx, ny := k.Y, n-1-k.X
	k.X, k.Y = nx, ny
}

// Expand replicates the kernel by repeatedly cloning the last link and
// rotating the clone by delta degrees, stopping when a rotated clone
// equals the head (bitwise, respecting NaN-as-mask). Returns a new chain.
func Expand(k *kernel.Kernel, delta float64) *kernel.Kernel {
	if k == nil {
		return nil
	}
	head := k.Clone()
	last := head
	for {
		candidate := Rotate(last, delta)
		if equalGrid(head, candidate) {
			candidate.Destroy()
			break
		}
		last.Append(candidate)
		last = candidate
		if head.Len() > 360 {
			// Safety valve against a symmetry rule that never converges;
			// this should not happen for any builder in this package.
			break
		}
	}
	return head
}

// equalGrid reports whether two single kernels (ignoring Next) have
// identical Width/Height/X/Y and Values, treating masked cells as equal to
// each other regardless of payload.
func equalGrid(a, b *kernel.Kernel) bool {
	if a.Width != b.Width || a.Height != b.Height || a.X != b.X || a.Y != b.Y {
		return false
	}
	for i := range a.Values {
		av, bv := a.Values[i], b.Values[i]
		if kernel.IsMasked(av) && kernel.IsMasked(bv) {
			continue
		}
		if av != bv {
			return false
		}
	}
	return true
}
