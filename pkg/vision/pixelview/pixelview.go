// Package pixelview implements the gocv-backed pixel-view contract: a
// read-only source view and a writable destination view over an image's
// pixel storage, satisfying pkg/morphology/apply.Source/Dest and
// pkg/morphology/method.Image. The image container itself (decoding, the
// pixel cache, disk backing) lives elsewhere — this package only adapts
// a gocv.Mat already in memory to the engine's pixel contract.
package pixelview

import (
	"fmt"

	"github.com/itohio/morphology/pkg/morphology/apply"
	"github.com/itohio/morphology/pkg/morphology/method"
	"gocv.io/x/gocv"
)

// scale converts between gocv's 8-bit-per-channel Mat storage and the
// engine's 16-bit QuantumRange.
const scale = apply.QuantumRange / 255.0

// View wraps a gocv.Mat (BGR or BGRA, 8-bit) as a PixelView. It never
// mutates the Mat it was constructed from except through Set/Sync, and
// Clone always makes an independent copy, preserving the read-only
// source / writable destination split.
type View struct {
	mat      gocv.Mat
	channels int
}

// New wraps an existing Mat. The Mat must be 8-bit with 3 (BGR) or 4
// (BGRA) channels; the view takes ownership (Clone/Close manage its
// lifetime from here on).
func New(mat gocv.Mat) (*View, error) {
	ch := mat.Channels()
	if ch != 3 && ch != 4 {
		return nil, fmt.Errorf("morphology: pixelview: unsupported channel count %d (want 3 or 4)", ch)
	}
	return &View{mat: mat, channels: ch}, nil
}

// NewBlank allocates a zero-valued width x height BGRA view, used by the
// method dispatcher's Factory to materialise per-stage work buffers.
func NewBlank(width, height int) (*View, error) {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC4)
	return &View{mat: mat, channels: 4}, nil
}

// Bounds reports (width, height), per apply.Source.
func (v *View) Bounds() (int, int) {
	return v.mat.Cols(), v.mat.Rows()
}

// At reads one pixel, converting 8-bit BGR(A) into the engine's R/G/B +
// opacity convention (opacity = QuantumRange - alpha*scale; fully opaque
// 8-bit alpha 255 maps to opacity 0). Out-of-bounds coordinates clamp to
// the nearest edge pixel — the virtual-pixel policy the applier's
// neighbourhood fetch relies on at image borders.
func (v *View) At(x, y int) (apply.Pixel, error) {
	w, h := v.Bounds()
	if x < 0 {
		x = 0
	}
	if x >= w {
		x = w - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= h {
		y = h - 1
	}
	vec := v.mat.GetVecbAt(y, x)
	p := apply.Pixel{
		B: float64(vec[0]) * scale,
		G: float64(vec[1]) * scale,
		R: float64(vec[2]) * scale,
	}
	if v.channels == 4 {
		p.Opacity = apply.QuantumRange - float64(vec[3])*scale
	}
	return p, nil
}

// Set writes one pixel back into BGR(A), per apply.Dest.
func (v *View) Set(x, y int, p apply.Pixel) error {
	w, h := v.Bounds()
	if x < 0 || x >= w || y < 0 || y >= h {
		return fmt.Errorf("morphology: pixelview: (%d,%d) outside %dx%d", x, y, w, h)
	}
	v.mat.SetUCharAt3(y, x, 0, to8(p.B))
	v.mat.SetUCharAt3(y, x, 1, to8(p.G))
	v.mat.SetUCharAt3(y, x, 2, to8(p.R))
	if v.channels == 4 {
		v.mat.SetUCharAt3(y, x, 3, to8(apply.QuantumRange-p.Opacity))
	}
	return nil
}

// Sync is a no-op: gocv.Mat writes are immediately visible, there is no
// separate flush step. It exists to satisfy apply.Dest, mirroring a
// backing store that does need an explicit sync.
func (v *View) Sync() error { return nil }

// Clone returns an independent copy backed by a fresh Mat, satisfying
// method.Image. The dispatcher uses this instead of in-place mutation so
// a primitive never reads the buffer it writes to.
func (v *View) Clone() (method.Image, error) {
	return &View{mat: v.mat.Clone(), channels: v.channels}, nil
}

// Factory adapts NewBlank to method.Factory.
func Factory(width, height int) (method.Image, error) {
	return NewBlank(width, height)
}

func to8(v float64) uint8 {
	v /= scale
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Mat exposes the underlying Mat for I/O (imread/imwrite) that lives
// outside this package's and the engine's scope.
func (v *View) Mat() gocv.Mat { return v.mat }

// Close releases the underlying Mat's native memory.
func (v *View) Close() error { return v.mat.Close() }
