package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/morphology/internal/workerpool"
	"github.com/itohio/morphology/pkg/morphology/kernel"
)

// fakeImage is a minimal Source/Dest over an in-memory grayscale grid,
// clamping out-of-bounds reads to the nearest edge pixel.
type fakeImage struct {
	w, h int
	v    []float64
}

func newFakeImage(w, h int, v []float64) *fakeImage {
	return &fakeImage{w: w, h: h, v: append([]float64(nil), v...)}
}

func (f *fakeImage) Bounds() (int, int) { return f.w, f.h }

func (f *fakeImage) clampCoord(x, y int) (int, int) {
	if x < 0 {
		x = 0
	}
	if x >= f.w {
		x = f.w - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= f.h {
		y = f.h - 1
	}
	return x, y
}

func (f *fakeImage) At(x, y int) (Pixel, error) {
	x, y = f.clampCoord(x, y)
	v := f.v[y*f.w+x]
	return Pixel{R: v, G: v, B: v}, nil
}

func (f *fakeImage) Set(x, y int, p Pixel) error {
	f.v[y*f.w+x] = p.R
	return nil
}

func (f *fakeImage) Sync() error { return nil }

func binaryKernel3x3(values [9]float64) *kernel.Kernel {
	k := kernel.New(3, 3, 1, 1, kernel.TypeUser)
	copy(k.Values, values[:])
	return k
}

func TestApplyErodeShrinksBinaryBlob(t *testing.T) {
	// A 3x3 blob of 1s in a 5x5 field of 0s.
	src := make([]float64, 25)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			src[y*5+x] = QuantumRange
		}
	}
	img := newFakeImage(5, 5, src)
	dst := newFakeImage(5, 5, make([]float64, 25))

	k := binaryKernel3x3([9]float64{1, 1, 1, 1, 1, 1, 1, 1, 1})
	defer k.Destroy()

	res, err := Apply(workerpool.New(2), nil, nil, nil, Erode, k, img, dst, ChannelAll, Pixel{})
	require.NoError(t, err)
	assert.False(t, res.Failed)

	center, _ := dst.At(2, 2)
	assert.Equal(t, QuantumRange, center.R, "the only fully-surrounded pixel must survive erosion")
	corner, _ := dst.At(1, 1)
	assert.Equal(t, 0.0, corner.R, "a blob pixel touching the background must not survive erosion")
}

func TestApplyDilateGrowsBinaryBlob(t *testing.T) {
	src := make([]float64, 25)
	src[2*5+2] = QuantumRange // single lit pixel at centre
	img := newFakeImage(5, 5, src)
	dst := newFakeImage(5, 5, make([]float64, 25))

	k := binaryKernel3x3([9]float64{1, 1, 1, 1, 1, 1, 1, 1, 1})
	defer k.Destroy()

	res, err := Apply(workerpool.New(2), nil, nil, nil, Dilate, k, img, dst, ChannelAll, Pixel{})
	require.NoError(t, err)
	assert.Greater(t, res.Changed, 0)

	neighbor, _ := dst.At(1, 2)
	assert.Equal(t, QuantumRange, neighbor.R, "dilation must light up a neighbour of the seed pixel")
}

func TestApplyConvolveIdentityIsNoOp(t *testing.T) {
	src := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90}
	img := newFakeImage(3, 3, src)
	dst := newFakeImage(3, 3, make([]float64, 9))

	k := binaryKernel3x3([9]float64{0, 0, 0, 0, 1, 0, 0, 0, 0})
	defer k.Destroy()

	res, err := Apply(workerpool.New(1), nil, nil, nil, Convolve, k, img, dst, ChannelAll, Pixel{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Changed)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want, _ := img.At(x, y)
			got, _ := dst.At(x, y)
			assert.Equal(t, want.R, got.R)
		}
	}
}

func TestApplyConvolveZeroSumGradient(t *testing.T) {
	// A single half-bright column in a 5x1 row, convolved with the
	// horizontal gradient [-1, 0, 1]: the response appears one pixel to
	// the left of the column, the negative lobe clamps to zero.
	v := QuantumRange / 2
	img := newFakeImage(5, 1, []float64{0, 0, v, 0, 0})
	dst := newFakeImage(5, 1, make([]float64, 5))

	k := kernel.New(3, 1, 1, 0, kernel.TypeUser)
	copy(k.Values, []float64{-1, 0, 1})
	defer k.Destroy()

	_, err := Apply(workerpool.New(1), nil, nil, nil, Convolve, k, img, dst, ChannelAll, Pixel{})
	require.NoError(t, err)

	want := []float64{0, v, 0, 0, 0}
	for x, w := range want {
		got, _ := dst.At(x, 0)
		assert.InDelta(t, w, got.R, 1e-9, "x=%d", x)
	}
}

func TestApplyDistancePropagatesOneStep(t *testing.T) {
	// One Jacobi pass of the Manhattan distance kernel advances the
	// wavefront a single pixel from the zero seed.
	img := newFakeImage(3, 1, []float64{0, QuantumRange, QuantumRange})
	dst := newFakeImage(3, 1, make([]float64, 3))

	k := kernel.New(3, 3, 1, 1, kernel.TypeManhattan)
	copy(k.Values, []float64{2, 1, 2, 1, 0, 1, 2, 1, 2})
	defer k.Destroy()

	res, err := Apply(workerpool.New(1), nil, nil, nil, Distance, k, img, dst, ChannelAll, Pixel{})
	require.NoError(t, err)
	assert.Greater(t, res.Changed, 0)

	got, _ := dst.At(1, 0)
	assert.Equal(t, 1.0, got.R)
	got, _ = dst.At(2, 0)
	assert.Equal(t, QuantumRange, got.R, "a pixel two steps from the seed is unreachable in one pass")
}

func TestApplyHitMissDetectsTemplate(t *testing.T) {
	// Foreground east line-end template: hit cells {centre, east}, all
	// other cells miss. Only the west end of the 2-pixel run matches.
	v := make([]float64, 25)
	v[2*5+2] = QuantumRange
	v[2*5+3] = QuantumRange
	img := newFakeImage(5, 5, v)
	dst := newFakeImage(5, 5, make([]float64, 25))

	k := binaryKernel3x3([9]float64{0, 0, 0, 0, 1, 1, 0, 0, 0})
	defer k.Destroy()

	_, err := Apply(workerpool.New(1), nil, nil, nil, HitMiss, k, img, dst, ChannelAll, Pixel{})
	require.NoError(t, err)

	hit, _ := dst.At(2, 2)
	assert.Equal(t, QuantumRange, hit.R, "the template anchor pixel must light up")
	miss, _ := dst.At(3, 2)
	assert.Equal(t, 0.0, miss.R, "the east pixel has a foreground west neighbour in a miss cell")
}

func TestApplyThinSubtractsPatternMatches(t *testing.T) {
	v := make([]float64, 25)
	v[2*5+2] = QuantumRange
	v[2*5+3] = QuantumRange
	img := newFakeImage(5, 5, v)
	dst := newFakeImage(5, 5, make([]float64, 25))

	k := binaryKernel3x3([9]float64{0, 0, 0, 0, 1, 1, 0, 0, 0})
	defer k.Destroy()

	_, err := Apply(workerpool.New(1), nil, nil, nil, Thin, k, img, dst, ChannelAll, Pixel{})
	require.NoError(t, err)

	thinned, _ := dst.At(2, 2)
	assert.Equal(t, 0.0, thinned.R, "a matched pattern pixel is removed")
	kept, _ := dst.At(3, 2)
	assert.Equal(t, QuantumRange, kept.R, "an unmatched pixel keeps its source value")
}

func TestApplyChannelMaskRestrictsWrites(t *testing.T) {
	img := newFakeImage(1, 1, []float64{100})
	dst := newFakeImage(1, 1, []float64{50})

	k := kernel.New(1, 1, 0, 0, kernel.TypeUnity)
	k.Values[0] = 1
	defer k.Destroy()

	res, err := Apply(workerpool.New(1), nil, nil, nil, Convolve, k, img, dst, ChannelMask(0), Pixel{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Changed, "an empty channel mask must report zero changed pixels")
	got, _ := dst.At(0, 0)
	assert.Equal(t, 100.0, got.R, "with no channel selected, the destination still receives the untouched source pixel")
}

func TestApplySizeMismatchErrors(t *testing.T) {
	img := newFakeImage(3, 3, make([]float64, 9))
	dst := newFakeImage(2, 2, make([]float64, 4))
	k := binaryKernel3x3([9]float64{0, 0, 0, 0, 1, 0, 0, 0, 0})
	defer k.Destroy()

	_, err := Apply(workerpool.New(1), nil, nil, nil, Convolve, k, img, dst, ChannelAll, Pixel{})
	assert.Error(t, err)
}
