package method

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/morphology/internal/workerpool"
	"github.com/itohio/morphology/pkg/morphology/apply"
	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/build"
)

// memImage is an in-memory Image used only by this package's tests,
// clamping out-of-bounds reads to the nearest edge pixel the way
// pkg/vision/pixelview's gocv-backed view does.
type memImage struct {
	w, h int
	v    []float64
}

func newMemImage(w, h int, v []float64) *memImage {
	return &memImage{w: w, h: h, v: append([]float64(nil), v...)}
}

func memFactory(w, h int) (Image, error) {
	return newMemImage(w, h, make([]float64, w*h)), nil
}

func (m *memImage) Bounds() (int, int) { return m.w, m.h }

func (m *memImage) clamp(x, y int) (int, int) {
	if x < 0 {
		x = 0
	}
	if x >= m.w {
		x = m.w - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= m.h {
		y = m.h - 1
	}
	return x, y
}

func (m *memImage) At(x, y int) (apply.Pixel, error) {
	x, y = m.clamp(x, y)
	v := m.v[y*m.w+x]
	return apply.Pixel{R: v, G: v, B: v}, nil
}

func (m *memImage) Set(x, y int, p apply.Pixel) error {
	m.v[y*m.w+x] = p.R
	return nil
}

func (m *memImage) Sync() error { return nil }

func (m *memImage) Clone() (Image, error) {
	return newMemImage(m.w, m.h, m.v), nil
}

func unityKernel() *kernel.Kernel {
	k := kernel.New(1, 1, 0, 0, kernel.TypeUnity)
	k.Values[0] = 1
	return k
}

func squareKernel3x3() *kernel.Kernel {
	k := kernel.New(3, 3, 1, 1, kernel.TypeSquare)
	for i := range k.Values {
		k.Values[i] = 1
	}
	return k
}

func baseRequest(src Image, m Method, k *kernel.Kernel) Request {
	return Request{
		Source:     src,
		Method:     m,
		Mask:       apply.ChannelAll,
		Iterations: 1,
		Kernels:    k,
		NewImage:   memFactory,
		Pool:       workerpool.New(2),
	}
}

func TestRunZeroIterationsReturnsNil(t *testing.T) {
	src := newMemImage(3, 3, make([]float64, 9))
	k := unityKernel()
	defer k.Destroy()

	req := baseRequest(src, Erode, k)
	req.Iterations = 0
	out, err := Run(req)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestRunUnknownMethodErrors(t *testing.T) {
	src := newMemImage(1, 1, []float64{0})
	k := unityKernel()
	defer k.Destroy()

	req := baseRequest(src, Method(999), k)
	_, err := Run(req)
	assert.Error(t, err)
}

func TestRunOpenRemovesIsolatedPixel(t *testing.T) {
	v := make([]float64, 25)
	v[2*5+2] = apply.QuantumRange // isolated single lit pixel
	src := newMemImage(5, 5, v)

	k := squareKernel3x3()
	defer k.Destroy()

	req := baseRequest(src, Open, k)
	out, err := Run(req)
	require.NoError(t, err)

	mi := out.(*memImage)
	center, _ := mi.At(2, 2)
	assert.Equal(t, 0.0, center.R, "Open (erode then dilate) must remove a feature smaller than the structuring element")
}

func TestRunCloseFillsIsolatedHole(t *testing.T) {
	v := make([]float64, 25)
	for i := range v {
		v[i] = apply.QuantumRange
	}
	v[2*5+2] = 0 // isolated single dark hole
	src := newMemImage(5, 5, v)

	k := squareKernel3x3()
	defer k.Destroy()

	req := baseRequest(src, Close, k)
	out, err := Run(req)
	require.NoError(t, err)

	mi := out.(*memImage)
	center, _ := mi.At(2, 2)
	assert.Equal(t, apply.QuantumRange, center.R, "Close (dilate then erode) must fill a hole smaller than the structuring element")
}

func TestRunEdgeIsDifferenceOfDilateAndErode(t *testing.T) {
	v := make([]float64, 25)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			v[y*5+x] = apply.QuantumRange
		}
	}
	src := newMemImage(5, 5, v)
	k := squareKernel3x3()
	defer k.Destroy()

	req := baseRequest(src, Edge, k)
	out, err := Run(req)
	require.NoError(t, err)

	mi := out.(*memImage)
	center, _ := mi.At(2, 2)
	assert.Equal(t, 0.0, center.R, "Edge must report zero at a pixel whose full neighbourhood is interior to the blob")
	corner, _ := mi.At(1, 1)
	assert.Greater(t, corner.R, 0.0, "Edge must report a nonzero difference at the blob's boundary")
}

func TestRunOpenOfThinLineIsEmpty(t *testing.T) {
	v := make([]float64, 49)
	for x := 1; x <= 5; x++ {
		v[3*7+x] = apply.QuantumRange // 1-pixel-wide horizontal line
	}
	src := newMemImage(7, 7, v)
	k := squareKernel3x3()
	defer k.Destroy()

	out, err := Run(baseRequest(src, Open, k))
	require.NoError(t, err)

	mi := out.(*memImage)
	for i, p := range mi.v {
		assert.Equal(t, 0.0, p, "pixel %d: a line thinner than the structuring element must not survive opening", i)
	}
}

func TestRunEdgeOutIsDilationMinusOriginal(t *testing.T) {
	v := make([]float64, 25)
	v[2*5+2] = apply.QuantumRange
	src := newMemImage(5, 5, v)
	k := squareKernel3x3()
	defer k.Destroy()

	out, err := Run(baseRequest(src, EdgeOut, k))
	require.NoError(t, err)

	mi := out.(*memImage)
	center, _ := mi.At(2, 2)
	assert.Equal(t, 0.0, center.R, "the original pixel subtracts itself out")
	ring, _ := mi.At(1, 2)
	assert.Equal(t, apply.QuantumRange, ring.R, "a newly dilated pixel survives the difference")
}

func TestRunDistanceManhattanFixedPoint(t *testing.T) {
	v := []float64{0, apply.QuantumRange, apply.QuantumRange, apply.QuantumRange, apply.QuantumRange}
	src := newMemImage(5, 1, v)

	k, err := build.Build(kernel.TypeManhattan, build.Args{Rho: 1, Sigma: 1, Flags: build.FlagRho | build.FlagSigma})
	require.NoError(t, err)
	defer k.Destroy()

	req := baseRequest(src, Distance, k)
	req.Iterations = -1
	out, err := Run(req)
	require.NoError(t, err)

	mi := out.(*memImage)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, mi.v, "iterating to a fixed point yields the discrete L1 distance transform")
}

func TestRunHitAndMissLineEndsFindsCrossTips(t *testing.T) {
	// An 11x11 cross; the union over LineEnds' 8 rotated templates must
	// highlight exactly the four arm ends.
	v := make([]float64, 121)
	for i := 2; i <= 8; i++ {
		v[5*11+i] = apply.QuantumRange
		v[i*11+5] = apply.QuantumRange
	}
	src := newMemImage(11, 11, v)

	k, err := build.Build(kernel.TypeLineEnds, build.Args{})
	require.NoError(t, err)
	defer k.Destroy()

	out, err := Run(baseRequest(src, HitAndMiss, k))
	require.NoError(t, err)

	mi := out.(*memImage)
	tips := map[int]bool{5*11 + 2: true, 5*11 + 8: true, 2*11 + 5: true, 8*11 + 5: true}
	for i, p := range mi.v {
		if tips[i] {
			assert.Equal(t, apply.QuantumRange, p, "pixel %d is an arm end and must be highlighted", i)
		} else {
			assert.Equal(t, 0.0, p, "pixel %d is not an arm end", i)
		}
	}
}

func TestRunFixedPointStopsWhenStable(t *testing.T) {
	v := make([]float64, 25)
	for i := range v {
		v[i] = apply.QuantumRange
	}
	src := newMemImage(5, 5, v)
	k := squareKernel3x3()
	defer k.Destroy()

	req := baseRequest(src, Erode, k)
	req.Iterations = -1
	out, err := Run(req)
	require.NoError(t, err)
	mi := out.(*memImage)
	for _, p := range mi.v {
		assert.Equal(t, apply.QuantumRange, p, "eroding a uniformly-lit field never changes anything, so the fixed point is the original field")
	}
}

func TestComposeByName(t *testing.T) {
	c, ok := ComposeByName("lighten")
	assert.True(t, ok)
	assert.Equal(t, ComposeLighten, c)

	_, ok = ComposeByName("nonsense")
	assert.False(t, ok)
}
