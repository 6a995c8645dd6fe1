package pixelview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTo8Clamps(t *testing.T) {
	assert.Equal(t, uint8(0), to8(-100))
	assert.Equal(t, uint8(255), to8(apply1()))
}

// apply1 is the full quantum range value, used throughout this file
// instead of importing apply.QuantumRange a second time.
func apply1() float64 { return 65535.0 }

func TestNewRejectsUnsupportedChannelCount(t *testing.T) {
	mat := newTestMat(2, 2, 1)
	defer mat.Close()
	_, err := New(mat)
	require.Error(t, err)
}

func TestNewAcceptsBGRAndBGRA(t *testing.T) {
	for _, ch := range []int{3, 4} {
		mat := newTestMat(2, 2, ch)
		v, err := New(mat)
		require.NoError(t, err)
		w, h := v.Bounds()
		assert.Equal(t, 2, w)
		assert.Equal(t, 2, h)
		v.Close()
	}
}

func TestSetAtRoundTrip(t *testing.T) {
	v, err := NewBlank(3, 3)
	require.NoError(t, err)
	defer v.Close()

	p := apply1()
	err = v.Set(1, 1, pixelFrom(p))
	require.NoError(t, err)

	got, err := v.At(1, 1)
	require.NoError(t, err)
	assert.InDelta(t, p, got.R, scale)
}

func TestAtOutOfBoundsClampsToEdge(t *testing.T) {
	v, err := NewBlank(2, 2)
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.Set(1, 1, pixelFrom(apply1())))
	got, err := v.At(5, 5)
	require.NoError(t, err)
	assert.InDelta(t, apply1(), got.R, scale, "reads past the border must replicate the nearest edge pixel")

	got, err = v.At(-3, -3)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got.R, scale)
}

func TestCloneIsIndependent(t *testing.T) {
	v, err := NewBlank(2, 2)
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.Set(0, 0, pixelFrom(apply1())))
	clonedImg, err := v.Clone()
	require.NoError(t, err)
	cloned := clonedImg.(*View)
	defer cloned.Close()

	require.NoError(t, v.Set(0, 0, pixelFrom(0)))
	got, _ := cloned.At(0, 0)
	assert.InDelta(t, apply1(), got.R, scale, "Clone must not alias the source Mat")
}
