package build

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/morphology/pkg/morphology/kernel"
)

func TestParseArgsGeometry(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Args
	}{
		{"empty", "", Args{}},
		{"rho only", "3", Args{Rho: 3, Flags: FlagRho}},
		{"rho and sigma with x", "3x1.5", Args{Rho: 3, Sigma: 1.5, Flags: FlagRho | FlagSigma}},
		{"rho and sigma with comma", "3,1.5", Args{Rho: 3, Sigma: 1.5, Flags: FlagRho | FlagSigma}},
		{"percent modifier", "50%", Args{Rho: 50, Flags: FlagRho | FlagPercent}},
		{"aspect modifier", "3!", Args{Rho: 3, Flags: FlagRho | FlagAspect}},
		{"all four fields", "1,2,3,4", Args{Rho: 1, Sigma: 2, Xi: 3, Psi: 4, Flags: FlagRho | FlagSigma | FlagXi | FlagPsi}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgsRejectsGarbage(t *testing.T) {
	_, err := ParseArgs("not-a-number")
	assert.Error(t, err)
}

func TestBuildGaussianIsNormalized(t *testing.T) {
	k, err := Build(kernel.TypeGaussian, Args{Sigma: 1, Flags: FlagSigma})
	require.NoError(t, err)
	defer k.Destroy()

	sum := 0.0
	for _, v := range k.Values {
		require.False(t, kernel.IsMasked(v))
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Equal(t, k.Width/2, k.X)
	assert.Equal(t, k.Height/2, k.Y)
	assert.GreaterOrEqual(t, k.Width, 5, "an auto-sized unit-sigma Gaussian must be at least 5 wide")
	assert.Equal(t, 1, k.Width%2, "Gaussian side must be odd")
}

func TestBuildGaussianIsSymmetric(t *testing.T) {
	k, err := Build(kernel.TypeGaussian, Args{Sigma: 2, Flags: FlagSigma})
	require.NoError(t, err)
	defer k.Destroy()

	r := k.X
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			assert.InDelta(t, k.At(x+r, y+r), k.At(-x+r, -y+r), 1e-9)
		}
	}
}

func TestBuildDoGIsZeroSum(t *testing.T) {
	k, err := Build(kernel.TypeDoG, Args{Sigma: 1, Xi: 2, Flags: FlagSigma | FlagXi})
	require.NoError(t, err)
	defer k.Destroy()

	sum := 0.0
	for _, v := range k.Values {
		if !kernel.IsMasked(v) {
			sum += v
		}
	}
	assert.InDelta(t, 0.0, sum, 1e-6)
}

func TestBuildDiskMasksOutsideRadius(t *testing.T) {
	k, err := Build(kernel.TypeDisk, Args{Rho: 1, Flags: FlagRho})
	require.NoError(t, err)
	defer k.Destroy()

	assert.True(t, kernel.IsMasked(k.At(0, 0)), "disk corner must be masked outside the radius")
	assert.False(t, kernel.IsMasked(k.At(1, 1)), "disk centre must not be masked")
}

func TestBuildFlatShapeDiamond(t *testing.T) {
	k, err := Build(kernel.TypeDiamond, Args{Rho: 1, Flags: FlagRho})
	require.NoError(t, err)
	defer k.Destroy()

	assert.True(t, kernel.IsMasked(k.At(0, 0)), "diamond corner must be masked")
	assert.False(t, kernel.IsMasked(k.At(1, 0)), "diamond top edge must be a member")
	assert.False(t, kernel.IsMasked(k.At(1, 1)), "diamond centre must be a member")
}

func TestBuildRectangleValidatesOrigin(t *testing.T) {
	_, err := Build(kernel.TypeRectangle, Args{Rho: 3, Sigma: 3, Xi: 5, Flags: FlagRho | FlagSigma | FlagXi})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildRectangleDefaultOrigin(t *testing.T) {
	k, err := Build(kernel.TypeRectangle, Args{Rho: 4, Sigma: 2, Flags: FlagRho | FlagSigma})
	require.NoError(t, err)
	defer k.Destroy()
	assert.Equal(t, 4, k.Width)
	assert.Equal(t, 2, k.Height)
	assert.Equal(t, 2, k.X)
	assert.Equal(t, 1, k.Y)
}

func TestBuildUnknownTypeErrors(t *testing.T) {
	_, err := Build(kernel.Type(999), Args{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildSobelIsAntisymmetric(t *testing.T) {
	k, err := Build(kernel.TypeSobel, Args{})
	require.NoError(t, err)
	defer k.Destroy()
	assert.Equal(t, 3, k.Width)
	assert.Equal(t, 3, k.Height)
	sum := 0.0
	for _, v := range k.Values {
		sum += v
	}
	assert.InDelta(t, 0.0, sum, 1e-9)
}

func TestBuildLineEndsExpandsToEightTemplates(t *testing.T) {
	k, err := Build(kernel.TypeLineEnds, Args{})
	require.NoError(t, err)
	defer k.Destroy()
	assert.Equal(t, 8, k.Len(), "LineEnds is a two-pattern union, each pattern expanded to its 4 right-angle rotations")
}

func TestBuildSkeletonExpandsToFourTemplates(t *testing.T) {
	k, err := Build(kernel.TypeSkeleton, Args{})
	require.NoError(t, err)
	defer k.Destroy()
	assert.Equal(t, 4, k.Len())
	for cur := k; cur != nil; cur = cur.Next {
		assert.Equal(t, 1.0, cur.At(cur.X, cur.Y), "every skeleton rotation keeps the origin a foreground cell")
	}
}

func TestBuildManhattanDistanceValues(t *testing.T) {
	k, err := Build(kernel.TypeManhattan, Args{Rho: 1, Sigma: 1, Flags: FlagRho | FlagSigma})
	require.NoError(t, err)
	defer k.Destroy()
	assert.Equal(t, []float64{2, 1, 2, 1, 0, 1, 2, 1, 2}, k.Values)
}

func TestGaussianRadiusGrowsWithSigma(t *testing.T) {
	small := gaussianRadius(0, 0.5)
	large := gaussianRadius(0, 3)
	assert.Less(t, small, large)
}

func TestGaussianRadiusHonorsExplicitRho(t *testing.T) {
	assert.Equal(t, 5, gaussianRadius(5, 1))
	assert.Equal(t, 3, gaussianRadius(2.1, 1))
}

func TestBuildLoGCentreIsPositive(t *testing.T) {
	k, err := Build(kernel.TypeLoG, Args{Sigma: 1, Flags: FlagSigma})
	require.NoError(t, err)
	defer k.Destroy()
	assert.Greater(t, k.At(k.X, k.Y), 0.0)
	require.False(t, math.IsNaN(k.At(k.X, k.Y)))
}
