package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/morphology/pkg/morphology/method"
)

func TestDecodeDefaults(t *testing.T) {
	opts, err := Decode(nil)
	require.NoError(t, err)
	assert.Nil(t, opts.ConvolveScale)
	assert.False(t, opts.ShowKernel)
	assert.False(t, opts.ComposeOK)
	assert.False(t, opts.Verbose)
}

func TestDecodeConvolveScale(t *testing.T) {
	opts, err := Decode(map[string]string{"convolve:scale": "1.5x2"})
	require.NoError(t, err)
	require.NotNil(t, opts.ConvolveScale)
	assert.Equal(t, 1.5, opts.ConvolveScale.Rho)
	assert.Equal(t, 2.0, opts.ConvolveScale.Sigma)
}

func TestDecodeShowKernelAnyAlias(t *testing.T) {
	for _, key := range []string{"showkernel", "convolve:showkernel", "morphology:showkernel"} {
		opts, err := Decode(map[string]string{key: "true"})
		require.NoError(t, err)
		assert.True(t, opts.ShowKernel, "key %q must enable ShowKernel", key)
	}
}

func TestDecodeComposeOverride(t *testing.T) {
	opts, err := Decode(map[string]string{"morphology:compose": "lighten"})
	require.NoError(t, err)
	require.True(t, opts.ComposeOK)
	assert.Equal(t, method.ComposeLighten, opts.Compose)
}

func TestDecodeInvalidComposeErrors(t *testing.T) {
	_, err := Decode(map[string]string{"morphology:compose": "nonsense"})
	assert.Error(t, err)
}

func TestDecodeVerbose(t *testing.T) {
	opts, err := Decode(map[string]string{"verbose": "1"})
	require.NoError(t, err)
	assert.True(t, opts.Verbose)
}
