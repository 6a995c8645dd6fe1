package build

import (
	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

// buildUnity builds the 3x3 identity kernel: centre 1, all else 0.
func buildUnity(a Args) (*kernel.Kernel, error) {
	v := [9]float64{0, 0, 0, 0, 1, 0, 0, 0, 0}
	k := newLiteral3x3(kernel.TypeUnity, v)
	xform.RecomputeMetadata(k)
	return k, nil
}
