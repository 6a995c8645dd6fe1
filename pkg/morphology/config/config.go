// Package config decodes the engine's option artifact — a string-keyed
// map of configuration knobs (convolve:scale, showkernel,
// morphology:compose, verbose, …) — into typed values the dispatcher and
// CLI consume. It binds github.com/spf13/viper to a plain
// map[string]string rather than re-deriving a bespoke key/value parser.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/itohio/morphology/pkg/morphology/kernel/build"
	"github.com/itohio/morphology/pkg/morphology/method"
)

// Options is the decoded form of the engine option map.
type Options struct {
	// ConvolveScale is the decoded "convolve:scale" geometry (rho = flat
	// post-multiply factor, sigma = amount of unity identity to blend in
	// before scaling), or nil if the knob was not set.
	ConvolveScale *build.Args
	// ShowKernel is true if any of showkernel, convolve:showkernel or
	// morphology:showkernel was set.
	ShowKernel bool
	// Compose overrides the method's default multi-kernel combiner, or
	// ComposeChain with ok=false if morphology:compose was not set.
	Compose   method.Compose
	ComposeOK bool
	// Verbose enables the dispatcher's per-stage trace lines.
	Verbose bool
}

// Decode reads the option map (artifact keys: "convolve:scale", "showkernel",
// "convolve:showkernel", "morphology:showkernel", "morphology:compose",
// "verbose") into an Options value. Unknown keys are ignored — the
// option map is a superset shared across the wider image-processing
// tool, only a handful of keys are this engine's concern.
func Decode(artifact map[string]string) (Options, error) {
	v := viper.New()
	for key, val := range artifact {
		v.Set(key, val)
	}

	var opts Options
	opts.Verbose = v.GetBool("verbose")
	opts.ShowKernel = v.GetBool("showkernel") || v.GetBool("convolve:showkernel") || v.GetBool("morphology:showkernel")

	if raw := strings.TrimSpace(v.GetString("convolve:scale")); raw != "" {
		args, err := build.ParseArgs(raw)
		if err != nil {
			return Options{}, err
		}
		opts.ConvolveScale = &args
	}

	if raw := strings.TrimSpace(v.GetString("morphology:compose")); raw != "" {
		c, ok := method.ComposeByName(raw)
		if !ok {
			return Options{}, errInvalidCompose(raw)
		}
		opts.Compose = c
		opts.ComposeOK = true
	}

	return opts, nil
}

type errInvalidCompose string

func (e errInvalidCompose) Error() string {
	return "morphology: config: unknown morphology:compose value " + string(e)
}
