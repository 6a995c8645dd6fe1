package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/itohio/morphology/internal/workerpool"
	"github.com/itohio/morphology/pkg/logger"
	"github.com/itohio/morphology/pkg/morphology/apply"
	"github.com/itohio/morphology/pkg/morphology/diag"
	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/build"
	"github.com/itohio/morphology/pkg/morphology/kernel/parse"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
	"github.com/itohio/morphology/pkg/morphology/method"
	"github.com/itohio/morphology/pkg/vision/pixelview"
)

func newApplyCmd() *cobra.Command {
	var (
		methodName string
		kernelSpec string
		iterations int
		channels   string
		output     string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "apply <input> <output>",
		Short: "Apply one morphology method to an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			if output != "" {
				out = output
			}

			m, err := methodByName(methodName)
			if err != nil {
				return err
			}
			kernels, err := parse.Parse(kernelSpec)
			if err != nil {
				return fmt.Errorf("morphctl: kernel %q: %w", kernelSpec, err)
			}
			defer kernels.Destroy()

			if activeCfg.ConvolveScale != nil && (m == method.Convolve || m == method.Correlate) {
				applyConvolveScale(kernels, *activeCfg.ConvolveScale)
			}

			mask, err := parseChannelMask(channels)
			if err != nil {
				return err
			}

			mat := gocv.IMRead(in, gocv.IMReadUnchanged)
			if mat.Empty() {
				return fmt.Errorf("morphctl: could not read %s", in)
			}
			src, err := pixelview.New(mat)
			if err != nil {
				return err
			}
			defer src.Close()

			var compose *method.Compose
			if activeCfg.ComposeOK {
				compose = &activeCfg.Compose
			}

			sink := diag.Collector{}
			if activeCfg.ShowKernel {
				var buf bytes.Buffer
				xform.Show(&buf, kernels)
				sink.Report(diag.Entry{Kind: diag.KindShowKernel, Severity: diag.Info, Message: buf.String()})
			}

			result, err := method.Run(method.Request{
				Source:     src,
				Method:     m,
				Mask:       mask,
				Iterations: iterations,
				Kernels:    kernels,
				Compose:    compose,
				NewImage:   pixelview.Factory,
				Pool:       workerpool.New(workers),
				Sink:       &sink,
				Verbose:    activeCfg.Verbose,
			})
			if err != nil {
				return err
			}
			if result == nil {
				logger.Log.Info().Msg("morphctl: zero iterations requested, input unchanged")
				result, err = src.Clone()
				if err != nil {
					return err
				}
			}

			view, ok := result.(*pixelview.View)
			if !ok {
				return fmt.Errorf("morphctl: unexpected result image type %T", result)
			}
			defer view.Close()
			if ok := gocv.IMWrite(out, view.Mat()); !ok {
				return fmt.Errorf("morphctl: could not write %s", out)
			}
			for _, e := range sink.Entries() {
				logger.Log.Debug().Str("kind", string(e.Kind)).Msg(e.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&methodName, "method", "m", "convolve", "morphology method (erode, dilate, open, close, smooth, edge, ...)")
	cmd.Flags().StringVarP(&kernelSpec, "kernel", "k", "square:1", "kernel list literal")
	cmd.Flags().IntVarP(&iterations, "iterations", "i", 1, "primitive iteration count (0=no-op, <0=fixed point)")
	cmd.Flags().StringVarP(&channels, "channels", "c", "RGB", "channel mask: any of R,G,B,A,K or 'all'")
	cmd.Flags().StringVar(&output, "output", "", "output path override")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "row-parallel worker count (0=number of CPUs)")

	return cmd
}

// applyConvolveScale applies the decoded convolve:scale geometry to the
// whole kernel chain: sigma blends in that much unity identity first, rho
// then multiplies every cell (honouring %). The ^ and ! modifiers select
// normalize resp. correlate-normalize instead of a flat multiply.
func applyConvolveScale(k *kernel.Kernel, a build.Args) {
	if a.Flags.Has(build.FlagSigma) {
		xform.UnityAdd(k, a.Sigma)
	}
	flag := xform.ScaleNone
	if a.Flags.Has(build.FlagExpand90) {
		flag = xform.ScaleNormalize
	}
	if a.Flags.Has(build.FlagAspect) {
		flag = xform.ScaleCorrelateNormalize
	}
	factor := 1.0
	if a.Flags.Has(build.FlagRho) {
		factor = a.Rho
	}
	xform.Scale(k, factor, flag, a.Flags.Has(build.FlagPercent))
}

func parseChannelMask(s string) (apply.ChannelMask, error) {
	if s == "" || s == "all" || s == "All" {
		return apply.ChannelAll, nil
	}
	var mask apply.ChannelMask
	for _, c := range s {
		switch c {
		case 'R', 'r':
			mask |= apply.ChannelR
		case 'G', 'g':
			mask |= apply.ChannelG
		case 'B', 'b':
			mask |= apply.ChannelB
		case 'A', 'a', 'O', 'o':
			mask |= apply.ChannelOpacity
		case 'K', 'k':
			mask |= apply.ChannelK
		default:
			return 0, fmt.Errorf("morphctl: unknown channel %q in %q", string(c), s)
		}
	}
	return mask, nil
}
