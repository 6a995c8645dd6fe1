package method

import (
	"fmt"

	"github.com/itohio/morphology/internal/workerpool"
	"github.com/itohio/morphology/pkg/morphology/apply"
	"github.com/itohio/morphology/pkg/morphology/diag"
	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

// Request is the dispatcher entry point's argument bundle: source image,
// channel mask, method, iteration count, kernel list, optional compose
// override and convolve bias.
type Request struct {
	Source     Image
	Method     Method
	Mask       apply.ChannelMask
	Iterations int
	Kernels    *kernel.Kernel
	Compose    *Compose // nil selects the method's own default
	Bias       apply.Pixel
	NewImage   Factory
	Pool       *workerpool.Pool
	Sink       diag.Sink
	Verbose    bool
}

// Run decomposes req.Method into its stage/kernel/primitive-iteration
// loop nest and returns the resulting image. iterations == 0 returns
// (nil, nil): an empty call produces no image and no diagnostic.
// iterations < 0 iterates to a fixed point bounded by max(width,height).
func Run(req Request) (Image, error) {
	if req.Iterations == 0 {
		return nil, nil
	}
	if req.Kernels == nil {
		return nil, fmt.Errorf("morphology: method: empty kernel list")
	}
	if req.NewImage == nil {
		return nil, fmt.Errorf("morphology: method: no image factory supplied")
	}
	if req.Pool == nil {
		req.Pool = workerpool.New(0)
	}

	// Edge's two halves both read the original image (dilate the original,
	// erode the original) rather than chaining erode onto the dilation's
	// output, so it cannot go through the generic stage-chaining loop below
	// or methodTable at all; run the two halves independently and diff them.
	if req.Method == Edge {
		dilateReq, erodeReq := req, req
		dilateReq.Method, erodeReq.Method = Dilate, Erode
		dilation, err := Run(dilateReq)
		if err != nil {
			return nil, fmt.Errorf("morphology: method: edge: dilation half: %w", err)
		}
		erosion, err := Run(erodeReq)
		if err != nil {
			return nil, fmt.Errorf("morphology: method: edge: erosion half: %w", err)
		}
		return blendImages(dilation, erosion, ComposeDifference, req.Mask, req.NewImage)
	}

	m, ok := methodTable[req.Method]
	if !ok {
		return nil, fmt.Errorf("morphology: method: unknown method %v", req.Method)
	}

	width, height := req.Source.Bounds()
	fixedBound := width
	if height > fixedBound {
		fixedBound = height
	}

	bound := req.Iterations
	if bound < 0 {
		bound = fixedBound
	}

	primitiveBound := bound
	methodLoopBound := 1
	if m.ForceSingleIteration {
		primitiveBound = 1
	}
	if m.IterateAtMethodLevel {
		methodLoopBound = bound
	}

	combine := m.Combine
	if req.Compose != nil {
		combine = *req.Compose
	}

	needsReflected := false
	for _, st := range m.Stages {
		needsReflected = needsReflected || st.Reflected
	}
	var reflected *kernel.Kernel
	if needsReflected {
		reflected = xform.Reflect(req.Kernels)
		defer reflected.Destroy()
	}

	current := req.Source
	original := req.Source

	for iter := 0; iter < methodLoopBound; iter++ {
		var (
			next    Image
			changed int
			err     error
		)
		if combine == ComposeChain || req.Kernels.Len() <= 1 {
			next, changed, err = runChain(req, m.Stages, req.Kernels, reflected, current, primitiveBound)
		} else {
			next, changed, err = runCombine(req, m.Stages, req.Kernels, reflected, current, primitiveBound, combine)
		}
		if err != nil {
			return nil, err
		}

		current = next
		if req.Verbose {
			diag.Report(req.Sink, diag.KindVerbose, diag.Info,
				fmt.Sprintf("method=%s iteration=%d changed=%d", req.Method, iter, changed))
		}
		if changed == 0 {
			break
		}
	}

	switch m.PostDiff {
	case postDiffNone:
		return current, nil
	case postDiffEdgeOut:
		return blendImages(current, original, ComposeDifference, req.Mask, req.NewImage)
	case postDiffEdgeIn:
		return blendImages(original, current, ComposeDifference, req.Mask, req.NewImage)
	case postDiffTopHat:
		return blendImages(original, current, ComposeDifference, req.Mask, req.NewImage)
	case postDiffBottomHat:
		return blendImages(current, original, ComposeDifference, req.Mask, req.NewImage)
	default:
		return current, nil
	}
}

// runChain walks the kernel list once, chaining every (kernel, stage)
// primitive application's output into the next's input — the "no-compose"
// default of the multi-kernel reduce.
func runChain(req Request, stages []stage, kernels, reflected *kernel.Kernel, src Image, primitiveBound int) (Image, int, error) {
	img := src
	total := 0
	cur, curR := kernels, reflected
	for ki := 0; cur != nil; ki++ {
		for si, st := range stages {
			k := cur
			if st.Reflected {
				k = curR
			}
			out, changed, err := runPrimitiveIterations(req, st.Prim, k, img, primitiveBound, si, ki)
			if err != nil {
				return nil, 0, err
			}
			img = out
			total += changed
		}
		cur = cur.Next
		if curR != nil {
			curR = curR.Next
		}
	}
	return img, total, nil
}

// runCombine runs each kernel's stage sequence independently from src and
// folds the per-kernel results with op (Lighten for HitAndMiss).
func runCombine(req Request, stages []stage, kernels, reflected *kernel.Kernel, src Image, primitiveBound int, op Compose) (Image, int, error) {
	var combined Image
	total := 0
	cur, curR := kernels, reflected
	for ki := 0; cur != nil; ki++ {
		img := src
		for si, st := range stages {
			k := cur
			if st.Reflected {
				k = curR
			}
			out, changed, err := runPrimitiveIterations(req, st.Prim, k, img, primitiveBound, si, ki)
			if err != nil {
				return nil, 0, err
			}
			img = out
			total += changed
		}
		if combined == nil {
			combined = img
		} else {
			blended, err := blendImages(combined, img, op, req.Mask, req.NewImage)
			if err != nil {
				return nil, 0, err
			}
			combined = blended
		}
		cur = cur.Next
		if curR != nil {
			curR = curR.Next
		}
	}
	return combined, total, nil
}

// runPrimitiveIterations is the primitive iteration loop (level 4): apply
// prim with k against src up to bound times, stopping early once an
// iteration changes zero pixels. stageIdx/kernelIdx only label the
// verbose trace.
func runPrimitiveIterations(req Request, prim apply.Primitive, k *kernel.Kernel, src Image, bound, stageIdx, kernelIdx int) (Image, int, error) {
	img := src
	total := 0
	for i := 0; i < bound; i++ {
		w, h := img.Bounds()
		dst, err := req.NewImage(w, h)
		if err != nil {
			return nil, 0, err
		}
		res, err := apply.Apply(req.Pool, nil, nil, req.Sink, prim, k, img, dst, req.Mask, req.Bias)
		if err != nil {
			return nil, 0, err
		}
		img = dst
		total += res.Changed
		if req.Verbose {
			diag.Report(req.Sink, diag.KindVerbose, diag.Info,
				fmt.Sprintf("primitive=%s stage=%d kernel=%d iteration=%d changed=%d",
					prim, stageIdx, kernelIdx, i+1, res.Changed))
		}
		if res.Changed == 0 {
			break
		}
	}
	return img, total, nil
}
