package apply

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/itohio/morphology/internal/workerpool"
	"github.com/itohio/morphology/pkg/morphology/diag"
	"github.com/itohio/morphology/pkg/morphology/kernel"
)

// Result is what Apply returns: how many destination pixels ended up
// differing from their source value, or a failure observed mid-row.
type Result struct {
	Changed int
	Failed  bool
}

// Apply runs one primitive with one kernel over every pixel of src,
// writing to dst, using pool for row-parallel scheduling. bias is added
// to Convolve's R/G/B/K accumulators before the kernel loop; it is
// ignored by every other primitive. A pixel-view acquisition failure on
// any row sets status (if non-nil) and that row's remaining pixels are
// left at whatever Dest already holds; Apply still waits for every row
// to finish before returning.
func Apply(pool *workerpool.Pool, status *workerpool.Status, prog *workerpool.Progress, sink diag.Sink, prim Primitive, k *kernel.Kernel, src Source, dst Dest, mask ChannelMask, bias Pixel) (Result, error) {
	width, height := src.Bounds()
	dw, dh := dst.Bounds()
	if dw != width || dh != height {
		return Result{}, fmt.Errorf("morphology: apply: source %dx%d and dest %dx%d size mismatch", width, height, dw, dh)
	}

	if status == nil {
		status = &workerpool.Status{}
	}

	dilateLike := isDilateLike(prim)
	ox, oy := effectiveOrigin(k, dilateLike)
	order := cellOrder(k, dilateLike)
	cmask := buildCellMask(prim, k.Values)

	var changed atomic.Int32
	var errMu sync.Mutex
	var rowErr error
	fail := func(y int, err error) {
		status.Fail()
		wrapped := fmt.Errorf("morphology: apply: row %d: %w", y, err)
		errMu.Lock()
		if rowErr == nil {
			rowErr = wrapped
		}
		errMu.Unlock()
		diag.Report(sink, diag.KindApply, diag.Error, wrapped.Error())
	}

	pool.Rows(height, status, func(startRow, endRow int) {
		for y := startRow; y < endRow; y++ {
			if status.Failed() {
				return
			}
			rowChanged := 0
			for x := 0; x < width; x++ {
				seed, err := src.At(x, y)
				if err != nil {
					fail(y, err)
					return
				}

				out, matched, err := accumulate(prim, k, order, cmask, ox, oy, x, y, seed, bias, src)
				if err != nil {
					fail(y, err)
					return
				}

				var final Pixel
				if prim == ErodeIntensity || prim == DilateIntensity {
					if matched {
						final = out
					} else {
						final = seed
					}
				} else {
					final = mix(out, seed, mask)
				}

				if differs(final, seed, mask) {
					rowChanged++
				}
				if err := dst.Set(x, y, final); err != nil {
					fail(y, err)
					return
				}
			}
			changed.Add(int32(rowChanged))
			if prog != nil {
				prog.Add(endRow - startRow)
			}
		}
	})

	if status.Failed() {
		return Result{Failed: true}, rowErr
	}
	if err := dst.Sync(); err != nil {
		return Result{Failed: true}, fmt.Errorf("morphology: apply: sync: %w", err)
	}
	return Result{Changed: int(changed.Load())}, nil
}

// effectiveOrigin returns the kernel origin for erode-like primitives
// directly, or its 180-degree reflection for dilate-like ones (the same
// shift as kernel/xform.Reflect's origin mapping).
func effectiveOrigin(k *kernel.Kernel, dilateLike bool) (ox, oy int) {
	if dilateLike {
		return k.Width - 1 - k.X, k.Height - 1 - k.Y
	}
	return k.X, k.Y
}

// cellOrder returns the kernel-cell indices in forward order (erode-like)
// or reversed order (dilate-like); together with the effective-origin
// shift this makes the two traversal conventions mirror each other.
func cellOrder(k *kernel.Kernel, reversed bool) []int {
	n := len(k.Values)
	order := make([]int, n)
	for i := range order {
		if reversed {
			order[i] = n - 1 - i
		} else {
			order[i] = i
		}
	}
	return order
}

// accumulate runs the single-pixel accumulation rule for prim at (x,y).
// The returned bool is only consulted for ErodeIntensity and
// DilateIntensity: it reports whether any kernel cell selected a
// neighbour, and Apply keeps the seed pixel when none did. For every
// other primitive Apply ignores it and mixes the result in through the
// channel mask.
func accumulate(prim Primitive, k *kernel.Kernel, order []int, cmask cellMask, ox, oy, x, y int, seed, bias Pixel, src Source) (Pixel, bool, error) {
	switch prim {
	case Convolve:
		return accumulateConvolve(k, order, ox, oy, x, y, bias, src)
	case Erode:
		out, err := accumulateMinMax(k, order, cmask, ox, oy, x, y, src, true)
		return out, true, err
	case Dilate:
		out, err := accumulateMinMax(k, order, cmask, ox, oy, x, y, src, false)
		return out, true, err
	case HitMiss:
		min, max, err := accumulateHitMiss(k, order, cmask, ox, oy, x, y, src)
		if err != nil {
			return Pixel{}, false, err
		}
		return postMixHitMiss(min, max), true, nil
	case Thin:
		min, max, err := accumulateHitMiss(k, order, cmask, ox, oy, x, y, src)
		if err != nil {
			return Pixel{}, false, err
		}
		// Subtract the pattern match: an unmatched pattern leaves the
		// pixel untouched.
		return subtract(seed, postMixHitMiss(min, max)), true, nil
	case Thicken:
		min, max, err := accumulateHitMiss(k, order, cmask, ox, oy, x, y, src)
		if err != nil {
			return Pixel{}, false, err
		}
		return channelMax(seed, postMixHitMiss(min, max)), true, nil
	case ErodeIntensity:
		return accumulateIntensity(k, order, cmask, ox, oy, x, y, seed, src, true)
	case DilateIntensity:
		return accumulateIntensity(k, order, cmask, ox, oy, x, y, seed, src, false)
	case Distance:
		out, err := accumulateDistance(k, order, ox, oy, x, y, seed, src)
		return out, true, err
	default:
		return Pixel{}, false, fmt.Errorf("morphology: apply: unknown primitive %v", prim)
	}
}

func accumulateConvolve(k *kernel.Kernel, order []int, ox, oy, x, y int, bias Pixel, src Source) (Pixel, bool, error) {
	r, g, b, kk := bias.R, bias.G, bias.B, bias.K
	var gamma, alphaAcc, weightSum float64
	hasK := false

	for _, i := range order {
		kv := k.Values[i]
		if kernel.IsMasked(kv) {
			continue
		}
		u, v := i%k.Width, i/k.Width
		p, err := src.At(x-ox+u, y-oy+v)
		if err != nil {
			return Pixel{}, false, err
		}
		hasK = hasK || p.HasK

		a := p.alpha()
		w := kv * a
		gamma += w
		r += w * p.R
		g += w * p.G
		b += w * p.B
		kk += w * p.K

		// Opacity accumulates with the kernel weight alone; the alpha
		// factor here is the conversion into "more opaque is larger".
		alphaAcc += kv * a
		weightSum += kv
	}

	if math.Abs(gamma) < kernel.Epsilon {
		gamma = 1
	}
	if math.Abs(weightSum) < kernel.Epsilon {
		weightSum = 1
	}

	out := Pixel{
		R:    clamp(r / gamma),
		G:    clamp(g / gamma),
		B:    clamp(b / gamma),
		K:    clamp(kk / gamma),
		HasK: hasK,
	}
	out.Opacity = clamp(QuantumRange - QuantumRange*alphaAcc/weightSum)
	return out, false, nil
}

// accumulateMinMax implements Erode (erode=true, threshold k>=0.5, channel
// min) and Dilate (erode=false, channel max).
func accumulateMinMax(k *kernel.Kernel, order []int, cmask cellMask, ox, oy, x, y int, src Source, erode bool) (Pixel, error) {
	min := Pixel{R: math.Inf(1), G: math.Inf(1), B: math.Inf(1), Opacity: math.Inf(1), K: math.Inf(1)}
	max := Pixel{R: math.Inf(-1), G: math.Inf(-1), B: math.Inf(-1), Opacity: math.Inf(-1), K: math.Inf(-1)}
	hasK := false
	touched := false

	for _, i := range order {
		if !cmask.keeps(i) {
			continue
		}
		u, v := i%k.Width, i/k.Width
		p, err := src.At(x-ox+u, y-oy+v)
		if err != nil {
			return Pixel{}, err
		}
		hasK = hasK || p.HasK
		touched = true
		min = channelMin(min, p)
		max = channelMax(max, p)
	}

	if !touched {
		return Pixel{}, nil
	}
	if erode {
		min.HasK = hasK
		return min, nil
	}
	max.HasK = hasK
	return max, nil
}

func accumulateHitMiss(k *kernel.Kernel, order []int, cmask cellMask, ox, oy, x, y int, src Source) (Pixel, Pixel, error) {
	min := Pixel{R: math.Inf(1), G: math.Inf(1), B: math.Inf(1), Opacity: math.Inf(1), K: math.Inf(1)}
	max := Pixel{R: math.Inf(-1), G: math.Inf(-1), B: math.Inf(-1), Opacity: math.Inf(-1), K: math.Inf(-1)}
	hasK := false

	for _, i := range order {
		if !cmask.hits(i) && !cmask.misses(i) {
			continue
		}
		u, v := i%k.Width, i/k.Width
		p, err := src.At(x-ox+u, y-oy+v)
		if err != nil {
			return Pixel{}, Pixel{}, err
		}
		hasK = hasK || p.HasK
		if cmask.hits(i) {
			min = channelMin(min, p)
		}
		if cmask.misses(i) {
			max = channelMax(max, p)
		}
	}
	min.HasK, max.HasK = hasK, hasK
	return min, max, nil
}

// postMixHitMiss implements result = max(0, min - max), per channel. A
// template with no hit cells never matches; one with no miss cells
// compares its foreground minimum against a zero background.
func postMixHitMiss(min, max Pixel) Pixel {
	sub := func(a, b float64) float64 {
		if math.IsInf(a, 1) {
			return 0
		}
		if math.IsInf(b, -1) {
			b = 0
		}
		v := a - b
		if v < 0 {
			return 0
		}
		return v
	}
	return Pixel{
		R:       clamp(sub(min.R, max.R)),
		G:       clamp(sub(min.G, max.G)),
		B:       clamp(sub(min.B, max.B)),
		Opacity: clamp(sub(min.Opacity, max.Opacity)),
		K:       clamp(sub(min.K, max.K)),
		HasK:    min.HasK,
	}
}

func accumulateIntensity(k *kernel.Kernel, order []int, cmask cellMask, ox, oy, x, y int, seed Pixel, src Source, erode bool) (Pixel, bool, error) {
	out := seed
	flagSet := false

	for _, i := range order {
		if !cmask.keeps(i) {
			continue
		}
		u, v := i%k.Width, i/k.Width
		p, err := src.At(x-ox+u, y-oy+v)
		if err != nil {
			return Pixel{}, false, err
		}
		better := !flagSet
		if erode {
			better = better || p.luma() < out.luma()
		} else {
			better = better || p.luma() > out.luma()
		}
		if better {
			out = p
			flagSet = true
		}
	}
	return out, flagSet, nil
}

func accumulateDistance(k *kernel.Kernel, order []int, ox, oy, x, y int, seed Pixel, src Source) (Pixel, error) {
	result := seed
	for _, i := range order {
		kv := k.Values[i]
		if kernel.IsMasked(kv) {
			continue
		}
		u, v := i%k.Width, i/k.Width
		p, err := src.At(x-ox+u, y-oy+v)
		if err != nil {
			return Pixel{}, err
		}
		result = channelMin(result, addScalar(p, kv))
	}
	return result, nil
}

func channelMin(a, b Pixel) Pixel {
	return Pixel{
		R:       math.Min(a.R, b.R),
		G:       math.Min(a.G, b.G),
		B:       math.Min(a.B, b.B),
		Opacity: math.Min(a.Opacity, b.Opacity),
		K:       math.Min(a.K, b.K),
		HasK:    a.HasK || b.HasK,
	}
}

func channelMax(a, b Pixel) Pixel {
	return Pixel{
		R:       math.Max(a.R, b.R),
		G:       math.Max(a.G, b.G),
		B:       math.Max(a.B, b.B),
		Opacity: math.Max(a.Opacity, b.Opacity),
		K:       math.Max(a.K, b.K),
		HasK:    a.HasK || b.HasK,
	}
}

func addScalar(p Pixel, s float64) Pixel {
	return Pixel{R: p.R + s, G: p.G + s, B: p.B + s, Opacity: p.Opacity + s, K: p.K + s, HasK: p.HasK}
}

func subtract(a, b Pixel) Pixel {
	return Pixel{
		R:       clamp(a.R - b.R),
		G:       clamp(a.G - b.G),
		B:       clamp(a.B - b.B),
		Opacity: clamp(a.Opacity - b.Opacity),
		K:       clamp(a.K - b.K),
		HasK:    a.HasK,
	}
}
