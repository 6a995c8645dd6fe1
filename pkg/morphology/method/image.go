// Package method implements the morphology method dispatcher: it
// decomposes a named compound method (open, close, smooth, edge,
// top-hat, …) into a stage/kernel/primitive-iteration loop nest,
// driving pkg/morphology/apply underneath.
package method

import "github.com/itohio/morphology/pkg/morphology/apply"

// Image is the dispatcher's notion of an owned, swappable image buffer:
// a writable pixel view (apply.Dest) that can also produce an
// independent copy of itself. pkg/vision/pixelview supplies the
// gocv-backed implementation; tests use an in-memory one.
type Image interface {
	apply.Dest
	Clone() (Image, error)
}

// Factory allocates a fresh, zero-valued Image of the given extent. The
// dispatcher uses it to materialise per-stage destination buffers instead
// of literally swapping two owned buffers; either way a primitive never
// reads the buffer it is writing.
type Factory func(width, height int) (Image, error)
