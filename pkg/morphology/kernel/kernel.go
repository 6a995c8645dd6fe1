// Package kernel implements the in-memory representation of a single
// morphology kernel and the owned chain of alternative kernels a method
// may need to walk.
package kernel

import "math"

// Type tags the conceptual family a kernel was built from. It does not
// change the kernel's behaviour on its own — it only records provenance
// for diagnostics (ShowKernel) and lets Rotate pick the correct symmetry
// rule for the family.
type Type int

const (
	TypeUser Type = iota
	TypeGaussian
	TypeDoG
	TypeLoG
	TypeBlur
	TypeDoB
	TypeComet
	TypeLaplacian
	TypeSobel
	TypeRoberts
	TypePrewitt
	TypeCompass
	TypeKirsch
	TypeFreiChen
	TypeDiamond
	TypeSquare
	TypeRectangle
	TypeDisk
	TypePlus
	TypeCross
	TypeRing
	TypePeaks
	TypeEdges
	TypeCorners
	TypeRidges
	TypeLineEnds
	TypeLineJunctions
	TypeConvexHull
	TypeSkeleton
	TypeChebyshev
	TypeManhattan
	TypeEuclidean
	TypeUnity
)

func (t Type) String() string {
	switch t {
	case TypeUser:
		return "User"
	case TypeGaussian:
		return "Gaussian"
	case TypeDoG:
		return "DoG"
	case TypeLoG:
		return "LoG"
	case TypeBlur:
		return "Blur"
	case TypeDoB:
		return "DoB"
	case TypeComet:
		return "Comet"
	case TypeLaplacian:
		return "Laplacian"
	case TypeSobel:
		return "Sobel"
	case TypeRoberts:
		return "Roberts"
	case TypePrewitt:
		return "Prewitt"
	case TypeCompass:
		return "Compass"
	case TypeKirsch:
		return "Kirsch"
	case TypeFreiChen:
		return "FreiChen"
	case TypeDiamond:
		return "Diamond"
	case TypeSquare:
		return "Square"
	case TypeRectangle:
		return "Rectangle"
	case TypeDisk:
		return "Disk"
	case TypePlus:
		return "Plus"
	case TypeCross:
		return "Cross"
	case TypeRing:
		return "Ring"
	case TypePeaks:
		return "Peaks"
	case TypeEdges:
		return "Edges"
	case TypeCorners:
		return "Corners"
	case TypeRidges:
		return "Ridges"
	case TypeLineEnds:
		return "LineEnds"
	case TypeLineJunctions:
		return "LineJunctions"
	case TypeConvexHull:
		return "ConvexHull"
	case TypeSkeleton:
		return "Skeleton"
	case TypeChebyshev:
		return "Chebyshev"
	case TypeManhattan:
		return "Manhattan"
	case TypeEuclidean:
		return "Euclidean"
	case TypeUnity:
		return "Unity"
	default:
		return "Unknown"
	}
}

// NaN marks a kernel cell as "don't care" — excluded from sums, extrema
// and per-pixel accumulation. IsMasked is the only valid test for it.
func NaN() float64 { return math.NaN() }

// IsMasked reports whether v is the masked-cell sentinel.
func IsMasked(v float64) bool { return math.IsNaN(v) }

// Epsilon is the near-zero clamp threshold used by RecomputeMetadata.
const Epsilon = 1e-7

// Kernel is a rectangular grid of real-valued weights plus metadata. The
// chain (Next) is owned head-first: the head exclusively owns its tail.
type Kernel struct {
	Width, Height int
	X, Y          int // origin cell, 0 <= X < Width, 0 <= Y < Height
	Values        []float64

	Minimum, Maximum               float64
	PositiveRange, NegativeRange   float64
	Angle                          float64 // cumulative rotation, degrees, mod 360
	Type                           Type

	Next *Kernel
}

// New allocates a Width x Height kernel with origin (x, y) and all cells
// initialized to 0. Metadata is left at zero; callers must call
// RecomputeMetadata (or xform.RecomputeMetadata) once Values is populated.
func New(width, height, x, y int, t Type) *Kernel {
	return &Kernel{
		Width:  width,
		Height: height,
		X:      x,
		Y:      y,
		Values: make([]float64, width*height),
		Type:   t,
	}
}

// At returns the value at grid cell (x, y), row-major.
func (k *Kernel) At(x, y int) float64 {
	return k.Values[y*k.Width+x]
}

// Set writes the value at grid cell (x, y), row-major.
func (k *Kernel) Set(x, y int, v float64) {
	k.Values[y*k.Width+x] = v
}

// Last returns the last kernel in the chain starting at k (k itself if it
// has no successor).
func (k *Kernel) Last() *Kernel {
	cur := k
	for cur.Next != nil {
		cur = cur.Next
	}
	return cur
}

// Len returns the number of kernels in the chain starting at k.
func (k *Kernel) Len() int {
	n := 0
	for cur := k; cur != nil; cur = cur.Next {
		n++
	}
	return n
}

// Clone deep-copies the whole chain starting at k. The returned head owns
// an entirely independent tail (invariant 4: no aliasing of the chain).
func (k *Kernel) Clone() *Kernel {
	if k == nil {
		return nil
	}
	c := &Kernel{
		Width:         k.Width,
		Height:        k.Height,
		X:             k.X,
		Y:             k.Y,
		Values:        append([]float64(nil), k.Values...),
		Minimum:       k.Minimum,
		Maximum:       k.Maximum,
		PositiveRange: k.PositiveRange,
		NegativeRange: k.NegativeRange,
		Angle:         k.Angle,
		Type:          k.Type,
	}
	c.Next = k.Next.Clone()
	return c
}

// Destroy releases the whole chain starting at k. Go's garbage collector
// reclaims the memory on its own; Destroy exists to keep the chain's
// head-owns-tail model explicit and to make use-after-destroy bugs
// visible — it nils every Values slice and severs every Next link so a
// stray reference reads as an empty, disconnected kernel rather than
// silently continuing to work.
func (k *Kernel) Destroy() {
	for cur := k; cur != nil; {
		next := cur.Next
		cur.Values = nil
		cur.Next = nil
		cur = next
	}
}

// Append adds tail to the end of k's chain.
func (k *Kernel) Append(tail *Kernel) {
	k.Last().Next = tail
}
