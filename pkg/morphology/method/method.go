package method

import "github.com/itohio/morphology/pkg/morphology/apply"

// Method names a compound method the dispatcher knows how to decompose.
type Method int

const (
	Erode Method = iota
	Dilate
	Convolve
	Distance
	Thin
	Thicken
	HitMiss
	Correlate
	Open
	TopHat
	Close
	BottomHat
	OpenIntensity
	CloseIntensity
	Smooth
	Edge
	EdgeOut
	EdgeIn
	HitAndMiss
)

func (m Method) String() string {
	switch m {
	case Erode:
		return "Erode"
	case Dilate:
		return "Dilate"
	case Convolve:
		return "Convolve"
	case Distance:
		return "Distance"
	case Thin:
		return "Thin"
	case Thicken:
		return "Thicken"
	case HitMiss:
		return "HitMiss"
	case Correlate:
		return "Correlate"
	case Open:
		return "Open"
	case TopHat:
		return "TopHat"
	case Close:
		return "Close"
	case BottomHat:
		return "BottomHat"
	case OpenIntensity:
		return "OpenIntensity"
	case CloseIntensity:
		return "CloseIntensity"
	case Smooth:
		return "Smooth"
	case Edge:
		return "Edge"
	case EdgeOut:
		return "EdgeOut"
	case EdgeIn:
		return "EdgeIn"
	case HitAndMiss:
		return "HitAndMiss"
	default:
		return "Unknown"
	}
}

// stage is one (primitive, kernel-side) pair of the method's decomposition.
type stage struct {
	Prim      apply.Primitive
	Reflected bool
}

// postDiff names the post-method difference against the saved original
// used by the Edge family and hat methods.
type postDiff int

const (
	postDiffNone postDiff = iota
	postDiffEdgeOut          // dilate - original
	postDiffEdgeIn           // original - erode
	postDiffTopHat           // original - open
	postDiffBottomHat        // close - original
)

// spec is one method's decomposition: stage list, whether the per-kernel
// iteration cap is forced to 1 (with the method loop iterating instead),
// the multi-kernel combine mode, and the post-method difference to apply
// once the stage/kernel loops settle.
type spec struct {
	Stages               []stage
	ForceSingleIteration bool
	IterateAtMethodLevel bool
	Combine              Compose
	PostDiff             postDiff
}

var methodTable = map[Method]spec{
	Erode:     {Stages: []stage{{apply.Erode, false}}},
	Dilate:    {Stages: []stage{{apply.Dilate, false}}},
	Convolve:  {Stages: []stage{{apply.Convolve, false}}},
	Distance:  {Stages: []stage{{apply.Distance, false}}},
	HitMiss:   {Stages: []stage{{apply.HitMiss, false}}},
	Correlate: {Stages: []stage{{apply.Convolve, true}}},

	Thin:    {Stages: []stage{{apply.Thin, false}}, ForceSingleIteration: true, IterateAtMethodLevel: true},
	Thicken: {Stages: []stage{{apply.Thicken, false}}, ForceSingleIteration: true, IterateAtMethodLevel: true},

	HitAndMiss: {
		Stages:               []stage{{apply.HitMiss, false}},
		ForceSingleIteration: true,
		IterateAtMethodLevel: true,
		Combine:              ComposeLighten,
	},

	Open:   {Stages: []stage{{apply.Erode, false}, {apply.Dilate, false}}},
	TopHat: {Stages: []stage{{apply.Erode, false}, {apply.Dilate, false}}, PostDiff: postDiffTopHat},

	Close:     {Stages: []stage{{apply.Dilate, true}, {apply.Erode, true}}},
	BottomHat: {Stages: []stage{{apply.Dilate, true}, {apply.Erode, true}}, PostDiff: postDiffBottomHat},

	OpenIntensity:  {Stages: []stage{{apply.ErodeIntensity, false}, {apply.DilateIntensity, false}}},
	CloseIntensity: {Stages: []stage{{apply.DilateIntensity, true}, {apply.ErodeIntensity, true}}},

	Smooth: {Stages: []stage{
		{apply.Erode, false}, {apply.Dilate, false},
		{apply.Dilate, true}, {apply.Erode, true},
	}},

	// Edge is handled entirely in Run: it diffs two independent Dilate/Erode
	// runs against the saved original image rather than chaining through
	// this table, so it has no entry here.
	EdgeOut: {Stages: []stage{{apply.Dilate, false}}, PostDiff: postDiffEdgeOut},
	EdgeIn:  {Stages: []stage{{apply.Erode, false}}, PostDiff: postDiffEdgeIn},
}
