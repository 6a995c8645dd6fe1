package pixelview

import (
	"gocv.io/x/gocv"

	"github.com/itohio/morphology/pkg/morphology/apply"
)

func newTestMat(width, height, channels int) gocv.Mat {
	switch channels {
	case 1:
		return gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC1)
	case 3:
		return gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	default:
		return gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC4)
	}
}

func pixelFrom(v float64) apply.Pixel {
	return apply.Pixel{R: v, G: v, B: v}
}
