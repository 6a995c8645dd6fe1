package main

import (
	"fmt"
	"strings"

	"github.com/itohio/morphology/pkg/morphology/method"
)

// methodNames mirrors method.Method's String() in reverse; the enum has
// no built-in name lookup since the dispatcher only ever needs the
// String() direction for logging.
var methodNames = map[string]method.Method{
	"erode": method.Erode, "dilate": method.Dilate, "convolve": method.Convolve,
	"distance": method.Distance, "thin": method.Thin, "thicken": method.Thicken,
	"hitmiss": method.HitMiss, "hit-miss": method.HitMiss, "correlate": method.Correlate,
	"open": method.Open, "tophat": method.TopHat, "top-hat": method.TopHat,
	"close": method.Close, "bottomhat": method.BottomHat, "bottom-hat": method.BottomHat,
	"openintensity": method.OpenIntensity, "open-intensity": method.OpenIntensity,
	"closeintensity": method.CloseIntensity, "close-intensity": method.CloseIntensity,
	"smooth": method.Smooth, "edge": method.Edge, "edgeout": method.EdgeOut,
	"edge-out": method.EdgeOut, "edgein": method.EdgeIn, "edge-in": method.EdgeIn,
	"hitandmiss": method.HitAndMiss, "hit-and-miss": method.HitAndMiss,
}

func methodByName(name string) (method.Method, error) {
	m, ok := methodNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("morphctl: unknown method %q", name)
	}
	return m, nil
}
