// Package layout holds pure widget-geometry helpers.
package layout

import "math"

// Fit scales an image of imgW x imgH to fit inside areaW x areaH while
// preserving aspect ratio. The scale factor is min(areaW/imgW, areaH/imgH),
// so neither output dimension exceeds its bound. Returns zeros when either
// input is degenerate.
func Fit(areaW, areaH, imgW, imgH int) (w, h int) {
	if areaW <= 0 || areaH <= 0 || imgW <= 0 || imgH <= 0 {
		return 0, 0
	}

	scale := float64(areaW) / float64(imgW)
	if s := float64(areaH) / float64(imgH); s < scale {
		scale = s
	}

	// Round rather than truncate so a bound-matching dimension does not
	// lose a pixel to floating point error.
	return int(math.Round(float64(imgW) * scale)), int(math.Round(float64(imgH) * scale))
}
