// Package gradient computes the depth-normalized gradient feature the
// trainer and inference kernel split on: the difference between two depth
// samples offset from a pixel by a candidate (u,v) pair scaled by that
// pixel's own depth.
package gradient

import (
	"github.com/mpraski/rdforest/frame"
	"github.com/mpraski/rdforest/rdt"
)

// Sample computes the feature at pixel (x,y) of img, whose depth is d, for
// candidate offset uv. Offsets are divided by d and truncated toward zero
// (not floored) before being added to the pixel coordinates, matching the
// legacy trainer's (int) cast; out-of-bounds lookups substitute bgDepth
// rather than clamping coordinates, so background pixels deliberately
// produce large-magnitude feature values.
func Sample(img *frame.Depth, x, y int, d float32, uv rdt.UV, bgDepth float32) float64 {
	df := float64(d)
	ux := x + truncDiv(uv[0], df)
	uy := y + truncDiv(uv[1], df)
	vx := x + truncDiv(uv[2], df)
	vy := y + truncDiv(uv[3], df)

	du := img.At(ux, uy, bgDepth)
	dv := img.At(vx, vy, bgDepth)
	return float64(du) - float64(dv)
}

// truncDiv divides v by d and truncates the result toward zero, returning
// it as an int pixel-coordinate offset.
func truncDiv(v, d float64) int {
	return int(v / d)
}
