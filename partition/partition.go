// Package partition splits a node's pixel list into its two children
// given a chosen (uv, t) split.
package partition

import (
	"github.com/mpraski/rdforest/frame"
	"github.com/mpraski/rdforest/gradient"
	"github.com/mpraski/rdforest/rdt"
	"github.com/mpraski/rdforest/sample"
)

// Split partitions pixels into left (feature < t) and right (feature >= t)
// in a single pass, preserving the parent's ordering within each child.
func Split(c *frame.Corpus, pixels []sample.Pixel, uv rdt.UV, t float64, bgDepth float32) (left, right []sample.Pixel) {
	left = make([]sample.Pixel, 0, len(pixels))
	right = make([]sample.Pixel, 0, len(pixels))
	for _, p := range pixels {
		if Feature(c, p, uv, bgDepth) < t {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	return left, right
}

// Feature computes the gradient feature for a sampled pixel against the
// depth image it was drawn from.
func Feature(c *frame.Corpus, p sample.Pixel, uv rdt.UV, bgDepth float32) float64 {
	img := &c.Frames[p.Image].Depth
	d := img.At(p.X, p.Y, bgDepth)
	return gradient.Sample(img, p.X, p.Y, d, uv, bgDepth)
}
