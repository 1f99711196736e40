// Package sample draws the randomized training pixels the tree grows from:
// for every frame, a fixed number of in-body pixels chosen uniformly at
// random (with replacement) and sorted for cache locality.
package sample

import (
	"math/rand"
	"sort"

	"github.com/seehuhn/mt19937"

	"github.com/mpraski/rdforest/frame"
)

// Pixel is one sampled training pixel: its coordinates and the index of
// the frame it was drawn from.
type Pixel struct {
	X, Y  int
	Image int
}

// Generate draws nPixels in-body pixels from every frame of c using a
// single Mersenne-Twister PRNG instance shared across frames in corpus
// order, so frame ordering affects the reproducible result. The total
// returned set has up to len(c.Frames)*nPixels entries, duplicates
// included: a frame with no in-body pixels (all background) contributes
// none.
func Generate(c *frame.Corpus, nPixels int, seed int64) []Pixel {
	rng := rand.New(mt19937.New())
	rng.Seed(seed)

	out := make([]Pixel, 0, len(c.Frames)*nPixels)
	for i, f := range c.Frames {
		inBody := inBodyOffsets(&f.Label, c.BgLabel)
		n := len(inBody)
		if n == 0 {
			continue
		}
		indices := make([]int, nPixels)
		for j := 0; j < nPixels; j++ {
			indices[j] = int(rng.Float64() * float64(n))
		}
		sort.Ints(indices)
		for _, idx := range indices {
			off := inBody[idx]
			out = append(out, Pixel{X: off % c.W, Y: off / c.W, Image: i})
		}
	}
	return out
}

// inBodyOffsets returns the flat row-major offsets of every pixel whose
// label isn't bgLabel.
func inBodyOffsets(l *frame.Label, bgLabel int) []int {
	offsets := make([]int, 0, len(l.Pix))
	for off, lbl := range l.Pix {
		if int(lbl) != bgLabel {
			offsets = append(offsets, off)
		}
	}
	return offsets
}
