// Package infer runs a forest of trained trees against a depth image to
// produce a per-pixel body-part probability map.
package infer

import (
	"runtime"
	"sync"

	"github.com/mpraski/rdforest/frame"
	"github.com/mpraski/rdforest/gradient"
	"github.com/mpraski/rdforest/rdt"
)

// FlipMap permutes label bins when descending a tree a second time with
// its uv x-components negated. A nil FlipMap disables flip-symmetric
// inference; an identity FlipMap makes the flipped pass a no-op beyond
// doubling the divisor.
type FlipMap []int

// Result is the label probability map produced by Run: NLabels floats per
// pixel, row-major, summing to 1 (barring floating-point error) at every
// pixel that at least one tree contributed to.
type Result struct {
	W, H    int
	NLabels int
	Probs   []float64
}

// At returns the probability row for pixel (x,y).
func (r *Result) At(x, y int) []float64 {
	i := (y*r.W + x) * r.NLabels
	return r.Probs[i : i+r.NLabels]
}

// Run descends every tree in trees for every pixel of img and averages the
// resulting probability vectors. When flip is non-nil, every tree is also
// descended with its uv offsets' x-components negated, and the two passes
// are merged with flip applied to the flipped pass's output bins, doubling
// the divisor.
//
// Work is partitioned across nWorkers goroutines by pixel-index stride, so
// each worker only ever writes to output slots no other worker touches;
// the trees and image are read-only for the duration.
func Run(trees []*rdt.Tree, img *frame.Depth, bgDepth float32, flip FlipMap, nWorkers int) *Result {
	if nWorkers < 1 {
		nWorkers = runtime.GOMAXPROCS(0)
	}
	nLabels := trees[0].NLabels
	res := &Result{W: img.W, H: img.H, NLabels: nLabels, Probs: make([]float64, img.W*img.H*nLabels)}

	npix := img.W * img.H
	divisor := float64(len(trees))
	if flip != nil {
		divisor *= 2
	}

	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			for i := start; i < npix; i += nWorkers {
				x, y := i%img.W, i/img.W
				row := res.At(x, y)
				pixel(trees, img, bgDepth, flip, x, y, row, divisor)
			}
		}(w)
	}
	wg.Wait()
	return res
}

func pixel(trees []*rdt.Tree, img *frame.Depth, bgDepth float32, flip FlipMap, x, y int, out []float64, divisor float64) {
	d := img.At(x, y, bgDepth)
	if d >= bgDepth {
		out[trees[0].BgLabel] = 1
		return
	}
	for _, t := range trees {
		accumulate(t, img, x, y, d, bgDepth, false, nil, out)
		if flip != nil {
			accumulate(t, img, x, y, d, bgDepth, true, flip, out)
		}
	}
	for i := range out {
		out[i] /= divisor
	}
}

// accumulate descends one tree once and adds its leaf's probability row
// into out, permuting bins by flip when flipped is set.
func accumulate(t *rdt.Tree, img *frame.Depth, x, y int, d, bgDepth float32, flipped bool, flip FlipMap, out []float64) {
	id := 0
	for t.Nodes[id].Kind == rdt.Internal {
		n := t.Nodes[id]
		uv := n.UV
		if flipped {
			uv[0] = -uv[0]
			uv[2] = -uv[2]
		}
		f := gradient.Sample(img, x, y, d, uv, bgDepth)
		if f < n.T {
			id = rdt.Left(id)
		} else {
			id = rdt.Right(id)
		}
	}
	row := t.Leaves[t.Nodes[id].LeafIndex]
	if !flipped || flip == nil {
		for i, p := range row {
			out[i] += p
		}
		return
	}
	for i, p := range row {
		out[flip[i]] += p
	}
}
