package train

import (
	"sync/atomic"

	"github.com/mpraski/rdforest/candidate"
	"github.com/mpraski/rdforest/frame"
	"github.com/mpraski/rdforest/gradient"
	"github.com/mpraski/rdforest/histogram"
	"github.com/mpraski/rdforest/internal/barrier"
	"github.com/mpraski/rdforest/sample"
)

// nodeTask is the node descriptor published to workers for one barrier
// cycle. It is read-only from the workers' point of view: only the
// controller ever writes to it, and only between finished.Wait() returning
// and the next ready.Wait() call.
type nodeTask struct {
	id     int
	depth  int
	pixels []sample.Pixel
}

// splitResult is one worker's local best (gain, uv, threshold) candidate
// for the current node, along with the branch pixel counts it would
// produce and that worker's independently-computed normalized parent
// histogram. Every worker computes the parent histogram redundantly (it
// scans every pixel of the node regardless of its uv slice) so there is no
// special-cased "owning" worker: the controller can read any of them.
type splitResult struct {
	gain           float64
	uvIndex        int
	tIndex         int
	nLeft, nRight  int
	rootTotal      int
	rootNonzero    int
	rootNormalized []float64
}

// lrSlab is the flat per-worker scratch accumulating, for every (uv,
// threshold) combination in the worker's slice, the left/right label
// histograms induced by that split. It mirrors the flat layout the
// reference trainer uses (uvt_lr_histograms) so a worker's pass over its
// pixels is a single linear scan with no nested allocation.
type lrSlab struct {
	uvStart, uvEnd int
	nThresholds    int
	nLabels        int
	data           []int
}

func newLRSlab(uvStart, uvEnd, nThresholds, nLabels int) *lrSlab {
	return &lrSlab{
		uvStart:     uvStart,
		uvEnd:       uvEnd,
		nThresholds: nThresholds,
		nLabels:     nLabels,
		data:        make([]int, (uvEnd-uvStart)*nThresholds*2*nLabels),
	}
}

func (s *lrSlab) reset() {
	for i := range s.data {
		s.data[i] = 0
	}
}

func (s *lrSlab) counts(uvIndex, tIndex, branch int) histogram.Counts {
	uvOffset := uvIndex - s.uvStart
	idx := ((uvOffset*s.nThresholds+tIndex)*2 + branch) * s.nLabels
	return histogram.Counts(s.data[idx : idx+s.nLabels])
}

// sharedState is the data every worker goroutine reads. Per §5, the
// controller alone ever writes task, and only while no worker is between
// the two barriers; interrupted is an atomic flag that Train's
// cancellation watcher may set at any time. Workers only ever write to
// their own private scratch and result slot.
type sharedState struct {
	corpus      *frame.Corpus
	bank        *candidate.Bank
	bgDepth     float32
	maxDepth    int
	task        *nodeTask
	interrupted *atomic.Bool
	ready       *barrier.Barrier
	finished    *barrier.Barrier
}

// worker is one permanently-assigned slice of the uv axis. It owns its
// scratch histograms and result slot for the lifetime of training.
type worker struct {
	index          int
	uvStart, uvEnd int
	result         splitResult
}

// run is the worker's entire lifetime: wait to be told about a node, do
// the work, report, repeat, until told to stop.
func (w *worker) run(sh *sharedState) {
	nLabels := sh.corpus.NLabels
	root := histogram.New(nLabels)
	lNorm := make([]float64, nLabels)
	rNorm := make([]float64, nLabels)
	slab := newLRSlab(w.uvStart, w.uvEnd, len(sh.bank.T), nLabels)
	w.result.rootNormalized = make([]float64, nLabels)

	for {
		sh.ready.Wait()

		// Only a nil task ends the loop: an interrupted cycle still reaches
		// finished.Wait below, which the controller always waits on.
		if sh.task == nil {
			return
		}
		task := sh.task

		root.Reset()
		slab.reset()
		w.result = splitResult{rootNormalized: w.result.rootNormalized}

		atMaxDepth := task.depth >= sh.maxDepth-1
		for _, p := range task.pixels {
			if sh.interrupted.Load() {
				break
			}
			lbl := int(sh.corpus.Frames[p.Image].Label.At(p.X, p.Y))
			root.Add(lbl)
			if atMaxDepth {
				continue
			}
			img := &sh.corpus.Frames[p.Image].Depth
			d := img.At(p.X, p.Y, sh.bgDepth)
			for ci := w.uvStart; ci < w.uvEnd; ci++ {
				uv := sh.bank.UV[ci]
				f := gradient.Sample(img, p.X, p.Y, d, uv, sh.bgDepth)
				for ti, t := range sh.bank.T {
					branch := 0
					if f >= t {
						branch = 1
					}
					slab.counts(ci, ti, branch).Add(lbl)
				}
			}
		}

		rootTotal, rootNonzero := histogram.Normalize(root, w.result.rootNormalized)
		w.result.rootTotal = rootTotal
		w.result.rootNonzero = rootNonzero

		if !atMaxDepth && rootNonzero > 1 {
			w.scanBestSplit(sh, slab, rootTotal, lNorm, rNorm)
		}

		sh.finished.Wait()
	}
}

// scanBestSplit scans w's uv/threshold slab and records the local best
// split into w.result, breaking ties by first occurrence in scan order
// (uv ascending, then threshold ascending) via strict >.
func (w *worker) scanBestSplit(sh *sharedState, slab *lrSlab, rootTotal int, lNorm, rNorm []float64) {
	entropy := histogram.Entropy(w.result.rootNormalized)

	for ci := w.uvStart; ci < w.uvEnd; ci++ {
		for ti := range sh.bank.T {
			if sh.interrupted.Load() {
				return
			}
			lCounts := slab.counts(ci, ti, 0)
			rCounts := slab.counts(ci, ti, 1)
			lTotal, _ := histogram.Normalize(lCounts, lNorm)
			if lTotal == 0 || lTotal == rootTotal {
				continue
			}
			rTotal, _ := histogram.Normalize(rCounts, rNorm)

			lEntropy := histogram.Entropy(lNorm)
			rEntropy := histogram.Entropy(rNorm)
			gain := histogram.Gain(entropy, lTotal, rTotal, lEntropy, rEntropy)

			if gain > w.result.gain {
				w.result.gain = gain
				w.result.uvIndex = ci
				w.result.tIndex = ti
				w.result.nLeft = lTotal
				w.result.nRight = rTotal
			}
		}
	}
}
