// Package histogram accumulates per-label pixel counts and derives the
// normalized distributions, Shannon entropy, and information gain the
// trainer uses to score candidate splits.
package histogram

import "math"

// Counts is a set of per-label integer counters over a fixed number of
// bins (one per label, including the background label).
type Counts []int

// New returns a zeroed Counts with room for nLabels bins.
func New(nLabels int) Counts {
	return make(Counts, nLabels)
}

// Add increments the bin for label by one.
func (c Counts) Add(label int) {
	c[label]++
}

// Reset zeroes every bin in place so scratch buffers can be reused across
// nodes without reallocating.
func (c Counts) Reset() {
	for i := range c {
		c[i] = 0
	}
}

// Normalize divides c by its total and returns the total count, the number
// of bins with a nonzero count, and the normalized distribution. If the
// total is zero the normalized distribution is all zero rather than NaN.
func Normalize(c Counts, out []float64) (total, nonzero int) {
	for _, v := range c {
		if v > 0 {
			total += v
			nonzero++
		}
	}
	if total > 0 {
		for i, v := range c {
			out[i] = float64(v) / float64(total)
		}
	} else {
		for i := range out {
			out[i] = 0
		}
	}
	return total, nonzero
}

// Entropy returns the Shannon entropy (base 2) of a normalized
// distribution, skipping bins where p<=0 or p>=1 to avoid log(0) and the
// 1*log2(1)=0 term that would otherwise contribute nothing but a wasted
// call to Log2.
func Entropy(normalized []float64) float64 {
	var h float64
	for _, p := range normalized {
		if p > 0 && p < 1 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// Gain returns the information gain of splitting a parent of entropy eP
// into a left child of nL pixels and entropy eL and a right child of nR
// pixels and entropy eR.
func Gain(eP float64, nL, nR int, eL, eR float64) float64 {
	nP := nL + nR
	if nP == 0 {
		return 0
	}
	wL := float64(nL) / float64(nP)
	wR := float64(nR) / float64(nP)
	return eP - wL*eL - wR*eR
}
