// Package candidate generates the fixed bank of (u,v) feature offsets and
// split thresholds tested at every node of a tree.
package candidate

import (
	"math/rand"

	"github.com/seehuhn/mt19937"

	"github.com/mpraski/rdforest/rdt"
)

// Bank is the immutable set of candidates evaluated at every node: an
// ordered list of UV offset pairs and an ordered list of thresholds.
type Bank struct {
	UV []rdt.UV
	T  []float64
}

// Generate draws nUV offset quadruples uniformly from [-uvRange/2,
// +uvRange/2] using a Mersenne-Twister PRNG freshly seeded with seed
// (independent of, but using the same seed as, sample generation; this is
// a fixed behavior of the reference trainer that determinism tests depend
// on), and lays out nThresholds thresholds deterministically and evenly
// across [-thresholdRange/2, +thresholdRange/2].
func Generate(seed int64, nUV int, uvRange float64, nThresholds int, thresholdRange float64) *Bank {
	rng := rand.New(mt19937.New())
	rng.Seed(seed)

	half := uvRange / 2
	uv := make([]rdt.UV, nUV)
	for i := range uv {
		uv[i] = rdt.UV{
			uniform(rng, half),
			uniform(rng, half),
			uniform(rng, half),
			uniform(rng, half),
		}
	}

	t := make([]float64, nThresholds)
	if nThresholds == 1 {
		t[0] = -thresholdRange / 2
	} else {
		step := thresholdRange / float64(nThresholds-1)
		for i := range t {
			t[i] = -thresholdRange/2 + float64(i)*step
		}
	}

	return &Bank{UV: uv, T: t}
}

// uniform draws a value uniformly from [-half, +half].
func uniform(rng *rand.Rand, half float64) float64 {
	return -half + rng.Float64()*2*half
}

// UVRangeInPixels converts a meter-space uv range into the pixel-space
// range the trainer actually samples from, using the corpus's
// pixels-per-meter scale factor: R = uvRangeConfigured * pixelsPerMeter.
func UVRangeInPixels(uvRangeConfigured, pixelsPerMeter float64) float64 {
	return uvRangeConfigured * pixelsPerMeter
}
