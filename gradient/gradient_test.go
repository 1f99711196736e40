package gradient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpraski/rdforest/frame"
	"github.com/mpraski/rdforest/rdt"
)

func TestSampleZeroOffsetIsZero(t *testing.T) {
	img := &frame.Depth{W: 4, H: 4, Pix: make([]float32, 16)}
	for i := range img.Pix {
		img.Pix[i] = 2
	}
	got := Sample(img, 1, 1, 2, rdt.UV{0, 0, 0, 0}, 1000)
	assert.Zero(t, got)
}

func TestSampleOutOfBoundsUsesBgDepth(t *testing.T) {
	img := &frame.Depth{W: 2, H: 2, Pix: []float32{1, 1, 1, 1}}
	// Offset far enough to push the u-sample outside the image entirely.
	got := Sample(img, 0, 0, 1, rdt.UV{100, 0, 0, 0}, 1000)
	assert.InDelta(t, float64(1000)-float64(1), got, 1e-6)
}

func TestTruncDivTruncatesTowardZero(t *testing.T) {
	assert.Equal(t, 1, truncDiv(3, 2))
	assert.Equal(t, -1, truncDiv(-3, 2))
	assert.Equal(t, 0, truncDiv(1, 2))
	assert.Equal(t, 0, truncDiv(-1, 2))
}
