package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepthAtOutOfBoundsReturnsBgDepth(t *testing.T) {
	d := &Depth{W: 2, H: 2, Pix: []float32{1, 2, 3, 4}}
	assert.EqualValues(t, 3, d.At(0, 1, 999))
	assert.EqualValues(t, 999, d.At(-1, 0, 999))
	assert.EqualValues(t, 999, d.At(2, 0, 999))
}

func TestLabelAt(t *testing.T) {
	l := &Label{W: 2, H: 1, Pix: []uint8{5, 7}}
	assert.EqualValues(t, 7, l.At(1, 0))
}

func TestCorpusValidateDimensionMismatch(t *testing.T) {
	c := &Corpus{
		W: 2, H: 2, NLabels: 2,
		Frames: []Pair{{
			Depth: Depth{W: 1, H: 1, Pix: []float32{0}},
			Label: Label{W: 1, H: 1, Pix: []uint8{0}},
		}},
	}
	assert.Error(t, c.Validate())
}

func TestCorpusValidateOutOfRangeLabel(t *testing.T) {
	c := &Corpus{
		W: 1, H: 1, NLabels: 2,
		Frames: []Pair{{
			Depth: Depth{W: 1, H: 1, Pix: []float32{0}},
			Label: Label{W: 1, H: 1, Pix: []uint8{5}},
		}},
	}
	assert.Error(t, c.Validate())
}

func TestCorpusValidateAcceptsWellFormedCorpus(t *testing.T) {
	c := &Corpus{
		W: 1, H: 1, NLabels: 2,
		Frames: []Pair{{
			Depth: Depth{W: 1, H: 1, Pix: []float32{0}},
			Label: Label{W: 1, H: 1, Pix: []uint8{1}},
		}},
	}
	assert.NoError(t, c.Validate())
}

func TestPixelsPerMeter(t *testing.T) {
	c := &Corpus{H: 424, FOV: 2 * math.Atan(1)}
	// FOV chosen so that tan(FOV/2) == 1, so pixels-per-meter is H/2.
	assert.InDelta(t, 212, c.PixelsPerMeter(), 1e-9)
}
