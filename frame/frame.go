// Package frame holds the row-major depth/label image pair the trainer and
// inference kernel operate on, and the corpus they're collected into.
package frame

import "fmt"

// Depth is a row-major depth image. Pixel (x,y) lives at Pix[y*W+x]. Values
// are already decoded to meters; the wire-level 16-bit-float representation
// mentioned by loaders is a decoding detail this package doesn't care about.
type Depth struct {
	W, H int
	Pix  []float32
}

// At returns the depth at (x,y), or bgDepth if (x,y) is out of bounds.
func (d *Depth) At(x, y int, bgDepth float32) float32 {
	if x < 0 || x >= d.W || y < 0 || y >= d.H {
		return bgDepth
	}
	return d.Pix[y*d.W+x]
}

// Label is a row-major label image: one label in [0, nLabels) per pixel.
type Label struct {
	W, H int
	Pix  []uint8
}

// At returns the label at (x,y).
func (l *Label) At(x, y int) uint8 {
	return l.Pix[y*l.W+x]
}

// Pair is one (depth, label) training frame.
type Pair struct {
	Depth Depth
	Label Label
}

// Corpus is a loaded collection of same-sized training frames plus the
// metadata discovered from them: label count, camera field of view, and the
// background label/depth convention used to mark out-of-body pixels.
type Corpus struct {
	W, H    int
	NLabels int
	FOV     float64
	BgLabel int
	BgDepth float32
	Frames  []Pair
}

// Validate checks that every frame matches the corpus dimensions and that
// every label is in range, treating corrupt input as fatal rather than
// silently clamping or dropping it.
func (c *Corpus) Validate() error {
	for i, f := range c.Frames {
		if f.Depth.W != c.W || f.Depth.H != c.H || f.Label.W != c.W || f.Label.H != c.H {
			return fmt.Errorf("frame: frame %d has dimensions %dx%d/%dx%d, want %dx%d", i, f.Depth.W, f.Depth.H, f.Label.W, f.Label.H, c.W, c.H)
		}
		for _, l := range f.Label.Pix {
			if int(l) >= c.NLabels {
				return fmt.Errorf("frame: frame %d has label %d, max is %d", i, l, c.NLabels-1)
			}
		}
	}
	return nil
}

// PixelsPerMeter converts the corpus's vertical field of view into the
// scale factor used to turn meter-space UV offsets into pixel-space ones:
// (H/2) / tan(FOV/2).
func (c *Corpus) PixelsPerMeter() float64 {
	return pixelsPerMeter(c.H, c.FOV)
}
