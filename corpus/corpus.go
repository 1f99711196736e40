// Package corpus loads a frame.Corpus from a data directory. The wire
// contract (an index of path stems plus flat depth/label files) is a
// concrete, testable stand-in for whatever richer loader a production
// deployment substitutes; the trainer only ever depends on the Loader
// interface.
package corpus

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mpraski/rdforest/frame"
)

// Loader produces the frame corpus a Trainer grows a tree from.
type Loader interface {
	Load() (*frame.Corpus, error)
}

// DirLoader reads a corpus laid out as an index file of newline-separated
// path stems, each with a companion "<stem>.depth" (flat little-endian
// float32, W*H) and "<stem>.label" (flat uint8, W*H) file alongside it.
// W and H are not discovered from the data: they come from the DirLoader's
// fields, and only the first W*H values of each file are read. NLabels is
// discovered from the data as the highest label byte seen plus one (at
// least BgLabel+1).
type DirLoader struct {
	DataDir   string
	IndexName string
	W, H      int
	FOV       float64
	BgLabel   int
	BgDepth   float32
}

// Load reads and validates the corpus described by l.
func (l *DirLoader) Load() (*frame.Corpus, error) {
	stems, err := readIndex(filepath.Join(l.DataDir, l.IndexName))
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	return LoadFrames(l.DataDir, stems, l.W, l.H, l.FOV, l.BgLabel, l.BgDepth)
}

func readIndex(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	defer f.Close()

	var stems []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			stems = append(stems, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return stems, nil
}

// LoadFrames reads the "<stem>.depth"/"<stem>.label" file pair for every
// stem under dataDir and assembles them into a validated frame.Corpus. It
// is the shared tail end of every Loader in this package: DirLoader
// discovers stems from a flat index file, while the database-backed
// loaders discover them from a query; either way, the pixel data itself
// always lives in these flat per-frame files on disk.
func LoadFrames(dataDir string, stems []string, w, h int, fov float64, bgLabel int, bgDepth float32) (*frame.Corpus, error) {
	if len(stems) == 0 {
		return nil, fmt.Errorf("corpus: no frames to load")
	}

	c := &frame.Corpus{W: w, H: h, FOV: fov, BgLabel: bgLabel, BgDepth: bgDepth}
	npix := w * h
	maxLabel := 0
	for _, stem := range stems {
		d, err := readDepth(dataDir, stem, npix)
		if err != nil {
			return nil, fmt.Errorf("corpus: %w", err)
		}
		lbl, m, err := readLabel(dataDir, stem, npix)
		if err != nil {
			return nil, fmt.Errorf("corpus: %w", err)
		}
		if m > maxLabel {
			maxLabel = m
		}
		c.Frames = append(c.Frames, frame.Pair{
			Depth: frame.Depth{W: w, H: h, Pix: d},
			Label: frame.Label{W: w, H: h, Pix: lbl},
		})
	}
	c.NLabels = maxLabel + 1
	if bgLabel >= c.NLabels {
		c.NLabels = bgLabel + 1
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	return c, nil
}

func readDepth(dataDir, stem string, npix int) ([]float32, error) {
	f, err := os.Open(filepath.Join(dataDir, stem+".depth"))
	if err != nil {
		return nil, fmt.Errorf("opening depth frame %s: %w", stem, err)
	}
	defer f.Close()

	pix := make([]float32, npix)
	if err := binary.Read(f, binary.LittleEndian, pix); err != nil {
		return nil, fmt.Errorf("reading depth frame %s: %w", stem, err)
	}
	return pix, nil
}

func readLabel(dataDir, stem string, npix int) ([]uint8, int, error) {
	f, err := os.Open(filepath.Join(dataDir, stem+".label"))
	if err != nil {
		return nil, 0, fmt.Errorf("opening label frame %s: %w", stem, err)
	}
	defer f.Close()

	pix := make([]uint8, npix)
	if _, err := io.ReadFull(f, pix); err != nil {
		return nil, 0, fmt.Errorf("reading label frame %s: %w", stem, err)
	}
	max := 0
	for _, v := range pix {
		if int(v) > max {
			max = int(v)
		}
	}
	return pix, max, nil
}
