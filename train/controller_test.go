package train

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpraski/rdforest/frame"
)

func pureLabelCorpus() *frame.Corpus {
	// Every in-body pixel carries the same label, so the root histogram
	// has exactly one nonzero bin and the trainer must leaf immediately
	// regardless of which split candidates get generated.
	return &frame.Corpus{
		W: 4, H: 1, NLabels: 2, BgLabel: 0, BgDepth: 1000, FOV: 1.2291,
		Frames: []frame.Pair{{
			Depth: frame.Depth{W: 4, H: 1, Pix: []float32{1, 2, 3, 4}},
			Label: frame.Label{W: 4, H: 1, Pix: []uint8{1, 1, 0, 0}},
		}},
	}
}

func mixedLabelCorpus() *frame.Corpus {
	return &frame.Corpus{
		W: 2, H: 1, NLabels: 3, BgLabel: 2, BgDepth: 1000, FOV: 1.2291,
		Frames: []frame.Pair{{
			Depth: frame.Depth{W: 2, H: 1, Pix: []float32{1, 2}},
			Label: frame.Label{W: 2, H: 1, Pix: []uint8{0, 1}},
		}},
	}
}

func TestTrainPureLabelDistributionYieldsSingleLeaf(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir, cfg.OutFile = "unused", "unused"
	cfg.MaxDepth = 4
	cfg.NPixels = 4
	cfg.NUV = 4
	cfg.NThreads = 2

	tr := New(cfg)
	tree, err := tr.Train(context.Background(), pureLabelCorpus(), nil)
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	assert.Equal(t, "leaf", tree.Nodes[0].Kind.String())
	require.Len(t, tree.Leaves, 1)
	assert.InDelta(t, 0, tree.Leaves[0][0], 1e-9)
	assert.InDelta(t, 1, tree.Leaves[0][1], 1e-9)
}

func TestTrainMaxDepthOneForcesLeafRegardlessOfPurity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir, cfg.OutFile = "unused", "unused"
	cfg.MaxDepth = 1
	cfg.NPixels = 4
	cfg.NUV = 4
	cfg.NThreads = 2

	tr := New(cfg)
	tree, err := tr.Train(context.Background(), mixedLabelCorpus(), nil)
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	require.Equal(t, "leaf", tree.Nodes[0].Kind.String())
	require.Len(t, tree.Leaves, 1)
	sum := 0.0
	for _, p := range tree.Leaves[0] {
		sum += p
	}
	assert.InDelta(t, 1, sum, 1e-9)
}

func TestTrainInvalidConfigReturnsError(t *testing.T) {
	cfg := DefaultConfig()
	// DataDir/OutFile deliberately left unset.
	tr := New(cfg)
	_, err := tr.Train(context.Background(), pureLabelCorpus(), nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestTrainCancelledContextNeverReturnsAnUnexpectedError(t *testing.T) {
	// Interruption is polled cooperatively (matching the reference
	// trainer's own interrupt-flag checks), so a context cancelled before
	// Train is even called may still let a fast run finish normally. The
	// only guarantee is: never panic, always return a tree, and never
	// return an error other than the expected sentinel.
	cfg := DefaultConfig()
	cfg.DataDir, cfg.OutFile = "unused", "unused"
	cfg.MaxDepth = 10
	cfg.NPixels = 4
	cfg.NUV = 4
	cfg.NThreads = 2

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := New(cfg)
	tree, err := tr.Train(ctx, mixedLabelCorpus(), nil)
	require.NotNil(t, tree)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
