package train

import (
	"fmt"
	"math"

	"github.com/mpraski/rdforest/frame"
	"github.com/mpraski/rdforest/partition"
	"github.com/mpraski/rdforest/rdt"
	"github.com/mpraski/rdforest/sample"
)

// rebuildFromCheckpoint reconstructs a resumable tree and its pending
// training queue from a previously persisted, possibly partial tree. It
// walks the persisted tree breadth-first from the root, re-partitioning a
// freshly drawn sample set (identical to a from-scratch run given the same
// seed) through every already-trained internal node it finds, so that
// every pending node it hands back holds exactly the pixel subset it
// would have received had training never stopped.
func rebuildFromCheckpoint(persisted *rdt.Tree, cfg Config, c *frame.Corpus) (*rdt.Tree, []*nodeTask, error) {
	if persisted.NLabels != c.NLabels {
		return nil, nil, fmt.Errorf("%w: checkpoint has %d labels, corpus has %d", ErrCheckpointMismatch, persisted.NLabels, c.NLabels)
	}
	if math.Abs(persisted.FOV-c.FOV) > 1e-6 {
		return nil, nil, fmt.Errorf("%w: checkpoint fov %f does not match corpus fov %f", ErrCheckpointMismatch, persisted.FOV, c.FOV)
	}
	if persisted.MaxDepth > cfg.MaxDepth {
		return nil, nil, fmt.Errorf("%w: checkpoint was trained to depth %d, configured max depth %d is shallower", ErrCheckpointMismatch, persisted.MaxDepth, cfg.MaxDepth)
	}

	tree := rdt.New(cfg.MaxDepth, c.NLabels, c.BgLabel, c.FOV)
	root := sample.Generate(c, cfg.NPixels, cfg.Seed)

	walk := []*nodeTask{{id: 0, depth: 0, pixels: root}}
	var pending []*nodeTask

	for len(walk) > 0 {
		item := walk[0]
		walk = walk[1:]

		node := persisted.Nodes[item.id]
		// A leaf sitting exactly on the persisted tree's last level is
		// reopened for training rather than kept, when the new max depth
		// gives it room to grow further; this is the only case where a
		// node's persisted kind doesn't determine its fate outright.
		retrainFrontier := item.depth == persisted.MaxDepth-1 && cfg.MaxDepth > persisted.MaxDepth

		switch {
		case node.Kind == rdt.Leaf && !retrainFrontier:
			tree.Nodes[item.id] = tree.AppendLeaf(persisted.Leaves[node.LeafIndex])
		case node.Kind == rdt.Untrained || (node.Kind == rdt.Leaf && retrainFrontier):
			pending = append(pending, item)
		case node.Kind == rdt.Internal:
			tree.Nodes[item.id] = rdt.Node{Kind: rdt.Internal, UV: node.UV, T: node.T}
			left, right := partition.Split(c, item.pixels, node.UV, node.T, c.BgDepth)
			walk = append(walk, &nodeTask{id: rdt.Left(item.id), depth: item.depth + 1, pixels: left})
			walk = append(walk, &nodeTask{id: rdt.Right(item.id), depth: item.depth + 1, pixels: right})
		}
	}

	if len(pending) == 0 {
		return nil, nil, ErrCheckpointFullyTrained
	}
	return tree, pending, nil
}
