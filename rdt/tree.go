// Package rdt defines the flat, breadth-first tree format shared by the
// trainer and the inference kernel: a full binary tree stored as an array
// indexed by left(i)=2i+1, right(i)=2i+2, plus the leaf probability table
// its leaves point into.
package rdt

import (
	"fmt"
	"math"
)

// NodeKind distinguishes the three roles a tree node can play. The legacy
// wire format overloads a single integer (0 / k>=1 / UINT_MAX) to carry
// this; Kind keeps that encoding at the serialization boundary only (see
// rdtbinary) and gives the in-memory representation three explicit cases.
type NodeKind int

const (
	// Untrained marks a node that has not been visited by the trainer yet.
	// Only ever observed in a partially-trained, persisted checkpoint.
	Untrained NodeKind = iota
	// Internal marks a split node: UV and T are valid, Left/Right exist.
	Internal
	// Leaf marks a terminal node whose probability vector is LeafIndex's
	// row of the owning Tree's Leaves table.
	Leaf
)

func (k NodeKind) String() string {
	switch k {
	case Internal:
		return "internal"
	case Leaf:
		return "leaf"
	default:
		return "untrained"
	}
}

// UV is a candidate feature offset pair: two (x,y) offsets, drawn from a
// range already converted from meters by the pixels-per-meter factor
// (see candidate.UVRangeInPixels) and divided by the pixel's depth when
// the feature is sampled.
type UV [4]float64

// Node is one entry of a Tree's flat array.
type Node struct {
	Kind NodeKind
	UV   UV
	T    float64
	// LeafIndex is the 0-based row of Tree.Leaves this node's prediction
	// lives at. Only meaningful when Kind == Leaf.
	LeafIndex int
}

// Tree is a full binary tree of depth MaxDepth stored as a flat array of
// length 2^MaxDepth-1, plus the leaf probability table its leaves index
// into by row. Leaves are assigned LeafIndex in breadth-first discovery
// order, so writing Leaves in that order round-trips.
type Tree struct {
	MaxDepth int
	NLabels  int
	BgLabel  int
	FOV      float64
	Nodes    []Node
	Leaves   [][]float64
}

// NumNodes returns the number of node slots for a tree of the given depth:
// 2^depth - 1.
func NumNodes(depth int) int {
	return (1 << uint(depth)) - 1
}

// New allocates an untrained tree of the given shape: every node slot is
// marked Untrained and the leaf table is empty.
func New(maxDepth, nLabels, bgLabel int, fov float64) *Tree {
	return &Tree{
		MaxDepth: maxDepth,
		NLabels:  nLabels,
		BgLabel:  bgLabel,
		FOV:      fov,
		Nodes:    make([]Node, NumNodes(maxDepth)),
	}
}

// Left returns the BFS index of i's left child.
func Left(i int) int { return 2*i + 1 }

// Right returns the BFS index of i's right child.
func Right(i int) int { return 2*i + 2 }

// HasChildren returns whether index i has room for children within a
// tree of the given depth, i.e. it isn't on the last level.
func HasChildren(i, maxDepth int) bool {
	return Right(i) < NumNodes(maxDepth)
}

// AppendLeaf copies probs into a new row of t.Leaves and returns a Node
// referencing it, consistent with leaf-index monotonicity: leaves are
// assigned indices in the order they're appended.
func (t *Tree) AppendLeaf(probs []float64) Node {
	row := make([]float64, len(probs))
	copy(row, probs)
	idx := len(t.Leaves)
	t.Leaves = append(t.Leaves, row)
	return Node{Kind: Leaf, LeafIndex: idx}
}

// Validate checks the invariants that make a Tree usable for inference or
// checkpoint resumption: every leaf reference is in range, every row of
// Leaves has NLabels columns and sums to 1 (or is all zero), and every
// internal node has room for two children within MaxDepth. The kinds of
// those children are not checked.
func (t *Tree) Validate() error {
	if len(t.Nodes) != NumNodes(t.MaxDepth) {
		return fmt.Errorf("rdt: tree has %d node slots, want %d for depth %d", len(t.Nodes), NumNodes(t.MaxDepth), t.MaxDepth)
	}
	for i, n := range t.Nodes {
		switch n.Kind {
		case Leaf:
			if n.LeafIndex < 0 || n.LeafIndex >= len(t.Leaves) {
				return fmt.Errorf("rdt: node %d references leaf %d, have %d leaves", i, n.LeafIndex, len(t.Leaves))
			}
			row := t.Leaves[n.LeafIndex]
			if len(row) != t.NLabels {
				return fmt.Errorf("rdt: leaf %d has %d labels, want %d", n.LeafIndex, len(row), t.NLabels)
			}
			sum := 0.0
			for _, p := range row {
				sum += p
			}
			if sum != 0 && math.Abs(sum-1) > 1e-6 {
				return fmt.Errorf("rdt: leaf %d probabilities sum to %f, want 0 or 1", n.LeafIndex, sum)
			}
		case Internal:
			if !HasChildren(i, t.MaxDepth) {
				return fmt.Errorf("rdt: node %d is internal but has no room for children at depth %d", i, t.MaxDepth)
			}
		}
	}
	return nil
}
