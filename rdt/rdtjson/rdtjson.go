// Package rdtjson encodes and decodes the finished, human-readable tree
// format: a JSON document walked in (l,r) recursion from the root, where a
// node is internal iff its "t" key is present and a leaf otherwise. It has
// no representation for an untrained node (only rdtbinary's checkpoint
// format needs that), so encoding a partially-trained tree is an error.
package rdtjson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mpraski/rdforest/rdt"
)

const version = 1

type header struct {
	Version int             `json:"_rdt_version_was"`
	Depth   int             `json:"depth"`
	FOV     float64         `json:"vertical_fov"`
	NLabels int             `json:"n_labels"`
	BgLabel int             `json:"bg_label"`
	Root    json.RawMessage `json:"root"`
}

type wireNode struct {
	T *float64    `json:"t,omitempty"`
	U []float64   `json:"u,omitempty"`
	V []float64   `json:"v,omitempty"`
	L *wireNode   `json:"l,omitempty"`
	R *wireNode   `json:"r,omitempty"`
	P []float64   `json:"p,omitempty"`
}

// Encode writes t to w in the persisted tree schema. It fails if t
// contains any Untrained node: the schema has no way to represent one.
func Encode(w io.Writer, t *rdt.Tree) error {
	root, err := build(t, 0)
	if err != nil {
		return fmt.Errorf("rdtjson: %w", err)
	}
	rootJSON, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("rdtjson: encoding root node: %w", err)
	}
	h := header{
		Version: version,
		Depth:   t.MaxDepth,
		FOV:     t.FOV,
		NLabels: t.NLabels,
		BgLabel: t.BgLabel,
		Root:    rootJSON,
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("rdtjson: encoding tree: %w", err)
	}
	return nil
}

func build(t *rdt.Tree, id int) (*wireNode, error) {
	n := t.Nodes[id]
	switch n.Kind {
	case rdt.Internal:
		tt := n.T
		left, err := build(t, rdt.Left(id))
		if err != nil {
			return nil, err
		}
		right, err := build(t, rdt.Right(id))
		if err != nil {
			return nil, err
		}
		return &wireNode{
			T: &tt,
			U: []float64{n.UV[0], n.UV[1]},
			V: []float64{n.UV[2], n.UV[3]},
			L: left,
			R: right,
		}, nil
	case rdt.Leaf:
		return &wireNode{P: t.Leaves[n.LeafIndex]}, nil
	default:
		return nil, fmt.Errorf("node %d is untrained, cannot serialize to JSON", id)
	}
}

// Decode reads a persisted tree from r.
func Decode(r io.Reader) (*rdt.Tree, error) {
	var h header
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return nil, fmt.Errorf("rdtjson: decoding tree: %w", err)
	}
	t := rdt.New(h.Depth, h.NLabels, h.BgLabel, h.FOV)

	var root wireNode
	if err := json.Unmarshal(h.Root, &root); err != nil {
		return nil, fmt.Errorf("rdtjson: decoding root node: %w", err)
	}
	leafProbs := make(map[int][]float64)
	if err := walk(t, &root, 0, leafProbs); err != nil {
		return nil, fmt.Errorf("rdtjson: %w", err)
	}
	// leafProbs is keyed by BFS node index; walking it in ascending order,
	// rather than the (l,r) pre-order the recursion above discovers leaves
	// in, assigns LeafIndex the same way the trainer's breadth-first queue
	// does, so Leaves round-trips in the order it was originally built.
	for id := 0; id < len(t.Nodes); id++ {
		probs, ok := leafProbs[id]
		if !ok {
			continue
		}
		t.Nodes[id] = t.AppendLeaf(probs)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("rdtjson: %w", err)
	}
	return t, nil
}

func walk(t *rdt.Tree, n *wireNode, id int, leafProbs map[int][]float64) error {
	if n.T != nil {
		t.Nodes[id] = rdt.Node{
			Kind: rdt.Internal,
			UV:   rdt.UV{n.U[0], n.U[1], n.V[0], n.V[1]},
			T:    *n.T,
		}
		if n.L == nil || n.R == nil {
			return fmt.Errorf("internal node %d missing child", id)
		}
		if err := walk(t, n.L, rdt.Left(id), leafProbs); err != nil {
			return err
		}
		return walk(t, n.R, rdt.Right(id), leafProbs)
	}
	leafProbs[id] = n.P
	return nil
}
