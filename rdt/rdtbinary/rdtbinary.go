// Package rdtbinary encodes and decodes the binary checkpoint format: a
// fixed header, followed by a flat breadth-first array of fixed-size node
// records, followed by the leaf probability tables. Unlike rdtjson, a node
// record can represent an untrained node, which is what makes this format
// (rather than the JSON one) suitable for resuming an interrupted run.
//
// The overloaded label-index encoding (0 for an internal node, a
// one-based leaf-table row for a leaf, and the sentinel maxUint32 for an
// untrained node) is kept only at this boundary; rdt.Tree itself uses the
// tagged rdt.NodeKind everywhere else.
package rdtbinary

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/mpraski/rdforest/rdt"
)

const (
	version = 1

	untrained = math.MaxUint32
)

var magic = [3]byte{'R', 'D', 'T'}

// Encode writes t to w in the binary checkpoint format. Untrained nodes
// are written with the sentinel index, so a partially-trained tree
// round-trips through this format (unlike rdtjson).
func Encode(w io.Writer, t *rdt.Tree) error {
	if err := writeHeader(w, t); err != nil {
		return fmt.Errorf("rdtbinary: %w", err)
	}
	for _, n := range t.Nodes {
		if err := writeNode(w, n); err != nil {
			return fmt.Errorf("rdtbinary: writing node: %w", err)
		}
	}
	for _, row := range t.Leaves {
		for _, p := range row {
			if err := binary.Write(w, binary.BigEndian, float32(p)); err != nil {
				return fmt.Errorf("rdtbinary: writing leaf table: %w", err)
			}
		}
	}
	return nil
}

func writeHeader(w io.Writer, t *rdt.Tree) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	fields := []interface{}{
		uint32(version),
		uint8(t.MaxDepth),
		uint8(t.NLabels),
		uint8(t.BgLabel),
		float32(t.FOV),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func writeNode(w io.Writer, n rdt.Node) error {
	var idx uint32
	switch n.Kind {
	case rdt.Internal:
		idx = 0
	case rdt.Leaf:
		idx = uint32(n.LeafIndex) + 1
	default:
		idx = untrained
	}
	fields := []interface{}{
		idx,
		float32(n.T),
		float32(n.UV[0]), float32(n.UV[1]), float32(n.UV[2]), float32(n.UV[3]),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a tree, trained or partial, from r.
func Decode(r io.Reader) (*rdt.Tree, error) {
	var m [3]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, fmt.Errorf("rdtbinary: reading magic: %w", err)
	}
	if m != magic {
		return nil, fmt.Errorf("rdtbinary: bad magic %q, want %q", m, magic)
	}

	var v uint32
	var depth, nLabels, bgLabel uint8
	var fov float32
	for _, f := range []interface{}{&v, &depth, &nLabels, &bgLabel, &fov} {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return nil, fmt.Errorf("rdtbinary: reading header: %w", err)
		}
	}

	t := rdt.New(int(depth), int(nLabels), int(bgLabel), float64(fov))

	maxLeaf := -1
	for i := range t.Nodes {
		n, err := readNode(r)
		if err != nil {
			return nil, fmt.Errorf("rdtbinary: reading node %d: %w", i, err)
		}
		t.Nodes[i] = n
		if n.Kind == rdt.Leaf && n.LeafIndex > maxLeaf {
			maxLeaf = n.LeafIndex
		}
	}

	t.Leaves = make([][]float64, maxLeaf+1)
	for i := range t.Leaves {
		row := make([]float64, nLabels)
		for j := range row {
			var p float32
			if err := binary.Read(r, binary.BigEndian, &p); err != nil {
				return nil, fmt.Errorf("rdtbinary: reading leaf table row %d: %w", i, err)
			}
			row[j] = float64(p)
		}
		t.Leaves[i] = row
	}

	return t, nil
}

func readNode(r io.Reader) (rdt.Node, error) {
	var idx uint32
	var t, u0, u1, v0, v1 float32
	for _, f := range []interface{}{&idx, &t, &u0, &u1, &v0, &v1} {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return rdt.Node{}, err
		}
	}
	switch {
	case idx == untrained:
		return rdt.Node{Kind: rdt.Untrained}, nil
	case idx == 0:
		return rdt.Node{Kind: rdt.Internal, T: float64(t), UV: rdt.UV{float64(u0), float64(u1), float64(v0), float64(v1)}}, nil
	default:
		return rdt.Node{Kind: rdt.Leaf, LeafIndex: int(idx - 1)}, nil
	}
}
