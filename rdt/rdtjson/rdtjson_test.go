package rdtjson

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpraski/rdforest/rdt"
)

func smallTree() *rdt.Tree {
	tr := rdt.New(2, 2, 0, 1.2291)
	tr.Nodes[0] = rdt.Node{Kind: rdt.Internal, UV: rdt.UV{0.1, 0.2, -0.1, -0.2}, T: 0.05}
	tr.Nodes[1] = tr.AppendLeaf([]float64{0.9, 0.1})
	tr.Nodes[2] = tr.AppendLeaf([]float64{0.2, 0.8})
	return tr
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := smallTree()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))

	got, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, want.MaxDepth, got.MaxDepth)
	assert.Equal(t, want.NLabels, got.NLabels)
	assert.Equal(t, want.BgLabel, got.BgLabel)
	assert.InDelta(t, want.FOV, got.FOV, 1e-9)
	assert.Equal(t, want.Nodes, got.Nodes)
	assert.Equal(t, want.Leaves, got.Leaves)
}

func unbalancedTree() *rdt.Tree {
	// root's left child is itself internal (a deeper subtree), while its
	// right child is a leaf discovered earlier in a breadth-first walk but
	// later in (l,r) pre-order recursion, the shape that distinguishes
	// BFS leaf-index order from DFS leaf-index order.
	tr := rdt.New(3, 2, 0, 1.2291)
	tr.Nodes[0] = rdt.Node{Kind: rdt.Internal, UV: rdt.UV{0, 0, 0, 0}, T: 0.1}
	tr.Nodes[1] = rdt.Node{Kind: rdt.Internal, UV: rdt.UV{0.5, 0.5, -0.5, -0.5}, T: 0.2}
	tr.Nodes[2] = tr.AppendLeaf([]float64{1, 0})
	tr.Nodes[3] = tr.AppendLeaf([]float64{0, 1})
	tr.Nodes[4] = tr.AppendLeaf([]float64{0.5, 0.5})
	return tr
}

func TestEncodeDecodeRoundTripPreservesBFSLeafOrderForUnbalancedTree(t *testing.T) {
	want := unbalancedTree()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))

	got, err := Decode(&buf)
	require.NoError(t, err)

	require.Equal(t, rdt.Leaf, got.Nodes[2].Kind)
	require.Equal(t, rdt.Leaf, got.Nodes[3].Kind)
	require.Equal(t, rdt.Leaf, got.Nodes[4].Kind)

	// Node 2 sits at a shallower BFS position than nodes 3 and 4 despite
	// being discovered after them in (l,r) DFS recursion order; leaf
	// indices must still come out in ascending node-index order.
	assert.Equal(t, 0, got.Nodes[2].LeafIndex)
	assert.Equal(t, 1, got.Nodes[3].LeafIndex)
	assert.Equal(t, 2, got.Nodes[4].LeafIndex)
	assert.Equal(t, want.Leaves, got.Leaves)
}

func TestEncodeRejectsUntrainedTree(t *testing.T) {
	tr := rdt.New(2, 2, 0, 1.0)
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, tr))
}

func TestDecodeRejectsInternalNodeMissingChild(t *testing.T) {
	body := `{"_rdt_version_was":1,"depth":2,"vertical_fov":1.0,"n_labels":2,"bg_label":0,"root":{"t":0.1,"u":[0,0],"v":[0,0],"l":{"p":[1,0]}}}`
	_, err := Decode(bytes.NewBufferString(body))
	assert.Error(t, err)
}
