package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
)

func TestTopoFromParentsBeforeChildren(t *testing.T) {
	leaf1 := NewNode(OpLeaf, "x", false)
	leaf2 := NewNode(OpLeaf, "w", false)
	mid := NewNode(OpMatMul, "matmul", false, leaf1, leaf2)
	root := NewNode(OpSum, "sum", false, mid)

	order := TopoFrom(root)
	require.Len(t, order, 4)

	pos := make(map[*Node]int)
	for i, n := range order {
		pos[n] = i
	}
	require.Less(t, pos[leaf1], pos[mid])
	require.Less(t, pos[leaf2], pos[mid])
	require.Less(t, pos[mid], pos[root])
	require.Equal(t, root, order[len(order)-1])
}

func TestTopoFromDedupsDiamond(t *testing.T) {
	shared := NewNode(OpLeaf, "shared", false)
	a := NewNode(OpReLU, "a", false, shared)
	b := NewNode(OpGELU, "b", false, shared)
	root := NewNode(OpAdd, "root", false, a, b)

	order := TopoFrom(root)
	require.Len(t, order, 4)
}

func TestZeroGrad(t *testing.T) {
	leaf := NewNode(OpLeaf, "x", true)
	leaf.Value = tensor.New(1, 2, []float32{1, 2})
	leaf.Grad = tensor.New(1, 2, []float32{9, 9})

	ZeroGrad(leaf)
	require.True(t, tensor.Equal(leaf.Grad, tensor.Zeros(1, 2), 0))
}

func TestNotifyRecomputedBumpsVersionAndFansOut(t *testing.T) {
	n := NewNode(OpLeaf, "x", false)
	var observed *Node
	OnRecompute(func(obs *Node) { observed = obs })

	NotifyRecomputed(n)
	require.Equal(t, 1, n.Version)
	require.Equal(t, n, observed)
}
