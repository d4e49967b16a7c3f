package trace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Vishnu-BB/cgadimpl/internal/graph"
)

func TestTracerCapturesAndDedups(t *testing.T) {
	tr := MakeTracer()
	tr.Start()
	leaf := graph.NewNode(graph.OpLeaf, "x", false)
	OnNodeCreated(leaf)
	mid := graph.NewNode(graph.OpReLU, "relu", false, leaf)
	OnNodeCreated(mid)
	OnNodeCreated(mid) // duplicate notification must be deduped
	tr.Stop()

	captured := tr.CapturedNodes()
	require.Len(t, captured, 2)
	require.Equal(t, leaf, captured[0])
	require.Equal(t, mid, captured[1])
}

func TestTracerOutputsFallsBackToSinks(t *testing.T) {
	tr := MakeTracer()
	tr.Start()
	leaf := graph.NewNode(graph.OpLeaf, "x", false)
	OnNodeCreated(leaf)
	mid := graph.NewNode(graph.OpReLU, "relu", false, leaf)
	OnNodeCreated(mid)
	tr.Stop()

	require.Equal(t, []*graph.Node{mid}, tr.Outputs())
}

func TestTracerOutputsPrefersExplicitMarks(t *testing.T) {
	tr := MakeTracer()
	tr.Start()
	leaf := graph.NewNode(graph.OpLeaf, "x", false)
	OnNodeCreated(leaf)
	mid := graph.NewNode(graph.OpReLU, "relu", false, leaf)
	OnNodeCreated(mid)
	tr.Stop()

	tr.MarkOutput(leaf)
	require.Equal(t, []*graph.Node{leaf}, tr.Outputs())
}

func TestTracerTopoSortParentsBeforeChildren(t *testing.T) {
	tr := MakeTracer()
	tr.Start()
	x := graph.NewNode(graph.OpLeaf, "x", false)
	OnNodeCreated(x)
	w := graph.NewNode(graph.OpLeaf, "w", false)
	OnNodeCreated(w)
	mm := graph.NewNode(graph.OpMatMul, "matmul", false, x, w)
	OnNodeCreated(mm)
	loss := graph.NewNode(graph.OpSum, "sum", false, mm)
	OnNodeCreated(loss)
	tr.Stop()

	order := tr.TopoSort()
	require.Len(t, order, 4)
	require.Equal(t, loss, order[len(order)-1])

	pos := make(map[*graph.Node]int)
	for i, n := range order {
		pos[n] = i
	}
	require.Less(t, pos[x], pos[mm])
	require.Less(t, pos[w], pos[mm])
	require.Less(t, pos[mm], pos[loss])
}

func TestTracerClearResetsState(t *testing.T) {
	tr := MakeTracer()
	tr.Start()
	OnNodeCreated(graph.NewNode(graph.OpLeaf, "x", false))
	tr.Stop()
	require.Len(t, tr.CapturedNodes(), 1)

	tr.Clear()
	require.Empty(t, tr.CapturedNodes())
	require.Nil(t, tr.Outputs())
}

func TestCaptureGuardStartsAndStops(t *testing.T) {
	tr := MakeTracer()
	guard := NewCaptureGuard(tr)
	OnNodeCreated(graph.NewNode(graph.OpLeaf, "x", false))
	guard.Stop()

	// After Stop, this goroutine's observer stack no longer points at tr.
	OnNodeCreated(graph.NewNode(graph.OpLeaf, "y", false))
	require.Len(t, tr.CapturedNodes(), 1)
}

func TestNestedTracersOnSameGoroutine(t *testing.T) {
	outer := MakeTracer()
	inner := MakeTracer()

	outer.Start()
	a := graph.NewNode(graph.OpLeaf, "a", false)
	OnNodeCreated(a)

	inner.Start()
	b := graph.NewNode(graph.OpLeaf, "b", false)
	OnNodeCreated(b)
	inner.Stop()

	c := graph.NewNode(graph.OpLeaf, "c", false)
	OnNodeCreated(c)
	outer.Stop()

	require.Equal(t, []*graph.Node{a, c}, outer.CapturedNodes())
	require.Equal(t, []*graph.Node{b}, inner.CapturedNodes())
}
