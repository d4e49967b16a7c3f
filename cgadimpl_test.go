// Package-level integration tests exercising the end-to-end scenarios
// described by spec.md §8 through the public API only.
package cgadimpl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Vishnu-BB/cgadimpl/autodiff"
	"github.com/Vishnu-BB/cgadimpl/checkpoint"
	"github.com/Vishnu-BB/cgadimpl/graph"
	"github.com/Vishnu-BB/cgadimpl/ops"
	"github.com/Vishnu-BB/cgadimpl/tensor"
	"github.com/Vishnu-BB/cgadimpl/trace"
)

func TestTinyMLPNoCheckpoints(t *testing.T) {
	x := ops.Constant(tensor.New(2, 3, []float32{1, 2, 3, 4, 5, 6}), "x")
	w := ops.Param(tensor.New(3, 2, []float32{1, 1, 1, 1, 1, 1}), "w")
	b := ops.Param(tensor.New(1, 2, []float32{0, 0}), "b")
	loss := ops.Sum(ops.Add(ops.MatMul(x, w), b))

	checkpoint.ComputeForwardValues(loss)
	require.NoError(t, autodiff.Backward(loss, tensor.Empty()))

	// d(sum(x*W+b))/dW = x^T . ones(2,2)
	want := tensor.New(3, 2, []float32{5, 5, 7, 7, 9, 9})
	require.True(t, tensor.Equal(w.Grad, want, 1e-5), "w.Grad = %v", w.Grad.Data())
	wantB := tensor.New(1, 2, []float32{2, 2})
	require.True(t, tensor.Equal(b.Grad, wantB, 1e-5))
}

// buildEightLayerStack builds loss = sum(layer8) over an 8-layer dense
// stack layer_i = relu(matmul(layer_{i-1}, W_i) + b_i), returning loss and
// the first layer's weight so callers can compare its gradient.
func buildEightLayerStack() (*graph.Node, *graph.Node) {
	cur := ops.Constant(tensor.New(1, 4, []float32{0.5, -0.3, 0.8, 0.1}), "x")
	var firstW *graph.Node
	for i := 0; i < 8; i++ {
		seed := int64(100 + i)
		w := ops.Param(tensor.Randn(4, 4, seed), "w")
		b := ops.Param(tensor.Zeros(1, 4), "b")
		if i == 0 {
			firstW = w
		}
		cur = ops.ReLU(ops.Add(ops.MatMul(cur, w), b))
	}
	return ops.Sum(cur), firstW
}

func TestEveryTwoCheckpointingMatchesBaseline(t *testing.T) {
	baselineLoss, baselineW := buildEightLayerStack()
	checkpoint.ComputeForwardValues(baselineLoss)
	require.NoError(t, autodiff.Backward(baselineLoss, tensor.Empty()))
	baselineGrad := baselineW.Grad.Copy()

	cpLoss, cpW := buildEightLayerStack()
	checkpoint.AutoCheckpointEveryN(cpLoss, 2, checkpoint.Options{})
	checkpoint.ComputeForwardValues(cpLoss)
	require.NoError(t, autodiff.Backward(cpLoss, tensor.Empty()))
	cpGrad := cpW.Grad.Copy()

	require.True(t, tensor.Equal(baselineGrad, cpGrad, 1e-5),
		"checkpointed grad %v != baseline %v", cpGrad.Data(), baselineGrad.Data())
}

func TestEvictionPreservesCorrectness(t *testing.T) {
	baselineLoss, baselineW := buildEightLayerStack()
	checkpoint.ComputeForwardValues(baselineLoss)
	require.NoError(t, autodiff.Backward(baselineLoss, tensor.Empty()))
	baselineGrad := baselineW.Grad.Copy()

	evictLoss, evictW := buildEightLayerStack()
	checkpoint.AutoCheckpointEveryN(evictLoss, 2, checkpoint.Options{})
	checkpoint.ComputeForwardValues(evictLoss)
	checkpoint.CaptureCheckpointSnapshots(evictLoss)
	checkpoint.EvictNonCheckpointValues(evictLoss)
	require.NoError(t, autodiff.Backward(evictLoss, tensor.Empty()))
	evictGrad := evictW.Grad.Copy()

	require.True(t, tensor.Equal(baselineGrad, evictGrad, 1e-5),
		"post-eviction grad %v != baseline %v", evictGrad.Data(), baselineGrad.Data())
}

func TestChainedCheckpointsTriggerRecursiveRecomputation(t *testing.T) {
	x := ops.Param(tensor.New(1, 2, []float32{1, -2}), "x")
	w1 := ops.Param(tensor.New(2, 2, []float32{1, 0, 0, 1}), "w1")
	h1 := ops.ReLU(ops.MatMul(x, w1))
	w2 := ops.Param(tensor.New(2, 2, []float32{0, 1, 1, 0}), "w2")
	h2 := ops.ReLU(ops.MatMul(h1, w2))
	w3 := ops.Param(tensor.New(2, 2, []float32{1, 1, 1, 1}), "w3")
	loss := ops.Sum(ops.MatMul(h2, w3))

	checkpoint.MarkNodeCheckpoint(h1, checkpoint.Options{}, 0)
	checkpoint.ComputeForwardValues(loss)
	checkpoint.MarkNodeCheckpoint(h2, checkpoint.Options{}, 0)
	checkpoint.CaptureCheckpointSnapshots(loss)

	checkpoint.EvictNonCheckpointValues(loss)
	// protect()'s BFS halts at the first checkpoint it meets descending
	// from root, which is h2 -- so h2 stays protected, but h1 (the deeper
	// checkpoint) is never visited by that BFS at all and is evicted like
	// any other non-leaf, non-protected node despite being a checkpoint.
	require.False(t, h2.Value.IsEmpty(), "h2 is the first checkpoint on the path from root and stays protected")
	require.True(t, h1.Value.IsEmpty(), "h1 is a deeper checkpoint protect() never reaches, so it is evicted too")

	require.NoError(t, autodiff.Backward(loss, tensor.Empty()))
	require.False(t, h1.Value.IsEmpty())
	require.False(t, h2.Value.IsEmpty())

	zero := func(g tensor.Tensor) bool {
		for _, v := range g.Data() {
			if v != 0 {
				return false
			}
		}
		return true
	}
	require.False(t, zero(w1.Grad), "w1.Grad stayed all-zero, recursive recomputation likely did not run")
	require.False(t, zero(w2.Grad))
	require.False(t, zero(w3.Grad))
}

func TestTracerCapturesMLPAndTopoSort(t *testing.T) {
	tr := trace.MakeTracer()
	guard := trace.NewCaptureGuard(tr)

	x := ops.Constant(tensor.New(1, 3, []float32{1, 2, 3}), "x")
	w1 := ops.Param(tensor.New(3, 4, []float32{
		1, 0, 0, 1,
		0, 1, 1, 0,
		1, 1, 0, 0,
	}), "w1")
	b1 := ops.Param(tensor.Zeros(1, 4), "b1")
	w2 := ops.Param(tensor.New(4, 3, []float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 1, 1,
	}), "w2")
	b2 := ops.Param(tensor.Zeros(1, 3), "b2")
	y := ops.Constant(tensor.New(1, 3, []float32{0, 1, 0}), "y")
	loss := ops.MSELoss(ops.Add(ops.MatMul(ops.GELU(ops.Add(ops.MatMul(x, w1), b1)), w2), b2), y)
	tr.MarkOutput(loss)

	guard.Stop()

	require.Equal(t, []*graph.Node{loss}, tr.Outputs())

	order := tr.TopoSort()
	require.Equal(t, loss, order[len(order)-1])
	leafSet := map[*graph.Node]bool{x: true, w1: true, b1: true, w2: true, b2: true, y: true}
	leafCount := 0
	for _, n := range order {
		if leafSet[n] {
			leafCount++
		}
	}
	require.Equal(t, 6, leafCount)

	pos := make(map[*graph.Node]int)
	for i, n := range order {
		pos[n] = i
	}
	for _, n := range order {
		for _, p := range n.Inputs {
			if pos[p] >= 0 {
				require.Less(t, pos[p], pos[n])
			}
		}
	}
}

// TestJVPVJPDualityLaw checks that for a scalar root, <u, jvp(root, {leaf:
// v})> == <v, backward(root, u)'s grad at leaf>, as spec.md's JVP/VJP
// duality law requires.
func TestJVPVJPDualityLaw(t *testing.T) {
	leaf := ops.Param(tensor.New(1, 3, []float32{1, 2, 3}), "leaf")
	w := ops.Param(tensor.New(3, 2, []float32{2, -1, 0, 1, 1, 3}), "w")
	root := ops.Sum(ops.MatMul(leaf, w))
	checkpoint.ComputeForwardValues(root)

	v := tensor.New(1, 3, []float32{0.5, -1.5, 2})
	u := tensor.New(1, 1, []float32{1.7})

	jvpOut := autodiff.JVP(root, map[*graph.Node]tensor.Tensor{leaf: v})
	lhs := dot(u, jvpOut)

	require.NoError(t, autodiff.Backward(root, u))
	rhs := dot(v, leaf.Grad)

	require.InDelta(t, lhs, rhs, 1e-4, "u.jvp(root,{leaf:v})=%v != v.backward(root,u)@leaf=%v", lhs, rhs)
}

func dot(a, b tensor.Tensor) float32 {
	ad, bd := a.Data(), b.Data()
	var s float32
	for i := range ad {
		s += ad[i] * bd[i]
	}
	return s
}

// TestTracerIdempotenceLaw checks that two start/stop cycles on the same
// graph produce the same captured-node set and topo order.
func TestTracerIdempotenceLaw(t *testing.T) {
	build := func() *graph.Node {
		x := ops.Constant(tensor.New(1, 2, []float32{1, 2}), "x")
		w := ops.Param(tensor.New(2, 2, []float32{1, 0, 0, 1}), "w")
		return ops.Sum(ops.MatMul(x, w))
	}

	tr1 := trace.MakeTracer()
	g1 := trace.NewCaptureGuard(tr1)
	root1 := build()
	g1.Stop()

	tr2 := trace.MakeTracer()
	g2 := trace.NewCaptureGuard(tr2)
	root2 := build()
	g2.Stop()

	require.Equal(t, len(tr1.CapturedNodes()), len(tr2.CapturedNodes()))
	order1 := tr1.TopoSort()
	order2 := tr2.TopoSort()
	require.Equal(t, len(order1), len(order2))
	for i := range order1 {
		require.Equal(t, order1[i].Op, order2[i].Op)
		require.Equal(t, order1[i].Name, order2[i].Name)
	}
	require.Equal(t, root1.Op, root2.Op)
}

func TestMissingNonCheckpointedParentFailsFatally(t *testing.T) {
	x := ops.Param(tensor.New(1, 2, []float32{1, 2}), "x")
	w := ops.Param(tensor.New(2, 2, []float32{1, 0, 0, 1}), "w")
	h := ops.MatMul(x, w)
	loss := ops.Sum(h)
	checkpoint.ComputeForwardValues(loss)

	x.Value = tensor.Empty()

	err := autodiff.Backward(loss, tensor.Empty())
	require.Error(t, err)
	require.Contains(t, err.Error(), "matmul")
	require.Contains(t, err.Error(), "x")
}
