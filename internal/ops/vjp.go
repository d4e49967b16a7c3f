package ops

import (
	"github.com/Vishnu-BB/cgadimpl/internal/graph"
	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
)

// VJP reads (n, gy) and accumulates each parent's contribution into the
// parent's Grad. It must not replace Grad wholesale -- accumulation is
// additive, because a parent may be visited by more than one child.
type VJP func(n *graph.Node, gy tensor.Tensor)

func accumulate(p *graph.Node, contribution tensor.Tensor) {
	if !p.RequiresGrad {
		return
	}
	if p.Grad.IsEmpty() {
		p.Grad = tensor.ZerosLike(contribution)
	}
	p.Grad = tensor.Add(p.Grad, contribution)
}

// vjpTable maps each op tag to its VJP rule. It is a plain map, so a
// missing entry is not detected at compile time (OpLeaf has none); VJPLookup
// reports it at run time and Backward logs a warning and skips the node.
var vjpTable = map[graph.Op]VJP{
	graph.OpAdd: func(n *graph.Node, gy tensor.Tensor) {
		a, b := n.Inputs[0], n.Inputs[1]
		accumulate(a, tensor.ReduceBroadcastAdd(gy, a.Value.Rows(), a.Value.Cols()))
		accumulate(b, tensor.ReduceBroadcastAdd(gy, b.Value.Rows(), b.Value.Cols()))
	},
	graph.OpSub: func(n *graph.Node, gy tensor.Tensor) {
		a, b := n.Inputs[0], n.Inputs[1]
		accumulate(a, tensor.ReduceBroadcastAdd(gy, a.Value.Rows(), a.Value.Cols()))
		accumulate(b, tensor.ReduceBroadcastAdd(tensor.Scale(gy, -1), b.Value.Rows(), b.Value.Cols()))
	},
	graph.OpMul: func(n *graph.Node, gy tensor.Tensor) {
		a, b := n.Inputs[0], n.Inputs[1]
		accumulate(a, tensor.Mul(gy, b.Value))
		accumulate(b, tensor.Mul(gy, a.Value))
	},
	graph.OpMatMul: func(n *graph.Node, gy tensor.Tensor) {
		a, b := n.Inputs[0], n.Inputs[1]
		// dL/dA = gy @ B^T ; dL/dB = A^T @ gy
		accumulate(a, tensor.MatMul(gy, tensor.Transpose(b.Value)))
		accumulate(b, tensor.MatMul(tensor.Transpose(a.Value), gy))
	},
	graph.OpReLU: func(n *graph.Node, gy tensor.Tensor) {
		a := n.Inputs[0]
		accumulate(a, tensor.Mul(gy, tensor.ReLUMask(a.Value)))
	},
	graph.OpGELU: func(n *graph.Node, gy tensor.Tensor) {
		a := n.Inputs[0]
		accumulate(a, tensor.Mul(gy, tensor.GELUGrad(a.Value)))
	},
	graph.OpSum: func(n *graph.Node, gy tensor.Tensor) {
		a := n.Inputs[0]
		scalar := gy.At(0, 0)
		accumulate(a, tensor.Scale(tensor.Ones(a.Value.Rows(), a.Value.Cols()), scalar))
	},
	graph.OpMSELoss: func(n *graph.Node, gy tensor.Tensor) {
		pred, target := n.Inputs[0], n.Inputs[1]
		scalar := gy.At(0, 0)
		numel := float32(pred.Value.Numel())
		diff := tensor.Sub(pred.Value, target.Value)
		coeff := scalar * 2 / numel
		accumulate(pred, tensor.Scale(diff, coeff))
		accumulate(target, tensor.Scale(diff, -coeff))
	},
	graph.OpCrossEntropyWithLogits: func(n *graph.Node, gy tensor.Tensor) {
		logits, target := n.Inputs[0], n.Inputs[1]
		scalar := gy.At(0, 0) / float32(logits.Value.Rows())
		probs := softmaxRows(logits.Value)
		grad := tensor.Scale(tensor.Sub(probs, target.Value), scalar)
		accumulate(logits, grad)
	},
}

// VJPLookup returns the registered VJP rule for op, or (nil, false) if none
// is registered. Callers treat a false second value as the non-fatal
// VJP-missing warning case: the node is skipped, its parents receive no
// contribution from it.
func VJPLookup(op graph.Op) (VJP, bool) {
	rule, ok := vjpTable[op]
	return rule, ok
}
