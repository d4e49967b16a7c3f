// Package ops is the op library: it builds nodes (wiring the node-created
// hook into construction, the sole coupling to the trace package), and
// supplies the forward evaluators and per-op VJP/JVP rules that the
// autodiff and checkpoint packages dispatch to by op tag.
package ops

import (
	"github.com/Vishnu-BB/cgadimpl/internal/graph"
	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
	"github.com/Vishnu-BB/cgadimpl/internal/trace"
)

func build(op graph.Op, name string, requiresGrad bool, inputs ...*graph.Node) *graph.Node {
	n := graph.NewNode(op, name, requiresGrad, inputs...)
	trace.OnNodeCreated(n)
	return n
}

// Constant creates a leaf node holding t that does not require grad.
func Constant(t tensor.Tensor, name string) *graph.Node {
	n := build(graph.OpLeaf, name, false)
	n.Value = t
	return n
}

// Param creates a leaf node holding t that requires grad and is
// grad-zeroed to match t's shape.
func Param(t tensor.Tensor, name string) *graph.Node {
	n := build(graph.OpLeaf, name, true)
	n.Value = t
	n.Grad = tensor.ZerosLike(t)
	return n
}

// MakeTensor creates a leaf node with an explicit requires-grad flag.
func MakeTensor(t tensor.Tensor, name string, requiresGrad bool) *graph.Node {
	n := build(graph.OpLeaf, name, requiresGrad)
	n.Value = t
	if requiresGrad {
		n.Grad = tensor.ZerosLike(t)
	}
	return n
}

func anyRequiresGrad(inputs ...*graph.Node) bool {
	for _, n := range inputs {
		if n.RequiresGrad {
			return true
		}
	}
	return false
}

// Add builds an element-wise addition node.
func Add(a, b *graph.Node) *graph.Node {
	return build(graph.OpAdd, "add", anyRequiresGrad(a, b), a, b)
}

// Sub builds an element-wise subtraction node.
func Sub(a, b *graph.Node) *graph.Node {
	return build(graph.OpSub, "sub", anyRequiresGrad(a, b), a, b)
}

// Mul builds an element-wise multiplication node.
func Mul(a, b *graph.Node) *graph.Node {
	return build(graph.OpMul, "mul", anyRequiresGrad(a, b), a, b)
}

// MatMul builds a matrix-multiplication node.
func MatMul(a, b *graph.Node) *graph.Node {
	return build(graph.OpMatMul, "matmul", anyRequiresGrad(a, b), a, b)
}

// ReLU builds a rectified-linear-unit node.
func ReLU(a *graph.Node) *graph.Node {
	return build(graph.OpReLU, "relu", a.RequiresGrad, a)
}

// GELU builds a Gaussian-error-linear-unit node.
func GELU(a *graph.Node) *graph.Node {
	return build(graph.OpGELU, "gelu", a.RequiresGrad, a)
}

// Sum builds a sum-to-scalar node.
func Sum(a *graph.Node) *graph.Node {
	return build(graph.OpSum, "sum", a.RequiresGrad, a)
}

// MSELoss builds a mean-squared-error node over predictions and targets.
func MSELoss(pred, target *graph.Node) *graph.Node {
	return build(graph.OpMSELoss, "mse-loss", pred.RequiresGrad, pred, target)
}

// CrossEntropyWithLogits builds a softmax-cross-entropy node over raw
// logits and one-hot (or soft) targets.
func CrossEntropyWithLogits(logits, target *graph.Node) *graph.Node {
	return build(graph.OpCrossEntropyWithLogits, "cross-entropy-with-logits", logits.RequiresGrad, logits, target)
}
