// Package autodiff is the public reverse-mode and forward-mode
// differentiation API: Backward performs vector-Jacobian-product
// backpropagation, JVP performs Jacobian-vector-product forward-mode
// differentiation, both over the graph package's Node.
//
// Example:
//
//	loss := ops.Sum(ops.Add(ops.MatMul(x, w), b))
//	if err := autodiff.Backward(loss, tensor.Empty()); err != nil {
//	    log.Fatal(err)
//	}
package autodiff

import (
	"github.com/Vishnu-BB/cgadimpl/internal/autodiff"
	"github.com/Vishnu-BB/cgadimpl/internal/graph"
	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
)

// BackwardOptions and StepObserver let a caller observe every node visited
// during Backward, independent of the trace package's construction-time
// capture.
type (
	BackwardOptions = autodiff.BackwardOptions
	StepObserver    = autodiff.StepObserver
)

// JVPOptions and StepObserverJVP are the forward-mode equivalents.
type (
	JVPOptions      = autodiff.JVPOptions
	StepObserverJVP = autodiff.StepObserverJVP
)

// Backward seeds root's grad (ones-shaped if seed is empty) and walks the
// graph in reverse topological order, dispatching to each node's VJP rule.
func Backward(root *graph.Node, seed tensor.Tensor) error {
	return autodiff.Backward(root, seed)
}

// BackwardWithOptions is Backward with a per-step observer attached.
func BackwardWithOptions(root *graph.Node, seed tensor.Tensor, opts BackwardOptions) error {
	return autodiff.BackwardWithOptions(root, seed, opts)
}

// JVP walks the graph forward, propagating tangents from seedMap, and
// returns root's resulting tangent.
func JVP(root *graph.Node, seedMap map[*graph.Node]tensor.Tensor) tensor.Tensor {
	return autodiff.JVP(root, seedMap)
}

// JVPWithOptions is JVP with a per-step observer attached.
func JVPWithOptions(root *graph.Node, seedMap map[*graph.Node]tensor.Tensor, opts JVPOptions) tensor.Tensor {
	return autodiff.JVPWithOptions(root, seedMap, opts)
}
