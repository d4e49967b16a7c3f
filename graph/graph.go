// Package graph is the public dataflow-graph type: nodes, op tags, and the
// topological ordering both differentiation modes walk.
package graph

import "github.com/Vishnu-BB/cgadimpl/internal/graph"

// Node and Op are re-exported so callers never need to import the
// internal package directly.
type (
	Node = graph.Node
	Op   = graph.Op
)

// Op tag constants.
const (
	OpLeaf                   = graph.OpLeaf
	OpAdd                    = graph.OpAdd
	OpSub                    = graph.OpSub
	OpMul                    = graph.OpMul
	OpMatMul                 = graph.OpMatMul
	OpReLU                   = graph.OpReLU
	OpGELU                   = graph.OpGELU
	OpSum                    = graph.OpSum
	OpMSELoss                = graph.OpMSELoss
	OpCrossEntropyWithLogits = graph.OpCrossEntropyWithLogits
)

// TopoFrom returns nodes reachable from root in parents-before-children
// order.
func TopoFrom(root *Node) []*Node {
	return graph.TopoFrom(root)
}

// ZeroGrad zeroes Grad for every node reachable from root that requires
// grad.
func ZeroGrad(root *Node) {
	graph.ZeroGrad(root)
}

// RecomputeObserver and OnRecompute let callers observe every
// recomputation, for in-place/version reasoning downstream of
// checkpointing.
type RecomputeObserver = graph.RecomputeObserver

func OnRecompute(obs RecomputeObserver) {
	graph.OnRecompute(obs)
}
