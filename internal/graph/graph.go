// Package graph implements the dataflow graph's Node entity and the
// topological ordering both differentiation modes walk. It has no
// knowledge of the tracer, checkpoint, or autodiff packages -- op
// constructors are responsible for notifying the trace hook themselves,
// which keeps this package free of import cycles.
package graph

import (
	"github.com/google/uuid"

	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
)

// Op is a tag from the closed set of op kinds a node can carry. It
// determines which forward evaluator, VJP, and JVP rule apply.
type Op int

const (
	OpLeaf Op = iota
	OpAdd
	OpSub
	OpMul
	OpMatMul
	OpReLU
	OpGELU
	OpSum
	OpMSELoss
	OpCrossEntropyWithLogits
)

func (o Op) String() string {
	switch o {
	case OpLeaf:
		return "leaf"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpMatMul:
		return "matmul"
	case OpReLU:
		return "relu"
	case OpGELU:
		return "gelu"
	case OpSum:
		return "sum"
	case OpMSELoss:
		return "mse-loss"
	case OpCrossEntropyWithLogits:
		return "cross-entropy-with-logits"
	default:
		return "unknown"
	}
}

// Node represents one value in the dataflow graph.
type Node struct {
	ID   uuid.UUID
	Op   Op
	Name string

	Inputs []*Node

	Value        tensor.Tensor
	Grad         tensor.Tensor
	RequiresGrad bool

	// Checkpoint metadata. SavedInputTensors carries data; SavedInputs
	// carries only occupancy -- its presence, not its content, gates
	// recomputation eligibility (spec's "vestigial placeholder" note).
	IsCheckpoint      bool
	SavedInputTensors []tensor.Tensor
	SavedInputs       []bool
	HasSavedRNG       bool
	SavedRNGBlob      []byte

	// Tape is an auxiliary per-node buffer some ops use to cache
	// intermediates for their VJP rule; cleared on eviction.
	Tape []tensor.Tensor

	// Version increments each time NotifyRecomputed is called for this
	// node (after the checkpoint subsystem recomputes it or restores it
	// from a snapshot), so in-place-reasoning observers can detect
	// staleness. Ordinary forward evaluation does not change it.
	Version int
}

// NewNode allocates a node and wires its inputs. It does not invoke the
// node-created hook; op constructors in the ops package do that once they
// have finished building the node, matching the original's discipline of
// calling the hook from the op layer rather than from node allocation
// itself.
func NewNode(op Op, name string, requiresGrad bool, inputs ...*Node) *Node {
	return &Node{
		ID:           uuid.New(),
		Op:           op,
		Name:         name,
		Inputs:       inputs,
		RequiresGrad: requiresGrad,
	}
}

// TopoFrom returns nodes reachable from root in parents-before-children
// order: a depth-first post-order traversal over Inputs, deduplicated by
// pointer identity, with ties among equal-depth nodes broken by first-seen
// order (the order in which DFS first visits them).
func TopoFrom(root *Node) []*Node {
	if root == nil {
		return nil
	}
	var order []*Node
	visited := make(map[*Node]bool)

	var visit func(n *Node)
	visit = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, p := range n.Inputs {
			visit(p)
		}
		order = append(order, n)
	}
	visit(root)
	return order
}

// ZeroGrad sets Grad to a zero tensor shaped like Value for every node
// reachable from root that requires grad.
func ZeroGrad(root *Node) {
	for _, n := range TopoFrom(root) {
		if n.RequiresGrad {
			n.Grad = tensor.ZerosLike(n.Value)
		}
	}
}

// RecomputeObserver is notified whenever a node's Value is refilled by
// recomputation, so downstream in-place/version reasoning stays consistent.
// This is the Go substitute for the original's global on_recomputed
// notification: a package-level slice of observers rather than a
// function-pointer registry, avoiding any import from this package back
// into checkpoint or autodiff.
type RecomputeObserver func(n *Node)

var recomputeObservers []RecomputeObserver

// OnRecompute registers an observer invoked after any call to
// NotifyRecomputed.
func OnRecompute(obs RecomputeObserver) {
	recomputeObservers = append(recomputeObservers, obs)
}

// NotifyRecomputed bumps n's version and fans out to registered observers.
// Called by the checkpoint subsystem after refilling a node's Value.
func NotifyRecomputed(n *Node) {
	n.Version++
	for _, obs := range recomputeObservers {
		obs(n)
	}
}
