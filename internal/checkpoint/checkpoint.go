// Package checkpoint implements the activation-checkpointing subsystem:
// marking, input snapshotting, live-range protection and eviction, the
// auto-checkpointing heuristics, and recursive recomputation of missing
// activations.
package checkpoint

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/Vishnu-BB/cgadimpl/internal/errs"
	"github.com/Vishnu-BB/cgadimpl/internal/graph"
	"github.com/Vishnu-BB/cgadimpl/internal/ops"
	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
)

// Options configures MarkNodeCheckpoint. The zero value (SaveRNG: false)
// matches the original's default.
type Options struct {
	SaveRNG bool
}

// WithSaveRNG returns Options with RNG capture enabled.
func WithSaveRNG() Options {
	return Options{SaveRNG: true}
}

// MarkNodeCheckpoint is idempotent: marking an already-checkpointed node
// is a no-op, matching checkpoint.cpp's `if (node->is_checkpoint) return;`
// guard. On the first call it sets IsCheckpoint, fills SavedInputTensors
// with copies of currently-available parent values (an empty slot where a
// parent has no value yet), and populates SavedInputs with one occupancy
// flag per input. If opts.SaveRNG is set, it also captures rngSeed via
// SaveRNGState.
func MarkNodeCheckpoint(n *graph.Node, opts Options, rngSeed int64) {
	if n.IsCheckpoint {
		return
	}
	n.IsCheckpoint = true
	n.SavedInputTensors = make([]tensor.Tensor, len(n.Inputs))
	n.SavedInputs = make([]bool, len(n.Inputs))
	for i, p := range n.Inputs {
		if !p.Value.IsEmpty() {
			n.SavedInputTensors[i] = p.Value.Copy()
			n.SavedInputs[i] = true
		}
	}
	if opts.SaveRNG {
		n.SavedRNGBlob = SaveRNGState(rngSeed)
		n.HasSavedRNG = true
	}
}

// CaptureCheckpointSnapshots traverses the graph once, after a complete
// forward pass, and for every checkpoint node overwrites SavedInputTensors
// with fresh copies of parents' current values. This lets marking happen
// before forward runs and snapshotting happen after.
func CaptureCheckpointSnapshots(root *graph.Node) {
	for _, n := range graph.TopoFrom(root) {
		if !n.IsCheckpoint {
			continue
		}
		if len(n.SavedInputTensors) != len(n.Inputs) {
			n.SavedInputTensors = make([]tensor.Tensor, len(n.Inputs))
			n.SavedInputs = make([]bool, len(n.Inputs))
		}
		for i, p := range n.Inputs {
			if !p.Value.IsEmpty() {
				n.SavedInputTensors[i] = p.Value.Copy()
				n.SavedInputs[i] = true
			}
		}
	}
}

// EvictNonCheckpointValues runs the two-phase protect-then-sweep pass
// described by the spec: phase 1 marks every node reachable from root as
// protected, stopping descent at checkpoint boundaries (their ancestors
// are not protected, since they are reachable via recomputation); phase 2
// clears Value and Tape on every node in the full reachable graph that is
// not protected, except leaf nodes, which are never evicted.
func EvictNonCheckpointValues(root *graph.Node) {
	protected := protect(root)
	var freed int
	for _, n := range graph.TopoFrom(root) {
		if protected[n] || n.Op == graph.OpLeaf {
			continue
		}
		if !n.Value.IsEmpty() {
			freed += n.Value.Numel() * 4
		}
		n.Value = tensor.Empty()
		n.Tape = nil
	}
	klog.V(2).Infof("checkpoint: eviction freed %s", ByteSize(freed))
}

func protect(root *graph.Node) map[*graph.Node]bool {
	protected := make(map[*graph.Node]bool)
	visited := make(map[*graph.Node]bool)
	queue := []*graph.Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		protected[n] = true
		if n.IsCheckpoint {
			continue
		}
		queue = append(queue, n.Inputs...)
	}
	return protected
}

// AutoCheckpointEveryN walks root breadth-first, marking every Nth
// non-leaf node visited, deterministically over BFS order.
func AutoCheckpointEveryN(root *graph.Node, n int, opts Options) {
	if n <= 0 {
		return
	}
	visited := make(map[*graph.Node]bool)
	queue := []*graph.Node{root}
	count := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cur.Op != graph.OpLeaf {
			count++
			if count%n == 0 {
				MarkNodeCheckpoint(cur, opts, 0)
			}
		}
		queue = append(queue, cur.Inputs...)
	}
}

// AutoCheckpointByDepth walks root breadth-first with depth tracking,
// marking every non-leaf node at depth >= d.
func AutoCheckpointByDepth(root *graph.Node, d int, opts Options) {
	type item struct {
		n     *graph.Node
		depth int
	}
	visited := make(map[*graph.Node]bool)
	queue := []item{{root, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur.n] {
			continue
		}
		visited[cur.n] = true
		if cur.n.Op != graph.OpLeaf && cur.depth >= d {
			MarkNodeCheckpoint(cur.n, opts, 0)
		}
		for _, p := range cur.n.Inputs {
			queue = append(queue, item{p, cur.depth + 1})
		}
	}
}

// RecomputeSubgraph refills n.Value from its saved inputs, recursing into
// checkpointed parents whose own values are missing. It returns an error
// of kind *errs.RecomputeFailedError if n is not a recomputable checkpoint
// or a saved/recursed parent value could not be obtained.
func RecomputeSubgraph(n *graph.Node) error {
	if !n.IsCheckpoint || len(n.SavedInputs) == 0 {
		return &errs.RecomputeFailedError{NodeName: n.Name, Reason: "node is not a checkpoint with saved inputs"}
	}
	if n.HasSavedRNG {
		// RestoreRNGState's *rand.Rand is not threaded any further: no op
		// in internal/ops currently consults an RNG during forward
		// evaluation, so there is nothing to hand it to. This call only
		// round-trips the seed; see DESIGN.md for why that is the extent
		// of RNG-capture fidelity this module provides today.
		RestoreRNGState(n.SavedRNGBlob)
	}
	for i, p := range n.Inputs {
		if i < len(n.SavedInputs) && n.SavedInputs[i] {
			p.Value = n.SavedInputTensors[i].Copy()
			continue
		}
		if p.Value.IsEmpty() {
			if p.IsCheckpoint {
				if err := RecomputeSubgraph(p); err != nil {
					return errors.Wrapf(err, "recompute_subgraph: parent %q of %q", p.Name, n.Name)
				}
			} else {
				return &errs.RecomputeFailedError{NodeName: n.Name, Reason: "parent \"" + p.Name + "\" has no value and is not a checkpoint"}
			}
		}
	}

	value, err := evalForward(n)
	if err != nil {
		return &errs.RecomputeFailedError{NodeName: n.Name, Reason: err.Error()}
	}
	n.Value = value
	graph.NotifyRecomputed(n)
	return nil
}

// EnsureParentValue guarantees n.Inputs[i].Value is present, restoring it in
// one of three ways: from n's own saved snapshot (the common case -- a
// checkpoint's own value survives eviction under protect(), so nothing ever
// drives RecomputeSubgraph(n) to repopulate the very parents it snapshotted;
// this is the only path that restores them), by recursively recomputing the
// parent if the parent is itself a checkpoint, or by failing with
// *errs.MissingActivationError if neither applies.
func EnsureParentValue(n *graph.Node, i int) error {
	p := n.Inputs[i]
	if !p.Value.IsEmpty() {
		return nil
	}
	if n.IsCheckpoint && i < len(n.SavedInputs) && n.SavedInputs[i] {
		p.Value = n.SavedInputTensors[i].Copy()
		graph.NotifyRecomputed(p)
		return nil
	}
	if p.IsCheckpoint {
		if err := RecomputeSubgraph(p); err != nil {
			return errors.Wrapf(err, "ensure_parent_value: parent %q of %q", p.Name, n.Name)
		}
		return nil
	}
	return &errs.MissingActivationError{ConsumerName: n.Name, ProducerName: p.Name}
}

func evalForward(n *graph.Node) (tensor.Tensor, error) {
	var result tensor.Tensor
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Errorf("panic in forward evaluator: %v", r)
			}
		}()
		result = ops.ForwardEvalNode(n)
	}()
	return result, err
}

// EnsureValuePresent returns true if n.Value is already materialized, or
// recomputes it when n is a checkpoint. Returns false if neither applies.
func EnsureValuePresent(n *graph.Node) bool {
	if !n.Value.IsEmpty() {
		return true
	}
	if n.IsCheckpoint {
		return RecomputeSubgraph(n) == nil
	}
	return false
}

// ComputeForwardValues walks root in topological order and evaluates each
// node's forward value. Unlike backward's fail-fast posture, a rule panic
// here is logged via the *errs.ForwardEvalError channel and traversal
// continues so other branches can still compute -- the asymmetry the
// design notes call out as load-bearing.
func ComputeForwardValues(root *graph.Node) {
	for _, n := range graph.TopoFrom(root) {
		if n.Op == graph.OpLeaf {
			continue
		}
		value, err := evalForward(n)
		if err != nil {
			klog.ErrorS(&errs.ForwardEvalError{NodeName: n.Name, Cause: err}, "forward evaluation failed, continuing")
			continue
		}
		n.Value = value
	}
}
