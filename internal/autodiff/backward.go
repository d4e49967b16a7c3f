// Package autodiff implements the reverse-mode (backward) and forward-mode
// (jvp) differentiation engines over the graph package's Node, dispatching
// to the ops package's VJP/JVP rule tables and falling through to the
// checkpoint package whenever a parent's value has been evicted.
package autodiff

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/Vishnu-BB/cgadimpl/internal/checkpoint"
	"github.com/Vishnu-BB/cgadimpl/internal/errs"
	"github.com/Vishnu-BB/cgadimpl/internal/graph"
	"github.com/Vishnu-BB/cgadimpl/internal/ops"
	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
)

// StepObserver is invoked once per node during backward, independent of
// the tracer's construction-time hook -- the Go equivalent of the
// original's on_backprop_step diagnostic.
type StepObserver func(n *graph.Node, gy tensor.Tensor)

// BackwardOptions configures a single Backward call. The zero value runs
// with no step observer, matching the cheap default case.
type BackwardOptions struct {
	OnStep StepObserver
}

// Backward runs reverse-mode differentiation from root. If seed is the
// empty tensor, the root's grad is seeded with ones shaped like its value
// (a 1x1 ones tensor for a scalar root) when root requires grad; otherwise
// seed is used directly.
func Backward(root *graph.Node, seed tensor.Tensor) error {
	return BackwardWithOptions(root, seed, BackwardOptions{})
}

// BackwardWithOptions is Backward with an observer hook attached.
func BackwardWithOptions(root *graph.Node, seed tensor.Tensor, opts BackwardOptions) error {
	order := graph.TopoFrom(root)

	if root.RequiresGrad {
		if seed.IsEmpty() {
			root.Grad = tensor.OnesLike(root.Value)
		} else {
			root.Grad = seed
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if !n.RequiresGrad {
			continue
		}
		gy := n.Grad
		if gy.IsEmpty() {
			continue
		}

		if n.IsCheckpoint && n.Value.IsEmpty() {
			if err := checkpoint.RecomputeSubgraph(n); err != nil {
				return errors.Wrapf(err, "backward: recomputing node %q", n.Name)
			}
		}

		for pi := range n.Inputs {
			if err := checkpoint.EnsureParentValue(n, pi); err != nil {
				return errors.Wrapf(err, "backward: node %q", n.Name)
			}
		}

		if opts.OnStep != nil {
			opts.OnStep(n, gy)
		}

		rule, ok := ops.VJPLookup(n.Op)
		if !ok {
			klog.Warningf("backward: no vjp rule registered for op %v at node %q, skipping", n.Op, n.Name)
			continue
		}

		if err := invokeVJP(rule, n, gy); err != nil {
			return &errs.VJPExceptionError{NodeName: n.Name, Cause: err}
		}
	}
	return nil
}

func invokeVJP(rule ops.VJP, n *graph.Node, gy tensor.Tensor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in vjp rule: %v", r)
		}
	}()
	rule(n, gy)
	return nil
}
