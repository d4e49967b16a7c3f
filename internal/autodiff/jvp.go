package autodiff

import (
	"github.com/Vishnu-BB/cgadimpl/internal/graph"
	"github.com/Vishnu-BB/cgadimpl/internal/ops"
	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
)

// StepObserverJVP is invoked once per node during JVP -- the Go
// equivalent of the original's on_jvp_step diagnostic.
type StepObserverJVP func(n *graph.Node)

// JVPOptions configures a single JVP call.
type JVPOptions struct {
	OnStep StepObserverJVP
}

// JVP runs forward-mode differentiation from root with the given seed
// tangents, keyed by node, and returns root's resulting tangent. Unseeded
// nodes start from a zero tangent shaped like their value. A nil or empty
// seedMap returns a zero tensor shaped like root.Value.
func JVP(root *graph.Node, seedMap map[*graph.Node]tensor.Tensor) tensor.Tensor {
	return JVPWithOptions(root, seedMap, JVPOptions{})
}

// JVPWithOptions is JVP with an observer hook attached.
func JVPWithOptions(root *graph.Node, seedMap map[*graph.Node]tensor.Tensor, opts JVPOptions) tensor.Tensor {
	order := graph.TopoFrom(root)
	tangents := make(map[*graph.Node]tensor.Tensor, len(order))

	lookup := func(p *graph.Node) tensor.Tensor {
		if t, ok := tangents[p]; ok {
			return t
		}
		return tensor.ZerosLike(p.Value)
	}

	for _, n := range order {
		var t tensor.Tensor
		if seeded, ok := seedMap[n]; ok {
			t = seeded
		} else {
			t = tensor.ZerosLike(n.Value)
		}

		if rule, ok := ops.JVPLookup(n.Op); ok {
			t = rule(n, lookup)
		}

		tangents[n] = t
		if opts.OnStep != nil {
			opts.OnStep(n)
		}
	}

	if t, ok := tangents[root]; ok {
		return t
	}
	return tensor.ZerosLike(root.Value)
}
