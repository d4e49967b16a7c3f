package ops

import (
	"github.com/Vishnu-BB/cgadimpl/internal/graph"
	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
)

// TangentLookup returns a parent's current tangent, defaulting to a zero
// tensor shaped like the parent's value when it has none.
type TangentLookup func(p *graph.Node) tensor.Tensor

// JVP reads (n, parent-tangent-lookup) and returns n's tangent.
type JVP func(n *graph.Node, lookup TangentLookup) tensor.Tensor

var jvpTable = map[graph.Op]JVP{
	graph.OpAdd: func(n *graph.Node, lookup TangentLookup) tensor.Tensor {
		a, b := n.Inputs[0], n.Inputs[1]
		return tensor.Add(lookup(a), lookup(b))
	},
	graph.OpSub: func(n *graph.Node, lookup TangentLookup) tensor.Tensor {
		a, b := n.Inputs[0], n.Inputs[1]
		return tensor.Sub(lookup(a), lookup(b))
	},
	graph.OpMul: func(n *graph.Node, lookup TangentLookup) tensor.Tensor {
		a, b := n.Inputs[0], n.Inputs[1]
		return tensor.Add(tensor.Mul(lookup(a), b.Value), tensor.Mul(a.Value, lookup(b)))
	},
	graph.OpMatMul: func(n *graph.Node, lookup TangentLookup) tensor.Tensor {
		a, b := n.Inputs[0], n.Inputs[1]
		return tensor.Add(tensor.MatMul(lookup(a), b.Value), tensor.MatMul(a.Value, lookup(b)))
	},
	graph.OpReLU: func(n *graph.Node, lookup TangentLookup) tensor.Tensor {
		a := n.Inputs[0]
		return tensor.Mul(lookup(a), tensor.ReLUMask(a.Value))
	},
	graph.OpGELU: func(n *graph.Node, lookup TangentLookup) tensor.Tensor {
		a := n.Inputs[0]
		return tensor.Mul(lookup(a), tensor.GELUGrad(a.Value))
	},
	graph.OpSum: func(n *graph.Node, lookup TangentLookup) tensor.Tensor {
		a := n.Inputs[0]
		return tensor.SumAll(lookup(a))
	},
	graph.OpMSELoss: func(n *graph.Node, lookup TangentLookup) tensor.Tensor {
		pred, target := n.Inputs[0], n.Inputs[1]
		diff := tensor.Sub(pred.Value, target.Value)
		dDiff := tensor.Sub(lookup(pred), lookup(target))
		numel := float32(pred.Value.Numel())
		return tensor.Scale(tensor.SumAll(tensor.Mul(diff, dDiff)), 2/numel)
	},
}

// JVPLookup returns the registered JVP rule for op, or (nil, false) if
// none is registered.
func JVPLookup(op graph.Op) (JVP, bool) {
	rule, ok := jvpTable[op]
	return rule, ok
}
