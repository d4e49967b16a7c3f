package ops

import (
	"fmt"
	"math"

	"github.com/Vishnu-BB/cgadimpl/internal/graph"
	"github.com/Vishnu-BB/cgadimpl/internal/tensor"
)

// ForwardEvalNode is the pure function of a node's op tag and its inputs'
// current values, consumed by compute_forward_values and recompute_subgraph
// alike. It panics on malformed input (shape mismatches, wrong arity) --
// those are programmer errors, not data errors -- and the callers that
// invoke it recover that panic and convert it to an error: a
// ForwardEvalError in ComputeForwardValues, a RecomputeFailedError in
// RecomputeSubgraph.
func ForwardEvalNode(n *graph.Node) tensor.Tensor {
	switch n.Op {
	case graph.OpLeaf:
		return n.Value
	case graph.OpAdd:
		return tensor.Add(n.Inputs[0].Value, n.Inputs[1].Value)
	case graph.OpSub:
		return tensor.Sub(n.Inputs[0].Value, n.Inputs[1].Value)
	case graph.OpMul:
		return tensor.Mul(n.Inputs[0].Value, n.Inputs[1].Value)
	case graph.OpMatMul:
		return tensor.MatMul(n.Inputs[0].Value, n.Inputs[1].Value)
	case graph.OpReLU:
		return tensor.ReLU(n.Inputs[0].Value)
	case graph.OpGELU:
		return tensor.GELU(n.Inputs[0].Value)
	case graph.OpSum:
		return tensor.SumAll(n.Inputs[0].Value)
	case graph.OpMSELoss:
		return mseLossForward(n.Inputs[0].Value, n.Inputs[1].Value)
	case graph.OpCrossEntropyWithLogits:
		return crossEntropyForward(n.Inputs[0].Value, n.Inputs[1].Value)
	default:
		panic(fmt.Sprintf("ForwardEvalNode: unhandled op %v", n.Op))
	}
}

func mseLossForward(pred, target tensor.Tensor) tensor.Tensor {
	diff := tensor.Sub(pred, target)
	sq := tensor.Mul(diff, diff)
	sum := tensor.SumAll(sq)
	n := float32(pred.Numel())
	return tensor.Scale(sum, 1/n)
}

func softmaxRows(logits tensor.Tensor) tensor.Tensor {
	out := tensor.Zeros(logits.Rows(), logits.Cols())
	for i := 0; i < logits.Rows(); i++ {
		max := float32(math.Inf(-1))
		for j := 0; j < logits.Cols(); j++ {
			if v := logits.At(i, j); v > max {
				max = v
			}
		}
		var sum float32
		for j := 0; j < logits.Cols(); j++ {
			e := float32(math.Exp(float64(logits.At(i, j) - max)))
			out.Set(i, j, e)
			sum += e
		}
		for j := 0; j < logits.Cols(); j++ {
			out.Set(i, j, out.At(i, j)/sum)
		}
	}
	return out
}

func crossEntropyForward(logits, target tensor.Tensor) tensor.Tensor {
	probs := softmaxRows(logits)
	var loss float32
	for i := 0; i < logits.Rows(); i++ {
		for j := 0; j < logits.Cols(); j++ {
			t := target.At(i, j)
			if t == 0 {
				continue
			}
			loss -= t * float32(math.Log(float64(probs.At(i, j)+1e-12)))
		}
	}
	return tensor.New(1, 1, []float32{loss / float32(logits.Rows())})
}
