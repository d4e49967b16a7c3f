// Package ops is the public graph-construction API: leaf constructors and
// the differentiable operations this module ships VJP/JVP rules for.
package ops

import (
	"github.com/Vishnu-BB/cgadimpl/internal/ops"
)

// Constant, Param, and MakeTensor build leaf nodes.
var (
	Constant   = ops.Constant
	Param      = ops.Param
	MakeTensor = ops.MakeTensor
)

// Add, Sub, Mul, MatMul, ReLU, GELU, Sum, MSELoss, and
// CrossEntropyWithLogits build the corresponding graph nodes, wiring their
// inputs and registering with the active trace hook (if any).
var (
	Add                    = ops.Add
	Sub                    = ops.Sub
	Mul                    = ops.Mul
	MatMul                 = ops.MatMul
	ReLU                   = ops.ReLU
	GELU                   = ops.GELU
	Sum                    = ops.Sum
	MSELoss                = ops.MSELoss
	CrossEntropyWithLogits = ops.CrossEntropyWithLogits
)

// ForwardEvalNode, VJPLookup, and JVPLookup expose the op library's
// dispatch tables to the autodiff and checkpoint packages' public wrappers.
var (
	ForwardEvalNode = ops.ForwardEvalNode
	VJPLookup       = ops.VJPLookup
	JVPLookup       = ops.JVPLookup
)

// VJP and JVP are the rule function types.
type (
	VJP           = ops.VJP
	JVP           = ops.JVP
	TangentLookup = ops.TangentLookup
)
