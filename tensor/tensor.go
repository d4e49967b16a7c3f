// Package tensor is the public dense 2-D float32 tensor type this module
// builds its dataflow graph on top of.
//
// Example:
//
//	x := tensor.New(2, 3, []float32{1, 2, 3, 4, 5, 6})
//	y := tensor.Randn(2, 3, 42)
//	z := tensor.Add(x, y)
package tensor

import "github.com/Vishnu-BB/cgadimpl/internal/tensor"

// Tensor is a dense, row-major 2-D float32 matrix.
type Tensor = tensor.Tensor

// Empty, New, Zeros, Ones, Randn, ZerosLike, OnesLike construct tensors.
var (
	Empty     = tensor.Empty
	New       = tensor.New
	Zeros     = tensor.Zeros
	Ones      = tensor.Ones
	Randn     = tensor.Randn
	ZerosLike = tensor.ZerosLike
	OnesLike  = tensor.OnesLike
)

// Add, Sub, Mul, Scale, MatMul, Transpose, SumAll, ReLU, GELU, Equal are
// the arithmetic and elementwise operations consumed by the op library.
var (
	Add                = tensor.Add
	Sub                = tensor.Sub
	Mul                = tensor.Mul
	Scale              = tensor.Scale
	MatMul             = tensor.MatMul
	Transpose          = tensor.Transpose
	SumAll             = tensor.SumAll
	ReLU               = tensor.ReLU
	GELU               = tensor.GELU
	Equal              = tensor.Equal
	ReduceBroadcastAdd = tensor.ReduceBroadcastAdd
)
