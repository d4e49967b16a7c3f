// Package tensor implements the dense 2-D float32 tensor consumed by the
// graph, ops, and checkpoint packages. It intentionally does not support
// multiple dtypes, devices, or backends: the spec this module implements
// restricts itself to dense numeric tensors, so there is no generic
// Backend abstraction here.
package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// Tensor is a dense, row-major, 2-D float32 matrix. The zero value is the
// empty sentinel described by the data model: Rows == 0 && Cols == 0 means
// "not materialized", distinct from a 1x1 or 0-sized matrix with data.
type Tensor struct {
	rows, cols int
	data       []float32
}

// Empty returns the empty sentinel tensor.
func Empty() Tensor {
	return Tensor{}
}

// IsEmpty reports whether t is the empty sentinel (spec's size() == false).
func (t Tensor) IsEmpty() bool {
	return t.rows == 0 && t.cols == 0
}

// New builds a tensor from row-major data. Panics if len(data) != rows*cols,
// mirroring the teacher stack's "shape validation should prevent this" panic
// discipline for programmer errors rather than runtime data errors.
func New(rows, cols int, data []float32) Tensor {
	if len(data) != rows*cols {
		panic(fmt.Sprintf("tensor.New: data length %d does not match shape %dx%d", len(data), rows, cols))
	}
	return Tensor{rows: rows, cols: cols, data: data}
}

// Zeros returns an r x c tensor of zeros.
func Zeros(r, c int) Tensor {
	return Tensor{rows: r, cols: c, data: make([]float32, r*c)}
}

// ZerosLike returns a zero tensor with the same shape as t.
func ZerosLike(t Tensor) Tensor {
	return Zeros(t.rows, t.cols)
}

// Ones returns an r x c tensor of ones.
func Ones(r, c int) Tensor {
	out := Zeros(r, c)
	for i := range out.data {
		out.data[i] = 1
	}
	return out
}

// OnesLike returns a ones tensor with the same shape as t.
func OnesLike(t Tensor) Tensor {
	return Ones(t.rows, t.cols)
}

// Randn returns an r x c tensor sampled from a standard normal distribution
// using a Box-Muller transform, seeded deterministically so graph
// construction is reproducible across runs -- unlike the teacher's Randn,
// which draws from the shared global math/rand source.
func Randn(r, c int, seed int64) Tensor {
	out := Zeros(r, c)
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic ML sampling, not security-sensitive
	for i := 0; i < len(out.data); i += 2 {
		u1 := rng.Float64()
		u2 := rng.Float64()
		z0 := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
		out.data[i] = float32(z0)
		if i+1 < len(out.data) {
			z1 := math.Sqrt(-2*math.Log(u1)) * math.Sin(2*math.Pi*u2)
			out.data[i+1] = float32(z1)
		}
	}
	return out
}

// Rows returns the row count, 0 for the empty sentinel.
func (t Tensor) Rows() int { return t.rows }

// Cols returns the column count, 0 for the empty sentinel.
func (t Tensor) Cols() int { return t.cols }

// Numel returns the element count.
func (t Tensor) Numel() int { return t.rows * t.cols }

// Size reports whether t holds data (the inverse of IsEmpty, named to match
// the consumed-tensor-library contract's size()).
func (t Tensor) Size() bool { return !t.IsEmpty() }

// SameShape reports whether t and other have identical dimensions.
func (t Tensor) SameShape(other Tensor) bool {
	return t.rows == other.rows && t.cols == other.cols
}

// At returns the element at (i, j).
func (t Tensor) At(i, j int) float32 {
	return t.data[i*t.cols+j]
}

// Set assigns the element at (i, j).
func (t Tensor) Set(i, j int, v float32) {
	t.data[i*t.cols+j] = v
}

// Data returns the backing row-major slice. Callers that intend to mutate it
// should Copy first; Data does not copy.
func (t Tensor) Data() []float32 { return t.data }

// Copy returns an owned deep duplicate, used wherever the spec requires a
// "copy that yields an owned duplicate" -- most importantly checkpoint input
// snapshots, which must survive eviction of the producing node.
func (t Tensor) Copy() Tensor {
	if t.IsEmpty() {
		return Empty()
	}
	out := make([]float32, len(t.data))
	copy(out, t.data)
	return Tensor{rows: t.rows, cols: t.cols, data: out}
}

// Add returns a + b, broadcasting whichever operand has exactly one row
// across the other's rows when the shapes differ (the row-bias pattern used
// throughout the op library, e.g. matmul(x, W) + b).
func Add(a, b Tensor) Tensor {
	if a.SameShape(b) {
		out := Zeros(a.rows, a.cols)
		for i := range out.data {
			out.data[i] = a.data[i] + b.data[i]
		}
		return out
	}
	if b.rows == 1 && b.cols == a.cols {
		out := Zeros(a.rows, a.cols)
		for i := 0; i < a.rows; i++ {
			for j := 0; j < a.cols; j++ {
				out.Set(i, j, a.At(i, j)+b.At(0, j))
			}
		}
		return out
	}
	if a.rows == 1 && a.cols == b.cols {
		return Add(b, a)
	}
	panic(fmt.Sprintf("tensor.Add: incompatible shapes %dx%d and %dx%d", a.rows, a.cols, b.rows, b.cols))
}

// Sub returns a - b, same-shape only.
func Sub(a, b Tensor) Tensor {
	if !a.SameShape(b) {
		panic(fmt.Sprintf("tensor.Sub: shape mismatch %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	out := Zeros(a.rows, a.cols)
	for i := range out.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return out
}

// Mul returns the element-wise product a * b, same-shape only.
func Mul(a, b Tensor) Tensor {
	if !a.SameShape(b) {
		panic(fmt.Sprintf("tensor.Mul: shape mismatch %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	out := Zeros(a.rows, a.cols)
	for i := range out.data {
		out.data[i] = a.data[i] * b.data[i]
	}
	return out
}

// Scale returns t scaled by a scalar.
func Scale(t Tensor, s float32) Tensor {
	out := Zeros(t.rows, t.cols)
	for i := range out.data {
		out.data[i] = t.data[i] * s
	}
	return out
}

// MatMul returns a @ b.
func MatMul(a, b Tensor) Tensor {
	if a.cols != b.rows {
		panic(fmt.Sprintf("tensor.MatMul: incompatible shapes %dx%d and %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	out := Zeros(a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			aik := a.At(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				out.Set(i, j, out.At(i, j)+aik*b.At(k, j))
			}
		}
	}
	return out
}

// Transpose returns t^T.
func Transpose(t Tensor) Tensor {
	out := Zeros(t.cols, t.rows)
	for i := 0; i < t.rows; i++ {
		for j := 0; j < t.cols; j++ {
			out.Set(j, i, t.At(i, j))
		}
	}
	return out
}

// SumAll reduces t to a 1x1 tensor holding the sum of all elements.
func SumAll(t Tensor) Tensor {
	var sum float32
	for _, v := range t.data {
		sum += v
	}
	return New(1, 1, []float32{sum})
}

// ReduceBroadcastAdd reduces grad to a rows x cols shape by summing rows, the
// inverse of the row-broadcast performed by Add -- grounded in the teacher
// stack's reduceBroadcast helper, simplified to the single broadcast case
// this tensor type supports (a lone row broadcast across many rows).
func ReduceBroadcastAdd(grad Tensor, rows, cols int) Tensor {
	if grad.rows == rows && grad.cols == cols {
		return grad.Copy()
	}
	if rows == 1 && grad.cols == cols {
		out := Zeros(1, cols)
		for i := 0; i < grad.rows; i++ {
			for j := 0; j < cols; j++ {
				out.Set(0, j, out.At(0, j)+grad.At(i, j))
			}
		}
		return out
	}
	panic(fmt.Sprintf("tensor.ReduceBroadcastAdd: cannot reduce %dx%d to %dx%d", grad.rows, grad.cols, rows, cols))
}

// ReLU applies max(0, x) element-wise.
func ReLU(t Tensor) Tensor {
	out := Zeros(t.rows, t.cols)
	for i, v := range t.data {
		if v > 0 {
			out.data[i] = v
		}
	}
	return out
}

// ReLUMask returns a tensor of 1s where t > 0 and 0s elsewhere, used to
// build ReLU's gradient by element-wise multiplication.
func ReLUMask(t Tensor) Tensor {
	out := Zeros(t.rows, t.cols)
	for i, v := range t.data {
		if v > 0 {
			out.data[i] = 1
		}
	}
	return out
}

const (
	sqrt2OverPi = 0.7978845608028654
	geluCoeff   = 0.044715
)

// GELU applies the tanh-approximation of the Gaussian Error Linear Unit,
// matching the formula used throughout the pack's tensor libraries.
func GELU(t Tensor) Tensor {
	out := Zeros(t.rows, t.cols)
	for i, v := range t.data {
		v64 := float64(v)
		inner := sqrt2OverPi * (v64 + geluCoeff*v64*v64*v64)
		out.data[i] = float32(0.5 * v64 * (1 + math.Tanh(inner)))
	}
	return out
}

// GELUGrad returns d/dx GELU(x) evaluated at t, for use by the VJP rule.
func GELUGrad(t Tensor) Tensor {
	out := Zeros(t.rows, t.cols)
	for i, v := range t.data {
		x := float64(v)
		x3 := x * x * x
		inner := sqrt2OverPi * (x + geluCoeff*x3)
		tanhInner := math.Tanh(inner)
		sech2 := 1 - tanhInner*tanhInner
		dInner := sqrt2OverPi * (1 + 3*geluCoeff*x*x)
		out.data[i] = float32(0.5*(1+tanhInner) + 0.5*x*sech2*dInner)
	}
	return out
}

// Equal reports whether a and b have the same shape and are element-wise
// equal within tol.
func Equal(a, b Tensor, tol float32) bool {
	if !a.SameShape(b) {
		return false
	}
	for i := range a.data {
		d := a.data[i] - b.data[i]
		if d < 0 {
			d = -d
		}
		if d > tol {
			return false
		}
	}
	return true
}

func (t Tensor) String() string {
	if t.IsEmpty() {
		return "Tensor(empty)"
	}
	return fmt.Sprintf("Tensor(%dx%d)", t.rows, t.cols)
}
