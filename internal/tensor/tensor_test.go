package tensor

import "testing"

func TestEmptySentinel(t *testing.T) {
	e := Empty()
	if !e.IsEmpty() {
		t.Fatalf("expected Empty() to be empty")
	}
	if e.Size() {
		t.Fatalf("expected Size() to be false for empty tensor")
	}
}

func TestAddBroadcastRow(t *testing.T) {
	a := New(2, 3, []float32{1, 2, 3, 4, 5, 6})
	b := New(1, 3, []float32{10, 20, 30})
	got := Add(a, b)
	want := New(2, 3, []float32{11, 22, 33, 14, 25, 36})
	if !Equal(got, want, 1e-6) {
		t.Fatalf("Add broadcast mismatch: got %v want %v", got.Data(), want.Data())
	}
}

func TestReduceBroadcastAdd(t *testing.T) {
	grad := New(2, 3, []float32{1, 1, 1, 1, 1, 1})
	got := ReduceBroadcastAdd(grad, 1, 3)
	want := New(1, 3, []float32{2, 2, 2})
	if !Equal(got, want, 1e-6) {
		t.Fatalf("ReduceBroadcastAdd mismatch: got %v want %v", got.Data(), want.Data())
	}
}

func TestMatMulShape(t *testing.T) {
	a := New(2, 3, []float32{1, 2, 3, 4, 5, 6})
	b := New(3, 2, []float32{1, 0, 0, 1, 1, 1})
	got := MatMul(a, b)
	if got.Rows() != 2 || got.Cols() != 2 {
		t.Fatalf("unexpected shape: %dx%d", got.Rows(), got.Cols())
	}
	want := New(2, 2, []float32{4, 5, 10, 11})
	if !Equal(got, want, 1e-6) {
		t.Fatalf("MatMul mismatch: got %v want %v", got.Data(), want.Data())
	}
}

func TestRandnDeterministic(t *testing.T) {
	a := Randn(4, 4, 7)
	b := Randn(4, 4, 7)
	if !Equal(a, b, 0) {
		t.Fatalf("Randn with identical seed should reproduce identical output")
	}
}

func TestCopyIsOwned(t *testing.T) {
	a := New(1, 2, []float32{1, 2})
	b := a.Copy()
	b.Set(0, 0, 99)
	if a.At(0, 0) == 99 {
		t.Fatalf("Copy aliased the original buffer")
	}
}

func TestGELUIsZeroAtZero(t *testing.T) {
	x := New(1, 1, []float32{0})
	got := GELU(x)
	if got.At(0, 0) != 0 {
		t.Fatalf("GELU(0) should be 0, got %v", got.At(0, 0))
	}
}
