// Command cgadtool builds a small demo network, runs a forward pass with
// activation checkpointing, evicts, then runs backward, and prints the
// post-eviction activation stats and the resulting gradients' shapes -- a
// smoke-test driver for the autodiff/checkpoint packages,
// not a production training loop.
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/Vishnu-BB/cgadimpl/autodiff"
	"github.com/Vishnu-BB/cgadimpl/checkpoint"
	"github.com/Vishnu-BB/cgadimpl/ops"
	"github.com/Vishnu-BB/cgadimpl/tensor"
)

var (
	flagEveryN = flag.Int("every-n", 2, "auto-checkpoint every Nth non-leaf node")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	x := ops.Constant(tensor.Randn(4, 3, 1), "x")
	w1 := ops.Param(tensor.Randn(3, 5, 2), "w1")
	b1 := ops.Param(tensor.Zeros(1, 5), "b1")
	w2 := ops.Param(tensor.Randn(5, 1, 3), "w2")
	b2 := ops.Param(tensor.Zeros(1, 1), "b2")

	h := ops.GELU(ops.Add(ops.MatMul(x, w1), b1))
	out := ops.Add(ops.MatMul(h, w2), b2)
	loss := ops.Sum(out)

	checkpoint.AutoCheckpointEveryN(loss, *flagEveryN, checkpoint.Options{})
	checkpoint.ComputeForwardValues(loss)
	checkpoint.CaptureCheckpointSnapshots(loss)
	checkpoint.EvictNonCheckpointValues(loss)

	before := checkpoint.EstimateBytes(loss)
	fmt.Fprintln(os.Stdout, checkpoint.ReportStats("post-eviction", before))

	if err := autodiff.Backward(loss, tensor.Empty()); err != nil {
		klog.Fatalf("backward failed: %+v", err)
	}

	fmt.Fprintf(os.Stdout, "w1.grad shape: %dx%d\n", w1.Grad.Rows(), w1.Grad.Cols())
	fmt.Fprintf(os.Stdout, "w2.grad shape: %dx%d\n", w2.Grad.Rows(), w2.Grad.Cols())
}
