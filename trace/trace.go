// Package trace is the public graph tracer: captures every node created
// within a scoped region, deduplicated and ordered, with output detection
// and topological post-processing.
package trace

import (
	"github.com/Vishnu-BB/cgadimpl/internal/graph"
	"github.com/Vishnu-BB/cgadimpl/internal/trace"
)

// Tracer captures node creation on the calling goroutine between Start
// and Stop.
type Tracer = trace.Tracer

// MakeTracer returns a new, empty Tracer.
func MakeTracer() *Tracer {
	return trace.MakeTracer()
}

// CaptureGuard starts a tracer on construction and stops it on Stop, for
// the `defer trace.NewCaptureGuard(t).Stop()` pattern.
type CaptureGuard = trace.CaptureGuard

// NewCaptureGuard starts t and returns a guard whose Stop method stops it.
func NewCaptureGuard(t *Tracer) *CaptureGuard {
	return trace.NewCaptureGuard(t)
}

// NodeCreatedFunc is the debug hook's callback signature.
type NodeCreatedFunc = trace.NodeCreatedFunc

// PushNodeCreatedHook and PopNodeCreatedHook manage the calling
// goroutine's observer stack directly, for diagnostics that want to
// observe construction without a full Tracer.
func PushNodeCreatedHook(cb NodeCreatedFunc) {
	trace.PushNodeCreatedHook(cb)
}

func PopNodeCreatedHook() {
	trace.PopNodeCreatedHook()
}

// OnNodeCreated is exposed so op constructors outside this module's own
// ops package (a caller's custom op library) can participate in tracing.
func OnNodeCreated(n *graph.Node) {
	trace.OnNodeCreated(n)
}
