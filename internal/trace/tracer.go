package trace

import (
	"sync"

	"k8s.io/klog/v2"

	"github.com/Vishnu-BB/cgadimpl/internal/graph"
)

// Tracer captures every node created within a scoped region on the calling
// goroutine, preserving insertion order and deduplicating by node identity.
// All public methods take Tracer's internal lock, so a single Tracer is
// safe to share across goroutines even though the observer stack it
// installs itself into is per-goroutine.
type Tracer struct {
	mu       sync.Mutex
	captured []*graph.Node
	seen     map[*graph.Node]bool
	outputs  []*graph.Node
}

// MakeTracer returns a new, empty Tracer.
func MakeTracer() *Tracer {
	return &Tracer{seen: make(map[*graph.Node]bool)}
}

// Start installs this tracer's capture callback on the calling goroutine's
// observer stack. Nesting is supported: the most recently started tracer
// on this goroutine receives events until Stop is called.
func (t *Tracer) Start() {
	PushNodeCreatedHook(t.onNodeCreated)
}

// Stop pops the top observer off the calling goroutine's stack.
func (t *Tracer) Stop() {
	PopNodeCreatedHook()
}

func (t *Tracer) onNodeCreated(n *graph.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seen[n] {
		return
	}
	t.seen[n] = true
	t.captured = append(t.captured, n)
}

// CapturedNodes returns nodes in insertion order.
func (t *Tracer) CapturedNodes() []*graph.Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*graph.Node, len(t.captured))
	copy(out, t.captured)
	return out
}

// MarkOutput records n as an explicit output of the captured region.
func (t *Tracer) MarkOutput(n *graph.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outputs = append(t.outputs, n)
}

// Outputs returns the explicit outputs in mark order, or -- if none were
// marked -- every captured node that is not referenced as an input by any
// other captured node (the sinks of the captured subgraph). If both sets
// are empty, the last captured node is returned as a fallback.
func (t *Tracer) Outputs() []*graph.Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outputsLocked()
}

// TopoSort returns nodes in parent-before-child order, restricted to the
// captured set: DFS from each detected output over Inputs filtered to the
// captured set, emitting in post-order (which already places every parent
// before its children, so the result is not reversed), with nodes
// unreachable from any output appended afterward so none are dropped.
func (t *Tracer) TopoSort() []*graph.Node {
	t.mu.Lock()
	capturedSet := make(map[*graph.Node]bool, len(t.captured))
	for _, n := range t.captured {
		capturedSet[n] = true
	}
	outputs := t.outputsLocked()
	captured := make([]*graph.Node, len(t.captured))
	copy(captured, t.captured)
	t.mu.Unlock()

	var order []*graph.Node
	visited := make(map[*graph.Node]bool)
	var visit func(n *graph.Node)
	visit = func(n *graph.Node) {
		if visited[n] || !capturedSet[n] {
			return
		}
		visited[n] = true
		for _, p := range n.Inputs {
			visit(p)
		}
		order = append(order, n)
	}
	for _, out := range outputs {
		visit(out)
	}
	for _, n := range captured {
		if !visited[n] {
			visited[n] = true
			order = append(order, n)
		}
	}
	return order
}

// outputsLocked is Outputs' logic, callable while t.mu is already held.
func (t *Tracer) outputsLocked() []*graph.Node {
	if len(t.outputs) > 0 {
		out := make([]*graph.Node, len(t.outputs))
		copy(out, t.outputs)
		return out
	}
	referenced := make(map[*graph.Node]bool)
	for _, n := range t.captured {
		for _, p := range n.Inputs {
			referenced[p] = true
		}
	}
	var sinks []*graph.Node
	for _, n := range t.captured {
		if !referenced[n] {
			sinks = append(sinks, n)
		}
	}
	if len(sinks) > 0 {
		return sinks
	}
	if len(t.captured) > 0 {
		return []*graph.Node{t.captured[len(t.captured)-1]}
	}
	return nil
}

// Clear resets all internal state.
func (t *Tracer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.captured = nil
	t.seen = make(map[*graph.Node]bool)
	t.outputs = nil
	klog.V(3).Infof("tracer cleared")
}

// CaptureGuard starts a tracer on construction and stops it on scope exit,
// for the common `defer trace.NewCaptureGuard(t).Stop()` pattern.
type CaptureGuard struct {
	tracer *Tracer
}

// NewCaptureGuard starts t and returns a guard whose Stop method stops it.
func NewCaptureGuard(t *Tracer) *CaptureGuard {
	t.Start()
	return &CaptureGuard{tracer: t}
}

// Stop stops the guarded tracer. Safe to call via defer.
func (g *CaptureGuard) Stop() {
	g.tracer.Stop()
}
