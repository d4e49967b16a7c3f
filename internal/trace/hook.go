// Package trace implements the thread-scoped node-creation callback stack
// and the Tracer that consumes it. This is the sole coupling between op
// constructors and any diagnostic/capture subsystem -- graph itself knows
// nothing about this package.
package trace

import "github.com/Vishnu-BB/cgadimpl/internal/graph"

// NodeCreatedFunc is invoked once per node, at construction time, by
// whichever op constructor just built it.
type NodeCreatedFunc func(n *graph.Node)

var hooks = newThreadLocalHooks()

// PushNodeCreatedHook installs cb as the top of the current goroutine's
// observer stack. The most recently pushed hook is the one OnNodeCreated
// invokes; nesting is supported.
func PushNodeCreatedHook(cb NodeCreatedFunc) {
	hooks.push(cb)
}

// PopNodeCreatedHook removes the top of the current goroutine's observer
// stack, regardless of identity -- pairing push/pop is the caller's
// responsibility, matching the original's LIFO discipline.
func PopNodeCreatedHook() {
	hooks.pop()
}

// OnNodeCreated invokes the top-of-stack callback for the calling
// goroutine, if any. Op constructors call this once they have finished
// building a node.
func OnNodeCreated(n *graph.Node) {
	if cb := hooks.top(); cb != nil {
		cb(n)
	}
}
