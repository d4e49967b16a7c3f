// Package errs defines the error-kind taxonomy used across the graph,
// checkpoint, and autodiff packages. Each kind is its own exported type so
// callers can errors.As against the kind they care about rather than
// matching on formatted strings.
package errs

import "fmt"

// MissingActivationError reports that a parent's value was empty during
// backward and the parent is not a checkpoint, so it cannot be recovered.
// Fatal: wraps both the consumer (child) and producer (parent) identities.
type MissingActivationError struct {
	ConsumerName string
	ProducerName string
}

func (e *MissingActivationError) Error() string {
	return fmt.Sprintf("missing activation: node %q needs value from %q, which is empty and not a checkpoint",
		e.ConsumerName, e.ProducerName)
}

// RecomputeFailedError reports that recompute_subgraph could not restore a
// node's value.
type RecomputeFailedError struct {
	NodeName string
	Reason   string
}

func (e *RecomputeFailedError) Error() string {
	return fmt.Sprintf("recompute failed for node %q: %s", e.NodeName, e.Reason)
}

// VJPExceptionError wraps a panic/error raised by a VJP rule during
// backward, identifying the node that was being processed.
type VJPExceptionError struct {
	NodeName string
	Cause    error
}

func (e *VJPExceptionError) Error() string {
	return fmt.Sprintf("vjp rule for node %q failed: %v", e.NodeName, e.Cause)
}

func (e *VJPExceptionError) Unwrap() error { return e.Cause }

// ForwardEvalError wraps a panic/error raised by a forward evaluator during
// compute_forward_values. Unlike the three kinds above, this one is
// non-fatal by policy: the caller logs it and keeps walking the graph.
type ForwardEvalError struct {
	NodeName string
	Cause    error
}

func (e *ForwardEvalError) Error() string {
	return fmt.Sprintf("forward evaluation for node %q failed: %v", e.NodeName, e.Cause)
}

func (e *ForwardEvalError) Unwrap() error { return e.Cause }
