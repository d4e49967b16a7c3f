// Package checkpoint is the public activation-checkpointing API: marking
// nodes as recomputation boundaries, snapshotting their inputs, evicting
// non-checkpoint activations, and recursively recomputing missing values.
package checkpoint

import (
	"github.com/Vishnu-BB/cgadimpl/internal/checkpoint"
	"github.com/Vishnu-BB/cgadimpl/internal/graph"
)

// Options configures MarkNodeCheckpoint.
type Options = checkpoint.Options

// WithSaveRNG returns Options with RNG capture enabled.
func WithSaveRNG() Options {
	return checkpoint.WithSaveRNG()
}

// Stats summarizes the materialized activations reachable from a root.
type Stats = checkpoint.Stats

// MarkNodeCheckpoint sets n as a recomputation boundary and snapshots its
// currently-available parent values. Idempotent.
func MarkNodeCheckpoint(n *graph.Node, opts Options, rngSeed int64) {
	checkpoint.MarkNodeCheckpoint(n, opts, rngSeed)
}

// CaptureCheckpointSnapshots refreshes every checkpoint's saved inputs
// from the current forward pass.
func CaptureCheckpointSnapshots(root *graph.Node) {
	checkpoint.CaptureCheckpointSnapshots(root)
}

// EvictNonCheckpointValues frees the Value and Tape of every non-protected
// node except leaves, which are never evicted.
func EvictNonCheckpointValues(root *graph.Node) {
	checkpoint.EvictNonCheckpointValues(root)
}

// AutoCheckpointEveryN marks every Nth non-leaf node visited in BFS order.
func AutoCheckpointEveryN(root *graph.Node, n int, opts Options) {
	checkpoint.AutoCheckpointEveryN(root, n, opts)
}

// AutoCheckpointByDepth marks every non-leaf node at depth >= d.
func AutoCheckpointByDepth(root *graph.Node, d int, opts Options) {
	checkpoint.AutoCheckpointByDepth(root, d, opts)
}

// RecomputeSubgraph refills n.Value from its saved inputs, recursing into
// checkpointed parents as needed.
func RecomputeSubgraph(n *graph.Node) error {
	return checkpoint.RecomputeSubgraph(n)
}

// EnsureValuePresent materializes n.Value if it is missing and n is a
// checkpoint.
func EnsureValuePresent(n *graph.Node) bool {
	return checkpoint.EnsureValuePresent(n)
}

// ComputeForwardValues evaluates every node's forward value in topological
// order, logging and continuing past any single node's evaluation failure.
func ComputeForwardValues(root *graph.Node) {
	checkpoint.ComputeForwardValues(root)
}

// EstimateBytes and ReportStats support memory-accounting diagnostics, such
// as the post-eviction report printed by cmd/cgadtool.
func EstimateBytes(root *graph.Node) Stats {
	return checkpoint.EstimateBytes(root)
}

func ReportStats(label string, s Stats) string {
	return checkpoint.ReportStats(label, s)
}
