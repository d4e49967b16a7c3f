package checkpoint

import (
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/Vishnu-BB/cgadimpl/internal/graph"
)

// ByteSize formats a byte count the way this package's diagnostics do,
// grounded in the estimate_bytes/print_activation_stats reporting from the
// original's checkpoint test.
func ByteSize(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Stats summarizes the materialized activations reachable from root, for
// before/after comparisons around an evict+backward run.
type Stats struct {
	MaterializedNodes int
	MaterializedBytes int
	CheckpointNodes   int
}

// EstimateBytes walks root and sums the byte size of every materialized
// (non-empty) value, mirroring the original's estimate_bytes helper.
func EstimateBytes(root *graph.Node) Stats {
	var s Stats
	for _, n := range graph.TopoFrom(root) {
		if n.IsCheckpoint {
			s.CheckpointNodes++
		}
		if !n.Value.IsEmpty() {
			s.MaterializedNodes++
			s.MaterializedBytes += n.Value.Numel() * 4
		}
	}
	return s
}

// ReportStats renders s the way print_activation_stats does, in bytes
// formatted via humanize rather than hand-divided MB.
func ReportStats(label string, s Stats) string {
	return label + ": " + ByteSize(s.MaterializedBytes) + " across " +
		strconv.Itoa(s.MaterializedNodes) + " materialized nodes (" +
		strconv.Itoa(s.CheckpointNodes) + " checkpoints)"
}
