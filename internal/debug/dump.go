// Package debug provides topo-ordered inspection and GraphViz export of a
// graph, the Go equivalent of the original's print_all_values/
// print_all_grads/dump_dot/dump_vjp_dot/dump_jvp_dot family.
package debug

import (
	"fmt"
	"io"

	"github.com/Vishnu-BB/cgadimpl/internal/graph"
)

// DumpValues writes root's topo-ordered values to w, one line per node.
func DumpValues(w io.Writer, root *graph.Node) {
	for _, n := range graph.TopoFrom(root) {
		fmt.Fprintf(w, "%s [%s] value=%s\n", n.Name, n.Op, n.Value)
	}
}

// DumpGrads writes root's topo-ordered grads to w, one line per node.
func DumpGrads(w io.Writer, root *graph.Node) {
	for _, n := range graph.TopoFrom(root) {
		fmt.Fprintf(w, "%s [%s] grad=%s\n", n.Name, n.Op, n.Grad)
	}
}

// DotMode selects which edge set WriteDOT renders.
type DotMode int

const (
	// DotForward renders parent -> child edges (the dataflow direction).
	DotForward DotMode = iota
	// DotVJP renders child -> parent edges, the direction gradients flow
	// during backward.
	DotVJP
	// DotJVP renders parent -> child edges colored green for tangent flow.
	DotJVP
)

// WriteDOT renders root's reachable subgraph as a GraphViz .dot document.
func WriteDOT(w io.Writer, root *graph.Node, mode DotMode) {
	fmt.Fprintln(w, "digraph G {")
	for _, n := range graph.TopoFrom(root) {
		label := fmt.Sprintf("%s\\n%s", n.Name, n.Op)
		fmt.Fprintf(w, "  \"%s\" [label=\"%s\"];\n", n.ID, label)
		for _, p := range n.Inputs {
			switch mode {
			case DotVJP:
				fmt.Fprintf(w, "  \"%s\" -> \"%s\" [color=red];\n", n.ID, p.ID)
			case DotJVP:
				fmt.Fprintf(w, "  \"%s\" -> \"%s\" [color=green];\n", p.ID, n.ID)
			default:
				fmt.Fprintf(w, "  \"%s\" -> \"%s\";\n", p.ID, n.ID)
			}
		}
	}
	fmt.Fprintln(w, "}")
}
