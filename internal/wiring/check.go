// Package wiring implements stage 5, the Wiring checker (spec §4.6): it
// builds the data-flow graph from resolved producer/consumer edges and
// checks it for cycles, grounded directly on the teacher's two
// tsort.New()/AddEdge/Sort call sites in compile.go (there used for
// YANG module-import and include-cycle detection; here retargeted at
// ODL's producer/consumer graph).
package wiring

import (
	"fmt"
	"strings"

	"github.com/danos/utils/tsort"

	"github.com/odl-lang/odlc/internal/cerrors"
	"github.com/odl-lang/odlc/internal/ir"
)

// Result carries the non-fatal findings alongside a possible error.
type Result struct {
	// Orphans lists stack paths of nodes that declare an output with no
	// reachable consumer in the tree. Per §4.6 this is a warning, not an
	// error — the IR may have terminal outputs consumed externally.
	Orphans []string
}

// Check runs stage 5 over a resolved tree.
func Check(root *ir.Node) (Result, error) {
	nodes := collectAll(root)

	g := tsort.New()
	for _, n := range nodes {
		g.AddVertex(n.StackPath)
	}
	consumedBy := make(map[string][]string, len(nodes)) // producer path -> consumer paths
	for _, n := range nodes {
		for _, in := range n.Resolved {
			for _, p := range producerPaths(in) {
				// @prev/@history name a producer's value from a different
				// iteration of the same static subtree, not a same-pass
				// dependency. Stack paths carry no iteration number, so
				// only plain (unmodified) edges join the cycle check;
				// every edge still counts toward orphan tracking below.
				if in.Modifier == "" {
					g.AddEdge(n.StackPath, p)
				}
				consumedBy[p] = append(consumedBy[p], n.StackPath)
			}
		}
	}

	if _, err := g.Sort(); err != nil {
		return Result{}, cerrors.New(cerrors.KindCircularDependency, root.StackPath,
			"cycle in data-flow graph: %s", err)
	}

	var orphans []string
	for _, n := range nodes {
		if n.Wiring.Output == "" {
			continue
		}
		if len(consumedBy[n.StackPath]) == 0 {
			orphans = append(orphans, n.StackPath)
		}
	}

	return Result{Orphans: orphans}, nil
}

// producerPaths normalizes a resolved input down to the stack paths it
// names: zero for an external reference, one for a plain or "@prev"
// input, and the whole sequence for an "@history" input.
func producerPaths(in ir.ResolvedInput) []string {
	if in.Producer != "" {
		return []string{in.Producer}
	}
	return in.Producers
}

func collectAll(n *ir.Node) []*ir.Node {
	out := []*ir.Node{n}
	for _, c := range n.Children {
		out = append(out, collectAll(c)...)
	}
	return out
}

// OrphanSummary renders Result.Orphans as a single log-friendly line.
func (r Result) OrphanSummary() string {
	if len(r.Orphans) == 0 {
		return ""
	}
	return fmt.Sprintf("%d terminal output(s) with no in-tree consumer: %s",
		len(r.Orphans), strings.Join(r.Orphans, ", "))
}
