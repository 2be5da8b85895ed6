package expand_test

import (
	"testing"

	"github.com/odl-lang/odlc/internal/expand"
	"github.com/odl-lang/odlc/internal/ir"
	"github.com/odl-lang/odlc/internal/parser"
	"github.com/odl-lang/odlc/internal/surface"
)

func mustExpand(t *testing.T, doc string) *ir.Node {
	t.Helper()
	root, err := surface.LoadYAML([]byte(doc))
	if err != nil {
		t.Fatalf("LoadYAML() error: %s", err)
	}
	n, err := parser.Normalize(root)
	if err != nil {
		t.Fatalf("Normalize() error: %s", err)
	}
	return expand.Expand(n)
}

func TestExpandAssignsStackPaths(t *testing.T) {
	n := mustExpand(t, `
serial:
  contents:
    - worker:
        agent: drafter
        output: Draft
    - worker:
        agent: reviewer
        inputs: [Draft]
        output: Report
`)
	if n.StackPath != "root" {
		t.Fatalf("root StackPath = %q, want \"root\"", n.StackPath)
	}
	want := []string{"root/worker_0", "root/worker_1"}
	for i, c := range n.Children {
		if c.StackPath != want[i] {
			t.Errorf("child[%d].StackPath = %q, want %q", i, c.StackPath, want[i])
		}
	}
}

func TestExpandSiblingIndexIsPerOpCode(t *testing.T) {
	n := mustExpand(t, `
serial:
  contents:
    - worker:
        agent: a
        output: X
    - parallel:
        contents:
          - worker:
              agent: b
              output: Y
    - worker:
        agent: c
        inputs: [X]
        output: Z
`)
	if n.Children[0].StackPath != "root/worker_0" {
		t.Errorf("first child = %q, want root/worker_0", n.Children[0].StackPath)
	}
	if n.Children[1].StackPath != "root/parallel_0" {
		t.Errorf("second child = %q, want root/parallel_0", n.Children[1].StackPath)
	}
	if n.Children[2].StackPath != "root/worker_1" {
		t.Errorf("third child = %q, want root/worker_1 (sibling index counts only same-opcode siblings)", n.Children[2].StackPath)
	}
}

func TestExpandGenerateTeamProducesLoopAndResolver(t *testing.T) {
	n := mustExpand(t, `
generate_team:
  generator: drafter
  validators: [fact_checker, style_checker]
  loop: 3
  output: Report
`)
	if n.OpCode != ir.OpSerial {
		t.Fatalf("OpCode = %s, want serial", n.OpCode)
	}
	if len(n.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2 (loop, scope_resolve)", len(n.Children))
	}
	loop := n.Children[0]
	if loop.OpCode != ir.OpLoop || loop.Params["count"] != 3 {
		t.Errorf("loop = %+v, want OpCode=loop Params[count]=3", loop)
	}
	resolver := n.Children[1]
	if resolver.OpCode != ir.OpScopeResolve || resolver.Wiring.Output != "Report" {
		t.Errorf("resolver = %+v, want OpCode=scope_resolve Wiring.Output=Report", resolver)
	}

	body := loop.Children[0]
	if body.OpCode != ir.OpSerial || len(body.Children) != 2 {
		t.Fatalf("loop body = %+v, want serial{generator, parallel{validators}}", body)
	}
	generator := body.Children[0]
	if generator.OpCode != ir.OpWorker || generator.Params["agent"] != "drafter" {
		t.Errorf("generator = %+v, want worker agent=drafter", generator)
	}
	foundFeedback := false
	for _, in := range generator.Wiring.Inputs {
		if in == "Report.verdict.0@prev" {
			foundFeedback = true
		}
	}
	if !foundFeedback {
		t.Errorf("generator inputs = %v, want a verdict feedback input since loop > 1", generator.Wiring.Inputs)
	}

	validators := body.Children[1]
	if validators.OpCode != ir.OpParallel || len(validators.Children) != 2 {
		t.Fatalf("validators wrapper = %+v, want parallel with 2 children", validators)
	}
}

func TestExpandNoFeedbackWhenLoopIsOne(t *testing.T) {
	n := mustExpand(t, `
generate_team:
  generator: drafter
  validators: [fact_checker]
  loop: 1
  output: Report
`)
	loop := n.Children[0]
	body := loop.Children[0]
	generator := body.Children[0]
	for _, in := range generator.Wiring.Inputs {
		if in == "Report.verdict.0@prev" {
			t.Errorf("loop=1 should not synthesize feedback input, got %v", generator.Wiring.Inputs)
		}
	}
}

func TestExpandApprovalGate(t *testing.T) {
	n := mustExpand(t, `
approval_gate:
  approver: manager
  target: Draft
  contents:
    - worker:
        agent: drafter
        output: Draft
`)
	if n.OpCode != ir.OpLoop || n.Params["count"] != expand.ApprovalGateRetryBudget {
		t.Fatalf("OpCode/count = %s/%v, want loop/%d", n.OpCode, n.Params["count"], expand.ApprovalGateRetryBudget)
	}
	body := n.Children[0]
	if len(body.Children) != 2 {
		t.Fatalf("body has %d children, want 2 (original content + approver)", len(body.Children))
	}
	approver := body.Children[1]
	if approver.OpCode != ir.OpApprover || approver.Params["target"] != "Draft" {
		t.Errorf("approver = %+v, want OpCode=approver Params[target]=Draft", approver)
	}
}

func TestExpandEnsembleDraftNaming(t *testing.T) {
	n := mustExpand(t, `
ensemble:
  generators: [a, b]
  samples: 2
  consolidator: judge
  output: Best
`)
	if n.OpCode != ir.OpSerial || len(n.Children) != 2 {
		t.Fatalf("expanded ensemble = %+v", n)
	}
	samplers := n.Children[0]
	if samplers.OpCode != ir.OpParallel || len(samplers.Children) != 4 {
		t.Fatalf("samplers = %+v, want parallel with 4 children (2 generators x 2 samples)", samplers)
	}
	seen := map[string]bool{}
	for _, s := range samplers.Children {
		seen[s.Wiring.Output] = true
	}
	for _, want := range []string{"Best.sample.0.0", "Best.sample.0.1", "Best.sample.1.0", "Best.sample.1.1"} {
		if !seen[want] {
			t.Errorf("missing expected draft name %q among %v", want, seen)
		}
	}
	consolidator := n.Children[1]
	if consolidator.OpCode != ir.OpWorker || consolidator.Wiring.Output != "Best" {
		t.Errorf("consolidator = %+v, want worker output=Best", consolidator)
	}
}

func TestExpandFanOut(t *testing.T) {
	n := mustExpand(t, `
fan_out:
  source: Leads
  item_key: lead
  strategy: parallel
  worker:
    worker:
      agent: qualifier
      output: Verdict
`)
	if n.OpCode != ir.OpSerial || len(n.Children) != 2 {
		t.Fatalf("expanded fan_out = %+v", n)
	}
	init := n.Children[0]
	if init.OpCode != ir.OpIteratorInit || init.Wiring.Inputs[0] != "Leads" {
		t.Errorf("init = %+v, want iterator_init reading Leads", init)
	}
	iterate := n.Children[1]
	if iterate.OpCode != ir.OpIterate || iterate.Params["item_key"] != "lead" {
		t.Errorf("iterate = %+v, want iterate item_key=lead", iterate)
	}
	if len(iterate.Children) != 1 || iterate.Children[0].OpCode != ir.OpWorker {
		t.Fatalf("iterate body = %+v, want the original worker template", iterate.Children)
	}
}

func TestExpandLeavesPlainPrimitivesAlone(t *testing.T) {
	n := mustExpand(t, `
worker:
  agent: drafter
  output: Report
`)
	if n.OpCode != ir.OpWorker || n.Params["agent"] != "drafter" {
		t.Errorf("plain worker should pass through Expand unchanged, got %+v", n)
	}
}
