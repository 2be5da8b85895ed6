// Package expand implements stage 3, the Expander (spec §4.4): it
// rewrites sugar opcodes into primitive subtrees bottom-up, then assigns
// every node's deterministic stack_path. Mirrors the teacher's
// ExpandModules/expandModule bottom-up rewrite loop in compile.go, with
// the YANG grouping/augment semantics replaced by ODL's sugar set.
package expand

import (
	"fmt"

	"github.com/odl-lang/odlc/internal/ir"
)

// ApprovalGateRetryBudget stands in for "retry until approved or
// rejected forever" (approval_gate declares no count — spec §4.3/§4.4 —
// while the primitive loop it desugars to requires one, §4.3). It is a
// large, effectively unbounded retry budget rather than a true unbounded
// construct, since the IR's loop primitive always carries a concrete
// count.
const ApprovalGateRetryBudget = 1 << 30

// Expand runs stage 3 over a syntax-checked tree and returns the fully
// desugared, path-assigned tree. It never fails: by the time Expand
// runs, Syntax has already rejected anything that would make desugaring
// ambiguous or incomplete.
func Expand(root *ir.Node) *ir.Node {
	desugared := rewrite(root)
	assignPaths(desugared, "root")
	return desugared
}

// rewrite performs the bottom-up pass: children are rewritten first, so
// a sugar that contains another sugar (e.g. a fan_out whose worker body
// contains a generate_team) sees only already-primitive children by the
// time its own rule fires.
func rewrite(n *ir.Node) *ir.Node {
	children := make([]*ir.Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = rewrite(c)
	}
	n.Children = children

	switch n.OpCode {
	case ir.OpGenerateTeam:
		return expandGenerateTeam(n)
	case ir.OpApprovalGate:
		return expandApprovalGate(n)
	case ir.OpEnsemble:
		return expandEnsemble(n)
	case ir.OpFanOut:
		return expandFanOut(n)
	default:
		return n
	}
}

func assignPaths(n *ir.Node, path string) {
	n.StackPath = path
	counts := make(map[ir.OpCode]int, len(n.Children))
	for _, c := range n.Children {
		idx := counts[c.OpCode]
		counts[c.OpCode] = idx + 1
		assignPaths(c, fmt.Sprintf("%s/%s_%d", path, c.OpCode, idx))
	}
}

// --- generate_team -----------------------------------------------------

func expandGenerateTeam(n *ir.Node) *ir.Node {
	output := n.Wiring.Output
	generator := paramString(n, "generator")
	validators := paramList(n, "validators")
	loopCount := paramInt(n, "loop")

	verdictNames := make([]string, len(validators))
	for i := range validators {
		verdictNames[i] = fmt.Sprintf("%s.verdict.%d", output, i)
	}

	generatorInputs := append([]string(nil), n.Wiring.Inputs...)
	if loopCount > 1 {
		for _, v := range verdictNames {
			generatorInputs = append(generatorInputs, v+"@prev")
		}
	}

	generatorWorker := newWorker(generator, generatorInputs, output, "generate", n.Params["briefing"])

	validatorWorkers := make([]*ir.Node, len(validators))
	for i, spec := range validators {
		agent := agentName(spec)
		validatorWorkers[i] = newWorker(agent, []string{output}, verdictNames[i], "validate", n.Params["briefing"])
	}

	body := &ir.Node{
		OpCode:   ir.OpSerial,
		Params:   map[string]any{},
		Children: []*ir.Node{generatorWorker, {OpCode: ir.OpParallel, Params: map[string]any{}, Children: validatorWorkers}},
	}

	loop := &ir.Node{
		OpCode:   ir.OpLoop,
		Params:   map[string]any{"count": loopCount},
		Children: []*ir.Node{body},
	}

	resolver := &ir.Node{
		OpCode: ir.OpScopeResolve,
		Params: map[string]any{"candidates": []string{output}},
		Wiring: ir.Wiring{Inputs: []string{output}, Output: output},
	}

	return &ir.Node{
		OpCode:   ir.OpSerial,
		Params:   map[string]any{},
		Children: []*ir.Node{loop, resolver},
	}
}

// --- approval_gate -------------------------------------------------------

func expandApprovalGate(n *ir.Node) *ir.Node {
	approver := paramString(n, "approver")
	target := paramString(n, "target")

	approverAtom := &ir.Node{
		OpCode: ir.OpApprover,
		Params: map[string]any{"approver": approver, "target": target},
		Wiring: ir.Wiring{Inputs: []string{target}},
	}

	body := &ir.Node{
		OpCode:   ir.OpSerial,
		Params:   map[string]any{},
		Children: append(append([]*ir.Node(nil), n.Children...), approverAtom),
	}

	return &ir.Node{
		OpCode:   ir.OpLoop,
		Params:   map[string]any{"count": ApprovalGateRetryBudget},
		Children: []*ir.Node{body},
	}
}

// --- ensemble ------------------------------------------------------------

func expandEnsemble(n *ir.Node) *ir.Node {
	output := n.Wiring.Output
	generators := paramList(n, "generators")
	samples := paramInt(n, "samples")
	consolidator := paramString(n, "consolidator")

	var samplers []*ir.Node
	var draftNames []string
	for g, spec := range generators {
		agent := agentName(spec)
		for s := 0; s < samples; s++ {
			draft := fmt.Sprintf("%s.sample.%d.%d", output, g, s)
			draftNames = append(draftNames, draft)
			samplers = append(samplers, newWorker(agent, n.Wiring.Inputs, draft, "generate", n.Params["briefing"]))
		}
	}

	consolidatorWorker := newWorker(consolidator, draftNames, output, "consolidate", n.Params["briefing"])

	return &ir.Node{
		OpCode: ir.OpSerial,
		Params: map[string]any{},
		Children: []*ir.Node{
			{OpCode: ir.OpParallel, Params: map[string]any{}, Children: samplers},
			consolidatorWorker,
		},
	}
}

// --- fan_out ---------------------------------------------------------------

func expandFanOut(n *ir.Node) *ir.Node {
	source := paramString(n, "source")
	itemKey := paramString(n, "item_key")
	strategy := paramString(n, "strategy")

	init := &ir.Node{
		OpCode: ir.OpIteratorInit,
		Params: map[string]any{"source": source},
		Wiring: ir.Wiring{Inputs: []string{source}},
	}

	template := n.Children[0]
	iterate := &ir.Node{
		OpCode:   ir.OpIterate,
		Params:   map[string]any{"strategy": strategy, "item_key": itemKey},
		Children: []*ir.Node{template},
	}

	return &ir.Node{
		OpCode:   ir.OpSerial,
		Params:   map[string]any{},
		Children: []*ir.Node{init, iterate},
	}
}

// --- shared helpers --------------------------------------------------------

func newWorker(agent string, inputs []string, output, mode string, briefing any) *ir.Node {
	return &ir.Node{
		OpCode: ir.OpWorker,
		Params: map[string]any{
			"agent":    agent,
			"briefing": mergeBriefing(briefing, agent, map[string]any{"mode": mode}),
		},
		Wiring: ir.Wiring{Inputs: inputs, Output: output},
	}
}

// mergeBriefing applies the §4.4 precedence Global < Agent-Specific <
// System. raw is the sugar's own "briefing" param, shaped as
// {"global": {...}, "agents": {agentName: {...}}}; system is injected
// by the Expander and always wins, regardless of what the user set.
func mergeBriefing(raw any, agent string, system map[string]any) map[string]any {
	out := map[string]any{}
	if b, ok := raw.(map[string]any); ok {
		if g, ok := b["global"].(map[string]any); ok {
			for k, v := range g {
				out[k] = v
			}
		}
		if agents, ok := b["agents"].(map[string]any); ok {
			if as, ok := agents[agent].(map[string]any); ok {
				for k, v := range as {
					out[k] = v
				}
			}
		}
	}
	for k, v := range system {
		out[k] = v
	}
	return out
}

func paramString(n *ir.Node, field string) string {
	s, _ := n.Params[field].(string)
	return s
}

func paramList(n *ir.Node, field string) []any {
	l, _ := n.Params[field].([]any)
	return l
}

func paramInt(n *ir.Node, field string) int {
	switch v := n.Params[field].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// agentName extracts an agent identifier from a generators/validators
// list entry, which may be a bare agent name or a {"agent": name} map.
func agentName(spec any) string {
	switch s := spec.(type) {
	case string:
		return s
	case map[string]any:
		if a, ok := s["agent"].(string); ok {
			return a
		}
	}
	return ""
}
