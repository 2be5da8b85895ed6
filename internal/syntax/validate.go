// Package syntax implements stage 2, the Syntax validator (spec §4.3):
// per-opcode required-field schemas and artifact-name rules, batching
// every violation found in the tree before returning — per §7, Syntax is
// one of the two stages that collects rather than fails fast.
package syntax

import (
	"fmt"

	"github.com/odl-lang/odlc/internal/cerrors"
	"github.com/odl-lang/odlc/internal/ir"
	"github.com/odl-lang/odlc/internal/names"
)

// Validate walks the normalized (but not yet expanded) tree and returns a
// non-nil error (a *cerrors.List) iff any node violates its schema.
func Validate(root *ir.Node) error {
	v := &validator{errs: &cerrors.List{}}
	v.node(root, "root")
	return v.errs.AsError()
}

type validator struct {
	errs *cerrors.List
}

func (v *validator) fail(kind cerrors.Kind, path, format string, args ...any) {
	v.errs.Add(cerrors.New(kind, path, format, args...))
}

func (v *validator) node(n *ir.Node, path string) {
	switch n.OpCode {
	case ir.OpWorker:
		v.requireParam(n, path, "agent")
		v.requireOutput(n, path)
		v.requireAtom(n, path)
	case ir.OpDialogue:
		v.requireParamList(n, path, "participants", 2)
		v.requireAtom(n, path)
	case ir.OpApprover:
		v.requireParam(n, path, "approver")
		v.requireParam(n, path, "target")
		v.requireAtom(n, path)
	case ir.OpSerial, ir.OpParallel:
		v.requireChildren(n, path, 1)
	case ir.OpLoop:
		v.requireCount(n, path, "count")
		v.requireChildren(n, path, 1)
	case ir.OpIterate:
		v.requireParam(n, path, "item_key")
		v.requireStrategy(n, path)
		v.requireChildren(n, path, 1)
	case ir.OpScopeResolve:
		v.requireAtom(n, path)
	case ir.OpIteratorInit:
		v.requireParam(n, path, "source")
		v.requireAtom(n, path)
	case ir.OpGenerateTeam:
		v.requireParam(n, path, "generator")
		v.requireParamList(n, path, "validators", 1)
		v.requireCount(n, path, "loop")
		v.requireOutput(n, path)
	case ir.OpApprovalGate:
		v.requireParam(n, path, "approver")
		v.requireParam(n, path, "target")
		v.requireChildren(n, path, 1)
	case ir.OpEnsemble:
		v.requireParamList(n, path, "generators", 1)
		v.requireParam(n, path, "consolidator")
		v.requireCount(n, path, "samples")
		v.requireOutput(n, path)
	case ir.OpFanOut:
		v.requireParam(n, path, "source")
		v.requireParam(n, path, "item_key")
		v.requireStrategy(n, path)
		v.requireChildren(n, path, 1)
		v.checkNoNestedFanOut(n.Children[0], path+"/worker")
	}

	v.classifyWiring(n, path)

	for i, c := range n.Children {
		v.node(c, fmt.Sprintf("%s/%s_%d", path, c.OpCode, i))
	}
}

func (v *validator) requireAtom(n *ir.Node, path string) {
	if len(n.Children) != 0 {
		v.fail(cerrors.KindMalformedNode, path, "%s is an atom and must have no children", n.OpCode)
	}
}

func (v *validator) requireChildren(n *ir.Node, path string, min int) {
	if len(n.Children) < min {
		v.fail(cerrors.KindMissingRequiredField, path, "%s requires at least %d child(ren)", n.OpCode, min)
	}
}

func (v *validator) requireParam(n *ir.Node, path, field string) {
	if _, ok := n.Params[field]; !ok {
		v.fail(cerrors.KindMissingRequiredField, path, "%s requires param %q", n.OpCode, field)
	}
}

func (v *validator) requireParamList(n *ir.Node, path, field string, min int) {
	raw, ok := n.Params[field]
	if !ok {
		v.fail(cerrors.KindMissingRequiredField, path, "%s requires param %q", n.OpCode, field)
		return
	}
	l, ok := raw.([]any)
	if !ok || len(l) < min {
		v.fail(cerrors.KindMissingRequiredField, path, "%s.%s requires at least %d entr(ies)", n.OpCode, field, min)
	}
}

func (v *validator) requireCount(n *ir.Node, path, field string) {
	raw, ok := n.Params[field]
	if !ok {
		v.fail(cerrors.KindMissingRequiredField, path, "%s requires param %q", n.OpCode, field)
		return
	}
	count, ok := asInt(raw)
	if !ok || count < 1 {
		v.fail(cerrors.KindMissingRequiredField, path, "%s.%s must be an integer >= 1", n.OpCode, field)
	}
}

func (v *validator) requireStrategy(n *ir.Node, path string) {
	raw, ok := n.Params["strategy"]
	if !ok {
		v.fail(cerrors.KindMissingRequiredField, path, "%s requires param %q", n.OpCode, "strategy")
		return
	}
	s, ok := raw.(string)
	if !ok || (s != "serial" && s != "parallel") {
		v.fail(cerrors.KindMissingRequiredField, path, `%s.strategy must be "serial" or "parallel"`, n.OpCode)
	}
}

func (v *validator) requireOutput(n *ir.Node, path string) {
	if n.Wiring.Output == "" {
		v.fail(cerrors.KindMissingRequiredField, path, "%s requires wiring.output", n.OpCode)
	}
}

func (v *validator) checkNoNestedFanOut(n *ir.Node, path string) {
	if n.OpCode == ir.OpFanOut {
		v.fail(cerrors.KindNestedFanOut, path, "fan_out may not contain a nested fan_out")
	}
	for i, c := range n.Children {
		v.checkNoNestedFanOut(c, fmt.Sprintf("%s/%s_%d", path, c.OpCode, i))
	}
}

// classifyWiring applies the §3 artifact-name rules to every name this
// node declares, and the §4.3 rule that a Project Document may never be
// an output.
func (v *validator) classifyWiring(n *ir.Node, path string) {
	if n.Wiring.Output != "" {
		v.classifyName(n.Wiring.Output, path, true)
	}
	for _, in := range n.Wiring.Inputs {
		base, _ := names.SplitInputModifier(in)
		v.classifyName(base, path, false)
	}
	if target, ok := n.Params["target"].(string); ok {
		v.classifyName(target, path, false)
	}
	if source, ok := n.Params["source"].(string); ok {
		v.classifyName(source, path, false)
	}
}

func (v *validator) classifyName(name, path string, isOutput bool) {
	switch names.Classify(name) {
	case names.KindReserved:
		v.fail(cerrors.KindReservedName, path, "artifact name %q is reserved (contains __)", name)
	case names.KindPrivate:
		v.fail(cerrors.KindPrivateName, path, "artifact name %q is private (starts with _)", name)
	case names.KindProjectDocument:
		if isOutput {
			v.fail(cerrors.KindExternalWriteAttempt, path, "artifact name %q is a Project Document and cannot be written", name)
		}
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), n == float64(int(n))
	default:
		return 0, false
	}
}
