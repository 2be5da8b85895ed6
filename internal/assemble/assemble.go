// Package assemble implements stage 6, the Assembler (spec §4.7): a
// mechanical copy of the working tree into the frozen ir.IR shape,
// rewriting resolved inputs into their wire form ("Name#path" or
// "Name:ResID@Ver"). Grounded on the teacher's BuildModules/BuildModule
// in compile.go — same "walk the validated tree, emit the typed output
// record" shape, minus YANG's schema-type materialization.
package assemble

import (
	"fmt"
	"strings"

	"github.com/odl-lang/odlc/internal/cerrors"
	"github.com/odl-lang/odlc/internal/ir"
)

// Assemble runs stage 6 over a resolved tree. Any violation here is, per
// §4.7, a compiler bug rather than a user error — Expand guarantees
// opcode closure and Resolve guarantees every input resolved — so this
// returns InternalAssemblyError instead of joining the batching stages.
func Assemble(n *ir.Node) (*ir.IR, error) {
	if !ir.OpCode(n.OpCode).IsPrimitive() {
		return nil, cerrors.New(cerrors.KindInternalAssemblyError, n.StackPath,
			"opcode %q survived Expand — compiler bug", n.OpCode)
	}
	if n.OpCode.IsAtom() && len(n.Children) != 0 {
		return nil, cerrors.New(cerrors.KindInternalAssemblyError, n.StackPath,
			"atom %q has children — compiler bug", n.OpCode)
	}
	if n.OpCode.IsControl() && len(n.Children) == 0 {
		return nil, cerrors.New(cerrors.KindInternalAssemblyError, n.StackPath,
			"control node %q has no children — compiler bug", n.OpCode)
	}
	if n.StackPath == "" {
		return nil, cerrors.New(cerrors.KindInternalAssemblyError, "",
			"node %q has no stack_path — Expand did not run", n.OpCode)
	}

	inputs := make([]string, len(n.Resolved))
	for i, r := range n.Resolved {
		inputs[i] = wireForm(r)
	}

	children := make([]*ir.IR, len(n.Children))
	for i, c := range n.Children {
		assembled, err := Assemble(c)
		if err != nil {
			return nil, err
		}
		children[i] = assembled
	}

	return &ir.IR{
		StackPath: n.StackPath,
		OpCode:    string(n.OpCode),
		Params:    n.Params,
		Wiring: ir.IRWiring{
			Inputs: inputs,
			Output: n.Wiring.Output,
		},
		Children: children,
	}, nil
}

func wireForm(r ir.ResolvedInput) string {
	if r.External != "" {
		return r.External
	}
	name := r.Name
	if r.Modifier != "" {
		name = fmt.Sprintf("%s@%s", name, r.Modifier)
	}
	if len(r.Producers) > 0 {
		return fmt.Sprintf("%s#%s", name, strings.Join(r.Producers, ","))
	}
	return fmt.Sprintf("%s#%s", name, r.Producer)
}
