// Package ir defines the node shapes that flow through every stage of the
// compiler: the mutable surface-derived Node the middle stages rewrite in
// place, and the frozen IR record the Assembler hands back.
package ir

// OpCode tags the kind of a Node. The surface recognizes both sugar and
// primitive opcodes; only primitive opcodes may survive to the IR.
type OpCode string

// Atoms. Leaves: no children, always produce (or gate on) a single artifact.
const (
	OpWorker   OpCode = "worker"
	OpDialogue OpCode = "dialogue"
	OpApprover OpCode = "approver"
)

// Control. Always have at least one child.
const (
	OpSerial   OpCode = "serial"
	OpParallel OpCode = "parallel"
	OpLoop     OpCode = "loop"
	OpIterate  OpCode = "iterate"
)

// Logic. Synthesized by the Expander; the Parser also accepts them as
// surface keys (see Recognized).
const (
	OpScopeResolve OpCode = "scope_resolve"
	OpIteratorInit OpCode = "iterator_init"
)

// Sugar. Rewritten away during Expand; never appear in the IR.
const (
	OpGenerateTeam OpCode = "generate_team"
	OpApprovalGate OpCode = "approval_gate"
	OpEnsemble     OpCode = "ensemble"
	OpFanOut       OpCode = "fan_out"
)

// Primitives is the closed opcode set a fully desugared tree may contain
// (§4.1). Anything else surviving Expand is a compiler bug.
var Primitives = map[OpCode]bool{
	OpWorker:       true,
	OpDialogue:     true,
	OpApprover:     true,
	OpSerial:       true,
	OpParallel:     true,
	OpLoop:         true,
	OpIterate:      true,
	OpScopeResolve: true,
	OpIteratorInit: true,
}

// Atoms is the subset of primitives that must have zero children.
var Atoms = map[OpCode]bool{
	OpWorker:   true,
	OpDialogue: true,
	OpApprover: true,
}

// Sugars is the set of opcodes the Expander must rewrite away.
var Sugars = map[OpCode]bool{
	OpGenerateTeam: true,
	OpApprovalGate: true,
	OpEnsemble:     true,
	OpFanOut:       true,
}

// Recognized is the full set of opcode keys the Parser accepts — sugar and
// primitive alike. A mapping key outside this set is UnknownOpCode.
var Recognized = func() map[OpCode]bool {
	m := make(map[OpCode]bool, len(Primitives)+len(Sugars))
	for k := range Primitives {
		m[k] = true
	}
	for k := range Sugars {
		m[k] = true
	}
	return m
}()

// Controls is the subset of primitives that always carry at least one
// child (§4.1's Control category). Logic nodes (scope_resolve,
// iterator_init) are neither atoms nor controls: like atoms they carry
// no children, but they are the nodes the Expander synthesizes.
var Controls = map[OpCode]bool{
	OpSerial:   true,
	OpParallel: true,
	OpLoop:     true,
	OpIterate:  true,
}

func (o OpCode) IsPrimitive() bool { return Primitives[o] }
func (o OpCode) IsAtom() bool      { return Atoms[o] }
func (o OpCode) IsSugar() bool     { return Sugars[o] }
func (o OpCode) IsControl() bool   { return Controls[o] }
