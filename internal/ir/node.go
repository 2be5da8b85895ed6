package ir

// Wiring holds a node's declared data-flow: the artifacts it reads and the
// one it (optionally) produces. Inputs keep source order; modifiers such
// as "@history" / "@prev" travel as part of the string. Resolve leaves
// these strings untouched and records its result in Node.Resolved; the
// Assembler renders the "Name#producer_stack_path" wire form from that.
type Wiring struct {
	Inputs []string
	Output string
}

// ResolvedInput is what an input string becomes once the Scope resolver
// has run: the logical name, the modifier it carried (if any), and either
// a producer stack path (internal artifact) or an external reference
// (Project Document).
//
// "@prev" and a plain reference always resolve to a single Producer.
// "@history" resolves to Producers, the ordered sequence of every
// per-iteration producer found in the enclosing loop/iterate body — it
// names a sequence of values, not one of them — so Producer is left
// empty in that case.
type ResolvedInput struct {
	Raw       string // original "Name" or "Name@modifier" token
	Name      string
	Modifier  string   // "", "history", or "prev"
	Producer  string   // "producer_stack_path" — plain and "@prev" inputs only
	Producers []string // ordered producer_stack_paths — "@history" inputs only
	External  string   // "Name:ResID@Version" — external artifacts only
}

// Node is the working representation threaded through Parse, Syntax,
// Expand and Resolve. It is mutated in place: Expand replaces sugar
// children with primitive subtrees, Resolve fills Resolved with
// producer paths. StackPath is empty until Expand assigns it.
type Node struct {
	OpCode    OpCode
	Params    map[string]any
	Wiring    Wiring
	Children  []*Node
	StackPath string

	// Resolved mirrors Wiring.Inputs once the resolver has run; nil
	// beforehand. Kept separate from Wiring so earlier stages can still
	// see the untouched source strings.
	Resolved []ResolvedInput
}

// Clone copies n and its whole subtree: every copied node gets its own
// Params map, Wiring.Inputs slice and Children slice. Param values
// themselves (nested maps and lists) are shared with the original, and
// Resolved is not copied.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		OpCode:    n.OpCode,
		StackPath: n.StackPath,
		Wiring: Wiring{
			Inputs: append([]string(nil), n.Wiring.Inputs...),
			Output: n.Wiring.Output,
		},
	}
	if n.Params != nil {
		cp.Params = make(map[string]any, len(n.Params))
		for k, v := range n.Params {
			cp.Params[k] = v
		}
	}
	cp.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		cp.Children[i] = c.Clone()
	}
	return cp
}

// IR is the frozen record the Assembler returns: a plain, acyclic,
// recursive tree matching the §6 wire shape. Unlike Node it carries no
// mutation hooks and its Wiring.Inputs are always fully resolved strings.
type IR struct {
	StackPath string         `json:"stack_path"`
	OpCode    string         `json:"opcode"`
	Params    map[string]any `json:"params,omitempty"`
	Wiring    IRWiring       `json:"wiring"`
	Children  []*IR          `json:"children,omitempty"`
}

type IRWiring struct {
	Inputs []string `json:"inputs,omitempty"`
	Output string   `json:"output,omitempty"` // "" means no output declared
}
