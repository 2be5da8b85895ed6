// Package resolve implements stage 4, the Scope resolver (spec §4.5): it
// maps every wiring.inputs entry to its unique visible producer (or an
// external Project Document reference) and checks dynamic-variable use
// against the contexts that define each token. Conceptually grounded in
// the teacher's parent-chained environment lookup (parse.Scope / TEnv /
// GEnv), reworked here as a structural tree walk since ODL visibility is
// about tree position, not a symbol table.
package resolve

import (
	"regexp"

	"github.com/odl-lang/odlc/internal/cerrors"
	"github.com/odl-lang/odlc/internal/ir"
	"github.com/odl-lang/odlc/internal/names"
)

// frame is one link of a consumer's ancestral chain: node is an ancestor,
// idx is the index, within node.Children, of the next node down the path
// toward the consumer (or the consumer itself, at the last frame).
type frame struct {
	node *ir.Node
	idx  int
}

var dynamicVarPattern = regexp.MustCompile(`\$(LOOP|KEY|ITEM|PREV|HISTORY)\b`)

// contextFor reports which opcodes must appear among a node's ancestors
// for a given dynamic variable to be bound (§4.1: loop exposes $LOOP,
// $HISTORY, $PREV; iterate binds $KEY, $ITEM — $PREV/$HISTORY are also
// meaningful for iterate's per-item history).
var contextFor = map[string][]ir.OpCode{
	"LOOP":    {ir.OpLoop},
	"KEY":     {ir.OpIterate},
	"ITEM":    {ir.OpIterate},
	"PREV":    {ir.OpLoop, ir.OpIterate},
	"HISTORY": {ir.OpLoop, ir.OpIterate},
}

// Resolve runs stage 4 over an expanded (path-assigned) tree, annotating
// each node's Resolved field. Per §7, Resolve is a batching stage: it
// collects every error in the tree before returning.
func Resolve(root *ir.Node) error {
	errs := &cerrors.List{}

	var walk func(n *ir.Node, ancestors []frame)
	walk = func(n *ir.Node, ancestors []frame) {
		resolveNode(n, ancestors, errs)
		for i, c := range n.Children {
			next := make([]frame, len(ancestors)+1)
			copy(next, ancestors)
			next[len(ancestors)] = frame{node: n, idx: i}
			walk(c, next)
		}
	}
	walk(root, nil)

	return errs.AsError()
}

func resolveNode(n *ir.Node, ancestors []frame, errs *cerrors.List) {
	for _, raw := range n.Wiring.Inputs {
		resolved, err := resolveInput(n, raw, ancestors)
		if err != nil {
			errs.Add(err)
			continue
		}
		n.Resolved = append(n.Resolved, resolved)
	}
	scanDynamicVars(n, ancestors, errs)
}

func resolveInput(consumer *ir.Node, raw string, ancestors []frame) (ir.ResolvedInput, *cerrors.Error) {
	switch names.Classify(raw) {
	case names.KindProjectDocument:
		pd, ok := names.ParseProjectDocument(raw)
		if !ok {
			return ir.ResolvedInput{}, cerrors.New(cerrors.KindUndefinedReference, consumer.StackPath,
				"malformed Project Document reference %q", raw)
		}
		return ir.ResolvedInput{Raw: raw, Name: pd.Name, External: pd.External()}, nil

	case names.KindReserved, names.KindPrivate:
		// Syntax already rejects these on first declaration; guard here
		// defensively rather than silently resolving a name that should
		// never exist.
		return ir.ResolvedInput{}, cerrors.New(cerrors.KindUndefinedReference, consumer.StackPath,
			"artifact name %q is not a valid reference", raw)

	default: // Job Document, possibly with an @history / @prev modifier.
		base, modifier := names.SplitInputModifier(raw)
		if modifier != "" && modifier != "history" && modifier != "prev" {
			return ir.ResolvedInput{}, cerrors.New(cerrors.KindInvalidModifier, consumer.StackPath,
				"unknown input modifier %q on %q", modifier, raw)
		}
		if modifier == "" {
			producer, err := findProducer(consumer, base, ancestors)
			if err != nil {
				return ir.ResolvedInput{}, err
			}
			return ir.ResolvedInput{Raw: raw, Name: base, Producer: producer.StackPath}, nil
		}

		// @history/@prev name the *same body's* producer across a
		// different temporal iteration, not a structurally-visible one:
		// search the whole enclosing loop/iterate subtree rather than
		// the normal older-sibling/ancestor walk.
		enclosing, ok := nearestIteration(ancestors)
		if !ok {
			return ir.ResolvedInput{}, cerrors.New(cerrors.KindInvalidModifier, consumer.StackPath,
				"modifier @%s on %q is only valid inside a loop/iterate body", modifier, raw)
		}
		var matches []*ir.Node
		collectMatches(enclosing, base, &matches)
		if len(matches) == 0 {
			return ir.ResolvedInput{}, cerrors.New(cerrors.KindUndefinedReference, consumer.StackPath,
				"no producer of %q within the enclosing loop/iterate body", base)
		}

		if modifier == "history" {
			// @history names the whole ordered sequence of per-iteration
			// producers, never a single one — unlike @prev it is not
			// disambiguated down to one node via pickProducer.
			paths := make([]string, len(matches))
			for i, m := range matches {
				paths[i] = m.StackPath
			}
			return ir.ResolvedInput{Raw: raw, Name: base, Modifier: modifier, Producers: paths}, nil
		}

		producer, err := pickProducer(matches)
		if err != nil {
			return ir.ResolvedInput{}, err
		}
		return ir.ResolvedInput{Raw: raw, Name: base, Modifier: modifier, Producer: producer.StackPath}, nil
	}
}

// findProducer performs the §4.5 visibility walk, checking the nearest
// enclosing scope first (the consumer's own older siblings) and widening
// outward to each ancestor in turn — "siblings beat ancestors".
func findProducer(consumer *ir.Node, name string, ancestors []frame) (*ir.Node, *cerrors.Error) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		f := ancestors[i]
		var matches []*ir.Node
		for _, sib := range f.node.Children[:f.idx] {
			collectMatches(sib, name, &matches)
		}
		if f.node.Wiring.Output == name {
			matches = append(matches, f.node)
		}
		if len(matches) > 0 {
			return pickProducer(matches)
		}
	}
	return nil, cerrors.New(cerrors.KindUndefinedReference, consumer.StackPath,
		"no visible producer of %q", name)
}

func collectMatches(n *ir.Node, name string, out *[]*ir.Node) {
	if n.Wiring.Output == name {
		*out = append(*out, n)
	}
	for _, c := range n.Children {
		collectMatches(c, name, out)
	}
}

// pickProducer applies step 3 of §4.5: a unique match wins outright; a
// scope_resolve node among several matches is the mediator the Expander
// inserted precisely to break this kind of tie and always wins; anything
// else left ambiguous is a genuine AmbiguousProducer (spec invariant 3:
// at most one producer per name per resolvable scope).
func pickProducer(matches []*ir.Node) (*ir.Node, *cerrors.Error) {
	if len(matches) == 1 {
		return matches[0], nil
	}
	var mediator *ir.Node
	for _, m := range matches {
		if m.OpCode == ir.OpScopeResolve {
			mediator = m
			break
		}
	}
	if mediator != nil {
		return mediator, nil
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = m.StackPath
	}
	return nil, cerrors.New(cerrors.KindAmbiguousProducer, matches[0].StackPath,
		"multiple visible producers with no mediator: %v", paths)
}

// nearestIteration returns the closest enclosing loop/iterate ancestor,
// searching from the consumer outward (ancestors is root-first).
func nearestIteration(ancestors []frame) (*ir.Node, bool) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		if op := ancestors[i].node.OpCode; op == ir.OpLoop || op == ir.OpIterate {
			return ancestors[i].node, true
		}
	}
	return nil, false
}

func scanDynamicVars(n *ir.Node, ancestors []frame, errs *cerrors.List) {
	for _, v := range n.Params {
		scanValue(n, v, ancestors, errs)
	}
}

func scanValue(n *ir.Node, v any, ancestors []frame, errs *cerrors.List) {
	switch val := v.(type) {
	case string:
		for _, m := range dynamicVarPattern.FindAllStringSubmatch(val, -1) {
			checkDynamicVar(n, m[1], ancestors, errs)
		}
	case map[string]any:
		for _, sub := range val {
			scanValue(n, sub, ancestors, errs)
		}
	case []any:
		for _, sub := range val {
			scanValue(n, sub, ancestors, errs)
		}
	}
}

func checkDynamicVar(n *ir.Node, token string, ancestors []frame, errs *cerrors.List) {
	required, ok := contextFor[token]
	if !ok {
		return
	}
	for _, f := range ancestors {
		for _, want := range required {
			if f.node.OpCode == want {
				return
			}
		}
	}
	errs.Add(cerrors.New(cerrors.KindUnboundDynamicVariable, n.StackPath,
		"$%s used outside a context that binds it", token))
}
