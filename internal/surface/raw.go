// Package surface holds the loosely-typed tree-of-mappings shape that is
// the compiler's input (§6), plus the thin YAML adapter a complete repo
// needs to produce one — the concrete-syntax layer itself stays an
// external collaborator per §1, so this package is deliberately small.
package surface

import "fmt"

// RawNode is one mapping node of the surface tree: a single key (the
// opcode) to an arbitrary value, almost always itself a map[string]any.
// YAML's own encoding (gopkg.in/yaml.v3, decoded into `any`) produces
// exactly this shape for string-keyed mappings.
type RawNode = map[string]any

// SingleKey extracts the lone (opcode, body) pair from a RawNode. More
// than one key is MalformedNode territory; the caller decides how to
// report it so this stays a pure helper.
func SingleKey(n RawNode) (key string, body any, ok bool) {
	if len(n) != 1 {
		return "", nil, false
	}
	for k, v := range n {
		return k, v, true
	}
	return "", nil, false
}

// AsMapping asserts that a value decoded from the surface tree is itself
// a mapping, normalizing the two shapes a generic YAML/JSON decode can
// produce (map[string]any, and — defensively — map[any]any for loaders
// that don't force string keys).
func AsMapping(v any) (RawNode, error) {
	switch m := v.(type) {
	case RawNode:
		return m, nil
	case map[any]any:
		out := make(RawNode, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string mapping key %v", k)
			}
			out[ks] = val
		}
		return out, nil
	case nil:
		return RawNode{}, nil
	default:
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
}

// AsList asserts a value is a sequence, normalizing []any (the decoder's
// native shape).
func AsList(v any) ([]any, error) {
	switch l := v.(type) {
	case []any:
		return l, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}

// AsStringList asserts a value is a sequence of strings, e.g. a
// wiring.inputs declaration.
func AsStringList(v any) ([]string, error) {
	l, err := AsList(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string list entry, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}
