// Package parser implements stage 1 of the pipeline, the Parser/
// Normalizer (spec §4.2): it turns a surface.RawNode tree into an
// ir.Node tree with params and wiring split apart, failing fast on
// UnknownOpCode/MalformedNode — mirroring the teacher's single
// entry-point Parse function (parse/parse.go's Parse/ParseWithInterners)
// even though there is no text to lex here.
package parser

import (
	"fmt"

	"github.com/odl-lang/odlc/internal/cerrors"
	"github.com/odl-lang/odlc/internal/ir"
	"github.com/odl-lang/odlc/internal/surface"
)

// childShape describes where an opcode's children live in its surface
// body, so Normalize can stay one generic function instead of an
// opcode-by-opcode switch duplicated at every call site.
type childShape int

const (
	noChildren  childShape = iota
	contentsList           // params["contents"]: []RawNode, each a child
	singleField            // one named field holding a single child RawNode
)

type shapeRule struct {
	shape childShape
	field string // only meaningful for singleField
}

var shapes = map[ir.OpCode]shapeRule{
	ir.OpWorker:       {shape: noChildren},
	ir.OpDialogue:     {shape: noChildren},
	ir.OpApprover:     {shape: noChildren},
	ir.OpSerial:       {shape: contentsList},
	ir.OpParallel:     {shape: contentsList},
	ir.OpLoop:         {shape: contentsList},
	ir.OpIterate:      {shape: contentsList},
	ir.OpScopeResolve: {shape: noChildren},
	ir.OpIteratorInit: {shape: noChildren},
	ir.OpGenerateTeam: {shape: noChildren},
	ir.OpApprovalGate: {shape: contentsList},
	ir.OpEnsemble:     {shape: noChildren},
	ir.OpFanOut:       {shape: singleField, field: "worker"},
}

// Normalize runs stage 1 over a single surface document and returns its
// root ir.Node. It fails fast (no batching) per the §7 propagation
// policy: Parse is not one of the two batching stages.
func Normalize(root surface.RawNode) (*ir.Node, error) {
	return normalizeNode(root, "root")
}

func normalizeNode(raw surface.RawNode, path string) (*ir.Node, error) {
	key, bodyVal, ok := surface.SingleKey(raw)
	if !ok {
		return nil, cerrors.New(cerrors.KindMalformedNode, path,
			"node must have exactly one top-level key, got %d", len(raw))
	}
	op := ir.OpCode(key)
	if !ir.Recognized[op] {
		return nil, cerrors.New(cerrors.KindUnknownOpCode, path, "unrecognized opcode %q", key)
	}
	body, err := surface.AsMapping(bodyVal)
	if err != nil {
		return nil, cerrors.New(cerrors.KindMalformedNode, path, "opcode %q: %s", key, err)
	}

	params := make(map[string]any, len(body))
	for k, v := range body {
		params[k] = v
	}

	n := &ir.Node{OpCode: op, Params: params}

	if inputsVal, ok := params["inputs"]; ok {
		inputs, err := surface.AsStringList(inputsVal)
		if err != nil {
			return nil, cerrors.New(cerrors.KindMalformedNode, path, "wiring.inputs: %s", err)
		}
		n.Wiring.Inputs = inputs
		delete(params, "inputs")
	}
	if outputVal, ok := params["output"]; ok {
		out, ok := outputVal.(string)
		if !ok {
			return nil, cerrors.New(cerrors.KindMalformedNode, path, "wiring.output must be a string")
		}
		n.Wiring.Output = out
		delete(params, "output")
	}

	rule, known := shapes[op]
	if !known {
		rule = shapeRule{shape: noChildren}
	}

	switch rule.shape {
	case contentsList:
		rawChildren, err := surface.AsList(params["contents"])
		if err != nil {
			return nil, cerrors.New(cerrors.KindMalformedNode, path, "contents: %s", err)
		}
		delete(params, "contents")
		for i, rc := range rawChildren {
			cm, err := surface.AsMapping(rc)
			if err != nil {
				return nil, cerrors.New(cerrors.KindMalformedNode, path, "contents[%d]: %s", i, err)
			}
			child, err := normalizeNode(cm, fmt.Sprintf("%s/contents[%d]", path, i))
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	case singleField:
		raw, ok := params[rule.field]
		if !ok {
			return nil, cerrors.New(cerrors.KindMissingRequiredField, path, "missing required field %q", rule.field)
		}
		delete(params, rule.field)
		cm, err := surface.AsMapping(raw)
		if err != nil {
			return nil, cerrors.New(cerrors.KindMalformedNode, path, "%s: %s", rule.field, err)
		}
		child, err := normalizeNode(cm, path+"/"+rule.field)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	case noChildren:
		// nothing to do
	}

	return n, nil
}
