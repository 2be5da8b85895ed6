// Package compiler wires the six pipeline stages (Parse/Normalize,
// Syntax, Expand, Resolve, Wiring Check, Assemble) into the single
// Compile entry point, mirroring the teacher's top-level Compiler
// struct in compile.go (NewCompiler/Compile, panic/recover fast-fail
// for the non-batching stages, and an injectable logrus logger).
package compiler

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/odl-lang/odlc/internal/assemble"
	"github.com/odl-lang/odlc/internal/cerrors"
	"github.com/odl-lang/odlc/internal/expand"
	"github.com/odl-lang/odlc/internal/ir"
	"github.com/odl-lang/odlc/internal/parser"
	"github.com/odl-lang/odlc/internal/resolve"
	"github.com/odl-lang/odlc/internal/surface"
	"github.com/odl-lang/odlc/internal/syntax"
	"github.com/odl-lang/odlc/internal/wiring"
)

// Config holds the compiler's optional knobs. Zero value is a usable
// default (nil logger, no depth bound).
type Config struct {
	// Logger receives one debug-level line per stage transition, and a
	// warn-level line when the wiring check finds orphan outputs. Nil
	// disables logging entirely rather than falling back to a default
	// writer, so embedding a Compiler in a larger program never prints
	// to its own stdout uninvited.
	Logger logrus.FieldLogger

	// MaxDepth caps tree depth as a defensive bound against pathological
	// or adversarial input (spec §10); 0 means unbounded.
	MaxDepth int
}

// Compiler runs the pipeline with a fixed Config. It holds no other
// state: Compile is a pure function of its input document.
type Compiler struct {
	cfg Config
}

func New(cfg Config) *Compiler {
	return &Compiler{cfg: cfg}
}

// Compile runs all six stages over a single document's raw YAML bytes
// and returns the frozen IR, or the first/batched error a stage raised.
func (c *Compiler) Compile(data []byte) (*ir.IR, error) {
	raw, err := surface.LoadYAML(data)
	if err != nil {
		return nil, cerrors.New(cerrors.KindMalformedNode, "root", "%s", err)
	}
	return c.CompileRaw(raw)
}

// CompileRaw runs the pipeline over an already-decoded surface tree,
// for callers that already hold one and don't need the YAML decode step.
func (c *Compiler) CompileRaw(raw surface.RawNode) (result *ir.IR, err error) {
	defer func() {
		// Parse, Expand, Wiring Check and Assemble fail fast (§7); a
		// stage bug surfacing as a panic (e.g. an index out of range on
		// a malformed tree that slipped past Syntax) is still reported
		// as an InternalAssemblyError rather than crashing the caller,
		// matching the teacher's top-level recover() in compile.go.
		if r := recover(); r != nil {
			err = cerrors.New(cerrors.KindInternalAssemblyError, "", "internal error: %v", r)
		}
	}()

	c.logf("parse: normalizing surface tree")
	n, err := parser.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if c.cfg.MaxDepth > 0 {
		if depth := treeDepth(n); depth > c.cfg.MaxDepth {
			return nil, cerrors.New(cerrors.KindMalformedNode, n.StackPath,
				"tree depth %d exceeds configured maximum %d", depth, c.cfg.MaxDepth)
		}
	}

	c.logf("syntax: validating opcode schemas and artifact names")
	if err := syntax.Validate(n); err != nil {
		return nil, err
	}

	c.logf("expand: desugaring and assigning stack paths")
	n = expand.Expand(n)

	c.logf("resolve: binding inputs to producers")
	if err := resolve.Resolve(n); err != nil {
		return nil, err
	}

	c.logf("wiring: checking the data-flow graph for cycles")
	wres, err := wiring.Check(n)
	if err != nil {
		return nil, err
	}
	if summary := wres.OrphanSummary(); summary != "" && c.cfg.Logger != nil {
		c.cfg.Logger.Warn("wiring: " + summary)
	}

	c.logf("assemble: freezing the IR")
	out, err := assemble.Assemble(n)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Compiler) logf(format string, args ...any) {
	if c.cfg.Logger == nil {
		return
	}
	c.cfg.Logger.Debug(fmt.Sprintf(format, args...))
}

func treeDepth(n *ir.Node) int {
	max := 0
	for _, c := range n.Children {
		if d := treeDepth(c); d > max {
			max = d
		}
	}
	return max + 1
}
