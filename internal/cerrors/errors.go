// Package cerrors implements the compiler's error taxonomy (spec §7) as
// thin wrappers around github.com/danos/mgmterror application errors,
// following the teacher's schema/errors.go pattern.
package cerrors

import (
	"fmt"
	"strings"

	"github.com/danos/mgmterror"
	"github.com/danos/utils/pathutil"
)

// Kind is one row of the §7 error taxonomy table.
type Kind string

const (
	KindMalformedNode         Kind = "MalformedNode"
	KindUnknownOpCode         Kind = "UnknownOpCode"
	KindReservedName          Kind = "ReservedName"
	KindPrivateName           Kind = "PrivateName"
	KindMissingRequiredField  Kind = "MissingRequiredField"
	KindExternalWriteAttempt  Kind = "ExternalWriteAttempt"
	KindNestedFanOut          Kind = "NestedFanOut"
	KindUndefinedReference    Kind = "UndefinedReference"
	KindAmbiguousProducer     Kind = "AmbiguousProducer"
	KindInvalidModifier       Kind = "InvalidModifier"
	KindUnboundDynamicVariable Kind = "UnboundDynamicVariable"
	KindCircularDependency    Kind = "CircularDependency"
	KindInternalAssemblyError Kind = "InternalAssemblyError"
)

// stage groups kinds by the pipeline stage that raises them, matching the
// "Stage" column of the §7 table.
var stage = map[Kind]string{
	KindMalformedNode:          "parse",
	KindUnknownOpCode:          "parse",
	KindReservedName:           "syntax",
	KindPrivateName:            "syntax",
	KindMissingRequiredField:   "syntax",
	KindExternalWriteAttempt:   "syntax",
	KindNestedFanOut:           "syntax",
	KindUndefinedReference:     "resolve",
	KindAmbiguousProducer:      "resolve",
	KindInvalidModifier:        "resolve",
	KindUnboundDynamicVariable: "resolve",
	KindCircularDependency:     "wiring",
	KindInternalAssemblyError:  "assemble",
}

func (k Kind) Stage() string { return stage[k] }

// Error is a single compiler diagnostic: a Kind, the offending node's
// path (a stack path once Expand has run; before that, the Parser and
// Syntax stages build a path from the node's position in the source
// tree; empty when no node applies), and a human message. It wraps an mgmterror application error so
// callers that understand that taxonomy (e.g. a management-plane caller
// embedding this compiler) can still type-switch on Unwrap().
type Error struct {
	Kind  Kind
	Path  string
	Msg   string
	cause error
}

func New(kind Kind, path, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Path: path, Msg: msg, cause: wrap(kind, path, msg)}
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// wrap picks the mgmterror application-error constructor whose semantics
// best match the kind, mirroring schema/errors.go's per-situation
// constructor choice.
func wrap(kind Kind, path, msg string) error {
	segs := splitPath(path)
	switch kind {
	case KindUnknownOpCode:
		e := mgmterror.NewUnknownElementApplicationError(msg)
		e.Path = pathutil.Pathstr(segs)
		e.Message = msg
		return e
	case KindMissingRequiredField:
		e := mgmterror.NewMissingElementApplicationError(msg)
		e.Path = pathutil.Pathstr(segs)
		e.Message = msg
		return e
	case KindUndefinedReference, KindAmbiguousProducer:
		e := mgmterror.NewDataMissingError()
		e.Path = pathutil.Pathstr(segs)
		e.Message = msg
		return e
	default:
		e := mgmterror.NewOperationFailedApplicationError()
		e.Path = pathutil.Pathstr(segs)
		e.Message = msg
		return e
	}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// List accumulates diagnostics across a batched stage (Syntax, Resolve)
// per the §7 propagation policy: those stages collect every error in the
// tree before returning, instead of failing on the first.
type List struct {
	Errors []*Error
}

func (l *List) Add(e *Error) { l.Errors = append(l.Errors, e) }

func (l *List) Empty() bool { return len(l.Errors) == 0 }

// AsError returns nil if the list is empty, else itself (so callers can
// `return errs.AsError()` directly from a stage function).
func (l *List) AsError() error {
	if l.Empty() {
		return nil
	}
	return l
}

func (l *List) Error() string {
	parts := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}
