package cerrors_test

import (
	"strings"
	"testing"

	"github.com/odl-lang/odlc/internal/cerrors"
	"github.com/odl-lang/odlc/testutils/assert"
)

func TestErrorMessageIncludesPathAndKind(t *testing.T) {
	err := cerrors.New(cerrors.KindUndefinedReference, "root/serial_0/worker_1", "no visible producer of %q", "Report")

	got := err.Error()
	for _, want := range []string{"root/serial_0/worker_1", "UndefinedReference", "Report"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}

	assert.NewExpectedMessages("root/serial_0/worker_1", "UndefinedReference", "Report").ContainedIn(t, got)
}

func TestErrorWithoutPath(t *testing.T) {
	err := cerrors.New(cerrors.KindInternalAssemblyError, "", "internal error: %v", "boom")
	if strings.Contains(err.Error(), "::") {
		t.Errorf("Error() = %q, unexpected empty path rendering", err.Error())
	}
}

func TestUnwrapExposesMgmterror(t *testing.T) {
	err := cerrors.New(cerrors.KindMissingRequiredField, "root/worker_0", "worker requires param %q", "agent")

	if err.Unwrap() == nil {
		t.Fatalf("Unwrap() returned nil, want the wrapped mgmterror application error")
	}
}

func TestKindStage(t *testing.T) {
	tests := []struct {
		kind cerrors.Kind
		want string
	}{
		{cerrors.KindMalformedNode, "parse"},
		{cerrors.KindReservedName, "syntax"},
		{cerrors.KindUndefinedReference, "resolve"},
		{cerrors.KindCircularDependency, "wiring"},
		{cerrors.KindInternalAssemblyError, "assemble"},
	}
	for _, tt := range tests {
		if got := tt.kind.Stage(); got != tt.want {
			t.Errorf("%s.Stage() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestListBatchesErrors(t *testing.T) {
	var l cerrors.List
	if l.AsError() != nil {
		t.Fatalf("empty list must report AsError() == nil")
	}

	l.Add(cerrors.New(cerrors.KindUndefinedReference, "a", "first"))
	l.Add(cerrors.New(cerrors.KindUndefinedReference, "b", "second"))

	err := l.AsError()
	if err == nil {
		t.Fatalf("non-empty list must report a non-nil error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "first") || !strings.Contains(msg, "second") {
		t.Errorf("List.Error() = %q, expected both messages joined", msg)
	}
}
