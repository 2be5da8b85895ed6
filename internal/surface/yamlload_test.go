package surface_test

import (
	"testing"

	"github.com/odl-lang/odlc/internal/surface"
)

func TestLoadYAML(t *testing.T) {
	doc := []byte(`
worker:
  agent: drafter
  output: Report
`)
	root, err := surface.LoadYAML(doc)
	if err != nil {
		t.Fatalf("LoadYAML() error: %s", err)
	}
	key, body, ok := surface.SingleKey(root)
	if !ok || key != "worker" {
		t.Fatalf("LoadYAML() root key = %q, ok=%v, want \"worker\"", key, ok)
	}
	m, err := surface.AsMapping(body)
	if err != nil {
		t.Fatalf("AsMapping(body) error: %s", err)
	}
	if m["output"] != "Report" {
		t.Errorf("LoadYAML() output = %v, want Report", m["output"])
	}
}

func TestLoadYAMLRejectsNonMappingRoot(t *testing.T) {
	if _, err := surface.LoadYAML([]byte("- just\n- a\n- list\n")); err == nil {
		t.Errorf("LoadYAML() on a sequence root should fail")
	}
}

func TestLoadYAMLRejectsMalformed(t *testing.T) {
	if _, err := surface.LoadYAML([]byte("worker: [unterminated")); err == nil {
		t.Errorf("LoadYAML() on malformed YAML should fail")
	}
}
