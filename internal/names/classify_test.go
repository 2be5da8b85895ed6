package names_test

import (
	"testing"

	"github.com/odl-lang/odlc/internal/names"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want names.Kind
	}{
		{"job document", "Report", names.KindJobDocument},
		{"job document with modifier", "Report@history", names.KindJobDocument},
		{"project document", "Catalog:sku-42", names.KindProjectDocument},
		{"project document with version", "Catalog:sku-42@v2", names.KindProjectDocument},
		{"reserved beats everything", "__Report", names.KindReserved},
		{"reserved in the middle", "Pre__fix", names.KindReserved},
		{"private", "_draft", names.KindPrivate},
		{"private prefix beats project-looking suffix", "_Catalog:sku", names.KindPrivate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names.Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseProjectDocument(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   names.ProjectDocument
		wantOK bool
	}{
		{"explicit version", "Catalog:sku-42@v2",
			names.ProjectDocument{Name: "Catalog", ResourceID: "sku-42", Version: "v2"}, true},
		{"default version", "Catalog:sku-42",
			names.ProjectDocument{Name: "Catalog", ResourceID: "sku-42", Version: names.DefaultVersion}, true},
		{"no colon", "Catalog", names.ProjectDocument{}, false},
		{"empty resource id", "Catalog:", names.ProjectDocument{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := names.ParseProjectDocument(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseProjectDocument(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseProjectDocument(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestProjectDocumentExternal(t *testing.T) {
	pd := names.ProjectDocument{Name: "Catalog", ResourceID: "sku-42", Version: "v2"}
	if got, want := pd.External(), "Catalog:sku-42@v2"; got != want {
		t.Errorf("External() = %q, want %q", got, want)
	}
}

func TestSplitInputModifier(t *testing.T) {
	tests := []struct {
		in       string
		wantBase string
		wantMod  string
	}{
		{"Report", "Report", ""},
		{"Report@history", "Report", "history"},
		{"Report@prev", "Report", "prev"},
	}
	for _, tt := range tests {
		base, mod := names.SplitInputModifier(tt.in)
		if base != tt.wantBase || mod != tt.wantMod {
			t.Errorf("SplitInputModifier(%q) = (%q, %q), want (%q, %q)",
				tt.in, base, mod, tt.wantBase, tt.wantMod)
		}
	}
}
