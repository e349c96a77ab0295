package registry

import (
	"testing"

	"github.com/codanna/codanna/internal/lang"
)

func TestNewRegistersAllLanguages(t *testing.T) {
	r := New(nil)

	want := []string{"nix", "python", "typescript", "rust", "go", "c", "cpp", "java", "javascript"}
	for _, id := range want {
		if _, ok := r.ByID(lang.LanguageID(id)); !ok {
			t.Errorf("expected language %q to be registered", id)
		}
	}
}

func TestNewIndexesExtensions(t *testing.T) {
	r := New(nil)

	cases := map[string]string{
		"nix":  "nix",
		"py":   "python",
		"ts":   "typescript",
		"rs":   "rust",
		"go":   "go",
		"c":    "c",
		"cpp":  "cpp",
		"java": "java",
		"js":   "javascript",
		"jsx":  "javascript",
	}
	for ext, wantID := range cases {
		def, ok := r.ByExtension(ext)
		if !ok {
			t.Fatalf("extension %q not registered", ext)
		}
		if string(def.ID()) != wantID {
			t.Errorf("extension %q resolved to %q, want %q", ext, def.ID(), wantID)
		}
	}
}
