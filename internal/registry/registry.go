// Package registry wires every internal/lang/* language definition
// into one lang.LanguageRegistry. It lives above internal/lang so the
// per-language packages (nix, python, typescript, rustlike) stay free
// to import internal/lang without a cycle back through here.
package registry

import (
	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
	"github.com/codanna/codanna/internal/lang/nix"
	"github.com/codanna/codanna/internal/lang/python"
	"github.com/codanna/codanna/internal/lang/rustlike"
	"github.com/codanna/codanna/internal/lang/typescript"
)

// New builds a LanguageRegistry with all supported languages
// registered, diagnostics routed to sink (nil discards them).
// Grounded on the teacher's LanguageRegistry.initializeLanguages
// (internal/parser/languages.go), generalized from one fixed
// tree-sitter-only list to the full spec.md language set with
// per-language resolution/inheritance behavior.
func New(sink diag.Sink) *lang.LanguageRegistry {
	r := lang.NewLanguageRegistry()

	r.Register(nix.NewDefinition(sink))
	r.Register(python.NewDefinition(sink))
	r.Register(typescript.NewDefinition(sink))
	r.Register(rustlike.NewRustDefinition(sink))
	r.Register(rustlike.NewGoDefinition(sink))
	r.Register(rustlike.NewCDefinition(sink))
	r.Register(rustlike.NewCppDefinition(sink))
	r.Register(rustlike.NewJavaDefinition(sink))
	r.Register(rustlike.NewJavaScriptDefinition(sink))

	return r
}
