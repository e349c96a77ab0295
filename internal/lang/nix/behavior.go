package nix

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_nix "github.com/tree-sitter-grammars/tree-sitter-nix/bindings/go"

	"github.com/codanna/codanna/internal/lang"
)

// Behavior implements lang.LanguageBehavior for Nix: attribute-path
// module paths joined with '.', no visibility modifiers, no traits or
// inherent methods. Grounded file-for-file on
// original_source/src/parsing/nix/behavior.rs.
type Behavior struct{}

// NewBehavior returns a Nix language behavior.
func NewBehavior() *Behavior { return &Behavior{} }

func (Behavior) FormatModulePath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

// ParseVisibility always returns Public: Nix has no visibility
// modifiers, every binding is accessible within its scope.
func (Behavior) ParseVisibility(string) lang.Visibility {
	return lang.VisibilityPublic
}

func (Behavior) ModuleSeparator() string { return "." }

func (Behavior) GetLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_nix.Language())
}

// ModulePathFromFile strips projectRoot and the .nix extension and
// converts path separators to dots; an empty result collapses to
// "default" (e.g. default.nix at the project root).
func (Behavior) ModulePathFromFile(filePath, projectRoot string) (string, bool) {
	rel := filePath
	if projectRoot != "" && strings.HasPrefix(filePath, projectRoot) {
		rel = strings.TrimPrefix(filePath, projectRoot)
	}
	rel = strings.TrimPrefix(rel, "./")
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimSuffix(rel, ".nix")
	rel = strings.NewReplacer("/", ".", "\\", ".").Replace(rel)

	if rel == "" {
		return "default", true
	}
	return rel, true
}

func (Behavior) SupportsTraits() bool          { return false }
func (Behavior) SupportsInherentMethods() bool { return false }

// IsResolvableSymbol mirrors is_resolvable_symbol: module/global/
// package-scoped symbols are always resolvable; local function and
// variable bindings are resolvable within their scope; parameters and
// class members (Nix has neither, but the tag can still appear from
// the generic pipeline) are not.
func (Behavior) IsResolvableSymbol(symbol *lang.Symbol) bool {
	switch symbol.ScopeContext.Kind {
	case lang.ScopeContextModule, lang.ScopeContextGlobal, lang.ScopeContextPackage:
		return true
	case lang.ScopeContextLocal:
		return symbol.Kind == lang.KindFunction || symbol.Kind == lang.KindVariable
	case lang.ScopeContextParameter, lang.ScopeContextClassMember:
		return false
	default:
		return symbol.Kind == lang.KindFunction || symbol.Kind == lang.KindVariable || symbol.Kind == lang.KindStruct
	}
}

// ConfigureSymbol is the sole writer of Symbol.ModulePath: joins
// modulePath with the symbol's own name, defaulting to the bare name
// when modulePath is empty, and forces Visibility to Public.
func (b Behavior) ConfigureSymbol(symbol *lang.Symbol, modulePath string) {
	if modulePath != "" {
		symbol.ModulePath = b.FormatModulePath(modulePath, symbol.Name)
	}
	symbol.Visibility = lang.VisibilityPublic
	if symbol.ModulePath == "" {
		symbol.ModulePath = symbol.Name
	}
}

func (Behavior) FormatMethodCall(receiver, method string) string {
	return receiver + "." + method
}

// InheritanceRelationName: Nix has no inheritance; "references" is the
// label used for attribute access and with-brought bindings.
func (Behavior) InheritanceRelationName() string { return "references" }

func (Behavior) MapRelationship(kindString string) lang.RelationKind {
	switch kindString {
	case "calls":
		return lang.RelationCalls
	case "references", "imports", "with":
		return lang.RelationReferences
	default:
		return lang.RelationReferences
	}
}

// ImportMatchesSymbol resolves './'- and '../'-relative Nix import
// paths against importingModule and compares the result to
// symbolModulePath, exactly as import_matches_symbol does.
func (Behavior) ImportMatchesSymbol(importPath, symbolModulePath, importingModule string) bool {
	if importPath == symbolModulePath {
		return true
	}

	switch {
	case strings.HasPrefix(importPath, "./"):
		rel := strings.TrimPrefix(importPath, "./")
		rel = strings.ReplaceAll(rel, "/", ".")
		resolved := rel
		if importingModule != "" {
			resolved = importingModule + "." + rel
		}
		return resolved == symbolModulePath

	case strings.HasPrefix(importPath, "../"):
		var parts []string
		if importingModule != "" {
			parts = strings.Split(importingModule, ".")
		}
		remaining := importPath
		for strings.HasPrefix(remaining, "../") {
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
			remaining = remaining[3:]
		}
		if remaining != "" {
			remainingDotted := strings.ReplaceAll(remaining, "/", ".")
			for _, p := range strings.Split(remainingDotted, ".") {
				if p != "" {
					parts = append(parts, p)
				}
			}
		}
		return strings.Join(parts, ".") == symbolModulePath

	default:
		return false
	}
}

var _ lang.LanguageBehavior = (*Behavior)(nil)
