package python

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/codanna/codanna/internal/lang"
)

// Behavior implements lang.LanguageBehavior for Python: dotted module
// paths, leading-underscore visibility convention, single inheritance
// plus duck-typed protocols (no interfaces). Built from spec.md's
// textual description (no original_source/python/behavior.rs was
// retained — only resolution.rs survived distillation) in the
// teacher's dispatch idiom (internal/parser/treesitter.go's
// pythonNodeToSymbol).
type Behavior struct{}

func NewBehavior() *Behavior { return &Behavior{} }

func (Behavior) FormatModulePath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

// ParseVisibility applies Python's underscore convention: a name
// starting with "__" (and not a dunder) is name-mangled/private, a
// single leading "_" is conventionally module-private, anything else
// is public. Operates on the symbol's bare name, smuggled in via
// signature by convention of the calling parser (signature begins
// with the name for simple bindings).
func (Behavior) ParseVisibility(signature string) lang.Visibility {
	name := signature
	if idx := strings.IndexAny(signature, "(: "); idx >= 0 {
		name = signature[:idx]
	}
	switch {
	case strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__"):
		return lang.VisibilityPrivate
	case strings.HasPrefix(name, "_"):
		return lang.VisibilityModule
	default:
		return lang.VisibilityPublic
	}
}

func (Behavior) ModuleSeparator() string { return "." }

func (Behavior) GetLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_python.Language())
}

// ModulePathFromFile strips projectRoot and the .py extension and
// converts path separators to dots; __init__.py collapses to its
// containing package directory's path.
func (Behavior) ModulePathFromFile(filePath, projectRoot string) (string, bool) {
	rel := filePath
	if projectRoot != "" && strings.HasPrefix(filePath, projectRoot) {
		rel = strings.TrimPrefix(filePath, projectRoot)
	}
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimSuffix(rel, ".py")
	rel = strings.TrimSuffix(rel, "/__init__")
	rel = strings.NewReplacer("/", ".", "\\", ".").Replace(rel)

	if rel == "" {
		return "", false
	}
	return rel, true
}

func (Behavior) SupportsTraits() bool          { return false }
func (Behavior) SupportsInherentMethods() bool { return true }

func (Behavior) IsResolvableSymbol(symbol *lang.Symbol) bool {
	switch symbol.ScopeContext.Kind {
	case lang.ScopeContextModule, lang.ScopeContextGlobal, lang.ScopeContextPackage, lang.ScopeContextClassMember:
		return true
	case lang.ScopeContextLocal:
		return symbol.Kind == lang.KindFunction || symbol.Kind == lang.KindVariable || symbol.Kind == lang.KindClass
	case lang.ScopeContextParameter:
		return false
	default:
		return true
	}
}

func (b Behavior) ConfigureSymbol(symbol *lang.Symbol, modulePath string) {
	if modulePath != "" {
		symbol.ModulePath = b.FormatModulePath(modulePath, symbol.Name)
	} else if symbol.ModulePath == "" {
		symbol.ModulePath = symbol.Name
	}
	if symbol.Visibility == "" {
		symbol.Visibility = b.ParseVisibility(symbol.Name)
	}
}

func (Behavior) FormatMethodCall(receiver, method string) string {
	return receiver + "." + method
}

func (Behavior) InheritanceRelationName() string { return "extends" }

func (Behavior) MapRelationship(kindString string) lang.RelationKind {
	switch kindString {
	case "extends", "inherits":
		return lang.RelationExtends
	case "calls":
		return lang.RelationCalls
	case "imports":
		return lang.RelationReferences
	default:
		return lang.RelationReferences
	}
}

// ImportMatchesSymbol handles Python's absolute dotted imports and
// single/double-dot relative imports (from . import x / from .. import y).
func (Behavior) ImportMatchesSymbol(importPath, symbolModulePath, importingModule string) bool {
	if importPath == symbolModulePath {
		return true
	}

	switch {
	case strings.HasPrefix(importPath, ".."):
		parts := strings.Split(importingModule, ".")
		if len(parts) > 0 {
			parts = parts[:len(parts)-1]
		}
		rest := strings.TrimPrefix(importPath, "..")
		rest = strings.TrimPrefix(rest, ".")
		if rest != "" {
			parts = append(parts, strings.Split(rest, ".")...)
		}
		return strings.Join(parts, ".") == symbolModulePath

	case strings.HasPrefix(importPath, "."):
		rest := strings.TrimPrefix(importPath, ".")
		resolved := rest
		if importingModule != "" {
			resolved = importingModule + "." + rest
		}
		return resolved == symbolModulePath

	default:
		return false
	}
}

var _ lang.LanguageBehavior = (*Behavior)(nil)
