package typescript

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/codanna/codanna/internal/lang"
)

// Behavior implements lang.LanguageBehavior for TypeScript: dotted
// module paths (mirroring ES module specifier convention), `export`
// keyword visibility, single-extends + multi-implements class model.
// Built from spec.md §4.3/§4.4's TypeScript rows — no
// original_source/typescript file survived distillation — in the
// teacher's dispatch idiom (internal/parser/treesitter.go's
// typescriptNodeToSymbol).
type Behavior struct{}

func NewBehavior() *Behavior { return &Behavior{} }

func (Behavior) FormatModulePath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

// ParseVisibility treats a signature carrying the `export` keyword as
// Public, everything else as module-private (TypeScript's default:
// unexported module members are invisible outside their file).
func (Behavior) ParseVisibility(signature string) lang.Visibility {
	trimmed := strings.TrimSpace(signature)
	if strings.HasPrefix(trimmed, "export ") || strings.HasPrefix(trimmed, "export default ") {
		return lang.VisibilityPublic
	}
	if strings.HasPrefix(trimmed, "private ") {
		return lang.VisibilityPrivate
	}
	if strings.HasPrefix(trimmed, "protected ") {
		return lang.VisibilityProtected
	}
	return lang.VisibilityModule
}

func (Behavior) ModuleSeparator() string { return "." }

func (Behavior) GetLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
}

// ModulePathFromFile strips projectRoot and the .ts/.tsx extension and
// converts path separators to dots; index.ts collapses to its
// containing directory's path, mirroring Node-style module resolution.
func (Behavior) ModulePathFromFile(filePath, projectRoot string) (string, bool) {
	rel := filePath
	if projectRoot != "" && strings.HasPrefix(filePath, projectRoot) {
		rel = strings.TrimPrefix(filePath, projectRoot)
	}
	rel = strings.TrimPrefix(rel, "/")
	for _, ext := range []string{".tsx", ".ts"} {
		rel = strings.TrimSuffix(rel, ext)
	}
	rel = strings.TrimSuffix(rel, "/index")
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
		symbol.Visibility = b.ParseVisibility(symbol.Signature)
	}
}

func (Behavior) FormatMethodCall(receiver, method string) string {
	return receiver + "." + method
}

func (Behavior) InheritanceRelationName() string { return "extends" }

func (Behavior) MapRelationship(kindString string) lang.RelationKind {
	switch kindString {
	case "extends":
		return lang.RelationExtends
	case "implements":
		return lang.RelationImplements
	case "calls":
		return lang.RelationCalls
	case "imports":
		return lang.RelationReferences
	default:
		return lang.RelationReferences
	}
}

// ImportMatchesSymbol handles ES module specifiers: exact absolute
// paths, and "./"/"../" relative imports resolved against importingModule.
func (Behavior) ImportMatchesSymbol(importPath, symbolModulePath, importingModule string) bool {
	if importPath == symbolModulePath {
		return true
	}

	switch {
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
			remaining = strings.TrimPrefix(remaining, "../")
		}
		if remaining != "" {
			parts = append(parts, strings.Split(remaining, "/")...)
		}
		return strings.Join(parts, ".") == symbolModulePath

	case strings.HasPrefix(importPath, "./"):
		rest := strings.TrimPrefix(importPath, "./")
		resolved := strings.ReplaceAll(rest, "/", ".")
		if importingModule != "" {
			resolved = importingModule + "." + resolved
		}
		return resolved == symbolModulePath

	default:
		return false
	}
}

var _ lang.LanguageBehavior = (*Behavior)(nil)
