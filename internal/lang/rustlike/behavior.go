package rustlike

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codanna/codanna/internal/lang"
)

// Dialect is the per-language configuration that parameterizes the
// shared Behavior/Parser/Definition over Rust, Go, C, C++, Java and
// JavaScript — spec.md treats these as one resolution-table row, so
// rather than six near-duplicate packages this package carries one
// implementation and six Dialect values (see definition.go).
type Dialect struct {
	ID         lang.LanguageID
	Name       string
	Extensions []string

	// ModuleSeparator is "::" for Rust/C++ namespaces, "." for Go/Java.
	ModuleSeparator string

	GetLanguage func() *sitter.Language

	// FunctionKinds are tree-sitter node kinds treated as function/method
	// declarations.
	FunctionKinds []string
	// TypeKinds maps a tree-sitter node kind to the Kind it should emit
	// (struct_item -> KindStruct, class_declaration -> KindClass, ...).
	TypeKinds map[string]lang.Kind

	// ImplKind is the node kind for "impl Trait for Type" (Rust) or
	// empty when the dialect has no such construct.
	ImplKind string

	// NestedTypeSpecKind is the node kind a type-declaration's actual
	// name/type fields live on, when TypeKinds fires on a wrapper node
	// that carries no fields of its own (Go's "type_declaration" wraps
	// one or more "type_spec" children for grouped "type ( ... )"
	// blocks). Empty for dialects where the type-kind node carries its
	// own name/body fields directly.
	NestedTypeSpecKind string

	SupportsTraits          bool
	SupportsInherentMethods bool

	VisibilityKeywords map[string]lang.Visibility // "pub" -> Public, "private" -> Private, ...
	DefaultVisibility  lang.Visibility
}

// Behavior implements lang.LanguageBehavior, generic over a Dialect.
type Behavior struct {
	Dialect Dialect
}

func NewBehavior(d Dialect) *Behavior { return &Behavior{Dialect: d} }

func (b *Behavior) FormatModulePath(base, name string) string {
	if base == "" {
		return name
	}
	return base + b.Dialect.ModuleSeparator + name
}

// ParseVisibility matches the dialect's leading visibility keyword in
// signature (e.g. "pub fn foo" -> Public, "private void bar()" ->
// Private); dialects without explicit modifiers (Go: capitalization)
// fall back to DefaultVisibility.
func (b *Behavior) ParseVisibility(signature string) lang.Visibility {
	trimmed := strings.TrimSpace(signature)
	for kw, vis := range b.Dialect.VisibilityKeywords {
		if strings.HasPrefix(trimmed, kw+" ") {
			return vis
		}
	}
	return b.Dialect.DefaultVisibility
}

func (b *Behavior) ModuleSeparator() string { return b.Dialect.ModuleSeparator }

func (b *Behavior) GetLanguage() *sitter.Language { return b.Dialect.GetLanguage() }

// ModulePathFromFile strips projectRoot and the dialect's first
// matching extension, converting path separators to the dialect's
// module separator.
func (b *Behavior) ModulePathFromFile(filePath, projectRoot string) (string, bool) {
	rel := filePath
	if projectRoot != "" && strings.HasPrefix(filePath, projectRoot) {
		rel = strings.TrimPrefix(filePath, projectRoot)
	}
	rel = strings.TrimPrefix(rel, "/")
	for _, ext := range b.Dialect.Extensions {
		if strings.HasSuffix(rel, "."+ext) {
			rel = strings.TrimSuffix(rel, "."+ext)
			break
		}
	}
	rel = strings.TrimSuffix(rel, "/mod")
	rel = strings.NewReplacer("/", b.Dialect.ModuleSeparator, "\\", b.Dialect.ModuleSeparator).Replace(rel)

	if rel == "" {
		return "", false
	}
	return rel, true
}

func (b *Behavior) SupportsTraits() bool          { return b.Dialect.SupportsTraits }
func (b *Behavior) SupportsInherentMethods() bool { return b.Dialect.SupportsInherentMethods }

func (b *Behavior) IsResolvableSymbol(symbol *lang.Symbol) bool {
	return symbol.ScopeContext.Kind != lang.ScopeContextParameter
}

func (b *Behavior) ConfigureSymbol(symbol *lang.Symbol, modulePath string) {
	if modulePath != "" {
		symbol.ModulePath = b.FormatModulePath(modulePath, symbol.Name)
	} else if symbol.ModulePath == "" {
		symbol.ModulePath = symbol.Name
	}
	if symbol.Visibility == "" {
		symbol.Visibility = b.ParseVisibility(symbol.Signature)
	}
}

func (b *Behavior) FormatMethodCall(receiver, method string) string {
	return receiver + "." + method
}

func (b *Behavior) InheritanceRelationName() string {
	if b.Dialect.SupportsTraits {
		return "impl"
	}
	return "implements"
}

func (Behavior) MapRelationship(kindString string) lang.RelationKind {
	switch kindString {
	case "impl", "implements", "extends", "embeds":
		return lang.RelationImplements
	case "calls":
		return lang.RelationCalls
	case "imports", "use":
		return lang.RelationReferences
	default:
		return lang.RelationReferences
	}
}

// ImportMatchesSymbol checks exact equality against symbolModulePath,
// the common case for explicit `use`/`import` paths, for all six
// dialects. Relative "./"/"../" specifiers (as JavaScript imports use)
// are not resolved against importingModule, so they match only when
// equal to symbolModulePath.
func (b *Behavior) ImportMatchesSymbol(importPath, symbolModulePath, importingModule string) bool {
	return importPath == symbolModulePath
}

var _ lang.LanguageBehavior = (*Behavior)(nil)
