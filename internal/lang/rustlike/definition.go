package rustlike

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
)

// Definition implements lang.LanguageDefinition, generic over a
// Dialect. Six constructors below build the concrete Rust/Go/C/C++/
// Java/JavaScript registrations.
type Definition struct {
	Dialect Dialect
	Sink    diag.Sink
}

func (d Definition) ID() lang.LanguageID  { return d.Dialect.ID }
func (d Definition) Name() string         { return d.Dialect.Name }
func (d Definition) Extensions() []string { return d.Dialect.Extensions }

func (d Definition) CreateParser(lang.Settings) (lang.LanguageParser, error) {
	p, err := NewParser(d.Dialect, d.Sink)
	if err != nil {
		return nil, fmt.Errorf("create %s parser: %w", d.Dialect.Name, err)
	}
	return p, nil
}

func (d Definition) CreateBehavior() lang.LanguageBehavior {
	return NewBehavior(d.Dialect)
}

// DefaultEnabled is true for all six dialects: each is enabled out of
// the box, matching the teacher's initializeLanguages() default.
func (Definition) DefaultEnabled() bool { return true }

func (d Definition) IsEnabled(settings lang.Settings) bool {
	return settings.IsEnabled(d.Dialect.Name, d.DefaultEnabled())
}

var _ lang.LanguageDefinition = (*Definition)(nil)

// NewRustDefinition returns the Rust registration: trait/impl model,
// "::" module paths, "pub"/"pub(crate)" visibility.
func NewRustDefinition(sink diag.Sink) *Definition {
	return &Definition{Sink: sink, Dialect: Dialect{
		ID:              "rust",
		Name:            "Rust",
		Extensions:      []string{"rs"},
		ModuleSeparator: "::",
		GetLanguage:     func() *sitter.Language { return sitter.NewLanguage(tree_sitter_rust.Language()) },
		FunctionKinds:   []string{"function_item"},
		TypeKinds: map[string]lang.Kind{
			"struct_item": lang.KindStruct,
			"enum_item":   lang.KindEnum,
			"trait_item":  lang.KindInterface,
		},
		ImplKind:                "impl_item",
		SupportsTraits:          true,
		SupportsInherentMethods: true,
		VisibilityKeywords: map[string]lang.Visibility{
			"pub":        lang.VisibilityPublic,
			"pub(crate)": lang.VisibilityCrate,
		},
		DefaultVisibility: lang.VisibilityPrivate,
	}}
}

// NewGoDefinition returns the Go registration: struct-embedding model,
// "." module paths. Go has no visibility keyword, so ParseVisibility
// always falls back to DefaultVisibility (Public) for every Go symbol;
// the capitalization of the symbol name is not consulted.
func NewGoDefinition(sink diag.Sink) *Definition {
	return &Definition{Sink: sink, Dialect: Dialect{
		ID:              "go",
		Name:            "Go",
		Extensions:      []string{"go"},
		ModuleSeparator: ".",
		GetLanguage:     func() *sitter.Language { return sitter.NewLanguage(tree_sitter_go.Language()) },
		FunctionKinds:   []string{"function_declaration", "method_declaration"},
		TypeKinds: map[string]lang.Kind{
			"type_declaration": lang.KindStruct,
		},
		NestedTypeSpecKind:      "type_spec",
		ImplKind:                "",
		SupportsTraits:          false,
		SupportsInherentMethods: true,
		VisibilityKeywords:      map[string]lang.Visibility{},
		DefaultVisibility:       lang.VisibilityPublic,
	}}
}

// NewCDefinition returns the C registration: no traits, no implements
// clauses, struct-only types, "." module paths (files, not namespaces).
func NewCDefinition(sink diag.Sink) *Definition {
	return &Definition{Sink: sink, Dialect: Dialect{
		ID:              "c",
		Name:            "C",
		Extensions:      []string{"c", "h"},
		ModuleSeparator: ".",
		GetLanguage:     func() *sitter.Language { return sitter.NewLanguage(tree_sitter_c.Language()) },
		FunctionKinds:   []string{"function_definition"},
		TypeKinds: map[string]lang.Kind{
			"struct_specifier": lang.KindStruct,
			"enum_specifier":   lang.KindEnum,
		},
		ImplKind:                "",
		SupportsTraits:          false,
		SupportsInherentMethods: false,
		VisibilityKeywords:      map[string]lang.Visibility{"static": lang.VisibilityModule},
		DefaultVisibility:       lang.VisibilityPublic,
	}}
}

// NewCppDefinition returns the C++ registration: single-extends class
// inheritance via base_class_clause, "::" module paths.
func NewCppDefinition(sink diag.Sink) *Definition {
	return &Definition{Sink: sink, Dialect: Dialect{
		ID:              "cpp",
		Name:            "C++",
		Extensions:      []string{"cpp", "cc", "hpp", "hh"},
		ModuleSeparator: "::",
		GetLanguage:     func() *sitter.Language { return sitter.NewLanguage(tree_sitter_cpp.Language()) },
		FunctionKinds:   []string{"function_definition"},
		TypeKinds: map[string]lang.Kind{
			"struct_specifier": lang.KindStruct,
			"class_specifier":  lang.KindClass,
			"enum_specifier":   lang.KindEnum,
		},
		ImplKind:                "",
		SupportsTraits:          false,
		SupportsInherentMethods: true,
		VisibilityKeywords:      map[string]lang.Visibility{"private": lang.VisibilityPrivate, "protected": lang.VisibilityProtected},
		DefaultVisibility:       lang.VisibilityPublic,
	}}
}

// NewJavaDefinition returns the Java registration: extends+implements
// clauses, "." module paths, explicit public/private/protected keywords.
func NewJavaDefinition(sink diag.Sink) *Definition {
	return &Definition{Sink: sink, Dialect: Dialect{
		ID:              "java",
		Name:            "Java",
		Extensions:      []string{"java"},
		ModuleSeparator: ".",
		GetLanguage:     func() *sitter.Language { return sitter.NewLanguage(tree_sitter_java.Language()) },
		FunctionKinds:   []string{"method_declaration", "constructor_declaration"},
		TypeKinds: map[string]lang.Kind{
			"class_declaration":     lang.KindClass,
			"interface_declaration": lang.KindInterface,
			"enum_declaration":      lang.KindEnum,
		},
		ImplKind:                "",
		SupportsTraits:          false,
		SupportsInherentMethods: true,
		VisibilityKeywords: map[string]lang.Visibility{
			"public":    lang.VisibilityPublic,
			"private":   lang.VisibilityPrivate,
			"protected": lang.VisibilityProtected,
		},
		DefaultVisibility: lang.VisibilityModule,
	}}
}

// NewJavaScriptDefinition returns the JavaScript registration:
// function/method declarations and classes, no visibility keywords (JS
// has none pre-dating "#"-prefixed private fields, which this dialect
// does not special-case), "." module paths.
func NewJavaScriptDefinition(sink diag.Sink) *Definition {
	return &Definition{Sink: sink, Dialect: Dialect{
		ID:              "javascript",
		Name:            "JavaScript",
		Extensions:      []string{"js", "mjs", "jsx"},
		ModuleSeparator: ".",
		GetLanguage:     func() *sitter.Language { return sitter.NewLanguage(tree_sitter_javascript.Language()) },
		FunctionKinds:   []string{"function_declaration", "method_definition"},
		TypeKinds: map[string]lang.Kind{
			"class_declaration": lang.KindClass,
		},
		ImplKind:                "",
		SupportsTraits:          false,
		SupportsInherentMethods: true,
		VisibilityKeywords:      map[string]lang.Visibility{},
		DefaultVisibility:       lang.VisibilityPublic,
	}}
}
