package lang

import sitter "github.com/tree-sitter/go-tree-sitter"

// LanguageBehavior adapts the generic parsing/resolution pipeline to
// one language's idioms: module-path construction, visibility rules,
// which symbols are resolvable, how imports are matched.
type LanguageBehavior interface {
	// FormatModulePath joins base and name using the language's
	// separator; an empty base yields name unchanged.
	FormatModulePath(base, name string) string

	// ParseVisibility applies a textual heuristic over a symbol's
	// signature; languages without explicit modifiers return Public.
	ParseVisibility(signature string) Visibility

	ModuleSeparator() string

	// GetLanguage returns the tree-sitter language handle backing this
	// behavior's parser.
	GetLanguage() *sitter.Language

	// ModulePathFromFile strips projectRoot and the file extension,
	// replacing path separators with the module separator; special
	// file names (default, mod, __init__, ...) may collapse to the
	// containing directory. ok is false when filePath cannot be made
	// relative to projectRoot or is otherwise unmappable.
	ModulePathFromFile(filePath, projectRoot string) (path string, ok bool)

	SupportsTraits() bool
	SupportsInherentMethods() bool

	// IsResolvableSymbol filters symbols before they enter the
	// resolution scope.
	IsResolvableSymbol(symbol *Symbol) bool

	// ConfigureSymbol finalizes ModulePath and Visibility. It is the
	// only writer of Symbol.ModulePath (spec 3 invariant).
	ConfigureSymbol(symbol *Symbol, modulePath string)

	FormatMethodCall(receiver, method string) string

	// InheritanceRelationName is the human label for the language's
	// main inheritance concept ("extends", "impl", "inherits from", ...).
	InheritanceRelationName() string

	// MapRelationship normalizes a per-language relationship label
	// (e.g. tree-sitter grammar node kind or keyword) to a RelationKind.
	MapRelationship(kindString string) RelationKind

	// ImportMatchesSymbol resolves '.'/'..' relative prefixes against
	// importingModule, converts path separators to module separators,
	// and checks equality against symbolModulePath.
	ImportMatchesSymbol(importPath, symbolModulePath, importingModule string) bool
}
