package lang

import sitter "github.com/tree-sitter/go-tree-sitter"

// LanguageParser is the façade consumed by the enclosing indexer: it
// walks a concrete syntax tree for one language and produces typed
// symbols and relationship tuples. Implementations must not panic on
// any input; on unrecoverable parse failure Parse returns an empty
// slice (spec 4.1, 7).
type LanguageParser interface {
	// Parse walks code and emits Symbols, minting IDs from counter. It
	// is a pure function over its inputs except for counter mutation.
	Parse(code []byte, file FileID, counter *SymbolCounter) []*Symbol

	FindCalls(code []byte) []Call
	FindMethodCalls(code []byte) []MethodCall
	FindImplementations(code []byte) []Call
	FindUses(code []byte) []Call
	FindDefines(code []byte) []Call
	FindImports(code []byte, file FileID) []Import

	// ExtractDocComment returns the contiguous leading comment block
	// immediately preceding node, joined and trimmed, stopping at the
	// first blank line followed by non-comment text or any non-comment
	// non-blank line (spec 9 "Exact heuristic... preserve this rule
	// literally").
	ExtractDocComment(node *sitter.Node, code []byte) (string, bool)

	Language() LanguageID
}

// ParserContext is per-file state threaded through a recursive walk:
// the current module path being built and a scope-context stack used
// only to tag emitted symbols (actual name resolution lives in a
// ResolutionScope, populated separately by the caller as symbols are
// emitted). Reset on every Parse call.
type ParserContext struct {
	modulePath []string
	stack      []ScopeContext
}

// NewParserContext creates a fresh per-file context.
func NewParserContext() *ParserContext {
	return &ParserContext{}
}

// PushModule appends a path segment to the current module path.
func (c *ParserContext) PushModule(segment string) {
	c.modulePath = append(c.modulePath, segment)
}

// PopModule removes the most recently pushed module path segment.
func (c *ParserContext) PopModule() {
	if len(c.modulePath) > 0 {
		c.modulePath = c.modulePath[:len(c.modulePath)-1]
	}
}

// ModulePath returns the joined module path built so far, using sep.
func (c *ParserContext) ModulePath(sep string) string {
	out := ""
	for i, seg := range c.modulePath {
		if i > 0 {
			out += sep
		}
		out += seg
	}
	return out
}

// PushScope pushes a ScopeContext tag that future emitted symbols
// should carry until the matching PopScope.
func (c *ParserContext) PushScope(ctx ScopeContext) {
	c.stack = append(c.stack, ctx)
}

// PopScope pops the most recently pushed ScopeContext tag.
func (c *ParserContext) PopScope() {
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

// CurrentScopeContext returns the tag that should be attached to a
// symbol emitted right now, defaulting to GlobalScope at file top level.
func (c *ParserContext) CurrentScopeContext() ScopeContext {
	if len(c.stack) == 0 {
		return GlobalScope()
	}
	return c.stack[len(c.stack)-1]
}
