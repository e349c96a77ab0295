// Package rustlike implements a single generalized
// lang.LanguageParser/Behavior/ResolutionScope/InheritanceResolver
// shared across Rust, Go, C, C++, Java and JavaScript — spec.md §4.3 treats these
// as "one row" in the resolution table (Local -> Block chain -> Module
// -> Use-imports -> Crate/Prelude), and §4.4 treats "impl Trait for
// Type" / "implements Interface" / struct embedding as variations of
// the same flat trait/impl method-table model. Per-language
// differences live entirely in the Dialect passed to NewParser/
// NewBehavior; dispatch is grounded on the teacher's
// goNodeToSymbol/rustNodeToSymbol (internal/parser/treesitter.go),
// generalized from hardcoded node-kind switches to a Dialect-driven
// table.
package rustlike

import "github.com/codanna/codanna/internal/lang"

// ResolutionContext implements lang.ResolutionScope with spec.md's
// Rust-like order: Local -> Block chain (nested blocks, innermost
// first) -> Module -> Use-imports -> Crate/Prelude.
type ResolutionContext struct {
	fileID lang.FileID

	blocks   []map[string]lang.SymbolID // block chain, innermost last
	module   map[string]lang.SymbolID
	imported map[string]lang.SymbolID
	prelude  map[string]lang.SymbolID

	scopeStack []lang.ScopeType
}

// NewResolutionContext returns an empty Rust-like resolution context for file.
func NewResolutionContext(file lang.FileID) *ResolutionContext {
	return &ResolutionContext{
		fileID:   file,
		blocks:   []map[string]lang.SymbolID{make(map[string]lang.SymbolID)},
		module:   make(map[string]lang.SymbolID),
		imported: make(map[string]lang.SymbolID),
		prelude:  make(map[string]lang.SymbolID),
	}
}

func (c *ResolutionContext) top() map[string]lang.SymbolID {
	return c.blocks[len(c.blocks)-1]
}

// AddSymbol implements lang.ResolutionScope.
func (c *ResolutionContext) AddSymbol(name string, id lang.SymbolID, level lang.ScopeLevel) {
	switch level {
	case lang.ScopeLevelLocal:
		c.top()[name] = id
	case lang.ScopeLevelModule:
		c.module[name] = id
	case lang.ScopeLevelPackage:
		c.imported[name] = id
	default:
		c.prelude[name] = id
	}
}

// Resolve walks the block chain innermost-first, then Module, then
// imports, then Crate/Prelude.
func (c *ResolutionContext) Resolve(name string) (lang.SymbolID, bool) {
	for i := len(c.blocks) - 1; i >= 0; i-- {
		if id, ok := c.blocks[i][name]; ok {
			return id, true
		}
	}
	if id, ok := c.module[name]; ok {
		return id, true
	}
	if id, ok := c.imported[name]; ok {
		return id, true
	}
	if id, ok := c.prelude[name]; ok {
		return id, true
	}
	return 0, false
}

// ClearLocalScope clears only the innermost block.
func (c *ResolutionContext) ClearLocalScope() {
	c.blocks[len(c.blocks)-1] = make(map[string]lang.SymbolID)
}

// EnterScope pushes a new block onto the chain for Block/Function
// scopes; Module/Class/etc. are tracked on the stack but don't start a
// new block (their members are registered at Module level directly).
func (c *ResolutionContext) EnterScope(kind lang.ScopeType) {
	c.scopeStack = append(c.scopeStack, kind)
	if kind == lang.ScopeTypeFunction || kind == lang.ScopeTypeBlock {
		c.blocks = append(c.blocks, make(map[string]lang.SymbolID))
	}
}

// ExitScope pops the matching block off the chain.
func (c *ResolutionContext) ExitScope() {
	if len(c.scopeStack) == 0 {
		return
	}
	kind := c.scopeStack[len(c.scopeStack)-1]
	c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]
	if (kind == lang.ScopeTypeFunction || kind == lang.ScopeTypeBlock) && len(c.blocks) > 1 {
		c.blocks = c.blocks[:len(c.blocks)-1]
	}
}

// SymbolsInScope implements lang.ResolutionScope.
func (c *ResolutionContext) SymbolsInScope() []lang.ScopeBinding {
	var out []lang.ScopeBinding
	for i := len(c.blocks) - 1; i >= 0; i-- {
		for name, id := range c.blocks[i] {
			out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelLocal})
		}
	}
	for name, id := range c.module {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelModule})
	}
	for name, id := range c.imported {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelPackage})
	}
	for name, id := range c.prelude {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelGlobal})
	}
	return out
}

var _ lang.ResolutionScope = (*ResolutionContext)(nil)
