// Package typescript implements lang.LanguageParser/Behavior/
// ResolutionScope/InheritanceResolver for TypeScript, backed by
// tree-sitter-typescript. No original_source/typescript file survived
// distillation, so the resolution/inheritance model here is built
// directly from spec.md §4.3/§4.4's TypeScript rows, in the same idiom
// internal/lang/python and internal/lang/nix use for their own
// ResolutionScope implementations.
package typescript

import "github.com/codanna/codanna/internal/lang"

// ResolutionContext implements lang.ResolutionScope with spec.md's
// TypeScript order: Local -> Enclosing closures -> Module -> Imports ->
// Ambient/Global.
type ResolutionContext struct {
	fileID lang.FileID

	local     map[string]lang.SymbolID
	enclosing map[string]lang.SymbolID
	module    map[string]lang.SymbolID
	imported  map[string]lang.SymbolID
	ambient   map[string]lang.SymbolID

	scopeStack []lang.ScopeType
}

// NewResolutionContext returns an empty TypeScript resolution context for file.
func NewResolutionContext(file lang.FileID) *ResolutionContext {
	return &ResolutionContext{
		fileID:    file,
		local:     make(map[string]lang.SymbolID),
		enclosing: make(map[string]lang.SymbolID),
		module:    make(map[string]lang.SymbolID),
		imported:  make(map[string]lang.SymbolID),
		ambient:   make(map[string]lang.SymbolID),
	}
}

// pushEnclosing mirrors Python's closure-capture move-then-clear
// pattern from resolution.rs, generalized per spec.md 4.3's "Local ->
// Enclosing closures" TypeScript row.
func (c *ResolutionContext) pushEnclosing() {
	for name, id := range c.local {
		c.enclosing[name] = id
	}
	c.local = make(map[string]lang.SymbolID)
}

// AddSymbol implements lang.ResolutionScope.
func (c *ResolutionContext) AddSymbol(name string, id lang.SymbolID, level lang.ScopeLevel) {
	switch level {
	case lang.ScopeLevelLocal:
		c.local[name] = id
	case lang.ScopeLevelModule:
		c.module[name] = id
	case lang.ScopeLevelPackage:
		c.imported[name] = id
	default:
		c.ambient[name] = id
	}
}

// Resolve walks Local -> Enclosing -> Module -> Imports -> Ambient/Global.
func (c *ResolutionContext) Resolve(name string) (lang.SymbolID, bool) {
	if id, ok := c.local[name]; ok {
		return id, true
	}
	if id, ok := c.enclosing[name]; ok {
		return id, true
	}
	if id, ok := c.module[name]; ok {
		return id, true
	}
	if id, ok := c.imported[name]; ok {
		return id, true
	}
	if id, ok := c.ambient[name]; ok {
		return id, true
	}
	return 0, false
}

// ClearLocalScope implements lang.ResolutionScope.
func (c *ResolutionContext) ClearLocalScope() {
	c.local = make(map[string]lang.SymbolID)
}

// EnterScope implements lang.ResolutionScope: entering a nested
// function while already inside one captures current locals as an
// enclosing closure, matching Python's resolution.go sibling.
func (c *ResolutionContext) EnterScope(kind lang.ScopeType) {
	if kind == lang.ScopeTypeFunction && len(c.scopeStack) > 0 {
		c.pushEnclosing()
	}
	c.scopeStack = append(c.scopeStack, kind)
}

// ExitScope implements lang.ResolutionScope: leaving a function clears
// locals and the captured enclosing scope.
func (c *ResolutionContext) ExitScope() {
	if len(c.scopeStack) == 0 {
		return
	}
	kind := c.scopeStack[len(c.scopeStack)-1]
	c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]

	if kind == lang.ScopeTypeFunction {
		c.ClearLocalScope()
		c.enclosing = make(map[string]lang.SymbolID)
	}
}

// SymbolsInScope implements lang.ResolutionScope.
func (c *ResolutionContext) SymbolsInScope() []lang.ScopeBinding {
	var out []lang.ScopeBinding
	for name, id := range c.local {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelLocal})
	}
	for name, id := range c.enclosing {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelLocal})
	}
	for name, id := range c.module {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelModule})
	}
	for name, id := range c.imported {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelPackage})
	}
	for name, id := range c.ambient {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelGlobal})
	}
	return out
}

var _ lang.ResolutionScope = (*ResolutionContext)(nil)
