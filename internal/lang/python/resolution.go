// Package python implements lang.LanguageParser/Behavior/
// ResolutionScope/InheritanceResolver for Python, backed by
// tree-sitter-python.
package python

import "github.com/codanna/codanna/internal/lang"

// ResolutionContext implements lang.ResolutionScope with Python's LEGB
// rule: Local, Enclosing, Global, (imported,) Built-in. Grounded
// file-for-file on PythonResolutionContext in
// original_source/src/parsing/python/resolution.rs.
type ResolutionContext struct {
	fileID lang.FileID

	local     map[string]lang.SymbolID
	enclosing map[string]lang.SymbolID
	global    map[string]lang.SymbolID
	imported  map[string]lang.SymbolID
	builtin   map[string]lang.SymbolID

	scopeStack  []lang.ScopeType
	currentClass string
}

// NewResolutionContext returns an empty Python resolution context for file.
func NewResolutionContext(file lang.FileID) *ResolutionContext {
	return &ResolutionContext{
		fileID:    file,
		local:     make(map[string]lang.SymbolID),
		enclosing: make(map[string]lang.SymbolID),
		global:    make(map[string]lang.SymbolID),
		imported:  make(map[string]lang.SymbolID),
		builtin:   make(map[string]lang.SymbolID),
	}
}

// AddSymbolPython mirrors add_symbol_python: module-level or
// explicitly-global bindings (or the outermost scope, including file
// scope) go to global, everything else is local to the current function.
func (c *ResolutionContext) AddSymbolPython(name string, id lang.SymbolID, isGlobal bool) {
	if isGlobal || len(c.scopeStack) <= 1 {
		c.global[name] = id
		return
	}
	c.local[name] = id
}

// PushEnclosingScope moves every current local into the enclosing
// scope, matching push_enclosing_scope's move-then-clear pattern used
// when descending into a nested function definition.
func (c *ResolutionContext) PushEnclosingScope() {
	for name, id := range c.local {
		c.enclosing[name] = id
	}
	c.local = make(map[string]lang.SymbolID)
}

// PopEnclosingScope clears the enclosing scope on function exit.
func (c *ResolutionContext) PopEnclosingScope() {
	c.enclosing = make(map[string]lang.SymbolID)
}

// AddSymbol implements lang.ResolutionScope, routing by ScopeLevel:
// Local -> local scope, Module/Global -> global scope, Package ->
// imported symbols (Python's nearest analogue for package-level names).
func (c *ResolutionContext) AddSymbol(name string, id lang.SymbolID, level lang.ScopeLevel) {
	switch level {
	case lang.ScopeLevelLocal:
		c.local[name] = id
	case lang.ScopeLevelPackage:
		c.imported[name] = id
	default:
		c.global[name] = id
	}
}

// Resolve implements the LEGB order, plus a final qualified-name
// fallback (module.attr) that recurses on each component, matching
// the original's resolve().
func (c *ResolutionContext) Resolve(name string) (lang.SymbolID, bool) {
	if id, ok := c.local[name]; ok {
		return id, true
	}
	if id, ok := c.enclosing[name]; ok {
		return id, true
	}
	if id, ok := c.global[name]; ok {
		return id, true
	}
	if id, ok := c.imported[name]; ok {
		return id, true
	}
	if id, ok := c.builtin[name]; ok {
		return id, true
	}

	if parts := splitQualified(name); len(parts) == 2 {
		if _, ok := c.Resolve(parts[0]); ok {
			return c.Resolve(parts[1])
		}
		return 0, false
	}

	return 0, false
}

func splitQualified(name string) []string {
	idx := -1
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			if idx != -1 {
				// more than one dot: original only special-cases the
				// exact two-part case, anything else falls through
				return nil
			}
			idx = i
		}
	}
	if idx <= 0 || idx == len(name)-1 {
		return nil
	}
	return []string{name[:idx], name[idx+1:]}
}

// ClearLocalScope implements lang.ResolutionScope.
func (c *ResolutionContext) ClearLocalScope() {
	c.local = make(map[string]lang.SymbolID)
}

// EnterScope implements lang.ResolutionScope: entering a nested
// function (scope stack already non-empty) first moves locals to
// enclosing, matching enter_scope.
func (c *ResolutionContext) EnterScope(kind lang.ScopeType) {
	if kind == lang.ScopeTypeFunction && len(c.scopeStack) > 0 {
		c.PushEnclosingScope()
	}
	c.scopeStack = append(c.scopeStack, kind)
}

// ExitScope implements lang.ResolutionScope: exiting a function clears
// locals and the enclosing scope; exiting a class clears the tracked
// current class name.
func (c *ResolutionContext) ExitScope() {
	if len(c.scopeStack) == 0 {
		return
	}
	kind := c.scopeStack[len(c.scopeStack)-1]
	c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]

	switch kind {
	case lang.ScopeTypeFunction:
		c.ClearLocalScope()
		c.PopEnclosingScope()
	case lang.ScopeTypeClass:
		c.currentClass = ""
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
	for name, id := range c.imported {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelPackage})
	}
	for name, id := range c.global {
		out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelGlobal})
	}
	return out
}

var _ lang.ResolutionScope = (*ResolutionContext)(nil)
