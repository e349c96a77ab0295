// Package nix implements lang.LanguageParser/Behavior/ResolutionScope/
// InheritanceResolver for Nix expressions, backed by tree-sitter-nix.
package nix

import "github.com/codanna/codanna/internal/lang"

// scopeType is Nix's own scope taxonomy, a refinement of lang.ScopeType
// that distinguishes let-in, with, and recursive-attrset scopes the
// generic enum has no room for. Grounded file-for-file on
// original_source/src/parsing/nix/resolution.rs's NixScopeType.
type scopeType int

const (
	scopeGlobal scopeType = iota
	scopeLetIn
	scopeWith
	scopeRecursiveAttrSet
	scopeFunction
	scopeAttrSet
)

// ResolutionContext implements lang.ResolutionScope with Nix's
// resolution order: current scope, then let bindings (innermost
// first), then with bindings (innermost first), then rec bindings
// (innermost first), then outer scopes working outward. Grounded on
// resolve_nix_symbol in original_source/src/parsing/nix/resolution.rs.
type ResolutionContext struct {
	fileID lang.FileID

	scopes    []map[string]lang.SymbolID
	scopeKind []scopeType

	letContexts []map[string]lang.SymbolID
	withContexts []map[string]lang.SymbolID
	recContexts []map[string]lang.SymbolID
}

// NewResolutionContext creates a context seeded with a single global
// scope, for the given file.
func NewResolutionContext(fileID lang.FileID) *ResolutionContext {
	c := &ResolutionContext{fileID: fileID}
	c.scopes = append(c.scopes, make(map[string]lang.SymbolID))
	c.scopeKind = append(c.scopeKind, scopeGlobal)
	return c
}

// EnterLetScope pushes a let-in binding scope; bindings added here are
// visible to the 'in' expression.
func (c *ResolutionContext) EnterLetScope() {
	c.letContexts = append(c.letContexts, make(map[string]lang.SymbolID))
	c.scopeKind = append(c.scopeKind, scopeLetIn)
	c.scopes = append(c.scopes, make(map[string]lang.SymbolID))
}

// ExitLetScope pops the most recently entered let-in scope.
func (c *ResolutionContext) ExitLetScope() {
	if c.top() != scopeLetIn {
		return
	}
	c.popScopeKind()
	c.popScope()
	c.letContexts = c.letContexts[:len(c.letContexts)-1]
}

// EnterWithScope pushes a with-expression scope, bringing attrSymbols
// (the resolved member names of the attribute set named in the with)
// into scope for the body expression.
func (c *ResolutionContext) EnterWithScope(attrSymbols map[string]lang.SymbolID) {
	if attrSymbols == nil {
		attrSymbols = make(map[string]lang.SymbolID)
	}
	c.withContexts = append(c.withContexts, attrSymbols)
	c.scopeKind = append(c.scopeKind, scopeWith)
	c.scopes = append(c.scopes, make(map[string]lang.SymbolID))
}

// ExitWithScope pops the most recently entered with scope.
func (c *ResolutionContext) ExitWithScope() {
	if c.top() != scopeWith {
		return
	}
	c.popScopeKind()
	c.popScope()
	c.withContexts = c.withContexts[:len(c.withContexts)-1]
}

// EnterAttrSetScope pushes an attribute-set scope; when recursive it
// also opens a rec-context for forward self-references.
func (c *ResolutionContext) EnterAttrSetScope(recursive bool) {
	if recursive {
		c.recContexts = append(c.recContexts, make(map[string]lang.SymbolID))
		c.scopeKind = append(c.scopeKind, scopeRecursiveAttrSet)
	} else {
		c.scopeKind = append(c.scopeKind, scopeAttrSet)
	}
	c.scopes = append(c.scopes, make(map[string]lang.SymbolID))
}

// ExitAttrSetScope pops the most recently entered attribute-set scope.
func (c *ResolutionContext) ExitAttrSetScope() {
	switch c.top() {
	case scopeRecursiveAttrSet:
		c.popScopeKind()
		c.popScope()
		c.recContexts = c.recContexts[:len(c.recContexts)-1]
	case scopeAttrSet:
		c.popScopeKind()
		c.popScope()
	}
}

// EnterFunctionScope pushes a function scope pre-populated with params.
func (c *ResolutionContext) EnterFunctionScope(params []lang.ScopeBinding) {
	c.scopeKind = append(c.scopeKind, scopeFunction)
	scope := make(map[string]lang.SymbolID, len(params))
	for _, p := range params {
		scope[p.Name] = p.ID
	}
	c.scopes = append(c.scopes, scope)
}

// ExitFunctionScope pops the most recently entered function scope.
func (c *ResolutionContext) ExitFunctionScope() {
	if c.top() != scopeFunction {
		return
	}
	c.popScopeKind()
	c.popScope()
}

// AddRecursiveSymbol registers name in the innermost rec context so
// later siblings in the same rec { } can forward-reference it.
func (c *ResolutionContext) AddRecursiveSymbol(name string, id lang.SymbolID) {
	if len(c.recContexts) == 0 {
		return
	}
	c.recContexts[len(c.recContexts)-1][name] = id
}

// ResolveNixSymbol implements the exact five-step order documented on
// resolve_nix_symbol: current scope, let contexts (reverse), with
// contexts (reverse), rec contexts (reverse), then outer scopes
// (skipping the current one, already checked).
func (c *ResolutionContext) ResolveNixSymbol(name string) (lang.SymbolID, bool) {
	if len(c.scopes) > 0 {
		if id, ok := c.scopes[len(c.scopes)-1][name]; ok {
			return id, true
		}
	}
	for i := len(c.letContexts) - 1; i >= 0; i-- {
		if id, ok := c.letContexts[i][name]; ok {
			return id, true
		}
	}
	for i := len(c.withContexts) - 1; i >= 0; i-- {
		if id, ok := c.withContexts[i][name]; ok {
			return id, true
		}
	}
	for i := len(c.recContexts) - 1; i >= 0; i-- {
		if id, ok := c.recContexts[i][name]; ok {
			return id, true
		}
	}
	for i := len(c.scopes) - 2; i >= 0; i-- {
		if id, ok := c.scopes[i][name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (c *ResolutionContext) top() scopeType {
	if len(c.scopeKind) == 0 {
		return scopeGlobal
	}
	return c.scopeKind[len(c.scopeKind)-1]
}

func (c *ResolutionContext) popScopeKind() {
	c.scopeKind = c.scopeKind[:len(c.scopeKind)-1]
}

func (c *ResolutionContext) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// AddSymbol implements lang.ResolutionScope: Local goes to the current
// innermost scope, everything else (Module/Package/Global) goes to the
// first (global) scope, matching add_symbol in resolution.rs.
func (c *ResolutionContext) AddSymbol(name string, id lang.SymbolID, level lang.ScopeLevel) {
	switch level {
	case lang.ScopeLevelLocal:
		if len(c.scopes) > 0 {
			c.scopes[len(c.scopes)-1][name] = id
		}
	default:
		if len(c.scopes) > 0 {
			c.scopes[0][name] = id
		}
	}
}

// Resolve implements lang.ResolutionScope.
func (c *ResolutionContext) Resolve(name string) (lang.SymbolID, bool) {
	return c.ResolveNixSymbol(name)
}

// ClearLocalScope implements lang.ResolutionScope, clearing only the
// innermost scope map.
func (c *ResolutionContext) ClearLocalScope() {
	if len(c.scopes) > 0 {
		c.scopes[len(c.scopes)-1] = make(map[string]lang.SymbolID)
	}
}

// EnterScope implements lang.ResolutionScope, mapping the generic
// ScopeType onto Nix's own scope taxonomy per enter_scope in
// resolution.rs: Function opens a (param-less) function scope, Block
// and Class/Namespace open a plain attribute-set scope, Module/Global/
// Package open a global-shaped scope.
func (c *ResolutionContext) EnterScope(kind lang.ScopeType) {
	switch kind {
	case lang.ScopeTypeFunction:
		c.EnterFunctionScope(nil)
	case lang.ScopeTypeBlock:
		c.scopeKind = append(c.scopeKind, scopeAttrSet)
		c.scopes = append(c.scopes, make(map[string]lang.SymbolID))
	case lang.ScopeTypeClass, lang.ScopeTypeNamespace:
		c.EnterAttrSetScope(false)
	case lang.ScopeTypeModule, lang.ScopeTypeGlobal, lang.ScopeTypePackage:
		c.scopeKind = append(c.scopeKind, scopeGlobal)
		c.scopes = append(c.scopes, make(map[string]lang.SymbolID))
	}
}

// ExitScope implements lang.ResolutionScope, routing to the matching
// exit method for whatever scope is on top; the outermost global scope
// is never popped below one entry.
func (c *ResolutionContext) ExitScope() {
	switch c.top() {
	case scopeLetIn:
		c.ExitLetScope()
	case scopeWith:
		c.ExitWithScope()
	case scopeRecursiveAttrSet, scopeAttrSet:
		c.ExitAttrSetScope()
	case scopeFunction:
		c.ExitFunctionScope()
	case scopeGlobal:
		if len(c.scopes) > 1 {
			c.popScope()
			c.popScopeKind()
		}
	}
}

// SymbolsInScope implements lang.ResolutionScope, flattening every
// stack (scopes by index, plus let/with/rec contexts) the way
// symbols_in_scope does in resolution.rs.
func (c *ResolutionContext) SymbolsInScope() []lang.ScopeBinding {
	var out []lang.ScopeBinding
	for i, scope := range c.scopes {
		level := lang.ScopeLevelModule
		if i == 0 {
			level = lang.ScopeLevelGlobal
		} else if i == len(c.scopes)-1 {
			level = lang.ScopeLevelLocal
		}
		for name, id := range scope {
			out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: level})
		}
	}
	for _, ctx := range c.letContexts {
		for name, id := range ctx {
			out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelLocal})
		}
	}
	for _, ctx := range c.withContexts {
		for name, id := range ctx {
			out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelModule})
		}
	}
	for _, ctx := range c.recContexts {
		for name, id := range ctx {
			out = append(out, lang.ScopeBinding{Name: name, ID: id, Level: lang.ScopeLevelLocal})
		}
	}
	return out
}

var _ lang.ResolutionScope = (*ResolutionContext)(nil)
