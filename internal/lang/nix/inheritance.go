package nix

import "github.com/codanna/codanna/internal/lang"

// InheritanceResolver implements lang.InheritanceResolver for Nix's
// pseudo-inheritance patterns: attribute-set merging via '//',
// with-expression attribute bring-in, and function composition.
// Grounded on NixInheritanceResolver in
// original_source/src/parsing/nix/resolution.rs. Unlike the original
// (which keys relationships by a length-derived SymbolId placeholder),
// this port keys directly by symbol name — Go has no equivalent need
// for the original's numeric SymbolId-by-convenience hack.
type InheritanceResolver struct {
	mergeParents map[string][]string
	withSources  map[string][]string
	composition  map[string][]string

	typeMethods map[string][]string
}

// NewInheritanceResolver returns an empty Nix inheritance resolver.
func NewInheritanceResolver() *InheritanceResolver {
	return &InheritanceResolver{
		mergeParents: make(map[string][]string),
		withSources:  make(map[string][]string),
		composition:  make(map[string][]string),
		typeMethods:  make(map[string][]string),
	}
}

// AddInheritance routes to the merge/with/composition relationship
// store named by kindString, defaulting to merge for anything else.
func (r *InheritanceResolver) AddInheritance(child, parent, kindString string) {
	switch kindString {
	case "with":
		r.withSources[child] = append(r.withSources[child], parent)
	case "composition":
		r.composition[child] = append(r.composition[child], parent)
	default:
		r.mergeParents[child] = append(r.mergeParents[child], parent)
	}
}

// ResolveMethod always returns (\"\", false): Nix has no methods.
func (r *InheritanceResolver) ResolveMethod(string, string) (string, bool) {
	return "", false
}

// GetInheritanceChain follows the '//'-merge parent chain starting at
// typeName, taking only the first recorded parent at each step and
// stopping on a cycle (visited-set guard), matching
// get_full_inheritance_chain.
func (r *InheritanceResolver) GetInheritanceChain(typeName string) []string {
	chain := []string{typeName}
	visited := map[string]bool{typeName: true}
	current := typeName

	for {
		parents, ok := r.mergeParents[current]
		if !ok || len(parents) == 0 {
			break
		}
		parent := parents[0]
		if visited[parent] {
			break
		}
		visited[parent] = true
		chain = append(chain, parent)
		current = parent
	}
	return chain
}

// IsSubtype reports whether parent appears directly among child's
// recorded merge parents.
func (r *InheritanceResolver) IsSubtype(child, parent string) bool {
	for _, p := range r.mergeParents[child] {
		if p == parent {
			return true
		}
	}
	return false
}

// AddTypeMethods is a no-op: Nix has no type methods.
func (r *InheritanceResolver) AddTypeMethods(string, []string) {}

// GetAllMethods always returns nil: Nix has no type methods.
func (r *InheritanceResolver) GetAllMethods(string) []string { return nil }

var _ lang.InheritanceResolver = (*InheritanceResolver)(nil)
