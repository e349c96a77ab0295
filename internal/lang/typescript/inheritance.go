package typescript

import "github.com/codanna/codanna/internal/lang"

// InheritanceResolver implements lang.InheritanceResolver for TypeScript's
// class model per spec.md §4.4: single-extends + multi-implements,
// method lookup walks the extends chain first, then implemented
// interfaces. Grounded on the same structural shape as
// internal/lang/python's InheritanceResolver (cached chains, invalidated
// on AddInheritance), adapted for the extends/implements split spec.md
// calls for class-based languages.
type InheritanceResolver struct {
	extends    map[string]string   // at most one parent per class
	implements map[string][]string // zero or more interfaces per class
	methods    map[string][]string
	chainCache map[string][]string
}

// NewInheritanceResolver returns an empty TypeScript inheritance resolver.
func NewInheritanceResolver() *InheritanceResolver {
	return &InheritanceResolver{
		extends:    make(map[string]string),
		implements: make(map[string][]string),
		methods:    make(map[string][]string),
		chainCache: make(map[string][]string),
	}
}

// AddInheritance routes by kindString: "extends" replaces the single
// parent (TypeScript classes may extend at most one class); "implements"
// appends to the interface list; any other label is ignored.
func (r *InheritanceResolver) AddInheritance(child, parent, kindString string) {
	switch kindString {
	case "extends":
		r.extends[child] = parent
	case "implements":
		r.implements[child] = append(r.implements[child], parent)
	default:
		return
	}
	r.chainCache = make(map[string][]string)
}

// chain builds [typeName, ...extends chain..., ...implements (each
// interface's own extends chain)...], deduplicated by first occurrence,
// with a visited set guarding against a cyclic extends graph.
func (r *InheritanceResolver) chain(typeName string) []string {
	if cached, ok := r.chainCache[typeName]; ok {
		return cached
	}

	seen := map[string]bool{typeName: true}
	out := []string{typeName}

	visited := map[string]bool{typeName: true}
	for cur := typeName; ; {
		parent, ok := r.extends[cur]
		if !ok || visited[parent] {
			break
		}
		visited[parent] = true
		if !seen[parent] {
			seen[parent] = true
			out = append(out, parent)
		}
		cur = parent
	}

	for _, cls := range append([]string{typeName}, out[1:]...) {
		for _, iface := range r.implements[cls] {
			for cur := iface; cur != "" && !seen[cur]; cur = r.extends[cur] {
				seen[cur] = true
				out = append(out, cur)
			}
		}
	}

	r.chainCache[typeName] = out
	return out
}

// ResolveMethod walks the extends chain first, then implemented
// interfaces (chain()'s ordering already reflects that), returning the
// first type found to declare method.
func (r *InheritanceResolver) ResolveMethod(typeName, method string) (string, bool) {
	for _, t := range r.chain(typeName) {
		for _, m := range r.methods[t] {
			if m == method {
				return t, true
			}
		}
	}
	return "", false
}

// GetInheritanceChain returns the extends-then-implements chain;
// element 0 is always typeName.
func (r *InheritanceResolver) GetInheritanceChain(typeName string) []string {
	return r.chain(typeName)
}

// IsSubtype reports whether parent appears anywhere in child's chain.
func (r *InheritanceResolver) IsSubtype(child, parent string) bool {
	for _, t := range r.chain(child) {
		if t == parent {
			return true
		}
	}
	return false
}

// AddTypeMethods records the method names declared directly on typeName.
func (r *InheritanceResolver) AddTypeMethods(typeName string, methods []string) {
	r.methods[typeName] = methods
}

// GetAllMethods returns every method reachable through typeName's
// extends-then-implements chain, deduplicated by first occurrence.
func (r *InheritanceResolver) GetAllMethods(typeName string) []string {
	var all []string
	seen := make(map[string]bool)
	for _, t := range r.chain(typeName) {
		for _, m := range r.methods[t] {
			if !seen[m] {
				seen[m] = true
				all = append(all, m)
			}
		}
	}
	return all
}

var _ lang.InheritanceResolver = (*InheritanceResolver)(nil)
