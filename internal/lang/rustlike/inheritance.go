package rustlike

import "github.com/codanna/codanna/internal/lang"

// InheritanceResolver implements lang.InheritanceResolver for the
// shared trait/impl model: "impl Trait for Type" (Rust), struct
// embedding (Go), and "implements Interface" (C++/Java) are all
// recorded as Type carrying Trait's methods directly — spec.md §4.4:
// "no ordering contention because traits don't inherit methods into
// each other transitively in this simplified model". Chains are
// nevertheless followed transitively (Go structs can embed each other
// transitively), with a cycle guard for embedding-style graphs.
type InheritanceResolver struct {
	traits  map[string][]string // type -> traits/interfaces it implements or embeds
	methods map[string][]string
}

// NewInheritanceResolver returns an empty Rust-like inheritance resolver.
func NewInheritanceResolver() *InheritanceResolver {
	return &InheritanceResolver{
		traits:  make(map[string][]string),
		methods: make(map[string][]string),
	}
}

// AddInheritance records parent as a trait/interface/embedded type of
// child, for any kindString ("impl", "implements", "embeds", "extends").
func (r *InheritanceResolver) AddInheritance(child, parent, kindString string) {
	r.traits[child] = append(r.traits[child], parent)
}

// chain returns [typeName, its direct traits/embeds, their own
// traits/embeds transitively...], deduplicated, with a visited set
// guarding a cyclic embedding graph.
func (r *InheritanceResolver) chain(typeName string) []string {
	seen := map[string]bool{typeName: true}
	out := []string{typeName}

	queue := append([]string{}, r.traits[typeName]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, r.traits[next]...)
	}
	return out
}

// ResolveMethod searches typeName then its traits/embeds, in
// registration order, for the first declaring method.
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

// GetInheritanceChain returns typeName followed by its traits/embeds.
func (r *InheritanceResolver) GetInheritanceChain(typeName string) []string {
	return r.chain(typeName)
}

// IsSubtype reports whether parent appears in child's trait/embed set.
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
// trait/embed set, deduplicated by first occurrence.
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
