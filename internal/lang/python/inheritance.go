package python

import "github.com/codanna/codanna/internal/lang"

// InheritanceResolver implements lang.InheritanceResolver with Python's
// simplified C3-style linearization: the class itself, then each
// base's own linearization in left-to-right declaration order,
// skipping names already present. Grounded file-for-file on
// PythonInheritanceResolver in
// original_source/src/parsing/python/resolution.rs.
type InheritanceResolver struct {
	bases   map[string][]string
	methods map[string][]string
	mroCache map[string][]string
}

// NewInheritanceResolver returns an empty Python inheritance resolver.
func NewInheritanceResolver() *InheritanceResolver {
	return &InheritanceResolver{
		bases:    make(map[string][]string),
		methods:  make(map[string][]string),
		mroCache: make(map[string][]string),
	}
}

// calculateMRO matches calculate_mro: class itself first, then each
// base's own MRO appended in order, deduplicated by first occurrence.
// Cached until the next AddInheritance invalidates it.
func (r *InheritanceResolver) calculateMRO(className string) []string {
	if cached, ok := r.mroCache[className]; ok {
		return cached
	}

	mro := []string{className}
	seen := map[string]bool{className: true}
	// Provisional entry: a cyclic bases graph that re-enters className
	// gets this partial MRO back instead of recursing forever.
	r.mroCache[className] = mro

	for _, base := range r.bases[className] {
		for _, c := range r.calculateMRO(base) {
			if !seen[c] {
				seen[c] = true
				mro = append(mro, c)
			}
		}
	}

	r.mroCache[className] = mro
	return mro
}

// AddInheritance records a base-class relationship when kindString is
// "extends" or "inherits" (any other label is ignored — Python has no
// other class-relationship flavor), invalidating the MRO cache.
func (r *InheritanceResolver) AddInheritance(child, parent, kindString string) {
	if kindString != "extends" && kindString != "inherits" {
		return
	}
	r.bases[child] = append(r.bases[child], parent)
	r.mroCache = make(map[string][]string)
}

// ResolveMethod searches the MRO in order, returning the first class
// that declares method.
func (r *InheritanceResolver) ResolveMethod(typeName, method string) (string, bool) {
	for _, class := range r.calculateMRO(typeName) {
		for _, m := range r.methods[class] {
			if m == method {
				return class, true
			}
		}
	}
	return "", false
}

// GetInheritanceChain returns the MRO; element 0 is always typeName,
// no element repeats even through a cyclic bases graph (calculateMRO's
// `seen` set drops duplicates, and its provisional cache entry stops a
// class from being re-entered while its own MRO is being computed).
func (r *InheritanceResolver) GetInheritanceChain(typeName string) []string {
	return r.calculateMRO(typeName)
}

// IsSubtype reports whether parent appears in child's MRO.
func (r *InheritanceResolver) IsSubtype(child, parent string) bool {
	for _, c := range r.calculateMRO(child) {
		if c == parent {
			return true
		}
	}
	return false
}

// AddTypeMethods records the method names declared directly on typeName.
func (r *InheritanceResolver) AddTypeMethods(typeName string, methods []string) {
	r.methods[typeName] = methods
}

// GetAllMethods returns every method reachable through typeName's MRO,
// deduplicated by first occurrence in resolution order.
func (r *InheritanceResolver) GetAllMethods(typeName string) []string {
	var all []string
	seen := make(map[string]bool)
	for _, class := range r.calculateMRO(typeName) {
		for _, m := range r.methods[class] {
			if !seen[m] {
				seen[m] = true
				all = append(all, m)
			}
		}
	}
	return all
}

var _ lang.InheritanceResolver = (*InheritanceResolver)(nil)
