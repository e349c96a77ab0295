package lang

// InheritanceResolver computes method resolution order / supertype
// relationships for one language, specialized per its inheritance
// model (single inheritance, multiple inheritance with C3, attribute
// merging, interface extension, trait/impl).
type InheritanceResolver interface {
	AddInheritance(child, parent, kindString string)
	ResolveMethod(typeName, method string) (owner string, ok bool)

	// GetInheritanceChain returns the resolution order for typeName;
	// chain[0] is always typeName itself and no element repeats, even
	// in the presence of cycles in the underlying parent graph.
	GetInheritanceChain(typeName string) []string

	IsSubtype(child, parent string) bool
	AddTypeMethods(typeName string, methods []string)

	// GetAllMethods returns every method reachable from typeName's
	// inheritance chain, deduplicated by first occurrence in
	// resolution order.
	GetAllMethods(typeName string) []string
}
