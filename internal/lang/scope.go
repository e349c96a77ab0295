package lang

// ScopeLevel orders scopes from innermost to outermost; it drives
// routing a symbol into a ResolutionScope via AddSymbol.
type ScopeLevel int

const (
	ScopeLevelLocal ScopeLevel = iota
	ScopeLevelModule
	ScopeLevelPackage
	ScopeLevelGlobal
)

func (l ScopeLevel) String() string {
	switch l {
	case ScopeLevelLocal:
		return "local"
	case ScopeLevelModule:
		return "module"
	case ScopeLevelPackage:
		return "package"
	case ScopeLevelGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// ScopeType is the kind of scope being entered/exited on a
// ResolutionScope, matching spec 4.3's ScopeType enumeration.
type ScopeType int

const (
	ScopeTypeFunction ScopeType = iota
	ScopeTypeBlock
	ScopeTypeClass
	ScopeTypeModule
	ScopeTypeGlobal
	ScopeTypePackage
	ScopeTypeNamespace
)

// ScopeContextKind tags where a Symbol was declared.
type ScopeContextKind string

const (
	ScopeContextModule      ScopeContextKind = "module"
	ScopeContextGlobal      ScopeContextKind = "global"
	ScopeContextPackage     ScopeContextKind = "package"
	ScopeContextParameter   ScopeContextKind = "parameter"
	ScopeContextClassMember ScopeContextKind = "class_member"
	ScopeContextLocal       ScopeContextKind = "local"
)

// ScopeContext is the tag attached to every emitted Symbol. ParentName
// and ParentKind are only meaningful when Kind is ScopeContextLocal or
// ScopeContextClassMember and the binding sits inside a named enclosing
// function/method or class.
type ScopeContext struct {
	Kind       ScopeContextKind
	Hoisted    bool
	ParentName string
	ParentKind Kind
}

// ModuleScope, GlobalScope and PackageScope are convenience constructors
// for the non-parameterized ScopeContext variants.
func ModuleScope() ScopeContext  { return ScopeContext{Kind: ScopeContextModule} }
func GlobalScope() ScopeContext  { return ScopeContext{Kind: ScopeContextGlobal} }
func PackageScope() ScopeContext { return ScopeContext{Kind: ScopeContextPackage} }
func ParameterScope() ScopeContext {
	return ScopeContext{Kind: ScopeContextParameter}
}
func ClassMemberScope() ScopeContext {
	return ScopeContext{Kind: ScopeContextClassMember}
}

// LocalScope builds a Local{hoisted, parent_name?, parent_kind?} tag.
func LocalScope(hoisted bool, parentName string, parentKind Kind) ScopeContext {
	return ScopeContext{
		Kind:       ScopeContextLocal,
		Hoisted:    hoisted,
		ParentName: parentName,
		ParentKind: parentKind,
	}
}
