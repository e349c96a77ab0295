package lang

// Kind enumerates the symbol kinds emitted by any LanguageParser.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindVariable  Kind = "variable"
	KindConstant  Kind = "constant"
	KindStruct    Kind = "struct"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindTrait     Kind = "trait"
	KindEnum      Kind = "enum"
	KindParameter Kind = "parameter"
	KindObject    Kind = "object"
	KindArray     Kind = "array"
	KindTypeAlias Kind = "type_alias"
	KindModule    Kind = "module"
	KindMacro     Kind = "macro"
	KindUnion     Kind = "union"
	KindField     Kind = "field"
	KindNamespace Kind = "namespace"
	KindOther     Kind = "other"
)

// Visibility is the generic visibility set every language maps onto.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityCrate     Visibility = "crate"
	VisibilityModule    Visibility = "module"
	VisibilityProtected Visibility = "protected"
)

// RelationKind normalizes per-language relationship labels.
type RelationKind string

const (
	RelationCalls      RelationKind = "calls"
	RelationReferences RelationKind = "references"
	RelationExtends    RelationKind = "extends"
	RelationImplements RelationKind = "implements"
	RelationDefines    RelationKind = "defines"
	RelationUses       RelationKind = "uses"
)
