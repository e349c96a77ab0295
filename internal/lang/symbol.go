package lang

// Symbol is a named declaration extracted from source. Field set and
// meaning follow spec 3 exactly; JSON tags follow the teacher's Symbol
// struct tagging convention (internal/parser/treesitter.go).
type Symbol struct {
	ID           SymbolID     `json:"id"`
	Name         string       `json:"name"`
	Kind         Kind         `json:"kind"`
	FileID       FileID       `json:"file_id"`
	Range        Range        `json:"range"`
	Signature    string       `json:"signature,omitempty"`
	DocComment   string       `json:"doc_comment,omitempty"`
	Visibility   Visibility   `json:"visibility"`
	ScopeContext ScopeContext `json:"scope_context"`
	ModulePath   string       `json:"module_path,omitempty"`
	LanguageID   LanguageID   `json:"language_id"`
}

// Import is a single import/use statement observed in a file.
type Import struct {
	Path       string `json:"path"`
	Alias      string `json:"alias,omitempty"`
	FileID     FileID `json:"file_id"`
	Range      Range  `json:"range"`
	HasAlias   bool   `json:"has_alias"`
}

// Call is the generic (from, to, range, kind) relationship tuple shared by
// find_calls/find_implementations/find_uses/find_defines.
type Call struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Range Range        `json:"range"`
	Kind  RelationKind `json:"kind"`
}

// MethodCall is the receiver-qualified call shape find_method_calls emits.
type MethodCall struct {
	Receiver string `json:"receiver"`
	Method   string `json:"method"`
	Range    Range  `json:"range"`
	IsStatic bool   `json:"is_static"`
}

// LanguageID is a short lowercase token identifying a language, e.g.
// "nix", "python", "typescript".
type LanguageID string
