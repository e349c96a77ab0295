package lang

import (
	"fmt"
	"strings"
	"sync"
)

// LanguageDefinition discovers and constructs the parser/behavior pair
// for one language.
type LanguageDefinition interface {
	ID() LanguageID
	Name() string
	Extensions() []string
	CreateParser(settings Settings) (LanguageParser, error)
	CreateBehavior() LanguageBehavior
	DefaultEnabled() bool
	IsEnabled(settings Settings) bool
}

// LanguageRegistry maps LanguageID to LanguageDefinition, also indexed
// by extension for file-type dispatch. Registration is additive;
// re-registering the same id replaces the previous entry. Safe for
// concurrent reads once construction (the Register calls) has
// finished — the mutex below only guards that initialization phase,
// matching the teacher's TreeSitterParser.mu usage in
// internal/parser/treesitter.go.
type LanguageRegistry struct {
	mu         sync.RWMutex
	byID       map[LanguageID]LanguageDefinition
	byExt      map[string]LanguageID
}

// NewLanguageRegistry creates an empty registry.
func NewLanguageRegistry() *LanguageRegistry {
	return &LanguageRegistry{
		byID:  make(map[LanguageID]LanguageDefinition),
		byExt: make(map[string]LanguageID),
	}
}

// Register adds or replaces def under def.ID(), indexing all of its
// extensions for file-type dispatch.
func (r *LanguageRegistry) Register(def LanguageDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[def.ID()] = def
	for _, ext := range def.Extensions() {
		r.byExt[strings.ToLower(ext)] = def.ID()
	}
}

// ByID looks up a LanguageDefinition by its short id token.
func (r *LanguageRegistry) ByID(id LanguageID) (LanguageDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.byID[id]
	return def, ok
}

// ByExtension resolves a LanguageDefinition from a lowercase file
// extension with no leading dot (e.g. "nix"), per spec 6's exact-match
// rule.
func (r *LanguageRegistry) ByExtension(ext string) (LanguageDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExt[strings.ToLower(ext)]
	if !ok {
		return nil, false
	}
	return r.byID[id], true
}

// All returns every registered definition, in no particular order.
func (r *LanguageRegistry) All() []LanguageDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]LanguageDefinition, 0, len(r.byID))
	for _, def := range r.byID {
		out = append(out, def)
	}
	return out
}

// ErrUnsupportedLanguage is returned when no LanguageDefinition matches
// a requested id or extension.
var ErrUnsupportedLanguage = fmt.Errorf("unsupported language")
