package typescript

import (
	"fmt"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
)

// Definition implements lang.LanguageDefinition for TypeScript.
type Definition struct {
	Sink diag.Sink
}

// NewDefinition returns a TypeScript LanguageDefinition emitting
// diagnostics to sink (nil is fine; Parser substitutes diag.Discard).
func NewDefinition(sink diag.Sink) *Definition {
	return &Definition{Sink: sink}
}

func (Definition) ID() lang.LanguageID   { return "typescript" }
func (Definition) Name() string         { return "TypeScript" }
func (Definition) Extensions() []string { return []string{"ts", "tsx"} }

func (d Definition) CreateParser(lang.Settings) (lang.LanguageParser, error) {
	p, err := NewParser(d.Sink)
	if err != nil {
		return nil, fmt.Errorf("create typescript parser: %w", err)
	}
	return p, nil
}

func (Definition) CreateBehavior() lang.LanguageBehavior {
	return NewBehavior()
}

// DefaultEnabled is true: TypeScript is enabled out of the box.
func (Definition) DefaultEnabled() bool { return true }

func (d Definition) IsEnabled(settings lang.Settings) bool {
	return settings.IsEnabled("TypeScript", d.DefaultEnabled())
}

var _ lang.LanguageDefinition = (*Definition)(nil)
