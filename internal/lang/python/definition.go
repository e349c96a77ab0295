package python

import (
	"fmt"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
)

// Definition implements lang.LanguageDefinition for Python.
type Definition struct {
	Sink diag.Sink
}

// NewDefinition returns a Python LanguageDefinition emitting
// diagnostics to sink (nil is fine; Parser substitutes diag.Discard).
func NewDefinition(sink diag.Sink) *Definition {
	return &Definition{Sink: sink}
}

func (Definition) ID() lang.LanguageID   { return "python" }
func (Definition) Name() string         { return "Python" }
func (Definition) Extensions() []string { return []string{"py", "pyi"} }

func (d Definition) CreateParser(lang.Settings) (lang.LanguageParser, error) {
	p, err := NewParser(d.Sink)
	if err != nil {
		return nil, fmt.Errorf("create python parser: %w", err)
	}
	return p, nil
}

func (Definition) CreateBehavior() lang.LanguageBehavior {
	return NewBehavior()
}

// DefaultEnabled is true: Python is enabled out of the box.
func (Definition) DefaultEnabled() bool { return true }

func (d Definition) IsEnabled(settings lang.Settings) bool {
	return settings.IsEnabled("Python", d.DefaultEnabled())
}

var _ lang.LanguageDefinition = (*Definition)(nil)
