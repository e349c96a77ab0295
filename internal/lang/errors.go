package lang

import (
	"errors"
	"fmt"

	"github.com/codanna/codanna/internal/lang/diag"
)

// Sentinel errors returned by library entry points, teacher's
// internal/search/errors.go sentinel-var style.
var (
	ErrNoTree            = errors.New("tree-sitter returned no tree for input")
	ErrLanguageNotSet    = errors.New("no tree-sitter language configured for parser")
	ErrEmptyCode         = errors.New("empty source buffer")
)

// AuditError is the typed error surfaced by Audit for its four
// distinguished failure modes (spec 4.7 / 7). It mirrors the shape of
// the teacher's SearchError (internal/search/errors.go): a Kind tag,
// an Op describing what was being attempted, and a wrapped Cause.
type AuditError struct {
	Kind  diag.Kind
	Op    string
	Cause error
}

func (e *AuditError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Op)
}

func (e *AuditError) Unwrap() error { return e.Cause }
