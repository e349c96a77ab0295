// Package diag carries recoverable parse-path diagnostics out of
// internal/lang to whatever destination the caller chooses (log,
// stderr, collected report) — spec 7/9 leave the final destination
// unspecified; this package only fixes the shape of the message.
package diag

import "fmt"

// Kind enumerates the diagnostic taxonomy from spec 7. Only the first
// three are ever recovered locally during a normal parse; the Audit*
// kinds are surfaced as typed errors by the Audit subsystem instead
// (see lang.AuditError) and UnknownNodeKind is never surfaced as an
// error at all — it exists purely so Audit can report "gaps".
type Kind string

const (
	KindParserSetup        Kind = "parser_setup"
	KindParseFailure       Kind = "parse_failure"
	KindPartialParse       Kind = "partial_parse"
	KindAuditFileRead      Kind = "audit_file_read"
	KindAuditLanguageSetup Kind = "audit_language_setup"
	KindAuditParserCreation Kind = "audit_parser_creation"
	KindAuditParseFailure  Kind = "audit_parse_failure"
	KindUnknownNodeKind    Kind = "unknown_node_kind"
)

// Diagnostic is one recoverable event emitted during Parse or Audit.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Language string
	File     string
}

func (d Diagnostic) String() string {
	if d.File != "" {
		return fmt.Sprintf("[%s/%s] %s (%s)", d.Language, d.Kind, d.Message, d.File)
	}
	return fmt.Sprintf("[%s/%s] %s", d.Language, d.Kind, d.Message)
}

// Sink receives diagnostics. Implementations must not block for long
// or panic; Parse calls are not cancellable and a slow sink stalls the
// traversal.
type Sink interface {
	Emit(d Diagnostic)
}

// Discard is a Sink that drops every diagnostic; useful for tests and
// for callers that only care about the returned error value.
type Discard struct{}

func (Discard) Emit(Diagnostic) {}

// Collector is a Sink that appends every diagnostic to an in-memory
// slice, useful for Audit reports and tests that assert on diagnostics.
type Collector struct {
	Diagnostics []Diagnostic
}

func (c *Collector) Emit(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}
