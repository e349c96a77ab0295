package lang

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codanna/codanna/internal/lang/diag"
)

// CoverageReport is the result of an Audit run: grammar node kinds
// present in a sample file versus the kinds the parser actually
// dispatched on, plus the symbol kinds it produced.
type CoverageReport struct {
	Language          LanguageID
	GrammarNodes      map[string]uint16
	ImplementedNodes  map[string]bool
	ExtractedKinds    map[Kind]bool
}

// CoveragePercent returns |implemented| / |grammar_nodes| * 100,
// clamped to [0, 100]; 100 when every grammar node kind present has
// been dispatched on (spec 8 invariant 9).
func (r *CoverageReport) CoveragePercent() float64 {
	if len(r.GrammarNodes) == 0 {
		return 0
	}
	implemented := 0
	for name := range r.GrammarNodes {
		if r.ImplementedNodes[name] {
			implemented++
		}
	}
	pct := float64(implemented) / float64(len(r.GrammarNodes)) * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// Gaps returns grammar node kinds present in the sample that the
// parser never dispatched on, sorted for deterministic output.
func (r *CoverageReport) Gaps() []string {
	var gaps []string
	for name := range r.GrammarNodes {
		if !r.ImplementedNodes[name] {
			gaps = append(gaps, name)
		}
	}
	sort.Strings(gaps)
	return gaps
}

// Markdown renders the report in the teacher's c/audit.rs report shape
// (summary, coverage table, gaps list), adapted for any language.
func (r *CoverageReport) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Parser Coverage Report\n\n", r.Language)
	fmt.Fprintf(&b, "## Summary\n")
	fmt.Fprintf(&b, "- Grammar node kinds present: %d\n", len(r.GrammarNodes))
	fmt.Fprintf(&b, "- Node kinds dispatched on: %d\n", len(r.ImplementedNodes))
	fmt.Fprintf(&b, "- Symbol kinds extracted: %d\n", len(r.ExtractedKinds))
	fmt.Fprintf(&b, "- Coverage: %.1f%%\n\n", r.CoveragePercent())

	names := make([]string, 0, len(r.GrammarNodes))
	for name := range r.GrammarNodes {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(&b, "## Coverage Table\n\n")
	fmt.Fprintf(&b, "| Node Kind | ID | Status |\n")
	fmt.Fprintf(&b, "|-----------|-----|--------|\n")
	for _, name := range names {
		status := "gap"
		if r.ImplementedNodes[name] {
			status = "implemented"
		}
		fmt.Fprintf(&b, "| `%s` | %d | %s |\n", name, r.GrammarNodes[name], status)
	}

	gaps := r.Gaps()
	fmt.Fprintf(&b, "\n## Gaps\n\n")
	if len(gaps) == 0 {
		fmt.Fprintf(&b, "None — every grammar node kind present was dispatched on.\n")
	} else {
		for _, g := range gaps {
			fmt.Fprintf(&b, "- `%s`\n", g)
		}
	}

	return b.String()
}

// Audit runs the coverage diagnostic described in spec 4.7: parse the
// same code twice, once with a bare tree-sitter walk to discover every
// grammar node kind present, once through the language's own parser
// (which must implement NodeTracker) to see which kinds it dispatched
// on and which symbol kinds it produced.
func Audit(def LanguageDefinition, settings Settings, code []byte, sink diag.Sink) (*CoverageReport, error) {
	behavior := def.CreateBehavior()
	grammarLang := behavior.GetLanguage()
	if grammarLang == nil {
		err := fmt.Errorf("no tree-sitter language handle for %s", def.ID())
		sink.Emit(diag.Diagnostic{Kind: diag.KindAuditLanguageSetup, Message: err.Error(), Language: string(def.ID())})
		return nil, &AuditError{Kind: diag.KindAuditLanguageSetup, Op: "get language", Cause: err}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(grammarLang); err != nil {
		sink.Emit(diag.Diagnostic{Kind: diag.KindAuditLanguageSetup, Message: err.Error(), Language: string(def.ID())})
		return nil, &AuditError{Kind: diag.KindAuditLanguageSetup, Op: "set language", Cause: err}
	}

	tree := parser.Parse(code, nil)
	if tree == nil {
		sink.Emit(diag.Diagnostic{Kind: diag.KindAuditParseFailure, Message: "tree-sitter returned no tree", Language: string(def.ID())})
		return nil, &AuditError{Kind: diag.KindAuditParseFailure, Op: "parse sample", Cause: ErrNoTree}
	}
	defer tree.Close()

	grammarNodes := make(map[string]uint16)
	discoverNodes(tree.RootNode(), grammarNodes)

	languageParser, err := def.CreateParser(settings)
	if err != nil {
		sink.Emit(diag.Diagnostic{Kind: diag.KindAuditParserCreation, Message: err.Error(), Language: string(def.ID())})
		return nil, &AuditError{Kind: diag.KindAuditParserCreation, Op: "create parser", Cause: err}
	}

	tracker, trackable := languageParser.(NodeTracker)
	if trackable {
		tracker.ResetHandledNodes()
	}

	counter := NewSymbolCounter()
	symbols := languageParser.Parse(code, FileID(1), counter)

	implemented := make(map[string]bool)
	if trackable {
		for _, hn := range tracker.HandledNodes() {
			implemented[hn.Name] = true
		}
	}

	extracted := make(map[Kind]bool)
	for _, s := range symbols {
		extracted[s.Kind] = true
	}

	return &CoverageReport{
		Language:         def.ID(),
		GrammarNodes:     grammarNodes,
		ImplementedNodes: implemented,
		ExtractedKinds:   extracted,
	}, nil
}

func discoverNodes(node *sitter.Node, registry map[string]uint16) {
	if node == nil {
		return
	}
	registry[node.Kind()] = uint16(node.KindId())

	for i := uint(0); i < node.ChildCount(); i++ {
		discoverNodes(node.Child(i), registry)
	}
}
