package nix

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
)

// Parser implements lang.LanguageParser for Nix. It is not safe for
// concurrent use, matching the rest of this repository's one-parser-
// per-goroutine convention. Grounded file-for-file on
// original_source/src/parsing/nix/parser.rs.
type Parser struct {
	lang.BaseNodeTracker

	parser *sitter.Parser
	ctx    *lang.ParserContext
	res    *ResolutionContext
	sink   diag.Sink
}

// NewParser creates a Nix parser; sink may be nil, in which case
// diagnostics are discarded.
func NewParser(sink diag.Sink) (*Parser, error) {
	if sink == nil {
		sink = diag.Discard{}
	}
	p := sitter.NewParser()
	behavior := NewBehavior()
	if err := p.SetLanguage(behavior.GetLanguage()); err != nil {
		return nil, fmt.Errorf("set nix language: %w", err)
	}
	return &Parser{parser: p, sink: sink}, nil
}

func (p *Parser) Language() lang.LanguageID { return "nix" }

func (p *Parser) record(node *sitter.Node) {
	p.RegisterHandledNode(node.Kind(), uint16(node.KindId()))
}

// Parse resets per-file state and walks the parsed tree, matching the
// reset-then-walk shape of NixParser::parse.
func (p *Parser) Parse(code []byte, file lang.FileID, counter *lang.SymbolCounter) []*lang.Symbol {
	p.ctx = lang.NewParserContext()
	p.res = NewResolutionContext(file)
	p.ResetHandledNodes()

	tree := p.parser.Parse(code, nil)
	if tree == nil {
		p.sink.Emit(diag.Diagnostic{Kind: diag.KindParseFailure, Message: "tree-sitter returned no tree", Language: "nix"})
		return nil
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		p.sink.Emit(diag.Diagnostic{Kind: diag.KindPartialParse, Message: "nix parse tree contains errors, continuing with partial results", Language: "nix"})
	}

	var symbols []*lang.Symbol
	p.walk(tree.RootNode(), code, file, counter, &symbols)
	return symbols
}

func (p *Parser) walk(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	p.record(node)

	switch node.Kind() {
	case "let_expression":
		p.processLetExpression(node, code, file, counter, out)
	case "attrset":
		p.processAttrSet(node, code, file, counter, out)
	case "rec_attrset":
		p.processRecAttrSet(node, code, file, counter, out)
	case "function", "function_expression":
		p.processLambda(node, code, file, counter, out)
	case "binding":
		p.processBinding(node, code, file, counter, out)
	case "with_expression":
		p.processWith(node, code, file, counter, out)
	case "indented_string_expression", "string_expression":
		p.processStringInterpolation(node, code, file, counter, out)
	case "path_expression":
		p.processPathLiteral(node, code, file, counter, out)
	default:
		p.walkChildren(node, code, file, counter, out)
	}
}

func (p *Parser) walkChildren(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			p.walk(child, code, file, counter, out)
		}
	}
}

func text(node *sitter.Node, code []byte) string {
	return string(code[node.StartByte():node.EndByte()])
}

func nodeRange(node *sitter.Node) lang.Range {
	start := node.StartPosition()
	end := node.EndPosition()
	return lang.Range{
		Start: lang.Point{Row: uint32(start.Row), Column: uint32(start.Column)},
		End:   lang.Point{Row: uint32(end.Row), Column: uint32(end.Column)},
	}
}

func (p *Parser) newSymbol(id lang.SymbolID, name string, kind lang.Kind, file lang.FileID, r lang.Range, signature, doc string) *lang.Symbol {
	return &lang.Symbol{
		ID:           id,
		Name:         name,
		Kind:         kind,
		FileID:       file,
		Range:        r,
		Signature:    signature,
		DocComment:   doc,
		Visibility:   lang.VisibilityPublic,
		ScopeContext: p.ctx.CurrentScopeContext(),
		LanguageID:   "nix",
	}
}

// processBinding extracts `name = value;`, classifying it as a
// Function when the right-hand side is a lambda, Variable otherwise,
// and recurses into the value expression. Grounded on process_binding.
func (p *Parser) processBinding(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	identifier := bindingIdentifier(node)
	if identifier != nil {
		name := text(identifier, code)
		kind := lang.KindVariable
		var signature string
		if value := node.ChildByFieldName("expression"); value != nil {
			if value.Kind() == "function_expression" || value.Kind() == "function" {
				kind = lang.KindFunction
				signature = fmt.Sprintf("%s = <function>", name)
			} else {
				signature = fmt.Sprintf("%s = <value>", name)
			}
		} else {
			signature = fmt.Sprintf("%s = <value>", name)
		}

		doc, _ := p.ExtractDocComment(node, code)
		symbol := p.newSymbol(counter.Next(), name, kind, file, nodeRange(identifier), signature, doc)
		*out = append(*out, symbol)
	}

	if value := node.ChildByFieldName("expression"); value != nil {
		p.walk(value, code, file, counter, out)
	}
}

func bindingIdentifier(node *sitter.Node) *sitter.Node {
	if attrpath := node.ChildByFieldName("attrpath"); attrpath != nil {
		return attrpath.Child(0)
	}
	return node.ChildByFieldName("name")
}

// processAttrSet walks a plain (non-recursive) { } literal, dispatching
// each binding and recursing into everything else.
func (p *Parser) processAttrSet(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "binding" {
			p.processBinding(child, code, file, counter, out)
		} else {
			p.walk(child, code, file, counter, out)
		}
	}
}

// processRecAttrSet implements the two-pass rec { } strategy from
// process_recursive_attribute_set_advanced: first collect every
// binding's name and a freshly minted id so later bindings can
// forward-reference earlier (or later) ones, then process each
// binding's value expression with that full set already registered.
func (p *Parser) processRecAttrSet(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	if p.res != nil {
		p.res.EnterAttrSetScope(true)
	}

	type attrBinding struct {
		name string
		id   lang.SymbolID
		node *sitter.Node
	}
	var bindings []attrBinding

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "binding" {
			continue
		}
		identifier := bindingIdentifier(child)
		if identifier == nil {
			continue
		}
		name := text(identifier, code)
		id := counter.Next()
		if p.res != nil {
			p.res.AddRecursiveSymbol(name, id)
		}
		bindings = append(bindings, attrBinding{name: name, id: id, node: child})
	}

	// rec members are tagged Local{hoisted:true}: see DESIGN.md open
	// question 1 — still a nested attrset value, but visible to
	// siblings regardless of textual order.
	p.ctx.PushScope(lang.LocalScope(true, "", lang.KindObject))
	for _, b := range bindings {
		kind := lang.KindVariable
		var signature string
		if value := b.node.ChildByFieldName("expression"); value != nil {
			if value.Kind() == "function_expression" || value.Kind() == "function" {
				kind = lang.KindFunction
				signature = fmt.Sprintf("%s = <function>", b.name)
			} else {
				signature = fmt.Sprintf("%s = <value>", b.name)
			}
		} else {
			signature = fmt.Sprintf("%s = <value>", b.name)
		}

		symbol := p.newSymbol(b.id, b.name, kind, file, nodeRange(b.node), signature, "")
		*out = append(*out, symbol)

		if value := b.node.ChildByFieldName("expression"); value != nil {
			p.walk(value, code, file, counter, out)
		}
	}
	p.ctx.PopScope()

	if p.res != nil {
		p.res.ExitAttrSetScope()
	}
}

// processLambda extracts parameters (bare identifier or `{ a, b }:`
// formals) and enters a function scope over the body so parameter
// names resolve within it, matching process_lambda_function.
func (p *Parser) processLambda(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	var params []lang.ScopeBinding
	var bodyChildren []*sitter.Node

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			params = append(params, lang.ScopeBinding{Name: text(child, code), ID: counter.Next()})
		case "formals":
			params = append(params, p.extractFormals(child, code, counter)...)
		default:
			bodyChildren = append(bodyChildren, child)
		}
	}

	if p.res != nil {
		p.res.EnterFunctionScope(params)
	}
	p.ctx.PushScope(lang.ParameterScope())
	for _, child := range bodyChildren {
		p.walk(child, code, file, counter, out)
	}
	p.ctx.PopScope()
	if p.res != nil {
		p.res.ExitFunctionScope()
	}
}

func (p *Parser) extractFormals(node *sitter.Node, code []byte, counter *lang.SymbolCounter) []lang.ScopeBinding {
	var params []lang.ScopeBinding
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "formal" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil {
			params = append(params, lang.ScopeBinding{Name: text(name, code), ID: counter.Next()})
		}
	}
	return params
}

// processWith enters a with-expression scope. Full value-level
// evaluation of the with'd attribute set is a non-goal (SPEC_FULL.md
// §12), so no member names are injected — ResolveNixSymbol still walks
// the with-context stack, it simply finds it empty for this parse.
func (p *Parser) processWith(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	if p.res != nil {
		p.res.EnterWithScope(nil)
	}
	p.walkChildren(node, code, file, counter, out)
	if p.res != nil {
		p.res.ExitWithScope()
	}
}

func (p *Parser) processStringInterpolation(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "interpolation" {
			p.walk(child, code, file, counter, out)
		}
	}
}

// processPathLiteral synthesizes a path_<N> constant symbol for bare
// path literals (./foo, <nixpkgs>); N is the emission-order index
// within this Parse call, not a position in the source (spec 4.1's
// required edge case, confirmed against original_source/parser.rs).
func (p *Parser) processPathLiteral(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	pathStr := text(node, code)
	name := fmt.Sprintf("path_%d", len(*out))
	symbol := p.newSymbol(counter.Next(), name, lang.KindConstant, file, nodeRange(node),
		fmt.Sprintf("path = %s", pathStr), "")
	*out = append(*out, symbol)
}

// processLetExpression enters a let scope, processes every binding
// (registering each into the let context so the 'in' expression can
// see it), then walks the 'in' expression with those bindings visible.
// Grounded on process_let_expression_advanced.
func (p *Parser) processLetExpression(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	if p.res != nil {
		p.res.EnterLetScope()
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "binding" {
			continue
		}
		before := len(*out)
		p.processBinding(child, code, file, counter, out)
		if p.res != nil && len(*out) > before {
			added := (*out)[before]
			p.res.AddSymbol(added.Name, added.ID, lang.ScopeLevelLocal)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "binding" || child.Kind() == "let" {
			continue
		}
		p.walk(child, code, file, counter, out)
	}

	if p.res != nil {
		p.res.ExitLetScope()
	}
}

// ExtractDocComment joins the contiguous run of leading '#' comment
// lines immediately above node, skipping blank lines but stopping at
// the first non-comment, non-blank line — applied literally per
// DESIGN.md open question 2. Grounded on extract_doc_comment.
func (p *Parser) ExtractDocComment(node *sitter.Node, code []byte) (string, bool) {
	startLine := int(node.StartPosition().Row)
	if startLine == 0 {
		return "", false
	}

	lines := strings.Split(string(code), "\n")
	var docLines []string

	for i := startLine - 1; i >= 0; i-- {
		if i >= len(lines) {
			continue
		}
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "#"):
			docLines = append([]string{strings.TrimSpace(strings.TrimPrefix(line, "#"))}, docLines...)
		case line == "":
			continue
		default:
			i = -1
		}
		if i == -1 {
			break
		}
	}

	if len(docLines) == 0 {
		return "", false
	}
	return strings.Join(docLines, " "), true
}

// FindCalls: Nix function application has no named-call syntax tree-
// sitter-nix models separately from generic application nodes; left
// unimplemented in the original too (process_*'s TODO), returns empty.
func (p *Parser) FindCalls([]byte) []lang.Call { return nil }

// FindMethodCalls always returns nil: Nix has no receiver-qualified
// method calls, only function application.
func (p *Parser) FindMethodCalls([]byte) []lang.MethodCall { return nil }

// FindImplementations returns '//'-merge relations as Call tuples
// (SUPPLEMENTED FEATURES in SPEC_FULL.md: the distilled spec allows
// empty here, but Nix's attribute-set merge is a real implements-like
// relation worth surfacing).
func (p *Parser) FindImplementations(code []byte) []lang.Call {
	tree := p.parser.Parse(code, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var calls []lang.Call
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "binary_expression" {
			if op := node.ChildByFieldName("operator"); op != nil && text(op, code) == "//" {
				left := node.ChildByFieldName("left")
				right := node.ChildByFieldName("right")
				if left != nil && right != nil {
					calls = append(calls, lang.Call{
						From:  text(left, code),
						To:    text(right, code),
						Range: nodeRange(node),
						Kind:  lang.RelationExtends,
					})
				}
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	return calls
}

// FindUses always returns nil: Nix is dynamically typed, there is no
// explicit type-usage syntax to report.
func (p *Parser) FindUses([]byte) []lang.Call { return nil }

// FindDefines always returns nil: Nix has no method-definition syntax
// distinct from ordinary bindings.
func (p *Parser) FindDefines([]byte) []lang.Call { return nil }

// FindImports always returns nil for now: Nix's `import ./path.nix`
// calls are ordinary function applications of the builtin `import`,
// indistinguishable from other applications without tracking builtin
// identifier bindings — left for a future pass, as the original left
// its own find_imports a TODO.
func (p *Parser) FindImports([]byte, lang.FileID) []lang.Import { return nil }

var (
	_ lang.LanguageParser = (*Parser)(nil)
	_ lang.NodeTracker    = (*Parser)(nil)
)
