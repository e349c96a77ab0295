package typescript

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
)

// Parser implements lang.LanguageParser for TypeScript. Dispatch is
// generalized from the teacher's typescriptNodeToSymbol/
// extractTypescriptFunction/extractTypescriptClass/
// extractTypescriptInterface/extractTypescriptType
// (internal/parser/treesitter.go), extended with class heritage
// (extends/implements) and doc-comment extraction the teacher's flat
// extractor doesn't need.
type Parser struct {
	lang.BaseNodeTracker

	parser *sitter.Parser
	ctx    *lang.ParserContext
	res    *ResolutionContext
	inh    *InheritanceResolver
	sink   diag.Sink
}

// NewParser creates a TypeScript parser; sink may be nil, in which
// case diagnostics are discarded.
func NewParser(sink diag.Sink) (*Parser, error) {
	if sink == nil {
		sink = diag.Discard{}
	}
	p := sitter.NewParser()
	behavior := NewBehavior()
	if err := p.SetLanguage(behavior.GetLanguage()); err != nil {
		return nil, fmt.Errorf("set typescript language: %w", err)
	}
	return &Parser{parser: p, sink: sink, inh: NewInheritanceResolver()}, nil
}

func (p *Parser) Language() lang.LanguageID { return "typescript" }

func (p *Parser) record(node *sitter.Node) {
	p.RegisterHandledNode(node.Kind(), uint16(node.KindId()))
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

// Parse resets per-file state and walks the parsed tree.
func (p *Parser) Parse(code []byte, file lang.FileID, counter *lang.SymbolCounter) []*lang.Symbol {
	p.ctx = lang.NewParserContext()
	p.res = NewResolutionContext(file)
	p.ResetHandledNodes()

	tree := p.parser.Parse(code, nil)
	if tree == nil {
		p.sink.Emit(diag.Diagnostic{Kind: diag.KindParseFailure, Message: "tree-sitter returned no tree", Language: "typescript"})
		return nil
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		p.sink.Emit(diag.Diagnostic{Kind: diag.KindPartialParse, Message: "typescript parse tree contains errors, continuing with partial results", Language: "typescript"})
	}

	p.res.EnterScope(lang.ScopeTypeModule)
	var symbols []*lang.Symbol
	p.walkChildren(tree.RootNode(), code, file, counter, &symbols)
	p.res.ExitScope()
	return symbols
}

func (p *Parser) walk(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	p.record(node)

	switch node.Kind() {
	case "function_declaration":
		p.processFunction(node, code, file, counter, out, lang.KindFunction)
	case "method_definition":
		p.processFunction(node, code, file, counter, out, lang.KindMethod)
	case "class_declaration":
		p.processClass(node, code, file, counter, out)
	case "interface_declaration":
		p.processInterface(node, code, file, counter, out)
	case "type_alias_declaration":
		p.processTypeAlias(node, code, file, counter, out)
	case "variable_declarator":
		p.processVariable(node, code, file, counter, out)
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

func (p *Parser) newSymbol(id lang.SymbolID, name string, kind lang.Kind, file lang.FileID, r lang.Range, signature, doc string) *lang.Symbol {
	return &lang.Symbol{
		ID:           id,
		Name:         name,
		Kind:         kind,
		FileID:       file,
		Range:        r,
		Signature:    signature,
		DocComment:   doc,
		Visibility:   NewBehavior().ParseVisibility(signature),
		ScopeContext: p.ctx.CurrentScopeContext(),
		LanguageID:   "typescript",
	}
}

// nameIdentifier finds the first identifier/type_identifier/
// property_identifier child, generalizing the teacher's "first
// identifier child" extraction to TypeScript's distinct name node kinds.
func nameIdentifier(node *sitter.Node) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier", "type_identifier", "property_identifier":
			return child
		}
	}
	return nil
}

func (p *Parser) processFunction(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol, kind lang.Kind) {
	nameNode := nameIdentifier(node)
	if nameNode == nil {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(nameNode, code)

	paramsText := ""
	if params := node.ChildByFieldName("parameters"); params != nil {
		paramsText = text(params, code)
	}
	signature := fmt.Sprintf("function %s%s", name, paramsText)

	doc, _ := p.ExtractDocComment(node, code)
	id := counter.Next()
	symbol := p.newSymbol(id, name, kind, file, nodeRange(nameNode), signature, doc)
	*out = append(*out, symbol)
	p.res.AddSymbol(name, id, lang.ScopeLevelModule)
	if kind == lang.KindMethod {
		current := p.ctx.CurrentScopeContext()
		if current.ParentName != "" {
			p.inh.AddTypeMethods(current.ParentName, append(p.inh.GetAllMethods(current.ParentName), name))
		}
	}

	p.res.EnterScope(lang.ScopeTypeFunction)
	p.ctx.PushScope(lang.ParameterScope())
	if body := node.ChildByFieldName("body"); body != nil {
		p.walkChildren(body, code, file, counter, out)
	}
	p.ctx.PopScope()
	p.res.ExitScope()
}

// heritage walks a class_declaration/interface_declaration's
// class_heritage child collecting extends/implements base names.
func heritage(node *sitter.Node, code []byte) (extends []string, implements []string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "class_heritage":
			e, im := heritage(child, code)
			extends = append(extends, e...)
			implements = append(implements, im...)
		case "extends_clause", "extends_type_clause":
			for j := uint(0); j < child.ChildCount(); j++ {
				id := child.Child(j)
				if id != nil && (id.Kind() == "identifier" || id.Kind() == "type_identifier") {
					extends = append(extends, text(id, code))
				}
			}
		case "implements_clause":
			for j := uint(0); j < child.ChildCount(); j++ {
				id := child.Child(j)
				if id != nil && (id.Kind() == "identifier" || id.Kind() == "type_identifier") {
					implements = append(implements, text(id, code))
				}
			}
		}
	}
	return extends, implements
}

func (p *Parser) processClass(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	nameNode := nameIdentifier(node)
	if nameNode == nil {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(nameNode, code)

	extends, implements := heritage(node, code)
	for _, base := range extends {
		p.inh.AddInheritance(name, base, "extends")
	}
	for _, iface := range implements {
		p.inh.AddInheritance(name, iface, "implements")
	}

	signature := "class " + name
	if len(extends) > 0 {
		signature += " extends " + strings.Join(extends, ", ")
	}
	if len(implements) > 0 {
		signature += " implements " + strings.Join(implements, ", ")
	}

	doc, _ := p.ExtractDocComment(node, code)
	id := counter.Next()
	symbol := p.newSymbol(id, name, lang.KindClass, file, nodeRange(nameNode), signature, doc)
	*out = append(*out, symbol)
	p.res.AddSymbol(name, id, lang.ScopeLevelModule)

	p.res.EnterScope(lang.ScopeTypeClass)
	p.ctx.PushScope(lang.ScopeContext{Kind: lang.ScopeContextClassMember, ParentName: name, ParentKind: lang.KindClass})
	if body := node.ChildByFieldName("body"); body != nil {
		p.walkChildren(body, code, file, counter, out)
	}
	p.ctx.PopScope()
	p.res.ExitScope()
}

func (p *Parser) processInterface(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	nameNode := nameIdentifier(node)
	if nameNode == nil {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(nameNode, code)

	extends, _ := heritage(node, code)
	for _, base := range extends {
		p.inh.AddInheritance(name, base, "extends")
	}

	signature := "interface " + name
	if len(extends) > 0 {
		signature += " extends " + strings.Join(extends, ", ")
	}

	doc, _ := p.ExtractDocComment(node, code)
	id := counter.Next()
	symbol := p.newSymbol(id, name, lang.KindInterface, file, nodeRange(nameNode), signature, doc)
	*out = append(*out, symbol)
	p.res.AddSymbol(name, id, lang.ScopeLevelModule)
}

func (p *Parser) processTypeAlias(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	nameNode := nameIdentifier(node)
	if nameNode == nil {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(nameNode, code)
	doc, _ := p.ExtractDocComment(node, code)
	id := counter.Next()
	symbol := p.newSymbol(id, name, lang.KindTypeAlias, file, nodeRange(nameNode), "type "+name, doc)
	*out = append(*out, symbol)
	p.res.AddSymbol(name, id, lang.ScopeLevelModule)
}

func (p *Parser) processVariable(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() != "identifier" {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(nameNode, code)
	id := counter.Next()
	symbol := p.newSymbol(id, name, lang.KindVariable, file, nodeRange(nameNode), name, "")
	*out = append(*out, symbol)

	level := lang.ScopeLevelModule
	if p.ctx.CurrentScopeContext().Kind == lang.ScopeContextParameter {
		level = lang.ScopeLevelLocal
	}
	p.res.AddSymbol(name, id, level)
}

// ExtractDocComment joins the contiguous run of leading "//" or "/* */"
// comment lines immediately above node, skipping blank lines but
// stopping at the first non-comment, non-blank line — the same
// contiguous-leading-comment rule internal/lang/nix and
// internal/lang/python apply, per DESIGN.md open question 2's
// "apply literally, no per-language deviation" decision, generalized
// to TypeScript's "//" line-comment and "/** ... */" block-comment forms.
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
		case strings.HasPrefix(line, "//"):
			docLines = append([]string{strings.TrimSpace(strings.TrimPrefix(line, "//"))}, docLines...)
		case strings.HasPrefix(line, "/*") || strings.HasSuffix(line, "*/") || strings.HasPrefix(line, "*"):
			cleaned := strings.TrimPrefix(line, "/**")
			cleaned = strings.TrimPrefix(cleaned, "/*")
			cleaned = strings.TrimSuffix(cleaned, "*/")
			cleaned = strings.TrimPrefix(cleaned, "*")
			docLines = append([]string{strings.TrimSpace(cleaned)}, docLines...)
		case line == "":
			continue
		default:
			i = -1
		}
		if i == -1 {
			break
		}
	}

	var nonEmpty []string
	for _, l := range docLines {
		if l != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) == 0 {
		return "", false
	}
	return strings.Join(nonEmpty, " "), true
}

// FindCalls reports call expressions, grounded on the teacher's flat
// Call shape, generalized to TypeScript's call_expression node.
func (p *Parser) FindCalls(code []byte) []lang.Call {
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
		if node.Kind() == "call_expression" {
			if fn := node.ChildByFieldName("function"); fn != nil {
				calls = append(calls, lang.Call{To: text(fn, code), Range: nodeRange(node), Kind: lang.RelationCalls})
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	return calls
}

// FindMethodCalls reports receiver.method(...) calls.
func (p *Parser) FindMethodCalls(code []byte) []lang.MethodCall {
	tree := p.parser.Parse(code, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var calls []lang.MethodCall
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "call_expression" {
			if fn := node.ChildByFieldName("function"); fn != nil && fn.Kind() == "member_expression" {
				obj := fn.ChildByFieldName("object")
				prop := fn.ChildByFieldName("property")
				if obj != nil && prop != nil {
					calls = append(calls, lang.MethodCall{
						Receiver: text(obj, code),
						Method:   text(prop, code),
						Range:    nodeRange(node),
						IsStatic: text(obj, code) == "this",
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

// FindImplementations reports class/interface extends and implements
// relations.
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
		switch node.Kind() {
		case "class_declaration", "interface_declaration":
			nameNode := nameIdentifier(node)
			if nameNode != nil {
				extends, implements := heritage(node, code)
				for _, base := range extends {
					calls = append(calls, lang.Call{From: text(nameNode, code), To: base, Range: nodeRange(node), Kind: lang.RelationExtends})
				}
				for _, iface := range implements {
					calls = append(calls, lang.Call{From: text(nameNode, code), To: iface, Range: nodeRange(node), Kind: lang.RelationImplements})
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

// FindUses reports type annotation references (`: TypeName`).
func (p *Parser) FindUses(code []byte) []lang.Call {
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
		if node.Kind() == "type_annotation" {
			if t := node.Child(int(node.ChildCount()) - 1); t != nil && t.Kind() == "type_identifier" {
				calls = append(calls, lang.Call{To: text(t, code), Range: nodeRange(node), Kind: lang.RelationUses})
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	return calls
}

// FindDefines returns method-to-class "defines" relations.
func (p *Parser) FindDefines(code []byte) []lang.Call {
	tree := p.parser.Parse(code, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var calls []lang.Call
	var walk func(node *sitter.Node, class string)
	walk = func(node *sitter.Node, class string) {
		if node == nil {
			return
		}
		current := class
		if node.Kind() == "class_declaration" {
			if name := nameIdentifier(node); name != nil {
				current = text(name, code)
			}
		}
		if node.Kind() == "method_definition" && current != "" {
			if name := nameIdentifier(node); name != nil {
				calls = append(calls, lang.Call{From: current, To: text(name, code), Range: nodeRange(node), Kind: lang.RelationDefines})
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), current)
		}
	}
	walk(tree.RootNode(), "")
	return calls
}

// FindImports extracts `import { a, b } from "mod"` and `import x from "mod"`.
func (p *Parser) FindImports(code []byte, file lang.FileID) []lang.Import {
	tree := p.parser.Parse(code, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var imports []lang.Import
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "import_statement" {
			modulePath := ""
			if source := node.ChildByFieldName("source"); source != nil {
				modulePath = strings.Trim(text(source, code), `"'`)
			}
			var walkClause func(n *sitter.Node)
			walkClause = func(n *sitter.Node) {
				if n == nil {
					return
				}
				switch n.Kind() {
				case "identifier":
					imports = append(imports, lang.Import{Path: modulePath, Alias: text(n, code), HasAlias: true, FileID: file, Range: nodeRange(n)})
				case "import_specifier":
					name := n.ChildByFieldName("name")
					alias := n.ChildByFieldName("alias")
					if name != nil {
						imp := lang.Import{Path: modulePath, FileID: file, Range: nodeRange(n)}
						imp.Alias = text(name, code)
						if alias != nil {
							imp.Alias = text(alias, code)
							imp.HasAlias = true
						}
						imports = append(imports, imp)
					}
				default:
					for i := uint(0); i < n.ChildCount(); i++ {
						walkClause(n.Child(i))
					}
				}
			}
			if clause := node.ChildByFieldName("import_clause"); clause != nil {
				walkClause(clause)
			} else {
				for i := uint(0); i < node.ChildCount(); i++ {
					walkClause(node.Child(i))
				}
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	return imports
}

var (
	_ lang.LanguageParser = (*Parser)(nil)
	_ lang.NodeTracker    = (*Parser)(nil)
)
