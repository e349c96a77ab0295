package python

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
)

// Parser implements lang.LanguageParser for Python. Dispatch is
// grounded on the teacher's pythonNodeToSymbol/extractPythonFunction/
// extractPythonClass (internal/parser/treesitter.go), generalized from
// "first identifier child is the name" to field-based lookups and
// extended with the class/def/decorator/docstring handling spec.md's
// Python module requires; scoping and MRO are grounded on
// original_source/src/parsing/python/resolution.rs.
type Parser struct {
	lang.BaseNodeTracker

	parser *sitter.Parser
	ctx    *lang.ParserContext
	res    *ResolutionContext
	inh    *InheritanceResolver
	sink   diag.Sink
}

// NewParser creates a Python parser; sink may be nil, in which case
// diagnostics are discarded.
func NewParser(sink diag.Sink) (*Parser, error) {
	if sink == nil {
		sink = diag.Discard{}
	}
	p := sitter.NewParser()
	behavior := NewBehavior()
	if err := p.SetLanguage(behavior.GetLanguage()); err != nil {
		return nil, fmt.Errorf("set python language: %w", err)
	}
	return &Parser{parser: p, sink: sink, inh: NewInheritanceResolver()}, nil
}

func (p *Parser) Language() lang.LanguageID { return "python" }

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
		p.sink.Emit(diag.Diagnostic{Kind: diag.KindParseFailure, Message: "tree-sitter returned no tree", Language: "python"})
		return nil
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		p.sink.Emit(diag.Diagnostic{Kind: diag.KindPartialParse, Message: "python parse tree contains errors, continuing with partial results", Language: "python"})
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
	case "function_definition":
		p.processFunction(node, code, file, counter, out)
	case "class_definition":
		p.processClass(node, code, file, counter, out)
	case "decorated_definition":
		p.processDecorated(node, code, file, counter, out)
	case "assignment":
		p.processAssignment(node, code, file, counter, out)
	case "import_statement", "import_from_statement":
		// import symbol extraction is handled by FindImports, not Parse.
		return
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
		Visibility:   NewBehavior().ParseVisibility(name),
		ScopeContext: p.ctx.CurrentScopeContext(),
		LanguageID:   "python",
	}
}

// processDecorated unwraps `@decorator\ndef f(): ...` / `@decorator\nclass C: ...`
// to the underlying definition, matching the teacher's style of
// descending through wrapper nodes rather than special-casing them.
func (p *Parser) processDecorated(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_definition":
			p.processFunction(child, code, file, counter, out)
		case "class_definition":
			p.processClass(child, code, file, counter, out)
		}
	}
}

// processFunction extracts a function or method definition: name,
// parameter list as signature, docstring (first statement of the body
// block when it is a bare string), and registers parameters in a
// function scope before walking the body so nested closures see them
// as enclosing-scope names (PythonResolutionContext.enter_scope).
func (p *Parser) processFunction(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(nameNode, code)

	paramsText := ""
	if params := node.ChildByFieldName("parameters"); params != nil {
		paramsText = text(params, code)
	}
	signature := fmt.Sprintf("def %s%s", name, paramsText)

	currentScope := p.ctx.CurrentScopeContext()
	inClass := currentScope.Kind == lang.ScopeContextClassMember
	kind := lang.Kind(lang.KindFunction)
	if inClass {
		kind = lang.KindMethod
	}

	body := node.ChildByFieldName("body")
	doc, _ := docstring(body, code)

	id := counter.Next()
	symbol := p.newSymbol(id, name, kind, file, nodeRange(nameNode), signature, doc)
	*out = append(*out, symbol)

	p.res.AddSymbol(name, id, lang.ScopeLevelLocal)
	if inClass && currentScope.ParentName != "" {
		p.inh.AddTypeMethods(currentScope.ParentName, append(p.inh.GetAllMethods(currentScope.ParentName), name))
	}

	var params []lang.ScopeBinding
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		params = extractParams(paramsNode, code, counter)
	}
	p.res.EnterScope(lang.ScopeTypeFunction)
	for _, param := range params {
		p.res.AddSymbol(param.Name, param.ID, lang.ScopeLevelLocal)
	}
	p.ctx.PushScope(lang.ParameterScope())
	if body != nil {
		p.walkChildren(body, code, file, counter, out)
	}
	p.ctx.PopScope()
	p.res.ExitScope()
}

func extractParams(node *sitter.Node, code []byte, counter *lang.SymbolCounter) []lang.ScopeBinding {
	var params []lang.ScopeBinding
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		var name string
		switch child.Kind() {
		case "identifier":
			name = text(child, code)
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			if n := child.ChildByFieldName("name"); n != nil {
				name = text(n, code)
			} else if n := child.Child(0); n != nil && n.Kind() == "identifier" {
				name = text(n, code)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			if n := child.Child(0); n != nil {
				name = text(n, code)
			}
		default:
			continue
		}
		name = strings.TrimPrefix(strings.TrimPrefix(name, "**"), "*")
		if name == "" {
			continue
		}
		params = append(params, lang.ScopeBinding{Name: name, ID: counter.Next()})
	}
	return params
}

// docstring returns the body's leading bare string literal, PEP 257's
// docstring convention, quote markers stripped.
func docstring(body *sitter.Node, code []byte) (string, bool) {
	if body == nil {
		return "", false
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() != "expression_statement" {
			return "", false
		}
		if child.ChildCount() == 0 {
			return "", false
		}
		str := child.Child(0)
		if str.Kind() != "string" {
			return "", false
		}
		raw := text(str, code)
		return cleanDocstring(raw), true
	}
	return "", false
}

func cleanDocstring(raw string) string {
	s := raw
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = strings.TrimPrefix(s, q)
			s = strings.TrimSuffix(s, q)
			break
		}
	}
	return strings.TrimSpace(s)
}

// processClass extracts a class definition, its base list for MRO
// registration, its docstring, and walks the body with a ClassMember
// scope and current-class tag active.
func (p *Parser) processClass(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(nameNode, code)

	var bases []string
	if super := node.ChildByFieldName("superclasses"); super != nil {
		for i := uint(0); i < super.ChildCount(); i++ {
			child := super.Child(i)
			if child != nil && child.Kind() == "identifier" {
				bases = append(bases, text(child, code))
			}
		}
	}
	for _, base := range bases {
		p.inh.AddInheritance(name, base, "extends")
	}

	signature := "class " + name
	if len(bases) > 0 {
		signature += "(" + strings.Join(bases, ", ") + ")"
	}

	body := node.ChildByFieldName("body")
	doc, _ := docstring(body, code)

	id := counter.Next()
	symbol := p.newSymbol(id, name, lang.KindClass, file, nodeRange(nameNode), signature, doc)
	*out = append(*out, symbol)
	p.res.AddSymbol(name, id, lang.ScopeLevelGlobal)

	p.res.EnterScope(lang.ScopeTypeClass)
	p.ctx.PushScope(lang.ScopeContext{Kind: lang.ScopeContextClassMember, ParentName: name, ParentKind: lang.KindClass})
	if body != nil {
		p.walkChildren(body, code, file, counter, out)
	}
	p.ctx.PopScope()
	p.res.ExitScope()
}

// processAssignment records a simple `name = expr` binding as a
// Variable, skipping unpacking/attribute targets as the teacher's
// treesitter.go does for anything more structured than a bare identifier.
func (p *Parser) processAssignment(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	target := node.ChildByFieldName("left")
	if target == nil || target.Kind() != "identifier" {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(target, code)
	id := counter.Next()
	symbol := p.newSymbol(id, name, lang.KindVariable, file, nodeRange(target), name, "")
	*out = append(*out, symbol)
	p.res.AddSymbolPython(name, id, p.ctx.CurrentScopeContext().Kind != lang.ScopeContextClassMember)
}

// ExtractDocComment joins the contiguous run of leading '#' comment
// lines immediately above node, skipping blank lines but stopping at
// the first non-comment, non-blank line — the same heuristic applied
// literally across every language per DESIGN.md open question 2, not
// a Python-specific docstring (docstrings are extracted separately by
// processFunction/processClass via docstring()).
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

// FindCalls reports `name(...)` / `obj.attr(...)` call expressions as
// Call tuples, From left empty (module-scoped call site), matching the
// teacher's flat find_calls shape for dynamically typed languages.
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
		if node.Kind() == "call" {
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

// FindMethodCalls reports `receiver.method(...)` calls specifically.
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
		if node.Kind() == "call" {
			if fn := node.ChildByFieldName("function"); fn != nil && fn.Kind() == "attribute" {
				obj := fn.ChildByFieldName("object")
				attr := fn.ChildByFieldName("attribute")
				if obj != nil && attr != nil {
					calls = append(calls, lang.MethodCall{
						Receiver: text(obj, code),
						Method:   text(attr, code),
						Range:    nodeRange(node),
						IsStatic: text(obj, code) == "self" || text(obj, code) == "cls",
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

// FindImplementations returns class-to-base "extends" relations,
// Python's nearest analogue to an implements list (no interfaces).
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
		if node.Kind() == "class_definition" {
			name := node.ChildByFieldName("name")
			super := node.ChildByFieldName("superclasses")
			if name != nil && super != nil {
				for i := uint(0); i < super.ChildCount(); i++ {
					base := super.Child(i)
					if base != nil && base.Kind() == "identifier" {
						calls = append(calls, lang.Call{
							From:  text(name, code),
							To:    text(base, code),
							Range: nodeRange(node),
							Kind:  lang.RelationExtends,
						})
					}
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

// FindUses always returns nil: Python is dynamically typed, there is
// no static type-usage syntax equivalent to Rust/Java/Go's.
func (p *Parser) FindUses([]byte) []lang.Call { return nil }

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
		if node.Kind() == "class_definition" {
			if name := node.ChildByFieldName("name"); name != nil {
				current = text(name, code)
			}
		}
		if node.Kind() == "function_definition" && current != "" {
			if name := node.ChildByFieldName("name"); name != nil {
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

// FindImports extracts `import x`, `import x as y`, `from m import a, b`.
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
		switch node.Kind() {
		case "import_statement":
			for i := uint(0); i < node.ChildCount(); i++ {
				child := node.Child(i)
				if child == nil {
					continue
				}
				switch child.Kind() {
				case "dotted_name":
					imports = append(imports, lang.Import{Path: text(child, code), FileID: file, Range: nodeRange(child)})
				case "aliased_import":
					name := child.ChildByFieldName("name")
					alias := child.ChildByFieldName("alias")
					if name != nil {
						imp := lang.Import{Path: text(name, code), FileID: file, Range: nodeRange(child)}
						if alias != nil {
							imp.Alias = text(alias, code)
							imp.HasAlias = true
						}
						imports = append(imports, imp)
					}
				}
			}
		case "import_from_statement":
			module := node.ChildByFieldName("module_name")
			modulePath := ""
			if module != nil {
				modulePath = text(module, code)
			}
			for i := uint(0); i < node.ChildCount(); i++ {
				child := node.Child(i)
				if child == nil {
					continue
				}
				switch child.Kind() {
				case "dotted_name":
					if child == module {
						continue
					}
					imports = append(imports, lang.Import{Path: modulePath + "." + text(child, code), FileID: file, Range: nodeRange(child)})
				case "aliased_import":
					name := child.ChildByFieldName("name")
					alias := child.ChildByFieldName("alias")
					if name != nil {
						imp := lang.Import{Path: modulePath + "." + text(name, code), FileID: file, Range: nodeRange(child)}
						if alias != nil {
							imp.Alias = text(alias, code)
							imp.HasAlias = true
						}
						imports = append(imports, imp)
					}
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
