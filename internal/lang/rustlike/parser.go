package rustlike

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codanna/codanna/internal/lang"
	"github.com/codanna/codanna/internal/lang/diag"
)

// Parser implements lang.LanguageParser, generic over a Dialect.
// Dispatch generalizes the teacher's goNodeToSymbol/rustNodeToSymbol
// (internal/parser/treesitter.go) from hardcoded per-language switches
// to Dialect-driven FunctionKinds/TypeKinds tables, since spec.md
// treats this whole family as one lighter-weight registration.
type Parser struct {
	lang.BaseNodeTracker

	dialect Dialect
	parser  *sitter.Parser
	ctx     *lang.ParserContext
	res     *ResolutionContext
	inh     *InheritanceResolver
	sink    diag.Sink
}

// NewParser creates a parser for the given dialect; sink may be nil,
// in which case diagnostics are discarded.
func NewParser(d Dialect, sink diag.Sink) (*Parser, error) {
	if sink == nil {
		sink = diag.Discard{}
	}
	p := sitter.NewParser()
	if err := p.SetLanguage(d.GetLanguage()); err != nil {
		return nil, fmt.Errorf("set %s language: %w", d.Name, err)
	}
	return &Parser{dialect: d, parser: p, sink: sink, inh: NewInheritanceResolver()}, nil
}

func (p *Parser) Language() lang.LanguageID { return p.dialect.ID }

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

func (p *Parser) isFunctionKind(kind string) bool {
	for _, k := range p.dialect.FunctionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Parse resets per-file state and walks the parsed tree.
func (p *Parser) Parse(code []byte, file lang.FileID, counter *lang.SymbolCounter) []*lang.Symbol {
	p.ctx = lang.NewParserContext()
	p.res = NewResolutionContext(file)
	p.ResetHandledNodes()

	tree := p.parser.Parse(code, nil)
	if tree == nil {
		p.sink.Emit(diag.Diagnostic{Kind: diag.KindParseFailure, Message: "tree-sitter returned no tree", Language: string(p.dialect.ID)})
		return nil
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		p.sink.Emit(diag.Diagnostic{Kind: diag.KindPartialParse, Message: p.dialect.Name + " parse tree contains errors, continuing with partial results", Language: string(p.dialect.ID)})
	}

	p.res.EnterScope(lang.ScopeTypeModule)
	var symbols []*lang.Symbol
	p.walkChildren(tree.RootNode(), code, file, counter, &symbols)
	p.res.ExitScope()
	return symbols
}

func (p *Parser) walk(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	p.record(node)

	switch {
	case node.Kind() == p.dialect.ImplKind && p.dialect.ImplKind != "":
		p.processImpl(node, code, file, counter, out)
	case p.isFunctionKind(node.Kind()):
		p.processFunction(node, code, file, counter, out)
	case p.dialect.TypeKinds[node.Kind()] != "":
		p.processType(node, code, file, counter, out, p.dialect.TypeKinds[node.Kind()])
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
	b := NewBehavior(p.dialect)
	return &lang.Symbol{
		ID:           id,
		Name:         name,
		Kind:         kind,
		FileID:       file,
		Range:        r,
		Signature:    signature,
		DocComment:   doc,
		Visibility:   b.ParseVisibility(signature),
		ScopeContext: p.ctx.CurrentScopeContext(),
		LanguageID:   p.dialect.ID,
	}
}

// nameIdentifier looks up the conventional "name" field first, falling
// back to the teacher's "first identifier-ish child" heuristic for
// grammars that don't expose one (tree-sitter-c's declarator chains).
func nameIdentifier(node *sitter.Node) *sitter.Node {
	if n := node.ChildByFieldName("name"); n != nil {
		return n
	}
	if n := node.ChildByFieldName("declarator"); n != nil {
		return nameIdentifier(n)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier", "type_identifier", "field_identifier":
			return child
		}
	}
	return nil
}

func (p *Parser) isMethod() bool {
	return p.ctx.CurrentScopeContext().Kind == lang.ScopeContextClassMember
}

func (p *Parser) processFunction(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	nameNode := nameIdentifier(node)
	if nameNode == nil {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(nameNode, code)

	receiver := receiverType(node, code)
	kind := lang.KindFunction
	current := p.ctx.CurrentScopeContext()
	if receiver != "" || p.isMethod() {
		kind = lang.KindMethod
	}

	signature := name
	if params := node.ChildByFieldName("parameters"); params != nil {
		signature += text(params, code)
	}

	doc, _ := p.ExtractDocComment(node, code)
	id := counter.Next()
	symbol := p.newSymbol(id, name, kind, file, nodeRange(nameNode), signature, doc)
	*out = append(*out, symbol)
	p.res.AddSymbol(name, id, lang.ScopeLevelModule)

	owner := receiver
	if owner == "" {
		owner = current.ParentName
	}
	if kind == lang.KindMethod && owner != "" {
		p.inh.AddTypeMethods(owner, append(p.inh.GetAllMethods(owner), name))
	}

	p.res.EnterScope(lang.ScopeTypeFunction)
	p.ctx.PushScope(lang.ParameterScope())
	if body := node.ChildByFieldName("body"); body != nil {
		p.walkChildren(body, code, file, counter, out)
	}
	p.ctx.PopScope()
	p.res.ExitScope()
}

// receiverType extracts a Go method receiver's type name from its
// parameter_list (e.g. "(ts *TestStruct)"), matching the teacher's
// hasReceiver check generalized to actually name the receiver type
// rather than just detecting its presence.
func receiverType(node *sitter.Node, code []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	var walk func(n *sitter.Node) string
	walk = func(n *sitter.Node) string {
		if n == nil {
			return ""
		}
		if n.Kind() == "type_identifier" {
			return text(n, code)
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if name := walk(n.Child(i)); name != "" {
				return name
			}
		}
		return ""
	}
	return walk(recv)
}

// heritageBases scans node for a fixed set of child kinds carrying
// base-type references (Java's superclass/super_interfaces
// fields, C++'s base_class_clause), returning the identifier text of
// each.
func heritageBases(node *sitter.Node, code []byte) []string {
	var bases []string
	var scan func(n *sitter.Node)
	scan = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "identifier", "type_identifier":
			bases = append(bases, text(n, code))
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			scan(n.Child(i))
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "superclass", "super_interfaces", "base_class_clause", "extends_clause", "implements_clause":
			scan(child)
		}
	}
	return bases
}

func (p *Parser) processType(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol, kind lang.Kind) {
	if p.dialect.NestedTypeSpecKind != "" {
		p.processNestedTypeSpecs(node, code, file, counter, out)
		return
	}

	nameNode := nameIdentifier(node)
	if nameNode == nil {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	name := text(nameNode, code)

	for _, base := range heritageBases(node, code) {
		p.inh.AddInheritance(name, base, "extends")
	}

	signature := name
	doc, _ := p.ExtractDocComment(node, code)
	id := counter.Next()
	symbol := p.newSymbol(id, name, kind, file, nodeRange(nameNode), signature, doc)
	*out = append(*out, symbol)
	p.res.AddSymbol(name, id, lang.ScopeLevelModule)

	p.ctx.PushScope(lang.ScopeContext{Kind: lang.ScopeContextClassMember, ParentName: name, ParentKind: kind})
	if body := node.ChildByFieldName("body"); body != nil {
		p.walkChildren(body, code, file, counter, out)
	}
	p.ctx.PopScope()
}

// processNestedTypeSpecs handles Go's "type_declaration", which wraps
// one or more "type_spec" children (grouped "type ( A struct{}; B
// interface{} )" blocks) rather than carrying name/type fields itself.
// Each spec's Kind is derived from its underlying type node, and struct
// specs are scanned for anonymous (embedded) fields to seed the
// embeds-based inheritance model.
func (p *Parser) processNestedTypeSpecs(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Kind() != p.dialect.NestedTypeSpecKind {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		typeNode := spec.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			continue
		}
		name := text(nameNode, code)

		kind := lang.KindTypeAlias
		switch typeNode.Kind() {
		case "struct_type":
			kind = lang.KindStruct
		case "interface_type":
			kind = lang.KindInterface
		}

		for _, embedded := range goEmbeddedFields(typeNode, code) {
			p.inh.AddInheritance(name, embedded, "embeds")
		}

		doc, _ := p.ExtractDocComment(node, code)
		id := counter.Next()
		symbol := p.newSymbol(id, name, kind, file, nodeRange(nameNode), name, doc)
		*out = append(*out, symbol)
		p.res.AddSymbol(name, id, lang.ScopeLevelModule)

		p.ctx.PushScope(lang.ScopeContext{Kind: lang.ScopeContextClassMember, ParentName: name, ParentKind: kind})
		p.walkChildren(typeNode, code, file, counter, out)
		p.ctx.PopScope()
	}
}

// goEmbeddedFields returns the declared type names of a struct_type's
// anonymous fields: a field_declaration with a "type" field but no
// "name" field names an embedded type directly (spec.md's struct
// embedding -> trait/impl model mapping).
func goEmbeddedFields(typeNode *sitter.Node, code []byte) []string {
	var embedded []string
	if typeNode.Kind() != "struct_type" {
		return embedded
	}
	for i := uint(0); i < typeNode.ChildCount(); i++ {
		list := typeNode.Child(i)
		if list == nil || list.Kind() != "field_declaration_list" {
			continue
		}
		for j := uint(0); j < list.ChildCount(); j++ {
			field := list.Child(j)
			if field == nil || field.Kind() != "field_declaration" {
				continue
			}
			if field.ChildByFieldName("name") != nil {
				continue
			}
			if t := field.ChildByFieldName("type"); t != nil {
				embedded = append(embedded, text(t, code))
			}
		}
	}
	return embedded
}

// processImpl handles Rust's "impl Trait for Type { ... }" / "impl
// Type { ... }": when both trait and type fields are present, Type is
// registered as carrying Trait's methods (the shared trait/impl
// model); either way its methods are parsed with Type as the current
// ClassMember parent so processFunction attributes them correctly.
func (p *Parser) processImpl(node *sitter.Node, code []byte, file lang.FileID, counter *lang.SymbolCounter, out *[]*lang.Symbol) {
	typeNode := node.ChildByFieldName("type")
	traitNode := node.ChildByFieldName("trait")
	if typeNode == nil {
		p.walkChildren(node, code, file, counter, out)
		return
	}
	typeName := text(typeNode, code)
	if traitNode != nil {
		p.inh.AddInheritance(typeName, text(traitNode, code), "impl")
	}

	p.ctx.PushScope(lang.ScopeContext{Kind: lang.ScopeContextClassMember, ParentName: typeName, ParentKind: lang.KindStruct})
	if body := node.ChildByFieldName("body"); body != nil {
		p.walkChildren(body, code, file, counter, out)
	}
	p.ctx.PopScope()
}

// ExtractDocComment joins the contiguous run of leading "//" comment
// lines immediately above node, skipping blank lines but stopping at
// the first non-comment, non-blank line — the same rule every other
// language in this module applies literally, per DESIGN.md open
// question 2.
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
		case strings.HasPrefix(line, "///"):
			docLines = append([]string{strings.TrimSpace(strings.TrimPrefix(line, "///"))}, docLines...)
		case strings.HasPrefix(line, "//"):
			docLines = append([]string{strings.TrimSpace(strings.TrimPrefix(line, "//"))}, docLines...)
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

// FindCalls reports call expressions across the dialect's call node
// kind, grounded on the teacher's flat Call shape.
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
		switch node.Kind() {
		case "call_expression":
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

// FindMethodCalls reports receiver.method(...) / receiver->method(...) calls.
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
			if fn := node.ChildByFieldName("function"); fn != nil && (fn.Kind() == "field_expression" || fn.Kind() == "selector_expression") {
				obj := fn.ChildByFieldName("operand")
				if obj == nil {
					obj = fn.ChildByFieldName("value")
				}
				field := fn.ChildByFieldName("field")
				if field == nil {
					field = fn.ChildByFieldName("field_identifier")
				}
				if obj != nil && field != nil {
					calls = append(calls, lang.MethodCall{Receiver: text(obj, code), Method: text(field, code), Range: nodeRange(node)})
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

// FindImplementations returns type-to-trait/interface "implements"
// relations (Rust impl blocks, Java/C++ extends/implements clauses).
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
		if node.Kind() == p.dialect.ImplKind && p.dialect.ImplKind != "" {
			typeNode := node.ChildByFieldName("type")
			traitNode := node.ChildByFieldName("trait")
			if typeNode != nil && traitNode != nil {
				calls = append(calls, lang.Call{From: text(typeNode, code), To: text(traitNode, code), Range: nodeRange(node), Kind: lang.RelationImplements})
			}
		}
		if p.dialect.TypeKinds[node.Kind()] != "" {
			if nameNode := nameIdentifier(node); nameNode != nil {
				for _, base := range heritageBases(node, code) {
					calls = append(calls, lang.Call{From: text(nameNode, code), To: base, Range: nodeRange(node), Kind: lang.RelationImplements})
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

// FindUses always returns nil: spec.md's non-goal (a) excludes type
// inference / static type-usage tracking beyond declared signatures.
func (p *Parser) FindUses([]byte) []lang.Call { return nil }

// FindDefines returns method-to-type "defines" relations.
func (p *Parser) FindDefines(code []byte) []lang.Call {
	tree := p.parser.Parse(code, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var calls []lang.Call
	var walk func(node *sitter.Node, owner string)
	walk = func(node *sitter.Node, owner string) {
		if node == nil {
			return
		}
		current := owner
		if p.dialect.TypeKinds[node.Kind()] != "" {
			if n := nameIdentifier(node); n != nil {
				current = text(n, code)
			}
		}
		if node.Kind() == p.dialect.ImplKind && p.dialect.ImplKind != "" {
			if t := node.ChildByFieldName("type"); t != nil {
				current = text(t, code)
			}
		}
		if p.isFunctionKind(node.Kind()) && current != "" {
			if n := nameIdentifier(node); n != nil {
				calls = append(calls, lang.Call{From: current, To: text(n, code), Range: nodeRange(node), Kind: lang.RelationDefines})
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), current)
		}
	}
	walk(tree.RootNode(), "")
	return calls
}

// FindImports extracts the dialect's import/use-statement paths as
// plain dotted/colon-separated strings; precise per-grammar shapes are
// intentionally not modeled further (a "lighter-weight" registration
// per SPEC_FULL.md) beyond locating the literal path text.
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
		case "use_declaration", "import_declaration", "import_spec":
			imports = append(imports, lang.Import{Path: strings.Trim(text(node, code), `"; `), FileID: file, Range: nodeRange(node)})
			return
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
