package python

import (
	"testing"

	"github.com/codanna/codanna/internal/lang"
)

func findSymbol(symbols []*lang.Symbol, name string) *lang.Symbol {
	for _, s := range symbols {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func TestParseFunctionAndClass(t *testing.T) {
	p, err := NewParser(nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	code := []byte("def greet(name):\n    return name\n\n\nclass Greeter(object):\n    def hello(self):\n        return 1\n")
	symbols := p.Parse(code, lang.FileID(1), counter)

	greet := findSymbol(symbols, "greet")
	if greet == nil {
		t.Fatalf("expected a symbol named greet")
	}
	if greet.Kind != lang.KindFunction {
		t.Errorf("greet kind = %v, want Function", greet.Kind)
	}

	class := findSymbol(symbols, "Greeter")
	if class == nil {
		t.Fatalf("expected a symbol named Greeter")
	}
	if class.Kind != lang.KindClass {
		t.Errorf("Greeter kind = %v, want Class", class.Kind)
	}

	hello := findSymbol(symbols, "hello")
	if hello == nil {
		t.Fatalf("expected a symbol named hello")
	}
	if hello.Kind != lang.KindMethod {
		t.Errorf("hello kind = %v, want Method", hello.Kind)
	}
}

func TestDocstringExtraction(t *testing.T) {
	p, err := NewParser(nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	code := []byte("def greet(name):\n    \"\"\"Say hello to name.\"\"\"\n    return name\n")
	symbols := p.Parse(code, lang.FileID(1), counter)

	greet := findSymbol(symbols, "greet")
	if greet == nil {
		t.Fatalf("expected a symbol named greet")
	}
	if greet.DocComment != "Say hello to name." {
		t.Errorf("DocComment = %q, want %q", greet.DocComment, "Say hello to name.")
	}
}

// Invariant 4: a name bound in an outer function resolves from a
// nested inner function, and the inner function's locals do not leak
// outward after it exits.
func TestNestedFunctionEnclosingScope(t *testing.T) {
	res := NewResolutionContext(lang.FileID(1))
	res.EnterScope(lang.ScopeTypeModule)

	res.EnterScope(lang.ScopeTypeFunction)
	res.AddSymbol("outer_var", lang.SymbolID(1), lang.ScopeLevelLocal)

	res.EnterScope(lang.ScopeTypeFunction)
	res.AddSymbol("inner_var", lang.SymbolID(2), lang.ScopeLevelLocal)

	if id, ok := res.Resolve("outer_var"); !ok || id != lang.SymbolID(1) {
		t.Fatalf("Resolve(outer_var) from inner function = (%v, %v), want (1, true)", id, ok)
	}

	res.ExitScope() // leave inner function
	if _, ok := res.Resolve("inner_var"); ok {
		t.Fatalf("inner_var resolved after inner function exited, want leak-proof")
	}

	res.ExitScope() // leave outer function
}

// S4 / invariants 6, 7: diamond-shaped inheritance MRO.
func TestMROiamond(t *testing.T) {
	r := NewInheritanceResolver()
	r.AddTypeMethods("A", []string{"foo"})
	r.AddTypeMethods("B", []string{"bar"})
	r.AddInheritance("C", "A", "extends")
	r.AddInheritance("A", "X", "extends")
	r.AddInheritance("C", "B", "extends")
	r.AddInheritance("B", "X", "extends")

	chain := r.GetInheritanceChain("C")
	want := []string{"C", "A", "X", "B"}
	if len(chain) != len(want) {
		t.Fatalf("chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("chain = %v, want %v", chain, want)
		}
	}

	if chain[0] != "C" {
		t.Errorf("chain[0] = %q, want C", chain[0])
	}
	seen := map[string]bool{}
	for _, c := range chain {
		if seen[c] {
			t.Fatalf("chain %v repeats %q", chain, c)
		}
		seen[c] = true
	}

	methods := r.GetAllMethods("C")
	if len(methods) != 2 || methods[0] != "foo" || methods[1] != "bar" {
		t.Errorf("GetAllMethods(C) = %v, want [foo bar]", methods)
	}

	if owner, ok := r.ResolveMethod("C", "foo"); !ok || owner != "A" {
		t.Errorf("ResolveMethod(C, foo) = (%q, %v), want (A, true)", owner, ok)
	}

	if !r.IsSubtype("C", "A") {
		t.Error("IsSubtype(C, A) = false, want true")
	}
	if r.IsSubtype("A", "C") {
		t.Error("IsSubtype(A, C) = true, want false")
	}
}

func TestParseVisibilityUnderscoreConvention(t *testing.T) {
	b := NewBehavior()

	cases := []struct {
		name string
		want lang.Visibility
	}{
		{"public_name", lang.VisibilityPublic},
		{"_module_private", lang.VisibilityModule},
		{"__mangled", lang.VisibilityPrivate},
		{"__dunder__", lang.VisibilityPublic},
	}

	for _, c := range cases {
		if got := b.ParseVisibility(c.name); got != c.want {
			t.Errorf("ParseVisibility(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestModulePathFromFile(t *testing.T) {
	b := NewBehavior()

	got, ok := b.ModulePathFromFile("/proj/pkg/sub/mod.py", "/proj")
	if !ok || got != "pkg.sub.mod" {
		t.Errorf("ModulePathFromFile = (%q, %v), want (pkg.sub.mod, true)", got, ok)
	}

	got, ok = b.ModulePathFromFile("/proj/pkg/__init__.py", "/proj")
	if !ok || got != "pkg" {
		t.Errorf("ModulePathFromFile(__init__.py) = (%q, %v), want (pkg, true)", got, ok)
	}
}

// S6-equivalent for Python's relative import resolution.
func TestImportMatchesSymbol(t *testing.T) {
	b := NewBehavior()

	cases := []struct {
		importPath, symbolModulePath, importingModule string
		want                                          bool
	}{
		{"pkg.util", "pkg.util", "pkg.main", true},
		{".util", "pkg.util", "pkg", true},
		{"..shared", "pkg.shared", "pkg.sub.mod", true},
		{".util", "pkg.other", "pkg", false},
	}

	for _, c := range cases {
		got := b.ImportMatchesSymbol(c.importPath, c.symbolModulePath, c.importingModule)
		if got != c.want {
			t.Errorf("ImportMatchesSymbol(%q, %q, %q) = %v, want %v",
				c.importPath, c.symbolModulePath, c.importingModule, got, c.want)
		}
	}
}

func TestSupportsInherentMethodsNotTraits(t *testing.T) {
	b := NewBehavior()
	if b.SupportsTraits() {
		t.Error("SupportsTraits = true, want false")
	}
	if !b.SupportsInherentMethods() {
		t.Error("SupportsInherentMethods = false, want true")
	}
}

func TestFindImplementationsReportsBases(t *testing.T) {
	p, err := NewParser(nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}

	code := []byte("class C(A, B):\n    pass\n")
	calls := p.FindImplementations(code)
	if len(calls) != 2 {
		t.Fatalf("FindImplementations returned %d calls, want 2", len(calls))
	}
	if calls[0].From != "C" || calls[0].To != "A" {
		t.Errorf("calls[0] = %+v, want From=C To=A", calls[0])
	}
	if calls[1].To != "B" {
		t.Errorf("calls[1] = %+v, want To=B", calls[1])
	}
}
