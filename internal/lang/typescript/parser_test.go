package typescript

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

func TestParseFunctionClassInterfaceType(t *testing.T) {
	p, err := NewParser(nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	code := []byte(`
interface Shape {
	area(): number;
}

type Point = { x: number; y: number };

class Circle implements Shape {
	area(): number {
		return 1;
	}
}

function describe(s: Shape): string {
	return "shape";
}
`)
	symbols := p.Parse(code, lang.FileID(1), counter)

	if s := findSymbol(symbols, "Shape"); s == nil || s.Kind != lang.KindInterface {
		t.Errorf("Shape = %+v, want Interface", s)
	}
	if s := findSymbol(symbols, "Point"); s == nil || s.Kind != lang.KindTypeAlias {
		t.Errorf("Point = %+v, want TypeAlias", s)
	}
	if s := findSymbol(symbols, "Circle"); s == nil || s.Kind != lang.KindClass {
		t.Errorf("Circle = %+v, want Class", s)
	}
	if s := findSymbol(symbols, "describe"); s == nil || s.Kind != lang.KindFunction {
		t.Errorf("describe = %+v, want Function", s)
	}
	if s := findSymbol(symbols, "area"); s == nil || s.Kind != lang.KindMethod {
		t.Errorf("area = %+v, want Method", s)
	}
}

// Invariant 7-equivalent for TypeScript's single-extends +
// multi-implements model (spec.md §4.4).
func TestInheritanceExtendsAndImplements(t *testing.T) {
	r := NewInheritanceResolver()
	r.AddTypeMethods("Base", []string{"foo"})
	r.AddTypeMethods("Printable", []string{"print"})
	r.AddInheritance("Derived", "Base", "extends")
	r.AddInheritance("Derived", "Printable", "implements")

	chain := r.GetInheritanceChain("Derived")
	if chain[0] != "Derived" {
		t.Fatalf("chain[0] = %q, want Derived", chain[0])
	}
	seen := map[string]bool{}
	for _, c := range chain {
		if seen[c] {
			t.Fatalf("chain %v repeats %q", chain, c)
		}
		seen[c] = true
	}

	if owner, ok := r.ResolveMethod("Derived", "foo"); !ok || owner != "Base" {
		t.Errorf("ResolveMethod(Derived, foo) = (%q, %v), want (Base, true)", owner, ok)
	}
	if owner, ok := r.ResolveMethod("Derived", "print"); !ok || owner != "Printable" {
		t.Errorf("ResolveMethod(Derived, print) = (%q, %v), want (Printable, true)", owner, ok)
	}

	if !r.IsSubtype("Derived", "Base") {
		t.Error("IsSubtype(Derived, Base) = false, want true")
	}
	if !r.IsSubtype("Derived", "Printable") {
		t.Error("IsSubtype(Derived, Printable) = false, want true")
	}
	if r.IsSubtype("Base", "Derived") {
		t.Error("IsSubtype(Base, Derived) = true, want false")
	}
}

func TestInheritanceChainTerminatesOnCyclicExtends(t *testing.T) {
	r := NewInheritanceResolver()
	r.AddInheritance("A", "B", "extends")
	r.AddInheritance("B", "A", "extends")

	chain := r.GetInheritanceChain("A")
	seen := map[string]bool{}
	for _, c := range chain {
		if seen[c] {
			t.Fatalf("chain %v repeats %q", chain, c)
		}
		seen[c] = true
	}
}

func TestResolutionOrderLocalBeforeModule(t *testing.T) {
	res := NewResolutionContext(lang.FileID(1))
	res.AddSymbol("x", lang.SymbolID(1), lang.ScopeLevelModule)

	res.EnterScope(lang.ScopeTypeFunction)
	res.AddSymbol("x", lang.SymbolID(2), lang.ScopeLevelLocal)

	id, ok := res.Resolve("x")
	if !ok || id != lang.SymbolID(2) {
		t.Fatalf("Resolve(x) = (%v, %v), want (2, true) — local should shadow module", id, ok)
	}

	res.ExitScope()
	id, ok = res.Resolve("x")
	if !ok || id != lang.SymbolID(1) {
		t.Fatalf("after ExitScope, Resolve(x) = (%v, %v), want (1, true)", id, ok)
	}
}

func TestParseVisibilityExportConvention(t *testing.T) {
	b := NewBehavior()

	cases := []struct {
		sig  string
		want lang.Visibility
	}{
		{"export function f()", lang.VisibilityPublic},
		{"function f()", lang.VisibilityModule},
		{"private method()", lang.VisibilityPrivate},
		{"protected method()", lang.VisibilityProtected},
	}
	for _, c := range cases {
		if got := b.ParseVisibility(c.sig); got != c.want {
			t.Errorf("ParseVisibility(%q) = %v, want %v", c.sig, got, c.want)
		}
	}
}

func TestModulePathFromFile(t *testing.T) {
	b := NewBehavior()

	got, ok := b.ModulePathFromFile("/proj/src/lib/util.ts", "/proj")
	if !ok || got != "src.lib.util" {
		t.Errorf("ModulePathFromFile = (%q, %v), want (src.lib.util, true)", got, ok)
	}

	got, ok = b.ModulePathFromFile("/proj/src/lib/index.ts", "/proj")
	if !ok || got != "src.lib" {
		t.Errorf("ModulePathFromFile(index.ts) = (%q, %v), want (src.lib, true)", got, ok)
	}
}

func TestImportMatchesSymbol(t *testing.T) {
	b := NewBehavior()

	cases := []struct {
		importPath, symbolModulePath, importingModule string
		want                                          bool
	}{
		{"./util", "lib.util", "lib", true},
		{"../shared", "lib.shared", "lib.internal", true},
		{"./util", "lib.other", "lib", false},
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
