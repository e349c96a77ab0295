package rustlike

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

func TestRustParseFunctionStructAndImpl(t *testing.T) {
	p, err := NewParser(NewRustDefinition(nil).Dialect, nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	code := []byte(`
struct Point {
    x: i32,
    y: i32,
}

trait Shape {
    fn area(&self) -> i32;
}

impl Shape for Point {
    fn area(&self) -> i32 {
        self.x * self.y
    }
}
`)
	symbols := p.Parse(code, lang.FileID(1), counter)

	point := findSymbol(symbols, "Point")
	if point == nil {
		t.Fatalf("expected a symbol named Point")
	}
	if point.Kind != lang.KindStruct {
		t.Errorf("Point kind = %v, want Struct", point.Kind)
	}

	shape := findSymbol(symbols, "Shape")
	if shape == nil || shape.Kind != lang.KindInterface {
		t.Fatalf("expected Shape trait symbol with Interface kind")
	}

	area := findSymbol(symbols, "area")
	if area == nil || area.Kind != lang.KindMethod {
		t.Fatalf("expected area method symbol")
	}

	if !p.inh.IsSubtype("Point", "Shape") {
		t.Errorf("expected Point to be a subtype of Shape via impl")
	}
	if _, ok := p.inh.ResolveMethod("Point", "area"); !ok {
		t.Errorf("expected Point.area to resolve through the Shape impl")
	}
}

func TestGoParseFunctionMethodAndStruct(t *testing.T) {
	p, err := NewParser(NewGoDefinition(nil).Dialect, nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	code := []byte(`
package sample

type Greeter struct {
	Name string
}

func (g *Greeter) Greet() string {
	return g.Name
}

func Standalone() int {
	return 1
}
`)
	symbols := p.Parse(code, lang.FileID(1), counter)

	greeter := findSymbol(symbols, "Greeter")
	if greeter == nil {
		t.Fatalf("expected a symbol named Greeter")
	}
	if greeter.Kind != lang.KindStruct {
		t.Errorf("Greeter kind = %v, want Struct", greeter.Kind)
	}

	greet := findSymbol(symbols, "Greet")
	if greet == nil || greet.Kind != lang.KindMethod {
		t.Fatalf("expected Greet method symbol")
	}

	standalone := findSymbol(symbols, "Standalone")
	if standalone == nil || standalone.Kind != lang.KindFunction {
		t.Fatalf("expected Standalone function symbol")
	}

	if _, ok := p.inh.ResolveMethod("Greeter", "Greet"); !ok {
		t.Errorf("expected Greeter.Greet to resolve via receiver attribution")
	}
}

func TestInheritanceChainTerminatesOnCyclicEmbedding(t *testing.T) {
	r := NewInheritanceResolver()
	r.AddInheritance("A", "B", "embeds")
	r.AddInheritance("B", "A", "embeds")

	chain := r.GetInheritanceChain("A")
	seen := map[string]int{}
	for _, t := range chain {
		seen[t]++
	}
	for name, count := range seen {
		if count > 1 {
			t.Fatalf("chain repeats %s %d times, want a cycle-guarded single occurrence: %v", name, count, chain)
		}
	}
}

func TestResolutionOrderBlockChainInnermostFirst(t *testing.T) {
	ctx := NewResolutionContext(lang.FileID(1))
	ctx.AddSymbol("x", lang.SymbolID(1), lang.ScopeLevelModule)

	ctx.EnterScope(lang.ScopeTypeFunction)
	ctx.AddSymbol("x", lang.SymbolID(2), lang.ScopeLevelLocal)

	id, ok := ctx.Resolve("x")
	if !ok || id != lang.SymbolID(2) {
		t.Fatalf("expected innermost block's x to shadow module x, got %v ok=%v", id, ok)
	}

	ctx.ExitScope()
	id, ok = ctx.Resolve("x")
	if !ok || id != lang.SymbolID(1) {
		t.Fatalf("expected module x after block exit, got %v ok=%v", id, ok)
	}
}

func TestDialectVisibilityKeywords(t *testing.T) {
	rust := NewBehavior(NewRustDefinition(nil).Dialect)
	if vis := rust.ParseVisibility("pub fn foo()"); vis != lang.VisibilityPublic {
		t.Errorf("rust pub fn = %v, want Public", vis)
	}
	if vis := rust.ParseVisibility("fn foo()"); vis != lang.VisibilityPrivate {
		t.Errorf("rust fn (no pub) = %v, want Private default", vis)
	}

	java := NewBehavior(NewJavaDefinition(nil).Dialect)
	if vis := java.ParseVisibility("private void foo()"); vis != lang.VisibilityPrivate {
		t.Errorf("java private void = %v, want Private", vis)
	}
	if vis := java.ParseVisibility("void foo()"); vis != lang.VisibilityModule {
		t.Errorf("java package-private fallback = %v, want Module default", vis)
	}
}

func TestModuleSeparatorPerDialect(t *testing.T) {
	rust := NewBehavior(NewRustDefinition(nil).Dialect)
	if got := rust.FormatModulePath("crate::shapes", "Point"); got != "crate::shapes::Point" {
		t.Errorf("rust module path = %q", got)
	}

	goB := NewBehavior(NewGoDefinition(nil).Dialect)
	if got := goB.FormatModulePath("sample", "Greeter"); got != "sample.Greeter" {
		t.Errorf("go module path = %q", got)
	}
}

func TestSupportsTraitsOnlyRust(t *testing.T) {
	if !NewRustDefinition(nil).Dialect.SupportsTraits {
		t.Errorf("expected Rust dialect to support traits")
	}
	if NewGoDefinition(nil).Dialect.SupportsTraits {
		t.Errorf("expected Go dialect to not support traits")
	}
	if NewJavaDefinition(nil).Dialect.SupportsTraits {
		t.Errorf("expected Java dialect to not support traits")
	}
}

func TestJavaScriptParseFunctionAndClassMethod(t *testing.T) {
	p, err := NewParser(NewJavaScriptDefinition(nil).Dialect, nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	code := []byte(`
function standalone() {
  return 1;
}

class Greeter {
  greet() {
    return this.name;
  }
}
`)
	symbols := p.Parse(code, lang.FileID(1), counter)

	standalone := findSymbol(symbols, "standalone")
	if standalone == nil || standalone.Kind != lang.KindFunction {
		t.Fatalf("expected standalone function symbol")
	}

	greeter := findSymbol(symbols, "Greeter")
	if greeter == nil || greeter.Kind != lang.KindClass {
		t.Fatalf("expected Greeter class symbol")
	}

	greet := findSymbol(symbols, "greet")
	if greet == nil || greet.Kind != lang.KindMethod {
		t.Fatalf("expected greet method symbol")
	}
}
