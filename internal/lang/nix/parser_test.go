package nix

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

// S1 — Nix let binding.
func TestParseLetBinding(t *testing.T) {
	p, err := NewParser(nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	symbols := p.Parse([]byte("let x = 42; in x"), lang.FileID(1), counter)

	x := findSymbol(symbols, "x")
	if x == nil {
		t.Fatalf("expected a symbol named x, got %d symbols", len(symbols))
	}
	if x.Kind != lang.KindVariable {
		t.Errorf("kind = %v, want Variable", x.Kind)
	}
}

// S2 — Nix function binding.
func TestParseFunctionBinding(t *testing.T) {
	p, err := NewParser(nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	symbols := p.Parse([]byte("let double = n: n * 2; in double 5"), lang.FileID(1), counter)

	double := findSymbol(symbols, "double")
	if double == nil {
		t.Fatalf("expected a symbol named double")
	}
	if double.Kind != lang.KindFunction {
		t.Errorf("kind = %v, want Function", double.Kind)
	}
	if got := double.Signature; got == "" || !contains(got, "<function>") {
		t.Errorf("signature = %q, want it to contain <function>", got)
	}
}

// S3 — Nix recursive set: a, b and c are each emitted as a Variable
// symbol (forward resolution is covered by
// TestRecursiveSetForwardReference).
func TestParseRecursiveSet(t *testing.T) {
	p, err := NewParser(nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	symbols := p.Parse([]byte("rec { a = 1; b = a + 2; c = b * 3; }"), lang.FileID(1), counter)

	names := []string{}
	for _, s := range symbols {
		names = append(names, s.Name)
	}

	for _, want := range []string{"a", "b", "c"} {
		s := findSymbol(symbols, want)
		if s == nil {
			t.Fatalf("expected symbol %q in %v", want, names)
		}
		if s.Kind != lang.KindVariable {
			t.Errorf("%s kind = %v, want Variable", want, s.Kind)
		}
	}
}

// Invariant 5 (spec 8): inside rec { a = b; b = 1; }, resolving b
// while processing a's RHS succeeds to the id minted for b.
func TestRecursiveSetForwardReference(t *testing.T) {
	res := NewResolutionContext(lang.FileID(1))
	res.EnterAttrSetScope(true)
	res.AddRecursiveSymbol("b", lang.SymbolID(2))

	id, ok := res.ResolveNixSymbol("b")
	if !ok || id != lang.SymbolID(2) {
		t.Fatalf("ResolveNixSymbol(b) = (%v, %v), want (2, true)", id, ok)
	}
}

func TestResolutionOrderPrefersInnermostLet(t *testing.T) {
	res := NewResolutionContext(lang.FileID(1))
	res.AddSymbol("x", lang.SymbolID(1), lang.ScopeLevelGlobal)

	res.EnterLetScope()
	res.AddSymbol("x", lang.SymbolID(2), lang.ScopeLevelLocal)

	id, ok := res.ResolveNixSymbol("x")
	if !ok || id != lang.SymbolID(2) {
		t.Fatalf("ResolveNixSymbol(x) = (%v, %v), want (2, true) — local should shadow global", id, ok)
	}

	res.ExitLetScope()
	id, ok = res.ResolveNixSymbol("x")
	if !ok || id != lang.SymbolID(1) {
		t.Fatalf("after ExitLetScope, ResolveNixSymbol(x) = (%v, %v), want (1, true)", id, ok)
	}
}

// S5 — module path from file.
func TestModulePathFromFile(t *testing.T) {
	b := NewBehavior()

	cases := []struct {
		filePath, projectRoot, want string
	}{
		{"/p/pkgs/dev/tools/build.nix", "/p", "pkgs.dev.tools.build"},
		{"/p/default.nix", "/p", "default"},
	}

	for _, c := range cases {
		got, ok := b.ModulePathFromFile(c.filePath, c.projectRoot)
		if !ok {
			t.Fatalf("ModulePathFromFile(%q, %q) not ok", c.filePath, c.projectRoot)
		}
		if got != c.want {
			t.Errorf("ModulePathFromFile(%q, %q) = %q, want %q", c.filePath, c.projectRoot, got, c.want)
		}
	}
}

// S6 — import matching.
func TestImportMatchesSymbol(t *testing.T) {
	b := NewBehavior()

	cases := []struct {
		importPath, symbolModulePath, importingModule string
		want                                          bool
	}{
		{"./utils", "lib.utils", "lib", true},
		{"../shared", "lib.shared", "lib.internal", true},
		{"./utils", "lib.other", "lib", false},
	}

	for _, c := range cases {
		got := b.ImportMatchesSymbol(c.importPath, c.symbolModulePath, c.importingModule)
		if got != c.want {
			t.Errorf("ImportMatchesSymbol(%q, %q, %q) = %v, want %v",
				c.importPath, c.symbolModulePath, c.importingModule, got, c.want)
		}
	}
}

func TestFormatModulePath(t *testing.T) {
	b := NewBehavior()

	if got := b.FormatModulePath("lib.utils", "helper"); got != "lib.utils.helper" {
		t.Errorf("FormatModulePath = %q, want lib.utils.helper", got)
	}
	if got := b.FormatModulePath("", "main"); got != "main" {
		t.Errorf("FormatModulePath(\"\", main) = %q, want main", got)
	}
}

func TestParseVisibilityAlwaysPublic(t *testing.T) {
	b := NewBehavior()
	if got := b.ParseVisibility("let x = 42;"); got != lang.VisibilityPublic {
		t.Errorf("ParseVisibility = %v, want Public", got)
	}
}

func TestSupportsNeitherTraitsNorMethods(t *testing.T) {
	b := NewBehavior()
	if b.SupportsTraits() {
		t.Error("SupportsTraits = true, want false")
	}
	if b.SupportsInherentMethods() {
		t.Error("SupportsInherentMethods = true, want false")
	}
}

// Invariant 6 (spec 8): inheritance chains terminate and don't repeat,
// even through a merge cycle.
func TestInheritanceChainTerminatesOnCycle(t *testing.T) {
	r := NewInheritanceResolver()
	r.AddInheritance("a", "b", "merge")
	r.AddInheritance("b", "a", "merge")

	chain := r.GetInheritanceChain("a")
	if chain[0] != "a" {
		t.Fatalf("chain[0] = %q, want a", chain[0])
	}
	seen := map[string]bool{}
	for _, t2 := range chain {
		if seen[t2] {
			t.Fatalf("chain %v repeats %q", chain, t2)
		}
		seen[t2] = true
	}
}

func TestPathLiteralSynthesizesConstant(t *testing.T) {
	p, err := NewParser(nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	counter := lang.NewSymbolCounter()

	symbols := p.Parse([]byte("let p = ./foo.nix; in p"), lang.FileID(1), counter)

	var found *lang.Symbol
	for _, s := range symbols {
		if s.Kind == lang.KindConstant {
			found = s
			break
		}
	}
	if found == nil {
		t.Fatalf("expected a synthesized path constant among %d symbols", len(symbols))
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || indexOf(s, substr) >= 0)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
