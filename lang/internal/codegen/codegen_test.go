package codegen

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/wasmc/errors"
	"github.com/wippyai/wasmc/lang/internal/parser"
	"github.com/wippyai/wasmc/lang/internal/token"
	"github.com/wippyai/wasmc/wasm"
)

func generate(t *testing.T, src string) (*wasm.Module, error) {
	t.Helper()
	tokens, err := token.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	file, err := parser.New(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return Generate(file)
}

func mustGenerate(t *testing.T, src string) *wasm.Module {
	t.Helper()
	m, err := generate(t, src)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return m
}

func disasm(t *testing.T, body wasm.CodeBody) string {
	t.Helper()
	s, err := wasm.Disassemble(body.Instructions)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	return s
}

func TestGenerateAdd(t *testing.T) {
	m := mustGenerate(t, "export memory 2 10;\nexport fn add(a, b) { return a + b; }")

	if len(m.Types.Entries) != 1 {
		t.Fatalf("types = %d", len(m.Types.Entries))
	}
	if got := m.Types.Entries[0].String(); got != "(f32, f32) -> (f32)" {
		t.Errorf("type = %s", got)
	}
	if got := m.Memories.Entries[0].String(); got != "{min 2, max 10}" {
		t.Errorf("memory = %s", got)
	}
	want := []wasm.Export{
		{Name: "memory", Kind: wasm.KindMemory, Index: 0},
		{Name: "add", Kind: wasm.KindFunc, Index: 0},
	}
	if diff := cmp.Diff(want, m.Exports.Entries); diff != "" {
		t.Errorf("exports mismatch (-want +got):\n%s", diff)
	}
	if got := disasm(t, m.Code.Bodies[0]); got != "local.get 0\nlocal.get 1\nf32.add\nreturn" {
		t.Errorf("body:\n%s", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestGenerateLocals(t *testing.T) {
	m := mustGenerate(t, "fn f(x) { let a = x * 2; let b = -a; a = b; return a - 1; }")
	body := m.Code.Bodies[0]
	if diff := cmp.Diff([]wasm.LocalRun{{Count: 2, Type: wasm.ValF32}}, body.Locals); diff != "" {
		t.Errorf("locals mismatch (-want +got):\n%s", diff)
	}
	want := "local.get 0\nf32.const 2\nf32.mul\nlocal.set 1\n" +
		"local.get 1\nf32.neg\nlocal.set 2\n" +
		"local.get 2\nlocal.set 1\n" +
		"local.get 1\nf32.const 1\nf32.sub\nreturn"
	if got := disasm(t, body); got != want {
		t.Errorf("body:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateImplicitReturn(t *testing.T) {
	m := mustGenerate(t, "fn empty() {}\nfn side(x) { x + 1; }")
	if got := disasm(t, m.Code.Bodies[0]); got != "f32.const 0" {
		t.Errorf("empty body:\n%s", got)
	}
	if got := disasm(t, m.Code.Bodies[1]); got != "local.get 0\nf32.const 1\nf32.add\ndrop\nf32.const 0" {
		t.Errorf("side body:\n%s", got)
	}
	if m.Exports != nil {
		t.Errorf("unexported functions produced exports: %+v", m.Exports.Entries)
	}
	if m.Memories != nil {
		t.Error("memory section without memory declaration")
	}
}

func TestGenerateTypesByArity(t *testing.T) {
	m := mustGenerate(t, "fn a(x) {} fn b() {} fn c(y) {} fn d(p, q) {} fn e() {}")
	if len(m.Types.Entries) != 3 {
		t.Fatalf("types = %d, want 3", len(m.Types.Entries))
	}
	if diff := cmp.Diff([]wasm.TypeIndex{0, 1, 0, 2, 1}, m.Functions.TypeIndices); diff != "" {
		t.Errorf("type indices mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateForwardCall(t *testing.T) {
	m := mustGenerate(t, "export fn main() { return twice(3); }\nfn twice(v) { return v + v; }")
	if got := disasm(t, m.Code.Bodies[0]); got != "f32.const 3\ncall 1\nreturn" {
		t.Errorf("body:\n%s", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestGenerateExportOrder(t *testing.T) {
	m := mustGenerate(t, "export fn b() {}\nexport memory 1;\nfn hidden() {}\nexport fn a() {}")
	var names []string
	for _, e := range m.Exports.Entries {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"b", "memory", "a"}, names); diff != "" {
		t.Errorf("export order mismatch (-want +got):\n%s", diff)
	}
	if m.Exports.Entries[2].Index != 2 {
		t.Errorf("a has index %d, want 2", m.Exports.Entries[2].Index)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   errors.Kind
		line   int
		column int
	}{
		{"unknown variable", "fn f() { return x; }", errors.KindUnknownIdentifier, 1, 17},
		{"unknown assign target", "fn f() { x = 1; }", errors.KindUnknownIdentifier, 1, 10},
		{"unknown function", "fn f() { return g(); }", errors.KindUnknownIdentifier, 1, 17},
		{"let reads itself", "fn f() { let x = x; }", errors.KindUnknownIdentifier, 1, 18},
		{"duplicate function", "fn f() {}\nfn f() {}", errors.KindDuplicate, 2, 1},
		{"duplicate param", "fn f(a, a) {}", errors.KindDuplicate, 1, 9},
		{"let shadows param", "fn f(a) { let a = 1; }", errors.KindDuplicate, 1, 11},
		{"duplicate let", "fn f() { let a = 1; let a = 2; }", errors.KindDuplicate, 1, 21},
		{"duplicate memory", "memory 1;\nmemory 2;", errors.KindDuplicate, 2, 1},
		{"wrong arity", "fn g(a) {} fn f() { g(1, 2); }", errors.KindInvalidInput, 1, 21},
		{"max below min", "memory 10 2;", errors.KindMalformedSignature, 1, 1},
		{"too many pages", "memory 1 65537;", errors.KindInvalidInput, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := generate(t, tt.input)
			var e *errors.Error
			if !errors.As(err, &e) {
				t.Fatalf("got %v, want *errors.Error", err)
			}
			if e.Phase != errors.PhaseCodegen || e.Kind != tt.kind {
				t.Errorf("got [%s] %s, want [codegen] %s", e.Phase, e.Kind, tt.kind)
			}
			if e.Line != tt.line || e.Column != tt.column {
				t.Errorf("position %d:%d, want %d:%d (%v)", e.Line, e.Column, tt.line, tt.column, err)
			}
		})
	}
}
