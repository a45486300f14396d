package wasm_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/wasmc/errors"
	"github.com/wippyai/wasmc/wasm"
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// addModule builds a module exporting memory and an f32 add function.
func addModule(t *testing.T) *wasm.Module {
	t.Helper()
	f32 := wasm.ValF32
	return &wasm.Module{
		Types: &wasm.TypeSection{Entries: []wasm.TypeSignature{
			mustFuncType(t, []wasm.ValType{f32, f32}, []wasm.ValType{f32}),
		}},
		Functions: &wasm.FunctionSection{TypeIndices: []wasm.TypeIndex{0}},
		Memories:  &wasm.MemorySection{Entries: []wasm.TypeSignature{mustBounded(t, 2, 10)}},
		Exports: &wasm.ExportSection{Entries: []wasm.Export{
			{Name: "memory", Kind: wasm.KindMemory, Index: 0},
			{Name: "add", Kind: wasm.KindFunc, Index: 0},
		}},
		Code: &wasm.CodeSection{Bodies: []wasm.CodeBody{{
			Locals:       []wasm.LocalRun{{Count: 3, Type: f32}},
			Instructions: []byte{wasm.OpLocalGet, 0x00, wasm.OpLocalGet, 0x01, wasm.OpF32Add},
		}}},
	}
}

func TestEncodeEmptyModule(t *testing.T) {
	data, err := (&wasm.Module{}).Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, header) {
		t.Errorf("got %x, want %x", data, header)
	}
	if len(data) != wasm.HeaderSize {
		t.Errorf("len = %d", len(data))
	}
}

func TestEncodeAddModule(t *testing.T) {
	data, err := addModule(t).Encode()
	if err != nil {
		t.Fatal(err)
	}

	want := append([]byte{}, header...)
	want = append(want,
		// type: one (f32, f32) -> (f32)
		0x01, 0x07, 0x01, 0x60, 0x02, 0x7d, 0x7d, 0x01, 0x7d,
		// function: one entry, type 0
		0x03, 0x02, 0x01, 0x00,
		// memory: one entry, min 2 max 10
		0x05, 0x04, 0x01, 0x01, 0x02, 0x0a,
		// export: "memory" memory 0, "add" func 0
		0x07, 0x10, 0x02,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x03, 'a', 'd', 'd', 0x00, 0x00,
		// code: one body, size 9 = locals(3) + instructions(5) + end(1)
		0x0a, 0x0b, 0x01, 0x09, 0x01, 0x03, 0x7d, 0x20, 0x00, 0x20, 0x01, 0x92, 0x0b,
	)
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("encoding mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeIdempotent(t *testing.T) {
	m := addModule(t)
	first, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("encoding the same module twice differs")
	}
}

func TestEncodeOmitsAbsentSections(t *testing.T) {
	m := addModule(t)
	m.Memories = nil
	m.Exports = nil

	data, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	sections, err := wasm.ParseSections(data)
	if err != nil {
		t.Fatal(err)
	}
	var ids []wasm.SectionID
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	want := []wasm.SectionID{wasm.SectionType, wasm.SectionFunction, wasm.SectionCode}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodePresentEmptySection(t *testing.T) {
	m := &wasm.Module{Exports: &wasm.ExportSection{}}
	data, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if got := data[wasm.HeaderSize:]; !bytes.Equal(got, []byte{0x07, 0x01, 0x00}) {
		t.Errorf("got %x", got)
	}
}

func TestEncodeCanonicalOrder(t *testing.T) {
	m := addModule(t)
	m.Customs = []wasm.CustomSection{{Name: "producers"}}
	m.Data = &wasm.DataSection{Segments: []wasm.DataSegment{{Offset: wasm.ConstI32(0), Init: []byte{1}}}}
	m.DataCount = &wasm.DataCountSection{Count: 1}
	m.Globals = &wasm.GlobalSection{Entries: []wasm.Global{{Type: wasm.GlobalType{Type: wasm.ValF32}, Init: []byte{wasm.OpF32Const, 0, 0, 0, 0}}}}

	data, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	sections, err := wasm.ParseSections(data)
	if err != nil {
		t.Fatalf("canonical order rejected: %v", err)
	}
	var ids []wasm.SectionID
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	want := []wasm.SectionID{
		wasm.SectionType, wasm.SectionFunction, wasm.SectionMemory, wasm.SectionGlobal,
		wasm.SectionExport, wasm.SectionDataCount, wasm.SectionCode, wasm.SectionData,
		wasm.SectionCustom,
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeOutOfRangeExport(t *testing.T) {
	m := addModule(t)
	m.Exports.Entries = append(m.Exports.Entries, wasm.Export{Name: "ghost", Kind: wasm.KindFunc, Index: 99})

	data, err := m.Encode()
	if err != nil {
		t.Fatalf("out-of-range export should still encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("no output")
	}
	if err := m.Validate(); !isKind(err, errors.KindOutOfBounds) {
		t.Errorf("Validate() = %v, want out of bounds", err)
	}
}

func TestEncodeFunctionCodeMismatch(t *testing.T) {
	m := addModule(t)
	m.Functions.TypeIndices = append(m.Functions.TypeIndices, 0)

	data, err := m.Encode()
	if data != nil {
		t.Errorf("partial output %x", data)
	}
	if !isKind(err, errors.KindStructuralMismatch) {
		t.Fatalf("got %v, want structural mismatch", err)
	}

	m = addModule(t)
	m.Functions = nil
	if _, err := m.Encode(); !isKind(err, errors.KindStructuralMismatch) {
		t.Fatalf("code without functions: got %v", err)
	}
}

func TestEncodeRejectsMalformedSignatures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *wasm.Module)
	}{
		{"zero type entry", func(m *wasm.Module) {
			m.Types.Entries = append(m.Types.Entries, wasm.TypeSignature{})
		}},
		{"limits in type section", func(m *wasm.Module) {
			m.Types.Entries = append(m.Types.Entries, wasm.NewLimits(1))
		}},
		{"func type as memory", func(m *wasm.Module) {
			m.Memories.Entries[0] = m.Types.Entries[0]
		}},
		{"zero memory", func(m *wasm.Module) {
			m.Memories.Entries[0] = wasm.TypeSignature{}
		}},
		{"table with value element type", func(m *wasm.Module) {
			m.Tables = &wasm.TableSection{Entries: []wasm.TableType{{ElemType: wasm.ValF32, Limits: wasm.NewLimits(1)}}}
		}},
		{"invalid local type", func(m *wasm.Module) {
			m.Code.Bodies[0].Locals[0].Type = 0x01
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := addModule(t)
			tt.mutate(m)
			data, err := m.Encode()
			if data != nil {
				t.Errorf("partial output %x", data)
			}
			if !isKind(err, errors.KindMalformedSignature) {
				t.Fatalf("got %v, want malformed signature", err)
			}
		})
	}
}

func TestEncodeRejectsBadImports(t *testing.T) {
	m := &wasm.Module{Imports: &wasm.ImportSection{Entries: []wasm.Import{
		{Module: "env", Name: "mem", Kind: wasm.KindMemory},
	}}}
	if _, err := m.Encode(); !isKind(err, errors.KindInvalidData) {
		t.Errorf("memory import without limits: got %v", err)
	}

	m.Imports.Entries[0] = wasm.Import{Module: "env", Name: "x", Kind: 0x09}
	if _, err := m.Encode(); !isKind(err, errors.KindInvalidData) {
		t.Errorf("unknown import kind: got %v", err)
	}
}

func TestModuleBuilders(t *testing.T) {
	f32 := wasm.ValF32
	m := &wasm.Module{}
	sig := mustFuncType(t, []wasm.ValType{f32}, []wasm.ValType{f32})
	a := m.AddType(sig)
	b := m.AddType(mustFuncType(t, []wasm.ValType{f32}, []wasm.ValType{f32}))
	if a != b {
		t.Errorf("equal signatures got indices %d and %d", a, b)
	}

	m.Imports = &wasm.ImportSection{Entries: []wasm.Import{{Module: "env", Name: "f", Kind: wasm.KindFunc, TypeIndex: uint32(a)}}}
	fn := m.AddFunction(a, wasm.CodeBody{Instructions: []byte{wasm.OpLocalGet, 0}})
	if fn != 1 {
		t.Errorf("first defined function index = %d, want 1 after one import", fn)
	}
	if got := m.IndexSpace(wasm.KindFunc); got != 2 {
		t.Errorf("IndexSpace(func) = %d", got)
	}
	if got, ok := m.FuncType(fn); !ok || !got.Equal(sig) {
		t.Errorf("FuncType(%d) = %s, %v", fn, got, ok)
	}
	if got, ok := m.FuncType(0); !ok || !got.Equal(sig) {
		t.Errorf("FuncType(0) = %s, %v", got, ok)
	}
	if _, ok := m.FuncType(5); ok {
		t.Error("FuncType(5) resolved")
	}

	mem := m.AddMemory(wasm.NewLimits(1))
	m.AddExport("memory", wasm.KindMemory, mem)
	m.AddExport("f", wasm.KindFunc, uint32(fn))
	if diff := cmp.Diff([]string{"f"}, m.ExportNames(wasm.KindFunc)); diff != "" {
		t.Errorf("ExportNames mismatch (-want +got):\n%s", diff)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if _, err := m.Encode(); err != nil {
		t.Errorf("Encode() = %v", err)
	}
}
