package wasm

import (
	"strconv"

	"github.com/wippyai/wasmc/errors"
	"github.com/wippyai/wasmc/wasm/internal/binary"
)

// HeaderSize is the length of the magic number plus version.
const HeaderSize = 8

// Encode encodes the module to WebAssembly binary format.
//
// Contract violations are reported before any byte is produced: signatures
// that were never constructed or have the wrong shape for their section,
// import descriptors that do not match their kind, and a function section
// whose length differs from the code section's. Index bounds are not
// checked here; call Validate for that.
func (m *Module) Encode() ([]byte, error) {
	if err := m.checkEncodable(); err != nil {
		return nil, err
	}

	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)
	for _, s := range m.Sections() {
		writeSection(w, s.ID(), s.Content())
	}
	return w.Bytes(), nil
}

func (m *Module) checkEncodable() error {
	if m.Types != nil {
		for i, sig := range m.Types.Entries {
			if err := expectShape(sig, SignatureFunc, "type", i); err != nil {
				return err
			}
		}
	}
	if m.Imports != nil {
		for i, imp := range m.Imports.Entries {
			if err := checkImport(imp, i); err != nil {
				return err
			}
		}
	}
	if m.Tables != nil {
		for i, t := range m.Tables.Entries {
			if err := checkTable(t, "table", i); err != nil {
				return err
			}
		}
	}
	if m.Memories != nil {
		for i, mem := range m.Memories.Entries {
			if err := expectShape(mem, SignatureLimits, "memory", i); err != nil {
				return err
			}
		}
	}
	if m.Globals != nil {
		for i, g := range m.Globals.Entries {
			if !g.Type.Type.Valid() {
				return errors.MalformedSignature(path("global", i), "invalid value type 0x%02x", byte(g.Type.Type))
			}
		}
	}
	if m.Code != nil {
		for i, body := range m.Code.Bodies {
			for j, run := range body.Locals {
				if !run.Type.Valid() {
					return errors.MalformedSignature(path("code", i, "locals", j), "invalid value type 0x%02x", byte(run.Type))
				}
			}
		}
	}

	declared, bodies := 0, 0
	if m.Functions != nil {
		declared = len(m.Functions.TypeIndices)
	}
	if m.Code != nil {
		bodies = len(m.Code.Bodies)
	}
	if declared != bodies {
		return errors.StructuralMismatch("function bodies", declared, bodies)
	}
	return nil
}

func checkImport(imp Import, i int) error {
	switch imp.Kind {
	case KindFunc:
		return nil
	case KindTable:
		if imp.Table == nil {
			return errors.InvalidData(errors.PhaseEncode, path("import", i), "table import without table type")
		}
		return checkTable(*imp.Table, "import", i)
	case KindMemory:
		if imp.Memory == nil {
			return errors.InvalidData(errors.PhaseEncode, path("import", i), "memory import without limits")
		}
		return expectShape(*imp.Memory, SignatureLimits, "import", i)
	case KindGlobal:
		if imp.Global == nil || !imp.Global.Type.Valid() {
			return errors.InvalidData(errors.PhaseEncode, path("import", i), "global import without a valid global type")
		}
		return nil
	default:
		return errors.InvalidData(errors.PhaseEncode, path("import", i), "unknown import kind "+imp.Kind.String())
	}
}

func checkTable(t TableType, section string, i int) error {
	if t.ElemType != ValFuncRef && t.ElemType != ValExtern {
		return errors.MalformedSignature(path(section, i), "table element type %s is not a reference type", t.ElemType)
	}
	return expectShape(t.Limits, SignatureLimits, section, i)
}

func expectShape(sig TypeSignature, want SignatureKind, section string, i int) error {
	if !sig.Valid() {
		return errors.MalformedSignature(path(section, i), "signature was never constructed")
	}
	if sig.Kind() != want {
		return errors.MalformedSignature(path(section, i), "expected %s signature, got %s", want, sig.Kind())
	}
	return nil
}

func path(parts ...any) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			out[i] = v
		case int:
			out[i] = strconv.Itoa(v)
		}
	}
	return out
}
