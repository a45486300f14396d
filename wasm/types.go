package wasm

import (
	"fmt"

	"github.com/wippyai/wasmc/wasm/internal/binary"
)

// ValType represents a WebAssembly value type.
type ValType byte

// Encode implements Encodable.
func (v ValType) Encode() []byte {
	return []byte{byte(v)}
}

// Valid reports whether v is a value type the emitter knows how to declare.
func (v ValType) Valid() bool {
	switch v {
	case ValI32, ValI64, ValF32, ValF64, ValFuncRef, ValExtern:
		return true
	}
	return false
}

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	default:
		return fmt.Sprintf("valtype(0x%02x)", byte(v))
	}
}

// ExternKind discriminates the target of an import or export.
type ExternKind byte

func (k ExternKind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindTable:
		return "table"
	case KindMemory:
		return "memory"
	case KindGlobal:
		return "global"
	default:
		return fmt.Sprintf("kind(0x%02x)", byte(k))
	}
}

// Export describes an exported item. Index is not checked against the size
// of the referenced index space when encoding; see Module.Validate.
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// Encode implements Encodable.
func (e Export) Encode() []byte {
	w := binary.NewWriter()
	w.WriteName(e.Name)
	w.Byte(byte(e.Kind))
	w.WriteU32(e.Index)
	return w.Bytes()
}

// Import represents an imported function, table, memory or global. Exactly
// one descriptor field is meaningful, selected by Kind.
type Import struct {
	Table     *TableType
	Memory    *TypeSignature // limits
	Global    *GlobalType
	Module    string
	Name      string
	TypeIndex uint32 // KindFunc
	Kind      ExternKind
}

// Encode implements Encodable.
func (imp Import) Encode() []byte {
	w := binary.NewWriter()
	w.WriteName(imp.Module)
	w.WriteName(imp.Name)
	w.Byte(byte(imp.Kind))
	switch imp.Kind {
	case KindFunc:
		w.WriteU32(imp.TypeIndex)
	case KindTable:
		w.WriteBytes(imp.Table.Encode())
	case KindMemory:
		w.WriteBytes(imp.Memory.Encode())
	case KindGlobal:
		w.WriteBytes(imp.Global.Encode())
	}
	return w.Bytes()
}

// TableType describes a table with a reference element type and size limits.
type TableType struct {
	Limits   TypeSignature
	ElemType ValType
}

// Encode implements Encodable.
func (t TableType) Encode() []byte {
	w := binary.NewWriter()
	w.Byte(byte(t.ElemType))
	w.WriteBytes(t.Limits.Encode())
	return w.Bytes()
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	Type    ValType
	Mutable bool
}

// Encode implements Encodable.
func (g GlobalType) Encode() []byte {
	mut := byte(0)
	if g.Mutable {
		mut = 1
	}
	return []byte{byte(g.Type), mut}
}

// Global is a global definition. Init holds the constant expression's
// instructions; the terminating end opcode is appended when encoding.
type Global struct {
	Init []byte
	Type GlobalType
}

// Encode implements Encodable.
func (g Global) Encode() []byte {
	w := binary.NewWriter()
	w.WriteBytes(g.Type.Encode())
	w.WriteBytes(g.Init)
	w.Byte(OpEnd)
	return w.Bytes()
}

// Element is an active element segment for table 0: the functions in Funcs
// are written starting at the slot computed by Offset.
type Element struct {
	Offset []byte
	Funcs  []FuncIndex
}

// Encode implements Encodable.
func (e Element) Encode() []byte {
	w := binary.NewWriter()
	w.WriteU32(SegmentActive)
	w.WriteBytes(e.Offset)
	w.Byte(OpEnd)
	writeVector(w, e.Funcs)
	return w.Bytes()
}

// DataSegment initializes memory 0. Active segments copy Init to the address
// computed by Offset at instantiation; passive segments are only used by
// memory.init and need a data-count section.
type DataSegment struct {
	Offset  []byte
	Init    []byte
	Passive bool
}

// Encode implements Encodable.
func (d DataSegment) Encode() []byte {
	w := binary.NewWriter()
	if d.Passive {
		w.WriteU32(SegmentPassive)
	} else {
		w.WriteU32(SegmentActive)
		w.WriteBytes(d.Offset)
		w.Byte(OpEnd)
	}
	w.WriteSized(d.Init)
	return w.Bytes()
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// ID implements Section.
func (c *CustomSection) ID() SectionID { return SectionCustom }

// Content implements Section.
func (c *CustomSection) Content() []byte {
	w := binary.NewWriter()
	w.WriteName(c.Name)
	w.WriteBytes(c.Data)
	return w.Bytes()
}

// ConstI32 returns the instructions of an i32.const constant expression,
// without the end opcode.
func ConstI32(v int32) []byte {
	return append([]byte{OpI32Const}, EncodeLEB128s(v)...)
}
