package wasm

import (
	"fmt"

	"github.com/wippyai/wasmc/wasm/internal/binary"
)

// SectionID is the one-byte identifier that opens every section.
type SectionID byte

func (id SectionID) String() string {
	switch id {
	case SectionCustom:
		return "custom"
	case SectionType:
		return "type"
	case SectionImport:
		return "import"
	case SectionFunction:
		return "function"
	case SectionTable:
		return "table"
	case SectionMemory:
		return "memory"
	case SectionGlobal:
		return "global"
	case SectionExport:
		return "export"
	case SectionStart:
		return "start"
	case SectionElement:
		return "element"
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionDataCount:
		return "datacount"
	default:
		return fmt.Sprintf("section(%d)", byte(id))
	}
}

// order returns the canonical position of a non-custom section, or -1.
func (id SectionID) order() int {
	switch id {
	case SectionType, SectionImport, SectionFunction, SectionTable, SectionMemory,
		SectionGlobal, SectionExport, SectionStart, SectionElement:
		return int(id)
	case SectionDataCount:
		return 10
	case SectionCode:
		return 11
	case SectionData:
		return 12
	}
	return -1
}

// Section is a populated module section. Content returns the fully encoded
// section body, without the id byte and length prefix.
type Section interface {
	ID() SectionID
	Content() []byte
}

// EncodeSection wraps content as [id] ++ LEB128(len(content)) ++ content.
// The length is always taken from the finished content.
func EncodeSection(id SectionID, content []byte) []byte {
	w := binary.NewWriter()
	writeSection(w, id, content)
	return w.Bytes()
}

func writeSection(w *binary.Writer, id SectionID, content []byte) {
	w.Byte(byte(id))
	w.WriteSized(content)
}

// TypeSection holds the function signatures referenced by index.
type TypeSection struct {
	Entries []TypeSignature
}

func (s *TypeSection) ID() SectionID   { return SectionType }
func (s *TypeSection) Content() []byte { return EncodeVector(s.Entries) }

// ImportSection declares imported definitions.
type ImportSection struct {
	Entries []Import
}

func (s *ImportSection) ID() SectionID   { return SectionImport }
func (s *ImportSection) Content() []byte { return EncodeVector(s.Entries) }

// FunctionSection declares one type index per defined function. Entry i is
// paired with body i of the code section.
type FunctionSection struct {
	TypeIndices []TypeIndex
}

func (s *FunctionSection) ID() SectionID   { return SectionFunction }
func (s *FunctionSection) Content() []byte { return EncodeVector(s.TypeIndices) }

// TableSection declares tables.
type TableSection struct {
	Entries []TableType
}

func (s *TableSection) ID() SectionID   { return SectionTable }
func (s *TableSection) Content() []byte { return EncodeVector(s.Entries) }

// MemorySection declares memories by their limits signatures.
type MemorySection struct {
	Entries []TypeSignature
}

func (s *MemorySection) ID() SectionID   { return SectionMemory }
func (s *MemorySection) Content() []byte { return EncodeVector(s.Entries) }

// GlobalSection declares globals.
type GlobalSection struct {
	Entries []Global
}

func (s *GlobalSection) ID() SectionID   { return SectionGlobal }
func (s *GlobalSection) Content() []byte { return EncodeVector(s.Entries) }

// ExportSection lists exports in declaration order.
type ExportSection struct {
	Entries []Export
}

func (s *ExportSection) ID() SectionID   { return SectionExport }
func (s *ExportSection) Content() []byte { return EncodeVector(s.Entries) }

// StartSection names the function run at instantiation.
type StartSection struct {
	Func FuncIndex
}

func (s *StartSection) ID() SectionID   { return SectionStart }
func (s *StartSection) Content() []byte { return s.Func.Encode() }

// ElementSection holds table element segments.
type ElementSection struct {
	Entries []Element
}

func (s *ElementSection) ID() SectionID   { return SectionElement }
func (s *ElementSection) Content() []byte { return EncodeVector(s.Entries) }

// DataCountSection announces the number of data segments ahead of the code
// section.
type DataCountSection struct {
	Count uint32
}

func (s *DataCountSection) ID() SectionID   { return SectionDataCount }
func (s *DataCountSection) Content() []byte { return EncodeLEB128u(s.Count) }

// CodeSection holds one body per defined function.
type CodeSection struct {
	Bodies []CodeBody
}

func (s *CodeSection) ID() SectionID   { return SectionCode }
func (s *CodeSection) Content() []byte { return EncodeVector(s.Bodies) }

// DataSection holds memory data segments.
type DataSection struct {
	Segments []DataSegment
}

func (s *DataSection) ID() SectionID   { return SectionData }
func (s *DataSection) Content() []byte { return EncodeVector(s.Segments) }
