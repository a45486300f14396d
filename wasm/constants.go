package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// Section IDs define the binary identifiers for each module section.
// Non-custom sections appear in canonical order (see SectionID.order), which
// follows the IDs except that data-count sits between element and code.
const (
	SectionCustom    SectionID = 0  // Custom section (may repeat)
	SectionType      SectionID = 1  // Type section (function signatures)
	SectionImport    SectionID = 2  // Import section
	SectionFunction  SectionID = 3  // Function section (type indices)
	SectionTable     SectionID = 4  // Table section
	SectionMemory    SectionID = 5  // Memory section
	SectionGlobal    SectionID = 6  // Global section
	SectionExport    SectionID = 7  // Export section
	SectionStart     SectionID = 8  // Start section
	SectionElement   SectionID = 9  // Element section
	SectionCode      SectionID = 10 // Code section (function bodies)
	SectionData      SectionID = 11 // Data section
	SectionDataCount SectionID = 12 // Data count section (bulk memory)
)

// Import/Export descriptor kinds identify the type of imported or exported item.
const (
	KindFunc   ExternKind = 0x00
	KindTable  ExternKind = 0x01
	KindMemory ExternKind = 0x02
	KindGlobal ExternKind = 0x03
)

// Value type encodings as defined in the WebAssembly binary format.
const (
	ValI32     ValType = 0x7F // 32-bit integer
	ValI64     ValType = 0x7E // 64-bit integer
	ValF32     ValType = 0x7D // 32-bit float
	ValF64     ValType = 0x7C // 64-bit float
	ValFuncRef ValType = 0x70 // Function reference
	ValExtern  ValType = 0x6F // External reference
)

// Signature discriminants.
//
// Limits use one byte per form: LimitsMin carries only a minimum, LimitsMinMax
// carries a minimum followed by a maximum. Value-type signatures use the value
// type byte itself as their discriminant.
const (
	FuncTypeByte byte = 0x60

	LimitsMin    byte = 0x00
	LimitsMinMax byte = 0x01
)

// Segment flags for the element and data sections. Only the forms the
// encoder emits are listed.
const (
	SegmentActive  uint32 = 0x00 // active, index 0, offset expression
	SegmentPassive uint32 = 0x01 // passive (data only)
)

// MaxPages is the largest page count a 32-bit memory may declare.
const MaxPages uint32 = 65536

// Control flow opcodes
const (
	OpUnreachable byte = 0x00
	OpNop         byte = 0x01
	OpEnd         byte = 0x0B
	OpReturn      byte = 0x0F
	OpCall        byte = 0x10
)

// Parametric opcodes
const (
	OpDrop byte = 0x1A
)

// Variable access opcodes
const (
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
)

// Constant opcodes
const (
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpF32Const byte = 0x43
	OpF64Const byte = 0x44
)

// Reference opcodes usable in constant expressions
const (
	OpRefNull byte = 0xD0
	OpRefFunc byte = 0xD2
)

// f32 numeric opcodes
const (
	OpF32Abs  byte = 0x8B
	OpF32Neg  byte = 0x8C
	OpF32Sqrt byte = 0x91
	OpF32Add  byte = 0x92
	OpF32Sub  byte = 0x93
	OpF32Mul  byte = 0x94
	OpF32Div  byte = 0x95
	OpF32Min  byte = 0x96
	OpF32Max  byte = 0x97
)
