package wasm

// Module is a WebAssembly module as a fixed record of optional sections.
// A nil slot means the section is omitted from the binary; a non-nil slot
// with no entries is emitted as an empty vector. Slot order is irrelevant:
// Encode always writes sections in canonical order.
type Module struct {
	Types     *TypeSection
	Imports   *ImportSection
	Functions *FunctionSection
	Tables    *TableSection
	Memories  *MemorySection
	Globals   *GlobalSection
	Exports   *ExportSection
	Start     *StartSection
	Elements  *ElementSection
	DataCount *DataCountSection
	Code      *CodeSection
	Data      *DataSection

	// Customs are emitted after all other sections, in slice order.
	Customs []CustomSection
}

// Sections returns the present sections in canonical binary order:
// type, import, function, table, memory, global, export, start, element,
// data-count, code, data, then custom sections.
func (m *Module) Sections() []Section {
	var out []Section
	add := func(present bool, s Section) {
		if present {
			out = append(out, s)
		}
	}
	add(m.Types != nil, m.Types)
	add(m.Imports != nil, m.Imports)
	add(m.Functions != nil, m.Functions)
	add(m.Tables != nil, m.Tables)
	add(m.Memories != nil, m.Memories)
	add(m.Globals != nil, m.Globals)
	add(m.Exports != nil, m.Exports)
	add(m.Start != nil, m.Start)
	add(m.Elements != nil, m.Elements)
	add(m.DataCount != nil, m.DataCount)
	add(m.Code != nil, m.Code)
	add(m.Data != nil, m.Data)
	for i := range m.Customs {
		out = append(out, &m.Customs[i])
	}
	return out
}

// AddType appends a signature to the type section and returns its index,
// reusing an equal existing entry.
func (m *Module) AddType(sig TypeSignature) TypeIndex {
	if m.Types == nil {
		m.Types = &TypeSection{}
	}
	for i, t := range m.Types.Entries {
		if t.Equal(sig) {
			return TypeIndex(i)
		}
	}
	m.Types.Entries = append(m.Types.Entries, sig)
	return TypeIndex(len(m.Types.Entries) - 1)
}

// AddFunction declares a function of the given type with its body and
// returns its index in the function index space.
func (m *Module) AddFunction(typeIdx TypeIndex, body CodeBody) FuncIndex {
	if m.Functions == nil {
		m.Functions = &FunctionSection{}
	}
	if m.Code == nil {
		m.Code = &CodeSection{}
	}
	idx := FuncIndex(m.NumImported(KindFunc) + len(m.Functions.TypeIndices))
	m.Functions.TypeIndices = append(m.Functions.TypeIndices, typeIdx)
	m.Code.Bodies = append(m.Code.Bodies, body)
	return idx
}

// AddMemory declares a memory and returns its index.
func (m *Module) AddMemory(limits TypeSignature) uint32 {
	if m.Memories == nil {
		m.Memories = &MemorySection{}
	}
	m.Memories.Entries = append(m.Memories.Entries, limits)
	return uint32(m.NumImported(KindMemory) + len(m.Memories.Entries) - 1)
}

// AddExport appends an export entry.
func (m *Module) AddExport(name string, kind ExternKind, index uint32) {
	if m.Exports == nil {
		m.Exports = &ExportSection{}
	}
	m.Exports.Entries = append(m.Exports.Entries, Export{Name: name, Kind: kind, Index: index})
}

// NumImported returns the number of imports of the given kind.
func (m *Module) NumImported(kind ExternKind) int {
	if m.Imports == nil {
		return 0
	}
	count := 0
	for _, imp := range m.Imports.Entries {
		if imp.Kind == kind {
			count++
		}
	}
	return count
}

// NumDefined returns the number of definitions of the given kind made by the
// module itself.
func (m *Module) NumDefined(kind ExternKind) int {
	switch kind {
	case KindFunc:
		if m.Functions != nil {
			return len(m.Functions.TypeIndices)
		}
	case KindTable:
		if m.Tables != nil {
			return len(m.Tables.Entries)
		}
	case KindMemory:
		if m.Memories != nil {
			return len(m.Memories.Entries)
		}
	case KindGlobal:
		if m.Globals != nil {
			return len(m.Globals.Entries)
		}
	}
	return 0
}

// IndexSpace returns the size of the index space for kind: imports first,
// then definitions.
func (m *Module) IndexSpace(kind ExternKind) int {
	return m.NumImported(kind) + m.NumDefined(kind)
}

// FuncType returns the signature of the function at funcIdx, or false if
// the index or its type index does not resolve.
func (m *Module) FuncType(funcIdx FuncIndex) (TypeSignature, bool) {
	var typeIdx uint32
	imported := m.NumImported(KindFunc)
	switch {
	case int(funcIdx) < imported:
		n := uint32(funcIdx)
		for _, imp := range m.Imports.Entries {
			if imp.Kind != KindFunc {
				continue
			}
			if n == 0 {
				typeIdx = imp.TypeIndex
				break
			}
			n--
		}
	case int(funcIdx) < imported+m.NumDefined(KindFunc):
		typeIdx = uint32(m.Functions.TypeIndices[int(funcIdx)-imported])
	default:
		return TypeSignature{}, false
	}
	if m.Types == nil || int(typeIdx) >= len(m.Types.Entries) {
		return TypeSignature{}, false
	}
	return m.Types.Entries[typeIdx], true
}

// ExportNames returns the names of exports of the given kind, in order.
func (m *Module) ExportNames(kind ExternKind) []string {
	if m.Exports == nil {
		return nil
	}
	var names []string
	for _, e := range m.Exports.Entries {
		if e.Kind == kind {
			names = append(names, e.Name)
		}
	}
	return names
}
