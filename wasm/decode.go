package wasm

import (
	"bytes"
	"fmt"

	"github.com/wippyai/wasmc/errors"
	"github.com/wippyai/wasmc/wasm/internal/binary"
)

// RawSection is a section as found in a binary, before its content is
// decoded. Offset is the position of the id byte.
type RawSection struct {
	Content []byte
	Offset  int
	ID      SectionID
}

// ParseSections splits a module binary into its sections. It checks the
// header, that every section length fits the input, and that non-custom
// sections appear at most once and in canonical order. Content aliases data.
func ParseSections(data []byte) ([]RawSection, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, decodeError("header", r, err)
	}
	if magic != Magic {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path("header").Value(magic).
			Detail("invalid magic number 0x%08x", magic).Build()
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, decodeError("header", r, err)
	}
	if version != Version {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path("header").Value(version).
			Detail("unsupported version %d", version).Build()
	}

	var sections []RawSection
	last := 0
	for r.Len() > 0 {
		offset := r.Position()
		id, _ := r.ReadByte()
		sid := SectionID(id)
		if sid != SectionCustom {
			order := sid.order()
			if order < 0 {
				return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
					Path("section").Value(id).
					Detail("unknown section id %d at offset %d", id, offset).Build()
			}
			if order <= last {
				return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
					Path(sid.String()).
					Detail("section out of order or repeated at offset %d", offset).Build()
			}
			last = order
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, decodeError(sid.String(), r, err)
		}
		content, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, decodeError(sid.String(), r, err)
		}
		sections = append(sections, RawSection{ID: sid, Offset: offset, Content: content})
	}
	return sections, nil
}

// ParseModule decodes a module binary. Only the forms this package emits are
// understood: active element segments for table 0, active or passive data
// segments for memory 0, and constant expressions made of a single constant,
// global.get, ref.null or ref.func. Decoded byte fields never alias data.
func ParseModule(data []byte) (*Module, error) {
	sections, err := ParseSections(data)
	if err != nil {
		return nil, err
	}

	m := &Module{}
	for _, s := range sections {
		r := binary.NewReader(s.Content)
		if err := m.decodeSection(s.ID, r); err != nil {
			return nil, err
		}
		if r.Len() != 0 {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(s.ID.String()).
				Detail("%d trailing bytes after section content", r.Len()).Build()
		}
	}

	declared, bodies := m.NumDefined(KindFunc), 0
	if m.Code != nil {
		bodies = len(m.Code.Bodies)
	}
	if declared != bodies {
		e := errors.StructuralMismatch("function bodies", declared, bodies)
		e.Phase = errors.PhaseDecode
		return nil, e
	}
	return m, nil
}

func (m *Module) decodeSection(id SectionID, r *binary.Reader) error {
	var err error
	switch id {
	case SectionCustom:
		var c CustomSection
		if c, err = readCustom(r); err == nil {
			m.Customs = append(m.Customs, c)
		}
	case SectionType:
		m.Types = &TypeSection{}
		m.Types.Entries, err = readVector(r, readFuncType)
	case SectionImport:
		m.Imports = &ImportSection{}
		m.Imports.Entries, err = readVector(r, readImport)
	case SectionFunction:
		m.Functions = &FunctionSection{}
		m.Functions.TypeIndices, err = readVector(r, func(r *binary.Reader) (TypeIndex, error) {
			v, err := r.ReadU32()
			return TypeIndex(v), err
		})
	case SectionTable:
		m.Tables = &TableSection{}
		m.Tables.Entries, err = readVector(r, readTableType)
	case SectionMemory:
		m.Memories = &MemorySection{}
		m.Memories.Entries, err = readVector(r, readLimits)
	case SectionGlobal:
		m.Globals = &GlobalSection{}
		m.Globals.Entries, err = readVector(r, readGlobal)
	case SectionExport:
		m.Exports = &ExportSection{}
		m.Exports.Entries, err = readVector(r, readExport)
	case SectionStart:
		var idx uint32
		if idx, err = r.ReadU32(); err == nil {
			m.Start = &StartSection{Func: FuncIndex(idx)}
		}
	case SectionElement:
		m.Elements = &ElementSection{}
		m.Elements.Entries, err = readVector(r, readElement)
	case SectionDataCount:
		var n uint32
		if n, err = r.ReadU32(); err == nil {
			m.DataCount = &DataCountSection{Count: n}
		}
	case SectionCode:
		m.Code = &CodeSection{}
		m.Code.Bodies, err = readVector(r, readCodeBody)
	case SectionData:
		m.Data = &DataSection{}
		m.Data.Segments, err = readVector(r, readDataSegment)
	}
	if err != nil {
		return decodeError(id.String(), r, err)
	}
	return nil
}

func decodeError(section string, r *binary.Reader, err error) error {
	if _, ok := err.(*errors.Error); ok {
		return err
	}
	kind := errors.KindInvalidData
	if errors.Is(err, binary.ErrOverflow) {
		kind = errors.KindOverflow
	}
	return errors.New(errors.PhaseDecode, kind).
		Path(section).
		Cause(r.WrapError(section, err)).
		Build()
}

func readVector[T any](r *binary.Reader, read func(*binary.Reader) (T, error)) ([]T, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	// Every element takes at least one byte.
	if int(n) > r.Len() {
		return nil, fmt.Errorf("vector length %d exceeds remaining %d bytes", n, r.Len())
	}
	items := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		item, err := read(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func readValType(r *binary.Reader) (ValType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	v := ValType(b)
	if !v.Valid() {
		return 0, fmt.Errorf("invalid value type 0x%02x", b)
	}
	return v, nil
}

func readFuncType(r *binary.Reader) (TypeSignature, error) {
	form, err := r.ReadByte()
	if err != nil {
		return TypeSignature{}, err
	}
	if form != FuncTypeByte {
		return TypeSignature{}, fmt.Errorf("expected func type 0x%02x, got 0x%02x", FuncTypeByte, form)
	}
	params, err := readVector(r, readValType)
	if err != nil {
		return TypeSignature{}, err
	}
	results, err := readVector(r, readValType)
	if err != nil {
		return TypeSignature{}, err
	}
	return NewFuncType(params, results)
}

func readLimits(r *binary.Reader) (TypeSignature, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return TypeSignature{}, err
	}
	min, err := r.ReadU32()
	if err != nil {
		return TypeSignature{}, err
	}
	var max *uint32
	if flag == LimitsMinMax {
		v, err := r.ReadU32()
		if err != nil {
			return TypeSignature{}, err
		}
		max = &v
	}
	return NewLimitsFromFlag(flag, min, max)
}

func readTableType(r *binary.Reader) (TableType, error) {
	elem, err := readValType(r)
	if err != nil {
		return TableType{}, err
	}
	if elem != ValFuncRef && elem != ValExtern {
		return TableType{}, fmt.Errorf("table element type %s is not a reference type", elem)
	}
	limits, err := readLimits(r)
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemType: elem, Limits: limits}, nil
}

func readGlobalType(r *binary.Reader) (GlobalType, error) {
	v, err := readValType(r)
	if err != nil {
		return GlobalType{}, err
	}
	mut, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	if mut > 1 {
		return GlobalType{}, fmt.Errorf("invalid mutability 0x%02x", mut)
	}
	return GlobalType{Type: v, Mutable: mut == 1}, nil
}

func readImport(r *binary.Reader) (Import, error) {
	var imp Import
	var err error
	if imp.Module, err = r.ReadName(); err != nil {
		return imp, err
	}
	if imp.Name, err = r.ReadName(); err != nil {
		return imp, err
	}
	kind, err := r.ReadByte()
	if err != nil {
		return imp, err
	}
	imp.Kind = ExternKind(kind)
	switch imp.Kind {
	case KindFunc:
		imp.TypeIndex, err = r.ReadU32()
	case KindTable:
		var t TableType
		if t, err = readTableType(r); err == nil {
			imp.Table = &t
		}
	case KindMemory:
		var l TypeSignature
		if l, err = readLimits(r); err == nil {
			imp.Memory = &l
		}
	case KindGlobal:
		var g GlobalType
		if g, err = readGlobalType(r); err == nil {
			imp.Global = &g
		}
	default:
		err = fmt.Errorf("unknown import kind 0x%02x", kind)
	}
	return imp, err
}

func readGlobal(r *binary.Reader) (Global, error) {
	t, err := readGlobalType(r)
	if err != nil {
		return Global{}, err
	}
	init, err := readConstExpr(r)
	if err != nil {
		return Global{}, err
	}
	return Global{Type: t, Init: init}, nil
}

func readExport(r *binary.Reader) (Export, error) {
	name, err := r.ReadName()
	if err != nil {
		return Export{}, err
	}
	kind, err := r.ReadByte()
	if err != nil {
		return Export{}, err
	}
	if kind > byte(KindGlobal) {
		return Export{}, fmt.Errorf("unknown export kind 0x%02x", kind)
	}
	idx, err := r.ReadU32()
	if err != nil {
		return Export{}, err
	}
	return Export{Name: name, Kind: ExternKind(kind), Index: idx}, nil
}

func readElement(r *binary.Reader) (Element, error) {
	flag, err := r.ReadU32()
	if err != nil {
		return Element{}, err
	}
	if flag != SegmentActive {
		return Element{}, fmt.Errorf("unsupported element segment flag %d", flag)
	}
	offset, err := readConstExpr(r)
	if err != nil {
		return Element{}, err
	}
	funcs, err := readVector(r, func(r *binary.Reader) (FuncIndex, error) {
		v, err := r.ReadU32()
		return FuncIndex(v), err
	})
	if err != nil {
		return Element{}, err
	}
	return Element{Offset: offset, Funcs: funcs}, nil
}

func readDataSegment(r *binary.Reader) (DataSegment, error) {
	flag, err := r.ReadU32()
	if err != nil {
		return DataSegment{}, err
	}
	var d DataSegment
	switch flag {
	case SegmentActive:
		if d.Offset, err = readConstExpr(r); err != nil {
			return d, err
		}
	case SegmentPassive:
		d.Passive = true
	default:
		return d, fmt.Errorf("unsupported data segment flag %d", flag)
	}
	n, err := r.ReadU32()
	if err != nil {
		return d, err
	}
	init, err := r.ReadBytes(int(n))
	if err != nil {
		return d, err
	}
	d.Init = bytes.Clone(init)
	return d, nil
}

func readCodeBody(r *binary.Reader) (CodeBody, error) {
	size, err := r.ReadU32()
	if err != nil {
		return CodeBody{}, err
	}
	br, err := r.Sub(int(size))
	if err != nil {
		return CodeBody{}, err
	}
	locals, err := readVector(br, func(r *binary.Reader) (LocalRun, error) {
		n, err := r.ReadU32()
		if err != nil {
			return LocalRun{}, err
		}
		t, err := readValType(r)
		return LocalRun{Count: n, Type: t}, err
	})
	if err != nil {
		return CodeBody{}, err
	}
	code, _ := br.ReadBytes(br.Len())
	if len(code) == 0 || code[len(code)-1] != OpEnd {
		return CodeBody{}, fmt.Errorf("function body does not end with 0x%02x", OpEnd)
	}
	return CodeBody{Locals: locals, Instructions: bytes.Clone(code[:len(code)-1])}, nil
}

func readCustom(r *binary.Reader) (CustomSection, error) {
	name, err := r.ReadName()
	if err != nil {
		return CustomSection{}, err
	}
	data, _ := r.ReadBytes(r.Len())
	return CustomSection{Name: name, Data: bytes.Clone(data)}, nil
}

// readConstExpr reads a single-instruction constant expression and returns
// its instruction bytes without the terminating end.
func readConstExpr(r *binary.Reader) ([]byte, error) {
	start := r.Position()
	op, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch op {
	case OpI32Const:
		_, err = r.ReadS32()
	case OpI64Const:
		err = r.SkipLEB(10)
	case OpF32Const:
		_, err = r.ReadBytes(4)
	case OpF64Const:
		_, err = r.ReadBytes(8)
	case OpGlobalGet, OpRefFunc:
		_, err = r.ReadU32()
	case OpRefNull:
		_, err = readValType(r)
	default:
		return nil, fmt.Errorf("unsupported opcode 0x%02x in constant expression", op)
	}
	if err != nil {
		return nil, err
	}
	expr := bytes.Clone(r.Since(start))
	end, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if end != OpEnd {
		return nil, fmt.Errorf("constant expression not terminated by end, got 0x%02x", end)
	}
	return expr, nil
}
