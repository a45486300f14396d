package wasm

import (
	"fmt"
	"math"
	"strings"

	"github.com/wippyai/wasmc/wasm/internal/binary"
)

// Instruction is a single decoded instruction. Imm holds one of the
// immediate types below, or nil for instructions without immediates.
type Instruction struct {
	Imm    any
	Opcode byte
}

// CallImm holds the function index for call.
type CallImm struct {
	FuncIdx uint32
}

// LocalImm holds the local index for local.get, local.set and local.tee.
type LocalImm struct {
	LocalIdx uint32
}

// GlobalImm holds the global index for global.get.
type GlobalImm struct {
	GlobalIdx uint32
}

// I32Imm holds the value of i32.const.
type I32Imm struct {
	Value int32
}

// I64Imm holds the value of i64.const.
type I64Imm struct {
	Value int64
}

// F32Imm holds the value of f32.const.
type F32Imm struct {
	Value float32
}

// F64Imm holds the value of f64.const.
type F64Imm struct {
	Value float64
}

var opNames = map[byte]string{
	OpUnreachable: "unreachable",
	OpNop:         "nop",
	OpEnd:         "end",
	OpReturn:      "return",
	OpCall:        "call",
	OpDrop:        "drop",
	OpLocalGet:    "local.get",
	OpLocalSet:    "local.set",
	OpLocalTee:    "local.tee",
	OpGlobalGet:   "global.get",
	OpI32Const:    "i32.const",
	OpI64Const:    "i64.const",
	OpF32Const:    "f32.const",
	OpF64Const:    "f64.const",
	OpF32Abs:      "f32.abs",
	OpF32Neg:      "f32.neg",
	OpF32Sqrt:     "f32.sqrt",
	OpF32Add:      "f32.add",
	OpF32Sub:      "f32.sub",
	OpF32Mul:      "f32.mul",
	OpF32Div:      "f32.div",
	OpF32Min:      "f32.min",
	OpF32Max:      "f32.max",
}

// OpName returns the text-format mnemonic of op.
func OpName(op byte) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(0x%02x)", op)
}

func (i Instruction) String() string {
	name := OpName(i.Opcode)
	switch imm := i.Imm.(type) {
	case CallImm:
		return fmt.Sprintf("%s %d", name, imm.FuncIdx)
	case LocalImm:
		return fmt.Sprintf("%s %d", name, imm.LocalIdx)
	case GlobalImm:
		return fmt.Sprintf("%s %d", name, imm.GlobalIdx)
	case I32Imm:
		return fmt.Sprintf("%s %d", name, imm.Value)
	case I64Imm:
		return fmt.Sprintf("%s %d", name, imm.Value)
	case F32Imm:
		return fmt.Sprintf("%s %g", name, imm.Value)
	case F64Imm:
		return fmt.Sprintf("%s %g", name, imm.Value)
	}
	return name
}

// GetCallTarget returns the function index if this is a call.
func (i Instruction) GetCallTarget() (uint32, bool) {
	if imm, ok := i.Imm.(CallImm); ok && i.Opcode == OpCall {
		return imm.FuncIdx, true
	}
	return 0, false
}

// EncodeInstructions encodes instrs back to back. No end opcode is added.
func EncodeInstructions(instrs []Instruction) []byte {
	w := binary.NewWriter()
	for _, instr := range instrs {
		encodeInstruction(w, instr)
	}
	return w.Bytes()
}

func encodeInstruction(w *binary.Writer, instr Instruction) {
	w.Byte(instr.Opcode)
	switch imm := instr.Imm.(type) {
	case CallImm:
		w.WriteU32(imm.FuncIdx)
	case LocalImm:
		w.WriteU32(imm.LocalIdx)
	case GlobalImm:
		w.WriteU32(imm.GlobalIdx)
	case I32Imm:
		w.WriteS32(imm.Value)
	case I64Imm:
		w.WriteS64(imm.Value)
	case F32Imm:
		w.WriteF32(imm.Value)
	case F64Imm:
		bits := math.Float64bits(imm.Value)
		w.WriteU32LE(uint32(bits))
		w.WriteU32LE(uint32(bits >> 32))
	}
}

// DecodeInstructions decodes an instruction stream made of the opcodes
// listed in this package. Unknown opcodes are an error.
func DecodeInstructions(code []byte) ([]Instruction, error) {
	r := binary.NewReader(code)
	var out []Instruction
	for r.Len() > 0 {
		op, _ := r.ReadByte()
		instr := Instruction{Opcode: op}
		var err error
		switch op {
		case OpUnreachable, OpNop, OpEnd, OpReturn, OpDrop,
			OpF32Abs, OpF32Neg, OpF32Sqrt, OpF32Add, OpF32Sub,
			OpF32Mul, OpF32Div, OpF32Min, OpF32Max:
		case OpCall:
			var v uint32
			v, err = r.ReadU32()
			instr.Imm = CallImm{FuncIdx: v}
		case OpLocalGet, OpLocalSet, OpLocalTee:
			var v uint32
			v, err = r.ReadU32()
			instr.Imm = LocalImm{LocalIdx: v}
		case OpGlobalGet:
			var v uint32
			v, err = r.ReadU32()
			instr.Imm = GlobalImm{GlobalIdx: v}
		case OpI32Const:
			var v int32
			v, err = r.ReadS32()
			instr.Imm = I32Imm{Value: v}
		case OpI64Const:
			var v int64
			v, err = ReadLEB128s64(r)
			instr.Imm = I64Imm{Value: v}
		case OpF32Const:
			var v float32
			v, err = r.ReadF32()
			instr.Imm = F32Imm{Value: v}
		case OpF64Const:
			var lo, hi uint32
			if lo, err = r.ReadU32LE(); err == nil {
				hi, err = r.ReadU32LE()
			}
			instr.Imm = F64Imm{Value: math.Float64frombits(uint64(hi)<<32 | uint64(lo))}
		default:
			return nil, r.WrapError("code", fmt.Errorf("unsupported opcode 0x%02x", op))
		}
		if err != nil {
			return nil, r.WrapError("code", err)
		}
		out = append(out, instr)
	}
	return out, nil
}

// Disassemble renders code one instruction per line.
func Disassemble(code []byte) (string, error) {
	instrs, err := DecodeInstructions(code)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(instrs))
	for i, instr := range instrs {
		lines[i] = instr.String()
	}
	return strings.Join(lines, "\n"), nil
}
