package wasm

import (
	"github.com/wippyai/wasmc/wasm/internal/binary"
)

// LocalRun declares Count consecutive locals of one type.
type LocalRun struct {
	Count uint32
	Type  ValType
}

// Encode implements Encodable.
func (l LocalRun) Encode() []byte {
	w := binary.NewWriter()
	w.WriteU32(l.Count)
	w.Byte(byte(l.Type))
	return w.Bytes()
}

// CodeBody is one function's local declarations and instruction stream.
// Instructions are opaque pre-encoded bytes without the trailing end opcode,
// which Encode appends.
type CodeBody struct {
	Locals       []LocalRun
	Instructions []byte
}

// Encode implements Encodable. The result is
// LEB128(size) ++ vec(locals) ++ instructions ++ end, where size counts
// everything after the prefix.
func (b CodeBody) Encode() []byte {
	body := binary.NewWriter()
	writeVector(body, b.Locals)
	body.WriteBytes(b.Instructions)
	body.Byte(OpEnd)

	w := binary.NewWriter()
	w.WriteSized(body.Bytes())
	return w.Bytes()
}

// NumLocals returns the number of declared locals, excluding parameters.
func (b CodeBody) NumLocals() uint64 {
	var n uint64
	for _, l := range b.Locals {
		n += uint64(l.Count)
	}
	return n
}

// CompressLocals groups consecutive locals of identical type into runs.
func CompressLocals(types []ValType) []LocalRun {
	var runs []LocalRun
	for _, t := range types {
		if n := len(runs); n > 0 && runs[n-1].Type == t {
			runs[n-1].Count++
			continue
		}
		runs = append(runs, LocalRun{Count: 1, Type: t})
	}
	return runs
}
