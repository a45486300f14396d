package wasm

import (
	"github.com/wippyai/wasmc/wasm/internal/binary"
)

// Encodable is implemented by every module element that has a binary form.
type Encodable interface {
	Encode() []byte
}

// EncodeVector frames items as a LEB128 element count followed by each
// element's own encoding, in order. An empty or nil slice encodes to the
// single byte 0x00.
func EncodeVector[T Encodable](items []T) []byte {
	w := binary.NewWriter()
	writeVector(w, items)
	return w.Bytes()
}

func writeVector[T Encodable](w *binary.Writer, items []T) {
	w.WriteU32(uint32(len(items)))
	for _, item := range items {
		w.WriteBytes(item.Encode())
	}
}

// EncodeName encodes s as a LEB128 byte length followed by its UTF-8 bytes.
func EncodeName(s string) []byte {
	w := binary.NewWriter()
	w.WriteName(s)
	return w.Bytes()
}

// TypeIndex indexes the type section. A function section is a vector of these.
type TypeIndex uint32

// Encode implements Encodable.
func (i TypeIndex) Encode() []byte {
	return EncodeLEB128u(uint32(i))
}

// FuncIndex indexes the function index space (imports first, then definitions).
type FuncIndex uint32

// Encode implements Encodable.
func (i FuncIndex) Encode() []byte {
	return EncodeLEB128u(uint32(i))
}

// RawBytes is a byte sequence that encodes to itself.
type RawBytes []byte

// Encode implements Encodable.
func (b RawBytes) Encode() []byte {
	return b
}
