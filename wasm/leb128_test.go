package wasm_test

import (
	"bytes"
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/wippyai/wasmc/wasm"
)

func TestLEB128Unsigned(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xac, 0x02}, 300},
		{[]byte{0xff, 0x7f}, 16383},
		{[]byte{0x80, 0x80, 0x01}, 16384},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		wasm.WriteLEB128u(&buf, tt.value)
		if !bytes.Equal(buf.Bytes(), tt.encoded) {
			t.Errorf("encode %d: got %x, want %x", tt.value, buf.Bytes(), tt.encoded)
		}
		if got := wasm.SizeLEB128u(tt.value); got != len(tt.encoded) {
			t.Errorf("SizeLEB128u(%d) = %d, want %d", tt.value, got, len(tt.encoded))
		}

		got, err := wasm.ReadLEB128u(bytes.NewReader(tt.encoded))
		if err != nil {
			t.Fatalf("decode %x: %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("decode %x: got %d, want %d", tt.encoded, got, tt.value)
		}
	}
}

func TestLEB128Signed(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   int32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, -1},
		{[]byte{0x3f}, 63},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0x40}, -64},
		{[]byte{0xbf, 0x7f}, -65},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x78}, -2147483648},
	}

	for _, tt := range tests {
		if got := wasm.EncodeLEB128s(tt.value); !bytes.Equal(got, tt.encoded) {
			t.Errorf("encode %d: got %x, want %x", tt.value, got, tt.encoded)
		}
		got, err := wasm.ReadLEB128s(bytes.NewReader(tt.encoded))
		if err != nil {
			t.Fatalf("decode %x: %v", tt.encoded, err)
		}
		if got != tt.value {
			t.Errorf("decode %x: got %d, want %d", tt.encoded, got, tt.value)
		}
	}
}

func TestLEB128Overflow(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"u32 too wide", []byte{0xff, 0xff, 0xff, 0xff, 0x1f}},
		{"u32 too long", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.ReadLEB128u(bytes.NewReader(tt.data))
			if !errors.Is(err, wasm.ErrOverflow) {
				t.Errorf("got %v, want ErrOverflow", err)
			}
		})
	}

	_, err := wasm.ReadLEB128s(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}))
	if !errors.Is(err, wasm.ErrOverflow) {
		t.Errorf("signed: got %v, want ErrOverflow", err)
	}
}

func TestLEB128Truncated(t *testing.T) {
	if _, err := wasm.ReadLEB128u(bytes.NewReader([]byte{0x80})); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestLEB128UnsignedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint32().Draw(t, "v")
		enc := wasm.EncodeLEB128u(v)
		if len(enc) != wasm.SizeLEB128u(v) {
			t.Fatalf("length %d, SizeLEB128u %d", len(enc), wasm.SizeLEB128u(v))
		}
		// Minimal: only the last byte lacks the continuation bit, and it is
		// non-zero unless the value itself is zero.
		for i, b := range enc[:len(enc)-1] {
			if b&0x80 == 0 {
				t.Fatalf("byte %d of %x lacks continuation bit", i, enc)
			}
		}
		if last := enc[len(enc)-1]; len(enc) > 1 && last == 0 {
			t.Fatalf("non-minimal encoding %x", enc)
		}
		got, err := wasm.ReadLEB128u(bytes.NewReader(enc))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != v {
			t.Fatalf("got %d, want %d", got, v)
		}
	})
}

func TestLEB128SignedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Int64().Draw(t, "v")
		got, err := wasm.ReadLEB128s64(bytes.NewReader(wasm.EncodeLEB128s64(v)))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != v {
			t.Fatalf("got %d, want %d", got, v)
		}
	})
}

func TestLEB128u64(t *testing.T) {
	for _, v := range []uint64{0, 1, 1 << 32, 1<<64 - 1} {
		got, err := wasm.ReadLEB128u64(bytes.NewReader(wasm.EncodeLEB128u64(v)))
		if err != nil {
			t.Fatalf("decode %d: %v", v, err)
		}
		if got != v {
			t.Errorf("got %d, want %d", got, v)
		}
	}
}
