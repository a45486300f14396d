package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// ErrOverflow is returned when a LEB128 value exceeds the maximum size.
var ErrOverflow = errors.New("leb128: overflow")

// Reader is a cursor over an in-memory byte slice. Offsets reported in
// errors are absolute: a sub-reader created with Sub keeps counting from
// its parent's position.
type Reader struct {
	data []byte
	pos  int
	base int
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the absolute byte offset of the cursor.
func (r *Reader) Position() int {
	return r.base + r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The result aliases the underlying slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.wrapError(io.ErrUnexpectedEOF)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Sub consumes the next n bytes and returns a Reader limited to them.
func (r *Reader) Sub(n int) (*Reader, error) {
	start := r.Position()
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return &Reader{data: b, base: start}, nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32.
func (r *Reader) ReadU32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, r.wrapError(io.ErrUnexpectedEOF)
		}
		if shift == 28 && b&0x70 != 0 {
			return 0, r.wrapError(ErrOverflow)
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
}

// ReadS32 reads a signed LEB128 encoded int32.
func (r *Reader) ReadS32() (int32, error) {
	var result int32
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, r.wrapError(io.ErrUnexpectedEOF)
		}
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 35 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
	if shift < 32 && b&0x40 != 0 {
		result |= ^int32(0) << shift
	}
	return result, nil
}

// ReadName reads a UTF-8 encoded name (length-prefixed byte sequence).
func (r *Reader) ReadName() (string, error) {
	length, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", r.wrapError(errors.New("invalid UTF-8 in name"))
	}
	return string(data), nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadF32 reads a little-endian IEEE 754 float32.
func (r *Reader) ReadF32() (float32, error) {
	bits, err := r.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", r.Position(), err)
}

// ParseError represents an error during binary parsing with position information.
type ParseError struct {
	Err      error
	Section  string
	Position int
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("wasm: %s section at position %d: %v", e.Section, e.Position, e.Err)
	}
	return fmt.Sprintf("wasm: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError with the current position.
func (r *Reader) WrapError(section string, err error) error {
	return &ParseError{
		Position: r.Position(),
		Section:  section,
		Err:      err,
	}
}

// Since returns the bytes consumed since the absolute position start.
// The result aliases the underlying slice.
func (r *Reader) Since(start int) []byte {
	return r.data[start-r.base : r.pos]
}

// SkipLEB skips one LEB128 value of at most maxBytes bytes.
func (r *Reader) SkipLEB(maxBytes int) error {
	for i := 0; i < maxBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return r.wrapError(io.ErrUnexpectedEOF)
		}
		if b&0x80 == 0 {
			return nil
		}
	}
	return r.wrapError(ErrOverflow)
}
