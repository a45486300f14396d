package wasm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wippyai/wasmc/errors"
	"github.com/wippyai/wasmc/wasm/internal/binary"
)

// SignatureKind is the shape a TypeSignature takes.
type SignatureKind uint8

const (
	// SignatureInvalid is the shape of the zero TypeSignature, one that no
	// constructor produced. The assembler refuses to emit it.
	SignatureInvalid SignatureKind = iota
	SignatureFunc
	SignatureLimits
	SignatureValue
)

func (k SignatureKind) String() string {
	switch k {
	case SignatureFunc:
		return "func"
	case SignatureLimits:
		return "limits"
	case SignatureValue:
		return "value"
	default:
		return "invalid"
	}
}

// TypeSignature is a discriminated value with exactly one active shape:
// a function type (params and results), limits (min and optional max), or a
// bare value type. Fields are unexported so every usable signature comes from
// a constructor that has already checked its shape.
type TypeSignature struct {
	params  []ValType
	results []ValType
	min     uint32
	max     uint32
	kind    SignatureKind
	disc    byte
}

// NewFuncType creates a function-type signature. Both lists are required;
// an empty (or nil) list means no parameters or no results and still encodes
// as a zero-count vector.
func NewFuncType(params, results []ValType) (TypeSignature, error) {
	for i, p := range params {
		if !p.Valid() {
			return TypeSignature{}, errors.MalformedSignature([]string{"params", fmt.Sprint(i)}, "invalid value type 0x%02x", byte(p))
		}
	}
	for i, r := range results {
		if !r.Valid() {
			return TypeSignature{}, errors.MalformedSignature([]string{"results", fmt.Sprint(i)}, "invalid value type 0x%02x", byte(r))
		}
	}
	return TypeSignature{
		params:  slices.Clone(params),
		results: slices.Clone(results),
		kind:    SignatureFunc,
		disc:    FuncTypeByte,
	}, nil
}

// NewLimits creates a limits signature with a minimum and no maximum.
func NewLimits(min uint32) TypeSignature {
	return TypeSignature{min: min, kind: SignatureLimits, disc: LimitsMin}
}

// NewBoundedLimits creates a limits signature with both bounds.
func NewBoundedLimits(min, max uint32) (TypeSignature, error) {
	if max < min {
		return TypeSignature{}, errors.MalformedSignature(nil, "limits max %d below min %d", max, min)
	}
	return TypeSignature{min: min, max: max, kind: SignatureLimits, disc: LimitsMinMax}, nil
}

// NewLimitsFromFlag creates a limits signature from an explicit discriminant.
// LimitsMin must come without max and LimitsMinMax with it; any other
// combination is a contract violation.
func NewLimitsFromFlag(flag byte, min uint32, max *uint32) (TypeSignature, error) {
	switch flag {
	case LimitsMin:
		if max != nil {
			return TypeSignature{}, errors.MalformedSignature(nil, "limits flag 0x%02x does not allow a maximum", flag)
		}
		return NewLimits(min), nil
	case LimitsMinMax:
		if max == nil {
			return TypeSignature{}, errors.MalformedSignature(nil, "limits flag 0x%02x requires a maximum", flag)
		}
		return NewBoundedLimits(min, *max)
	default:
		return TypeSignature{}, errors.MalformedSignature(nil, "unknown limits flag 0x%02x", flag)
	}
}

// NewValueType creates a value-type signature, identified by its
// discriminant alone.
func NewValueType(v ValType) (TypeSignature, error) {
	if !v.Valid() {
		return TypeSignature{}, errors.MalformedSignature(nil, "invalid value type 0x%02x", byte(v))
	}
	return TypeSignature{kind: SignatureValue, disc: byte(v)}, nil
}

// Kind returns the active shape.
func (s TypeSignature) Kind() SignatureKind { return s.kind }

// Valid reports whether s was produced by a constructor.
func (s TypeSignature) Valid() bool { return s.kind != SignatureInvalid }

// Discriminant returns the byte that selects the shape in the binary form.
func (s TypeSignature) Discriminant() byte { return s.disc }

// Params returns the parameter types of a function signature.
func (s TypeSignature) Params() []ValType { return slices.Clone(s.params) }

// Results returns the result types of a function signature.
func (s TypeSignature) Results() []ValType { return slices.Clone(s.results) }

// Min returns the minimum of a limits signature.
func (s TypeSignature) Min() uint32 { return s.min }

// Max returns the maximum of a limits signature and whether one is present.
func (s TypeSignature) Max() (uint32, bool) { return s.max, s.disc == LimitsMinMax && s.kind == SignatureLimits }

// ValueType returns the value type of a value-type signature.
func (s TypeSignature) ValueType() ValType { return ValType(s.disc) }

// Equal reports whether two signatures have the same shape and contents.
func (s TypeSignature) Equal(o TypeSignature) bool {
	return s.kind == o.kind && s.disc == o.disc && s.min == o.min && s.max == o.max &&
		slices.Equal(s.params, o.params) && slices.Equal(s.results, o.results)
}

// Encode implements Encodable. Encoding the zero TypeSignature panics: it is
// a programming error that Module.Encode reports before emitting anything.
func (s TypeSignature) Encode() []byte {
	w := binary.NewWriter()
	switch s.kind {
	case SignatureFunc:
		w.Byte(s.disc)
		writeVector(w, s.params)
		writeVector(w, s.results)
	case SignatureLimits:
		w.Byte(s.disc)
		w.WriteU32(s.min)
		if s.disc == LimitsMinMax {
			w.WriteU32(s.max)
		}
	case SignatureValue:
		w.Byte(s.disc)
	default:
		panic("wasm: encoding a TypeSignature that was never constructed")
	}
	return w.Bytes()
}

func (s TypeSignature) String() string {
	switch s.kind {
	case SignatureFunc:
		return "(" + joinTypes(s.params) + ") -> (" + joinTypes(s.results) + ")"
	case SignatureLimits:
		if max, ok := s.Max(); ok {
			return fmt.Sprintf("{min %d, max %d}", s.min, max)
		}
		return fmt.Sprintf("{min %d}", s.min)
	case SignatureValue:
		return ValType(s.disc).String()
	default:
		return "<invalid signature>"
	}
}

func joinTypes(types []ValType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
