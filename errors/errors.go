package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in the pipeline the error occurred
type Phase string

const (
	PhaseLex      Phase = "lex"      // source tokenization
	PhaseParse    Phase = "parse"    // source parsing
	PhaseCodegen  Phase = "codegen"  // AST to module lowering
	PhaseEncode   Phase = "encode"   // module to binary
	PhaseDecode   Phase = "decode"   // binary to module
	PhaseValidate Phase = "validate" // index and structure checks
	PhaseIO       Phase = "io"       // reading sources, writing artifacts
	PhaseRuntime  Phase = "runtime"  // executing emitted modules
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedSignature Kind = "malformed_signature"
	KindStructuralMismatch Kind = "structural_mismatch"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindSyntax             Kind = "syntax"
	KindUnknownIdentifier  Kind = "unknown_identifier"
	KindDuplicate          Kind = "duplicate"
	KindInvalidData        Kind = "invalid_data"
	KindOverflow           Kind = "overflow"
	KindIO                 Kind = "io"
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindInstantiation      Kind = "instantiation"
	KindTrap               Kind = "trap"
)

// Error is the structured error type used throughout the compiler
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	File   string
	Detail string
	Path   []string
	Line   int
	Column int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.File != "" || e.Line > 0 {
		b.WriteString(e.position())
		b.WriteString(": ")
	}

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *Error) position() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Line > 0 {
		if e.File != "" {
			b.WriteByte(':')
		} else {
			b.WriteString("line ")
		}
		b.WriteString(strconv.Itoa(e.Line))
		if e.Column > 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(e.Column))
		}
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// InFile returns a copy of the error attributed to the given source file.
func (e *Error) InFile(file string) *Error {
	c := *e
	c.File = file
	return &c
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the element path, e.g. ("code", "2")
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// At sets the source position
func (b *Builder) At(line, column int) *Builder {
	b.err.Line = line
	b.err.Column = column
	return b
}

// File sets the source file name
func (b *Builder) File(name string) *Builder {
	b.err.File = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the failure classes of the pipeline

// MalformedSignature reports a type signature that cannot be constructed or
// does not have the shape its section requires.
func MalformedSignature(path []string, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindMalformedSignature,
		Path:   path,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// StructuralMismatch reports two module parts whose counts must agree.
func StructuralMismatch(what string, want, got int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindStructuralMismatch,
		Detail: fmt.Sprintf("%s: %d declared, %d provided", what, want, got),
		Value:  got,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Syntax creates a source syntax error at a line and column
func Syntax(phase Phase, line, column int, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSyntax,
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// UnknownIdentifier reports a name that does not resolve
func UnknownIdentifier(line, column int, what, name string) *Error {
	return &Error{
		Phase:  PhaseCodegen,
		Kind:   KindUnknownIdentifier,
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf("unknown %s %q", what, name),
		Value:  name,
	}
}

// Duplicate reports a name declared twice in the same scope
func Duplicate(line, column int, what, name string) *Error {
	return &Error{
		Phase:  PhaseCodegen,
		Kind:   KindDuplicate,
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf("duplicate %s %q", what, name),
		Value:  name,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// IO wraps a filesystem failure for one file
func IO(file, op string, cause error) *Error {
	return &Error{
		Phase:  PhaseIO,
		Kind:   KindIO,
		File:   file,
		Detail: op,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Trap creates an error for a guest call that aborted
func Trap(function string, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindTrap,
		Detail: fmt.Sprintf("call %s", function),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
