// Package errors provides structured error types for the wasmc compiler.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the source position for front-end failures, an element
// path for emitter failures, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindSyntax).
//		File("add.src").
//		At(3, 14).
//		Detail("expected ';' after expression").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.StructuralMismatch("function bodies", 2, 1)
//	err := errors.OutOfBounds(errors.PhaseValidate, []string{"export", "0"}, 4, 1)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when their Phase and Kind agree.
package errors
