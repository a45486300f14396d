// Package wasmc compiles a small f32 expression language to WebAssembly
// binary modules and runs them.
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasmc/           Root package with one-call Compile and Run helpers
//	├── wasm/        Module model, binary encoder, decoder and validator
//	├── lang/        Source language front end (tokens, parser, codegen)
//	├── engine/      wazero integration for executing emitted modules
//	├── driver/      Concurrent multi-file compilation with layered config
//	├── errors/      Structured error types for debugging
//	└── cmd/wasmc/   Command-line interface
//
// # Quick Start
//
// Compile source to a binary:
//
//	data, err := wasmc.Compile(`export fn add(a, b) { return a + b; }`)
//
// Compile and call in one step:
//
//	out, err := wasmc.Run(ctx, src, "add", 1, 2)
//
// Build a module by hand with the wasm package:
//
//	m := &wasm.Module{}
//	sig, _ := wasm.NewFuncType([]wasm.ValType{wasm.ValF32}, []wasm.ValType{wasm.ValF32})
//	fn := m.AddFunction(m.AddType(sig), wasm.CodeBody{Instructions: body})
//	m.AddExport("id", wasm.KindFunc, uint32(fn))
//	data, err := m.Encode()
//
// # Error Handling
//
// Every package reports failures as *errors.Error carrying the pipeline
// phase (lex, parse, codegen, encode, decode, validate, io, runtime), a kind
// and, for source errors, the line and column.
package wasmc
