// Package wasm encodes WebAssembly modules to the binary format.
//
// A Module is a fixed record with one optional slot per standard section.
// Encode writes the magic number and version followed by every present
// section in canonical order; absent sections produce no bytes at all.
//
// # Building a module
//
//	sig, _ := wasm.NewFuncType(
//	    []wasm.ValType{wasm.ValF32, wasm.ValF32},
//	    []wasm.ValType{wasm.ValF32},
//	)
//	mem, _ := wasm.NewBoundedLimits(2, 10)
//
//	m := &wasm.Module{}
//	typeIdx := m.AddType(sig)
//	fn := m.AddFunction(typeIdx, wasm.CodeBody{
//	    Instructions: []byte{wasm.OpLocalGet, 0, wasm.OpLocalGet, 1, wasm.OpF32Add},
//	})
//	m.AddMemory(mem)
//	m.AddExport("memory", wasm.KindMemory, 0)
//	m.AddExport("add", wasm.KindFunc, uint32(fn))
//
//	data, err := m.Encode()
//
// # Signatures
//
// TypeSignature is a closed variant: a function type, limits, or a bare value
// type. It can only be built through NewFuncType, NewLimits,
// NewBoundedLimits, NewLimitsFromFlag and NewValueType, each of which checks
// the fields its shape requires. The two limits forms use the discriminants
// LimitsMin (0x00) and LimitsMinMax (0x01).
//
// # Checks
//
// Encode rejects contract violations before writing anything: unconstructed
// or misplaced signatures, malformed import descriptors, and a function
// section whose length differs from the code section's. It does not check
// that indices resolve; Validate does that, and a module with an
// out-of-range export index still encodes.
//
// # Decoding
//
// ParseSections splits a binary into raw sections and ParseModule decodes
// the forms this package emits, which is enough to round-trip any module it
// encodes and to inspect compiled artifacts.
package wasm
