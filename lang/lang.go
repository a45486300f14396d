package lang

import (
	"github.com/wippyai/wasmc/lang/internal/codegen"
	"github.com/wippyai/wasmc/lang/internal/parser"
	"github.com/wippyai/wasmc/lang/internal/token"
	"github.com/wippyai/wasmc/wasm"
)

// Compile tokenizes, parses and lowers source to a module.
func Compile(source string) (*wasm.Module, error) {
	tokens, err := token.Tokenize(source)
	if err != nil {
		return nil, err
	}
	file, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return codegen.Generate(file)
}

// CompileBytes compiles source and encodes the result.
func CompileBytes(source string) ([]byte, error) {
	m, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return m.Encode()
}
