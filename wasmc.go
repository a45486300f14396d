package wasmc

import (
	"context"

	"github.com/wippyai/wasmc/engine"
	"github.com/wippyai/wasmc/lang"
)

// Compile lowers source to an encoded module.
func Compile(source string) ([]byte, error) {
	return lang.CompileBytes(source)
}

// Run compiles source, instantiates it on a fresh engine and calls fn.
// Every parameter and result of fn is an f32.
func Run(ctx context.Context, source, fn string, args ...float32) ([]float32, error) {
	data, err := lang.CompileBytes(source)
	if err != nil {
		return nil, err
	}

	eng := engine.New(ctx, engine.Config{})
	defer eng.Close(ctx)

	mod, err := eng.Load(ctx, "", data)
	if err != nil {
		return nil, err
	}
	return mod.CallF32(ctx, fn, args...)
}
