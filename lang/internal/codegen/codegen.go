package codegen

import (
	"slices"

	"github.com/wippyai/wasmc/errors"
	"github.com/wippyai/wasmc/lang/internal/ast"
	"github.com/wippyai/wasmc/wasm"
)

// MemoryExportName is the export name of an exported memory declaration.
const MemoryExportName = "memory"

type function struct {
	decl    *ast.FuncDecl
	index   wasm.FuncIndex
	typeIdx wasm.TypeIndex
}

type generator struct {
	mod   *wasm.Module
	funcs map[string]*function
	order []*function
}

type export struct {
	name  string
	pos   ast.Pos
	index uint32
	kind  wasm.ExternKind
}

// Generate lowers a parsed file to a module. Every value is an f32: a
// function with n parameters has type (f32 * n) -> (f32), and types are
// shared between functions of equal arity.
func Generate(file *ast.File) (*wasm.Module, error) {
	g := &generator{
		mod:   &wasm.Module{},
		funcs: make(map[string]*function),
	}

	var exports []export

	mems := file.Memories()
	if len(mems) > 1 {
		d := mems[1]
		return nil, errors.Duplicate(d.Line, d.Column, "memory", MemoryExportName)
	}
	if len(mems) == 1 {
		d := mems[0]
		limits, err := memoryLimits(d)
		if err != nil {
			return nil, err
		}
		idx := g.mod.AddMemory(limits)
		if d.Exported {
			exports = append(exports, export{name: MemoryExportName, kind: wasm.KindMemory, index: idx, pos: d.Pos})
		}
	}

	// Declare every function before lowering bodies so calls may refer to
	// functions defined later in the file.
	for _, d := range file.Funcs() {
		if _, dup := g.funcs[d.Name]; dup {
			return nil, errors.Duplicate(d.Line, d.Column, "function", d.Name)
		}
		sig, err := f32Signature(len(d.Params))
		if err != nil {
			return nil, err
		}
		fn := &function{
			decl:    d,
			index:   wasm.FuncIndex(len(g.order)),
			typeIdx: g.mod.AddType(sig),
		}
		g.funcs[d.Name] = fn
		g.order = append(g.order, fn)
	}

	for _, fn := range g.order {
		body, err := g.lowerFunc(fn.decl)
		if err != nil {
			return nil, err
		}
		g.mod.AddFunction(fn.typeIdx, body)
		if fn.decl.Exported {
			exports = append(exports, export{name: fn.decl.Name, kind: wasm.KindFunc, index: uint32(fn.index), pos: fn.decl.Pos})
		}
	}

	slices.SortStableFunc(exports, func(a, b export) int {
		if a.pos.Line != b.pos.Line {
			return a.pos.Line - b.pos.Line
		}
		return a.pos.Column - b.pos.Column
	})
	for _, e := range exports {
		g.mod.AddExport(e.name, e.kind, e.index)
	}

	return g.mod, nil
}

func memoryLimits(d *ast.MemoryDecl) (wasm.TypeSignature, error) {
	if d.Min > wasm.MaxPages {
		return wasm.TypeSignature{}, invalid(d.Pos, "memory minimum %d exceeds %d pages", d.Min, wasm.MaxPages)
	}
	if d.Max == nil {
		return wasm.NewLimits(d.Min), nil
	}
	if *d.Max > wasm.MaxPages {
		return wasm.TypeSignature{}, invalid(d.Pos, "memory maximum %d exceeds %d pages", *d.Max, wasm.MaxPages)
	}
	limits, err := wasm.NewBoundedLimits(d.Min, *d.Max)
	if err != nil {
		return wasm.TypeSignature{}, errors.New(errors.PhaseCodegen, errors.KindMalformedSignature).
			At(d.Line, d.Column).Cause(err).
			Detail("memory maximum %d is below minimum %d", *d.Max, d.Min).Build()
	}
	return limits, nil
}

func f32Signature(arity int) (wasm.TypeSignature, error) {
	params := make([]wasm.ValType, arity)
	for i := range params {
		params[i] = wasm.ValF32
	}
	return wasm.NewFuncType(params, []wasm.ValType{wasm.ValF32})
}

func invalid(pos ast.Pos, detail string, args ...any) error {
	return errors.New(errors.PhaseCodegen, errors.KindInvalidInput).
		At(pos.Line, pos.Column).Detail(detail, args...).Build()
}
