package codegen

import (
	"github.com/wippyai/wasmc/errors"
	"github.com/wippyai/wasmc/lang/internal/ast"
	"github.com/wippyai/wasmc/wasm"
)

// funcState tracks local slots while lowering one function. Parameters
// occupy slots 0..n-1 and each let adds the next slot.
type funcState struct {
	g      *generator
	locals map[string]uint32
	extra  []wasm.ValType
	code   []wasm.Instruction
}

func (g *generator) lowerFunc(d *ast.FuncDecl) (wasm.CodeBody, error) {
	s := &funcState{g: g, locals: make(map[string]uint32, len(d.Params))}
	for i, p := range d.Params {
		if _, dup := s.locals[p.Name]; dup {
			return wasm.CodeBody{}, errors.Duplicate(p.Line, p.Column, "parameter", p.Name)
		}
		s.locals[p.Name] = uint32(i)
	}

	for _, stmt := range d.Body {
		if err := s.lowerStmt(stmt); err != nil {
			return wasm.CodeBody{}, err
		}
	}
	if n := len(d.Body); n == 0 {
		s.emit(wasm.OpF32Const, wasm.F32Imm{Value: 0})
	} else if _, ok := d.Body[n-1].(*ast.ReturnStmt); !ok {
		s.emit(wasm.OpF32Const, wasm.F32Imm{Value: 0})
	}

	return wasm.CodeBody{
		Locals:       wasm.CompressLocals(s.extra),
		Instructions: wasm.EncodeInstructions(s.code),
	}, nil
}

func (s *funcState) emit(op byte, imm any) {
	s.code = append(s.code, wasm.Instruction{Opcode: op, Imm: imm})
}

func (s *funcState) lowerStmt(stmt ast.Stmt) error {
	switch st := stmt.(type) {
	case *ast.LetStmt:
		if _, dup := s.locals[st.Name]; dup {
			return errors.Duplicate(st.Line, st.Column, "variable", st.Name)
		}
		if err := s.lowerExpr(st.Value); err != nil {
			return err
		}
		idx := uint32(len(s.locals))
		s.locals[st.Name] = idx
		s.extra = append(s.extra, wasm.ValF32)
		s.emit(wasm.OpLocalSet, wasm.LocalImm{LocalIdx: idx})

	case *ast.AssignStmt:
		idx, ok := s.locals[st.Name]
		if !ok {
			return errors.UnknownIdentifier(st.Line, st.Column, "variable", st.Name)
		}
		if err := s.lowerExpr(st.Value); err != nil {
			return err
		}
		s.emit(wasm.OpLocalSet, wasm.LocalImm{LocalIdx: idx})

	case *ast.ReturnStmt:
		if err := s.lowerExpr(st.Value); err != nil {
			return err
		}
		s.emit(wasm.OpReturn, nil)

	case *ast.ExprStmt:
		if err := s.lowerExpr(st.X); err != nil {
			return err
		}
		s.emit(wasm.OpDrop, nil)
	}
	return nil
}

var binaryOps = map[byte]byte{
	'+': wasm.OpF32Add,
	'-': wasm.OpF32Sub,
	'*': wasm.OpF32Mul,
	'/': wasm.OpF32Div,
}

func (s *funcState) lowerExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.Number:
		s.emit(wasm.OpF32Const, wasm.F32Imm{Value: float32(e.Value)})

	case *ast.Ident:
		idx, ok := s.locals[e.Name]
		if !ok {
			return errors.UnknownIdentifier(e.Line, e.Column, "variable", e.Name)
		}
		s.emit(wasm.OpLocalGet, wasm.LocalImm{LocalIdx: idx})

	case *ast.Unary:
		if err := s.lowerExpr(e.X); err != nil {
			return err
		}
		s.emit(wasm.OpF32Neg, nil)

	case *ast.Binary:
		op, ok := binaryOps[e.Op]
		if !ok {
			return invalid(e.Pos, "unknown operator %q", e.Op)
		}
		if err := s.lowerExpr(e.L); err != nil {
			return err
		}
		if err := s.lowerExpr(e.R); err != nil {
			return err
		}
		s.emit(op, nil)

	case *ast.Call:
		fn, ok := s.g.funcs[e.Name]
		if !ok {
			return errors.UnknownIdentifier(e.Line, e.Column, "function", e.Name)
		}
		if want := len(fn.decl.Params); len(e.Args) != want {
			return invalid(e.Pos, "%s expects %d arguments, got %d", e.Name, want, len(e.Args))
		}
		for _, arg := range e.Args {
			if err := s.lowerExpr(arg); err != nil {
				return err
			}
		}
		s.emit(wasm.OpCall, wasm.CallImm{FuncIdx: uint32(fn.index)})

	case *ast.Paren:
		return s.lowerExpr(e.X)
	}
	return nil
}
