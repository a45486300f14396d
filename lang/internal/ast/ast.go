package ast

// Pos is a source position, 1-based.
type Pos struct {
	Line   int
	Column int
}

// Position returns p. Embedding Pos gives every node a Position method.
func (p Pos) Position() Pos { return p }

// File is a parsed source file. Decls keeps source order.
type File struct {
	Decls []Decl
}

// Funcs returns the function declarations in source order.
func (f *File) Funcs() []*FuncDecl {
	var out []*FuncDecl
	for _, d := range f.Decls {
		if fn, ok := d.(*FuncDecl); ok {
			out = append(out, fn)
		}
	}
	return out
}

// Memories returns the memory declarations in source order.
func (f *File) Memories() []*MemoryDecl {
	var out []*MemoryDecl
	for _, d := range f.Decls {
		if m, ok := d.(*MemoryDecl); ok {
			out = append(out, m)
		}
	}
	return out
}

type Decl interface {
	Position() Pos
	IsExported() bool
}

// MemoryDecl declares the module's memory in pages. Max is nil when the
// declaration has no upper bound.
type MemoryDecl struct {
	Max      *uint32
	Pos
	Min      uint32
	Exported bool
}

func (d *MemoryDecl) IsExported() bool { return d.Exported }

type FuncDecl struct {
	Name   string
	Params []Param
	Body   []Stmt
	Pos
	Exported bool
}

func (d *FuncDecl) IsExported() bool { return d.Exported }

type Param struct {
	Name string
	Pos
}

type Stmt interface {
	Position() Pos
	stmt()
}

type LetStmt struct {
	Value Expr
	Name  string
	Pos
}

type AssignStmt struct {
	Value Expr
	Name  string
	Pos
}

type ReturnStmt struct {
	Value Expr
	Pos
}

type ExprStmt struct {
	X Expr
	Pos
}

func (*LetStmt) stmt()    {}
func (*AssignStmt) stmt() {}
func (*ReturnStmt) stmt() {}
func (*ExprStmt) stmt()   {}

type Expr interface {
	Position() Pos
	expr()
}

// Number is an integer literal. Values are f32 at run time.
type Number struct {
	Raw   string
	Pos
	Value int64
}

type Ident struct {
	Name string
	Pos
}

// Unary is a prefix operation; Op is '-'.
type Unary struct {
	X  Expr
	Pos
	Op byte
}

// Binary is an infix arithmetic operation; Op is one of '+', '-', '*', '/'.
type Binary struct {
	L  Expr
	R  Expr
	Pos
	Op byte
}

type Call struct {
	Name string
	Args []Expr
	Pos
}

type Paren struct {
	X Expr
	Pos
}

func (*Number) expr() {}
func (*Ident) expr()  {}
func (*Unary) expr()  {}
func (*Binary) expr() {}
func (*Call) expr()   {}
func (*Paren) expr()  {}
