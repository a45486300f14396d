package parser

import (
	"strconv"

	"github.com/wippyai/wasmc/errors"
	"github.com/wippyai/wasmc/lang/internal/ast"
	"github.com/wippyai/wasmc/lang/internal/token"
)

var keywords = map[string]bool{
	"export": true,
	"fn":     true,
	"let":    true,
	"memory": true,
	"return": true,
}

type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a whole file.
//
//	file     := item*
//	item     := ["export"] ("fn" fnDecl | "memory" memDecl)
//	memDecl  := NUMBER [NUMBER] ";"
//	fnDecl   := WORD "(" [WORD {"," WORD}] ")" "{" stmt* "}"
//	stmt     := "let" WORD "=" expr ";" | WORD "=" expr ";"
//	          | "return" expr ";" | expr ";"
//	expr     := term {("+" | "-") term}
//	term     := unary {("*" | "/") unary}
//	unary    := "-" unary | primary
//	primary  := NUMBER | WORD ["(" [expr {"," expr}] ")"] | "(" expr ")"
func (p *Parser) Parse() (*ast.File, error) {
	file := &ast.File{}
	for p.peek() != nil {
		decl, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		file.Decls = append(file.Decls, decl)
	}
	return file, nil
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) *token.Token {
	if p.pos+n >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos+n]
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, p.eofError("expected %v", typ)
	}
	if t.Type != typ {
		return nil, syntaxError(t, "expected %v, got %q", typ, t.Value)
	}
	return t, nil
}

func (p *Parser) expectOperator(op string) error {
	t := p.next()
	if t == nil {
		return p.eofError("expected %q", op)
	}
	if t.Type != token.Operator || t.Value != op {
		return syntaxError(t, "expected %q, got %q", op, t.Value)
	}
	return nil
}

func (p *Parser) expectName(what string) (*token.Token, error) {
	t, err := p.expect(token.Word)
	if err != nil {
		return nil, err
	}
	if keywords[t.Value] {
		return nil, syntaxError(t, "keyword %q cannot be used as a %s name", t.Value, what)
	}
	return t, nil
}

func (p *Parser) isWord(t *token.Token, value string) bool {
	return t != nil && t.Type == token.Word && t.Value == value
}

func (p *Parser) isOperator(t *token.Token, ops ...string) bool {
	if t == nil || t.Type != token.Operator {
		return false
	}
	for _, op := range ops {
		if t.Value == op {
			return true
		}
	}
	return false
}

func (p *Parser) eofError(msg string, args ...any) error {
	line, col := 1, 1
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		line, col = last.Line, last.Column+len(last.Value)
	}
	return errors.Syntax(errors.PhaseParse, line, col, "unexpected end of input, "+msg, args...)
}

func syntaxError(t *token.Token, msg string, args ...any) error {
	return errors.Syntax(errors.PhaseParse, t.Line, t.Column, msg, args...)
}

func posOf(t *token.Token) ast.Pos {
	return ast.Pos{Line: t.Line, Column: t.Column}
}

func (p *Parser) parseItem() (ast.Decl, error) {
	start := p.peek()
	exported := false
	if p.isWord(start, "export") {
		p.next()
		exported = true
	}

	t := p.next()
	switch {
	case t == nil:
		return nil, p.eofError("expected fn or memory")
	case p.isWord(t, "fn"):
		fn, err := p.parseFunc()
		if err != nil {
			return nil, err
		}
		fn.Exported = exported
		fn.Pos = posOf(start)
		return fn, nil
	case p.isWord(t, "memory"):
		mem, err := p.parseMemory()
		if err != nil {
			return nil, err
		}
		mem.Exported = exported
		mem.Pos = posOf(start)
		return mem, nil
	default:
		return nil, syntaxError(t, "expected fn or memory, got %q", t.Value)
	}
}

func (p *Parser) parseMemory() (*ast.MemoryDecl, error) {
	min, err := p.parsePages()
	if err != nil {
		return nil, err
	}
	mem := &ast.MemoryDecl{Min: min}
	if t := p.peek(); t != nil && t.Type == token.Number {
		max, err := p.parsePages()
		if err != nil {
			return nil, err
		}
		mem.Max = &max
	}
	if _, err := p.expect(token.Stop); err != nil {
		return nil, err
	}
	return mem, nil
}

func (p *Parser) parsePages() (uint32, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(t.Value, 10, 32)
	if err != nil {
		return 0, syntaxError(t, "page count %s out of range", t.Value)
	}
	return uint32(v), nil
}

func (p *Parser) parseFunc() (*ast.FuncDecl, error) {
	name, err := p.expectName("function")
	if err != nil {
		return nil, err
	}
	fn := &ast.FuncDecl{Name: name.Value}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	if t := p.peek(); t != nil && t.Type != token.RParen {
		for {
			param, err := p.expectName("parameter")
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, ast.Param{Name: param.Value, Pos: posOf(param)})
			if t := p.peek(); t == nil || t.Type != token.Comma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil {
			return nil, p.eofError("expected '}'")
		}
		if t.Type == token.RBrace {
			p.next()
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		fn.Body = append(fn.Body, stmt)
	}
	return fn, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	t := p.peek()
	var stmt ast.Stmt

	switch {
	case p.isWord(t, "let"):
		p.next()
		name, err := p.expectName("variable")
		if err != nil {
			return nil, err
		}
		if err := p.expectOperator("="); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt = &ast.LetStmt{Name: name.Value, Value: value, Pos: posOf(t)}

	case p.isWord(t, "return"):
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt = &ast.ReturnStmt{Value: value, Pos: posOf(t)}

	case t.Type == token.Word && !keywords[t.Value] && p.isOperator(p.peekAt(1), "="):
		p.next()
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt = &ast.AssignStmt{Name: t.Value, Value: value, Pos: posOf(t)}

	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt = &ast.ExprStmt{X: x, Pos: posOf(t)}
	}

	if _, err := p.expect(token.Stop); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOperator(p.peek(), "+", "-") {
		op := p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{L: left, R: right, Op: op.Value[0], Pos: posOf(op)}
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOperator(p.peek(), "*", "/") {
		op := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{L: left, R: right, Op: op.Value[0], Pos: posOf(op)}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if t := p.peek(); p.isOperator(t, "-") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{X: x, Op: '-', Pos: posOf(t)}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.next()
	if t == nil {
		return nil, p.eofError("expected expression")
	}

	switch t.Type {
	case token.Number:
		v, err := strconv.ParseInt(t.Value, 10, 32)
		if err != nil {
			return nil, syntaxError(t, "number %s out of range", t.Value)
		}
		return &ast.Number{Raw: t.Value, Value: v, Pos: posOf(t)}, nil

	case token.Word:
		if keywords[t.Value] {
			return nil, syntaxError(t, "unexpected keyword %q in expression", t.Value)
		}
		if next := p.peek(); next == nil || next.Type != token.LParen {
			return &ast.Ident{Name: t.Value, Pos: posOf(t)}, nil
		}
		p.next()
		call := &ast.Call{Name: t.Value, Pos: posOf(t)}
		if next := p.peek(); next != nil && next.Type == token.RParen {
			p.next()
			return call, nil
		}
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			sep := p.next()
			if sep == nil {
				return nil, p.eofError("expected ',' or ')'")
			}
			if sep.Type == token.RParen {
				return call, nil
			}
			if sep.Type != token.Comma {
				return nil, syntaxError(sep, "expected ',' or ')', got %q", sep.Value)
			}
		}

	case token.LParen:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &ast.Paren{X: x, Pos: posOf(t)}, nil
	}

	return nil, syntaxError(t, "unexpected %q in expression", t.Value)
}
