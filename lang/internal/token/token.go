package token

import (
	"unicode"

	"github.com/wippyai/wasmc/errors"
)

type Type int

const (
	Number Type = iota
	Word
	Operator
	Stop
	Comma
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
)

func (t Type) String() string {
	switch t {
	case Number:
		return "number"
	case Word:
		return "word"
	case Operator:
		return "operator"
	case Stop:
		return "';'"
	case Comma:
		return "','"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	}
	return "unknown"
}

type Token struct {
	Value  string
	Type   Type
	Line   int
	Column int
}

var punctuation = map[rune]Type{
	';': Stop,
	',': Comma,
	'(': LParen,
	')': RParen,
	'[': LBracket,
	']': RBracket,
	'{': LBrace,
	'}': RBrace,
}

func isOperator(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '=':
		return true
	}
	return false
}

// Tokenize splits source into tokens. Whitespace separates tokens and '#'
// starts a comment that runs to the end of the line. Any other character
// that cannot start a token is an error.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 1
	runes := []rune(input)

	for i := 0; i < len(runes); {
		r := runes[i]
		startCol := col

		switch {
		case r == '\n':
			line++
			col = 1
			i++
			continue
		case unicode.IsSpace(r):
			col++
			i++
			continue
		case r == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
				col++
			}
			continue
		}

		if typ, ok := punctuation[r]; ok {
			tokens = append(tokens, Token{string(r), typ, line, startCol})
			i++
			col++
			continue
		}

		if isOperator(r) {
			tokens = append(tokens, Token{string(r), Operator, line, startCol})
			i++
			col++
			continue
		}

		if unicode.IsDigit(r) {
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			if i < len(runes) && (unicode.IsLetter(runes[i]) || runes[i] == '_') {
				return nil, errors.Syntax(errors.PhaseLex, line, col+(i-start),
					"unexpected %q in number", runes[i])
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, line, startCol})
			col += i - start
			continue
		}

		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Word, line, startCol})
			col += i - start
			continue
		}

		return nil, errors.Syntax(errors.PhaseLex, line, startCol, "unexpected character %q", r)
	}

	return tokens, nil
}
