package sexp

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	}
	return "unknown"
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   lexer.Position
}

// SexpLexer defines the tokens of the expression syntax. A '#' at the start
// of a token begins a comment running to the end of the line.
var SexpLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Symbol", Pattern: `[^\s()"]+`},
})

var symbols = SexpLexer.Symbols()

// Tokenize reads all tokens from r, dropping whitespace and comments. The
// returned slice always ends with a TokenEOF.
func Tokenize(r io.Reader) ([]Token, error) {
	lex, err := SexpLexer.Lex("", r)
	if err != nil {
		return nil, err
	}

	var toks []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}

		switch tok.Type {
		case lexer.EOF:
			return append(toks, Token{Type: TokenEOF, Pos: tok.Pos}), nil
		case symbols["Whitespace"], symbols["Comment"]:
			continue
		case symbols["LParen"]:
			toks = append(toks, Token{Type: TokenLeftParen, Value: tok.Value, Pos: tok.Pos})
		case symbols["RParen"]:
			toks = append(toks, Token{Type: TokenRightParen, Value: tok.Value, Pos: tok.Pos})
		case symbols["String"]:
			toks = append(toks, Token{Type: TokenString, Value: unescape(tok.Value), Pos: tok.Pos})
		case symbols["Symbol"]:
			toks = append(toks, Token{Type: TokenSymbol, Value: tok.Value, Pos: tok.Pos})
		default:
			return nil, fmt.Errorf("%s: unexpected token %q", tok.Pos, tok.Value)
		}
	}
}

// unescape strips the quotes of a string token; a backslash keeps the
// following character literally
func unescape(quoted string) string {
	body := quoted[1 : len(quoted)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var b strings.Builder
	escaped := false
	for _, ch := range body {
		if ch == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(ch)
	}
	return b.String()
}
