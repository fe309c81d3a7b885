package sexp

import (
	"fmt"
	"io"
)

// Parser builds expressions from a token stream
type Parser struct {
	toks []Token
	pos  int
}

// NewParser tokenizes r and returns a parser over its tokens
func NewParser(r io.Reader) (*Parser, error) {
	toks, err := Tokenize(r)
	if err != nil {
		return nil, err
	}
	return &Parser{toks: toks}, nil
}

func (p *Parser) peek() Token { return p.toks[p.pos] }

func (p *Parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

// ParseAll parses all top-level expressions
func (p *Parser) ParseAll() ([]Sexp, error) {
	var out []Sexp
	for p.peek().Type != TokenEOF {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func (p *Parser) parseExpr() (Sexp, error) {
	tok := p.next()
	switch tok.Type {
	case TokenSymbol, TokenString:
		return Symbol(tok.Value), nil
	case TokenLeftParen:
		return p.parseList(tok)
	}
	return nil, fmt.Errorf("%s: unexpected %s", tok.Pos, tok.Type)
}

func (p *Parser) parseList(open Token) (Sexp, error) {
	list := &List{}
	for {
		switch p.peek().Type {
		case TokenRightParen:
			p.next()
			return list, nil
		case TokenEOF:
			return nil, fmt.Errorf("%s: list is not closed", open.Pos)
		}

		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list.elements = append(list.elements, elem)
	}
}
