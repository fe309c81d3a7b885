package techconf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// ConfLexer splits one line of a technology description into tokens.
// Quoted tokens may contain whitespace and '#'; an unquoted '#' starts a
// comment running to the end of the line.
var ConfLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Double-quoted strings with backslash escapes
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},

	// Single-quoted strings, taken literally
	{Name: "Quoted", Pattern: `'[^']*'`},

	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	// Anything else up to whitespace, a quote or a comment
	{Name: "Word", Pattern: `[^\s"'#]+`},
})

var confSymbols = ConfLexer.Symbols()

// tokenize returns the tokens of a line with quotes removed. An unterminated
// quote or a bad escape makes the whole line invalid.
func tokenize(line string) ([]string, error) {
	lex, err := ConfLexer.Lex("", strings.NewReader(line))
	if err != nil {
		return nil, err
	}

	var toks []string
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return toks, nil
		}

		switch tok.Type {
		case confSymbols["Whitespace"], confSymbols["Comment"]:
			continue
		case confSymbols["String"]:
			s, err := strconv.Unquote(tok.Value)
			if err != nil {
				return nil, fmt.Errorf("bad quoted token %s: %w", tok.Value, err)
			}
			toks = append(toks, s)
		case confSymbols["Quoted"]:
			toks = append(toks, tok.Value[1:len(tok.Value)-1])
		default:
			toks = append(toks, tok.Value)
		}
	}
}
