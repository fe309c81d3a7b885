package rect

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// RectLexer splits one RECT line into whitespace-separated fields. Labels
// and construct names may be any field, e.g. "12-3" or "-"; coordinates
// are checked when the corners are converted.
var RectLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Field", Pattern: `\S+`},
})

type statement struct {
	BBox *bboxStmt `parser:"  @@"`
	Rect *rectStmt `parser:"| @@"`
}

type bboxStmt struct {
	Corners corners `parser:"\"bbox\" @@"`
}

type rectStmt struct {
	Keyword   string  `parser:"@(\"rect\" | \"inrect\" | \"outrect\")"`
	Label     string  `parser:"@Field"`
	Construct string  `parser:"@Field"`
	Corners   corners `parser:"@@"`
}

// corners are kept as text and converted in base 10, so "010" is ten
type corners struct {
	Values []string `parser:"@Field @Field @Field @Field"`
}

var lineParser = participle.MustBuild[statement](
	participle.Lexer(RectLexer),
	participle.Elide("Whitespace"),
)
