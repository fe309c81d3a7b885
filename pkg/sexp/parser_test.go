package sexp

import (
	"strings"
	"testing"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "atom", input: "m1", want: []string{"m1"}},
		{name: "nested", input: "(not (and m1 m2) m1.pin)", want: []string{"(not (and m1 m2) m1.pin)"}},
		{name: "quoted", input: `(and "metal 1" m2)`, want: []string{`(and "metal 1" m2)`}},
		{name: "comment", input: "(or a b) # trailing\n c", want: []string{"(or a b)", "c"}},
		{name: "empty list", input: "()", want: []string{"()"}},
		{name: "unbalanced", input: "(and a", wantErr: true},
		{name: "stray close", input: ")", wantErr: true},
		{name: "open string", input: `"abc`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseString(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseString(%q) error: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d expressions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("expr %d = %s, want %s", i, got[i].String(), tt.want[i])
				}
			}
		})
	}
}

func TestListAccessors(t *testing.T) {
	exprs, err := ParseString("(and a (or b c))")
	if err != nil {
		t.Fatal(err)
	}
	l, ok := exprs[0].(*List)
	if !ok {
		t.Fatalf("expected list, got %T", exprs[0])
	}
	if l.Len() != 3 || l.LeafCount() != 3 {
		t.Errorf("Len() = %d", l.Len())
	}
	if l.Get(0).String() != "and" || !l.Get(1).IsLeaf() || l.Get(2).IsLeaf() {
		t.Errorf("unexpected elements: %v", l)
	}
	if l.Get(5) != nil {
		t.Errorf("Get out of range should be nil")
	}
}

func TestTokenize(t *testing.T) {
	toks, err := Tokenize(strings.NewReader(`(and "a\"b" c) # done`))
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		typ   TokenType
		value string
	}{
		{TokenLeftParen, "("},
		{TokenSymbol, "and"},
		{TokenString, `a"b`},
		{TokenSymbol, "c"},
		{TokenRightParen, ")"},
		{TokenEOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Value != w.value {
			t.Errorf("token %d = %s %q, want %s %q", i, toks[i].Type, toks[i].Value, w.typ, w.value)
		}
	}
}
