// Package layermodel compiles a parsed technology description into derived
// layer expressions: how the region of each material, metal and via is
// obtained from primitive GDS layers.
package layermodel

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
	"github.com/OpenTraceLab/gdsrect/pkg/sexp"
)

// RegionSource supplies the region of a primitive layer
type RegionSource interface {
	Region(layer string) (geom.Region, error)
}

// RegionFunc adapts a function to RegionSource
type RegionFunc func(layer string) (geom.Region, error)

func (f RegionFunc) Region(layer string) (geom.Region, error) { return f(layer) }

// Op is a region operator
type Op int

const (
	OpAnd Op = iota + 1
	OpOr
	OpNot
)

func (o Op) String() string {
	switch o {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpNot:
		return "not"
	}
	return "op?"
}

// Expr is a derived layer expression: either a Primitive layer or a Binary
// operation over two expressions
type Expr interface {
	// Eval computes the region against a source of primitive regions
	Eval(src RegionSource) (geom.Region, error)

	// Layers returns the primitive layers referenced, first occurrence order
	Layers() []string

	// String returns the S-expression form
	String() string

	node() sexp.Sexp
}

// Primitive is a layer read directly from the layout
type Primitive struct {
	Layer string
}

// Binary applies Op to Left and Right. For OpNot, Right is subtracted
// from Left.
type Binary struct {
	Op          Op
	Left, Right Expr
}

// Layer returns the expression for a single primitive layer
func Layer(name string) Expr { return Primitive{Layer: name} }

func And(l, r Expr) Expr { return Binary{Op: OpAnd, Left: l, Right: r} }
func Or(l, r Expr) Expr  { return Binary{Op: OpOr, Left: l, Right: r} }
func Not(l, r Expr) Expr { return Binary{Op: OpNot, Left: l, Right: r} }

// AndAll left-folds AND over a layer stack. A one-layer stack is the layer
// itself; an empty stack yields nil.
func AndAll(layers []string) Expr { return fold(OpAnd, layers) }

// OrAll left-folds OR over a list of layers
func OrAll(layers []string) Expr { return fold(OpOr, layers) }

func fold(op Op, layers []string) Expr {
	if len(layers) == 0 {
		return nil
	}
	var e Expr = Layer(layers[0])
	for _, name := range layers[1:] {
		e = Binary{Op: op, Left: e, Right: Layer(name)}
	}
	return e
}

func (p Primitive) Eval(src RegionSource) (geom.Region, error) {
	return src.Region(p.Layer)
}

func (p Primitive) Layers() []string { return []string{p.Layer} }
func (p Primitive) String() string   { return p.node().String() }
func (p Primitive) node() sexp.Sexp  { return sexp.Symbol(p.Layer) }

func (b Binary) Eval(src RegionSource) (geom.Region, error) {
	left, err := b.Left.Eval(src)
	if err != nil {
		return geom.Region{}, err
	}
	right, err := b.Right.Eval(src)
	if err != nil {
		return geom.Region{}, err
	}

	switch b.Op {
	case OpAnd:
		return left.And(right), nil
	case OpOr:
		return left.Or(right), nil
	case OpNot:
		return left.Not(right), nil
	}
	return geom.Region{}, fmt.Errorf("unknown operator %d", b.Op)
}

func (b Binary) Layers() []string {
	out := b.Left.Layers()
	for _, name := range b.Right.Layers() {
		if !contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func (b Binary) String() string { return b.node().String() }

func (b Binary) node() sexp.Sexp {
	return sexp.NewList(sexp.Symbol(b.Op.String()), b.Left.node(), b.Right.node())
}

// ParseExpr reads the S-expression form of an expression. AND and OR accept
// two or more operands and fold left; NOT takes exactly two.
//
//	m1
//	(and via1a via1b)
//	(not (and diff nsdm) (or poly licon))
func ParseExpr(s string) (Expr, error) {
	nodes, err := sexp.ParseString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expression: %w", err)
	}
	if len(nodes) != 1 {
		return nil, fmt.Errorf("expected one expression, got %d", len(nodes))
	}
	return fromNode(nodes[0])
}

func fromNode(n sexp.Sexp) (Expr, error) {
	if n.IsLeaf() {
		sym, ok := n.(sexp.Symbol)
		if !ok || sym == "" {
			return nil, fmt.Errorf("invalid layer name %s", n)
		}
		return Layer(string(sym)), nil
	}

	list, ok := n.(*sexp.List)
	if !ok || list.Len() == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	head, ok := list.Get(0).(sexp.Symbol)
	if !ok {
		return nil, fmt.Errorf("operator expected in %s", list)
	}

	var op Op
	switch strings.ToLower(string(head)) {
	case "and":
		op = OpAnd
	case "or":
		op = OpOr
	case "not":
		op = OpNot
	default:
		return nil, fmt.Errorf("unknown operator %q", string(head))
	}

	args := list.Len() - 1
	if args < 2 || (op == OpNot && args != 2) {
		return nil, fmt.Errorf("wrong number of operands for %s in %s", op, list)
	}

	e, err := fromNode(list.Get(1))
	if err != nil {
		return nil, err
	}
	for i := 2; i < list.Len(); i++ {
		r, err := fromNode(list.Get(i))
		if err != nil {
			return nil, err
		}
		e = Binary{Op: op, Left: e, Right: r}
	}
	return e, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
