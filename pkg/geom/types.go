// Package geom provides the integer Manhattan geometry used by the layout
// converters: points, boxes, polygons and regions built from disjoint boxes.
//
// All coordinates are integer database units (nanometers once a layout has
// been loaded). Boxes are half-open in the sense that two boxes sharing an
// edge do not overlap, but point containment is inclusive of the edges so a
// label sitting on a rectangle border still belongs to it.
package geom

import (
	"fmt"
	"math"
)

// Point is a location in database units
type Point struct {
	X int64
	Y int64
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Box is an axis-aligned rectangle with X0 <= X1 and Y0 <= Y1
type Box struct {
	X0, Y0 int64
	X1, Y1 int64
}

// NewBox returns the box spanned by two corners in any order
func NewBox(x0, y0, x1, y1 int64) Box {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Box{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// EmptyBox returns a box that expands to exactly the first point added
func EmptyBox() Box {
	return Box{X0: math.MaxInt64, Y0: math.MaxInt64, X1: math.MinInt64, Y1: math.MinInt64}
}

// IsEmpty reports whether the box has not been expanded yet
func (b Box) IsEmpty() bool {
	return b.X0 > b.X1 || b.Y0 > b.Y1
}

// IsDegenerate reports whether the box has no area
func (b Box) IsDegenerate() bool {
	return b.X0 >= b.X1 || b.Y0 >= b.Y1
}

// Width returns the horizontal extent
func (b Box) Width() int64 { return b.X1 - b.X0 }

// Height returns the vertical extent
func (b Box) Height() int64 { return b.Y1 - b.Y0 }

// Area returns the box area
func (b Box) Area() int64 {
	if b.IsDegenerate() {
		return 0
	}
	return b.Width() * b.Height()
}

// Center returns the box center, rounded toward negative infinity
func (b Box) Center() Point {
	return Point{X: floorDiv(b.X0+b.X1, 2), Y: floorDiv(b.Y0+b.Y1, 2)}
}

// Contains reports whether p lies inside the box or on its border
func (b Box) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 && p.Y >= b.Y0 && p.Y <= b.Y1
}

// Overlaps reports whether the interiors of two boxes intersect
func (b Box) Overlaps(o Box) bool {
	return b.X0 < o.X1 && o.X0 < b.X1 && b.Y0 < o.Y1 && o.Y0 < b.Y1
}

// Expand grows the box to include p
func (b *Box) Expand(p Point) {
	if p.X < b.X0 {
		b.X0 = p.X
	}
	if p.Y < b.Y0 {
		b.Y0 = p.Y
	}
	if p.X > b.X1 {
		b.X1 = p.X
	}
	if p.Y > b.Y1 {
		b.Y1 = p.Y
	}
}

// ExpandBox grows the box to include another non-empty box
func (b *Box) ExpandBox(o Box) {
	if o.IsEmpty() {
		return
	}
	b.Expand(Point{X: o.X0, Y: o.Y0})
	b.Expand(Point{X: o.X1, Y: o.Y1})
}

// Bloat grows all four sides by d. A negative d shrinks the box.
func (b Box) Bloat(d int64) Box {
	return Box{X0: b.X0 - d, Y0: b.Y0 - d, X1: b.X1 + d, Y1: b.Y1 + d}
}

// Polygon returns the four corners counter-clockwise from the lower left
func (b Box) Polygon() Polygon {
	return Polygon{
		{X: b.X0, Y: b.Y0},
		{X: b.X1, Y: b.Y0},
		{X: b.X1, Y: b.Y1},
		{X: b.X0, Y: b.Y1},
	}
}

func (b Box) String() string {
	return fmt.Sprintf("[%d %d %d %d]", b.X0, b.Y0, b.X1, b.Y1)
}

// Polygon is a simple closed polygon. The closing vertex is implicit.
type Polygon []Point

// BBox returns the bounding box of the polygon
func (p Polygon) BBox() Box {
	bb := EmptyBox()
	for _, pt := range p {
		bb.Expand(pt)
	}
	return bb
}

// Normalize drops a repeated closing vertex and collinear or duplicate points
func (p Polygon) Normalize() Polygon {
	pts := make(Polygon, 0, len(p))
	for _, pt := range p {
		if len(pts) > 0 && pts[len(pts)-1] == pt {
			continue
		}
		pts = append(pts, pt)
	}
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	// Remove collinear vertices until stable
	for changed := true; changed && len(pts) > 3; {
		changed = false
		for i := 0; i < len(pts) && len(pts) > 3; i++ {
			prev := pts[(i+len(pts)-1)%len(pts)]
			next := pts[(i+1)%len(pts)]
			if cross(prev, pts[i], next) == 0 {
				pts = append(pts[:i], pts[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return pts
}

// Equal reports whether two polygons have the same points in the same order
func (p Polygon) Equal(o Polygon) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func (p Polygon) String() string {
	s := "("
	for i, pt := range p {
		if i > 0 {
			s += ";"
		}
		s += fmt.Sprintf("%d,%d", pt.X, pt.Y)
	}
	return s + ")"
}

// cross returns the z component of (b-a) x (c-b)
func cross(a, b, c Point) int64 {
	return (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
