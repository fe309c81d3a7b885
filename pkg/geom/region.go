package geom

import (
	"sort"
)

// Region is a set of points in the plane made of disjoint boxes.
//
// Polygons that are not rectilinear cannot be represented exactly as boxes.
// They are carried alongside as irregular shapes so a decomposition can
// report them, but they do not take part in the boolean operations beyond
// being passed through from the operands they came from.
type Region struct {
	boxes []Box
	odd   []Polygon
}

// NewRegion returns the union of the given boxes
func NewRegion(boxes ...Box) Region {
	if len(boxes) == 0 {
		return Region{}
	}
	return Region{boxes: combine(boxes, nil, func(a, _ bool) bool { return a })}
}

// FromPolygons returns the union of the given polygons. Rectilinear polygons
// become boxes, anything else is kept as an irregular shape.
func FromPolygons(polys []Polygon) Region {
	var boxes []Box
	var odd []Polygon
	for _, p := range polys {
		p = p.Normalize()
		switch Classify(p) {
		case ShapeBox:
			bb := p.BBox()
			if !bb.IsDegenerate() {
				boxes = append(boxes, bb)
			}
		case ShapeRectilinear:
			boxes = append(boxes, rectilinearBoxes(p)...)
		default:
			odd = append(odd, p)
		}
	}
	r := NewRegion(boxes...)
	r.odd = odd
	return r
}

// And returns the intersection of two regions
func (r Region) And(o Region) Region {
	out := Region{boxes: combine(r.boxes, o.boxes, func(a, b bool) bool { return a && b })}
	out.odd = append(overlapping(r.odd, o), overlapping(o.odd, r)...)
	return out
}

// Or returns the union of two regions
func (r Region) Or(o Region) Region {
	out := Region{boxes: combine(r.boxes, o.boxes, func(a, b bool) bool { return a || b })}
	out.odd = append(append([]Polygon(nil), r.odd...), o.odd...)
	return out
}

// Not returns r with o removed
func (r Region) Not(o Region) Region {
	out := Region{boxes: combine(r.boxes, o.boxes, func(a, b bool) bool { return a && !b })}
	out.odd = append([]Polygon(nil), r.odd...)
	return out
}

// IsEmpty reports whether the region covers nothing
func (r Region) IsEmpty() bool {
	return len(r.boxes) == 0 && len(r.odd) == 0
}

// Area returns the area covered by the box part of the region
func (r Region) Area() int64 {
	var a int64
	for _, b := range r.boxes {
		a += b.Area()
	}
	return a
}

// Boxes returns the disjoint boxes of the region, ordered bottom to top and
// left to right
func (r Region) Boxes() []Box {
	return append([]Box(nil), r.boxes...)
}

// Irregular returns the polygons that could not be converted to boxes
func (r Region) Irregular() []Polygon {
	return append([]Polygon(nil), r.odd...)
}

// BBox returns the bounding box of everything in the region
func (r Region) BBox() Box {
	bb := EmptyBox()
	for _, b := range r.boxes {
		bb.ExpandBox(b)
	}
	for _, p := range r.odd {
		bb.ExpandBox(p.BBox())
	}
	return bb
}

// Contains reports whether p lies in one of the region's boxes, border included
func (r Region) Contains(p Point) bool {
	for _, b := range r.boxes {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

// Equal reports whether two regions cover the same boxes and carry the same
// irregular polygons in the same order
func (r Region) Equal(o Region) bool {
	if len(r.boxes) != len(o.boxes) || len(r.odd) != len(o.odd) {
		return false
	}
	for i := range r.boxes {
		if r.boxes[i] != o.boxes[i] {
			return false
		}
	}
	for i := range r.odd {
		if !r.odd[i].Equal(o.odd[i]) {
			return false
		}
	}
	return true
}

// Decompose splits the region into non-overlapping shapes that together
// cover it exactly. The box part always yields ShapeBox entries; irregular
// polygons are returned with their classification so callers can reject them.
func (r Region) Decompose() []Shape {
	shapes := make([]Shape, 0, len(r.boxes)+len(r.odd))
	for _, b := range r.boxes {
		shapes = append(shapes, Shape{Kind: ShapeBox, Polygon: b.Polygon()})
	}
	for _, p := range r.odd {
		shapes = append(shapes, Shape{Kind: Classify(p), Polygon: p})
	}
	return shapes
}

func overlapping(polys []Polygon, other Region) []Polygon {
	var out []Polygon
	for _, p := range polys {
		bb := p.BBox()
		for _, b := range other.boxes {
			if bb.Overlaps(b) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// interval is a half-open run [x0, x1) of one horizontal band
type interval struct{ x0, x1 int64 }

// band is a horizontal strip [y0, y1) with its covered runs, sorted and
// neither overlapping nor touching
type band struct {
	y0, y1 int64
	runs   []interval
}

// mergeRuns sorts runs and joins the ones that overlap or touch
func mergeRuns(runs []interval) []interval {
	if len(runs) == 0 {
		return nil
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].x0 < runs[j].x0 })
	out := runs[:1]
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if r.x0 <= last.x1 {
			if r.x1 > last.x1 {
				last.x1 = r.x1
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// sweep walks a box set upward band by band
type sweep struct {
	boxes  []Box // sorted by Y0
	next   int
	active []Box
}

func newSweep(boxes []Box) *sweep {
	s := &sweep{boxes: boxes}
	sort.Slice(s.boxes, func(i, j int) bool { return s.boxes[i].Y0 < s.boxes[j].Y0 })
	return s
}

// at returns the runs covered at the band starting at y. Calls must come
// with increasing y, each y being an edge of every box in the set.
func (s *sweep) at(y int64) []interval {
	keep := s.active[:0]
	for _, b := range s.active {
		if b.Y1 > y {
			keep = append(keep, b)
		}
	}
	s.active = keep
	for ; s.next < len(s.boxes) && s.boxes[s.next].Y0 <= y; s.next++ {
		if b := s.boxes[s.next]; b.Y1 > y {
			s.active = append(s.active, b)
		}
	}

	runs := make([]interval, len(s.active))
	for i, b := range s.active {
		runs[i] = interval{b.X0, b.X1}
	}
	return mergeRuns(runs)
}

// apply combines two run lists of one band
func apply(a, b []interval, op func(inA, inB bool) bool) []interval {
	var xs []int64
	for _, runs := range [][]interval{a, b} {
		for _, r := range runs {
			xs = append(xs, r.x0, r.x1)
		}
	}
	xs = uniqueSorted(xs)

	var out []interval
	i, k := 0, 0
	for t := 0; t+1 < len(xs); t++ {
		x := xs[t]
		for i < len(a) && a[i].x1 <= x {
			i++
		}
		for k < len(b) && b[k].x1 <= x {
			k++
		}
		inA := i < len(a) && a[i].x0 <= x
		inB := k < len(b) && b[k].x0 <= x
		if !op(inA, inB) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].x1 == x {
			out[n-1].x1 = xs[t+1]
			continue
		}
		out = append(out, interval{x, xs[t+1]})
	}
	return out
}

// stack turns bands into boxes, extending a box upward while the next band
// carries a run with identical extent
func stack(bands []band) []Box {
	var out []Box
	open := map[interval]int{}
	for _, bd := range bands {
		next := make(map[interval]int, len(bd.runs))
		for _, r := range bd.runs {
			if k, ok := open[r]; ok && out[k].Y1 == bd.y0 {
				out[k].Y1 = bd.y1
				next[r] = k
				continue
			}
			out = append(out, Box{X0: r.x0, Y0: bd.y0, X1: r.x1, Y1: bd.y1})
			next[r] = len(out) - 1
		}
		open = next
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Y0 != out[b].Y0 {
			return out[a].Y0 < out[b].Y0
		}
		return out[a].X0 < out[b].X0
	})
	return out
}

func solid(boxes []Box) []Box {
	out := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		if !b.IsDegenerate() {
			out = append(out, b)
		}
	}
	return out
}

// combine applies a boolean to two box sets with a scanline over their
// y edges
func combine(a, b []Box, op func(inA, inB bool) bool) []Box {
	a, b = solid(a), solid(b)
	ys := make([]int64, 0, 2*(len(a)+len(b)))
	for _, set := range [][]Box{a, b} {
		for _, bx := range set {
			ys = append(ys, bx.Y0, bx.Y1)
		}
	}
	ys = uniqueSorted(ys)

	sa, sb := newSweep(a), newSweep(b)
	bands := make([]band, 0, len(ys))
	for j := 0; j+1 < len(ys); j++ {
		runs := apply(sa.at(ys[j]), sb.at(ys[j]), op)
		if len(runs) > 0 {
			bands = append(bands, band{y0: ys[j], y1: ys[j+1], runs: runs})
		}
	}
	return stack(bands)
}

// rectilinearBoxes converts a rectilinear polygon to boxes using the
// even-odd rule, which also handles self-overlapping outlines
func rectilinearBoxes(p Polygon) []Box {
	ys := make([]int64, len(p))
	for i, pt := range p {
		ys[i] = pt.Y
	}
	ys = uniqueSorted(ys)

	var bands []band
	for j := 0; j+1 < len(ys); j++ {
		// Doubled coordinates keep the band center on the integer grid
		cy := ys[j] + ys[j+1]
		var xs []int64
		for i := range p {
			a, b := p[i], p[(i+1)%len(p)]
			if a.X != b.X {
				continue
			}
			lo, hi := a.Y, b.Y
			if lo > hi {
				lo, hi = hi, lo
			}
			if 2*lo < cy && cy < 2*hi {
				xs = append(xs, a.X)
			}
		}
		sort.Slice(xs, func(i, k int) bool { return xs[i] < xs[k] })

		var runs []interval
		for i := 0; i+1 < len(xs); i += 2 {
			if xs[i] < xs[i+1] {
				runs = append(runs, interval{xs[i], xs[i+1]})
			}
		}
		if runs = mergeRuns(runs); len(runs) > 0 {
			bands = append(bands, band{y0: ys[j], y1: ys[j+1], runs: runs})
		}
	}
	return stack(bands)
}

func uniqueSorted(v []int64) []int64 {
	if len(v) == 0 {
		return nil
	}
	s := append([]int64(nil), v...)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	out := s[:1]
	for _, x := range s[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
