package gds

import (
	"fmt"
	"math"
	"strings"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
)

// maxDepth bounds the reference nesting followed while flattening
const maxDepth = 64

// LoadFile reads a stream file and flattens the given top structure.
// An empty top selects the single unreferenced structure.
func LoadFile(filename, top string) (*Layout, error) {
	lib, err := ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Flatten(lib, top)
}

// Flatten resolves all references below the top structure into a single
// Layout. Coordinates are converted from the library's database unit to
// nanometers.
func Flatten(lib *Library, top string) (*Layout, error) {
	root, err := selectTop(lib, top)
	if err != nil {
		return nil, err
	}

	scale := 1.0
	if lib.MeterUnit > 0 {
		scale = lib.MeterUnit / DefaultMeterUnit
	}

	f := &flattener{lib: lib, out: NewLayout(root.Name), active: make(map[string]bool)}
	if err := f.walk(root, transform{a: scale, d: scale}, 0); err != nil {
		return nil, err
	}
	return f.out, nil
}

func selectTop(lib *Library, top string) (*Structure, error) {
	if top != "" {
		s, ok := lib.Structure(top)
		if !ok {
			return nil, fmt.Errorf("structure %q not found", top)
		}
		return s, nil
	}

	tops := lib.TopStructures()
	switch len(tops) {
	case 0:
		return nil, fmt.Errorf("library %q has no top structure", lib.Name)
	case 1:
		return tops[0], nil
	}
	names := make([]string, len(tops))
	for i, s := range tops {
		names[i] = s.Name
	}
	return nil, fmt.Errorf("library %q has several top structures (%s), select one explicitly",
		lib.Name, strings.Join(names, ", "))
}

type flattener struct {
	lib    *Library
	out    *Layout
	active map[string]bool
}

func (f *flattener) walk(s *Structure, t transform, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("reference nesting deeper than %d at %q", maxDepth, s.Name)
	}
	if f.active[s.Name] {
		return fmt.Errorf("recursive reference to structure %q", s.Name)
	}
	f.active[s.Name] = true
	defer delete(f.active, s.Name)

	for _, b := range s.Boundaries {
		f.out.AddPolygon(b.Layer, t.polygon(b.Points))
	}
	for _, p := range s.Paths {
		for _, poly := range pathPolygons(p) {
			f.out.AddPolygon(p.Layer, t.polygon(poly))
		}
	}
	for _, txt := range s.Texts {
		f.out.AddLabel(txt.Layer, txt.String, t.apply(txt.Position))
	}

	for _, ref := range s.Refs {
		child, ok := f.lib.Structure(ref.Name)
		if !ok {
			return fmt.Errorf("structure %q references unknown structure %q", s.Name, ref.Name)
		}

		cols, rows := 1, 1
		if ref.IsArray() {
			cols, rows = ref.Cols, ref.Rows
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				origin := geom.Point{
					X: ref.Origin.X + int64(c)*ref.ColStep.X + int64(r)*ref.RowStep.X,
					Y: ref.Origin.Y + int64(c)*ref.ColStep.Y + int64(r)*ref.RowStep.Y,
				}
				if err := f.walk(child, t.compose(placement(ref.Strans, origin)), depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// transform maps (x, y) to (a*x + b*y + dx, c*x + d*y + dy)
type transform struct {
	a, b, c, d float64
	dx, dy     float64
}

// placement builds the transform of a reference: reflect about the x axis,
// magnify, rotate, then move to origin
func placement(s Strans, origin geom.Point) transform {
	mag := s.Mag
	if mag == 0 {
		mag = 1
	}
	cos, sin := rotation(s.Angle)

	refl := 1.0
	if s.Reflect {
		refl = -1
	}
	return transform{
		a: mag * cos, b: -mag * sin * refl,
		c: mag * sin, d: mag * cos * refl,
		dx: float64(origin.X), dy: float64(origin.Y),
	}
}

// rotation returns exact values for quarter turns
func rotation(deg float64) (float64, float64) {
	switch math.Mod(math.Mod(deg, 360)+360, 360) {
	case 0:
		return 1, 0
	case 90:
		return 0, 1
	case 180:
		return -1, 0
	case 270:
		return 0, -1
	}
	rad := deg * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// compose returns the transform applying inner first and then t
func (t transform) compose(inner transform) transform {
	return transform{
		a:  t.a*inner.a + t.b*inner.c,
		b:  t.a*inner.b + t.b*inner.d,
		c:  t.c*inner.a + t.d*inner.c,
		d:  t.c*inner.b + t.d*inner.d,
		dx: t.a*inner.dx + t.b*inner.dy + t.dx,
		dy: t.c*inner.dx + t.d*inner.dy + t.dy,
	}
}

func (t transform) apply(p geom.Point) geom.Point {
	x, y := float64(p.X), float64(p.Y)
	return geom.Point{
		X: int64(math.Round(t.a*x + t.b*y + t.dx)),
		Y: int64(math.Round(t.c*x + t.d*y + t.dy)),
	}
}

func (t transform) polygon(p geom.Polygon) geom.Polygon {
	out := make(geom.Polygon, len(p))
	for i, pt := range p {
		out[i] = t.apply(pt)
	}
	return out
}

// pathPolygons outlines a path. Axis-parallel segments become boxes joined
// with square corners; other segments become quadrilaterals.
func pathPolygons(p Path) []geom.Polygon {
	w := p.Width
	if w < 0 {
		w = -w
	}
	half := w / 2
	if half == 0 {
		return nil
	}

	var begin, end int64
	switch p.PathType {
	case 2:
		begin, end = half, half
	case 4:
		begin, end = p.BeginExt, p.EndExt
	}

	var out []geom.Polygon
	last := len(p.Points) - 2
	for i := 0; i <= last; i++ {
		a, b := p.Points[i], p.Points[i+1]
		if a == b {
			continue
		}

		extA, extB := half, half
		if i == 0 {
			extA = begin
		}
		if i == last {
			extB = end
		}

		switch {
		case a.Y == b.Y:
			if a.X > b.X {
				a, b, extA, extB = b, a, extB, extA
			}
			out = append(out, geom.NewBox(a.X-extA, a.Y-half, b.X+extB, a.Y+half).Polygon())
		case a.X == b.X:
			if a.Y > b.Y {
				a, b, extA, extB = b, a, extB, extA
			}
			out = append(out, geom.NewBox(a.X-half, a.Y-extA, a.X+half, b.Y+extB).Polygon())
		default:
			dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
			l := math.Hypot(dx, dy)
			ux, uy := dx/l, dy/l
			nx, ny := -uy*float64(half), ux*float64(half)
			ax, ay := float64(a.X)-ux*float64(extA), float64(a.Y)-uy*float64(extA)
			bx, by := float64(b.X)+ux*float64(extB), float64(b.Y)+uy*float64(extB)
			pt := func(x, y float64) geom.Point {
				return geom.Point{X: int64(math.Round(x)), Y: int64(math.Round(y))}
			}
			out = append(out, geom.Polygon{
				pt(ax+nx, ay+ny), pt(ax-nx, ay-ny), pt(bx-nx, by-ny), pt(bx+nx, by+ny),
			})
		}
	}
	return out
}
