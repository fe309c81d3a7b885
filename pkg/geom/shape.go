package geom

// ShapeKind classifies a polygon by the directions of its edges
type ShapeKind int

const (
	ShapeBox ShapeKind = iota + 1
	ShapeRectilinear
	ShapeHalfManhattan
	ShapeNonManhattan
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeRectilinear:
		return "rectilinear polygon"
	case ShapeHalfManhattan:
		return "half-Manhattan polygon"
	case ShapeNonManhattan:
		return "non-Manhattan polygon"
	}
	return "unknown shape"
}

// Shape is one piece of a decomposed region
type Shape struct {
	Kind    ShapeKind
	Polygon Polygon
}

// Box returns the bounding box of the shape, which is the shape itself
// when Kind is ShapeBox
func (s Shape) Box() Box {
	return s.Polygon.BBox()
}

// Classify determines the ShapeKind of a polygon
func Classify(p Polygon) ShapeKind {
	pts := p.Normalize()
	if len(pts) < 3 {
		return ShapeNonManhattan
	}

	rectilinear, half := true, true
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		dx, dy := abs(b.X-a.X), abs(b.Y-a.Y)
		if dx != 0 && dy != 0 {
			rectilinear = false
			if dx != dy {
				half = false
			}
		}
	}

	switch {
	case rectilinear && len(pts) == 4:
		return ShapeBox
	case rectilinear:
		return ShapeRectilinear
	case half:
		return ShapeHalfManhattan
	}
	return ShapeNonManhattan
}

// IsRectilinear reports whether all edges are axis-parallel
func IsRectilinear(p Polygon) bool {
	k := Classify(p)
	return k == ShapeBox || k == ShapeRectilinear
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
