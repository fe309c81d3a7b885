package gds

import (
	"sort"
	"time"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
)

// Label is a text string placed at a point on a layer
type Label struct {
	Text     string
	Position geom.Point
	Layer    LayerID
}

// Layout is a flat design: polygons and labels per layer, coordinates in
// nanometers. A Layout is either built up by the converters for writing or
// produced by Flatten; once loaded it is only read.
type Layout struct {
	Name string

	polygons map[LayerID][]geom.Polygon
	labels   map[LayerID][]Label
	regions  map[LayerID]geom.Region
}

// NewLayout creates an empty layout
func NewLayout(name string) *Layout {
	return &Layout{
		Name:     name,
		polygons: make(map[LayerID][]geom.Polygon),
		labels:   make(map[LayerID][]Label),
		regions:  make(map[LayerID]geom.Region),
	}
}

// AddPolygon adds a filled polygon on a layer
func (l *Layout) AddPolygon(layer LayerID, p geom.Polygon) {
	l.polygons[layer] = append(l.polygons[layer], p)
	delete(l.regions, layer)
}

// AddBox adds a filled box on a layer
func (l *Layout) AddBox(layer LayerID, b geom.Box) {
	l.AddPolygon(layer, b.Polygon())
}

// AddLabel places a text label on a layer
func (l *Layout) AddLabel(layer LayerID, text string, pos geom.Point) {
	l.labels[layer] = append(l.labels[layer], Label{Text: text, Position: pos, Layer: layer})
}

// Layers returns every layer carrying polygons or labels, sorted
func (l *Layout) Layers() []LayerID {
	seen := make(map[LayerID]bool)
	var out []LayerID
	for id := range l.polygons {
		seen[id] = true
		out = append(out, id)
	}
	for id := range l.labels {
		if !seen[id] {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Layer != out[j].Layer {
			return out[i].Layer < out[j].Layer
		}
		return out[i].Datatype < out[j].Datatype
	})
	return out
}

// Polygons returns the polygons on a layer
func (l *Layout) Polygons(layer LayerID) []geom.Polygon {
	return l.polygons[layer]
}

// Labels returns the labels on a layer in insertion order
func (l *Layout) Labels(layer LayerID) []Label {
	return l.labels[layer]
}

// Region returns the merged region covered by a layer
func (l *Layout) Region(layer LayerID) geom.Region {
	if r, ok := l.regions[layer]; ok {
		return r
	}
	r := geom.FromPolygons(l.polygons[layer])
	l.regions[layer] = r
	return r
}

// BBox returns the extent of all polygons and label positions
func (l *Layout) BBox() geom.Box {
	bb := geom.EmptyBox()
	for _, polys := range l.polygons {
		for _, p := range polys {
			bb.ExpandBox(p.BBox())
		}
	}
	for _, labels := range l.labels {
		for _, lb := range labels {
			bb.Expand(lb.Position)
		}
	}
	return bb
}

// Library converts the layout to a single-structure library
func (l *Layout) Library() *Library {
	now := time.Now().UTC()
	s := &Structure{Name: l.Name, Modified: now, Accessed: now}
	for _, id := range l.Layers() {
		for _, p := range l.polygons[id] {
			s.Boundaries = append(s.Boundaries, Boundary{Layer: id, Points: p})
		}
		for _, lb := range l.labels[id] {
			s.Texts = append(s.Texts, Text{Layer: id, Position: lb.Position, String: lb.Text})
		}
	}

	lib := NewLibrary(l.Name)
	lib.Modified, lib.Accessed = now, now
	lib.Structures = []*Structure{s}
	return lib
}
