package convert

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/gdsrect/pkg/gds"
	"github.com/OpenTraceLab/gdsrect/pkg/geom"
	"github.com/OpenTraceLab/gdsrect/pkg/techconf"
)

// Source resolves primitive layer names against a loaded layout. It
// implements layermodel.RegionSource.
type Source struct {
	layout   *gds.Layout
	registry *techconf.Registry
}

// NewSource binds a layout to a layer registry
func NewSource(layout *gds.Layout, registry *techconf.Registry) *Source {
	return &Source{layout: layout, registry: registry}
}

func layerID(reg *techconf.Registry, name string) (gds.LayerID, error) {
	l, ok := reg.Lookup(name)
	if !ok {
		return gds.LayerID{}, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	return gds.LayerID{Layer: l.Major, Datatype: l.Minor}, nil
}

// Region returns the region drawn on a named layer
func (s *Source) Region(name string) (geom.Region, error) {
	id, err := layerID(s.registry, name)
	if err != nil {
		return geom.Region{}, err
	}
	return s.layout.Region(id), nil
}

// Labels returns the labels on a named layer; unknown names have none
func (s *Source) Labels(name string) []gds.Label {
	id, err := layerID(s.registry, name)
	if err != nil {
		return nil
	}
	return s.layout.Labels(id)
}

// LabelAt returns the label naming box: a label on one of the given layers
// whose position lies inside the box, border included. Layers are searched
// in order and the last match wins. Without a match it returns "", false.
func (s *Source) LabelAt(box geom.Box, layers []string) (string, bool) {
	text, found := "", false
	for _, name := range layers {
		for _, lb := range s.Labels(name) {
			if box.Contains(lb.Position) {
				text, found = lb.Text, true
			}
		}
	}
	return text, found
}

// labelField makes a label usable as a single RECT field
func labelField(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, "_")
}
