package convert

import (
	"errors"
	"fmt"
	"io"

	"github.com/OpenTraceLab/gdsrect/pkg/gds"
	"github.com/OpenTraceLab/gdsrect/pkg/geom"
	"github.com/OpenTraceLab/gdsrect/pkg/layermodel"
	"github.com/OpenTraceLab/gdsrect/pkg/rect"
)

// Expander draws RECT records into a layout, one record at a time
type Expander struct {
	model  *layermodel.Model
	layout *gds.Layout
	opts   Options
	count  int
}

// NewExpander creates an Expander drawing into a new layout with the given
// structure name
func NewExpander(model *layermodel.Model, name string, opts Options) *Expander {
	return &Expander{model: model, layout: gds.NewLayout(name), opts: opts}
}

// Layout returns the layout drawn so far
func (e *Expander) Layout() *gds.Layout {
	return e.layout
}

// Add draws one record. Names that are neither a construct, the alignment
// marker nor a GDS layer yield ErrUnknownLayer.
func (e *Expander) Add(rec rect.Record) error {
	if rec.Kind == rect.KindBBox {
		return nil
	}
	e.count++

	if rec.IsAlign() {
		return e.addAlign(rec)
	}
	if con, ok := e.model.Lookup(rec.Construct); ok {
		return e.addConstruct(rec, con)
	}
	return e.addRaw(rec)
}

func (e *Expander) id(name string) (gds.LayerID, error) {
	return layerID(e.model.Registry, name)
}

// nm converts a RECT box to nanometers
func (e *Expander) nm(b geom.Box) geom.Box {
	s := e.model.Scale
	return geom.NewBox(s.FromRect(b.X0), s.FromRect(b.Y0), s.FromRect(b.X1), s.FromRect(b.Y1))
}

func (e *Expander) addAlign(rec rect.Record) error {
	if e.model.Align == "" {
		return fmt.Errorf("%w: %s record but no alignment layer configured", ErrUnknownLayer, rect.Align)
	}
	id, err := e.id(e.model.Align)
	if err != nil {
		return err
	}

	box := e.nm(rec.Box)
	if rec.Named() {
		e.layout.AddLabel(id, rec.Label, geom.Point{X: box.X0, Y: box.Y0})
		return nil
	}
	e.layout.AddBox(id, box)
	return nil
}

func (e *Expander) addConstruct(rec rect.Record, con *layermodel.Construct) error {
	for i, layer := range con.GDS {
		id, err := e.id(layer)
		if err != nil {
			return fmt.Errorf("%s: %w", con.Name, err)
		}
		e.layout.AddBox(id, e.nm(rec.Box.Bloat(con.BloatAt(i))))
	}

	if rec.IsPin() && con.Pin != "" {
		id, err := e.id(con.Pin)
		if err != nil {
			return fmt.Errorf("%s: %w", con.Name, err)
		}
		e.layout.AddBox(id, e.nm(rec.Box))
	}

	if rec.Named() {
		id, err := e.id(con.LabelLayer())
		if err != nil {
			return fmt.Errorf("%s: %w", con.Name, err)
		}
		e.layout.AddLabel(id, rec.Label, e.nm(rec.Box).Center())
	}
	return nil
}

// addRaw draws a record whose construct is a plain GDS layer name
func (e *Expander) addRaw(rec rect.Record) error {
	id, err := e.id(rec.Construct)
	if err != nil {
		return err
	}

	box := e.nm(rec.Box)
	e.layout.AddBox(id, box)
	if rec.Named() {
		e.layout.AddLabel(id, rec.Label, box.Center())
	}
	return nil
}

// ToLayout reads RECT records from r and draws them into a layout named
// name. Parse errors and unknown names stop the conversion whatever the
// force setting.
func ToLayout(r io.Reader, model *layermodel.Model, name string, opts Options) (*gds.Layout, error) {
	e := NewExpander(model, name, opts)
	rd := rect.NewReader(r)

	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := e.Add(rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", rd.Line(), err)
		}
	}

	if n := rd.Skipped(); n > 0 {
		opts.logger().Printf("warning: %d line(s) with an unknown keyword ignored", n)
	}
	opts.debugf("%d record(s) drawn into %s", e.count, name)
	return e.layout, nil
}
