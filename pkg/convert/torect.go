package convert

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/gdsrect/pkg/gds"
	"github.com/OpenTraceLab/gdsrect/pkg/geom"
	"github.com/OpenTraceLab/gdsrect/pkg/layermodel"
	"github.com/OpenTraceLab/gdsrect/pkg/rect"
)

// ToRect decomposes a flat layout into RECT records.
//
// Records come out as: the bounding box, the alignment boundary and its
// labels, material rectangles, metal pin rectangles, then metal and via
// body rectangles. Within a group constructs keep their declaration order
// and rectangles run bottom to top, left to right.
func ToRect(layout *gds.Layout, model *layermodel.Model, opts Options) ([]rect.Record, error) {
	c := &decomposer{
		model: model,
		src:   NewSource(layout, model.Registry),
		opts:  opts,
	}

	if err := c.checkLayers(layout); err != nil {
		return nil, err
	}

	bb := layout.BBox()
	if bb.IsEmpty() {
		bb = geom.Box{}
	}
	c.records = append(c.records, rect.Record{Kind: rect.KindBBox, Box: c.scale(bb)})

	if err := c.align(); err != nil {
		return nil, err
	}

	steps := []struct {
		kind       rect.Kind
		constructs []*layermodel.Construct
		pins       bool
	}{
		{rect.KindRect, model.Materials, false},
		{rect.KindInRect, model.Metals, true},
		{rect.KindRect, model.Metals, false},
		{rect.KindRect, model.Vias, false},
	}
	for _, step := range steps {
		for _, con := range step.constructs {
			expr := con.Region
			if step.pins {
				expr = con.PinRegion
			}
			if expr == nil {
				continue
			}
			if err := c.construct(step.kind, con, expr); err != nil {
				return nil, err
			}
		}
	}

	if c.skipped > 0 {
		opts.logger().Printf("warning: %d problem(s) skipped in force mode, output may be incomplete", c.skipped)
	}
	return c.records, nil
}

type decomposer struct {
	model   *layermodel.Model
	src     *Source
	opts    Options
	records []rect.Record
	skipped int
}

func (c *decomposer) scale(b geom.Box) geom.Box {
	s := c.model.Scale
	return geom.NewBox(s.ToRect(b.X0), s.ToRect(b.Y0), s.ToRect(b.X1), s.ToRect(b.Y1))
}

// checkLayers fails when the layout uses a layer the model does not map
func (c *decomposer) checkLayers(layout *gds.Layout) error {
	used := make(map[gds.LayerID]bool)
	for _, name := range c.model.UsedLayers() {
		if id, err := layerID(c.model.Registry, name); err == nil {
			used[id] = true
		}
	}

	var unmapped []gds.LayerID
	for _, id := range layout.Layers() {
		if !used[id] {
			unmapped = append(unmapped, id)
			c.opts.logger().Printf("warning: GDS layer %v is not used by any construct and is skipped", id)
		}
	}
	if len(unmapped) == 0 {
		return nil
	}

	f := &Failure{Kind: UnmappedLayer, Detail: fmt.Sprintf("%d layer(s), first %v", len(unmapped), unmapped[0])}
	if c.opts.Force {
		c.skipped++
		return nil
	}
	return f
}

func (c *decomposer) align() error {
	if c.model.Align == "" {
		return nil
	}

	region, err := c.src.Region(c.model.Align)
	if err != nil {
		return c.evalError(rect.Align, err)
	}

	found := 0
	for _, shape := range region.Decompose() {
		box, err := c.accept(rect.Align, shape)
		if err != nil {
			return err
		}
		if box == nil {
			continue
		}
		if found++; found > 1 {
			f := &Failure{Kind: MultipleAlign, Construct: c.model.Align, Detail: box.String()}
			if err := c.opts.check(f, &c.skipped); err != nil {
				return err
			}
		}
		c.records = append(c.records, rect.Record{
			Kind:      rect.KindRect,
			Label:     rect.Unnamed,
			Construct: rect.Align,
			Box:       c.scale(*box),
		})
	}

	for _, lb := range c.src.Labels(c.model.Align) {
		text := labelField(lb.Text)
		if text == "" {
			continue
		}
		p := geom.Box{X0: lb.Position.X, Y0: lb.Position.Y, X1: lb.Position.X, Y1: lb.Position.Y}
		c.records = append(c.records, rect.Record{
			Kind:      rect.KindRect,
			Label:     text,
			Construct: rect.Align,
			Box:       c.scale(p),
		})
	}
	return nil
}

func (c *decomposer) construct(kind rect.Kind, con *layermodel.Construct, expr layermodel.Expr) error {
	region, err := expr.Eval(c.src)
	if err != nil {
		return c.evalError(con.Name, err)
	}

	shapes := region.Decompose()
	c.opts.debugf("%s %s: %d shape(s) from %s", kind, con.Name, len(shapes), expr)

	for _, shape := range shapes {
		box, err := c.accept(con.Name, shape)
		if err != nil {
			return err
		}
		if box == nil {
			continue
		}

		label := rect.Unnamed
		if text, ok := c.src.LabelAt(*box, con.LabelLayers); ok {
			if field := labelField(text); field != "" {
				label = field
			}
		}
		c.records = append(c.records, rect.Record{
			Kind:      kind,
			Label:     label,
			Construct: con.Name,
			Box:       c.scale(*box),
		})
	}
	return nil
}

// accept returns the box of a decomposed shape, or nil with a nil error
// when the shape was skipped in force mode
func (c *decomposer) accept(construct string, shape geom.Shape) (*geom.Box, error) {
	var kind FailureKind
	switch {
	case len(shape.Polygon) < 3:
		kind = MissingPolygon
	case shape.Kind == geom.ShapeBox:
		box := shape.Box()
		return &box, nil
	case shape.Kind == geom.ShapeRectilinear:
		kind = RectilinearShape
	case shape.Kind == geom.ShapeHalfManhattan:
		kind = HalfManhattanShape
	case shape.Kind == geom.ShapeNonManhattan:
		kind = NonManhattanShape
	default:
		kind = UnknownShape
	}

	f := &Failure{Kind: kind, Construct: construct, Detail: shape.Polygon.String()}
	return nil, c.opts.check(f, &c.skipped)
}

// evalError handles a construct whose layers cannot be resolved, which only
// happens when configuration errors were forced past
func (c *decomposer) evalError(construct string, err error) error {
	if errors.Is(err, ErrUnknownLayer) && c.opts.Force {
		c.opts.logger().Printf("warning: %s skipped: %v", construct, err)
		c.skipped++
		return nil
	}
	return fmt.Errorf("%s: %w", construct, err)
}
