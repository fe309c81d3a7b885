package layermodel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/gdsrect/pkg/techconf"
)

// Policy holds the optional compilation rules
type Policy struct {
	// TextAsPin treats the text layer of a metal without a pin layer as its
	// pin marker, as long as it differs from the first stack layer
	TextAsPin bool
}

// DefaultPolicy returns the policy used by the command line tools
func DefaultPolicy() Policy {
	return Policy{TextAsPin: true}
}

// Construct is a compiled material, metal or via
type Construct struct {
	*techconf.Construct

	// Region is the body of the construct. For split metals it excludes
	// the pin part.
	Region Expr

	// PinRegion is the pin part of a split metal, nil otherwise
	PinRegion Expr

	// PinLayer is the layer used to split PinRegion from Region: the
	// configured pin layer, or the text layer under Policy.TextAsPin
	PinLayer string

	// LabelLayers are searched for labels naming a rectangle of this construct
	LabelLayers []string
}

// LabelLayer is where the re-expansion direction places a label: the text
// layer, or the first stack layer when none is configured
func (c *Construct) LabelLayer() string {
	if c.Text != "" {
		return c.Text
	}
	return c.GDS[0]
}

// Model is the compiled technology
type Model struct {
	Registry  *techconf.Registry
	Scale     techconf.Scale
	Align     string
	Materials []*Construct
	Metals    []*Construct
	Vias      []*Construct
	Policy    Policy

	byName map[string]*Construct
}

// Build compiles the parsed technology. A missing layer table is fatal and
// returns a nil model. Other problems are reported as joined *ConfigError
// values alongside the model; callers running in force mode may continue
// past the ones that are Forceable.
func Build(tech *techconf.Tech, policy Policy) (*Model, error) {
	reg, err := tech.Registry()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", &ConfigError{Role: "layers"}, err)
	}

	m := &Model{
		Registry: reg,
		Scale:    tech.Scale,
		Align:    tech.Align,
		Policy:   policy,
		byName:   make(map[string]*Construct),
	}

	for _, c := range tech.Materials {
		m.Materials = append(m.Materials, m.add(compileMaterial(c)))
	}
	for _, c := range tech.Metals {
		m.Metals = append(m.Metals, m.add(compileMetal(c, policy)))
	}
	for _, c := range tech.Vias {
		m.Vias = append(m.Vias, m.add(compileVia(c)))
	}

	var errs []error
	if !tech.HasScale {
		errs = append(errs, &ConfigError{Role: "scale"})
	}
	errs = append(errs, m.validate()...)
	return m, errors.Join(errs...)
}

func (m *Model) add(c *Construct) *Construct {
	key := strings.ToLower(c.Name)
	if _, dup := m.byName[key]; !dup {
		m.byName[key] = c
	}
	return c
}

func compileMaterial(c *techconf.Construct) *Construct {
	out := &Construct{Construct: c, Region: AndAll(c.GDS)}
	if len(c.Mask) > 0 {
		out.Region = Not(out.Region, OrAll(c.Mask))
	}
	out.LabelLayers = labelLayers(c.GDS, c.Text)
	return out
}

func compileMetal(c *techconf.Construct, policy Policy) *Construct {
	stack := AndAll(c.GDS)
	out := &Construct{Construct: c, Region: stack}

	switch {
	case c.Pin != "":
		out.PinLayer = c.Pin
	case policy.TextAsPin && c.Text != "" && c.Text != c.GDS[0]:
		out.PinLayer = c.Text
	}
	if out.PinLayer != "" {
		out.Region = Not(stack, Layer(out.PinLayer))
		out.PinRegion = And(stack, Layer(out.PinLayer))
	}

	out.LabelLayers = labelLayers(c.GDS, c.Pin, c.Text)
	return out
}

func compileVia(c *techconf.Construct) *Construct {
	return &Construct{
		Construct:   c,
		Region:      AndAll(c.GDS),
		LabelLayers: labelLayers(c.GDS, c.Text),
	}
}

func labelLayers(stack []string, extra ...string) []string {
	out := append([]string(nil), stack...)
	for _, name := range extra {
		if name != "" && !contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func (m *Model) validate() []error {
	var errs []error
	check := func(construct, role, layer string) {
		if layer == "" {
			return
		}
		if _, ok := m.Registry.Lookup(layer); !ok {
			errs = append(errs, &ConfigError{Construct: construct, Role: role, Layer: layer})
		}
	}

	for _, c := range m.Constructs() {
		for _, layer := range c.GDS {
			check(c.Name, "stack", layer)
		}
		check(c.Name, "text", c.Text)
		check(c.Name, "pin", c.Pin)
		for _, layer := range c.Mask {
			check(c.Name, "mask", layer)
		}
	}
	check("", "align", m.Align)
	return errs
}

// Constructs returns materials, then metals, then vias
func (m *Model) Constructs() []*Construct {
	out := make([]*Construct, 0, len(m.Materials)+len(m.Metals)+len(m.Vias))
	out = append(out, m.Materials...)
	out = append(out, m.Metals...)
	return append(out, m.Vias...)
}

// Lookup finds a construct by name, ignoring case. When two constructs
// share a name the one declared first wins, materials before metals before
// vias.
func (m *Model) Lookup(name string) (*Construct, bool) {
	c, ok := m.byName[strings.ToLower(name)]
	return c, ok
}

// UsedLayers returns every primitive layer the model refers to, in first
// reference order: stacks, masks, text and pin layers, then the alignment
// layer
func (m *Model) UsedLayers() []string {
	var out []string
	add := func(names ...string) {
		for _, name := range names {
			if name != "" && !contains(out, name) {
				out = append(out, name)
			}
		}
	}
	for _, c := range m.Constructs() {
		add(c.GDS...)
		add(c.Mask...)
	}
	for _, c := range m.Constructs() {
		add(c.Text, c.Pin)
	}
	add(m.Align)
	return out
}
