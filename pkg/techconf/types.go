package techconf

import (
	"fmt"
	"strings"
)

// Kind distinguishes the three construct variants
type Kind int

const (
	Material Kind = iota + 1
	Metal
	Via
)

func (k Kind) String() string {
	switch k {
	case Material:
		return "material"
	case Metal:
		return "metal"
	case Via:
		return "via"
	}
	return "unknown"
}

// Construct holds the raw tables of one material, metal or via
type Construct struct {
	Kind  Kind
	Name  string
	GDS   []string // primitive layer stack
	Bloat []int64  // per stack element, database units
	Text  string   // text label layer
	Pin   string   // pin marker layer, metals only
	Mask  []string // layers subtracted from the stack, materials only
}

// BloatAt returns the configured bloat of the i-th stack layer, zero when
// not configured
func (c *Construct) BloatAt(i int) int64 {
	if i < len(c.Bloat) {
		return c.Bloat[i]
	}
	return 0
}

// Warning is a non-fatal problem found while parsing
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Tech is the parsed technology description
type Tech struct {
	Scale     Scale
	HasScale  bool
	Layers    []string // GDS layer names in declaration order
	Major     []int
	Minor     []int
	Align     string // alignment / PR boundary layer, empty when not configured
	Materials []*Construct
	Metals    []*Construct
	Vias      []*Construct
	Aliases   map[string]string // <base>_name assignments
	Warnings  []Warning
}

// Constructs returns all constructs: materials, then metals, then vias
func (t *Tech) Constructs() []*Construct {
	out := make([]*Construct, 0, len(t.Materials)+len(t.Metals)+len(t.Vias))
	out = append(out, t.Materials...)
	out = append(out, t.Metals...)
	return append(out, t.Vias...)
}

// Registry builds the GDS layer registry from the layers, major and minor
// tables of the gds block
func (t *Tech) Registry() (*Registry, error) {
	if len(t.Layers) == 0 {
		return nil, fmt.Errorf("no GDS layer table (string_table layers in block gds)")
	}
	if len(t.Major) < len(t.Layers) || len(t.Minor) < len(t.Layers) {
		return nil, fmt.Errorf("GDS layer table has %d names but %d major and %d minor numbers",
			len(t.Layers), len(t.Major), len(t.Minor))
	}

	layers := make([]Layer, len(t.Layers))
	for i, name := range t.Layers {
		layers[i] = Layer{Name: name, Major: t.Major[i], Minor: t.Minor[i]}
	}
	return NewRegistry(layers), nil
}

// constructSet keeps constructs in first-seen order with case-insensitive keys
type constructSet struct {
	kind  Kind
	order []*Construct
	byKey map[string]*Construct
}

func newConstructSet(kind Kind) *constructSet {
	return &constructSet{kind: kind, byKey: make(map[string]*Construct)}
}

func (cs *constructSet) get(name string) *Construct {
	key := strings.ToLower(name)
	if c, ok := cs.byKey[key]; ok {
		return c
	}
	c := &Construct{Kind: cs.kind, Name: name}
	cs.byKey[key] = c
	cs.order = append(cs.order, c)
	return c
}
