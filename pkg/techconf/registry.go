package techconf

// Layer is one entry of the GDS layer registry
type Layer struct {
	Name  string
	Major int // GDS layer number
	Minor int // GDS datatype
}

// Registry provides lookup of GDS layers by name or by number
type Registry struct {
	layers   []Layer
	byName   map[string]*Layer
	byNumber map[[2]int]*Layer
}

// NewRegistry creates a Registry from a slice of layers. When a number pair
// is declared under several names the first one wins for reverse lookup.
func NewRegistry(layers []Layer) *Registry {
	r := &Registry{
		layers:   append([]Layer(nil), layers...),
		byName:   make(map[string]*Layer),
		byNumber: make(map[[2]int]*Layer),
	}

	for i := range r.layers {
		layer := &r.layers[i]
		r.byName[layer.Name] = layer
		key := [2]int{layer.Major, layer.Minor}
		if _, ok := r.byNumber[key]; !ok {
			r.byNumber[key] = layer
		}
	}

	return r
}

// Lookup retrieves a layer by its name
func (r *Registry) Lookup(name string) (Layer, bool) {
	layer, ok := r.byName[name]
	if !ok {
		return Layer{}, false
	}
	return *layer, true
}

// ByNumber retrieves a layer by its (major, minor) pair
func (r *Registry) ByNumber(major, minor int) (Layer, bool) {
	layer, ok := r.byNumber[[2]int{major, minor}]
	if !ok {
		return Layer{}, false
	}
	return *layer, true
}

// Layers returns all layers in declaration order
func (r *Registry) Layers() []Layer {
	return append([]Layer(nil), r.layers...)
}

// Len returns the number of declared layers
func (r *Registry) Len() int {
	return len(r.layers)
}
