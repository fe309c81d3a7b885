package techconf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Block names that give keywords their meaning
const (
	blockGDS       = "gds"
	blockMaterials = "materials"
	blockMetal     = "metal"
	blockVias      = "vias"
)

// ParseFile reads and parses a technology description file
func ParseFile(filename string) (*Tech, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a technology description. Lines that cannot be tokenized or
// that carry statements this package does not use are skipped; only read
// errors fail the parse.
func Parse(r io.Reader) (*Tech, error) {
	p := newParser()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var scope Scope
	line := 0
	for scanner.Scan() {
		line++
		p.line = line

		toks, err := tokenize(scanner.Text())
		if err != nil {
			p.warnf("skipped malformed line: %v", err)
			continue
		}
		if len(toks) == 0 {
			continue
		}
		scope = p.statement(scope, toks)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read technology file: %w", err)
	}

	return p.finish(), nil
}

type parser struct {
	tech      *Tech
	line      int
	materials *constructSet
	metals    *constructSet
	vias      *constructSet // keyed by base name until aliases are resolved
	viaText   map[string]string
}

func newParser() *parser {
	return &parser{
		tech:      &Tech{Aliases: make(map[string]string)},
		materials: newConstructSet(Material),
		metals:    newConstructSet(Metal),
		vias:      newConstructSet(Via),
		viaText:   make(map[string]string),
	}
}

func (p *parser) warnf(format string, args ...any) {
	p.tech.Warnings = append(p.tech.Warnings, Warning{Line: p.line, Message: fmt.Sprintf(format, args...)})
}

// statement applies one tokenized line and returns the scope for the next
func (p *parser) statement(scope Scope, toks []string) Scope {
	switch kw := strings.ToLower(toks[0]); {
	case kw == "begin" && len(toks) >= 2:
		return scope.Push(strings.ToLower(toks[1]))
	case kw == "end":
		return scope.Pop()
	case kw == "real" && len(toks) >= 3 && strings.ToLower(toks[1]) == "scale":
		p.scale(toks[2])
	case kw == "string" && len(toks) >= 3:
		p.stringStmt(scope, strings.ToLower(toks[1]), toks[2])
	case kw == "string_table" && len(toks) >= 2:
		p.stringTable(scope, toks[1], toks[2:])
	case kw == "int_table" && len(toks) >= 3:
		p.intTable(scope, strings.ToLower(toks[1]), toks[2:])
	}
	return scope
}

func (p *parser) scale(value string) {
	s, err := ParseScale(value)
	if err != nil {
		p.warnf("%v", err)
		return
	}
	p.tech.Scale = s
	p.tech.HasScale = true
}

func (p *parser) stringStmt(scope Scope, key, value string) {
	switch {
	case strings.HasSuffix(key, "_name"):
		p.tech.Aliases[strings.TrimSuffix(key, "_name")] = value

	case strings.HasSuffix(key, "gds_pin"):
		if !scope.In(blockMetal) {
			p.warnf("pin layer %q outside a metal block ignored (scope %v)", key, []string(scope))
			return
		}
		metal := strings.TrimSuffix(strings.TrimSuffix(key, "gds_pin"), "_")
		p.metals.get(metal).Pin = value

	case strings.HasSuffix(key, "gds_text"):
		base := strings.TrimSuffix(strings.TrimSuffix(key, "gds_text"), "_")
		if scope.In(blockMetal) {
			p.metals.get(base).Text = value
			return
		}
		if material, ok := scope.InNamedChild(blockMaterials); ok {
			p.materials.get(material).Text = value
			return
		}
		if scope.In(blockVias) {
			p.viaText[base] = value
			return
		}
		p.warnf("text layer %q outside metal, materials or vias ignored", key)

	case key == "gds_align":
		p.tech.Align = value
	}
}

func (p *parser) stringTable(scope Scope, name string, entries []string) {
	key := strings.ToLower(name)
	values := append([]string(nil), entries...)

	if scope.Top() == blockGDS && key == "layers" {
		p.tech.Layers = values
		return
	}

	if material, ok := scope.InNamedChild(blockMaterials); ok {
		switch key {
		case "gds":
			p.materials.get(material).GDS = values
			return
		case "gds_mask":
			p.materials.get(material).Mask = values
			return
		}
	}

	if scope.In(blockMetal) && strings.HasSuffix(key, "_gds") {
		p.metals.get(name[:len(name)-len("_gds")]).GDS = values
		return
	}

	if scope.In(blockVias) && strings.HasSuffix(key, "_gds") {
		p.vias.get(name[:len(name)-len("_gds")]).GDS = values
	}
}

func (p *parser) intTable(scope Scope, key string, entries []string) {
	var nums []int64
	for _, e := range entries {
		n, err := strconv.ParseInt(e, 10, 64)
		if err != nil {
			p.warnf("non-integer %q in int_table %s ignored", e, key)
			continue
		}
		nums = append(nums, n)
	}

	if scope.Top() == blockGDS {
		switch key {
		case "major":
			p.tech.Major = toInts(nums)
			return
		case "minor":
			p.tech.Minor = toInts(nums)
			return
		}
	}

	if material, ok := scope.InNamedChild(blockMaterials); ok && key == "gds_bloat" {
		p.materials.get(material).Bloat = nums
		return
	}

	if strings.HasSuffix(key, "_gds_bloat") {
		base := strings.TrimSuffix(key, "_gds_bloat")
		switch {
		case scope.In(blockMetal):
			p.metals.get(base).Bloat = nums
		case scope.In(blockVias):
			p.vias.get(base).Bloat = nums
		}
	}
}

// finish resolves via names through the alias table and drops constructs
// that never received a layer stack
func (p *parser) finish() *Tech {
	t := p.tech

	bases := make([]string, 0, len(p.viaText))
	for base := range p.viaText {
		bases = append(bases, base)
	}
	sort.Strings(bases)
	for _, base := range bases {
		p.vias.get(base).Text = p.viaText[base]
	}

	for _, via := range p.vias.order {
		if alias, ok := t.Aliases[strings.ToLower(via.Name)]; ok {
			via.Name = alias
		}
	}

	t.Materials = p.complete(p.materials)
	t.Metals = p.complete(p.metals)
	t.Vias = p.complete(p.vias)
	return t
}

func (p *parser) complete(cs *constructSet) []*Construct {
	var out []*Construct
	for _, c := range cs.order {
		if len(c.GDS) == 0 {
			p.tech.Warnings = append(p.tech.Warnings, Warning{
				Message: fmt.Sprintf("%s %q has no gds layer stack and is ignored", c.Kind, c.Name),
			})
			continue
		}
		out = append(out, c)
	}
	return out
}

func toInts(v []int64) []int {
	out := make([]int, len(v))
	for i, n := range v {
		out[i] = int(n)
	}
	return out
}
