// Package gds reads and writes GDSII stream files and flattens their cell
// hierarchy into a Layout of per-layer polygons and text labels.
package gds

import (
	"fmt"
	"time"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
)

// Default units written by this package: coordinates in nanometers,
// user unit of one micrometer.
const (
	DefaultUserUnit  = 1e-3
	DefaultMeterUnit = 1e-9
)

// LayerID is a GDSII (layer, datatype) pair. For text elements the second
// number is the texttype.
type LayerID struct {
	Layer    int
	Datatype int
}

func (l LayerID) String() string {
	return fmt.Sprintf("%d/%d", l.Layer, l.Datatype)
}

// Library is the content of one GDSII stream file
type Library struct {
	Name       string
	UserUnit   float64 // size of a database unit in user units
	MeterUnit  float64 // size of a database unit in meters
	Modified   time.Time
	Accessed   time.Time
	Structures []*Structure
}

// NewLibrary creates an empty library with nanometer database units
func NewLibrary(name string) *Library {
	return &Library{
		Name:      name,
		UserUnit:  DefaultUserUnit,
		MeterUnit: DefaultMeterUnit,
	}
}

// Structure returns the structure with the given name
func (lib *Library) Structure(name string) (*Structure, bool) {
	for _, s := range lib.Structures {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// TopStructures returns the structures not referenced by any other structure,
// in file order
func (lib *Library) TopStructures() []*Structure {
	referenced := make(map[string]bool)
	for _, s := range lib.Structures {
		for _, ref := range s.Refs {
			referenced[ref.Name] = true
		}
	}

	var tops []*Structure
	for _, s := range lib.Structures {
		if !referenced[s.Name] {
			tops = append(tops, s)
		}
	}
	return tops
}

// Structure is a GDSII cell
type Structure struct {
	Name       string
	Modified   time.Time
	Accessed   time.Time
	Boundaries []Boundary
	Paths      []Path
	Texts      []Text
	Refs       []Ref
}

// Boundary is a filled polygon. BOX elements are read as boundaries with the
// boxtype as datatype.
type Boundary struct {
	Layer  LayerID
	Points geom.Polygon
}

// Path is a wire with a width along a sequence of points
type Path struct {
	Layer    LayerID
	Width    int64
	PathType int
	BeginExt int64
	EndExt   int64
	Points   []geom.Point
}

// Text is a label at a point
type Text struct {
	Layer    LayerID
	Position geom.Point
	String   string
	Strans   Strans
}

// Strans is the transformation of a reference or text element.
// Reflection about the x axis is applied before magnification and rotation.
type Strans struct {
	Reflect bool
	AbsMag  bool
	AbsAng  bool
	Mag     float64 // 0 means 1
	Angle   float64 // degrees counter-clockwise
}

func (s Strans) isIdentity() bool {
	return !s.Reflect && (s.Mag == 0 || s.Mag == 1) && s.Angle == 0
}

// Ref is a structure reference. Single references (SREF) have Cols and Rows
// equal to zero; array references (AREF) place Cols x Rows copies stepping
// by ColStep and RowStep.
type Ref struct {
	Name    string
	Strans  Strans
	Origin  geom.Point
	Cols    int
	Rows    int
	ColStep geom.Point
	RowStep geom.Point
}

// IsArray reports whether the reference is an AREF
func (r Ref) IsArray() bool {
	return r.Cols > 0 && r.Rows > 0
}
