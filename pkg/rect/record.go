// Package rect reads and writes RECT files: one axis-aligned rectangle per
// line, tagged with a construct name and an optional label.
//
//	bbox <x0> <y0> <x1> <y1>
//	rect <label> <construct> <x0> <y0> <x1> <y1>
//	inrect <label> <construct> <x0> <y0> <x1> <y1>
//	outrect <label> <construct> <x0> <y0> <x1> <y1>
package rect

import (
	"fmt"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
)

const (
	// Unnamed is the label placeholder of a rectangle without a name
	Unnamed = "#"

	// Align is the construct name of alignment / PR boundary records
	Align = "$align"
)

// Kind is the record keyword
type Kind int

const (
	KindRect Kind = iota + 1
	KindInRect
	KindOutRect
	KindBBox
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindInRect:
		return "inrect"
	case KindOutRect:
		return "outrect"
	case KindBBox:
		return "bbox"
	}
	return "unknown"
}

func kindOf(keyword string) (Kind, bool) {
	switch keyword {
	case "rect":
		return KindRect, true
	case "inrect":
		return KindInRect, true
	case "outrect":
		return KindOutRect, true
	case "bbox":
		return KindBBox, true
	}
	return 0, false
}

// Record is one line of a RECT file. Label and Construct are empty for
// KindBBox.
type Record struct {
	Kind      Kind
	Label     string
	Construct string
	Box       geom.Box
}

// Named reports whether the record carries a label
func (r Record) Named() bool {
	return r.Label != "" && r.Label != Unnamed
}

// IsPin reports whether the record marks a pin, whatever its direction
func (r Record) IsPin() bool {
	return r.Kind == KindInRect || r.Kind == KindOutRect
}

// IsAlign reports whether the record belongs to the alignment layer
func (r Record) IsAlign() bool {
	return r.Construct == Align
}

// String returns the record in file syntax, without a newline
func (r Record) String() string {
	b := r.Box
	if r.Kind == KindBBox {
		return fmt.Sprintf("bbox %d %d %d %d", b.X0, b.Y0, b.X1, b.Y1)
	}
	label := r.Label
	if label == "" {
		label = Unnamed
	}
	return fmt.Sprintf("%s %s %s %d %d %d %d", r.Kind, label, r.Construct, b.X0, b.Y0, b.X1, b.Y1)
}
