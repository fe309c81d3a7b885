package gds

import (
	"bytes"
	"encoding/hex"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
)

func TestReal8(t *testing.T) {
	tests := []struct {
		value float64
		hex   string
	}{
		{1.0, "4110000000000000"},
		{-2.5, "c128000000000000"},
		{90, "425a000000000000"},
		{0, "0000000000000000"},
	}

	for _, tt := range tests {
		b := encodeReal8(tt.value)
		if got := hex.EncodeToString(b[:]); got != tt.hex {
			t.Errorf("encodeReal8(%v) = %s, want %s", tt.value, got, tt.hex)
		}
		if got := decodeReal8(b[:]); got != tt.value {
			t.Errorf("decodeReal8(%s) = %v, want %v", tt.hex, got, tt.value)
		}
	}

	for _, v := range []float64{1e-3, 1e-9, 0.5e-9, 123.456} {
		b := encodeReal8(v)
		if got := decodeReal8(b[:]); math.Abs(got-v)/v > 1e-12 {
			t.Errorf("round trip of %v gave %v", v, got)
		}
	}
}

func sampleLibrary() *Library {
	cell := &Structure{
		Name: "cell",
		Boundaries: []Boundary{
			{Layer: LayerID{Layer: 1}, Points: geom.NewBox(0, 0, 10, 20).Polygon()},
		},
		Texts: []Text{
			{Layer: LayerID{Layer: 1, Datatype: 5}, Position: geom.Point{X: 5, Y: 5}, String: "A"},
		},
	}
	top := &Structure{
		Name: "top",
		Boundaries: []Boundary{
			{Layer: LayerID{Layer: 2}, Points: geom.NewBox(-100, -100, -50, -50).Polygon()},
		},
		Paths: []Path{
			{Layer: LayerID{Layer: 3}, Width: 10, PathType: 2, Points: []geom.Point{{X: 0, Y: 200}, {X: 100, Y: 200}}},
		},
		Refs: []Ref{
			{Name: "cell", Origin: geom.Point{X: 1000, Y: 0}, Strans: Strans{Angle: 90}},
			{Name: "cell", Origin: geom.Point{X: 0, Y: 1000}, Cols: 2, Rows: 1,
				ColStep: geom.Point{X: 100}, RowStep: geom.Point{Y: 100}},
		},
	}
	lib := NewLibrary("lib")
	lib.Structures = []*Structure{cell, top}
	return lib
}

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleLibrary()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	lib, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if lib.Name != "lib" {
		t.Errorf("Name = %q", lib.Name)
	}
	if math.Abs(lib.MeterUnit-1e-9) > 1e-20 {
		t.Errorf("MeterUnit = %v", lib.MeterUnit)
	}
	if len(lib.Structures) != 2 {
		t.Fatalf("got %d structures", len(lib.Structures))
	}

	top, ok := lib.Structure("top")
	if !ok {
		t.Fatalf("structure top missing")
	}
	if len(top.Refs) != 2 || !top.Refs[1].IsArray() || top.Refs[1].ColStep.X != 100 {
		t.Errorf("refs not preserved: %+v", top.Refs)
	}
	if top.Refs[0].Strans.Angle != 90 {
		t.Errorf("angle not preserved: %+v", top.Refs[0].Strans)
	}
	if len(top.Paths) != 1 || top.Paths[0].Width != 10 || top.Paths[0].PathType != 2 {
		t.Errorf("path not preserved: %+v", top.Paths)
	}

	cell, _ := lib.Structure("cell")
	if len(cell.Boundaries[0].Points) != 5 {
		t.Errorf("boundary should carry its closing vertex, got %v", cell.Boundaries[0].Points)
	}
	if cell.Texts[0].String != "A" || cell.Texts[0].Layer != (LayerID{Layer: 1, Datatype: 5}) {
		t.Errorf("text not preserved: %+v", cell.Texts[0])
	}
}

func TestFlatten(t *testing.T) {
	layout, err := Flatten(sampleLibrary(), "")
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if layout.Name != "top" {
		t.Errorf("Name = %q, want top", layout.Name)
	}

	// Rotated instance covers x in [980,1000], y in [0,10]; array instances
	// sit at (0,1000) and (100,1000)
	want := geom.NewRegion(
		geom.NewBox(980, 0, 1000, 10),
		geom.NewBox(0, 1000, 10, 1020),
		geom.NewBox(100, 1000, 110, 1020),
	)
	if got := layout.Region(LayerID{Layer: 1}); !got.Equal(want) {
		t.Errorf("layer 1 region = %v, want %v", got.Boxes(), want.Boxes())
	}

	labels := layout.Labels(LayerID{Layer: 1, Datatype: 5})
	if len(labels) != 3 {
		t.Fatalf("got %d labels, want 3", len(labels))
	}
	if labels[0].Position != (geom.Point{X: 995, Y: 5}) {
		t.Errorf("rotated label at %v, want (995,5)", labels[0].Position)
	}

	// Path with half-width extension at both ends
	path := layout.Region(LayerID{Layer: 3})
	if b := path.Boxes(); len(b) != 1 || b[0] != geom.NewBox(-5, 195, 105, 205) {
		t.Errorf("path region = %v", b)
	}

	if bb := layout.BBox(); bb != geom.NewBox(-100, -100, 1000, 1020) {
		t.Errorf("BBox() = %v", bb)
	}
}

func TestFlattenConvertsUnits(t *testing.T) {
	lib := NewLibrary("um")
	lib.MeterUnit = 1e-8
	lib.Structures = []*Structure{{
		Name:       "top",
		Boundaries: []Boundary{{Layer: LayerID{Layer: 1}, Points: geom.NewBox(0, 0, 2, 3).Polygon()}},
	}}

	layout, err := Flatten(lib, "")
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if b := layout.Region(LayerID{Layer: 1}).Boxes(); len(b) != 1 || b[0] != geom.NewBox(0, 0, 20, 30) {
		t.Errorf("scaled region = %v", b)
	}
}

func TestFlattenErrors(t *testing.T) {
	loop := NewLibrary("loop")
	loop.Structures = []*Structure{
		{Name: "a", Refs: []Ref{{Name: "b"}}},
		{Name: "b", Refs: []Ref{{Name: "a"}}},
	}
	if _, err := Flatten(loop, "a"); err == nil || !strings.Contains(err.Error(), "recursive") {
		t.Errorf("expected recursion error, got %v", err)
	}

	two := NewLibrary("two")
	two.Structures = []*Structure{{Name: "a"}, {Name: "b"}}
	if _, err := Flatten(two, ""); err == nil {
		t.Errorf("expected ambiguity error for two top structures")
	}
	if _, err := Flatten(two, "b"); err != nil {
		t.Errorf("explicit top failed: %v", err)
	}

	dangling := NewLibrary("dangling")
	dangling.Structures = []*Structure{{Name: "a", Refs: []Ref{{Name: "missing"}}}}
	if _, err := Flatten(dangling, ""); err == nil {
		t.Errorf("expected unknown structure error")
	}
}

func TestLayoutLibraryFile(t *testing.T) {
	layout := NewLayout("out")
	layout.AddBox(LayerID{Layer: 7}, geom.NewBox(0, 0, 100, 100))
	layout.AddLabel(LayerID{Layer: 7, Datatype: 1}, "né", geom.Point{X: 50, Y: 50})

	for _, name := range []string{"out.gds", "out.gds.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteFile(path, layout.Library()); err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if gz := len(raw) > 2 && raw[0] == 0x1f && raw[1] == 0x8b; gz != Compressed(name) {
				t.Errorf("gzip header present = %v for %s", gz, name)
			}

			back, err := LoadFile(path, "")
			if err != nil {
				t.Fatalf("LoadFile() error: %v", err)
			}
			if b := back.Region(LayerID{Layer: 7}).Boxes(); len(b) != 1 || b[0] != geom.NewBox(0, 0, 100, 100) {
				t.Errorf("region = %v", b)
			}
			labels := back.Labels(LayerID{Layer: 7, Datatype: 1})
			if len(labels) != 1 || labels[0].Text != "né" {
				t.Errorf("labels = %+v", labels)
			}
		})
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	if _, err := Read(strings.NewReader("not a gds file")); err == nil {
		t.Errorf("expected error for garbage input")
	}
	if _, err := Read(bytes.NewReader(nil)); err == nil {
		t.Errorf("expected error for empty input")
	}
}
