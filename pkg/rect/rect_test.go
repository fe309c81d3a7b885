package rect

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    Record
		wantErr bool
	}{
		{
			line: "bbox  0 0 1000 2000",
			want: Record{Kind: KindBBox, Box: geom.NewBox(0, 0, 1000, 2000)},
		},
		{
			line: "rect M1 v1 0 0 100 100",
			want: Record{Kind: KindRect, Label: "M1", Construct: "v1", Box: geom.NewBox(0, 0, 100, 100)},
		},
		{
			line: "inrect # m1 -5 -5 +5 5",
			want: Record{Kind: KindInRect, Label: "#", Construct: "m1", Box: geom.NewBox(-5, -5, 5, 5)},
		},
		{
			line: "outrect out[3] m2 10 20 0 0",
			want: Record{Kind: KindOutRect, Label: "out[3]", Construct: "m2", Box: geom.NewBox(0, 0, 10, 20)},
		},
		{
			line: "rect 12.5 $align 7 8 7 8",
			want: Record{Kind: KindRect, Label: "12.5", Construct: "$align", Box: geom.NewBox(7, 8, 7, 8)},
		},
		{
			line: "rect 42 m1 010 0 20 1",
			want: Record{Kind: KindRect, Label: "42", Construct: "m1", Box: geom.NewBox(10, 0, 20, 1)},
		},
		{
			line: "rect 12-3 m1 0 0 10 10",
			want: Record{Kind: KindRect, Label: "12-3", Construct: "m1", Box: geom.NewBox(0, 0, 10, 10)},
		},
		{
			line: "rect - m1 0 0 10 10",
			want: Record{Kind: KindRect, Label: "-", Construct: "m1", Box: geom.NewBox(0, 0, 10, 10)},
		},
		{
			line: "inrect 0+ m1 0 0 10 10",
			want: Record{Kind: KindInRect, Label: "0+", Construct: "m1", Box: geom.NewBox(0, 0, 10, 10)},
		},
		{line: "rect # m1 0 0 10", wantErr: true},
		{line: "rect # m1 0 0 - 10", wantErr: true},
		{line: "rect # m1 0 0 10 x", wantErr: true},
		{line: "bbox 0 0 10 10 10", wantErr: true},
		{line: "rect m1 0 0 10 10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLine error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestReaderSkipsNoise(t *testing.T) {
	input := `# generated
bbox 0 0 100 100

rect # $align 0 0 100 100
label foo 1 2
inrect A m1 0 0 10 10
   rect B m2 0 0 5 5
`
	rd := NewReader(strings.NewReader(input))
	var got []Record
	for {
		rec, err := rd.Read()
		if err != nil {
			break
		}
		got = append(got, rec)
	}

	if len(got) != 4 {
		t.Fatalf("Expected 4 records, got %d: %+v", len(got), got)
	}
	if rd.Skipped() != 1 {
		t.Errorf("Expected 1 skipped line, got %d", rd.Skipped())
	}
	if !got[1].IsAlign() || got[1].Named() {
		t.Errorf("Expected unnamed alignment box, got %+v", got[1])
	}
	if !got[2].IsPin() || got[2].Label != "A" {
		t.Errorf("Expected pin A, got %+v", got[2])
	}
	if got[3].Construct != "m2" {
		t.Errorf("Expected indented record to parse, got %+v", got[3])
	}
}

func TestReaderReportsLine(t *testing.T) {
	input := "bbox 0 0 1 1\n\nrect # m1 0 0 one 1\n"
	_, err := ReadAll(strings.NewReader(input))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if pe.Line != 3 {
		t.Errorf("Expected line 3, got %d", pe.Line)
	}
}

func TestWriteRead(t *testing.T) {
	records := []Record{
		{Kind: KindBBox, Box: geom.NewBox(-10, -10, 110, 90)},
		{Kind: KindRect, Label: Unnamed, Construct: Align, Box: geom.NewBox(0, 0, 100, 80)},
		{Kind: KindRect, Label: "CLK", Construct: Align, Box: geom.NewBox(5, 5, 5, 5)},
		{Kind: KindInRect, Label: "A", Construct: "m1", Box: geom.NewBox(0, 0, 4, 4)},
		{Kind: KindRect, Label: Unnamed, Construct: "v1", Box: geom.NewBox(1, 2, 3, 4)},
		{Kind: KindRect, Label: "12-3", Construct: "m2", Box: geom.NewBox(0, 0, 1, 1)},
		{Kind: KindInRect, Label: "-", Construct: "m1", Box: geom.NewBox(2, 2, 3, 3)},
		{Kind: KindRect, Label: "0+", Construct: "m1", Box: geom.NewBox(4, 4, 5, 5)},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := `bbox -10 -10 110 90
rect # $align 0 0 100 80
rect CLK $align 5 5 5 5
inrect A m1 0 0 4 4
rect # v1 1 2 3 4
rect 12-3 m2 0 0 1 1
inrect - m1 2 2 3 3
rect 0+ m1 4 4 5 5
`
	if buf.String() != want {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
	if w.Count() != len(records) {
		t.Errorf("Expected count %d, got %d", len(records), w.Count())
	}

	got, err := ReadAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("Record %d: expected %+v, got %+v", i, records[i], got[i])
		}
	}
}

func TestUnlabeledRecordWritesPlaceholder(t *testing.T) {
	rec := Record{Kind: KindRect, Construct: "m1", Box: geom.NewBox(0, 0, 1, 1)}
	if got := rec.String(); got != "rect # m1 0 0 1 1" {
		t.Errorf("Unexpected %q", got)
	}
	if rec.Named() {
		t.Error("Empty label is not a name")
	}
}
