package layermodel

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
	"github.com/OpenTraceLab/gdsrect/pkg/techconf"
)

const testConf = `
real scale 1
begin gds
  string_table layers m1 m1.pin m1.label m2 m2.label diff nsdm poly licon via1a via1b text pr
  int_table major     68 68     68       69 69       65   93   66   66    68    69    83   235
  int_table minor     20 16     5        20 5        20   44   20   44    44    44    44   4
  string gds_align pr
end
begin materials
  begin ndiff
    string_table gds diff nsdm
    string_table gds_mask poly licon
  end
  begin poly
    string_table gds poly
  end
end
begin metal
  string_table m1_gds m1
  string m1_gds_pin m1.pin
  string m1_gds_text m1.label
  string_table m2_gds m2
  string m2_gds_text m2.label
end
begin vias
  string m1_name v1
  string_table m1_gds via1a via1b
end
`

type layers map[string]geom.Region

func (l layers) Region(name string) (geom.Region, error) {
	r, ok := l[name]
	if !ok {
		return geom.Region{}, nil
	}
	return r, nil
}

func buildModel(t *testing.T, conf string, policy Policy) *Model {
	t.Helper()
	tech, err := techconf.Parse(strings.NewReader(conf))
	if err != nil {
		t.Fatalf("Failed to parse technology: %v", err)
	}
	m, err := Build(tech, policy)
	if err != nil {
		t.Fatalf("Failed to build model: %v", err)
	}
	return m
}

func eval(t *testing.T, e Expr, src RegionSource) geom.Region {
	t.Helper()
	r, err := e.Eval(src)
	if err != nil {
		t.Fatalf("Eval(%s): %v", e, err)
	}
	return r
}

func TestBuildExpressions(t *testing.T) {
	m := buildModel(t, testConf, DefaultPolicy())

	tests := []struct {
		name   string
		region string
		pin    string
	}{
		{"ndiff", "(not (and diff nsdm) (or poly licon))", ""},
		{"poly", "poly", ""},
		{"m1", "(not m1 m1.pin)", "(and m1 m1.pin)"},
		{"m2", "(not m2 m2.label)", "(and m2 m2.label)"},
		{"v1", "(and via1a via1b)", ""},
		{"V1", "(and via1a via1b)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := m.Lookup(tt.name)
			if !ok {
				t.Fatalf("Construct %s not found", tt.name)
			}
			if got := c.Region.String(); got != tt.region {
				t.Errorf("Expected region %s, got %s", tt.region, got)
			}
			pin := ""
			if c.PinRegion != nil {
				pin = c.PinRegion.String()
			}
			if pin != tt.pin {
				t.Errorf("Expected pin region %q, got %q", tt.pin, pin)
			}
		})
	}
}

func TestLabelLayers(t *testing.T) {
	m := buildModel(t, testConf, DefaultPolicy())

	m1, _ := m.Lookup("m1")
	if want := []string{"m1", "m1.pin", "m1.label"}; !reflect.DeepEqual(m1.LabelLayers, want) {
		t.Errorf("Expected %v, got %v", want, m1.LabelLayers)
	}
	if m1.LabelLayer() != "m1.label" {
		t.Errorf("Expected m1 label layer m1.label, got %s", m1.LabelLayer())
	}

	v1, _ := m.Lookup("v1")
	if v1.LabelLayer() != "via1a" {
		t.Errorf("Expected via label on first stack layer, got %s", v1.LabelLayer())
	}
}

func TestTextAsPinPolicy(t *testing.T) {
	m := buildModel(t, testConf, Policy{TextAsPin: false})

	m2, _ := m.Lookup("m2")
	if m2.PinRegion != nil || m2.PinLayer != "" {
		t.Errorf("Expected no pin split for m2, got %v on %q", m2.PinRegion, m2.PinLayer)
	}
	if m2.Region.String() != "m2" {
		t.Errorf("Expected plain stack, got %s", m2.Region)
	}

	m1, _ := m.Lookup("m1")
	if m1.PinLayer != "m1.pin" {
		t.Errorf("Configured pin layer must not depend on the policy, got %q", m1.PinLayer)
	}
}

func TestTextAsPinNeedsDistinctLayer(t *testing.T) {
	conf := `real scale 1
begin gds
  string_table layers m3
  int_table major 70
  int_table minor 20
end
begin metal
  string_table m3_gds m3
  string m3_gds_text m3
end`
	m := buildModel(t, conf, DefaultPolicy())
	m3, _ := m.Lookup("m3")
	if m3.PinRegion != nil {
		t.Errorf("Text layer equal to the stack must not split, got %s", m3.PinRegion)
	}
}

func TestIdentityLaw(t *testing.T) {
	m := buildModel(t, testConf, DefaultPolicy())
	src := layers{
		"poly": geom.NewRegion(geom.NewBox(0, 0, 10, 10), geom.NewBox(5, 5, 20, 8)),
	}

	poly, _ := m.Lookup("poly")
	want, _ := src.Region("poly")
	if got := eval(t, poly.Region, src); !got.Equal(want) {
		t.Errorf("Single-layer stack should evaluate to the layer, got %v want %v", got.Boxes(), want.Boxes())
	}
}

func TestPinSplitPartitionsStack(t *testing.T) {
	m := buildModel(t, testConf, DefaultPolicy())
	m1, _ := m.Lookup("m1")

	pins := [][]geom.Box{
		{geom.NewBox(3, 3, 7, 7)},
		{geom.NewBox(-5, -5, 2, 20)},
		{geom.NewBox(20, 20, 30, 30)},
		{geom.NewBox(0, 0, 10, 10)},
		{geom.NewBox(1, 1, 2, 2), geom.NewBox(8, 0, 12, 3)},
	}

	for i, pin := range pins {
		t.Run(fmt.Sprintf("case%d", i), func(t *testing.T) {
			src := layers{
				"m1":     geom.NewRegion(geom.NewBox(0, 0, 10, 10)),
				"m1.pin": geom.NewRegion(pin...),
			}
			body := eval(t, m1.Region, src)
			p := eval(t, m1.PinRegion, src)

			if !body.And(p).IsEmpty() {
				t.Errorf("Body and pin overlap: %v", body.And(p).Boxes())
			}
			if !body.Or(p).Equal(src["m1"]) {
				t.Errorf("Body and pin do not cover the stack: %v", body.Or(p).Boxes())
			}
		})
	}
}

func TestMaterialMask(t *testing.T) {
	m := buildModel(t, testConf, DefaultPolicy())
	ndiff, _ := m.Lookup("ndiff")

	src := layers{
		"diff":  geom.NewRegion(geom.NewBox(0, 0, 100, 10)),
		"nsdm":  geom.NewRegion(geom.NewBox(-10, -10, 60, 20)),
		"poly":  geom.NewRegion(geom.NewBox(20, -5, 25, 15)),
		"licon": geom.NewRegion(geom.NewBox(40, 2, 45, 7)),
	}

	got := eval(t, ndiff.Region, src)
	if a := got.Area(); a != 600-50-25 {
		t.Errorf("Expected area 525, got %d (%v)", a, got.Boxes())
	}
	if got.Contains(geom.Point{X: 22, Y: 5}) {
		t.Error("Masked point under poly should be excluded")
	}
}

func TestValidation(t *testing.T) {
	conf := `begin gds
  string_table layers m1 pr
  int_table major 68 235
  int_table minor 20 4
  string gds_align boundary
end
begin metal
  string_table m1_gds m1
  string m1_gds_pin m1.pin
end
begin vias
  string_table v1_gds via1 m1
end`
	tech, err := techconf.Parse(strings.NewReader(conf))
	if err != nil {
		t.Fatalf("Failed to parse technology: %v", err)
	}

	m, err := Build(tech, DefaultPolicy())
	if err == nil {
		t.Fatal("Expected configuration errors")
	}
	if m == nil {
		t.Fatal("Model should still be returned for force mode")
	}

	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected *ConfigError, got %T", err)
	}

	msg := err.Error()
	for _, want := range []string{
		"no scale configured",
		`m1: pin layer "m1.pin"`,
		`v1: stack layer "via1"`,
		`align layer "boundary"`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in %q", want, msg)
		}
	}
	if strings.Contains(msg, `stack layer "m1"`) {
		t.Errorf("Known layer reported as missing: %q", msg)
	}
}

func TestBuildWithoutLayerTable(t *testing.T) {
	tech, _ := techconf.Parse(strings.NewReader("real scale 1"))
	m, err := Build(tech, DefaultPolicy())
	if m != nil || err == nil {
		t.Fatalf("Expected fatal error, got model %v err %v", m, err)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Role != "layers" {
		t.Errorf("Expected layers ConfigError, got %v", err)
	}
}

func TestUsedLayers(t *testing.T) {
	m := buildModel(t, testConf, DefaultPolicy())
	want := []string{"diff", "nsdm", "poly", "licon", "m1", "m2", "via1a", "via1b", "m1.label", "m1.pin", "m2.label", "pr"}
	if got := m.UsedLayers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestConfigErrorForceable(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want bool
	}{
		{&ConfigError{Role: "scale"}, false},
		{&ConfigError{Role: "layers"}, false},
		{&ConfigError{Construct: "m1", Role: "pin", Layer: "m1.pin"}, true},
		{&ConfigError{Role: "align", Layer: "boundary"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := tt.err.Forceable(); got != tt.want {
				t.Errorf("Forceable() = %v, want %v", got, tt.want)
			}
		})
	}
}
