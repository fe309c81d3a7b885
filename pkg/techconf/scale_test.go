package techconf

import "testing"

func TestScaleConversions(t *testing.T) {
	tests := []struct {
		scale    string
		nm       int64
		rect     int64
		backToNm int64
	}{
		{"1", 1250, 1250, 1250},
		{"0.5", 1000, 500, 1000},
		{"0.5", 1001, 500, 1000},
		{"0.5", -1001, -500, -1000},
		{"2", -7, -14, -7},
		{"1/3", 10, 3, 9},
		{"4", 3, 12, 3},
	}

	for _, tt := range tests {
		s, err := ParseScale(tt.scale)
		if err != nil {
			t.Fatalf("ParseScale(%q): %v", tt.scale, err)
		}
		if got := s.ToRect(tt.nm); got != tt.rect {
			t.Errorf("scale %s: ToRect(%d) = %d, want %d", tt.scale, tt.nm, got, tt.rect)
		}
		if got := s.FromRect(tt.rect); got != tt.backToNm {
			t.Errorf("scale %s: FromRect(%d) = %d, want %d", tt.scale, tt.rect, got, tt.backToNm)
		}
	}
}

func TestScaleRoundsHalfAwayFromZero(t *testing.T) {
	s := NewScale(2, 1)
	if got := s.FromRect(5); got != 3 {
		t.Errorf("FromRect(5) = %d, want 3", got)
	}
	if got := s.FromRect(-5); got != -3 {
		t.Errorf("FromRect(-5) = %d, want -3", got)
	}
	if got := s.FromRect(3); got != 2 {
		t.Errorf("FromRect(3) = %d, want 2", got)
	}
}

func TestScaleRoundTrip(t *testing.T) {
	for _, k := range []int64{1, 2, 5, 1000} {
		s := NewScale(k, 1)
		for nm := int64(-2000); nm <= 2000; nm += 7 {
			if got := s.FromRect(s.ToRect(nm)); got != nm {
				t.Fatalf("scale %d: round trip of %d gave %d", k, nm, got)
			}
		}
	}

	half := NewScale(1, 2)
	for nm := int64(-2000); nm <= 2000; nm += 2 {
		if got := half.FromRect(half.ToRect(nm)); got != nm {
			t.Fatalf("scale 1/2: round trip of %d gave %d", nm, got)
		}
	}
}

func TestParseScaleErrors(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "-1", "1/0"} {
		if _, err := ParseScale(in); err == nil {
			t.Errorf("ParseScale(%q) should fail", in)
		}
	}
}

func TestScopeIsAValue(t *testing.T) {
	var s Scope
	a := s.Push("materials")
	b := a.Push("ndiff")
	c := a.Push("pdiff")

	if b.Top() != "ndiff" || c.Top() != "pdiff" {
		t.Fatalf("Push aliased siblings: %v %v", b, c)
	}
	if name, ok := b.InNamedChild("materials"); !ok || name != "ndiff" {
		t.Errorf("Expected named child ndiff, got %q %v", name, ok)
	}
	if _, ok := a.InNamedChild("materials"); ok {
		t.Error("The materials block itself is not a named child")
	}
	if b.Pop().Pop().Pop().Depth() != 0 {
		t.Error("Popping past the top should stay empty")
	}
}
