package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/df07/go-optical-bench/pkg/core"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func rectangleSpec() PolygonSpec {
	return PolygonSpec{
		Base:            core.NewPoint(200, 0),
		Length:          100,
		Width:           100,
		AngleLeft:       math.Pi / 2,
		AngleRight:      math.Pi / 2,
		RefractiveIndex: 1.5,
	}
}

func mustPolygon(t *testing.T, s PolygonSpec) *Polygon {
	t.Helper()
	p, err := NewPolygon(s)
	if err != nil {
		t.Fatalf("NewPolygon(%+v) failed: %v", s, err)
	}
	return p
}

func collisionNames(cs []Collision) []string {
	var names []string
	for _, c := range cs {
		names = append(names, c.Boundary)
	}
	return names
}

func TestNewPolygon_Vertices(t *testing.T) {
	tan30 := math.Tan(math.Pi / 6)

	tests := []struct {
		name string
		spec PolygonSpec
		want [4]core.Point
	}{
		{
			name: "rectangle",
			spec: rectangleSpec(),
			want: [4]core.Point{{X: 200, Y: 0}, {X: 300, Y: 0}, {X: 300, Y: -100}, {X: 200, Y: -100}},
		},
		{
			name: "short top",
			spec: PolygonSpec{Base: core.NewPoint(200, 50), Length: 100, Width: 100, AngleLeft: math.Pi / 3, AngleRight: math.Pi / 3, RefractiveIndex: 1.65},
			want: [4]core.Point{{X: 200, Y: 50}, {X: 300, Y: 50}, {X: 300 + 100*tan30, Y: -50}, {X: 200 - 100*tan30, Y: -50}},
		},
		{
			name: "short bottom",
			spec: PolygonSpec{Base: core.NewPoint(0, 0), Length: 100, Width: 100, AngleLeft: 2 * math.Pi / 3, AngleRight: 2 * math.Pi / 3, RefractiveIndex: 1.5},
			want: [4]core.Point{{X: 0, Y: 0}, {X: 100 + 200*tan30, Y: 0}, {X: 100 + 100*tan30, Y: -100}, {X: 100 * tan30, Y: -100}},
		},
		{
			name: "parallelogram",
			spec: PolygonSpec{Base: core.NewPoint(0, 0), Length: 50, Width: 100, AngleLeft: math.Pi / 4, AngleRight: 3 * math.Pi / 4, RefractiveIndex: 1.5},
			want: [4]core.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: -50, Y: -100}, {X: -100, Y: -100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPolygon(t, tt.spec)
			if diff := cmp.Diff(tt.want, p.Vertices(), approx); diff != "" {
				t.Errorf("Vertices mismatch (-want +got):\n%s", diff)
			}

			// Vertical sides must be exactly vertical
			for _, b := range p.Boundaries() {
				if b.Name == "right" && isRightAngle(tt.spec.AngleRight) && !b.Line.IsVertical() {
					t.Errorf("Right edge should be exactly vertical, got %v", b.Line)
				}
			}
		})
	}
}

func TestNewPolygon_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PolygonSpec)
	}{
		{"zero length", func(s *PolygonSpec) { s.Length = 0 }},
		{"negative width", func(s *PolygonSpec) { s.Width = -1 }},
		{"zero left angle", func(s *PolygonSpec) { s.AngleLeft = 0 }},
		{"straight right angle", func(s *PolygonSpec) { s.AngleRight = math.Pi }},
		{"zero index", func(s *PolygonSpec) { s.RefractiveIndex = 0 }},
		{"NaN base", func(s *PolygonSpec) { s.Base = core.NewPoint(math.NaN(), 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := rectangleSpec()
			tt.mutate(&s)
			if _, err := s.Build(); !errors.Is(err, ErrInvalidElement) {
				t.Errorf("Expected ErrInvalidElement, got %v", err)
			}
		})
	}
}

func TestPolygon_Intersections(t *testing.T) {
	rect := mustPolygon(t, rectangleSpec())

	t.Run("perpendicular probe crosses top and bottom", func(t *testing.T) {
		cs := rect.Intersections(core.Line{A: 1, B: 0, C: -250})
		if diff := cmp.Diff([]string{"top", "bottom"}, collisionNames(cs)); diff != "" {
			t.Fatalf("Boundaries mismatch (-want +got):\n%s", diff)
		}
		want := []core.Point{{X: 250, Y: 0}, {X: 250, Y: -100}}
		for i, c := range cs {
			if diff := cmp.Diff(want[i], c.Point, approx); diff != "" {
				t.Errorf("Point %d mismatch (-want +got):\n%s", i, diff)
			}
			if !scalar.EqualWithinAbs(c.Angle, math.Pi/2, 1e-12) {
				t.Errorf("Angle %d = %v, want π/2", i, c.Angle)
			}
			if c.RefractiveIndex != 1.5 {
				t.Errorf("RefractiveIndex = %v, want 1.5", c.RefractiveIndex)
			}
		}
	})

	t.Run("top and bottom exclude their corners", func(t *testing.T) {
		cs := rect.Intersections(core.Line{A: 1, B: 0, C: -200})
		if len(cs) != 0 {
			t.Errorf("Expected no collisions through the corner column, got %v", collisionNames(cs))
		}
	})

	t.Run("vertical sides include their corners", func(t *testing.T) {
		cs := rect.Intersections(core.Line{A: 0, B: 1, C: 0})
		if diff := cmp.Diff([]string{"right", "left"}, collisionNames(cs)); diff != "" {
			t.Errorf("Boundaries mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("probe outside misses", func(t *testing.T) {
		if cs := rect.Intersections(core.Line{A: 1, B: 0, C: -500}); len(cs) != 0 {
			t.Errorf("Expected no collisions, got %v", collisionNames(cs))
		}
	})

	t.Run("slanted sides", func(t *testing.T) {
		prism := mustPolygon(t, PolygonSpec{
			Base: core.NewPoint(200, 50), Length: 100, Width: 100,
			AngleLeft: math.Pi / 3, AngleRight: math.Pi / 3, RefractiveIndex: 1.65,
		})
		cs := prism.Intersections(core.Line{A: 0, B: 1, C: 0})
		if diff := cmp.Diff([]string{"right", "left"}, collisionNames(cs)); diff != "" {
			t.Fatalf("Boundaries mismatch (-want +got):\n%s", diff)
		}
		cot60 := 1 / math.Tan(math.Pi/3)
		if !scalar.EqualWithinAbs(cs[0].Point.X, 300+50*cot60, 1e-9) {
			t.Errorf("Right crossing x = %v, want %v", cs[0].Point.X, 300+50*cot60)
		}
		if !scalar.EqualWithinAbs(cs[1].Point.X, 200-50*cot60, 1e-9) {
			t.Errorf("Left crossing x = %v, want %v", cs[1].Point.X, 200-50*cot60)
		}
		if !scalar.EqualWithinAbs(cs[0].Angle, math.Pi/3, 1e-12) {
			t.Errorf("Right angle = %v, want π/3", cs[0].Angle)
		}
		if !scalar.EqualWithinAbs(cs[1].Angle, -math.Pi/3, 1e-12) {
			t.Errorf("Left angle = %v, want -π/3", cs[1].Angle)
		}
	})
}

func TestPolygon_Contains(t *testing.T) {
	prism := mustPolygon(t, PolygonSpec{
		Base: core.NewPoint(200, 50), Length: 100, Width: 100,
		AngleLeft: math.Pi / 3, AngleRight: math.Pi / 3, RefractiveIndex: 1.65,
	})

	tests := []struct {
		p    core.Point
		want bool
	}{
		{core.NewPoint(250, 0), true},
		{core.NewPoint(180, -40), true},
		{core.NewPoint(150, 40), false},
		{core.NewPoint(250, 50), false}, // on the top edge
		{core.NewPoint(250, 60), false},
		{core.NewPoint(400, 0), false},
	}
	for _, tt := range tests {
		if got := prism.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPolygon_Translate(t *testing.T) {
	rect := mustPolygon(t, rectangleSpec())

	moved, err := rect.Translate(core.NewPoint(10, -5))
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	mp, ok := moved.(*Polygon)
	if !ok {
		t.Fatalf("Translate returned %T, want *Polygon", moved)
	}

	want := [4]core.Point{{X: 210, Y: -5}, {X: 310, Y: -5}, {X: 310, Y: -105}, {X: 210, Y: -105}}
	if diff := cmp.Diff(want, mp.Vertices(), approx); diff != "" {
		t.Errorf("Vertices mismatch (-want +got):\n%s", diff)
	}
	if rect.Vertices()[0] != core.NewPoint(200, 0) {
		t.Errorf("Translate modified the original polygon")
	}
	if mp.Kind() != KindPolygon || mp.RefractiveIndex() != 1.5 {
		t.Errorf("Translate lost element properties: %v %v", mp.Kind(), mp.RefractiveIndex())
	}
}

func TestPolygon_Bounds(t *testing.T) {
	tests := []struct {
		name string
		spec PolygonSpec
		want core.Rect
	}{
		{"rectangle", rectangleSpec(), core.NewRect(core.NewPoint(200, -100), core.NewPoint(300, 0))},
		{
			name: "trapezoid widens downwards",
			spec: PolygonSpec{Base: core.NewPoint(0, 0), Length: 10, Width: 10, AngleLeft: math.Pi / 4, AngleRight: math.Pi / 4, RefractiveIndex: 1.5},
			want: core.NewRect(core.NewPoint(-10, -10), core.NewPoint(20, 0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, mustPolygon(t, tt.spec).Bounds(), approx); diff != "" {
				t.Errorf("Bounds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
