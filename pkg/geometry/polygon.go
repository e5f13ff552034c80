package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/material"
)

// rightAngleTolerance decides when a face angle counts as exactly π/2
const rightAngleTolerance = 1e-12

// PolygonSpec describes a trapezoidal prism. Base is the top-left vertex; the top and
// bottom edges are horizontal and Width apart. AngleLeft and AngleRight are the interior
// angles at the bottom corners, in radians.
//
// When the angles sum to less than π the top edge is Length long and the bottom edge is
// longer; when they sum to more than π the bottom edge is Length long.
type PolygonSpec struct {
	Base            core.Point
	Length          float64
	Width           float64
	AngleLeft       float64
	AngleRight      float64
	RefractiveIndex float64
}

// Build validates the parameters and creates the polygon
func (s PolygonSpec) Build() (Element, error) {
	return NewPolygon(s)
}

// Polygon is a four-sided prism with horizontal top and bottom edges
type Polygon struct {
	spec       PolygonSpec
	medium     material.Dielectric
	vertices   [4]core.Point // top-left, top-right, bottom-right, bottom-left
	boundaries []Boundary
}

// NewPolygon creates a polygon from its spec
func NewPolygon(s PolygonSpec) (*Polygon, error) {
	if !(s.Length > 0) || !(s.Width > 0) {
		return nil, fmt.Errorf("%w: polygon length and width must be positive, got %v x %v", ErrInvalidElement, s.Length, s.Width)
	}
	for _, a := range []float64{s.AngleLeft, s.AngleRight} {
		if !(a > 0 && a < math.Pi) {
			return nil, fmt.Errorf("%w: polygon face angle %v is outside (0, π)", ErrInvalidElement, a)
		}
	}
	if !s.Base.IsFinite() {
		return nil, fmt.Errorf("%w: polygon base %v is not finite", ErrInvalidElement, s.Base)
	}
	medium, err := material.NewDielectric(s.RefractiveIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidElement, err)
	}

	w := s.Width
	cotL, cotR := cot(s.AngleLeft), cot(s.AngleRight)

	// Length applies to the shorter of the two horizontal edges
	top := s.Length
	if cotL+cotR < 0 {
		top = s.Length - w*cotL - w*cotR
	}

	v0 := s.Base
	v1 := core.NewPoint(v0.X+top, v0.Y)
	v2 := core.NewPoint(v1.X+w*cotR, v0.Y-w)
	v3 := core.NewPoint(v0.X-w*cotL, v0.Y-w)

	p := &Polygon{
		spec:     s,
		medium:   medium,
		vertices: [4]core.Point{v0, v1, v2, v3},
	}
	if err := p.buildBoundaries(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Polygon) buildBoundaries() error {
	v := p.vertices
	edges := []struct {
		name     string
		from, to core.Point
		accept   func(core.Point) bool
	}{
		{"top", v[0], v[1], func(q core.Point) bool { return strictlyBetween(q.X, v[0].X, v[1].X) }},
		{"right", v[1], v[2], sideAccept(p.spec.AngleRight, v[1], v[2])},
		{"bottom", v[3], v[2], func(q core.Point) bool { return strictlyBetween(q.X, v[3].X, v[2].X) }},
		{"left", v[3], v[0], sideAccept(p.spec.AngleLeft, v[3], v[0])},
	}

	p.boundaries = make([]Boundary, 0, len(edges))
	for _, e := range edges {
		line, err := core.LineThrough(e.from, e.to)
		if err != nil {
			return fmt.Errorf("%w: %s edge: %v", ErrInvalidElement, e.name, err)
		}
		p.boundaries = append(p.boundaries, Boundary{
			Name:   e.name,
			Line:   line,
			From:   e.from,
			To:     e.to,
			accept: e.accept,
		})
	}
	return nil
}

// sideAccept builds the inclusive range check for a slanted or vertical side edge
func sideAccept(angle float64, a, b core.Point) func(core.Point) bool {
	if isRightAngle(angle) {
		return func(q core.Point) bool { return between(q.Y, a.Y, b.Y) }
	}
	return func(q core.Point) bool { return between(q.X, a.X, b.X) }
}

func isRightAngle(a float64) bool {
	return math.Abs(a-math.Pi/2) < rightAngleTolerance
}

// cot returns the cotangent, exactly zero for a right angle
func cot(a float64) float64 {
	if isRightAngle(a) {
		return 0
	}
	return 1 / math.Tan(a)
}

// Intersections implements the Element interface
func (p *Polygon) Intersections(probe core.Line) []Collision {
	return collide(p.boundaries, probe, p.medium.RefractiveIndex)
}

// Contains reports whether q lies strictly inside the polygon
func (p *Polygon) Contains(q core.Point) bool {
	// Vertices run clockwise, so every edge sees an inside point on its right
	for i := range p.vertices {
		a, b := p.vertices[i], p.vertices[(i+1)%len(p.vertices)]
		if b.Subtract(a).Cross(q.Subtract(a)) >= 0 {
			return false
		}
	}
	return true
}

// Boundaries implements the Element interface
func (p *Polygon) Boundaries() []Boundary { return p.boundaries }

// RefractiveIndex implements the Element interface
func (p *Polygon) RefractiveIndex() float64 { return p.medium.RefractiveIndex }

// Bounds implements the Element interface
func (p *Polygon) Bounds() core.Rect { return core.NewRectFromPoints(p.vertices[:]...) }

// Vertices returns the corners: top-left, top-right, bottom-right, bottom-left
func (p *Polygon) Vertices() [4]core.Point { return p.vertices }

// Spec returns the parameters the polygon was built from
func (p *Polygon) Spec() PolygonSpec { return p.spec }

// Translate implements the Element interface
func (p *Polygon) Translate(delta core.Point) (Element, error) {
	s := p.spec
	s.Base = s.Base.Add(delta)
	return NewPolygon(s)
}

// Kind implements the Element interface
func (p *Polygon) Kind() Kind { return KindPolygon }

func (p *Polygon) element() {}
