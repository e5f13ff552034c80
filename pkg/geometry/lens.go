package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/material"
)

// LensSpec describes a lens. Base is the top-left corner of the lens band; Length is the
// distance between the face edges and Width the lens height.
//
// A positive radius makes a convex (outward bulging) face, a negative radius a concave
// one and zero a flat face. A curved face needs |radius| >= Width/2.
type LensSpec struct {
	Base            core.Point
	Length          float64
	Width           float64
	RadiusLeft      float64
	RadiusRight     float64
	RefractiveIndex float64
}

// Build validates the parameters and creates the lens
func (s LensSpec) Build() (Element, error) {
	return NewLens(s)
}

// Face is one side of a lens
type Face struct {
	Radius float64 // Absolute radius; zero for a flat face
	Convex bool
	Center core.Point
	Half   float64 // Half the angle subtended by the arc at its centre
}

// Flat reports whether the face is a straight vertical edge
func (f Face) Flat() bool { return f.Radius == 0 }

// Lens is an element with two horizontal edges joined by circular or flat faces
type Lens struct {
	spec        LensSpec
	medium      material.Dielectric
	left, right Face
	boundaries  []Boundary
}

// NewLens creates a lens from its spec
func NewLens(s LensSpec) (*Lens, error) {
	if !(s.Length >= 0) || !(s.Width > 0) {
		return nil, fmt.Errorf("%w: lens length must be non-negative and width positive, got %v x %v", ErrInvalidElement, s.Length, s.Width)
	}
	if !s.Base.IsFinite() {
		return nil, fmt.Errorf("%w: lens base %v is not finite", ErrInvalidElement, s.Base)
	}
	medium, err := material.NewDielectric(s.RefractiveIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidElement, err)
	}

	left, err := newFace(s.RadiusLeft, s.Width, s.Base, false)
	if err != nil {
		return nil, err
	}
	right, err := newFace(s.RadiusRight, s.Width, core.NewPoint(s.Base.X+s.Length, s.Base.Y), true)
	if err != nil {
		return nil, err
	}

	l := &Lens{spec: s, medium: medium, left: left, right: right}

	// Concave faces must not meet on the optical axis
	cy := s.Base.Y - s.Width/2
	if l.faceX(left, false, cy) >= l.faceX(right, true, cy) {
		return nil, fmt.Errorf("%w: lens faces overlap on the axis (length %v, radii %v and %v)",
			ErrInvalidElement, s.Length, s.RadiusLeft, s.RadiusRight)
	}

	l.buildBoundaries()
	return l, nil
}

// newFace places the centre of a face whose edge runs vertically down from corner
func newFace(radius, width float64, corner core.Point, rightSide bool) (Face, error) {
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return Face{}, fmt.Errorf("%w: lens radius %v is not finite", ErrInvalidElement, radius)
	}
	if radius == 0 {
		return Face{Center: core.NewPoint(corner.X, corner.Y-width/2)}, nil
	}

	r := math.Abs(radius)
	if r < width/2 {
		return Face{}, fmt.Errorf("%w: lens radius %v is smaller than half the width %v", ErrInvalidElement, radius, width)
	}
	half := math.Asin(width / (2 * r))
	offset := r * math.Cos(half)

	// Convex faces have their centre inside the lens
	convex := radius > 0
	inward := offset
	if rightSide {
		inward = -offset
	}
	if !convex {
		inward = -inward
	}

	return Face{
		Radius: r,
		Convex: convex,
		Center: core.NewPoint(corner.X+inward, corner.Y-width/2),
		Half:   half,
	}, nil
}

func (l *Lens) buildBoundaries() {
	s := l.spec
	top, bottom := s.Base.Y, s.Base.Y-s.Width
	xl, xr := s.Base.X, s.Base.X+s.Length

	horizontal := func(name string, y float64) Boundary {
		return Boundary{
			Name:   name,
			Line:   core.Line{A: 0, B: 1, C: -y},
			From:   core.NewPoint(xl, y),
			To:     core.NewPoint(xr, y),
			accept: func(q core.Point) bool { return between(q.X, xl, xr) },
		}
	}

	l.boundaries = []Boundary{
		horizontal("top", top),
		l.faceBoundary("right", l.right, true, xr),
		horizontal("bottom", bottom),
		l.faceBoundary("left", l.left, false, xl),
	}
}

func (l *Lens) faceBoundary(name string, f Face, rightSide bool, x float64) Boundary {
	top, bottom := l.spec.Base.Y, l.spec.Base.Y-l.spec.Width
	b := Boundary{
		Name: name,
		From: core.NewPoint(x, top),
		To:   core.NewPoint(x, bottom),
	}

	if f.Flat() {
		b.Line = core.Line{A: 1, B: 0, C: -x}
		b.accept = func(q core.Point) bool { return between(q.Y, bottom, top) }
		return b
	}

	// The arc bulges to the right of its centre for a convex right face or a concave left one
	bulgesRight := f.Convex == rightSide
	arc := &Arc{Center: f.Center, Radius: f.Radius}
	if bulgesRight {
		arc.Start, arc.End = -f.Half, f.Half
	} else {
		arc.Start, arc.End = math.Pi-f.Half, math.Pi+f.Half
	}
	b.Arc = arc

	cy := f.Center.Y
	half := l.spec.Width / 2
	b.accept = func(q core.Point) bool {
		if !between(q.Y, cy-half, cy+half) {
			return false
		}
		if bulgesRight {
			return q.X >= f.Center.X
		}
		return q.X <= f.Center.X
	}
	return b
}

// faceX returns the x coordinate of a face at height y within the lens band
func (l *Lens) faceX(f Face, rightSide bool, y float64) float64 {
	if f.Flat() {
		return f.Center.X
	}
	dy := y - f.Center.Y
	dx := math.Sqrt(math.Max(0, f.Radius*f.Radius-dy*dy))
	if f.Convex == rightSide {
		return f.Center.X + dx
	}
	return f.Center.X - dx
}

// Intersections implements the Element interface
func (l *Lens) Intersections(probe core.Line) []Collision {
	return collide(l.boundaries, probe, l.medium.RefractiveIndex)
}

// Contains reports whether p lies strictly inside the lens
func (l *Lens) Contains(p core.Point) bool {
	top, bottom := l.spec.Base.Y, l.spec.Base.Y-l.spec.Width
	if !strictlyBetween(p.Y, bottom, top) {
		return false
	}
	return p.X > l.faceX(l.left, false, p.Y) && p.X < l.faceX(l.right, true, p.Y)
}

// Boundaries implements the Element interface
func (l *Lens) Boundaries() []Boundary { return l.boundaries }

// RefractiveIndex implements the Element interface
func (l *Lens) RefractiveIndex() float64 { return l.medium.RefractiveIndex }

// Bounds implements the Element interface. Convex faces reach furthest out on the axis.
func (l *Lens) Bounds() core.Rect {
	s := l.spec
	cy := s.Base.Y - s.Width/2
	left := math.Min(s.Base.X, l.faceX(l.left, false, cy))
	right := math.Max(s.Base.X+s.Length, l.faceX(l.right, true, cy))
	return core.NewRect(core.NewPoint(left, s.Base.Y-s.Width), core.NewPoint(right, s.Base.Y))
}

// Faces returns the left and right faces
func (l *Lens) Faces() (left, right Face) { return l.left, l.right }

// Spec returns the parameters the lens was built from
func (l *Lens) Spec() LensSpec { return l.spec }

// Translate implements the Element interface
func (l *Lens) Translate(delta core.Point) (Element, error) {
	s := l.spec
	s.Base = s.Base.Add(delta)
	return NewLens(s)
}

// Kind implements the Element interface
func (l *Lens) Kind() Kind { return KindLens }

func (l *Lens) element() {}
