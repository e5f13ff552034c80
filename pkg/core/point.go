package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point represents a position on the optical bench in scene units (not pixels)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint creates a new Point
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func fromVec(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Add returns the point translated by delta
func (p Point) Add(delta Point) Point {
	return fromVec(r2.Add(p.vec(), delta.vec()))
}

// Subtract returns the vector from other to p
func (p Point) Subtract(other Point) Point {
	return fromVec(r2.Sub(p.vec(), other.vec()))
}

// Multiply returns the point scaled by a scalar
func (p Point) Multiply(s float64) Point {
	return fromVec(r2.Scale(s, p.vec()))
}

// Dot returns the dot product of p and other treated as vectors
func (p Point) Dot(other Point) float64 {
	return r2.Dot(p.vec(), other.vec())
}

// Cross returns the z component of the cross product of p and other
func (p Point) Cross(other Point) float64 {
	return r2.Cross(p.vec(), other.vec())
}

// Length returns the magnitude of p treated as a vector
func (p Point) Length() float64 {
	return r2.Norm(p.vec())
}

// Distance returns the Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return r2.Norm(r2.Sub(p.vec(), other.vec()))
}

// ApproxEqual reports whether both coordinates are within tol of each other
func (p Point) ApproxEqual(other Point, tol float64) bool {
	return scalar.EqualWithinAbs(p.X, other.X, tol) && scalar.EqualWithinAbs(p.Y, other.Y, tol)
}

// IsFinite reports whether neither coordinate is NaN or infinite
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Rect is an axis-aligned rectangle used as the scene extent
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// NewRect creates a rectangle from two opposite corners in any order
func NewRect(a, b Point) Rect {
	return Rect{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// Width returns the horizontal extent of the rectangle
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of the rectangle
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle has no area
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Contains reports whether p lies inside the rectangle or on its border
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Edges returns the four border lines of the rectangle with a validity check for each.
// Order: top, right, bottom, left.
func (r Rect) Edges() [4]RectEdge {
	return [4]RectEdge{
		{Line: Line{A: 0, B: 1, C: -r.Max.Y}, Min: r.Min.X, Max: r.Max.X, AlongY: false},
		{Line: Line{A: 1, B: 0, C: -r.Max.X}, Min: r.Min.Y, Max: r.Max.Y, AlongY: true},
		{Line: Line{A: 0, B: 1, C: -r.Min.Y}, Min: r.Min.X, Max: r.Max.X, AlongY: false},
		{Line: Line{A: 1, B: 0, C: -r.Min.X}, Min: r.Min.Y, Max: r.Max.Y, AlongY: true},
	}
}

// RectEdge is one border of a Rect: a supporting line and the inclusive coordinate range
// along it that belongs to the rectangle
type RectEdge struct {
	Line     Line
	Min, Max float64
	AlongY   bool // range is measured on Y (vertical edge) instead of X
}

// Accepts reports whether p, a point on the edge's line, lies within the edge's range
func (e RectEdge) Accepts(p Point) bool {
	v := p.X
	if e.AlongY {
		v = p.Y
	}
	return v >= e.Min && v <= e.Max
}
