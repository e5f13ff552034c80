package core

import (
	"fmt"
	"math"
)

// angleSnap is the tolerance under which a sine or cosine is treated as exactly zero when
// building a line from an angle, so that axis-aligned rays stay exactly axis-aligned
const angleSnap = 1e-12

// Line is an implicit 2D line a·x + b·y + c = 0.
// A and B are never both zero; no canonical scaling is enforced.
type Line struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// NewLine creates a line from its coefficients
func NewLine(a, b, c float64) (Line, error) {
	if a == 0 && b == 0 {
		return Line{}, fmt.Errorf("%w: a and b are both zero", ErrDegenerateLine)
	}
	return Line{A: a, B: b, C: c}, nil
}

// LineThrough creates the line through two points. It fails with ErrDegenerateLine when
// the points coincide.
func LineThrough(p1, p2 Point) (Line, error) {
	if p1 == p2 {
		return Line{}, fmt.Errorf("%w: %v", ErrDegenerateLine, p1)
	}
	return Line{
		A: p2.Y - p1.Y,
		B: p1.X - p2.X,
		C: p2.X*p1.Y - p1.X*p2.Y,
	}, nil
}

// LineFromSlope creates the line through p with slope k
func LineFromSlope(p Point, k float64) Line {
	return Line{A: -k, B: 1, C: k*p.X - p.Y}
}

// LineFromSlopeIntercept creates the line y = k·x + m
func LineFromSlopeIntercept(k, m float64) Line {
	return Line{A: -k, B: 1, C: -m}
}

// LineFromAngle creates the line through p that makes the given angle (radians) with
// the X axis. Angles within angleSnap of an axis produce an exactly axis-aligned line.
func LineFromAngle(p Point, angle float64) Line {
	s, c := math.Sincos(angle)
	if math.Abs(c) < angleSnap {
		return Line{A: 1, B: 0, C: -p.X}
	}
	if math.Abs(s) < angleSnap {
		return Line{A: 0, B: 1, C: -p.Y}
	}
	return LineFromSlope(p, s/c)
}

// TangentLine creates the line tangent at p to the circle centred at center that passes
// through p. It fails with ErrDegenerateLine when p is the centre.
func TangentLine(center, p Point) (Line, error) {
	a, b := p.X-center.X, p.Y-center.Y
	if a == 0 && b == 0 {
		return Line{}, fmt.Errorf("%w: tangent point is the circle centre %v", ErrDegenerateLine, p)
	}
	return Line{A: a, B: b, C: -(a*p.X + b*p.Y)}, nil
}

// IsVertical reports whether the line is parallel to the Y axis
func (l Line) IsVertical() bool { return l.B == 0 }

// IsHorizontal reports whether the line is parallel to the X axis
func (l Line) IsHorizontal() bool { return l.A == 0 }

// Slope returns -a/b, or +Inf for a vertical line
func (l Line) Slope() float64 {
	if l.IsVertical() {
		return math.Inf(1)
	}
	return -l.A / l.B
}

// Angle returns the line's angle with the X axis in (-π/2, π/2]
func (l Line) Angle() float64 {
	if l.IsVertical() {
		return math.Pi / 2
	}
	return math.Atan(l.Slope())
}

// YAt returns the y coordinate of the line at x. Undefined for vertical lines.
func (l Line) YAt(x float64) float64 {
	return (-l.A*x - l.C) / l.B
}

// XAt returns the x coordinate of the line at y. Undefined for horizontal lines.
func (l Line) XAt(y float64) float64 {
	return (-l.B*y - l.C) / l.A
}

// Side evaluates a·x + b·y + c at p. Points on opposite sides of the line give values of
// opposite sign; points on the line give zero.
func (l Line) Side(p Point) float64 {
	return l.A*p.X + l.B*p.Y + l.C
}

// Contains reports whether p is within tol (perpendicular distance) of the line
func (l Line) Contains(p Point, tol float64) bool {
	return math.Abs(l.Side(p))/math.Hypot(l.A, l.B) <= tol
}

// IntersectLine returns the crossing point of two lines. Parallel and identical lines
// both report no intersection.
func (l Line) IntersectLine(other Line) (Point, bool) {
	d := l.A*other.B - l.B*other.A
	if d == 0 {
		return Point{}, false
	}
	dx := l.B*other.C - l.C*other.B
	dy := l.C*other.A - l.A*other.C
	return Point{X: dx / d, Y: dy / d}, true
}

// IntersectCircle returns the 0, 1 or 2 points where the line meets the circle.
// Two points are ordered by the +√D root first (by the lower y first for vertical lines).
func (l Line) IntersectCircle(center Point, r float64) []Point {
	if r <= 0 {
		return nil
	}
	x0, y0 := center.X, center.Y

	if l.IsVertical() {
		// Solve for y directly to avoid dividing by b
		x := -l.C / l.A
		under := r*r - (x-x0)*(x-x0)
		switch {
		case under < 0:
			return nil
		case under == 0:
			return []Point{{X: x, Y: y0}}
		default:
			s := math.Sqrt(under)
			return []Point{{X: x, Y: y0 - s}, {X: x, Y: y0 + s}}
		}
	}

	a, b, c := l.A, l.B, l.C
	h := a*c + a*b*y0 - b*b*x0
	n := a*a + b*b
	disc := 4*h*h - 4*n*(b*b*(x0*x0+y0*y0-r*r)+c*c+2*b*c*y0)

	switch {
	case disc < 0:
		return nil
	case disc == 0:
		x := -h / n
		return []Point{{X: x, Y: l.YAt(x)}}
	default:
		sq := math.Sqrt(disc)
		x1 := (-2*h + sq) / (2 * n)
		x2 := (-2*h - sq) / (2 * n)
		return []Point{{X: x1, Y: l.YAt(x1)}, {X: x2, Y: l.YAt(x2)}}
	}
}

// IntersectionAngle returns the signed angle in (-π/2, π/2] that rotates l onto other.
// Perpendicular lines report ±π/2 with the sign taken from the slope ordering.
func (l Line) IntersectionAngle(other Line) float64 {
	switch {
	case l.IsVertical() && other.IsVertical():
		return 0
	case l.IsVertical():
		return NormalizeLineAngle(other.Angle() - math.Pi/2)
	case other.IsVertical():
		return NormalizeLineAngle(math.Pi/2 - l.Angle())
	}

	k1, k2 := l.Slope(), other.Slope()
	den := 1 + k1*k2
	if den == 0 {
		if k2 > k1 {
			return math.Pi / 2
		}
		return -math.Pi / 2
	}
	return math.Atan((k2 - k1) / den)
}

// Rotate returns the line through p whose angle is l.Angle() + angle
func (l Line) Rotate(p Point, angle float64) Line {
	return LineFromAngle(p, l.Angle()+angle)
}

// Heading returns the unit vector of travel along the line. Positive travel is towards
// increasing x, or increasing y for a vertical line.
func (l Line) Heading(positive bool) Point {
	var h Point
	if l.IsVertical() {
		h = Point{X: 0, Y: 1}
	} else {
		h = Point{X: 1, Y: l.Slope()}
		h = h.Multiply(1 / h.Length())
	}
	if !positive {
		h = h.Multiply(-1)
	}
	return h
}

// Ahead returns how far p lies ahead of origin along the line's direction of travel.
// Negative values mean p is behind origin.
func (l Line) Ahead(origin, p Point, positive bool) float64 {
	return p.Subtract(origin).Dot(l.Heading(positive))
}

// step returns the point one unit further along the positive parametrization from p
func (l Line) step(p Point) Point {
	if l.IsVertical() {
		return Point{X: -l.C / l.A, Y: p.Y + 1}
	}
	return Point{X: p.X + 1, Y: l.YAt(p.X + 1)}
}

// Direction decides the propagation sense of l, a ray leaving surf after hitting surface,
// having come from from. It reports true when travel continues in the positive sense.
// With getThrough the ray crosses the surface (refraction); otherwise it stays on the
// side it came from (reflection).
func (l Line) Direction(from, surf Point, surface Line, getThrough bool) bool {
	check := l.step(surf)
	sameSide := (surface.Side(from) > 0) == (surface.Side(check) > 0)

	positive := sameSide
	if getThrough {
		positive = !positive
	}
	return positive
}

func (l Line) String() string {
	return fmt.Sprintf("%gx + %gy + %g = 0", l.A, l.B, l.C)
}

// NormalizeLineAngle reduces an angle modulo π into (-π/2, π/2]
func NormalizeLineAngle(a float64) float64 {
	a = math.Mod(a, math.Pi)
	if a > math.Pi/2 {
		a -= math.Pi
	} else if a <= -math.Pi/2 {
		a += math.Pi
	}
	return a
}
