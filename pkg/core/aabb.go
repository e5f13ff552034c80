package core

import "math"

// NewRectFromPoints creates the smallest rectangle bounding all given points
func NewRectFromPoints(points ...Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}

	min := points[0]
	max := points[0]

	for _, point := range points[1:] {
		min.X = math.Min(min.X, point.X)
		min.Y = math.Min(min.Y, point.Y)

		max.X = math.Max(max.X, point.X)
		max.Y = math.Max(max.Y, point.Y)
	}

	return Rect{Min: min, Max: max}
}

// Expand returns the rectangle grown by d on every side
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Translate returns the rectangle moved by delta
func (r Rect) Translate(delta Point) Rect {
	return Rect{Min: r.Min.Add(delta), Max: r.Max.Add(delta)}
}

// Corners returns the four corners of the rectangle
func (r Rect) Corners() [4]Point {
	return [4]Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// MissesRect reports whether the line passes strictly outside r, i.e. every corner lies
// on the same side. A line touching a corner or an edge does not miss.
func (l Line) MissesRect(r Rect) bool {
	var above, below bool
	for _, c := range r.Corners() {
		s := l.Side(c)
		switch {
		case s > 0:
			above = true
		case s < 0:
			below = true
		default:
			return false
		}
	}
	return !(above && below)
}
