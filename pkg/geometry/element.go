package geometry

import (
	"errors"

	"github.com/df07/go-optical-bench/pkg/core"
)

// ErrInvalidElement is returned when element parameters do not describe a valid shape
var ErrInvalidElement = errors.New("invalid element")

// Kind identifies the concrete shape of an element
type Kind string

const (
	KindPolygon Kind = "polygon"
	KindLens    Kind = "lens"
)

// Element is an optical element on the bench: a closed outline of boundaries enclosing a
// uniform medium. Elements are immutable once built. The set of implementations is closed
// (*Polygon and *Lens).
type Element interface {
	// Intersections returns every valid crossing of the probe line with the element's
	// boundaries, in boundary order
	Intersections(probe core.Line) []Collision
	// Contains reports whether p lies strictly inside the element
	Contains(p core.Point) bool
	// Boundaries returns the element outline in order top, right, bottom, left
	Boundaries() []Boundary
	// Bounds returns a rectangle enclosing every boundary
	Bounds() core.Rect
	RefractiveIndex() float64
	// Translate returns a copy of the element moved by delta
	Translate(delta core.Point) (Element, error)
	Kind() Kind

	element()
}

// ElementSpec describes an element by its defining parameters
type ElementSpec interface {
	Build() (Element, error)
}

// Collision is one crossing of a probe line with an element boundary
type Collision struct {
	Point           core.Point
	Angle           float64   // Signed angle from the surface line to the probe line, in (-π/2, π/2]
	Surface         core.Line // Boundary line, or the tangent at Point for arcs
	Boundary        string    // Name of the boundary that was crossed
	Element         int       // Index of the element in its scene
	RefractiveIndex float64   // Index of the element's medium
}

// Arc is the circular part of a curved boundary
type Arc struct {
	Center core.Point `json:"center"`
	Radius float64    `json:"radius"`
	Start  float64    `json:"start"` // Angle of the first endpoint seen from the centre (radians)
	End    float64    `json:"end"`   // Angle of the second endpoint, End > Start
}

// Boundary is one finite edge of an element outline: a straight segment or a circular arc.
// Intersection points of the infinite supporting curve are filtered by accept.
type Boundary struct {
	Name     string
	Line     core.Line  // Supporting line of a straight edge (zero for arcs)
	From, To core.Point // Edge endpoints
	Arc      *Arc       // Non-nil for circular edges

	accept func(core.Point) bool
}

// Intersect returns the points where the probe line crosses the edge
func (b Boundary) Intersect(probe core.Line) []core.Point {
	var candidates []core.Point
	if b.Arc != nil {
		candidates = probe.IntersectCircle(b.Arc.Center, b.Arc.Radius)
	} else if p, ok := b.Line.IntersectLine(probe); ok {
		candidates = []core.Point{p}
	}

	var points []core.Point
	for _, p := range candidates {
		if b.accept(p) {
			points = append(points, p)
		}
	}
	return points
}

// Surface returns the line that locally represents the edge at p
func (b Boundary) Surface(p core.Point) (core.Line, error) {
	if b.Arc != nil {
		return core.TangentLine(b.Arc.Center, p)
	}
	return b.Line, nil
}

// collide gathers the collisions of a probe line with a list of boundaries
func collide(boundaries []Boundary, probe core.Line, index float64) []Collision {
	var result []Collision
	for _, b := range boundaries {
		for _, p := range b.Intersect(probe) {
			surface, err := b.Surface(p)
			if err != nil {
				continue
			}
			result = append(result, Collision{
				Point:           p,
				Angle:           surface.IntersectionAngle(probe),
				Surface:         surface,
				Boundary:        b.Name,
				RefractiveIndex: index,
			})
		}
	}
	return result
}

// between reports whether v lies in the closed range spanned by a and b
func between(v, a, b float64) bool {
	if a > b {
		a, b = b, a
	}
	return v >= a && v <= b
}

// strictlyBetween reports whether v lies in the open range spanned by a and b
func strictlyBetween(v, a, b float64) bool {
	if a > b {
		a, b = b, a
	}
	return v > a && v < b
}
