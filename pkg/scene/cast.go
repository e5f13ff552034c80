package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/geometry"
	"github.com/df07/go-optical-bench/pkg/material"
)

// aheadEpsilon is how far past its origin a collision must be to count, so that a ray
// leaving a boundary does not immediately hit it again. It is measured along the ray's
// heading, not along the x or y axis.
const aheadEpsilon = 1e-3

// boundsMargin pads element bounds before the line-versus-box rejection test
const boundsMargin = 1e-6

// Segment is one straight piece of a traced ray
type Segment struct {
	From   core.Point `json:"from"`
	To     core.Point `json:"to"`
	Source string     `json:"source"`
	Depth  int        `json:"depth"`
}

// EventKind classifies what happened at the end of a segment
type EventKind string

const (
	EventRefract    EventKind = "refract"     // Ray crossed a boundary
	EventReflect    EventKind = "reflect"     // Total internal reflection
	EventExit       EventKind = "exit"        // Ray left the scene through its bounds
	EventLost       EventKind = "lost"        // Ray never reaches the bounds (origin outside them)
	EventDepthLimit EventKind = "depth-limit" // Ray was cut off at the maximum depth
)

// Event records one step of a trace
type Event struct {
	Kind        EventKind  `json:"kind"`
	Point       core.Point `json:"point"`
	Depth       int        `json:"depth"`
	Element     int        `json:"element"`  // -1 when no element is involved
	Boundary    string     `json:"boundary"` // Name of the crossed boundary
	Surface     core.Line  `json:"surface"`
	Incidence   float64    `json:"incidence"` // Angle from the surface normal (radians)
	Refraction  float64    `json:"refraction"`
	N1          float64    `json:"n1"`
	N2          float64    `json:"n2"`
	Reflectance float64    `json:"reflectance"`
}

// Trace is the full result of casting one ray source
type Trace struct {
	Source   string    `json:"source"`
	Segments []Segment `json:"segments"`
	Events   []Event   `json:"events"`
}

// Final returns the event that ended the trace
func (t Trace) Final() Event {
	if len(t.Events) == 0 {
		return Event{Element: -1}
	}
	return t.Events[len(t.Events)-1]
}

// RaySource is a ray starting at Origin and heading towards Through
type RaySource struct {
	ID      string     `json:"id"`
	Origin  core.Point `json:"origin"`
	Through core.Point `json:"through"`
}

// Ray returns the supporting line of the source and whether travel runs in the line's
// positive sense (increasing x, or increasing y for a vertical line)
func (r RaySource) Ray() (core.Line, bool, error) {
	line, err := core.LineThrough(r.Origin, r.Through)
	if err != nil {
		return core.Line{}, false, fmt.Errorf("ray source %q: %w", r.ID, err)
	}
	if line.IsVertical() {
		return line, r.Through.Y > r.Origin.Y, nil
	}
	return line, r.Through.X > r.Origin.X, nil
}

// ray is the transient state of a ray between two collisions
type ray struct {
	origin   core.Point
	line     core.Line
	positive bool
	index    float64
	depth    int
	media    []int // Elements the ray is inside, innermost last
}

// CastRay traces a ray from origin along line in the given sense, starting in a medium of
// refractive index n, and returns the segments it travels in order. An origin on a
// boundary counts as inside the elements the ray heads into.
func (s *Scene) CastRay(origin core.Point, line core.Line, positive bool, n float64) []Segment {
	return s.cast("", ray{
		origin:   origin,
		line:     line,
		positive: positive,
		index:    n,
		media:    s.mediumAhead(origin, line, positive),
	}).Segments
}

// Trace casts a ray source starting in whatever medium contains its origin and records
// every interaction along the way.
func (s *Scene) Trace(src RaySource) (Trace, error) {
	line, positive, err := src.Ray()
	if err != nil {
		return Trace{Source: src.ID}, err
	}
	media := s.mediumAhead(src.Origin, line, positive)
	return s.cast(src.ID, ray{
		origin:   src.Origin,
		line:     line,
		positive: positive,
		index:    s.indexOf(media),
		media:    media,
	}), nil
}

// mediumAhead returns the elements containing the first stretch of a ray leaving origin
func (s *Scene) mediumAhead(origin core.Point, line core.Line, positive bool) []int {
	return s.mediumAt(origin.Add(line.Heading(positive).Multiply(aheadEpsilon)))
}

func (s *Scene) cast(source string, r ray) Trace {
	t := Trace{Source: source}
	if r.line.A == 0 && r.line.B == 0 {
		s.logger.Printf("ray %q: degenerate line %v, nothing to trace\n", source, r.line)
		return t
	}

	for {
		if r.depth > s.maxDepth {
			s.logger.Printf("ray %q: depth limit %d reached at %v\n", source, s.maxDepth, r.origin)
			t.Events = append(t.Events, Event{Kind: EventDepthLimit, Point: r.origin, Depth: r.depth, Element: -1, N1: r.index})
			return t
		}

		hit, ok := s.nearestCollision(r)
		if !ok {
			s.leave(&t, source, r)
			return t
		}

		t.Segments = append(t.Segments, Segment{From: r.origin, To: hit.Point, Source: source, Depth: r.depth})

		n1 := r.index
		n2, media := s.nextMedium(r, hit)
		in := material.Interact(hit.Angle, n1, n2)

		// A point just before the hit stands for the side the ray arrives from
		from := hit.Point.Subtract(r.line.Heading(r.positive))
		next := r.line.Rotate(hit.Point, in.Rotation)

		event := Event{
			Point:       hit.Point,
			Depth:       r.depth,
			Element:     hit.Element,
			Boundary:    hit.Boundary,
			Surface:     hit.Surface,
			Incidence:   in.Incidence,
			Refraction:  in.Refraction,
			N1:          n1,
			N2:          n2,
			Reflectance: in.Reflectance,
		}

		if in.Refracted {
			event.Kind = EventRefract
			r.positive = next.Direction(from, hit.Point, hit.Surface, true)
			r.index = n2
			r.media = media
		} else {
			event.Kind = EventReflect
			event.N2 = n1
			r.positive = next.Direction(from, hit.Point, hit.Surface, false)
		}
		t.Events = append(t.Events, event)

		r.origin = hit.Point
		r.line = next
		r.depth++
	}
}

// nearestCollision finds the closest collision ahead of the ray. Ties keep the first one
// found: lowest element index, then boundary order.
func (s *Scene) nearestCollision(r ray) (geometry.Collision, bool) {
	var best geometry.Collision
	bestDist := math.Inf(1)
	for i, el := range s.elements {
		if r.line.MissesRect(el.Bounds().Expand(boundsMargin)) {
			continue
		}
		for _, c := range el.Intersections(r.line) {
			d := r.line.Ahead(r.origin, c.Point, r.positive)
			if d < aheadEpsilon {
				continue
			}
			if d < bestDist {
				bestDist = d
				best = c
				best.Element = i
			}
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// nextMedium returns the index on the far side of a boundary and the medium stack a
// refracted ray carries on with
func (s *Scene) nextMedium(r ray, hit geometry.Collision) (float64, []int) {
	if s.policy == MediumIndexMatch {
		if hit.RefractiveIndex == r.index {
			return s.ambient, r.media
		}
		return hit.RefractiveIndex, r.media
	}

	for i := len(r.media) - 1; i >= 0; i-- {
		if r.media[i] == hit.Element {
			media := make([]int, 0, len(r.media)-1)
			media = append(media, r.media[:i]...)
			media = append(media, r.media[i+1:]...)
			return s.indexOf(media), media
		}
	}

	media := make([]int, len(r.media), len(r.media)+1)
	copy(media, r.media)
	media = append(media, hit.Element)
	return hit.RefractiveIndex, media
}

// leave clips a ray that hits nothing against the scene bounds
func (s *Scene) leave(t *Trace, source string, r ray) {
	var exit core.Point
	farthest := 0.0
	for _, edge := range s.bounds.Edges() {
		p, ok := edge.Line.IntersectLine(r.line)
		if !ok || !edge.Accepts(p) {
			continue
		}
		if d := r.line.Ahead(r.origin, p, r.positive); d > farthest {
			farthest = d
			exit = p
		}
	}

	if farthest == 0 {
		t.Events = append(t.Events, Event{Kind: EventLost, Point: r.origin, Depth: r.depth, Element: -1, N1: r.index})
		return
	}
	t.Segments = append(t.Segments, Segment{From: r.origin, To: exit, Source: source, Depth: r.depth})
	t.Events = append(t.Events, Event{Kind: EventExit, Point: exit, Depth: r.depth, Element: -1, N1: r.index})
}
