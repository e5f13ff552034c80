package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/geometry"
)

const (
	// DefaultMaxDepth is the recursion limit used when a scene does not set one
	DefaultMaxDepth = 25
	// DefaultAmbientIndex is the refractive index of air
	DefaultAmbientIndex = 1.0
)

var (
	// ErrUnknownScene is returned when a scene name does not match any known scene
	ErrUnknownScene = errors.New("unknown scene")
	// ErrElementIndex is returned when an element index is out of range
	ErrElementIndex = errors.New("element index out of range")
	// ErrInvalidScene is returned for scene parameters that cannot be traced
	ErrInvalidScene = errors.New("invalid scene")
)

// DefaultBounds returns the scene extent of a 1280x720 bench with the optical axis at y=0
func DefaultBounds() core.Rect {
	return core.NewRect(core.NewPoint(0, -360), core.NewPoint(1280, 360))
}

// MediumPolicy selects how the caster decides which medium a ray enters at a boundary
type MediumPolicy int

const (
	// MediumStack tracks the elements a ray is inside. Crossing the boundary of an element
	// the ray is in leaves it; any other crossing enters the element.
	MediumStack MediumPolicy = iota
	// MediumIndexMatch infers the medium from refractive indices: a boundary whose index
	// equals the current one is an exit into the ambient medium.
	MediumIndexMatch
)

func (p MediumPolicy) String() string {
	switch p {
	case MediumStack:
		return "stack"
	case MediumIndexMatch:
		return "index-match"
	default:
		return fmt.Sprintf("MediumPolicy(%d)", int(p))
	}
}

// ParseMediumPolicy converts a policy name as produced by String back to a policy
func ParseMediumPolicy(s string) (MediumPolicy, error) {
	switch s {
	case "", "stack":
		return MediumStack, nil
	case "index-match":
		return MediumIndexMatch, nil
	}
	return 0, fmt.Errorf("%w: unknown medium policy %q", ErrInvalidScene, s)
}

// Option configures a Scene
type Option func(*Scene)

// WithLogger sets the logger used for trace diagnostics
func WithLogger(logger core.Logger) Option {
	return func(s *Scene) { s.logger = core.OrNop(logger) }
}

// WithMediumPolicy sets the medium tracking policy
func WithMediumPolicy(p MediumPolicy) Option {
	return func(s *Scene) { s.policy = p }
}

// Scene is a set of optical elements in an ambient medium. A Scene is immutable and safe
// for concurrent ray casts.
type Scene struct {
	elements []geometry.Element
	ambient  float64
	bounds   core.Rect
	maxDepth int
	policy   MediumPolicy
	logger   core.Logger
}

// New builds every element spec and creates a scene. Rays that hit nothing are clipped
// against bounds; rays are cut off after maxDepth interactions.
func New(specs []geometry.ElementSpec, ambientIndex float64, bounds core.Rect, maxDepth int, opts ...Option) (*Scene, error) {
	if !(ambientIndex > 0) || math.IsInf(ambientIndex, 0) {
		return nil, fmt.Errorf("%w: ambient index must be positive, got %v", ErrInvalidScene, ambientIndex)
	}
	if bounds.Empty() || !bounds.Min.IsFinite() || !bounds.Max.IsFinite() {
		return nil, fmt.Errorf("%w: bounds %v - %v have no area", ErrInvalidScene, bounds.Min, bounds.Max)
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidScene, maxDepth)
	}

	elements := make([]geometry.Element, 0, len(specs))
	for i, spec := range specs {
		if spec == nil {
			return nil, fmt.Errorf("element %d: %w: nil spec", i, geometry.ErrInvalidElement)
		}
		el, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		elements = append(elements, el)
	}

	s := &Scene{
		elements: elements,
		ambient:  ambientIndex,
		bounds:   bounds,
		maxDepth: maxDepth,
		policy:   MediumStack,
		logger:   core.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Elements returns the scene's elements in index order
func (s *Scene) Elements() []geometry.Element {
	out := make([]geometry.Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// Element returns the element at index i
func (s *Scene) Element(i int) (geometry.Element, error) {
	if i < 0 || i >= len(s.elements) {
		return nil, fmt.Errorf("%w: %d (scene has %d elements)", ErrElementIndex, i, len(s.elements))
	}
	return s.elements[i], nil
}

// AmbientIndex returns the refractive index of the medium around the elements
func (s *Scene) AmbientIndex() float64 { return s.ambient }

// Bounds returns the scene extent
func (s *Scene) Bounds() core.Rect { return s.bounds }

// MaxDepth returns the recursion limit
func (s *Scene) MaxDepth() int { return s.maxDepth }

// Policy returns the medium tracking policy
func (s *Scene) Policy() MediumPolicy { return s.policy }

// MoveElement returns a copy of the scene with element i translated by delta. The
// receiver is left unchanged.
func (s *Scene) MoveElement(i int, delta core.Point) (*Scene, error) {
	el, err := s.Element(i)
	if err != nil {
		return nil, err
	}
	moved, err := el.Translate(delta)
	if err != nil {
		return nil, fmt.Errorf("element %d: %w", i, err)
	}

	next := *s
	next.elements = s.Elements()
	next.elements[i] = moved
	return &next, nil
}

// MediumAt returns the refractive index at p and the elements containing it, innermost
// (highest index) last
func (s *Scene) MediumAt(p core.Point) (float64, []int) {
	media := s.mediumAt(p)
	return s.indexOf(media), media
}

// mediumAt returns the indices of the elements containing p, in element order
func (s *Scene) mediumAt(p core.Point) []int {
	var inside []int
	for i, el := range s.elements {
		if el.Contains(p) {
			inside = append(inside, i)
		}
	}
	return inside
}

// indexOf returns the refractive index a ray inside the given elements travels through
func (s *Scene) indexOf(media []int) float64 {
	if len(media) == 0 {
		return s.ambient
	}
	return s.elements[media[len(media)-1]].RefractiveIndex()
}
