package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/geometry"
)

// Bench is a scene together with the ray sources shining into it
type Bench struct {
	Name        string
	Description string
	Scene       *Scene
	Sources     []RaySource
}

type builtIn struct {
	id          string
	name        string
	description string
	build       func(opts ...Option) (*Scene, []RaySource, error)
}

// builtIns lists the scenes compiled into the tracer, in display order
var builtIns = []builtIn{
	{"bench", "Optical Bench", "Trapezoid prism and hemispherical lens with a single ray", newBenchScene},
	{"slab", "Glass Slab", "Rectangular n=1.5 slab: normal, oblique and trapped rays", newSlabScene},
	{"prism", "Prism Fan", "Steep prism deflecting a fan of rays", newPrismScene},
	{"lenses", "Lens Row", "Biconvex, biconcave and plano-convex lenses under parallel light", newLensesScene},
}

// BuiltInIDs returns the identifiers of the built-in scenes
func BuiltInIDs() []string {
	ids := make([]string, len(builtIns))
	for i, b := range builtIns {
		ids[i] = b.id
	}
	return ids
}

// BuiltIn creates the built-in bench with the given id
func BuiltIn(id string, opts ...Option) (*Bench, error) {
	for _, b := range builtIns {
		if b.id != id {
			continue
		}
		s, sources, err := b.build(opts...)
		if err != nil {
			return nil, fmt.Errorf("building scene %q: %w", id, err)
		}
		return &Bench{Name: b.name, Description: b.description, Scene: s, Sources: sources}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

func deg(d float64) float64 { return d * math.Pi / 180 }

func newBenchScene(opts ...Option) (*Scene, []RaySource, error) {
	specs := []geometry.ElementSpec{
		geometry.PolygonSpec{
			Base: core.NewPoint(200, 50), Length: 100, Width: 100,
			AngleLeft: deg(60), AngleRight: deg(60), RefractiveIndex: 1.65,
		},
		geometry.LensSpec{
			Base: core.NewPoint(600, 70), Length: 50, Width: 140,
			RadiusLeft: 70, RadiusRight: 70, RefractiveIndex: 1.65,
		},
	}
	s, err := New(specs, DefaultAmbientIndex, DefaultBounds(), DefaultMaxDepth, opts...)
	if err != nil {
		return nil, nil, err
	}
	sources := []RaySource{
		{ID: "ray", Origin: core.NewPoint(10, 20), Through: core.NewPoint(50, 10)},
	}
	return s, sources, nil
}

func newSlabScene(opts ...Option) (*Scene, []RaySource, error) {
	specs := []geometry.ElementSpec{
		geometry.PolygonSpec{
			Base: core.NewPoint(200, 0), Length: 100, Width: 100,
			AngleLeft: deg(90), AngleRight: deg(90), RefractiveIndex: 1.5,
		},
	}
	s, err := New(specs, DefaultAmbientIndex, DefaultBounds(), DefaultMaxDepth, opts...)
	if err != nil {
		return nil, nil, err
	}
	sources := []RaySource{
		{ID: "normal", Origin: core.NewPoint(250, 100), Through: core.NewPoint(250, 50)},
		{ID: "oblique", Origin: core.NewPoint(180, 40), Through: core.NewPoint(190, 30)},
		{ID: "trapped", Origin: core.NewPoint(210, -50), Through: core.NewPoint(220, -40)},
	}
	return s, sources, nil
}

func newPrismScene(opts ...Option) (*Scene, []RaySource, error) {
	specs := []geometry.ElementSpec{
		geometry.PolygonSpec{
			Base: core.NewPoint(440, 120), Length: 10, Width: 240,
			AngleLeft: deg(65), AngleRight: deg(65), RefractiveIndex: 1.7,
		},
	}
	s, err := New(specs, DefaultAmbientIndex, DefaultBounds(), DefaultMaxDepth, opts...)
	if err != nil {
		return nil, nil, err
	}

	var sources []RaySource
	for i := 0; i < 7; i++ {
		y := -60 + 20*float64(i)
		sources = append(sources, RaySource{
			ID:      fmt.Sprintf("fan-%d", i),
			Origin:  core.NewPoint(40, 20),
			Through: core.NewPoint(300, y),
		})
	}
	return s, sources, nil
}

func newLensesScene(opts ...Option) (*Scene, []RaySource, error) {
	specs := []geometry.ElementSpec{
		geometry.LensSpec{
			Base: core.NewPoint(300, 80), Length: 20, Width: 160,
			RadiusLeft: 120, RadiusRight: 120, RefractiveIndex: 1.5,
		},
		geometry.LensSpec{
			Base: core.NewPoint(600, 80), Length: 80, Width: 160,
			RadiusLeft: -120, RadiusRight: -120, RefractiveIndex: 1.5,
		},
		geometry.LensSpec{
			Base: core.NewPoint(950, 80), Length: 30, Width: 160,
			RadiusLeft: 0, RadiusRight: 120, RefractiveIndex: 1.5,
		},
	}
	s, err := New(specs, DefaultAmbientIndex, DefaultBounds(), DefaultMaxDepth, opts...)
	if err != nil {
		return nil, nil, err
	}

	var sources []RaySource
	for i, y := range []float64{-60, -30, 0, 30, 60} {
		sources = append(sources, RaySource{
			ID:      fmt.Sprintf("beam-%d", i),
			Origin:  core.NewPoint(20, y),
			Through: core.NewPoint(60, y),
		})
	}
	return s, sources, nil
}
