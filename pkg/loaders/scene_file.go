package loaders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/geometry"
	"github.com/df07/go-optical-bench/pkg/scene"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither YAML nor JSON
	ErrUnsupportedFormat = errors.New("unsupported scene file format")
	// ErrInvalidSceneFile is returned when a scene file parses but does not describe a scene
	ErrInvalidSceneFile = errors.New("invalid scene file")
)

// Format is a scene file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// SceneFile is the on-disk description of a bench. YAML and JSON share the json tags.
// Missing ambient index, max depth and bounds fall back to the scene defaults.
type SceneFile struct {
	Name         string            `json:"name,omitempty"`
	Description  string            `json:"description,omitempty"`
	AmbientIndex *float64          `json:"ambientIndex,omitempty"`
	MaxDepth     *int              `json:"maxDepth,omitempty"`
	Bounds       *core.Rect        `json:"bounds,omitempty"`
	MediumPolicy string            `json:"mediumPolicy,omitempty"` // "stack" or "index-match"
	Elements     []ElementFile     `json:"elements"`
	Sources      []scene.RaySource `json:"sources"`
}

// ElementFile describes one element. Angles are in degrees.
type ElementFile struct {
	Type            string     `json:"type"` // "polygon" or "lens"
	Base            core.Point `json:"base"`
	Length          float64    `json:"length"`
	Width           float64    `json:"width"`
	AngleLeftDeg    *float64   `json:"angleLeftDeg,omitempty"`  // Polygon only, default 90
	AngleRightDeg   *float64   `json:"angleRightDeg,omitempty"` // Polygon only, default 90
	RadiusLeft      float64    `json:"radiusLeft,omitempty"`    // Lens only, 0 is flat
	RadiusRight     float64    `json:"radiusRight,omitempty"`   // Lens only, 0 is flat
	RefractiveIndex float64    `json:"refractiveIndex"`
}

// ParseScene decodes a scene file. Unknown fields are rejected.
func ParseScene(data []byte, format Format) (*SceneFile, error) {
	var f SceneFile
	switch format {
	case FormatYAML:
		if err := yaml.UnmarshalStrict(data, &f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSceneFile, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSceneFile, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &f, nil
}

// Marshal encodes a scene file in the given format
func Marshal(f *SceneFile, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(f)
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Specs converts the element descriptions to element specs
func (f *SceneFile) Specs() ([]geometry.ElementSpec, error) {
	specs := make([]geometry.ElementSpec, 0, len(f.Elements))
	for i, e := range f.Elements {
		spec, err := e.Spec()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Spec converts the description to an element spec
func (e ElementFile) Spec() (geometry.ElementSpec, error) {
	switch geometry.Kind(strings.ToLower(e.Type)) {
	case geometry.KindPolygon:
		return geometry.PolygonSpec{
			Base:            e.Base,
			Length:          e.Length,
			Width:           e.Width,
			AngleLeft:       degreesOr90(e.AngleLeftDeg),
			AngleRight:      degreesOr90(e.AngleRightDeg),
			RefractiveIndex: e.RefractiveIndex,
		}, nil
	case geometry.KindLens:
		if e.AngleLeftDeg != nil || e.AngleRightDeg != nil {
			return nil, fmt.Errorf("%w: lens elements take radii, not angles", ErrInvalidSceneFile)
		}
		return geometry.LensSpec{
			Base:            e.Base,
			Length:          e.Length,
			Width:           e.Width,
			RadiusLeft:      e.RadiusLeft,
			RadiusRight:     e.RadiusRight,
			RefractiveIndex: e.RefractiveIndex,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown element type %q", ErrInvalidSceneFile, e.Type)
}

func degreesOr90(d *float64) float64 {
	if d == nil {
		return math.Pi / 2
	}
	return *d * math.Pi / 180
}

// Build creates the bench the file describes. Options are applied after the file's own
// medium policy.
func (f *SceneFile) Build(opts ...scene.Option) (*scene.Bench, error) {
	specs, err := f.Specs()
	if err != nil {
		return nil, err
	}

	ambient := scene.DefaultAmbientIndex
	if f.AmbientIndex != nil {
		ambient = *f.AmbientIndex
	}
	maxDepth := scene.DefaultMaxDepth
	if f.MaxDepth != nil {
		maxDepth = *f.MaxDepth
	}
	bounds := scene.DefaultBounds()
	if f.Bounds != nil {
		bounds = core.NewRect(f.Bounds.Min, f.Bounds.Max)
	}
	policy, err := scene.ParseMediumPolicy(f.MediumPolicy)
	if err != nil {
		return nil, err
	}

	s, err := scene.New(specs, ambient, bounds, maxDepth, append([]scene.Option{scene.WithMediumPolicy(policy)}, opts...)...)
	if err != nil {
		return nil, err
	}

	sources := make([]scene.RaySource, len(f.Sources))
	for i, src := range f.Sources {
		if src.ID == "" {
			src.ID = fmt.Sprintf("ray-%d", i)
		}
		if _, _, err := src.Ray(); err != nil {
			return nil, err
		}
		sources[i] = src
	}

	return &scene.Bench{Name: f.Name, Description: f.Description, Scene: s, Sources: sources}, nil
}

// LoadSceneFile reads, parses and builds a scene file. The header metadata fills in a
// missing name or description.
func LoadSceneFile(path string, opts ...scene.Option) (*scene.Bench, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	f, err := ParseScene(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if f.Name == "" || f.Description == "" {
		if info, err := scene.ParseSceneMetadata(path); err == nil {
			if f.Name == "" {
				f.Name = info.DisplayName
			}
			if f.Description == "" {
				f.Description = info.Description
			}
		}
	}

	bench, err := f.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bench, nil
}
