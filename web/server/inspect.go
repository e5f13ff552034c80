package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/geometry"
	"github.com/df07/go-optical-bench/pkg/scene"
)

// ElementInfo describes one element for drawing and inspection
type ElementInfo struct {
	Index           int                    `json:"index"`
	Kind            geometry.Kind          `json:"kind"`
	RefractiveIndex float64                `json:"refractiveIndex"`
	Boundaries      []BoundaryInfo         `json:"boundaries"`
	Properties      map[string]interface{} `json:"properties"`
}

// BoundaryInfo is one edge of an element outline
type BoundaryInfo struct {
	Name string        `json:"name"`
	From core.Point    `json:"from"`
	To   core.Point    `json:"to"`
	Arc  *geometry.Arc `json:"arc,omitempty"`
}

// SceneResponse represents the JSON response for /api/scene
type SceneResponse struct {
	Scene        string            `json:"scene"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Bounds       core.Rect         `json:"bounds"`
	AmbientIndex float64           `json:"ambientIndex"`
	MaxDepth     int               `json:"maxDepth"`
	Policy       string            `json:"policy"`
	Elements     []ElementInfo     `json:"elements"`
	Sources      []scene.RaySource `json:"sources"`
}

// InspectResponse represents the JSON response for point inspection
type InspectResponse struct {
	Point           core.Point    `json:"point"`
	RefractiveIndex float64       `json:"refractiveIndex"`
	Inside          []ElementInfo `json:"inside"` // Containing elements, innermost last
}

// extractElementInfo extracts detailed element information with type assertions
func extractElementInfo(index int, el geometry.Element) ElementInfo {
	info := ElementInfo{
		Index:           index,
		Kind:            el.Kind(),
		RefractiveIndex: el.RefractiveIndex(),
		Properties:      make(map[string]interface{}),
	}
	for _, b := range el.Boundaries() {
		info.Boundaries = append(info.Boundaries, BoundaryInfo{Name: b.Name, From: b.From, To: b.To, Arc: b.Arc})
	}

	switch e := el.(type) {
	case *geometry.Polygon:
		spec := e.Spec()
		info.Properties["base"] = spec.Base
		info.Properties["length"] = spec.Length
		info.Properties["width"] = spec.Width
		info.Properties["angleLeft"] = spec.AngleLeft
		info.Properties["angleRight"] = spec.AngleRight
		info.Properties["vertices"] = e.Vertices()
	case *geometry.Lens:
		spec := e.Spec()
		left, right := e.Faces()
		info.Properties["base"] = spec.Base
		info.Properties["length"] = spec.Length
		info.Properties["width"] = spec.Width
		info.Properties["radiusLeft"] = spec.RadiusLeft
		info.Properties["radiusRight"] = spec.RadiusRight
		info.Properties["leftCenter"] = left.Center
		info.Properties["rightCenter"] = right.Center
	}
	return info
}

// handleScene describes the elements and sources of a bench
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	req, err := parseBenchRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	bench, err := s.loadBench(req, NewWebLogger(req.Scene))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	sc := bench.Scene
	response := SceneResponse{
		Scene:        req.Scene,
		Name:         bench.Name,
		Description:  bench.Description,
		Bounds:       sc.Bounds(),
		AmbientIndex: sc.AmbientIndex(),
		MaxDepth:     sc.MaxDepth(),
		Policy:       sc.Policy().String(),
		Sources:      bench.Sources,
	}
	for i, el := range sc.Elements() {
		response.Elements = append(response.Elements, extractElementInfo(i, el))
	}
	writeJSON(w, http.StatusOK, response)
}

// handleInspect reports the medium at a bench point
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req, err := parseBenchRequest(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	var p core.Point
	if p.X, err = parseFloatParam(values, "x", 0, -1e6, 1e6); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if p.Y, err = parseFloatParam(values, "y", 0, -1e6, 1e6); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	bench, err := s.loadBench(req, NewWebLogger(req.Scene))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	index, media := bench.Scene.MediumAt(p)
	response := InspectResponse{Point: p, RefractiveIndex: index, Inside: []ElementInfo{}}
	for _, i := range media {
		el, err := bench.Scene.Element(i)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		response.Inside = append(response.Inside, extractElementInfo(i, el))
	}
	writeJSON(w, http.StatusOK, response)
}
