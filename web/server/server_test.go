package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-optical-bench/pkg/scene"
)

const periscopeYAML = `# Scene: Periscope
# Group: Instruments
elements:
  - type: polygon
    base: {x: 200, y: 0}
    length: 100
    width: 100
    refractiveIndex: 1.5
sources:
  - {id: down, origin: {x: 250, y: 100}, through: {x: 250, y: 50}}
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "periscope.yaml"), []byte(periscopeYAML), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	ts := httptest.NewServer(NewServer(0, dir).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, wantStatus int, out interface{}) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", path, resp.StatusCode, wantStatus)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("GET %s Content-Type = %q", path, ct)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Decoding %s failed: %v", path, err)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	getJSON(t, ts, "/api/health", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestHandleScenes(t *testing.T) {
	ts := newTestServer(t)
	var body scene.ScenesResponse
	getJSON(t, ts, "/api/scenes", http.StatusOK, &body)

	if len(body.Groups) != 2 || body.Groups[0].Name != "Built-in Scenes" || body.Groups[1].Name != "Instruments" {
		t.Fatalf("Unexpected groups: %+v", body.Groups)
	}
	if got := body.Groups[1].Scenes[0].ID; got != "file:periscope" {
		t.Errorf("Scene file id = %q, want file:periscope", got)
	}
}

func TestHandleTrace(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name        string
		query       string
		wantTraces  int
		wantWarning bool // Only checked when set
	}{
		{"default scene", "", 1, false},
		{"slab", "?scene=slab", 3, true},
		{"scene file", "?scene=periscope", 1, false},
		{"policy override", "?scene=slab&policy=index-match&workers=2", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body TraceResponse
			getJSON(t, ts, "/api/trace"+tt.query, http.StatusOK, &body)

			if len(body.Traces) != tt.wantTraces || body.Stats.Sources != tt.wantTraces {
				t.Errorf("Got %d traces (stats %+v), want %d", len(body.Traces), body.Stats, tt.wantTraces)
			}
			warned := false
			for _, msg := range body.Console {
				warned = warned || msg.Level == "warning"
			}
			if tt.wantWarning && !warned {
				t.Errorf("Depth-limit warning = %v, want %v (console %+v)", warned, tt.wantWarning, body.Console)
			}
		})
	}
}

func TestHandleTrace_MoveElement(t *testing.T) {
	ts := newTestServer(t)

	var before, after TraceResponse
	getJSON(t, ts, "/api/trace?scene=periscope", http.StatusOK, &before)
	getJSON(t, ts, "/api/trace?scene=periscope&moveElement=0&dy=-50", http.StatusOK, &after)

	if got := before.Traces[0].Events[0].Point.Y; math.Abs(got) > 1e-9 {
		t.Errorf("First hit before the move at y = %v, want 0", got)
	}
	if got := after.Traces[0].Events[0].Point.Y; math.Abs(got+50) > 1e-9 {
		t.Errorf("First hit after the move at y = %v, want -50", got)
	}
}

func TestHandleTrace_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"unknown scene", "?scene=cornell-box", http.StatusNotFound},
		{"unknown policy", "?scene=slab&policy=guess", http.StatusBadRequest},
		{"bad workers", "?workers=many", http.StatusBadRequest},
		{"too many workers", "?workers=1000", http.StatusBadRequest},
		{"bad element", "?scene=slab&moveElement=3", http.StatusBadRequest},
		{"bad delta", "?scene=slab&moveElement=0&dx=NaN", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			getJSON(t, ts, "/api/trace"+tt.query, tt.wantStatus, &body)
			if body["error"] == "" {
				t.Errorf("Expected an error message")
			}
		})
	}
}

func TestHandleTrace_Post(t *testing.T) {
	ts := newTestServer(t)

	inline := `{
	  "elements": [{"type": "lens", "base": {"x": 300, "y": 80}, "length": 20, "width": 160,
	                "radiusLeft": 120, "radiusRight": 120, "refractiveIndex": 1.5}],
	  "sources": [{"id": "axis", "origin": {"x": 20, "y": 0}, "through": {"x": 60, "y": 0}}]
	}`
	resp, err := http.Post(ts.URL+"/api/trace", "application/json", strings.NewReader(inline))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}

	var body TraceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if body.Scene != "inline" || len(body.Traces) != 1 {
		t.Fatalf("Unexpected response %+v", body)
	}
	// The axial ray passes straight through both faces
	if got := body.Traces[0].Final().Kind; got != scene.EventExit {
		t.Errorf("Axial ray ended with %v, want exit", got)
	}
	if got := body.Stats.Refractions; got != 2 {
		t.Errorf("Refractions = %d, want 2", got)
	}

	resp, err = http.Post(ts.URL+"/api/trace", "application/json", strings.NewReader(`{"elements": [], "lights": []}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Unknown fields: status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleScene(t *testing.T) {
	ts := newTestServer(t)
	var body SceneResponse
	getJSON(t, ts, "/api/scene?scene=bench", http.StatusOK, &body)

	if body.Name == "" || len(body.Elements) != 2 || len(body.Sources) != 1 {
		t.Fatalf("Unexpected scene response %+v", body)
	}
	if body.Policy != "stack" || body.MaxDepth != scene.DefaultMaxDepth {
		t.Errorf("Unexpected settings: policy %q depth %d", body.Policy, body.MaxDepth)
	}

	prism, lens := body.Elements[0], body.Elements[1]
	if prism.Kind != "polygon" || len(prism.Boundaries) != 4 || prism.Properties["vertices"] == nil {
		t.Errorf("Unexpected prism %+v", prism)
	}
	if lens.Kind != "lens" || lens.Boundaries[1].Arc == nil || lens.Boundaries[3].Arc == nil {
		t.Errorf("Expected curved lens faces, got %+v", lens.Boundaries)
	}
	if lens.Boundaries[0].Arc != nil {
		t.Errorf("Lens top edge should be straight")
	}
}

func TestHandleInspect(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		x, y      string
		wantIndex float64
		wantCount int
	}{
		{"inside the slab", "250", "-50", 1.5, 1},
		{"in the air", "100", "100", 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{"scene": {"slab"}, "x": {tt.x}, "y": {tt.y}}
			var body InspectResponse
			getJSON(t, ts, "/api/inspect?"+q.Encode(), http.StatusOK, &body)
			if body.RefractiveIndex != tt.wantIndex || len(body.Inside) != tt.wantCount {
				t.Errorf("Inspect = %+v, want index %v in %d elements", body, tt.wantIndex, tt.wantCount)
			}
		})
	}

	var body map[string]string
	getJSON(t, ts, "/api/inspect?scene=slab&x=abc", http.StatusBadRequest, &body)
}

func TestHandleRender(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/render?scene=lenses&width=320&height=180")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("Reading body failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Decoding PNG failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("Image size = %dx%d, want 320x180", b.Dx(), b.Dy())
	}

	var body map[string]string
	getJSON(t, ts, "/api/render?width=10", http.StatusBadRequest, &body)
	getJSON(t, ts, "/api/render?scene=nope", http.StatusNotFound, &body)
}
