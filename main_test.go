package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-optical-bench/pkg/renderer"
	"github.com/df07/go-optical-bench/pkg/scene"
)

const testSceneYAML = `# Scene: Test Slab
elements:
  - type: polygon
    base: {x: 200, y: 0}
    length: 100
    width: 100
    refractiveIndex: 1.5
sources:
  - {id: down, origin: {x: 250, y: 100}, through: {x: 250, y: 50}}
`

func TestCreateBench(t *testing.T) {
	scenesDir := t.TempDir()
	path := filepath.Join(scenesDir, "test-slab.yaml")
	if err := os.WriteFile(path, []byte(testSceneYAML), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name        string
		sceneArg    string
		wantName    string
		expectError bool
	}{
		// Built-in scenes
		{"bench scene", "bench", "bench", false},
		{"slab scene", "slab", "slab", false},
		{"prism scene", "prism", "prism", false},
		{"lenses scene", "lenses", "lenses", false},

		// Scene files by id
		{"file by name", "test-slab", "test-slab", false},
		{"file by id", "file:test-slab", "test-slab", false},

		// Scene files by path
		{"direct path", path, "test-slab", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", "", true},
		{"missing path", filepath.Join(scenesDir, "nonexistent.yaml"), "", true},
		{"empty scene name", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bench, name, err := createBench(tt.sceneArg, scenesDir)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene '%s', but got none", tt.sceneArg)
				}
				if bench != nil {
					t.Errorf("Expected nil bench for invalid scene '%s'", tt.sceneArg)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene '%s': %v", tt.sceneArg, err)
			}
			if name != tt.wantName {
				t.Errorf("Output name = %q, want %q", name, tt.wantName)
			}
			if len(bench.Scene.Elements()) == 0 || len(bench.Sources) == 0 {
				t.Errorf("Scene '%s' has no elements or no sources", tt.sceneArg)
			}
		})
	}
}

func TestCreateBench_Options(t *testing.T) {
	bench, _, err := createBench("slab", "", scene.WithMediumPolicy(scene.MediumIndexMatch))
	if err != nil {
		t.Fatalf("createBench failed: %v", err)
	}
	if bench.Scene.Policy() != scene.MediumIndexMatch {
		t.Errorf("Policy = %v, want index-match", bench.Scene.Policy())
	}
}

// The scene files shipped in scenes/ must all load and trace
func TestBundledScenes(t *testing.T) {
	dir := scene.FindScenesDir()
	if dir == "" {
		t.Skip("no scenes directory")
	}
	files, err := scene.ListSceneFiles(dir)
	if err != nil {
		t.Fatalf("ListSceneFiles failed: %v", err)
	}

	for _, info := range files {
		t.Run(info.ID, func(t *testing.T) {
			bench, _, err := createBench(info.ID, dir)
			if err != nil {
				t.Fatalf("createBench(%s) failed: %v", info.ID, err)
			}
			if bench.Name == "" {
				t.Errorf("Scene %s has no name", info.ID)
			}
			if _, err := renderer.TraceAll(context.Background(), bench, 0); err != nil {
				t.Errorf("TraceAll failed: %v", err)
			}
		})
	}
}

func TestCreateOutputDir(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"bench", filepath.Join("output", "bench")},
		{"test-slab", filepath.Join("output", "test-slab")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := createOutputDir(tt.name); got != tt.want {
				t.Errorf("createOutputDir(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFileSceneName(t *testing.T) {
	for path, want := range map[string]string{
		"scenes/periscope.yaml":      "periscope",
		"nested-slabs.json":          "nested-slabs",
		"scenes/subdir/my-scene.yml": "my-scene",
	} {
		if got := fileSceneName(path); got != want {
			t.Errorf("fileSceneName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestSaveTraces(t *testing.T) {
	bench, _, err := createBench("slab", "")
	if err != nil {
		t.Fatalf("createBench failed: %v", err)
	}
	result, err := renderer.Render(context.Background(), bench, renderer.RenderConfig{Width: 64, Height: 36}, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "traces.json")
	if err := saveTraces(path, result); err != nil {
		t.Fatalf("saveTraces failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var decoded tracesFile
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Stats != result.Stats || len(decoded.Traces) != len(bench.Sources) {
		t.Errorf("Decoded %+v with %d traces", decoded.Stats, len(decoded.Traces))
	}
	if !strings.Contains(string(data), `"kind": "depth-limit"`) {
		t.Errorf("Expected the trapped ray's depth-limit event in the output")
	}
}
