package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/df07/go-optical-bench/pkg/loaders"
	"github.com/df07/go-optical-bench/pkg/renderer"
	"github.com/df07/go-optical-bench/pkg/scene"
)

var (
	sceneType  = flag.String("scene", "bench", "Built-in scene id, scene file id, or path to a .yaml/.json scene file")
	width      = flag.Int("width", 1280, "Image width in pixels")
	height     = flag.Int("height", 720, "Image height in pixels")
	numWorkers = flag.Int("workers", 0, "Number of parallel workers (0 = use CPU count)")
	policy     = flag.String("policy", "", "Override the medium policy: 'stack' or 'index-match'")
	writeJSON  = flag.Bool("json", false, "Also save the traced segments and events as JSON")
	debug      = flag.Bool("debug", false, "Log per-ray diagnostics such as depth limits")
	help       = flag.Bool("help", false, "Show help information")
)

// glogLogger implements core.Logger on top of glog
type glogLogger struct{}

func (glogLogger) Printf(format string, args ...interface{}) {
	glog.InfoDepth(1, fmt.Sprintf(strings.TrimSuffix(format, "\n"), args...))
}

func main() {
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	if *help {
		printHelp()
		return
	}

	var opts []scene.Option
	if *policy != "" {
		p, err := scene.ParseMediumPolicy(*policy)
		if err != nil {
			glog.Exitf("Error: %v", err)
		}
		opts = append(opts, scene.WithMediumPolicy(p))
	}
	if *debug {
		opts = append(opts, scene.WithLogger(glogLogger{}))
	}

	bench, name, err := createBench(*sceneType, scene.FindScenesDir(), opts...)
	if err != nil {
		glog.Exitf("Error: %v", err)
	}
	glog.Infof("Using scene %q: %s (%d elements, %d rays)", name, bench.Name, len(bench.Scene.Elements()), len(bench.Sources))

	config := renderer.RenderConfig{Width: *width, Height: *height, NumWorkers: *numWorkers}
	result, err := renderer.Render(context.Background(), bench, config, glogLogger{})
	if err != nil {
		glog.Exitf("Error rendering: %v", err)
	}
	glog.Infof("Stats: %+v", result.Stats)

	outputDir := createOutputDir(name)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		glog.Exitf("Error creating output directory: %v", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
	if err := result.Canvas.SavePNG(filename); err != nil {
		glog.Exitf("Error saving PNG: %v", err)
	}
	glog.Infof("Render saved as %s", filename)

	if *writeJSON {
		jsonName := filepath.Join(outputDir, fmt.Sprintf("traces_%s.json", timestamp))
		if err := saveTraces(jsonName, result); err != nil {
			glog.Exitf("Error saving traces: %v", err)
		}
		glog.Infof("Traces saved as %s", jsonName)
	}
}

func printHelp() {
	fmt.Println("Optical Bench")
	fmt.Println("Usage: optical-bench [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Built-in scenes:")
	for _, info := range scene.BuiltInScenes() {
		fmt.Printf("  %-8s %s\n", info.ID, info.Description)
	}
	if files, err := scene.ListSceneFiles(scene.FindScenesDir()); err == nil && len(files) > 0 {
		fmt.Println()
		fmt.Println("Scene files:")
		for _, info := range files {
			fmt.Printf("  %-20s %s\n", strings.TrimPrefix(info.ID, "file:"), info.DisplayName)
		}
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
}

// createBench resolves a scene argument: a path to a scene file, a built-in id, or the id
// of a file in scenesDir. It also returns the name used for the output directory.
func createBench(sceneArg, scenesDir string, opts ...scene.Option) (*scene.Bench, string, error) {
	if sceneArg == "" {
		return nil, "", errors.New("no scene given")
	}

	if scene.IsSceneFile(sceneArg) {
		if _, err := os.Stat(sceneArg); err == nil {
			bench, err := loaders.LoadSceneFile(sceneArg, opts...)
			if err != nil {
				return nil, "", err
			}
			return bench, fileSceneName(sceneArg), nil
		}
	}

	info, err := scene.FindScene(sceneArg, scenesDir)
	if err != nil {
		return nil, "", err
	}
	if info.Type == "builtin" {
		bench, err := scene.BuiltIn(info.ID, opts...)
		if err != nil {
			return nil, "", err
		}
		return bench, info.ID, nil
	}

	bench, err := loaders.LoadSceneFile(info.FilePath, opts...)
	if err != nil {
		return nil, "", err
	}
	return bench, fileSceneName(info.FilePath), nil
}

func fileSceneName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// createOutputDir returns the directory renders of the named scene are saved to
func createOutputDir(name string) string {
	return filepath.Join("output", name)
}

// tracesFile is the JSON written by -json
type tracesFile struct {
	Stats  renderer.TraceStats `json:"stats"`
	Traces []scene.Trace       `json:"traces"`
}

func saveTraces(path string, result *renderer.Result) error {
	data, err := json.MarshalIndent(tracesFile{Stats: result.Stats, Traces: result.Traces}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
