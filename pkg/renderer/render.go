package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/scene"
)

// RenderConfig contains configuration for tracing and drawing a bench
type RenderConfig struct {
	Width      int // Image width in pixels
	Height     int // Image height in pixels
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:      1280,
		Height:     720, // Matches the aspect of the default bounds
		NumWorkers: 0,
	}
}

// Result is a traced and drawn bench
type Result struct {
	Traces   []scene.Trace
	Stats    TraceStats
	Canvas   *Canvas
	Duration time.Duration
}

// Render traces every source of the bench and draws the outcome
func Render(ctx context.Context, bench *scene.Bench, config RenderConfig, logger core.Logger) (*Result, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", config.Width, config.Height)
	}
	logger = core.OrNop(logger)

	start := time.Now()
	traces, err := TraceAll(ctx, bench, config.NumWorkers)
	if err != nil {
		return nil, err
	}
	stats := CollectStats(traces)
	logger.Printf("Traced %d rays: %d segments, %d refractions, %d reflections\n",
		stats.Sources, stats.Segments, stats.Refractions, stats.Reflections)

	canvas := NewCanvas(config.Width, config.Height, bench.Scene.Bounds())
	canvas.DrawBench(bench.Scene, traces)

	result := &Result{
		Traces:   traces,
		Stats:    stats,
		Canvas:   canvas,
		Duration: time.Since(start),
	}
	logger.Printf("Render completed in %v\n", result.Duration)
	return result, nil
}
