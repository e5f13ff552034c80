package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang/glog"

	"github.com/df07/go-optical-bench/pkg/loaders"
	"github.com/df07/go-optical-bench/pkg/renderer"
	"github.com/df07/go-optical-bench/pkg/scene"
)

// maxSceneBody limits inline scenes posted to /api/trace
const maxSceneBody = 1 << 20

// TraceResponse is the JSON answer of /api/trace
type TraceResponse struct {
	Scene     string              `json:"scene"`
	Name      string              `json:"name"`
	Stats     renderer.TraceStats `json:"stats"`
	Traces    []scene.Trace       `json:"traces"`
	Console   []ConsoleMessage    `json:"console"`
	ElapsedMs int64               `json:"elapsedMs"`
}

// handleTrace traces a bench and returns every segment and event. GET selects a scene by
// id; POST sends an inline scene file as JSON.
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseTraceRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	logger := NewWebLogger(req.Scene)
	bench, err := s.loadBench(req, logger)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	start := time.Now()
	traces, err := renderer.TraceAll(r.Context(), bench, req.Workers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Trace error: %v", err))
		return
	}
	stats := renderer.CollectStats(traces)
	logger.Printf("Traced %d rays in %v\n", stats.Sources, time.Since(start))

	writeJSON(w, http.StatusOK, TraceResponse{
		Scene:     req.Scene,
		Name:      bench.Name,
		Stats:     stats,
		Traces:    traces,
		Console:   logger.Messages(),
		ElapsedMs: time.Since(start).Milliseconds(),
	})
}

func (s *Server) parseTraceRequest(r *http.Request) (*BenchRequest, error) {
	req, err := parseBenchRequest(r.URL.Query())
	if err != nil {
		return nil, err
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxSceneBody))
		if err != nil {
			return nil, err
		}
		f, err := loaders.ParseScene(body, loaders.FormatJSON)
		if err != nil {
			return nil, err
		}
		req.File = f
		req.Scene = "inline"
	default:
		return nil, fmt.Errorf("method %s not allowed", r.Method)
	}
	return req, nil
}

// handleRender draws a bench and its traces as PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req, err := parseBenchRequest(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	config := renderer.RenderConfig{NumWorkers: req.Workers}
	if config.Width, err = parseIntParam(values, "width", 1280, 100, 4000); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if config.Height, err = parseIntParam(values, "height", 720, 100, 4000); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	logger := NewWebLogger(req.Scene)
	bench, err := s.loadBench(req, logger)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	result, err := renderer.Render(r.Context(), bench, config, logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := result.Canvas.EncodePNG(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode image: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		glog.Warningf("Failed to write image: %v", err)
	}
}

// statusFor maps a bench loading error to an HTTP status
func statusFor(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
