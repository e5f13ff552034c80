package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/golang/glog"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/loaders"
	"github.com/df07/go-optical-bench/pkg/scene"
)

// Server handles web requests for the optical bench
type Server struct {
	port      int
	scenesDir string
}

// NewServer creates a new web server. Scene files are looked up in scenesDir.
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir}
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene", s.handleScene)
	mux.HandleFunc("/api/trace", s.handleTrace)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	glog.Infof("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// BenchRequest selects a bench and how to trace it
type BenchRequest struct {
	Scene   string             // Scene id
	Policy  string             // Medium policy override, empty keeps the scene's
	Workers int                // Parallel workers (0 = CPU count)
	Move    *MoveRequest       // Optional element translation applied before tracing
	File    *loaders.SceneFile // Inline scene, replaces Scene when set
}

// MoveRequest translates one element of the bench
type MoveRequest struct {
	Element int
	Delta   core.Point
}

// parseBenchRequest reads the common bench parameters from the query
func parseBenchRequest(values url.Values) (*BenchRequest, error) {
	req := &BenchRequest{Scene: values.Get("scene"), Policy: values.Get("policy")}
	if req.Scene == "" {
		req.Scene = "bench" // Default scene
	}

	var err error
	if req.Workers, err = parseIntParam(values, "workers", 0, 0, 64); err != nil {
		return nil, err
	}

	if values.Has("moveElement") {
		move := &MoveRequest{}
		if move.Element, err = parseIntParam(values, "moveElement", 0, 0, 1000); err != nil {
			return nil, err
		}
		if move.Delta.X, err = parseFloatParam(values, "dx", 0, -1e6, 1e6); err != nil {
			return nil, err
		}
		if move.Delta.Y, err = parseFloatParam(values, "dy", 0, -1e6, 1e6); err != nil {
			return nil, err
		}
		req.Move = move
	}
	return req, nil
}

// loadBench resolves a bench request to a bench
func (s *Server) loadBench(req *BenchRequest, logger core.Logger) (*scene.Bench, error) {
	opts := []scene.Option{scene.WithLogger(logger)}
	if req.Policy != "" {
		p, err := scene.ParseMediumPolicy(req.Policy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, scene.WithMediumPolicy(p))
	}

	var bench *scene.Bench
	var err error
	switch {
	case req.File != nil:
		bench, err = req.File.Build(opts...)
	default:
		var info scene.SceneInfo
		info, err = scene.FindScene(req.Scene, s.scenesDir)
		if err != nil {
			return nil, err
		}
		if info.Type == "builtin" {
			bench, err = scene.BuiltIn(info.ID, opts...)
		} else {
			bench, err = loaders.LoadSceneFile(info.FilePath, opts...)
		}
	}
	if err != nil {
		return nil, err
	}

	if req.Move != nil {
		moved, err := bench.Scene.MoveElement(req.Move.Element, req.Move.Delta)
		if err != nil {
			return nil, err
		}
		bench.Scene = moved
	}
	return bench, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if !(parsed >= min && parsed <= max) {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
