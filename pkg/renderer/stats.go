package renderer

import "github.com/df07/go-optical-bench/pkg/scene"

// TraceStats contains statistics about a set of traced rays
type TraceStats struct {
	Sources      int `json:"sources"`      // Number of rays traced
	Segments     int `json:"segments"`     // Total segments over all rays
	Refractions  int `json:"refractions"`  // Boundary crossings
	Reflections  int `json:"reflections"`  // Total internal reflections
	Exits        int `json:"exits"`        // Rays that left through the bench bounds
	Lost         int `json:"lost"`         // Rays that found nothing ahead, bounds included
	DepthLimited int `json:"depthLimited"` // Rays stopped by the depth limit
	MaxDepthUsed int `json:"maxDepthUsed"` // Deepest segment of any ray
}

// CollectStats summarizes traces
func CollectStats(traces []scene.Trace) TraceStats {
	stats := TraceStats{Sources: len(traces)}
	for _, tr := range traces {
		stats.Segments += len(tr.Segments)
		for _, seg := range tr.Segments {
			stats.MaxDepthUsed = max(stats.MaxDepthUsed, seg.Depth)
		}
		for _, ev := range tr.Events {
			stats.add(ev.Kind)
		}
	}
	return stats
}

func (s *TraceStats) add(kind scene.EventKind) {
	switch kind {
	case scene.EventRefract:
		s.Refractions++
	case scene.EventReflect:
		s.Reflections++
	case scene.EventExit:
		s.Exits++
	case scene.EventLost:
		s.Lost++
	case scene.EventDepthLimit:
		s.DepthLimited++
	}
}
