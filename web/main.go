package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/df07/go-optical-bench/pkg/scene"
	"github.com/df07/go-optical-bench/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "", "Directory of scene files (default: scenes or ../scenes)")
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	dir := *scenesDir
	if dir == "" {
		dir = scene.FindScenesDir()
	}

	// Create and start web server
	webServer := server.NewServer(*port, dir)

	glog.Infof("Optical Bench Web Server")
	glog.Infof("Visit http://localhost:%d/api/scenes to list scenes", *port)

	if err := webServer.Start(); err != nil {
		glog.Exitf("Error starting server: %v", err)
	}
}
