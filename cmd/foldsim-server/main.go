package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strandlab/foldsim/internal/kinetics"
)

// registerRoutes mounts every handler on the given mux.
func (s *Server) registerRoutes(mux *http.ServeMux, reg *prometheus.Registry) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/systems", s.handleSystemRoutes)
	mux.HandleFunc("/systems/", s.handleSystemRoutes)
	mux.HandleFunc("/trajectories", s.handleTrajectoryRoutes)
	mux.HandleFunc("/trajectories/", s.handleTrajectoryRoutes)
	mux.HandleFunc("/results", s.handleListResults)
	mux.HandleFunc("/notifiers", s.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", s.handleNotifiersRoutes)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	store, err := kinetics.OpenResultStore(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Cannot open result store at %s: %v", cfg.DBPath, err)
	}

	reg := prometheus.NewRegistry()
	srv := NewServer(logger, store, reg)
	srv.SetSampleEvery(int64(cfg.SampleEvery))
	defer srv.Shutdown()

	if cfg.SystemFile != "" {
		sysCfg, err := kinetics.LoadSystemConfig(cfg.SystemFile)
		if err != nil {
			logger.Fatalf("Cannot load system file %s: %v", cfg.SystemFile, err)
		}
		if err := srv.RegisterSystem(sysCfg); err != nil {
			logger.Fatalf("Cannot register system from %s: %v", cfg.SystemFile, err)
		}
	}

	mux := http.NewServeMux()
	srv.registerRoutes(mux, reg)

	logger.Infof("foldsim-server listening on %s (db=%s)", cfg.Addr, cfg.DBPath)
	logger.Fatalf("%v", http.ListenAndServe(cfg.Addr, mux))
}
