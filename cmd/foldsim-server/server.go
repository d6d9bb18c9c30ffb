package main

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/strandlab/foldsim/internal/kinetics"
	"github.com/strandlab/foldsim/internal/kinetics/notifiers"
)

// kineticsLoggerAdapter adapts the server's Logger to the kinetics.Logger interface
type kineticsLoggerAdapter struct {
	logger *Logger
}

func (a *kineticsLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *kineticsLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *kineticsLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *kineticsLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

// wsNotifierID is the fixed ID the built-in websocket notifier registers under.
const wsNotifierID = "ws-broadcast"

// Server exposes registered systems and their trajectories over HTTP.
type Server struct {
	mu           sync.RWMutex
	systems      map[string]kinetics.SystemConfig
	trajectories *kinetics.TrajectoryManager
	notifyMgr    *kinetics.NotificationManager
	wsNotifier   *notifiers.WebSocketNotifier
	store        *kinetics.ResultStore
	metrics      *serverMetrics
	sampleEvery  int64
	logger       *Logger
}

// NewServer wires the trajectory manager, notification fan-out and result
// store together. The store may be nil, in which case results are only held
// in memory.
func NewServer(logger *Logger, store *kinetics.ResultStore, reg prometheus.Registerer) *Server {
	kl := &kineticsLoggerAdapter{logger: logger}
	notifyMgr := kinetics.NewNotificationManagerWithLogger(kl)
	ws := notifiers.NewWebSocketNotifier(wsNotifierID)
	if err := notifyMgr.RegisterNotifier(ws); err != nil {
		logger.Errorf("Failed to register websocket notifier: %v", err)
	}

	return &Server{
		systems:      make(map[string]kinetics.SystemConfig),
		trajectories: kinetics.NewTrajectoryManagerWithLogger(kl),
		notifyMgr:    notifyMgr,
		wsNotifier:   ws,
		store:        store,
		metrics:      newServerMetrics(reg),
		logger:       logger,
	}
}

// SetSampleEvery sets the step-event sampling interval for new trajectories.
func (s *Server) SetSampleEvery(n int64) {
	s.mu.Lock()
	s.sampleEvery = n
	s.mu.Unlock()
}

// RegisterSystem stores a validated system config under its name.
func (s *Server) RegisterSystem(cfg kinetics.SystemConfig) error {
	cfg.ApplyDefaults()
	if err := kinetics.ValidateSystemConfig(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	s.systems[cfg.Name] = cfg
	s.mu.Unlock()
	s.logger.Infof("System registered: name=%s", cfg.Name)
	return nil
}

// getSystem retrieves a registered system config.
func (s *Server) getSystem(name string) (kinetics.SystemConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.systems[name]
	return cfg, ok
}

// listSystems returns the registered system names.
func (s *Server) listSystems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.systems))
	for name := range s.systems {
		names = append(names, name)
	}
	return names
}

// startTrajectory builds a trajectory from a registered system, starts it in
// the background and watches for its result.
func (s *Server) startTrajectory(systemName string, seed int64) (string, error) {
	cfg, ok := s.getSystem(systemName)
	if !ok {
		return "", errSystemNotFound
	}

	sim, err := kinetics.BuildSimulation("", cfg, seed, &kineticsLoggerAdapter{logger: s.logger})
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	sampleEvery := s.sampleEvery
	s.mu.RUnlock()
	sim.SetNotifications(s.notifyMgr, s.notifyMgr.ListNotifiers(), sampleEvery)

	if err := s.trajectories.Add(sim); err != nil {
		return "", err
	}

	sim.Start()
	s.metrics.trajectoriesStarted.Inc()
	s.logger.Infof("Trajectory started: id=%s system=%s", sim.ID(), systemName)

	go s.watchTrajectory(sim)
	return sim.ID(), nil
}

// watchTrajectory waits for a trajectory to finish, then persists its result
// and updates metrics.
func (s *Server) watchTrajectory(sim *kinetics.Simulation) {
	for {
		res, ok := sim.Result()
		if !ok {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		s.metrics.observeFinished(res)
		if s.store != nil {
			if err := s.store.Save(res); err != nil {
				s.logger.Errorf("Failed to persist trajectory result: id=%s error=%v", res.ID, err)
			}
		}
		return
	}
}

// Shutdown stops every trajectory and releases resources.
func (s *Server) Shutdown() {
	s.trajectories.StopAll()
	if err := s.notifyMgr.Close(); err != nil {
		s.logger.Errorf("Error closing notification manager: %v", err)
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Errorf("Error closing result store: %v", err)
		}
	}
}
