package kinetics

import (
	"fmt"
	"sort"
	"sync"
)

// TrajectoryManager keys running and finished simulations by ID, each
// isolated from the others. It is what the server exposes over HTTP.
type TrajectoryManager struct {
	mu           sync.RWMutex
	trajectories map[string]*Simulation
	logger       Logger
}

// NewTrajectoryManager creates a manager with a no-op logger.
func NewTrajectoryManager() *TrajectoryManager {
	return NewTrajectoryManagerWithLogger(NewNoOpLogger())
}

// NewTrajectoryManagerWithLogger creates a manager logging through the given
// logger.
func NewTrajectoryManagerWithLogger(logger Logger) *TrajectoryManager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &TrajectoryManager{
		trajectories: make(map[string]*Simulation),
		logger:       logger,
	}
}

// Add registers a simulation under its ID. IDs must be unique.
func (tm *TrajectoryManager) Add(sim *Simulation) error {
	if sim == nil {
		return fmt.Errorf("simulation cannot be nil")
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if _, exists := tm.trajectories[sim.ID()]; exists {
		return fmt.Errorf("trajectory with id %s already exists", sim.ID())
	}
	tm.trajectories[sim.ID()] = sim
	tm.logger.Infof("trajectory registered: id=%s", sim.ID())
	return nil
}

// Get retrieves a simulation by ID.
func (tm *TrajectoryManager) Get(id string) (*Simulation, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	sim, exists := tm.trajectories[id]
	return sim, exists
}

// Delete stops (if running) and removes a simulation.
func (tm *TrajectoryManager) Delete(id string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	sim, exists := tm.trajectories[id]
	if !exists {
		return fmt.Errorf("trajectory with id %s does not exist", id)
	}
	sim.Stop()
	delete(tm.trajectories, id)
	tm.logger.Infof("trajectory removed: id=%s", id)
	return nil
}

// List returns all trajectory IDs, sorted for stable output.
func (tm *TrajectoryManager) List() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	ids := make([]string, 0, len(tm.trajectories))
	for id := range tm.trajectories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StopAll stops every running simulation.
func (tm *TrajectoryManager) StopAll() {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	for _, sim := range tm.trajectories {
		sim.Stop()
	}
}
